// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package schema coerces, validates, and sanitizes documents and
// queries against a declared set of property descriptors. It is the
// boundary between untyped request payloads and the typed properties
// a collection promises to store.
package schema

import (
	"strconv"
)

// Type is the declared runtime type of a property.
type Type string

// The property types a collection can declare.
const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeDate    Type = "date"
)

// Property describes a single declared field of a collection.
type Property struct {
	Name     string
	Type     Type
	Required bool
}

// Schema is an immutable set of property descriptors, keyed by name.
type Schema map[string]Property

// Errors is a mapping from property name to a human-readable reason,
// returned by Validate when one or more properties fail validation.
type Errors map[string]string

// HasErrors reports whether any error was recorded.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// exists reports whether v is a "present" value: not nil, not an
// empty string. It is the ingress notion of "the caller supplied
// this field", matching how optional JSON fields are distinguished
// from merely-empty ones.
func exists(v interface{}) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

// Validate checks body against the schema and, for create, enforces
// required properties. It mutates body in place in two ways: numeric
// properties given as strings are coerced to float64, and absent
// boolean properties default to false. The returned Errors is nil
// (zero-length) when there is nothing to report.
func Validate(s Schema, body map[string]interface{}, create bool) Errors {
	errs := Errors{}
	for name, prop := range s {
		value, present := body[name]
		present = present && exists(value)

		if !present {
			if prop.Required && create {
				errs[name] = "is required"
				continue
			}
			if prop.Type == TypeBoolean {
				body[name] = false
			}
			continue
		}

		coerced, ok := coerce(value, prop.Type)
		if !ok {
			errs[name] = "must be a " + string(prop.Type)
			continue
		}
		body[name] = coerced
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// coerce attempts to bring value to the declared type, the way
// Validate's boundary check does: numbers accept numeric strings,
// everything else must already match.
func coerce(value interface{}, t Type) (interface{}, bool) {
	switch t {
	case TypeNumber:
		switch v := value.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, false
			}
			return f, true
		}
		return nil, false
	case TypeString:
		v, ok := value.(string)
		return v, ok
	case TypeBoolean:
		v, ok := value.(bool)
		return v, ok
	case TypeArray:
		_, ok := asSlice(value)
		return value, ok
	case TypeObject:
		v, ok := value.(map[string]interface{})
		return v, ok
	case TypeDate:
		v, ok := value.(string)
		return v, ok
	}
	return nil, false
}

// asSlice reports whether value is an ordered sequence, returning it
// as []interface{} when it is.
func asSlice(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	default:
		return nil, false
	}
}

// Sanitize produces a new map containing only properties declared in
// the schema. A value whose runtime type equals the declared type is
// kept as-is; array accepts any ordered sequence and number accepts
// numeric strings via narrow coercion. Anything else is dropped
// silently - sanitize never errors, it only narrows.
func Sanitize(s Schema, body map[string]interface{}) map[string]interface{} {
	clean := map[string]interface{}{}
	for name, prop := range s {
		value, ok := body[name]
		if !ok {
			continue
		}
		coerced, ok := coerce(value, prop.Type)
		if !ok {
			continue
		}
		clean[name] = coerced
	}
	return clean
}

// SanitizeQuery is like Sanitize, but additionally passes through
// "id" unchanged, passes through every "$"-prefixed key except
// $limitRecursion and $skipEvents (which are stripped here and
// consumed elsewhere), and treats boolean properties as the literal
// string "true" for true; a bool value is kept as-is and anything
// else is false. Undefined values are dropped.
func SanitizeQuery(s Schema, query map[string]interface{}) map[string]interface{} {
	clean := map[string]interface{}{}
	for key, value := range query {
		if value == nil {
			continue
		}
		if key == "id" {
			clean[key] = value
			continue
		}
		if len(key) > 0 && key[0] == '$' {
			if key == "$limitRecursion" || key == "$skipEvents" {
				continue
			}
			clean[key] = value
			continue
		}
		prop, ok := s[key]
		if !ok {
			continue
		}
		if prop.Type == TypeBoolean {
			if str, ok := value.(string); ok {
				clean[key] = str == "true"
			} else if b, ok := value.(bool); ok {
				clean[key] = b
			} else {
				clean[key] = false
			}
			continue
		}
		coerced, ok := coerce(value, prop.Type)
		if !ok {
			continue
		}
		clean[key] = coerced
	}
	return clean
}
