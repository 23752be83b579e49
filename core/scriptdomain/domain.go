// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package scriptdomain builds the sandbox object handed to an event
// script for a single request. It is a capability object, not a
// shared mutable bag: everything a script can do - report an error,
// protect or hide a property, ask whether one changed, adjust the
// permission decision - is a method on Domain, backed by state
// captured when the orchestrator builds it. A Domain is created fresh
// per document per event and discarded once the script returns.
package scriptdomain

// Domain is the per-invocation sandbox. This and Data both alias the
// value under script: a single document (map[string]interface{}) for
// create/update/get, or either a single document or the full matched
// sequence for delete. Previous is the pre-mutation snapshot, empty
// for create.
type Domain struct {
	This     interface{}
	Data     interface{}
	Previous map[string]interface{}

	create bool
	errs   map[string]string

	allow   func(tag string)
	prevent func(tag string)
}

// New builds a Domain over data. previous is the document as it stood
// before this request's mutation (pass nil for create). allow and
// prevent are the session's permission passthroughs and may be nil.
func New(data interface{}, previous map[string]interface{}, create bool, allow, prevent func(tag string)) *Domain {
	if previous == nil {
		previous = map[string]interface{}{}
	}
	return &Domain{
		This:     data,
		Data:     data,
		Previous: previous,
		create:   create,
		allow:    allow,
		prevent:  prevent,
	}
}

func (d *Domain) asMap() map[string]interface{} {
	m, _ := d.Data.(map[string]interface{})
	return m
}

// Map returns Data as a document, or nil when Data holds a sequence
// (the delete-with-no-id shape).
func (d *Domain) Map() map[string]interface{} {
	return d.asMap()
}

// Error records a validation error for key. It is independent from
// schema validation - the orchestrator checks HasErrors after the
// script returns and treats it the same way it treats a schema error.
func (d *Domain) Error(key, message string) {
	if d.errs == nil {
		d.errs = map[string]string{}
	}
	d.errs[key] = message
}

// ErrorIf records the error iff cond is true.
func (d *Domain) ErrorIf(cond bool, key, message string) {
	if cond {
		d.Error(key, message)
	}
}

// ErrorUnless records the error iff cond is false.
func (d *Domain) ErrorUnless(cond bool, key, message string) {
	if !cond {
		d.Error(key, message)
	}
}

// HasErrors reports whether any error was recorded.
func (d *Domain) HasErrors() bool {
	return len(d.errs) > 0
}

// Errors returns the recorded errors, keyed by property.
func (d *Domain) Errors() map[string]string {
	return d.errs
}

// Protect removes prop from the outgoing Data, so neither the store
// nor the client reply sees it. A no-op when Data is not a document.
func (d *Domain) Protect(prop string) {
	if m := d.asMap(); m != nil {
		delete(m, prop)
	}
}

// Hide is an alias scripts use interchangeably with Protect.
func (d *Domain) Hide(prop string) {
	d.Protect(prop)
}

// Changed reports whether prop differs between Data and Previous. On
// create it is true iff prop is present at all. False when Data is
// not a document.
func (d *Domain) Changed(prop string) bool {
	m := d.asMap()
	if m == nil {
		return false
	}
	if d.create {
		_, ok := m[prop]
		return ok
	}
	value, present := m[prop]
	if !present {
		_, wasPresent := d.Previous[prop]
		return wasPresent
	}
	return value != d.Previous[prop]
}

// Allow passes tag through to the session's permission allow-list, if
// one was supplied.
func (d *Domain) Allow(tag string) {
	if d.allow != nil {
		d.allow(tag)
	}
}

// Prevent passes tag through to the session's permission deny-list, if
// one was supplied.
func (d *Domain) Prevent(tag string) {
	if d.prevent != nil {
		d.prevent(tag)
	}
}
