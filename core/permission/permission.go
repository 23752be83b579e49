// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package permission derives the set of permission tags a request
// requires, as a set of tags the orchestrator can hand to an external
// verifier.
package permission

import "net/http"

// Tag is a single required permission.
type Tag string

// The permission tags a request can require.
const (
	QueryMultiple  Tag = "querying multiple objects"
	QueryByID      Tag = "querying an object by id"
	Create         Tag = "creating an object"
	CreateMultiple Tag = "creating multiple objects"
	UpdateByID     Tag = "updating an object by id"
	UpdateMultiple Tag = "updating multiple objects"
	DeleteByID     Tag = "deleting an object by id"
	DeleteMultiple Tag = "deleting multiple objects"
)

// Set is the required-permission set for a request.
type Set map[Tag]bool

// NewSet builds a Set from the given tags.
func NewSet(tags ...Tag) Set {
	s := Set{}
	for _, t := range tags {
		s[t] = true
	}
	return s
}

// Has reports whether tag is in the set.
func (s Set) Has(tag Tag) bool {
	return s[tag]
}

// Defaults is the permission set every collection permits out of the
// box, before any external policy narrows it.
func Defaults() Set {
	return NewSet(QueryMultiple, QueryByID, Create, DeleteByID, UpdateByID)
}

// Required derives the required permission set for method, whether an
// id was resolved for the request, and whether the body is a sequence
// (bulk create).
func Required(method string, hasID bool, bodyIsSequence bool) Set {
	switch method {
	case http.MethodGet:
		if hasID {
			return NewSet(QueryByID)
		}
		return NewSet(QueryMultiple)

	case http.MethodPost:
		if bodyIsSequence {
			return NewSet(CreateMultiple)
		}
		if hasID {
			return NewSet(UpdateByID, QueryByID)
		}
		return NewSet(Create)

	case http.MethodPut:
		if hasID {
			return NewSet(UpdateByID, QueryByID)
		}
		return NewSet(QueryMultiple, UpdateMultiple)

	case http.MethodDelete:
		if hasID {
			return NewSet(DeleteByID)
		}
		return NewSet(DeleteMultiple)
	}
	return Set{}
}
