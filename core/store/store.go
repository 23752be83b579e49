// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package store defines the document-store operations the collection
// orchestrator consumes. The store itself is an external collaborator:
// this package only specifies the contract, plus an ErrNotFound
// sentinel every implementation must return consistently.
package store

import (
	"context"
	"errors"
)

// Document is a persisted record. It carries a store-generated string
// identifier under the "id" key once persisted.
type Document map[string]interface{}

// Query is a pass-through mapping understood by the store. "$fields"
// projects; any other "$"-prefixed key is store-defined.
type Query map[string]interface{}

// ErrNotFound is returned by First when no document matches the query.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence contract a collection requires. All
// operations are asynchronous with respect to the caller's request in
// the sense that they may suspend on I/O; Go expresses that with a
// blocking call plus context cancellation rather than a callback.
type Store interface {
	// Find returns every document matching query, in store-defined
	// order.
	Find(ctx context.Context, query Query) ([]Document, error)

	// First returns the first document matching query, or
	// ErrNotFound if none match.
	First(ctx context.Context, query Query) (Document, error)

	// Count returns the number of documents matching query.
	Count(ctx context.Context, query Query) (int, error)

	// Insert persists doc, which already carries its "id", and
	// returns the persisted form.
	Insert(ctx context.Context, doc Document) (Document, error)

	// Update applies partial over every document matching match.
	Update(ctx context.Context, match Query, partial Document) error

	// Remove deletes every document matching query.
	Remove(ctx context.Context, query Query) error

	// Rename changes the store-level namespace backing this
	// collection to newName.
	Rename(ctx context.Context, newName string) error

	// CreateUniqueIdentifier synchronously mints a new,
	// collision-free identifier within this store.
	CreateUniqueIdentifier() string
}
