// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package memory is an in-process store.Store, useful for tests and
// for collections small enough to live in a single process. It
// implements the same query dialect subset the collection orchestrator
// relies on: equality matching on top-level keys and "$fields"
// projection.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/relabs-tech/collectiond/core/store"
)

// Store is a goroutine-safe in-memory store.Store.
type Store struct {
	mu   sync.RWMutex
	docs map[string]store.Document
	name string
}

// New returns an empty Store for the given collection name.
func New(name string) *Store {
	return &Store{docs: map[string]store.Document{}, name: name}
}

func clone(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func matches(doc store.Document, query store.Query) bool {
	for key, value := range query {
		if len(key) > 0 && key[0] == '$' {
			continue
		}
		if doc[key] != value {
			return false
		}
	}
	return true
}

func project(doc store.Document, query store.Query) store.Document {
	fields, ok := query["$fields"].(map[string]interface{})
	if !ok {
		return doc
	}
	out := store.Document{"id": doc["id"]}
	for field, want := range fields {
		if truthy(want) {
			out[field] = doc[field]
		}
	}
	return out
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case int:
		return t != 0
	case float64:
		return t != 0
	case bool:
		return t
	}
	return v != nil
}

// Find returns every document matching query.
func (s *Store) Find(ctx context.Context, query store.Query) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []store.Document
	for _, doc := range s.docs {
		if matches(doc, query) {
			out = append(out, project(clone(doc), query))
		}
	}
	return out, nil
}

// First returns the first document matching query.
func (s *Store) First(ctx context.Context, query store.Query) (store.Document, error) {
	docs, _ := s.Find(ctx, query)
	if len(docs) == 0 {
		return nil, store.ErrNotFound
	}
	return docs[0], nil
}

// Count returns the number of documents matching query.
func (s *Store) Count(ctx context.Context, query store.Query) (int, error) {
	docs, _ := s.Find(ctx, query)
	return len(docs), nil
}

// Insert persists doc under its "id" key.
func (s *Store) Insert(ctx context.Context, doc store.Document) (store.Document, error) {
	id, _ := doc["id"].(string)
	if id == "" {
		id = s.CreateUniqueIdentifier()
		doc = clone(doc)
		doc["id"] = id
	}
	s.mu.Lock()
	s.docs[id] = clone(doc)
	s.mu.Unlock()
	return clone(doc), nil
}

// Update merges partial onto every document matching match.
func (s *Store) Update(ctx context.Context, match store.Query, partial store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.docs {
		if !matches(doc, match) {
			continue
		}
		merged := clone(doc)
		for k, v := range partial {
			merged[k] = v
		}
		s.docs[id] = merged
	}
	return nil
}

// Remove deletes every document matching query.
func (s *Store) Remove(ctx context.Context, query store.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.docs {
		if matches(doc, query) {
			delete(s.docs, id)
		}
	}
	return nil
}

// Rename changes the in-memory collection name.
func (s *Store) Rename(ctx context.Context, newName string) error {
	s.mu.Lock()
	s.name = newName
	s.mu.Unlock()
	return nil
}

// CreateUniqueIdentifier mints a new v4 UUID string.
func (s *Store) CreateUniqueIdentifier() string {
	return uuid.NewString()
}
