// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package mongo is a store.Store backed by MongoDB. Mongo's own
// update operators ($inc, $push, $pull, ...) share their names and
// semantics with command.Set, which makes a document collection a
// natural persistence layer for this module - but note that the
// orchestrator applies commands itself before calling Update; this
// adapter is a plain document store, it does not forward $ operators
// to Mongo's update pipeline.
package mongo

import (
	"context"

	"github.com/google/uuid"
	"github.com/relabs-tech/collectiond/core/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store adapts a *mongo.Collection to store.Store.
type Store struct {
	collection *mongo.Collection
}

// New returns a Store backed by the given database and collection
// name.
func New(db *mongo.Database, name string) *Store {
	return &Store{collection: db.Collection(name)}
}

func toFilter(query store.Query) bson.M {
	filter := bson.M{}
	for key, value := range query {
		if key == "$fields" {
			continue
		}
		filter[key] = value
	}
	return filter
}

func toProjection(query store.Query) *options.FindOptions {
	fields, ok := query["$fields"].(map[string]interface{})
	if !ok {
		return options.Find()
	}
	projection := bson.M{}
	for field, want := range fields {
		projection[field] = want
	}
	return options.Find().SetProjection(projection)
}

// Find returns every document matching query.
func (s *Store) Find(ctx context.Context, query store.Query) ([]store.Document, error) {
	cursor, err := s.collection.Find(ctx, toFilter(query), toProjection(query))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []store.Document
	for cursor.Next(ctx) {
		var doc store.Document
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, cursor.Err()
}

// First returns the first document matching query, or
// store.ErrNotFound if none match.
func (s *Store) First(ctx context.Context, query store.Query) (store.Document, error) {
	var doc store.Document
	err := s.collection.FindOne(ctx, toFilter(query)).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Count returns the number of documents matching query.
func (s *Store) Count(ctx context.Context, query store.Query) (int, error) {
	n, err := s.collection.CountDocuments(ctx, toFilter(query))
	return int(n), err
}

// Insert persists doc, which already carries its "id".
func (s *Store) Insert(ctx context.Context, doc store.Document) (store.Document, error) {
	_, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Update applies partial over every document matching match via a
// Mongo $set.
func (s *Store) Update(ctx context.Context, match store.Query, partial store.Document) error {
	_, err := s.collection.UpdateMany(ctx, toFilter(match), bson.M{"$set": bson.M(partial)})
	return err
}

// Remove deletes every document matching query.
func (s *Store) Remove(ctx context.Context, query store.Query) error {
	_, err := s.collection.DeleteMany(ctx, toFilter(query))
	return err
}

// Rename renames the backing Mongo collection.
func (s *Store) Rename(ctx context.Context, newName string) error {
	db := s.collection.Database()
	admin := db.Client().Database("admin")
	err := admin.RunCommand(ctx, bson.D{
		{Key: "renameCollection", Value: db.Name() + "." + s.collection.Name()},
		{Key: "to", Value: db.Name() + "." + newName},
	}).Err()
	if err != nil {
		return err
	}
	s.collection = db.Collection(newName)
	return nil
}

// CreateUniqueIdentifier mints a new v4 UUID string.
func (s *Store) CreateUniqueIdentifier() string {
	return uuid.NewString()
}
