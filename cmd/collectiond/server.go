// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package main

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/collectiond/core/access"
	"github.com/relabs-tech/collectiond/core/collection"
	"github.com/relabs-tech/collectiond/core/logger"
)

// registry maps a collection's URL segment to the orchestrator serving
// it. Each collection is mounted for every method; Collection.Serve
// itself answers 405 to a method it does not handle.
type registry struct {
	collections map[string]*collection.Collection
}

func newRegistry() *registry {
	return &registry{collections: map[string]*collection.Collection{}}
}

func (reg *registry) register(c *collection.Collection) {
	reg.collections[c.Name()] = c
}

// newRouter builds the top-level mux.Router: one path-prefix route per
// collection name, a request-id logger on every route, and the
// standard gorilla/handlers middleware stack wrapping the whole thing.
func newRouter(reg *registry, keyLookup access.KeyLookup) http.Handler {
	router := mux.NewRouter()
	logger.AddRequestID(router)

	for name, c := range reg.collections {
		c := c
		router.PathPrefix("/" + name).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := access.ParseBearer(r, keyLookup)
			if err != nil {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			ctx := newHTTPContext(w, r, claims)
			c.Serve(ctx)
		})
	}

	return handlers.CombinedLoggingHandler(
		logger.Default().Writer(),
		handlers.RecoveryHandler()(router),
	)
}
