// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Command collectiond serves a fixed set of collections over HTTP,
// wiring the core/collection orchestrator to a real transport, store
// and change-notification backend.
package main

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/collectiond/core/collection"
	"github.com/relabs-tech/collectiond/core/logger"
	"github.com/relabs-tech/collectiond/core/schema"
	"github.com/relabs-tech/collectiond/core/store/memory"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("loading configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.InitLogger(level)

	var notifier collection.Notifier
	if cfg.KafkaBrokers != "" {
		notifier = collection.NewKafkaNotifier([]string{cfg.KafkaBrokers}, cfg.KafkaTopic)
	}

	reg := newRegistry()
	reg.register(collection.New(collection.CollectionConfig{
		Name:       "todos",
		Properties: todosSchema(),
	}, memory.New("todos"), notifier))

	keyLookup := func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	server := &http.Server{
		Addr:        cfg.Address,
		Handler:     newRouter(reg, keyLookup),
		ReadTimeout: time.Duration(readTimeoutSeconds(cfg.ReadTimeout)) * time.Second,
	}

	logger.Default().Infof("collectiond listening on %s", cfg.Address)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("serving collectiond")
	}
}

func todosSchema() schema.Schema {
	return schema.Schema{
		"title": {Name: "title", Type: schema.TypeString, Required: true},
		"votes": {Name: "votes", Type: schema.TypeNumber},
		"done":  {Name: "done", Type: schema.TypeBoolean},
	}
}
