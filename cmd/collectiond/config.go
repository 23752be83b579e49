// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package main

import (
	"github.com/joeshaw/envdecode"
	"github.com/relabs-tech/collectiond/core/pointers"
)

// config is the process's environment-derived configuration, decoded
// with envdecode the way the teacher's services decode theirs.
type config struct {
	Address      string `env:"COLLECTIOND_ADDRESS,default=:8080"`
	LogLevel     string `env:"COLLECTIOND_LOG_LEVEL,default=info"`
	JWTSecret    string `env:"COLLECTIOND_JWT_SECRET"`
	KafkaBrokers string `env:"COLLECTIOND_KAFKA_BROKERS"`
	KafkaTopic   string `env:"COLLECTIOND_KAFKA_TOPIC,default=collectiond-events"`
	ReadTimeout  *int64 `env:"COLLECTIOND_READ_TIMEOUT_SECONDS"`
}

// readTimeoutSeconds falls back to a sane default when unset; pointers
// is the teacher's home for this kind of optional-value plumbing.
func readTimeoutSeconds(raw *int64) int64 {
	if v := pointers.SafeInt64(raw); v > 0 {
		return v
	}
	return 15
}

func loadConfig() (config, error) {
	var c config
	if err := envdecode.Decode(&c); err != nil {
		return config{}, err
	}
	return c, nil
}
