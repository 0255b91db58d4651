package cli

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/matzehuels/prodnet/pkg/errors"
)

// envPrefix is the prefix of every environment variable read by the CLI.
const envPrefix = "PRODNET"

// Env holds defaults taken from the environment. Command line flags take
// precedence.
type Env struct {
	// CacheDir overrides the file cache directory (PRODNET_CACHE_DIR).
	CacheDir string `envconfig:"CACHE_DIR"`
	// RedisAddr selects the Redis cache (PRODNET_REDIS_ADDR).
	RedisAddr string `envconfig:"REDIS_ADDR"`
	// Threshold is the default relevance threshold (PRODNET_THRESHOLD).
	Threshold float64 `envconfig:"THRESHOLD" default:"0"`
	// Schema is the default schema file (PRODNET_SCHEMA).
	Schema string `envconfig:"SCHEMA"`
}

// loadEnv reads PRODNET_* variables.
func loadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return Env{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read environment")
	}
	if err := errors.ValidateThreshold(env.Threshold); err != nil {
		return Env{}, errors.Wrap(errors.ErrCodeInvalidThreshold, err, "%s_THRESHOLD", envPrefix)
	}
	return env, nil
}
