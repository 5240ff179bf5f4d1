// Package config loads the process-wide defaults that seed a scope.Core
// when a driver does not resolve them per script - currently the default
// strictness and a debug toggle for naming scopes in CLI output.
package config

import "github.com/caarlos0/env/v6"

// Config is parsed from environment variables via env.Parse.
type Config struct {
	// Strict is the default strictness a script is analyzed under when the
	// driver's input does not specify one of its own (scope.Core itself
	// accepts a per-script override through before_script).
	Strict bool `env:"SCOPECORE_STRICT" envDefault:"false"`

	// NameScopes is loaded from the environment, but no command reads it: it
	// changes neither the analysis nor the output of trace or dump.
	NameScopes bool `env:"SCOPECORE_NAME_SCOPES" envDefault:"true"`
}

// Load reads Config from the environment, applying envDefault tags for any
// variable that is unset.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
