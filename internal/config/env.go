// Package config loads ballot-box settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the REST server and the CLI.
type Config struct {
	Addr           string `env:"BALLOT_ADDR" envDefault:":8080"`
	DBPath         string `env:"BALLOT_DB_PATH"`
	Owner          string `env:"BALLOT_OWNER" envDefault:"owner"`
	IdentityHeader string `env:"BALLOT_IDENTITY_HEADER" envDefault:"X-Caller-Identity"`
	LogPrefix      string `env:"BALLOT_LOG_PREFIX" envDefault:"[BALLOT] "`
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Exitf writes a formatted error to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
