// SPDX-License-Identifier: MIT

// Package config holds the shared entry-point plumbing of the commands:
// environment defaults, flag overrides, logger construction and fatal exits.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ErrNilTarget is returned when a config or flag set is missing.
var ErrNilTarget = errors.New("config: target is required")

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseConfigFromArgs loads defaults from env into cfg and then parses flags.
// Flags bound to cfg's fields after env parsing override the env values.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string, bind func(*flag.FlagSet, *T)) error {
	if cfg == nil || fs == nil {
		return ErrNilTarget
	}
	if err := ParseEnv(cfg); err != nil {
		return err
	}
	if bind != nil {
		bind(fs, cfg)
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}
