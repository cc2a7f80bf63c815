package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option adjusts how Load reads the environment.
type Option func(*loader)

type loader struct {
	files    []string
	optional bool
	opts     env.Options
}

// WithEnvFiles loads the given .env files before parsing. Variables already
// present in the process environment win. Missing files are an error.
func WithEnvFiles(paths ...string) Option {
	return func(l *loader) {
		l.files = append(l.files, paths...)
	}
}

// WithDefaultEnvFile loads ./.env when it exists.
func WithDefaultEnvFile() Option {
	return func(l *loader) {
		l.optional = true
	}
}

// WithEnvironment parses from vars instead of the process environment.
func WithEnvironment(vars map[string]string) Option {
	return func(l *loader) {
		l.opts.Environment = vars
	}
}

// WithPrefix only reads variables starting with prefix.
func WithPrefix(prefix string) Option {
	return func(l *loader) {
		l.opts.Prefix = prefix
	}
}

// Load parses environment variables into v according to its env tags.
// Every call parses afresh; callers keep the result and pass it down.
//
//	var cfg AppConfig
//	if err := config.Load(&cfg, config.WithDefaultEnvFile()); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	if l.optional {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				return errors.Join(ErrLoadingEnvFile, err)
			}
		}
	}
	if len(l.files) > 0 {
		if err := godotenv.Load(l.files...); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}

	if err := env.ParseWithOptions(v, l.opts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is Load that panics on error.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
