// Package config reads sqlsession settings from the process environment, seeded from dotenv files.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	defaultFileName         = ".env"
	defaultOverrideFileName = ".local.env"
)

// Config is a read-only key/value view of the configuration.
type Config interface {
	Get(key string) string
	GetOrDefault(key, defaultValue string) string
}

type logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// EnvLoader resolves keys from the environment after loading dotenv files.
type EnvLoader struct {
	logger logger
}

// NewEnvFile loads <folder>/.env and then overlays <folder>/.<APP_ENV>.env, or <folder>/.local.env
// when APP_ENV is unset. Variables already present in the process environment are never replaced
// by the base file, only by the override file.
func NewEnvFile(folder string, l logger) Config {
	loader := &EnvLoader{logger: l}
	loader.read(folder)

	return loader
}

func (e *EnvLoader) read(folder string) {
	base := filepath.Join(folder, defaultFileName)

	if err := godotenv.Load(base); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warnf("failed to load config from file: %v, err: %v", base, err)
		}
	} else {
		e.logger.Infof("loaded config from file: %v", base)
	}

	override := filepath.Join(folder, defaultOverrideFileName)
	if env := os.Getenv("APP_ENV"); env != "" {
		override = filepath.Join(folder, "."+env+".env")
	}

	if err := godotenv.Overload(override); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warnf("failed to load config from file: %v, err: %v", override, err)
		}

		return
	}

	e.logger.Debugf("overloaded config from file: %v", override)
}

// Get returns the value of key, or an empty string.
func (*EnvLoader) Get(key string) string {
	return os.Getenv(key)
}

// GetOrDefault returns the value of key, or defaultValue when it is unset or empty.
func (*EnvLoader) GetOrDefault(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return defaultValue
}

// MapConfig is a fixed Config, mostly useful in tests.
type MapConfig map[string]string

func (m MapConfig) Get(key string) string {
	return m[key]
}

func (m MapConfig) GetOrDefault(key, defaultValue string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}

	return defaultValue
}
