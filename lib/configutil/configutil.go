package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Load reads a json5 configuration file and layers a `<name>.local.<ext>`
// override on top of it when one exists next to it. The local file wins on
// conflicting keys. os.ErrNotExist is returned when neither file exists.
func Load[T any](name string) (T, error) {
	var out T

	base, err := readInto[T](name)
	found := err == nil
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if found {
		out = base
	}

	localName := localVariant(name)
	override, err := readInto[T](localName)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if err == nil {
		if mergeErr := mergo.Merge(&out, override, mergo.WithOverride); mergeErr != nil {
			return out, mergeErr
		}
		slog.Info("merging config with local overrides", "local", localName)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// LoadRecursively walks up from the working directory to the filesystem
// root looking for a configuration file matching `name`.
func LoadRecursively[T any](name string) (T, error) {
	var zero T

	current, err := os.Getwd()
	if err != nil {
		return zero, err
	}

	for {
		config, err := Load[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return zero, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return zero, os.ErrNotExist
		}
		current = parent
	}
}

func readInto[T any](name string) (T, error) {
	var out T
	contents, err := os.ReadFile(name)
	if err != nil {
		return out, err
	}
	if len(contents) == 0 {
		return out, os.ErrNotExist
	}
	err = json5.Unmarshal(contents, &out)
	return out, err
}

// config.json5 -> config.local.json5
func localVariant(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// RequireEnv returns the value of an environment variable or an error
// naming the missing key, for credentials that must not be defaulted.
func RequireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is not set", key)
	}
	return value, nil
}

// EnvBool interprets common truthy spellings ("true", "t", "1") of an
// environment variable, falling back to `fallback` when unset.
func EnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "true", "t", "1":
		return true
	}
	return false
}
