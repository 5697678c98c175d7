// Package config wraps viper for the handful of persisted user settings.
// Settings live in ~/.dazzlecmd/config.yaml and can be shadowed by DZ_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dazzle-labs/dazzlecmd/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// KeyRoot pins the registry root to a fixed directory instead of the upward
// walk from the working directory.
const KeyRoot = "root"

// Dir returns the settings directory (~/.dazzlecmd/). When the home
// directory cannot be determined the dot-directory is placed in the working
// directory, so the CLI still functions in stripped-down containers.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the settings file path (~/.dazzlecmd/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the settings directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load wires viper to the settings file and the DZ_* environment. A missing
// file is not an error; settings are created lazily on first Set.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// Get returns a setting as a string, or "" when unset.
func Get(key string) string {
	return viper.GetString(key)
}

// All returns every persisted setting as sorted key/value pairs. Environment
// shadows are included the way viper resolves them.
func All() [][2]string {
	keys := viper.AllKeys()
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, viper.GetString(k)})
	}
	return pairs
}

// Set persists one setting, creating the settings file on first write.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	path := FilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", path, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
