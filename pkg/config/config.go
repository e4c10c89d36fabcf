// Package config loads layered configuration: defaults, then a YAML file,
// then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const configDir = "configs"

// Options controls where configuration is read from.
type Options struct {
	// ServiceName selects configs/<ServiceName>.yaml and the env prefix.
	ServiceName string
	// File overrides the config file path. CONFIG_PATH is used when empty.
	File string
	// Defaults are applied before the file is read.
	Defaults map[string]interface{}
	// DotEnv lists .env files to load into the process environment first.
	// Missing files are ignored.
	DotEnv []string
}

// Load returns a viper instance populated from opts. A missing config file
// is not an error; environment variables alone are enough to run.
func Load(opts Options) (*viper.Viper, error) {
	for _, f := range opts.DotEnv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	for k, val := range opts.Defaults {
		v.SetDefault(k, val)
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(opts.ServiceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := opts.File
	if file == "" {
		file = os.Getenv("CONFIG_PATH")
	}
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(opts.ServiceName)
		v.AddConfigPath(configDir)
		v.AddConfigPath(filepath.Join("..", "..", configDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// AutomaticEnv only resolves keys viper already knows about, so nested
	// keys without a default need explicit binding.
	for _, key := range v.AllKeys() {
		_ = v.BindEnv(key)
	}

	return v, nil
}
