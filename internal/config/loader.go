package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "PODIUM_"

// ConfigFileEnv names the variable holding an optional YAML config path.
const ConfigFileEnv = EnvPrefix + "CONFIG"

// legacyEnv maps unprefixed variables from older deployments to keys.
var legacyEnv = map[string]string{
	"PORT":        "addr",
	"ACCESS_CODE": "access_code",
	"JWT_SECRET":  "token_secret",
}

// LoadOption adjusts how Load finds its sources.
type LoadOption func(*loadOptions)

type loadOptions struct {
	configFile     string
	dotEnv         string
	dotEnvRequired bool
	overrides      map[string]any
}

// WithConfigFile loads the given YAML file, taking precedence over
// PODIUM_CONFIG.
func WithConfigFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.configFile = path
		}
	}
}

// WithDotEnv loads variables from the given file instead of ./.env. A file
// named explicitly must exist.
func WithDotEnv(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.dotEnv = path
			o.dotEnvRequired = true
		}
	}
}

// WithOverrides sets keys with the highest precedence, e.g. from flags.
func WithOverrides(values map[string]any) LoadOption {
	return func(o *loadOptions) {
		for k, v := range values {
			if o.overrides == nil {
				o.overrides = make(map[string]any, len(values))
			}
			o.overrides[k] = v
		}
	}
}

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. YAML file from WithConfigFile or PODIUM_CONFIG
//  3. legacy env: PORT, ACCESS_CODE, JWT_SECRET
//  4. env (prefix PODIUM_)
//  5. overrides
//
// Variables from .env are added to the process environment first without
// replacing ones already set.
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{dotEnv: ".env"}
	for _, opt := range opts {
		opt(&o)
	}

	if err := godotenv.Load(o.dotEnv); err != nil {
		if o.dotEnvRequired || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: dotenv %s: %v", ErrLoadConfig, o.dotEnv, err)
		}
	}

	base := New(ctx)
	k := koanf.New(".")

	path := o.configFile
	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	for name, key := range legacyEnv {
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			continue
		}
		if name == "PORT" && !strings.Contains(val, ":") {
			val = ":" + val
		}
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, name, err)
		}
	}

	// Environment variables: PODIUM_ADDR, PODIUM_TOKEN_TTL, ...
	// Map env keys like PODIUM_DATA_FILE -> data_file (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}
	k.Delete("config")

	for key, val := range o.overrides {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("%w: override %s: %v", ErrLoadConfig, key, err)
		}
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}
