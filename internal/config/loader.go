// Package config provides configuration loading, defaults, and validation for
// ChemLog-QC.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CHEMLOG"

var (
	ErrConfigFileNotFound = errors.New("config: file not found")
	ErrConfigParseError   = errors.New("config: parse error")
	ErrConfigInvalid      = errors.New("config: validation failed")
)

// envKeys are bound explicitly so that CHEMLOG_* variables reach Unmarshal
// even when the key is absent from the file.
var envKeys = []string{
	"log.level", "log.format",
	"input.max_file_size", "input.ignore_samples", "input.ignore_names",
	"modules.qm.enabled", "modules.tessellate.enabled", "modules.tesselate.enabled",
	"output.dir", "output.prefix", "output.formats", "output.report_file", "output.parallelism",
	"cache.enabled", "cache.ttl", "cache.prefix",
	"cache.redis.mode", "cache.redis.addr", "cache.redis.username", "cache.redis.password", "cache.redis.db",
	"storage.enabled",
	"storage.minio.endpoint", "storage.minio.access_key_id", "storage.minio.secret_access_key",
	"storage.minio.bucket", "storage.minio.prefix", "storage.minio.use_ssl", "storage.minio.region",
	"metrics.namespace", "metrics.textfile",
	"watch.debounce",
}

// newViper builds a Viper instance with YAML file type, the CHEMLOG_ env
// prefix and a "." → "_" key replacer, so "output.dir" resolves to
// CHEMLOG_OUTPUT_DIR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Option adjusts a load before unmarshalling.
type Option func(*viper.Viper)

// WithOverride sets key to value with the highest precedence.  The CLI uses
// it for flags.
func WithOverride(key string, value interface{}) Option {
	return func(v *viper.Viper) { v.Set(key, value) }
}

// Load reads the YAML file at configPath, merges CHEMLOG_* overrides and
// opts, applies defaults and validates.  An empty configPath loads from the
// environment alone.
func Load(configPath string, opts ...Option) (*Config, error) {
	v := newViper()
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
			}
			return nil, fmt.Errorf("config: stat %q: %w", configPath, err)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigParseError, configPath, err)
		}
	}
	for _, opt := range opts {
		opt(v)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from CHEMLOG_* environment variables only.
//
//	CHEMLOG_<SECTION>_<FIELD>   e.g.  CHEMLOG_OUTPUT_DIR, CHEMLOG_CACHE_REDIS_ADDR
func LoadFromEnv(opts ...Option) (*Config, error) {
	return Load("", opts...)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrConfigParseError, err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Watch invokes onChange with the re-parsed Config whenever configPath
// changes on disk.  A change that fails to parse or validate is reported to
// onError, when set, and otherwise dropped.  Watch does not block.
func Watch(configPath string, onChange func(*Config), onError func(error), opts ...Option) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()
	for _, opt := range opts {
		opt(v)
	}

	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

//Personal.AI order the ending
