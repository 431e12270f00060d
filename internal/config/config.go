// Package config defines the configuration structures for ChemLog-QC.  No
// I/O lives here, only plain data types and validation.
package config

import (
	"fmt"
	"path"
	"time"

	"github.com/turtacn/ChemLog-QC/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/discovery"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/export"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/storage/minio"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// InputConfig controls which files and samples enter a run.
type InputConfig struct {
	// IgnoreSamples are globs matched against sample ids after parsing.
	IgnoreSamples []string `mapstructure:"ignore_samples"`
	// CleanExtensions are stripped from file names to form sample ids.
	CleanExtensions []string `mapstructure:"clean_extensions"`
	// IgnoreNames are globs matched against file and directory base names.
	IgnoreNames []string `mapstructure:"ignore_names"`
	MaxFileSize int64    `mapstructure:"max_file_size"`
}

// ModuleConfig selects the files of one parsing module.  A nil Enabled
// means enabled.
type ModuleConfig struct {
	Enabled   *bool    `mapstructure:"enabled"`
	Globs     []string `mapstructure:"globs"`
	Contains  string   `mapstructure:"contains"`
	HeadLines int      `mapstructure:"head_lines"`
}

// IsEnabled reports whether the module takes part in runs.
func (m ModuleConfig) IsEnabled() bool { return m.Enabled == nil || *m.Enabled }

// ModulesConfig holds one entry per parsing module.
type ModulesConfig struct {
	QM         ModuleConfig `mapstructure:"qm"`
	Tessellate ModuleConfig `mapstructure:"tessellate"`
	Tesselate  ModuleConfig `mapstructure:"tesselate"`
}

// byName pairs module names with their settings in run order.
func (m *ModulesConfig) byName() []struct {
	name string
	cfg  *ModuleConfig
} {
	return []struct {
		name string
		cfg  *ModuleConfig
	}{
		{"qm", &m.QM},
		{"tessellate", &m.Tessellate},
		{"tesselate", &m.Tesselate},
	}
}

// Specs returns the discovery specs of the enabled modules.
func (m *ModulesConfig) Specs() []discovery.ModuleSpec {
	var out []discovery.ModuleSpec
	for _, e := range m.byName() {
		if !e.cfg.IsEnabled() {
			continue
		}
		out = append(out, discovery.ModuleSpec{
			Module:    e.name,
			Globs:     e.cfg.Globs,
			Contains:  e.cfg.Contains,
			HeadLines: e.cfg.HeadLines,
		})
	}
	return out
}

// OutputConfig controls where datasets and the report are written.
type OutputConfig struct {
	Dir         string   `mapstructure:"dir"`
	Prefix      string   `mapstructure:"prefix"`
	Formats     []string `mapstructure:"formats"` // json | yaml | tsv | xlsx
	ReportFile  string   `mapstructure:"report_file"`
	Parallelism int      `mapstructure:"parallelism"`
}

// CacheConfig enables the Redis parse-result cache.
type CacheConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	TTL     time.Duration     `mapstructure:"ttl"`
	Prefix  string            `mapstructure:"prefix"`
	Redis   redis.RedisConfig `mapstructure:"redis"`
}

// StorageConfig enables archiving of run outputs to object storage.
type StorageConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	MinIO   minio.MinIOConfig `mapstructure:"minio"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	// Textfile is a node-exporter textfile collector path.  Empty disables it.
	Textfile string `mapstructure:"textfile"`
}

// WatchConfig tunes `chemlogqc watch`.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log     logging.LogConfig `mapstructure:"log"`
	Input   InputConfig       `mapstructure:"input"`
	Modules ModulesConfig     `mapstructure:"modules"`
	Output  OutputConfig      `mapstructure:"output"`
	Cache   CacheConfig       `mapstructure:"cache"`
	Storage StorageConfig     `mapstructure:"storage"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
	Watch   WatchConfig       `mapstructure:"watch"`
}

// OutputFormats parses Output.Formats.
func (c *Config) OutputFormats() ([]export.Format, error) {
	out := make([]export.Format, 0, len(c.Output.Formats))
	for _, s := range c.Output.Formats {
		f, err := export.ParseFormat(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Input
	if c.Input.MaxFileSize < 0 {
		return fmt.Errorf("config: input.max_file_size must be ≥ 0, got %d", c.Input.MaxFileSize)
	}
	if err := checkGlobs("input.ignore_samples", c.Input.IgnoreSamples); err != nil {
		return err
	}
	if err := checkGlobs("input.ignore_names", c.Input.IgnoreNames); err != nil {
		return err
	}

	// Modules
	enabled := 0
	for _, e := range c.Modules.byName() {
		if !e.cfg.IsEnabled() {
			continue
		}
		enabled++
		if len(e.cfg.Globs) == 0 {
			return fmt.Errorf("config: modules.%s.globs must not be empty", e.name)
		}
		if err := checkGlobs("modules."+e.name+".globs", e.cfg.Globs); err != nil {
			return err
		}
		if e.cfg.HeadLines < 0 {
			return fmt.Errorf("config: modules.%s.head_lines must be ≥ 0, got %d", e.name, e.cfg.HeadLines)
		}
	}
	if enabled == 0 {
		return fmt.Errorf("config: at least one module must be enabled")
	}

	// Output
	if c.Output.Dir == "" {
		return fmt.Errorf("config: output.dir is required")
	}
	if c.Output.ReportFile == "" {
		return fmt.Errorf("config: output.report_file is required")
	}
	if _, err := c.OutputFormats(); err != nil {
		return fmt.Errorf("config: output.formats: %w", err)
	}

	// Cache
	if c.Cache.Enabled {
		r := c.Cache.Redis
		switch r.Mode {
		case "", "standalone":
			if r.Addr == "" {
				return fmt.Errorf("config: cache.redis.addr is required")
			}
		case "sentinel":
			if r.MasterName == "" || len(r.SentinelAddrs) == 0 {
				return fmt.Errorf("config: cache.redis sentinel mode needs master_name and sentinel_addrs")
			}
		case "cluster":
			if len(r.ClusterAddrs) == 0 {
				return fmt.Errorf("config: cache.redis.cluster_addrs is required in cluster mode")
			}
		default:
			return fmt.Errorf("config: cache.redis.mode %q is invalid; expected standalone|sentinel|cluster", r.Mode)
		}
		if r.DB < 0 {
			return fmt.Errorf("config: cache.redis.db must be ≥ 0, got %d", r.DB)
		}
	}

	// Storage
	if c.Storage.Enabled {
		if c.Storage.MinIO.Endpoint == "" {
			return fmt.Errorf("config: storage.minio.endpoint is required")
		}
		if c.Storage.MinIO.Bucket == "" {
			return fmt.Errorf("config: storage.minio.bucket is required")
		}
	}

	return nil
}

func checkGlobs(key string, globs []string) error {
	for _, g := range globs {
		if _, err := path.Match(g, ""); err != nil {
			return fmt.Errorf("config: %s: bad pattern %q: %w", key, g, err)
		}
	}
	return nil
}

//Personal.AI order the ending
