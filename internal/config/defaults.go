// Package config provides configuration loading, defaults, and validation for
// ChemLog-QC.
package config

import (
	"time"

	"github.com/turtacn/ChemLog-QC/internal/infrastructure/discovery"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultMaxFileSize = 50 * 1024 * 1024

	DefaultOutputDir         = "chemlogqc_data"
	DefaultOutputPrefix      = "chemlogqc"
	DefaultOutputFormat      = "tsv"
	DefaultReportFile        = "report.json"
	DefaultOutputParallelism = 4

	DefaultCacheTTL    = 7 * 24 * time.Hour
	DefaultCachePrefix = "chemlogqc:"
	DefaultRedisAddr   = "localhost:6379"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "chemlogqc-archive"

	DefaultMetricsNamespace = "chemlogqc"

	DefaultWatchDebounce = 2 * time.Second
)

// DefaultCleanExtensions are stripped from file names to form sample ids.
var DefaultCleanExtensions = []string{".gz", ".log", ".out", ".txt", ".json", ".tesselate", "_tesselate"}

// ApplyDefaults fills every zero-value field in cfg.  Fields that have already
// been set are left unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Input ─────────────────────────────────────────────────────────────────
	if cfg.Input.MaxFileSize == 0 {
		cfg.Input.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Input.CleanExtensions == nil {
		cfg.Input.CleanExtensions = append([]string(nil), DefaultCleanExtensions...)
	}
	if cfg.Input.IgnoreNames == nil {
		cfg.Input.IgnoreNames = []string{".*"}
	}

	// ── Modules ───────────────────────────────────────────────────────────────
	// A module without globs takes the built-in globs and marker.
	defaults := make(map[string]discovery.ModuleSpec)
	for _, s := range discovery.DefaultModules() {
		defaults[s.Module] = s
	}
	for _, e := range cfg.Modules.byName() {
		if len(e.cfg.Globs) > 0 {
			continue
		}
		d := defaults[e.name]
		e.cfg.Globs = append([]string(nil), d.Globs...)
		e.cfg.Contains = d.Contains
		e.cfg.HeadLines = d.HeadLines
	}

	// ── Output ────────────────────────────────────────────────────────────────
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.Prefix == "" {
		cfg.Output.Prefix = DefaultOutputPrefix
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{DefaultOutputFormat}
	}
	if cfg.Output.ReportFile == "" {
		cfg.Output.ReportFile = DefaultReportFile
	}
	if cfg.Output.Parallelism == 0 {
		cfg.Output.Parallelism = DefaultOutputParallelism
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = DefaultCachePrefix
	}
	if cfg.Cache.Redis.Mode == "" {
		cfg.Cache.Redis.Mode = "standalone"
	}
	if cfg.Cache.Redis.Mode == "standalone" && cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.MinIO.Endpoint == "" {
		cfg.Storage.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.Storage.MinIO.Bucket == "" {
		cfg.Storage.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Watch ─────────────────────────────────────────────────────────────────
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}

//Personal.AI order the ending
