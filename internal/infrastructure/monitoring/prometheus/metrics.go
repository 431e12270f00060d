package prometheus

import (
	"time"

	"github.com/turtacn/ChemLog-QC/internal/application/pipeline"
	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/export"
)

// Default Buckets
var (
	DefaultParseDurationBuckets  = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30}
	DefaultExportDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 30, 120}
)

// ParseMetrics holds the metrics of a batch run.  It satisfies
// pipeline.Recorder and export.Recorder.
type ParseMetrics struct {
	FilesTotal         CounterVec
	FileDuration       HistogramVec
	SkippedRecords     CounterVec
	CacheLookups       CounterVec
	DatasetSampleCount GaugeVec
	RunsTotal          CounterVec
	LastRunTimestamp   GaugeVec
	ExportDuration     HistogramVec
	ExportErrors       CounterVec
}

var (
	_ pipeline.Recorder = (*ParseMetrics)(nil)
	_ export.Recorder   = (*ParseMetrics)(nil)
)

// NewParseMetrics registers all metrics on collector.
func NewParseMetrics(collector MetricsCollector) *ParseMetrics {
	m := &ParseMetrics{}

	m.FilesTotal = collector.RegisterCounter("files_total", "Log files processed, by outcome", "module", "status")
	m.FileDuration = collector.RegisterHistogram("file_duration_seconds", "Time spent on one log file", DefaultParseDurationBuckets, "module")
	m.SkippedRecords = collector.RegisterCounter("records_skipped_total", "Malformed records skipped inside accepted files", "module")
	m.CacheLookups = collector.RegisterCounter("cache_lookups_total", "Parse cache lookups", "module", "result")
	m.DatasetSampleCount = collector.RegisterGauge("dataset_samples", "Samples per dataset after the last run", "module", "dataset")
	m.RunsTotal = collector.RegisterCounter("runs_total", "Completed runs", "module", "result")
	m.LastRunTimestamp = collector.RegisterGauge("last_run_timestamp_seconds", "Unix time of the last finished run", "module")
	m.ExportDuration = collector.RegisterHistogram("export_duration_seconds", "Time spent writing one dataset to a sink", DefaultExportDurationBuckets, "sink")
	m.ExportErrors = collector.RegisterCounter("export_errors_total", "Failed dataset writes", "sink")

	return m
}

func (m *ParseMetrics) FileProcessed(module string, status pipeline.Status, d time.Duration) {
	m.FilesTotal.WithLabelValues(module, string(status)).Inc()
	m.FileDuration.WithLabelValues(module).Observe(d.Seconds())
}

func (m *ParseMetrics) RecordsSkipped(module string, n int) {
	m.SkippedRecords.WithLabelValues(module).Add(float64(n))
}

func (m *ParseMetrics) CacheLookup(module string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(module, result).Inc()
}

func (m *ParseMetrics) DatasetSamples(module string, name dataset.Name, n int) {
	m.DatasetSampleCount.WithLabelValues(module, string(name)).Set(float64(n))
}

func (m *ParseMetrics) RunFinished(module string, ok bool) {
	result := "ok"
	if !ok {
		result = "no_samples"
	}
	m.RunsTotal.WithLabelValues(module, result).Inc()
	m.LastRunTimestamp.WithLabelValues(module).Set(float64(time.Now().Unix()))
}

func (m *ParseMetrics) ExportObserved(sink string, d time.Duration, err error) {
	m.ExportDuration.WithLabelValues(sink).Observe(d.Seconds())
	if err != nil {
		m.ExportErrors.WithLabelValues(sink).Inc()
	}
}

//Personal.AI order the ending
