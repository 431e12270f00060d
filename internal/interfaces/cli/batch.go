package cli

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/turtacn/ChemLog-QC/internal/application/pipeline"
	"github.com/turtacn/ChemLog-QC/internal/application/reporting"
	"github.com/turtacn/ChemLog-QC/internal/config"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/discovery"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/export"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/storage/minio"
	"github.com/turtacn/ChemLog-QC/internal/parsing"
	"github.com/turtacn/ChemLog-QC/internal/parsing/gaussian"
	"github.com/turtacn/ChemLog-QC/internal/parsing/tessellate"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// archiver uploads run outputs and lists what a run stored.
type archiver interface {
	Archive(ctx context.Context, runID uuid.UUID, paths []string) ([]minio.ArchivedObject, error)
	ListRun(ctx context.Context, runID uuid.UUID) ([]string, error)
}

// newArchiver connects to object storage.  Tests replace it.
var newArchiver = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (archiver, error) {
	mc := cfg.Storage.MinIO
	client, err := minio.NewMinIOClient(&mc, logger)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	if mc.RetentionDays > 0 {
		if err := client.SetupLifecycleRules(ctx); err != nil {
			logger.Warn("lifecycle rules not applied", logging.Err(err))
		}
	}
	return minio.NewArchiveSink(client, logger), nil
}

// parsers returns one parser per module, in report order.
func parsers() []parsing.Parser {
	return []parsing.Parser{
		gaussian.NewParser(),
		tessellate.NewParser(),
		tessellate.NewLegacyParser(),
	}
}

// moduleSummary is one line of the run summary.
type moduleSummary struct {
	Module    string
	Files     int
	Committed int
	Empty     int
	Skipped   int
	Rejected  int
	Failed    int
	Samples   int
}

// batchSummary describes one complete run over all modules.
type batchSummary struct {
	RunID     uuid.UUID
	Modules   []moduleSummary
	Outputs   []string
	Report    string
	Archived  int
	Discarded int
}

func (s *batchSummary) tableRows() [][]string {
	rows := make([][]string, 0, len(s.Modules))
	for _, m := range s.Modules {
		rows = append(rows, []string{
			m.Module,
			strconv.Itoa(m.Files),
			strconv.Itoa(m.Committed),
			strconv.Itoa(m.Empty),
			strconv.Itoa(m.Skipped),
			strconv.Itoa(m.Rejected),
			strconv.Itoa(m.Failed),
			strconv.Itoa(m.Samples),
		})
	}
	return rows
}

var summaryHeaders = []string{"MODULE", "FILES", "COMMITTED", "EMPTY", "SKIPPED", "REJECTED", "FAILED", "SAMPLES"}

// runBatch discovers logs under paths, parses every enabled module, exports
// the datasets, writes the report and, when configured, archives the outputs
// and writes the metrics textfile.  A run in which no module produced a
// sample returns a NoSamples error and writes nothing.
func runBatch(ctx context.Context, cfg *config.Config, logger logging.Logger, paths []string) (*batchSummary, error) {
	sum := &batchSummary{RunID: uuid.New()}
	logger = logger.With(logging.String("batch_id", sum.RunID.String()))

	finder, err := discovery.NewFinder(discovery.Config{
		Modules:         cfg.Modules.Specs(),
		MaxFileSize:     cfg.Input.MaxFileSize,
		CleanExtensions: cfg.Input.CleanExtensions,
		IgnoreNames:     cfg.Input.IgnoreNames,
	}, logger)
	if err != nil {
		return nil, err
	}
	found, err := finder.Find(ctx, paths...)
	if err != nil {
		return nil, err
	}
	sum.Discarded = found.Skipped

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: cfg.Metrics.Namespace}, logger)
	if err != nil {
		return nil, err
	}
	metrics := prometheus.NewParseMetrics(collector)

	opts := []pipeline.Option{pipeline.WithMetrics(metrics)}
	if len(cfg.Input.IgnoreSamples) > 0 {
		opts = append(opts, pipeline.WithIgnoreSamples(cfg.Input.IgnoreSamples...))
	}
	if cache, closeCache := openCache(cfg, logger); cache != nil {
		defer closeCache()
		opts = append(opts, pipeline.WithCache(cache))
	}

	var inputs []reporting.Input
	for _, p := range parsers() {
		files := found.Files[p.Name()]
		if len(files) == 0 {
			continue
		}
		res, err := pipeline.NewRunner(p, logger, opts...).Run(ctx, toLogFiles(files))
		if res != nil {
			sum.Modules = append(sum.Modules, summarize(res))
		}
		switch {
		case errors.IsNoSamples(err):
			logger.Info("module found no samples", logging.Module(p.Name()))
			continue
		case err != nil:
			return sum, err
		}
		inputs = append(inputs, reporting.Input{Module: p.Name(), Assembler: res.Assembler})
	}
	if len(inputs) == 0 {
		return sum, errors.New(errors.ErrCodeNoSamples, "").
			WithDetailf("files=%d", found.Count())
	}

	formats, err := cfg.OutputFormats()
	if err != nil {
		return sum, err
	}
	exporter, err := export.NewFileExporter(logger, cfg.Output.Dir, cfg.Output.Prefix, formats,
		export.WithRecorder(metrics),
		export.WithParallelism(cfg.Output.Parallelism))
	if err != nil {
		return sum, err
	}
	for _, in := range inputs {
		written, err := exporter.Export(ctx, in.Assembler)
		if err != nil {
			return sum, err
		}
		sum.Outputs = append(sum.Outputs, written...)
	}

	reportPath, err := writeReport(ctx, cfg, logger, sum.RunID, inputs)
	if err != nil {
		return sum, err
	}
	sum.Report = reportPath
	sum.Outputs = append(sum.Outputs, reportPath)

	if cfg.Storage.Enabled {
		arch, err := newArchiver(ctx, cfg, logger)
		if err != nil {
			return sum, err
		}
		objs, err := arch.Archive(ctx, sum.RunID, sum.Outputs)
		if err != nil {
			return sum, err
		}
		sum.Archived = len(objs)
	}

	if cfg.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("metrics textfile not written", logging.Path(cfg.Metrics.Textfile), logging.Err(err))
		}
	}
	return sum, nil
}

// openCache connects to Redis when the cache is enabled.  An unreachable
// server disables the cache for this run instead of failing it.
func openCache(cfg *config.Config, logger logging.Logger) (pipeline.Cache, func()) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	cache, closeCache, err := connectCache(cfg, logger)
	if err != nil {
		logger.Warn("parse cache unavailable, continuing without it", logging.Err(err))
		return nil, nil
	}
	return cache, closeCache
}

// connectCache builds the parse cache from cfg regardless of cache.enabled.
func connectCache(cfg *config.Config, logger logging.Logger) (*redis.ParseCache, func(), error) {
	rc := cfg.Cache.Redis
	client, err := redis.NewClient(&rc, logger)
	if err != nil {
		return nil, nil, err
	}
	cache := redis.NewParseCache(client, logger,
		redis.WithPrefix(cfg.Cache.Prefix),
		redis.WithTTL(cfg.Cache.TTL))
	return cache, func() { _ = client.Close() }, nil
}

func toLogFiles(files []discovery.File) []pipeline.LogFile {
	out := make([]pipeline.LogFile, len(files))
	for i, f := range files {
		out[i] = pipeline.LogFile{
			SampleHint: f.Sample,
			Root:       f.Root,
			Path:       f.Path,
			Open:       f.Open,
		}
	}
	return out
}

func summarize(res *pipeline.Result) moduleSummary {
	return moduleSummary{
		Module:    res.Module,
		Files:     len(res.Outcomes),
		Committed: res.Count(pipeline.StatusCommitted),
		Empty:     res.Count(pipeline.StatusEmpty),
		Skipped:   res.Count(pipeline.StatusSkipped),
		Rejected:  res.Count(pipeline.StatusRejected),
		Failed:    res.Count(pipeline.StatusFailed),
		Samples:   res.Assembler.SampleCount(),
	}
}

func writeReport(ctx context.Context, cfg *config.Config, logger logging.Logger, runID uuid.UUID, inputs []reporting.Input) (string, error) {
	svc := reporting.NewService(logger)
	rep, err := svc.Build(ctx, runID, inputs...)
	if err != nil {
		return "", err
	}

	path := filepath.Join(cfg.Output.Dir, cfg.Output.ReportFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExportFailed, "create report directory")
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExportFailed, "create report")
	}
	if err := svc.Encode(f, rep); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", errors.Wrap(err, errors.ErrCodeExportFailed, "close report")
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExportFailed, "rename report")
	}
	logger.Info("report written",
		logging.Path(path),
		logging.Int("modules", len(rep.Modules)),
		logging.Int("sections", rep.SectionCount()))
	return path, nil
}

//Personal.AI order the ending
