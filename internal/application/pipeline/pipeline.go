// Package pipeline runs one parsing module over a batch of discovered log
// files.  Files are processed one at a time; each yields an Outcome, and a
// bad file never stops the batch.  The only run-level failure is a batch in
// which no sample was committed.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/internal/parsing"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// cacheSchema is bumped whenever a Result encoding changes.
const cacheSchema = "v1"

// LogFile is one discovered input.  An empty SampleHint means the file has
// no usable sample name and is skipped.
type LogFile struct {
	SampleHint string
	Root       string
	Path       string
	Open       func() (io.ReadCloser, error)
}

// Status classifies the outcome of one file.
type Status string

const (
	StatusCommitted Status = "committed"
	StatusEmpty     Status = "empty"
	StatusSkipped   Status = "skipped"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// Outcome is the per-file result of a run.
type Outcome struct {
	File     LogFile
	Status   Status
	Entries  int
	Skipped  int
	Cached   bool
	Err      error
	Duration time.Duration
}

// Cache stores parse results keyed by content digest.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// Recorder receives run statistics.
type Recorder interface {
	FileProcessed(module string, status Status, d time.Duration)
	RecordsSkipped(module string, n int)
	CacheLookup(module string, hit bool)
	DatasetSamples(module string, name dataset.Name, n int)
	RunFinished(module string, ok bool)
}

// Result is the outcome of a run.
type Result struct {
	RunID     uuid.UUID
	Module    string
	Assembler *dataset.Assembler
	Outcomes  []Outcome
	Started   time.Time
	Finished  time.Time
}

// Count returns the number of files with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Runner drives one Parser over a batch.
type Runner struct {
	parser  parsing.Parser
	logger  logging.Logger
	cache   Cache
	metrics Recorder
	ignore  []string
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache enables the parse-result cache.
func WithCache(c Cache) Option { return func(r *Runner) { r.cache = c } }

// WithMetrics enables metrics recording.
func WithMetrics(m Recorder) Option { return func(r *Runner) { r.metrics = m } }

// WithIgnoreSamples drops entries whose sample id, sub-samples included,
// matches one of the path.Match patterns.
func WithIgnoreSamples(patterns ...string) Option {
	return func(r *Runner) { r.ignore = append(r.ignore, patterns...) }
}

// NewRunner returns a Runner for parser.
func NewRunner(parser parsing.Parser, logger logging.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	r := &Runner{
		parser: parser,
		logger: logger.Named(parser.Name()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Module returns the parser's module name.
func (r *Runner) Module() string { return r.parser.Name() }

// Run processes files in order.  It returns the assembled result together
// with a NoSamples error when nothing was committed; cancellation of ctx
// stops the batch between files.
func (r *Runner) Run(ctx context.Context, files []LogFile) (*Result, error) {
	res := &Result{
		RunID:     uuid.New(),
		Module:    r.parser.Name(),
		Assembler: dataset.NewAssembler(r.parser.Name(), r.parser.Datasets()...),
		Started:   r.now(),
	}
	logger := r.logger.With(logging.String("run_id", res.RunID.String()))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			res.Finished = r.now()
			return res, errors.Wrap(err, errors.ErrCodeTimeout, "run cancelled")
		}
		out := r.processFile(ctx, res.Assembler, f, logger)
		res.Outcomes = append(res.Outcomes, out)
		r.report(out, logger)
	}
	res.Finished = r.now()

	if r.metrics != nil {
		for _, name := range res.Assembler.Names() {
			r.metrics.DatasetSamples(res.Module, name, res.Assembler.Dataset(name).Len())
		}
	}

	if res.Assembler.SampleCount() == 0 {
		if r.metrics != nil {
			r.metrics.RunFinished(res.Module, false)
		}
		return res, errors.New(errors.ErrCodeNoSamples, "").
			WithDetailf("module=%s files=%d", res.Module, len(files))
	}
	if r.metrics != nil {
		r.metrics.RunFinished(res.Module, true)
	}
	logger.Info("run finished",
		logging.Int("samples", res.Assembler.SampleCount()),
		logging.Int("files", len(files)),
		logging.Int("committed", res.Count(StatusCommitted)),
		logging.Int("rejected", res.Count(StatusRejected)),
		logging.Int("failed", res.Count(StatusFailed)),
		logging.Duration("elapsed", res.Finished.Sub(res.Started)))
	return res, nil
}

func (r *Runner) processFile(ctx context.Context, asm *dataset.Assembler, f LogFile, logger logging.Logger) (out Outcome) {
	start := r.now()
	out.File = f
	defer func() { out.Duration = r.now().Sub(start) }()

	if f.SampleHint == "" {
		out.Status = StatusSkipped
		return out
	}
	flog := logger.With(logging.Sample(f.SampleHint), logging.Path(f.Path))

	result, cached, err := r.parse(ctx, f, flog)
	out.Cached = cached
	if err != nil {
		out.Err = err
		out.Status = classify(err)
		return out
	}
	out.Skipped = result.SkippedRecords()

	entries := r.filter(result.Entries(f.SampleHint), flog)
	if len(entries) == 0 {
		out.Status = StatusEmpty
		return out
	}
	if err := asm.CommitAll(entries); err != nil {
		out.Err = err
		out.Status = classify(err)
		return out
	}
	out.Entries = len(entries)
	out.Status = StatusCommitted
	return out
}

func classify(err error) Status {
	if errors.IsInputError(err) {
		return StatusRejected
	}
	return StatusFailed
}

func (r *Runner) filter(entries []dataset.Entry, logger logging.Logger) []dataset.Entry {
	if len(r.ignore) == 0 {
		return entries
	}
	kept := entries[:0:0]
	for _, e := range entries {
		if r.ignored(e.SampleID) {
			logger.Debug("sample ignored", logging.String("entry", e.SampleID), logging.String("dataset", string(e.Dataset)))
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func (r *Runner) ignored(sampleID string) bool {
	for _, p := range r.ignore {
		if ok, _ := path.Match(p, sampleID); ok {
			return true
		}
	}
	return false
}

// parse returns the parse result of f, consulting the cache when one is set.
func (r *Runner) parse(ctx context.Context, f LogFile, logger logging.Logger) (parsing.Result, bool, error) {
	if f.Open == nil {
		return nil, false, errors.New(errors.ErrCodeLogReadFailed, "no opener for log file")
	}
	var key string
	if r.cache != nil {
		digest, err := r.digest(f)
		if err != nil {
			return nil, false, err
		}
		key = "parse:" + r.parser.Name() + ":" + cacheSchema + ":" + digest
		cached := r.parser.NewResult()
		hit, err := r.cache.Get(ctx, key, cached)
		if err != nil {
			logger.Warn("parse cache lookup failed", logging.Err(err))
		}
		if r.metrics != nil {
			r.metrics.CacheLookup(r.parser.Name(), hit)
		}
		if hit {
			logger.Debug("parse cache hit")
			return cached, true, nil
		}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeLogReadFailed, "open log")
	}
	defer rc.Close()

	result, err := r.parser.Parse(rc, logger)
	if err != nil {
		if errors.GetCode(err) == errors.CodeUnknown {
			err = errors.Wrap(err, errors.ErrCodeInternal, "parse log")
		}
		return nil, false, err
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, result); err != nil {
			logger.Warn("parse cache store failed", logging.Err(err))
		}
	}
	return result, false, nil
}

func (r *Runner) digest(f LogFile) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeLogReadFailed, "open log")
	}
	defer rc.Close()
	h := sha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeLogReadFailed, "hash log")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (r *Runner) report(o Outcome, logger logging.Logger) {
	if r.metrics != nil {
		r.metrics.FileProcessed(r.parser.Name(), o.Status, o.Duration)
		if o.Skipped > 0 {
			r.metrics.RecordsSkipped(r.parser.Name(), o.Skipped)
		}
	}
	fields := []logging.Field{logging.Sample(o.File.SampleHint), logging.Path(o.File.Path)}
	switch o.Status {
	case StatusCommitted:
		logger.Info("sample committed", append(fields,
			logging.Int("entries", o.Entries),
			logging.Int("skipped_records", o.Skipped),
			logging.Bool("cached", o.Cached))...)
	case StatusEmpty:
		logger.Info("no data found", fields...)
	case StatusSkipped:
		logger.Debug("file skipped, no sample name", logging.Path(o.File.Path))
	case StatusRejected:
		logger.Error("log file rejected", append(fields,
			logging.String("code", errors.GetCode(o.Err).String()), logging.Err(o.Err))...)
	case StatusFailed:
		logger.Error("log file failed", append(fields,
			logging.String("code", errors.GetCode(o.Err).String()), logging.Err(o.Err))...)
	}
}

//Personal.AI order the ending
