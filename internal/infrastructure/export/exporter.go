package export

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// Recorder receives per-write timings.
type Recorder interface {
	ExportObserved(sink string, d time.Duration, err error)
}

// Exporter writes every dataset to every sink concurrently.
type Exporter struct {
	sinks    []Sink
	logger   logging.Logger
	metrics  Recorder
	parallel int
}

type ExporterOption func(*Exporter)

func WithRecorder(r Recorder) ExporterOption { return func(e *Exporter) { e.metrics = r } }

// WithParallelism bounds the number of concurrent writes.  Zero or less means
// unbounded.
func WithParallelism(n int) ExporterOption { return func(e *Exporter) { e.parallel = n } }

func NewExporter(logger logging.Logger, sinks []Sink, opts ...ExporterOption) *Exporter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &Exporter{sinks: sinks, logger: logger.Named("export"), parallel: 4}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFileExporter builds one file sink per format.
func NewFileExporter(logger logging.Logger, dir, prefix string, formats []Format, opts ...ExporterOption) (*Exporter, error) {
	sinks := make([]Sink, 0, len(formats))
	for _, f := range formats {
		s, err := NewSink(f, dir, prefix)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return NewExporter(logger, sinks, opts...), nil
}

// Export writes the non-empty datasets of a.  Paths are returned in
// dataset-then-sink order regardless of completion order.  The first failure
// cancels the remaining writes.
func (e *Exporter) Export(ctx context.Context, a *dataset.Assembler) ([]string, error) {
	datasets := a.Datasets()
	paths := make([]string, len(datasets)*len(e.sinks))

	g, gCtx := errgroup.WithContext(ctx)
	if e.parallel > 0 {
		g.SetLimit(e.parallel)
	}
	for i, ds := range datasets {
		for j, sink := range e.sinks {
			slot := i*len(e.sinks) + j
			ds, sink := ds, sink
			g.Go(func() error {
				start := time.Now()
				p, err := sink.Write(gCtx, a.Module(), ds)
				if e.metrics != nil {
					e.metrics.ExportObserved(string(sink.Format()), time.Since(start), err)
				}
				if err != nil {
					if errors.GetCode(err) == errors.CodeUnknown {
						err = errors.Wrap(err, errors.ErrCodeExportFailed, "export dataset")
					}
					return err
				}
				paths[slot] = p
				e.logger.Debug("dataset written",
					logging.Module(a.Module()),
					logging.String("dataset", string(ds.Name())),
					logging.Path(p))
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.Info("datasets exported",
		logging.Module(a.Module()),
		logging.Int("datasets", len(datasets)),
		logging.Int("files", len(paths)))
	return paths, nil
}

//Personal.AI order the ending
