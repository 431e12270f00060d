// Package reporting describes how the assembled datasets are to be rendered.
// It never draws anything: each Section pairs a dataset with the column
// headers and plot configuration a renderer needs, and the whole Report is
// serialised next to the data files for an external renderer to consume.
package reporting

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// ============================================================================
// Enums
// ============================================================================

// PlotKind names the visualisation of a section.
type PlotKind string

const (
	PlotTable    PlotKind = "table"
	PlotBeeswarm PlotKind = "beeswarm"
	PlotBarGraph PlotKind = "bargraph"
	PlotScatter  PlotKind = "scatter"
)

// ============================================================================
// DTOs
// ============================================================================

// HeaderSpec describes one column of a table or beeswarm.
type HeaderSpec struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Suffix      string  `json:"suffix"`
	Scale       string  `json:"scale"`
	Floor       float64 `json:"floor"`
	Ceiling     float64 `json:"ceiling"`
	Format      string  `json:"format"`
	SharedKey   string  `json:"shared_key"`
}

// PlotConfig identifies a plot and labels its axes.
type PlotConfig struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Namespace string `json:"namespace,omitempty"`
	XLab      string `json:"xlab,omitempty"`
	YLab      string `json:"ylab,omitempty"`
}

// Section is one rendered block of the report.
type Section struct {
	Name    string                       `json:"name"`
	Anchor  string                       `json:"anchor"`
	Plot    PlotKind                     `json:"plot"`
	Dataset dataset.Name                 `json:"dataset"`
	Headers *dataset.Ordered[HeaderSpec] `json:"headers,omitempty"`
	Config  PlotConfig                   `json:"config"`
}

// ModuleReport groups the sections of one parsing module.
type ModuleReport struct {
	Module   string    `json:"module"`
	Name     string    `json:"name"`
	Anchor   string    `json:"anchor"`
	Info     string    `json:"info"`
	Samples  int       `json:"samples"`
	Sections []Section `json:"sections"`
}

// Report is the full description handed to the renderer.
type Report struct {
	RunID       uuid.UUID      `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Modules     []ModuleReport `json:"modules"`
}

// SectionCount returns the number of sections across all modules.
func (r *Report) SectionCount() int {
	n := 0
	for _, m := range r.Modules {
		n += len(m.Sections)
	}
	return n
}

// ============================================================================
// Service
// ============================================================================

// Input is one module's assembled datasets.
type Input struct {
	Module    string
	Assembler *dataset.Assembler
}

// Service builds report descriptions.
type Service interface {
	Build(ctx context.Context, runID uuid.UUID, inputs ...Input) (*Report, error)
	Encode(w io.Writer, r *Report) error
}

type service struct {
	layouts map[string]ModuleLayout
	logger  logging.Logger
	now     func() time.Time
}

// NewService returns a Service knowing the built-in module layouts.
func NewService(logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &service{
		layouts: make(map[string]ModuleLayout),
		logger:  logger.Named("reporting"),
		now:     time.Now,
	}
	for _, l := range DefaultLayouts() {
		s.layouts[l.Module] = l
	}
	return s
}

// Build lays out a section for every non-empty dataset of every input.
// A report with no sections at all is an error.
func (s *service) Build(ctx context.Context, runID uuid.UUID, inputs ...Input) (*Report, error) {
	rep := &Report{RunID: runID, GeneratedAt: s.now().UTC()}
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReportBuildFail, "report build cancelled")
		}
		if in.Assembler == nil {
			continue
		}
		layout, ok := s.layouts[in.Module]
		if !ok {
			return nil, errors.New(errors.ErrCodeReportBuildFail, "no report layout for module").
				WithDetail("module=" + in.Module)
		}
		mr := layout.Render(in.Assembler)
		s.logger.Debug("module laid out",
			logging.Module(in.Module),
			logging.Int("sections", len(mr.Sections)))
		if len(mr.Sections) > 0 {
			rep.Modules = append(rep.Modules, mr)
		}
	}
	if rep.SectionCount() == 0 {
		return nil, errors.New(errors.ErrCodeReportEmpty, "")
	}
	return rep, nil
}

// Encode writes r as indented JSON.
func (s *service) Encode(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode report")
	}
	return nil
}

//Personal.AI order the ending
