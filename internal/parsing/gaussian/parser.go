// Package gaussian extracts Mulliken charges and optimized geometry
// parameters from Gaussian output.  Only the last block of each kind is used:
// Gaussian reprints both sections during an optimisation and the final
// print is the converged state.
package gaussian

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/domain/geometry"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/internal/parsing"
	"github.com/turtacn/ChemLog-QC/internal/parsing/textblock"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// ModuleName is the name under which the parser registers its datasets.
const ModuleName = "qm"

// Result holds the values extracted from one log.
type Result struct {
	Charges  *dataset.Ordered[float64] `json:"charges,omitempty"`
	Bonds    *geometry.Measurements    `json:"bonds,omitempty"`
	Angles   *geometry.Measurements    `json:"angles,omitempty"`
	Torsions *geometry.Measurements    `json:"torsions,omitempty"`
	Skipped  int                       `json:"skipped"`
}

// Entries returns the non-empty tables of the result.
func (r *Result) Entries(sampleID string) []dataset.Entry {
	var out []dataset.Entry
	add := func(name dataset.Name, rec dataset.Record, n int) {
		if n > 0 {
			out = append(out, dataset.Entry{Dataset: name, SampleID: sampleID, Record: rec})
		}
	}
	if r.Charges != nil {
		add(dataset.Mulliken, r.Charges, r.Charges.Len())
	}
	if r.Bonds != nil {
		add(dataset.Bonds, r.Bonds, r.Bonds.Len())
	}
	if r.Angles != nil {
		add(dataset.Angles, r.Angles, r.Angles.Len())
	}
	if r.Torsions != nil {
		add(dataset.Torsions, r.Torsions, r.Torsions.Len())
	}
	return out
}

// SkippedRecords implements parsing.Result.
func (r *Result) SkippedRecords() int { return r.Skipped }

// Parser parses Gaussian logs.
type Parser struct {
	mulliken textblock.Layout
	params   textblock.Layout
}

// NewParser returns a Parser using the standard Gaussian section layouts.
func NewParser() *Parser {
	return &Parser{
		mulliken: textblock.MullikenLayout,
		params:   textblock.OptimizedParametersLayout,
	}
}

// Name implements parsing.Parser.
func (p *Parser) Name() string { return ModuleName }

// Datasets implements parsing.Parser.
func (p *Parser) Datasets() []dataset.Name {
	return []dataset.Name{dataset.Mulliken, dataset.Bonds, dataset.Angles, dataset.Torsions}
}

// NewResult implements parsing.Parser.
func (p *Parser) NewResult() parsing.Result { return &Result{} }

// Parse scans the log once for both sections.
func (p *Parser) Parse(r io.Reader, logger logging.Logger) (parsing.Result, error) {
	matches, err := textblock.ScanLastBlocks(r, p.mulliken.Markers(), p.params.Markers())
	if err != nil {
		return nil, err
	}
	res := &Result{}

	if m := matches[0]; m.Found {
		res.Charges = p.charges(m.Text, res, logger)
	} else {
		logger.Debug("section absent", logging.String("section", p.mulliken.Name))
	}

	if m := matches[1]; m.Found {
		set := p.geometry(m.Text, res, logger)
		res.Bonds = set.Get(geometry.Bond)
		res.Angles = set.Get(geometry.Angle)
		res.Torsions = set.Get(geometry.Torsion)
	} else {
		logger.Debug("section absent", logging.String("section", p.params.Name))
	}
	return res, nil
}

func (p *Parser) charges(block string, res *Result, logger logging.Logger) *dataset.Ordered[float64] {
	out := dataset.NewOrdered[float64]()
	tokens, skipped := textblock.Tokenize(block, p.mulliken)
	res.Skipped += warnSkipped(logger, p.mulliken.Name, skipped)
	for _, tk := range tokens {
		v, err := parseValue(tk.Value)
		if err != nil {
			res.Skipped++
			logger.Warn("unparseable charge",
				logging.String("atom", tk.Label),
				logging.String("value", tk.Value),
				logging.Int("line", tk.Line))
			continue
		}
		out.Set(tk.Label, v)
	}
	return out
}

func (p *Parser) geometry(block string, res *Result, logger logging.Logger) *geometry.Set {
	set := geometry.NewSet()
	tokens, skipped := textblock.Tokenize(block, p.params)
	res.Skipped += warnSkipped(logger, p.params.Name, skipped)
	for _, tk := range tokens {
		v, err := parseValue(tk.Value)
		if err != nil {
			res.Skipped++
			logger.Warn("unparseable parameter value",
				logging.String("parameter", tk.Label),
				logging.String("value", tk.Value),
				logging.Int("line", tk.Line))
			continue
		}
		if c := set.Add(tk.Label, v); c == geometry.Unknown {
			res.Skipped++
			logger.Warn(errors.DefaultMessageForCode(errors.ErrCodeUnknownCategory),
				logging.String("parameter", tk.Label),
				logging.Int("line", tk.Line))
		}
	}
	return set
}

func warnSkipped(logger logging.Logger, section string, skipped []textblock.Skipped) int {
	for _, s := range skipped {
		logger.Warn("record line has too few fields",
			logging.String("section", section),
			logging.Int("line", s.Line),
			logging.Int("fields", s.Fields))
	}
	return len(skipped)
}

// parseValue parses a numeric field.  Fortran double-precision exponents
// (1.5D-03) are accepted; NaN and infinities are not.
func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && strings.ContainsAny(s, "dD") {
		if v2, err2 := strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(s), 64); err2 == nil {
			v, err = v2, nil
		}
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeMalformedRecord, "not a number").WithDetail("value=" + s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeMalformedRecord, "non-finite value").WithDetail("value=" + s)
	}
	return v, nil
}

var _ parsing.Parser = (*Parser)(nil)

//Personal.AI order the ending
