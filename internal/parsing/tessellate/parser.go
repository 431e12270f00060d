package tessellate

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/ChemLog-QC/internal/domain/conformer"
	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/internal/parsing"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// Module names.
const (
	ModuleName       = "tessellate"
	LegacyModuleName = "tesselate"
)

// labelCutset is trimmed from both ends of a plain-text conformer token.
const labelCutset = `'"(),`

// Result is the aggregated content of one pucker log.
type Result struct {
	Header  Header                            `json:"header"`
	Summary *conformer.Summary                `json:"summary"`
	Raw     *dataset.Ordered[json.RawMessage] `json:"raw,omitempty"`
	Skipped int                               `json:"skipped"`
}

// Entries returns the conformer tables, sub-samples and series of the
// sample, followed by the raw records when the log was JSON.
func (r *Result) Entries(sampleID string) []dataset.Entry {
	var out []dataset.Entry
	if r.Summary != nil {
		out = r.Summary.Entries(sampleID)
	}
	if r.Raw != nil && r.Raw.Len() > 0 {
		out = append(out, dataset.Entry{Dataset: dataset.AllJSON, SampleID: sampleID, Record: r.Raw})
	}
	return out
}

// SkippedRecords implements parsing.Result.
func (r *Result) SkippedRecords() int { return r.Skipped }

// TextLabel extracts the conformer label of a plain-text record line: the
// second whitespace token with quotes, parentheses and commas trimmed.  n is
// the number of tokens on the line.
func TextLabel(line string) (label string, n int) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", len(fields)
	}
	return strings.Trim(fields[1], labelCutset), len(fields)
}

// Parser parses header-led Tessellate logs.
type Parser struct{}

// NewParser returns a Parser.
func NewParser() *Parser { return &Parser{} }

// Name implements parsing.Parser.
func (p *Parser) Name() string { return ModuleName }

// Datasets implements parsing.Parser.
func (p *Parser) Datasets() []dataset.Name {
	return []dataset.Name{
		dataset.All,
		dataset.Five, dataset.Six, dataset.Seven, dataset.Eight, dataset.Macro,
		dataset.FiveNumeric, dataset.SixNumeric, dataset.SevenNumeric, dataset.EightNumeric,
		dataset.AllJSON,
	}
}

// NewResult implements parsing.Parser.
func (p *Parser) NewResult() parsing.Result { return &Result{} }

// Parse reads the header line and dispatches on the declared format.  An
// unrecognised header rejects the whole file.
func (p *Parser) Parse(r io.Reader, logger logging.Logger) (parsing.Result, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.ErrCodeLogReadFailed, "read header")
	}
	if strings.TrimSpace(first) == "" {
		return nil, errors.New(errors.ErrCodeUnknownFormat, "missing header line")
	}
	h, err := DetectHeader(first)
	if err != nil {
		return nil, err
	}
	logger.Debug("header detected",
		logging.String("version", h.Version),
		logging.String("format", string(h.Format)),
		logging.Bool("stratified", h.Stratified))

	res := &Result{Header: h}
	agg := conformer.NewAggregator(h.Stratified)
	switch h.Format {
	case FormatText:
		if err := readText(br, agg, res, logger, 2); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := p.readJSON(br, agg, res, logger); err != nil {
			return nil, err
		}
	}
	res.Summary = agg.Snapshot()
	return res, nil
}

func (p *Parser) readJSON(r io.Reader, agg *conformer.Aggregator, res *Result, logger logging.Logger) error {
	raw := dataset.NewOrdered[json.RawMessage]()
	err := ReadRecords(r, func(rec Record, recErr error) error {
		if recErr != nil {
			res.Skipped++
			logger.Warn("record skipped",
				logging.Int("index", rec.Index),
				logging.String("code", errors.GetCode(recErr).String()),
				logging.Err(recErr))
			return nil
		}
		if agg.Stratified() && rec.PDBID == "" {
			logger.Warn("record has no structure id, not stratified", logging.Int("index", rec.Index))
		}
		if err := agg.Observe(conformer.Observation{
			Conformer:   rec.Conformer,
			Ring:        rec.Ring,
			Numeric:     rec.Numeric,
			StructureID: rec.PDBID,
		}); err != nil {
			res.Skipped++
			logger.Warn("record skipped", logging.Int("index", rec.Index), logging.Err(err))
			return nil
		}
		raw.Set(strconv.Itoa(rec.Index), rec.Raw)
		return nil
	})
	if err != nil {
		return err
	}
	res.Raw = raw
	return nil
}

// readText counts the conformer label of every line.  firstLine is the
// 1-based number of the first line r yields, for log messages only.
func readText(r *bufio.Reader, agg *conformer.Aggregator, res *Result, logger logging.Logger, firstLine int) error {
	for n := firstLine; ; n++ {
		line, err := r.ReadString('\n')
		if line != "" {
			observeTextLine(line, n, agg, res, logger)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeLogReadFailed, "read records")
		}
	}
}

func observeTextLine(line string, n int, agg *conformer.Aggregator, res *Result, logger logging.Logger) {
	label, fields := TextLabel(line)
	switch {
	case fields == 0:
		return
	case label == "":
		res.Skipped++
		logger.Warn("record line has no conformer label",
			logging.Int("line", n),
			logging.Int("fields", fields))
		return
	}
	logger.Debug("conformer", logging.String("label", label), logging.Int("line", n))
	agg.ObserveLabel(label)
}

// LegacyParser parses the headerless plain-text logs of older Tessellate
// releases.  Every line is a record.
type LegacyParser struct{}

// NewLegacyParser returns a LegacyParser.
func NewLegacyParser() *LegacyParser { return &LegacyParser{} }

// Name implements parsing.Parser.
func (p *LegacyParser) Name() string { return LegacyModuleName }

// Datasets implements parsing.Parser.
func (p *LegacyParser) Datasets() []dataset.Name { return []dataset.Name{dataset.All} }

// NewResult implements parsing.Parser.
func (p *LegacyParser) NewResult() parsing.Result { return &Result{} }

// Parse counts conformer labels line by line.
func (p *LegacyParser) Parse(r io.Reader, logger logging.Logger) (parsing.Result, error) {
	res := &Result{Header: Header{Format: FormatText}}
	agg := conformer.NewAggregator(false)
	if err := readText(bufio.NewReader(r), agg, res, logger, 1); err != nil {
		return nil, err
	}
	res.Summary = agg.Snapshot()
	return res, nil
}

var (
	_ parsing.Parser = (*Parser)(nil)
	_ parsing.Parser = (*LegacyParser)(nil)
)

//Personal.AI order the ending
