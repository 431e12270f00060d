// Package dataset holds the named top-level tables produced by a parsing run.
// A Dataset maps sample identifiers to per-sample records and keeps the order
// in which samples were committed, which is the default display order of every
// table and chart downstream.
package dataset

import (
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// Name identifies one top-level dataset.
type Name string

// Dataset names emitted by the parsing modules.
const (
	Mulliken Name = "mulliken"
	Bonds    Name = "bonds"
	Angles   Name = "angles"
	Torsions Name = "torsions"

	Five  Name = "five"
	Six   Name = "six"
	Seven Name = "seven"
	Eight Name = "eight"
	Macro Name = "macro"

	FiveNumeric  Name = "five_numeric"
	SixNumeric   Name = "six_numeric"
	SevenNumeric Name = "seven_numeric"
	EightNumeric Name = "eight_numeric"

	All     Name = "all"
	AllJSON Name = "all_json"
)

func (n Name) String() string { return string(n) }

// Record is a single sample's contribution to a dataset.  Fields lists the
// column names the record populates, in the record's own order.
type Record interface {
	Len() int
	Fields() []string
	Cell(field string) (string, bool)
}

// Dataset is an insertion-ordered mapping sample id -> Record.  Keys are
// unique; a second insert for the same sample fails.
type Dataset struct {
	name    Name
	entries Ordered[Record]
}

// New returns an empty Dataset.
func New(name Name) *Dataset {
	return &Dataset{name: name}
}

// Name returns the dataset name.
func (d *Dataset) Name() Name { return d.name }

// Len returns the number of samples in the dataset.
func (d *Dataset) Len() int { return d.entries.Len() }

// SampleIDs returns the sample identifiers in commit order.
func (d *Dataset) SampleIDs() []string { return d.entries.Keys() }

// Get returns the record committed for sampleID.
func (d *Dataset) Get(sampleID string) (Record, bool) { return d.entries.Get(sampleID) }

// Has reports whether sampleID has been committed.
func (d *Dataset) Has(sampleID string) bool { return d.entries.Has(sampleID) }

// Range iterates the samples in commit order until fn returns false.
func (d *Dataset) Range(fn func(sampleID string, r Record) bool) { d.entries.Range(fn) }

// Insert adds a record for sampleID.
func (d *Dataset) Insert(sampleID string, r Record) error {
	if err := d.check(sampleID, r); err != nil {
		return err
	}
	d.entries.Set(sampleID, r)
	return nil
}

func (d *Dataset) check(sampleID string, r Record) error {
	if sampleID == "" {
		return errors.NewValidationError("sample_id", "sample id must not be empty")
	}
	if r == nil || r.Len() == 0 {
		return errors.NewValidationError("record", "empty record for "+sampleID+" in "+string(d.name))
	}
	if f, ok := r.(interface{ Finite() bool }); ok && !f.Finite() {
		return errors.New(errors.ErrCodeMalformedRecord, "record holds a non-finite value").
			WithDetailf("dataset=%s sample=%s", d.name, sampleID)
	}
	if d.entries.Has(sampleID) {
		return errors.New(errors.ErrCodeDuplicateSample, "").
			WithDetailf("dataset=%s sample=%s", d.name, sampleID)
	}
	return nil
}

// Fields returns the union of field names across all samples, in first-seen
// order.  Samples lacking a field render it as a gap.
func (d *Dataset) Fields() []string {
	var seen Ordered[struct{}]
	d.entries.Range(func(_ string, r Record) bool {
		for _, f := range r.Fields() {
			seen.Insert(f, struct{}{})
		}
		return true
	})
	return seen.Keys()
}

// MarshalJSON encodes the dataset as {sample: record} in commit order.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	return d.entries.MarshalJSON()
}

// MarshalYAML encodes the dataset as an ordered mapping.
func (d *Dataset) MarshalYAML() (interface{}, error) {
	return d.entries.MarshalYAML()
}

//Personal.AI order the ending
