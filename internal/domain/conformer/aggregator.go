package conformer

import (
	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// Observation is one classified ring occurrence read from a structured log.
type Observation struct {
	Conformer   string
	Ring        RingSize
	Numeric     float64
	StructureID string
}

type ringState struct {
	counts      *Counts
	series      *Series
	byStructure dataset.Ordered[*Counts]
}

// Aggregator owns the accumulation state of one sample.  Build a fresh
// Aggregator for every sample; it is not safe for concurrent use.
type Aggregator struct {
	stratified bool
	all        *Counts
	rings      map[RingSize]*ringState
}

// NewAggregator returns an empty Aggregator.  When stratified is set,
// observations carrying a structure id are also counted per structure.
func NewAggregator(stratified bool) *Aggregator {
	a := &Aggregator{
		stratified: stratified,
		all:        NewCounts(),
		rings:      make(map[RingSize]*ringState, len(RingSizes)),
	}
	for _, r := range RingSizes {
		a.rings[r] = &ringState{counts: NewCounts(), series: NewSeries()}
	}
	return a
}

// Stratified reports whether per-structure counting is on.
func (a *Aggregator) Stratified() bool { return a.stratified }

// Observe folds one observation into the combined count, the ring count, the
// ring series and, in stratified mode, the per-structure count.  An invalid
// observation changes nothing.
func (a *Aggregator) Observe(o Observation) error {
	if o.Conformer == "" {
		return errors.New(errors.ErrCodeMalformedRecord, "conformer label is empty")
	}
	rs, ok := a.rings[o.Ring]
	if !ok {
		return errors.New(errors.ErrCodeUnknownRingSize, "").WithDetail("ringsize=" + o.Ring.String())
	}
	rs.series.Append(o.Conformer, o.Numeric)
	a.all.Inc(o.Conformer)
	rs.counts.Inc(o.Conformer)
	if a.stratified && o.StructureID != "" {
		c, ok := rs.byStructure.Get(o.StructureID)
		if !ok {
			c = NewCounts()
			rs.byStructure.Set(o.StructureID, c)
		}
		c.Inc(o.Conformer)
	}
	return nil
}

// ObserveLabel counts a label that carries no ring size, as found in
// plain-text logs.  Only the combined count changes.
func (a *Aggregator) ObserveLabel(label string) {
	if label == "" {
		return
	}
	a.all.Inc(label)
}

// Snapshot returns an independent copy of the accumulated state.
func (a *Aggregator) Snapshot() *Summary {
	s := &Summary{Stratified: a.stratified, All: a.all.Clone()}
	for _, r := range RingSizes {
		rs := a.rings[r]
		out := RingSummary{
			Ring:        r,
			Counts:      rs.counts.Clone(),
			Series:      rs.series.Clone(),
			ByStructure: dataset.NewOrdered[*Counts](),
		}
		rs.byStructure.Range(func(id string, c *Counts) bool {
			out.ByStructure.Set(id, c.Clone())
			return true
		})
		s.Rings = append(s.Rings, out)
	}
	return s
}

// RingSummary is the accumulated state of one ring size.
type RingSummary struct {
	Ring        RingSize                  `json:"ring"`
	Counts      *Counts                   `json:"counts"`
	Series      *Series                   `json:"series"`
	ByStructure *dataset.Ordered[*Counts] `json:"by_structure,omitempty"`
}

// Summary is the result of aggregating one sample.
type Summary struct {
	Stratified bool          `json:"stratified"`
	All        *Counts       `json:"all"`
	Rings      []RingSummary `json:"rings"`
}

// Ring returns the summary of ring r.
func (s *Summary) Ring(r RingSize) (RingSummary, bool) {
	for _, rs := range s.Rings {
		if rs.Ring == r {
			return rs, true
		}
	}
	return RingSummary{}, false
}

// SubSampleID joins a sample id and a structure id.
func SubSampleID(sampleID, structureID string) string {
	return sampleID + "_" + structureID
}

// Entries converts the summary into dataset entries for sampleID.  Empty
// tables are omitted.  Per-structure entries follow the parent sample's ring
// entry so they sort right after it.
func (s *Summary) Entries(sampleID string) []dataset.Entry {
	var out []dataset.Entry
	if s.All != nil && s.All.Len() > 0 {
		out = append(out, dataset.Entry{Dataset: dataset.All, SampleID: sampleID, Record: s.All})
	}
	for _, rs := range s.Rings {
		if rs.Counts != nil && rs.Counts.Len() > 0 {
			out = append(out, dataset.Entry{Dataset: rs.Ring.CountsDataset(), SampleID: sampleID, Record: rs.Counts})
		}
		if s.Stratified && rs.ByStructure != nil {
			rs.ByStructure.Range(func(id string, c *Counts) bool {
				if c.Len() > 0 {
					out = append(out, dataset.Entry{
						Dataset:  rs.Ring.CountsDataset(),
						SampleID: SubSampleID(sampleID, id),
						Record:   c,
					})
				}
				return true
			})
		}
		if name, ok := rs.Ring.SeriesDataset(); ok && rs.Series != nil && rs.Series.Len() > 0 {
			out = append(out, dataset.Entry{Dataset: name, SampleID: sampleID, Record: rs.Series})
		}
	}
	return out
}

//Personal.AI order the ending
