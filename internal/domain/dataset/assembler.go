package dataset

import (
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// Entry is one pending commit: a record destined for a dataset under a
// sample id.
type Entry struct {
	Dataset  Name
	SampleID string
	Record   Record
}

// Assembler merges per-file results into the datasets of one module.
// Commits are append-only; the policy for a repeated sample id is rejection.
type Assembler struct {
	module  string
	order   []Name
	sets    map[Name]*Dataset
	samples Ordered[struct{}]
}

// NewAssembler returns an Assembler owning one empty Dataset per name, in the
// given order.
func NewAssembler(module string, names ...Name) *Assembler {
	a := &Assembler{
		module: module,
		sets:   make(map[Name]*Dataset, len(names)),
	}
	for _, n := range names {
		if _, dup := a.sets[n]; dup {
			continue
		}
		a.order = append(a.order, n)
		a.sets[n] = New(n)
	}
	return a
}

// Module returns the module name the assembler was created for.
func (a *Assembler) Module() string { return a.module }

// Commit inserts a single record.
func (a *Assembler) Commit(name Name, sampleID string, r Record) error {
	return a.CommitAll([]Entry{{Dataset: name, SampleID: sampleID, Record: r}})
}

// CommitAll validates every entry before inserting any of them, so a file
// contributes either all of its entries or none.
func (a *Assembler) CommitAll(entries []Entry) error {
	pending := make(map[Name]map[string]bool)
	for _, e := range entries {
		ds, ok := a.sets[e.Dataset]
		if !ok {
			return errors.Newf(errors.CodeInvalidParam, "dataset %q is not declared by module %s", e.Dataset, a.module)
		}
		if err := ds.check(e.SampleID, e.Record); err != nil {
			return err
		}
		if pending[e.Dataset][e.SampleID] {
			return errors.New(errors.ErrCodeDuplicateSample, "").
				WithDetailf("dataset=%s sample=%s", e.Dataset, e.SampleID)
		}
		if pending[e.Dataset] == nil {
			pending[e.Dataset] = make(map[string]bool)
		}
		pending[e.Dataset][e.SampleID] = true
	}
	for _, e := range entries {
		a.sets[e.Dataset].entries.Set(e.SampleID, e.Record)
		a.samples.Insert(e.SampleID, struct{}{})
	}
	return nil
}

// Dataset returns the named dataset, or nil when the module does not declare it.
func (a *Assembler) Dataset(name Name) *Dataset { return a.sets[name] }

// Names returns the declared dataset names in order.
func (a *Assembler) Names() []Name {
	out := make([]Name, len(a.order))
	copy(out, a.order)
	return out
}

// Datasets returns the non-empty datasets in declaration order.
func (a *Assembler) Datasets() []*Dataset {
	var out []*Dataset
	for _, n := range a.order {
		if ds := a.sets[n]; ds.Len() > 0 {
			out = append(out, ds)
		}
	}
	return out
}

// SampleCount returns the number of distinct sample ids committed across all
// datasets, sub-samples included.
func (a *Assembler) SampleCount() int { return a.samples.Len() }

// SampleIDs returns every committed sample id in first-commit order.
func (a *Assembler) SampleIDs() []string { return a.samples.Keys() }

//Personal.AI order the ending
