package reporting

import (
	"strconv"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
)

const (
	defaultScale  = "Spectral"
	defaultFormat = "{:,.2f}"
	countFormat   = "{:,.0f}"
)

// SectionFunc lays out the sections of one dataset.  It is only called for
// non-empty datasets.
type SectionFunc func(ds *dataset.Dataset) []Section

// ModuleLayout is the report layout of one parsing module.
type ModuleLayout struct {
	Module   string
	Name     string
	Anchor   string
	Info     string
	Datasets []dataset.Name
	Sections map[dataset.Name]SectionFunc
}

// Render lays out every non-empty dataset of a, in the layout's order.
func (l ModuleLayout) Render(a *dataset.Assembler) ModuleReport {
	mr := ModuleReport{
		Module:  l.Module,
		Name:    l.Name,
		Anchor:  l.Anchor,
		Info:    l.Info,
		Samples: a.SampleCount(),
	}
	for _, name := range l.Datasets {
		ds := a.Dataset(name)
		fn := l.Sections[name]
		if ds == nil || ds.Len() == 0 || fn == nil {
			continue
		}
		mr.Sections = append(mr.Sections, fn(ds)...)
	}
	return mr
}

// Headers builds one HeaderSpec per field, taking the union of fields across
// all samples in first-seen order.
func Headers(ds *dataset.Dataset, tmpl HeaderSpec) *dataset.Ordered[HeaderSpec] {
	out := dataset.NewOrdered[HeaderSpec]()
	for _, f := range ds.Fields() {
		h := tmpl
		h.Title = f
		out.Set(f, h)
	}
	return out
}

// maxCell returns the largest numeric cell of ds, or 0.
func maxCell(ds *dataset.Dataset) float64 {
	max := 0.0
	fields := ds.Fields()
	ds.Range(func(_ string, r dataset.Record) bool {
		for _, f := range fields {
			if s, ok := r.Cell(f); ok {
				if v, err := strconv.ParseFloat(s, 64); err == nil && v > max {
					max = v
				}
			}
		}
		return true
	})
	return max
}

// DefaultLayouts returns the layouts of the built-in modules.
func DefaultLayouts() []ModuleLayout {
	return []ModuleLayout{qmLayout(), tessellateLayout(), tesselateLayout()}
}

// ─────────────────────────────────────────────────────────────────────────────
// qm
// ─────────────────────────────────────────────────────────────────────────────

type geometryRange struct {
	description string
	floor       float64
	ceiling     float64
}

var geometryRanges = map[dataset.Name]geometryRange{
	dataset.Bonds:    {"Bond length", 0, 2},
	dataset.Angles:   {"Bond angle", 0, 180},
	dataset.Torsions: {"Dihedral angle", -180, 180},
}

func qmLayout() ModuleLayout {
	l := ModuleLayout{
		Module:   "qm",
		Name:     "computational_quantum",
		Anchor:   "comp_qm",
		Info:     "Codes like Gaussian solve the Schrodinger equation; distance and charge measurements are extracted from their output.",
		Datasets: []dataset.Name{dataset.Mulliken, dataset.Bonds, dataset.Angles, dataset.Torsions},
		Sections: map[dataset.Name]SectionFunc{dataset.Mulliken: mullikenSections},
	}
	for name := range geometryRanges {
		l.Sections[name] = geometrySections(name)
	}
	return l
}

func mullikenSections(ds *dataset.Dataset) []Section {
	headers := Headers(ds, HeaderSpec{
		Description: "Mulliken Charge",
		Scale:       defaultScale,
		Floor:       -2,
		Ceiling:     2,
		Format:      defaultFormat,
		SharedKey:   "mulliken_range",
	})
	cfg := PlotConfig{Namespace: "comp_qm", ID: "comp_qm_mulliken", Title: "Mulliken Charges"}
	return []Section{
		{Name: "Mulliken Charges", Anchor: "comp_qm_mulliken_table", Plot: PlotTable, Dataset: ds.Name(), Headers: headers, Config: cfg},
		{Name: "Mulliken Charges: Beeswarm plot", Anchor: "comp_qm_mulliken_beeswarm", Plot: PlotBeeswarm, Dataset: ds.Name(), Headers: headers, Config: cfg},
	}
}

func geometrySections(name dataset.Name) SectionFunc {
	rng := geometryRanges[name]
	return func(ds *dataset.Dataset) []Section {
		headers := Headers(ds, HeaderSpec{
			Description: rng.description,
			Scale:       defaultScale,
			Floor:       rng.floor,
			Ceiling:     rng.ceiling,
			Format:      defaultFormat,
			SharedKey:   string(name) + "_range",
		})
		cfg := PlotConfig{Namespace: "Geometry", ID: "comp_qm_" + string(name), Title: "Geometry: " + string(name)}
		return []Section{
			{Name: string(name), Anchor: "comp_qm_" + string(name) + "_table", Plot: PlotTable, Dataset: name, Headers: headers, Config: cfg},
			{Name: string(name) + ": Beeswarm plot", Anchor: "comp_qm_" + string(name) + "_beeswarm", Plot: PlotBeeswarm, Dataset: name, Headers: headers, Config: cfg},
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// tessellate
// ─────────────────────────────────────────────────────────────────────────────

var ringSeries = map[dataset.Name]dataset.Name{
	dataset.Five:  dataset.FiveNumeric,
	dataset.Six:   dataset.SixNumeric,
	dataset.Seven: dataset.SevenNumeric,
	dataset.Eight: dataset.EightNumeric,
}

func countHeaders(ds *dataset.Dataset, sharedKey string) *dataset.Ordered[HeaderSpec] {
	return Headers(ds, HeaderSpec{
		Description: "Ring pucker conformation",
		Scale:       defaultScale,
		Floor:       0,
		Ceiling:     maxCell(ds),
		Format:      countFormat,
		SharedKey:   sharedKey,
	})
}

func tessellateLayout() ModuleLayout {
	l := ModuleLayout{
		Module: "tessellate",
		Name:   "Tessellate",
		Anchor: "comp_tessellate",
		Info:   "A program for tessellating ring cycles, identifying conformations from coordinates and molecular trajectories.",
		Datasets: []dataset.Name{
			dataset.All,
			dataset.Five, dataset.FiveNumeric,
			dataset.Six, dataset.SixNumeric,
			dataset.Seven, dataset.SevenNumeric,
			dataset.Eight, dataset.EightNumeric,
			dataset.Macro,
			dataset.AllJSON,
		},
		Sections: map[dataset.Name]SectionFunc{
			dataset.All:     distributionSections,
			dataset.Macro:   ringCountSections,
			dataset.AllJSON: rawTableSections,
		},
	}
	for counts, series := range ringSeries {
		l.Sections[counts] = ringCountSections
		l.Sections[series] = seriesSections(counts)
	}
	return l
}

func distributionSections(ds *dataset.Dataset) []Section {
	return []Section{{
		Name:    "Pucker distribution",
		Anchor:  "comp_tessellate_count",
		Plot:    PlotBarGraph,
		Dataset: ds.Name(),
		Headers: countHeaders(ds, "tessellate"),
		Config:  PlotConfig{ID: "comp_tessellate_count", Title: "Tessellate: Pucker distribution", YLab: "# Count"},
	}}
}

func ringCountSections(ds *dataset.Dataset) []Section {
	ring := string(ds.Name())
	return []Section{{
		Name:    ring,
		Anchor:  "comp_tessellate_count_" + ring,
		Plot:    PlotBarGraph,
		Dataset: ds.Name(),
		Headers: countHeaders(ds, "tessellate"),
		Config: PlotConfig{
			ID:        "comp_tessellate_count_" + ring,
			Title:     "Tessellate: Pucker distribution for " + ring,
			Namespace: "Tessellate",
			YLab:      "# Count",
		},
	}}
}

func seriesSections(counts dataset.Name) SectionFunc {
	ring := string(counts)
	return func(ds *dataset.Dataset) []Section {
		return []Section{{
			Name:    ring + " series",
			Anchor:  "comp_tessellate_series_" + ring,
			Plot:    PlotScatter,
			Dataset: ds.Name(),
			Config: PlotConfig{
				ID:        "comp_tessellate_series_" + ring,
				Title:     "Tessellate: Pucker series for " + ring,
				Namespace: "Tessellate",
				XLab:      "Time or Sequence order",
				YLab:      "Numeric Pucker ID",
			},
		}}
	}
}

func rawTableSections(ds *dataset.Dataset) []Section {
	return []Section{{
		Name:    "Pucker table",
		Anchor:  "comp_tessellate_table",
		Plot:    PlotTable,
		Dataset: ds.Name(),
		Headers: Headers(ds, HeaderSpec{Description: "Ring pucker data", Scale: defaultScale, SharedKey: "tessellate"}),
		Config:  PlotConfig{ID: "comp_tessellate_table", Title: "Tessellate: Pucker table", Namespace: "Tessellate"},
	}}
}

// ─────────────────────────────────────────────────────────────────────────────
// tesselate (headerless legacy logs)
// ─────────────────────────────────────────────────────────────────────────────

func tesselateLayout() ModuleLayout {
	return ModuleLayout{
		Module:   "tesselate",
		Name:     "Tesselate",
		Anchor:   "comp_tesselate",
		Info:     "Conformer counts from headerless Tessellate logs.",
		Datasets: []dataset.Name{dataset.All},
		Sections: map[dataset.Name]SectionFunc{
			dataset.All: func(ds *dataset.Dataset) []Section {
				return []Section{{
					Name:    "Pucker distribution",
					Anchor:  "comp_tesselate_count",
					Plot:    PlotBarGraph,
					Dataset: ds.Name(),
					Headers: countHeaders(ds, "tesselate"),
					Config:  PlotConfig{ID: "comp_tesselate_count", Title: "Tesselate: Count of Puckers by canonical conformer", YLab: "# Count"},
				}}
			},
		},
	}
}

//Personal.AI order the ending
