package conformer

import (
	"encoding/json"
	"strconv"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
)

// Counts is an insertion-ordered frequency table conformer label -> count.
// Labels are never removed and counts only grow.
type Counts struct {
	dataset.Ordered[int]
}

// NewCounts returns an empty table.
func NewCounts() *Counts { return &Counts{} }

// Inc records one more occurrence of label.  The first occurrence sets the
// count to 1.
func (c *Counts) Inc(label string) {
	c.Update(label, func(old int, _ bool) int { return old + 1 })
}

// Count returns the number of occurrences of label.
func (c *Counts) Count(label string) int {
	n, _ := c.Get(label)
	return n
}

// Total returns the sum of all counts.
func (c *Counts) Total() int {
	total := 0
	c.Range(func(_ string, n int) bool {
		total += n
		return true
	})
	return total
}

// Clone returns an independent copy.
func (c *Counts) Clone() *Counts {
	out := NewCounts()
	c.Range(func(k string, n int) bool {
		out.Set(k, n)
		return true
	})
	return out
}

// Point is one sample of a numeric pucker series.
type Point struct {
	X     int     `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Name  string  `json:"name" yaml:"name"`
	Color string  `json:"color" yaml:"color"`
}

// Series is the append-only sequence of numeric pucker ids of one ring size,
// in input order.
type Series struct {
	Points []Point
}

// NewSeries returns an empty series.
func NewSeries() *Series { return &Series{} }

// Append adds a point whose X is the length of the series before the append.
func (s *Series) Append(label string, numeric float64) Point {
	p := Point{X: len(s.Points), Y: numeric, Name: label, Color: ColorFor(label)}
	s.Points = append(s.Points, p)
	return p
}

// Len returns the number of points.
func (s *Series) Len() int { return len(s.Points) }

// Fields returns the X positions as column names.
func (s *Series) Fields() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = strconv.Itoa(p.X)
	}
	return out
}

// Cell returns the numeric pucker id at position field.
func (s *Series) Cell(field string) (string, bool) {
	i, err := strconv.Atoi(field)
	if err != nil || i < 0 || i >= len(s.Points) {
		return "", false
	}
	return dataset.FormatCell(s.Points[i].Y), true
}

// Clone returns an independent copy.
func (s *Series) Clone() *Series {
	out := &Series{Points: make([]Point, len(s.Points))}
	copy(out.Points, s.Points)
	return out
}

// MarshalJSON encodes the series as a JSON array of points.
func (s *Series) MarshalJSON() ([]byte, error) {
	if s.Points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Points)
}

// UnmarshalJSON decodes a JSON array of points.
func (s *Series) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.Points)
}

// MarshalYAML encodes the series as a YAML sequence of points.
func (s *Series) MarshalYAML() (interface{}, error) {
	if s.Points == nil {
		return []Point{}, nil
	}
	return s.Points, nil
}

//Personal.AI order the ending
