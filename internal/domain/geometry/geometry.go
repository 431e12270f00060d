// Package geometry classifies optimized geometry parameters by the marker
// character in their name: R for bond lengths, A for angles, D for dihedral
// torsions.
package geometry

import (
	"strings"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
)

// Category is a geometric parameter class.
type Category int

const (
	Unknown Category = iota
	Bond
	Angle
	Torsion
)

// marker pairs a category with the substring that selects it.  The slice
// order is the match priority.
type marker struct {
	token    string
	category Category
}

var markers = []marker{
	{"R", Bond},
	{"A", Angle},
	{"D", Torsion},
}

// Categories lists the known categories in match order.
var Categories = []Category{Bond, Angle, Torsion}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Bond:
		return "bond"
	case Angle:
		return "angle"
	case Torsion:
		return "torsion"
	default:
		return "unknown"
	}
}

// Dataset returns the dataset that holds parameters of this category.
func (c Category) Dataset() (dataset.Name, bool) {
	switch c {
	case Bond:
		return dataset.Bonds, true
	case Angle:
		return dataset.Angles, true
	case Torsion:
		return dataset.Torsions, true
	default:
		return "", false
	}
}

// Classify returns the category of a parameter name.  The first marker found
// wins, checked in the order R, A, D; a name with no marker is Unknown.
func Classify(name string) Category {
	for _, m := range markers {
		if strings.Contains(name, m.token) {
			return m.category
		}
	}
	return Unknown
}

// Measurements is an insertion-ordered table parameter name -> value.
type Measurements struct {
	dataset.Ordered[float64]
}

// NewMeasurements returns an empty table.
func NewMeasurements() *Measurements { return &Measurements{} }

// Set groups parameters by category while preserving the order in which each
// name was first seen.
type Set struct {
	byCategory map[Category]*Measurements
}

// NewSet returns an empty Set.
func NewSet() *Set {
	s := &Set{byCategory: make(map[Category]*Measurements, len(Categories))}
	for _, c := range Categories {
		s.byCategory[c] = NewMeasurements()
	}
	return s
}

// Add classifies name and stores value under its category.  It returns
// Unknown, storing nothing, when name carries no marker.
func (s *Set) Add(name string, value float64) Category {
	c := Classify(name)
	if m, ok := s.byCategory[c]; ok {
		m.Set(name, value)
	}
	return c
}

// Get returns the table of category c.
func (s *Set) Get(c Category) *Measurements {
	return s.byCategory[c]
}

//Personal.AI order the ending
