// Package conformer models ring-pucker conformer statistics: the ring-size
// buckets, label colouring, per-label counts, numeric pucker series, and the
// per-sample Aggregator that folds observations into them.
package conformer

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// RingSize is the ring-size bucket of an observation.
type RingSize int

const (
	RingFive RingSize = iota + 1
	RingSix
	RingSeven
	RingEight
	RingMacro
)

// RingSizes lists every bucket in display order.
var RingSizes = []RingSize{RingFive, RingSix, RingSeven, RingEight, RingMacro}

// String returns the wire key of the bucket: "5".."8" or "macro".
func (r RingSize) String() string {
	switch r {
	case RingFive:
		return "5"
	case RingSix:
		return "6"
	case RingSeven:
		return "7"
	case RingEight:
		return "8"
	case RingMacro:
		return "macro"
	default:
		return "unknown(" + strconv.Itoa(int(r)) + ")"
	}
}

// Valid reports whether r is one of the known buckets.
func (r RingSize) Valid() bool { return r >= RingFive && r <= RingMacro }

// CountsDataset returns the dataset holding per-ring conformer counts.
func (r RingSize) CountsDataset() dataset.Name {
	switch r {
	case RingFive:
		return dataset.Five
	case RingSix:
		return dataset.Six
	case RingSeven:
		return dataset.Seven
	case RingEight:
		return dataset.Eight
	default:
		return dataset.Macro
	}
}

// SeriesDataset returns the dataset holding the numeric series of the bucket.
// Macrocycles have no numeric series dataset.
func (r RingSize) SeriesDataset() (dataset.Name, bool) {
	switch r {
	case RingFive:
		return dataset.FiveNumeric, true
	case RingSix:
		return dataset.SixNumeric, true
	case RingSeven:
		return dataset.SevenNumeric, true
	case RingEight:
		return dataset.EightNumeric, true
	default:
		return "", false
	}
}

var ringKeys = map[string]RingSize{
	"5":     RingFive,
	"6":     RingSix,
	"7":     RingSeven,
	"8":     RingEight,
	"macro": RingMacro,
}

// ParseRingSize converts a wire key into a RingSize.  Integral numeric text
// such as "6" or "6.0" is accepted for the numbered buckets.
func ParseRingSize(s string) (RingSize, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if r, ok := ringKeys[key]; ok {
		return r, nil
	}
	if f, err := strconv.ParseFloat(key, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1e6 {
		if r, ok := ringKeys[strconv.Itoa(int(f))]; ok {
			return r, nil
		}
	}
	return 0, errors.New(errors.ErrCodeUnknownRingSize, "").WithDetail("ringsize=" + s)
}

// MarshalJSON encodes the bucket as its wire key.
func (r RingSize) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (r *RingSize) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	v, err := ParseRingSize(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ColorFor returns the display colour of a conformer label.  The result
// depends only on the label.
func ColorFor(label string) string {
	switch {
	case strings.Contains(label, "E"):
		return "#8dd3c7"
	case strings.Contains(label, "T"):
		return "#ffffb3"
	case strings.Contains(label, "UAP"):
		return "#bebada"
	case strings.Contains(label, "P"):
		return "#fb8072"
	default:
		return "#80b1d3"
	}
}

//Personal.AI order the ending
