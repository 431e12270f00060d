// Package tessellate parses ring-pucker logs written by Tessellate.
//
// A log opens with a header line naming the tool, its version and the record
// format:
//
//	tessellate 0.4 txt
//	tessellate 0.4 json pdb
//
// The optional fourth token names where the rings came from.  Structure-file
// origins ("pdb") switch on per-structure stratification for that file.
package tessellate

import (
	"strings"

	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// Format is the record format declared by the header.
type Format string

const (
	FormatText Format = "txt"
	FormatJSON Format = "json"
)

// Header is the parsed first line of a log.
type Header struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Format     Format `json:"format"`
	Origin     string `json:"origin,omitempty"`
	Stratified bool   `json:"stratified"`
}

// DetectHeader parses a header line.  Three tokens declare plain text, four
// tokens declare JSON plus an origin; anything else is an unknown format.
func DetectHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	var h Header
	switch len(fields) {
	case 3:
		h = Header{Tool: fields[0], Version: fields[1], Format: Format(fields[2])}
		if h.Format != FormatText {
			return Header{}, unknownFormat(line, "three-token header must declare txt")
		}
	case 4:
		h = Header{Tool: fields[0], Version: fields[1], Format: Format(fields[2]), Origin: fields[3]}
		if h.Format != FormatJSON {
			return Header{}, unknownFormat(line, "four-token header must declare json")
		}
		h.Stratified = strings.Contains(strings.ToLower(h.Origin), "pdb")
	default:
		return Header{}, unknownFormat(line, "header must have 3 or 4 tokens")
	}
	return h, nil
}

func unknownFormat(line, why string) error {
	if len(line) > 80 {
		line = line[:80] + "..."
	}
	return errors.New(errors.ErrCodeUnknownFormat, why).WithDetailf("header=%q", strings.TrimRight(line, "\r\n"))
}

//Personal.AI order the ending
