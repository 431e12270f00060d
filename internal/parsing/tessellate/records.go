package tessellate

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/turtacn/ChemLog-QC/internal/domain/conformer"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// Record is one decoded entry of a JSON log.
type Record struct {
	Index     int
	Conformer string
	Ring      conformer.RingSize
	Numeric   float64
	PDBID     string
	Raw       json.RawMessage
}

type wireRecord struct {
	Conformer *string         `json:"conformer"`
	RingSize  json.RawMessage `json:"ringsize"`
	Numeric   *float64        `json:"numeric"`
	PDBID     json.RawMessage `json:"pdbid"`
}

// RecordFunc receives every array element in order.  err is non-nil when the
// element is unusable; returning an error stops the scan.
type RecordFunc func(rec Record, err error) error

// ReadRecords decodes a top-level JSON array one element at a time.  Problems
// inside one element are handed to fn; a syntax error or a document that is
// not an array fails the whole read.
func ReadRecords(r io.Reader, fn RecordFunc) error {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return parseFailed(err, "expected a JSON array of records")
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return errors.New(errors.ErrCodeLogParseFailed, "expected a JSON array of records").
			WithDetailf("got %v", tok)
	}
	for idx := 0; dec.More(); idx++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return parseFailed(err, "decode record")
		}
		rec, recErr := decodeRecord(idx, raw)
		if err := fn(rec, recErr); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return parseFailed(err, "unterminated record array")
	}
	return nil
}

func parseFailed(err error, msg string) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.Wrap(err, errors.ErrCodeLogParseFailed, msg)
}

func decodeRecord(idx int, raw json.RawMessage) (Record, error) {
	rec := Record{Index: idx, Raw: raw}
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return rec, errors.Wrap(err, errors.ErrCodeMalformedRecord, "record is not a valid object").
			WithDetailf("index=%d", idx)
	}
	var missing []string
	if w.Conformer == nil || *w.Conformer == "" {
		missing = append(missing, "conformer")
	}
	if len(w.RingSize) == 0 || string(w.RingSize) == "null" {
		missing = append(missing, "ringsize")
	}
	if w.Numeric == nil {
		missing = append(missing, "numeric")
	}
	if len(missing) > 0 {
		return rec, errors.New(errors.ErrCodeMalformedRecord, "missing required field").
			WithDetailf("index=%d fields=%s", idx, strings.Join(missing, ","))
	}
	if err := rec.Ring.UnmarshalJSON(w.RingSize); err != nil {
		return rec, errors.Wrap(err, errors.ErrCodeUnknownRingSize, "unknown ring size").
			WithDetailf("index=%d ringsize=%s", idx, w.RingSize)
	}
	rec.Conformer = *w.Conformer
	rec.Numeric = *w.Numeric
	rec.PDBID = structureID(w.PDBID)
	return rec, nil
}

// structureID accepts a JSON string or a bare scalar such as a number.
func structureID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}

//Personal.AI order the ending
