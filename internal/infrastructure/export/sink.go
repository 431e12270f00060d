// Package export writes assembled datasets to disk.  Every sink produces one
// file per dataset, named <prefix>_<module>_<dataset>.<ext>, written to a
// temporary file first and renamed into place.
package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// Format names an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatTSV, FormatXLSX}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeExportFormat, "").WithDetail("format=" + s)
}

// Sink writes one dataset and returns the path written.
type Sink interface {
	Format() Format
	Write(ctx context.Context, module string, ds *dataset.Dataset) (string, error)
}

// NewSink returns the file sink for f.
func NewSink(f Format, dir, prefix string) (Sink, error) {
	base := fileSink{dir: dir, prefix: prefix}
	switch f {
	case FormatJSON:
		return &JSONSink{fileSink: base}, nil
	case FormatYAML:
		return &YAMLSink{fileSink: base}, nil
	case FormatTSV:
		return &TSVSink{fileSink: base}, nil
	case FormatXLSX:
		return &XLSXSink{fileSink: base}, nil
	}
	return nil, errors.New(errors.ErrCodeExportFormat, "").WithDetail("format=" + string(f))
}

type fileSink struct {
	dir    string
	prefix string
}

func (s fileSink) path(module string, name dataset.Name, f Format) string {
	parts := []string{module, string(name)}
	if s.prefix != "" {
		parts = append([]string{s.prefix}, parts...)
	}
	return filepath.Join(s.dir, strings.Join(parts, "_")+"."+string(f))
}

// writeAtomic calls fn with a temporary file in the target directory and
// renames it to path when fn succeeds.
func (s fileSink) writeAtomic(path string, fn func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "create output directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "create temporary file")
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "close temporary file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrCodeExportFailed, "rename output file")
	}
	return nil
}

// Table is a dataset laid out as rows of text cells.  The first column is the
// sample id; the remaining columns are the union of record fields in
// first-seen order.  Absent cells are empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// SampleColumn heads the sample id column.
const SampleColumn = "Sample"

// NewTable lays out ds.
func NewTable(ds *dataset.Dataset) Table {
	fields := ds.Fields()
	t := Table{Header: append([]string{SampleColumn}, fields...)}
	ds.Range(func(id string, r dataset.Record) bool {
		row := make([]string, 0, len(t.Header))
		row = append(row, id)
		for _, f := range fields {
			v, _ := r.Cell(f)
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
		return true
	})
	return t
}

//Personal.AI order the ending
