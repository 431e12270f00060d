package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// JSON
// ─────────────────────────────────────────────────────────────────────────────

// JSONSink writes {sample: {field: value}} documents in insertion order.
type JSONSink struct{ fileSink }

func (s *JSONSink) Format() Format { return FormatJSON }

func (s *JSONSink) Write(ctx context.Context, module string, ds *dataset.Dataset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.path(module, ds.Name(), FormatJSON)
	err := s.writeAtomic(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ds); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "encode json")
		}
		return nil
	})
	return path, err
}

// ─────────────────────────────────────────────────────────────────────────────
// YAML
// ─────────────────────────────────────────────────────────────────────────────

// YAMLSink writes the same shape as JSONSink as a YAML mapping.
type YAMLSink struct{ fileSink }

func (s *YAMLSink) Format() Format { return FormatYAML }

func (s *YAMLSink) Write(ctx context.Context, module string, ds *dataset.Dataset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.path(module, ds.Name(), FormatYAML)
	err := s.writeAtomic(path, func(f *os.File) error {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "encode yaml")
		}
		return nil
	})
	return path, err
}

// ─────────────────────────────────────────────────────────────────────────────
// TSV
// ─────────────────────────────────────────────────────────────────────────────

// TSVSink writes one row per sample.
type TSVSink struct{ fileSink }

func (s *TSVSink) Format() Format { return FormatTSV }

func (s *TSVSink) Write(ctx context.Context, module string, ds *dataset.Dataset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.path(module, ds.Name(), FormatTSV)
	t := NewTable(ds)
	err := s.writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		w.Comma = '\t'
		if err := w.Write(t.Header); err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "write tsv")
		}
		if err := w.WriteAll(t.Rows); err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "write tsv")
		}
		return nil
	})
	return path, err
}

// ─────────────────────────────────────────────────────────────────────────────
// XLSX
// ─────────────────────────────────────────────────────────────────────────────

// XLSXSink writes one workbook per dataset with a single sheet named after
// the dataset.  Cells that parse as numbers are stored as numbers.
type XLSXSink struct{ fileSink }

func (s *XLSXSink) Format() Format { return FormatXLSX }

func (s *XLSXSink) Write(ctx context.Context, module string, ds *dataset.Dataset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := s.path(module, ds.Name(), FormatXLSX)
	t := NewTable(ds)

	wb := excelize.NewFile()
	defer wb.Close()
	sheet := string(ds.Name())
	if err := wb.SetSheetName("Sheet1", sheet); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExportFailed, "name sheet")
	}

	rows := append([][]string{t.Header}, t.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeExportFailed, "cell name")
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = xlsxValue(v, i == 0 || j == 0)
		}
		if err := wb.SetSheetRow(sheet, cell, &values); err != nil {
			return "", errors.Wrap(err, errors.ErrCodeExportFailed, "write row")
		}
	}
	if err := wb.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExportFailed, "freeze header")
	}

	err := s.writeAtomic(path, func(f *os.File) error {
		if _, err := wb.WriteTo(f); err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "write xlsx")
		}
		return nil
	})
	return path, err
}

func xlsxValue(v string, label bool) interface{} {
	if label || v == "" {
		return v
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

//Personal.AI order the ending
