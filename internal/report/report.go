// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes reduced article rows to a CSV, JSON or YAML file
// and reads CSV reports back.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-filter/pkg/types"
)

// ErrNothingToWrite is returned by Write when there are no rows. The
// destination file is not created or modified.
var ErrNothingToWrite = errors.New("no rows to write")

// WriteError reports a failure to create or write the report file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing report %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Write serializes rows to path in the given format. The file is written
// to a temporary sibling and renamed into place, so a failed write leaves
// any existing report intact.
func Write(rows []types.ReportRow, path string, format types.ReportFormat) error {
	if len(rows) == 0 {
		return ErrNothingToWrite
	}

	encode, err := encoder(format)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".report-*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmpFile.Name()

	encErr := encode(tmpFile, rows)
	closeErr := tmpFile.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: encErr}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: fmt.Errorf("closing temp file: %w", closeErr)}
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: path, Err: fmt.Errorf("renaming temp file: %w", err)}
	}
	return nil
}

type encodeFunc func(io.Writer, []types.ReportRow) error

func encoder(format types.ReportFormat) (encodeFunc, error) {
	switch format {
	case types.ReportCSV, "":
		return writeCSV, nil
	case types.ReportJSON:
		return writeJSON, nil
	case types.ReportYAML:
		return writeYAML, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

func writeCSV(w io.Writer, rows []types.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.ReportColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, rows []types.ReportRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeYAML(w io.Writer, rows []types.ReportRow) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return err
	}
	return enc.Close()
}

// ReadCSV parses a CSV report. The header must match types.ReportColumns.
func ReadCSV(r io.Reader) ([]types.ReportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(types.ReportColumns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading report header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("reading report header: %w", err)
	}
	if !slices.Equal(header, types.ReportColumns) {
		return nil, fmt.Errorf("unexpected report header %q", header)
	}

	var rows []types.ReportRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading report row: %w", err)
		}
		row, _ := types.ReportRowFromRecord(rec)
		rows = append(rows, row)
	}
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) ([]types.ReportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
