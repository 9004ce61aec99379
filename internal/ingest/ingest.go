// Package ingest reads raw rows from CSV and JSON files.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphaelgruber/rastreador/internal/normalize"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoHeader is returned for CSV input without a header row.
	ErrNoHeader = errors.New("missing header row")
)

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".json":
		return true
	}
	return false
}

// LoadFile reads every row of a CSV or JSON file.
func LoadFile(path string) ([]normalize.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []normalize.RawRow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = ReadCSV(f)
	case ".json":
		rows, err = ReadJSON(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// LoadDir loads every supported file in dir, in name order, and concatenates
// their rows. Files that fail to load are skipped with a warning. The
// returned sources list the files that were loaded.
func LoadDir(dir string, logger *slog.Logger) ([]normalize.RawRow, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var rows []normalize.RawRow
	var sources []string
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		fileRows, err := LoadFile(path)
		if err != nil {
			logger.Warn("skipping file", "file", path, "error", err)
			continue
		}
		logger.Debug("loaded file", "file", path, "rows", len(fileRows))
		rows = append(rows, fileRows...)
		sources = append(sources, path)
	}
	return rows, sources, nil
}

// Load loads a file, or every supported file of a directory.
func Load(path string, logger *slog.Logger) ([]normalize.RawRow, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDir(path, logger)
	}
	rows, err := LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return rows, []string{path}, nil
}

// ReadCSV reads a header row followed by data rows. The delimiter is a comma
// unless the header only contains semicolons.
func ReadCSV(r io.Reader) ([]normalize.RawRow, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	first = bytes.TrimPrefix(first, []byte("\ufeff"))
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if bytes.Contains(first, []byte{';'}) && !bytes.Contains(first, []byte{','}) {
		cr.Comma = ';'
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []normalize.RawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if isEmptyRecord(rec) {
			continue
		}
		row := make(normalize.RawRow, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isEmptyRecord(rec []string) bool {
	return !slices.ContainsFunc(rec, func(s string) bool { return strings.TrimSpace(s) != "" })
}

// ReadJSON reads an array of flat objects. Numbers keep their literal text.
func ReadJSON(r io.Reader) ([]normalize.RawRow, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var objects []map[string]any
	if err := dec.Decode(&objects); err != nil {
		return nil, err
	}
	rows := make([]normalize.RawRow, 0, len(objects))
	for _, obj := range objects {
		row := make(normalize.RawRow, len(obj))
		for k, v := range obj {
			row[k] = stringify(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
