// Package importer reads front/back card pairs from spreadsheets. It
// accepts .xlsx workbooks (first sheet) and .csv files with the front in
// the first column and the back in the second. A header row is detected
// and skipped.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for extensions other than .xlsx and .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format: use .xlsx or .csv")

	// ErrTooManyRows is returned when a file has more data rows than allowed.
	ErrTooManyRows = errors.New("file has too many rows")

	// ErrUnreadable is returned when the file cannot be parsed.
	ErrUnreadable = errors.New("file could not be read")
)

// Row is one candidate card.
type Row struct {
	Line  int
	Front string
	Back  string
}

// Result is the outcome of parsing a file. Skipped counts data rows that
// could not become cards; Errors explains each one.
type Result struct {
	Rows    []Row
	Skipped int
	Errors  []string
}

// Skip records a rejected line.
func (r *Result) Skip(line int, reason string) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("line %d: %s", line, reason))
}

var headerNames = map[string]string{
	"front":    "back",
	"question": "answer",
	"term":     "definition",
	"word":     "translation",
}

// Parse dispatches on the file extension of filename. maxRows <= 0 means
// unlimited.
func Parse(r io.Reader, filename string, maxRows int) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return ParseXLSX(r, maxRows)
	case ".csv":
		return ParseCSV(r, maxRows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseCSV reads comma-separated rows. Rows may have any number of fields.
func ParseCSV(r io.Reader, maxRows int) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		records = append(records, record)
	}
	return collect(records, maxRows)
}

// ParseXLSX reads the first worksheet of an .xlsx workbook.
func ParseXLSX(r io.Reader, maxRows int) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Result{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return collect(rows, maxRows)
}

func collect(records [][]string, maxRows int) (*Result, error) {
	res := &Result{Rows: []Row{}, Errors: []string{}}

	data := 0
	for i, record := range records {
		line := i + 1
		front, back := cell(record, 0), cell(record, 1)

		if front == "" && back == "" {
			continue
		}
		if data == 0 && len(res.Errors) == 0 && isHeader(front, back) {
			continue
		}

		data++
		if maxRows > 0 && data > maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, maxRows)
		}

		if front == "" || back == "" {
			res.Skip(line, "front and back are both required")
			continue
		}
		res.Rows = append(res.Rows, Row{Line: line, Front: front, Back: back})
	}
	return res, nil
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(record[i], "\uFEFF"))
}

func isHeader(front, back string) bool {
	want, ok := headerNames[strings.ToLower(front)]
	return ok && strings.EqualFold(back, want)
}
