// Package tabular reads uploaded spreadsheets (CSV or XLSX) as rows of named fields and
// writes simple single-sheet XLSX exports.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnreadable is returned when a file cannot be parsed at all.
var ErrUnreadable = errors.New("unreadable tabular file")

const utf8BOM = "\ufeff"

// Row is one data line, its fields addressed by header name.
type Row struct {
	// Line is the 1-based line number in the source file, headers being line 1.
	Line   int
	values map[string]string
}

// Get returns the trimmed value of column, or "" when the column is absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.values[column])
}

// Has reports whether column exists in the row's file.
func (r Row) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Table is a parsed file.
type Table struct {
	Headers []string
	Rows    []Row
}

// Require checks that every column is present in the headers.
func (t *Table) Require(columns ...string) error {
	present := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		present[h] = true
	}
	var missing []string
	for _, c := range columns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("colonnes manquantes: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Read parses r as CSV or XLSX. The format is chosen from the file name extension, then
// from the content (XLSX files are zip archives).
func Read(filename string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ReadCSV(bytes.NewReader(data))
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(data))
	}
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return ReadXLSX(bytes.NewReader(data))
	}
	return ReadCSV(bytes.NewReader(data))
}

// ReadCSV parses UTF-8 CSV, with or without BOM. The delimiter is ';' when the header line
// holds more semicolons than commas, ',' otherwise.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	first = strings.TrimPrefix(first, utf8BOM)
	if strings.TrimSpace(first) == "" {
		return nil, fmt.Errorf("%w: fichier vide", ErrUnreadable)
	}

	reader := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	reader.Comma = sniffDelimiter(first)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return fromRecords(records), nil
}

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	records, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: fichier vide", ErrUnreadable)
	}
	return fromRecords(records), nil
}

func sniffDelimiter(header string) rune {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

func fromRecords(records [][]string) *Table {
	t := &Table{}
	if len(records) == 0 {
		return t
	}
	for _, h := range records[0] {
		t.Headers = append(t.Headers, strings.TrimSpace(strings.TrimPrefix(h, utf8BOM)))
	}
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		values := make(map[string]string, len(t.Headers))
		for col, h := range t.Headers {
			if col < len(record) {
				values[h] = record[col]
			} else {
				values[h] = ""
			}
		}
		t.Rows = append(t.Rows, Row{Line: i + 2, values: values})
	}
	return t
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
