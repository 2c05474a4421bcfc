package tabular

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Yes is how exports render a true boolean. False renders as an empty cell.
const Yes = "Oui"

// Sheet builds a single-sheet workbook line by line.
type Sheet struct {
	f         *excelize.File
	name      string
	row       int
	boldStyle int
	dateStyle int
}

// NewSheet creates a workbook whose only sheet is called title.
func NewSheet(title string) (*Sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", title); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	// 14 is the built-in short date format
	date, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating date style: %w", err)
	}
	return &Sheet{f: f, name: title, row: 1, boldStyle: bold, dateStyle: date}, nil
}

// WriteHeader writes a bold line. widths, when given, sets the column widths.
func (s *Sheet) WriteHeader(headers []string, widths ...float64) error {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	row := s.row
	if err := s.WriteLine(values...); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(headers), row)
	if err := s.f.SetCellStyle(s.name, first, last, s.boldStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := s.f.SetColWidth(s.name, col, col, w); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}
	return nil
}

// WriteLine appends a line. Dates become native date cells, booleans "Oui" or empty,
// nil pointers empty cells.
func (s *Sheet) WriteLine(values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.setCell(cell, v); err != nil {
			return fmt.Errorf("writing cell %s: %w", cell, err)
		}
	}
	s.row++
	return nil
}

func (s *Sheet) setCell(cell string, v any) error {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		if val {
			return s.f.SetCellStr(s.name, cell, Yes)
		}
		return nil
	case *time.Time:
		if val == nil {
			return nil
		}
		return s.setDate(cell, *val)
	case time.Time:
		return s.setDate(cell, val)
	case *int64:
		if val == nil {
			return nil
		}
		return s.f.SetCellValue(s.name, cell, *val)
	default:
		return s.f.SetCellValue(s.name, cell, val)
	}
}

func (s *Sheet) setDate(cell string, d time.Time) error {
	// Dates are calendar days: drop the location so no timezone shift happens.
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if err := s.f.SetCellValue(s.name, cell, day); err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, cell, cell, s.dateStyle)
}

// Bytes serializes the workbook and releases it.
func (s *Sheet) Bytes() ([]byte, error) {
	defer s.f.Close()
	buf := new(bytes.Buffer)
	if err := s.f.Write(buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is "<base>_YYYY-MM-DD.xlsx".
func Filename(base string, day time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", base, day.Format("2006-01-02"))
}
