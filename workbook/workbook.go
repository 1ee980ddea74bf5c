// Package workbook reads spreadsheets (.xlsx, .xls, .csv) into plain string
// grids. It backs the local preview command and the development mock
// backend; the real backend does its own parsing.
package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	xlsReader "github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Sheet is one worksheet. Rows[0] is the header row when present.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is an ordered list of sheets.
type Workbook struct {
	Sheets []Sheet
}

// ReadFile reads the spreadsheet at path.
func ReadFile(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(filepath.Base(path), data)
}

// Read parses data according to the extension of name.
func Read(name string, data []byte) (*Workbook, error) {
	var (
		wb  *Workbook
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		wb, err = readXLSX(data)
	case ".xls":
		wb, err = readXLS(data)
	case ".csv":
		wb, err = readCSV(strings.TrimSuffix(name, filepath.Ext(name)), data)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet type: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", name)
	}
	return wb, nil
}

func readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}

func readXLS(data []byte) (*Workbook, error) {
	book, err := xlsReader.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	wb := &Workbook{}
	for si := 0; si < book.GetNumberSheets(); si++ {
		sheet, err := book.GetSheet(si)
		if err != nil {
			continue
		}

		var rows [][]string
		for r := 0; r <= sheet.GetNumberRows(); r++ {
			row, err := sheet.GetRow(r)
			if err != nil {
				continue
			}
			cols := row.GetCols()
			values := make([]string, len(cols))
			for c, cell := range cols {
				values[c] = strings.ToValidUTF8(cell.GetString(), "�")
			}
			rows = append(rows, trimTrailingEmpty(values))
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: sheet.GetName(), Rows: trimTrailingRows(rows)})
	}
	return wb, nil
}

// readCSV decodes UTF-8 (with or without BOM) and falls back to CP949, the
// encoding Korean Excel uses when saving CSV.
func readCSV(name string, data []byte) (*Workbook, error) {
	var src io.Reader
	if utf8.Valid(data) {
		src = transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	} else {
		src = transform.NewReader(bytes.NewReader(data), korean.EUCKR.NewDecoder())
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "Sheet1"
	}
	return &Workbook{Sheets: []Sheet{{Name: name, Rows: rows}}}, nil
}

func trimTrailingEmpty(values []string) []string {
	end := len(values)
	for end > 0 && strings.TrimSpace(values[end-1]) == "" {
		end--
	}
	return values[:end]
}

func trimTrailingRows(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the sheet called name, or the first sheet when name is "".
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	if len(w.Sheets) == 0 {
		return nil, false
	}
	if name == "" {
		return &w.Sheets[0], true
	}
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}

// Header returns the first row, or nil for an empty sheet.
func (s *Sheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

// DataRows returns every row after the header.
func (s *Sheet) DataRows() [][]string {
	if len(s.Rows) <= 1 {
		return nil
	}
	return s.Rows[1:]
}

// ColumnCount is the width of the widest row.
func (s *Sheet) ColumnCount() int {
	width := 0
	for _, row := range s.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// ColumnIndex finds a header cell by name, ignoring case and surrounding
// space. It returns -1 when no header matches.
func (s *Sheet) ColumnIndex(header string) int {
	want := strings.ToLower(strings.TrimSpace(header))
	for i, cell := range s.Header() {
		if strings.ToLower(strings.TrimSpace(cell)) == want {
			return i
		}
	}
	return -1
}

// Column returns the trimmed, non-empty values of column idx below the
// header.
func (s *Sheet) Column(idx int) []string {
	var values []string
	for _, row := range s.DataRows() {
		if idx < 0 || idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	return values
}
