package workbook

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
)

func buildXLSX(t *testing.T, sheets map[string][][]string, order []string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName() error: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet() error: %v", err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName() error: %v", err)
			}
			values := make([]any, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				t.Fatalf("SetSheetRow() error: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error: %v", err)
	}
	return buf.Bytes()
}

func TestReadXLSX(t *testing.T) {
	data := buildXLSX(t, map[string][][]string{
		"Main": {
			{"id", "text"},
			{"1", "안녕하세요"},
			{"2", "감사합니다"},
		},
		"Other": {
			{"a"},
		},
	}, []string{"Main", "Other"})

	wb, err := Read("book.xlsx", data)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got := wb.SheetNames(); !reflect.DeepEqual(got, []string{"Main", "Other"}) {
		t.Fatalf("SheetNames() = %v", got)
	}

	sheet, ok := wb.Sheet("")
	if !ok || sheet.Name != "Main" {
		t.Fatalf("Sheet(\"\") = %v, %v; want first sheet", sheet, ok)
	}
	if got := sheet.ColumnCount(); got != 2 {
		t.Fatalf("ColumnCount() = %d, want 2", got)
	}
	if got := len(sheet.DataRows()); got != 2 {
		t.Fatalf("len(DataRows()) = %d, want 2", got)
	}
	if got := sheet.Column(1); !reflect.DeepEqual(got, []string{"안녕하세요", "감사합니다"}) {
		t.Fatalf("Column(1) = %v", got)
	}
	if got := sheet.ColumnIndex(" TEXT "); got != 1 {
		t.Fatalf("ColumnIndex() = %d, want 1", got)
	}
	if got := sheet.ColumnIndex("missing"); got != -1 {
		t.Fatalf("ColumnIndex(missing) = %d, want -1", got)
	}
	if _, ok := wb.Sheet("Nope"); ok {
		t.Fatalf("Sheet(Nope) found, want missing")
	}
}

func TestReadCSVWithBOM(t *testing.T) {
	data := []byte("\ufefftext,note\n\"a, b\",x\n  ,y\nc,\n")
	wb, err := Read("list.csv", data)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	sheet, _ := wb.Sheet("")
	if sheet.Name != "list" {
		t.Fatalf("sheet name = %q, want list", sheet.Name)
	}
	if got := sheet.Header(); !reflect.DeepEqual(got, []string{"text", "note"}) {
		t.Fatalf("Header() = %q (BOM must be stripped)", got)
	}
	if got := sheet.Column(0); !reflect.DeepEqual(got, []string{"a, b", "c"}) {
		t.Fatalf("Column(0) = %q", got)
	}
}

func TestReadCSVCP949(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte("원문\n안녕하세요\n"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wb, err := Read("kr.csv", encoded)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	sheet, _ := wb.Sheet("")
	if got := sheet.Column(0); !reflect.DeepEqual(got, []string{"안녕하세요"}) {
		t.Fatalf("Column(0) = %q", got)
	}
}

func TestReadUnsupported(t *testing.T) {
	if _, err := Read("notes.txt", []byte("x")); err == nil {
		t.Fatalf("Read(.txt) error = nil, want error")
	}
	if _, err := Read("broken.xlsx", []byte("not a zip")); err == nil {
		t.Fatalf("Read(broken xlsx) error = nil, want error")
	}
}

func TestPreview(t *testing.T) {
	wb := &Workbook{Sheets: []Sheet{{
		Name: "Sheet1",
		Rows: [][]string{
			{"id", "text"},
			{"1", "안녕하세요 여러분"},
			{"2", "감사합니다 정말로"},
			{"3", "좋은 아침입니다"},
			{"4", "잘 지내세요"},
		},
	}}}

	previews := Preview(wb, 2)
	if len(previews) != 1 {
		t.Fatalf("len(Preview()) = %d, want 1", len(previews))
	}
	p := previews[0]
	if p.DataRows != 4 || len(p.Columns) != 2 {
		t.Fatalf("preview = %+v", p)
	}
	text := p.Columns[1]
	if text.Header != "text" || text.Filled != 4 || len(text.Samples) != 2 {
		t.Fatalf("text column = %+v", text)
	}
	if text.Language != "ko" {
		t.Fatalf("text column language = %q, want ko", text.Language)
	}
	if id := p.Columns[0]; id.Language != "" {
		t.Fatalf("numeric column language = %q, want empty", id.Language)
	}
}
