package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/minios-linux/sheetlate/backend"
)

const xlsxSheet = "Translations"

// XLSX writes the same four columns into a single worksheet.
type XLSX struct{}

func (XLSX) Name() string { return "xlsx" }

func (XLSX) Extensions() []string { return []string{".xlsx"} }

func (XLSX) Write(w io.Writer, rows []backend.ResultRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Original, r.Translated, r.SourceLang, r.TargetLang}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}
	if err := f.SetColWidth(xlsxSheet, "A", "B", 48); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}
