package workbook

import "github.com/minios-linux/sheetlate/langdetect"

// ColumnPreview summarises one column.
type ColumnPreview struct {
	Index    int
	Header   string
	Samples  []string
	Filled   int
	Language string
}

// SheetPreview summarises one sheet.
type SheetPreview struct {
	Name     string
	DataRows int
	Columns  []ColumnPreview
}

// Preview builds per-column summaries with up to sampleSize sample values
// and a detected language for each column.
func Preview(wb *Workbook, sampleSize int) []SheetPreview {
	if sampleSize <= 0 {
		sampleSize = 3
	}

	out := make([]SheetPreview, 0, len(wb.Sheets))
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		header := sheet.Header()

		sp := SheetPreview{
			Name:     sheet.Name,
			DataRows: len(sheet.DataRows()),
		}
		for col := 0; col < sheet.ColumnCount(); col++ {
			values := sheet.Column(col)
			cp := ColumnPreview{
				Index:    col,
				Filled:   len(values),
				Language: langdetect.DetectColumn(firstN(values, 20)),
			}
			if col < len(header) {
				cp.Header = header[col]
			}
			cp.Samples = firstN(values, sampleSize)
			sp.Columns = append(sp.Columns, cp)
		}
		out = append(out, sp)
	}
	return out
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
