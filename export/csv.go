// Package export writes translation results to files people open in a
// spreadsheet program.
package export

import (
	"bufio"
	"io"
	"strings"

	"github.com/minios-linux/sheetlate/backend"
)

// Header is the first row of every export.
var Header = []string{"original", "translated", "source_lang", "target_lang"}

// BOM makes Excel read the CSV as UTF-8, so Korean, Japanese and Chinese
// text is not mangled.
const BOM = "\ufeff"

const crlf = "\r\n"

// CSV is the comma-separated format. Every field is quoted.
type CSV struct{}

func (CSV) Name() string { return "csv" }

func (CSV) Extensions() []string { return []string{".csv"} }

// Write emits BOM, header and one line per row.
func (CSV) Write(w io.Writer, rows []backend.ResultRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(BOM); err != nil {
		return err
	}
	if err := writeRecord(bw, Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writeRecord(bw, record(r)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func record(r backend.ResultRow) []string {
	return []string{r.Original, r.Translated, r.SourceLang, r.TargetLang}
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(Quote(f)); err != nil {
			return err
		}
	}
	_, err := w.WriteString(crlf)
	return err
}

// Quote wraps field in double quotes and doubles the quotes inside it.
func Quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
