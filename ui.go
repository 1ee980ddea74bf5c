package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/width"

	"github.com/minios-linux/sheetlate/backend"
	"github.com/minios-linux/sheetlate/i18n"
	"github.com/minios-linux/sheetlate/langmeta"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
	colorGray   = "\033[0;90m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Cell helpers
// ---------------------------------------------------------------------------

// runeWidth counts East Asian wide and fullwidth runes as two columns.
func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// displayWidth is the terminal width of s.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

// truncate cuts s to at most max columns, marking the cut with "…".
// Newlines are flattened so a cell stays on one line.
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if displayWidth(s) <= max {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWidth(r)
		if used+w > max-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	b.WriteString("…")
	return b.String()
}

// pad right-pads s with spaces to w columns.
func pad(s string, w int) string {
	if gap := w - displayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// progressBar renders percent as a coloured bar followed by the number.
func progressBar(percent, w int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * w / 100

	color := colorGreen
	switch {
	case percent < 40:
		color = colorRed
	case percent < 80:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", w-filled)
	return color + bar + colorReset + fmt.Sprintf(" %3d%%", percent)
}

// langCell shows a language code with its flag and native name.
func langCell(code string) string {
	m := langmeta.Resolve(code)
	if m.Flag == "" {
		return m.Code
	}
	return fmt.Sprintf("%s %s (%s)", m.Flag, m.Code, m.Name)
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// summaryLine is the one-line outcome shown after a translation.
func summaryLine(resp *backend.TranslationResponse) string {
	return fmt.Sprintf(i18n.T("%d succeeded, %d failed"), resp.SuccessCount, resp.ErrorCount)
}

func successPercent(resp *backend.TranslationResponse) int {
	if resp.TotalRows <= 0 {
		return 0
	}
	return resp.SuccessCount * 100 / resp.TotalRows
}

const cellWidth = 36

func printResults(resp *backend.TranslationResponse, limit int) {
	if len(resp.Results) == 0 {
		logWarning("%s", i18n.T("The backend returned no rows."))
		return
	}
	first := resp.Results[0]

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Translation Results"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 6+2*cellWidth+4))
	fmt.Fprintf(os.Stderr, "%-5s %s  %s\n", "#",
		pad(fmt.Sprintf(i18n.T("Original (%s)"), first.SourceLang), cellWidth),
		fmt.Sprintf(i18n.T("Translated (%s)"), first.TargetLang))
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 6+2*cellWidth+4))

	for i, r := range resp.Results {
		if limit > 0 && i >= limit {
			fmt.Fprintf(os.Stderr, colorGray+i18n.T("... %d more rows")+colorReset+"\n", len(resp.Results)-limit)
			break
		}
		translated := truncate(r.Translated, cellWidth)
		if r.Failed() {
			translated = colorRed + "✗ " + truncate(r.Error, cellWidth-2) + colorReset
		}
		fmt.Fprintf(os.Stderr, "%-5d %s  %s\n", i+1, pad(truncate(r.Original, cellWidth), cellWidth), translated)
	}

	fmt.Fprintln(os.Stderr, strings.Repeat("─", 6+2*cellWidth+4))
	fmt.Fprintf(os.Stderr, "%s  %s\n", progressBar(successPercent(resp), 20), summaryLine(resp))
	if resp.ProcessingTime > 0 {
		fmt.Fprintf(os.Stderr, i18n.T("Processing time: %.2fs")+"\n", resp.ProcessingTime)
	}
	fmt.Fprintln(os.Stderr)
}

func printMetadata(meta *backend.FileMetadata) {
	fmt.Fprintf(os.Stderr, "%-14s %s\n", i18n.T("File ID:"), meta.FileID)
	if meta.Filename != "" {
		fmt.Fprintf(os.Stderr, "%-14s %s\n", i18n.T("Filename:"), meta.Filename)
	}
	if meta.FileSize > 0 {
		fmt.Fprintf(os.Stderr, "%-14s %d\n", i18n.T("Size:"), meta.FileSize)
	}
	fmt.Fprintf(os.Stderr, "%-14s %s\n", i18n.T("Sheets:"), strings.Join(meta.SheetNames, ", "))
	fmt.Fprintf(os.Stderr, "%-14s %d\n", i18n.T("Rows:"), meta.RowCount)
	fmt.Fprintf(os.Stderr, "%-14s %d\n", i18n.T("Columns:"), meta.ColumnCount)
	if !meta.UploadTime.IsZero() {
		fmt.Fprintf(os.Stderr, "%-14s %s\n", i18n.T("Uploaded:"), meta.UploadTime.Format("2006-01-02 15:04:05"))
	}
}
