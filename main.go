// sheetlate: command-line client for the spreadsheet translation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/minios-linux/sheetlate/apperr"
	"github.com/minios-linux/sheetlate/backend"
	"github.com/minios-linux/sheetlate/config"
	"github.com/minios-linux/sheetlate/export"
	"github.com/minios-linux/sheetlate/filecheck"
	"github.com/minios-linux/sheetlate/i18n"
	"github.com/minios-linux/sheetlate/langmeta"
	"github.com/minios-linux/sheetlate/logging"
	"github.com/minios-linux/sheetlate/mockbackend"
	"github.com/minios-linux/sheetlate/session"
	"github.com/minios-linux/sheetlate/workbook"
	"github.com/minios-linux/sheetlate/workflow"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir       string
	flagBaseURL   string
	flagTimeout   time.Duration
	flagProxy     string
	flagLogLevel  string
	flagLogFormat string
	flagNoSession bool
	flagUILang    string
)

// activeBaseURL is shown in the network error guidance.
var activeBaseURL = backend.DefaultBaseURL

// app bundles what every command needs after flags are parsed.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *session.Store
}

func loadApp() (*app, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	if flagProxy != "" {
		cfg.Proxy = flagProxy
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if flagNoSession {
		cfg.Session = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	activeBaseURL = cfg.BaseURL

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger}
	if cfg.Session {
		store, err := session.Default()
		if err != nil {
			logger.Warn().Err(err).Msg("session disabled")
		} else {
			a.store = store
		}
	}
	return a, nil
}

func (a *app) client() (*backend.Client, error) {
	return backend.New(backend.Options{
		BaseURL: a.cfg.BaseURL,
		Timeout: a.cfg.Timeout,
		Proxy:   a.cfg.Proxy,
		Logger:  a.log,
	})
}

// loadState returns the saved session, or an empty one when sessions are
// off or the file is unreadable.
func (a *app) loadState() *session.State {
	if a.store == nil {
		return &session.State{Version: session.Version}
	}
	st, err := a.store.Load()
	if err != nil {
		a.log.Warn().Err(err).Msg("ignoring saved session")
		return &session.State{Version: session.Version}
	}
	return st
}

func (a *app) saveState(st *session.State) {
	if a.store == nil {
		return
	}
	if err := a.store.Save(st); err != nil {
		logWarning("Could not save session: %v", err)
	}
}

// signalContext is cancelled on the first interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		select {
		case <-sigCh:
			logWarning("%s", i18n.T("Interrupted"))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sheetlate",
		Short: "Translate a column of an Excel spreadsheet through a translation backend",
		Long: `sheetlate uploads an Excel workbook (.xlsx, .xls) to a translation backend,
translates one text column and shows the original/translated pairs. Results can
be exported as CSV (UTF-8 with BOM, opens cleanly in Excel) or XLSX.

Commands:
  translate    Upload a file (if needed) and translate one column
  upload       Upload a file and show what the backend found in it
  info         Show metadata of an uploaded file
  delete       Remove an uploaded file from the backend
  languages    List supported languages
  preview      Inspect a spreadsheet locally, with per-column language guesses
  export       Export the last translation results
  session      Show or clear the saved session
  init         Write a .sheetlate.yaml with the current settings
  mock-server  Run a local fake backend for development

Settings come from .sheetlate.yaml, .env, SHEETLATE_* variables and flags,
in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			i18n.Init(flagUILang)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rootDir, "root", ".", "Project directory holding .sheetlate.yaml and .env")
	pf.StringVar(&flagBaseURL, "base-url", "", "Translation backend URL (default http://localhost:8000)")
	pf.DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout (0 = config value)")
	pf.StringVar(&flagProxy, "proxy", "", "HTTP/HTTPS proxy URL")
	pf.StringVar(&flagLogLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log-format", "", "Diagnostic log format: console, json")
	pf.BoolVar(&flagNoSession, "no-session", false, "Do not read or write the saved session")
	pf.StringVar(&flagUILang, "ui-lang", "", "Interface language (default from LANG)")

	root.AddCommand(
		newTranslateCmd(),
		newUploadCmd(),
		newInfoCmd(),
		newDeleteCmd(),
		newLanguagesCmd(),
		newPreviewCmd(),
		newExportCmd(),
		newSessionCmd(),
		newInitCmd(),
		newMockServerCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints err the way the user should see it. Network errors
// get a hint that the backend may not be running.
func reportError(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		logWarning("%s", i18n.T("Cancelled"))
	case apperr.KindOf(err) == apperr.KindNetwork:
		logError(i18n.T("Cannot reach the translation backend. Make sure %s is running."), activeBaseURL)
		if cause := errors.Unwrap(err); cause != nil {
			fmt.Fprintf(os.Stderr, "  %s%v%s\n", colorGray, cause, colorReset)
		}
	case apperr.KindOf(err) == apperr.KindUnknown:
		logError("%v", err)
	default:
		logError("%s", i18n.T(apperr.Detail(err)))
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sheetlate version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	path       string
	from, to   string
	column     int
	columnName string
	sheet      string
	out        string
	rows       int
	oneShot    bool
	textColumn string
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate FILE",
		Short: "Translate one column of a spreadsheet",
		Long: `Translate one column of a spreadsheet.

The file is validated locally (size and type) and uploaded unless the saved
session already holds an upload of the same content. The chosen column is then
sent for translation and the results are shown as a table.

Without --column or --column-name the first column whose text looks like the
source language is used, falling back to column 0.

Examples:
  # Korean to English (the defaults), column picked automatically
  sheetlate translate data.xlsx

  # Japanese to German, third column, save results as CSV
  sheetlate translate data.xlsx --from ja --to de --column 2 -o result.csv

  # Address the column by its header
  sheetlate translate data.xlsx --column-name "Description"

  # Single request: upload and translate the "text" column in one call
  sheetlate translate data.xlsx --one-shot --text-column text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.path = args[0]
			app, err := loadApp()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			if a.oneShot {
				return runOneShot(ctx, app, a)
			}
			return runTranslate(ctx, app, a)
		},
	}

	cmd.Flags().StringVar(&a.from, "from", "", "Source language (default from config, ko)")
	cmd.Flags().StringVar(&a.to, "to", "", "Target language (default from config, en)")
	cmd.Flags().IntVar(&a.column, "column", -1, "Zero-based index of the column to translate")
	cmd.Flags().StringVar(&a.columnName, "column-name", "", "Header of the column to translate")
	cmd.Flags().StringVar(&a.sheet, "sheet", "", "Worksheet name (default: first sheet)")
	cmd.Flags().StringVarP(&a.out, "out", "o", "", "Export results to this file (.csv or .xlsx)")
	cmd.Flags().IntVar(&a.rows, "rows", 20, "Rows to show in the table (0 = all)")
	cmd.Flags().BoolVar(&a.oneShot, "one-shot", false, "Upload and translate in a single request")
	cmd.Flags().StringVar(&a.textColumn, "text-column", "text", "Column header used with --one-shot")

	registerLangCompletion(cmd, "from", "to")
	_ = cmd.RegisterFlagCompletionFunc("sheet", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		wb, err := workbook.ReadFile(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return wb.SheetNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func registerLangCompletion(cmd *cobra.Command, flags ...string) {
	complete := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, m := range langmeta.Supported() {
			out = append(out, m.Code+"\t"+m.Name)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
	for _, f := range flags {
		_ = cmd.RegisterFlagCompletionFunc(f, complete)
	}
}

func pickLangs(a *app, from, to string) (string, string) {
	if from == "" {
		from = a.cfg.SourceLang
	}
	if to == "" {
		to = a.cfg.TargetLang
	}
	return from, to
}

// selectFile reads path and checks it against the configured limits.
func selectFile(a *app, path string) (*filecheck.SelectedFile, session.FileRecord, error) {
	file, err := filecheck.FromPath(path)
	if err != nil {
		return nil, session.FileRecord{}, err
	}
	if err := filecheck.Validate(file, a.cfg.Limits()); err != nil {
		return nil, session.FileRecord{}, err
	}
	fp, err := file.Fingerprint()
	if err != nil {
		return nil, session.FileRecord{}, err
	}
	abs, _ := filepath.Abs(path)
	return file, session.FileRecord{Name: file.Name, Path: abs, Size: file.Size, Fingerprint: fp}, nil
}

// resolveColumn turns the column flags into an index. It reads the file
// locally only when the header name or an automatic pick is needed.
func resolveColumn(a *app, t translateArgs, source string) (int, error) {
	if t.column >= 0 && t.columnName == "" {
		return t.column, nil
	}

	wb, err := workbook.ReadFile(t.path)
	if err != nil {
		if t.columnName != "" {
			return -1, fmt.Errorf("reading %s to find column %q: %w", t.path, t.columnName, err)
		}
		a.log.Debug().Err(err).Msg("local read failed, using column 0")
		return 0, nil
	}
	sheet, ok := wb.Sheet(t.sheet)
	if !ok {
		return -1, fmt.Errorf("worksheet %q not found (available: %s)", t.sheet, strings.Join(wb.SheetNames(), ", "))
	}

	if t.columnName != "" {
		idx := sheet.ColumnIndex(t.columnName)
		if idx < 0 {
			return -1, fmt.Errorf("column %q not found (available: %s)", t.columnName, strings.Join(sheet.Header(), ", "))
		}
		return idx, nil
	}

	single := &workbook.Workbook{Sheets: []workbook.Sheet{*sheet}}
	for _, col := range workbook.Preview(single, 1)[0].Columns {
		if col.Language == source {
			logInfo(i18n.T("Using column %d (%s): text looks like %s"), col.Index, col.Header, langCell(source))
			return col.Index, nil
		}
	}
	return 0, nil
}

func isNotFound(err error) bool {
	var ae *apperr.Error
	return errors.As(err, &ae) && ae.Kind == apperr.KindBackend && ae.Status == 404
}

func runTranslate(ctx context.Context, a *app, t translateArgs) error {
	file, record, err := selectFile(a, t.path)
	if err != nil {
		return err
	}
	source, target := pickLangs(a, t.from, t.to)
	column, err := resolveColumn(a, t, source)
	if err != nil {
		return err
	}

	client, err := a.client()
	if err != nil {
		return err
	}
	sess := workflow.NewSession(client, workflow.SessionOptions{Limits: a.cfg.Limits(), Logger: a.log})
	if err := sess.SelectFile(file); err != nil {
		return err
	}

	state := a.loadState().Select(record, client.BaseURL())
	adopted := false
	if state.Metadata != nil {
		if err := sess.Adopt(state.Metadata); err == nil {
			adopted = true
			logInfo(i18n.T("File unchanged since last upload, reusing %s"), state.Metadata.FileID)
		}
	}
	if !adopted {
		logInfo(i18n.T("Uploading %s (%s)..."), file.Name, filecheck.FormatSize(file.Size))
	}

	params := workflow.Params{SourceLang: source, TargetLang: target, ColumnIndex: column, SheetName: t.sheet}
	logInfo(i18n.T("Translating column %d: %s → %s"), column, langCell(source), langCell(target))

	resp, err := sess.Run(ctx, params)
	if err != nil && adopted && isNotFound(err) {
		logWarning("%s", i18n.T("The backend no longer has the saved upload, uploading again"))
		if err := sess.SelectFile(file); err != nil {
			return err
		}
		resp, err = sess.Run(ctx, params)
	}

	snap := sess.Snapshot()
	if snap.Upload.Metadata != nil {
		state.Metadata = snap.Upload.Metadata
	} else {
		state.Metadata = nil
	}
	if err != nil {
		a.saveState(state)
		return err
	}

	state.Params = &session.Params{SourceLang: source, TargetLang: target, ColumnIndex: column, SheetName: t.sheet}
	state.Response = resp
	a.saveState(state)

	printResults(resp, t.rows)
	return exportIfRequested(t.out, resp.Results)
}

func runOneShot(ctx context.Context, a *app, t translateArgs) error {
	file, record, err := selectFile(a, t.path)
	if err != nil {
		return err
	}
	source, target := pickLangs(a, t.from, t.to)
	for _, code := range []string{source, target} {
		if !langmeta.IsSupported(code) {
			return apperr.Validation(apperr.CodeUnsupportedLanguage, "Unsupported language: %s", code)
		}
	}

	client, err := a.client()
	if err != nil {
		return err
	}
	logInfo(i18n.T("Uploading and translating %s (column %q)..."), file.Name, t.textColumn)
	resp, err := client.UploadAndTranslate(ctx, file, backend.OneShotOptions{
		SourceLang: langmeta.Normalize(source),
		TargetLang: langmeta.Normalize(target),
		TextColumn: t.textColumn,
	})
	if err != nil {
		return err
	}

	state := &session.State{Version: session.Version, BaseURL: client.BaseURL(), File: &record}
	state.Params = &session.Params{SourceLang: source, TargetLang: target, ColumnIndex: -1}
	state.Response = resp
	a.saveState(state)

	printResults(resp, t.rows)
	return exportIfRequested(t.out, resp.Results)
}

func exportIfRequested(path string, rows []backend.ResultRow) error {
	if path == "" {
		return nil
	}
	wrote, err := export.Export(path, rows)
	if err != nil {
		return err
	}
	if !wrote {
		logWarning("%s", i18n.T("No data to export."))
		return nil
	}
	logSuccess(i18n.T("Exported %d rows to %s"), len(rows), path)
	return nil
}

// ---------------------------------------------------------------------------
// upload / info / delete / languages
// ---------------------------------------------------------------------------

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a spreadsheet and show its metadata",
		Long: `Validate and upload a spreadsheet without translating it.

The returned file id is saved in the session, so a following
"sheetlate translate" on the same file skips the upload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			file, record, err := selectFile(a, args[0])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			sess := workflow.NewSession(client, workflow.SessionOptions{Limits: a.cfg.Limits(), Logger: a.log})
			if err := sess.SelectFile(file); err != nil {
				return err
			}
			meta, err := sess.Upload(ctx)
			if err != nil {
				return err
			}

			state := &session.State{Version: session.Version, BaseURL: client.BaseURL(), File: &record, Metadata: meta}
			a.saveState(state)

			logSuccess(i18n.T("Uploaded %s"), file.Name)
			printMetadata(meta)
			return nil
		},
	}
}

// fileIDArg returns the id given on the command line or the saved one.
func fileIDArg(a *app, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	st := a.loadState()
	if st.Metadata == nil || st.Metadata.FileID == "" {
		return "", apperr.State(apperr.CodeNotUploaded, "No file id given and none saved in the session")
	}
	return st.Metadata.FileID, nil
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [FILE_ID]",
		Short: "Show metadata of an uploaded file",
		Long:  `Show what the backend knows about an uploaded file. Defaults to the file in the saved session.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			id, err := fileIDArg(a, args)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			meta, err := client.FileInfo(ctx, id)
			if err != nil {
				return err
			}
			printMetadata(meta)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [FILE_ID]",
		Short: "Delete an uploaded file from the backend",
		Long:  `Delete an uploaded file from the backend. Defaults to the file in the saved session.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			id, err := fileIDArg(a, args)
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			if err := client.DeleteFile(ctx, id); err != nil {
				return err
			}
			st := a.loadState()
			if st.Metadata != nil && st.Metadata.FileID == id {
				st.Metadata = nil
				a.saveState(st)
			}
			logSuccess(i18n.T("Deleted %s"), id)
			return nil
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Long:  `List the languages the backend accepts, with its default source and target.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			langs := &backend.Languages{
				Codes:         langmeta.Codes(),
				DefaultSource: langmeta.DefaultSource,
				DefaultTarget: langmeta.DefaultTarget,
			}
			if !local {
				a, err := loadApp()
				if err != nil {
					return err
				}
				client, err := a.client()
				if err != nil {
					return err
				}
				ctx, cancel := signalContext()
				defer cancel()
				if langs, err = client.Languages(ctx); err != nil {
					return err
				}
			}

			for _, code := range langs.Codes {
				marker := "  "
				switch code {
				case langs.DefaultSource:
					marker = "→ "
				case langs.DefaultTarget:
					marker = "← "
				}
				fmt.Printf("%s%s\n", marker, langCell(code))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Print the built-in list without asking the backend")
	return cmd
}

// ---------------------------------------------------------------------------
// preview
// ---------------------------------------------------------------------------

func newPreviewCmd() *cobra.Command {
	var samples int

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Inspect a spreadsheet locally",
		Long: `Show sheets, columns, sample values and the detected language of every
column. Nothing is sent to the backend. Also reads .csv files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := workbook.ReadFile(args[0])
			if err != nil {
				return err
			}
			for _, sp := range workbook.Preview(wb, samples) {
				fmt.Fprintf(os.Stderr, "\n%s%s%s  ", colorBlue, sp.Name, colorReset)
				fmt.Fprintf(os.Stderr, i18n.T("%d data rows, %d columns")+"\n", sp.DataRows, len(sp.Columns))
				fmt.Fprintln(os.Stderr, strings.Repeat("─", 78))
				for _, col := range sp.Columns {
					lang := "-"
					if col.Language != "" {
						lang = col.Language
					}
					fmt.Fprintf(os.Stderr, "%-4d %s %-4s %5d  %s%s%s\n",
						col.Index,
						pad(truncate(col.Header, 20), 20),
						lang,
						col.Filled,
						colorGray, truncate(strings.Join(col.Samples, " | "), 42), colorReset)
				}
			}
			fmt.Fprintln(os.Stderr)
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 3, "Sample values per column")
	return cmd
}

// ---------------------------------------------------------------------------
// export / session
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [OUT]",
		Short: "Export the last translation results",
		Long: `Write the results of the last translation to OUT. The format follows the
extension: .csv (UTF-8 with BOM, every field quoted) or .xlsx. Without OUT the
file is named after the source spreadsheet, e.g. data_translated.csv.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			st := a.loadState()
			if st.Response == nil || len(st.Response.Results) == 0 {
				logWarning("%s", i18n.T("No data to export."))
				return nil
			}

			out := ""
			if len(args) > 0 {
				out = args[0]
			} else {
				source := ""
				if st.File != nil {
					source = st.File.Name
				}
				out = export.DefaultFilename(source, ".csv")
			}
			return exportIfRequested(out, st.Response.Results)
		},
	}
}

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show or clear the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if a.store == nil {
				logInfo("%s", i18n.T("Sessions are disabled"))
				return nil
			}
			st := a.loadState()
			fmt.Fprintf(os.Stderr, "%-14s %s\n", i18n.T("Session file:"), a.store.Path())
			if st.File == nil {
				logInfo("%s", i18n.T("No saved session"))
				return nil
			}
			fmt.Fprintf(os.Stderr, "%-14s %s (%s)\n", i18n.T("File:"), st.File.Name, filecheck.FormatSize(st.File.Size))
			fmt.Fprintf(os.Stderr, "%-14s %s\n", i18n.T("Backend:"), st.BaseURL)
			if st.Metadata != nil {
				printMetadata(st.Metadata)
			}
			if st.Params != nil {
				fmt.Fprintf(os.Stderr, "%-14s %s → %s\n", i18n.T("Languages:"), st.Params.SourceLang, st.Params.TargetLang)
			}
			if st.Response != nil {
				fmt.Fprintf(os.Stderr, "%-14s %s\n", i18n.T("Results:"), summaryLine(st.Response))
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the saved file, upload and results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if a.store == nil {
				return nil
			}
			if err := a.store.Clear(); err != nil {
				return err
			}
			logSuccess("%s", i18n.T("Session cleared"))
			return nil
		},
	})

	return cmd
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .sheetlate.yaml with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(rootDir, config.FileName)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			written, err := a.cfg.WriteFile(rootDir)
			if err != nil {
				return err
			}
			logSuccess(i18n.T("Wrote %s"), written)
			logInfo("Environment overrides: %s", strings.Join(config.EnvUsage(), ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// ---------------------------------------------------------------------------
// mock-server
// ---------------------------------------------------------------------------

func newMockServerCmd() *cobra.Command {
	var (
		host     string
		port     int
		envelope string
		latency  time.Duration
		failRate int
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local fake translation backend",
		Long: `Serve the backend HTTP API from memory. Uploaded workbooks are parsed
locally and "translated" by prefixing the target language, e.g. "[EN] 안녕".

--envelope selects the translate response shape (direct, nested, list) so
clients can be checked against every variant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			mc := a.cfg.Mock
			if cmd.Flags().Changed("host") {
				mc.Host = host
			}
			if cmd.Flags().Changed("port") {
				mc.Port = port
			}
			if cmd.Flags().Changed("envelope") {
				mc.Envelope = envelope
			}
			if cmd.Flags().Changed("latency") {
				mc.Latency = latency
			}
			env, err := mockbackend.ParseEnvelope(mc.Envelope)
			if err != nil {
				return err
			}

			opts := mockbackend.Options{
				Host:     mc.Host,
				Port:     mc.Port,
				Envelope: env,
				Latency:  mc.Latency,
				Limits:   a.cfg.Limits(),
			}
			if failRate > 0 {
				opts.Translate = failingTranslate(failRate)
			}

			ctx, cancel := signalContext()
			defer cancel()

			logInfo(i18n.T("Mock backend listening on http://%s:%d (envelope: %s)"), mc.Host, mc.Port, mc.Envelope)
			return mockbackend.New(opts, a.log).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Listen address")
	cmd.Flags().IntVar(&port, "port", 8000, "Listen port")
	cmd.Flags().StringVar(&envelope, "envelope", "direct", "Translate response shape: direct, nested, list")
	cmd.Flags().DurationVar(&latency, "latency", 0, "Artificial delay per request")
	cmd.Flags().IntVar(&failRate, "fail-every", 0, "Mark every Nth row as failed (0 = never)")

	_ = cmd.RegisterFlagCompletionFunc("envelope", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"direct\tTranslationResponse object",
			"nested\t{\"data\": TranslationResponse}",
			"list\t{\"success\", \"data\": [rows], \"total_count\"}",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// failingTranslate fails every nth call, counting across requests.
func failingTranslate(n int) mockbackend.TranslateFunc {
	var calls atomic.Int64
	return func(ctx context.Context, text, source, target string) (string, error) {
		if calls.Add(1)%int64(n) == 0 {
			return "", fmt.Errorf("simulated failure")
		}
		return mockbackend.MockTranslate(ctx, text, source, target)
	}
}
