package mockbackend

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/minios-linux/sheetlate/filecheck"
	"github.com/minios-linux/sheetlate/langmeta"
	"github.com/minios-linux/sheetlate/workbook"
)

type metadataResponse struct {
	Success     bool     `json:"success"`
	FileID      string   `json:"file_id"`
	Filename    string   `json:"filename"`
	FileSize    int64    `json:"file_size"`
	UploadTime  string   `json:"upload_time"`
	SheetNames  []string `json:"sheet_names"`
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
}

type translateRequest struct {
	FileID      string  `json:"file_id"`
	ColumnIndex int     `json:"column_index"`
	SourceLang  string  `json:"source_lang"`
	TargetLang  string  `json:"target_lang"`
	SheetName   *string `json:"sheet_name"`
}

type resultRow struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Error      string `json:"error,omitempty"`
}

type translationBody struct {
	Status         string      `json:"status,omitempty"`
	FileName       string      `json:"file_name,omitempty"`
	TotalRows      int         `json:"total_rows"`
	SuccessCount   int         `json:"success_count"`
	ErrorCount     int         `json:"error_count"`
	ProcessingTime float64     `json:"processing_time"`
	Results        []resultRow `json:"results"`
}

// ---------------------------------------------------------------------------
// Upload
// ---------------------------------------------------------------------------

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Field 'file' is required")
	}
	if !filecheck.HasAllowedExtension(fh.Filename, s.opts.Limits.AllowedExtensions) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid file type. Allowed extensions: %s", strings.Join(s.opts.Limits.AllowedExtensions, ", ")))
	}
	if fh.Size > s.opts.Limits.MaxSize {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("File too large. Max size: %s", filecheck.FormatSize(s.opts.Limits.MaxSize)))
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Error uploading file: %v", err))
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Error uploading file: %v", err))
	}

	book, err := workbook.Read(fh.Filename, data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Error reading file: %v", err))
	}
	if err := s.wait(c.Request().Context()); err != nil {
		return err
	}

	if source := c.QueryParam("source_lang"); source != "" {
		return s.oneShot(c, fh.Filename, book, source, c.QueryParam("target_lang"), c.QueryParam("text_column"))
	}

	stored := &storedFile{
		filename:   fh.Filename,
		size:       int64(len(data)),
		uploadedAt: time.Now().UTC(),
		book:       book,
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.files[id] = stored
	s.mu.Unlock()

	return c.JSON(http.StatusOK, metadataFor(id, stored))
}

func metadataFor(id string, f *storedFile) metadataResponse {
	first, _ := f.book.Sheet("")
	return metadataResponse{
		Success:     true,
		FileID:      id,
		Filename:    f.filename,
		FileSize:    f.size,
		UploadTime:  f.uploadedAt.Format("2006-01-02T15:04:05"),
		SheetNames:  f.book.SheetNames(),
		RowCount:    len(first.DataRows()),
		ColumnCount: first.ColumnCount(),
	}
}

// oneShot handles the upload variant that translates immediately.
func (s *Server) oneShot(c echo.Context, filename string, book *workbook.Workbook, source, target, column string) error {
	if err := checkLanguages(source, target); err != nil {
		return err
	}
	sheet, _ := book.Sheet("")
	if column == "" {
		column = "text"
	}
	idx := sheet.ColumnIndex(column)
	if idx < 0 {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Column '%s' not found. Available: %s", column, strings.Join(sheet.Header(), ", ")))
	}

	body, err := s.translateColumn(c, sheet.Column(idx), source, target)
	if err != nil {
		return err
	}
	body.Status = "success"
	body.FileName = filename
	return c.JSON(http.StatusOK, body)
}

// ---------------------------------------------------------------------------
// Info / delete
// ---------------------------------------------------------------------------

func (s *Server) lookup(id string) (*storedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	return f, ok
}

func (s *Server) handleFileInfo(c echo.Context) error {
	id := c.Param("file_id")
	f, ok := s.lookup(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("File not found: %s", id))
	}
	return c.JSON(http.StatusOK, metadataFor(id, f))
}

func (s *Server) handleDelete(c echo.Context) error {
	id := c.Param("file_id")

	s.mu.Lock()
	_, ok := s.files[id]
	delete(s.files, id)
	s.mu.Unlock()

	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "File deleted successfully",
	})
}

// ---------------------------------------------------------------------------
// Translate
// ---------------------------------------------------------------------------

func checkLanguages(source, target string) error {
	supported := strings.Join(langmeta.Codes(), ", ")
	if !supportedLanguage(source) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Unsupported source language. Supported: %s", supported))
	}
	if !supportedLanguage(target) {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Unsupported target language. Supported: %s", supported))
	}
	return nil
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := checkLanguages(req.SourceLang, req.TargetLang); err != nil {
		return err
	}

	f, ok := s.lookup(req.FileID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("File not found: %s", req.FileID))
	}

	sheetName := ""
	if req.SheetName != nil {
		sheetName = *req.SheetName
	}
	sheet, ok := f.book.Sheet(sheetName)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Worksheet named '%s' not found", sheetName))
	}

	width := sheet.ColumnCount()
	if req.ColumnIndex < 0 || req.ColumnIndex >= width {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Column index %d out of range. Max index: %d", req.ColumnIndex, width-1))
	}

	values := sheet.Column(req.ColumnIndex)
	if len(values) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Selected column is empty")
	}

	body, err := s.translateColumn(c, values, req.SourceLang, req.TargetLang)
	if err != nil {
		return err
	}

	switch s.opts.Envelope {
	case EnvelopeNested:
		return c.JSON(http.StatusOK, map[string]any{"data": body})
	case EnvelopeList:
		return c.JSON(http.StatusOK, map[string]any{
			"success":     true,
			"data":        body.Results,
			"total_count": len(body.Results),
		})
	default:
		return c.JSON(http.StatusOK, body)
	}
}

func (s *Server) translateColumn(c echo.Context, values []string, source, target string) (*translationBody, error) {
	if s.opts.MaxBatchSize > 0 && len(values) > s.opts.MaxBatchSize {
		return nil, echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Too many texts. Maximum batch size: %d", s.opts.MaxBatchSize))
	}

	ctx := c.Request().Context()
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	body := &translationBody{Results: make([]resultRow, 0, len(values))}
	for _, text := range values {
		row := resultRow{Original: text, SourceLang: source, TargetLang: target}
		translated, err := s.opts.Translate(ctx, text, source, target)
		if err != nil {
			row.Error = err.Error()
			body.ErrorCount++
		} else {
			row.Translated = translated
			body.SuccessCount++
		}
		body.Results = append(body.Results, row)
	}
	body.TotalRows = len(body.Results)
	body.ProcessingTime = time.Since(start).Seconds()
	return body, nil
}

func (s *Server) handleLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success":        true,
		"languages":      langmeta.Codes(),
		"default_source": langmeta.DefaultSource,
		"default_target": langmeta.DefaultTarget,
	})
}
