package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/minios-linux/sheetlate/apperr"
	"github.com/minios-linux/sheetlate/filecheck"
	"github.com/minios-linux/sheetlate/mockbackend"
)

func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func sampleFile(t *testing.T) *filecheck.SelectedFile {
	t.Helper()
	return filecheck.FromBytes("greetings.xlsx", buildXLSX(t, [][]any{
		{"id", "text", "note"},
		{1, "안녕하세요", "x"},
		{2, "감사합니다", ""},
		{3, "", "only note"},
	}))
}

func newMock(t *testing.T, opts mockbackend.Options) (*Client, *mockbackend.Server) {
	t.Helper()
	srv := mockbackend.New(opts, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := New(Options{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"ftp://example.com", "localhost:8000", "://bad"} {
		if _, err := New(Options{BaseURL: base}); err == nil {
			t.Fatalf("New(%q) succeeded, want error", base)
		}
	}
	c, err := New(Options{})
	if err != nil {
		t.Fatalf("New(default): %v", err)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Fatalf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
}

func TestUploadAndTranslateEnvelopes(t *testing.T) {
	for _, env := range []mockbackend.Envelope{mockbackend.EnvelopeDirect, mockbackend.EnvelopeNested, mockbackend.EnvelopeList} {
		t.Run(fmt.Sprintf("envelope-%d", env), func(t *testing.T) {
			c, _ := newMock(t, mockbackend.Options{Envelope: env})
			ctx := context.Background()

			meta, err := c.Upload(ctx, sampleFile(t))
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if meta.FileID == "" || meta.RowCount != 3 || meta.ColumnCount != 3 {
				t.Fatalf("unexpected metadata: %+v", meta)
			}
			if len(meta.SheetNames) != 1 || meta.SheetNames[0] != "Sheet1" {
				t.Fatalf("SheetNames = %v", meta.SheetNames)
			}
			if meta.UploadTime.IsZero() {
				t.Fatal("UploadTime not parsed")
			}

			resp, err := c.Translate(ctx, TranslateRequest{
				FileID:      meta.FileID,
				ColumnIndex: 1,
				SourceLang:  "ko",
				TargetLang:  "en",
			})
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if resp.TotalRows != 2 || resp.SuccessCount != 2 || resp.ErrorCount != 0 {
				t.Fatalf("counts = %d/%d/%d", resp.TotalRows, resp.SuccessCount, resp.ErrorCount)
			}
			want := ResultRow{Original: "안녕하세요", Translated: "[EN] 안녕하세요", SourceLang: "ko", TargetLang: "en"}
			if resp.Results[0] != want {
				t.Fatalf("Results[0] = %+v, want %+v", resp.Results[0], want)
			}
		})
	}
}

func TestTranslateRowErrorsCounted(t *testing.T) {
	c, _ := newMock(t, mockbackend.Options{
		Envelope: mockbackend.EnvelopeList,
		Translate: func(_ context.Context, text, _, target string) (string, error) {
			if strings.HasPrefix(text, "감사") {
				return "", errors.New("quota exceeded")
			}
			return "[" + strings.ToUpper(target) + "] " + text, nil
		},
	})
	ctx := context.Background()
	meta, err := c.Upload(ctx, sampleFile(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	resp, err := c.Translate(ctx, TranslateRequest{FileID: meta.FileID, ColumnIndex: 1, SourceLang: "ko", TargetLang: "ja"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if resp.SuccessCount != 1 || resp.ErrorCount != 1 || resp.TotalRows != 2 {
		t.Fatalf("counts = %d/%d/%d", resp.TotalRows, resp.SuccessCount, resp.ErrorCount)
	}
	if !resp.Results[1].Failed() || resp.Results[1].Error != "quota exceeded" {
		t.Fatalf("Results[1] = %+v", resp.Results[1])
	}
}

func TestBackendErrorDetailPassthrough(t *testing.T) {
	c, _ := newMock(t, mockbackend.Options{})
	ctx := context.Background()
	meta, err := c.Upload(ctx, sampleFile(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	tests := []struct {
		name   string
		req    TranslateRequest
		status int
		detail string
	}{
		{
			name:   "column out of range",
			req:    TranslateRequest{FileID: meta.FileID, ColumnIndex: 7, SourceLang: "ko", TargetLang: "en"},
			status: http.StatusBadRequest,
			detail: "Column index 7 out of range. Max index: 2",
		},
		{
			name:   "unknown file",
			req:    TranslateRequest{FileID: "missing", ColumnIndex: 0, SourceLang: "ko", TargetLang: "en"},
			status: http.StatusNotFound,
			detail: "File not found: missing",
		},
		{
			name:   "unsupported language",
			req:    TranslateRequest{FileID: meta.FileID, ColumnIndex: 1, SourceLang: "xx", TargetLang: "en"},
			status: http.StatusBadRequest,
			detail: "Unsupported source language. Supported: en, ko, ja, zh, es, fr, de",
		},
	}

	for _, tc := range tests {
		_, err := c.Translate(ctx, tc.req)
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			t.Fatalf("%s: Translate() = %v, want *apperr.Error", tc.name, err)
		}
		if ae.Kind != apperr.KindBackend || ae.Status != tc.status || ae.Message != tc.detail {
			t.Fatalf("%s: got kind=%s status=%d msg=%q", tc.name, ae.Kind, ae.Status, ae.Message)
		}
	}
}

func TestBackendErrorWithoutDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer ts.Close()

	c, err := New(Options{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Translate(context.Background(), TranslateRequest{FileID: "f", SourceLang: "ko", TargetLang: "en"})
	if !errors.Is(err, apperr.ErrBackend) {
		t.Fatalf("Translate() = %v, want backend error", err)
	}
	if got := apperr.Detail(err); got != apperr.GenericBackendMessage {
		t.Fatalf("Detail() = %q, want %q", got, apperr.GenericBackendMessage)
	}
}

func TestFastAPIValidationDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","file_id"],"msg":"field required"},{"msg":"value is not a valid integer"}]}`))
	}))
	defer ts.Close()

	c, _ := New(Options{BaseURL: ts.URL})
	_, err := c.Translate(context.Background(), TranslateRequest{})
	if got := apperr.Detail(err); got != "field required; value is not a valid integer" {
		t.Fatalf("Detail() = %q", got)
	}
}

func TestNetworkErrorWhenUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	c, err := New(Options{BaseURL: base})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Upload(context.Background(), sampleFile(t))
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("Upload() = %v, want network error", err)
	}
	if apperr.KindOf(err) != apperr.KindNetwork {
		t.Fatalf("KindOf() = %s", apperr.KindOf(err))
	}
}

func TestCancelledContextIsNotNetworkError(t *testing.T) {
	c, _ := newMock(t, mockbackend.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Upload(ctx, sampleFile(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Upload() = %v, want context.Canceled", err)
	}
}

func TestBadPayload(t *testing.T) {
	bodies := map[string]string{
		"upload":    `{"sheet_names": ["a"]}`,
		"translate": `{"results": "nope"}`,
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == UploadPath {
			_, _ = w.Write([]byte(bodies["upload"]))
			return
		}
		_, _ = w.Write([]byte(bodies["translate"]))
	}))
	defer ts.Close()

	c, _ := New(Options{BaseURL: ts.URL})
	ctx := context.Background()
	if _, err := c.Upload(ctx, sampleFile(t)); !errors.Is(err, apperr.ErrBackend) || apperr.Detail(err) == "" {
		t.Fatalf("Upload() = %v, want bad payload", err)
	}
	if _, err := c.Translate(ctx, TranslateRequest{}); !errors.Is(err, apperr.ErrBackend) {
		t.Fatalf("Translate() = %v, want bad payload", err)
	}
}

func TestUnsuccessfulBodyIsBackendError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "data": [], "message": "translator offline"}`))
	}))
	defer ts.Close()

	c, _ := New(Options{BaseURL: ts.URL})
	_, err := c.Translate(context.Background(), TranslateRequest{})
	if apperr.Detail(err) != "translator offline" {
		t.Fatalf("Translate() = %v", err)
	}
}

func TestUnsuccessfulBodyWithoutPayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "detail": "Sheet is empty"}`))
	}))
	defer ts.Close()

	c, _ := New(Options{BaseURL: ts.URL})
	ctx := context.Background()

	_, uploadErr := c.Upload(ctx, sampleFile(t))
	_, translateErr := c.Translate(ctx, TranslateRequest{FileID: "f1"})
	_, infoErr := c.FileInfo(ctx, "f1")

	for name, err := range map[string]error{"Upload": uploadErr, "Translate": translateErr, "FileInfo": infoErr} {
		if !errors.Is(err, apperr.ErrBackend) || errors.Is(err, &apperr.Error{Kind: apperr.KindBackend, Code: apperr.CodeBadPayload}) {
			t.Fatalf("%s() = %v, want backend rejection", name, err)
		}
		if got := apperr.Detail(err); got != "Sheet is empty" {
			t.Fatalf("%s() detail = %q, want %q", name, got, "Sheet is empty")
		}
	}
}

func TestUploadAndTranslateOneShot(t *testing.T) {
	c, srv := newMock(t, mockbackend.Options{})
	resp, err := c.UploadAndTranslate(context.Background(), sampleFile(t), OneShotOptions{
		SourceLang: "ko",
		TargetLang: "fr",
		TextColumn: "TEXT",
	})
	if err != nil {
		t.Fatalf("UploadAndTranslate: %v", err)
	}
	if resp.TotalRows != 2 || resp.Results[1].Translated != "[FR] 감사합니다" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if srv.FileCount() != 0 {
		t.Fatalf("one-shot upload stored %d files", srv.FileCount())
	}
}

func TestFileInfoDeleteLanguages(t *testing.T) {
	c, srv := newMock(t, mockbackend.Options{})
	ctx := context.Background()

	meta, err := c.Upload(ctx, sampleFile(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	info, err := c.FileInfo(ctx, meta.FileID)
	if err != nil {
		t.Fatalf("FileInfo: %v", err)
	}
	if info.FileID != meta.FileID || info.Filename != "greetings.xlsx" || info.RowCount != 3 {
		t.Fatalf("FileInfo = %+v", info)
	}

	if err := c.DeleteFile(ctx, meta.FileID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if srv.FileCount() != 0 {
		t.Fatalf("FileCount() = %d after delete", srv.FileCount())
	}
	if err := c.DeleteFile(ctx, meta.FileID); apperr.KindOf(err) != apperr.KindBackend {
		t.Fatalf("second DeleteFile() = %v, want backend error", err)
	}

	langs, err := c.Languages(ctx)
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	if langs.DefaultSource != "ko" || langs.DefaultTarget != "en" || len(langs.Codes) != 7 {
		t.Fatalf("Languages = %+v", langs)
	}
}
