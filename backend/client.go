// Package backend is the HTTP client for the spreadsheet translation
// service. It wraps the upload and translate endpoints (plus the info,
// delete and languages helpers) behind typed methods and maps every
// failure onto the apperr taxonomy.
//
// The client makes exactly one attempt per call. Retrying, if wanted, is
// the caller's decision.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/minios-linux/sheetlate/apperr"
	"github.com/minios-linux/sheetlate/filecheck"
)

// ---------------------------------------------------------------------------
// Endpoints
// ---------------------------------------------------------------------------

const (
	UploadPath    = "/api/v1/upload"
	TranslatePath = "/api/v1/translate"
	LanguagesPath = "/api/v1/translate/languages"
)

// DefaultBaseURL is where the backend listens in local development.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds a single request, including the upload body.
const DefaultTimeout = 120 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 64 << 20

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. http://localhost:8000.
	BaseURL string
	// Timeout is the per-request timeout (0 = DefaultTimeout).
	Timeout time.Duration
	// Proxy is an optional HTTP/HTTPS proxy URL. When empty the standard
	// proxy environment variables apply.
	Proxy string
	// HTTPClient overrides the transport entirely (tests).
	HTTPClient *http.Client
	// Logger receives request-level debug logs.
	Logger zerolog.Logger
}

// Client talks to one translation backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// New returns a Client for opts.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must use http or https", base)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = makeHTTPClient(opts.Proxy, timeout)
	}

	return &Client{
		baseURL: base,
		http:    hc,
		log:     opts.Logger.With().Str("component", "backend").Logger(),
	}, nil
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Upload sends file as a multipart body and returns the backend's metadata.
func (c *Client) Upload(ctx context.Context, file *filecheck.SelectedFile) (*FileMetadata, error) {
	body, contentType, err := multipartBody(file)
	if err != nil {
		return nil, err
	}

	respBody, err := c.do(ctx, http.MethodPost, UploadPath, nil, contentType, body)
	if err != nil {
		return nil, err
	}

	meta, err := decodeMetadata(respBody)
	if err != nil {
		return nil, payloadError(err)
	}
	c.log.Debug().
		Str("file_id", meta.FileID).
		Int("rows", meta.RowCount).
		Int("columns", meta.ColumnCount).
		Msg("upload accepted")
	return meta, nil
}

// UploadAndTranslate uses the single-request variant of the upload
// endpoint: the backend parses the file, translates the named column and
// answers with the translation directly.
func (c *Client) UploadAndTranslate(ctx context.Context, file *filecheck.SelectedFile, opts OneShotOptions) (*TranslationResponse, error) {
	body, contentType, err := multipartBody(file)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("source_lang", opts.SourceLang)
	query.Set("target_lang", opts.TargetLang)
	if opts.TextColumn != "" {
		query.Set("text_column", opts.TextColumn)
	}

	respBody, err := c.do(ctx, http.MethodPost, UploadPath, query, contentType, body)
	if err != nil {
		return nil, err
	}

	resp, err := decodeTranslation(respBody)
	if err != nil {
		return nil, payloadError(err)
	}
	fillLanguages(resp, opts.SourceLang, opts.TargetLang)
	return resp, nil
}

// Translate asks the backend to translate one column of an uploaded file.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslationResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding translate request: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, TranslatePath, nil, "application/json", body)
	if err != nil {
		return nil, err
	}

	resp, err := decodeTranslation(respBody)
	if err != nil {
		return nil, payloadError(err)
	}
	fillLanguages(resp, req.SourceLang, req.TargetLang)
	c.log.Debug().
		Str("file_id", req.FileID).
		Int("total", resp.TotalRows).
		Int("failed", resp.ErrorCount).
		Msg("translation received")
	return resp, nil
}

// FileInfo fetches the metadata of a previously uploaded file.
func (c *Client) FileInfo(ctx context.Context, fileID string) (*FileMetadata, error) {
	respBody, err := c.do(ctx, http.MethodGet, UploadPath+"/"+url.PathEscape(fileID)+"/info", nil, "", nil)
	if err != nil {
		return nil, err
	}
	meta, err := decodeMetadata(respBody)
	if err != nil {
		return nil, payloadError(err)
	}
	return meta, nil
}

// DeleteFile removes an uploaded file from the backend.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	_, err := c.do(ctx, http.MethodDelete, UploadPath+"/"+url.PathEscape(fileID), nil, "", nil)
	return err
}

// Languages returns the languages the backend accepts.
func (c *Client) Languages(ctx context.Context) (*Languages, error) {
	respBody, err := c.do(ctx, http.MethodGet, LanguagesPath, nil, "", nil)
	if err != nil {
		return nil, err
	}
	var langs Languages
	if err := json.Unmarshal(respBody, &langs); err != nil {
		return nil, apperr.BadPayload(err)
	}
	return &langs, nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// do performs one request and returns the body of a 2xx response. Transport
// failures become network errors, non-2xx statuses become backend errors.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.log.Debug().Str("method", method).Str("url", endpoint).Msg("request")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, apperr.Network(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperr.Network(fmt.Errorf("reading response: %w", err))
	}

	c.log.Debug().
		Str("method", method).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Backend(resp.StatusCode, errorDetail(respBody))
	}
	return respBody, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartBody(file *filecheck.SelectedFile) ([]byte, string, error) {
	if file == nil {
		return nil, "", apperr.Validation(apperr.CodeNoFileSelected, "No file selected")
	}
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", file.Name, err)
	}
	defer src.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	contentType := file.MimeKind
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating multipart part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", file.Name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// payloadError maps a decode failure of a 2xx body onto the taxonomy. A
// body that says success=false is a backend rejection, not a bad payload.
func payloadError(err error) error {
	var unsuccessful errUnsuccessful
	if errors.As(err, &unsuccessful) {
		return apperr.Backend(http.StatusOK, string(unsuccessful))
	}
	return apperr.BadPayload(err)
}
