// Package mockbackend serves the translation backend's HTTP contract with a
// fake translator, for local development and tests. Files are kept in
// memory and "translated" by prefixing the target language code, the same
// placeholder the real service uses when no translation API is configured.
package mockbackend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/minios-linux/sheetlate/filecheck"
	"github.com/minios-linux/sheetlate/langmeta"
	"github.com/minios-linux/sheetlate/workbook"
)

// Envelope selects the JSON shape of translate responses.
type Envelope int

const (
	// EnvelopeDirect answers with the TranslationResponse object itself.
	EnvelopeDirect Envelope = iota
	// EnvelopeNested wraps it as {"data": {...}}.
	EnvelopeNested
	// EnvelopeList answers {"success": true, "data": [rows], "total_count": n}.
	EnvelopeList
)

// ParseEnvelope maps "direct", "nested" or "list" to an Envelope.
func ParseEnvelope(name string) (Envelope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct":
		return EnvelopeDirect, nil
	case "nested":
		return EnvelopeNested, nil
	case "list":
		return EnvelopeList, nil
	default:
		return EnvelopeDirect, fmt.Errorf("unknown envelope %q (valid: direct, nested, list)", name)
	}
}

// TranslateFunc translates one text. A returned error marks the row failed.
type TranslateFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

// MockTranslate is the default TranslateFunc.
func MockTranslate(_ context.Context, text, _, targetLang string) (string, error) {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(targetLang), text), nil
}

// Options configures the mock server.
type Options struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	Limits          filecheck.Limits
	Envelope        Envelope
	Translate       TranslateFunc
	// Latency is added to every upload and translate call.
	Latency time.Duration
	// MaxBatchSize rejects columns with more values (0 = unlimited).
	MaxBatchSize int
}

type storedFile struct {
	filename   string
	size       int64
	uploadedAt time.Time
	book       *workbook.Workbook
}

// Server is an in-memory translation backend.
type Server struct {
	opts   Options
	logger zerolog.Logger
	echo   *echo.Echo

	mu    sync.Mutex
	files map[string]*storedFile
}

// New builds the server and its routes.
func New(opts Options, logger zerolog.Logger) *Server {
	if opts.Translate == nil {
		opts.Translate = MockTranslate
	}
	if opts.Limits.MaxSize <= 0 {
		opts.Limits.MaxSize = filecheck.DefaultMaxSize
	}
	if len(opts.Limits.AllowedExtensions) == 0 {
		opts.Limits.AllowedExtensions = append([]string(nil), filecheck.DefaultAllowedExtensions...)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	s := &Server{
		opts:   opts,
		logger: logger.With().Str("component", "mockbackend").Logger(),
		files:  make(map[string]*storedFile),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.logger.Debug()
			if v.Error != nil {
				ev = s.logger.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.POST("/upload", s.handleUpload)
	api.POST("/upload/", s.handleUpload)
	api.GET("/upload/:file_id/info", s.handleFileInfo)
	api.DELETE("/upload/:file_id", s.handleDelete)
	api.POST("/translate", s.handleTranslate)
	api.GET("/translate/languages", s.handleLanguages)

	s.echo = e
	return s
}

// Handler exposes the routes for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// FileCount returns how many uploads are stored.
func (s *Server) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Start listens until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     s.echo,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("mock backend started")

	if err := s.echo.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("mock backend stopped")
	return nil
}

// httpErrorHandler renders every error as {"detail": "..."}.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	_ = c.JSON(status, map[string]string{"detail": message})
}

func (s *Server) wait(ctx context.Context) error {
	if s.opts.Latency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.opts.Latency):
		return nil
	}
}

func supportedLanguage(code string) bool {
	_, ok := langmeta.Registry[code]
	return ok
}
