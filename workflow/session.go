package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/minios-linux/sheetlate/apperr"
	"github.com/minios-linux/sheetlate/backend"
	"github.com/minios-linux/sheetlate/filecheck"
)

// Backend is the part of backend.Client the Session drives.
type Backend interface {
	Upload(ctx context.Context, file *filecheck.SelectedFile) (*backend.FileMetadata, error)
	Translate(ctx context.Context, req backend.TranslateRequest) (*backend.TranslationResponse, error)
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Limits filecheck.Limits
	Logger zerolog.Logger
}

// Snapshot is a consistent copy of both state machines for rendering.
type Snapshot struct {
	Generation  uint64
	Upload      UploadState
	Translation TranslationState
}

// Session owns the workflow state and performs the network calls the state
// machines ask for. It is safe for concurrent use; the lock is never held
// across a request.
type Session struct {
	backend Backend
	limits  filecheck.Limits
	log     zerolog.Logger

	mu          sync.Mutex
	generation  uint64
	upload      UploadState
	translation TranslationState
}

// NewSession returns an idle Session talking to b.
func NewSession(b Backend, opts SessionOptions) *Session {
	limits := opts.Limits
	if limits.MaxSize <= 0 {
		limits.MaxSize = filecheck.DefaultMaxSize
	}
	if len(limits.AllowedExtensions) == 0 {
		limits.AllowedExtensions = filecheck.DefaultLimits().AllowedExtensions
	}
	return &Session{
		backend: b,
		limits:  limits,
		log:     opts.Logger.With().Str("component", "workflow").Logger(),
	}
}

// SelectFile replaces the current selection. Metadata and results of the
// previous file are cleared and calls still in flight for it become stale.
// The validation error, if any, is returned and also kept in the state.
func (s *Session) SelectFile(file *filecheck.SelectedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.upload = s.upload.Select(file, s.limits, s.generation)
	s.translation = s.translation.Reset(s.generation)

	if s.upload.Err != nil {
		s.log.Debug().Err(s.upload.Err).Uint64("generation", s.generation).Msg("file rejected")
		return s.upload.Err
	}
	s.log.Debug().
		Str("file", file.Name).
		Int64("size", file.Size).
		Uint64("generation", s.generation).
		Msg("file selected")
	return nil
}

// Adopt treats the selected file as already uploaded with meta.
func (s *Session) Adopt(meta *backend.FileMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.translation.Phase == Translating {
		return apperr.State(apperr.CodeRequestInFlight, "A translation is already in progress")
	}
	next, err := s.upload.Adopt(meta)
	if err != nil {
		return err
	}
	s.upload = next
	s.log.Debug().Str("file_id", meta.FileID).Msg("reusing upload")
	return nil
}

// Upload sends the selected file. A call while an upload or a translation
// is pending is rejected with a RequestInFlight state error.
func (s *Session) Upload(ctx context.Context) (*backend.FileMetadata, error) {
	s.mu.Lock()
	if s.translation.Phase == Translating {
		s.mu.Unlock()
		return nil, apperr.State(apperr.CodeRequestInFlight, "A translation is already in progress")
	}
	next, call, err := s.upload.Begin()
	s.upload = next
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	meta, callErr := s.backend.Upload(ctx, call.File)

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err = s.upload.Finish(*call, meta, callErr)
	if err != nil {
		s.log.Debug().Uint64("generation", call.Generation).Msg("dropping stale upload result")
		return nil, err
	}
	s.upload = next
	if s.upload.Err != nil {
		return nil, s.upload.Err
	}
	return s.upload.Metadata, nil
}

// Translate runs one translate call for the uploaded file.
func (s *Session) Translate(ctx context.Context, p Params) (*backend.TranslationResponse, error) {
	s.mu.Lock()
	var meta *backend.FileMetadata
	if s.upload.Phase == Uploaded {
		meta = s.upload.Metadata
	}
	next, call, err := s.translation.Begin(s.generation, meta, p)
	s.translation = next
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	resp, callErr := s.backend.Translate(ctx, call.Request)

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err = s.translation.Finish(*call, resp, callErr)
	if err != nil {
		s.log.Debug().Uint64("generation", call.Generation).Msg("dropping stale translation result")
		return nil, err
	}
	s.translation = next
	if s.translation.Err != nil {
		return nil, s.translation.Err
	}
	return s.translation.Response, nil
}

// Run uploads the selected file if it has no metadata yet and then
// translates. An upload failure aborts before any translate call.
func (s *Session) Run(ctx context.Context, p Params) (*backend.TranslationResponse, error) {
	s.mu.Lock()
	needsUpload := s.upload.Phase != Uploaded || s.upload.Metadata == nil
	s.mu.Unlock()

	if needsUpload {
		if _, err := s.Upload(ctx); err != nil {
			return nil, err
		}
	}
	return s.Translate(ctx, p)
}

// Results returns the rows of the stored response, or a NoResults state
// error when there is nothing to show.
func (s *Session) Results() ([]backend.ResultRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.translation.Response == nil || len(s.translation.Response.Results) == 0 {
		return nil, apperr.State(apperr.CodeNoResults, "No translation results")
	}
	rows := make([]backend.ResultRow, len(s.translation.Response.Results))
	copy(rows, s.translation.Response.Results)
	return rows, nil
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Generation:  s.generation,
		Upload:      s.upload,
		Translation: s.translation,
	}
}

// Reset returns both machines to idle. Pending calls become stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.upload = s.upload.Reset(s.generation)
	s.translation = s.translation.Reset(s.generation)
}

// LastError returns the error currently displayed by the workflow, with
// translation errors taking precedence over upload errors.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.translation.Phase == Failed {
		return s.translation.Err
	}
	if s.upload.Phase == UploadFailed {
		return s.upload.Err
	}
	return nil
}

// IsStale reports whether err is the result of a discarded call.
func IsStale(err error) bool {
	return errors.Is(err, apperr.ErrStale)
}
