package workflow

import (
	"github.com/minios-linux/sheetlate/apperr"
	"github.com/minios-linux/sheetlate/backend"
	"github.com/minios-linux/sheetlate/langmeta"
)

// TranslationPhase is the stage of the translation state machine.
type TranslationPhase int

const (
	TranslationIdle TranslationPhase = iota
	Translating
	Completed
	Failed
)

func (p TranslationPhase) String() string {
	switch p {
	case TranslationIdle:
		return "idle"
	case Translating:
		return "translating"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Params are the user's choices for one translate call.
type Params struct {
	SourceLang  string
	TargetLang  string
	ColumnIndex int
	// SheetName is optional; empty means the backend's default sheet.
	SheetName string
}

// TranslationState tracks the translate call for the current file. The
// last response is kept across repeated calls until a new one replaces it.
type TranslationState struct {
	Phase      TranslationPhase
	Generation uint64
	Request    *backend.TranslateRequest
	Response   *backend.TranslationResponse
	Err        error
}

// TranslateCall asks the Session to send Request.
type TranslateCall struct {
	Generation uint64
	Request    backend.TranslateRequest
}

// Begin checks the preconditions and starts a translate call for the file
// described by meta.
func (s TranslationState) Begin(generation uint64, meta *backend.FileMetadata, p Params) (TranslationState, *TranslateCall, error) {
	if s.Phase == Translating {
		return s, nil, apperr.State(apperr.CodeRequestInFlight, "A translation is already in progress")
	}
	if generation != s.Generation {
		s = s.Reset(generation)
	}

	fail := func(err error) (TranslationState, *TranslateCall, error) {
		s.Phase = Failed
		s.Err = err
		return s, nil, err
	}

	if meta == nil || meta.FileID == "" {
		return fail(apperr.State(apperr.CodeNotUploaded, "Upload a file before translating"))
	}
	req, err := buildRequest(meta, p)
	if err != nil {
		return fail(err)
	}

	s.Phase = Translating
	s.Request = &req
	s.Err = nil
	return s, &TranslateCall{Generation: s.Generation, Request: req}, nil
}

// buildRequest validates p against meta. The column guard only applies
// when the backend reported a column count.
func buildRequest(meta *backend.FileMetadata, p Params) (backend.TranslateRequest, error) {
	source := langmeta.Normalize(p.SourceLang)
	target := langmeta.Normalize(p.TargetLang)
	if !langmeta.IsSupported(source) {
		return backend.TranslateRequest{}, apperr.Validation(apperr.CodeUnsupportedLanguage,
			"Unsupported source language: %s", p.SourceLang)
	}
	if !langmeta.IsSupported(target) {
		return backend.TranslateRequest{}, apperr.Validation(apperr.CodeUnsupportedLanguage,
			"Unsupported target language: %s", p.TargetLang)
	}

	if p.ColumnIndex < 0 || (meta.ColumnCount > 0 && p.ColumnIndex >= meta.ColumnCount) {
		return backend.TranslateRequest{}, apperr.Validation(apperr.CodeColumnOutOfRange,
			"Column index %d out of range. Max index: %d", p.ColumnIndex, meta.ColumnCount-1)
	}

	req := backend.TranslateRequest{
		FileID:      meta.FileID,
		ColumnIndex: p.ColumnIndex,
		SourceLang:  source,
		TargetLang:  target,
	}
	if p.SheetName != "" {
		sheet := p.SheetName
		req.SheetName = &sheet
	}
	return req, nil
}

// Finish applies the outcome of call. Answers for another generation, or
// arriving when no call is pending, are dropped with a Stale error.
func (s TranslationState) Finish(call TranslateCall, resp *backend.TranslationResponse, err error) (TranslationState, error) {
	if call.Generation != s.Generation || s.Phase != Translating {
		return s, apperr.State(apperr.CodeStale, "Translation result discarded: file selection changed")
	}
	if err == nil && resp == nil {
		err = apperr.BadPayload(nil)
	}
	if err != nil {
		s.Phase = Failed
		s.Err = err
		return s, nil
	}
	s.Phase = Completed
	s.Response = resp
	return s, nil
}

// Reset returns to TranslationIdle and forgets the stored response.
func (s TranslationState) Reset(generation uint64) TranslationState {
	return TranslationState{Generation: generation}
}
