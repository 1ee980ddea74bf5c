// Package workflow holds the client-side upload/translate lifecycle.
//
// UploadState and TranslationState are plain values. Their methods never
// touch the network: a transition returns the next state and, when a
// request is due, a call description (UploadCall, TranslateCall) that the
// Session executes. Every call carries the selection generation it was
// issued under so that answers arriving after a reselect can be dropped.
package workflow

import (
	"github.com/minios-linux/sheetlate/apperr"
	"github.com/minios-linux/sheetlate/backend"
	"github.com/minios-linux/sheetlate/filecheck"
)

// UploadPhase is the stage of the upload state machine.
type UploadPhase int

const (
	UploadIdle UploadPhase = iota
	UploadSelecting
	Uploading
	Uploaded
	UploadFailed
)

func (p UploadPhase) String() string {
	switch p {
	case UploadIdle:
		return "idle"
	case UploadSelecting:
		return "selected"
	case Uploading:
		return "uploading"
	case Uploaded:
		return "uploaded"
	case UploadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UploadState tracks the selected file and what the backend made of it.
type UploadState struct {
	Phase      UploadPhase
	Generation uint64
	File       *filecheck.SelectedFile
	Metadata   *backend.FileMetadata
	Err        error
}

// UploadCall asks the Session to upload File.
type UploadCall struct {
	Generation uint64
	File       *filecheck.SelectedFile
}

// Select validates file and makes it the current selection. Any previous
// file and metadata are dropped whatever the outcome.
func (s UploadState) Select(file *filecheck.SelectedFile, limits filecheck.Limits, generation uint64) UploadState {
	next := UploadState{Generation: generation}
	if err := filecheck.Validate(file, limits); err != nil {
		next.Phase = UploadFailed
		next.Err = err
		return next
	}
	next.Phase = UploadSelecting
	next.File = file
	return next
}

// Begin starts an upload of the selected file.
func (s UploadState) Begin() (UploadState, *UploadCall, error) {
	if s.Phase == Uploading {
		return s, nil, apperr.State(apperr.CodeRequestInFlight, "An upload is already in progress")
	}
	if s.File == nil {
		err := apperr.State(apperr.CodeNoFileSelected, "No file selected")
		if s.Phase != UploadFailed {
			s.Phase = UploadFailed
			s.Err = err
		}
		return s, nil, err
	}

	s.Phase = Uploading
	s.Metadata = nil
	s.Err = nil
	return s, &UploadCall{Generation: s.Generation, File: s.File}, nil
}

// Finish applies the outcome of call. A call from an older selection, or
// one that is no longer pending, leaves the state untouched and yields a
// Stale error.
func (s UploadState) Finish(call UploadCall, meta *backend.FileMetadata, err error) (UploadState, error) {
	if call.Generation != s.Generation || s.Phase != Uploading {
		return s, apperr.State(apperr.CodeStale, "Upload result discarded: file selection changed")
	}
	if err == nil && meta == nil {
		err = apperr.BadPayload(nil)
	}
	if err != nil {
		s.Phase = UploadFailed
		s.Err = err
		return s, nil
	}
	s.Phase = Uploaded
	s.Metadata = meta
	return s, nil
}

// Adopt marks the selected file as uploaded with metadata obtained
// earlier, e.g. from a saved session for the same file content.
func (s UploadState) Adopt(meta *backend.FileMetadata) (UploadState, error) {
	if s.Phase == Uploading {
		return s, apperr.State(apperr.CodeRequestInFlight, "An upload is already in progress")
	}
	if s.File == nil {
		return s, apperr.State(apperr.CodeNoFileSelected, "No file selected")
	}
	if meta == nil || meta.FileID == "" {
		return s, apperr.State(apperr.CodeNotUploaded, "Saved upload has no file id")
	}
	s.Phase = Uploaded
	s.Metadata = meta
	s.Err = nil
	return s, nil
}

// Reset clears everything and returns to UploadIdle.
func (s UploadState) Reset(generation uint64) UploadState {
	return UploadState{Generation: generation}
}
