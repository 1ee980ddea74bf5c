// Package session remembers the last spreadsheet a user translated so that
// a later run on the same, unchanged file can skip the upload, and so that
// `sheetlate export` can re-export the last results.
//
// The state lives in the XDG data directory:
//
//	$XDG_DATA_HOME/sheetlate/session.yaml  (default: ~/.local/share/sheetlate/)
//
// File permissions are 0600 (owner read/write only). A file is identified
// by the MD5 of its content, not by its path.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/sheetlate/backend"
)

const (
	dataDirName = "sheetlate"
	fileName    = "session.yaml"
)

// Version is the session file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// FileRecord identifies the selected spreadsheet.
type FileRecord struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path,omitempty"`
	Size        int64  `yaml:"size"`
	Fingerprint string `yaml:"md5"`
}

// Params records the choices of the last translate call.
type Params struct {
	SourceLang  string `yaml:"source_lang"`
	TargetLang  string `yaml:"target_lang"`
	ColumnIndex int    `yaml:"column_index"`
	SheetName   string `yaml:"sheet_name,omitempty"`
}

// State is the session.yaml structure.
type State struct {
	Version int `yaml:"version"`
	// BaseURL is the backend the metadata came from; a file id is
	// meaningless to any other backend.
	BaseURL   string                       `yaml:"base_url,omitempty"`
	File      *FileRecord                  `yaml:"file,omitempty"`
	Metadata  *backend.FileMetadata        `yaml:"metadata,omitempty"`
	Params    *Params                      `yaml:"params,omitempty"`
	Response  *backend.TranslationResponse `yaml:"response,omitempty"`
	UpdatedAt time.Time                    `yaml:"updated_at,omitempty"`
}

// Matches reports whether the stored metadata can be reused for a file
// with fingerprint uploaded to baseURL.
func (s *State) Matches(fingerprint, baseURL string) bool {
	return s != nil &&
		s.File != nil &&
		s.Metadata != nil &&
		s.Metadata.FileID != "" &&
		fingerprint != "" &&
		s.File.Fingerprint == fingerprint &&
		s.BaseURL == baseURL
}

// Select starts a new state for file, keeping nothing from the previous
// file unless the fingerprint and backend are unchanged.
func (s *State) Select(file FileRecord, baseURL string) *State {
	if s.Matches(file.Fingerprint, baseURL) {
		next := *s
		next.File = &file
		return &next
	}
	return &State{Version: Version, BaseURL: baseURL, File: &file}
}

// ---------------------------------------------------------------------------
// Store
// ---------------------------------------------------------------------------

// Store reads and writes one session file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a store backed by path.
func New(path string) *Store {
	return &Store{path: path}
}

// Default returns the store in the XDG data directory.
func Default() (*Store, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return New(filepath.Join(dir, fileName)), nil
}

// DataDir returns the sheetlate data directory.
// Respects $XDG_DATA_HOME, falling back to ~/.local/share.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// Path returns the session file path.
func (st *Store) Path() string {
	return st.path
}

// Load reads the session. A missing file yields an empty state.
func (st *Store) Load() (*State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Version: Version}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", st.path, err)
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", st.path, err)
	}
	if s.Version > Version {
		return nil, fmt.Errorf("%s: unsupported session version %d", st.path, s.Version)
	}
	s.Version = Version
	return &s, nil
}

// Save writes s with 0600 permissions.
func (st *Store) Save(s *State) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	s.Version = Version
	s.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(st.path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(st.path, data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Clear removes the session file.
func (st *Store) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", st.path, err)
	}
	return nil
}
