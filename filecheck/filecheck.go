// Package filecheck validates a user-selected spreadsheet before anything
// is sent to the translation backend.
package filecheck

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/sheetlate/apperr"
)

// DefaultMaxSize is the upload limit enforced by the backend (10 MiB).
const DefaultMaxSize int64 = 10 * 1024 * 1024

// DefaultAllowedExtensions matches the backend's accepted spreadsheet types.
var DefaultAllowedExtensions = []string{".xlsx", ".xls"}

// Limits holds the configured size and type constraints.
type Limits struct {
	MaxSize           int64
	AllowedExtensions []string
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxSize:           DefaultMaxSize,
		AllowedExtensions: append([]string(nil), DefaultAllowedExtensions...),
	}
}

// SelectedFile is a file the user picked for upload.
type SelectedFile struct {
	Name     string
	Size     int64
	MimeKind string
	// Path is set when the file lives on disk.
	Path string

	open func() (io.ReadCloser, error)
}

// FromPath stats path and returns a SelectedFile backed by it.
func FromPath(path string) (*SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	name := filepath.Base(path)
	return &SelectedFile{
		Name:     name,
		Size:     info.Size(),
		MimeKind: MimeKind(name),
		Path:     path,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromBytes returns an in-memory SelectedFile.
func FromBytes(name string, data []byte) *SelectedFile {
	return &SelectedFile{
		Name:     name,
		Size:     int64(len(data)),
		MimeKind: MimeKind(name),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Open returns a reader over the file contents.
func (f *SelectedFile) Open() (io.ReadCloser, error) {
	if f == nil || f.open == nil {
		return nil, fmt.Errorf("file has no content source")
	}
	return f.open()
}

// Fingerprint returns the hex MD5 of the file contents. Two selections with
// the same fingerprint refer to the same bytes.
func (f *SelectedFile) Fingerprint() (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing %s: %w", f.Name, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// MimeKind guesses the content type from the file name.
func MimeKind(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".csv":
		return "text/csv"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Validate checks file against limits. It performs no I/O.
func Validate(file *SelectedFile, limits Limits) error {
	if file == nil {
		return apperr.Validation(apperr.CodeNoFileSelected, "No file selected")
	}

	maxSize := limits.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if file.Size > maxSize {
		return apperr.Validation(apperr.CodeSizeExceeded,
			"File size exceeds %s limit", FormatSize(maxSize))
	}

	allowed := limits.AllowedExtensions
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	if !HasAllowedExtension(file.Name, allowed) {
		return apperr.Validation(apperr.CodeUnsupportedType,
			"Invalid file type. Allowed: %s", strings.Join(allowed, ", "))
	}

	return nil
}

// HasAllowedExtension reports whether name ends in one of exts, ignoring case.
func HasAllowedExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FormatSize renders a byte count as MB/KB/B for messages.
func FormatSize(n int64) string {
	switch {
	case n >= 1024*1024 && n%(1024*1024) == 0:
		return fmt.Sprintf("%dMB", n/(1024*1024))
	case n >= 1024*1024:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%dKB", n/1024)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
