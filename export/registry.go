package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/sheetlate/backend"
)

// Format serialises result rows.
type Format interface {
	Name() string
	Extensions() []string
	Write(w io.Writer, rows []backend.ResultRow) error
}

// Registry maps file extensions to formats.
type Registry struct {
	byExt  map[string]Format
	byName map[string]Format
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: map[string]Format{}, byName: map[string]Format{}}
}

// DefaultRegistry knows CSV and XLSX.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CSV{})
	r.Register(XLSX{})
	return r
}

// Register adds f under its name and extensions, replacing earlier entries.
func (r *Registry) Register(f Format) {
	r.byName[f.Name()] = f
	for _, ext := range f.Extensions() {
		r.byExt[strings.ToLower(ext)] = f
	}
}

// Get looks a format up by name.
func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.byName[strings.ToLower(name)]
	return f, ok
}

// ForPath picks the format from the extension of path. A path without an
// extension gets CSV.
func (r *Registry) ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = ".csv"
	}
	f, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("no export format for %q (known: %s)", ext, strings.Join(r.Names(), ", "))
	}
	return f, nil
}

// Names lists registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Export writes rows to path in the format matching its extension. It
// returns false and does nothing when rows is empty. The file is replaced
// atomically.
func (r *Registry) Export(path string, rows []backend.ResultRow) (bool, error) {
	if len(rows) == 0 {
		return false, nil
	}
	f, err := r.ForPath(path)
	if err != nil {
		return false, err
	}
	if err := writeFileAtomic(path, func(w io.Writer) error { return f.Write(w, rows) }); err != nil {
		return false, err
	}
	return true, nil
}

// Export writes rows with the default registry.
func Export(path string, rows []backend.ResultRow) (bool, error) {
	return DefaultRegistry().Export(path, rows)
}

// DefaultFilename is the suggested name for an export of source.
func DefaultFilename(source, ext string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "translation"
	}
	if ext == "" {
		ext = ".csv"
	}
	return base + "_translated" + ext
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
