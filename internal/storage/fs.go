package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/slidesmith/internal/checksum"
)

// ErrInvalidPath is returned for paths that are absolute or leave the root.
var ErrInvalidPath = errors.New("storage: invalid path")

const (
	tmpPrefix = ".slidesmith-tmp-"
	fileMode  = 0o644
)

// FS implements Provider on a local directory.
type FS struct {
	root    string
	ext     string
	exclude []string
}

// Option configures an FS.
type Option func(*FS)

// WithExtension sets the file extension List reports (default ".json").
func WithExtension(ext string) Option {
	return func(f *FS) { f.ext = ext }
}

// WithExclude makes List skip directories with any of the given names.
func WithExclude(names ...string) Option {
	return func(f *FS) { f.exclude = append(f.exclude, names...) }
}

// NewFS returns an FS rooted at an existing directory.
func NewFS(root string, opts ...Option) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	f := &FS{root: abs, ext: ".json"}
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// Root returns the absolute store directory.
func (f *FS) Root() string { return f.root }

// abs maps a slash-separated relative path to a file under the root. The
// empty path is the root itself.
func (f *FS) abs(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, rel)
	}
	return filepath.Join(f.root, local), nil
}

// List returns every file under dir with the configured extension, sorted
// by path. Dot files and excluded directories are skipped.
func (f *FS) List(dir string) ([]FileInfo, error) {
	base, err := f.abs(dir)
	if err != nil {
		return nil, err
	}
	var out []FileInfo
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if p != base && (slices.Contains(f.exclude, name) || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, f.ext) {
			return nil
		}
		fi, err := f.describe(p, d)
		if err != nil {
			return err
		}
		out = append(out, fi)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	slices.SortFunc(out, func(a, b FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func (f *FS) describe(p string, d fs.DirEntry) (FileInfo, error) {
	info, err := d.Info()
	if err != nil {
		return FileInfo{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return FileInfo{}, err
	}
	rel, err := filepath.Rel(f.root, p)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Path:      filepath.ToSlash(rel),
		Checksum:  checksum.Sum(data),
		UpdatedAt: info.ModTime(),
	}, nil
}

// Read returns the raw bytes of a stored file. Missing files report
// fs.ErrNotExist.
func (f *FS) Read(path string) ([]byte, error) {
	p, err := f.abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces path with content. The bytes go to a dot-prefixed temp
// file in the same directory, which is synced and renamed into place, so
// readers and List never observe a partial file.
func (f *FS) Write(path string, content []byte) (err error) {
	p, err := f.abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err = tmp.Chmod(fileMode); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err = os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

// Delete removes a stored file.
func (f *FS) Delete(path string) error {
	p, err := f.abs(path)
	if err != nil {
		return err
	}
	if p == f.root {
		return fmt.Errorf("%w: cannot delete root", ErrInvalidPath)
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Move renames a file within the root, replacing any file at newPath.
func (f *FS) Move(oldPath, newPath string) error {
	from, err := f.abs(oldPath)
	if err != nil {
		return err
	}
	to, err := f.abs(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("storage: move %s: %w", oldPath, err)
	}
	return nil
}
