// Package fsx defines the narrow filesystem interface the engine is built
// against, plus the OS-backed implementation used in production.
//
// Every component that touches disk (config resolver, tree builder, file
// collector, note store, assembler) takes an FS, so the whole engine can be
// exercised against the in-memory implementation in memfs.go without a real
// filesystem.
package fsx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS is the filesystem surface the engine depends on. It deliberately
// exposes whole-file reads and writes only — the engine never streams.
type FS interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	ReadDir(path string) ([]os.DirEntry, error)
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	Rename(oldpath, newpath string) error
	EvalSymlinks(path string) (string, error)
}

// OS implements FS with direct calls into the os package.
type OS struct{}

// NewOS returns the OS-backed filesystem.
func NewOS() OS { return OS{} }

func (OS) Stat(path string) (os.FileInfo, error)  { return os.Stat(path) }
func (OS) ReadFile(path string) ([]byte, error)   { return os.ReadFile(path) }
func (OS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}
func (OS) ReadDir(path string) ([]os.DirEntry, error)    { return os.ReadDir(path) }
func (OS) MkdirAll(path string, perm os.FileMode) error  { return os.MkdirAll(path, perm) }
func (OS) Remove(path string) error                      { return os.Remove(path) }
func (OS) Rename(oldpath, newpath string) error          { return os.Rename(oldpath, newpath) }
func (OS) EvalSymlinks(path string) (string, error)      { return filepath.EvalSymlinks(path) }

// PathEscapeError is returned when a path resolves outside its workspace
// root. The offending path is reported as given by the caller, not the
// resolved form, so error messages match the request.
type PathEscapeError struct {
	Path string
	Root string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %q escapes the project root %q", e.Path, e.Root)
}

// ResolveWithin resolves path against root and verifies the result stays
// inside root. Relative paths are joined to root; absolute paths are
// accepted only when they already live under root. Returns the cleaned
// absolute path and the root-relative path.
func ResolveWithin(root, path string) (abs string, rel string, err error) {
	if path == "" {
		return "", "", &PathEscapeError{Path: path, Root: root}
	}

	abs = path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}
	abs = filepath.Clean(abs)

	rel, relErr := filepath.Rel(root, abs)
	if relErr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", &PathEscapeError{Path: path, Root: root}
	}
	return abs, rel, nil
}
