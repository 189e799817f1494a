package fsx

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS is an in-memory FS used as a test fixture. It models regular files
// and directories only — no symlinks, so EvalSymlinks resolves every
// existing path to itself.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
	mtime map[string]time.Time
}

// NewMemFS returns an empty in-memory filesystem containing only "/".
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"/": true},
		mtime: make(map[string]time.Time),
	}
}

func norm(path string) string {
	return filepath.Clean(path)
}

func (m *MemFS) Stat(path string) (os.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statLocked(path)
}

func (m *MemFS) statLocked(path string) (os.FileInfo, error) {
	path = norm(path)
	if data, ok := m.files[path]; ok {
		return memInfo{name: filepath.Base(path), size: int64(len(data)), mod: m.mtime[path]}, nil
	}
	if m.dirs[path] {
		return memInfo{name: filepath.Base(path), dir: true, mod: m.mtime[path]}, nil
	}
	return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = norm(path)
	data, ok := m.files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = norm(path)
	if !m.dirs[filepath.Dir(path)] {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[path] = buf
	m.mtime[path] = time.Now()
	return nil
}

func (m *MemFS) ReadDir(path string) ([]os.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = norm(path)
	if !m.dirs[path] {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	seen := make(map[string]os.DirEntry)
	collect := func(p string, dir bool) {
		rel, err := filepath.Rel(path, p)
		if err != nil || rel == "." || strings.Contains(rel, string(filepath.Separator)) {
			return
		}
		info, _ := m.statLocked(p)
		seen[rel] = memEntry{name: rel, dir: dir, info: info}
	}
	for p := range m.files {
		collect(p, false)
	}
	for p := range m.dirs {
		collect(p, true)
	}

	entries := make([]os.DirEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MemFS) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = norm(path)
	for p := path; ; p = filepath.Dir(p) {
		m.dirs[p] = true
		if p == filepath.Dir(p) {
			break
		}
	}
	return nil
}

func (m *MemFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = norm(path)
	if _, ok := m.files[path]; ok {
		delete(m.files, path)
		delete(m.mtime, path)
		return nil
	}
	if m.dirs[path] {
		delete(m.dirs, path)
		return nil
	}
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
}

func (m *MemFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldpath, newpath = norm(oldpath), norm(newpath)
	data, ok := m.files[oldpath]
	if !ok {
		return &os.PathError{Op: "rename", Path: oldpath, Err: os.ErrNotExist}
	}
	m.files[newpath] = data
	m.mtime[newpath] = m.mtime[oldpath]
	delete(m.files, oldpath)
	delete(m.mtime, oldpath)
	return nil
}

func (m *MemFS) EvalSymlinks(path string) (string, error) {
	if _, err := m.Stat(path); err != nil {
		return "", err
	}
	return norm(path), nil
}

// SetModTime overrides a file's modification time. Test hook for
// age-based retention checks.
func (m *MemFS) SetModTime(path string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mtime[norm(path)] = t
}

// --- fs.FileInfo / fs.DirEntry adapters ---

type memInfo struct {
	name string
	size int64
	dir  bool
	mod  time.Time
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
func (i memInfo) ModTime() time.Time { return i.mod }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }

type memEntry struct {
	name string
	dir  bool
	info os.FileInfo
}

func (e memEntry) Name() string { return e.name }
func (e memEntry) IsDir() bool  { return e.dir }
func (e memEntry) Type() fs.FileMode {
	if e.dir {
		return fs.ModeDir
	}
	return 0
}
func (e memEntry) Info() (fs.FileInfo, error) { return e.info, nil }
