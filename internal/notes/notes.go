// Package notes manages the project-local scratch area for debug notes.
//
// Notes live under .ctxprep_notes/ inside the project root, named by
// caller-supplied filenames (sanitized — a note filename can never place
// a file outside the notes directory). Each note carries a small YAML
// frontmatter header recording its creation time; List falls back to
// the file modification time when the header is missing or unreadable.
package notes

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/ctxprep/internal/fsx"
)

// DirName is the notes directory inside a project root.
const DirName = ".ctxprep_notes"

// DebugNote is one stored note document.
type DebugNote struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CleanPolicy selects which notes Clean removes. OlderThanDays removes
// notes past the age threshold; a positive MaxCount additionally keeps
// only the newest MaxCount survivors.
type CleanPolicy struct {
	OlderThanDays int
	MaxCount      int
}

// DefaultCleanPolicy matches the historical behavior: age-based, 7 days.
func DefaultCleanPolicy() CleanPolicy {
	return CleanPolicy{OlderThanDays: 7}
}

// Store defines note persistence. Abstracted for testability.
type Store interface {
	Create(projectRoot, filename, content string) (*DebugNote, error)
	List(projectRoot string) ([]DebugNote, error)
	Clean(projectRoot string, policy CleanPolicy) (int, error)
}

// FileStore implements Store on a fsx.FS.
type FileStore struct {
	fs  fsx.FS
	now func() time.Time
}

// NewFileStore creates a filesystem-backed note store.
func NewFileStore(fs fsx.FS) *FileStore {
	return &FileStore{fs: fs, now: time.Now}
}

// Dir returns the absolute notes directory for a project.
func Dir(projectRoot string) string {
	return filepath.Join(projectRoot, DirName)
}

// frontmatter is the YAML header written at the top of every note.
type frontmatter struct {
	Created string `yaml:"created"`
	Type    string `yaml:"type"`
}

// Create writes a note under the notes directory, creating it if
// absent. The filename gains a .md suffix when missing; filenames that
// would resolve outside the notes directory are rejected.
func (s *FileStore) Create(projectRoot, filename, content string) (*DebugNote, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("note filename is empty")
	}
	if !strings.HasSuffix(filename, ".md") {
		filename += ".md"
	}

	dir := Dir(projectRoot)
	abs, rel, err := fsx.ResolveWithin(dir, filename)
	if err != nil {
		return nil, err
	}
	if strings.ContainsRune(rel, filepath.Separator) {
		return nil, fmt.Errorf("note filename %q must not contain path separators", filename)
	}

	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating notes directory: %w", err)
	}

	created := s.now().UTC()
	header, err := yaml.Marshal(frontmatter{
		Created: created.Format(time.RFC3339),
		Type:    "debug_notes",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling note header: %w", err)
	}

	full := fmt.Sprintf("---\n%s---\n\n%s\n", header, content)
	if err := s.fs.WriteFile(abs, []byte(full), 0o644); err != nil {
		return nil, fmt.Errorf("writing note %s: %w", rel, err)
	}

	return &DebugNote{Filename: rel, Path: abs, Content: content, CreatedAt: created}, nil
}

// List returns note summaries (no content) ordered by creation time,
// newest first. Ties break on filename for a stable order.
func (s *FileStore) List(projectRoot string) ([]DebugNote, error) {
	dir := Dir(projectRoot)
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		// No notes directory means no notes.
		return nil, nil
	}

	var result []DebugNote
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		result = append(result, DebugNote{
			Filename:  entry.Name(),
			Path:      path,
			CreatedAt: s.createdAt(path),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Filename < result[j].Filename
	})
	return result, nil
}

// Clean removes notes matched by policy and reports how many were
// removed. It only ever deletes .md files directly inside the notes
// directory; running it twice with the same policy removes nothing the
// second time.
func (s *FileStore) Clean(projectRoot string, policy CleanPolicy) (int, error) {
	all, err := s.List(projectRoot)
	if err != nil {
		return 0, err
	}

	var doomed []DebugNote
	if policy.OlderThanDays > 0 {
		cutoff := s.now().Add(-time.Duration(policy.OlderThanDays) * 24 * time.Hour)
		var kept []DebugNote
		for _, note := range all {
			if note.CreatedAt.Before(cutoff) {
				doomed = append(doomed, note)
			} else {
				kept = append(kept, note)
			}
		}
		all = kept
	}
	if policy.MaxCount > 0 && len(all) > policy.MaxCount {
		// List is newest-first; everything past MaxCount goes.
		doomed = append(doomed, all[policy.MaxCount:]...)
	}

	removed := 0
	for _, note := range doomed {
		if err := s.fs.Remove(note.Path); err != nil {
			return removed, fmt.Errorf("removing note %s: %w", note.Filename, err)
		}
		removed++
	}
	return removed, nil
}

// createdAt reads the creation time from a note's frontmatter, falling
// back to the file modification time.
func (s *FileStore) createdAt(path string) time.Time {
	data, err := s.fs.ReadFile(path)
	if err == nil {
		if created, ok := parseFrontmatterCreated(data); ok {
			return created
		}
	}
	if info, err := s.fs.Stat(path); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}

// parseFrontmatterCreated extracts the created timestamp from a
// ----delimited YAML header.
func parseFrontmatterCreated(data []byte) (time.Time, bool) {
	if !bytes.HasPrefix(data, []byte("---\n")) {
		return time.Time{}, false
	}
	rest := data[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return time.Time{}, false
	}

	var fm frontmatter
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return time.Time{}, false
	}
	created, err := time.Parse(time.RFC3339, fm.Created)
	if err != nil {
		return time.Time{}, false
	}
	return created, true
}
