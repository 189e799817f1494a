// Package assemble orchestrates one context request into one document.
//
// Section order is fixed: header, summary, files-in-focus table,
// directory tree, context dumps (request order), file contents (request
// order), general notes, footer. Per-file collection problems become
// visible omission markers inside the document; structural problems
// (path escape of the output location, missing requested dump source,
// aggregate size overflow, unwritable output) abort the request before
// anything is written.
package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/HendryAvila/ctxprep/internal/collect"
	"github.com/HendryAvila/ctxprep/internal/config"
	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/ignore"
	"github.com/HendryAvila/ctxprep/internal/tree"
)

// ContextDump references an existing document to splice in verbatim
// under a title heading.
type ContextDump struct {
	File  string `json:"file" mapstructure:"file"`
	Title string `json:"title,omitempty" mapstructure:"title"`
}

// Request describes one assembly. Immutable for its duration.
type Request struct {
	ProjectPath  string
	Files        []collect.FileReference
	ContextDumps []ContextDump
	GeneralNotes []string
	OutputName   string
}

// GeneratedContext summarizes a successful assembly. The document on
// disk is the durable artifact; this record is handed back to the
// caller and never mutated afterward.
type GeneratedContext struct {
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"size_bytes"`
	FileCount    int       `json:"file_count"`
	SectionCount int       `json:"section_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// resolvedDump is a dump whose source has been read.
type resolvedDump struct {
	Title   string
	Content string
}

// Assembler runs context requests against one effective configuration.
type Assembler struct {
	fs  fsx.FS
	cfg *config.Resolved
	now func() time.Time
}

// New creates an Assembler.
func New(fs fsx.FS, cfg *config.Resolved) *Assembler {
	return &Assembler{fs: fs, cfg: cfg, now: time.Now}
}

// Assemble executes one request. On success it returns the summary and
// any non-fatal warnings recorded along the way (config degradation,
// skipped default dumps, per-file omissions). On failure nothing has
// been written.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*GeneratedContext, []string, error) {
	root := filepath.Clean(req.ProjectPath)
	if info, err := a.fs.Stat(root); err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("project path %s is not a directory", root)
	}

	warnings := append([]string(nil), a.cfg.Warnings...)

	// Stage: Building Tree.
	matcher := ignore.New(a.cfg.IgnorePatterns)
	treeText, err := tree.New(a.fs, matcher, a.cfg.TreeMaxDepth).Build(root)
	if err != nil {
		return nil, nil, fmt.Errorf("building tree: %w", err)
	}

	// Stage: Collecting Files (partial failures tolerated).
	collector := collect.New(a.fs, root, a.cfg)
	files := collector.Collect(ctx, req.Files)
	for _, f := range files {
		if f.Skipped {
			warnings = append(warnings, fmt.Sprintf("omitted %s: %s", f.RelPath, f.SkipReason))
		}
	}

	// Stage: reading context dumps. Requested dumps are strict; config
	// defaults degrade to a warning when their source is gone.
	dumps, dumpWarnings, err := a.resolveDumps(root, req.ContextDumps)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, dumpWarnings...)

	// Stage: Composing.
	now := a.now()
	doc := composeDocument(root, now, treeText, dumps, files, req.GeneralNotes)

	// Stage: Size-Checked. The aggregate limit is a hard limit, unlike
	// the per-file policy.
	size := int64(len(doc))
	if size > a.cfg.MaxContextBytes {
		return nil, nil, &ContextTooLargeError{Size: size, Limit: a.cfg.MaxContextBytes}
	}

	// Stage: Written.
	outPath, err := a.resolveOutputPath(root, req)
	if err != nil {
		return nil, nil, err
	}
	if err := a.writeDocument(outPath, doc); err != nil {
		return nil, nil, err
	}

	included := 0
	for _, f := range files {
		if !f.Skipped {
			included++
		}
	}
	sections := 1 + len(dumps) + len(files) // tree + dumps + file sections
	if len(req.GeneralNotes) > 0 {
		sections++
	}

	return &GeneratedContext{
		Path:         outPath,
		SizeBytes:    size,
		FileCount:    included,
		SectionCount: sections,
		Timestamp:    now,
	}, warnings, nil
}

// resolveDumps reads every requested dump plus the configured defaults
// not already requested. A requested dump that escapes the root or does
// not exist fails the request; a missing default becomes a warning.
func (a *Assembler) resolveDumps(root string, requested []ContextDump) ([]resolvedDump, []string, error) {
	var out []resolvedDump
	var warnings []string
	seen := make(map[string]bool)

	for _, d := range requested {
		abs, rel, err := fsx.ResolveWithin(root, d.File)
		if err != nil {
			return nil, nil, err
		}
		data, err := a.fs.ReadFile(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil, &NoteNotFoundError{File: d.File}
			}
			return nil, nil, fmt.Errorf("reading context dump %q: %w", d.File, err)
		}
		seen[rel] = true
		out = append(out, resolvedDump{Title: dumpTitle(d, rel), Content: string(data)})
	}

	for _, d := range a.cfg.DefaultContextDumps {
		abs, rel, err := fsx.ResolveWithin(root, d.File)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("default context dump %q skipped: %v", d.File, err))
			continue
		}
		if seen[rel] {
			continue
		}
		data, err := a.fs.ReadFile(abs)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("default context dump %q skipped: source not found", d.File))
			continue
		}
		out = append(out, resolvedDump{
			Title:   dumpTitle(ContextDump{File: d.File, Title: d.Title}, rel),
			Content: string(data),
		})
	}

	return out, warnings, nil
}

func dumpTitle(d ContextDump, rel string) string {
	if d.Title != "" {
		return d.Title
	}
	return "Context from " + filepath.Base(rel)
}

// resolveOutputPath computes and validates the destination, confining
// it to the project root. A missing output name is generated from a
// date stamp and a slug of the project directory name.
func (a *Assembler) resolveOutputPath(root string, req Request) (string, error) {
	outDir, _, err := fsx.ResolveWithin(root, a.cfg.OutputDir)
	if err != nil {
		return "", err
	}

	name := req.OutputName
	if name == "" {
		name = fmt.Sprintf("%s_%s.md", a.now().Format("20060102_150405"), Slugify(filepath.Base(root)))
	}
	if filepath.Ext(name) == "" {
		name += ".md"
	}

	outPath, _, err := fsx.ResolveWithin(outDir, name)
	if err != nil {
		return "", err
	}
	return outPath, nil
}

// outputLocks serializes writers per output path, across requests.
// Entries live for the process lifetime: one mutex per distinct output
// path, bounded by how many documents a server session generates.
var outputLocks sync.Map

// lockOutput acquires exclusive ownership of an output path and returns
// the release function. Release runs on every exit path of the write.
func lockOutput(path string) func() {
	mu, _ := outputLocks.LoadOrStore(path, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

// writeDocument writes atomically: temp file, then rename. A failed
// write never leaves a partial document at the destination.
func (a *Assembler) writeDocument(path, doc string) error {
	unlock := lockOutput(path)
	defer unlock()

	if err := a.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := a.fs.WriteFile(tmp, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing output document: %w", err)
	}
	if err := a.fs.Rename(tmp, path); err != nil {
		if rmErr := a.fs.Remove(tmp); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("finalizing output document: %w (temp cleanup also failed: %v)", err, rmErr)
		}
		return fmt.Errorf("finalizing output document: %w", err)
	}
	return nil
}
