// Package collect reads the explicitly requested files for a context
// request, enforcing the per-file size ceiling, the extension
// allow-list, and project-root confinement.
//
// Reads across files are independent, so collection runs on a bounded
// worker pool; results are indexed by request position, never by
// completion order. Per-file problems (too large, binary, disallowed
// extension, unreadable, path escape) do not abort the request — they
// are recorded on the result and surfaced as omission markers by the
// assembler.
package collect

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/HendryAvila/ctxprep/internal/config"
	"github.com/HendryAvila/ctxprep/internal/fsx"
)

// DefaultWorkers is the fixed worker budget for concurrent reads.
const DefaultWorkers = 4

// binarySniffLen bounds how many leading bytes the binary heuristic inspects.
const binarySniffLen = 8000

// FileReference identifies one file to include plus the caller's
// annotation shown above its content.
type FileReference struct {
	Path string `json:"path" mapstructure:"path"`
	Note string `json:"note,omitempty" mapstructure:"note"`
}

// Result is the outcome of collecting one FileReference. Exactly one of
// Content or SkipReason is meaningful: a skipped file carries the
// human-readable reason rendered into the document as an omission note.
type Result struct {
	Ref        FileReference
	RelPath    string
	Content    string
	Skipped    bool
	SkipReason string
}

// Collector reads requested files relative to one project root.
type Collector struct {
	fs      fsx.FS
	root    string
	cfg     *config.Resolved
	workers int
}

// New creates a Collector for the given project root and effective
// configuration.
func New(fs fsx.FS, root string, cfg *config.Resolved) *Collector {
	return &Collector{fs: fs, root: root, cfg: cfg, workers: DefaultWorkers}
}

// Collect reads every referenced file. The returned slice has one entry
// per reference, in request order. ctx cancellation stops scheduling
// new reads; already-started reads finish.
func (c *Collector) Collect(ctx context.Context, refs []FileReference) []Result {
	results := make([]Result, len(refs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.collectOne(refs[i])
			}
		}()
	}

	for i := range refs {
		select {
		case <-ctx.Done():
			// Mark the rest as skipped rather than blocking forever.
			results[i] = Result{Ref: refs[i], RelPath: refs[i].Path, Skipped: true, SkipReason: "request canceled"}
			continue
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// collectOne resolves and reads a single reference, mapping every
// per-file failure to a skip reason.
func (c *Collector) collectOne(ref FileReference) Result {
	res := Result{Ref: ref, RelPath: ref.Path}

	abs, rel, err := fsx.ResolveWithin(c.root, ref.Path)
	if err != nil {
		res.Skipped = true
		res.SkipReason = err.Error()
		return res
	}
	res.RelPath = rel

	if ext := filepath.Ext(rel); !c.cfg.ExtensionAllowed(ext) {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("extension %q is not in the allowed list", ext)
		return res
	}

	info, err := c.fs.Stat(abs)
	if err != nil {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("file not found: %s", rel)
		return res
	}
	if info.IsDir() {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("%s is a directory, not a file", rel)
		return res
	}
	if info.Size() > c.cfg.MaxFileBytes {
		err := &FileTooLargeError{Path: rel, Size: info.Size(), Limit: c.cfg.MaxFileBytes}
		res.Skipped = true
		res.SkipReason = err.Error()
		return res
	}

	data, err := c.fs.ReadFile(abs)
	if err != nil {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("reading %s: %v", rel, err)
		return res
	}

	if IsBinary(data) {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("%s appears to be binary content", rel)
		return res
	}

	res.Content = string(data)
	return res
}

// IsBinary reports whether content looks like binary data: a NUL byte
// or invalid UTF-8 in the leading bytes.
func IsBinary(data []byte) bool {
	sample := data
	truncated := false
	if len(sample) > binarySniffLen {
		sample = sample[:binarySniffLen]
		truncated = true
	}

	for _, b := range sample {
		if b == 0 {
			return true
		}
	}

	if truncated {
		// A multi-byte rune may be split at the cut point; trim up to
		// three trailing bytes before judging validity.
		for i := 0; i < utf8.UTFMax-1 && len(sample) > 0 && !utf8.Valid(sample); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	return !utf8.Valid(sample)
}
