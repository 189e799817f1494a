package assemble

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/ctxprep/internal/collect"
	"github.com/HendryAvila/ctxprep/internal/config"
	"github.com/HendryAvila/ctxprep/internal/fsx"
)

func newAssembler(t *testing.T, overrides config.ProjectConfig) (*Assembler, *fsx.MemFS) {
	t.Helper()
	m := fsx.NewMemFS()
	require.NoError(t, m.MkdirAll("/proj/src", 0o755))
	require.NoError(t, m.WriteFile("/proj/a.py", []byte("print('hello')\nprint('world')"), 0o644))
	require.NoError(t, m.WriteFile("/proj/src/util.py", []byte("def util(): pass"), 0o644))

	resolved := config.Merge(config.Defaults(), &overrides, config.Env{})
	a := New(m, &resolved)
	a.now = func() time.Time { return time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC) }
	return a, m
}

func TestAssemble_BasicRequest(t *testing.T) {
	a, m := newAssembler(t, config.ProjectConfig{})

	gc, warnings, err := a.Assemble(context.Background(), Request{
		ProjectPath: "/proj",
		Files:       []collect.FileReference{{Path: "a.py", Note: "entry point"}},
		OutputName:  "out.md",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, 1, gc.FileCount)
	assert.Equal(t, int64(len(mustRead(t, m, gc.Path))), gc.SizeBytes)

	doc := string(mustRead(t, m, gc.Path))
	assert.Contains(t, doc, "# LLM Context Document")
	assert.Contains(t, doc, "## Project Structure")
	assert.Contains(t, doc, "a.py", "tree section should list the file")
	assert.Contains(t, doc, "### File: a.py [IN FOCUS]")
	assert.Contains(t, doc, "**Note:** entry point")
	assert.Contains(t, doc, "   1| print('hello')")
	assert.Contains(t, doc, "   2| print('world')")
}

func TestAssemble_FileOrderMatchesRequest(t *testing.T) {
	a, m := newAssembler(t, config.ProjectConfig{})

	gc, _, err := a.Assemble(context.Background(), Request{
		ProjectPath: "/proj",
		Files: []collect.FileReference{
			{Path: "src/util.py"},
			{Path: "a.py"},
		},
		OutputName: "out.md",
	})
	require.NoError(t, err)

	doc := string(mustRead(t, m, gc.Path))
	first := strings.Index(doc, "### File: src/util.py")
	second := strings.Index(doc, "### File: a.py")
	require.True(t, first > 0 && second > 0)
	assert.Less(t, first, second, "file sections must follow request order")
}

func TestAssemble_OversizedFileBecomesOmissionMarker(t *testing.T) {
	a, m := newAssembler(t, config.ProjectConfig{MaxFileBytes: 10})
	require.NoError(t, m.WriteFile("/proj/big.py", []byte(strings.Repeat("x", 50)), 0o644))

	gc, warnings, err := a.Assemble(context.Background(), Request{
		ProjectPath: "/proj",
		Files: []collect.FileReference{
			{Path: "big.py", Note: "too big"},
			{Path: "src/util.py"},
		},
		OutputName: "out.md",
	})
	require.NoError(t, err, "per-file overflow must not abort the request")

	assert.Equal(t, 1, gc.FileCount, "fileCount excludes the omitted file")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "big.py")

	doc := string(mustRead(t, m, gc.Path))
	assert.Contains(t, doc, "### File: big.py [IN FOCUS]")
	assert.Contains(t, doc, "_Omitted:")
	assert.Contains(t, doc, "10-byte limit")
}

func TestAssemble_AggregateOverflowWritesNothing(t *testing.T) {
	a, m := newAssembler(t, config.ProjectConfig{MaxContextBytes: 100})

	_, _, err := a.Assemble(context.Background(), Request{
		ProjectPath: "/proj",
		Files:       []collect.FileReference{{Path: "a.py"}},
		OutputName:  "out.md",
	})

	var tooLarge *ContextTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(100), tooLarge.Limit)

	_, statErr := m.Stat("/proj/context_reports/out.md")
	assert.Error(t, statErr, "no document may exist after an aggregate overflow")
	_, statErr = m.Stat("/proj/context_reports/out.md.tmp")
	assert.Error(t, statErr, "no temp file may survive either")
}

func TestAssemble_ContextDumpsInRequestOrder(t *testing.T) {
	a, m := newAssembler(t, config.ProjectConfig{})
	require.NoError(t, m.MkdirAll("/proj/.ctxprep_notes", 0o755))
	require.NoError(t, m.WriteFile("/proj/.ctxprep_notes/n1.md", []byte("first body"), 0o644))
	require.NoError(t, m.WriteFile("/proj/.ctxprep_notes/n2.md", []byte("second body"), 0o644))

	gc, _, err := a.Assemble(context.Background(), Request{
		ProjectPath: "/proj",
		ContextDumps: []ContextDump{
			{File: ".ctxprep_notes/n2.md", Title: "Second"},
			{File: ".ctxprep_notes/n1.md", Title: "First"},
		},
		OutputName: "out.md",
	})
	require.NoError(t, err)

	doc := string(mustRead(t, m, gc.Path))
	assert.Contains(t, doc, "### 📄 Second")
	assert.Contains(t, doc, "### 📄 First")
	assert.Less(t, strings.Index(doc, "Second"), strings.Index(doc, "First"))
	assert.Contains(t, doc, "second body")
}

func TestAssemble_MissingDumpIsFatal(t *testing.T) {
	a, _ := newAssembler(t, config.ProjectConfig{})

	_, _, err := a.Assemble(context.Background(), Request{
		ProjectPath:  "/proj",
		ContextDumps: []ContextDump{{File: "nope.md", Title: "Gone"}},
		OutputName:   "out.md",
	})

	var notFound *NoteNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope.md", notFound.File)
}

// readFailFS fails reads of one path with a permission error.
type readFailFS struct {
	*fsx.MemFS
	failPath string
}

func (f *readFailFS) ReadFile(path string) ([]byte, error) {
	if path == f.failPath {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
	}
	return f.MemFS.ReadFile(path)
}

func TestAssemble_UnreadableDumpIsNotReportedAsMissing(t *testing.T) {
	a, m := newAssembler(t, config.ProjectConfig{})
	require.NoError(t, m.MkdirAll("/proj/.ctxprep_notes", 0o755))
	require.NoError(t, m.WriteFile("/proj/.ctxprep_notes/locked.md", []byte("body"), 0o644))
	a.fs = &readFailFS{MemFS: m, failPath: "/proj/.ctxprep_notes/locked.md"}

	_, _, err := a.Assemble(context.Background(), Request{
		ProjectPath:  "/proj",
		ContextDumps: []ContextDump{{File: ".ctxprep_notes/locked.md", Title: "Locked"}},
		OutputName:   "out.md",
	})

	require.Error(t, err)
	var notFound *NoteNotFoundError
	assert.False(t, errors.As(err, &notFound), "a permission failure is not a missing note")
	assert.Contains(t, err.Error(), "permission")
	assert.Contains(t, err.Error(), "locked.md")
}

func TestAssemble_MissingDefaultDumpOnlyWarns(t *testing.T) {
	a, _ := newAssembler(t, config.ProjectConfig{
		DefaultContextDumps: []config.ContextDumpRef{{File: "docs/gone.md", Title: "Gone"}},
	})

	_, warnings, err := a.Assemble(context.Background(), Request{
		ProjectPath: "/proj",
		Files:       []collect.FileReference{{Path: "a.py"}},
		OutputName:  "out.md",
	})
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "docs/gone.md")
}

func TestAssemble_OutputNameEscapeFails(t *testing.T) {
	a, _ := newAssembler(t, config.ProjectConfig{})

	_, _, err := a.Assemble(context.Background(), Request{
		ProjectPath: "/proj",
		Files:       []collect.FileReference{{Path: "a.py"}},
		OutputName:  "../../escape.md",
	})

	var escErr *fsx.PathEscapeError
	require.True(t, errors.As(err, &escErr))
}

func TestAssemble_GeneratedNameUsesDateAndSlug(t *testing.T) {
	a, _ := newAssembler(t, config.ProjectConfig{})

	gc, _, err := a.Assemble(context.Background(), Request{
		ProjectPath: "/proj",
		Files:       []collect.FileReference{{Path: "a.py"}},
	})
	require.NoError(t, err)
	assert.Contains(t, gc.Path, "20260830_143000_proj.md")
}

func TestAssemble_DeterministicDocument(t *testing.T) {
	a, m := newAssembler(t, config.ProjectConfig{})

	req := Request{
		ProjectPath:  "/proj",
		Files:        []collect.FileReference{{Path: "a.py", Note: "n"}},
		GeneralNotes: []string{"remember this"},
		OutputName:   "out.md",
	}
	gc1, _, err := a.Assemble(context.Background(), req)
	require.NoError(t, err)
	doc1 := string(mustRead(t, m, gc1.Path))

	gc2, _, err := a.Assemble(context.Background(), req)
	require.NoError(t, err)
	doc2 := string(mustRead(t, m, gc2.Path))

	assert.Equal(t, doc1, doc2)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"My Cool Project":    "my-cool-project",
		"ctx.prep":           "ctx-prep",
		"  spaced  out  ":    "spaced-out",
		"":                   "context",
		"!!!":                "context",
		"snake_case_name":    "snake-case-name",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func mustRead(t *testing.T, m *fsx.MemFS, path string) []byte {
	t.Helper()
	data, err := m.ReadFile(path)
	require.NoError(t, err)
	return data
}
