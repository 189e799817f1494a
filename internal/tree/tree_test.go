package tree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/ignore"
)

func fixture(t *testing.T) *fsx.MemFS {
	t.Helper()
	m := fsx.NewMemFS()
	require.NoError(t, m.MkdirAll("/proj/src", 0o755))
	require.NoError(t, m.MkdirAll("/proj/docs", 0o755))
	require.NoError(t, m.MkdirAll("/proj/node_modules/dep", 0o755))
	require.NoError(t, m.WriteFile("/proj/README.md", []byte("hi"), 0o644))
	require.NoError(t, m.WriteFile("/proj/src/main.go", []byte("package main"), 0o644))
	require.NoError(t, m.WriteFile("/proj/src/util.go", []byte("package main"), 0o644))
	require.NoError(t, m.WriteFile("/proj/docs/arch.md", []byte("# arch"), 0o644))
	require.NoError(t, m.WriteFile("/proj/node_modules/dep/index.js", []byte("x"), 0o644))
	return m
}

func TestBuild_DirsBeforeFilesLexicographic(t *testing.T) {
	m := fixture(t)
	b := New(m, ignore.New(nil), 0)

	got, err := b.Build("/proj")
	require.NoError(t, err)

	want := "proj/\n" +
		"├── docs/\n" +
		"│   └── arch.md\n" +
		"├── node_modules/\n" +
		"│   └── dep/\n" +
		"│       └── index.js\n" +
		"├── src/\n" +
		"│   ├── main.go\n" +
		"│   └── util.go\n" +
		"└── README.md\n"
	assert.Equal(t, want, got)
}

func TestBuild_IgnoredDirectoryPruned(t *testing.T) {
	m := fixture(t)
	b := New(m, ignore.New([]string{"node_modules"}), 0)

	got, err := b.Build("/proj")
	require.NoError(t, err)

	assert.NotContains(t, got, "node_modules")
	assert.NotContains(t, got, "index.js")
	assert.Contains(t, got, "main.go")
}

func TestBuild_Deterministic(t *testing.T) {
	m := fixture(t)
	b := New(m, ignore.New([]string{"*.md"}), 0)

	first, err := b.Build("/proj")
	require.NoError(t, err)
	second, err := b.Build("/proj")
	require.NoError(t, err)

	assert.Equal(t, first, second, "two walks of an unchanged tree must be byte-identical")
}

func TestBuild_DepthLimitTruncates(t *testing.T) {
	m := fixture(t)
	b := New(m, ignore.New(nil), 1)

	got, err := b.Build("/proj")
	require.NoError(t, err)

	assert.Contains(t, got, "src/")
	assert.Contains(t, got, "... (max depth reached)")
	assert.NotContains(t, got, "main.go")
}

func TestBuild_Symlinks(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	outside, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644))

	if err := os.Symlink(outside, filepath.Join(root, "link_out")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "src"), filepath.Join(root, "link_in")))

	b := New(fsx.NewOS(), ignore.New(nil), 0)
	got, err := b.Build(root)
	require.NoError(t, err)

	assert.NotContains(t, got, "link_out", "link escaping the root must be dropped")
	assert.NotContains(t, got, "secret.txt", "nothing behind an escaping link may leak in")
	assert.Contains(t, got, "link_in", "in-root link is listed")
	assert.NotContains(t, got, "link_in/", "in-root link is a leaf, never a directory")
	assert.Equal(t, 1, strings.Count(got, "app.go"), "linked directory must not be walked twice")
}

func TestBuild_MissingRootFails(t *testing.T) {
	m := fsx.NewMemFS()
	b := New(m, ignore.New(nil), 0)

	_, err := b.Build("/nope")
	assert.Error(t, err)
}
