package fsx

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolveWithin_RelativeStaysInside(t *testing.T) {
	abs, rel, err := ResolveWithin("/project", "src/main.go")
	if err != nil {
		t.Fatalf("ResolveWithin failed: %v", err)
	}
	if abs != filepath.Clean("/project/src/main.go") {
		t.Errorf("abs = %s", abs)
	}
	if rel != filepath.Join("src", "main.go") {
		t.Errorf("rel = %s", rel)
	}
}

func TestResolveWithin_AbsoluteInsideRoot(t *testing.T) {
	abs, rel, err := ResolveWithin("/project", "/project/a.py")
	if err != nil {
		t.Fatalf("ResolveWithin failed: %v", err)
	}
	if abs != filepath.Clean("/project/a.py") {
		t.Errorf("abs = %s", abs)
	}
	if rel != "a.py" {
		t.Errorf("rel = %s", rel)
	}
}

func TestResolveWithin_Escapes(t *testing.T) {
	cases := []string{
		"../secrets.txt",
		"src/../../etc/passwd",
		"/etc/passwd",
		"..",
		"",
	}
	for _, path := range cases {
		_, _, err := ResolveWithin("/project", path)
		if err == nil {
			t.Errorf("ResolveWithin(%q) should fail", path)
			continue
		}
		var escErr *PathEscapeError
		if !errors.As(err, &escErr) {
			t.Errorf("ResolveWithin(%q): want PathEscapeError, got %T", path, err)
		}
	}
}

func TestResolveWithin_DotsInsideNameAllowed(t *testing.T) {
	// "..data" is a legal name, not a traversal.
	_, rel, err := ResolveWithin("/project", "..data/file.txt")
	if err != nil {
		t.Fatalf("ResolveWithin failed: %v", err)
	}
	if rel != filepath.Join("..data", "file.txt") {
		t.Errorf("rel = %s", rel)
	}
}

func TestMemFS_WriteReadList(t *testing.T) {
	m := NewMemFS()
	if err := m.MkdirAll("/p/src", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := m.WriteFile("/p/src/a.go", []byte("package a"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := m.ReadFile("/p/src/a.go")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "package a" {
		t.Errorf("content = %q", data)
	}

	entries, err := m.ReadDir("/p")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "src" || !entries[0].IsDir() {
		t.Errorf("entries = %v", entries)
	}
}

func TestMemFS_WriteWithoutParentFails(t *testing.T) {
	m := NewMemFS()
	if err := m.WriteFile("/missing/a.txt", []byte("x"), 0o644); err == nil {
		t.Error("write without parent directory should fail")
	}
}
