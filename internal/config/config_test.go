package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/ctxprep/internal/fsx"
)

// --- Merge ---

func TestMerge_DefaultsWhenNothingSet(t *testing.T) {
	got := Merge(Defaults(), nil, Env{})

	if got.OutputDir != "context_reports" {
		t.Errorf("OutputDir = %s, want context_reports", got.OutputDir)
	}
	if got.MaxFileBytes != 10*1024*1024 {
		t.Errorf("MaxFileBytes = %d, want 10MiB", got.MaxFileBytes)
	}
	if got.MaxContextBytes != 50*1024*1024 {
		t.Errorf("MaxContextBytes = %d, want 50MiB", got.MaxContextBytes)
	}
	if len(got.IgnorePatterns) == 0 {
		t.Error("default ignore patterns missing")
	}
}

func TestMerge_FileOverridesDefaults(t *testing.T) {
	file := &ProjectConfig{
		OutputDir:    "reports",
		MaxFileBytes: 1024,
	}
	got := Merge(Defaults(), file, Env{})

	if got.OutputDir != "reports" {
		t.Errorf("OutputDir = %s, want reports", got.OutputDir)
	}
	if got.MaxFileBytes != 1024 {
		t.Errorf("MaxFileBytes = %d, want 1024", got.MaxFileBytes)
	}
	// Unset file fields keep defaults.
	if got.MaxContextBytes != 50*1024*1024 {
		t.Errorf("MaxContextBytes = %d, want default", got.MaxContextBytes)
	}
}

func TestMerge_EnvOverridesFile(t *testing.T) {
	file := &ProjectConfig{MaxFileBytes: 1024, MaxContextBytes: 2048}
	env := Env{MaxFileBytes: 512, AllowedExtensions: []string{".go"}}
	got := Merge(Defaults(), file, env)

	if got.MaxFileBytes != 512 {
		t.Errorf("MaxFileBytes = %d, want env value 512", got.MaxFileBytes)
	}
	if got.MaxContextBytes != 2048 {
		t.Errorf("MaxContextBytes = %d, want file value 2048", got.MaxContextBytes)
	}
	if len(got.AllowedExtensions) != 1 || got.AllowedExtensions[0] != ".go" {
		t.Errorf("AllowedExtensions = %v", got.AllowedExtensions)
	}
}

func TestResolved_ExtensionAllowed(t *testing.T) {
	r := Resolved{ProjectConfig: ProjectConfig{AllowedExtensions: []string{".go", ".md"}}}
	if !r.ExtensionAllowed(".go") {
		t.Error(".go should be allowed")
	}
	if !r.ExtensionAllowed(".GO") {
		t.Error("extension match should be case-insensitive")
	}
	if r.ExtensionAllowed(".exe") {
		t.Error(".exe should be rejected")
	}

	open := Resolved{}
	if !open.ExtensionAllowed(".anything") {
		t.Error("empty allow-list should admit everything")
	}
}

// --- EnvFromOS ---

func TestEnvFromOS_ReadsAllVariables(t *testing.T) {
	t.Setenv("CTXPREP_DEBUG", "true")
	t.Setenv("CTXPREP_MAX_FILE_BYTES", "2048")
	t.Setenv("CTXPREP_MAX_CONTEXT_BYTES", "4096")
	t.Setenv("CTXPREP_ALLOWED_EXTENSIONS", " .go, .md ,,.json")

	e := EnvFromOS()
	if !e.Debug {
		t.Error("Debug should be true")
	}
	if e.MaxFileBytes != 2048 {
		t.Errorf("MaxFileBytes = %d, want 2048", e.MaxFileBytes)
	}
	if e.MaxContextBytes != 4096 {
		t.Errorf("MaxContextBytes = %d, want 4096", e.MaxContextBytes)
	}
	want := []string{".go", ".md", ".json"}
	if len(e.AllowedExtensions) != len(want) {
		t.Fatalf("AllowedExtensions = %v, want %v", e.AllowedExtensions, want)
	}
	for i, ext := range want {
		if e.AllowedExtensions[i] != ext {
			t.Errorf("AllowedExtensions[%d] = %q, want %q", i, e.AllowedExtensions[i], ext)
		}
	}
}

func TestEnvFromOS_UnsetMeansZero(t *testing.T) {
	t.Setenv("CTXPREP_DEBUG", "")
	t.Setenv("CTXPREP_MAX_FILE_BYTES", "")
	t.Setenv("CTXPREP_MAX_CONTEXT_BYTES", "")
	t.Setenv("CTXPREP_ALLOWED_EXTENSIONS", "")

	e := EnvFromOS()
	if e.Debug || e.MaxFileBytes != 0 || e.MaxContextBytes != 0 || e.AllowedExtensions != nil {
		t.Errorf("unset environment should give a zero Env, got %+v", e)
	}
}

func TestEnvFromOS_UnparsableTreatedAsUnset(t *testing.T) {
	t.Setenv("CTXPREP_DEBUG", "yes") // only "true" enables it
	t.Setenv("CTXPREP_MAX_FILE_BYTES", "ten")
	t.Setenv("CTXPREP_MAX_CONTEXT_BYTES", "-1")

	e := EnvFromOS()
	if e.Debug {
		t.Error("Debug should only accept true")
	}
	if e.MaxFileBytes != 0 {
		t.Errorf("MaxFileBytes = %d, non-numeric must be ignored", e.MaxFileBytes)
	}
	if e.MaxContextBytes != 0 {
		t.Errorf("MaxContextBytes = %d, non-positive must be ignored", e.MaxContextBytes)
	}
}

// --- Resolver ---

func setupProject(t *testing.T, configJSON string) (*fsx.MemFS, string) {
	t.Helper()
	m := fsx.NewMemFS()
	root := "/project"
	if err := m.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if configJSON != "" {
		if err := m.WriteFile(filepath.Join(root, ConfigFileName), []byte(configJSON), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	return m, root
}

func TestResolver_MissingFileUsesDefaults(t *testing.T) {
	m, root := setupProject(t, "")
	r := NewResolver(m, Env{})

	got := r.Resolve(root)
	if got.OutputDir != "context_reports" {
		t.Errorf("OutputDir = %s", got.OutputDir)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("missing file should not warn, got %v", got.Warnings)
	}
}

func TestResolver_MalformedFileWarnsAndDefaults(t *testing.T) {
	m, root := setupProject(t, "{not json")
	r := NewResolver(m, Env{})

	got := r.Resolve(root)
	if got.OutputDir != "context_reports" {
		t.Errorf("OutputDir = %s, want default", got.OutputDir)
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "malformed") {
		t.Errorf("Warnings = %v, want one malformed-file warning", got.Warnings)
	}
}

func TestResolver_CachesUntilInvalidated(t *testing.T) {
	m, root := setupProject(t, `{"output_dir": "first"}`)
	r := NewResolver(m, Env{})

	if got := r.Resolve(root); got.OutputDir != "first" {
		t.Fatalf("OutputDir = %s, want first", got.OutputDir)
	}

	// Rewrite the file; the cached entry must still win.
	if err := m.WriteFile(filepath.Join(root, ConfigFileName), []byte(`{"output_dir": "second"}`), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got := r.Resolve(root); got.OutputDir != "first" {
		t.Errorf("OutputDir = %s, want cached first", got.OutputDir)
	}

	r.Invalidate(root)
	if got := r.Resolve(root); got.OutputDir != "second" {
		t.Errorf("OutputDir = %s, want second after invalidation", got.OutputDir)
	}
}

func TestSaveAndLoadFile_RoundTrip(t *testing.T) {
	m, root := setupProject(t, "")

	cfg := ProjectConfig{
		OutputDir:      "reports",
		IgnorePatterns: []string{"*.log", "dist"},
		DefaultContextDumps: []ContextDumpRef{
			{File: "docs/arch.md", Title: "Architecture"},
		},
	}
	if _, err := Save(m, root, &cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := LoadFile(m, root)
	if got.OutputDir != "reports" {
		t.Errorf("OutputDir = %s", got.OutputDir)
	}
	if len(got.IgnorePatterns) != 2 {
		t.Errorf("IgnorePatterns = %v", got.IgnorePatterns)
	}
	if len(got.DefaultContextDumps) != 1 || got.DefaultContextDumps[0].Title != "Architecture" {
		t.Errorf("DefaultContextDumps = %v", got.DefaultContextDumps)
	}
}
