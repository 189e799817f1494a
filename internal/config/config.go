// Package config implements the configuration resolver for context
// assembly requests.
//
// Effective configuration is merged from three sources, highest
// precedence first: process environment, the project-local config file
// (.ctxprep.json), and built-in defaults. The merge is a pure function
// so precedence is testable in isolation; resolution never fails — a
// missing or malformed project file degrades to defaults with a
// recorded warning.
package config

import (
	"os"
	"strconv"
	"strings"
)

// ConfigFileName is the project-local configuration file.
const ConfigFileName = ".ctxprep.json"

// ContextDumpRef names a document to splice into generated contexts
// under a title heading.
type ContextDumpRef struct {
	File  string `json:"file"`
	Title string `json:"title,omitempty"`
}

// ProjectConfig holds the per-project settings persisted in .ctxprep.json.
type ProjectConfig struct {
	IgnorePatterns      []string         `json:"ignore_patterns,omitempty"`
	OutputDir           string           `json:"output_dir,omitempty"`
	DefaultContextDumps []ContextDumpRef `json:"default_context_dumps,omitempty"`
	MaxFileBytes        int64            `json:"max_file_bytes,omitempty"`
	MaxContextBytes     int64            `json:"max_context_bytes,omitempty"`
	AllowedExtensions   []string         `json:"allowed_extensions,omitempty"`
	TreeMaxDepth        int              `json:"tree_max_depth,omitempty"`
}

// Defaults returns the built-in configuration used when no project file
// or environment override applies.
func Defaults() ProjectConfig {
	return ProjectConfig{
		IgnorePatterns: []string{
			"bin", "lib", "*.log", "logs", "__pycache__", "*.csv", "*.pyc",
			".git", ".env", "*.db", "node_modules", ".venv", "venv",
		},
		OutputDir:       "context_reports",
		MaxFileBytes:    10 * 1024 * 1024, // 10 MiB
		MaxContextBytes: 50 * 1024 * 1024, // 50 MiB
		TreeMaxDepth:    0,                // unlimited
	}
}

// Env holds the recognized environment overrides. Zero values mean
// "not set" and defer to the project file or defaults.
type Env struct {
	Debug             bool
	MaxFileBytes      int64
	MaxContextBytes   int64
	AllowedExtensions []string
}

// EnvFromOS reads the CTXPREP_* environment variables. Unparsable
// numeric values are treated as unset.
func EnvFromOS() Env {
	var e Env
	e.Debug = strings.EqualFold(os.Getenv("CTXPREP_DEBUG"), "true")
	if v := os.Getenv("CTXPREP_MAX_FILE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			e.MaxFileBytes = n
		}
	}
	if v := os.Getenv("CTXPREP_MAX_CONTEXT_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			e.MaxContextBytes = n
		}
	}
	if v := os.Getenv("CTXPREP_ALLOWED_EXTENSIONS"); v != "" {
		for _, ext := range strings.Split(v, ",") {
			ext = strings.TrimSpace(ext)
			if ext != "" {
				e.AllowedExtensions = append(e.AllowedExtensions, ext)
			}
		}
	}
	return e
}

// Resolved is the effective configuration for one request, plus any
// non-fatal diagnostics recorded while resolving it.
type Resolved struct {
	ProjectConfig
	Debug    bool
	Warnings []string
}

// Merge combines the three configuration sources into one effective
// config. Precedence: env > file > defaults. file may be nil (no
// project config). Pure — no filesystem or environment access.
func Merge(defaults ProjectConfig, file *ProjectConfig, env Env) Resolved {
	out := defaults

	if file != nil {
		if len(file.IgnorePatterns) > 0 {
			out.IgnorePatterns = file.IgnorePatterns
		}
		if file.OutputDir != "" {
			out.OutputDir = file.OutputDir
		}
		if len(file.DefaultContextDumps) > 0 {
			out.DefaultContextDumps = file.DefaultContextDumps
		}
		if file.MaxFileBytes > 0 {
			out.MaxFileBytes = file.MaxFileBytes
		}
		if file.MaxContextBytes > 0 {
			out.MaxContextBytes = file.MaxContextBytes
		}
		if len(file.AllowedExtensions) > 0 {
			out.AllowedExtensions = file.AllowedExtensions
		}
		if file.TreeMaxDepth > 0 {
			out.TreeMaxDepth = file.TreeMaxDepth
		}
	}

	if env.MaxFileBytes > 0 {
		out.MaxFileBytes = env.MaxFileBytes
	}
	if env.MaxContextBytes > 0 {
		out.MaxContextBytes = env.MaxContextBytes
	}
	if len(env.AllowedExtensions) > 0 {
		out.AllowedExtensions = env.AllowedExtensions
	}

	return Resolved{ProjectConfig: out, Debug: env.Debug}
}

// ExtensionAllowed reports whether a filename extension passes the
// allow-list. An empty allow-list admits everything.
func (r *Resolved) ExtensionAllowed(ext string) bool {
	if len(r.AllowedExtensions) == 0 {
		return true
	}
	for _, allowed := range r.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}
