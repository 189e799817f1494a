// Package tools implements the MCP tool handlers for context preparation.
//
// Each tool is a struct that receives its dependencies via constructor
// and exposes Definition() and Handle() for registration.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on interfaces (fsx.FS, notes.Store), not concretions
// - Caller mistakes (bad paths, missing arguments) come back as tool
//   error results; internal failures come back as Go errors.
package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"

	"github.com/HendryAvila/ctxprep/internal/collect"
	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/index"
)

// contextIndex is the slice of the generated-context index the tools
// need. Abstracted so tests can substitute a fake.
type contextIndex interface {
	Record(e index.Entry) error
	List(limit int) ([]index.Entry, error)
	Close() error
}

// openIndex opens the per-project context index. Swapped in tests.
var openIndex = func(dir string) (contextIndex, error) {
	return index.Open(dir)
}

// resolveProject validates the project_path argument: it must be
// provided and name an existing directory. A non-nil result is the
// error to hand back to the caller.
func resolveProject(fs fsx.FS, req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	raw := strings.TrimSpace(req.GetString("project_path", ""))
	if raw == "" {
		return "", mcp.NewToolResultError("'project_path' is required — the absolute path of the project to work on")
	}
	root := filepath.Clean(raw)
	info, err := fs.Stat(root)
	if err != nil {
		return "", mcp.NewToolResultError(fmt.Sprintf("project path %q does not exist: %v", raw, err))
	}
	if !info.IsDir() {
		return "", mcp.NewToolResultError(fmt.Sprintf("project path %q is not a directory", raw))
	}
	return root, nil
}

// intArg extracts an integer argument, returning defaultVal if the key
// is missing or not a number (JSON numbers arrive as float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// stringSliceArg extracts a list-of-strings argument. Non-string
// elements are skipped rather than failing the whole call.
func stringSliceArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// decodeFileRefs decodes the files argument. Each element may be an
// object ({path, note}) or a bare path string — clients send both.
func decodeFileRefs(req mcp.CallToolRequest, key string) ([]collect.FileReference, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%q must be an array", key)
	}
	refs := make([]collect.FileReference, 0, len(items))
	for i, item := range items {
		if s, ok := item.(string); ok {
			refs = append(refs, collect.FileReference{Path: s})
			continue
		}
		var ref collect.FileReference
		if err := mapstructure.Decode(item, &ref); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		if strings.TrimSpace(ref.Path) == "" {
			return nil, fmt.Errorf("%s[%d]: 'path' is required", key, i)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
