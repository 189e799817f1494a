package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/ctxprep/internal/config"
	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/index"
	"github.com/HendryAvila/ctxprep/internal/notes"
)

// defaultRecentLimit caps list_recent_contexts when no limit is given.
const defaultRecentLimit = 20

// RecentContextsTool handles the list_recent_contexts MCP tool.
// It reads the project's context index; when the index is unavailable
// it falls back to scanning the output directory by modification time.
type RecentContextsTool struct {
	fs       fsx.FS
	resolver *config.Resolver
}

// NewRecentContextsTool creates a RecentContextsTool.
func NewRecentContextsTool(fs fsx.FS, resolver *config.Resolver) *RecentContextsTool {
	return &RecentContextsTool{fs: fs, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *RecentContextsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_recent_contexts",
		mcp.WithDescription(
			"List the most recently generated context documents for a project, "+
				"newest first, with their size and creation time.",
		),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Absolute path of the project root."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 20)."),
		),
	)
}

// Handle processes the list_recent_contexts tool call.
func (t *RecentContextsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errRes := resolveProject(t.fs, req)
	if errRes != nil {
		return errRes, nil
	}
	limit := intArg(req, "limit", defaultRecentLimit)
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	entries, err := t.fromIndex(root, limit)
	if err != nil {
		entries = t.fromOutputDir(root, limit)
	}

	if len(entries) == 0 {
		return mcp.NewToolResultText("No generated contexts found for this project. Run `prepare_context` first."), nil
	}

	var response strings.Builder
	response.WriteString("# Recent Contexts\n\n")
	response.WriteString("| Document | Size | Created |\n")
	response.WriteString("|----------|------|--------|\n")
	for _, e := range entries {
		fmt.Fprintf(&response, "| `%s` | %d bytes | %s |\n",
			e.Path, e.SizeBytes, e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return mcp.NewToolResultText(response.String()), nil
}

func (t *RecentContextsTool) fromIndex(root string, limit int) ([]index.Entry, error) {
	idx, err := openIndex(notes.Dir(root))
	if err != nil {
		return nil, err
	}
	defer idx.Close()
	return idx.List(limit)
}

// fromOutputDir lists *.md documents in the configured output directory
// by modification time, newest first. Used when the index cannot serve.
func (t *RecentContextsTool) fromOutputDir(root string, limit int) []index.Entry {
	cfg := t.resolver.Resolve(root)
	outDir, _, err := fsx.ResolveWithin(root, cfg.OutputDir)
	if err != nil {
		return nil
	}
	dirEntries, err := t.fs.ReadDir(outDir)
	if err != nil {
		return nil
	}

	var entries []index.Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".md") {
			continue
		}
		path := filepath.Join(outDir, de.Name())
		info, err := t.fs.Stat(path)
		if err != nil {
			continue
		}
		entries = append(entries, index.Entry{
			Path:      path,
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].Path > entries[j].Path
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
