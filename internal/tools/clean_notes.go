package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/notes"
)

// CleanNotesTool handles the clean_temp_notes MCP tool.
// It removes old notes from the project's notes directory and nothing
// else — the context index and any non-note files stay untouched.
type CleanNotesTool struct {
	fs    fsx.FS
	store notes.Store
}

// NewCleanNotesTool creates a CleanNotesTool with the given note store.
func NewCleanNotesTool(fs fsx.FS, store notes.Store) *CleanNotesTool {
	return &CleanNotesTool{fs: fs, store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CleanNotesTool) Definition() mcp.Tool {
	return mcp.NewTool("clean_temp_notes",
		mcp.WithDescription(
			"Delete old notes from the project's "+notes.DirName+" directory. "+
				"By default notes older than 7 days are removed; a max_count cap "+
				"additionally keeps only the newest N survivors. Idempotent.",
		),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Absolute path of the project root."),
		),
		mcp.WithNumber("older_than_days",
			mcp.Description("Age threshold in days (default 7). 0 disables the age filter."),
		),
		mcp.WithNumber("max_count",
			mcp.Description("Keep at most this many of the newest notes. 0 disables the cap."),
		),
	)
}

// Handle processes the clean_temp_notes tool call.
func (t *CleanNotesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errRes := resolveProject(t.fs, req)
	if errRes != nil {
		return errRes, nil
	}

	policy := notes.DefaultCleanPolicy()
	if v := intArg(req, "older_than_days", -1); v >= 0 {
		policy.OlderThanDays = v
	}
	if v := intArg(req, "max_count", 0); v > 0 {
		policy.MaxCount = v
	}

	removed, err := t.store.Clean(root, policy)
	if err != nil {
		return nil, fmt.Errorf("cleaning notes: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Notes Cleaned\n\n**Removed:** %d note(s) from `%s`\n", removed, notes.Dir(root),
	)), nil
}
