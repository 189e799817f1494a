package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/notes"
)

// CreateNotesTool handles the create_debug_notes MCP tool.
// It persists a scratch note under the project's notes directory so it
// can later be spliced into a context as a context dump.
type CreateNotesTool struct {
	fs    fsx.FS
	store notes.Store
}

// NewCreateNotesTool creates a CreateNotesTool with the given note store.
func NewCreateNotesTool(fs fsx.FS, store notes.Store) *CreateNotesTool {
	return &CreateNotesTool{fs: fs, store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateNotesTool) Definition() mcp.Tool {
	return mcp.NewTool("create_debug_notes",
		mcp.WithDescription(
			"Save a debugging or analysis note inside the project's "+
				notes.DirName+" directory. Notes are plain markdown with a small "+
				"frontmatter header and can be referenced later as context dumps "+
				"in prepare_context.",
		),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Absolute path of the project root."),
		),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Note filename. '.md' is appended when missing; path separators are rejected."),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Markdown body of the note."),
		),
	)
}

// Handle processes the create_debug_notes tool call.
func (t *CreateNotesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errRes := resolveProject(t.fs, req)
	if errRes != nil {
		return errRes, nil
	}

	filename := req.GetString("filename", "")
	content := req.GetString("content", "")
	if strings.TrimSpace(filename) == "" {
		return mcp.NewToolResultError("'filename' is required — the name for the note file"), nil
	}
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("'content' is required — the note body"), nil
	}

	note, err := t.store.Create(root, filename, content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Could not create note: %v", err)), nil
	}

	response := fmt.Sprintf(
		"# Note Saved\n\n"+
			"**File:** `%s`\n"+
			"**Path:** `%s`\n\n"+
			"Reference it in prepare_context as a context dump:\n"+
			"`{\"file\": \"%s/%s\", \"title\": \"...\"}`",
		note.Filename, note.Path, notes.DirName, note.Filename,
	)
	return mcp.NewToolResultText(response), nil
}
