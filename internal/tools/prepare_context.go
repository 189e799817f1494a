package tools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"

	"github.com/HendryAvila/ctxprep/internal/assemble"
	"github.com/HendryAvila/ctxprep/internal/config"
	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/index"
	"github.com/HendryAvila/ctxprep/internal/notes"
)

// PrepareContextTool handles the prepare_context MCP tool.
// It assembles the project tree, selected files, and context documents
// into one bounded-size markdown document.
type PrepareContextTool struct {
	fs       fsx.FS
	resolver *config.Resolver
}

// NewPrepareContextTool creates a PrepareContextTool.
func NewPrepareContextTool(fs fsx.FS, resolver *config.Resolver) *PrepareContextTool {
	return &PrepareContextTool{fs: fs, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *PrepareContextTool) Definition() mcp.Tool {
	return mcp.NewTool("prepare_context",
		mcp.WithDescription(
			"Assemble an LLM context document for a project: directory tree, "+
				"the listed files with line numbers and optional per-file notes, "+
				"spliced context documents, and general notes. The document is "+
				"written under the project's output directory and its path is returned. "+
				"Files that are too large, binary, or outside the project are "+
				"replaced by omission markers instead of failing the request.",
		),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Absolute path of the project root."),
		),
		mcp.WithArray("files",
			mcp.Description("Files to include, in order. Each entry is {path, note} or a bare path string; paths are relative to the project root."),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithArray("context_dumps",
			mcp.Description("Existing documents to splice in verbatim. Each entry is {file, title}."),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithArray("general_notes",
			mcp.Description("Free-form notes appended near the end of the document."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("output_name",
			mcp.Description("Output filename. If omitted, a timestamped name is generated from the project directory name."),
		),
	)
}

// Handle processes the prepare_context tool call.
func (t *PrepareContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errRes := resolveProject(t.fs, req)
	if errRes != nil {
		return errRes, nil
	}

	files, err := decodeFileRefs(req, "files")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dumps, err := decodeDumps(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := t.resolver.Resolve(root)

	result, warnings, err := assemble.New(t.fs, cfg).Assemble(ctx, assemble.Request{
		ProjectPath:  root,
		Files:        files,
		ContextDumps: dumps,
		GeneralNotes: stringSliceArg(req, "general_notes"),
		OutputName:   req.GetString("output_name", ""),
	})
	if err != nil {
		var tooLarge *assemble.ContextTooLargeError
		var notFound *assemble.NoteNotFoundError
		var escape *fsx.PathEscapeError
		switch {
		case errors.As(err, &tooLarge):
			return mcp.NewToolResultError(fmt.Sprintf(
				"Context too large: %v. Reduce the file list or raise max_context_bytes.", err,
			)), nil
		case errors.As(err, &notFound):
			return mcp.NewToolResultError(fmt.Sprintf(
				"Context dump not found: %v. Check the 'file' paths in context_dumps.", err,
			)), nil
		case errors.As(err, &escape):
			return mcp.NewToolResultError(fmt.Sprintf(
				"Path escapes the project root: %v.", err,
			)), nil
		}
		return nil, fmt.Errorf("assembling context: %w", err)
	}

	t.record(cfg, root, result)

	var response strings.Builder
	response.WriteString("# Context Prepared\n\n")
	fmt.Fprintf(&response, "**Document:** `%s`\n", result.Path)
	fmt.Fprintf(&response, "**Size:** %d bytes\n", result.SizeBytes)
	fmt.Fprintf(&response, "**Files:** %d of %d requested\n", result.FileCount, len(files))
	fmt.Fprintf(&response, "**Sections:** %d\n", result.SectionCount)
	if len(warnings) > 0 {
		response.WriteString("\n## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&response, "- %s\n", w)
		}
	}

	return mcp.NewToolResultText(response.String()), nil
}

// record registers the generated document in the project index.
// Best effort: an index failure never fails a prepared context.
func (t *PrepareContextTool) record(cfg *config.Resolved, root string, gc *assemble.GeneratedContext) {
	idx, err := openIndex(notes.Dir(root))
	if err != nil {
		if cfg.Debug {
			log.Printf("context index unavailable: %v", err)
		}
		return
	}
	defer idx.Close()
	if err := idx.Record(index.Entry{
		Path:         gc.Path,
		SizeBytes:    gc.SizeBytes,
		FileCount:    gc.FileCount,
		SectionCount: gc.SectionCount,
		CreatedAt:    gc.Timestamp,
	}); err != nil && cfg.Debug {
		log.Printf("recording context: %v", err)
	}
}

// decodeDumps decodes the context_dumps argument.
func decodeDumps(req mcp.CallToolRequest) ([]assemble.ContextDump, error) {
	raw, ok := req.GetArguments()["context_dumps"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("\"context_dumps\" must be an array")
	}
	dumps := make([]assemble.ContextDump, 0, len(items))
	for i, item := range items {
		if s, ok := item.(string); ok {
			dumps = append(dumps, assemble.ContextDump{File: s})
			continue
		}
		var d assemble.ContextDump
		if err := mapstructure.Decode(item, &d); err != nil {
			return nil, fmt.Errorf("context_dumps[%d]: %w", i, err)
		}
		if strings.TrimSpace(d.File) == "" {
			return nil, fmt.Errorf("context_dumps[%d]: 'file' is required", i)
		}
		dumps = append(dumps, d)
	}
	return dumps, nil
}
