package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"

	"github.com/HendryAvila/ctxprep/internal/config"
	"github.com/HendryAvila/ctxprep/internal/fsx"
)

// SetConfigTool handles the set_project_config MCP tool.
// It applies partial updates to the project's .ctxprep.json and
// invalidates the resolver cache so the next request sees them.
type SetConfigTool struct {
	fs       fsx.FS
	resolver *config.Resolver
}

// NewSetConfigTool creates a SetConfigTool.
func NewSetConfigTool(fs fsx.FS, resolver *config.Resolver) *SetConfigTool {
	return &SetConfigTool{fs: fs, resolver: resolver}
}

// Definition returns the MCP tool definition for registration.
func (t *SetConfigTool) Definition() mcp.Tool {
	return mcp.NewTool("set_project_config",
		mcp.WithDescription(
			"Update the project's "+config.ConfigFileName+" configuration. "+
				"Only the fields provided are changed; everything else in the "+
				"file is preserved. Environment variables still take precedence "+
				"over the file at resolution time.",
		),
		mcp.WithString("project_path",
			mcp.Required(),
			mcp.Description("Absolute path of the project root."),
		),
		mcp.WithArray("ignore_patterns",
			mcp.Description("Gitignore-style patterns pruned from the tree. Replaces the current list."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("output_dir",
			mcp.Description("Directory (relative to the project root) where documents are written."),
		),
		mcp.WithArray("default_context_dumps",
			mcp.Description("Documents spliced into every context. Each entry is {file, title}."),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithNumber("max_file_bytes",
			mcp.Description("Per-file size ceiling in bytes. Larger files become omission markers."),
		),
		mcp.WithNumber("max_context_bytes",
			mcp.Description("Aggregate document size ceiling in bytes. Hard limit."),
		),
		mcp.WithArray("allowed_extensions",
			mcp.Description("Extension allow-list (e.g. ['.go', '.md']). Empty admits everything."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("tree_max_depth",
			mcp.Description("Maximum tree depth. 0 means unlimited."),
		),
	)
}

// Handle processes the set_project_config tool call.
func (t *SetConfigTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errRes := resolveProject(t.fs, req)
	if errRes != nil {
		return errRes, nil
	}

	cfg := config.LoadFile(t.fs, root)
	args := req.GetArguments()
	var changed []string

	if _, ok := args["ignore_patterns"]; ok {
		cfg.IgnorePatterns = stringSliceArg(req, "ignore_patterns")
		changed = append(changed, "ignore_patterns")
	}
	if v := req.GetString("output_dir", ""); v != "" {
		cfg.OutputDir = v
		changed = append(changed, "output_dir")
	}
	if raw, ok := args["default_context_dumps"]; ok {
		var dumps []config.ContextDumpRef
		if err := mapstructure.Decode(raw, &dumps); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid default_context_dumps: %v", err)), nil
		}
		cfg.DefaultContextDumps = dumps
		changed = append(changed, "default_context_dumps")
	}
	if v := intArg(req, "max_file_bytes", 0); v > 0 {
		cfg.MaxFileBytes = int64(v)
		changed = append(changed, "max_file_bytes")
	}
	if v := intArg(req, "max_context_bytes", 0); v > 0 {
		cfg.MaxContextBytes = int64(v)
		changed = append(changed, "max_context_bytes")
	}
	if _, ok := args["allowed_extensions"]; ok {
		cfg.AllowedExtensions = stringSliceArg(req, "allowed_extensions")
		changed = append(changed, "allowed_extensions")
	}
	if v := intArg(req, "tree_max_depth", -1); v >= 0 {
		cfg.TreeMaxDepth = v
		changed = append(changed, "tree_max_depth")
	}

	if len(changed) == 0 {
		return mcp.NewToolResultError("no configuration fields provided — nothing to change"), nil
	}

	path, err := config.Save(t.fs, root, &cfg)
	if err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	t.resolver.Invalidate(root)

	response := fmt.Sprintf(
		"# Configuration Updated\n\n"+
			"**File:** `%s`\n"+
			"**Changed:** %s\n",
		path, strings.Join(changed, ", "),
	)
	return mcp.NewToolResultText(response), nil
}
