// Package prompts implements MCP prompt handlers for context workflows.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DebugPrompt handles the debug-workflow MCP prompt.
// It guides the AI through a note-taking debugging session that ends
// in a shareable context document.
type DebugPrompt struct{}

// NewDebugPrompt creates a DebugPrompt.
func NewDebugPrompt() *DebugPrompt {
	return &DebugPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DebugPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("debug-workflow",
		mcp.WithPromptDescription(
			"Investigate a bug while keeping durable notes. Findings are "+
				"saved as debug notes and finally assembled, together with the "+
				"relevant source files, into one context document you can hand "+
				"to another session or teammate.",
		),
		mcp.WithArgument("project_path",
			mcp.ArgumentDescription("Absolute path of the project to debug"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("problem",
			mcp.ArgumentDescription("Short description of the bug or unexpected behavior"),
		),
	)
}

// Handle processes the debug-workflow prompt request.
func (p *DebugPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectPath := ""
	problem := "the bug I am about to describe"
	if args := req.Params.Arguments; args != nil {
		if v, ok := args["project_path"]; ok && v != "" {
			projectPath = v
		}
		if v, ok := args["problem"]; ok && v != "" {
			problem = v
		}
	}
	if projectPath == "" {
		return nil, fmt.Errorf("'project_path' argument is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Debug workflow for %s", projectPath),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I need to debug %s in the project at '%s'.\n\n"+
						"Please:\n"+
						"1. Ask me for reproduction steps and any error output\n"+
						"2. As you investigate, record each finding with `create_debug_notes` (project_path='%s') so nothing is lost between sessions\n"+
						"3. When the root cause is clear (or we stop), run `prepare_context` with the files involved, per-file notes explaining their role, and the debug notes as context_dumps\n"+
						"4. Give me the path of the generated document\n\n"+
						"Keep the notes factual: what was tried, what was observed, what was ruled out.",
					problem, projectPath, projectPath,
				)),
			},
		},
	}, nil
}
