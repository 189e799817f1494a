package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// FeaturePrompt handles the feature-implementation MCP prompt.
// It assembles a context document scoped to one feature before any
// code is written.
type FeaturePrompt struct{}

// NewFeaturePrompt creates a FeaturePrompt.
func NewFeaturePrompt() *FeaturePrompt {
	return &FeaturePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *FeaturePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("feature-implementation",
		mcp.WithPromptDescription(
			"Prepare for implementing a feature: identify the files the "+
				"change will touch, annotate why each one matters, and assemble "+
				"them into a context document that frames the implementation.",
		),
		mcp.WithArgument("project_path",
			mcp.ArgumentDescription("Absolute path of the project"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("feature",
			mcp.ArgumentDescription("What the feature should do, in one or two sentences"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the feature-implementation prompt request.
func (p *FeaturePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectPath := ""
	feature := ""
	if args := req.Params.Arguments; args != nil {
		projectPath = args["project_path"]
		feature = args["feature"]
	}
	if projectPath == "" {
		return nil, fmt.Errorf("'project_path' argument is required")
	}
	if feature == "" {
		return nil, fmt.Errorf("'feature' argument is required")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Feature context for %s", projectPath),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to implement this feature in the project at '%s':\n\n"+
						"> %s\n\n"+
						"Please:\n"+
						"1. Explore the project structure and identify the files this change will touch or must be understood first\n"+
						"2. For each file, write a one-line note on why it matters to the feature\n"+
						"3. Run `prepare_context` (project_path='%s') with those files and notes, and the feature description as a general note\n"+
						"4. Review the generated document and point out anything still missing before we start coding",
					projectPath, feature, projectPath,
				)),
			},
		},
	}, nil
}
