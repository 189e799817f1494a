// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/ctxprep/internal/config"
	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/notes"
	"github.com/HendryAvila/ctxprep/internal/prompts"
	"github.com/HendryAvila/ctxprep/internal/resources"
	"github.com/HendryAvila/ctxprep/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
func New() *server.MCPServer {
	// --- Create shared dependencies ---

	fs := fsx.NewOS()
	resolver := config.NewResolver(fs, config.EnvFromOS())
	noteStore := notes.NewFileStore(fs)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"ctxprep",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	prepareTool := tools.NewPrepareContextTool(fs, resolver)
	s.AddTool(prepareTool.Definition(), prepareTool.Handle)

	notesTool := tools.NewCreateNotesTool(fs, noteStore)
	s.AddTool(notesTool.Definition(), notesTool.Handle)

	configTool := tools.NewSetConfigTool(fs, resolver)
	s.AddTool(configTool.Definition(), configTool.Handle)

	recentTool := tools.NewRecentContextsTool(fs, resolver)
	s.AddTool(recentTool.Definition(), recentTool.Handle)

	cleanTool := tools.NewCleanNotesTool(fs, noteStore)
	s.AddTool(cleanTool.Definition(), cleanTool.Handle)

	// --- Register prompts ---

	debugPrompt := prompts.NewDebugPrompt()
	s.AddPrompt(debugPrompt.Definition(), debugPrompt.Handle)

	featurePrompt := prompts.NewFeaturePrompt()
	s.AddPrompt(featurePrompt.Definition(), featurePrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(resolver)
	s.AddResource(resourceHandler.ConfigResource(), resourceHandler.HandleConfig)

	return s
}

// serverInstructions returns the system instructions that tell the AI
// how and when to use the context tools.
func serverInstructions() string {
	return `You have access to ctxprep, a context preparation MCP server.

## WHEN TO USE ctxprep

Use prepare_context when the user:
- Wants to hand off work to another session, agent, or teammate
- Asks to "package up", "summarize for an LLM", or "export" part of a project
- Is about to start a large task and wants the relevant code in one place
- Finishes a debugging session whose findings should be preserved

Do NOT generate project summaries by hand when prepare_context can do it:
the tool produces a deterministic document with the directory tree, the
exact files you select (line-numbered), and your notes.

## HOW TO USE IT WELL

1. Select files deliberately. Every file you list appears in full —
   pick the ones that matter and attach a one-line note saying why.
2. Keep durable findings in notes. During debugging, save observations
   with create_debug_notes; splice them into the final document as
   context_dumps.
3. Respect the size report. If prepare_context fails with a size error,
   trim the file list rather than raising the limit first.
4. Per-project settings (ignore patterns, output directory, limits)
   live in .ctxprep.json — change them with set_project_config, not by
   editing the file yourself.
5. Old notes accumulate. Suggest clean_temp_notes when a project's
   notes directory has served its purpose.

The generated document path is always returned — give it to the user.`
}
