// ctxprep is an MCP server that assembles LLM context documents:
// a project tree, selected files with notes, and saved analysis
// documents, packaged into one bounded-size markdown file.
//
// Usage:
//
//	ctxprep serve     # Start the MCP server (stdio transport)
//	ctxprep version   # Print the version
package main

import (
	"fmt"
	"log"
	"os"

	ctxserver "github.com/HendryAvila/ctxprep/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("ctxprep v%s\n", ctxserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	// stdout carries the MCP transport; everything we log goes to stderr.
	log.SetOutput(os.Stderr)

	s := ctxserver.New()
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ctxprep v%s — LLM context preparation MCP server

Usage:
  ctxprep serve      Start the MCP server on stdio
  ctxprep version    Print the version
  ctxprep help       Show this help

Configure in your MCP client:

  {
    "mcpServers": {
      "ctxprep": {
        "command": "ctxprep",
        "args": ["serve"]
      }
    }
  }

Per-project settings live in .ctxprep.json at the project root
(managed with the set_project_config tool). Environment overrides:
CTXPREP_DEBUG, CTXPREP_MAX_FILE_BYTES, CTXPREP_MAX_CONTEXT_BYTES,
CTXPREP_ALLOWED_EXTENSIONS.
`, ctxserver.Version)
}
