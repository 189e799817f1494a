// Package resources implements MCP resource handlers.
//
// Resources provide read-only data that the host can consume for
// context. They use URI-based addressing (ctxprep://...) following MCP
// conventions. Resource reads carry no arguments, so the project is
// located from the server's working directory.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/ctxprep/internal/config"
)

// Handler manages the ctxprep resource endpoints.
type Handler struct {
	resolver *config.Resolver

	// getwd is swapped in tests.
	getwd func() (string, error)
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(resolver *config.Resolver) *Handler {
	return &Handler{resolver: resolver, getwd: os.Getwd}
}

// ConfigResource returns the MCP resource definition for the effective
// project configuration.
func (h *Handler) ConfigResource() mcp.Resource {
	return mcp.NewResource(
		"ctxprep://project/config",
		"Effective Project Configuration",
		mcp.WithResourceDescription("The merged configuration (defaults, .ctxprep.json, environment) the next prepare_context call will use"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleConfig returns the resolved configuration as JSON.
func (h *Handler) HandleConfig(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	root, err := h.findRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	resolved := h.resolver.Resolve(root)
	payload := struct {
		ProjectRoot string `json:"project_root"`
		config.ProjectConfig
		Debug    bool     `json:"debug"`
		Warnings []string `json:"warnings,omitempty"`
	}{
		ProjectRoot:   root,
		ProjectConfig: resolved.ProjectConfig,
		Debug:         resolved.Debug,
		Warnings:      resolved.Warnings,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// findRoot walks up from the working directory looking for a
// .ctxprep.json. If none is found, the working directory itself is the
// project root.
func (h *Handler) findRoot() (string, error) {
	dir, err := h.getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if _, err := os.Stat(filepath.Join(current, config.ConfigFileName)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir, nil
		}
		current = parent
	}
}
