package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/HendryAvila/ctxprep/internal/fsx"
)

// Resolver resolves effective configuration per project and caches the
// result keyed by project path. The cache is the engine's only
// cross-request mutable state; Invalidate drops an entry after a
// configuration update.
type Resolver struct {
	fs  fsx.FS
	env Env

	mu    sync.Mutex
	cache map[string]*Resolved
}

// NewResolver creates a Resolver reading project files through fs with
// the given environment overrides.
func NewResolver(fs fsx.FS, env Env) *Resolver {
	return &Resolver{
		fs:    fs,
		env:   env,
		cache: make(map[string]*Resolved),
	}
}

// Resolve returns the effective configuration for a project. It never
// fails: a missing project file yields defaults, a malformed one yields
// defaults plus a recorded warning.
func (r *Resolver) Resolve(projectPath string) *Resolved {
	key := filepath.Clean(projectPath)

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	fileCfg, warning := r.loadProjectFile(key)
	resolved := Merge(Defaults(), fileCfg, r.env)
	if warning != "" {
		resolved.Warnings = append(resolved.Warnings, warning)
	}

	r.cache[key] = &resolved
	return &resolved
}

// Invalidate drops the cached entry for a project. Called after
// set_project_config rewrites the project file.
func (r *Resolver) Invalidate(projectPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, filepath.Clean(projectPath))
}

// loadProjectFile reads and parses .ctxprep.json. Returns (nil, "") when
// the file does not exist and (nil, warning) when it cannot be parsed.
func (r *Resolver) loadProjectFile(projectPath string) (*ProjectConfig, string) {
	path := filepath.Join(projectPath, ConfigFileName)
	data, err := r.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ""
		}
		return nil, fmt.Sprintf("config file %s unreadable (%v), using defaults", ConfigFileName, err)
	}

	var cfg ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Sprintf("config file %s is malformed (%v), using defaults", ConfigFileName, err)
	}
	return &cfg, ""
}

// Save writes a project configuration file. Used by set_project_config;
// the caller is responsible for invalidating the resolver cache.
func Save(fs fsx.FS, projectPath string, cfg *ProjectConfig) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	path := filepath.Join(projectPath, ConfigFileName)
	if err := fs.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", ConfigFileName, err)
	}
	return path, nil
}

// LoadFile reads the raw project file without applying defaults or env.
// set_project_config uses it so partial updates preserve fields the
// caller did not supply. Returns a zero config when the file is absent
// or malformed.
func LoadFile(fs fsx.FS, projectPath string) ProjectConfig {
	var cfg ProjectConfig
	data, err := fs.ReadFile(filepath.Join(projectPath, ConfigFileName))
	if err != nil {
		return cfg
	}
	_ = json.Unmarshal(data, &cfg)
	return cfg
}
