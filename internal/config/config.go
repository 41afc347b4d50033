// Package config locates a project's build file and loads its optional
// workspace configuration, seeding the caller-provided variable bag the
// interpreter expects (builddir, buildtype, prefix, and anything else
// the workspace file or CLI flags define).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// defaultCandidates are tried in order when no explicit project file
// path is given.
var defaultCandidates = []string{
	"iris.build",
	".iris/project.iris",
	"project.iris",
	"build/project.iris",
}

// FindProjectFile returns the first existing candidate under dir, or
// an error listing what was tried.
func FindProjectFile(dir string) (string, error) {
	for _, candidate := range defaultCandidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no project file found in %s (tried %v)", dir, defaultCandidates)
}

// Workspace is the optional .iris/workspace.yml file.
type Workspace struct {
	DefaultFile string            `yaml:"defaultFile"`
	Variables   map[string]string `yaml:"variables"`
	BuildType   string            `yaml:"buildtype"`
	Prefix      string            `yaml:"prefix"`
}

// LoadWorkspace reads .iris/workspace.yml under dir. A missing file is
// not an error; it returns an empty Workspace with built-in defaults.
func LoadWorkspace(dir string) (*Workspace, error) {
	ws := &Workspace{BuildType: "debug"}

	path := filepath.Join(dir, ".iris", "workspace.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ws, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, ws); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if ws.BuildType == "" {
		ws.BuildType = "debug"
	}
	return ws, nil
}

// ResolveVariables merges built-in defaults, workspace-file values and
// CLI-flag overrides, in that increasing order of precedence, into the
// variable bag handed to the interpreter.
func ResolveVariables(ws *Workspace, flagOverrides map[string]string) map[string]string {
	vars := map[string]string{
		"buildtype": "debug",
	}
	if ws != nil {
		if ws.BuildType != "" {
			vars["buildtype"] = ws.BuildType
		}
		if ws.Prefix != "" {
			vars["prefix"] = ws.Prefix
		}
		for k, v := range ws.Variables {
			vars[k] = v
		}
	}
	for k, v := range flagOverrides {
		vars[k] = v
	}
	return vars
}
