package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindProjectFilePrefersIrisBuild(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "iris.build"), "project \"x\" do end")
	write(t, filepath.Join(dir, "project.iris"), "project \"x\" do end")

	found, err := FindProjectFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != filepath.Join(dir, "iris.build") {
		t.Fatalf("expected iris.build to win, got %q", found)
	}
}

func TestFindProjectFileErrorsWhenNoneExist(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindProjectFile(dir); err == nil {
		t.Fatal("expected an error when no candidate exists")
	}
}

func TestLoadWorkspaceDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	ws, err := LoadWorkspace(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.BuildType != "debug" {
		t.Fatalf("expected default buildtype 'debug', got %q", ws.BuildType)
	}
}

func TestLoadWorkspaceParsesYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".iris"), 0755); err != nil {
		t.Fatalf("failed to create .iris dir: %v", err)
	}
	write(t, filepath.Join(dir, ".iris", "workspace.yml"), "buildtype: release\nprefix: /opt/app\nvariables:\n  team: infra\n")

	ws, err := LoadWorkspace(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ws.BuildType != "release" || ws.Prefix != "/opt/app" || ws.Variables["team"] != "infra" {
		t.Fatalf("unexpected workspace: %+v", ws)
	}
}

func TestResolveVariablesPrecedence(t *testing.T) {
	ws := &Workspace{BuildType: "release", Variables: map[string]string{"team": "infra"}}
	vars := ResolveVariables(ws, map[string]string{"buildtype": "debug"})
	if vars["buildtype"] != "debug" {
		t.Fatalf("expected CLI override to win, got %q", vars["buildtype"])
	}
	if vars["team"] != "infra" {
		t.Fatalf("expected workspace variable to survive, got %q", vars["team"])
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
