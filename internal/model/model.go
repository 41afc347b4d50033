// Package model defines the BuildConfig the interpreter accumulates:
// project metadata, global compiler settings, targets, dependencies and
// tasks. None of these types execute anything; they are a frozen record
// of what the DSL described.
package model

// TargetKind enumerates the artifact kinds a target may produce.
// Object and Custom are not reachable from the DSL's TargetBlock
// grammar directly. internal/graph gives a subproject dependency's node
// the Object kind; Custom is the interpreter's fallback kind, which none
// of the TargetBlock kinds maps to.
type TargetKind string

const (
	Executable    TargetKind = "executable"
	StaticLibrary TargetKind = "static_library"
	SharedLibrary TargetKind = "shared_library"
	Object        TargetKind = "object"
	Custom        TargetKind = "custom"
)

// Project carries the fields read back from a ProjectBlock.
type Project struct {
	Name     string
	Version  string
	License  string
	Language string
	Standard string
}

// Compiler carries the fields read back from a CompilerBlock.
type Compiler struct {
	GlobalFlags    []string
	GlobalIncludes []string
	GlobalDefines  map[string]string
	CC             string
	CXX            string
}

// Target is one build artifact, in the order it was declared.
type Target struct {
	Name      string
	Kind      TargetKind
	Sources   []string
	Includes  []string
	Flags     []string
	LinkFlags []string
	DependsOn []string
	Defines   map[string]string
}

// DependencyKind enumerates how an external dependency is resolved.
// "download" is a supplemented kind beyond the DSL's base vocabulary
// (system, pkg-config, cmake, subproject), resolved by a CLI-level
// fetch step rather than by the interpreter itself.
type DependencyKind string

const (
	DepSystem     DependencyKind = "system"
	DepPkgConfig  DependencyKind = "pkg-config"
	DepCMake      DependencyKind = "cmake"
	DepSubproject DependencyKind = "subproject"
	DepDownload   DependencyKind = "download"
)

// Dependency is an external dependency descriptor.
type Dependency struct {
	Name        string
	Version     string
	Kind        DependencyKind
	IncludeDirs []string
	LinkDirs    []string
	Libraries   []string
	URL         string // only meaningful when Kind == DepDownload
}

// BuildConfig is the frozen output of interpreting a project file.
type BuildConfig struct {
	Project      Project
	Compiler     Compiler
	Targets      []*Target
	Dependencies []*Dependency
}

// FindTarget returns the target with the given name, if any.
func (b *BuildConfig) FindTarget(name string) (*Target, bool) {
	for _, t := range b.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// AddTarget appends a target, preserving declaration order. It does
// not itself check for duplicate names; HasTarget lets a caller do
// that first (the interpreter does this at TargetBlock evaluation
// time, before calling AddTarget).
func (b *BuildConfig) AddTarget(t *Target) {
	b.Targets = append(b.Targets, t)
}

// HasTarget reports whether a target with the given name already
// exists.
func (b *BuildConfig) HasTarget(name string) bool {
	_, ok := b.FindTarget(name)
	return ok
}

// AddDependency appends a dependency descriptor.
func (b *BuildConfig) AddDependency(d *Dependency) {
	b.Dependencies = append(b.Dependencies, d)
}

// ParseDefines splits "NAME=VALUE" strings at the first '=', mapping a
// bare "NAME" to an empty value.
func ParseDefines(items []string) map[string]string {
	out := make(map[string]string, len(items))
	for _, item := range items {
		name, value := item, ""
		for i := 0; i < len(item); i++ {
			if item[i] == '=' {
				name, value = item[:i], item[i+1:]
				break
			}
		}
		out[name] = value
	}
	return out
}
