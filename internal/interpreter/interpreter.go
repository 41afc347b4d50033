// Package interpreter tree-walks the AST produced by package parser,
// evaluating it against a host environment and accumulating a
// model.BuildConfig as a side effect. It owns the function registry
// (user functions, tasks and built-ins) and the global environment.
package interpreter

import (
	"runtime"
	"sort"
	"strings"

	"github.com/irisbuild/iris/internal/ast"
	"github.com/irisbuild/iris/internal/ireerrors"
	"github.com/irisbuild/iris/internal/model"
	"github.com/irisbuild/iris/internal/secrets"
	"github.com/irisbuild/iris/internal/value"
)

// BuiltinFunc is the shape of a host-provided function. It receives the
// already-evaluated argument values.
type BuiltinFunc func(interp *Interpreter, args []value.Value) (value.Value, error)

// Interpreter walks an *ast.Block and produces a *model.BuildConfig.
type Interpreter struct {
	global    *value.Environment
	functions map[string]*value.Function
	builtins  map[string]BuiltinFunc
	cfg       *model.BuildConfig

	// Secrets is an optional collaborator the secret() builtin reads
	// from. A nil Secrets makes secret() return nil rather than error,
	// so project files remain evaluable without a configured backend.
	Secrets secrets.Manager

	// Printer and Warner receive print()/warning() output. Defaulted to
	// stdout-backed implementations by New; the CLI may override them.
	Printer func(string)
	Warner  func(string)
}

// returnSignal carries a `return` value up through nested block
// evaluation until it reaches the function call boundary that should
// catch it.
type returnSignal struct {
	value value.Value
}

// New creates an Interpreter seeded with platform/arch, the given
// caller variables (typical keys: builddir, buildtype, prefix) and the
// full built-in registry.
func New(vars map[string]string) *Interpreter {
	interp := &Interpreter{
		global:    value.NewEnvironment(),
		functions: make(map[string]*value.Function),
		builtins:  make(map[string]BuiltinFunc),
		cfg:       &model.BuildConfig{},
		Printer:   defaultPrinter,
		Warner:    defaultWarner,
	}

	interp.global.Define("platform", value.NewString(hostPlatform()))
	interp.global.Define("arch", value.NewString(hostArch()))
	for k, v := range vars {
		interp.global.Define(k, value.NewString(v))
	}

	registerBuiltins(interp)
	return interp
}

func hostPlatform() string {
	switch runtime.GOOS {
	case "linux":
		return "linux"
	case "darwin":
		return "macos"
	case "windows":
		return "windows"
	case "freebsd":
		return "freebsd"
	default:
		return "unix"
	}
}

func hostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	case "arm64":
		return "arm64"
	case "arm":
		return "arm"
	default:
		return "unknown"
	}
}

// Run evaluates the top-level program block and returns the
// accumulated BuildConfig, or the first error encountered.
func (i *Interpreter) Run(program *ast.Block) (*model.BuildConfig, error) {
	sig, err := i.evalBlock(program, i.global)
	if err != nil {
		return nil, err
	}
	if sig != nil {
		return nil, ireerrors.NewRuntimeError("return statement outside of a function body")
	}
	return i.cfg, nil
}

// CallTask invokes a task previously registered by a TaskBlock under
// the reserved "task_<name>" prefix. The core never does this itself;
// it is the hook the CLI runner uses.
func (i *Interpreter) CallTask(name string, args []value.Value) (value.Value, error) {
	fn, ok := i.functions["task_"+name]
	if !ok {
		return value.Nil, ireerrors.NewRuntimeError("unknown task: %s", name)
	}
	return i.callUserFunction(fn, args)
}

// Tasks returns the declared task names in sorted order, for the CLI's
// --list flag.
func (i *Interpreter) Tasks() []string {
	var names []string
	for name := range i.functions {
		if rest, ok := strings.CutPrefix(name, "task_"); ok {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names
}

// ---- statement evaluation ----

// evalBlock runs each statement of block in a fresh child frame of env,
// stopping early and propagating a returnSignal if one is produced.
func (i *Interpreter) evalBlock(block *ast.Block, env *value.Environment) (*returnSignal, error) {
	child := value.NewChildEnvironment(env)
	for _, stmt := range block.Statements {
		sig, err := i.evalStmt(stmt, child)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

func (i *Interpreter) evalStmt(stmt ast.Stmt, env *value.Environment) (*returnSignal, error) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		val, err := i.evalExpr(s.Value, env)
		if err != nil {
			return nil, err
		}
		env.Set(s.Name, val)
		return nil, nil

	case *ast.Block:
		return i.evalBlock(s, env)

	case *ast.ProjectBlock:
		return i.evalProjectBlock(s, env)

	case *ast.TargetBlock:
		return i.evalTargetBlock(s, env)

	case *ast.CompilerBlock:
		return i.evalCompilerBlock(s, env)

	case *ast.DependencyBlock:
		return i.evalDependencyBlock(s, env)

	case *ast.TaskBlock:
		return i.evalTaskBlock(s, env)

	case *ast.If:
		return i.evalIf(s, env)

	case *ast.Unless:
		return i.evalUnless(s, env)

	case *ast.For:
		return i.evalFor(s, env)

	case *ast.FunctionDef:
		i.functions[s.Name] = &value.Function{
			Name:     s.Name,
			Params:   s.Params,
			Body:     s,
			Captured: i.global,
		}
		return nil, nil

	case *ast.Return:
		if s.Value == nil {
			return &returnSignal{value: value.Nil}, nil
		}
		val, err := i.evalExpr(s.Value, env)
		if err != nil {
			return nil, err
		}
		return &returnSignal{value: val}, nil

	case *ast.ExpressionStmt:
		_, err := i.evalExpr(s.Expr, env)
		return nil, err
	}
	return nil, ireerrors.NewRuntimeError("unhandled statement type %T", stmt)
}

func (i *Interpreter) evalProjectBlock(s *ast.ProjectBlock, env *value.Environment) (*returnSignal, error) {
	child := value.NewChildEnvironment(env)
	sig, err := i.evalStatementsInEnv(s.Body, child)
	if err != nil || sig != nil {
		return sig, err
	}

	proj := model.Project{Name: s.Name}
	if v, ok := child.Get("version"); ok {
		proj.Version = v.ToString()
	}
	if v, ok := child.Get("lang"); ok {
		proj.Language = v.ToString()
	}
	if v, ok := child.Get("std"); ok {
		proj.Standard = v.ToString()
	}
	if v, ok := child.Get("license"); ok {
		proj.License = v.ToString()
	}
	i.cfg.Project = proj
	return nil, nil
}

func (i *Interpreter) evalTargetBlock(s *ast.TargetBlock, env *value.Environment) (*returnSignal, error) {
	child := value.NewChildEnvironment(env)
	sig, err := i.evalStatementsInEnv(s.Body, child)
	if err != nil || sig != nil {
		return sig, err
	}

	if i.cfg.HasTarget(s.Name) {
		return nil, ireerrors.NewRuntimeError("duplicate target name: %s", s.Name)
	}

	target := &model.Target{Name: s.Name, Kind: targetKind(s.Kind)}
	if v, ok := child.Get("sources"); ok {
		target.Sources = v.ToStringList()
	}
	if v, ok := child.Get("includes"); ok {
		target.Includes = v.ToStringList()
	}
	if v, ok := child.Get("flags"); ok {
		target.Flags = v.ToStringList()
	}
	if v, ok := child.Get("link_flags"); ok {
		target.LinkFlags = v.ToStringList()
	}
	if v, ok := child.Get("deps"); ok {
		target.DependsOn = v.ToStringList()
	}
	if v, ok := child.Get("defines"); ok {
		target.Defines = model.ParseDefines(v.ToStringList())
	}

	i.cfg.AddTarget(target)
	return nil, nil
}

func targetKind(k ast.TargetKind) model.TargetKind {
	switch k {
	case ast.KindExecutable:
		return model.Executable
	case ast.KindLibrary, ast.KindStaticLibrary:
		return model.StaticLibrary
	case ast.KindSharedLibrary:
		return model.SharedLibrary
	}
	return model.Custom
}

func (i *Interpreter) evalCompilerBlock(s *ast.CompilerBlock, env *value.Environment) (*returnSignal, error) {
	child := value.NewChildEnvironment(env)
	sig, err := i.evalStatementsInEnv(s.Body, child)
	if err != nil || sig != nil {
		return sig, err
	}

	if v, ok := child.Get("flags"); ok {
		i.cfg.Compiler.GlobalFlags = append(i.cfg.Compiler.GlobalFlags, v.ToStringList()...)
	}
	if v, ok := child.Get("warnings"); ok {
		i.cfg.Compiler.GlobalFlags = append(i.cfg.Compiler.GlobalFlags, v.ToStringList()...)
	}
	if v, ok := child.Get("cc"); ok {
		i.cfg.Compiler.CC = v.ToString()
	}
	if v, ok := child.Get("cxx"); ok {
		i.cfg.Compiler.CXX = v.ToString()
	}
	return nil, nil
}

func (i *Interpreter) evalDependencyBlock(s *ast.DependencyBlock, env *value.Environment) (*returnSignal, error) {
	child := value.NewChildEnvironment(env)
	sig, err := i.evalStatementsInEnv(s.Body, child)
	if err != nil || sig != nil {
		return sig, err
	}

	dep := &model.Dependency{Name: s.Name, Kind: model.DepSystem}
	if v, ok := child.Get("version"); ok {
		dep.Version = v.ToString()
	}
	if v, ok := child.Get("kind"); ok {
		dep.Kind = model.DependencyKind(v.ToString())
	}
	if v, ok := child.Get("include_dirs"); ok {
		dep.IncludeDirs = v.ToStringList()
	}
	if v, ok := child.Get("link_dirs"); ok {
		dep.LinkDirs = v.ToStringList()
	}
	if v, ok := child.Get("libraries"); ok {
		dep.Libraries = v.ToStringList()
	}
	if v, ok := child.Get("url"); ok {
		dep.URL = v.ToString()
	}

	i.cfg.AddDependency(dep)
	return nil, nil
}

func (i *Interpreter) evalTaskBlock(s *ast.TaskBlock, env *value.Environment) (*returnSignal, error) {
	i.functions["task_"+s.Name] = &value.Function{
		Name:     s.Name,
		Params:   nil,
		Body:     s.Body,
		Captured: i.global,
	}
	return nil, nil
}

// evalStatementsInEnv runs a block's statements directly in env (no
// additional child frame), used by configuration blocks that already
// pushed their own frame before reading fields back out of it.
func (i *Interpreter) evalStatementsInEnv(block *ast.Block, env *value.Environment) (*returnSignal, error) {
	for _, stmt := range block.Statements {
		sig, err := i.evalStmt(stmt, env)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

// evalIf runs the taken branch directly in env, so a name first assigned
// inside the branch stays bound after the conditional (a compiler
// block's `if ... do flags = [...] end` still sets that block's flags).
func (i *Interpreter) evalIf(s *ast.If, env *value.Environment) (*returnSignal, error) {
	cond, err := i.evalExpr(s.Condition, env)
	if err != nil {
		return nil, err
	}
	if cond.IsTruthy() {
		return i.evalStatementsInEnv(s.Then, env)
	}
	switch elseBranch := s.Else.(type) {
	case nil:
		return nil, nil
	case *ast.Block:
		return i.evalStatementsInEnv(elseBranch, env)
	default:
		return i.evalStmt(elseBranch, env)
	}
}

func (i *Interpreter) evalUnless(s *ast.Unless, env *value.Environment) (*returnSignal, error) {
	cond, err := i.evalExpr(s.Condition, env)
	if err != nil {
		return nil, err
	}
	if !cond.IsTruthy() {
		return i.evalStatementsInEnv(s.Body, env)
	}
	return nil, nil
}

func (i *Interpreter) evalFor(s *ast.For, env *value.Environment) (*returnSignal, error) {
	iterable, err := i.evalExpr(s.Iterable, env)
	if err != nil {
		return nil, err
	}
	if iterable.Kind != value.KindArray {
		return nil, ireerrors.NewRuntimeError("for-loop requires an array, got %s", kindName(iterable.Kind))
	}

	child := value.NewChildEnvironment(env)
	for _, elem := range iterable.Arr {
		child.Define(s.Variable, elem)
		sig, err := i.evalStatementsInEnv(s.Body, child)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

func kindName(k value.Kind) string {
	switch k {
	case value.KindNil:
		return "nil"
	case value.KindBool:
		return "bool"
	case value.KindNumber:
		return "number"
	case value.KindString:
		return "string"
	case value.KindArray:
		return "array"
	case value.KindMap:
		return "map"
	case value.KindFunction:
		return "function"
	}
	return "unknown"
}
