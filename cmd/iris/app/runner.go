package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/irisbuild/iris/internal/cache"
	"github.com/irisbuild/iris/internal/config"
	"github.com/irisbuild/iris/internal/fetch"
	"github.com/irisbuild/iris/internal/ireerrors"
	"github.com/irisbuild/iris/internal/interpreter"
	"github.com/irisbuild/iris/internal/model"
	"github.com/irisbuild/iris/internal/parser"
	"github.com/irisbuild/iris/internal/secrets"
	"github.com/irisbuild/iris/internal/value"
)

// Domain: Project Loading and Task Execution

// TaskOptions bundles the runner's flag inputs so ExecuteTask doesn't
// need a long positional parameter list.
type TaskOptions struct {
	ConfigFile string
	ListTasks  bool
	DryRun     bool
	Verbose    bool
	NoCache    bool
	SetVars    []string
}

// ExecuteTask locates and evaluates a project file, then either lists
// its targets/tasks (--list, or no task given without --dry-run),
// prints its resolved configuration (--dry-run), or invokes the named
// task.
func ExecuteTask(opts TaskOptions, args []string) error {
	projectDir := "."
	actualConfigFile := opts.ConfigFile
	if actualConfigFile == "" {
		found, err := config.FindProjectFile(projectDir)
		if err != nil {
			return fmt.Errorf("%w\n\nTo get started:\n  iris --init          # create iris.build", err)
		}
		actualConfigFile = found
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stdout, "loading: %s\n", actualConfigFile)
	}

	content, err := os.ReadFile(actualConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read project file %q: %w", actualConfigFile, err)
	}

	program, err := parser.New(string(content), actualConfigFile).ParseProgram()
	if err != nil {
		if perr, ok := err.(*ireerrors.ParseError); ok {
			fmt.Fprint(os.Stderr, perr.FormatError())
			os.Exit(1)
		}
		return fmt.Errorf("failed to parse project file %q: %w", actualConfigFile, err)
	}

	if opts.Verbose {
		fmt.Fprintln(os.Stdout, "parsed successfully")
	}

	ws, err := config.LoadWorkspace(projectDir)
	if err != nil {
		return fmt.Errorf("failed to load workspace configuration: %w", err)
	}
	overrides, err := parseSetVars(opts.SetVars)
	if err != nil {
		return fmt.Errorf("invalid --set variable: %w", err)
	}
	vars := config.ResolveVariables(ws, overrides)

	interp := interpreter.New(vars)

	secretsMgr, err := secrets.NewManager(secrets.WithFallback())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to initialize secrets manager: %v\n", err)
	} else {
		interp.Secrets = secretsMgr
	}

	cfg, err := interp.Run(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: evaluation failed: %v\n", err)
		os.Exit(1)
	}

	if opts.ListTasks {
		return listProjectAndTasks(cfg, interp)
	}

	if len(args) == 0 {
		if opts.DryRun {
			return printResolvedConfig(cfg)
		}
		return listProjectAndTasks(cfg, interp)
	}

	taskName := args[0]
	if opts.DryRun {
		fmt.Fprintf(os.Stdout, "[dry run] would invoke task %q\n", taskName)
		return printResolvedConfig(cfg)
	}

	if err := resolveDependencies(cfg, secretsMgr, opts.Verbose); err != nil {
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}

	cacheMgr, err := cache.NewManager(opts.NoCache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: build cache unavailable: %v\n", err)
		cacheMgr, _ = cache.NewManager(true)
	}
	defer func() { _ = cacheMgr.Close() }()

	hits := consultCache(cfg, cacheMgr, opts.Verbose)

	result, err := interp.CallTask(taskName, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: task %q failed: %v\n", taskName, err)
		os.Exit(1)
	}

	storeCache(cfg, cacheMgr, hits)

	if result.Kind != value.KindNil {
		fmt.Fprintln(os.Stdout, result.ToString())
	}
	return nil
}

// resolveDependencies fetches every "download"-kind dependency into
// .iris/deps/<name> before a task runs. Each dependency looks up its
// own "registry_token" first (set via `iris secret set <name>
// registry_token ...`), falling back to a shared token stored under
// the "iris" namespace so a single mirror credential can cover every
// dependency that doesn't need its own.
func resolveDependencies(cfg *model.BuildConfig, secretsMgr secrets.Manager, verbose bool) error {
	for _, d := range cfg.Dependencies {
		if d.Kind != model.DepDownload {
			continue
		}
		if verbose {
			fmt.Fprintf(os.Stdout, "fetching dependency %q from %s\n", d.Name, d.URL)
		}
		opts := fetch.DefaultOptions()
		opts.DestDir = filepath.Join(".iris", "deps", d.Name)
		opts.CacheDir = filepath.Join(".iris", "deps-cache")
		opts.Headers = registryAuthHeaders(secretsMgr, d.Name)
		result, err := fetch.Fetch(context.Background(), d.URL, opts)
		if err != nil {
			return fmt.Errorf("dependency %q: %w", d.Name, err)
		}
		if verbose {
			fmt.Fprintf(os.Stdout, "  extracted to %s (from cache: %v)\n", result.ExtractedTo, result.FromCache)
		}
	}
	return nil
}

// registryAuthHeaders resolves the auth header for a download
// dependency named depName: its own "registry_token" secret takes
// precedence, then the shared one under the "iris" namespace.
func registryAuthHeaders(secretsMgr secrets.Manager, depName string) map[string]string {
	if secretsMgr == nil {
		return nil
	}
	token, err := secretsMgr.Get(depName, "registry_token")
	if err != nil || token == "" {
		token, err = secretsMgr.Get("iris", "registry_token")
	}
	if err != nil || token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// cacheIdentity hashes a target against the build cache's key format:
// its own identity as the lookup key, plus separate source/command
// hashes so a source change and a flag change invalidate independently.
func cacheIdentity(cfg *model.BuildConfig, t *model.Target) (key, inputHash, commandHash string) {
	compilerIdentity := cfg.Compiler.CC + "|" + cfg.Compiler.CXX
	flags := append(append([]string(nil), cfg.Compiler.GlobalFlags...), t.Flags...)
	key = cache.GenerateKey(t.Name, t.Sources, flags, compilerIdentity)
	inputHash = cache.GenerateKey(t.Name, t.Sources, nil, "")
	commandHash = cache.GenerateKey(t.Name, nil, flags, compilerIdentity)
	return key, inputHash, commandHash
}

// consultCache checks every target's cache entry before a task runs,
// returning the set of keys that were already up to date so storeCache
// can skip re-storing them.
func consultCache(cfg *model.BuildConfig, mgr *cache.Manager, verbose bool) map[string]bool {
	hits := make(map[string]bool)
	for _, t := range cfg.Targets {
		key, inputHash, commandHash := cacheIdentity(cfg, t)
		upToDate, err := mgr.IsUpToDate(key, inputHash, commandHash)
		if err != nil {
			continue
		}
		if upToDate {
			hits[key] = true
		}
		if verbose {
			status := "miss"
			if upToDate {
				status = "hit"
			}
			fmt.Fprintf(os.Stdout, "cache %s: target %q\n", status, t.Name)
		}
	}
	return hits
}

// storeCache records a fresh entry for every target whose cache was not
// already up to date.
func storeCache(cfg *model.BuildConfig, mgr *cache.Manager, hits map[string]bool) {
	for _, t := range cfg.Targets {
		key, inputHash, commandHash := cacheIdentity(cfg, t)
		if hits[key] {
			continue
		}
		_ = mgr.Store(key, cache.Entry{
			InputHash:   inputHash,
			CommandHash: commandHash,
			Outputs:     []string{t.Name},
		})
	}
}

func listProjectAndTasks(cfg *model.BuildConfig, interp *interpreter.Interpreter) error {
	if cfg.Project.Name != "" {
		fmt.Printf("Project: %s", cfg.Project.Name)
		if cfg.Project.Version != "" {
			fmt.Printf(" (%s)", cfg.Project.Version)
		}
		fmt.Println()
	}

	fmt.Println("Targets:")
	if len(cfg.Targets) == 0 {
		fmt.Println("  (none declared)")
	}
	for _, t := range cfg.Targets {
		fmt.Printf("  %-20s %s\n", t.Name, t.Kind)
	}

	fmt.Println("Tasks:")
	tasks := interp.Tasks()
	if len(tasks) == 0 {
		fmt.Println("  (none declared)")
	}
	for _, name := range tasks {
		fmt.Printf("  %s\n", name)
	}

	return nil
}

func printResolvedConfig(cfg *model.BuildConfig) error {
	fmt.Printf("project: %s %s\n", cfg.Project.Name, cfg.Project.Version)
	for _, t := range cfg.Targets {
		fmt.Printf("target %s (%s)\n", t.Name, t.Kind)
		fmt.Printf("  sources: %v\n", t.Sources)
		fmt.Printf("  flags:   %v\n", t.Flags)
		fmt.Printf("  deps:    %v\n", t.DependsOn)
	}
	for _, d := range cfg.Dependencies {
		fmt.Printf("dependency %s (%s)\n", d.Name, d.Kind)
	}
	return nil
}

// parseSetVars parses --set KEY=VALUE entries into a flat override map.
func parseSetVars(setVars []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, entry := range setVars {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format %q (expected KEY=VALUE)", entry)
		}
		result[parts[0]] = parts[1]
	}
	return result, nil
}
