package app

import (
	"os"

	"github.com/spf13/cobra"
)

// Domain: CLI Application Structure
// This file sets up the root Cobra command and its flags.

// App represents the CLI application.
type App struct {
	version string
	commit  string
	date    string

	rootCmd *cobra.Command

	configFile  string
	listTasks   bool
	dryRun      bool
	verbose     bool
	showVersion bool
	initProject bool
	noCache     bool
	setVars     []string

	debugMode   bool
	debugFull   bool
	debugTokens bool
	debugAST    bool

	graphFormat string
	graphOut    string
}

// NewApp creates a new CLI application.
func NewApp(version, commit, date string) *App {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	app.rootCmd = &cobra.Command{
		Use:   "iris [task] [args...]",
		Short: "Build-configuration DSL and task runner for C/C++ projects",
		Long: `iris reads a project's build description, written in its own
small DSL, and turns it into a target dependency graph plus a set of
runnable tasks.

Examples:
  iris build                 # run the 'build' task
  iris --list                # list declared tasks
  iris --init                # create a starter iris.build file
  iris graph --format dot    # export the target dependency graph
  iris --debug --ast         # dump the parsed AST
  iris secret set curl registry_token ***  # store a per-dependency token`,
		RunE: app.run,
		Args: cobra.ArbitraryArgs,
	}

	app.setupFlags()
	app.setupCommands()

	return app
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

func (a *App) setupFlags() {
	flags := a.rootCmd.Flags()

	flags.StringVarP(&a.configFile, "file", "f", "", "Project file to load (default: first of iris.build, .iris/project.iris, project.iris, build/project.iris)")
	flags.BoolVarP(&a.listTasks, "list", "l", false, "List declared tasks")
	flags.BoolVar(&a.dryRun, "dry-run", false, "Evaluate the project file without running a task")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Show detailed loading/evaluation information")
	flags.BoolVar(&a.showVersion, "version", false, "Show version information")
	flags.BoolVar(&a.initProject, "init", false, "Create a starter iris.build file")
	flags.BoolVar(&a.noCache, "no-cache", false, "Disable the build cache for this invocation")
	flags.StringArrayVar(&a.setVars, "set", []string{}, "Set a project variable (KEY=VALUE)")

	flags.BoolVar(&a.debugMode, "debug", false, "Dump lexer/parser internals instead of evaluating")
	flags.BoolVar(&a.debugFull, "full", false, "With --debug, dump both tokens and AST (the default)")
	flags.BoolVar(&a.debugTokens, "tokens", false, "With --debug, dump the token stream")
	flags.BoolVar(&a.debugAST, "ast", false, "With --debug, dump the parsed AST")
}

func (a *App) setupCommands() {
	a.rootCmd.AddCommand(a.createGraphCommand())
	a.rootCmd.AddCommand(a.createSecretCommand())
	a.rootCmd.AddCommand(a.createCompletionCommand())
}

func (a *App) run(cmd *cobra.Command, args []string) error {
	if a.showVersion {
		return ShowVersion(a.version, a.commit, a.date)
	}
	if a.initProject {
		return InitializeProject(a.configFile)
	}
	if a.debugMode {
		return HandleDebugMode(DebugOptions{
			ConfigFile: a.configFile,
			Full:       a.debugFull,
			Tokens:     a.debugTokens,
			AST:        a.debugAST,
		})
	}
	return ExecuteTask(TaskOptions{
		ConfigFile: a.configFile,
		ListTasks:  a.listTasks,
		DryRun:     a.dryRun,
		Verbose:    a.verbose,
		NoCache:    a.noCache,
		SetVars:    a.setVars,
	}, args)
}

func (a *App) createCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion script",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return a.rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return a.rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return a.rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return a.rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
