package app

import (
	"fmt"
	"os"

	"github.com/irisbuild/iris/internal/config"
	"github.com/irisbuild/iris/internal/graph"
	"github.com/irisbuild/iris/internal/interpreter"
	"github.com/irisbuild/iris/internal/parser"
	"github.com/spf13/cobra"
)

// Domain: Graph Export

func (a *App) createGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the target dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphExport(a.configFile, a.graphFormat, a.graphOut)
		},
	}
	cmd.Flags().StringVar(&a.graphFormat, "format", "dot", "Output format: dot or json")
	cmd.Flags().StringVar(&a.graphOut, "out", "", "Write output to a file instead of stdout")
	return cmd
}

func runGraphExport(configFile, format, out string) error {
	actualConfigFile := configFile
	if actualConfigFile == "" {
		found, err := config.FindProjectFile(".")
		if err != nil {
			return err
		}
		actualConfigFile = found
	}

	content, err := os.ReadFile(actualConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read project file %q: %w", actualConfigFile, err)
	}

	program, err := parser.New(string(content), actualConfigFile).ParseProgram()
	if err != nil {
		return fmt.Errorf("failed to parse project file %q: %w", actualConfigFile, err)
	}

	interp := interpreter.New(nil)
	cfg, err := interp.Run(program)
	if err != nil {
		return fmt.Errorf("failed to evaluate project file %q: %w", actualConfigFile, err)
	}

	g := graph.New(cfg)

	var output string
	switch format {
	case "dot":
		output = g.ToDOT()
	case "json":
		output, err = g.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to render graph as JSON: %w", err)
		}
	default:
		return fmt.Errorf("unknown graph format %q (expected dot or json)", format)
	}

	if out == "" {
		fmt.Print(output)
		return nil
	}
	return os.WriteFile(out, []byte(output), 0644)
}
