package app

import (
	"fmt"
	"os"

	"github.com/irisbuild/iris/internal/ast"
	"github.com/irisbuild/iris/internal/config"
	"github.com/irisbuild/iris/internal/lexer"
	"github.com/irisbuild/iris/internal/parser"
)

// Domain: Debug Mode
// This file contains logic for dumping a project file's tokens and AST.

// DebugOptions selects which debug dump(s) HandleDebugMode prints.
type DebugOptions struct {
	ConfigFile string
	Full       bool
	Tokens     bool
	AST        bool
}

// HandleDebugMode loads the project file (the same way ExecuteTask does)
// and prints the requested lexer/parser dumps instead of evaluating it.
func HandleDebugMode(opts DebugOptions) error {
	actualConfigFile := opts.ConfigFile
	if actualConfigFile == "" {
		found, err := config.FindProjectFile(".")
		if err != nil {
			return fmt.Errorf("%w\n\nTo get started:\n  iris --init          # create iris.build", err)
		}
		actualConfigFile = found
	}

	content, err := os.ReadFile(actualConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read project file %q: %w", actualConfigFile, err)
	}

	hasSpecificFlag := opts.Tokens || opts.AST
	full := opts.Full || !hasSpecificFlag

	if full || opts.Tokens {
		debugTokens(string(content))
	}

	if full || opts.AST {
		program, err := parser.New(string(content), actualConfigFile).ParseProgram()
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
			return nil
		}
		debugAST(program)
	}

	return nil
}

// debugTokens prints every token the lexer produces for content.
func debugTokens(content string) {
	fmt.Println("=== LEXER DEBUG ===")
	l := lexer.New(content)
	position := 0
	for {
		tok := l.NextToken()
		lexeme := tok.Lexeme
		switch lexeme {
		case "\n":
			lexeme = "\\n"
		case "":
			lexeme = "(empty)"
		}
		fmt.Printf("  %d: %-12s %q (%d:%d)\n", position, tok.Type, lexeme, tok.Line, tok.Column)
		position++
		if tok.Type == lexer.EOF {
			break
		}
	}
	fmt.Println()
}

// debugAST prints the parsed program's statement tree.
func debugAST(program *ast.Block) {
	fmt.Println("=== AST DEBUG ===")
	if program == nil {
		fmt.Println("program is nil")
		return
	}
	fmt.Printf("Statements: %d\n", len(program.Statements))
	for i, stmt := range program.Statements {
		debugStmt(stmt, fmt.Sprintf("  %d: ", i), "    ")
	}
	fmt.Println()
}

func debugStmt(stmt ast.Stmt, prefix, indent string) {
	switch s := stmt.(type) {
	case *ast.ProjectBlock:
		fmt.Printf("%sProject %q\n", prefix, s.Name)
		debugBlock(s.Body, indent)
	case *ast.TargetBlock:
		fmt.Printf("%sTarget %s %q\n", prefix, s.Kind, s.Name)
		debugBlock(s.Body, indent)
	case *ast.CompilerBlock:
		fmt.Printf("%sCompiler\n", prefix)
		debugBlock(s.Body, indent)
	case *ast.DependencyBlock:
		fmt.Printf("%sDependency %q\n", prefix, s.Name)
		debugBlock(s.Body, indent)
	case *ast.TaskBlock:
		fmt.Printf("%sTask %q\n", prefix, s.Name)
		debugBlock(s.Body, indent)
	case *ast.If:
		fmt.Printf("%sIf\n", prefix)
		debugBlock(s.Then, indent)
		if s.Else != nil {
			fmt.Printf("%sElse\n", indent)
			debugStmt(s.Else, indent+"  ", indent+"  ")
		}
	case *ast.Unless:
		fmt.Printf("%sUnless\n", prefix)
		debugBlock(s.Body, indent)
	case *ast.For:
		fmt.Printf("%sFor %s in ...\n", prefix, s.Variable)
		debugBlock(s.Body, indent)
	case *ast.FunctionDef:
		fmt.Printf("%sFn %s(%v)\n", prefix, s.Name, s.Params)
		debugBlock(s.Body, indent)
	case *ast.Return:
		fmt.Printf("%sReturn\n", prefix)
	case *ast.Assignment:
		fmt.Printf("%sAssign %s\n", prefix, s.Name)
	case *ast.ExpressionStmt:
		fmt.Printf("%sExpr %T\n", prefix, s.Expr)
	case *ast.Block:
		fmt.Printf("%sBlock\n", prefix)
		debugBlock(s, indent)
	default:
		fmt.Printf("%s%T\n", prefix, s)
	}
}

func debugBlock(b *ast.Block, indent string) {
	if b == nil {
		return
	}
	for i, stmt := range b.Statements {
		debugStmt(stmt, fmt.Sprintf("%s%d: ", indent, i), indent+"  ")
	}
}
