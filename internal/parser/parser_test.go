package parser

import (
	"testing"

	"github.com/irisbuild/iris/internal/ast"
)

func parseOk(t *testing.T, src string) *ast.Block {
	t.Helper()
	block, err := New(src, "test.iris").ParseProgram()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return block
}

func TestParseProjectBlock(t *testing.T) {
	block := parseOk(t, `project "demo" do
  version = "1.0.0"
end`)
	if len(block.Statements) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(block.Statements))
	}
	proj, ok := block.Statements[0].(*ast.ProjectBlock)
	if !ok {
		t.Fatalf("expected *ast.ProjectBlock, got %T", block.Statements[0])
	}
	if proj.Name != "demo" {
		t.Fatalf("expected name 'demo', got %q", proj.Name)
	}
	if len(proj.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(proj.Body.Statements))
	}
}

func TestParsePlusEqualsDesugars(t *testing.T) {
	block := parseOk(t, `flags = ["-Wall"]
flags += ["-Wextra"]`)
	if len(block.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(block.Statements))
	}
	assign, ok := block.Statements[1].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected *ast.Assignment, got %T", block.Statements[1])
	}
	bin, ok := assign.Value.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expected desugared BinaryOp, got %T", assign.Value)
	}
	if bin.Op != "+" {
		t.Fatalf("expected '+' operator, got %q", bin.Op)
	}
	ident, ok := bin.Left.(*ast.Identifier)
	if !ok || ident.Name != "flags" {
		t.Fatalf("expected left operand to be identifier 'flags', got %#v", bin.Left)
	}
}

func TestParseElseIfDesugaring(t *testing.T) {
	block := parseOk(t, `if a do
  x = 1
else if b do
  x = 2
else
  x = 3
end`)
	ifStmt, ok := block.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", block.Statements[0])
	}
	elseBlock, ok := ifStmt.Else.(*ast.Block)
	if !ok {
		t.Fatalf("expected else branch to be *ast.Block, got %T", ifStmt.Else)
	}
	if len(elseBlock.Statements) != 1 {
		t.Fatalf("expected else block to wrap exactly 1 statement, got %d", len(elseBlock.Statements))
	}
	innerIf, ok := elseBlock.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected wrapped statement to be *ast.If, got %T", elseBlock.Statements[0])
	}
	if innerIf.Else == nil {
		t.Fatal("expected inner if to carry the final else branch")
	}
}

func TestParseTargetBlockKinds(t *testing.T) {
	cases := map[string]ast.TargetKind{
		`executable "x" do end`:     ast.KindExecutable,
		`library "x" do end`:        ast.KindLibrary,
		`static_library "x" do end`: ast.KindStaticLibrary,
		`shared_library "x" do end`: ast.KindSharedLibrary,
	}
	for src, want := range cases {
		block := parseOk(t, src)
		target, ok := block.Statements[0].(*ast.TargetBlock)
		if !ok {
			t.Fatalf("%q: expected *ast.TargetBlock, got %T", src, block.Statements[0])
		}
		if target.Kind != want {
			t.Fatalf("%q: expected kind %s, got %s", src, want, target.Kind)
		}
	}
}

func TestParseForLoop(t *testing.T) {
	block := parseOk(t, `for item in [1, 2, 3] do
  print(item)
end`)
	forStmt, ok := block.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", block.Statements[0])
	}
	if forStmt.Variable != "item" {
		t.Fatalf("expected variable 'item', got %q", forStmt.Variable)
	}
	arr, ok := forStmt.Iterable.(*ast.ArrayLit)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected 3-element array literal, got %#v", forStmt.Iterable)
	}
}

func TestParseFunctionDef(t *testing.T) {
	block := parseOk(t, `fn add(a, b) do
  return a + b
end`)
	fn, ok := block.Statements[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("expected *ast.FunctionDef, got %T", block.Statements[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function signature: %+v", fn)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	block := parseOk(t, `x = 1 + 2 * 3`)
	assign := block.Statements[0].(*ast.Assignment)
	bin, ok := assign.Value.(*ast.BinaryOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+' operator, got %#v", assign.Value)
	}
	right, ok := bin.Right.(*ast.BinaryOp)
	if !ok || right.Op != "*" {
		t.Fatalf("expected '*' to bind tighter than '+', got %#v", bin.Right)
	}
}

func TestParseMapLiteral(t *testing.T) {
	block := parseOk(t, `x = {"a": 1, "b": 2}`)
	assign := block.Statements[0].(*ast.Assignment)
	m, ok := assign.Value.(*ast.MapLit)
	if !ok {
		t.Fatalf("expected *ast.MapLit, got %T", assign.Value)
	}
	if len(m.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(m.Pairs))
	}
}

func TestParseCallMemberIndexChain(t *testing.T) {
	block := parseOk(t, `x = foo(1, 2).bar[0]`)
	assign := block.Statements[0].(*ast.Assignment)
	idx, ok := assign.Value.(*ast.Index)
	if !ok {
		t.Fatalf("expected *ast.Index at top, got %T", assign.Value)
	}
	member, ok := idx.Object.(*ast.Member)
	if !ok || member.Name != "bar" {
		t.Fatalf("expected member 'bar', got %#v", idx.Object)
	}
	call, ok := member.Object.(*ast.Call)
	if !ok || call.Name != "foo" || len(call.Args) != 2 {
		t.Fatalf("expected call to 'foo' with 2 args, got %#v", member.Object)
	}
}

func TestParseSymbolLiteral(t *testing.T) {
	block := parseOk(t, `x = :release`)
	assign := block.Statements[0].(*ast.Assignment)
	sym, ok := assign.Value.(*ast.Symbol)
	if !ok || sym.Name != "release" {
		t.Fatalf("expected symbol 'release', got %#v", assign.Value)
	}
}

func TestParseAbortsOnFirstError(t *testing.T) {
	_, err := New(`project do end`, "bad.iris").ParseProgram()
	if err == nil {
		t.Fatal("expected a parse error for a missing project name")
	}
}
