package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/irisbuild/iris/internal/parser"
)

func TestDebugTokensAndASTDoNotPanic(t *testing.T) {
	src := `executable "app" do
  sources = ["src/main.cpp"]
end
`
	debugTokens(src)

	program, err := parser.New(src, "test.iris").ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	debugAST(program)
}

func TestHandleDebugModeMissingProjectFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(wd)

	if err := HandleDebugMode(DebugOptions{Full: true}); err == nil {
		t.Fatal("expected an error when no project file is found")
	}
}

func TestHandleDebugModeWithExplicitFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "iris.build")
	if err := os.WriteFile(file, []byte("executable \"app\" do\n  sources = [\"src/main.cpp\"]\nend\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := HandleDebugMode(DebugOptions{ConfigFile: file, Tokens: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
