package interpreter

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/irisbuild/iris/internal/ireerrors"
	"github.com/irisbuild/iris/internal/shell"
	"github.com/irisbuild/iris/internal/value"
)

func defaultPrinter(s string) { fmt.Println(s) }
func defaultWarner(s string)  { fmt.Fprintln(os.Stderr, "warning:", s) }

// registerBuiltins installs the fixed built-in table. A user-defined
// function with the same name installed later into i.functions
// shadows the builtin from that point forward, since call sites check
// i.functions before i.builtins.
func registerBuiltins(i *Interpreter) {
	i.builtins["glob"] = builtinGlob
	i.builtins["file_exists"] = builtinFileExists
	i.builtins["read_file"] = builtinReadFile
	i.builtins["write_file"] = builtinWriteFile
	i.builtins["dirname"] = builtinDirname
	i.builtins["basename"] = builtinBasename
	i.builtins["extension"] = builtinExtension
	i.builtins["platform"] = builtinPlatform
	i.builtins["arch"] = builtinArch
	i.builtins["env"] = builtinEnv
	i.builtins["shell"] = builtinShell
	i.builtins["run"] = builtinRun
	i.builtins["len"] = builtinLen
	i.builtins["join"] = builtinJoin
	i.builtins["split"] = builtinSplit
	i.builtins["contains"] = builtinContains
	i.builtins["print"] = builtinPrint
	i.builtins["warning"] = builtinWarning
	i.builtins["error"] = builtinError
	i.builtins["find_package"] = builtinFindPackage
	i.builtins["find_library"] = builtinFindLibrary
	i.builtins["secret"] = builtinSecret
}

func arg(args []value.Value, n int) value.Value {
	if n < len(args) {
		return args[n]
	}
	return value.Nil
}

func builtinGlob(_ *Interpreter, args []value.Value) (value.Value, error) {
	pattern := arg(args, 0).ToString()
	re, err := globPatternToRegexp(pattern)
	if err != nil {
		return value.NewArray(nil), nil
	}

	root := globRootDir(pattern)
	recursive := strings.Contains(pattern, "**")

	var matches []string
	if recursive {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d == nil || d.IsDir() {
				return nil
			}
			if re.MatchString(filepath.ToSlash(path)) {
				matches = append(matches, path)
			}
			return nil
		})
	} else {
		entries, err := os.ReadDir(root)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				full := filepath.Join(root, e.Name())
				if re.MatchString(filepath.ToSlash(full)) {
					matches = append(matches, full)
				}
			}
		}
	}

	out := make([]value.Value, 0, len(matches))
	for _, m := range matches {
		out = append(out, value.NewString(filepath.ToSlash(m)))
	}
	return value.NewArray(out), nil
}

func globRootDir(pattern string) string {
	segments := strings.Split(filepath.ToSlash(pattern), "/")
	var rootSegs []string
	for _, seg := range segments {
		if strings.ContainsAny(seg, "*?[") {
			break
		}
		rootSegs = append(rootSegs, seg)
	}
	if len(rootSegs) == 0 {
		return "."
	}
	root := strings.Join(rootSegs, "/")
	if root == "" {
		return "."
	}
	return root
}

func globPatternToRegexp(pattern string) (*regexp.Regexp, error) {
	pattern = filepath.ToSlash(pattern)
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			if i+2 < len(pattern) && pattern[i+2] == '/' {
				// "**/" matches zero or more whole directories.
				b.WriteString("(?:.*/)?")
				i += 3
			} else {
				b.WriteString(".*")
				i += 2
			}
		case c == '*':
			b.WriteString("[^/]*")
			i++
		case c == '?':
			b.WriteString("[^/]")
			i++
		case c == '.':
			b.WriteString(`\.`)
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

func builtinFileExists(_ *Interpreter, args []value.Value) (value.Value, error) {
	_, err := os.Stat(arg(args, 0).ToString())
	return value.NewBool(err == nil), nil
}

func builtinReadFile(_ *Interpreter, args []value.Value) (value.Value, error) {
	data, err := os.ReadFile(arg(args, 0).ToString())
	if err != nil {
		return value.NewString(""), nil
	}
	return value.NewString(string(data)), nil
}

func builtinWriteFile(_ *Interpreter, args []value.Value) (value.Value, error) {
	path := arg(args, 0).ToString()
	content := arg(args, 1).ToString()
	err := os.WriteFile(path, []byte(content), 0o644)
	return value.NewBool(err == nil), nil
}

func builtinDirname(_ *Interpreter, args []value.Value) (value.Value, error) {
	return value.NewString(filepath.ToSlash(filepath.Dir(arg(args, 0).ToString()))), nil
}

func builtinBasename(_ *Interpreter, args []value.Value) (value.Value, error) {
	return value.NewString(filepath.Base(arg(args, 0).ToString())), nil
}

func builtinExtension(_ *Interpreter, args []value.Value) (value.Value, error) {
	return value.NewString(filepath.Ext(arg(args, 0).ToString())), nil
}

func builtinPlatform(_ *Interpreter, _ []value.Value) (value.Value, error) {
	return value.NewString(hostPlatform()), nil
}

func builtinArch(_ *Interpreter, _ []value.Value) (value.Value, error) {
	return value.NewString(hostArch()), nil
}

func builtinEnv(_ *Interpreter, args []value.Value) (value.Value, error) {
	return value.NewString(os.Getenv(arg(args, 0).ToString())), nil
}

func builtinShell(_ *Interpreter, args []value.Value) (value.Value, error) {
	res, err := shell.ExecuteMerged(arg(args, 0).ToString())
	if err != nil {
		return value.NewString(""), nil
	}
	return value.NewString(res.Stdout), nil
}

func builtinRun(_ *Interpreter, args []value.Value) (value.Value, error) {
	res, err := shell.ExecuteMerged(arg(args, 0).ToString())
	if err != nil {
		return value.NewNumber(-1), nil
	}
	return value.NewNumber(float64(res.ExitCode)), nil
}

func builtinLen(_ *Interpreter, args []value.Value) (value.Value, error) {
	v := arg(args, 0)
	switch v.Kind {
	case value.KindArray:
		return value.NewNumber(float64(len(v.Arr))), nil
	case value.KindString:
		return value.NewNumber(float64(len(v.Str))), nil
	}
	return value.NewNumber(0), nil
}

func builtinJoin(_ *Interpreter, args []value.Value) (value.Value, error) {
	arr := arg(args, 0)
	sep := arg(args, 1).ToString()
	parts := arr.ToStringList()
	return value.NewString(strings.Join(parts, sep)), nil
}

func builtinSplit(_ *Interpreter, args []value.Value) (value.Value, error) {
	s := arg(args, 0).ToString()
	sep := arg(args, 1).ToString()
	parts := strings.Split(s, sep)
	out := make([]value.Value, 0, len(parts))
	for _, p := range parts {
		out = append(out, value.NewString(p))
	}
	return value.NewArray(out), nil
}

func builtinContains(_ *Interpreter, args []value.Value) (value.Value, error) {
	arr := arg(args, 0)
	elem := arg(args, 1)
	if arr.Kind != value.KindArray {
		return value.NewBool(false), nil
	}
	for _, e := range arr.Arr {
		if value.Equal(e, elem) {
			return value.NewBool(true), nil
		}
	}
	return value.NewBool(false), nil
}

func builtinPrint(i *Interpreter, args []value.Value) (value.Value, error) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, a.ToString())
	}
	i.Printer(strings.Join(parts, " "))
	return value.Nil, nil
}

func builtinWarning(i *Interpreter, args []value.Value) (value.Value, error) {
	i.Warner(arg(args, 0).ToString())
	return value.Nil, nil
}

func builtinError(_ *Interpreter, args []value.Value) (value.Value, error) {
	return value.Nil, ireerrors.NewRuntimeError("%s", arg(args, 0).ToString())
}

func builtinFindPackage(_ *Interpreter, args []value.Value) (value.Value, error) {
	name := arg(args, 0).ToString()
	res, err := shell.ExecuteMerged(fmt.Sprintf("pkg-config --exists %s", shellQuote(name)))
	if err != nil || res.ExitCode != 0 {
		return value.Nil, nil
	}
	m := value.NewOrderedMap()
	m.Set("name", value.NewString(name))
	m.Set("found", value.NewBool(true))
	return value.NewMap(m), nil
}

var librarySearchPaths = []string{"/usr/lib", "/usr/local/lib", "/lib", "/usr/lib/x86_64-linux-gnu"}

func builtinFindLibrary(_ *Interpreter, args []value.Value) (value.Value, error) {
	name := arg(args, 0).ToString()
	candidates := []string{"lib" + name + ".so", "lib" + name + ".a", "lib" + name + ".dylib"}
	for _, dir := range librarySearchPaths {
		for _, cand := range candidates {
			full := filepath.Join(dir, cand)
			if _, err := os.Stat(full); err == nil {
				m := value.NewOrderedMap()
				m.Set("name", value.NewString(name))
				m.Set("found", value.NewBool(true))
				m.Set("path", value.NewString(full))
				return value.NewMap(m), nil
			}
		}
	}
	return value.Nil, nil
}

// builtinSecret reads a stored secret under the "iris" namespace. With
// no Secrets manager configured on the interpreter, it returns nil
// rather than failing the whole evaluation.
func builtinSecret(i *Interpreter, args []value.Value) (value.Value, error) {
	if i.Secrets == nil {
		return value.Nil, nil
	}
	key := arg(args, 0).ToString()
	secret, err := i.Secrets.Get("iris", key)
	if err != nil {
		return value.Nil, nil
	}
	return value.NewString(secret), nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
