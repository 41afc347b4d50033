package interpreter

import (
	"github.com/irisbuild/iris/internal/ast"
	"github.com/irisbuild/iris/internal/ireerrors"
	"github.com/irisbuild/iris/internal/value"
)

func (i *Interpreter) evalCall(e *ast.Call, env *value.Environment) (value.Value, error) {
	args := make([]value.Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := i.evalExpr(a, env)
		if err != nil {
			return value.Nil, err
		}
		args = append(args, v)
	}

	if fn, ok := i.functions[e.Name]; ok {
		return i.callUserFunction(fn, args)
	}
	if builtin, ok := i.builtins[e.Name]; ok {
		return builtin(i, args)
	}
	return value.Nil, ireerrors.NewRuntimeError("Unknown function: %s", e.Name)
}

// callUserFunction pushes a fresh frame descended from the function's
// captured environment (the global frame, per the language's
// non-closing-over-locals rule), binds positional parameters, and
// evaluates the body. Missing arguments are left unbound; extras are
// ignored.
func (i *Interpreter) callUserFunction(fn *value.Function, args []value.Value) (value.Value, error) {
	frame := value.NewChildEnvironment(fn.Captured)
	for idx, param := range fn.Params {
		if idx < len(args) {
			frame.Define(param, args[idx])
		}
	}

	body, ok := fn.Body.(*ast.Block)
	if !ok {
		if def, ok := fn.Body.(*ast.FunctionDef); ok {
			body = def.Body
		} else {
			return value.Nil, ireerrors.NewRuntimeError("function %s has no body", fn.Name)
		}
	}

	sig, err := i.evalStatementsInEnv(body, frame)
	if err != nil {
		return value.Nil, err
	}
	if sig != nil {
		return sig.value, nil
	}
	return value.Nil, nil
}
