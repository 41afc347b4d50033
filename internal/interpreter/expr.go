package interpreter

import (
	"strconv"

	"github.com/irisbuild/iris/internal/ast"
	"github.com/irisbuild/iris/internal/ireerrors"
	"github.com/irisbuild/iris/internal/value"
)

func (i *Interpreter) evalExpr(expr ast.Expr, env *value.Environment) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.StringLit:
		return value.NewString(e.Value), nil
	case *ast.NumberLit:
		return value.NewNumber(e.Value), nil
	case *ast.BoolLit:
		return value.NewBool(e.Value), nil
	case *ast.NilLit:
		return value.Nil, nil
	case *ast.Symbol:
		return value.NewString(e.Name), nil
	case *ast.Identifier:
		return i.evalIdentifier(e, env), nil
	case *ast.ArrayLit:
		return i.evalArrayLit(e, env)
	case *ast.MapLit:
		return i.evalMapLit(e, env)
	case *ast.BinaryOp:
		return i.evalBinaryOp(e, env)
	case *ast.UnaryOp:
		return i.evalUnaryOp(e, env)
	case *ast.Call:
		return i.evalCall(e, env)
	case *ast.Member:
		return i.evalMember(e, env)
	case *ast.Index:
		return i.evalIndex(e, env)
	}
	return value.Nil, ireerrors.NewRuntimeError("unhandled expression type %T", expr)
}

func (i *Interpreter) evalIdentifier(e *ast.Identifier, env *value.Environment) value.Value {
	if v, ok := env.Get(e.Name); ok {
		return v
	}
	if fn, ok := i.functions[e.Name]; ok {
		return value.NewFunction(fn)
	}
	if _, ok := i.builtins[e.Name]; ok {
		return value.NewFunction(&value.Function{Name: e.Name})
	}
	return value.Nil
}

func (i *Interpreter) evalArrayLit(e *ast.ArrayLit, env *value.Environment) (value.Value, error) {
	elems := make([]value.Value, 0, len(e.Elements))
	for _, el := range e.Elements {
		v, err := i.evalExpr(el, env)
		if err != nil {
			return value.Nil, err
		}
		elems = append(elems, v)
	}
	return value.NewArray(elems), nil
}

func (i *Interpreter) evalMapLit(e *ast.MapLit, env *value.Environment) (value.Value, error) {
	m := value.NewOrderedMap()
	for _, pair := range e.Pairs {
		k, err := i.evalExpr(pair.Key, env)
		if err != nil {
			return value.Nil, err
		}
		v, err := i.evalExpr(pair.Value, env)
		if err != nil {
			return value.Nil, err
		}
		m.Set(k.ToString(), v)
	}
	return value.NewMap(m), nil
}

func (i *Interpreter) evalBinaryOp(e *ast.BinaryOp, env *value.Environment) (value.Value, error) {
	left, err := i.evalExpr(e.Left, env)
	if err != nil {
		return value.Nil, err
	}

	// and/or short-circuit.
	if e.Op == "and" {
		if !left.IsTruthy() {
			return value.NewBool(false), nil
		}
		right, err := i.evalExpr(e.Right, env)
		if err != nil {
			return value.Nil, err
		}
		return value.NewBool(right.IsTruthy()), nil
	}
	if e.Op == "or" {
		if left.IsTruthy() {
			return value.NewBool(true), nil
		}
		right, err := i.evalExpr(e.Right, env)
		if err != nil {
			return value.Nil, err
		}
		return value.NewBool(right.IsTruthy()), nil
	}

	right, err := i.evalExpr(e.Right, env)
	if err != nil {
		return value.Nil, err
	}

	switch e.Op {
	case "+":
		if left.Kind == value.KindString || right.Kind == value.KindString {
			return value.NewString(left.ToString() + right.ToString()), nil
		}
		if left.Kind == value.KindArray && right.Kind == value.KindArray {
			joined := make([]value.Value, 0, len(left.Arr)+len(right.Arr))
			joined = append(joined, left.Arr...)
			joined = append(joined, right.Arr...)
			return value.NewArray(joined), nil
		}
		l, err := toNumber(left)
		if err != nil {
			return value.Nil, err
		}
		r, err := toNumber(right)
		if err != nil {
			return value.Nil, err
		}
		return value.NewNumber(l + r), nil
	case "-", "*", "/", "%":
		l, err := toNumber(left)
		if err != nil {
			return value.Nil, err
		}
		r, err := toNumber(right)
		if err != nil {
			return value.Nil, err
		}
		switch e.Op {
		case "-":
			return value.NewNumber(l - r), nil
		case "*":
			return value.NewNumber(l * r), nil
		case "/":
			if r == 0 {
				return value.Nil, ireerrors.NewRuntimeError("Division by zero")
			}
			return value.NewNumber(l / r), nil
		case "%":
			if r == 0 {
				return value.Nil, ireerrors.NewRuntimeError("Division by zero")
			}
			return value.NewNumber(float64(int64(l) % int64(r))), nil
		}
	case "==":
		return value.NewBool(value.Equal(left, right)), nil
	case "!=":
		return value.NewBool(!value.Equal(left, right)), nil
	case "<", ">", "<=", ">=":
		l, err := toNumber(left)
		if err != nil {
			return value.Nil, err
		}
		r, err := toNumber(right)
		if err != nil {
			return value.Nil, err
		}
		switch e.Op {
		case "<":
			return value.NewBool(l < r), nil
		case ">":
			return value.NewBool(l > r), nil
		case "<=":
			return value.NewBool(l <= r), nil
		case ">=":
			return value.NewBool(l >= r), nil
		}
	}
	return value.Nil, ireerrors.NewRuntimeError("unknown binary operator %q", e.Op)
}

func (i *Interpreter) evalUnaryOp(e *ast.UnaryOp, env *value.Environment) (value.Value, error) {
	operand, err := i.evalExpr(e.Operand, env)
	if err != nil {
		return value.Nil, err
	}
	switch e.Op {
	case "-":
		n, err := toNumber(operand)
		if err != nil {
			return value.Nil, err
		}
		return value.NewNumber(-n), nil
	case "not", "!":
		return value.NewBool(!operand.IsTruthy()), nil
	}
	return value.Nil, ireerrors.NewRuntimeError("unknown unary operator %q", e.Op)
}

func (i *Interpreter) evalMember(e *ast.Member, env *value.Environment) (value.Value, error) {
	obj, err := i.evalExpr(e.Object, env)
	if err != nil {
		return value.Nil, err
	}
	switch obj.Kind {
	case value.KindMap:
		if v, ok := obj.Map.Get(e.Name); ok {
			return v, nil
		}
		return value.Nil, nil
	case value.KindArray:
		switch e.Name {
		case "length", "size":
			return value.NewNumber(float64(len(obj.Arr))), nil
		case "empty":
			return value.NewBool(len(obj.Arr) == 0), nil
		case "first":
			if len(obj.Arr) == 0 {
				return value.Nil, nil
			}
			return obj.Arr[0], nil
		case "last":
			if len(obj.Arr) == 0 {
				return value.Nil, nil
			}
			return obj.Arr[len(obj.Arr)-1], nil
		}
	case value.KindString:
		switch e.Name {
		case "length", "size":
			return value.NewNumber(float64(len(obj.Str))), nil
		case "empty":
			return value.NewBool(len(obj.Str) == 0), nil
		case "upper":
			return value.NewString(toUpper(obj.Str)), nil
		case "lower":
			return value.NewString(toLower(obj.Str)), nil
		}
	}
	return value.Nil, nil
}

func (i *Interpreter) evalIndex(e *ast.Index, env *value.Environment) (value.Value, error) {
	obj, err := i.evalExpr(e.Object, env)
	if err != nil {
		return value.Nil, err
	}
	idx, err := i.evalExpr(e.Index, env)
	if err != nil {
		return value.Nil, err
	}

	switch obj.Kind {
	case value.KindArray:
		n, err := toNumber(idx)
		if err != nil {
			return value.Nil, err
		}
		pos := int(n)
		if pos < 0 {
			pos += len(obj.Arr)
		}
		if pos < 0 || pos >= len(obj.Arr) {
			return value.Nil, nil
		}
		return obj.Arr[pos], nil
	case value.KindMap:
		if idx.Kind != value.KindString {
			return value.Nil, nil
		}
		if v, ok := obj.Map.Get(idx.Str); ok {
			return v, nil
		}
		return value.Nil, nil
	case value.KindString:
		n, err := toNumber(idx)
		if err != nil {
			return value.Nil, err
		}
		pos := int(n)
		if pos < 0 {
			pos += len(obj.Str)
		}
		if pos < 0 || pos >= len(obj.Str) {
			return value.Nil, nil
		}
		return value.NewString(string(obj.Str[pos])), nil
	}
	return value.Nil, nil
}

func toNumber(v value.Value) (float64, error) {
	switch v.Kind {
	case value.KindNumber:
		return v.Num, nil
	case value.KindString:
		n, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, ireerrors.NewRuntimeError("cannot convert %q to a number", v.Str)
		}
		return n, nil
	case value.KindBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case value.KindNil:
		return 0, nil
	}
	return 0, ireerrors.NewRuntimeError("cannot convert %s to a number", kindName(v.Kind))
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
