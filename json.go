package gocas

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// ToJSON returns the typed tree form of x:
//
//	{"type":"num","value":"-3/4"}
//	{"type":"sym","name":"x"}
//	{"type":"const","name":"pi"}
//	{"type":"add","terms":[...]}
//	{"type":"mul","factors":[...]}
//	{"type":"pow","base":{...},"exp":{...}}
//	{"type":"func","name":"sin","arg":{...}}
//	{"type":"func","name":"f","args":[...]}
func (e *Engine) ToJSON(x Expr) map[string]any {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		return map[string]any{"type": "num", "value": ratString(n.num)}
	case KindSymbol:
		return map[string]any{"type": "sym", "name": n.sym.name}
	case KindConstant:
		return map[string]any{"type": "const", "name": n.cnst.String()}
	case KindAdd, KindMul:
		items := make([]any, len(n.args))
		for i, a := range n.args {
			items[i] = e.ToJSON(a)
		}
		if n.kind == KindAdd {
			return map[string]any{"type": "add", "terms": items}
		}
		return map[string]any{"type": "mul", "factors": items}
	case KindPow:
		return map[string]any{"type": "pow", "base": e.ToJSON(n.args[0]), "exp": e.ToJSON(n.args[1])}
	case KindApply:
		items := make([]any, len(n.args))
		for i, a := range n.args {
			items[i] = e.ToJSON(a)
		}
		return map[string]any{"type": "func", "name": n.name, "args": items}
	}
	return map[string]any{"type": "func", "name": n.kind.String(), "arg": e.ToJSON(n.args[0])}
}

// MarshalExpr encodes x as typed JSON.
func (e *Engine) MarshalExpr(x Expr) ([]byte, error) {
	return json.Marshal(e.ToJSON(x))
}

// UnmarshalExpr decodes JSON in either the typed or the compact form.
func (e *Engine) UnmarshalExpr(data []byte) (Expr, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, opErr("decode", ErrInvalidArgument, "%v", err)
	}
	return e.Decode(v)
}

// FromJSON rebuilds an expression from its typed tree form. Symbols are
// declared in the engine's registry as they are met, and every node goes
// through the canonical constructors.
func (e *Engine) FromJSON(data map[string]any) (Expr, error) {
	x, err := e.fromJSON(data)
	if err != nil {
		return 0, opErr("decode", ErrInvalidArgument, "%v", err)
	}
	return x, nil
}

func (e *Engine) fromJSON(data map[string]any) (Expr, error) {
	if data == nil {
		return 0, fmt.Errorf("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return 0, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return 0, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return 0, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		x, err := e.fromJSON(m)
		if err != nil {
			return 0, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return x, nil
	}

	subObjArray := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: %s[%d] must be an object", typ, field, i)
			}
			x, err := e.fromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = x
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return 0, err
		}
		return e.ParseNumber(val)
	case "sym":
		name, err := subString("name")
		if err != nil {
			return 0, err
		}
		return e.Symbol(name)
	case "const":
		name, err := subString("name")
		if err != nil {
			return 0, err
		}
		x, ok := e.constantNamed(name)
		if !ok {
			return 0, fmt.Errorf("const: unknown constant %q", name)
		}
		return x, nil
	case "add":
		terms, err := subObjArray("terms")
		if err != nil {
			return 0, err
		}
		return e.Add(terms...), nil
	case "mul":
		factors, err := subObjArray("factors")
		if err != nil {
			return 0, err
		}
		return e.Mul(factors...), nil
	case "pow":
		b, err := subObj("base")
		if err != nil {
			return 0, err
		}
		x, err := subObj("exp")
		if err != nil {
			return 0, err
		}
		return e.Pow(b, x), nil
	case "func":
		name, err := subString("name")
		if err != nil {
			return 0, err
		}
		var args []Expr
		if _, ok := data["args"]; ok {
			args, err = subObjArray("args")
		} else {
			var a Expr
			a, err = subObj("arg")
			args = []Expr{a}
		}
		if err != nil {
			return 0, err
		}
		return e.Apply(name, args...)
	}
	return 0, fmt.Errorf("unknown type %q", typ)
}

// constantNamed resolves the reserved names to their expressions.
func (e *Engine) constantNamed(name string) (Expr, bool) {
	switch name {
	case "pi":
		return e.pi, true
	case "i", "I":
		return e.imag, true
	case "E":
		return e.e, true
	case "oo":
		return e.inf, true
	case "-oo":
		return e.negInf(), true
	case "zoo":
		return e.zinf, true
	case "nan":
		return e.nan, true
	}
	return 0, false
}

// compactOps maps the keys of the compact object form to their arity;
// -1 means any number of arguments.
var compactOps = map[string]int{
	"add": -1, "mul": -1, "pow": 2, "sub": 2, "div": 2, "neg": 1,
}

// Decode builds an expression from a decoded JSON or YAML value. Besides
// the typed tree accepted by FromJSON it takes a compact form:
//
//	"x", "3", "-1/2", "pi", "oo"      atoms
//	7                                integers
//	{"pow": ["x", 2]}                operators: add mul pow sub div neg
//	{"sin": "x"}, {"f": ["x", "y"]}  function applications
func (e *Engine) Decode(v any) (Expr, error) {
	x, err := e.decode(v)
	if err != nil {
		return 0, opErr("decode", ErrInvalidArgument, "%v", err)
	}
	return x, nil
}

func (e *Engine) decode(v any) (Expr, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("expression is null")
	case string:
		return e.decodeAtom(t)
	case int:
		return e.intn(int64(t)), nil
	case int64:
		return e.intn(t), nil
	case uint64:
		return e.num(new(big.Rat).SetInt(new(big.Int).SetUint64(t))), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.Abs(t) > 1<<53 {
			return 0, fmt.Errorf("%v is not an exact integer; write fractions as strings", t)
		}
		return e.intn(int64(t)), nil
	case json.Number:
		return e.decodeAtom(t.String())
	case map[string]any:
		if _, ok := t["type"]; ok {
			return e.fromJSON(t)
		}
		if len(t) != 1 {
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return 0, fmt.Errorf("compact node must have exactly one key, got %s", strings.Join(keys, ", "))
		}
		for op, raw := range t {
			return e.decodeOp(op, raw)
		}
	}
	return 0, fmt.Errorf("unsupported value of type %T", v)
}

func (e *Engine) decodeAtom(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	if x, ok := e.constantNamed(s); ok {
		return x, nil
	}
	if r, ok := new(big.Rat).SetString(s); ok && !strings.ContainsAny(s, "eE") {
		return e.num(r), nil
	}
	return e.Symbol(s)
}

func (e *Engine) decodeOp(op string, raw any) (Expr, error) {
	var items []any
	if l, ok := raw.([]any); ok {
		items = l
	} else {
		items = []any{raw}
	}
	args := make([]Expr, len(items))
	for i, it := range items {
		x, err := e.decode(it)
		if err != nil {
			return 0, fmt.Errorf("%s[%d]: %w", op, i, err)
		}
		args[i] = x
	}
	n, ok := compactOps[op]
	if !ok {
		return e.Apply(op, args...)
	}
	if n >= 0 && len(args) != n {
		return 0, fmt.Errorf("%s: want %d arguments, got %d", op, n, len(args))
	}
	switch op {
	case "add":
		return e.Add(args...), nil
	case "mul":
		return e.Mul(args...), nil
	case "pow":
		return e.Pow(args[0], args[1]), nil
	case "sub":
		return e.Sub(args[0], args[1]), nil
	case "div":
		return e.Div(args[0], args[1]), nil
	}
	return e.Neg(args[0]), nil
}
