package gocas

import "sort"

// rebuild reconstructs a node of kind k from new children through the
// canonical constructors.
func (e *Engine) rebuild(x Expr, args []Expr) Expr {
	n := e.node(x)
	switch n.kind {
	case KindAdd:
		return e.Add(args...)
	case KindMul:
		return e.Mul(args...)
	case KindPow:
		return e.Pow(args[0], args[1])
	case KindSin:
		return e.Sin(args[0])
	case KindCos:
		return e.Cos(args[0])
	case KindExp:
		return e.Exp(args[0])
	case KindLog:
		return e.Log(args[0])
	case KindApply:
		return e.rawApply(n.name, args)
	case KindNumber, KindSymbol, KindConstant:
		return x
	}
	panic("gocas: rebuild of invalid node")
}

// mapArgs applies f to every child of x and rebuilds x if anything changed.
func (e *Engine) mapArgs(x Expr, f func(Expr) Expr) Expr {
	args := e.args(x)
	if len(args) == 0 {
		return x
	}
	out := make([]Expr, len(args))
	changed := false
	for i, a := range args {
		out[i] = f(a)
		if out[i] != a {
			changed = true
		}
	}
	if !changed {
		return x
	}
	return e.rebuild(x, out)
}

// Replace substitutes every occurrence of the subtree old in x by repl and
// re-canonicalises the result.
func (e *Engine) Replace(x, old, repl Expr) Expr {
	memo := make(map[Expr]Expr)
	var walk func(Expr) Expr
	walk = func(y Expr) Expr {
		if y == old {
			return repl
		}
		if r, ok := memo[y]; ok {
			return r
		}
		r := e.mapArgs(y, walk)
		memo[y] = r
		return r
	}
	return walk(x)
}

// Subs substitutes v for the symbol x in expr.
func (e *Engine) Subs(expr, x, v Expr) (Expr, error) {
	if _, ok := e.SymbolOf(x); !ok {
		return 0, e.fail("subs", ErrInvalidArgument, x, "substitution target must be a symbol")
	}
	return e.Replace(expr, x, v), nil
}

// SubsMap substitutes several symbols simultaneously.
func (e *Engine) SubsMap(expr Expr, repl map[Expr]Expr) (Expr, error) {
	for k := range repl {
		if _, ok := e.SymbolOf(k); !ok {
			return 0, e.fail("subs", ErrInvalidArgument, k, "substitution target must be a symbol")
		}
	}
	memo := make(map[Expr]Expr)
	var walk func(Expr) Expr
	walk = func(y Expr) Expr {
		if v, ok := repl[y]; ok {
			return v
		}
		if r, ok := memo[y]; ok {
			return r
		}
		r := e.mapArgs(y, walk)
		memo[y] = r
		return r
	}
	return walk(expr), nil
}

// subs is Replace for callers that already hold a symbol.
func (e *Engine) subs(expr, x, v Expr) Expr { return e.Replace(expr, x, v) }

// Has reports whether sub occurs in x.
func (e *Engine) Has(x, sub Expr) bool {
	if x == sub {
		return true
	}
	for _, a := range e.args(x) {
		if e.Has(a, sub) {
			return true
		}
	}
	return false
}

// FreeSymbols returns the symbols occurring in x sorted by name.
func (e *Engine) FreeSymbols(x Expr) []Symbol {
	seen := make(map[Symbol]bool)
	var walk func(Expr)
	walk = func(y Expr) {
		n := e.node(y)
		if n.kind == KindSymbol {
			seen[n.sym] = true
			return
		}
		for _, a := range n.args {
			walk(a)
		}
	}
	walk(x)
	out := make([]Symbol, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// IsConstant reports whether x contains no symbols.
func (e *Engine) IsConstant(x Expr) bool {
	n := e.node(x)
	if n.kind == KindSymbol {
		return false
	}
	for _, a := range n.args {
		if !e.IsConstant(a) {
			return false
		}
	}
	return true
}

// symbolArg validates a variable argument.
func (e *Engine) symbolArg(op string, x Expr) error {
	if x == 0 || int(x) >= len(e.nodes) {
		return opErr(op, ErrInvalidArgument, "invalid expression handle")
	}
	if _, ok := e.SymbolOf(x); !ok {
		return e.fail(op, ErrInvalidArgument, x, "variable must be a symbol")
	}
	return nil
}

// splitFree separates the factors of x into those free of v and the rest.
func (e *Engine) splitFree(x, v Expr) (free, dep Expr) {
	if !e.isKind(x, KindMul) {
		if e.Has(x, v) {
			return e.one, x
		}
		return x, e.one
	}
	var fs, ds []Expr
	for _, f := range e.args(x) {
		if e.Has(f, v) {
			ds = append(ds, f)
		} else {
			fs = append(fs, f)
		}
	}
	return e.Mul(fs...), e.Mul(ds...)
}
