package gocas

import "log/slog"

// Expand distributes products over sums and multiplies out integer powers
// of sums up to the configured maximum power. Negative integer powers of
// sums have their base expanded. Expand is idempotent.
func (e *Engine) Expand(x Expr) Expr {
	memo := make(map[Expr]Expr)
	for i := 0; i < 4; i++ {
		y := e.expand(x, memo)
		if y == x {
			return y
		}
		x = y
	}
	e.log.Debug("expand: no fixed point", slog.Any("expr", e.logValue(x)))
	return x
}

func (e *Engine) expand(x Expr, memo map[Expr]Expr) Expr {
	if r, ok := memo[x]; ok {
		return r
	}
	n := e.node(x)
	var r Expr
	switch n.kind {
	case KindNumber, KindSymbol, KindConstant:
		r = x
	case KindAdd:
		terms := make([]Expr, len(n.args))
		for i, t := range n.args {
			terms[i] = e.expand(t, memo)
		}
		r = e.Add(terms...)
	case KindMul:
		acc := []Expr{e.one}
		for _, f := range n.args {
			acc = e.distribute(acc, e.termsOf(e.expand(f, memo)))
		}
		r = e.Add(acc...)
	case KindPow:
		b := e.expand(n.args[0], memo)
		ex := e.expand(n.args[1], memo)
		r = e.expandPow(b, ex)
	case KindSin, KindCos, KindExp, KindLog, KindApply:
		args := make([]Expr, len(n.args))
		for i, a := range n.args {
			args[i] = e.expand(a, memo)
		}
		r = e.rebuild(x, args)
	default:
		r = x
	}
	memo[x] = r
	return r
}

func (e *Engine) termsOf(x Expr) []Expr {
	if e.isKind(x, KindAdd) {
		return e.args(x)
	}
	return []Expr{x}
}

// distribute multiplies two sums given as term lists.
func (e *Engine) distribute(a, b []Expr) []Expr {
	out := make([]Expr, 0, len(a)*len(b))
	for _, s := range a {
		for _, t := range b {
			out = append(out, e.Mul(s, t))
		}
	}
	return e.termsOf(e.Add(out...))
}

func (e *Engine) expandPow(b, x Expr) Expr {
	if !e.isKind(b, KindAdd) {
		return e.Pow(b, x)
	}
	r := e.rat(x)
	if r == nil || !r.IsInt() || !r.Num().IsInt64() {
		return e.Pow(b, x)
	}
	k := r.Num().Int64()
	neg := k < 0
	if neg {
		k = -k
	}
	if k > int64(e.opts.maxExpandPower) {
		return e.Pow(b, x)
	}
	terms := e.args(b)
	acc := terms
	for i := int64(1); i < k; i++ {
		acc = e.distribute(acc, terms)
	}
	p := e.Add(acc...)
	if neg {
		return e.Pow(p, e.negOne)
	}
	return p
}

// logValue defers rendering an expression until a log record is emitted.
func (e *Engine) logValue(x Expr) slog.LogValuer { return exprLog{e, x} }

type exprLog struct {
	e *Engine
	x Expr
}

func (l exprLog) LogValue() slog.Value { return slog.StringValue(l.e.String(l.x)) }
