package gocas

import "math/big"

// together rewrites x as a single fraction num/den without expanding.
func (e *Engine) together(x Expr) (num, den Expr) {
	switch e.Kind(x) {
	case KindAdd:
		num, den = e.zero, e.one
		for _, t := range e.args(x) {
			n, d := e.together(t)
			if d == den {
				num = e.Add(num, n)
				continue
			}
			num = e.Add(e.Mul(num, d), e.Mul(n, den))
			den = e.Mul(den, d)
		}
		return num, den
	case KindMul:
		num, den = e.one, e.one
		for _, f := range e.args(x) {
			n, d := e.together(f)
			num, den = e.Mul(num, n), e.Mul(den, d)
		}
		return num, den
	case KindPow:
		b, p := e.asPow(x)
		if r := e.rat(p); r != nil && r.IsInt() && r.Sign() < 0 {
			n, d := e.together(b)
			q := e.Neg(p)
			return e.Pow(d, q), e.Pow(n, q)
		}
	}
	return x, e.one
}

// Cancel puts x over a common denominator and, for expressions in a single
// symbol, removes the polynomial gcd of numerator and denominator.
func (e *Engine) Cancel(x Expr) Expr {
	n, d := e.together(x)
	n, d = e.Expand(n), e.Expand(d)
	switch {
	case n == e.zero:
		return e.zero
	case d == e.one:
		return n
	}
	if syms := e.FreeSymbols(e.Add(n, d)); len(syms) == 1 {
		v := e.sym(syms[0])
		np, ok1 := e.toPoly(n, v)
		dp, ok2 := e.toPoly(d, v)
		if ok1 && ok2 && !dp.isZero() {
			if g := polyGCD(np, dp); g.deg() > 0 {
				np, _ = polyDivMod(np, g)
				dp, _ = polyDivMod(dp, g)
			}
			return e.Div(e.fromPoly(np, v), e.fromPoly(dp, v))
		}
	}
	return e.Div(n, d)
}

// Simplify returns the smallest of x, its cancelled form and its cancelled
// form with sin(u)^2 rewritten as 1 - cos(u)^2, before and after double
// angles are reduced.
func (e *Engine) Simplify(x Expr) Expr {
	best := x
	try := func(y Expr) {
		if e.size(y) < e.size(best) {
			best = y
		}
	}
	y := e.Cancel(x)
	try(y)
	if z := e.pythagoras(y); z != y {
		try(e.Cancel(z))
	}
	if d := e.doubleAngle(y); d != y {
		try(e.Cancel(e.pythagoras(d)))
	}
	return best
}

// doubleAngle rewrites sin(2u) as 2*sin(u)*cos(u) and cos(2u) as
// 2*cos(u)^2 - 1 wherever the argument has an even integer coefficient.
func (e *Engine) doubleAngle(x Expr) Expr {
	memo := make(map[Expr]Expr)
	var walk func(Expr) Expr
	walk = func(y Expr) Expr {
		if r, ok := memo[y]; ok {
			return r
		}
		var r Expr
		if k := e.Kind(y); k == KindSin || k == KindCos {
			if u, ok := e.halfAngle(e.arg(y)); ok {
				s, c := walk(e.Sin(u)), walk(e.Cos(u))
				if k == KindSin {
					r = e.Mul(e.two, s, c)
				} else {
					r = e.Sub(e.Mul(e.two, e.Pow(c, e.two)), e.one)
				}
			}
		}
		if r == 0 {
			r = e.mapArgs(y, walk)
		}
		memo[y] = r
		return r
	}
	return walk(x)
}

// halfAngle returns u/2 when u is an even integer multiple of a
// non-numeric factor.
func (e *Engine) halfAngle(u Expr) (Expr, bool) {
	c, rest := e.splitCoeff(u)
	if rest == e.one || !c.IsInt() || c.Num().Bit(0) != 0 {
		return 0, false
	}
	return e.withCoeff(new(big.Rat).Quo(c, big.NewRat(2, 1)), rest), true
}

func (e *Engine) pythagoras(x Expr) Expr {
	memo := make(map[Expr]Expr)
	var walk func(Expr) Expr
	walk = func(y Expr) Expr {
		if r, ok := memo[y]; ok {
			return r
		}
		var r Expr
		if b, p := e.asPow(y); p == e.two && e.isKind(b, KindSin) {
			r = e.Sub(e.one, e.Pow(e.Cos(walk(e.arg(b))), e.two))
		} else {
			r = e.mapArgs(y, walk)
		}
		memo[y] = r
		return r
	}
	return e.Expand(walk(x))
}

// size counts the nodes of x as a tree.
func (e *Engine) size(x Expr) int {
	n := 1
	for _, a := range e.args(x) {
		n += e.size(a)
	}
	return n
}

// isZero decides whether x vanishes identically, as far as expansion and
// cancellation can tell.
func (e *Engine) isZero(x Expr) bool {
	if x == e.zero {
		return true
	}
	if !e.isFinite(x) {
		return false
	}
	y := e.Expand(x)
	if y == e.zero {
		return true
	}
	if e.IsConstant(y) {
		if z, ok := e.approx(y); ok && cmplxAbs(z) > 1e-9 {
			return false
		}
	}
	return e.Simplify(y) == e.zero
}
