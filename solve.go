package gocas

import (
	"math/big"
	"sort"
)

// Solve returns the roots of x = 0 in v, deduplicated and ordered by real
// part, then imaginary part, then text. A non-zero constant has no roots.
// The zero expression, and equations outside the supported classes, fail
// with ErrUnsolvable.
func (e *Engine) Solve(x, v Expr) ([]Expr, error) {
	if err := e.symbolArg("solve", v); err != nil {
		return nil, err
	}
	if !e.isFinite(x) {
		return nil, e.fail("solve", ErrInvalidArgument, x, "equation is not finite")
	}
	if e.isZero(x) {
		return nil, e.fail("solve", ErrUnsolvable, x, "equation holds for every value of %s", e.String(v))
	}
	if !e.Has(x, v) {
		return []Expr{}, nil
	}
	roots, err := e.solve(x, v, 0)
	if err != nil {
		return nil, err
	}
	return e.sortRoots(roots), nil
}

func (e *Engine) unsolvable(x Expr, format string, args ...any) error {
	return e.fail("solve", ErrUnsolvable, x, format, args...)
}

func (e *Engine) solve(x, v Expr, depth int) ([]Expr, error) {
	if depth > e.opts.maxDepth {
		return nil, e.unsolvable(x, "recursion limit reached")
	}
	num, den := e.together(x)
	if den != e.one {
		np, ok1 := e.toPoly(num, v)
		dp, ok2 := e.toPoly(den, v)
		if ok1 && ok2 && !dp.isZero() {
			if g := polyGCD(np, dp); g.deg() > 0 {
				np, _ = polyDivMod(np, g)
			}
			if np.deg() < 1 {
				return nil, nil
			}
			return e.solvePoly(np, v, x)
		}
	}
	roots, err := e.solveNum(num, v, depth)
	if err != nil || den == e.one || !e.Has(den, v) {
		return roots, err
	}
	out := roots[:0]
	for _, r := range roots {
		if d := e.subs(den, v, r); e.isFinite(d) && !e.isZero(d) {
			out = append(out, r)
		}
	}
	return out, nil
}

// solveNum solves a numerator, which carries no negative powers of v.
func (e *Engine) solveNum(x, v Expr, depth int) ([]Expr, error) {
	if !e.Has(x, v) {
		return nil, nil
	}
	if p, ok := e.toPoly(x, v); ok {
		return e.solvePoly(p, v, x)
	}
	switch e.Kind(x) {
	case KindMul:
		var out []Expr
		for _, f := range e.args(x) {
			rs, err := e.solveNum(f, v, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, rs...)
		}
		return out, nil
	case KindPow:
		b, p := e.asPow(x)
		if !e.Has(p, v) && e.isPositive(p) {
			return e.solveNum(b, v, depth+1)
		}
		if !e.Has(b, v) && b != e.zero {
			return nil, nil
		}
	case KindExp:
		return nil, nil
	}
	if cs, ok := e.coeffsIn(x, v); ok {
		if len(e.FreeSymbols(x)) > 1 {
			if _, fs := e.FactorList(x); len(fs) > 1 || len(fs) == 1 && fs[0].Exp > 1 {
				var out []Expr
				for _, f := range fs {
					rs, err := e.solveNum(f.Base, v, depth+1)
					if err != nil {
						return nil, err
					}
					out = append(out, rs...)
				}
				return out, nil
			}
		}
		return e.solveSymbolic(cs, x)
	}
	if e.isKind(x, KindAdd) {
		var dep, free []Expr
		for _, t := range e.args(x) {
			if e.Has(t, v) {
				dep = append(dep, t)
			} else {
				free = append(free, t)
			}
		}
		if len(dep) == 1 {
			return e.isolate(dep[0], e.Neg(e.Add(free...)), v, depth+1)
		}
		return nil, e.unsolvable(x, "%s occurs in more than one term", e.String(v))
	}
	return e.isolate(x, e.zero, v, depth+1)
}

// isolate solves f = rhs by inverting the outermost operation of f.
func (e *Engine) isolate(f, rhs, v Expr, depth int) ([]Expr, error) {
	if depth > e.opts.maxDepth {
		return nil, e.unsolvable(f, "recursion limit reached")
	}
	if f == v {
		return []Expr{rhs}, nil
	}
	n := e.node(f)
	switch n.kind {
	case KindMul:
		free, dep := e.splitFree(f, v)
		if free != e.one {
			return e.isolate(dep, e.Div(rhs, free), v, depth+1)
		}
	case KindAdd:
		if _, ok := e.coeffsIn(f, v); ok {
			return e.solve(e.Sub(f, rhs), v, depth+1)
		}
	case KindPow:
		b, p := n.args[0], n.args[1]
		switch {
		case !e.Has(p, v):
			if r := e.rat(p); r != nil && r.IsInt() {
				w := e.sym(e.reg.dummy("w"))
				ws, err := e.solve(e.Sub(e.Pow(w, p), rhs), w, depth+1)
				if err != nil {
					return nil, err
				}
				var out []Expr
				for _, y := range ws {
					rs, err := e.isolate(b, y, v, depth+1)
					if err != nil {
						return nil, err
					}
					out = append(out, rs...)
				}
				return out, nil
			}
			y := e.Pow(rhs, e.Pow(p, e.negOne))
			if !e.isZero(e.Sub(e.Pow(y, p), rhs)) {
				return nil, nil
			}
			return e.isolate(b, y, v, depth+1)
		case !e.Has(b, v):
			if rhs == e.zero {
				return nil, nil
			}
			return e.isolate(p, e.Div(e.Log(rhs), e.Log(b)), v, depth+1)
		}
	case KindExp:
		if rhs == e.zero {
			return nil, nil
		}
		return e.isolate(n.args[0], e.Log(rhs), v, depth+1)
	case KindLog:
		return e.isolate(n.args[0], e.Exp(rhs), v, depth+1)
	case KindSin, KindCos:
		vals, ok := e.trigInverse(n.kind, rhs)
		if !ok {
			return nil, e.unsolvable(f, "no closed form for %s = %s", e.String(f), e.String(rhs))
		}
		var out []Expr
		for _, y := range vals {
			rs, err := e.isolate(n.args[0], y, v, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, rs...)
		}
		return out, nil
	}
	return nil, e.unsolvable(f, "cannot isolate %s", e.String(v))
}

// trigInverse lists the principal solutions of sin(u) = r or cos(u) = r
// for r in {-1, 0, 1}.
func (e *Engine) trigInverse(k Kind, r Expr) ([]Expr, bool) {
	halfPi := e.Mul(e.half, e.pi)
	switch {
	case k == KindSin && r == e.zero:
		return []Expr{e.zero, e.pi}, true
	case k == KindSin && r == e.one:
		return []Expr{halfPi}, true
	case k == KindSin && r == e.negOne:
		return []Expr{e.Neg(halfPi)}, true
	case k == KindCos && r == e.zero:
		return []Expr{halfPi, e.Mul(e.Frac(3, 2), e.pi)}, true
	case k == KindCos && r == e.one:
		return []Expr{e.zero}, true
	case k == KindCos && r == e.negOne:
		return []Expr{e.pi}, true
	}
	return nil, false
}

// solvePoly solves a polynomial with rational coefficients factor by factor.
func (e *Engine) solvePoly(p poly, v, orig Expr) ([]Expr, error) {
	if p.deg() < 1 {
		return nil, nil
	}
	_, fs := e.factorPoly(p)
	var out []Expr
	for _, f := range fs {
		rs, ok := e.solveFactor(f.p)
		if !ok {
			return nil, e.unsolvable(orig, "no closed form for the roots of %s", e.String(e.fromPoly(f.p, v)))
		}
		out = append(out, rs...)
	}
	return out, nil
}

// solveFactor returns the roots of an irreducible integer polynomial.
func (e *Engine) solveFactor(f poly) ([]Expr, bool) {
	switch f.deg() {
	case 1:
		return []Expr{e.Number(new(big.Rat).Quo(new(big.Rat).Neg(f[0]), f[1]))}, true
	case 2:
		return e.quadratic(e.Number(f[2]), e.Number(f[1]), e.Number(f[0])), true
	}
	if rs, ok := e.binomial(f); ok {
		return rs, true
	}
	return e.biquadratic(f)
}

// quadratic returns the roots of a*x^2 + b*x + c.
func (e *Engine) quadratic(a, b, c Expr) []Expr {
	disc := e.Expand(e.Sub(e.Pow(b, e.two), e.Mul(e.intn(4), a, c)))
	inv := e.Pow(e.Mul(e.two, a), e.negOne)
	if disc == e.zero {
		return []Expr{e.Expand(e.Mul(e.Neg(b), inv))}
	}
	sq := e.Sqrt(disc)
	return []Expr{
		e.Expand(e.Mul(e.Sub(e.Neg(b), sq), inv)),
		e.Expand(e.Mul(e.Add(e.Neg(b), sq), inv)),
	}
}

// binomial solves a*x^n + b through the n-th roots of unity, which have a
// closed form for n in {3, 4, 6}.
func (e *Engine) binomial(f poly) ([]Expr, bool) {
	n := f.deg()
	for i := 1; i < n; i++ {
		if f[i].Sign() != 0 {
			return nil, false
		}
	}
	r := new(big.Rat).Quo(new(big.Rat).Neg(f[0]), f[n])
	shift := int64(0)
	if r.Sign() < 0 {
		shift = 1
	}
	mod := e.Pow(e.Number(ratAbs(r)), e.Frac(1, int64(n)))
	out := make([]Expr, 0, n)
	for k := int64(0); k < int64(n); k++ {
		theta := e.Mul(e.Frac(2*k+shift, int64(n)), e.pi)
		c, s := e.Cos(theta), e.Sin(theta)
		if e.hasTrig(c) || e.hasTrig(s) {
			return nil, false
		}
		out = append(out, e.Expand(e.Mul(mod, e.Add(c, e.Mul(e.imag, s)))))
	}
	return out, true
}

func (e *Engine) hasTrig(x Expr) bool {
	if k := e.Kind(x); k == KindSin || k == KindCos {
		return true
	}
	for _, a := range e.args(x) {
		if e.hasTrig(a) {
			return true
		}
	}
	return false
}

// biquadratic solves a*x^4 + b*x^2 + c as a quadratic in x^2.
func (e *Engine) biquadratic(f poly) ([]Expr, bool) {
	if f.deg() != 4 || f[1].Sign() != 0 || f[3].Sign() != 0 {
		return nil, false
	}
	var out []Expr
	for _, y := range e.quadratic(e.Number(f[4]), e.Number(f[2]), e.Number(f[0])) {
		s := e.Sqrt(y)
		out = append(out, e.Neg(s), s)
	}
	return out, true
}

// solveSymbolic solves polynomials with symbolic coefficients of degree at
// most 2.
func (e *Engine) solveSymbolic(cs []Expr, x Expr) ([]Expr, error) {
	switch len(cs) - 1 {
	case 1:
		return []Expr{e.Neg(e.Div(cs[0], cs[1]))}, nil
	case 2:
		return e.quadratic(cs[2], cs[1], cs[0]), nil
	}
	return nil, e.unsolvable(x, "polynomial of degree %d with symbolic coefficients", len(cs)-1)
}

// sortRoots removes duplicates and orders numerically evaluable roots by
// real then imaginary part, the rest after them by text.
func (e *Engine) sortRoots(rs []Expr) []Expr {
	type keyed struct {
		x      Expr
		ok     bool
		re, im float64
		s      string
	}
	seen := make(map[Expr]bool, len(rs))
	ks := make([]keyed, 0, len(rs))
	for _, r := range rs {
		if seen[r] {
			continue
		}
		seen[r] = true
		z, ok := e.approx(r)
		ks = append(ks, keyed{x: r, ok: ok, re: real(z), im: imag(z), s: e.String(r)})
	}
	const eps = 1e-12
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		if a.ok {
			if d := a.re - b.re; d < -eps || d > eps {
				return d < 0
			}
			if d := a.im - b.im; d < -eps || d > eps {
				return d < 0
			}
		}
		return a.s < b.s
	})
	out := make([]Expr, len(ks))
	for i, k := range ks {
		out[i] = k.x
	}
	return out
}

// SolveLinear solves the system eqs[i] = 0, linear in vars, and returns the
// value of each variable in the order of vars. Nonlinear, singular and
// inconsistent systems fail with ErrUnsolvable.
func (e *Engine) SolveLinear(eqs, vars []Expr) ([]Expr, error) {
	if err := e.varsArg("solve", vars); err != nil {
		return nil, err
	}
	if len(eqs) == 0 {
		return nil, opErr("solve", ErrInvalidArgument, "no equations given")
	}
	origin := make(map[Expr]Expr, len(vars))
	for _, v := range vars {
		origin[v] = e.zero
	}
	n := len(vars)
	rows := make([][]Expr, len(eqs))
	for i, eq := range eqs {
		row := make([]Expr, n+1)
		for j, v := range vars {
			a, err := e.Diff(eq, v)
			if err != nil {
				return nil, err
			}
			for _, w := range vars {
				if e.Has(a, w) {
					return nil, e.fail("solve", ErrUnsolvable, eq, "equation is not linear in %s", e.String(w))
				}
			}
			row[j] = a
		}
		c, err := e.SubsMap(eq, origin)
		if err != nil {
			return nil, err
		}
		row[n] = e.Neg(c)
		rows[i] = row
	}

	for col := 0; col < n; col++ {
		piv := -1
		for r := col; r < len(rows); r++ {
			if !e.isZero(rows[r][col]) {
				piv = r
				break
			}
		}
		if piv < 0 {
			return nil, opErr("solve", ErrUnsolvable, "system is singular in %s", e.String(vars[col]))
		}
		rows[col], rows[piv] = rows[piv], rows[col]
		p := rows[col][col]
		for k := col; k <= n; k++ {
			rows[col][k] = e.Cancel(e.Div(rows[col][k], p))
		}
		for r := range rows {
			if r == col || e.isZero(rows[r][col]) {
				continue
			}
			f := rows[r][col]
			for k := col; k <= n; k++ {
				rows[r][k] = e.Cancel(e.Sub(rows[r][k], e.Mul(f, rows[col][k])))
			}
		}
	}
	for _, row := range rows[n:] {
		if !e.isZero(row[n]) {
			return nil, opErr("solve", ErrUnsolvable, "system is inconsistent")
		}
	}
	out := make([]Expr, n)
	for j := range out {
		out[j] = rows[j][n]
	}
	return out, nil
}
