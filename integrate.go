package gocas

import (
	"log/slog"
	"math/big"
)

// Integrate returns an antiderivative of x with respect to v. No constant
// of integration is added. It fails with ErrNoClosedForm when none of the
// known strategies applies; it never returns an unverified guess.
func (e *Engine) Integrate(x, v Expr) (Expr, error) {
	if err := e.symbolArg("integrate", v); err != nil {
		return 0, err
	}
	if !e.isFinite(x) {
		return 0, e.fail("integrate", ErrInvalidArgument, x, "integrand is not finite")
	}
	r, ok := e.integrate(x, v, 0)
	if !ok {
		return 0, e.fail("integrate", ErrNoClosedForm, x, "no antiderivative found")
	}
	return r, nil
}

func (e *Engine) integrate(x, v Expr, depth int) (Expr, bool) {
	if depth > e.opts.maxDepth {
		e.log.Debug("integrate: depth exhausted", slog.Any("expr", e.logValue(x)))
		return 0, false
	}
	if !e.Has(x, v) {
		return e.Mul(x, v), true
	}
	if x == v {
		return e.Mul(e.half, e.Pow(v, e.two)), true
	}
	if e.isKind(x, KindAdd) {
		if r, ok := e.integrateTerms(e.args(x), v, depth); ok {
			return r, true
		}
	}
	if free, dep := e.splitFree(x, v); free != e.one {
		r, ok := e.integrate(dep, v, depth+1)
		if !ok {
			return 0, false
		}
		return e.Mul(free, r), true
	}
	if r, ok := e.integrateTable(x, v); ok {
		return r, true
	}
	if r, ok := e.integrateExpTrig(x, v); ok {
		return r, true
	}
	if r, ok := e.integrateTabular(x, v, depth); ok {
		return r, true
	}
	if r, ok := e.integrateLogProduct(x, v, depth); ok {
		return r, true
	}
	if r, ok := e.integrateRational(x, v); ok {
		return r, true
	}
	if r, ok := e.integrateSubstitution(x, v, depth); ok {
		return r, true
	}
	if y := e.Expand(x); y != x {
		e.log.Debug("integrate: retry expanded", slog.Any("expr", e.logValue(x)))
		return e.integrate(y, v, depth+1)
	}
	return 0, false
}

func (e *Engine) integrateTerms(terms []Expr, v Expr, depth int) (Expr, bool) {
	out := make([]Expr, len(terms))
	for i, t := range terms {
		r, ok := e.integrate(t, v, depth+1)
		if !ok {
			return 0, false
		}
		out[i] = r
	}
	return e.Add(out...), true
}

// linear matches u = a*v + b with a and b free of v and a non-zero.
func (e *Engine) linear(u, v Expr) (a, b Expr, ok bool) {
	cs, ok := e.coeffsIn(u, v)
	if !ok || len(cs) != 2 || cs[1] == e.zero {
		return 0, 0, false
	}
	return cs[1], cs[0], true
}

// integrateTable handles single functions of a linear argument.
func (e *Engine) integrateTable(x, v Expr) (Expr, bool) {
	n := e.node(x)
	switch n.kind {
	case KindPow:
		b, p := n.args[0], n.args[1]
		if !e.Has(p, v) {
			a, _, ok := e.linear(b, v)
			if !ok {
				break
			}
			if p == e.negOne {
				return e.Div(e.Log(b), a), true
			}
			p1 := e.Add(p, e.one)
			return e.Div(e.Pow(b, p1), e.Mul(p1, a)), true
		}
		if !e.Has(b, v) {
			a, _, ok := e.linear(p, v)
			if !ok {
				break
			}
			return e.Div(x, e.Mul(a, e.Log(b))), true
		}
	case KindExp:
		if a, _, ok := e.linear(n.args[0], v); ok {
			return e.Div(x, a), true
		}
	case KindSin:
		if a, _, ok := e.linear(n.args[0], v); ok {
			return e.Neg(e.Div(e.Cos(n.args[0]), a)), true
		}
	case KindCos:
		if a, _, ok := e.linear(n.args[0], v); ok {
			return e.Div(e.Sin(n.args[0]), a), true
		}
	case KindLog:
		u := n.args[0]
		if a, _, ok := e.linear(u, v); ok {
			return e.Sub(e.Div(e.Mul(u, x), a), v), true
		}
	}
	return e.integrateTrigSquare(x, v)
}

// integrateTrigSquare handles sin(u)^2 and cos(u)^2 for linear u.
func (e *Engine) integrateTrigSquare(x, v Expr) (Expr, bool) {
	b, p := e.asPow(x)
	if p != e.two || !(e.isKind(b, KindSin) || e.isKind(b, KindCos)) {
		return 0, false
	}
	u := e.arg(b)
	a, _, ok := e.linear(u, v)
	if !ok {
		return 0, false
	}
	// sin^2 u = (1 - cos 2u)/2, cos^2 u = (1 + cos 2u)/2
	s := e.Div(e.Sin(e.Mul(e.two, u)), e.Mul(e.intn(4), a))
	if e.isKind(b, KindSin) {
		s = e.Neg(s)
	}
	return e.Add(e.Mul(e.half, v), s), true
}

// integrateExpTrig handles exp(a*v + c) * sin(b*v + d) and the cos analogue.
func (e *Engine) integrateExpTrig(x, v Expr) (Expr, bool) {
	if !e.isKind(x, KindMul) || len(e.args(x)) != 2 {
		return 0, false
	}
	var ex, tr Expr
	for _, f := range e.args(x) {
		switch e.Kind(f) {
		case KindExp:
			ex = f
		case KindSin, KindCos:
			tr = f
		}
	}
	if ex == 0 || tr == 0 {
		return 0, false
	}
	a, _, ok := e.linear(e.arg(ex), v)
	if !ok {
		return 0, false
	}
	b, _, ok := e.linear(e.arg(tr), v)
	if !ok {
		return 0, false
	}
	den := e.Add(e.Pow(a, e.two), e.Pow(b, e.two))
	if den == e.zero {
		return 0, false
	}
	s, c := e.Sin(e.arg(tr)), e.Cos(e.arg(tr))
	// exp*sin -> exp*(a*sin - b*cos)/(a^2+b^2)
	// exp*cos -> exp*(a*cos + b*sin)/(a^2+b^2)
	var terms []Expr
	if e.isKind(tr, KindSin) {
		terms = []Expr{e.Mul(ex, s, a), e.Neg(e.Mul(ex, c, b))}
	} else {
		terms = []Expr{e.Mul(ex, c, a), e.Mul(ex, s, b)}
	}
	inv := e.Pow(den, e.negOne)
	for i, t := range terms {
		terms[i] = e.Mul(t, inv)
	}
	return e.Add(terms...), true
}

// splitPolyTimes splits a product into a polynomial in v and a single
// remaining factor accepted by pick.
func (e *Engine) splitPolyTimes(x, v Expr, pick func(Expr) bool) (Expr, Expr, bool) {
	if !e.isKind(x, KindMul) {
		return 0, 0, false
	}
	var f Expr
	var rest []Expr
	for _, a := range e.args(x) {
		if f == 0 && pick(a) {
			f = a
			continue
		}
		rest = append(rest, a)
	}
	if f == 0 {
		return 0, 0, false
	}
	p := e.Mul(rest...)
	if _, ok := e.coeffsIn(p, v); !ok {
		return 0, 0, false
	}
	return p, f, true
}

// integrateTabular integrates P(v) * f(a*v + b) for f in sin, cos, exp by
// repeated integration by parts.
func (e *Engine) integrateTabular(x, v Expr, depth int) (Expr, bool) {
	p, f, ok := e.splitPolyTimes(x, v, func(a Expr) bool {
		switch e.Kind(a) {
		case KindSin, KindCos, KindExp:
			_, _, ok := e.linear(e.arg(a), v)
			return ok
		}
		return false
	})
	if !ok {
		return 0, false
	}
	var terms []Expr
	sign := e.one
	anti := f
	for p != e.zero {
		next, ok := e.integrate(anti, v, depth+1)
		if !ok {
			return 0, false
		}
		anti = next
		terms = append(terms, e.Mul(sign, p, anti))
		var err error
		if p, err = e.diff(p, v, make(map[Expr]Expr)); err != nil {
			return 0, false
		}
		sign = e.Neg(sign)
		if len(terms) > e.opts.maxExpandPower {
			return 0, false
		}
	}
	return e.Expand(e.Add(terms...)), true
}

// integrateLogProduct integrates P(v) * log(a*v + b) by parts.
func (e *Engine) integrateLogProduct(x, v Expr, depth int) (Expr, bool) {
	p, f, ok := e.splitPolyTimes(x, v, func(a Expr) bool {
		if !e.isKind(a, KindLog) {
			return false
		}
		_, _, ok := e.linear(e.arg(a), v)
		return ok
	})
	if !ok {
		return 0, false
	}
	q, ok := e.integrate(p, v, depth+1)
	if !ok {
		return 0, false
	}
	u := e.arg(f)
	du, err := e.diff(u, v, make(map[Expr]Expr))
	if err != nil {
		return 0, false
	}
	rest, ok := e.integrate(e.Mul(q, du, e.Pow(u, e.negOne)), v, depth+1)
	if !ok {
		return 0, false
	}
	return e.Sub(e.Mul(q, f), rest), true
}

// numDen splits x into numerator and denominator by negative integer powers.
func (e *Engine) numDen(x Expr) (Expr, Expr) {
	fs := []Expr{x}
	if e.isKind(x, KindMul) {
		fs = e.args(x)
	}
	var num, den []Expr
	for _, f := range fs {
		b, p := e.asPow(f)
		if r := e.rat(p); r != nil && r.IsInt() && r.Sign() < 0 {
			den = append(den, e.Pow(b, e.num(new(big.Rat).Neg(r))))
			continue
		}
		num = append(num, f)
	}
	return e.Mul(num...), e.Mul(den...)
}

// integrateRational integrates N/D for rational polynomials whose
// denominator splits into rational linear factors.
func (e *Engine) integrateRational(x, v Expr) (Expr, bool) {
	nx, dx := e.numDen(x)
	if dx == e.one {
		return 0, false
	}
	np, ok := e.toPoly(nx, v)
	if !ok {
		return 0, false
	}
	dp, ok := e.toPoly(dx, v)
	if !ok || dp.deg() < 1 {
		return 0, false
	}
	q, r := polyDivMod(np, dp)
	_, fs := e.factorPoly(dp)
	for _, f := range fs {
		if f.p.deg() != 1 {
			return 0, false
		}
	}
	var terms []Expr
	for i, c := range q {
		if c.Sign() == 0 {
			continue
		}
		k := int64(i + 1)
		terms = append(terms, e.Mul(e.Number(new(big.Rat).Quo(c, big.NewRat(k, 1))), e.Pow(v, e.intn(k))))
	}
	if r.isZero() {
		return e.Add(terms...), true
	}
	for _, f := range fs {
		root := new(big.Rat).Quo(new(big.Rat).Neg(f.p[0]), f.p[1])
		lin := poly{new(big.Rat).Neg(root), big.NewRat(1, 1)}
		rest, _ := polyDivMod(dp, polyPow(lin, f.mult))
		cs := taylorQuotient(r.shift(root), rest.shift(root), f.mult)
		base := e.Sub(v, e.Number(root))
		for k, c := range cs {
			if c.Sign() == 0 {
				continue
			}
			j := int64(f.mult - k) // coefficient of 1/(v - root)^j
			if j == 1 {
				terms = append(terms, e.Mul(e.Number(c), e.Log(base)))
				continue
			}
			coef := new(big.Rat).Quo(c, big.NewRat(1-j, 1))
			terms = append(terms, e.Mul(e.Number(coef), e.Pow(base, e.intn(1-j))))
		}
	}
	return e.Add(terms...), true
}

// taylorQuotient returns the first n Taylor coefficients at 0 of a/b,
// where b(0) != 0.
func taylorQuotient(a, b poly, n int) []*big.Rat {
	out := make([]*big.Rat, n)
	b0 := b.coeff(0)
	for k := 0; k < n; k++ {
		s := new(big.Rat).Set(a.coeff(k))
		for j := 1; j <= k; j++ {
			s.Sub(s, new(big.Rat).Mul(b.coeff(j), out[k-j]))
		}
		out[k] = s.Quo(s, b0)
	}
	return out
}

// integrateSubstitution tries u-substitution for every proper subexpression
// u of x: if x/u' depends on v only through u, integrate in u.
func (e *Engine) integrateSubstitution(x, v Expr, depth int) (Expr, bool) {
	if depth > maxSubstDepth {
		return 0, false
	}
	t := e.sym(e.reg.dummy("u"))
	for _, u := range e.substCandidates(x, v) {
		du, err := e.diff(u, v, make(map[Expr]Expr))
		if err != nil || du == e.zero || !e.isFinite(du) {
			continue
		}
		q := e.Replace(e.Div(x, du), u, t)
		if e.Has(q, v) {
			continue
		}
		r, ok := e.integrate(q, t, depth+1)
		if !ok {
			continue
		}
		return e.Replace(r, t, u), true
	}
	return 0, false
}

const (
	maxSubstCandidates = 32
	maxSubstDepth      = 6
)

func (e *Engine) substCandidates(x, v Expr) []Expr {
	seen := make(map[Expr]bool)
	var out []Expr
	var walk func(Expr)
	walk = func(y Expr) {
		if seen[y] || len(out) >= maxSubstCandidates || !e.Has(y, v) || y == v {
			return
		}
		seen[y] = true
		if y != x {
			out = append(out, y)
		}
		for _, a := range e.args(y) {
			walk(a)
		}
	}
	walk(x)
	return out
}

// ============================================================
// Definite integrals
// ============================================================

// IntegrateDefinite integrates x over v from lo to hi. Bounds may be oo or
// -oo. Bounds that depend on v, or that are nan or zoo, are invalid.
func (e *Engine) IntegrateDefinite(x, v, lo, hi Expr) (Expr, error) {
	if err := e.symbolArg("integrate", v); err != nil {
		return 0, err
	}
	for _, b := range []Expr{lo, hi} {
		if b == 0 || int(b) >= len(e.nodes) {
			return 0, opErr("integrate", ErrInvalidArgument, "invalid bound handle")
		}
		if e.Has(b, v) {
			return 0, e.fail("integrate", ErrInvalidArgument, b, "bound depends on the integration variable")
		}
		if e.Has(b, e.nan) || e.Has(b, e.zinf) {
			return 0, e.fail("integrate", ErrInvalidArgument, b, "bound is undefined")
		}
	}
	if lo == hi {
		return e.zero, nil
	}
	if r, ok := e.integrateKnown(x, v, lo, hi); ok {
		return r, nil
	}
	if err := e.checkSingular(x, v, lo, hi); err != nil {
		return 0, err
	}
	f, err := e.Integrate(x, v)
	if err != nil {
		return 0, err
	}
	fhi, err := e.boundValue(f, v, hi, FromBelow)
	if err != nil {
		return 0, err
	}
	flo, err := e.boundValue(f, v, lo, FromAbove)
	if err != nil {
		return 0, err
	}
	r := e.Sub(fhi, flo)
	if r == e.nan || e.Has(r, e.nan) || e.Has(r, e.zinf) {
		return 0, e.fail("integrate", ErrNoClosedForm, x, "integral does not converge")
	}
	return r, nil
}

// boundValue evaluates an antiderivative at a bound, falling back to a
// one-sided limit when substitution is not finite.
func (e *Engine) boundValue(f, v, b Expr, dir Direction) (Expr, error) {
	if !e.isInfinite(b) {
		if y := e.subs(f, v, b); e.isFinite(y) {
			return y, nil
		}
	}
	if b == e.inf {
		dir = FromBelow
	} else if e.isNegInf(b) {
		dir = FromAbove
	}
	y, err := e.Limit(f, v, b, dir)
	if err != nil {
		return 0, e.fail("integrate", ErrNoClosedForm, f, "antiderivative has no limit at %s", e.String(b))
	}
	return y, nil
}

// interval classifies a pair of bounds as the real line, a half line at 0,
// or something else. sign is -1 when the bounds run backwards.
func (e *Engine) interval(lo, hi Expr) (full, half bool, sign Expr) {
	ninf := e.negInf()
	switch {
	case lo == ninf && hi == e.inf:
		return true, false, e.one
	case lo == e.inf && hi == ninf:
		return true, false, e.negOne
	case lo == e.zero && hi == e.inf, lo == ninf && hi == e.zero:
		return false, true, e.one
	case lo == e.inf && hi == e.zero, lo == e.zero && hi == ninf:
		return false, true, e.negOne
	}
	return false, false, e.one
}

// integrateKnown evaluates Gaussian and Fresnel integrals over the real line
// and the half lines at 0.
func (e *Engine) integrateKnown(x, v, lo, hi Expr) (Expr, bool) {
	full, half, sign := e.interval(lo, hi)
	if !full && !half {
		return 0, false
	}
	free, dep := e.splitFree(x, v)
	var val Expr
	switch e.Kind(dep) {
	case KindExp:
		c, ok := e.quadCoeff(e.arg(dep), v)
		if !ok || !e.isPositive(e.Neg(c)) {
			return 0, false
		}
		val = e.Sqrt(e.Div(e.pi, e.Neg(c)))
	case KindSin, KindCos:
		c, ok := e.quadCoeff(e.arg(dep), v)
		if !ok || !e.isPositive(c) {
			return 0, false
		}
		val = e.Sqrt(e.Div(e.pi, e.Mul(e.two, c)))
	default:
		return 0, false
	}
	if half {
		val = e.Mul(e.half, val)
	}
	return e.Mul(sign, free, val), true
}

// quadCoeff matches c*v^2 with c free of v.
func (e *Engine) quadCoeff(u, v Expr) (Expr, bool) {
	cs, ok := e.coeffsIn(u, v)
	if !ok || len(cs) != 3 || cs[0] != e.zero || cs[1] != e.zero {
		return 0, false
	}
	return cs[2], true
}

// checkSingular rejects integrands with a pole strictly inside the
// interval. Poles at an endpoint are left to the one-sided limits of the
// antiderivative. Only polynomial denominators with rational bounds are
// checked.
func (e *Engine) checkSingular(x, v, lo, hi Expr) error {
	a, ok1 := e.realBound(lo)
	b, ok2 := e.realBound(hi)
	if !ok1 || !ok2 {
		return nil
	}
	if a.inf > 0 || b.inf < 0 || a.inf == 0 && b.inf == 0 && a.v.Cmp(b.v) > 0 {
		a, b = b, a
	}
	var found bool
	var walk func(Expr)
	walk = func(y Expr) {
		if found || !e.Has(y, v) {
			return
		}
		if e.isKind(y, KindPow) {
			base, p := e.asPow(y)
			if r := e.rat(p); r != nil && r.Cmp(big.NewRat(-1, 1)) <= 0 {
				if pb, ok := e.toPoly(base, v); ok && realRootsIn(pb, a, b) > 0 {
					found = true
					return
				}
			}
		}
		for _, c := range e.args(y) {
			walk(c)
		}
	}
	walk(x)
	if found {
		return e.fail("integrate", ErrNoClosedForm, x, "integrand has a pole in the interval")
	}
	return nil
}

// realBound converts a rational or infinite bound to a realPoint.
func (e *Engine) realBound(x Expr) (realPoint, bool) {
	switch {
	case x == e.inf:
		return realPoint{inf: 1}, true
	case e.isNegInf(x):
		return realPoint{inf: -1}, true
	}
	if r := e.rat(x); r != nil {
		return realPoint{v: r}, true
	}
	return realPoint{}, false
}
