package gocas

import (
	"math/big"
)

// poly is a dense univariate polynomial over the rationals. Index i holds
// the coefficient of x^i; the zero polynomial is empty.
type poly []*big.Rat

func polyInts(cs ...int64) poly {
	p := make(poly, len(cs))
	for i, c := range cs {
		p[i] = big.NewRat(c, 1)
	}
	return p.trim()
}

func (p poly) trim() poly {
	n := len(p)
	for n > 0 && p[n-1].Sign() == 0 {
		n--
	}
	return p[:n]
}

func (p poly) deg() int { return len(p) - 1 }

func (p poly) isZero() bool { return len(p) == 0 }

func (p poly) lead() *big.Rat { return p[len(p)-1] }

func (p poly) coeff(i int) *big.Rat {
	if i < len(p) {
		return p[i]
	}
	return new(big.Rat)
}

func (p poly) clone() poly {
	q := make(poly, len(p))
	for i, c := range p {
		q[i] = new(big.Rat).Set(c)
	}
	return q
}

func (p poly) equal(q poly) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i].Cmp(q[i]) != 0 {
			return false
		}
	}
	return true
}

func polyAdd(a, b poly) poly {
	n := max(len(a), len(b))
	out := make(poly, n)
	for i := range out {
		out[i] = new(big.Rat).Add(a.coeff(i), b.coeff(i))
	}
	return out.trim()
}

func polySub(a, b poly) poly {
	n := max(len(a), len(b))
	out := make(poly, n)
	for i := range out {
		out[i] = new(big.Rat).Sub(a.coeff(i), b.coeff(i))
	}
	return out.trim()
}

func polyMul(a, b poly) poly {
	if a.isZero() || b.isZero() {
		return nil
	}
	out := make(poly, len(a)+len(b)-1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	t := new(big.Rat)
	for i, x := range a {
		for j, y := range b {
			out[i+j].Add(out[i+j], t.Mul(x, y))
		}
	}
	return out.trim()
}

func polyScale(a poly, c *big.Rat) poly {
	out := make(poly, len(a))
	for i, x := range a {
		out[i] = new(big.Rat).Mul(x, c)
	}
	return out.trim()
}

func polyPow(a poly, n int) poly {
	out := polyInts(1)
	for i := 0; i < n; i++ {
		out = polyMul(out, a)
	}
	return out
}

// polyDivMod divides a by the non-zero b.
func polyDivMod(a, b poly) (q, r poly) {
	r = a.clone()
	if a.deg() < b.deg() {
		return nil, r
	}
	q = make(poly, a.deg()-b.deg()+1)
	for i := range q {
		q[i] = new(big.Rat)
	}
	lb := b.lead()
	t := new(big.Rat)
	for r.deg() >= b.deg() && !r.isZero() {
		k := r.deg() - b.deg()
		c := new(big.Rat).Quo(r.lead(), lb)
		q[k] = c
		for i, y := range b {
			r[i+k].Sub(r[i+k], t.Mul(c, y))
		}
		r = r.trim()
	}
	return q.trim(), r
}

func (p poly) monic() poly {
	if p.isZero() {
		return p
	}
	return polyScale(p, new(big.Rat).Inv(p.lead()))
}

// polyGCD returns the monic greatest common divisor.
func polyGCD(a, b poly) poly {
	a, b = a.clone(), b.clone()
	for !b.isZero() {
		_, r := polyDivMod(a, b)
		a, b = b, r
	}
	return a.monic()
}

func (p poly) deriv() poly {
	if len(p) <= 1 {
		return nil
	}
	out := make(poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = new(big.Rat).Mul(p[i], big.NewRat(int64(i), 1))
	}
	return out.trim()
}

func (p poly) eval(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p[i])
	}
	return acc
}

// shift returns p(x + r).
func (p poly) shift(r *big.Rat) poly {
	out := poly(nil)
	lin := poly{new(big.Rat).Set(r), big.NewRat(1, 1)}
	for i := len(p) - 1; i >= 0; i-- {
		out = polyMul(out, lin)
		out = polyAdd(out, poly{new(big.Rat).Set(p[i])})
	}
	return out
}

// primitive splits p into a rational content and a primitive integer
// polynomial with positive leading coefficient.
func (p poly) primitive() (*big.Rat, poly) {
	if p.isZero() {
		return new(big.Rat), nil
	}
	lcm := big.NewInt(1)
	for _, c := range p {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	ints := make([]*big.Int, len(p))
	g := new(big.Int)
	for i, c := range p {
		v := new(big.Int).Mul(c.Num(), new(big.Int).Quo(lcm, c.Denom()))
		ints[i] = v
		g.GCD(nil, nil, g, new(big.Int).Abs(v))
	}
	if p.lead().Sign() < 0 {
		g.Neg(g)
	}
	out := make(poly, len(p))
	for i, v := range ints {
		out[i] = new(big.Rat).SetInt(new(big.Int).Quo(v, g))
	}
	content := new(big.Rat).SetFrac(g, lcm)
	return content, out
}

// isIntegral reports whether every coefficient is an integer.
func (p poly) isIntegral() bool {
	for _, c := range p {
		if !c.IsInt() {
			return false
		}
	}
	return true
}

// interpolate returns the polynomial of degree < len(xs) through the points.
func interpolate(xs []int64, ys []*big.Rat) poly {
	var out poly
	for i := range xs {
		term := poly{new(big.Rat).Set(ys[i])}
		den := big.NewRat(1, 1)
		for j := range xs {
			if i == j {
				continue
			}
			term = polyMul(term, polyInts(-xs[j], 1))
			den.Mul(den, big.NewRat(xs[i]-xs[j], 1))
		}
		out = polyAdd(out, polyScale(term, new(big.Rat).Inv(den)))
	}
	return out
}

// ============================================================
// Sturm sequences
// ============================================================

type realPoint struct {
	v   *big.Rat
	inf int // -1 for -oo, +1 for +oo
}

func sturm(p poly) []poly {
	seq := []poly{p, p.deriv()}
	for {
		a, b := seq[len(seq)-2], seq[len(seq)-1]
		if b.isZero() {
			return seq[:len(seq)-1]
		}
		_, r := polyDivMod(a, b)
		if r.isZero() {
			return seq
		}
		seq = append(seq, polyScale(r, big.NewRat(-1, 1)))
	}
}

func signAt(p poly, pt realPoint) int {
	if p.isZero() {
		return 0
	}
	if pt.inf != 0 {
		s := p.lead().Sign()
		if pt.inf < 0 && p.deg()%2 == 1 {
			s = -s
		}
		return s
	}
	return p.eval(pt.v).Sign()
}

func variations(seq []poly, pt realPoint) int {
	n, last := 0, 0
	for _, p := range seq {
		s := signAt(p, pt)
		if s == 0 {
			continue
		}
		if last != 0 && s != last {
			n++
		}
		last = s
	}
	return n
}

// realRootsIn counts the distinct real roots of p in the open interval (a, b).
func realRootsIn(p poly, a, b realPoint) int {
	if p.deg() < 1 {
		return 0
	}
	seq := sturm(p)
	n := variations(seq, a) - variations(seq, b)
	if b.inf == 0 && p.eval(b.v).Sign() == 0 {
		n--
	}
	return n
}

// ============================================================
// Conversion between expressions and polynomials
// ============================================================

// coeffsIn returns the coefficients of x as a polynomial in v, indexed by
// degree. Coefficients may contain other symbols.
func (e *Engine) coeffsIn(x, v Expr) ([]Expr, bool) {
	x = e.Expand(x)
	byDeg := map[int][]Expr{}
	maxDeg := 0
	for _, t := range e.termsOf(x) {
		k, c, ok := e.monomialIn(t, v)
		if !ok {
			return nil, false
		}
		byDeg[k] = append(byDeg[k], c)
		maxDeg = max(maxDeg, k)
	}
	out := make([]Expr, maxDeg+1)
	for i := range out {
		out[i] = e.Add(byDeg[i]...)
	}
	for len(out) > 1 && out[len(out)-1] == e.zero {
		out = out[:len(out)-1]
	}
	return out, true
}

// monomialIn splits a term into c * v^k with c free of v.
func (e *Engine) monomialIn(t, v Expr) (int, Expr, bool) {
	if !e.Has(t, v) {
		return 0, t, true
	}
	fs := []Expr{t}
	if e.isKind(t, KindMul) {
		fs = e.args(t)
	}
	k := 0
	var rest []Expr
	for _, f := range fs {
		if !e.Has(f, v) {
			rest = append(rest, f)
			continue
		}
		b, x := e.asPow(f)
		if b != v {
			return 0, 0, false
		}
		r := e.rat(x)
		if r == nil || !r.IsInt() || r.Sign() < 0 || !r.Num().IsInt64() || r.Num().Int64() > 1<<16 {
			return 0, 0, false
		}
		k += int(r.Num().Int64())
	}
	return k, e.Mul(rest...), true
}

// toPoly converts x to a polynomial in v with rational coefficients.
func (e *Engine) toPoly(x, v Expr) (poly, bool) {
	cs, ok := e.coeffsIn(x, v)
	if !ok {
		return nil, false
	}
	p := make(poly, len(cs))
	for i, c := range cs {
		r := e.rat(c)
		if r == nil {
			return nil, false
		}
		p[i] = new(big.Rat).Set(r)
	}
	return p.trim(), true
}

func (e *Engine) fromPoly(p poly, v Expr) Expr {
	terms := make([]Expr, 0, len(p))
	for i, c := range p {
		if c.Sign() == 0 {
			continue
		}
		terms = append(terms, e.Mul(e.Number(c), e.Pow(v, e.intn(int64(i)))))
	}
	return e.Add(terms...)
}

// Coeffs returns the coefficients of x as a polynomial in v, lowest degree
// first.
func (e *Engine) Coeffs(x, v Expr) ([]Expr, error) {
	if err := e.symbolArg("coeffs", v); err != nil {
		return nil, err
	}
	cs, ok := e.coeffsIn(x, v)
	if !ok {
		return nil, e.fail("coeffs", ErrInvalidArgument, x, "not a polynomial in %s", e.String(v))
	}
	return cs, nil
}

// Degree returns the degree of x as a polynomial in v. The zero polynomial
// has degree -1.
func (e *Engine) Degree(x, v Expr) (int, error) {
	cs, err := e.Coeffs(x, v)
	if err != nil {
		return 0, err
	}
	if len(cs) == 1 && cs[0] == e.zero {
		return -1, nil
	}
	return len(cs) - 1, nil
}

// Collect groups the terms of x by powers of v, highest power first.
func (e *Engine) Collect(x, v Expr) (Expr, error) {
	cs, err := e.Coeffs(x, v)
	if err != nil {
		return 0, err
	}
	terms := make([]Expr, 0, len(cs))
	for i, c := range cs {
		if c == e.zero {
			continue
		}
		terms = append(terms, e.Mul(e.Cancel(c), e.Pow(v, e.intn(int64(i)))))
	}
	return e.Add(terms...), nil
}
