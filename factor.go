package gocas

import (
	"log/slog"
	"math/big"
	"sort"
	"strconv"
)

// FactorPower is one factor Base^Exp of a factorisation.
type FactorPower struct {
	Base Expr
	Exp  int
}

// polyFactor is an irreducible primitive integer polynomial with its
// multiplicity.
type polyFactor struct {
	p    poly
	mult int
}

// Factor factors a polynomial with rational coefficients. Univariate
// polynomials split into irreducible integer factors; homogeneous
// polynomials in two symbols are factored through their dehomogenisation;
// other multivariate polynomials lose their content and common monomial and
// are then split by Kronecker substitution. Anything that is not a
// polynomial is returned unchanged.
func (e *Engine) Factor(x Expr) Expr {
	c, fs := e.FactorList(x)
	if len(fs) == 0 {
		return c
	}
	if c == e.one && len(fs) == 1 && fs[0].Exp == 1 {
		return fs[0].Base
	}
	args := make([]Expr, 0, len(fs)+1)
	for _, f := range fs {
		args = append(args, e.Pow(f.Base, e.intn(int64(f.Exp))))
	}
	e.sortFactors(args)
	if c != e.one {
		args = append([]Expr{c}, args...)
	}
	if len(args) == 1 {
		return args[0]
	}
	return e.raw(KindMul, args...)
}

// FactorList returns the numeric content and the factors of x, so that
// x == content * Π Base^Exp after expansion. Non-polynomial input comes
// back as the single factor x.
func (e *Engine) FactorList(x Expr) (Expr, []FactorPower) {
	if e.isNumber(x) {
		return x, nil
	}
	syms := e.FreeSymbols(x)
	switch len(syms) {
	case 0:
		return e.one, []FactorPower{{x, 1}}
	case 1:
		v := e.sym(syms[0])
		p, ok := e.toPoly(x, v)
		if !ok {
			return e.one, []FactorPower{{x, 1}}
		}
		if p.isZero() {
			return e.zero, nil
		}
		c, pfs := e.factorPoly(p)
		out := make([]FactorPower, len(pfs))
		for i, f := range pfs {
			out[i] = FactorPower{e.fromPoly(f.p, v), f.mult}
		}
		return e.num(c), out
	}
	monos, ok := e.monomials(x, syms)
	if !ok {
		return e.one, []FactorPower{{x, 1}}
	}
	if len(monos) == 0 {
		return e.zero, nil
	}
	if len(syms) == 2 {
		if c, fs, ok := e.factorHomogeneous(monos, syms); ok {
			return c, fs
		}
	}
	return e.factorMultivariate(monos, syms)
}

// factorPoly factors a non-zero rational polynomial into a rational content
// and irreducible primitive integer factors.
func (e *Engine) factorPoly(p poly) (*big.Rat, []polyFactor) {
	content, q := p.primitive()
	var out []polyFactor
	k := 0
	for k < len(q) && q[k].Sign() == 0 {
		k++
	}
	if k > 0 {
		out = append(out, polyFactor{polyInts(0, 1), k})
		q = q[k:]
	}
	if q.deg() >= 1 {
		qlead := new(big.Rat).Set(q.lead())
		budget := e.opts.factorBudget
		for _, sf := range squareFree(q) {
			for _, f := range e.factorSquareFree(sf.p, &budget) {
				out = append(out, polyFactor{f, sf.mult})
			}
		}
		// Fold any constant left by the decomposition into the content.
		prod := polyInts(1)
		for _, f := range out {
			prod = polyMul(prod, polyPow(f.p, f.mult))
		}
		if !prod.isZero() {
			content.Mul(content, new(big.Rat).Quo(qlead, prod.lead()))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return polyLess(out[i].p, out[j].p) })
	return content, out
}

func polyLess(a, b poly) bool {
	if a.deg() != b.deg() {
		return a.deg() < b.deg()
	}
	for i := len(a) - 1; i >= 0; i-- {
		if c := a[i].Cmp(b[i]); c != 0 {
			return c < 0
		}
	}
	return false
}

// squareFree runs Yun's decomposition on a primitive polynomial.
func squareFree(f poly) []polyFactor {
	var out []polyFactor
	df := f.deriv()
	g := polyGCD(f, df)
	b, _ := polyDivMod(f, g)
	c, _ := polyDivMod(df, g)
	d := polySub(c, b.deriv())
	for i := 1; b.deg() > 0; i++ {
		a := polyGCD(b, d)
		if a.deg() > 0 {
			_, pa := a.primitive()
			out = append(out, polyFactor{pa, i})
		}
		b, _ = polyDivMod(b, a)
		c, _ = polyDivMod(d, a)
		d = polySub(c, b.deriv())
	}
	return out
}

// factorSquareFree splits a square-free primitive integer polynomial into
// irreducible factors: rational roots first, then a Kronecker search for
// factors of higher degree while the budget lasts.
func (e *Engine) factorSquareFree(a poly, budget *int) []poly {
	var out []poly
	a = a.clone()
	for _, r := range rationalRoots(a) {
		lin := polyFromRoot(r)
		q, rem := polyDivMod(a, lin)
		if rem.isZero() {
			out = append(out, lin)
			_, a = q.primitive()
		}
	}
	if a.deg() < 1 {
		return out
	}
	if a.deg() <= 3 {
		return append(out, a)
	}
	for d := 2; 2*d <= a.deg(); d++ {
		for {
			g, ok := e.kronecker(a, d, budget)
			if !ok {
				break
			}
			out = append(out, g)
			q, _ := polyDivMod(a, g)
			_, a = q.primitive()
			if 2*d > a.deg() {
				break
			}
		}
	}
	if a.deg() >= 1 {
		out = append(out, a)
	}
	return out
}

func polyFromRoot(r *big.Rat) poly {
	return poly{new(big.Rat).SetInt(new(big.Int).Neg(r.Num())), new(big.Rat).SetInt(r.Denom())}
}

// rationalRoots lists the rational roots of an integer polynomial with a
// non-zero constant term, by the rational root theorem.
func rationalRoots(a poly) []*big.Rat {
	if a.deg() < 1 || a[0].Sign() == 0 {
		return nil
	}
	ps, ok := divisors(a[0].Num())
	if !ok {
		return nil
	}
	qs, ok := divisors(a.lead().Num())
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []*big.Rat
	for _, p := range ps {
		for _, q := range qs {
			for _, s := range []int64{1, -1} {
				r := big.NewRat(s*p, q)
				key := r.RatString()
				if seen[key] {
					continue
				}
				seen[key] = true
				if a.eval(r).Sign() == 0 {
					out = append(out, r)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

const maxDivisorInput = 1_000_000_000_000

// divisors lists the positive divisors of |n|.
func divisors(n *big.Int) ([]int64, bool) {
	m := new(big.Int).Abs(n)
	if m.Sign() == 0 || !m.IsInt64() || m.Int64() > maxDivisorInput {
		return nil, false
	}
	out := []int64{1}
	for _, pp := range sortedPrimePowers(factorInt(m, 1)) {
		if !pp.base.IsInt64() {
			return nil, false
		}
		b := pp.base.Int64()
		cur := len(out)
		pk := int64(1)
		for k := int64(1); k <= pp.exp; k++ {
			pk *= b
			for _, d := range out[:cur] {
				out = append(out, d*pk)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, true
}

// kronecker searches for a factor of a of degree d by interpolating through
// divisors of its values at d+1 integer points.
func (e *Engine) kronecker(a poly, d int, budget *int) (poly, bool) {
	xs := make([]int64, 0, d+1)
	var divs [][]int64
	for i := int64(0); len(xs) < d+1; i++ {
		x := (i + 1) / 2
		if i%2 == 0 {
			x = -x
		}
		v := a.eval(big.NewRat(x, 1))
		if v.Sign() == 0 {
			continue
		}
		ds, ok := divisors(v.Num())
		if !ok {
			return nil, false
		}
		if len(xs) > 0 {
			signed := make([]int64, 0, 2*len(ds))
			for _, dv := range ds {
				signed = append(signed, dv, -dv)
			}
			ds = signed
		}
		xs = append(xs, x)
		divs = append(divs, ds)
	}
	idx := make([]int, len(divs))
	ys := make([]*big.Rat, len(divs))
	for {
		if *budget <= 0 {
			e.log.Debug("factor: kronecker budget exhausted", slog.Int("degree", a.deg()), slog.Int("target", d))
			return nil, false
		}
		*budget--
		for j := range divs {
			ys[j] = big.NewRat(divs[j][idx[j]], 1)
		}
		g := interpolate(xs, ys)
		if g.deg() == d && g.isIntegral() {
			if _, r := polyDivMod(a, g); r.isZero() {
				_, pg := g.primitive()
				if q, _ := polyDivMod(a, pg); q.isIntegral() {
					return pg, true
				}
			}
		}
		j := 0
		for ; j < len(idx); j++ {
			idx[j]++
			if idx[j] < len(divs[j]) {
				break
			}
			idx[j] = 0
		}
		if j == len(idx) {
			return nil, false
		}
	}
}

// ============================================================
// Multivariate
// ============================================================

type mono struct {
	c    *big.Rat
	exps []int // parallel to the symbol list
}

// monomials writes x as a sum of rational multiples of monomials in syms.
func (e *Engine) monomials(x Expr, syms []Symbol) ([]mono, bool) {
	pos := make(map[Expr]int, len(syms))
	for i, s := range syms {
		pos[e.sym(s)] = i
	}
	x = e.Expand(x)
	if x == e.zero {
		return nil, true
	}
	var out []mono
	for _, t := range e.termsOf(x) {
		c, rest := e.splitCoeff(t)
		m := mono{c: new(big.Rat).Set(c), exps: make([]int, len(syms))}
		fs := []Expr{rest}
		if e.isKind(rest, KindMul) {
			fs = e.args(rest)
		}
		for _, f := range fs {
			if f == e.one {
				continue
			}
			b, ex := e.asPow(f)
			i, ok := pos[b]
			r := e.rat(ex)
			if !ok || r == nil || !r.IsInt() || r.Sign() <= 0 || !r.Num().IsInt64() {
				return nil, false
			}
			m.exps[i] += int(r.Num().Int64())
		}
		out = append(out, m)
	}
	return out, true
}

func (e *Engine) monoExpr(m mono, syms []Symbol) Expr {
	fs := []Expr{e.Number(m.c)}
	for i, k := range m.exps {
		if k > 0 {
			fs = append(fs, e.Pow(e.sym(syms[i]), e.intn(int64(k))))
		}
	}
	return e.Mul(fs...)
}

// factorHomogeneous factors a homogeneous polynomial in two symbols by
// setting the second to one, factoring, and homogenising each factor.
func (e *Engine) factorHomogeneous(monos []mono, syms []Symbol) (Expr, []FactorPower, bool) {
	n := monos[0].exps[0] + monos[0].exps[1]
	deg := 0
	for _, m := range monos {
		if m.exps[0]+m.exps[1] != n {
			return 0, nil, false
		}
		deg = max(deg, m.exps[0])
	}
	if n == 0 {
		return 0, nil, false
	}
	p := make(poly, deg+1)
	for i := range p {
		p[i] = new(big.Rat)
	}
	for _, m := range monos {
		p[m.exps[0]].Add(p[m.exps[0]], m.c)
	}
	p = p.trim()
	c, pfs := e.factorPoly(p)
	x, y := e.sym(syms[0]), e.sym(syms[1])
	var out []FactorPower
	used := 0
	for _, f := range pfs {
		d := f.p.deg()
		terms := make([]Expr, 0, len(f.p))
		for j, cj := range f.p {
			if cj.Sign() == 0 {
				continue
			}
			terms = append(terms, e.Mul(e.Number(cj), e.Pow(x, e.intn(int64(j))), e.Pow(y, e.intn(int64(d-j)))))
		}
		out = append(out, FactorPower{e.Add(terms...), f.mult})
		used += d * f.mult
	}
	if rest := n - used; rest > 0 {
		out = append([]FactorPower{{y, rest}}, out...)
	}
	return e.num(c), out, true
}

// factorMultivariate takes out the rational content and the common
// monomial, then splits what is left: through the univariate factoriser
// when one symbol remains, by Kronecker substitution otherwise.
func (e *Engine) factorMultivariate(monos []mono, syms []Symbol) (Expr, []FactorPower) {
	content, out, rest := e.splitContent(monos, syms)
	var live []int
	for i := range syms {
		for _, m := range rest {
			if m.exps[i] > 0 {
				live = append(live, i)
				break
			}
		}
	}
	switch len(live) {
	case 0:
		return e.num(content), out
	case 1:
		i := live[0]
		p := make(poly, 0)
		for _, m := range rest {
			for len(p) <= m.exps[i] {
				p = append(p, new(big.Rat))
			}
			p[m.exps[i]].Add(p[m.exps[i]], m.c)
		}
		c, pfs := e.factorPoly(p.trim())
		content.Mul(content, c)
		v := e.sym(syms[i])
		for _, f := range pfs {
			out = append(out, FactorPower{e.fromPoly(f.p, v), f.mult})
		}
		return e.num(content), out
	}

	parts, ok := e.splitKronecker(rest, len(syms))
	if !ok {
		return e.num(content), append(out, FactorPower{e.monosExpr(rest, syms), 1})
	}
	seen := make(map[Expr]int)
	for _, h := range parts {
		x := e.monosExpr(h, syms)
		if lead, _ := e.splitCoeff(e.termsOf(x)[0]); lead.Sign() < 0 {
			content.Neg(content)
			x = e.monosExpr(negMonos(h), syms)
		}
		if i, ok := seen[x]; ok {
			out[i].Exp++
			continue
		}
		seen[x] = len(out)
		out = append(out, FactorPower{x, 1})
	}
	return e.num(content), out
}

// splitContent returns the rational content (signed like the leading term
// of the canonical sum), the common monomial as symbol powers, and the
// primitive remainder.
func (e *Engine) splitContent(monos []mono, syms []Symbol) (*big.Rat, []FactorPower, []mono) {
	minExp := append([]int(nil), monos[0].exps...)
	for _, m := range monos[1:] {
		for i, k := range m.exps {
			minExp[i] = min(minExp[i], k)
		}
	}
	coeffs := make(poly, len(monos))
	for i, m := range monos {
		coeffs[i] = m.c
	}
	lead, _ := e.splitCoeff(e.termsOf(e.monosExpr(monos, syms))[0])
	content, _ := coeffs.contentOnly()
	if lead.Sign() < 0 {
		content.Neg(content)
	}
	var out []FactorPower
	for i, k := range minExp {
		if k > 0 {
			out = append(out, FactorPower{e.sym(syms[i]), k})
		}
	}
	rest := make([]mono, len(monos))
	for i, m := range monos {
		q := mono{c: new(big.Rat).Quo(m.c, content), exps: make([]int, len(m.exps))}
		for j, k := range m.exps {
			q.exps[j] = k - minExp[j]
		}
		rest[i] = q
	}
	return content, out, rest
}

func (e *Engine) monosExpr(ms []mono, syms []Symbol) Expr {
	ts := make([]Expr, len(ms))
	for i, m := range ms {
		ts[i] = e.monoExpr(m, syms)
	}
	return e.Add(ts...)
}

func negMonos(ms []mono) []mono {
	out := make([]mono, len(ms))
	for i, m := range ms {
		out[i] = mono{c: new(big.Rat).Neg(m.c), exps: m.exps}
	}
	return out
}

// maxKroneckerDegree bounds the degree of the univariate image.
const maxKroneckerDegree = 512

// splitKronecker factors a primitive polynomial in several symbols. Each
// symbol i is sent to t^(base^i) with base above every partial degree; the
// image is factored in t and products of its factors, smallest first, are
// mapped back and kept when they divide exactly. It reports false when the
// image or the search would exceed the bounds.
func (e *Engine) splitKronecker(f []mono, n int) ([][]mono, bool) {
	bound := make([]int, n)
	for _, m := range f {
		for i, k := range m.exps {
			bound[i] = max(bound[i], k)
		}
	}
	base := 2
	for _, b := range bound {
		base = max(base, b+1)
	}
	deg, w := 0, 1
	for _, b := range bound {
		deg += b * w
		if deg > maxKroneckerDegree {
			return nil, false
		}
		w *= base
	}

	_, pfs := e.factorPoly(kroneckerImage(f, base))
	counts := make([]int, len(pfs))
	for i, pf := range pfs {
		counts[i] = pf.mult
	}
	var out [][]mono
	for {
		h, q, used, ok := e.liftFactor(f, pfs, counts, base, bound)
		if !ok {
			break
		}
		out = append(out, h)
		f = q
		for i := range counts {
			counts[i] -= used[i]
		}
	}
	return append(out, f), true
}

// liftFactor searches the proper sub-products of the univariate factors
// (multiplicities in counts) for one whose preimage divides f.
func (e *Engine) liftFactor(f []mono, pfs []polyFactor, counts []int, base int, bound []int) (h, q []mono, used []int, ok bool) {
	total := 1
	for _, c := range counts {
		total *= c + 1
		if total > e.opts.factorBudget {
			e.log.Debug("factor: kronecker search over budget", slog.Int("candidates", total))
			return nil, nil, nil, false
		}
	}
	var cands [][]int
	cur := make([]int, len(counts))
	var gen func(i int)
	gen = func(i int) {
		if i == len(counts) {
			cands = append(cands, append([]int(nil), cur...))
			return
		}
		for c := 0; c <= counts[i]; c++ {
			cur[i] = c
			gen(i + 1)
		}
	}
	gen(0)
	degOf := func(c []int) int {
		d := 0
		for i, k := range c {
			d += k * pfs[i].p.deg()
		}
		return d
	}
	full := degOf(counts)
	sort.SliceStable(cands, func(i, j int) bool { return degOf(cands[i]) < degOf(cands[j]) })
	for _, c := range cands {
		d := degOf(c)
		if d == 0 || d == full {
			continue
		}
		g := polyInts(1)
		for i, k := range c {
			if k > 0 {
				g = polyMul(g, polyPow(pfs[i].p, k))
			}
		}
		h := kroneckerInverse(g, base, len(bound))
		if q, ok := divideMonos(f, h, bound); ok {
			return h, q, c, true
		}
	}
	return nil, nil, nil, false
}

func kroneckerImage(ms []mono, base int) poly {
	idx := make([]int, len(ms))
	deg := 0
	for i, m := range ms {
		k, w := 0, 1
		for _, x := range m.exps {
			k += x * w
			w *= base
		}
		idx[i] = k
		deg = max(deg, k)
	}
	p := make(poly, deg+1)
	for i := range p {
		p[i] = new(big.Rat)
	}
	for i, m := range ms {
		p[idx[i]].Add(p[idx[i]], m.c)
	}
	return p.trim()
}

func kroneckerInverse(p poly, base, n int) []mono {
	var out []mono
	for k, c := range p {
		if c.Sign() == 0 {
			continue
		}
		exps := make([]int, n)
		for i, r := 0, k; i < n; i++ {
			exps[i] = r % base
			r /= base
		}
		out = append(out, mono{c: new(big.Rat).Set(c), exps: exps})
	}
	return out
}

func monoKey(exps []int) string {
	b := make([]byte, 0, 4*len(exps))
	for _, k := range exps {
		b = strconv.AppendInt(b, int64(k), 10)
		b = append(b, ',')
	}
	return string(b)
}

func lexGreater(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

func leadMono(ms []mono) mono {
	lt := ms[0]
	for _, m := range ms[1:] {
		if lexGreater(m.exps, lt.exps) {
			lt = m
		}
	}
	return lt
}

// divideMonos divides f by h in lexicographic order and reports whether the
// division is exact. Quotient exponents may not exceed bound.
func divideMonos(f, h []mono, bound []int) ([]mono, bool) {
	if len(h) == 0 {
		return nil, false
	}
	r := make(map[string]mono, len(f))
	for _, m := range f {
		r[monoKey(m.exps)] = mono{c: new(big.Rat).Set(m.c), exps: m.exps}
	}
	lh := leadMono(h)
	var q []mono
	for len(r) > 0 {
		first := true
		var lt mono
		for _, m := range r {
			if first || lexGreater(m.exps, lt.exps) {
				lt, first = m, false
			}
		}
		d := make([]int, len(lt.exps))
		for i := range d {
			d[i] = lt.exps[i] - lh.exps[i]
			if d[i] < 0 || d[i] > bound[i] {
				return nil, false
			}
		}
		c := new(big.Rat).Quo(lt.c, lh.c)
		q = append(q, mono{c: c, exps: d})
		for _, m := range h {
			exps := make([]int, len(d))
			for i := range exps {
				exps[i] = d[i] + m.exps[i]
			}
			k := monoKey(exps)
			t := new(big.Rat).Mul(c, m.c)
			if cur, ok := r[k]; ok {
				cur.c.Sub(cur.c, t)
				if cur.c.Sign() == 0 {
					delete(r, k)
				}
				continue
			}
			r[k] = mono{c: t.Neg(t), exps: exps}
		}
	}
	return q, true
}

// contentOnly returns the positive rational gcd of the coefficients.
func (p poly) contentOnly() (*big.Rat, bool) {
	if len(p) == 0 {
		return new(big.Rat), false
	}
	num := new(big.Int)
	den := big.NewInt(1)
	for _, c := range p {
		num.GCD(nil, nil, num, new(big.Int).Abs(c.Num()))
		g := new(big.Int).GCD(nil, nil, den, c.Denom())
		den.Mul(den, new(big.Int).Quo(c.Denom(), g))
	}
	return new(big.Rat).SetFrac(num, den), true
}
