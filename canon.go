package gocas

import (
	"math/big"
)

// ============================================================
// Add
// ============================================================

// Add returns the canonical sum of terms. Nested sums are flattened,
// numbers folded and like terms collected.
func (e *Engine) Add(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		flat = e.flattenAdd(t, flat)
	}
	return e.addFlat(flat)
}

func (e *Engine) flattenAdd(t Expr, out []Expr) []Expr {
	n := e.node(t)
	switch n.kind {
	case KindAdd:
		for _, a := range n.args {
			out = e.flattenAdd(a, out)
		}
		return out
	case KindMul:
		if len(n.args) == 2 && e.isNumber(n.args[0]) && e.isKind(n.args[1], KindAdd) {
			c := e.rat(n.args[0])
			for _, a := range e.args(n.args[1]) {
				out = e.flattenAdd(e.Mul(e.num(new(big.Rat).Set(c)), a), out)
			}
			return out
		}
	}
	return append(out, t)
}

func (e *Engine) addFlat(flat []Expr) Expr {
	sum := new(big.Rat)
	var posInf, negInf, cInf bool
	coeffs := make(map[Expr]*big.Rat, len(flat))
	order := make([]Expr, 0, len(flat))
	for _, t := range flat {
		switch {
		case t == e.nan:
			return e.nan
		case t == e.inf:
			posInf = true
			continue
		case t == e.zinf:
			cInf = true
			continue
		case e.isNegInf(t):
			negInf = true
			continue
		}
		if r := e.rat(t); r != nil {
			sum.Add(sum, r)
			continue
		}
		c, rest := e.splitCoeff(t)
		if acc, ok := coeffs[rest]; ok {
			acc.Add(acc, c)
			continue
		}
		coeffs[rest] = new(big.Rat).Set(c)
		order = append(order, rest)
	}
	switch {
	case cInf && (posInf || negInf), posInf && negInf:
		return e.nan
	case cInf:
		return e.zinf
	case posInf:
		return e.inf
	case negInf:
		return e.negInf()
	}
	out := make([]Expr, 0, len(order)+1)
	for _, rest := range order {
		c := coeffs[rest]
		if c.Sign() == 0 {
			continue
		}
		out = append(out, e.withCoeff(c, rest))
	}
	if sum.Sign() != 0 {
		out = append(out, e.num(sum))
	}
	switch len(out) {
	case 0:
		return e.zero
	case 1:
		return out[0]
	}
	e.sortTerms(out)
	return e.raw(KindAdd, out...)
}

// Sub returns a - b.
func (e *Engine) Sub(a, b Expr) Expr { return e.Add(a, e.Neg(b)) }

// Neg returns -x.
func (e *Engine) Neg(x Expr) Expr { return e.Mul(e.negOne, x) }

// ============================================================
// Mul
// ============================================================

// Mul returns the canonical product of factors. Numbers are folded, equal
// bases merged by adding exponents, exponentials merged into a single exp,
// and a lone rational coefficient is distributed over a sum.
func (e *Engine) Mul(factors ...Expr) Expr { return e.mul(factors, 0) }

type powGroup struct {
	base  Expr
	first Expr
	exps  []Expr
}

func (e *Engine) flattenMul(f Expr, out []Expr) []Expr {
	if e.isKind(f, KindMul) {
		for _, a := range e.args(f) {
			out = e.flattenMul(a, out)
		}
		return out
	}
	return append(out, f)
}

func (e *Engine) mul(factors []Expr, depth int) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		flat = e.flattenMul(f, flat)
	}
	coeff := big.NewRat(1, 1)
	var inf, zinf bool
	var exps []Expr
	var groups []*powGroup
	byBase := make(map[Expr]*powGroup)
	for _, f := range flat {
		switch {
		case f == e.nan:
			return e.nan
		case f == e.inf:
			inf = true
			continue
		case f == e.zinf:
			zinf = true
			continue
		}
		if r := e.rat(f); r != nil {
			coeff.Mul(coeff, r)
			continue
		}
		if e.isKind(f, KindExp) {
			exps = append(exps, f)
			continue
		}
		b, x := e.asPow(f)
		if g, ok := byBase[b]; ok {
			g.exps = append(g.exps, x)
			continue
		}
		g := &powGroup{base: b, first: f, exps: []Expr{x}}
		byBase[b] = g
		groups = append(groups, g)
	}
	if coeff.Sign() == 0 {
		if inf || zinf {
			return e.nan
		}
		return e.zero
	}
	if zinf {
		return e.zinf
	}

	changed := false
	out := make([]Expr, 0, len(groups)+1)
	keep := func(p, base Expr) {
		if e.isNumber(p) || e.isKind(p, KindMul) {
			changed = true
		} else if b, _ := e.asPow(p); b != base {
			changed = true
		}
		out = append(out, p)
	}
	switch len(exps) {
	case 0:
	case 1:
		out = append(out, exps[0])
	default:
		args := make([]Expr, len(exps))
		for i, x := range exps {
			args[i] = e.arg(x)
		}
		p := e.Exp(e.Add(args...))
		if !e.isKind(p, KindExp) {
			changed = true
		}
		out = append(out, p)
	}
	for _, g := range groups {
		if len(g.exps) == 1 {
			out = append(out, g.first)
			continue
		}
		keep(e.Pow(g.base, e.Add(g.exps...)), g.base)
	}
	if merged, ok := e.mergeRadicals(out); ok {
		out = merged
		changed = true
	}
	if changed && depth < 8 {
		next := make([]Expr, 0, len(out)+2)
		next = append(next, e.num(coeff))
		if inf {
			next = append(next, e.inf)
		}
		return e.mul(append(next, out...), depth+1)
	}

	e.sortFactors(out)
	if inf {
		coeff = big.NewRat(int64(coeff.Sign()), 1)
		out = append(out, e.inf)
	}
	if len(out) == 0 {
		return e.num(coeff)
	}
	one := coeff.Cmp(ratOne) == 0
	if one && len(out) == 1 {
		return out[0]
	}
	if !one && len(out) == 1 && e.isKind(out[0], KindAdd) {
		terms := e.args(out[0])
		scaled := make([]Expr, len(terms))
		for i, t := range terms {
			scaled[i] = e.Mul(e.num(new(big.Rat).Set(coeff)), t)
		}
		return e.Add(scaled...)
	}
	if one {
		return e.raw(KindMul, out...)
	}
	return e.raw(KindMul, append([]Expr{e.num(coeff)}, out...)...)
}

// mergeRadicals combines numeric radicals that share an exponent, so that
// sqrt(2)*sqrt(3) becomes sqrt(6).
func (e *Engine) mergeRadicals(fs []Expr) ([]Expr, bool) {
	type bucket struct {
		exp  Expr
		prod *big.Int
		n    int
	}
	var buckets []*bucket
	byExp := make(map[Expr]*bucket)
	rest := make([]Expr, 0, len(fs))
	for _, f := range fs {
		b, x := e.asPow(f)
		br, xr := e.rat(b), e.rat(x)
		if b == f || br == nil || xr == nil || !br.IsInt() || br.Sign() <= 0 || xr.IsInt() {
			rest = append(rest, f)
			continue
		}
		bk, ok := byExp[x]
		if !ok {
			bk = &bucket{exp: x, prod: big.NewInt(1)}
			byExp[x] = bk
			buckets = append(buckets, bk)
		}
		bk.prod.Mul(bk.prod, br.Num())
		bk.n++
	}
	merged := false
	for _, bk := range buckets {
		if bk.n > 1 {
			merged = true
		}
	}
	if !merged {
		return fs, false
	}
	for _, bk := range buckets {
		rest = append(rest, e.Pow(e.num(new(big.Rat).SetInt(bk.prod)), bk.exp))
	}
	return rest, true
}

// Div returns a / b.
func (e *Engine) Div(a, b Expr) Expr { return e.Mul(a, e.Pow(b, e.negOne)) }

// ============================================================
// Pow
// ============================================================

// Pow returns the canonical power b^x using principal branches.
func (e *Engine) Pow(b, x Expr) Expr {
	switch {
	case b == e.nan || x == e.nan:
		return e.nan
	case x == e.zero:
		return e.one
	case x == e.one:
		return b
	case b == e.one:
		if e.isInfinite(x) {
			return e.nan
		}
		return e.one
	}
	br, xr := e.rat(b), e.rat(x)
	if b == e.zero {
		switch {
		case xr != nil && xr.Sign() > 0, x == e.inf:
			return e.zero
		case xr != nil, e.isNegInf(x):
			return e.zinf
		}
		return e.raw(KindPow, b, x)
	}
	if br != nil && xr != nil {
		return e.powNum(br, xr)
	}
	if br != nil && br.Sign() > 0 && (x == e.inf || e.isNegInf(x)) {
		big1 := br.Cmp(ratOne) > 0
		if big1 == (x == e.inf) {
			return e.inf
		}
		return e.zero
	}
	if xr != nil {
		switch {
		case b == e.imag && xr.IsInt():
			return e.powI(xr.Num())
		case b == e.inf:
			if xr.Sign() > 0 {
				return e.inf
			}
			return e.zero
		case b == e.zinf:
			if xr.Sign() > 0 {
				return e.zinf
			}
			return e.zero
		}
	}
	switch e.Kind(b) {
	case KindPow:
		bb, e1 := e.asPow(b)
		r1 := e.rat(e1)
		if xr != nil && xr.IsInt() || e.isPositive(bb) && e.isReal(x) ||
			r1 != nil && r1.Cmp(big.NewRat(-1, 1)) > 0 && r1.Cmp(ratOne) <= 0 {
			return e.Pow(bb, e.Mul(e1, x))
		}
	case KindMul:
		if xr != nil {
			return e.powMul(b, x, xr)
		}
	case KindExp:
		if xr != nil && xr.IsInt() || e.isInfinite(x) {
			return e.Exp(e.Mul(x, e.arg(b)))
		}
	}
	return e.raw(KindPow, b, x)
}

func (e *Engine) powI(n *big.Int) Expr {
	m := new(big.Int).Mod(n, big.NewInt(4)).Int64()
	switch m {
	case 0:
		return e.one
	case 1:
		return e.imag
	case 2:
		return e.negOne
	}
	return e.raw(KindMul, e.negOne, e.imag)
}

// powMul distributes a rational power over a product. Integer powers
// distribute over every factor; other powers only pull out factors that
// are provably positive.
func (e *Engine) powMul(b, x Expr, xr *big.Rat) Expr {
	fs := e.args(b)
	if xr.IsInt() {
		out := make([]Expr, len(fs))
		for i, f := range fs {
			out[i] = e.Pow(f, x)
		}
		return e.Mul(out...)
	}
	var pos, rest []Expr
	for _, f := range fs {
		if r := e.rat(f); r != nil && r.Sign() < 0 {
			pos = append(pos, e.num(ratAbs(r)))
			rest = append(rest, e.negOne)
			continue
		}
		if e.isPositive(f) {
			pos = append(pos, f)
		} else {
			rest = append(rest, f)
		}
	}
	if len(pos) == 0 {
		return e.raw(KindPow, b, x)
	}
	out := make([]Expr, 0, len(pos)+1)
	for _, f := range pos {
		out = append(out, e.Pow(f, x))
	}
	if len(rest) > 0 {
		out = append(out, e.Pow(e.Mul(rest...), x))
	}
	return e.Mul(out...)
}

const maxIntPow = 4096

// maxPowBits bounds the size of an exact integer power of a rational;
// larger powers stay unevaluated.
const maxPowBits = 1 << 20

// powFits reports whether b^n may be evaluated exactly.
func powFits(b *big.Rat, n *big.Int) bool {
	if !n.IsInt64() || abs64(n.Int64()) > maxIntPow {
		return false
	}
	bits := int64(b.Num().BitLen() + b.Denom().BitLen())
	return bits*abs64(n.Int64()) <= maxPowBits
}

// powNum evaluates a rational power of a rational number exactly, leaving
// irreducible radicals as powers of positive integers with exponents in (0, 1).
func (e *Engine) powNum(b, x *big.Rat) Expr {
	if x.IsInt() {
		if !powFits(b, x.Num()) {
			return e.raw(KindPow, e.num(new(big.Rat).Set(b)), e.num(new(big.Rat).Set(x)))
		}
		return e.num(ratPow(b, x.Num().Int64()))
	}
	k := ratFloor(x)
	frac := new(big.Rat).Sub(x, ratInt(k))
	var whole Expr = e.one
	if k.Sign() != 0 {
		if !powFits(b, k) {
			return e.raw(KindPow, e.num(new(big.Rat).Set(b)), e.num(new(big.Rat).Set(x)))
		}
		whole = e.num(ratPow(b, k.Int64()))
	}
	root := e.rootNum(b, frac)
	if whole == e.one {
		return root
	}
	return e.Mul(whole, root)
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// rootNum computes b^f for 0 < f < 1.
func (e *Engine) rootNum(b, f *big.Rat) Expr {
	q := f.Denom()
	if !q.IsInt64() || q.Int64() > maxIntPow {
		return e.raw(KindPow, e.num(new(big.Rat).Set(b)), e.num(new(big.Rat).Set(f)))
	}
	if b.Sign() < 0 {
		if q.Int64() == 2 {
			return e.Mul(e.imag, e.rootNum(ratAbs(b), f))
		}
		return e.raw(KindPow, e.num(new(big.Rat).Set(b)), e.num(new(big.Rat).Set(f)))
	}
	qq := q.Int64()
	p := f.Num().Int64()
	primes := factorInt(b.Num(), int(qq))
	for key, pp := range factorInt(b.Denom(), int(qq)) {
		if cur, ok := primes[key]; ok {
			cur.exp -= pp.exp
		} else {
			primes[key] = &primePower{base: pp.base, exp: -pp.exp}
		}
	}
	outside := big.NewRat(1, 1)
	inside := make(map[string]*big.Int)
	var insideExps []string
	for _, pp := range sortedPrimePowers(primes) {
		total := pp.exp * p
		out := floorDiv(total, qq)
		rem := total - out*qq
		if out != 0 {
			outside.Mul(outside, ratPow(new(big.Rat).SetInt(pp.base), out))
		}
		if rem == 0 {
			continue
		}
		ex := big.NewRat(rem, qq).RatString()
		if cur, ok := inside[ex]; ok {
			cur.Mul(cur, pp.base)
		} else {
			inside[ex] = new(big.Int).Set(pp.base)
			insideExps = append(insideExps, ex)
		}
	}
	radicals := make([]Expr, 0, len(insideExps))
	for _, ex := range insideExps {
		r, _ := new(big.Rat).SetString(ex)
		radicals = append(radicals, e.raw(KindPow, e.num(new(big.Rat).SetInt(inside[ex])), e.num(r)))
	}
	if outside.Cmp(ratOne) == 0 && len(radicals) == 1 {
		return radicals[0]
	}
	return e.Mul(append([]Expr{e.num(outside)}, radicals...)...)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func sortedPrimePowers(m map[string]*primePower) []*primePower {
	out := make([]*primePower, 0, len(m))
	for _, pp := range m {
		if pp.exp != 0 {
			out = append(out, pp)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].base.Cmp(out[j-1].base) < 0; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
