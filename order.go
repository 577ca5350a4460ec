package gocas

import (
	"math/big"
	"sort"
	"strings"
)

// groupRank orders node kinds for the structural comparison.
func groupRank(k Kind) int {
	switch k {
	case KindNumber:
		return 0
	case KindConstant:
		return 1
	case KindSymbol:
		return 2
	case KindPow:
		return 3
	case KindMul:
		return 4
	case KindAdd:
		return 5
	}
	return 6
}

// compare is a total order on expressions used for canonical sorting.
func (e *Engine) compare(a, b Expr) int {
	if a == b {
		return 0
	}
	na, nb := e.node(a), e.node(b)
	ra, rb := groupRank(na.kind), groupRank(nb.kind)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch na.kind {
	case KindNumber:
		return na.num.Cmp(nb.num)
	case KindConstant:
		return cmpInt(int(na.cnst), int(nb.cnst))
	case KindSymbol:
		if c := strings.Compare(na.sym.name, nb.sym.name); c != 0 {
			return c
		}
		return cmpInt(int(na.sym.id), int(nb.sym.id))
	}
	if na.kind != nb.kind || na.kind == KindApply {
		if c := strings.Compare(e.FuncName(a), e.FuncName(b)); c != 0 {
			return c
		}
	}
	return e.compareArgs(na.args, nb.args)
}

func (e *Engine) compareArgs(xs, ys []Expr) int {
	for i := 0; i < len(xs) && i < len(ys); i++ {
		if c := e.compare(xs[i], ys[i]); c != 0 {
			return c
		}
	}
	return cmpInt(len(xs), len(ys))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// mulRank places factors of a product: radicals, i, pi, symbols,
// functions, sums, infinities.
func (e *Engine) mulRank(f Expr) int {
	b, _ := e.asPow(f)
	n := e.node(b)
	switch n.kind {
	case KindNumber:
		return 1
	case KindConstant:
		switch n.cnst {
		case ConstI:
			return 2
		case ConstPi:
			return 3
		}
		return 7
	case KindSymbol:
		return 4
	case KindAdd, KindMul:
		return 6
	}
	return 5
}

func (e *Engine) mulLess(a, b Expr) bool {
	ra, rb := e.mulRank(a), e.mulRank(b)
	if ra != rb {
		return ra < rb
	}
	ba, xa := e.asPow(a)
	bb, xb := e.asPow(b)
	if c := e.compare(ba, bb); c != 0 {
		return c < 0
	}
	return e.compare(xa, xb) < 0
}

func (e *Engine) sortFactors(fs []Expr) {
	sort.SliceStable(fs, func(i, j int) bool { return e.mulLess(fs[i], fs[j]) })
}

// monomial returns the symbol exponents of the non-numeric part of a term
// and their total, counting only rational exponents of symbols.
func (e *Engine) monomial(rest Expr) (map[string]*big.Rat, *big.Rat) {
	exps := make(map[string]*big.Rat)
	total := new(big.Rat)
	var visit func(f Expr)
	visit = func(f Expr) {
		b, x := e.asPow(f)
		s, ok := e.SymbolOf(b)
		if !ok {
			return
		}
		r := e.rat(x)
		if r == nil {
			return
		}
		if cur, ok := exps[s.name]; ok {
			cur.Add(cur, r)
		} else {
			exps[s.name] = new(big.Rat).Set(r)
		}
		total.Add(total, r)
	}
	if e.isKind(rest, KindMul) {
		for _, f := range e.args(rest) {
			visit(f)
		}
	} else {
		visit(rest)
	}
	return exps, total
}

// addLess orders the terms of a sum: higher total degree first, then
// graded lexicographic order on symbols, numbers last.
func (e *Engine) addLess(a, b Expr) bool {
	_, ra := e.splitCoeff(a)
	_, rb := e.splitCoeff(b)
	if (ra == e.one) != (rb == e.one) {
		return rb == e.one
	}
	ma, da := e.monomial(ra)
	mb, db := e.monomial(rb)
	if c := da.Cmp(db); c != 0 {
		return c > 0
	}
	names := make([]string, 0, len(ma)+len(mb))
	for n := range ma {
		names = append(names, n)
	}
	for n := range mb {
		if _, ok := ma[n]; !ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	zero := new(big.Rat)
	for _, n := range names {
		xa, xb := ma[n], mb[n]
		if xa == nil {
			xa = zero
		}
		if xb == nil {
			xb = zero
		}
		if c := xa.Cmp(xb); c != 0 {
			return c > 0
		}
	}
	if c := e.compare(ra, rb); c != 0 {
		return c < 0
	}
	ca, _ := e.splitCoeff(a)
	cb, _ := e.splitCoeff(b)
	return ca.Cmp(cb) < 0
}

func (e *Engine) sortTerms(ts []Expr) {
	sort.SliceStable(ts, func(i, j int) bool { return e.addLess(ts[i], ts[j]) })
}
