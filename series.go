package gocas

import (
	"errors"
	"math/big"
)

var (
	errNoSeries   = errors.New("no series expansion")
	errEssential  = errors.New("essential singularity")
	errOscillates = errors.New("oscillates")
)

// ser is a truncated Laurent series in a local variable t at 0: c[i] is the
// coefficient of t^(lo+i), and the series is exact below t^hi().
type ser struct {
	lo int
	c  []Expr
}

func (s ser) hi() int { return s.lo + len(s.c) }

func (e *Engine) at(s ser, k int) Expr {
	if k < s.lo || k >= s.hi() {
		return e.zero
	}
	return s.c[k-s.lo]
}

func (e *Engine) serConst(a Expr, hi int) ser {
	if hi <= 0 {
		return ser{lo: hi}
	}
	c := make([]Expr, hi)
	c[0] = a
	for i := 1; i < hi; i++ {
		c[i] = e.zero
	}
	return ser{c: c}
}

func (e *Engine) serVar(hi int) ser {
	if hi <= 1 {
		return ser{lo: hi}
	}
	c := make([]Expr, hi-1)
	c[0] = e.one
	for i := 1; i < len(c); i++ {
		c[i] = e.zero
	}
	return ser{lo: 1, c: c}
}

func (e *Engine) serAdd(a, b ser) ser {
	lo, hi := min(a.lo, b.lo), min(a.hi(), b.hi())
	if hi <= lo {
		return ser{lo: hi}
	}
	c := make([]Expr, hi-lo)
	for k := lo; k < hi; k++ {
		c[k-lo] = e.Expand(e.Add(e.at(a, k), e.at(b, k)))
	}
	return ser{lo: lo, c: c}
}

func (e *Engine) serScale(a ser, f Expr) ser {
	c := make([]Expr, len(a.c))
	for i, x := range a.c {
		c[i] = e.Expand(e.Mul(f, x))
	}
	return ser{lo: a.lo, c: c}
}

func (e *Engine) serMul(a, b ser) ser {
	lo := a.lo + b.lo
	hi := min(a.hi()+b.lo, b.hi()+a.lo)
	if hi <= lo {
		return ser{lo: hi}
	}
	c := make([]Expr, hi-lo)
	for k := lo; k < hi; k++ {
		var terms []Expr
		for i := a.lo; i <= k-b.lo; i++ {
			terms = append(terms, e.Mul(e.at(a, i), e.at(b, k-i)))
		}
		c[k-lo] = e.Expand(e.Add(terms...))
	}
	return ser{lo: lo, c: c}
}

// normalize drops vanishing leading coefficients.
func (e *Engine) normalize(s ser) ser {
	for len(s.c) > 0 && e.isZero(s.c[0]) {
		s.c = s.c[1:]
		s.lo++
	}
	return s
}

// unit splits a normalised series into c0 * t^lo * (1 + u) and returns u
// with precision len(s.c).
func (e *Engine) unit(s ser) (Expr, ser) {
	c0 := s.c[0]
	inv := e.Pow(c0, e.negOne)
	u := make([]Expr, len(s.c))
	u[0] = e.zero
	for i := 1; i < len(s.c); i++ {
		u[i] = e.Expand(e.Mul(inv, s.c[i]))
	}
	return c0, ser{c: u}
}

// serSum evaluates sum coef(k) * w^k for k < n where w has positive
// valuation and the result is exact below t^n.
func (e *Engine) serSum(w ser, n int, coef func(k int) Expr) ser {
	acc := e.serConst(e.zero, n)
	pw := e.serConst(e.one, n)
	for k := 0; k < n; k++ {
		if c := coef(k); c != e.zero {
			acc = e.serAdd(acc, e.serScale(pw, c))
		}
		pw = e.serMul(pw, w)
	}
	return acc
}

func factorial(k int) *big.Int { return new(big.Int).MulRange(1, int64(max(k, 1))) }

func (e *Engine) invFact(k int) Expr {
	return e.num(new(big.Rat).SetFrac(big.NewInt(1), factorial(k)))
}

// serPow raises a to a power q free of t.
func (e *Engine) serPow(a ser, q Expr) (ser, error) {
	a = e.normalize(a)
	if len(a.c) == 0 {
		return ser{}, errNoSeries
	}
	lo := 0
	if a.lo != 0 {
		r := e.rat(q)
		if r == nil {
			return ser{}, errNoSeries
		}
		l := new(big.Rat).Mul(r, big.NewRat(int64(a.lo), 1))
		if !l.IsInt() || !l.Num().IsInt64() {
			return ser{}, errNoSeries
		}
		lo = int(l.Num().Int64())
	}
	c0, u := e.unit(a)
	n := len(a.c)
	binom := e.one
	coef := make([]Expr, n)
	for k := 0; k < n; k++ {
		coef[k] = binom
		// binom(q, k+1) = binom(q, k) * (q - k) / (k + 1)
		binom = e.Expand(e.Mul(binom, e.Sub(q, e.intn(int64(k))), e.Frac(1, int64(k+1))))
	}
	s := e.serSum(u, n, func(k int) Expr { return coef[k] })
	s = e.serScale(s, e.Pow(c0, q))
	s.lo += lo
	return s, nil
}

func (e *Engine) serExp(a ser) (ser, error) {
	a = e.normalize(a)
	if len(a.c) > 0 && a.lo < 0 {
		return ser{}, errEssential
	}
	n := a.hi()
	if n <= 0 {
		return ser{}, errNoSeries
	}
	a0 := e.at(a, 0)
	w := e.dropConst(a)
	s := e.serSum(w, n, e.invFact)
	return e.serScale(s, e.Exp(a0)), nil
}

func (e *Engine) serLog(a ser) (ser, error) {
	a = e.normalize(a)
	if len(a.c) == 0 || a.lo != 0 {
		return ser{}, errNoSeries
	}
	c0, u := e.unit(a)
	s := e.serSum(u, len(a.c), func(k int) Expr {
		if k == 0 {
			return e.zero
		}
		if k%2 == 0 {
			return e.Frac(-1, int64(k))
		}
		return e.Frac(1, int64(k))
	})
	return e.serAdd(s, e.serConst(e.Log(c0), len(a.c))), nil
}

// serTrig expands sin (cos false) or cos (cos true) of a.
func (e *Engine) serTrig(a ser, cos bool) (ser, error) {
	a = e.normalize(a)
	if len(a.c) > 0 && a.lo < 0 {
		return ser{}, errOscillates
	}
	n := a.hi()
	if n <= 0 {
		return ser{}, errNoSeries
	}
	a0 := e.at(a, 0)
	w := e.dropConst(a)
	sinW := e.serSum(w, n, func(k int) Expr {
		if k%2 == 0 {
			return e.zero
		}
		if (k/2)%2 == 1 {
			return e.Neg(e.invFact(k))
		}
		return e.invFact(k)
	})
	cosW := e.serSum(w, n, func(k int) Expr {
		if k%2 == 1 {
			return e.zero
		}
		if (k/2)%2 == 1 {
			return e.Neg(e.invFact(k))
		}
		return e.invFact(k)
	})
	s0, c0 := e.Sin(a0), e.Cos(a0)
	if cos {
		return e.serAdd(e.serScale(cosW, c0), e.serScale(sinW, e.Neg(s0))), nil
	}
	return e.serAdd(e.serScale(cosW, s0), e.serScale(sinW, c0)), nil
}

// dropConst removes the t^0 term of a series with non-negative valuation.
func (e *Engine) dropConst(a ser) ser {
	if a.lo > 0 || len(a.c) == 0 {
		return a
	}
	c := append([]Expr(nil), a.c...)
	c[0] = e.zero
	return ser{lo: a.lo, c: c}
}

// toSer expands x in powers of the symbol t at 0, exact below t^n.
func (e *Engine) toSer(x, t Expr, n int) (ser, error) {
	if !e.Has(x, t) {
		if !e.isFinite(x) {
			return ser{}, errNoSeries
		}
		return e.serConst(x, n), nil
	}
	if x == t {
		return e.serVar(n), nil
	}
	nd := e.node(x)
	switch nd.kind {
	case KindAdd:
		var acc ser
		for i, a := range nd.args {
			s, err := e.toSer(a, t, n)
			if err != nil {
				return ser{}, err
			}
			if i == 0 {
				acc = s
			} else {
				acc = e.serAdd(acc, s)
			}
		}
		return acc, nil
	case KindMul:
		var acc ser
		for i, a := range nd.args {
			s, err := e.toSer(a, t, n)
			if err != nil {
				return ser{}, err
			}
			if i == 0 {
				acc = s
			} else {
				acc = e.serMul(acc, s)
			}
		}
		return acc, nil
	case KindPow:
		b, p := nd.args[0], nd.args[1]
		if e.Has(p, t) {
			return e.toSer(e.Exp(e.Mul(p, e.Log(b))), t, n)
		}
		s, err := e.toSer(b, t, n)
		if err != nil {
			return ser{}, err
		}
		return e.serPow(s, p)
	case KindExp, KindLog, KindSin, KindCos:
		s, err := e.toSer(nd.args[0], t, n)
		if err != nil {
			return ser{}, err
		}
		switch nd.kind {
		case KindExp:
			return e.serExp(s)
		case KindLog:
			return e.serLog(s)
		case KindSin:
			return e.serTrig(s, false)
		}
		return e.serTrig(s, true)
	}
	return ser{}, errNoSeries
}

// Series returns the expansion of x in powers of (v - point) up to but
// excluding (v - point)^order. At point oo the expansion is in powers of
// 1/v. No order term is appended.
func (e *Engine) Series(x, v, point Expr, order int) (Expr, error) {
	if err := e.symbolArg("series", v); err != nil {
		return 0, err
	}
	if order < 1 {
		return 0, opErr("series", ErrInvalidArgument, "order must be positive, got %d", order)
	}
	if e.Has(point, v) || point == e.nan || point == e.zinf || e.isNegInf(point) {
		return 0, e.fail("series", ErrInvalidArgument, point, "invalid expansion point")
	}
	t := e.sym(e.reg.dummy("t"))
	var g, base Expr
	if point == e.inf {
		g = e.subs(x, v, e.Pow(t, e.negOne))
		base = e.Pow(v, e.negOne)
	} else {
		g = e.subs(x, v, e.Add(point, t))
		base = e.Sub(v, point)
	}
	var s ser
	var err error
	for n := order; n <= 4*order+8; n += order {
		s, err = e.toSer(g, t, n)
		if err != nil {
			return 0, e.fail("series", ErrUnsupportedOperator, x, "no series expansion at %s: %v", e.String(point), err)
		}
		if s = e.normalize(s); s.hi() >= order {
			break
		}
	}
	if s.hi() < order {
		return 0, e.fail("series", ErrNoClosedForm, x, "series precision lost at %s", e.String(point))
	}
	var terms []Expr
	for k := s.lo; k < order; k++ {
		terms = append(terms, e.Mul(e.at(s, k), e.Pow(base, e.intn(int64(k)))))
	}
	return e.Add(terms...), nil
}
