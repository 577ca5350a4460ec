package gocas

import (
	"math/big"
	"strings"
)

// Int returns the integer n.
func (e *Engine) Int(n int64) Expr { return e.intn(n) }

// Frac returns the rational p/q. It panics if q is zero.
func (e *Engine) Frac(p, q int64) Expr {
	if q == 0 {
		panic("gocas: denominator is zero")
	}
	return e.num(big.NewRat(p, q))
}

// Number returns the rational r. The engine keeps its own copy.
func (e *Engine) Number(r *big.Rat) Expr { return e.num(new(big.Rat).Set(r)) }

// ParseNumber parses an exact number such as "3", "-2/7" or "0.125".
func (e *Engine) ParseNumber(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	r, ok := new(big.Rat).SetString(s)
	if !ok || strings.ContainsAny(s, "eE") {
		return 0, opErr("number", ErrInvalidArgument, "%q is not an exact number", s)
	}
	return e.num(r), nil
}

// Pi returns the constant pi.
func (e *Engine) Pi() Expr { return e.pi }

// I returns the imaginary unit.
func (e *Engine) I() Expr { return e.imag }

// E returns Euler's number, exp(1).
func (e *Engine) E() Expr { return e.e }

// Infinity returns positive real infinity.
func (e *Engine) Infinity() Expr { return e.inf }

// NegInfinity returns negative real infinity.
func (e *Engine) NegInfinity() Expr { return e.negInf() }

// ComplexInfinity returns the unsigned infinity produced by division by zero.
func (e *Engine) ComplexInfinity() Expr { return e.zinf }

// NaN returns the undefined value.
func (e *Engine) NaN() Expr { return e.nan }

// Symbol declares name in the engine's registry and returns it as an expression.
func (e *Engine) Symbol(name string) (Expr, error) {
	s, err := e.reg.Symbol(name)
	if err != nil {
		return 0, err
	}
	return e.sym(s), nil
}

// MustSymbol is like Symbol but panics on an invalid name.
func (e *Engine) MustSymbol(name string) Expr {
	x, err := e.Symbol(name)
	if err != nil {
		panic(err)
	}
	return x
}

// Var wraps a symbol from the engine's registry as an expression. A symbol
// declared in another registry fails with ErrInvalidArgument.
func (e *Engine) Var(s Symbol) (Expr, error) {
	if own, ok := e.reg.Lookup(s.Name()); !ok || own != s {
		return 0, opErr("var", ErrInvalidArgument, "symbol %q is not declared in this registry", s.Name())
	}
	return e.sym(s), nil
}

func (e *Engine) negInf() Expr { return e.raw(KindMul, e.negOne, e.inf) }

func (e *Engine) isNegInf(x Expr) bool {
	n := e.node(x)
	return n.kind == KindMul && len(n.args) == 2 && n.args[0] == e.negOne && n.args[1] == e.inf
}

// isInfinite reports whether x is oo, -oo or zoo.
func (e *Engine) isInfinite(x Expr) bool {
	return x == e.inf || x == e.zinf || e.isNegInf(x)
}

// isFinite reports whether x contains no infinity and no nan.
func (e *Engine) isFinite(x Expr) bool {
	n := e.node(x)
	if n.kind == KindConstant {
		return n.cnst == ConstPi || n.cnst == ConstI
	}
	for _, a := range n.args {
		if !e.isFinite(a) {
			return false
		}
	}
	return true
}

// splitCoeff splits x into a rational coefficient and the remaining factor.
// The remainder of a number is one.
func (e *Engine) splitCoeff(x Expr) (*big.Rat, Expr) {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		return n.num, e.one
	case KindMul:
		if r := e.rat(n.args[0]); r != nil {
			if len(n.args) == 2 {
				return r, n.args[1]
			}
			return r, e.raw(KindMul, n.args[1:]...)
		}
	}
	return ratOne, x
}

// withCoeff multiplies the canonical non-numeric factor rest by c.
func (e *Engine) withCoeff(c *big.Rat, rest Expr) Expr {
	if c.Cmp(ratOne) == 0 {
		return rest
	}
	if rest == e.one {
		return e.num(new(big.Rat).Set(c))
	}
	switch e.Kind(rest) {
	case KindMul:
		return e.raw(KindMul, append([]Expr{e.num(new(big.Rat).Set(c))}, e.args(rest)...)...)
	case KindAdd:
		return e.Mul(e.num(new(big.Rat).Set(c)), rest)
	}
	return e.raw(KindMul, e.num(new(big.Rat).Set(c)), rest)
}

// asPow splits x into base and exponent.
func (e *Engine) asPow(x Expr) (Expr, Expr) {
	n := e.node(x)
	if n.kind == KindPow {
		return n.args[0], n.args[1]
	}
	return x, e.one
}

func (e *Engine) isNumber(x Expr) bool { return e.node(x).kind == KindNumber }

func (e *Engine) isInteger(x Expr) bool {
	r := e.rat(x)
	return r != nil && r.IsInt()
}

// isNegative reports whether x is a number or a product with a negative
// rational coefficient.
func (e *Engine) isNegative(x Expr) bool {
	c, _ := e.splitCoeff(x)
	return c.Sign() < 0
}

// isPositive reports whether x is provably a positive real.
func (e *Engine) isPositive(x Expr) bool {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		return n.num.Sign() > 0
	case KindConstant:
		return n.cnst == ConstPi || n.cnst == ConstInfinity
	case KindExp:
		return e.isReal(n.args[0])
	case KindPow:
		return e.isPositive(n.args[0]) && e.isReal(n.args[1])
	case KindMul, KindAdd:
		for _, a := range n.args {
			if !e.isPositive(a) {
				return false
			}
		}
		return true
	}
	return false
}

// isReal reports whether x is provably real. Symbols are not assumed real.
func (e *Engine) isReal(x Expr) bool {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		return true
	case KindConstant:
		return n.cnst == ConstPi || n.cnst == ConstInfinity
	case KindAdd, KindMul:
		for _, a := range n.args {
			if !e.isReal(a) {
				return false
			}
		}
		return true
	case KindSin, KindCos, KindExp:
		return e.isReal(n.args[0])
	case KindLog:
		return e.isPositive(n.args[0])
	case KindPow:
		return e.isPositive(n.args[0]) && e.isReal(n.args[1]) ||
			e.isReal(n.args[0]) && e.isInteger(n.args[1])
	}
	return false
}

var (
	ratOne  = big.NewRat(1, 1)
	ratHalf = big.NewRat(1, 2)
)

func ratFloor(r *big.Rat) *big.Int {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(r.Num(), r.Denom(), m)
	return q
}

func ratInt(n *big.Int) *big.Rat { return new(big.Rat).SetInt(n) }

func ratAbs(r *big.Rat) *big.Rat { return new(big.Rat).Abs(r) }

// ratMod2 reduces r into [0, 2).
func ratMod2(r *big.Rat) *big.Rat {
	h := new(big.Rat).Quo(r, big.NewRat(2, 1))
	f := ratInt(ratFloor(h))
	return new(big.Rat).Sub(r, f.Mul(f, big.NewRat(2, 1)))
}

// ratPow raises r to the integer power n; r must be non-zero when n < 0.
func ratPow(r *big.Rat, n int64) *big.Rat {
	neg := n < 0
	if neg {
		n = -n
	}
	k := big.NewInt(n)
	num := new(big.Int).Exp(r.Num(), k, nil)
	den := new(big.Int).Exp(r.Denom(), k, nil)
	if neg {
		num, den = den, num
	}
	return new(big.Rat).SetFrac(num, den)
}

// intRoot returns the floor of the k-th root of a non-negative n.
func intRoot(n *big.Int, k int) *big.Int {
	if n.Sign() == 0 || k == 1 {
		return new(big.Int).Set(n)
	}
	if k == 2 {
		return new(big.Int).Sqrt(n)
	}
	// Newton iteration from an overestimate.
	x := new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen()/k+1))
	kk := big.NewInt(int64(k))
	km1 := big.NewInt(int64(k - 1))
	for {
		// y = ((k-1)x + n / x^(k-1)) / k
		p := new(big.Int).Exp(x, km1, nil)
		y := new(big.Int).Quo(n, p)
		y.Add(y, new(big.Int).Mul(km1, x))
		y.Quo(y, kk)
		if y.Cmp(x) >= 0 {
			return x
		}
		x = y
	}
}

// smallPrimes lists the primes used for trial division of radicands.
var smallPrimes = func() []int64 {
	const limit = 1000
	sieve := make([]bool, limit+1)
	var ps []int64
	for i := 2; i <= limit; i++ {
		if sieve[i] {
			continue
		}
		ps = append(ps, int64(i))
		for j := i * i; j <= limit; j += i {
			sieve[j] = true
		}
	}
	return ps
}()

// factorInt splits n > 0 into prime powers by trial division. A cofactor
// without small prime factors is returned as a single entry; if it is a
// perfect power its root is used instead.
func factorInt(n *big.Int, root int) map[string]*primePower {
	out := make(map[string]*primePower)
	add := func(p *big.Int, k int64) {
		key := p.String()
		if pp, ok := out[key]; ok {
			pp.exp += k
			return
		}
		out[key] = &primePower{base: new(big.Int).Set(p), exp: k}
	}
	m := new(big.Int).Set(n)
	r := new(big.Int)
	for _, p := range smallPrimes {
		bp := big.NewInt(p)
		if new(big.Int).Mul(bp, bp).Cmp(m) > 0 {
			break
		}
		var k int64
		for {
			q, rem := new(big.Int).QuoRem(m, bp, r)
			if rem.Sign() != 0 {
				break
			}
			m = q
			k++
		}
		if k > 0 {
			add(bp, k)
		}
	}
	if m.Cmp(big.NewInt(1)) > 0 {
		if root > 1 {
			if s := intRoot(m, root); new(big.Int).Exp(s, big.NewInt(int64(root)), nil).Cmp(m) == 0 {
				add(s, int64(root))
				return out
			}
		}
		add(m, 1)
	}
	return out
}

type primePower struct {
	base *big.Int
	exp  int64
}
