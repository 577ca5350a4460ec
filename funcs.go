package gocas

import (
	"math/big"
	"unicode"
)

// Sqrt returns the principal square root x^(1/2).
func (e *Engine) Sqrt(x Expr) Expr { return e.Pow(x, e.half) }

// Sin returns sin(u), evaluated at rational multiples of pi with
// denominator 1, 2, 3, 4 or 6.
func (e *Engine) Sin(u Expr) Expr {
	switch {
	case u == e.nan:
		return e.nan
	case u == e.zero:
		return e.zero
	}
	if r, ok := e.piCoeff(u); ok {
		if v, ok := e.sinPi(r); ok {
			return v
		}
	}
	if e.extractsMinus(u) {
		return e.Neg(e.Sin(e.Neg(u)))
	}
	return e.raw(KindSin, u)
}

// Cos returns cos(u), evaluated at the same special points as Sin.
func (e *Engine) Cos(u Expr) Expr {
	switch {
	case u == e.nan:
		return e.nan
	case u == e.zero:
		return e.one
	}
	if r, ok := e.piCoeff(u); ok {
		if v, ok := e.sinPi(new(big.Rat).Add(r, ratHalf)); ok {
			return v
		}
	}
	if e.extractsMinus(u) {
		return e.Cos(e.Neg(u))
	}
	return e.raw(KindCos, u)
}

// Exp returns exp(u). exp(log(v)) is v and exp(c*log(v)) is v^c.
func (e *Engine) Exp(u Expr) Expr {
	switch {
	case u == e.nan, u == e.zinf:
		return e.nan
	case u == e.zero:
		return e.one
	case u == e.inf:
		return e.inf
	case e.isNegInf(u):
		return e.zero
	}
	n := e.node(u)
	switch n.kind {
	case KindLog:
		return n.args[0]
	case KindMul:
		if len(n.args) == 2 && e.isNumber(n.args[0]) && e.isKind(n.args[1], KindLog) {
			return e.Pow(e.arg(n.args[1]), n.args[0])
		}
		if r, ok := e.iPiCoeff(u); ok {
			switch ratMod2(r).RatString() {
			case "0":
				return e.one
			case "1/2":
				return e.imag
			case "1":
				return e.negOne
			case "3/2":
				return e.raw(KindMul, e.negOne, e.imag)
			}
		}
	case KindAdd:
		var logs, others []Expr
		for _, t := range n.args {
			c, rest := e.splitCoeff(t)
			if e.isKind(rest, KindLog) {
				logs = append(logs, e.Pow(e.arg(rest), e.num(new(big.Rat).Set(c))))
				continue
			}
			others = append(others, t)
		}
		if len(logs) > 0 {
			return e.Mul(append(logs, e.Exp(e.Add(others...)))...)
		}
	}
	return e.raw(KindExp, u)
}

// Log returns the principal natural logarithm of u.
func (e *Engine) Log(u Expr) Expr {
	switch {
	case u == e.nan:
		return e.nan
	case u == e.one:
		return e.zero
	case u == e.zero, u == e.zinf:
		return e.zinf
	case u == e.inf, e.isNegInf(u):
		return e.inf
	case u == e.e:
		return e.one
	case u == e.imag:
		return e.Mul(e.half, e.imag, e.pi)
	}
	n := e.node(u)
	switch n.kind {
	case KindNumber:
		r := n.num
		if r.Sign() < 0 {
			return e.Add(e.Log(e.num(ratAbs(r))), e.Mul(e.imag, e.pi))
		}
		if !r.IsInt() && r.Num().Cmp(big.NewInt(1)) == 0 {
			return e.Neg(e.Log(e.num(new(big.Rat).SetInt(r.Denom()))))
		}
	case KindMul:
		if len(n.args) == 2 && n.args[0] == e.negOne && n.args[1] == e.imag {
			return e.Mul(e.Frac(-1, 2), e.imag, e.pi)
		}
	case KindExp:
		if e.isNumber(n.args[0]) {
			return n.args[0]
		}
	case KindPow:
		if br := e.rat(n.args[0]); br != nil && br.Sign() > 0 && e.isNumber(n.args[1]) {
			return e.Mul(n.args[1], e.Log(n.args[0]))
		}
	}
	return e.raw(KindLog, u)
}

var builtinArity = map[string]int{"sin": 1, "cos": 1, "exp": 1, "log": 1, "ln": 1, "sqrt": 1}

// Apply returns name(args...). The built-in names sin, cos, exp, log (or
// ln) and sqrt map to their canonical constructors; any other name builds
// an uninterpreted function application.
func (e *Engine) Apply(name string, args ...Expr) (Expr, error) {
	if !validFuncName(name) {
		return 0, opErr("apply", ErrInvalidArgument, "invalid function name %q", name)
	}
	if len(args) == 0 {
		return 0, opErr("apply", ErrInvalidArgument, "%s: no arguments", name)
	}
	if n, ok := builtinArity[name]; ok {
		if len(args) != n {
			return 0, opErr("apply", ErrInvalidArgument, "%s takes %d argument, got %d", name, n, len(args))
		}
		switch name {
		case "sin":
			return e.Sin(args[0]), nil
		case "cos":
			return e.Cos(args[0]), nil
		case "exp":
			return e.Exp(args[0]), nil
		case "sqrt":
			return e.Sqrt(args[0]), nil
		}
		return e.Log(args[0]), nil
	}
	return e.rawApply(name, args), nil
}

func validFuncName(name string) bool {
	if name == "" || reservedNames[name] {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// piCoeff matches r*pi.
func (e *Engine) piCoeff(u Expr) (*big.Rat, bool) {
	if u == e.pi {
		return ratOne, true
	}
	n := e.node(u)
	if n.kind == KindMul && len(n.args) == 2 && n.args[1] == e.pi {
		if r := e.rat(n.args[0]); r != nil {
			return r, true
		}
	}
	return nil, false
}

// iPiCoeff matches r*i*pi.
func (e *Engine) iPiCoeff(u Expr) (*big.Rat, bool) {
	n := e.node(u)
	if n.kind != KindMul {
		return nil, false
	}
	switch len(n.args) {
	case 2:
		if n.args[0] == e.imag && n.args[1] == e.pi {
			return ratOne, true
		}
	case 3:
		if r := e.rat(n.args[0]); r != nil && n.args[1] == e.imag && n.args[2] == e.pi {
			return r, true
		}
	}
	return nil, false
}

// sinPi evaluates sin(r*pi) from the table of special angles.
func (e *Engine) sinPi(r *big.Rat) (Expr, bool) {
	m := ratMod2(r)
	neg := false
	if m.Cmp(ratOne) >= 0 {
		m.Sub(m, ratOne)
		neg = true
	}
	if m.Cmp(ratHalf) > 0 {
		m.Sub(ratOne, m)
	}
	var v Expr
	switch m.RatString() {
	case "0":
		v = e.zero
	case "1/6":
		v = e.half
	case "1/4":
		v = e.Mul(e.half, e.Sqrt(e.two))
	case "1/3":
		v = e.Mul(e.half, e.Sqrt(e.intn(3)))
	case "1/2":
		v = e.one
	default:
		return 0, false
	}
	if neg {
		v = e.Neg(v)
	}
	return v, true
}

// extractsMinus reports whether u is a number or product with a negative
// coefficient, so that odd and even symmetries apply.
func (e *Engine) extractsMinus(u Expr) bool {
	n := e.node(u)
	if n.kind != KindNumber && n.kind != KindMul {
		return false
	}
	if e.isNegInf(u) {
		return true
	}
	return e.isNegative(u)
}
