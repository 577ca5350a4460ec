package gocas

import (
	"math/big"
	"strings"
)

const (
	precAdd  = 10
	precMul  = 20
	precPow  = 30
	precAtom = 40
)

// String renders x as plain text, e.g. "x^2 - 4*x + 4" or "sqrt(2)*i".
// The output is deterministic for a given canonical expression.
func (e *Engine) String(x Expr) string {
	if s, ok := e.strs[x]; ok {
		return s
	}
	s := e.str(x)
	e.strs[x] = s
	return s
}

func (e *Engine) str(x Expr) string {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		return ratString(n.num)
	case KindSymbol:
		return n.sym.name
	case KindConstant:
		return n.cnst.String()
	case KindAdd:
		var b strings.Builder
		for i, t := range n.args {
			s := e.String(t)
			switch {
			case i == 0:
				b.WriteString(s)
			case strings.HasPrefix(s, "-"):
				b.WriteString(" - ")
				b.WriteString(s[1:])
			default:
				b.WriteString(" + ")
				b.WriteString(s)
			}
		}
		return b.String()
	case KindMul:
		return e.mulStr(x)
	case KindPow:
		return e.powStr(n.args[0], n.args[1])
	case KindExp:
		if x == e.e {
			return "E"
		}
		return "exp(" + e.String(n.args[0]) + ")"
	case KindSin, KindCos, KindLog:
		return n.kind.String() + "(" + e.String(n.args[0]) + ")"
	case KindApply:
		parts := make([]string, len(n.args))
		for i, a := range n.args {
			parts[i] = e.String(a)
		}
		return n.name + "(" + strings.Join(parts, ", ") + ")"
	}
	return "?"
}

func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}

// prec returns the binding strength of the printed form of x.
func (e *Engine) prec(x Expr) int {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		if n.num.Sign() < 0 || !n.num.IsInt() {
			return precMul
		}
	case KindAdd:
		return precAdd
	case KindMul:
		return precMul
	case KindPow:
		r := e.rat(n.args[1])
		switch {
		case r == nil:
			return precPow
		case r.Cmp(ratHalf) == 0:
			return precAtom
		case r.Sign() < 0:
			return precMul
		}
		return precPow
	}
	return precAtom
}

func (e *Engine) wrapStr(x Expr, min int) string {
	s := e.String(x)
	if e.prec(x) < min {
		return "(" + s + ")"
	}
	return s
}

func (e *Engine) powStr(b, x Expr) string {
	if r := e.rat(x); r != nil {
		switch {
		case r.Cmp(ratHalf) == 0:
			return "sqrt(" + e.String(b) + ")"
		case r.Sign() < 0:
			return "1/" + e.denStr(b, new(big.Rat).Neg(r), true)
		}
	}
	return e.wrapStr(b, precPow+1) + "^" + e.expStr(x)
}

func (e *Engine) expStr(x Expr) string {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		if n.num.IsInt() && n.num.Sign() >= 0 {
			return n.num.Num().String()
		}
	case KindSymbol, KindConstant:
		return e.String(x)
	}
	return "(" + e.String(x) + ")"
}

// denStr prints b^r for r > 0 as a denominator piece. When alone the piece
// is parenthesised unless it binds tighter than a product.
func (e *Engine) denStr(b Expr, r *big.Rat, alone bool) string {
	var s string
	var p int
	switch {
	case r.Cmp(ratOne) == 0:
		s, p = e.String(b), e.prec(b)
	case r.Cmp(ratHalf) == 0:
		s, p = "sqrt("+e.String(b)+")", precAtom
	default:
		s, p = e.wrapStr(b, precPow+1)+"^"+e.expStr(e.num(r)), precPow
	}
	if p < precMul || alone && p == precMul {
		return "(" + s + ")"
	}
	return s
}

func (e *Engine) mulStr(x Expr) string {
	c, _ := e.splitCoeff(x)
	fs := e.args(x)
	if e.isNumber(fs[0]) {
		fs = fs[1:]
	}
	var num, den []string
	if c.Sign() < 0 {
		c = new(big.Rat).Neg(c)
	}
	if !c.IsInt() || c.Num().Cmp(big.NewInt(1)) != 0 {
		if c.Num().Cmp(big.NewInt(1)) != 0 {
			num = append(num, c.Num().String())
		}
		if !c.IsInt() {
			den = append(den, c.Denom().String())
		}
	}
	type piece struct {
		b Expr
		r *big.Rat
	}
	var dens []piece
	for _, f := range fs {
		b, ex := e.asPow(f)
		if r := e.rat(ex); r != nil && r.Sign() < 0 {
			dens = append(dens, piece{b, new(big.Rat).Neg(r)})
			continue
		}
		num = append(num, e.wrapStr(f, precMul))
	}
	for _, d := range dens {
		den = append(den, e.denStr(d.b, d.r, false))
	}
	sign := ""
	if e.isNegative(x) {
		sign = "-"
	}
	ns := strings.Join(num, "*")
	if ns == "" {
		ns = "1"
	}
	if len(den) == 0 {
		return sign + ns
	}
	ds := strings.Join(den, "*")
	if len(den) > 1 {
		ds = "(" + ds + ")"
	} else if len(dens) == 1 && e.prec(dens[0].b) == precMul && dens[0].r.Cmp(ratOne) == 0 {
		ds = "(" + ds + ")"
	}
	return sign + ns + "/" + ds
}

// Srepr renders the structure of x, e.g. "Pow(Symbol('x'), Integer(2))".
func (e *Engine) Srepr(x Expr) string {
	var b strings.Builder
	e.srepr(&b, x)
	return b.String()
}

func (e *Engine) srepr(b *strings.Builder, x Expr) {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		if n.num.IsInt() {
			b.WriteString("Integer(" + n.num.Num().String() + ")")
		} else {
			b.WriteString("Rational(" + n.num.Num().String() + ", " + n.num.Denom().String() + ")")
		}
		return
	case KindSymbol:
		b.WriteString("Symbol('" + n.sym.name + "')")
		return
	case KindConstant:
		b.WriteString(n.cnst.String())
		return
	case KindAdd:
		b.WriteString("Add(")
	case KindMul:
		b.WriteString("Mul(")
	case KindPow:
		b.WriteString("Pow(")
	case KindApply:
		b.WriteString("Function('" + n.name + "')(")
	default:
		b.WriteString(n.kind.String() + "(")
	}
	for i, a := range n.args {
		if i > 0 {
			b.WriteString(", ")
		}
		e.srepr(b, a)
	}
	b.WriteString(")")
}
