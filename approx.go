package gocas

import (
	"math"
	"math/cmplx"
)

// approx evaluates a constant expression in complex floating point. It is
// used only to order roots and to decide signs, never to produce results.
func (e *Engine) approx(x Expr) (complex128, bool) {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		f, _ := n.num.Float64()
		return complex(f, 0), true
	case KindConstant:
		switch n.cnst {
		case ConstPi:
			return complex(math.Pi, 0), true
		case ConstI:
			return 1i, true
		}
		return 0, false
	case KindAdd, KindMul:
		acc := complex(0, 0)
		if n.kind == KindMul {
			acc = 1
		}
		for _, a := range n.args {
			z, ok := e.approx(a)
			if !ok {
				return 0, false
			}
			if n.kind == KindAdd {
				acc += z
			} else {
				acc *= z
			}
		}
		return acc, true
	case KindPow:
		b, ok1 := e.approx(n.args[0])
		p, ok2 := e.approx(n.args[1])
		if !ok1 || !ok2 {
			return 0, false
		}
		return cmplx.Pow(b, p), true
	case KindSin, KindCos, KindExp, KindLog:
		z, ok := e.approx(n.args[0])
		if !ok {
			return 0, false
		}
		switch n.kind {
		case KindSin:
			return cmplx.Sin(z), true
		case KindCos:
			return cmplx.Cos(z), true
		case KindExp:
			return cmplx.Exp(z), true
		}
		return cmplx.Log(z), true
	}
	return 0, false
}

func cmplxAbs(z complex128) float64 { return cmplx.Abs(z) }

// realSign returns the sign of a constant that evaluates to a real number.
func (e *Engine) realSign(x Expr) (int, bool) {
	if r := e.rat(x); r != nil {
		return r.Sign(), true
	}
	z, ok := e.approx(x)
	if !ok || cmplx.IsNaN(z) || cmplx.IsInf(z) {
		return 0, false
	}
	scale := math.Max(1, math.Abs(real(z)))
	if math.Abs(imag(z)) > 1e-9*scale {
		return 0, false
	}
	switch {
	case real(z) > 1e-12*scale:
		return 1, true
	case real(z) < -1e-12*scale:
		return -1, true
	}
	return 0, false
}
