package gocas

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Direction selects the side from which a limit point is approached.
type Direction int

const (
	TwoSided Direction = iota
	FromAbove
	FromBelow
)

func (d Direction) String() string {
	switch d {
	case FromAbove:
		return "+"
	case FromBelow:
		return "-"
	}
	return "+-"
}

// ParseDirection accepts "+", "-", "+-" and the words right, left and both.
// The empty string is TwoSided.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "+-", "-+", "both", "two-sided":
		return TwoSided, nil
	case "+", "right", "above":
		return FromAbove, nil
	case "-", "left", "below":
		return FromBelow, nil
	}
	return 0, opErr("limit", ErrInvalidArgument, "unknown direction %q", s)
}

var errUndecided = errors.New("limit cannot be determined")

// maxLHopital bounds nested applications of L'Hopital's rule.
const maxLHopital = 4

// Limit returns the limit of x as v approaches point. Two-sided limits
// whose one-sided values differ, and oscillating limits, fail with
// ErrLimitDoesNotExist. The direction is ignored at oo and -oo.
func (e *Engine) Limit(x, v, point Expr, dir Direction) (Expr, error) {
	if err := e.symbolArg("limit", v); err != nil {
		return 0, err
	}
	if point == 0 || int(point) >= len(e.nodes) {
		return 0, opErr("limit", ErrInvalidArgument, "invalid point handle")
	}
	if e.Has(point, v) || point == e.nan || point == e.zinf {
		return 0, e.fail("limit", ErrInvalidArgument, point, "invalid limit point")
	}
	if !e.Has(x, v) {
		return x, nil
	}
	t := e.sym(e.reg.dummy("t"))
	switch {
	case point == e.inf:
		return e.limitResult(x, e.subs(x, v, e.Pow(t, e.negOne)), t)
	case e.isNegInf(point):
		return e.limitResult(x, e.subs(x, v, e.Neg(e.Pow(t, e.negOne))), t)
	}
	if y := e.subs(x, v, point); e.isFinite(y) {
		return y, nil
	}
	above := func() (Expr, error) { return e.limitResult(x, e.subs(x, v, e.Add(point, t)), t) }
	below := func() (Expr, error) { return e.limitResult(x, e.subs(x, v, e.Sub(point, t)), t) }
	switch dir {
	case FromAbove:
		return above()
	case FromBelow:
		return below()
	}
	a, err := above()
	if err != nil {
		return 0, err
	}
	b, err := below()
	if err != nil {
		return 0, err
	}
	if a != b && !e.isZero(e.Sub(a, b)) {
		return 0, e.fail("limit", ErrLimitDoesNotExist, x,
			"one-sided limits differ at %s: %s from above, %s from below", e.String(point), e.String(a), e.String(b))
	}
	return a, nil
}

// limitResult maps internal failures of limitZero onto engine errors.
func (e *Engine) limitResult(x, g, t Expr) (Expr, error) {
	r, err := e.limitZero(g, t, 0)
	switch {
	case errors.Is(err, errOscillates):
		return 0, e.fail("limit", ErrLimitDoesNotExist, x, "expression oscillates")
	case err != nil:
		return 0, e.fail("limit", ErrNoClosedForm, x, "%v", err)
	case r == e.nan:
		return 0, e.fail("limit", ErrNoClosedForm, x, "indeterminate form")
	}
	return r, nil
}

// limitZero computes the limit of g as t tends to 0 from above.
func (e *Engine) limitZero(g, t Expr, depth int) (Expr, error) {
	if !e.Has(g, t) {
		return g, nil
	}
	if depth > e.opts.maxDepth {
		return 0, errUndecided
	}
	order := e.opts.seriesOrder
	for attempt := 0; attempt < 3; attempt++ {
		s, err := e.toSer(g, t, order)
		if err != nil {
			e.log.Debug("limit: series failed", slog.Any("expr", e.logValue(g)), slog.String("reason", err.Error()))
			break
		}
		s = e.normalize(s)
		if len(s.c) > 0 {
			return e.leading(s.c[0], s.lo), nil
		}
		order *= 2
	}
	return e.limitStruct(g, t, depth)
}

// leading returns the limit of c*t^k as t tends to 0 from above.
func (e *Engine) leading(c Expr, k int) Expr {
	switch {
	case k > 0:
		return e.zero
	case k == 0:
		return c
	}
	return e.signedInf(c)
}

// signedInf returns c*oo, resolving the sign of real constants.
func (e *Engine) signedInf(c Expr) Expr {
	if s, ok := e.realSign(c); ok {
		if s > 0 {
			return e.inf
		}
		if s < 0 {
			return e.negInf()
		}
	}
	return e.Mul(c, e.inf)
}

// limitStruct applies limit rules structurally when no series exists.
func (e *Engine) limitStruct(g, t Expr, depth int) (Expr, error) {
	if !e.Has(g, t) {
		return g, nil
	}
	if g == t {
		return e.zero, nil
	}
	sub := func(x Expr) (Expr, error) { return e.limitZero(x, t, depth+1) }
	n := e.node(g)
	switch n.kind {
	case KindAdd:
		vals := make([]Expr, len(n.args))
		var pos, neg bool
		for i, a := range n.args {
			l, err := sub(a)
			if err != nil {
				return 0, err
			}
			vals[i] = l
			pos = pos || l == e.inf
			neg = neg || e.isNegInf(l)
		}
		if pos && neg {
			num, den := e.together(g)
			if den != e.one {
				return e.lHopital(num, den, e.one, t, depth)
			}
			return 0, errUndecided
		}
		return e.Add(vals...), nil
	case KindMul:
		return e.limitProduct(n.args, t, depth)
	case KindPow:
		b, p := n.args[0], n.args[1]
		if e.Has(p, t) {
			return sub(e.Exp(e.Mul(p, e.Log(b))))
		}
		lb, err := sub(b)
		if err != nil {
			return 0, err
		}
		if lb == e.zero && e.isNegative(p) {
			return e.signedInf(e.Pow(e.leadSign(b, t), p)), nil
		}
		return e.Pow(lb, p), nil
	case KindExp:
		l, err := sub(n.args[0])
		if err != nil {
			return 0, err
		}
		if l == e.zinf {
			return 0, errUndecided
		}
		return e.Exp(l), nil
	case KindLog:
		l, err := sub(n.args[0])
		if err != nil {
			return 0, err
		}
		if l == e.zero {
			// The real part diverges whichever way the argument vanishes.
			return e.negInf(), nil
		}
		return e.Log(l), nil
	case KindSin, KindCos:
		l, err := sub(n.args[0])
		if err != nil {
			return 0, err
		}
		if e.isInfinite(l) {
			return 0, errOscillates
		}
		return e.rebuild(g, []Expr{l}), nil
	}
	return 0, errUndecided
}

// leadSign returns 1 or -1 for an expression that is eventually positive
// or negative as t tends to 0 from above, and nan when unknown.
func (e *Engine) leadSign(x, t Expr) Expr {
	s, err := e.toSer(x, t, e.opts.seriesOrder)
	if err == nil {
		if s = e.normalize(s); len(s.c) > 0 {
			if sg, ok := e.realSign(s.c[0]); ok && sg != 0 {
				return e.intn(int64(sg))
			}
		}
	}
	return e.nan
}

// limitProduct combines the limits of factors, resolving 0*oo with
// L'Hopital's rule and bounded oscillating factors by squeezing.
func (e *Engine) limitProduct(fs []Expr, t Expr, depth int) (Expr, error) {
	var zeros, infs, others, bounded []Expr
	vals := make([]Expr, 0, len(fs))
	for _, f := range fs {
		l, err := e.limitZero(f, t, depth+1)
		if errors.Is(err, errOscillates) && (e.isKind(f, KindSin) || e.isKind(f, KindCos)) {
			bounded = append(bounded, f)
			continue
		}
		if err != nil {
			return 0, err
		}
		switch {
		case l == e.zero:
			zeros = append(zeros, f)
		case e.isInfinite(l) || e.isKind(l, KindMul) && e.Has(l, e.inf):
			infs = append(infs, f)
		default:
			others = append(others, f)
		}
		vals = append(vals, l)
	}
	if len(bounded) > 0 {
		if len(zeros) > 0 && len(infs) == 0 {
			return e.zero, nil
		}
		return 0, errOscillates
	}
	if len(zeros) == 0 || len(infs) == 0 {
		return e.Mul(vals...), nil
	}
	rest, err := e.limitZero(e.Mul(others...), t, depth+1)
	if err != nil {
		return 0, err
	}
	z, inf := e.Mul(zeros...), e.Mul(infs...)
	// 0*oo as 0/0 and as oo/oo.
	if r, err := e.lHopital(z, e.Pow(inf, e.negOne), rest, t, depth); err == nil {
		return r, nil
	}
	return e.lHopital(inf, e.Pow(z, e.negOne), rest, t, depth)
}

// lHopital returns rest * lim num/den by differentiating once and taking
// the limit of the new quotient.
func (e *Engine) lHopital(num, den, rest, t Expr, depth int) (Expr, error) {
	if depth >= maxLHopital*2 {
		return 0, errUndecided
	}
	dn, err := e.diff(num, t, make(map[Expr]Expr))
	if err != nil {
		return 0, errUndecided
	}
	dd, err := e.diff(den, t, make(map[Expr]Expr))
	if err != nil || dd == e.zero {
		return 0, errUndecided
	}
	l, err := e.limitZero(e.Div(dn, dd), t, depth+2)
	if err != nil {
		return 0, fmt.Errorf("l'hopital: %w", err)
	}
	return e.Mul(rest, l), nil
}
