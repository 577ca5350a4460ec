package gocas

// Diff returns the derivative of x with respect to the symbol v.
func (e *Engine) Diff(x, v Expr) (Expr, error) {
	if err := e.symbolArg("diff", v); err != nil {
		return 0, err
	}
	return e.diff(x, v, make(map[Expr]Expr))
}

// DiffN returns the n-th derivative of x with respect to v.
func (e *Engine) DiffN(x, v Expr, n int) (Expr, error) {
	if n < 0 {
		return 0, opErr("diff", ErrInvalidArgument, "negative derivative order %d", n)
	}
	if err := e.symbolArg("diff", v); err != nil {
		return 0, err
	}
	var err error
	for i := 0; i < n; i++ {
		if x, err = e.diff(x, v, make(map[Expr]Expr)); err != nil {
			return 0, err
		}
	}
	return x, nil
}

func (e *Engine) diff(x, v Expr, memo map[Expr]Expr) (Expr, error) {
	if x == v {
		return e.one, nil
	}
	if !e.Has(x, v) {
		return e.zero, nil
	}
	if d, ok := memo[x]; ok {
		return d, nil
	}
	n := e.node(x)
	var d Expr
	switch n.kind {
	case KindAdd:
		terms := make([]Expr, len(n.args))
		for i, t := range n.args {
			dt, err := e.diff(t, v, memo)
			if err != nil {
				return 0, err
			}
			terms[i] = dt
		}
		d = e.Add(terms...)
	case KindMul:
		terms := make([]Expr, 0, len(n.args))
		for i, f := range n.args {
			df, err := e.diff(f, v, memo)
			if err != nil {
				return 0, err
			}
			if df == e.zero {
				continue
			}
			fs := make([]Expr, 0, len(n.args))
			fs = append(fs, n.args[:i]...)
			fs = append(fs, df)
			fs = append(fs, n.args[i+1:]...)
			terms = append(terms, e.Mul(fs...))
		}
		d = e.Add(terms...)
	case KindPow:
		b, p := n.args[0], n.args[1]
		db, err := e.diff(b, v, memo)
		if err != nil {
			return 0, err
		}
		dp, err := e.diff(p, v, memo)
		if err != nil {
			return 0, err
		}
		switch {
		case dp == e.zero:
			// p * b^(p-1) * b'
			d = e.Mul(p, e.Pow(b, e.Sub(p, e.one)), db)
		case db == e.zero:
			// b^p * log(b) * p'
			d = e.Mul(x, e.Log(b), dp)
		default:
			d = e.Mul(x, e.Add(e.Mul(dp, e.Log(b)), e.Mul(p, db, e.Pow(b, e.negOne))))
		}
	case KindSin:
		du, err := e.diff(n.args[0], v, memo)
		if err != nil {
			return 0, err
		}
		d = e.Mul(e.Cos(n.args[0]), du)
	case KindCos:
		du, err := e.diff(n.args[0], v, memo)
		if err != nil {
			return 0, err
		}
		d = e.Mul(e.negOne, e.Sin(n.args[0]), du)
	case KindExp:
		du, err := e.diff(n.args[0], v, memo)
		if err != nil {
			return 0, err
		}
		d = e.Mul(x, du)
	case KindLog:
		du, err := e.diff(n.args[0], v, memo)
		if err != nil {
			return 0, err
		}
		d = e.Div(du, n.args[0])
	case KindApply:
		return 0, e.fail("diff", ErrUnsupportedOperator, x, "no derivative rule for %s", n.name)
	default:
		return 0, e.fail("diff", ErrUnsupportedOperator, x, "no derivative rule for %s", n.kind)
	}
	memo[x] = d
	return d, nil
}
