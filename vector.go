package gocas

// Gradient returns the partial derivatives of x with respect to each of vars.
func (e *Engine) Gradient(x Expr, vars []Expr) ([]Expr, error) {
	if err := e.varsArg("gradient", vars); err != nil {
		return nil, err
	}
	out := make([]Expr, len(vars))
	for i, v := range vars {
		d, err := e.Diff(x, v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// Jacobian returns the matrix whose row i is the gradient of fs[i].
func (e *Engine) Jacobian(fs, vars []Expr) ([][]Expr, error) {
	if len(fs) == 0 {
		return nil, opErr("jacobian", ErrInvalidArgument, "no functions given")
	}
	out := make([][]Expr, len(fs))
	for i, f := range fs {
		row, err := e.Gradient(f, vars)
		if err != nil {
			return nil, err
		}
		out[i] = row
	}
	return out, nil
}

// Hessian returns the symmetric matrix of second partial derivatives of x.
func (e *Engine) Hessian(x Expr, vars []Expr) ([][]Expr, error) {
	g, err := e.Gradient(x, vars)
	if err != nil {
		return nil, err
	}
	return e.Jacobian(g, vars)
}

// Laplacian returns the sum of the unmixed second partial derivatives of x.
func (e *Engine) Laplacian(x Expr, vars []Expr) (Expr, error) {
	if err := e.varsArg("laplacian", vars); err != nil {
		return 0, err
	}
	terms := make([]Expr, len(vars))
	for i, v := range vars {
		d, err := e.DiffN(x, v, 2)
		if err != nil {
			return 0, err
		}
		terms[i] = d
	}
	return e.Add(terms...), nil
}

// varsArg validates a non-empty list of distinct symbols.
func (e *Engine) varsArg(op string, vars []Expr) error {
	if len(vars) == 0 {
		return opErr(op, ErrInvalidArgument, "no variables given")
	}
	seen := make(map[Expr]bool, len(vars))
	for _, v := range vars {
		if err := e.symbolArg(op, v); err != nil {
			return err
		}
		if seen[v] {
			return e.fail(op, ErrInvalidArgument, v, "variable given twice")
		}
		seen[v] = true
	}
	return nil
}

// Divergence returns the sum of d fs[i] / d vars[i].
func (e *Engine) Divergence(fs, vars []Expr) (Expr, error) {
	if len(fs) != len(vars) {
		return 0, opErr("divergence", ErrInvalidArgument, "%d components for %d variables", len(fs), len(vars))
	}
	j, err := e.Jacobian(fs, vars)
	if err != nil {
		return 0, err
	}
	terms := make([]Expr, len(j))
	for i := range j {
		terms[i] = j[i][i]
	}
	return e.Add(terms...), nil
}

// Curl returns the curl of a three-component field.
func (e *Engine) Curl(fs, vars []Expr) ([]Expr, error) {
	if len(fs) != 3 || len(vars) != 3 {
		return nil, opErr("curl", ErrInvalidArgument, "curl needs three components and three variables")
	}
	j, err := e.Jacobian(fs, vars)
	if err != nil {
		return nil, err
	}
	return []Expr{
		e.Sub(j[2][1], j[1][2]),
		e.Sub(j[0][2], j[2][0]),
		e.Sub(j[1][0], j[0][1]),
	}, nil
}
