package tools

import (
	"strconv"
	"strings"

	"github.com/njchilds90/gocas"
)

type tool struct {
	name        string
	description string
	params      []param
	run         func(*Session, params) (value, error)
}

type param struct {
	name     string
	kind     string // expression, symbol, expressions, symbols, string, integer
	required bool
	desc     string
}

func expr(name, desc string) param { return param{name, "expression", true, desc} }

func sym(name string) param { return param{name, "symbol", true, "symbol name or tree"} }

func vars() param {
	return param{"vars", "symbols", true, "array of distinct symbol names or trees"}
}

func opt(p param) param {
	p.required = false
	return p
}

var registry map[string]tool

func init() {
	registry = make(map[string]tool)
	for _, t := range catalog() {
		registry[t.name] = t
	}
}

// unary builds a tool mapping the "expr" param through f.
func unary(name, description string, f func(*gocas.Engine, gocas.Expr) gocas.Expr) tool {
	return tool{
		name:        name,
		description: description,
		params:      []param{expr("expr", "input expression")},
		run: func(s *Session, p params) (value, error) {
			x, err := p.expr("expr")
			if err != nil {
				return value{}, err
			}
			return exprValue(f(s.e, x)), nil
		},
	}
}

func catalog() []tool {
	return []tool{
		unary("expand", "Distribute products and integer powers over sums", (*gocas.Engine).Expand),
		unary("factor", "Factor a polynomial with rational coefficients", (*gocas.Engine).Factor),
		unary("simplify", "Cancel common factors and apply sin^2 + cos^2 = 1", (*gocas.Engine).Simplify),
		unary("cancel", "Put an expression over a common denominator and cancel", (*gocas.Engine).Cancel),
		unary("latex", "Render an expression as LaTeX", func(_ *gocas.Engine, x gocas.Expr) gocas.Expr { return x }),
		{
			name:        "diff",
			description: "n-th derivative with respect to var (n defaults to 1)",
			params:      []param{expr("expr", "expression to differentiate"), sym("var"), opt(param{"n", "integer", false, "order"})},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				n, err := p.optInt("n", 1)
				if err != nil {
					return value{}, err
				}
				d, err := s.e.DiffN(x, v, n)
				return exprValue(d), err
			},
		},
		{
			name:        "integrate",
			description: "Antiderivative, or definite integral when lower and upper are given",
			params: []param{
				expr("expr", "integrand"), sym("var"),
				opt(expr("lower", "lower bound, may be -oo")), opt(expr("upper", "upper bound, may be oo")),
			},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				if !p.has("lower") && !p.has("upper") {
					r, err := s.e.Integrate(x, v)
					return exprValue(r), err
				}
				lo, err := p.expr("lower")
				if err != nil {
					return value{}, err
				}
				hi, err := p.expr("upper")
				if err != nil {
					return value{}, err
				}
				r, err := s.e.IntegrateDefinite(x, v, lo, hi)
				return exprValue(r), err
			},
		},
		{
			name:        "limit",
			description: "Limit as var approaches point; dir is +, - or +- (default)",
			params: []param{
				expr("expr", "expression"), sym("var"), expr("point", "limit point, may be oo or -oo"),
				opt(param{"dir", "string", false, "direction"}),
			},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				pt, err := p.expr("point")
				if err != nil {
					return value{}, err
				}
				ds, err := p.optString("dir", "")
				if err != nil {
					return value{}, err
				}
				dir, err := gocas.ParseDirection(ds)
				if err != nil {
					return value{}, err
				}
				r, err := s.e.Limit(x, v, pt, dir)
				return exprValue(r), err
			},
		},
		{
			name:        "solve",
			description: "Roots of expr = 0 in var, including complex roots",
			params:      []param{expr("expr", "left-hand side of expr = 0"), sym("var")},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				roots, err := s.e.Solve(x, v)
				return setValue(roots), err
			},
		},
		{
			name:        "solve_system",
			description: "Solve the linear system eqs[i] = 0 for vars",
			params:      []param{{"eqs", "expressions", true, "left-hand sides of eqs[i] = 0"}, vars()},
			run: func(s *Session, p params) (value, error) {
				eqs, err := p.exprList("eqs")
				if err != nil {
					return value{}, err
				}
				vs, err := p.symbolList("vars")
				if err != nil {
					return value{}, err
				}
				sol, err := s.e.SolveLinear(eqs, vs)
				return listValue(sol), err
			},
		},
		{
			name:        "gradient",
			description: "Partial derivatives of expr with respect to each of vars",
			params:      []param{expr("expr", "scalar expression"), vars()},
			run: func(s *Session, p params) (value, error) {
				x, vs, err := exprAndVars(p)
				if err != nil {
					return value{}, err
				}
				g, err := s.e.Gradient(x, vs)
				return listValue(g), err
			},
		},
		{
			name:        "jacobian",
			description: "Matrix of partial derivatives of each of exprs with respect to vars",
			params:      []param{{"exprs", "expressions", true, "component functions"}, vars()},
			run: func(s *Session, p params) (value, error) {
				fs, vs, err := fieldAndVars(p)
				if err != nil {
					return value{}, err
				}
				j, err := s.e.Jacobian(fs, vs)
				return matrixValue(j), err
			},
		},
		{
			name:        "hessian",
			description: "Matrix of second partial derivatives of expr",
			params:      []param{expr("expr", "scalar expression"), vars()},
			run: func(s *Session, p params) (value, error) {
				x, vs, err := exprAndVars(p)
				if err != nil {
					return value{}, err
				}
				h, err := s.e.Hessian(x, vs)
				return matrixValue(h), err
			},
		},
		{
			name:        "laplacian",
			description: "Sum of the second partial derivatives of expr in each of vars",
			params:      []param{expr("expr", "scalar expression"), vars()},
			run: func(s *Session, p params) (value, error) {
				x, vs, err := exprAndVars(p)
				if err != nil {
					return value{}, err
				}
				l, err := s.e.Laplacian(x, vs)
				return exprValue(l), err
			},
		},
		{
			name:        "divergence",
			description: "Divergence of the vector field exprs over vars",
			params:      []param{{"exprs", "expressions", true, "field components, one per variable"}, vars()},
			run: func(s *Session, p params) (value, error) {
				fs, vs, err := fieldAndVars(p)
				if err != nil {
					return value{}, err
				}
				d, err := s.e.Divergence(fs, vs)
				return exprValue(d), err
			},
		},
		{
			name:        "curl",
			description: "Curl of a three-component vector field",
			params:      []param{{"exprs", "expressions", true, "field components"}, vars()},
			run: func(s *Session, p params) (value, error) {
				fs, vs, err := fieldAndVars(p)
				if err != nil {
					return value{}, err
				}
				c, err := s.e.Curl(fs, vs)
				return listValue(c), err
			},
		},
		{
			name:        "subs",
			description: "Substitute value for the symbol var",
			params:      []param{expr("expr", "expression"), sym("var"), expr("value", "replacement")},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				repl, err := p.expr("value")
				if err != nil {
					return value{}, err
				}
				r, err := s.e.Subs(x, v, repl)
				return exprValue(r), err
			},
		},
		{
			name:        "series",
			description: "Truncated series in powers of (var - point), terms below order",
			params: []param{
				expr("expr", "expression"), sym("var"),
				opt(expr("point", "expansion point, default 0")),
				opt(param{"order", "integer", false, "number of orders kept"}),
			},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				pt, err := p.optExpr("point", s.e.Int(0))
				if err != nil {
					return value{}, err
				}
				n, err := p.optInt("order", gocas.DefaultSeriesOrder)
				if err != nil {
					return value{}, err
				}
				r, err := s.e.Series(x, v, pt, n)
				return exprValue(r), err
			},
		},
		{
			name:        "degree",
			description: "Degree of a polynomial in var; the zero polynomial has degree -1",
			params:      []param{expr("expr", "polynomial"), sym("var")},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				d, err := s.e.Degree(x, v)
				return plainValue(d, strconv.Itoa(d)), err
			},
		},
		{
			name:        "coeffs",
			description: "Polynomial coefficients in var, lowest degree first",
			params:      []param{expr("expr", "polynomial"), sym("var")},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				cs, err := s.e.Coeffs(x, v)
				return listValue(cs), err
			},
		},
		{
			name:        "collect",
			description: "Group the terms of a polynomial by powers of var",
			params:      []param{expr("expr", "polynomial"), sym("var")},
			run: func(s *Session, p params) (value, error) {
				x, v, err := exprAndVar(p)
				if err != nil {
					return value{}, err
				}
				r, err := s.e.Collect(x, v)
				return exprValue(r), err
			},
		},
		{
			name:        "free_symbols",
			description: "Names of the symbols occurring in expr",
			params:      []param{expr("expr", "expression")},
			run: func(s *Session, p params) (value, error) {
				x, err := p.expr("expr")
				if err != nil {
					return value{}, err
				}
				syms := s.e.FreeSymbols(x)
				names := make([]string, len(syms))
				for i, sy := range syms {
					names[i] = sy.Name()
				}
				return plainValue(names, strings.Join(names, ", ")), nil
			},
		},
		{
			name:        "srepr",
			description: "Structural form of the expression tree",
			params:      []param{expr("expr", "expression")},
			run: func(s *Session, p params) (value, error) {
				x, err := p.expr("expr")
				if err != nil {
					return value{}, err
				}
				r := s.e.Srepr(x)
				return plainValue(r, r), nil
			},
		},
		{
			name:        "fingerprint",
			description: "SHA-256 fingerprint of the canonical form",
			params:      []param{expr("expr", "expression")},
			run: func(s *Session, p params) (value, error) {
				x, err := p.expr("expr")
				if err != nil {
					return value{}, err
				}
				f := s.e.Fingerprint(x)
				return plainValue(f, f), nil
			},
		},
		{
			name:        "schema",
			description: "Return this tool schema",
			run: func(*Session, params) (value, error) {
				return plainValue(Schema(), strings.Join(Names(), "\n")), nil
			},
		},
	}
}

func exprAndVar(p params) (gocas.Expr, gocas.Expr, error) {
	x, err := p.expr("expr")
	if err != nil {
		return 0, 0, err
	}
	v, err := p.symbol("var")
	if err != nil {
		return 0, 0, err
	}
	return x, v, nil
}

func exprAndVars(p params) (gocas.Expr, []gocas.Expr, error) {
	x, err := p.expr("expr")
	if err != nil {
		return 0, nil, err
	}
	vs, err := p.symbolList("vars")
	if err != nil {
		return 0, nil, err
	}
	return x, vs, nil
}

func fieldAndVars(p params) ([]gocas.Expr, []gocas.Expr, error) {
	fs, err := p.exprList("exprs")
	if err != nil {
		return nil, nil, err
	}
	vs, err := p.symbolList("vars")
	if err != nil {
		return nil, nil, err
	}
	return fs, vs, nil
}
