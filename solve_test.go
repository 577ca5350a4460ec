package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func TestSolve(t *testing.T) {
	e, x := newEngine(t)
	pow := func(b gocas.Expr, n int64) gocas.Expr { return e.Pow(b, e.Int(n)) }
	tests := []struct {
		name string
		in   gocas.Expr
		want []string
	}{
		{"complex pair", e.Add(pow(x, 2), e.Int(2)), []string{"-sqrt(2)*i", "sqrt(2)*i"}},
		{"linear", e.Sub(e.Mul(e.Int(2), x), e.Int(1)), []string{"1/2"}},
		{"two rational roots", e.Add(pow(x, 2), e.Mul(e.Int(-3), x), e.Int(2)), []string{"1", "2"}},
		{"irrational pair", e.Sub(pow(x, 2), e.Int(2)), []string{"-sqrt(2)", "sqrt(2)"}},
		{"double root", e.Expand(pow(e.Sub(x, e.Int(3)), 2)), []string{"3"}},
		{"cube", e.Sub(pow(x, 3), e.Int(8)), []string{"-sqrt(3)*i - 1", "sqrt(3)*i - 1", "2"}},
		{"quartic", e.Sub(pow(x, 4), e.Int(1)), []string{"-1", "-i", "i", "1"}},
		{"cancelled pole", e.Div(e.Sub(pow(x, 2), e.Int(1)), e.Sub(x, e.Int(1))), []string{"-1"}},
		{"reciprocal", pow(x, -1), []string{}},
		{"exponential", e.Sub(e.Exp(x), e.Int(2)), []string{"log(2)"}},
		{"logarithm", e.Sub(e.Log(x), e.Int(1)), []string{"E"}},
		{"sine", e.Sin(x), []string{"0", "pi"}},
		{"product", e.Mul(x, e.Exp(x)), []string{"0"}},
		{"square root", e.Sub(e.Sqrt(x), e.Int(3)), []string{"9"}},
		{"extraneous root", e.Add(e.Sqrt(x), e.Int(3)), []string{}},
		{"constant", e.Int(5), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := e.Solve(tt.in, x)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strs(e, rs))
		})
	}
}

func TestSolve_ComplexPair(t *testing.T) {
	e, x := newEngine(t)
	rs, err := e.Solve(e.Add(e.Pow(x, e.Int(2)), e.Int(2)), x)
	require.NoError(t, err)
	root := e.Mul(e.Sqrt(e.Int(2)), e.I())
	assert.Equal(t, []gocas.Expr{e.Neg(root), root}, rs)
	for _, r := range rs {
		y, err := e.Subs(e.Add(e.Pow(x, e.Int(2)), e.Int(2)), x, r)
		require.NoError(t, err)
		assert.Equal(t, e.Int(0), e.Expand(y))
	}
}

func TestSolve_SymbolicCoefficients(t *testing.T) {
	e, x := newEngine(t)
	a, b := e.MustSymbol("a"), e.MustSymbol("b")
	rs, err := e.Solve(e.Add(e.Mul(a, x), b), x)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, e.Neg(e.Div(b, a)), rs[0])
}

func TestSolve_Errors(t *testing.T) {
	e, x := newEngine(t)
	tests := []struct {
		name string
		in   gocas.Expr
		kind error
	}{
		{"zero", e.Int(0), gocas.ErrUnsolvable},
		{"identity", e.Sub(x, x), gocas.ErrUnsolvable},
		{"non-special sine", e.Sub(e.Sin(x), e.Frac(1, 2)), gocas.ErrUnsolvable},
		{"quintic", e.Sub(e.Sub(e.Pow(x, e.Int(5)), x), e.Int(1)), gocas.ErrUnsolvable},
		{"transcendental mix", e.Sub(e.Exp(x), x), gocas.ErrUnsolvable},
		{"infinite", e.Infinity(), gocas.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Solve(tt.in, x)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
