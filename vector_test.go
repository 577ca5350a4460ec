package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func TestGradient(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	f := e.Add(e.Mul(e.Pow(x, e.Int(2)), y), y)
	g, err := e.Gradient(f, []gocas.Expr{x, y})
	require.NoError(t, err)
	assert.Equal(t, []string{"2*x*y", "x^2 + 1"}, strs(e, g))
}

func TestJacobian(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	j, err := e.Jacobian([]gocas.Expr{e.Mul(x, y), e.Add(x, y)}, []gocas.Expr{x, y})
	require.NoError(t, err)
	require.Len(t, j, 2)
	assert.Equal(t, []string{"y", "x"}, strs(e, j[0]))
	assert.Equal(t, []string{"1", "1"}, strs(e, j[1]))

	_, err = e.Jacobian(nil, []gocas.Expr{x})
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}

func TestHessian(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	h, err := e.Hessian(e.Mul(e.Pow(x, e.Int(2)), y), []gocas.Expr{x, y})
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, []string{"2*y", "2*x"}, strs(e, h[0]))
	assert.Equal(t, []string{"2*x", "0"}, strs(e, h[1]))
}

func TestLaplacian(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	l, err := e.Laplacian(e.Add(e.Pow(x, e.Int(2)), e.Pow(y, e.Int(2))), []gocas.Expr{x, y})
	require.NoError(t, err)
	requireSame(t, e, e.Int(4), l)

	l, err = e.Laplacian(e.Add(e.Pow(x, e.Int(3)), e.Mul(x, e.Pow(y, e.Int(2)))), []gocas.Expr{x, y})
	require.NoError(t, err)
	requireSame(t, e, e.Mul(e.Int(8), x), l)
}

func TestVectorOps_InvalidVariables(t *testing.T) {
	e, x := newEngine(t)
	tests := []struct {
		name string
		vars []gocas.Expr
	}{
		{"none", nil},
		{"not a symbol", []gocas.Expr{e.Add(x, e.Int(1))}},
		{"repeated", []gocas.Expr{x, x}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Gradient(x, tt.vars)
			assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
			_, err = e.Laplacian(x, tt.vars)
			assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
		})
	}
}

func TestCollect(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	in := e.Add(e.Mul(y, e.Pow(x, e.Int(2))), e.Mul(x, y), x, e.Int(3))
	got, err := e.Collect(in, x)
	require.NoError(t, err)
	requireEquivalent(t, e, in, got)
	require.Equal(t, gocas.KindAdd, e.Kind(got))
	assert.Len(t, e.Args(got), 3)

	cs, err := e.Coeffs(got, x)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "y + 1", "y"}, strs(e, cs))

	_, err = e.Collect(e.Sin(x), x)
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}

func TestSolveLinear(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	a := e.MustSymbol("a")

	t.Run("numeric", func(t *testing.T) {
		sol, err := e.SolveLinear([]gocas.Expr{
			e.Sub(e.Add(x, y), e.Int(3)),
			e.Sub(e.Sub(x, y), e.Int(1)),
		}, []gocas.Expr{x, y})
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "1"}, strs(e, sol))
	})

	t.Run("symbolic coefficient", func(t *testing.T) {
		sol, err := e.SolveLinear([]gocas.Expr{
			e.Sub(e.Add(e.Mul(a, x), y), e.Int(1)),
			e.Sub(x, y),
		}, []gocas.Expr{x, y})
		require.NoError(t, err)
		require.Len(t, sol, 2)
		want := e.Div(e.Int(1), e.Add(a, e.Int(1)))
		requireEquivalent(t, e, want, sol[0])
		requireEquivalent(t, e, want, sol[1])
	})

	t.Run("consistent overdetermined", func(t *testing.T) {
		sol, err := e.SolveLinear([]gocas.Expr{
			e.Sub(x, e.Int(1)),
			e.Sub(y, e.Int(2)),
			e.Sub(e.Add(x, y), e.Int(3)),
		}, []gocas.Expr{x, y})
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, strs(e, sol))
	})
}

func TestSolveLinear_Errors(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	xy := []gocas.Expr{x, y}
	tests := []struct {
		name string
		eqs  []gocas.Expr
		vars []gocas.Expr
		kind error
	}{
		{"singular", []gocas.Expr{e.Add(x, y), e.Sub(e.Mul(e.Int(2), e.Add(x, y)), e.Int(1))}, xy, gocas.ErrUnsolvable},
		{"nonlinear", []gocas.Expr{e.Sub(e.Mul(x, y), e.Int(1)), e.Sub(x, y)}, xy, gocas.ErrUnsolvable},
		{"inconsistent", []gocas.Expr{e.Sub(x, e.Int(1)), e.Sub(y, e.Int(2)), e.Sub(e.Add(x, y), e.Int(4))}, xy, gocas.ErrUnsolvable},
		{"no equations", nil, xy, gocas.ErrInvalidArgument},
		{"no variables", []gocas.Expr{x}, nil, gocas.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.SolveLinear(tt.eqs, tt.vars)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestDivergence(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	d, err := e.Divergence([]gocas.Expr{e.Mul(x, y), e.Pow(y, e.Int(2))}, []gocas.Expr{x, y})
	require.NoError(t, err)
	requireSame(t, e, e.Mul(e.Int(3), y), d)

	_, err = e.Divergence([]gocas.Expr{x}, []gocas.Expr{x, y})
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}

func TestCurl(t *testing.T) {
	e, x := newEngine(t)
	y, z := e.MustSymbol("y"), e.MustSymbol("z")
	xyz := []gocas.Expr{x, y, z}

	c, err := e.Curl([]gocas.Expr{e.Neg(y), x, e.Int(0)}, xyz)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0", "2"}, strs(e, c))

	grad, err := e.Gradient(e.Mul(x, y, z), xyz)
	require.NoError(t, err)
	c, err = e.Curl(grad, xyz)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0", "0"}, strs(e, c))

	_, err = e.Curl([]gocas.Expr{x, y}, xyz[:2])
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}
