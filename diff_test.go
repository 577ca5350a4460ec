package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func TestDiff(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	tests := []struct {
		name string
		in   gocas.Expr
		want string
	}{
		{"constant", e.Int(5), "0"},
		{"self", x, "1"},
		{"other symbol", y, "0"},
		{"power", e.Pow(x, e.Int(3)), "3*x^2"},
		{"log of square", e.Log(e.Pow(x, e.Int(2))), "2/x"},
		{"sin", e.Sin(x), "cos(x)"},
		{"cos", e.Cos(x), "-sin(x)"},
		{"exp chain", e.Exp(e.Mul(e.Int(2), x)), "2*exp(2*x)"},
		{"log", e.Log(x), "1/x"},
		{"sqrt", e.Sqrt(x), "1/(2*sqrt(x))"},
		{"product", e.Mul(x, e.Sin(x)), "x*cos(x) + sin(x)"},
		{"constant base", e.Pow(e.Int(2), x), "2^x*log(2)"},
		{"coefficient symbol", e.Mul(y, e.Pow(x, e.Int(2))), "2*x*y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Diff(tt.in, x)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String(d))
		})
	}
}

func TestDiff_LogSquareIsTwoOverX(t *testing.T) {
	e, x := newEngine(t)
	d, err := e.Diff(e.Log(e.Pow(x, e.Int(2))), x)
	require.NoError(t, err)
	requireSame(t, e, e.Div(e.Int(2), x), d)
}

func TestDiff_VariableExponent(t *testing.T) {
	e, x := newEngine(t)
	d, err := e.Diff(e.Pow(x, x), x)
	require.NoError(t, err)
	requireEquivalent(t, e, e.Mul(e.Pow(x, x), e.Add(e.Log(x), e.Int(1))), d)
}

func TestDiffN(t *testing.T) {
	e, x := newEngine(t)
	d, err := e.DiffN(e.Pow(x, e.Int(4)), x, 3)
	require.NoError(t, err)
	assert.Equal(t, "24*x", e.String(d))

	d, err = e.DiffN(e.Sin(x), x, 0)
	require.NoError(t, err)
	assert.Equal(t, e.Sin(x), d)

	_, err = e.DiffN(x, x, -1)
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}

func TestDiff_Errors(t *testing.T) {
	e, x := newEngine(t)
	f, err := e.Apply("f", x)
	require.NoError(t, err)
	_, err = e.Diff(f, x)
	assert.ErrorIs(t, err, gocas.ErrUnsupportedOperator)

	y := e.MustSymbol("y")
	g, err := e.Apply("g", y)
	require.NoError(t, err)
	d, err := e.Diff(g, x)
	require.NoError(t, err)
	assert.Equal(t, e.Int(0), d)

	_, err = e.Diff(x, e.Int(2))
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}
