package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func TestLimit(t *testing.T) {
	e, x := newEngine(t)
	inv := e.Pow(x, e.Int(-1))
	tests := []struct {
		name  string
		in    gocas.Expr
		point gocas.Expr
		dir   gocas.Direction
		want  string
	}{
		{"sinc", e.Div(e.Sin(x), x), e.Int(0), gocas.TwoSided, "1"},
		{"substitution", e.Add(e.Pow(x, e.Int(2)), e.Int(1)), e.Int(2), gocas.TwoSided, "5"},
		{"cosine ratio", e.Div(e.Sub(e.Int(1), e.Cos(x)), e.Pow(x, e.Int(2))), e.Int(0), gocas.TwoSided, "1/2"},
		{"from above", inv, e.Int(0), gocas.FromAbove, "oo"},
		{"from below", inv, e.Int(0), gocas.FromBelow, "-oo"},
		{"rational at infinity", e.Div(e.Add(e.Mul(e.Int(2), x), e.Int(1)), e.Add(x, e.Int(3))), e.Infinity(), gocas.TwoSided, "2"},
		{"decay beats growth", e.Mul(x, e.Exp(e.Neg(x))), e.Infinity(), gocas.TwoSided, "0"},
		{"compound interest", e.Pow(e.Add(e.Int(1), inv), x), e.Infinity(), gocas.TwoSided, "E"},
		{"x log x", e.Mul(x, e.Log(x)), e.Int(0), gocas.FromAbove, "0"},
		{"exp at minus infinity", e.Exp(x), e.NegInfinity(), gocas.TwoSided, "0"},
		{"free of variable", e.MustSymbol("y"), e.Int(0), gocas.TwoSided, "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.Limit(tt.in, x, tt.point, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String(r))
		})
	}
}

func TestLimit_SincIsOne(t *testing.T) {
	e, x := newEngine(t)
	r, err := e.Limit(e.Div(e.Sin(x), x), x, e.Int(0), gocas.TwoSided)
	require.NoError(t, err)
	assert.Equal(t, e.Int(1), r)
}

func TestLimit_Errors(t *testing.T) {
	e, x := newEngine(t)
	tests := []struct {
		name  string
		in    gocas.Expr
		point gocas.Expr
		kind  error
	}{
		{"one-sided limits differ", e.Pow(x, e.Int(-1)), e.Int(0), gocas.ErrLimitDoesNotExist},
		{"oscillates near zero", e.Sin(e.Pow(x, e.Int(-1))), e.Int(0), gocas.ErrLimitDoesNotExist},
		{"oscillates at infinity", e.Sin(x), e.Infinity(), gocas.ErrLimitDoesNotExist},
		{"point depends on variable", x, e.Add(x, e.Int(1)), gocas.ErrInvalidArgument},
		{"nan point", x, e.NaN(), gocas.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Limit(tt.in, x, tt.point, gocas.TwoSided)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want gocas.Direction
	}{
		{"", gocas.TwoSided},
		{"+-", gocas.TwoSided},
		{"both", gocas.TwoSided},
		{"+", gocas.FromAbove},
		{"right", gocas.FromAbove},
		{"-", gocas.FromBelow},
		{" Left ", gocas.FromBelow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := gocas.ParseDirection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
	_, err := gocas.ParseDirection("up")
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)

	assert.Equal(t, "+", gocas.FromAbove.String())
	assert.Equal(t, "-", gocas.FromBelow.String())
	assert.Equal(t, "+-", gocas.TwoSided.String())
}
