package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njchilds90/gocas"
)

func TestCanon_String(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	tests := []struct {
		name string
		expr func() string
		want string
	}{
		{"collect terms", func() string { return e.String(e.Add(x, x)) }, "2*x"},
		{"cancel terms", func() string { return e.String(e.Sub(x, x)) }, "0"},
		{"fold numbers", func() string { return e.String(e.Add(e.Int(1), e.Frac(1, 2))) }, "3/2"},
		{"merge bases", func() string { return e.String(e.Mul(x, e.Pow(x, e.Int(-2)))) }, "1/x"},
		{"power of power", func() string { return e.String(e.Pow(e.Pow(x, e.Int(2)), e.Int(3))) }, "x^6"},
		{"sqrt 8", func() string { return e.String(e.Sqrt(e.Int(8))) }, "2*sqrt(2)"},
		{"sqrt 4", func() string { return e.String(e.Sqrt(e.Int(4))) }, "2"},
		{"sqrt -2", func() string { return e.String(e.Sqrt(e.Int(-2))) }, "sqrt(2)*i"},
		{"i squared", func() string { return e.String(e.Mul(e.I(), e.I())) }, "-1"},
		{"sqrt times sqrt", func() string { return e.String(e.Mul(e.Sqrt(e.Int(2)), e.Sqrt(e.Int(3)))) }, "sqrt(6)"},
		{"sin pi/6", func() string { return e.String(e.Sin(e.Div(e.Pi(), e.Int(6)))) }, "1/2"},
		{"cos pi", func() string { return e.String(e.Cos(e.Pi())) }, "-1"},
		{"sin odd", func() string { return e.String(e.Sin(e.Neg(x))) }, "-sin(x)"},
		{"cos even", func() string { return e.String(e.Cos(e.Neg(x))) }, "cos(x)"},
		{"exp log", func() string { return e.String(e.Exp(e.Log(x))) }, "x"},
		{"exp zero", func() string { return e.String(e.Exp(e.Int(0))) }, "1"},
		{"exp product", func() string { return e.String(e.Mul(e.Exp(x), e.Exp(y))) }, "exp(x + y)"},
		{"log one", func() string { return e.String(e.Log(e.Int(1))) }, "0"},
		{"log E", func() string { return e.String(e.Log(e.E())) }, "1"},
		{"euler", func() string { return e.String(e.E()) }, "E"},
		{"sum order", func() string { return e.String(e.Add(e.Int(4), x, e.Pow(x, e.Int(2)))) }, "x^2 + x + 4"},
		{"negative term", func() string { return e.String(e.Sub(e.Pow(x, e.Int(2)), x)) }, "x^2 - x"},
		{"quotient", func() string { return e.String(e.Div(e.Sin(x), x)) }, "sin(x)/x"},
		{"rational coefficient", func() string { return e.String(e.Mul(e.Frac(1, 3), e.Pow(x, e.Int(3)))) }, "x^3/3"},
		{"inf plus one", func() string { return e.String(e.Add(e.Infinity(), e.Int(1))) }, "oo"},
		{"inf minus inf", func() string { return e.String(e.Add(e.Infinity(), e.NegInfinity())) }, "nan"},
		{"neg infinity", func() string { return e.String(e.NegInfinity()) }, "-oo"},
		{"zero times inf", func() string { return e.String(e.Mul(e.Int(0), e.Infinity())) }, "nan"},
		{"divide by zero", func() string { return e.String(e.Div(e.Int(1), e.Int(0))) }, "zoo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr())
		})
	}
}

func TestCanon_HashConsing(t *testing.T) {
	e, x := newEngine(t)
	a := e.Add(e.Pow(x, e.Int(2)), e.Int(1))
	b := e.Add(e.Int(1), e.Pow(x, e.Int(2)))
	assert.Equal(t, a, b)
	assert.True(t, e.Equal(a, b))
	n := e.Len()
	e.Add(e.Int(1), e.Pow(x, e.Int(2)))
	assert.Equal(t, n, e.Len())
}

func TestCanon_Commutative(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	assert.Equal(t, e.Mul(x, y, e.Int(3)), e.Mul(e.Int(3), y, x))
	assert.Equal(t, e.Add(e.Sin(x), y), e.Add(y, e.Sin(x)))
}

func TestCanon_Apply(t *testing.T) {
	e, x := newEngine(t)
	f, err := e.Apply("f", x, e.Int(2))
	if assert.NoError(t, err) {
		assert.Equal(t, "f(x, 2)", e.String(f))
	}
	s, err := e.Apply("sqrt", e.Int(9))
	if assert.NoError(t, err) {
		assert.Equal(t, e.Int(3), s)
	}
	_, err = e.Apply("sin", x, x)
	assert.Error(t, err)
	_, err = e.Apply("pi", x)
	assert.Error(t, err)
	_, err = e.Apply("f")
	assert.Error(t, err)
}

func TestPow_LargeIntegerPowersStayUnevaluated(t *testing.T) {
	e, _ := newEngine(t)
	assert.Equal(t, e.Int(1024), e.Pow(e.Int(2), e.Int(10)))

	inner := e.Pow(e.Int(7), e.Int(4096))
	assert.Equal(t, gocas.KindNumber, e.Kind(inner))

	outer := e.Pow(inner, e.Int(4096))
	assert.Equal(t, gocas.KindPow, e.Kind(outer))
	assert.Equal(t, gocas.KindPow, e.Kind(e.Pow(outer, e.Int(4096))))
	assert.Equal(t, gocas.KindPow, e.Kind(e.Pow(inner, e.Frac(8193, 2))))
}
