package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func TestSubs(t *testing.T) {
	e, x := newEngine(t)
	r, err := e.Subs(e.Add(e.Mul(e.Int(2), x), e.Int(3)), x, e.Int(5))
	require.NoError(t, err)
	assert.Equal(t, e.Int(13), r)

	r, err = e.Subs(e.Sin(x), x, e.Pi())
	require.NoError(t, err)
	assert.Equal(t, e.Int(0), r)

	_, err = e.Subs(x, e.Int(2), x)
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}

func TestSubsMap_Simultaneous(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	r, err := e.SubsMap(e.Sub(x, e.Mul(e.Int(2), y)), map[gocas.Expr]gocas.Expr{x: y, y: x})
	require.NoError(t, err)
	requireSame(t, e, e.Sub(y, e.Mul(e.Int(2), x)), r)

	_, err = e.SubsMap(x, map[gocas.Expr]gocas.Expr{e.Sin(x): y})
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}

func TestReplace(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	r := e.Replace(e.Add(e.Sin(x), x), e.Sin(x), y)
	requireSame(t, e, e.Add(x, y), r)
}

func TestFreeSymbols(t *testing.T) {
	e, x := newEngine(t)
	z := e.MustSymbol("z")
	y := e.MustSymbol("y")
	var names []string
	for _, s := range e.FreeSymbols(e.Add(e.Mul(z, y), e.Exp(x))) {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"x", "y", "z"}, names)
	assert.Empty(t, e.FreeSymbols(e.Add(e.Pi(), e.Int(1))))
}

func TestHasAndIsConstant(t *testing.T) {
	e, x := newEngine(t)
	expr := e.Mul(e.Int(3), e.Cos(x))
	assert.True(t, e.Has(expr, x))
	assert.True(t, e.Has(expr, e.Cos(x)))
	assert.False(t, e.Has(expr, e.Sin(x)))
	assert.False(t, e.IsConstant(expr))
	assert.True(t, e.IsConstant(e.Sqrt(e.Add(e.Pi(), e.Int(2)))))
}
