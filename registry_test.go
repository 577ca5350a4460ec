package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func TestRegistry_SymbolIdentity(t *testing.T) {
	reg := gocas.NewRegistry()
	a, err := reg.Symbol("x")
	require.NoError(t, err)
	b, err := reg.Symbol("x")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "x", a.Name())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_NFC(t *testing.T) {
	reg := gocas.NewRegistry()
	composed := reg.MustSymbol("\u00e9")
	decomposed := reg.MustSymbol("e\u0301")
	assert.Equal(t, composed, decomposed)
}

func TestRegistry_RejectsInvalidNames(t *testing.T) {
	reg := gocas.NewRegistry()
	for _, name := range []string{"", "pi", "i", "I", "E", "oo", "zoo", "nan", "_t1", "a b", "x+y", "f(x)"} {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Symbol(name)
			require.Error(t, err)
			assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
		})
	}
}

func TestRegistry_SharedAcrossEngines(t *testing.T) {
	reg := gocas.NewRegistry()
	e1 := gocas.NewEngine(reg)
	e2 := gocas.NewEngine(reg)
	e1.MustSymbol("alpha")
	e2.MustSymbol("beta")
	assert.Equal(t, []string{"alpha", "beta"}, reg.Names())
	s, ok := reg.Lookup("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", s.Name())
}

func TestRegistry_NamesHideDummies(t *testing.T) {
	reg := gocas.NewRegistry()
	e := gocas.NewEngine(reg)
	x := e.MustSymbol("x")
	_, err := e.Limit(e.Div(e.Sin(x), x), x, e.Int(0), gocas.TwoSided)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, reg.Names())
	assert.Greater(t, reg.Len(), 1)
}

func TestEngine_NilRegistry(t *testing.T) {
	e := gocas.NewEngine(nil)
	require.NotNil(t, e.Registry())
	x := e.MustSymbol("x")
	assert.Equal(t, "x", e.String(x))
}

func TestEngine_VarChecksRegistry(t *testing.T) {
	reg := gocas.NewRegistry()
	e := gocas.NewEngine(reg)
	x := e.MustSymbol("x")

	got, err := e.Var(reg.MustSymbol("x"))
	require.NoError(t, err)
	assert.Equal(t, x, got)

	other := gocas.NewRegistry()
	other.MustSymbol("y")
	foreignX := other.MustSymbol("x")
	_, err = e.Var(foreignX)
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)

	_, err = e.Var(other.MustSymbol("z"))
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)

	_, err = e.Var(gocas.Symbol{})
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}
