package gocas_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func newEngine(t *testing.T) (*gocas.Engine, gocas.Expr) {
	t.Helper()
	e := gocas.NewEngine(gocas.NewRegistry())
	return e, e.MustSymbol("x")
}

// requireSame fails unless want and got are the same canonical expression.
func requireSame(t *testing.T, e *gocas.Engine, want, got gocas.Expr) {
	t.Helper()
	require.Equal(t, e.String(want), e.String(got))
	require.Equal(t, want, got)
}

// requireEquivalent fails unless want - got simplifies to zero.
func requireEquivalent(t *testing.T, e *gocas.Engine, want, got gocas.Expr) {
	t.Helper()
	diff := e.Simplify(e.Sub(want, got))
	require.Equal(t, e.Int(0), diff, "want %s, got %s (difference %s)", e.String(want), e.String(got), e.String(diff))
}

func strs(e *gocas.Engine, xs []gocas.Expr) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = e.String(x)
	}
	return out
}
