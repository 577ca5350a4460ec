// Package gocas is an exact symbolic expression engine.
//
// Expressions are handles into an Engine's arena. Nodes are hash-consed, so
// two structurally identical expressions built by the same Engine share a
// handle and compare with ==. Constructors canonicalise as they build:
// numbers fold, like terms and like bases collect, and elementary functions
// evaluate at special points.
//
// Symbols are declared in a Registry that the caller owns and passes to
// NewEngine:
//
//	reg := gocas.NewRegistry()
//	e := gocas.NewEngine(reg)
//	x := e.MustSymbol("x")
//	roots, err := e.Solve(e.Add(e.Pow(x, e.Int(2)), e.Int(2)), x)
//
// The transforms are Expand, Factor, Diff, Integrate, IntegrateDefinite,
// Limit, Series, Solve and Simplify. Every failure wraps one of the Err*
// kinds in an *OpError. An Engine is not safe for concurrent use.
package gocas
