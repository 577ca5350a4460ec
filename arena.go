package gocas

import (
	"encoding/binary"
	"log/slog"
	"math/big"
)

// Expr is a handle to an immutable expression node owned by an Engine.
// Nodes are hash-consed, so two handles from the same Engine are equal
// exactly when the expressions are structurally identical. The zero Expr
// is not a valid expression.
type Expr uint32

// Kind tags the closed set of node variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindSymbol
	KindConstant
	KindAdd
	KindMul
	KindPow
	KindSin
	KindCos
	KindExp
	KindLog
	KindApply
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindNumber:   "number",
	KindSymbol:   "symbol",
	KindConstant: "constant",
	KindAdd:      "add",
	KindMul:      "mul",
	KindPow:      "pow",
	KindSin:      "sin",
	KindCos:      "cos",
	KindExp:      "exp",
	KindLog:      "log",
	KindApply:    "apply",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// IsFunction reports whether k is one of the built-in unary functions.
func (k Kind) IsFunction() bool {
	switch k {
	case KindSin, KindCos, KindExp, KindLog:
		return true
	}
	return false
}

// Constant identifies a named constant.
type Constant uint8

const (
	ConstPi Constant = iota + 1
	ConstI
	ConstInfinity
	ConstComplexInfinity
	ConstNaN
)

var constNames = [...]string{
	ConstPi:              "pi",
	ConstI:               "i",
	ConstInfinity:        "oo",
	ConstComplexInfinity: "zoo",
	ConstNaN:             "nan",
}

func (c Constant) String() string {
	if c > 0 && int(c) < len(constNames) {
		return constNames[c]
	}
	return "?"
}

type node struct {
	kind Kind
	num  *big.Rat
	sym  Symbol
	cnst Constant
	name string
	args []Expr
}

// Engine owns the expression arena and performs every operation on it.
// An Engine is not safe for concurrent use.
type Engine struct {
	reg   *Registry
	nodes []node
	index map[string]Expr
	opts  options
	log   *slog.Logger
	strs  map[Expr]string

	zero, one, negOne, two, half Expr
	pi, imag, inf, zinf, nan, e  Expr
}

// NewEngine returns an engine that resolves symbols through reg.
// A nil reg gets a private registry.
func NewEngine(reg *Registry, opts ...Option) *Engine {
	if reg == nil {
		reg = NewRegistry()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	e := &Engine{
		reg:   reg,
		nodes: make([]node, 1, 256),
		index: make(map[string]Expr, 256),
		opts:  o,
		log:   o.logger,
		strs:  make(map[Expr]string),
	}
	e.zero = e.intn(0)
	e.one = e.intn(1)
	e.negOne = e.intn(-1)
	e.two = e.intn(2)
	e.half = e.num(big.NewRat(1, 2))
	e.pi = e.cnst(ConstPi)
	e.imag = e.cnst(ConstI)
	e.inf = e.cnst(ConstInfinity)
	e.zinf = e.cnst(ConstComplexInfinity)
	e.nan = e.cnst(ConstNaN)
	e.e = e.raw(KindExp, e.one)
	return e
}

// Registry returns the symbol registry the engine resolves names through.
func (e *Engine) Registry() *Registry { return e.reg }

// Len returns the number of distinct nodes in the arena.
func (e *Engine) Len() int { return len(e.nodes) - 1 }

func (e *Engine) node(x Expr) *node {
	if x == 0 || int(x) >= len(e.nodes) {
		panic("gocas: invalid expression handle")
	}
	return &e.nodes[x]
}

func (e *Engine) intern(n node) Expr {
	key := nodeKey(&n)
	if x, ok := e.index[key]; ok {
		return x
	}
	x := Expr(len(e.nodes))
	e.nodes = append(e.nodes, n)
	e.index[key] = x
	return x
}

func nodeKey(n *node) string {
	buf := make([]byte, 0, 16+4*len(n.args))
	buf = append(buf, byte(n.kind))
	switch n.kind {
	case KindNumber:
		buf = append(buf, n.num.RatString()...)
	case KindSymbol:
		buf = binary.AppendUvarint(buf, uint64(n.sym.id))
	case KindConstant:
		buf = append(buf, byte(n.cnst))
	case KindApply:
		buf = append(buf, n.name...)
		buf = append(buf, 0)
	}
	for _, a := range n.args {
		buf = binary.AppendUvarint(buf, uint64(a))
	}
	return string(buf)
}

// num interns a number; r must not be modified afterwards.
func (e *Engine) num(r *big.Rat) Expr {
	return e.intern(node{kind: KindNumber, num: r})
}

func (e *Engine) intn(n int64) Expr { return e.num(new(big.Rat).SetInt64(n)) }

func (e *Engine) sym(s Symbol) Expr { return e.intern(node{kind: KindSymbol, sym: s}) }

func (e *Engine) cnst(c Constant) Expr { return e.intern(node{kind: KindConstant, cnst: c}) }

// raw interns a node without canonicalising it.
func (e *Engine) raw(k Kind, args ...Expr) Expr {
	return e.intern(node{kind: k, args: append([]Expr(nil), args...)})
}

func (e *Engine) rawApply(name string, args []Expr) Expr {
	return e.intern(node{kind: KindApply, name: name, args: append([]Expr(nil), args...)})
}

// Kind returns the node kind of x.
func (e *Engine) Kind(x Expr) Kind { return e.node(x).kind }

// Args returns a copy of the children of x.
func (e *Engine) Args(x Expr) []Expr { return append([]Expr(nil), e.node(x).args...) }

func (e *Engine) args(x Expr) []Expr { return e.node(x).args }

func (e *Engine) arg(x Expr) Expr { return e.node(x).args[0] }

// Equal reports structural equality of canonical expressions.
func (e *Engine) Equal(a, b Expr) bool { return a == b }

// Rat returns a copy of the value of a number node.
func (e *Engine) Rat(x Expr) (*big.Rat, bool) {
	n := e.node(x)
	if n.kind != KindNumber {
		return nil, false
	}
	return new(big.Rat).Set(n.num), true
}

// rat returns the shared value of a number node, or nil. Callers must not
// modify the result.
func (e *Engine) rat(x Expr) *big.Rat {
	n := e.node(x)
	if n.kind != KindNumber {
		return nil
	}
	return n.num
}

// SymbolOf returns the symbol of a symbol node.
func (e *Engine) SymbolOf(x Expr) (Symbol, bool) {
	n := e.node(x)
	if n.kind != KindSymbol {
		return Symbol{}, false
	}
	return n.sym, true
}

// ConstantOf returns the constant of a constant node.
func (e *Engine) ConstantOf(x Expr) (Constant, bool) {
	n := e.node(x)
	if n.kind != KindConstant {
		return 0, false
	}
	return n.cnst, true
}

// FuncName returns the function name of a sin, cos, exp, log or apply node.
func (e *Engine) FuncName(x Expr) string {
	n := e.node(x)
	if n.kind == KindApply {
		return n.name
	}
	if n.kind.IsFunction() {
		return n.kind.String()
	}
	return ""
}

func (e *Engine) isKind(x Expr, k Kind) bool { return e.node(x).kind == k }
