// Package tools dispatches named tool calls onto an engine. Requests carry
// expression trees in the typed or compact encoding accepted by
// gocas.Engine.Decode; responses carry the result tree with its text and
// LaTeX renderings.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/njchilds90/gocas"
)

// Request is a single tool call.
type Request struct {
	Tool   string         `json:"tool" yaml:"tool"`
	Params map[string]any `json:"params" yaml:"params"`
}

// Response is the outcome of a tool call. On failure only Tool, Error and
// Kind are set.
type Response struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	String string `json:"string,omitempty"`
	LaTeX  string `json:"latex,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// OK reports whether the call succeeded.
func (r Response) OK() bool { return r.Error == "" }

// ErrUnknownTool is returned for a tool name that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Session runs tool calls against one engine. Expressions decoded by
// successive calls share the engine's arena and registry.
type Session struct {
	e   *gocas.Engine
	log *slog.Logger
}

// NewSession returns a session over e. A nil logger discards output.
func NewSession(e *gocas.Engine, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Session{e: e, log: log}
}

// Engine returns the session's engine.
func (s *Session) Engine() *gocas.Engine { return s.e }

// Handle runs req and reports failures inside the response.
func (s *Session) Handle(ctx context.Context, req Request) Response {
	out, err := s.Call(ctx, req)
	if err != nil {
		return Response{Tool: req.Tool, Error: err.Error(), Kind: Kind(err)}
	}
	return out
}

// Call runs req. Engine failures keep their gocas error kind; malformed
// params fail with gocas.ErrInvalidArgument.
func (s *Session) Call(ctx context.Context, req Request) (resp Response, err error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	t, ok := registry[req.Tool]
	if !ok {
		return Response{}, fmt.Errorf("%w %q", ErrUnknownTool, req.Tool)
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tool panicked", slog.String("tool", req.Tool), slog.Any("panic", r))
			resp, err = Response{}, fmt.Errorf("%s: internal error: %v", req.Tool, r)
		}
		s.log.Debug("tool call",
			slog.String("tool", req.Tool),
			slog.Duration("elapsed", time.Since(start)),
			slog.Bool("ok", err == nil))
	}()

	v, err := t.run(s, params{tool: req.Tool, m: req.Params, e: s.e})
	if err != nil {
		return Response{}, err
	}
	resp = v.response(s.e)
	resp.Tool = req.Tool
	return resp, nil
}

// Kind classifies err for responses: a gocas error kind, "unknown_tool",
// "canceled" or "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return gocas.ErrorKind(err)
}

// value is a tool result before rendering.
type value struct {
	expr  gocas.Expr
	exprs []gocas.Expr
	brace [2]string
	rows  [][]gocas.Expr
	plain any
	text  string
}

func exprValue(x gocas.Expr) value { return value{expr: x} }

// setValue renders xs as {a, b}; listValue as [a, b].
func setValue(xs []gocas.Expr) value { return value{exprs: xs, brace: [2]string{"{", "}"}} }

func listValue(xs []gocas.Expr) value { return value{exprs: xs, brace: [2]string{"[", "]"}} }

func matrixValue(rows [][]gocas.Expr) value { return value{rows: rows} }

func plainValue(v any, text string) value { return value{plain: v, text: text} }

func (v value) response(e *gocas.Engine) Response {
	switch {
	case v.expr != 0:
		return Response{Result: e.ToJSON(v.expr), String: e.String(v.expr), LaTeX: e.LaTeX(v.expr)}
	case v.brace[0] != "":
		items := make([]any, len(v.exprs))
		texts := make([]string, len(v.exprs))
		tex := make([]string, len(v.exprs))
		for i, x := range v.exprs {
			items[i] = e.ToJSON(x)
			texts[i] = e.String(x)
			tex[i] = e.LaTeX(x)
		}
		return Response{
			Result: items,
			String: v.brace[0] + strings.Join(texts, ", ") + v.brace[1],
			LaTeX:  `\left` + texBrace(v.brace[0]) + strings.Join(tex, ", ") + `\right` + texBrace(v.brace[1]),
		}
	case v.rows != nil:
		items := make([]any, len(v.rows))
		texts := make([]string, len(v.rows))
		tex := make([]string, len(v.rows))
		for i, row := range v.rows {
			cells := make([]any, len(row))
			rt := make([]string, len(row))
			rl := make([]string, len(row))
			for j, x := range row {
				cells[j] = e.ToJSON(x)
				rt[j] = e.String(x)
				rl[j] = e.LaTeX(x)
			}
			items[i] = cells
			texts[i] = "[" + strings.Join(rt, ", ") + "]"
			tex[i] = strings.Join(rl, " & ")
		}
		return Response{
			Result: items,
			String: "[" + strings.Join(texts, ", ") + "]",
			LaTeX:  `\begin{pmatrix}` + strings.Join(tex, ` \\ `) + `\end{pmatrix}`,
		}
	}
	return Response{Result: v.plain, String: v.text}
}

func texBrace(b string) string {
	if b == "{" || b == "}" {
		return `\` + b
	}
	return b
}

// params reads typed values out of a request's parameter map.
type params struct {
	tool string
	m    map[string]any
	e    *gocas.Engine
}

func (p params) invalid(format string, args ...any) error {
	return &gocas.OpError{Op: p.tool, Err: gocas.ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func (p params) has(key string) bool {
	_, ok := p.m[key]
	return ok
}

func (p params) expr(key string) (gocas.Expr, error) {
	v, ok := p.m[key]
	if !ok {
		return 0, p.invalid("missing param %q", key)
	}
	x, err := p.e.Decode(v)
	if err != nil {
		return 0, fmt.Errorf("param %q: %w", key, err)
	}
	return x, nil
}

// optExpr returns def when key is absent.
func (p params) optExpr(key string, def gocas.Expr) (gocas.Expr, error) {
	if !p.has(key) {
		return def, nil
	}
	return p.expr(key)
}

// symbol reads a symbol given by name or as an expression tree.
func (p params) symbol(key string) (gocas.Expr, error) {
	x, err := p.expr(key)
	if err != nil {
		return 0, err
	}
	if p.e.Kind(x) != gocas.KindSymbol {
		return 0, p.invalid("param %q must be a symbol, got %s", key, p.e.String(x))
	}
	return x, nil
}

// exprList reads a non-empty array of expressions.
func (p params) exprList(key string) ([]gocas.Expr, error) {
	v, ok := p.m[key]
	if !ok {
		return nil, p.invalid("missing param %q", key)
	}
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil, p.invalid("param %q must be a non-empty array", key)
	}
	out := make([]gocas.Expr, len(items))
	for i, item := range items {
		x, err := p.e.Decode(item)
		if err != nil {
			return nil, fmt.Errorf("param %q[%d]: %w", key, i, err)
		}
		out[i] = x
	}
	return out, nil
}

// symbolList is exprList restricted to symbols.
func (p params) symbolList(key string) ([]gocas.Expr, error) {
	xs, err := p.exprList(key)
	if err != nil {
		return nil, err
	}
	for i, x := range xs {
		if p.e.Kind(x) != gocas.KindSymbol {
			return nil, p.invalid("param %q[%d] must be a symbol, got %s", key, i, p.e.String(x))
		}
	}
	return xs, nil
}

func (p params) optString(key, def string) (string, error) {
	v, ok := p.m[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", p.invalid("param %q must be a string", key)
	}
	return s, nil
}

func (p params) optInt(key string, def int) (int, error) {
	v, ok := p.m[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, nil
		}
	}
	return 0, p.invalid("param %q must be an integer", key)
}

// Names returns the registered tool names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
