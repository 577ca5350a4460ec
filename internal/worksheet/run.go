package worksheet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/tools"
)

// Cell statuses.
const (
	StatusOK    = "ok"
	StatusFail  = "fail"
	StatusError = "error"
)

// CellResult is the outcome of one cell.
type CellResult struct {
	Name     string
	Tool     string
	Response tools.Response
	Status   string

	// Mismatch explains a failed expectation.
	Mismatch string
}

// Result is the outcome of a worksheet run.
type Result struct {
	Name   string
	Cells  []CellResult
	Passed int
	Failed int
}

// OK reports whether every cell met its expectation.
func (r *Result) OK() bool { return r.Failed == 0 }

// Runner executes worksheets. Every run gets a fresh engine.
type Runner struct {
	EngineOptions []gocas.Option
	Logger        *slog.Logger
}

// Run executes the cells in order. A cell that errors without expecting to
// does not stop the run. The returned error reports only problems with the
// worksheet itself, such as invalid symbol names.
func (r *Runner) Run(ctx context.Context, ws *Worksheet) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("worksheet", ws.Name)
	e := gocas.NewEngine(gocas.NewRegistry(), append([]gocas.Option{gocas.WithLogger(logger)}, r.EngineOptions...)...)
	for _, name := range ws.Symbols {
		if _, err := e.Symbol(name); err != nil {
			return nil, fmt.Errorf("symbols: %w", err)
		}
	}
	session := tools.NewSession(e, logger)

	res := &Result{Name: ws.Name}
	results := make(map[string]any)
	for _, c := range ws.Cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		params, err := resolveRefs(c.Params, results)
		var resp tools.Response
		if err != nil {
			resp = tools.Response{Tool: c.Tool, Error: err.Error(), Kind: "invalid_argument"}
		} else {
			resp = session.Handle(ctx, tools.Request{Tool: c.Tool, Params: params})
		}
		if tree, ok := resp.Result.(map[string]any); ok && resp.OK() {
			results[c.Name] = tree
		}
		cr := check(c, resp)
		if cr.Status == StatusOK {
			res.Passed++
		} else {
			res.Failed++
			logger.Debug("cell failed", "cell", c.Name, "status", cr.Status, "detail", cr.Mismatch)
		}
		res.Cells = append(res.Cells, cr)
	}
	return res, nil
}

func check(c Cell, resp tools.Response) CellResult {
	cr := CellResult{Name: c.Name, Tool: c.Tool, Response: resp, Status: StatusOK}
	switch {
	case c.ExpectError != "":
		if resp.Kind != c.ExpectError {
			cr.Status = StatusFail
			got := resp.Kind
			if got == "" {
				got = "success " + resp.String
			}
			cr.Mismatch = fmt.Sprintf("want error %s, got %s", c.ExpectError, got)
		}
	case !resp.OK():
		cr.Status = StatusError
		cr.Mismatch = resp.Error
	case c.Expect != "" && resp.String != c.Expect:
		cr.Status = StatusFail
		cr.Mismatch = fmt.Sprintf("want %s, got %s", c.Expect, resp.String)
	}
	return cr
}

// resolveRefs replaces "$name" strings with the expression results of earlier
// cells. Params are copied, never modified in place.
func resolveRefs(params map[string]any, results map[string]any) (map[string]any, error) {
	var walk func(v any) (any, error)
	walk = func(v any) (any, error) {
		switch t := v.(type) {
		case string:
			if name, ok := strings.CutPrefix(t, "$"); ok {
				r, found := results[name]
				if !found {
					return nil, fmt.Errorf("reference %s: no earlier result named %q", t, name)
				}
				return r, nil
			}
			return t, nil
		case map[string]any:
			out := make(map[string]any, len(t))
			for k, x := range t {
				y, err := walk(x)
				if err != nil {
					return nil, err
				}
				out[k] = y
			}
			return out, nil
		case []any:
			out := make([]any, len(t))
			for i, x := range t {
				y, err := walk(x)
				if err != nil {
					return nil, err
				}
				out[i] = y
			}
			return out, nil
		}
		return v, nil
	}
	out, err := walk(params)
	if err != nil {
		return nil, err
	}
	m, _ := out.(map[string]any)
	return m, nil
}
