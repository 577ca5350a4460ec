package worksheet

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func runFile(t *testing.T, path string) *Result {
	t.Helper()
	ws, err := Load(path)
	require.NoError(t, err)
	res, err := (&Runner{}).Run(context.Background(), ws)
	require.NoError(t, err)
	return res
}

func TestRun_Calculus(t *testing.T) {
	res := runFile(t, "testdata/calculus.yaml")

	assert.Equal(t, "calculus", res.Name)
	assert.Equal(t, 5, res.Passed)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, res.OK())
	require.Len(t, res.Cells, 6)

	back := res.Cells[2]
	assert.Equal(t, StatusOK, back.Status)
	assert.Equal(t, "x^2", back.Response.String, "references resolve to earlier results")

	gaussian := res.Cells[4]
	assert.Equal(t, StatusOK, gaussian.Status)
	assert.Equal(t, "no_closed_form", gaussian.Response.Kind)

	sinc := res.Cells[5]
	assert.Equal(t, StatusFail, sinc.Status)
	assert.Equal(t, "want 2, got 1", sinc.Mismatch)
}

func TestRender_Golden(t *testing.T) {
	res := runFile(t, "testdata/calculus.yaml")
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, format := range []string{"md", "json"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, res, format))
			g.Assert(t, "calculus."+format, buf.Bytes())
		})
	}
}

func TestRender_Table(t *testing.T) {
	res := runFile(t, "testdata/calculus.yaml")
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, res, "text"))

	out := buf.String()
	assert.Contains(t, out, "calculus")
	assert.Contains(t, out, "antiderivative")
	assert.Contains(t, out, `\frac{x^{3}}{3}`)
	assert.Contains(t, out, "FAIL: want 2, got 1")
	assert.Contains(t, out, "5/6 passed\n")

	assert.Error(t, Render(&buf, res, "csv"))
}

func TestRun_UnexpectedError(t *testing.T) {
	ws, err := Parse([]byte(`
name: errors
cells:
  - name: pole
    tool: limit
    params: {expr: {pow: [x, -1]}, var: x, point: 0}
  - name: dangling
    tool: diff
    params: {expr: $missing, var: x}
  - name: fine
    tool: expand
    params: {expr: x}
`))
	require.NoError(t, err)
	res, err := (&Runner{}).Run(context.Background(), ws)
	require.NoError(t, err)

	require.Len(t, res.Cells, 3)
	assert.Equal(t, StatusError, res.Cells[0].Status)
	assert.Equal(t, "limit_does_not_exist", res.Cells[0].Response.Kind)
	assert.Equal(t, StatusError, res.Cells[1].Status)
	assert.Contains(t, res.Cells[1].Mismatch, `no earlier result named "missing"`)
	assert.Equal(t, StatusOK, res.Cells[2].Status, "errors do not stop the run")
	assert.Equal(t, 2, res.Failed)
}

func TestRun_ExpectErrorButSucceeded(t *testing.T) {
	ws, err := Parse([]byte(`
name: surprise
cells:
  - name: easy
    tool: integrate
    params: {expr: x, var: x}
    expect_error: no_closed_form
`))
	require.NoError(t, err)
	res, err := (&Runner{}).Run(context.Background(), ws)
	require.NoError(t, err)
	assert.Equal(t, StatusFail, res.Cells[0].Status)
	assert.Equal(t, "want error no_closed_form, got success x^2/2", res.Cells[0].Mismatch)
}

func TestRun_EngineOptions(t *testing.T) {
	ws, err := Parse([]byte(`
name: bounded
cells:
  - name: big
    tool: expand
    params: {expr: {pow: [{add: [x, 1]}, 3]}}
    expect: (x + 1)^3
`))
	require.NoError(t, err)
	res, err := (&Runner{EngineOptions: []gocas.Option{gocas.WithMaxExpandPower(2)}}).Run(context.Background(), ws)
	require.NoError(t, err)
	assert.True(t, res.OK(), res.Cells[0].Mismatch)
}

func TestRun_InvalidSymbol(t *testing.T) {
	ws, err := Parse([]byte("name: bad\nsymbols: [pi]\ncells:\n  - {name: a, tool: expand, params: {expr: x}}\n"))
	require.NoError(t, err)
	_, err = (&Runner{}).Run(context.Background(), ws)
	require.Error(t, err)
	assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		errSubstr string
	}{
		{"no name", "cells:\n  - {name: a, tool: expand}\n", "name is required"},
		{"no cells", "name: x\n", "cells list is required"},
		{"unknown field", "name: x\ncell: []\n", "field cell not found"},
		{"unnamed cell", "name: x\ncells:\n  - {tool: expand}\n", "cells[0]: name is required"},
		{"duplicate", "name: x\ncells:\n  - {name: a, tool: expand}\n  - {name: a, tool: factor}\n", `duplicate name "a"`},
		{"unknown tool", "name: x\ncells:\n  - {name: a, tool: nsolve}\n", `unknown tool "nsolve"`},
		{"exclusive", "name: x\ncells:\n  - {name: a, tool: expand, expect: x, expect_error: unsolvable}\n", "exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read worksheet")
}

func TestRun_Canceled(t *testing.T) {
	ws, err := Parse([]byte("name: c\ncells:\n  - {name: a, tool: expand, params: {expr: x}}\n"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Runner{}).Run(ctx, ws)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveRefs_DoesNotMutate(t *testing.T) {
	params := map[string]any{"expr": map[string]any{"add": []any{"$a", 1}}}
	out, err := resolveRefs(params, map[string]any{"a": map[string]any{"type": "sym", "name": "y"}})
	require.NoError(t, err)
	assert.Equal(t, "$a", params["expr"].(map[string]any)["add"].([]any)[0])
	assert.Equal(t, map[string]any{"type": "sym", "name": "y"}, out["expr"].(map[string]any)["add"].([]any)[0])
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: a\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func() { calls.Add(1) })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("name: b\n"), 0o644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(3 * DebounceInterval)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one call")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
