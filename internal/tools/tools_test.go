package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/tools"
)

func newSession() *tools.Session {
	return tools.NewSession(gocas.NewEngine(gocas.NewRegistry()), nil)
}

func call(t *testing.T, s *tools.Session, body string) tools.Response {
	t.Helper()
	var req tools.Request
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return s.Handle(context.Background(), req)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  string
		latex string
	}{
		{"expand", `{"tool":"expand","params":{"expr":{"pow":[{"add":["x",1]},2]}}}`, "x^2 + 2*x + 1", ""},
		{"factor", `{"tool":"factor","params":{"expr":{"sub":[{"pow":["x",2]},1]}}}`, "(x - 1)*(x + 1)", ""},
		{"diff log", `{"tool":"diff","params":{"expr":{"log":{"pow":["x",2]}},"var":"x"}}`, "2/x", `\frac{2}{x}`},
		{"diff n", `{"tool":"diff","params":{"expr":{"pow":["x",4]},"var":"x","n":3}}`, "24*x", ""},
		{"integrate", `{"tool":"integrate","params":{"expr":{"pow":["x",2]},"var":"x"}}`, "x^3/3", ""},
		{"integrate definite", `{"tool":"integrate","params":{"expr":{"sin":{"pow":["x",2]}},"var":"x","lower":"-oo","upper":"oo"}}`,
			"sqrt(2)*sqrt(pi)/2", `\frac{\sqrt{2} \sqrt{\pi}}{2}`},
		{"limit", `{"tool":"limit","params":{"expr":{"div":[{"sin":"x"},"x"]},"var":"x","point":0}}`, "1", "1"},
		{"limit one-sided", `{"tool":"limit","params":{"expr":{"pow":["x",-1]},"var":"x","point":0,"dir":"-"}}`, "-oo", ""},
		{"solve", `{"tool":"solve","params":{"expr":{"add":[{"pow":["x",2]},2]},"var":"x"}}`,
			"{-sqrt(2)*i, sqrt(2)*i}", `\left\{-\sqrt{2} i, \sqrt{2} i\right\}`},
		{"solve none", `{"tool":"solve","params":{"expr":5,"var":"x"}}`, "{}", ""},
		{"subs", `{"tool":"subs","params":{"expr":{"mul":[2,"x"]},"var":"x","value":"1/2"}}`, "1", ""},
		{"simplify", `{"tool":"simplify","params":{"expr":{"add":[{"pow":[{"sin":"x"},2]},{"pow":[{"cos":"x"},2]}]}}}`, "1", ""},
		{"latex", `{"tool":"latex","params":{"expr":{"pow":["x",2]}}}`, "x^2", "x^{2}"},
		{"degree", `{"tool":"degree","params":{"expr":{"pow":["x",3]},"var":"x"}}`, "3", ""},
		{"coeffs", `{"tool":"coeffs","params":{"expr":{"add":[{"pow":["x",2]},1]},"var":"x"}}`, "[1, 0, 1]", ""},
		{"free symbols", `{"tool":"free_symbols","params":{"expr":{"add":["y","x"]}}}`, "x, y", ""},
		{"collect", `{"tool":"collect","params":{"expr":{"add":[{"mul":["x","y"]},"x"]},"var":"x"}}`, "x*(y + 1)", ""},
		{"gradient", `{"tool":"gradient","params":{"expr":{"mul":["x","y"]},"vars":["x","y"]}}`, "[y, x]", ""},
		{"jacobian", `{"tool":"jacobian","params":{"exprs":[{"mul":["x","y"]},{"add":["x","y"]}],"vars":["x","y"]}}`,
			"[[y, x], [1, 1]]", `\begin{pmatrix}y & x \\ 1 & 1\end{pmatrix}`},
		{"hessian", `{"tool":"hessian","params":{"expr":{"mul":[{"pow":["x",2]},"y"]},"vars":["x","y"]}}`, "[[2*y, 2*x], [2*x, 0]]", ""},
		{"laplacian", `{"tool":"laplacian","params":{"expr":{"add":[{"pow":["x",2]},{"pow":["y",2]}]},"vars":["x","y"]}}`, "4", ""},
		{"divergence", `{"tool":"divergence","params":{"exprs":["x","y","z"],"vars":["x","y","z"]}}`, "3", ""},
		{"curl", `{"tool":"curl","params":{"exprs":[{"neg":"y"},"x",0],"vars":["x","y","z"]}}`, "[0, 0, 2]", ""},
		{"solve system", `{"tool":"solve_system","params":{"eqs":[{"sub":[{"add":["x","y"]},3]},{"sub":[{"sub":["x","y"]},1]}],"vars":["x","y"]}}`, "[2, 1]", ""},
		{"typed tree", `{"tool":"expand","params":{"expr":{"type":"mul","factors":[{"type":"num","value":"3"},{"type":"add","terms":[{"type":"sym","name":"x"},{"type":"num","value":"2"}]}]}}}`, "3*x + 6", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, newSession(), tt.body)
			require.True(t, resp.OK(), "error: %s", resp.Error)
			assert.Equal(t, tt.want, resp.String)
			if tt.latex != "" {
				assert.Equal(t, tt.latex, resp.LaTeX)
			}
			assert.NotEmpty(t, resp.Tool)
			assert.Empty(t, resp.Kind)
		})
	}
}

func TestHandle_ResultTree(t *testing.T) {
	s := newSession()
	resp := call(t, s, `{"tool":"diff","params":{"expr":{"pow":["x",2]},"var":"x"}}`)
	require.True(t, resp.OK())

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	x, err := s.Engine().UnmarshalExpr(data)
	require.NoError(t, err)
	assert.Equal(t, "2*x", s.Engine().String(x))
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind string
	}{
		{"unknown tool", `{"tool":"integrate_numerically","params":{}}`, "unknown_tool"},
		{"missing param", `{"tool":"expand","params":{}}`, "invalid_argument"},
		{"bad expression", `{"tool":"expand","params":{"expr":{"pow":["x"]}}}`, "invalid_argument"},
		{"var not a symbol", `{"tool":"diff","params":{"expr":"x","var":{"add":["x",1]}}}`, "invalid_argument"},
		{"bad integer", `{"tool":"diff","params":{"expr":"x","var":"x","n":1.5}}`, "invalid_argument"},
		{"bad direction", `{"tool":"limit","params":{"expr":"x","var":"x","point":0,"dir":"sideways"}}`, "invalid_argument"},
		{"half-open bounds", `{"tool":"integrate","params":{"expr":"x","var":"x","lower":0}}`, "invalid_argument"},
		{"no closed form", `{"tool":"integrate","params":{"expr":{"exp":{"pow":["x",2]}},"var":"x"}}`, "no_closed_form"},
		{"limit does not exist", `{"tool":"limit","params":{"expr":{"pow":["x",-1]},"var":"x","point":0}}`, "limit_does_not_exist"},
		{"unsolvable", `{"tool":"solve","params":{"expr":{"sub":["x","x"]},"var":"x"}}`, "unsolvable"},
		{"vars not an array", `{"tool":"gradient","params":{"expr":"x","vars":"x"}}`, "invalid_argument"},
		{"vars entry not a symbol", `{"tool":"gradient","params":{"expr":"x","vars":[{"add":["x",1]}]}}`, "invalid_argument"},
		{"empty eqs", `{"tool":"solve_system","params":{"eqs":[],"vars":["x"]}}`, "invalid_argument"},
		{"singular system", `{"tool":"solve_system","params":{"eqs":[{"add":["x","y"]},{"add":["x","y",1]}],"vars":["x","y"]}}`, "unsolvable"},
		{"unsupported", `{"tool":"diff","params":{"expr":{"f":"x"},"var":"x"}}`, "unsupported_operator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, newSession(), tt.body)
			assert.False(t, resp.OK())
			assert.Equal(t, tt.kind, resp.Kind, resp.Error)
			assert.Nil(t, resp.Result)
			assert.Empty(t, resp.String)
		})
	}
}

func TestCall_KeepsErrorKinds(t *testing.T) {
	s := newSession()
	_, err := s.Call(context.Background(), tools.Request{
		Tool:   "solve",
		Params: map[string]any{"expr": 0, "var": "x"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gocas.ErrUnsolvable))

	var opErr *gocas.OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "solve", opErr.Op)
}

func TestCall_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := newSession().Handle(ctx, tools.Request{Tool: "expand", Params: map[string]any{"expr": "x"}})
	assert.Equal(t, "canceled", resp.Kind)
}

func TestSession_SharesRegistry(t *testing.T) {
	s := newSession()
	call(t, s, `{"tool":"expand","params":{"expr":{"mul":["alpha","beta"]}}}`)
	assert.Equal(t, []string{"alpha", "beta"}, s.Engine().Registry().Names())
}

func TestSchema(t *testing.T) {
	specs := tools.Schema()
	require.Len(t, specs, len(tools.Names()))

	byName := make(map[string]tools.Spec, len(specs))
	for i, sp := range specs {
		if i > 0 {
			assert.Less(t, specs[i-1].Name, sp.Name, "sorted")
		}
		byName[sp.Name] = sp
	}
	for _, name := range []string{"expand", "factor", "diff", "integrate", "limit", "solve", "subs", "series", "simplify", "latex", "free_symbols", "degree", "fingerprint", "schema",
		"collect", "gradient", "jacobian", "hessian", "laplacian", "divergence", "curl", "solve_system"} {
		assert.Contains(t, byName, name)
	}

	integrate := byName["integrate"].InputSchema
	assert.Equal(t, "object", integrate.Type)
	assert.Equal(t, []string{"expr", "var"}, integrate.Required)
	assert.Contains(t, integrate.Properties, "lower")
	assert.Equal(t, []string{}, byName["schema"].InputSchema.Required)
	assert.Equal(t, "array", byName["jacobian"].InputSchema.Properties["vars"].Type)
	assert.Equal(t, []string{"eqs", "vars"}, byName["solve_system"].InputSchema.Required)

	data, err := tools.SchemaJSON()
	require.NoError(t, err)
	var decoded struct {
		Tools []tools.Spec `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded.Tools, len(specs))
}

func TestHandle_SchemaTool(t *testing.T) {
	resp := call(t, newSession(), `{"tool":"schema"}`)
	require.True(t, resp.OK())
	assert.IsType(t, []tools.Spec{}, resp.Result)
	assert.Contains(t, resp.String, "fingerprint")
}

func TestHandle_Fingerprint(t *testing.T) {
	a := call(t, newSession(), `{"tool":"fingerprint","params":{"expr":{"add":["x","y"]}}}`)
	b := call(t, newSession(), `{"tool":"fingerprint","params":{"expr":{"add":["y","x"]}}}`)
	require.True(t, a.OK())
	assert.Len(t, a.String, 64)
	assert.Equal(t, a.String, b.String)
}
