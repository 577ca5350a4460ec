package gocas_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gocas"
)

func TestJSON_RoundTrip(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	f, err := e.Apply("f", x, y)
	require.NoError(t, err)
	inputs := []gocas.Expr{
		e.Frac(-3, 4),
		e.Add(e.Pow(x, e.Int(2)), e.Mul(e.Int(2), x, y), e.Int(1)),
		e.Div(e.Mul(e.Sqrt(e.Int(2)), e.Sqrt(e.Pi())), e.Int(2)),
		e.Mul(e.Exp(x), e.Sin(x)),
		e.Log(e.Cos(y)),
		e.Mul(e.Sqrt(e.Int(2)), e.I()),
		e.E(),
		e.NegInfinity(),
		f,
	}
	for _, in := range inputs {
		t.Run(e.String(in), func(t *testing.T) {
			data, err := e.MarshalExpr(in)
			require.NoError(t, err)
			out, err := e.UnmarshalExpr(data)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestToJSON_Shape(t *testing.T) {
	e, x := newEngine(t)
	got := e.ToJSON(e.Pow(x, e.Int(2)))
	assert.Equal(t, map[string]any{
		"type": "pow",
		"base": map[string]any{"type": "sym", "name": "x"},
		"exp":  map[string]any{"type": "num", "value": "2"},
	}, got)
	assert.Equal(t, map[string]any{"type": "func", "name": "sin", "arg": map[string]any{"type": "sym", "name": "x"}}, e.ToJSON(e.Sin(x)))
	assert.Equal(t, map[string]any{"type": "const", "name": "pi"}, e.ToJSON(e.Pi()))
}

func TestFromJSON_TypedTree(t *testing.T) {
	e, x := newEngine(t)
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "add",
		"terms": [
			{"type": "func", "name": "sin", "arg": {"type": "sym", "name": "x"}},
			{"type": "num", "value": "1/2"}
		]
	}`), &data))
	got, err := e.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, e.Add(e.Sin(x), e.Frac(1, 2)), got)
}

func TestFromJSON_Errors(t *testing.T) {
	e, _ := newEngine(t)
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"missing type", `{}`, "field 'type'"},
		{"unknown type", `{"type":"matrix"}`, `unknown type "matrix"`},
		{"bad number", `{"type":"num","value":"x"}`, "not an exact number"},
		{"terms not array", `{"type":"add","terms":{}}`, `"terms" must be an array`},
		{"nested error", `{"type":"add","terms":[{"type":"sym","name":"pi"}]}`, "add: terms[0]"},
		{"unknown constant", `{"type":"const","name":"tau"}`, "unknown constant"},
		{"missing base", `{"type":"pow","exp":{"type":"num","value":"2"}}`, `missing "base"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data map[string]any
			require.NoError(t, json.Unmarshal([]byte(tt.in), &data))
			_, err := e.FromJSON(data)
			require.Error(t, err)
			assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDecode_Compact(t *testing.T) {
	e, x := newEngine(t)
	y := e.MustSymbol("y")
	f, err := e.Apply("f", x, y)
	require.NoError(t, err)
	tests := []struct {
		name string
		in   string
		want gocas.Expr
	}{
		{"symbol", `"x"`, x},
		{"integer", `7`, e.Int(7)},
		{"fraction", `"-1/2"`, e.Frac(-1, 2)},
		{"decimal string", `"0.25"`, e.Frac(1, 4)},
		{"constant", `"pi"`, e.Pi()},
		{"negative infinity", `"-oo"`, e.NegInfinity()},
		{"power", `{"pow": ["x", 2]}`, e.Pow(x, e.Int(2))},
		{"nested", `{"add": ["x", {"mul": [2, "y"]}]}`, e.Add(x, e.Mul(e.Int(2), y))},
		{"sub", `{"sub": ["x", 1]}`, e.Sub(x, e.Int(1))},
		{"div", `{"div": [1, "x"]}`, e.Pow(x, e.Int(-1))},
		{"neg", `{"neg": "x"}`, e.Neg(x)},
		{"function", `{"sin": "x"}`, e.Sin(x)},
		{"sqrt", `{"sqrt": 8}`, e.Mul(e.Int(2), e.Sqrt(e.Int(2)))},
		{"uninterpreted", `{"f": ["x", "y"]}`, f},
		{"typed inside compact", `{"exp": {"type": "sym", "name": "x"}}`, e.Exp(x)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.UnmarshalExpr([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, e.String(tt.want), e.String(got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_YAML(t *testing.T) {
	e, x := newEngine(t)
	var v any
	require.NoError(t, yaml.Unmarshal([]byte("add:\n  - pow: [x, 2]\n  - 1\n"), &v))
	got, err := e.Decode(v)
	require.NoError(t, err)
	assert.Equal(t, e.Add(e.Pow(x, e.Int(2)), e.Int(1)), got)
}

func TestDecode_Errors(t *testing.T) {
	e, _ := newEngine(t)
	for _, in := range []string{`null`, `2.5`, `{"pow": ["x"]}`, `{"a": 1, "b": 2}`, `[1, 2]`, `true`, `{"sin": ["x", "y"]}`, `"a b"`} {
		t.Run(in, func(t *testing.T) {
			_, err := e.UnmarshalExpr([]byte(in))
			require.Error(t, err)
			assert.ErrorIs(t, err, gocas.ErrInvalidArgument)
		})
	}
}
