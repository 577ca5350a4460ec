package tools

import "encoding/json"

// Spec describes one tool for agent registration.
type Spec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON Schema of a tool's params.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property is the schema of a single param. Expressions accept the typed
// tree, or the compact form as a string, number or one-key object.
type Property struct {
	Type        any    `json:"type"`
	Description string `json:"description,omitempty"`
}

var exprTypes = []string{"object", "string", "integer"}

// Schema returns the specs of all tools sorted by name.
func Schema() []Spec {
	names := Names()
	out := make([]Spec, 0, len(names))
	for _, name := range names {
		t := registry[name]
		props := make(map[string]Property, len(t.params))
		required := []string{}
		for _, p := range t.params {
			var typ any = p.kind
			switch p.kind {
			case "expression":
				typ = exprTypes
			case "symbol":
				typ = []string{"string", "object"}
			case "expressions", "symbols":
				typ = "array"
			}
			props[p.name] = Property{Type: typ, Description: p.desc}
			if p.required {
				required = append(required, p.name)
			}
		}
		out = append(out, Spec{
			Name:        t.name,
			Description: t.description,
			InputSchema: InputSchema{Type: "object", Properties: props, Required: required},
		})
	}
	return out
}

// SchemaJSON returns {"tools": Schema()} as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(map[string]any{"tools": Schema()}, "", "  ")
}
