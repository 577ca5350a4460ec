// Package worksheet runs YAML worksheets: ordered tool calls over one
// engine, each optionally checked against an expected rendering or error
// kind.
//
//	name: calculus
//	symbols: [x]
//	cells:
//	  - name: antiderivative
//	    tool: integrate
//	    params: {expr: {pow: [x, 2]}, var: x}
//	    expect: x^3/3
//	  - name: back
//	    tool: diff
//	    params: {expr: $antiderivative, var: x}
//	    expect: x^2
//
// A string param of the form $name refers to the result of an earlier cell.
package worksheet

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gocas/internal/tools"
)

// Worksheet is a parsed worksheet file.
type Worksheet struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Symbols     []string `yaml:"symbols,omitempty"`
	Cells       []Cell   `yaml:"cells"`
}

// Cell is one tool call.
type Cell struct {
	Name   string         `yaml:"name"`
	Tool   string         `yaml:"tool"`
	Params map[string]any `yaml:"params"`

	// Expect is the expected text rendering of the result.
	Expect string `yaml:"expect,omitempty"`

	// ExpectError is the expected error kind, e.g. no_closed_form.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Load reads and parses a worksheet file.
func Load(path string) (*Worksheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}
	ws, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ws, nil
}

// Parse decodes a worksheet, rejecting unknown fields.
func Parse(data []byte) (*Worksheet, error) {
	var ws Worksheet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ws); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ws.Validate(); err != nil {
		return nil, fmt.Errorf("invalid worksheet: %w", err)
	}
	return &ws, nil
}

// Validate checks required fields, cell name uniqueness and tool names.
func (ws *Worksheet) Validate() error {
	if ws.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(ws.Cells) == 0 {
		return fmt.Errorf("cells list is required and must be non-empty")
	}
	known := make(map[string]bool)
	for _, name := range tools.Names() {
		known[name] = true
	}
	seen := make(map[string]bool)
	for i, c := range ws.Cells {
		if c.Name == "" {
			return fmt.Errorf("cells[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cells[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
		if !known[c.Tool] {
			return fmt.Errorf("cells[%d] %s: unknown tool %q", i, c.Name, c.Tool)
		}
		if c.Expect != "" && c.ExpectError != "" {
			return fmt.Errorf("cells[%d] %s: expect and expect_error are exclusive", i, c.Name)
		}
	}
	return nil
}
