package worksheet

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Formats accepted by Render.
var Formats = []string{"text", "json", "md"}

// Render writes res in the given format: text (a table), json or md.
func Render(w io.Writer, res *Result, format string) error {
	switch format {
	case "json":
		return renderJSON(w, res)
	case "md", "markdown":
		return renderMarkdown(w, res)
	case "text", "":
		return renderTable(w, res)
	}
	return fmt.Errorf("unknown format %q", format)
}

func statusText(c CellResult) string {
	switch c.Status {
	case StatusOK:
		if c.Response.Kind != "" {
			return "ok (" + c.Response.Kind + ")"
		}
		return "ok"
	case StatusError:
		return "error: " + c.Response.Kind
	}
	return "FAIL: " + c.Mismatch
}

// resultText is the text rendering of a cell, or its error message.
func resultText(c CellResult) string {
	if c.Response.OK() {
		return c.Response.String
	}
	return c.Response.Error
}

func summary(res *Result) string {
	return fmt.Sprintf("%d/%d passed", res.Passed, res.Passed+res.Failed)
}

func renderTable(w io.Writer, res *Result) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(res.Name)

	t.AppendHeader(table.Row{"#", "Cell", "Tool", "Result", "LaTeX", "Status"})
	for i, c := range res.Cells {
		t.AppendRow(table.Row{i + 1, c.Name, c.Tool, resultText(c), c.Response.LaTeX, statusText(c)})
	}

	t.Render()
	_, _ = fmt.Fprintln(w, summary(res))
	return nil
}

type jsonCell struct {
	Name     string `json:"name"`
	Tool     string `json:"tool"`
	Status   string `json:"status"`
	String   string `json:"string,omitempty"`
	LaTeX    string `json:"latex,omitempty"`
	Error    string `json:"error,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Mismatch string `json:"mismatch,omitempty"`
}

type jsonResult struct {
	Name   string     `json:"name"`
	Passed int        `json:"passed"`
	Failed int        `json:"failed"`
	Cells  []jsonCell `json:"cells"`
}

func renderJSON(w io.Writer, res *Result) error {
	out := jsonResult{Name: res.Name, Passed: res.Passed, Failed: res.Failed, Cells: make([]jsonCell, len(res.Cells))}
	for i, c := range res.Cells {
		out.Cells[i] = jsonCell{
			Name:     c.Name,
			Tool:     c.Tool,
			Status:   c.Status,
			String:   c.Response.String,
			LaTeX:    c.Response.LaTeX,
			Error:    c.Response.Error,
			Kind:     c.Response.Kind,
			Mismatch: c.Mismatch,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderMarkdown(w io.Writer, res *Result) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", res.Name)
	_, _ = fmt.Fprintln(w, "| # | Cell | Tool | Result | LaTeX | Status |")
	_, _ = fmt.Fprintln(w, "| --- | --- | --- | --- | --- | --- |")
	for i, c := range res.Cells {
		latex := ""
		if c.Response.LaTeX != "" {
			latex = "$" + c.Response.LaTeX + "$"
		}
		cols := []string{
			strconv.Itoa(i + 1),
			mdEscape(c.Name),
			c.Tool,
			"`" + resultText(c) + "`",
			latex,
			mdEscape(statusText(c)),
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", summary(res))
	return nil
}

func mdEscape(s string) string { return strings.ReplaceAll(s, "|", `\|`) }
