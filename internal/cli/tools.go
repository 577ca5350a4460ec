package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/tools"
)

// NewToolsCommand creates the tools command, which lists the tool catalog.
func NewToolsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				data, err := tools.SchemaJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(data))
				return err
			}
			renderToolTable(w, tools.Schema())
			return nil
		},
	}
}

func renderToolTable(w io.Writer, specs []tools.Spec) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Tool", "Params", "Description"})
	for _, s := range specs {
		var ps []string
		for name := range s.InputSchema.Properties {
			ps = append(ps, name)
		}
		required := make(map[string]bool)
		for _, r := range s.InputSchema.Required {
			required[r] = true
		}
		// required params in declared order, then optional ones sorted
		var opt []string
		for _, p := range ps {
			if !required[p] {
				opt = append(opt, "["+p+"]")
			}
		}
		sort.Strings(opt)
		cols := append(append([]string{}, s.InputSchema.Required...), opt...)
		t.AppendRow(table.Row{s.Name, strings.Join(cols, " "), s.Description})
	}
	t.Render()
}

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	ParamsFile string
}

// NewCallCommand creates the call command, which runs a single tool call.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <tool> [params]",
		Short: "Run one tool call",
		Long: `Run one tool call and print its result.

Params are a JSON or YAML object given inline or with --params-file
(use - for stdin). Expressions use the typed or the compact tree form.

Examples:
  gocas call diff '{"expr": {"log": {"pow": ["x", 2]}}, "var": "x"}'
  gocas call solve '{expr: {add: [{pow: [x, 2]}, 2]}, var: x}'
  gocas call integrate --params-file integrand.yaml --format json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 2 {
				raw = args[1]
			}
			return callTool(cmd, opts, args[0], raw)
		},
	}

	cmd.Flags().StringVarP(&opts.ParamsFile, "params-file", "p", "", "read params from a file (- for stdin)")

	return cmd
}

func callTool(cmd *cobra.Command, opts *CallOptions, name, raw string) error {
	if raw != "" && opts.ParamsFile != "" {
		return NewExitError(ExitCommandError, "give params inline or with --params-file, not both")
	}
	if opts.ParamsFile != "" {
		data, err := readParamsFile(cmd, opts.ParamsFile)
		if err != nil {
			return WrapExitError(ExitCommandError, "read params", err)
		}
		raw = string(data)
	}

	params := map[string]any{}
	if strings.TrimSpace(raw) != "" {
		// YAML is a superset of JSON, so one decoder serves both.
		if err := yaml.Unmarshal([]byte(raw), &params); err != nil {
			return WrapExitError(ExitCommandError, "parse params", err)
		}
	}

	e := gocas.NewEngine(gocas.NewRegistry(), append([]gocas.Option{gocas.WithLogger(opts.Logger)}, opts.Config.EngineOptions()...)...)
	resp := tools.NewSession(e, opts.Logger).Handle(cmd.Context(), tools.Request{Tool: name, Params: params})

	out := opts.formatter(cmd)
	if !resp.OK() {
		if err := out.Error(resp.Kind, resp.Error); err != nil {
			return err
		}
		return NewExitError(ExitFailure, resp.Kind)
	}
	if out.Format == "json" {
		return out.Success(resp)
	}
	text := resp.String
	if resp.LaTeX != "" && resp.LaTeX != resp.String {
		text += "\n" + resp.LaTeX
	}
	return out.Success(text)
}

func readParamsFile(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := rootOpts.formatter(cmd)
			if out.Format == "json" {
				return out.Success(map[string]any{"version": version, "tools": len(tools.Names())})
			}
			return out.Success("gocas " + version)
		},
	}
}
