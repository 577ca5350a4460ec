package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gocas/internal/worksheet"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Watch bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <worksheet.yaml>...",
		Short: "Run worksheets",
		Long: `Run YAML worksheets and print every cell's result.

Exit codes:
  0 - every cell met its expectation
  1 - one or more cells failed
  2 - command error (unreadable or invalid worksheet)

With --watch the worksheets are re-run whenever they change, until
interrupted.

Examples:
  gocas run notebook.yaml
  gocas run notebook.yaml --format md
  gocas run notebook.yaml --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorksheets(cmd.Context(), opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "re-run worksheets when they change")

	return cmd
}

func runWorksheets(ctx context.Context, opts *RunOptions, paths []string, w io.Writer) error {
	runner := &worksheet.Runner{
		EngineOptions: opts.Config.EngineOptions(),
		Logger:        opts.Logger,
	}

	out := &serialWriter{w: w}
	failed := 0
	for _, path := range paths {
		ok, err := runOne(ctx, runner, opts.Format, path, out)
		if err != nil {
			return err
		}
		if !ok {
			failed++
		}
	}

	if opts.Watch {
		eg, egctx := errgroup.WithContext(ctx)
		for _, path := range paths {
			eg.Go(func() error {
				return worksheet.Watch(egctx, path, opts.Logger, func() {
					if _, err := runOne(egctx, runner, opts.Format, path, out); err != nil {
						opts.Logger.Error("re-run failed", "file", path, "error", err)
					}
				})
			})
		}
		return eg.Wait()
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d worksheets failed", failed, len(paths)))
	}
	return nil
}

// runOne runs and renders one worksheet; it reports whether every cell
// passed. Errors are command errors.
func runOne(ctx context.Context, runner *worksheet.Runner, format, path string, out *serialWriter) (bool, error) {
	ws, err := worksheet.Load(path)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "load worksheet", err)
	}
	res, err := runner.Run(ctx, ws)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "run "+path, err)
	}
	if err := out.render(func(w io.Writer) error { return worksheet.Render(w, res, format) }); err != nil {
		return false, WrapExitError(ExitCommandError, "render", err)
	}
	return res.OK(), nil
}

// serialWriter writes each rendering in one piece, so worksheets re-run
// by concurrent watchers never interleave.
type serialWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *serialWriter) render(fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(buf.Bytes())
	return err
}
