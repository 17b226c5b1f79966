package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	intakeroot "github.com/goliatone/go-intake"
	"github.com/goliatone/go-intake/pkg/loader"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/tui"
	"github.com/goliatone/go-intake/pkg/view"
)

type renderFlags struct {
	renderer string
	format   string
	output   string
	action   string
	runtime  string
	wait     time.Duration
}

func newRenderCmd(flags *rootFlags) *cobra.Command {
	rf := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the intake form as HTML, or collect it in the terminal without submitting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					a.logger.Warn("shutdown", zap.Error(err))
				}
			}()

			var state loader.State
			if rf.wait > 0 {
				acquireCtx, cancel := context.WithTimeout(ctx, rf.wait)
				state = a.loader.Acquire(acquireCtx)
				cancel()
			}

			html, themeCfg, err := a.htmlRenderer()
			if err != nil {
				return err
			}
			terminal, err := tui.New(tui.WithOutputFormat(tui.OutputFormat(rf.format)))
			if err != nil {
				return err
			}
			registry := render.NewRegistry()
			registry.MustRegister(html)
			registry.MustRegister(terminal)
			renderer, err := registry.Get(rf.renderer)
			if err != nil {
				return err
			}
			page := view.Build(view.Input{
				Address:    state,
				Action:     rf.action,
				Scripts:    a.head.Scripts(),
				RuntimeURL: rf.runtime,
			})
			page.Theme = themeCfg

			out, err := renderer.Render(ctx, page)
			if err != nil {
				return err
			}
			if rf.output == "" || rf.output == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(rf.output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", rf.output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", rf.output)
			return nil
		},
	}
	cmd.Flags().StringVar(&rf.renderer, "renderer", "vanilla", "renderer: vanilla (HTML) or tui (prompt, then print the values)")
	cmd.Flags().StringVar(&rf.format, "format", string(tui.OutputFormatJSON), "tui output: json, form or pretty")
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&rf.action, "action", "/", "form action URL")
	cmd.Flags().StringVar(&rf.runtime, "runtime", "/runtime/"+intakeroot.RuntimeScript, "address runtime script URL")
	cmd.Flags().DurationVar(&rf.wait, "wait", 0, "acquire the maps script before rendering, up to this long")
	return cmd
}
