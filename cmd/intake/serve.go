package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the intake form over HTTP",
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

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			renderer, themeCfg, err := a.htmlRenderer()
			if err != nil {
				return err
			}

			srv, err := server.New(server.Deps{
				Loader:   a.loader,
				Document: a.head,
				Sink:     a.sink,
				Renderer: renderer,
				Theme:    themeCfg,
				Widgets:  a.widgets(),
			},
				server.WithAddr(a.cfg.Server.Addr),
				server.WithBasePath(a.cfg.Server.BasePath),
				server.WithTable(a.cfg.Intake.Table),
				server.WithSubmitTimeout(a.cfg.Intake.SubmitTimeout),
				server.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
				server.WithPlaceOptions(a.cfg.PlaceOptions()),
				server.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override server.addr")
	return cmd
}
