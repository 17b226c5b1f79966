package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/binder"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/renderers/tui"
)

func newSubmitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Fill in and submit a service request from the terminal",
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

			b := binder.New(a.loader, a.widgets(),
				binder.WithPlacesOptions(a.cfg.PlaceOptions()),
				binder.WithLogger(a.logger),
			)
			defer b.Close()
			go a.loader.Acquire(ctx)

			renderer, err := tui.New()
			if err != nil {
				return err
			}
			inbox := &intake.Inbox{}
			form := intake.New(a.sink,
				intake.WithTable(a.cfg.Intake.Table),
				intake.WithSubmitTimeout(a.cfg.Intake.SubmitTimeout),
				intake.WithNotifier(inbox),
				intake.WithLogger(a.logger),
			)
			defer form.Dispose()

			session, err := tui.NewSession(renderer, form,
				tui.WithNotifications(inbox),
				tui.WithAddressBinder(b),
				tui.WithAddressState(a.loader.State),
				tui.WithSessionLogger(a.logger),
			)
			if err != nil {
				return err
			}
			return session.Run(ctx)
		},
	}
}
