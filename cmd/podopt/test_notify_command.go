package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podopt/internal/catalog"
	"podopt/internal/daemon"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *catalog.Store) error {
				d, err := daemon.New(cfg, store, ctx.cliLogger())
				if err != nil {
					return err
				}
				sent, message, err := d.TestNotification(cmd.Context())
				if message != "" {
					fmt.Fprintln(cmd.OutOrStdout(), message)
				} else if !sent {
					fmt.Fprintln(cmd.OutOrStdout(), "Notification not sent")
				}
				return err
			})
		},
	}
}
