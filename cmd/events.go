/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cmcs/claimserver/config"
	"github.com/cmcs/claimserver/internal/events"
	"github.com/cmcs/claimserver/pkg/logger"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Claim event utilities",
}

var eventsListenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Subscribe to claim status events and log them",
	Long: `Subscribes to the configured claim status channel and logs every
status change until interrupted. Usage:

	claimserver events listen
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		log, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}

		backend, err := events.NewBackend(cmd.Context(), cfg.Events)
		if err != nil {
			return err
		}

		listener := events.NewListener(backend, cfg.Events.Channel, log)
		defer func() {
			_ = listener.Close()
		}()

		return listener.Listen(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListenCmd)
}
