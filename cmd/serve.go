package main

import (
	"os/signal"
	"syscall"

	"semchunk/api"

	"github.com/spf13/cobra"
)

func ServeCmd(global *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chunker over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("port") {
				a.cfg.AppPort = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return api.NewServer(a.chunker, a.cfg.AppPort, a.registry, a.logger).Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port, overrides app_port")
	return cmd
}
