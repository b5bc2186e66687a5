package main

import (
	"fmt"
	"math"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func ModelsCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models available on the embedding service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			models, err := a.chunker.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, sizeMB(m.Size), m.ModifiedAt)
			}
			return tw.Flush()
		},
	}
}

func PingCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the embedding service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			started := time.Now()
			url := a.chunker.Settings().BaseURL
			if !a.chunker.TestConnection(cmd.Context()) {
				return fmt.Errorf("embedding service at %s is unreachable", url)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up (%s)\n", url, time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
}

func sizeMB(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d MB", int64(math.Round(float64(bytes)/1024/1024)))
}
