package main

import (
	"context"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vcell/internal/config"
	"github.com/vango-dev/vcell/pkg/app"
)

func watchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print each config revision as it is applied",
		Long: `Load the config file into a cell and print every revision that
reaches the cell's observers. Invalid revisions are logged and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "vcell.yaml", "Path to the config file")

	return cmd
}

func runWatch(ctx context.Context, cfg *config.Config, out, logOut io.Writer) error {
	logger := newLogger(cfg, logOut)
	a := app.New(app.WithName(cfg.Name), app.WithLogger(logger))

	// Subscribed before the loop starts; from then on only the loop
	// touches the cell.
	cell := app.NewCell(a, "config", cfg)
	revision := 0
	cell.SubscribeForever(func(c *config.Config) {
		revision++
		fmt.Fprintf(out, "revision %d: %s\n", revision, describe(c))
	})

	runDone := make(chan error, 1)
	go func() { runDone <- a.Run(ctx) }()

	err := config.Watch(ctx, cfg.Path(), a.Loop().Dispatch, cell, logger)
	a.Stop()
	<-runDone
	return err
}

func describe(c *config.Config) string {
	names := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		names = append(names, cell.Name)
	}
	return fmt.Sprintf("name=%s listen=%s store=%s cells=%v", c.Name, c.Listen, c.Store.Backend, names)
}
