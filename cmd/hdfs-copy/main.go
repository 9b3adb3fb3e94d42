// Command hdfs-copy uploads local files to HDFS, replacing destinations that
// already exist.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/challenai/hbkit/logger"
	"github.com/challenai/hbkit/transfer"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:          "hdfs-copy",
		Short:        "Copy the configured local files to HDFS",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := transfer.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = transfer.LoadConfig(configPath); err != nil {
					return err
				}
			}
			lvl, err := logger.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			log := logger.New(cmd.ErrOrStderr(), lvl)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			c, err := transfer.Open(ctx, cfg, transfer.WithLogger(log))
			if err != nil {
				return err
			}
			if err := c.CopyAll(ctx, cfg.Files); err != nil {
				_ = c.Close()
				return err
			}
			return c.Close()
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "TOML transfer config, the sandbox namenode when empty")
	return cmd
}
