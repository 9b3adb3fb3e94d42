// Command hbase-demo recreates a small table, writes one cell, reads it back
// and scans the table for it.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/challenai/hbkit"
	_ "github.com/challenai/hbkit/client"
	"github.com/challenai/hbkit/logger"
	_ "github.com/challenai/hbkit/memstore"
)

const (
	tableName = "myLittleHBaseTable"
	rowKey    = "myLittleRow"
	family    = "myLittleFamily"
	qualifier = "someQualifier"
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
		Use:          "hbase-demo",
		Short:        "Recreate myLittleHBaseTable, put a cell, get it and scan for it",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := hbkit.DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = hbkit.LoadConfig(configPath); err != nil {
					return err
				}
			}
			lvl, err := logger.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout(), logger.New(cmd.ErrOrStderr(), lvl))
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "TOML cluster config, the sandbox cluster when empty")
	return cmd
}

func demoTable() *hbkit.TableDescriptor {
	return hbkit.NewTableDescriptor(tableName).
		AddFamily(hbkit.ColumnFamilyDescriptor{Name: family, MaxVersions: 100, InMemory: true}).
		AddFamily(hbkit.ColumnFamilyDescriptor{Name: family + "1", MaxVersions: 100, InMemory: true})
}

func run(ctx context.Context, cfg *hbkit.Config, out io.Writer, log *slog.Logger) (err error) {
	conn, err := hbkit.Open(ctx, cfg, hbkit.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); err == nil {
			err = cerr
		}
	}()

	policy, err := hbkit.ParseRecreatePolicy(cfg.RecreatePolicy)
	if err != nil {
		return err
	}
	admin, err := conn.Admin()
	if err != nil {
		return err
	}
	if err := admin.WithPolicy(policy).EnsureTable(ctx, demoTable()); err != nil {
		return err
	}

	table, err := conn.Table(tableName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := table.Close(); err == nil {
			err = cerr
		}
	}()

	put := hbkit.NewPut([]byte(rowKey)).Add(family, qualifier, []byte("Some Value"))
	if err := table.Put(ctx, put); err != nil {
		return err
	}

	res, err := table.Get(ctx, hbkit.NewGet([]byte(rowKey)))
	if err != nil {
		return err
	}
	value, _ := res.Value(family, qualifier)
	fmt.Fprintf(out, "GET: %s\n", value)

	cur, err := table.Scan(ctx, (&hbkit.ScanSpec{}).AddColumn(family, qualifier))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cur.Close(ctx); err == nil {
			err = cerr
		}
	}()
	for {
		row, err := cur.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Found row: %s\n", row)
	}
}
