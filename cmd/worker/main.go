package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/config"
	"github.com/freelancehub/dashboard-backend/internal/bootstrap"
	"github.com/freelancehub/dashboard-backend/internal/logging"
	"github.com/freelancehub/dashboard-backend/internal/storage/postgres"
)

// app holds what every subcommand needs. Tests replace openDB.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	openDB func(ctx context.Context) (*sql.DB, error)
}

func (a *app) init() error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logger == nil {
		logger, err := logging.New(a.cfg.App.Environment, a.cfg.App.LogLevel)
		if err != nil {
			return err
		}
		a.logger = logger
	}
	if a.openDB == nil {
		if a.cfg.Database.Backend == config.StoreBackendMemory {
			return fmt.Errorf("the worker needs STORE_BACKEND=%s", config.StoreBackendPostgres)
		}
		a.openDB = func(ctx context.Context) (*sql.DB, error) {
			return postgres.NewConnection(ctx, &a.cfg.Database)
		}
	}
	return nil
}

func checkKind(kind string) error {
	if !slices.Contains(bootstrap.Kinds(), kind) {
		return fmt.Errorf("unknown kind %q (one of %v)", kind, bootstrap.Kinds())
	}
	return nil
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "worker",
		Short:         "Maintenance jobs for the dashboard record store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.AddCommand(newListCommand(a), newExportCommand(a), newScheduleCommand(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := newRootCommand(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
