package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/internal/bootstrap"
	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/notify"
	pipelineshttp "github.com/freelancehub/dashboard-backend/internal/pipelines/http"
	"github.com/freelancehub/dashboard-backend/internal/pipelines/scheduler"
)

func newScheduleCommand(a *app) *cobra.Command {
	var resync time.Duration
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Queue scheduled pipelines when their cron expression fires",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resync <= 0 {
				return fmt.Errorf("--resync must be positive")
			}
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			deps := dashboard.Deps{SQL: db, Logger: a.logger, CacheTTL: a.cfg.Limits.CacheTTL}
			rdb, err := bootstrap.OpenRedis(ctx, a.cfg.Redis)
			if err != nil {
				a.logger.Warn("redis unavailable, queued runs will not notify", zap.Error(err))
			} else if rdb != nil {
				defer rdb.Close()
				deps.Redis = rdb
				deps.Notifier = notify.NewRedisPublisher(rdb)
			}

			col := pipelineshttp.NewCollection(deps)
			scanner, _ := col.Scanner()
			return scheduler.New(scanner, col.Orch, a.logger).Run(ctx, resync)
		},
	}
	cmd.Flags().DurationVar(&resync, "resync", time.Minute, "how often stored schedules are reloaded")
	return cmd
}
