package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/export"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/repository"
)

func newExportCommand(a *app) *cobra.Command {
	var (
		owner  string
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Export one actor's records of a kind as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			if err := checkKind(kind); err != nil {
				return err
			}
			if owner == "" {
				return fmt.Errorf("--owner is required")
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := repository.NewRecordRepository[map[string]any](db, kind).FetchAll(cmd.Context(), owner)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, f, export.NewDocument(kind, records, time.Now())); err != nil {
				return err
			}
			if out != "" {
				a.logger.Info("export written",
					zap.String("kind", kind), zap.String("owner", owner),
					zap.String("path", out), zap.Int("records", len(records)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "actor whose records are exported")
	cmd.Flags().StringVar(&format, "format", "json", "json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
