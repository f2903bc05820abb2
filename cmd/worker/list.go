package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/freelancehub/dashboard-backend/internal/dashboard/domain"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/repository"
)

// labelKeys are tried in order to find a human label in a raw payload.
var labelKeys = []string{"name", "title", "tracking_number", "full_name", "institution"}

func label(data map[string]any) string {
	for _, k := range labelKeys {
		if s, ok := data[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return "-"
}

func newListCommand(a *app) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List active records of one kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			if err := checkKind(kind); err != nil {
				return err
			}
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repository.NewRecordRepository[map[string]any](db, kind)
			var records []domain.Record[map[string]any]
			if owner != "" {
				records, err = repo.FetchAll(cmd.Context(), owner)
			} else {
				records, err = repo.FetchEveryOwner(cmd.Context())
			}
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "only list records owned by this actor")
	return cmd
}

func printRecords(w io.Writer, records []domain.Record[map[string]any]) {
	tbl := table.New("ID", "Owner", "Label", "Updated").WithWriter(w)
	for _, r := range records {
		tbl.AddRow(r.ID, r.OwnerID, label(r.Data), r.UpdatedAt.Format("2006-01-02 15:04"))
	}
	tbl.Print()
	fmt.Fprintf(w, "%d record(s)\n", len(records))
}
