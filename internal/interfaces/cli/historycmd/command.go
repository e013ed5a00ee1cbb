// Package historycmd shows the audit log.
package historycmd

import (
	"os"

	"github.com/spf13/cobra"

	"clinadm/internal/application/audit"
	"clinadm/internal/domain/history"
	"clinadm/internal/interfaces/cli/app"
	"clinadm/internal/interfaces/cli/render"
)

var (
	author  string
	date    string
	patient string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit log",
		RunE:  runHistory,
	}
	cmd.Flags().StringVar(&author, "author", "", "Filter by the acting user")
	cmd.Flags().StringVar(&date, "date", "", "Filter by date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&patient, "patient", "", "Filter by patient personal number")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	role, err := a.Role()
	if err != nil {
		return err
	}

	svc := audit.NewService(a.Client, a.Gate, role)
	entries, err := svc.List(cmd.Context(), history.Filter{
		Author:  author,
		Date:    date,
		Patient: patient,
	})
	if err != nil {
		return err
	}

	render.HistoryEntries(os.Stdout, entries)
	return nil
}
