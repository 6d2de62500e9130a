package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Browse client content calendars",
	}
	cmd.AddCommand(newCalendarShowCmd())
	return cmd
}

func newCalendarShowCmd() *cobra.Command {
	var clientID int64
	var month string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a client's content calendar for a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID <= 0 {
				return fmt.Errorf("--client is required")
			}
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			entries, err := e.api.ListCalendar(cmd.Context(), clientID, month)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "DATE\tPLATFORM\tTYPE\tCAPTION")
			for _, entry := range entries {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Date, entry.Platform, entry.ContentType, entry.Caption)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "Client ID")
	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}
