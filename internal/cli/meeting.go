package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newMeetingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Browse client meetings",
	}
	cmd.AddCommand(newMeetingListCmd())
	return cmd
}

func newMeetingListCmd() *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID <= 0 {
				return fmt.Errorf("--client is required")
			}
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			meetings, err := e.api.ListMeetings(cmd.Context(), clientID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tWHEN\tTITLE\tLINK")
			for _, m := range meetings {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.MeetingID, m.ScheduledFor.Local().Format(time.RFC822), m.Title, m.MeetingLink)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "Client ID")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}
