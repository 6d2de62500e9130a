package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Browse agency teams",
	}
	cmd.AddCommand(newTeamListCmd())
	return cmd
}

func newTeamListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			teams, err := e.api.ListTeams(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tCLIENTS")
			for _, team := range teams {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", team.TeamID, team.Name, team.MemberCount, team.ClientCount)
			}
			return w.Flush()
		},
	}
}
