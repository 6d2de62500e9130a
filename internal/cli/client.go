package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Browse agency clients",
	}
	cmd.AddCommand(newClientListCmd())
	cmd.AddCommand(newClientShowCmd())
	return cmd
}

func newClientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			clients, err := e.api.ListClients(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tBUSINESS\tCONTACT\tACCOUNT MANAGER")
			for _, c := range clients {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ClientID, c.BusinessName, c.ContactPerson, c.AccountManager)
			}
			return w.Flush()
		},
	}
}

func newClientShowCmd() *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID <= 0 {
				return fmt.Errorf("--id must be a positive client ID")
			}
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			c, err := e.api.GetClient(cmd.Context(), clientID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Client %d: %s\n", c.ClientID, c.BusinessName)
			if c.ContactPerson != "" {
				_, _ = fmt.Fprintf(out, "  Contact: %s (%s, %s)\n", c.ContactPerson, c.Email, c.Phone)
			}
			if c.AccountManager != "" {
				_, _ = fmt.Fprintf(out, "  Account manager: %s\n", c.AccountManager)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&clientID, "id", 0, "Client ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
