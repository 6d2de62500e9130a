package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newInvoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Browse client invoices",
	}
	cmd.AddCommand(newInvoiceListCmd())
	return cmd
}

func newInvoiceListCmd() *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID <= 0 {
				return fmt.Errorf("--client is required")
			}
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			invoices, err := e.api.ListInvoices(cmd.Context(), clientID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNUMBER\tAMOUNT\tSTATUS")
			for _, inv := range invoices {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", inv.InvoiceID, inv.InvoiceNumber, inv.Amount, inv.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "Client ID")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}
