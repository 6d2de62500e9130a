package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Read and write client notes",
	}
	cmd.AddCommand(newNoteListCmd())
	cmd.AddCommand(newNoteAddCmd())
	return cmd
}

func newNoteListCmd() *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID <= 0 {
				return fmt.Errorf("--client is required")
			}
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			notes, err := e.api.ListNotes(cmd.Context(), clientID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range notes {
				_, _ = fmt.Fprintf(out, "[%s] %s: %s\n", n.CreatedAt.Local().Format(time.DateOnly), n.Author, n.Body)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "Client ID")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newNoteAddCmd() *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Attach a note to a client",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID <= 0 {
				return fmt.Errorf("--client is required")
			}
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			note, err := e.api.CreateNote(cmd.Context(), clientID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added note %d\n", note.NoteID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&clientID, "client", 0, "Client ID")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}
