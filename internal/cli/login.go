package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			out, err := e.api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := e.sess.Establish(out.Access, out.Refresh, out.User); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n",
				color.GreenString(out.User.FullName()), out.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session and local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.sess.Clear(); err != nil {
				return err
			}
			if e.cache != nil {
				_ = e.cache.Purge(cmd.Context())
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			user, ok := e.sess.CurrentUser()
			if !ok {
				// No local snapshot; ask the server (refreshing if needed).
				u, err := e.api.Me(cmd.Context())
				if err != nil {
					return err
				}
				user = *u
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", user.FullName(), user.Email, user.Role)
			return nil
		},
	}
}
