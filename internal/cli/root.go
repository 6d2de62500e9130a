// Package cli implements the smmctl command tree.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AweemRizwan/smm-optimize-sub001/internal/config"
)

func NewRootCmd(version string) *cobra.Command {
	var homeOverride string
	var verbose bool

	cmd := &cobra.Command{
		Use:          "smmctl",
		Short:        "Command-line client for the SMM-Optimize agency workflow API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, err := config.ResolveHome(homeOverride)
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithHome(cmd.Context(), home))
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&homeOverride, "home", "", "Override client home directory (default: ~/.smm-optimize, env: SMM_HOME)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())

	cmd.AddCommand(newClientCmd())
	cmd.AddCommand(newTeamCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newInvoiceCmd())
	cmd.AddCommand(newMeetingCmd())
	cmd.AddCommand(newCalendarCmd())
	cmd.AddCommand(newNoteCmd())
	cmd.AddCommand(newWatchCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}
