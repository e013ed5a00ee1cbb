package main

import (
	"os"

	"github.com/spf13/cobra"

	"clinadm/internal/domain/record"
	"clinadm/internal/interfaces/cli/anexcmd"
	"clinadm/internal/interfaces/cli/auth"
	"clinadm/internal/interfaces/cli/exportcmd"
	"clinadm/internal/interfaces/cli/historycmd"
	"clinadm/internal/interfaces/cli/purge"
	"clinadm/internal/interfaces/cli/resource"
	"clinadm/internal/interfaces/cli/useradmin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinadm",
		Short:         "Clinadm - clinic administration console",
		Long:          `Clinadm is the administration console for the clinic REST API: patients, users, funders, services, invitations, audit history, and data export.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	usersCmd := resource.NewCommand(record.Users)
	usersCmd.AddCommand(
		useradmin.NewApproveCommand(),
		useradmin.NewBlockCommand(),
		useradmin.NewUnblockCommand(),
	)

	invitationsCmd := resource.NewCommand(record.Invitations)
	invitationsCmd.AddCommand(useradmin.NewInviteCommand())

	rootCmd.AddCommand(
		auth.NewLoginCommand(),
		auth.NewLogoutCommand(),
		auth.NewWhoamiCommand(),
		auth.NewRegisterCommand(),
		auth.NewAccountCommand(),
		resource.NewCommand(record.Patients),
		usersCmd,
		resource.NewCommand(record.Finances),
		resource.NewCommand(record.Services),
		invitationsCmd,
		anexcmd.NewCommand(),
		historycmd.NewCommand(),
		exportcmd.NewCommand(),
		purge.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
