// Package useradmin adds the administrator-only user lifecycle commands
// on top of the generic users CRUD: approve, block, unblock, invite.
package useradmin

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	adminapp "clinadm/internal/application/admin"
	"clinadm/internal/interfaces/cli/app"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

var approveRole string

func NewApproveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending registration and assign its role",
		Args:  cobra.ExactArgs(1),
		RunE:  runApprove,
	}
	cmd.Flags().StringVarP(&approveRole, "role", "r", "", "Role to assign (admin, doctor, staff)")
	cmd.MarkFlagRequired("role")
	return cmd
}

func NewBlockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "block <id>",
		Short: "Block a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetBlocked(cmd, args[0], true)
		},
	}
}

func NewUnblockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <id>",
		Short: "Unblock a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetBlocked(cmd, args[0], false)
		},
	}
}

func NewInviteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invite <email>",
		Short: "Issue a registration invitation",
		Args:  cobra.ExactArgs(1),
		RunE:  runInvite,
	}
}

func newService() (*adminapp.Service, error) {
	a, err := app.Bootstrap()
	if err != nil {
		return nil, err
	}
	role, err := a.Role()
	if err != nil {
		return nil, err
	}
	return adminapp.NewService(a.Client, a.Gate, role), nil
}

func runApprove(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	role := authorization.ParseUserRole(approveRole)
	if role.String() != approveRole {
		return errors.NewValidationError("unknown role: " + approveRole)
	}
	if err := svc.Approve(cmd.Context(), id, role); err != nil {
		return err
	}
	fmt.Printf("User %d approved as %s\n", id, role)
	return nil
}

func runSetBlocked(cmd *cobra.Command, arg string, blocked bool) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	if err := svc.SetBlocked(cmd.Context(), id, blocked); err != nil {
		return err
	}
	if blocked {
		fmt.Printf("User %d blocked\n", id)
	} else {
		fmt.Printf("User %d unblocked\n", id)
	}
	return nil
}

func runInvite(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	invitation, err := svc.Invite(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Invitation sent to %s\n", args[0])
	if token := invitation.StringValue("token"); token != "" {
		fmt.Printf("Registration: clinadm register --token %s\n", token)
	}
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.NewValidationError("id must be a number")
	}
	return id, nil
}
