// Package auth holds the session commands: login, logout, whoami, the
// invitation-based register flow, and the signed-in user's own account.
package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"clinadm/internal/application/account"
	"clinadm/internal/domain/record"
	"clinadm/internal/interfaces/cli/app"
	"clinadm/internal/interfaces/cli/forms"
	"clinadm/internal/interfaces/cli/prompt"
)

var (
	username        string
	invitationToken string
)

func NewLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE:  runLogin,
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	return cmd
}

func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE:  runLogout,
	}
}

func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and role",
		RunE:  runWhoami,
	}
}

func NewRegisterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account from an invitation",
		Long:  "Redeem an invitation token and create a new account. The account stays inactive until an administrator approves it and assigns a role.",
		RunE:  runRegister,
	}
	cmd.Flags().StringVarP(&invitationToken, "token", "t", "", "Invitation token (required)")
	cmd.MarkFlagRequired("token")
	return cmd
}

func NewAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "View or edit your own profile",
	}
	cmd.AddCommand(
		&cobra.Command{Use: "show", Short: "Show your profile", RunE: runAccountShow},
		&cobra.Command{Use: "edit", Short: "Edit your profile", RunE: runAccountEdit},
	)
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	p := prompt.New()

	user := username
	if user == "" {
		if user, err = p.Line("Username"); err != nil {
			return err
		}
	}
	password, err := p.Password("Password")
	if err != nil {
		return err
	}

	svc := account.NewService(a.Client, a.Store)
	principal, err := svc.Login(cmd.Context(), user, password)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (%s)\n", principal.Username, principal.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	if err := account.NewService(a.Client, a.Store).Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	principal, err := a.Principal()
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s), session valid until %s\n",
		principal.Username, principal.Role, principal.TokenExpiry.Format("2006-01-02 15:04"))
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	svc := account.NewService(a.Client, a.Store)

	invitation, err := svc.ResolveInvitation(cmd.Context(), invitationToken)
	if err != nil {
		return err
	}
	fmt.Printf("Registering against invitation for %s\n", invitation.StringValue("email"))

	p := prompt.New()
	user := record.Record{"email": invitation.StringValue("email")}
	if err := forms.Fill(p, account.Registration, user); err != nil {
		return err
	}

	if err := svc.Register(cmd.Context(), invitationToken, user); err != nil {
		return err
	}
	fmt.Println("Account created. An administrator must approve it before you can sign in.")
	return nil
}

func runAccountShow(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	if _, err := a.Principal(); err != nil {
		return err
	}

	me, err := account.NewService(a.Client, a.Store).Me(cmd.Context())
	if err != nil {
		return err
	}
	for _, f := range record.Users.TableFields() {
		fmt.Printf("%-16s %s\n", f.Name+":", record.DisplayValue(f, me[f.Name]))
	}
	return nil
}

func runAccountEdit(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	if _, err := a.Principal(); err != nil {
		return err
	}

	svc := account.NewService(a.Client, a.Store)
	me, err := svc.Me(cmd.Context())
	if err != nil {
		return err
	}

	p := prompt.New()
	draft := me.Clone()
	for _, f := range record.Users.FormFields() {
		if f.Name == "role" {
			continue
		}
		if err := forms.FillField(p, f, draft); err != nil {
			return err
		}
	}

	if err := svc.UpdateMe(cmd.Context(), draft); err != nil {
		return err
	}
	fmt.Println("Profile updated")
	return nil
}
