// Package purge is the console front of the three-step patient deletion
// flow: lookup, identity check, final warning.
package purge

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clinadm/internal/application/wizard"
	"clinadm/internal/domain/record"
	"clinadm/internal/interfaces/cli/app"
	"clinadm/internal/interfaces/cli/prompt"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-patient <personal-number>",
		Short: "Permanently delete a patient and every linked record",
		Long:  "Walk through the secured deletion flow: the patient is looked up by personal number, your password is re-checked, and the deletion only runs after an explicit final confirmation.",
		Args:  cobra.ExactArgs(1),
		RunE:  runPurge,
	}
}

func runPurge(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	role, err := a.Role()
	if err != nil {
		return err
	}

	flow, err := wizard.NewPatientPurge(a.Client, a.Gate, role)
	if err != nil {
		return err
	}

	// Step 1: lookup.
	if err := flow.Lookup(cmd.Context(), args[0]); err != nil {
		return err
	}
	printTarget(flow.Target())

	return runFlow(cmd.Context(), prompt.New(), flow)
}

// runFlow drives the looked-up flow to completion. A wrong password is
// retried in place, and a rejected deletion drops back to the identity
// check with the resolved target preserved, never to lookup.
func runFlow(ctx context.Context, p *prompt.Prompter, flow *wizard.PatientPurge) error {
	for {
		// Step 2: identity check.
		for flow.Step() == wizard.StepConfirmIdentity {
			password, err := p.Password("Your password")
			if err != nil {
				return err
			}
			if err := flow.ConfirmIdentity(ctx, password); err != nil {
				fmt.Println(err)
				if !p.Confirm("Try again?") {
					return nil
				}
			}
		}

		// Step 3: final warning.
		fmt.Println("This permanently deletes the patient and every linked record. There is no undo.")
		if !p.Confirm("Type y to delete") {
			fmt.Println("Aborted")
			return nil
		}
		if err := flow.Execute(ctx, true); err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println("Patient deleted")
		return nil
	}
}

func printTarget(target record.Record) {
	fmt.Printf("Found: %s %s (personal number %s)\n",
		target.StringValue("first_name"),
		target.StringValue("last_name"),
		target.StringValue("personal_number"))
}
