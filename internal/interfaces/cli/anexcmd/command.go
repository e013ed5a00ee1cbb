// Package anexcmd is the interactive editor for a patient's anex list.
// It drives the row-level edit session and submits the whole list as a
// batch replacement on save.
package anexcmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clinadm/internal/application/patients"
	"clinadm/internal/domain/anex"
	"clinadm/internal/interfaces/cli/app"
	"clinadm/internal/interfaces/cli/prompt"
	"clinadm/internal/interfaces/cli/render"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "anex <patient-id>",
		Short: "Edit a patient's anex entries",
		Long:  "Open the interactive editor for a patient's billing/assignment entries. Changes are held locally and replace the server list only on save.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnex,
	}
}

func runAnex(cmd *cobra.Command, args []string) error {
	a, err := app.Bootstrap()
	if err != nil {
		return err
	}
	role, err := a.Role()
	if err != nil {
		return err
	}
	if !a.Gate.Allowed(role, authorization.ObjectPatients, authorization.ActionAnexEdit) {
		return errors.NewForbiddenError("the anex editor is not available for your role")
	}

	patientID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.NewValidationError("patient id must be a number")
	}

	svc := patients.NewAnexService(a.Client, role)
	editor, err := svc.Open(cmd.Context(), patientID)
	if err != nil {
		return err
	}

	return runLoop(cmd.Context(), prompt.New(), svc, editor, patientID)
}

func runLoop(ctx context.Context, p *prompt.Prompter, svc *patients.AnexService, editor *anex.Editor, patientID int64) error {
	fmt.Println("Commands: add, edit <#>, remove <#>, save, quit")
	for {
		render.AnexRows(os.Stdout, editor)

		line, err := p.Line("anex")
		if err != nil {
			return err
		}
		verb, arg, _ := strings.Cut(line, " ")

		switch verb {
		case "add":
			if _, err := editor.AddRow(); err != nil {
				fmt.Println(err)
				continue
			}
			editRow(p, editor)
		case "edit":
			i, err := rowIndex(arg)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := editor.EditRow(i); err != nil {
				fmt.Println(err)
				continue
			}
			editRow(p, editor)
		case "remove":
			i, err := rowIndex(arg)
			if err != nil {
				fmt.Println(err)
				continue
			}
			confirmed := p.Confirm(fmt.Sprintf("Remove row %d?", i))
			if err := editor.Remove(i, confirmed); err != nil {
				fmt.Println(err)
			}
		case "save":
			if err := svc.Save(ctx, patientID, editor); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Saved")
			return nil
		case "quit", "q":
			return nil
		case "":
		default:
			fmt.Println("Commands: add, edit <#>, remove <#>, save, quit")
		}
	}
}

// editRow prompts the draft for the row currently in editing state and
// applies it. A rejected draft leaves the row editing, so the user gets
// another attempt or an explicit cancel.
func editRow(p *prompt.Prompter, editor *anex.Editor) {
	for editor.Editing() {
		current, err := editor.Row(editor.EditingIndex())
		if err != nil {
			editor.Cancel()
			return
		}

		draft, err := promptDraft(p, current)
		if err != nil {
			editor.Cancel()
			return
		}

		if err := editor.Apply(draft); err != nil {
			fmt.Println(err)
			if !p.Confirm("Try again?") {
				editor.Cancel()
			}
		}
	}
}

func promptDraft(p *prompt.Prompter, current anex.LineItem) (anex.LineItem, error) {
	doctor, err := p.LineDefault("Doctor id (blank for none)", refString(current.DoctorID))
	if err != nil {
		return anex.LineItem{}, err
	}
	service, err := p.LineDefault("Service id", intString(current.ServiceID))
	if err != nil {
		return anex.LineItem{}, err
	}
	finance, err := p.LineDefault("Funder id (blank for self-funded)", refString(current.FinanceID))
	if err != nil {
		return anex.LineItem{}, err
	}
	payable, err := p.LineDefault("Payable amount", amountString(current.PayableAmount))
	if err != nil {
		return anex.LineItem{}, err
	}
	paid, err := p.LineDefault("Paid amount", amountString(current.PaidAmount))
	if err != nil {
		return anex.LineItem{}, err
	}

	serviceID := int64(0)
	if ref := anex.ParseRef(service); ref != nil {
		serviceID = *ref
	}
	return anex.LineItem{
		DoctorID:      anex.ParseRef(doctor),
		ServiceID:     serviceID,
		FinanceID:     anex.ParseRef(finance),
		PayableAmount: anex.ParseAmount(payable),
		PaidAmount:    anex.ParseAmount(paid),
	}, nil
}

func rowIndex(arg string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, errors.NewValidationError("row number required")
	}
	return i, nil
}

func refString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func intString(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func amountString(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
