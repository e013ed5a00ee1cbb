// Package wizard implements the three-step confirmation flow for
// irreversible destructive actions: look the target up, re-authenticate,
// then acknowledge the final warning. Every step must succeed in order;
// a failure keeps the flow at the step that failed instead of starting
// over.
package wizard

import (
	"context"
	"net/http"

	"clinadm/internal/domain/record"
	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
	"clinadm/internal/shared/logger"
)

// Step identifies where the flow currently stands.
type Step int

const (
	StepLookup Step = iota + 1
	StepConfirmIdentity
	StepFinalWarning
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepLookup:
		return "lookup"
	case StepConfirmIdentity:
		return "confirm identity"
	case StepFinalWarning:
		return "final warning"
	case StepDone:
		return "done"
	}
	return "unknown"
}

// PatientPurge walks an administrator through the permanent removal of a
// patient and every linked sub-record.
type PatientPurge struct {
	client *api.Client

	step           Step
	target         record.Record
	personalNumber string
	password       string
}

// NewPatientPurge opens the flow. Only administrators may run it; the
// gate decision mirrors what the server enforces on the purge endpoints.
func NewPatientPurge(client *api.Client, gate *authorization.Gate, role authorization.UserRole) (*PatientPurge, error) {
	if !gate.Allowed(role, authorization.ObjectPatients, authorization.ActionPurge) {
		return nil, errors.NewForbiddenError("only an administrator can permanently delete a patient")
	}
	return &PatientPurge{client: client, step: StepLookup}, nil
}

// Step returns the current position in the flow.
func (p *PatientPurge) Step() Step {
	return p.step
}

// Target returns the looked-up patient, nil before a successful lookup.
func (p *PatientPurge) Target() record.Record {
	return p.target
}

// Lookup resolves the personal number to a patient record. On failure
// the flow stays at the lookup step.
func (p *PatientPurge) Lookup(ctx context.Context, personalNumber string) error {
	if p.step != StepLookup {
		return errors.NewValidationError("lookup already completed")
	}
	if personalNumber == "" {
		return errors.NewValidationError("a personal number is required")
	}

	var target record.Record
	if err := p.client.Request(ctx, http.MethodGet, "/admin/find-patient/"+personalNumber, nil, &target); err != nil {
		return err
	}

	p.target = target
	p.personalNumber = personalNumber
	p.step = StepConfirmIdentity
	return nil
}

// ConfirmIdentity re-checks the administrator's own password. A wrong
// password keeps the flow at this step; it never falls back to lookup.
func (p *PatientPurge) ConfirmIdentity(ctx context.Context, password string) error {
	if p.step != StepConfirmIdentity {
		return errors.NewValidationError("identity check is not the current step")
	}

	body := map[string]string{"password": password}
	if err := p.client.Request(ctx, http.MethodPost, "/admin/verify-password", &api.RequestOptions{Body: body}, nil); err != nil {
		return err
	}

	p.password = password
	p.step = StepFinalWarning
	return nil
}

// Execute performs the purge. The caller must pass an explicit
// acknowledgement of the final warning; a server rejection sends the
// flow back to the identity check with the target preserved.
func (p *PatientPurge) Execute(ctx context.Context, acknowledged bool) error {
	if p.step != StepFinalWarning {
		return errors.NewValidationError("the final warning has not been reached")
	}
	if !acknowledged {
		return errors.NewValidationError("the deletion must be explicitly acknowledged")
	}

	body := map[string]string{
		"personal_number": p.personalNumber,
		"password":        p.password,
	}
	if err := p.client.Request(ctx, http.MethodPost, "/admin/delete-patient", &api.RequestOptions{Body: body}, nil); err != nil {
		p.step = StepConfirmIdentity
		p.password = ""
		return err
	}

	logger.Warn("patient purged", "personal_number", p.personalNumber)
	p.password = ""
	p.step = StepDone
	return nil
}
