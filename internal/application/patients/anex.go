// Package patients holds the patient-specific workflows that the generic
// CRUD cycle cannot express, currently the anex batch replace.
package patients

import (
	"context"
	"fmt"
	"net/http"

	"clinadm/internal/domain/anex"
	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/logger"
)

// AnexService loads and saves a patient's anex list. Saving always
// replaces the whole list on the server; there is no per-row endpoint.
type AnexService struct {
	client *api.Client
	role   authorization.UserRole
}

func NewAnexService(client *api.Client, role authorization.UserRole) *AnexService {
	return &AnexService{client: client, role: role}
}

// Open fetches the patient's current anex list and starts an edit
// session over it.
func (s *AnexService) Open(ctx context.Context, patientID int64) (*anex.Editor, error) {
	var items []anex.LineItem
	if err := s.client.Request(ctx, http.MethodGet, s.path(patientID), nil, &items); err != nil {
		return nil, err
	}
	return anex.NewEditor(items, s.role), nil
}

// Save submits the session's reconciled list as a batch replacement.
// A session with a row still mid-edit is rejected before any call is
// made.
func (s *AnexService) Save(ctx context.Context, patientID int64, editor *anex.Editor) error {
	if err := editor.CanSave(); err != nil {
		return err
	}

	opts := &api.RequestOptions{Body: editor.Items()}
	if err := s.client.Request(ctx, http.MethodPut, s.path(patientID), opts, nil); err != nil {
		return err
	}
	logger.Info("anex list replaced", "patient_id", patientID, "rows", editor.Len())
	return nil
}

func (s *AnexService) path(patientID int64) string {
	return fmt.Sprintf("/patients/%d/anex", patientID)
}
