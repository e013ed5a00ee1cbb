// Package export drives the CSV data export: an in-terminal preview and
// a download that honors the server's suggested filename.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
	"clinadm/internal/shared/logger"
)

const dataPath = "/export/data"

// fallbackFilename is used when the server sends no Content-Disposition.
const fallbackFilename = "export.csv"

type Service struct {
	client *api.Client
	gate   *authorization.Gate
	role   authorization.UserRole
}

func NewService(client *api.Client, gate *authorization.Gate, role authorization.UserRole) *Service {
	return &Service{client: client, gate: gate, role: role}
}

// Preview fetches the export and parses it into rows, header first.
func (s *Service) Preview(ctx context.Context) ([][]string, error) {
	if err := s.allowed(); err != nil {
		return nil, err
	}

	data, _, err := s.client.Download(ctx, dataPath, nil)
	if err != nil {
		return nil, err
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, errors.NewInternalError("export is not valid CSV", err.Error())
	}
	return rows, nil
}

// Download saves the export into dir under the server's suggested
// filename and returns the path written.
func (s *Service) Download(ctx context.Context, dir string) (string, error) {
	if err := s.allowed(); err != nil {
		return "", err
	}

	data, filename, err := s.client.Download(ctx, dataPath, nil)
	if err != nil {
		return "", err
	}
	if filename == "" {
		filename = fallbackFilename
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	logger.Info("export written", "path", path, "bytes", len(data))
	return path, nil
}

func (s *Service) allowed() error {
	if !s.gate.Allowed(s.role, authorization.ObjectExport, authorization.ActionRun) {
		return errors.NewForbiddenError("export is not available for this account")
	}
	return nil
}
