// Package crud is the generic list/filter/edit workflow shared by every
// resource view. One Manager serves one resource; the schema drives both
// the table columns and the form payloads, so there is no per-resource
// service code.
package crud

import (
	"context"
	"net/http"
	"net/url"

	"clinadm/internal/domain/record"
	"clinadm/internal/infrastructure/api"
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
	"clinadm/internal/shared/logger"
)

// FilterSpec describes one filter input of a resource view. Resets names
// the dependent filters that must be cleared whenever this one changes,
// so a narrower scope never carries a stale sub-selection.
type FilterSpec struct {
	Name        string
	Placeholder string
	Options     []string
	Resets      []string
}

// Manager runs the fetch/save/delete cycle for one resource.
type Manager struct {
	client  *api.Client
	schema  record.Schema
	gate    *authorization.Gate
	role    authorization.UserRole
	filters []FilterSpec
	active  map[string]string
	records []record.Record
}

func NewManager(client *api.Client, schema record.Schema, gate *authorization.Gate, role authorization.UserRole, filters ...FilterSpec) *Manager {
	return &Manager{
		client:  client,
		schema:  schema,
		gate:    gate,
		role:    role,
		filters: filters,
		active:  make(map[string]string),
	}
}

// Schema returns the resource schema the manager serves.
func (m *Manager) Schema() record.Schema {
	return m.schema
}

// Filters returns the filter specs of this view.
func (m *Manager) Filters() []FilterSpec {
	return m.filters
}

// SetFilter records a filter value and clears every filter declared
// dependent on it.
func (m *Manager) SetFilter(name, value string) error {
	spec := m.filterSpec(name)
	if spec == nil {
		return errors.NewValidationError("unknown filter: " + name)
	}
	m.active[name] = value
	for _, dep := range spec.Resets {
		delete(m.active, dep)
	}
	return nil
}

// Filter returns the active value of a filter, "" when unset.
func (m *Manager) Filter(name string) string {
	return m.active[name]
}

// Query renders the active filters as query parameters. Blank values
// never reach the server.
func (m *Manager) Query() url.Values {
	params := url.Values{}
	for name, value := range m.active {
		if value == "" {
			continue
		}
		params.Set(name, value)
	}
	return params
}

// Fetch loads the filtered collection and replaces the local cache.
func (m *Manager) Fetch(ctx context.Context) error {
	var records []record.Record
	opts := &api.RequestOptions{Params: m.Query()}
	if err := m.client.Request(ctx, http.MethodGet, m.schema.CollectionPath(), opts, &records); err != nil {
		return err
	}
	m.records = records
	return nil
}

// Records returns the collection from the last successful Fetch.
func (m *Manager) Records() []record.Record {
	return m.records
}

// Save validates and submits one record: a record without an id is
// created, one with an id replaces the server copy. On success the
// collection is re-fetched so the view never shows stale rows.
func (m *Manager) Save(ctx context.Context, rec record.Record) error {
	if err := record.Validate(m.schema, rec); err != nil {
		return err
	}
	payload, err := record.BuildPayload(m.schema, rec)
	if err != nil {
		return err
	}

	method := http.MethodPost
	path := m.schema.CollectionPath()
	if id, ok := rec.ID(); ok {
		method = http.MethodPut
		path = m.schema.ElementPath(id)
	}

	if err := m.client.Request(ctx, method, path, &api.RequestOptions{Body: payload}, nil); err != nil {
		return err
	}
	logger.Info("record saved", "resource", m.schema.Resource, "method", method)
	return m.Fetch(ctx)
}

// Delete removes an existing record after the confirm callback agrees.
// The action is offered to administrators only; on success the
// collection is re-fetched.
func (m *Manager) Delete(ctx context.Context, rec record.Record, confirm func() bool) error {
	id, ok := rec.ID()
	if !ok {
		return errors.NewValidationError("record has not been saved yet")
	}
	if !m.gate.Allowed(m.role, m.schema.Resource, authorization.ActionDelete) {
		return errors.NewForbiddenError("only an administrator can delete records")
	}
	if confirm != nil && !confirm() {
		return nil
	}

	if err := m.client.Request(ctx, http.MethodDelete, m.schema.ElementPath(id), nil, nil); err != nil {
		return err
	}
	logger.Info("record deleted", "resource", m.schema.Resource, "id", id)
	return m.Fetch(ctx)
}

func (m *Manager) filterSpec(name string) *FilterSpec {
	for i := range m.filters {
		if m.filters[i].Name == name {
			return &m.filters[i]
		}
	}
	return nil
}
