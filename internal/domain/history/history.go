// Package history models the server-owned audit log. Entries are
// read-only on the client; the only operation is filtered listing.
package history

import (
	"encoding/json"
	"net/url"
	"time"

	"clinadm/internal/shared/errors"
)

// Action is the kind of change an audit entry records.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionBlock   Action = "BLOCK"
	ActionUnblock Action = "UNBLOCK"
)

// mutating reports whether the action carries a before/after change map
// (as opposed to the flat snapshot of a create or delete).
func (a Action) mutating() bool {
	switch a {
	case ActionUpdate, ActionBlock, ActionUnblock:
		return true
	}
	return false
}

// FieldChange is the old and new value of one field. For CREATE entries
// only New is set; for DELETE entries only Old.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Entry is one audit log record as returned by the server.
type Entry struct {
	Timestamp      time.Time       `json:"timestamp"`
	Actor          *string         `json:"actor"`
	Action         Action          `json:"action"`
	EntityType     string          `json:"entity_type"`
	EntityID       int64           `json:"entity_id"`
	PatientContext *string         `json:"patient"`
	Changes        json.RawMessage `json:"changes"`
}

// ActorLabel returns the display name of the actor. A nil actor means
// the user account has since been deleted.
func (e Entry) ActorLabel() string {
	if e.Actor == nil {
		return "(deleted user)"
	}
	return *e.Actor
}

// ChangeSet decodes the raw changes payload into a uniform per-field
// view. Update-class entries arrive as {field: {old, new}}; create and
// delete entries arrive as a flat {field: value} snapshot.
func (e Entry) ChangeSet() (map[string]FieldChange, error) {
	if len(e.Changes) == 0 {
		return nil, nil
	}

	if e.Action.mutating() {
		var diff map[string]FieldChange
		if err := json.Unmarshal(e.Changes, &diff); err != nil {
			return nil, errors.NewInternalError("cannot decode audit entry changes", err.Error())
		}
		return diff, nil
	}

	var flat map[string]any
	if err := json.Unmarshal(e.Changes, &flat); err != nil {
		return nil, errors.NewInternalError("cannot decode audit entry changes", err.Error())
	}
	set := make(map[string]FieldChange, len(flat))
	for field, value := range flat {
		if e.Action == ActionDelete {
			set[field] = FieldChange{Old: value}
			continue
		}
		set[field] = FieldChange{New: value}
	}
	return set, nil
}

// Filter narrows the listing. Blank values are left out of the query.
type Filter struct {
	Author  string
	Date    string
	Patient string
}

// Values renders the filter as query parameters.
func (f Filter) Values() url.Values {
	params := url.Values{}
	if f.Author != "" {
		params.Set("author", f.Author)
	}
	if f.Date != "" {
		params.Set("date", f.Date)
	}
	if f.Patient != "" {
		params.Set("patient", f.Patient)
	}
	return params
}
