// Package record models API entities as declarative field descriptors
// plus a generic record value. One schema table drives form building,
// table rendering, validation, and payload assembly for every resource.
package record

import (
	"encoding/json"
	"fmt"
)

// Record is a client-side view of one server entity. A record without an
// "id" is new and must be created; a record with an "id" is existing and
// must be updated in place.
type Record map[string]any

// ID returns the record's server-issued identifier. JSON decoding yields
// float64 for numbers, so every numeric shape is accepted.
func (r Record) ID() (int64, bool) {
	v, ok := r["id"]
	if !ok || v == nil {
		return 0, false
	}
	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	case float64:
		return int64(id), true
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// IsNew reports whether the record has not been persisted yet.
func (r Record) IsNew() bool {
	_, ok := r.ID()
	return !ok
}

// StringValue returns the field rendered as a string, "" for absent or nil.
func (r Record) StringValue(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy so edits never mutate a fetched list in place.
func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}
