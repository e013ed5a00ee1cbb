// Package anex models a patient's billing/assignment sub-records and the
// row-level edit workflow over them. The server contract is whole-list
// replacement: a save always carries the full reconciled list, never
// per-row upserts.
package anex

import (
	"strconv"
	"strings"
)

// LineItem is one billing/assignment sub-record of a patient.
// A nil FinanceID means the patient bears the cost directly (self-funded).
type LineItem struct {
	ID            *int64  `json:"id,omitempty"`
	DoctorID      *int64  `json:"doctor_id"`
	ServiceID     int64   `json:"service_id"`
	FinanceID     *int64  `json:"finance_id"`
	PayableAmount float64 `json:"payable_amount"`
	PaidAmount    float64 `json:"paid_amount"`
}

// SelfFunded reports whether the patient pays for this item directly.
func (l LineItem) SelfFunded() bool {
	return l.FinanceID == nil
}

// ParseAmount converts user input to an amount. Anything unparseable
// becomes 0 so the list stays submit-safe.
func ParseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseRef converts user input to an optional reference. Blank input is
// nil (no reference); anything unparseable is also nil.
func ParseRef(s string) *int64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
