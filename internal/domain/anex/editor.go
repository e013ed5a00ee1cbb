package anex

import (
	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

const noEdit = -1

type row struct {
	item      LineItem
	persisted bool
}

// Editor is the per-patient edit session over the anex list. Rows move
// between viewing and editing; at most one row is in editing at a time,
// and the session cannot be saved while a row is mid-edit.
type Editor struct {
	role authorization.UserRole
	rows []row

	editing int
	backup  LineItem
}

// NewEditor opens an edit session over the items fetched from the server.
func NewEditor(items []LineItem, role authorization.UserRole) *Editor {
	rows := make([]row, len(items))
	for i, item := range items {
		rows[i] = row{item: item, persisted: true}
	}
	return &Editor{role: role, rows: rows, editing: noEdit}
}

// Editing reports whether any row is currently mid-edit.
func (e *Editor) Editing() bool {
	return e.editing != noEdit
}

// EditingIndex returns the index of the row being edited, or -1.
func (e *Editor) EditingIndex() int {
	return e.editing
}

// Len returns the number of rows, including an in-progress new row.
func (e *Editor) Len() int {
	return len(e.rows)
}

// Row returns the item at index i.
func (e *Editor) Row(i int) (LineItem, error) {
	if i < 0 || i >= len(e.rows) {
		return LineItem{}, errors.NewValidationError("no such row")
	}
	return e.rows[i].item, nil
}

// AddRow appends a blank row and puts it in editing state. Adding is
// blocked while another row is mid-edit so a partial edit is never
// silently discarded.
func (e *Editor) AddRow() (int, error) {
	if err := e.requireIdle(); err != nil {
		return 0, err
	}
	e.rows = append(e.rows, row{})
	e.editing = len(e.rows) - 1
	e.backup = LineItem{}
	return e.editing, nil
}

// EditRow puts an existing row into editing state.
func (e *Editor) EditRow(i int) error {
	if err := e.requireIdle(); err != nil {
		return err
	}
	if i < 0 || i >= len(e.rows) {
		return errors.NewValidationError("no such row")
	}
	e.editing = i
	e.backup = e.rows[i].item
	return nil
}

// Apply validates the draft and moves the editing row back to viewing.
// A service reference is mandatory; doctor and finance references are
// optional. On a failed check the row stays in editing state.
func (e *Editor) Apply(draft LineItem) error {
	if !e.Editing() {
		return errors.NewValidationError("no row is being edited")
	}
	if draft.ServiceID <= 0 {
		return errors.NewValidationError("a service must be selected")
	}

	// The id is server-issued and survives the edit untouched.
	draft.ID = e.rows[e.editing].item.ID
	e.rows[e.editing].item = draft
	e.editing = noEdit
	return nil
}

// Cancel abandons the in-progress edit: a freshly added row disappears,
// an existing row reverts to its pre-edit value.
func (e *Editor) Cancel() {
	if !e.Editing() {
		return
	}
	i := e.editing
	e.editing = noEdit
	if !e.rows[i].persisted && e.backup == (LineItem{}) && e.rows[i].item == (LineItem{}) {
		e.rows = append(e.rows[:i], e.rows[i+1:]...)
		return
	}
	e.rows[i].item = e.backup
}

// Remove drops a row from the list. Removing a persisted row is an
// administrator action and always needs an explicit confirmation; rows
// added in this session can be removed by whoever added them.
func (e *Editor) Remove(i int, confirmed bool) error {
	if err := e.requireIdle(); err != nil {
		return err
	}
	if i < 0 || i >= len(e.rows) {
		return errors.NewValidationError("no such row")
	}
	if e.rows[i].persisted && !e.role.IsAdmin() {
		return errors.NewForbiddenError("only an administrator can remove saved entries")
	}
	if !confirmed {
		return errors.NewValidationError("removal requires confirmation")
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	return nil
}

// CanSave reports whether the session may be submitted. Saving while a
// row is mid-edit is rejected with a user-facing message instead of
// silently discarding the in-progress row.
func (e *Editor) CanSave() error {
	if e.Editing() {
		return errors.NewValidationError("apply or cancel the row being edited before saving")
	}
	return nil
}

// Items returns the full reconciled list, in order: unmodified rows,
// edited rows, and newly added rows, with removed rows excluded. This is
// exactly the batch-replace payload.
func (e *Editor) Items() []LineItem {
	items := make([]LineItem, len(e.rows))
	for i, r := range e.rows {
		items[i] = r.item
	}
	return items
}

func (e *Editor) requireIdle() error {
	if e.Editing() {
		return errors.NewValidationError("another row is being edited")
	}
	return nil
}
