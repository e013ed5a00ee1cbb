package anex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinadm/internal/shared/authorization"
	"clinadm/internal/shared/errors"
)

func int64p(v int64) *int64 { return &v }

func existingItems() []LineItem {
	return []LineItem{
		{ID: int64p(1), ServiceID: 10, DoctorID: int64p(3), FinanceID: int64p(5), PayableAmount: 120, PaidAmount: 120},
		{ID: int64p(2), ServiceID: 11, PayableAmount: 40},
	}
}

func TestOnlyOneRowEditsAtATime(t *testing.T) {
	ed := NewEditor(existingItems(), authorization.RoleStaff)

	require.NoError(t, ed.EditRow(0))

	_, err := ed.AddRow()
	assert.True(t, errors.IsValidationError(err), "add must be blocked while a row is mid-edit")
	assert.Error(t, ed.EditRow(1))
}

func TestApplyRequiresService(t *testing.T) {
	ed := NewEditor(nil, authorization.RoleStaff)
	i, err := ed.AddRow()
	require.NoError(t, err)

	err = ed.Apply(LineItem{PayableAmount: 50})
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, i, ed.EditingIndex(), "row must remain in editing state")

	require.NoError(t, ed.Apply(LineItem{ServiceID: 10, PayableAmount: 50}))
	assert.False(t, ed.Editing())
}

func TestApplyPreservesServerID(t *testing.T) {
	ed := NewEditor(existingItems(), authorization.RoleAdmin)
	require.NoError(t, ed.EditRow(0))
	require.NoError(t, ed.Apply(LineItem{ServiceID: 99, PayableAmount: 10}))

	item, err := ed.Row(0)
	require.NoError(t, err)
	require.NotNil(t, item.ID)
	assert.Equal(t, int64(1), *item.ID)
	assert.Equal(t, int64(99), item.ServiceID)
}

func TestSaveBlockedWhileEditing(t *testing.T) {
	ed := NewEditor(existingItems(), authorization.RoleAdmin)
	require.NoError(t, ed.EditRow(1))

	err := ed.CanSave()
	assert.True(t, errors.IsValidationError(err))

	require.NoError(t, ed.Apply(LineItem{ServiceID: 11}))
	assert.NoError(t, ed.CanSave())
}

func TestCancelDropsNewRowAndRevertsExisting(t *testing.T) {
	ed := NewEditor(existingItems(), authorization.RoleStaff)

	_, err := ed.AddRow()
	require.NoError(t, err)
	ed.Cancel()
	assert.Equal(t, 2, ed.Len(), "abandoned new row must disappear")

	require.NoError(t, ed.EditRow(0))
	ed.Cancel()
	item, _ := ed.Row(0)
	assert.Equal(t, int64(10), item.ServiceID, "cancel must revert to pre-edit value")
}

func TestRemovePersistedRowIsAdminOnly(t *testing.T) {
	ed := NewEditor(existingItems(), authorization.RoleDoctor)
	err := ed.Remove(0, true)
	assert.True(t, errors.IsForbiddenError(err))

	admin := NewEditor(existingItems(), authorization.RoleAdmin)
	assert.Error(t, admin.Remove(0, false), "removal without confirmation must fail")
	require.NoError(t, admin.Remove(0, true))
	assert.Equal(t, 1, admin.Len())
}

func TestRemoveNewRowAllowedForAnyRole(t *testing.T) {
	ed := NewEditor(nil, authorization.RoleStaff)
	_, err := ed.AddRow()
	require.NoError(t, err)
	require.NoError(t, ed.Apply(LineItem{ServiceID: 4}))

	require.NoError(t, ed.Remove(0, true))
	assert.Equal(t, 0, ed.Len())
}

func TestItemsIsTheFullReconciledList(t *testing.T) {
	ed := NewEditor(existingItems(), authorization.RoleAdmin)

	// edit row 1
	require.NoError(t, ed.EditRow(1))
	require.NoError(t, ed.Apply(LineItem{ServiceID: 11, PayableAmount: 45, PaidAmount: 45}))

	// add a self-funded row
	_, err := ed.AddRow()
	require.NoError(t, err)
	require.NoError(t, ed.Apply(LineItem{ServiceID: 12, PayableAmount: 30}))

	// remove row 0
	require.NoError(t, ed.Remove(0, true))

	items := ed.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(11), items[0].ServiceID)
	assert.Equal(t, 45.0, items[0].PayableAmount)
	assert.Equal(t, int64(12), items[1].ServiceID)
	assert.Nil(t, items[1].ID, "new row has no server id yet")
	assert.True(t, items[1].SelfFunded())
}

func TestParseAmountDefaultsToZero(t *testing.T) {
	assert.Equal(t, 0.0, ParseAmount("abc"))
	assert.Equal(t, 0.0, ParseAmount(""))
	assert.Equal(t, 12.5, ParseAmount(" 12.5 "))
}

func TestParseRef(t *testing.T) {
	assert.Nil(t, ParseRef(""))
	assert.Nil(t, ParseRef("x"))
	ref := ParseRef("7")
	require.NotNil(t, ref)
	assert.Equal(t, int64(7), *ref)
}
