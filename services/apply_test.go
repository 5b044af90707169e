// backend/services/apply_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qavision/qamatrix/backend/models"
)

func score(v float64) *float64 { return &v }

func TestApplyAddsRepeatCountToLastWeek(t *testing.T) {
	c := boltConcern(1)
	c.WeeklyRecurrence = []int{0, 0, 0, 0, 0, 2}
	ledger := newTestLedger(t, c)
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(4)}, "r.xlsx")

	diffs, err := rs.Apply()
	require.NoError(t, err)

	updated, ok := ledger.Get(1)
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 6}, updated.WeeklyRecurrence)
	assert.Equal(t, 6, updated.Recurrence)
	assert.True(t, rs.Applied())

	require.NotEmpty(t, diffs)
	assert.Equal(t, "W-1 (Last Week)", diffs[0].Field)
	assert.Equal(t, "2", diffs[0].Before)
	assert.Equal(t, "6", diffs[0].After)
}

func TestApplyRecordsStatusFlips(t *testing.T) {
	// Station controls cover the rating and there is no recurrence yet, so
	// the workstation level starts OK and flips NG once the repeats land.
	c := boltConcern(1)
	c.Trim.T10 = score(5)
	ledger := newTestLedger(t, c)
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(3)}, "r.xlsx")

	diffs, err := rs.Apply()
	require.NoError(t, err)

	fields := make(map[string]models.DiffRecord)
	for _, d := range diffs {
		fields[d.Field] = d
	}
	require.Contains(t, fields, "WS Status")
	assert.Equal(t, "OK", fields["WS Status"].Before)
	assert.Equal(t, "NG", fields["WS Status"].After)
	// The MFG and plant levels do not look at recurrence; no rows for them.
	assert.NotContains(t, fields, "MFG Status")
	assert.NotContains(t, fields, "Plant Status")
}

func TestApplyTwiceFails(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(1)}, "r.xlsx")

	_, err := rs.Apply()
	require.NoError(t, err)
	_, err = rs.Apply()
	assert.Error(t, err)
}

func TestApplyWithNothingMatchedFails(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{garbageEntry()}, "r.xlsx")

	_, err := rs.Apply()
	assert.Error(t, err)
}

func TestUndoRestoresSnapshot(t *testing.T) {
	c := boltConcern(1)
	c.WeeklyRecurrence = []int{1, 0, 0, 0, 0, 2}
	ledger := newTestLedger(t, c)
	before := ledger.Concerns()

	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(4)}, "r.xlsx")

	_, err := rs.Apply()
	require.NoError(t, err)

	undone, err := rs.Undo()
	require.NoError(t, err)
	assert.True(t, undone)
	assert.Equal(t, before, ledger.Concerns())
	assert.False(t, rs.Applied())
	assert.Empty(t, rs.Diffs())

	// Nothing left to undo.
	undone, err = rs.Undo()
	require.NoError(t, err)
	assert.False(t, undone)
}

func TestUndoReArmsApply(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2)}, "r.xlsx")

	_, err := rs.Apply()
	require.NoError(t, err)
	_, err = rs.Undo()
	require.NoError(t, err)

	_, err = rs.Apply()
	require.NoError(t, err)
	updated, _ := ledger.Get(1)
	assert.Equal(t, 2, updated.WeeklyRecurrence[models.WeeklyRecurrenceSlots-1])
}
