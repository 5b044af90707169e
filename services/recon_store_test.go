// backend/services/recon_store_test.go
package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qavision/qamatrix/backend/models"
)

func newTestLedger(t *testing.T, concerns ...models.Concern) *LedgerService {
	t.Helper()
	ledger := NewLedgerService(nil)
	require.NoError(t, ledger.ReplaceAll(concerns))
	return ledger
}

func boltConcern(sNo int) models.Concern {
	return models.Concern{
		SNo:              sNo,
		Concern:          "Bolt missing door panel",
		OperationStation: "C80",
		DefectRating:     3,
		WeeklyRecurrence: make([]int, models.WeeklyRecurrenceSlots),
	}
}

func wiperConcern(sNo int) models.Concern {
	return models.Concern{
		SNo:              sNo,
		Concern:          "Wiper noise at high speed",
		OperationStation: "F30",
		DefectRating:     1,
		WeeklyRecurrence: make([]int, models.WeeklyRecurrenceSlots),
	}
}

func boltEntry(qty int) models.DefectEntry {
	return models.DefectEntry{
		LocationDetails:   "C80",
		DefectDescription: "Missing bolt",
		Gravity:           "B",
		Quantity:          qty,
	}
}

func wiperEntry(qty int) models.DefectEntry {
	return models.DefectEntry{
		LocationDetails:   "F30",
		DefectDescription: "Wiper noisy",
		Gravity:           "C",
		Quantity:          qty,
	}
}

func garbageEntry() models.DefectEntry {
	return models.DefectEntry{
		DefectDescription: "xylophone quartz",
		Quantity:          1,
	}
}

// totalQuantity sums every defect quantity across groups and unmatched; it
// must stay constant through all manual corrections.
func totalQuantity(s *ReconStore) int {
	total := 0
	for _, g := range s.Groups() {
		for _, e := range g.Entries {
			total += e.Quantity
		}
	}
	for _, u := range s.Unmatched() {
		total += u.Entry.Quantity
	}
	return total
}

func TestRunMatchingGroupsAndUnmatched(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1), wiperConcern(2))
	rs := NewReconStore(ledger, 0.15)

	rs.RunMatching([]models.DefectEntry{boltEntry(2), boltEntry(3), garbageEntry(), wiperEntry(1)}, "week34.xlsx")

	groups := rs.Groups()
	require.Len(t, groups, 2)
	// Groups come back sorted by repeat count, largest first.
	assert.Equal(t, 1, groups[0].QaSNo)
	assert.Equal(t, 5, groups[0].RepeatCount)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, 2, groups[1].QaSNo)
	assert.Equal(t, 1, groups[1].RepeatCount)

	unmatched := rs.Unmatched()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "unmatched-2", unmatched[0].ID)

	summary := rs.Summary()
	assert.Equal(t, "week34.xlsx", summary.FileName)
	assert.Equal(t, 4, summary.TotalDefects)
	assert.Equal(t, 2, summary.MatchedGroups)
	assert.Equal(t, 6, summary.RepeatSum)
	assert.Equal(t, 1, summary.UnpairedCount)
	assert.False(t, summary.Applied)
}

func TestUnpairMovesEntryToUnmatched(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.now = func() time.Time { return time.UnixMilli(1700000000000) }

	rs.RunMatching([]models.DefectEntry{boltEntry(2), boltEntry(3)}, "r.xlsx")
	before := totalQuantity(rs)

	rs.Unpair(1, 0)

	groups := rs.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].RepeatCount)
	assert.Len(t, groups[0].Entries, 1)

	unmatched := rs.Unmatched()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "unmatched-manual-1700000000000", unmatched[0].ID)
	assert.Equal(t, before, totalQuantity(rs))
}

func TestUnpairRemovesEmptyGroup(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2)}, "r.xlsx")

	rs.Unpair(1, 0)

	assert.Empty(t, rs.Groups())
	assert.Len(t, rs.Unmatched(), 1)
}

func TestUnpairStaleCoordinatesIsNoOp(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2)}, "r.xlsx")
	before := totalQuantity(rs)

	rs.Unpair(99, 0) // no such group
	rs.Unpair(1, 5)  // index out of range

	assert.Len(t, rs.Groups(), 1)
	assert.Empty(t, rs.Unmatched())
	assert.Equal(t, before, totalQuantity(rs))
}

func TestReassignMovesEntryBetweenGroups(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1), wiperConcern(2))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2), wiperEntry(1)}, "r.xlsx")
	before := totalQuantity(rs)

	rs.Reassign(boltEntry(2), 1, 2)

	groups := rs.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].QaSNo)
	assert.Equal(t, 3, groups[0].RepeatCount)
	assert.Len(t, groups[0].Entries, 2)
	assert.Equal(t, before, totalQuantity(rs))
}

func TestReassignMissingEntryIsNoOp(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1), wiperConcern(2))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2)}, "r.xlsx")
	before := totalQuantity(rs)

	rs.Reassign(boltEntry(7), 1, 2) // quantity differs, not the same entry

	groups := rs.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].QaSNo)
	assert.Equal(t, before, totalQuantity(rs))
}

func TestManualPairCreatesGroupWithFullScore(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1), wiperConcern(2))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2), garbageEntry()}, "r.xlsx")

	require.NoError(t, rs.ManualPair("unmatched-1", 2))

	assert.Empty(t, rs.Unmatched())
	assert.True(t, rs.reviewed["unmatched-1"])
	groups := rs.Groups()
	require.Len(t, groups, 2)
	var wiperGroup *models.MatchGroup
	for i := range groups {
		if groups[i].QaSNo == 2 {
			wiperGroup = &groups[i]
		}
	}
	require.NotNil(t, wiperGroup)
	assert.Equal(t, 1.0, wiperGroup.MatchScore)
	assert.Equal(t, "Wiper noise at high speed", wiperGroup.QaConcern)
	assert.Equal(t, 1, wiperGroup.RepeatCount)
}

func TestManualPairUnknownIDFails(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2)}, "r.xlsx")

	err := rs.ManualPair("unmatched-99", 1)
	assert.Error(t, err)
}

func TestMarkReviewedHidesUnmatched(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{garbageEntry()}, "r.xlsx")

	rs.MarkReviewed("unmatched-0", true)
	assert.Empty(t, rs.Unmatched())
	assert.Equal(t, 0, rs.Summary().UnpairedCount)

	rs.MarkReviewed("unmatched-0", false)
	assert.Len(t, rs.Unmatched(), 1)
}

func TestAddConcernForUnmatched(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2), garbageEntry()}, "week34.xlsx")

	added, err := rs.AddConcernForUnmatched(models.CreateConcernRequest{
		UnmatchedID: "unmatched-1",
		Station:     "T10",
		Concern:     "Xylophone quartz rattle",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, added.SNo)
	assert.Equal(t, "T10", added.OperationStation)
	assert.Equal(t, "Xylophone quartz rattle", added.Concern)
	assert.Equal(t, 2, ledger.Count())

	// The promoted defect is gone and the session counters survived the
	// re-run.
	assert.Empty(t, rs.Unmatched())
	assert.Equal(t, "week34.xlsx", rs.Summary().FileName)
	assert.Equal(t, 2, rs.Summary().TotalDefects)
	require.Len(t, rs.Groups(), 1)
	assert.Equal(t, 1, rs.Groups()[0].QaSNo)
}

func TestAddConcernForUnmatchedUnknownID(t *testing.T) {
	ledger := newTestLedger(t, boltConcern(1))
	rs := NewReconStore(ledger, 0.15)
	rs.RunMatching([]models.DefectEntry{boltEntry(2)}, "r.xlsx")

	_, err := rs.AddConcernForUnmatched(models.CreateConcernRequest{UnmatchedID: "nope"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not found"))
}
