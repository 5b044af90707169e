// backend/services/apply.go
package services

import (
	"fmt"
	"log"
	"strconv"

	"github.com/qavision/qamatrix/backend/models"
)

// Apply folds every matched group's repeat count into the most recent weekly
// slot of its concern, keeping a deep snapshot of the ledger for Undo. A
// session can be applied once; Undo re-arms it.
func (s *ReconStore) Apply() ([]models.DiffRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applied {
		return nil, fmt.Errorf("report %q has already been applied; undo first", s.fileName)
	}
	if len(s.groups) == 0 {
		return nil, fmt.Errorf("nothing to apply: no matched groups")
	}

	before := s.ledger.Concerns()
	snapshot := models.CloneLedger(before)

	updated := models.CloneLedger(before)
	bySNo := make(map[int]*models.Concern, len(updated))
	for i := range updated {
		bySNo[updated[i].SNo] = &updated[i]
	}

	var diffs []models.DiffRecord
	for _, g := range s.groups {
		c, ok := bySNo[g.QaSNo]
		if !ok {
			log.Printf("Service: WARN concern %d vanished before apply, skipping group", g.QaSNo)
			continue
		}
		prev := c.Clone()
		last := models.WeeklyRecurrenceSlots - 1
		c.WeeklyRecurrence[last] += g.RepeatCount
		c.Recalculate()

		diffs = append(diffs, models.DiffRecord{
			SNo:     c.SNo,
			Concern: c.Concern,
			Field:   "W-1 (Last Week)",
			Before:  strconv.Itoa(prev.WeeklyRecurrence[last]),
			After:   strconv.Itoa(c.WeeklyRecurrence[last]),
		})
		diffs = appendStatusDiff(diffs, c.SNo, c.Concern, "WS Status", prev.WorkstationStatus, c.WorkstationStatus)
		diffs = appendStatusDiff(diffs, c.SNo, c.Concern, "MFG Status", prev.MfgStatus, c.MfgStatus)
		diffs = appendStatusDiff(diffs, c.SNo, c.Concern, "Plant Status", prev.PlantStatus, c.PlantStatus)
	}

	if err := s.ledger.ReplaceAll(updated); err != nil {
		return nil, fmt.Errorf("applying repeat counts: %w", err)
	}
	s.snapshot = snapshot
	s.diffs = diffs
	s.applied = true
	log.Printf("Service: applied %d matched groups, %d fields changed", len(s.groups), len(diffs))
	return append([]models.DiffRecord(nil), diffs...), nil
}

func appendStatusDiff(diffs []models.DiffRecord, sNo int, concern, field string, before, after models.Status) []models.DiffRecord {
	if before == after {
		return diffs
	}
	return append(diffs, models.DiffRecord{
		SNo: sNo, Concern: concern, Field: field,
		Before: string(before), After: string(after),
	})
}

// Undo restores the pre-apply ledger snapshot verbatim. Returns false when
// there is nothing to undo.
func (s *ReconStore) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.applied || s.snapshot == nil {
		return false, nil
	}
	if err := s.ledger.ReplaceAll(s.snapshot); err != nil {
		return false, fmt.Errorf("restoring ledger snapshot: %w", err)
	}
	s.snapshot = nil
	s.diffs = nil
	s.applied = false
	log.Printf("Service: undid last apply")
	return true, nil
}

// Diffs returns the change preview of the last apply, empty when nothing has
// been applied.
func (s *ReconStore) Diffs() []models.DiffRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DiffRecord(nil), s.diffs...)
}

// Applied reports whether the current session has been folded into the
// ledger.
func (s *ReconStore) Applied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}
