// backend/services/recon_store.go
package services

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/qavision/qamatrix/backend/matcher"
	"github.com/qavision/qamatrix/backend/models"
)

// ReconStore holds the state of one repeat-report reconciliation session:
// the matched groups, the leftover unmatched defects, the review marks and
// the apply/undo state. Uploading a new report replaces the whole session.
type ReconStore struct {
	mu        sync.Mutex
	ledger    *LedgerService
	threshold float64

	fileName    string
	parsedCount int
	groups      []models.MatchGroup
	unmatched   []models.UnmatchedDefect
	reviewed    map[string]bool

	applied  bool
	snapshot []models.Concern
	diffs    []models.DiffRecord

	now func() time.Time
}

func NewReconStore(ledger *LedgerService, threshold float64) *ReconStore {
	return &ReconStore{
		ledger:    ledger,
		threshold: threshold,
		reviewed:  make(map[string]bool),
		now:       time.Now,
	}
}

// RunMatching matches every defect entry of a freshly parsed report against
// the current ledger and replaces the session state. Any pending apply
// snapshot is discarded.
func (s *ReconStore) RunMatching(entries []models.DefectEntry, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileName = fileName
	s.parsedCount = len(entries)
	s.runLocked(entries)
	log.Printf("Service: matched %d report rows into %d groups, %d unmatched",
		len(entries), len(s.groups), len(s.unmatched))
}

func (s *ReconStore) runLocked(entries []models.DefectEntry) {
	concerns := s.ledger.Concerns()
	candidates := make([]matcher.Candidate, len(concerns))
	for i, c := range concerns {
		candidates[i] = matcher.Candidate{
			SNo:         c.SNo,
			Concern:     c.Concern,
			Station:     c.OperationStation,
			Designation: c.Designation,
		}
	}
	ix := matcher.NewIndex(candidates)

	s.groups = nil
	s.unmatched = nil
	s.reviewed = make(map[string]bool)
	s.applied = false
	s.snapshot = nil
	s.diffs = nil

	groupIdx := make(map[int]int)
	for i, entry := range entries {
		m, ok := ix.BestMatch(entry.SearchText(), entry.LocationDetails, s.threshold)
		if !ok {
			s.unmatched = append(s.unmatched, models.UnmatchedDefect{
				Entry: entry,
				ID:    fmt.Sprintf("unmatched-%d", i),
			})
			continue
		}
		gi, exists := groupIdx[m.SNo]
		if !exists {
			gi = len(s.groups)
			groupIdx[m.SNo] = gi
			s.groups = append(s.groups, models.MatchGroup{
				QaSNo:      m.SNo,
				QaConcern:  m.Concern,
				MatchScore: m.Score,
			})
		}
		s.groups[gi].Entries = append(s.groups[gi].Entries, entry)
		s.groups[gi].RepeatCount += entry.Quantity
	}

	sort.SliceStable(s.groups, func(a, b int) bool {
		return s.groups[a].RepeatCount > s.groups[b].RepeatCount
	})
}

// Unpair removes one entry from a matched group and parks it as a manually
// unmatched defect. Stale coordinates (group gone, index out of range) are a
// silent no-op so that double-clicks cannot corrupt the session.
func (s *ReconStore) Unpair(qaSNo, entryIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for gi := range s.groups {
		g := &s.groups[gi]
		if g.QaSNo != qaSNo {
			continue
		}
		if entryIndex < 0 || entryIndex >= len(g.Entries) {
			return
		}
		entry := g.Entries[entryIndex]
		g.Entries = append(g.Entries[:entryIndex], g.Entries[entryIndex+1:]...)
		g.RepeatCount -= entry.Quantity
		if len(g.Entries) == 0 {
			s.groups = append(s.groups[:gi], s.groups[gi+1:]...)
		}
		s.unmatched = append(s.unmatched, models.UnmatchedDefect{
			Entry: entry,
			ID:    fmt.Sprintf("unmatched-manual-%d", s.now().UnixMilli()),
		})
		return
	}
}

// Reassign moves one entry between two matched groups. The entry is located
// by value; if it is no longer in the source group the call is a no-op, so
// every defect stays in exactly one place.
func (s *ReconStore) Reassign(entry models.DefectEntry, fromSNo, toSNo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for gi := range s.groups {
		g := &s.groups[gi]
		if g.QaSNo != fromSNo {
			continue
		}
		for ei := range g.Entries {
			if g.Entries[ei] != entry {
				continue
			}
			g.Entries = append(g.Entries[:ei], g.Entries[ei+1:]...)
			g.RepeatCount -= entry.Quantity
			if len(g.Entries) == 0 {
				s.groups = append(s.groups[:gi], s.groups[gi+1:]...)
			}
			s.addToGroupLocked(entry, toSNo)
			return
		}
		return
	}
}

// ManualPair attaches an unmatched defect to an existing concern.
func (s *ReconStore) ManualPair(unmatchedID string, qaSNo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ui := range s.unmatched {
		if s.unmatched[ui].ID != unmatchedID {
			continue
		}
		entry := s.unmatched[ui].Entry
		s.unmatched = append(s.unmatched[:ui], s.unmatched[ui+1:]...)
		s.reviewed[unmatchedID] = true
		s.addToGroupLocked(entry, qaSNo)
		return nil
	}
	return fmt.Errorf("unmatched defect %q not found", unmatchedID)
}

// addToGroupLocked appends an entry to the group for qaSNo, creating the
// group with a full manual-match score when it does not exist yet.
func (s *ReconStore) addToGroupLocked(entry models.DefectEntry, qaSNo int) {
	for gi := range s.groups {
		if s.groups[gi].QaSNo == qaSNo {
			s.groups[gi].Entries = append(s.groups[gi].Entries, entry)
			s.groups[gi].RepeatCount += entry.Quantity
			return
		}
	}
	concernText := ""
	if c, ok := s.ledger.Get(qaSNo); ok {
		concernText = c.Concern
	}
	s.groups = append(s.groups, models.MatchGroup{
		Entries:     []models.DefectEntry{entry},
		RepeatCount: entry.Quantity,
		QaSNo:       qaSNo,
		QaConcern:   concernText,
		MatchScore:  1.0,
	})
}

// AddConcernForUnmatched creates a brand new ledger entry from an unmatched
// defect, marks the defect reviewed and re-runs matching so that other
// unmatched defects get a shot at the new concern.
func (s *ReconStore) AddConcernForUnmatched(req models.CreateConcernRequest) (models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entry *models.DefectEntry
	for ui := range s.unmatched {
		if s.unmatched[ui].ID == req.UnmatchedID {
			entry = &s.unmatched[ui].Entry
			break
		}
	}
	if entry == nil {
		return models.Concern{}, fmt.Errorf("unmatched defect %q not found", req.UnmatchedID)
	}

	c := models.ConcernFromDefect(*entry, 0)
	if req.Source != "" {
		c.Source = req.Source
	}
	if req.Station != "" {
		c.OperationStation = req.Station
	}
	if req.Designation != "" {
		c.Designation = req.Designation
	}
	if req.Concern != "" {
		c.Concern = req.Concern
	}
	if req.DefectRating == 1 || req.DefectRating == 3 || req.DefectRating == 5 {
		c.DefectRating = req.DefectRating
	}
	c.MfgAction = req.MfgAction
	if req.Resp != "" {
		c.Resp = req.Resp
	}
	c.Target = req.Target
	c.Recalculate()

	added, err := s.ledger.Add(c)
	if err != nil {
		return models.Concern{}, fmt.Errorf("adding concern from defect: %w", err)
	}

	// Re-run against the grown ledger, dropping the defect that just became
	// a concern of its own.
	remaining := s.collectEntriesLocked(req.UnmatchedID)
	fileName, parsed := s.fileName, s.parsedCount
	s.runLocked(remaining)
	s.fileName = fileName
	s.parsedCount = parsed
	return added, nil
}

// collectEntriesLocked flattens the session back into the original entry
// list, minus reviewed defects and the one identified by skipID.
func (s *ReconStore) collectEntriesLocked(skipID string) []models.DefectEntry {
	var entries []models.DefectEntry
	for _, g := range s.groups {
		entries = append(entries, g.Entries...)
	}
	for _, u := range s.unmatched {
		if u.ID == skipID || s.reviewed[u.ID] {
			continue
		}
		entries = append(entries, u.Entry)
	}
	return entries
}

// MarkReviewed hides an unmatched defect from the active list without
// removing it from the session.
func (s *ReconStore) MarkReviewed(unmatchedID string, reviewed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reviewed {
		s.reviewed[unmatchedID] = true
	} else {
		delete(s.reviewed, unmatchedID)
	}
}

// Groups returns a copy of the matched groups.
func (s *ReconStore) Groups() []models.MatchGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyGroupsLocked()
}

func (s *ReconStore) copyGroupsLocked() []models.MatchGroup {
	out := make([]models.MatchGroup, len(s.groups))
	for i, g := range s.groups {
		g.Entries = append([]models.DefectEntry(nil), g.Entries...)
		out[i] = g
	}
	return out
}

// Unmatched returns the unmatched defects that have not been reviewed away.
func (s *ReconStore) Unmatched() []models.UnmatchedDefect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeUnmatchedLocked()
}

func (s *ReconStore) activeUnmatchedLocked() []models.UnmatchedDefect {
	out := make([]models.UnmatchedDefect, 0, len(s.unmatched))
	for _, u := range s.unmatched {
		if !s.reviewed[u.ID] {
			out = append(out, u)
		}
	}
	return out
}

// Summary returns the session counters.
func (s *ReconStore) Summary() models.ReconSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *ReconStore) summaryLocked() models.ReconSummary {
	repeatSum := 0
	for _, g := range s.groups {
		repeatSum += g.RepeatCount
	}
	return models.ReconSummary{
		FileName:      s.fileName,
		TotalDefects:  s.parsedCount,
		MatchedGroups: len(s.groups),
		RepeatSum:     repeatSum,
		UnpairedCount: len(s.activeUnmatchedLocked()),
		Applied:       s.applied,
	}
}

// State returns the full read-only view for the pairing screen.
func (s *ReconStore) State() models.ReconSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ReconSnapshot{
		Summary:   s.summaryLocked(),
		Matched:   s.copyGroupsLocked(),
		Unmatched: s.activeUnmatchedLocked(),
	}
}
