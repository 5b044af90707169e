// backend/services/ledger_service.go
package services

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/qavision/qamatrix/backend/models"
)

// Persister is the write-through storage hook of the ledger. A nil persister
// keeps the ledger purely in memory (used by tests and by the import preview).
type Persister interface {
	SaveConcerns(concerns []models.Concern) error
}

// LedgerService owns the in-memory concern ledger. All access goes through
// its methods; every mutation recalculates the derived fields of the touched
// concern and writes the full ledger through to the persister. A failed
// write-through rolls the in-memory change back and surfaces the error, so
// memory and storage never drift apart.
type LedgerService struct {
	mu        sync.Mutex
	concerns  []models.Concern
	persister Persister
}

func NewLedgerService(persister Persister) *LedgerService {
	return &LedgerService{persister: persister}
}

// Concerns returns a deep copy of the ledger in stored order.
func (s *LedgerService) Concerns() []models.Concern {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneLedger(s.concerns)
}

// Get returns a deep copy of one concern by serial number.
func (s *LedgerService) Get(sNo int) (models.Concern, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.concerns {
		if s.concerns[i].SNo == sNo {
			return s.concerns[i].Clone(), true
		}
	}
	return models.Concern{}, false
}

// Count returns the number of ledger entries.
func (s *LedgerService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.concerns)
}

// NextSNo returns one past the highest serial number in the ledger.
func (s *LedgerService) NextSNo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nextSNoLocked(s.concerns)
}

func nextSNoLocked(concerns []models.Concern) int {
	max := 0
	for i := range concerns {
		if concerns[i].SNo > max {
			max = concerns[i].SNo
		}
	}
	return max + 1
}

// UpdateWeekly sets one weekly recurrence cell on a concern.
func (s *LedgerService) UpdateWeekly(sNo, weekIndex, value int) (models.Concern, error) {
	if weekIndex < 0 || weekIndex >= models.WeeklyRecurrenceSlots {
		return models.Concern{}, fmt.Errorf("week index %d out of range 0..%d", weekIndex, models.WeeklyRecurrenceSlots-1)
	}
	if value < 0 {
		return models.Concern{}, fmt.Errorf("weekly recurrence cannot be negative, got %d", value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(sNo)
	if c == nil {
		return models.Concern{}, fmt.Errorf("concern %d not found", sNo)
	}
	prev := c.Clone()
	c.WeeklyRecurrence[weekIndex] = value
	c.Recalculate()
	if err := s.persistLocked(); err != nil {
		*c = prev
		return models.Concern{}, err
	}
	return c.Clone(), nil
}

// UpdateScore sets one control score cell on a concern. A nil value clears
// the cell.
func (s *LedgerService) UpdateScore(sNo int, section models.ScoreSection, key string, value *float64) (models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(sNo)
	if c == nil {
		return models.Concern{}, fmt.Errorf("concern %d not found", sNo)
	}
	prev := c.Clone()
	if !c.SetScore(section, key, value) {
		return models.Concern{}, fmt.Errorf("unknown score cell %s/%s", section, key)
	}
	c.Recalculate()
	if err := s.persistLocked(); err != nil {
		*c = prev
		return models.Concern{}, err
	}
	return c.Clone(), nil
}

// UpdateField sets one editable text field, or the defect rating when field
// is "defectRating" (value must parse to 1, 3 or 5).
func (s *LedgerService) UpdateField(sNo int, field, value string) (models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(sNo)
	if c == nil {
		return models.Concern{}, fmt.Errorf("concern %d not found", sNo)
	}
	prev := c.Clone()

	switch field {
	case "source":
		c.Source = value
	case "operationStation":
		c.OperationStation = value
	case "designation":
		c.Designation = value
	case "concern":
		c.Concern = value
	case "mfgAction":
		c.MfgAction = value
	case "resp":
		c.Resp = value
	case "target":
		c.Target = value
	case "defectRating":
		rating, err := strconv.Atoi(value)
		if err != nil || (rating != 1 && rating != 3 && rating != 5) {
			return models.Concern{}, fmt.Errorf("defect rating must be 1, 3 or 5, got %q", value)
		}
		c.DefectRating = rating
	default:
		return models.Concern{}, fmt.Errorf("field %q is not editable", field)
	}
	c.Recalculate()
	if err := s.persistLocked(); err != nil {
		*c = prev
		return models.Concern{}, err
	}
	return c.Clone(), nil
}

// Add appends a new concern. A zero serial number is assigned the next free
// one; an explicit serial number must not collide.
func (s *LedgerService) Add(c models.Concern) (models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.SNo == 0 {
		c.SNo = nextSNoLocked(s.concerns)
	} else if s.findLocked(c.SNo) != nil {
		return models.Concern{}, fmt.Errorf("concern %d already exists", c.SNo)
	}
	if c.WeeklyRecurrence == nil {
		c.WeeklyRecurrence = make([]int, models.WeeklyRecurrenceSlots)
	}
	c.Recalculate()
	s.concerns = append(s.concerns, c.Clone())
	if err := s.persistLocked(); err != nil {
		s.concerns = s.concerns[:len(s.concerns)-1]
		return models.Concern{}, err
	}
	return c, nil
}

// Delete removes a concern by serial number.
func (s *LedgerService) Delete(sNo int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.concerns {
		if s.concerns[i].SNo == sNo {
			removed := s.concerns[i]
			s.concerns = append(s.concerns[:i], s.concerns[i+1:]...)
			if err := s.persistLocked(); err != nil {
				s.concerns = append(s.concerns, models.Concern{})
				copy(s.concerns[i+1:], s.concerns[i:])
				s.concerns[i] = removed
				return err
			}
			return nil
		}
	}
	return fmt.Errorf("concern %d not found", sNo)
}

// BulkImport appends a batch of concerns in one mutation. Entries with a
// zero or colliding serial number get the next free one.
func (s *LedgerService) BulkImport(concerns []models.Concern) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevLen := len(s.concerns)
	for _, c := range concerns {
		c = c.Clone()
		if c.SNo == 0 || s.findLocked(c.SNo) != nil {
			c.SNo = nextSNoLocked(s.concerns)
		}
		if c.WeeklyRecurrence == nil {
			c.WeeklyRecurrence = make([]int, models.WeeklyRecurrenceSlots)
		}
		c.Recalculate()
		s.concerns = append(s.concerns, c)
	}
	if err := s.persistLocked(); err != nil {
		s.concerns = s.concerns[:prevLen]
		return 0, err
	}
	return len(concerns), nil
}

// ReplaceAll swaps the whole ledger. Every entry is recalculated before it
// becomes observable.
func (s *LedgerService) ReplaceAll(concerns []models.Concern) error {
	cloned := models.CloneLedger(concerns)
	for i := range cloned {
		if cloned[i].WeeklyRecurrence == nil {
			cloned[i].WeeklyRecurrence = make([]int, models.WeeklyRecurrenceSlots)
		}
		cloned[i].Recalculate()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.concerns
	s.concerns = cloned
	if err := s.persistLocked(); err != nil {
		s.concerns = prev
		return err
	}
	return nil
}

func (s *LedgerService) findLocked(sNo int) *models.Concern {
	for i := range s.concerns {
		if s.concerns[i].SNo == sNo {
			return &s.concerns[i]
		}
	}
	return nil
}

func (s *LedgerService) persistLocked() error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.SaveConcerns(models.CloneLedger(s.concerns)); err != nil {
		log.Printf("Service: WARN failed to persist ledger: %v", err)
		return fmt.Errorf("persisting ledger: %w", err)
	}
	return nil
}
