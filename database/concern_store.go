// backend/database/concern_store.go
package database

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/qavision/qamatrix/backend/models"
)

// ConcernStore persists the concern ledger. The nested score sections are
// stored as JSON text columns; the derived fields (recurrence sums, control
// ratings, statuses) are not stored at all and get recomputed on load.
type ConcernStore struct{}

// SaveConcerns replaces the stored ledger with the given one inside a single
// transaction.
func (ConcernStore) SaveConcerns(concerns []models.Concern) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for saving concerns: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM concerns"); err != nil {
		return fmt.Errorf("failed to clear concerns table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO concerns (
			s_no, source, operation_station, designation, concern, defect_rating,
			weekly_recurrence, trim_scores, chassis_scores, final_scores,
			q_control_scores, q_control_detail, mfg_action, resp, target
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare concern insert statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range concerns {
		weeklyJSON, err := json.Marshal(c.WeeklyRecurrence)
		if err != nil {
			return fmt.Errorf("failed to marshal weekly recurrence for concern %d: %w", c.SNo, err)
		}
		trimJSON, _ := json.Marshal(c.Trim)
		chassisJSON, _ := json.Marshal(c.Chassis)
		finalJSON, _ := json.Marshal(c.Final)
		qCtrlJSON, _ := json.Marshal(c.QControl)
		qDetailJSON, _ := json.Marshal(c.QControlDetail)

		_, err = stmt.Exec(
			c.SNo, c.Source, c.OperationStation, c.Designation, c.Concern, c.DefectRating,
			weeklyJSON, trimJSON, chassisJSON, finalJSON, qCtrlJSON, qDetailJSON,
			c.MfgAction, c.Resp, c.Target,
		)
		if err != nil {
			return fmt.Errorf("failed to insert concern %d: %w", c.SNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit concerns: %w", err)
	}
	log.Printf("Database: saved %d concerns", len(concerns))
	return nil
}

// LoadConcerns reads the full ledger, recomputing every derived field.
func (ConcernStore) LoadConcerns() ([]models.Concern, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	rows, err := DB.Query(`
		SELECT s_no, source, operation_station, designation, concern, defect_rating,
		       weekly_recurrence, trim_scores, chassis_scores, final_scores,
		       q_control_scores, q_control_detail, mfg_action, resp, target
		FROM concerns ORDER BY s_no`)
	if err != nil {
		return nil, fmt.Errorf("failed to query concerns: %w", err)
	}
	defer rows.Close()

	var concerns []models.Concern
	for rows.Next() {
		var c models.Concern
		var weeklyJSON, trimJSON, chassisJSON, finalJSON, qCtrlJSON, qDetailJSON []byte
		err := rows.Scan(
			&c.SNo, &c.Source, &c.OperationStation, &c.Designation, &c.Concern, &c.DefectRating,
			&weeklyJSON, &trimJSON, &chassisJSON, &finalJSON, &qCtrlJSON, &qDetailJSON,
			&c.MfgAction, &c.Resp, &c.Target,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan concern row: %w", err)
		}

		if err := json.Unmarshal(weeklyJSON, &c.WeeklyRecurrence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weekly recurrence for concern %d: %w", c.SNo, err)
		}
		if len(c.WeeklyRecurrence) != models.WeeklyRecurrenceSlots {
			fixed := make([]int, models.WeeklyRecurrenceSlots)
			copy(fixed, c.WeeklyRecurrence)
			c.WeeklyRecurrence = fixed
		}
		if err := json.Unmarshal(trimJSON, &c.Trim); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trim scores for concern %d: %w", c.SNo, err)
		}
		if err := json.Unmarshal(chassisJSON, &c.Chassis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chassis scores for concern %d: %w", c.SNo, err)
		}
		if err := json.Unmarshal(finalJSON, &c.Final); err != nil {
			return nil, fmt.Errorf("failed to unmarshal final scores for concern %d: %w", c.SNo, err)
		}
		if err := json.Unmarshal(qCtrlJSON, &c.QControl); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quality control scores for concern %d: %w", c.SNo, err)
		}
		if err := json.Unmarshal(qDetailJSON, &c.QControlDetail); err != nil {
			return nil, fmt.Errorf("failed to unmarshal control detail scores for concern %d: %w", c.SNo, err)
		}

		c.Recalculate()
		concerns = append(concerns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating concern rows: %w", err)
	}
	return concerns, nil
}
