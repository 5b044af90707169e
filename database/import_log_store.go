// backend/database/import_log_store.go
package database

import (
	"fmt"

	"github.com/qavision/qamatrix/backend/models"
)

// LogReportImport records one uploaded repeat-issues report in the audit log.
func LogReportImport(imp models.ReportImport) error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	_, err := DB.Exec(`
		INSERT INTO report_imports (file_name, parsed_count, matched_groups, unmatched_count)
		VALUES (?, ?, ?, ?)`,
		imp.FileName, imp.ParsedCount, imp.MatchedGroups, imp.UnmatchedCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report import record: %w", err)
	}
	return nil
}

// GetReportImports returns the most recent report imports, newest first.
func GetReportImports(limit int) ([]models.ReportImport, error) {
	if DB == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := DB.Query(`
		SELECT id, file_name, parsed_count, matched_groups, unmatched_count, imported_at
		FROM report_imports ORDER BY imported_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report imports: %w", err)
	}
	defer rows.Close()

	var imports []models.ReportImport
	for rows.Next() {
		var imp models.ReportImport
		if err := rows.Scan(&imp.ID, &imp.FileName, &imp.ParsedCount, &imp.MatchedGroups,
			&imp.UnmatchedCount, &imp.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report import row: %w", err)
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report import rows: %w", err)
	}
	return imports, nil
}
