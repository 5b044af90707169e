// backend/models/report.go
package models

import (
	"strings"
	"time"
)

// DefectEntry is one row of an externally supplied repeat-issues report.
// Entries are immutable once parsed. The csv tags match the report headers
// exactly for tag-driven CSV decoding; xlsx reports go through header-driven
// column resolution instead (see the report package).
type DefectEntry struct {
	Date                     string `csv:"Date" json:"date"`
	LocationDetails          string `csv:"Location Details" json:"locationDetails"`
	DefectCode               string `csv:"Defect Code" json:"defectCode"`
	DefectDescription        string `csv:"Defect Description" json:"defectDescription"`
	DefectDescriptionDetails string `csv:"Defect Description Details" json:"defectDescriptionDetails"`
	Gravity                  string `csv:"Gravity" json:"gravity"`
	Quantity                 int    `csv:"Quantity" json:"quantity"`
	Source                   string `csv:"Source" json:"source"`
	Responsible              string `csv:"Responsible" json:"responsible"`
	PofFamily                string `csv:"POF Family" json:"pofFamily"`
	PofCode                  string `csv:"POF CODE" json:"pofCode"`
}

// SearchText is the free text handed to the fuzzy matcher.
func (d DefectEntry) SearchText() string {
	return d.LocationDetails + " " + d.DefectDescription + " " + d.DefectDescriptionDetails
}

// MatchGroup associates one concern with the defect entries judged to belong
// to it. RepeatCount is always the sum of the member entries' quantities.
type MatchGroup struct {
	Entries     []DefectEntry `json:"dvxEntries"`
	RepeatCount int           `json:"repeatCount"`
	QaSNo       int           `json:"qaSNo"`
	QaConcern   string        `json:"qaConcern"`
	MatchScore  float64       `json:"matchScore"`
}

// UnmatchedDefect wraps a defect entry that found no concern above the
// matching threshold. The synthetic id is stable across manual corrections:
// "unmatched-<index>" from a match run, "unmatched-manual-<timestamp>" for
// entries unpaired by hand.
type UnmatchedDefect struct {
	Entry DefectEntry `json:"dvxEntry"`
	ID    string      `json:"id"`
}

// DiffRecord is one row of the apply preview: a single scalar field of a
// single concern, before and after.
type DiffRecord struct {
	SNo     int    `json:"sNo"`
	Concern string `json:"concern"`
	Field   string `json:"field"`
	Before  string `json:"before"`
	After   string `json:"after"`
}

// ReportImport is the audit record of one uploaded repeat-issues report.
type ReportImport struct {
	ID             int64     `db:"id" json:"id"`
	FileName       string    `db:"file_name" json:"fileName"`
	ParsedCount    int       `db:"parsed_count" json:"parsedCount"`
	MatchedGroups  int       `db:"matched_groups" json:"matchedGroups"`
	UnmatchedCount int       `db:"unmatched_count" json:"unmatchedCount"`
	ImportedAt     time.Time `db:"imported_at" json:"importedAt"`
}

// RatingFromGravity maps a report severity grade onto the 1/3/5 defect
// rating scale: A is critical, B is major, anything else is minor.
func RatingFromGravity(gravity string) int {
	switch strings.ToUpper(strings.TrimSpace(gravity)) {
	case "A":
		return 5
	case "B":
		return 3
	}
	return 1
}

// ConcernFromDefect builds a new ledger entry seeded from an unmatched
// defect: the report quantity lands in the most recent weekly slot and the
// descriptive fields carry over as defaults the caller may override.
func ConcernFromDefect(entry DefectEntry, sNo int) Concern {
	concernText := strings.TrimSpace(entry.DefectDescription + " - " + entry.DefectDescriptionDetails)
	concernText = strings.TrimSuffix(concernText, " -")

	weekly := make([]int, WeeklyRecurrenceSlots)
	weekly[WeeklyRecurrenceSlots-1] = entry.Quantity

	area := entry.PofCode
	if area == "" {
		area = "Trim"
	}

	c := Concern{
		SNo:              sNo,
		Source:           entry.Source,
		OperationStation: entry.LocationDetails,
		Designation:      area,
		Concern:          concernText,
		DefectRating:     RatingFromGravity(entry.Gravity),
		WeeklyRecurrence: weekly,
		Resp:             entry.Responsible,
	}
	c.Recalculate()
	return c
}
