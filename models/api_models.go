// backend/models/api_models.go
package models

// WeeklyUpdateRequest is the JSON body for POST /api/concerns/{sNo}/weekly.
type WeeklyUpdateRequest struct {
	WeekIndex int `json:"weekIndex"` // 0 = oldest, 5 = most recent
	Value     int `json:"value"`
}

// ScoreUpdateRequest is the JSON body for POST /api/concerns/{sNo}/score.
// A nil value clears the cell back to "not evaluated".
type ScoreUpdateRequest struct {
	Section string   `json:"section"` // trim | chassis | final | qControl | qControlDetail
	Key     string   `json:"key"`
	Value   *float64 `json:"value"`
}

// FieldUpdateRequest is the JSON body for POST /api/concerns/{sNo}/field.
type FieldUpdateRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UnpairRequest removes one defect entry from a matched group.
type UnpairRequest struct {
	QaSNo      int `json:"qaSNo"`
	EntryIndex int `json:"entryIndex"`
}

// ReassignRequest moves a defect entry between two matched groups.
type ReassignRequest struct {
	Entry   DefectEntry `json:"entry"`
	FromSNo int         `json:"fromSNo"`
	ToSNo   int         `json:"toSNo"`
}

// ManualPairRequest pairs an unmatched defect to an existing concern.
type ManualPairRequest struct {
	UnmatchedID string `json:"unmatchedId"`
	QaSNo       int    `json:"qaSNo"`
}

// CreateConcernRequest turns an unmatched defect into a brand new concern.
// Empty fields fall back to defaults derived from the defect entry.
type CreateConcernRequest struct {
	UnmatchedID  string `json:"unmatchedId"`
	Source       string `json:"source"`
	Station      string `json:"station"`
	Designation  string `json:"designation"`
	DefectRating int    `json:"defectRating"`
	Concern      string `json:"concern"`
	MfgAction    string `json:"mfgAction"`
	Resp         string `json:"resp"`
	Target       string `json:"target"`
}

// ReconSummary mirrors the counters shown above the pairing screen.
type ReconSummary struct {
	FileName      string `json:"fileName"`
	TotalDefects  int    `json:"totalDefects"`
	MatchedGroups int    `json:"matchedGroups"`
	RepeatSum     int    `json:"repeatSum"`
	UnpairedCount int    `json:"unpairedCount"`
	Applied       bool   `json:"applied"`
}

// ReconSnapshot is the full read-only view of the reconciliation state.
type ReconSnapshot struct {
	Summary   ReconSummary      `json:"summary"`
	Matched   []MatchGroup      `json:"matched"`
	Unmatched []UnmatchedDefect `json:"unmatched"`
}
