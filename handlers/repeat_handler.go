// backend/handlers/repeat_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/qavision/qamatrix/backend/database"
	"github.com/qavision/qamatrix/backend/models"
	"github.com/qavision/qamatrix/backend/report"
)

// maxReportUploadBytes caps a repeat-report upload at 20 MiB.
const maxReportUploadBytes = 20 << 20

// UploadReportHandler serves POST /api/repeats/upload: parses the uploaded
// defect report (xlsx or csv, multipart field "file") and runs matching
// against the current ledger.
func UploadReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReportUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing 'file' upload: "+err.Error())
		return
	}
	defer file.Close()

	var entries []models.DefectEntry
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		entries, err = report.ParseDefectCSV(file)
	default:
		entries, err = report.ParseDefectReport(file)
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to parse report: "+err.Error())
		return
	}
	if len(entries) == 0 {
		respondWithError(w, http.StatusBadRequest, "Report contains no defect rows")
		return
	}

	recon.RunMatching(entries, header.Filename)

	summary := recon.Summary()
	if err := database.LogReportImport(models.ReportImport{
		FileName:       header.Filename,
		ParsedCount:    summary.TotalDefects,
		MatchedGroups:  summary.MatchedGroups,
		UnmatchedCount: summary.UnpairedCount,
	}); err != nil {
		log.Printf("Handler: WARN failed to log report import: %v", err)
	}

	respondWithJSON(w, http.StatusOK, recon.State())
}

// ReconStateHandler serves GET /api/repeats: the current matching session.
func ReconStateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, recon.State())
}

// UnpairHandler serves POST /api/repeats/unpair.
func UnpairHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	var req models.UnpairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	recon.Unpair(req.QaSNo, req.EntryIndex)
	respondWithJSON(w, http.StatusOK, recon.State())
}

// ReassignHandler serves POST /api/repeats/reassign.
func ReassignHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	var req models.ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	recon.Reassign(req.Entry, req.FromSNo, req.ToSNo)
	respondWithJSON(w, http.StatusOK, recon.State())
}

// PairHandler serves POST /api/repeats/pair: attach an unmatched defect to an
// existing concern.
func PairHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	var req models.ManualPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := recon.ManualPair(req.UnmatchedID, req.QaSNo); err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, recon.State())
}

// ReviewHandler serves POST /api/repeats/review: hide or unhide an unmatched
// defect.
func ReviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	var req struct {
		UnmatchedID string `json:"unmatchedId"`
		Reviewed    bool   `json:"reviewed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	recon.MarkReviewed(req.UnmatchedID, req.Reviewed)
	respondWithJSON(w, http.StatusOK, recon.State())
}

// CreateConcernHandler serves POST /api/repeats/create-concern: promote an
// unmatched defect into a new ledger entry.
func CreateConcernHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	var req models.CreateConcernRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	defer r.Body.Close()

	added, err := recon.AddConcernForUnmatched(req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"concern": added,
		"state":   recon.State(),
	})
}

// ApplyHandler serves POST /api/repeats/apply: fold repeat counts into the
// ledger's most recent week.
func ApplyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	diffs, err := recon.Apply()
	if err != nil {
		respondWithError(w, http.StatusConflict, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"diffs":   diffs,
		"summary": recon.Summary(),
	})
}

// UndoHandler serves POST /api/repeats/undo.
func UndoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	undone, err := recon.Undo()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"undone":  undone,
		"summary": recon.Summary(),
	})
}

// DiffHandler serves GET /api/repeats/diff: the change preview of the last
// apply.
func DiffHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, recon.Diffs())
}
