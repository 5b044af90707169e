// backend/handlers/concern_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/qavision/qamatrix/backend/models"
	"github.com/qavision/qamatrix/backend/report"
	"github.com/qavision/qamatrix/backend/services"
)

var (
	ledger *services.LedgerService
	recon  *services.ReconStore
)

// Setup wires the shared services into the handler package. Must be called
// before any route is served.
func Setup(l *services.LedgerService, r *services.ReconStore) {
	ledger = l
	recon = r
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Handler ERROR: Marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("Handler API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// ConcernsHandler serves /api/concerns: GET lists the ledger, POST adds a
// new concern.
func ConcernsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondWithJSON(w, http.StatusOK, ledger.Concerns())
	case http.MethodPost:
		var c models.Concern
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		defer r.Body.Close()
		if c.DefectRating != 1 && c.DefectRating != 3 && c.DefectRating != 5 {
			respondWithError(w, http.StatusBadRequest, "defectRating must be 1, 3 or 5")
			return
		}
		added, err := ledger.Add(c)
		if err != nil {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		respondWithJSON(w, http.StatusCreated, added)
	default:
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET and POST methods are allowed")
	}
}

// ConcernItemHandler serves /api/concerns/<sNo> and its sub-resources:
//
//	GET    /api/concerns/<sNo>           one concern
//	DELETE /api/concerns/<sNo>           remove it
//	POST   /api/concerns/<sNo>/weekly    set one weekly recurrence cell
//	POST   /api/concerns/<sNo>/score     set one control score cell
//	POST   /api/concerns/<sNo>/field     set one editable field
//	GET    /api/concerns/export          ledger export (?format=csv|xlsx)
func ConcernItemHandler(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/concerns/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		respondWithError(w, http.StatusNotFound, "Missing concern serial number")
		return
	}
	if parts[0] == "export" {
		exportConcerns(w, r)
		return
	}

	sNo, err := strconv.Atoi(parts[0])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid concern serial number: "+parts[0])
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			c, ok := ledger.Get(sNo)
			if !ok {
				respondWithError(w, http.StatusNotFound, "Concern not found")
				return
			}
			respondWithJSON(w, http.StatusOK, c)
		case http.MethodDelete:
			if err := ledger.Delete(sNo); err != nil {
				respondWithError(w, http.StatusNotFound, err.Error())
				return
			}
			respondWithJSON(w, http.StatusOK, map[string]string{"message": "Concern deleted"})
		default:
			respondWithError(w, http.StatusMethodNotAllowed, "Only GET and DELETE methods are allowed")
		}
		return
	}

	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	defer r.Body.Close()

	switch parts[1] {
	case "weekly":
		var req models.WeeklyUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		updated, err := ledger.UpdateWeekly(sNo, req.WeekIndex, req.Value)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	case "score":
		var req models.ScoreUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		section, ok := models.ParseScoreSection(req.Section)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "Unknown score section: "+req.Section)
			return
		}
		updated, err := ledger.UpdateScore(sNo, section, req.Key, req.Value)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	case "field":
		var req models.FieldUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
		updated, err := ledger.UpdateField(sNo, req.Field, req.Value)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, updated)
	default:
		respondWithError(w, http.StatusNotFound, "Unknown concern sub-resource: "+parts[1])
	}
}

func exportConcerns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	concerns := ledger.Concerns()

	switch r.URL.Query().Get("format") {
	case "csv":
		data, err := report.ExportCSV(concerns)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Export failed: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="qa-matrix.csv"`)
		w.Write(data)
	case "", "xlsx":
		data, err := report.ExportXLSX(concerns)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Export failed: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="qa-matrix.xlsx"`)
		w.Write(data)
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown export format; use csv or xlsx")
	}
}
