// backend/handlers/admin_handler.go
package handlers

import (
	"log"
	"net/http"
	"os"

	"github.com/qavision/qamatrix/backend/config"
	"github.com/qavision/qamatrix/backend/database"
	"github.com/qavision/qamatrix/backend/report"
)

// ResetHandler serves POST /api/admin/reset: throw away the current ledger
// and reload it from the seed matrix workbook.
func ResetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	seedPath := config.AppConfig.SeedData.MatrixWorkbook
	if seedPath == "" {
		respondWithError(w, http.StatusInternalServerError, "No seed matrix workbook configured")
		return
	}
	f, err := os.Open(seedPath)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to open seed workbook: "+err.Error())
		return
	}
	defer f.Close()

	concerns, err := report.LoadMatrixWorkbook(f)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to parse seed workbook: "+err.Error())
		return
	}
	if err := ledger.ReplaceAll(concerns); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to reset ledger: "+err.Error())
		return
	}

	log.Printf("Handler: ledger reset to %d seed concerns", len(concerns))
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Ledger reset from seed workbook",
		"concerns": len(concerns),
	})
}

// ImportMatrixHandler serves POST /api/admin/import: replace the ledger with
// an uploaded matrix workbook (multipart field "file"). With ?mode=append the
// rows are added to the existing ledger instead, renumbering any colliding
// serials.
func ImportMatrixHandler(w http.ResponseWriter, r *http.Request) {
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

	concerns, err := report.LoadMatrixWorkbook(file)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to parse matrix workbook: "+err.Error())
		return
	}
	if r.URL.Query().Get("mode") == "append" {
		if _, err := ledger.BulkImport(concerns); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to append to ledger: "+err.Error())
			return
		}
	} else if err := ledger.ReplaceAll(concerns); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to replace ledger: "+err.Error())
		return
	}

	log.Printf("Handler: imported %d concerns from %s", len(concerns), header.Filename)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Matrix workbook imported",
		"concerns": len(concerns),
	})
}

// ImportLogHandler serves GET /api/admin/imports: the repeat-report upload
// audit log, newest first.
func ImportLogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	imports, err := database.GetReportImports(50)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load import log: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, imports)
}
