// backend/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/qavision/qamatrix/backend/config"
	"github.com/qavision/qamatrix/backend/database"
	"github.com/qavision/qamatrix/backend/handlers"
	"github.com/qavision/qamatrix/backend/models"
	"github.com/qavision/qamatrix/backend/report"
	"github.com/qavision/qamatrix/backend/services"
)

func main() {
	log.Println("Starting QA Matrix Backend Application...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment and config.yaml")
	}

	if err := config.LoadConfig(""); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s",
		config.AppConfig.Server.Port, config.AppConfig.Database.DBName)

	if err := database.InitDB(config.AppConfig.Database); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	if err := database.EnsureSchema(); err != nil {
		log.Fatalf("Error ensuring database schema: %v", err)
	}

	store := database.ConcernStore{}
	ledger := services.NewLedgerService(store)

	concerns, err := store.LoadConcerns()
	if err != nil {
		log.Fatalf("Error loading concerns: %v", err)
	}
	if len(concerns) == 0 {
		concerns = seedConcerns()
	}
	if err := ledger.ReplaceAll(concerns); err != nil {
		log.Fatalf("Error initializing ledger: %v", err)
	}
	log.Printf("Ledger initialized with %d concerns", ledger.Count())

	recon := services.NewReconStore(ledger, config.AppConfig.Matching.Threshold)
	handlers.Setup(ledger, recon)

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "QA Matrix backend is healthy"}`)
	})

	http.HandleFunc("/api/concerns", handlers.ConcernsHandler)
	http.HandleFunc("/api/concerns/", handlers.ConcernItemHandler) // Path ends with / to catch sub-paths

	http.HandleFunc("/api/repeats", handlers.ReconStateHandler)
	http.HandleFunc("/api/repeats/upload", handlers.UploadReportHandler)
	http.HandleFunc("/api/repeats/unpair", handlers.UnpairHandler)
	http.HandleFunc("/api/repeats/reassign", handlers.ReassignHandler)
	http.HandleFunc("/api/repeats/pair", handlers.PairHandler)
	http.HandleFunc("/api/repeats/review", handlers.ReviewHandler)
	http.HandleFunc("/api/repeats/create-concern", handlers.CreateConcernHandler)
	http.HandleFunc("/api/repeats/apply", handlers.ApplyHandler)
	http.HandleFunc("/api/repeats/undo", handlers.UndoHandler)
	http.HandleFunc("/api/repeats/diff", handlers.DiffHandler)

	http.HandleFunc("/api/admin/reset", handlers.ResetHandler)
	http.HandleFunc("/api/admin/import", handlers.ImportMatrixHandler)
	http.HandleFunc("/api/admin/imports", handlers.ImportLogHandler)

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}

// seedConcerns loads the configured seed workbook on first start. A missing
// or unreadable seed is not fatal; the ledger just starts empty.
func seedConcerns() []models.Concern {
	seedPath := config.AppConfig.SeedData.MatrixWorkbook
	if seedPath == "" {
		return nil
	}
	f, err := os.Open(seedPath)
	if err != nil {
		log.Printf("WARN: seed workbook %s not available: %v", seedPath, err)
		return nil
	}
	defer f.Close()

	concerns, err := report.LoadMatrixWorkbook(f)
	if err != nil {
		log.Printf("WARN: failed to parse seed workbook %s: %v", seedPath, err)
		return nil
	}
	log.Printf("Seeding ledger from %s (%d concerns)", seedPath, len(concerns))
	return concerns
}
