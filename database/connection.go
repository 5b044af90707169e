// backend/database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // MariaDB driver

	"github.com/qavision/qamatrix/backend/config"
)

var DB *sql.DB

// InitDB initializes the database connection pool.
func InitDB(cfg config.DatabaseConfig) error {
	var err error
	// DSN: username:password@protocol(address)/dbname?param=value
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	// Ping the database to verify connection
	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database!")
	return nil
}

// EnsureSchema creates the tables the application needs if they are missing.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS concerns (
			s_no INT NOT NULL PRIMARY KEY,
			source VARCHAR(255) NOT NULL DEFAULT '',
			operation_station VARCHAR(255) NOT NULL DEFAULT '',
			designation VARCHAR(255) NOT NULL DEFAULT '',
			concern TEXT NOT NULL,
			defect_rating INT NOT NULL DEFAULT 1,
			weekly_recurrence TEXT NOT NULL,
			trim_scores TEXT NOT NULL,
			chassis_scores TEXT NOT NULL,
			final_scores TEXT NOT NULL,
			q_control_scores TEXT NOT NULL,
			q_control_detail TEXT NOT NULL,
			mfg_action TEXT NOT NULL,
			resp VARCHAR(255) NOT NULL DEFAULT '',
			target VARCHAR(255) NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS report_imports (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			file_name VARCHAR(512) NOT NULL,
			parsed_count INT NOT NULL DEFAULT 0,
			matched_groups INT NOT NULL DEFAULT 0,
			unmatched_count INT NOT NULL DEFAULT 0,
			imported_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	log.Println("Database schema ensured.")
	return nil
}

// CloseDB closes the database connection pool.
// Typically called on application shutdown.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Database connection closed.")
	}
}
