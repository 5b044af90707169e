// backend/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type MatchingConfig struct {
	// Threshold is the minimum combined similarity score for an automatic
	// defect-to-concern pairing. Scores are in [0,1].
	Threshold float64 `yaml:"threshold"`
}

type SeedDataConfig struct {
	// MatrixWorkbook is the path to the QA Matrix xlsx used to seed an
	// empty database on first start (and by /api/admin/reset).
	MatrixWorkbook string `yaml:"matrix_workbook"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Matching MatchingConfig `yaml:"matching"`
	SeedData SeedDataConfig `yaml:"seed_data"`
}

var AppConfig Config

// LoadConfig reads configuration from a yaml file. Database credentials can
// be overridden through environment variables (DB_HOST, DB_PORT, DB_USER,
// DB_PASSWORD, DB_NAME) so a checked-in config.yaml never needs to carry
// real passwords.
func LoadConfig(configPath string) error {
	if configPath == "" {
		// Try the common locations relative to where the binary is run.
		potentialPaths := []string{
			"config.yaml",
			"config/config.yaml",
			"backend/config/config.yaml",
		}
		for _, p := range potentialPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
		if configPath == "" {
			return fmt.Errorf("config.yaml not found in standard locations")
		}
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(file, &AppConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment overrides for DB credentials (populated by godotenv in main).
	if v := os.Getenv("DB_HOST"); v != "" {
		AppConfig.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		AppConfig.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		AppConfig.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		AppConfig.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		AppConfig.Database.DBName = v
	}

	if AppConfig.Matching.Threshold <= 0 {
		AppConfig.Matching.Threshold = 0.15 // Default auto-pairing threshold
	}
	if AppConfig.Server.Port == "" {
		AppConfig.Server.Port = "8080"
	}

	return nil
}
