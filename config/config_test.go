// backend/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: "9090"
database:
  host: "db.internal"
  port: "3306"
  user: "qa"
  password: "secret"
  dbname: "qamatrix"
matching:
  threshold: 0.25
seed_data:
  matrix_workbook: "./seed/qa.xlsx"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	require.NoError(t, LoadConfig(writeTestConfig(t, testYAML)))

	assert.Equal(t, "9090", AppConfig.Server.Port)
	assert.Equal(t, "db.internal", AppConfig.Database.Host)
	assert.Equal(t, "qamatrix", AppConfig.Database.DBName)
	assert.Equal(t, 0.25, AppConfig.Matching.Threshold)
	assert.Equal(t, "./seed/qa.xlsx", AppConfig.SeedData.MatrixWorkbook)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("DB_PASSWORD", "env-secret")

	require.NoError(t, LoadConfig(writeTestConfig(t, testYAML)))

	assert.Equal(t, "override.internal", AppConfig.Database.Host)
	assert.Equal(t, "env-secret", AppConfig.Database.Password)
	assert.Equal(t, "qa", AppConfig.Database.User)
}

func TestLoadConfigDefaults(t *testing.T) {
	AppConfig = Config{}
	require.NoError(t, LoadConfig(writeTestConfig(t, "server: {}\n")))

	assert.Equal(t, "8080", AppConfig.Server.Port)
	assert.Equal(t, 0.15, AppConfig.Matching.Threshold)
}

func TestLoadConfigMissingFile(t *testing.T) {
	err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
