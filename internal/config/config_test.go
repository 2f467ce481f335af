package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "inventario", cfg.App.Name)
	assert.Equal(t, "json", cfg.Storage.Driver)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "none", cfg.Printer.Type)
	assert.Equal(t, 32, cfg.Printer.CharWidth)
	assert.Equal(t, 5, cfg.Store.LowStockThreshold)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Contains(t, cfg.CORS.AllowedHeaders, "Idempotency-Key")
}

func TestLoadFile_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.env")
	body := "APP_PORT=9090\nSTORAGE_DRIVER=Postgres\nDATA_DIR=/var/lib/inventario\n" +
		"CORS_ALLOWED_ORIGINS=http://a.test, http://b.test\nPRINTER_TYPE=file\nPRINTER_FILE_PATH=/tmp/spool\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := LoadFile(path)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/inventario", cfg.Storage.DataDir)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "file", cfg.Printer.Type)
	assert.Equal(t, "/tmp/spool", cfg.Printer.FilePath)
}

func TestLoadFile_EnvironmentWins(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "12")
	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, 12, cfg.Store.LowStockThreshold)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "1", Name: "n", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable TimeZone=UTC", db.DSN())
}
