package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.Scanner.SuccessDisplay)
	assert.Equal(t, 500*time.Millisecond, cfg.Scanner.ClearDelay)
	assert.Equal(t, 2*time.Second, cfg.Scanner.FailureDisplay)
	assert.False(t, cfg.Scanner.ImageDecodeEnabled)
	assert.Equal(t, "barcodes", cfg.Barcode.StoreDir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("INVENTORY_SCANNER_FAILURE_DISPLAY", "3s")
	t.Setenv("INVENTORY_SCANNER_IMAGE_DECODE_ENABLED", "true")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Scanner.FailureDisplay)
	assert.True(t, cfg.Scanner.ImageDecodeEnabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"database": {"host": "mysql", "database": "shop"},
		"scanner": {"success_display": "1s", "clear_delay": "250ms"},
		"barcode": {"width": 600}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Host)
	assert.Equal(t, "shop", cfg.Database.Database)
	assert.Equal(t, time.Second, cfg.Scanner.SuccessDisplay)
	assert.Equal(t, 250*time.Millisecond, cfg.Scanner.ClearDelay)
	assert.Equal(t, 600, cfg.Barcode.Width)
	assert.Equal(t, 120, cfg.Barcode.Height)
	assert.Contains(t, cfg.Database.DSN(), "@tcp(mysql:3306)/shop?")
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfigRejectsInvalidTiming(t *testing.T) {
	t.Setenv("INVENTORY_SCANNER_SUCCESS_DISPLAY", "0s")

	_, err := LoadConfig("")
	assert.Error(t, err)
}
