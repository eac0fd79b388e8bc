package configuration

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfiguration tests the configuration package basic functionality
func TestConfiguration(t *testing.T) {
	t.Run("configuration_struct_exists", func(t *testing.T) {
		require.NotNil(t, &C, "Configuration should not be nil")
		require.NotNil(t, &C.App, "App configuration should exist")
		require.NotNil(t, &C.Database, "Database configuration should exist")
	})

	t.Run("configuration_has_required_fields", func(t *testing.T) {
		config := &C
		require.NotNil(t, config.Database.Psql, "PostgreSQL config should be present")
		require.NotNil(t, config.Database.Mongo, "MongoDB config should be present")
		require.NotNil(t, config.Database.Mssql, "MSSQL config should be present")
		require.NotNil(t, config.Vault, "Vault config should be present")
	})

	t.Run("defaults_applied", func(t *testing.T) {
		// init() runs initDefaults before any test
		assert.Equal(t, 10, C.OAuth.StateTTLMinutes)
		assert.Equal(t, 5000, C.Undo.TTLMs)
		assert.GreaterOrEqual(t, C.Sync.Parallelism, 1)
		assert.GreaterOrEqual(t, C.Sync.DeadlineSeconds, 1)
		assert.NotZero(t, C.App.Port)
		assert.NotEmpty(t, C.App.BaseURL)
	})
}

func TestVaultKeyDecoding(t *testing.T) {
	orig := C.Vault.Key
	defer func() { C.Vault.Key = orig }()

	t.Run("raw_32_byte_key", func(t *testing.T) {
		C.Vault.Key = "0123456789abcdef0123456789abcdef"
		assert.Equal(t, []byte("0123456789abcdef0123456789abcdef"), VaultKey())
	})

	t.Run("base64_key", func(t *testing.T) {
		raw := []byte("fedcba9876543210fedcba9876543210")
		C.Vault.Key = base64.StdEncoding.EncodeToString(raw)
		assert.Equal(t, raw, VaultKey())
	})

	t.Run("empty_key", func(t *testing.T) {
		C.Vault.Key = ""
		assert.Nil(t, VaultKey())
	})
}

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	content := "# comment line\nTEST_ENV_LOADER_A=value-a\nTEST_ENV_LOADER_B=\"quoted\"\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TEST_ENV_LOADER_B", "preset")

	LoadEnvFromFile(path, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "value-a", os.Getenv("TEST_ENV_LOADER_A"))
	// existing env vars are not overridden
	assert.Equal(t, "preset", os.Getenv("TEST_ENV_LOADER_B"))
	_ = os.Unsetenv("TEST_ENV_LOADER_A")
}
