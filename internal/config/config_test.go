package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSerial, EnvInstanceID, EnvCacheDir, EnvTablesDir, EnvStartActive, EnvDebug} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", "/tmp/home")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultSerial, c.Serial)
	assert.Equal(t, DefaultInstanceID, c.InstanceID)
	assert.Equal(t, filepath.Join("/tmp/home", ".cache", "signals"), c.CacheDir)
	assert.Empty(t, c.TablesDir)
	assert.False(t, c.StartActive)
	assert.False(t, c.Debug)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSerial, " KT4NE8 ")
	t.Setenv(EnvInstanceID, "7")
	t.Setenv(EnvCacheDir, "/var/cache/sig")
	t.Setenv(EnvTablesDir, "/etc/sig")
	t.Setenv(EnvStartActive, "true")
	t.Setenv(EnvDebug, "1")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "KT4NE8", c.Serial)
	assert.Equal(t, 7, c.InstanceID)
	assert.Equal(t, "/var/cache/sig", c.CacheDir)
	assert.Equal(t, "/etc/sig", c.TablesDir)
	assert.True(t, c.StartActive)
	assert.True(t, c.Debug)
	assert.Equal(t, "/var/cache/sig/audit.jsonl", c.AuditLogPath())
	assert.Equal(t, "/var/cache/sig/debug.log", c.DebugLogPath())
	assert.Equal(t, "/var/cache/sig/history", c.HistoryPath())
}

func TestFromEnv_EmptySerialIsKept(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSerial, "")
	t.Setenv(EnvCacheDir, "/c")
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "", c.Serial)
}

func TestFromEnv_BadValues(t *testing.T) {
	cases := map[string]string{
		EnvInstanceID:  "one",
		EnvStartActive: "maybe",
		EnvDebug:       "yes please",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvCacheDir, "/c")
			t.Setenv(k, v)
			_, err := FromEnv()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), k)
		})
	}
}

func TestLoad_EnvFileAndMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCacheDir, "/c")
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SIGNALS_INSTANCE_ID=4\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv(EnvInstanceID) })

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.InstanceID)

	_, err = Load(filepath.Join(dir, "absent.env"))
	assert.NoError(t, err)
}

func TestLoad_ProcessEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCacheDir, "/c")
	t.Setenv(EnvSerial, "FROMENV")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SIGNALS_SERIAL=FROMFILE\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "FROMENV", c.Serial)
}
