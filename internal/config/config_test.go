package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_DSN", "TELEGRAM_TOKEN", "ENV", "HTTP_ADDR", "MIGRATIONS_DIR", "TIMEZONE",
		"WEEKLY_QUOTA", "CUTOVER_WEEKDAY", "CUTOVER_HOUR", "ADMIN_TELEGRAM_IDS",
		"AUDIT_INTERVAL", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DSN", "memory://")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.UseMemoryStore())
	assert.False(t, cfg.BotEnabled())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 8, cfg.WeeklyQuota)
	assert.Equal(t, time.Sunday, cfg.Cutover.Weekday)
	assert.Equal(t, 12, cfg.Cutover.Hour)
	assert.Equal(t, time.Hour, cfg.AuditInterval)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
}

func TestLoadRequiresDSN(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadPolicyFileAndEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
timezone: Europe/Vienna
quota:
  weekly_limit: 6
  cutover:
    weekday: samstag
    hour: 18
group_aliases:
  WTV@wh.de: WTV
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DB_DSN", "postgres://localhost/booking")
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WEEKLY_QUOTA", "4")
	t.Setenv("ADMIN_TELEGRAM_IDS", "11, 22")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.UseMemoryStore())
	assert.Equal(t, 4, cfg.WeeklyQuota)
	assert.Equal(t, time.Saturday, cfg.Cutover.Weekday)
	assert.Equal(t, 18, cfg.Cutover.Hour)
	assert.Equal(t, "Europe/Vienna", cfg.Timezone)
	assert.Equal(t, "WTV", cfg.GroupAliases["wtv@wh.de"])
	assert.Equal(t, []int64{11, 22}, cfg.AdminIDs)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"quota", "WEEKLY_QUOTA", "acht"},
		{"weekday", "CUTOVER_WEEKDAY", "someday"},
		{"hour", "CUTOVER_HOUR", "24"},
		{"admins", "ADMIN_TELEGRAM_IDS", "1,x"},
		{"interval", "AUDIT_INTERVAL", "-5m"},
		{"timezone", "TIMEZONE", "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_DSN", "memory://")
			t.Setenv(tt.key, tt.val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingPolicyFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DSN", "memory://")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
