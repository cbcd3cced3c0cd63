package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg := LoadFromEnv()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 8.0, cfg.WorkdayHours)
	assert.Equal(t, 20, cfg.CommentCap)
	assert.Equal(t, 30, cfg.RecentDays)
	assert.Equal(t, []int{7, 15, 30, 60, 90}, cfg.ReportingWindows)
	assert.Equal(t, "CSAT_Review", cfg.CsatSheet)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.SharePoint.Configured())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("WORKDAY_HOURS", "7.5")
	t.Setenv("REPORTING_WINDOWS", "7, 30")
	t.Setenv("GRPC_PORT", "not-a-port")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("FETCH_TIMEOUT", "5s")

	cfg := LoadFromEnv()

	assert.Equal(t, 7.5, cfg.WorkdayHours)
	assert.Equal(t, []int{7, 30}, cfg.ReportingWindows)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.SharePoint.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workday", func(c *Config) { c.WorkdayHours = 0 }},
		{"no windows", func(c *Config) { c.ReportingWindows = nil }},
		{"negative window", func(c *Config) { c.ReportingWindows = []int{7, -1} }},
		{"bad env", func(c *Config) { c.AppEnv = "staging" }},
		{"bad site url", func(c *Config) { c.SharePoint.SiteURL = "not a url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadFromEnv()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&Config{AppEnv: "production"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadColumns(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cols, err := LoadColumns("")
		require.NoError(t, err)
		assert.Equal(t, DefaultColumns(), cols)
	})

	t.Run("override replaces only listed fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "columns.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
utilization:
  partner: ["Client"]
csat:
  team_member: ["Engineer", "Team Member"]
`), 0o644))

		cols, err := LoadColumns(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Client"}, cols.Utilization.Partner)
		assert.Equal(t, []string{"Engineer", "Team Member"}, cols.Csat.TeamMember)
		assert.Equal(t, DefaultColumns().Utilization.Email, cols.Utilization.Email)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadColumns(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("utilization: [unterminated"), 0o644))
		_, err := LoadColumns(path)
		assert.Error(t, err)
	})
}
