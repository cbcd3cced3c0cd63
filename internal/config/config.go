package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string `validate:"oneof=development production test"`

	UtilizationPath  string `validate:"required"`
	CsatPath         string `validate:"required"`
	UtilizationSheet string
	CsatSheet        string
	OutputDir        string `validate:"required"`
	ColumnsFile      string

	WorkdayHours     float64 `validate:"gt=0,lte=24"`
	CommentCap       int     `validate:"gte=1"`
	RecentDays       int     `validate:"gte=1"`
	ReportingWindows []int   `validate:"min=1,dive,gte=1"`

	DBPath   string
	DBDriver string `validate:"required"`

	RedisAddr string
	CacheTTL  time.Duration

	GRPCPort              int `validate:"gte=1,lte=65535"`
	GRPCReflectionEnabled bool
	HTTPPort              int `validate:"gte=1,lte=65535"`
	CORSOrigins           []string
	AdminAPIKey           string

	SharePoint SharePointConfig

	PostgresURL    string
	PostgresSchema string
}

// SharePointConfig points the fetcher at the two workbooks on a SharePoint site.
type SharePointConfig struct {
	TenantID        string
	ClientID        string
	ClientSecret    string
	SiteURL         string `validate:"omitempty,url"`
	UtilizationFile string
	CsatFile        string
	Timeout         time.Duration
}

// Configured reports whether enough is set to attempt a download.
func (s SharePointConfig) Configured() bool {
	return s.TenantID != "" && s.ClientID != "" && s.ClientSecret != "" && s.SiteURL != ""
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		UtilizationPath:  getEnv("UTILIZATION_PATH", "./data/utilization.xlsx"),
		CsatPath:         getEnv("CSAT_PATH", "./data/csat.xlsx"),
		UtilizationSheet: getEnv("UTILIZATION_SHEET", ""),
		CsatSheet:        getEnv("CSAT_SHEET", "CSAT_Review"),
		OutputDir:        getEnv("OUTPUT_DIR", "./output"),
		ColumnsFile:      getEnv("COLUMNS_FILE", ""),

		WorkdayHours:     getFloat("WORKDAY_HOURS", 8),
		CommentCap:       getInt("COMMENT_CAP", 20),
		RecentDays:       getInt("RECENT_DAYS", 30),
		ReportingWindows: getIntList("REPORTING_WINDOWS", []int{7, 15, 30, 60, 90}),

		DBPath:   getEnv("DB_PATH", "./data/workforce.db"),
		DBDriver: getEnv("DB_DRIVER", "sqlite3"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  getDuration("CACHE_TTL", 10*time.Minute),

		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		HTTPPort:              getInt("HTTP_PORT", 8080),
		CORSOrigins:           getList("CORS_ORIGINS", []string{"*"}),
		AdminAPIKey:           getEnv("ADMIN_API_KEY", ""),

		SharePoint: SharePointConfig{
			TenantID:        getEnv("SHAREPOINT_TENANT_ID", ""),
			ClientID:        getEnv("AZURE_CLIENT_ID", ""),
			ClientSecret:    getEnv("AZURE_CLIENT_SECRET", ""),
			SiteURL:         getEnv("SHAREPOINT_SITE_URL", ""),
			UtilizationFile: getEnv("SHAREPOINT_UTILIZATION_FILE", ""),
			CsatFile:        getEnv("SHAREPOINT_CSAT_FILE", ""),
			Timeout:         getDuration("FETCH_TIMEOUT", 60*time.Second),
		},

		PostgresURL:    getEnv("POSTGRES_URL", ""),
		PostgresSchema: getEnv("POSTGRES_SCHEMA", "workforce_intel"),
	}
}

// Validate checks the struct tags on cfg.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getIntList(key string, fallback []int) []int {
	parts := getList(key, nil)
	if parts == nil {
		return fallback
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fallback
		}
		out = append(out, n)
	}
	return out
}
