package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Business  BusinessConfig
	Database  DatabaseConfig
	Square    SquareConfig
	Auth      AuthConfig
	Redis     RedisConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	WhatsApp  WhatsAppConfig
	Reporting ReportingConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	LogLevel       string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// BusinessConfig describes the shop itself.
type BusinessConfig struct {
	Timezone string
}

// Location resolves the business time zone.
func (b BusinessConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// DatabaseConfig holds the Postgres connection settings. An empty URL disables persistence.
type DatabaseConfig struct {
	URL         string
	MaxConns    int32
	AutoMigrate bool
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// SquareConfig contains credentials and tuning for the Square payments API.
type SquareConfig struct {
	AccessToken       string
	Environment       string
	APIVersion        string
	LocationID        string
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

// Enabled reports whether Square credentials are present.
func (s SquareConfig) Enabled() bool { return s.AccessToken != "" }

// AuthConfig holds admin authentication settings.
type AuthConfig struct {
	JWTSecret      string
	AdminAllowlist []string
}

// Enabled reports whether admin tokens can be verified.
func (a AuthConfig) Enabled() bool { return a.JWTSecret != "" }

// RedisConfig configures the optional summary cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a cache is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// MongoDBConfig holds settings for the snapshot archive.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether snapshots are archived.
func (m MongoDBConfig) Enabled() bool { return m.URI != "" }

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	SnapshotRange   string
}

// Enabled reports whether the sheet export is configured.
func (s SheetsConfig) Enabled() bool { return s.CredentialsPath != "" && s.SpreadsheetID != "" }

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Recipient     string
}

// Enabled reports whether owner notifications can be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != "" && w.Recipient != ""
}

// ReportingConfig holds scheduler and aggregation settings.
type ReportingConfig struct {
	SnapshotCron   string
	WeeklyCron     string
	JobTimeout     time.Duration
	FanOutLimit    int
	LookbackDays   int
	TopCustomerMax int
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
	Insecure     bool
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// missing .env files are fine when configuration comes from the environment
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			LogLevel:       getenvWithDefault("LOG_LEVEL", "info"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
			ReadTimeout:    getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
		},
		Business: BusinessConfig{
			Timezone: getenvWithDefault("BUSINESS_TIMEZONE", "America/New_York"),
		},
		Database: DatabaseConfig{
			URL:         os.Getenv("DATABASE_URL"),
			MaxConns:    int32(getInt("DB_MAX_CONNS", 5)),
			AutoMigrate: getBool("DB_AUTO_MIGRATE", false),
		},
		Square: SquareConfig{
			AccessToken:       os.Getenv("SQUARE_ACCESS_TOKEN"),
			Environment:       getenvWithDefault("SQUARE_ENVIRONMENT", "production"),
			APIVersion:        getenvWithDefault("SQUARE_API_VERSION", "2024-10-17"),
			LocationID:        os.Getenv("SQUARE_LOCATION_ID"),
			BaseURL:           os.Getenv("SQUARE_BASE_URL"),
			Timeout:           getDuration("SQUARE_TIMEOUT", 20*time.Second),
			MaxRetries:        getInt("SQUARE_MAX_RETRIES", 3),
			RequestsPerSecond: getFloat("SQUARE_RATE_LIMIT", 8),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("SUPABASE_JWT_SECRET"),
			AdminAllowlist: splitList(strings.ToLower(os.Getenv("ADMIN_EMAIL_ALLOWLIST"))),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			TTL:      getDuration("REDIS_SUMMARY_TTL", 24*time.Hour),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "barbershop"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_ID"),
			SnapshotRange:   getenvWithDefault("GOOGLE_SHEET_RANGE", "Sales!A:F"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipient:     os.Getenv("WHATSAPP_OWNER_NUMBER"),
		},
		Reporting: ReportingConfig{
			SnapshotCron:   getenvWithDefault("REPORT_SNAPSHOT_CRON", "15 0 * * *"),
			WeeklyCron:     getenvWithDefault("REPORT_WEEKLY_CRON", "0 20 * * 6"),
			JobTimeout:     getDuration("REPORT_JOB_TIMEOUT", 2*time.Minute),
			FanOutLimit:    getInt("REPORT_FANOUT_LIMIT", 4),
			LookbackDays:   getInt("REPORT_LOOKBACK_DAYS", 90),
			TopCustomerMax: getInt("REPORT_TOP_CUSTOMERS", 10),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  getenvWithDefault("OTEL_SERVICE_NAME", "barbershop"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Insecure:     getBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and that
// partially configured integrations are rejected.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if _, err := c.Business.Location(); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE is invalid: %w", err)
	}

	switch c.Square.Environment {
	case "production", "sandbox":
	default:
		return fmt.Errorf("SQUARE_ENVIRONMENT must be production or sandbox, got %q", c.Square.Environment)
	}

	if c.Square.MaxRetries < 0 {
		return errors.New("SQUARE_MAX_RETRIES must not be negative")
	}

	if c.Square.RequestsPerSecond <= 0 {
		return errors.New("SQUARE_RATE_LIMIT must be positive")
	}

	if c.Auth.Enabled() && len(c.Auth.AdminAllowlist) == 0 {
		return errors.New("ADMIN_EMAIL_ALLOWLIST must be provided when SUPABASE_JWT_SECRET is set")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_ID must be provided together")
	}

	if c.Reporting.SnapshotCron == "" || c.Reporting.WeeklyCron == "" {
		return errors.New("REPORT_SNAPSHOT_CRON and REPORT_WEEKLY_CRON must not be empty")
	}

	if c.Reporting.FanOutLimit < 1 {
		return errors.New("REPORT_FANOUT_LIMIT must be at least 1")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
