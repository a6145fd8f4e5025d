package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Credential modes select where the upstream API token comes from.
const (
	CredentialModeRequest = "request" // token supplied in the request body
	CredentialModeEnv     = "env"     // token held by the server
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server     ServerConfig
	Monday     MondayConfig
	Credential CredentialConfig
	Export     ExportConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CORSOrigins    []string
	RateLimitRPS   float64 // per client IP; 0 disables
	RateLimitBurst int
}

// MondayConfig holds board API client settings.
type MondayConfig struct {
	APIURL            string
	APIVersion        string
	Timeout           time.Duration
	PageSize          int
	RequestsPerSecond float64 // outbound throttle; 0 disables
}

// CredentialConfig selects the upstream credential strategy.
type CredentialConfig struct {
	Mode          string
	APIToken      string //nolint:gosec // G117: server-held API token
	SigningSecret string //nolint:gosec // G117: app signing secret for session tokens
}

// ExportConfig holds workbook and filename settings.
type ExportConfig struct {
	FilenamePrefix string
	SheetName      string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	readTimeout, err := getEnvDuration("BOARDEXPORT_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("BOARDEXPORT_SERVER_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateRPS, err := getEnvFloat("BOARDEXPORT_RATE_LIMIT_RPS", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("BOARDEXPORT_RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	mondayTimeout, err := getEnvDuration("BOARDEXPORT_MONDAY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	pageSize, err := getEnvInt("BOARDEXPORT_MONDAY_PAGE_SIZE", 500)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	mondayRPS, err := getEnvFloat("BOARDEXPORT_MONDAY_RPS", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:           getEnv("BOARDEXPORT_SERVER_ADDR", ":8080"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			CORSOrigins:    getEnvList("BOARDEXPORT_CORS_ORIGINS", []string{"*"}),
			RateLimitRPS:   rateRPS,
			RateLimitBurst: rateBurst,
		},
		Monday: MondayConfig{
			APIURL:            getEnv("BOARDEXPORT_MONDAY_API_URL", "https://api.monday.com/v2"),
			APIVersion:        getEnv("BOARDEXPORT_MONDAY_API_VERSION", "2024-10"),
			Timeout:           mondayTimeout,
			PageSize:          pageSize,
			RequestsPerSecond: mondayRPS,
		},
		Credential: CredentialConfig{
			Mode:          strings.ToLower(getEnv("BOARDEXPORT_CREDENTIAL_MODE", CredentialModeRequest)),
			APIToken:      getEnv("BOARDEXPORT_MONDAY_API_TOKEN", ""),
			SigningSecret: getEnv("BOARDEXPORT_MONDAY_SIGNING_SECRET", ""),
		},
		Export: ExportConfig{
			FilenamePrefix: getEnv("BOARDEXPORT_EXPORT_FILENAME_PREFIX", "new_entrants"),
			SheetName:      getEnv("BOARDEXPORT_EXPORT_SHEET_NAME", "New Entrants"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	switch c.Credential.Mode {
	case CredentialModeRequest:
	case CredentialModeEnv:
		// A missing secret is reported per request as a server error, so the
		// process can still start and serve health checks.
		if c.Credential.APIToken == "" {
			log.Warn().Msg("BOARDEXPORT_MONDAY_API_TOKEN is empty; exports will fail until it is set")
		}
	default:
		return fmt.Errorf("BOARDEXPORT_CREDENTIAL_MODE must be %q or %q, got %q",
			CredentialModeRequest, CredentialModeEnv, c.Credential.Mode)
	}

	if c.Monday.APIURL == "" {
		return errors.New("BOARDEXPORT_MONDAY_API_URL is required")
	}
	if c.Monday.Timeout <= 0 {
		return fmt.Errorf("BOARDEXPORT_MONDAY_TIMEOUT must be positive, got %s", c.Monday.Timeout)
	}
	if c.Monday.PageSize < 1 || c.Monday.PageSize > 500 {
		return fmt.Errorf("BOARDEXPORT_MONDAY_PAGE_SIZE must be 1-500, got %d", c.Monday.PageSize)
	}
	if c.Monday.RequestsPerSecond < 0 {
		return fmt.Errorf("BOARDEXPORT_MONDAY_RPS must be >= 0, got %g", c.Monday.RequestsPerSecond)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("BOARDEXPORT_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("BOARDEXPORT_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("BOARDEXPORT_RATE_LIMIT_RPS must be >= 0, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("BOARDEXPORT_RATE_LIMIT_BURST must be >= 1, got %d", c.Server.RateLimitBurst)
	}

	// Excel rejects sheet names over 31 characters.
	if c.Export.SheetName == "" || len([]rune(c.Export.SheetName)) > 31 {
		return fmt.Errorf("BOARDEXPORT_EXPORT_SHEET_NAME must be 1-31 characters, got %q", c.Export.SheetName)
	}
	if strings.ContainsAny(c.Export.SheetName, `:\/?*[]`) {
		return fmt.Errorf("BOARDEXPORT_EXPORT_SHEET_NAME must not contain any of :\\/?*[], got %q", c.Export.SheetName)
	}
	if c.Export.FilenamePrefix == "" {
		return errors.New("BOARDEXPORT_EXPORT_FILENAME_PREFIX is required")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
