package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

type Config struct {
	Port string

	StoreBackend  string
	SheetID       string
	SheetName     string
	DriveFolderID string
	DatabaseURL   string

	ServiceAccountJSON string
	CredentialsFiles   []string

	AdminPassword  string
	ClerkSecretKey string
	AdminClerkIDs  []string

	FirebaseProjectID string
	FCMTopic          string

	MetricsUser string
	MetricsPass string

	LogLevel string
	LogJSON  bool

	UploadTimeout  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies are the IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string
}

// minUploadTimeout rejects values such as "60" that lack a unit and would
// otherwise be read as nanoseconds.
const minUploadTimeout = time.Second

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", "3333")
	v.SetDefault("STORE_BACKEND", BackendSheets)
	v.SetDefault("SHEET_NAME", "Sheet1")
	v.SetDefault("CREDENTIALS_FILES", "client_secrets.json,service_account.json,credentials.json")
	v.SetDefault("FCM_TOPIC", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("UPLOAD_TIMEOUT", "60s")
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 30)
	v.AutomaticEnv()
	return v
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		StoreBackend:       strings.ToLower(v.GetString("STORE_BACKEND")),
		SheetID:            v.GetString("GOOGLE_SHEET_ID"),
		SheetName:          v.GetString("SHEET_NAME"),
		DriveFolderID:      v.GetString("GOOGLE_DRIVE_FOLDER_ID"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		ServiceAccountJSON: v.GetString("GCP_SERVICE_ACCOUNT_JSON"),
		CredentialsFiles:   splitList(v.GetString("CREDENTIALS_FILES")),
		AdminPassword:      v.GetString("ADMIN_PASSWORD"),
		ClerkSecretKey:     v.GetString("CLERK_SECRET_KEY"),
		AdminClerkIDs:      splitList(v.GetString("ADMIN_CLERK_IDS")),
		FirebaseProjectID:  v.GetString("FIREBASE_PROJECT_ID"),
		FCMTopic:           v.GetString("FCM_TOPIC"),
		MetricsUser:        v.GetString("METRICS_USER"),
		MetricsPass:        v.GetString("METRICS_PASS"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogJSON:            v.GetBool("LOG_JSON"),
		UploadTimeout:      parseTimeout(v.GetString("UPLOAD_TIMEOUT")),
		RateLimitRPS:       v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		TrustedProxies:     splitList(v.GetString("TRUSTED_PROXIES")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting.
func (c *Config) Validate() error {
	var errs []error
	if c.DriveFolderID == "" {
		errs = append(errs, errors.New("GOOGLE_DRIVE_FOLDER_ID is not set"))
	}
	switch c.StoreBackend {
	case BackendSheets:
		if c.SheetID == "" {
			errs = append(errs, errors.New("GOOGLE_SHEET_ID is not set"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not one of %s, %s", c.StoreBackend, BackendSheets, BackendPostgres))
	}
	if c.AdminPassword == "" && c.ClerkSecretKey == "" {
		errs = append(errs, errors.New("one of ADMIN_PASSWORD or CLERK_SECRET_KEY must be set"))
	}
	if c.UploadTimeout < minUploadTimeout {
		errs = append(errs, fmt.Errorf("UPLOAD_TIMEOUT must be a duration of at least %s, such as 60s", minUploadTimeout))
	}
	return errors.Join(errs...)
}

// parseTimeout reads a Go duration ("90s", "2m"). A bare integer is taken as
// seconds. Anything else yields 0, which Validate rejects.
func parseTimeout(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
