package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID   string
	Environment string

	HTTPPort int

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int32

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	BcryptCost int

	ResetPINTTL  time.Duration
	AuthStateTTL time.Duration

	DeepLinkBaseURL     string
	AllowedRedirectURIs []string
	PublicBaseURL       string

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	LinkedInClientID     string
	LinkedInClientSecret string
	OAuthHTTPTimeout     time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID            string `yaml:"id"`
		Environment   string `yaml:"environment"`
		HTTPPort      int    `yaml:"http_port"`
		PublicBaseURL string `yaml:"public_base_url"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Client struct {
		DeepLinkBaseURL     string   `yaml:"deep_link_base_url"`
		AllowedRedirectURIs []string `yaml:"allowed_redirect_uris"`
	} `yaml:"client"`
	OAuth struct {
		Google struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
		} `yaml:"google"`
		Facebook struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
		} `yaml:"facebook"`
		LinkedIn struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
		} `yaml:"linkedin"`
	} `yaml:"oauth"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:        "juniorscv-auth-service",
		Environment:      "development",
		HTTPPort:         8080,
		MaxDBConns:       20,
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		BcryptCost:       12,
		ResetPINTTL:      time.Hour,
		AuthStateTTL:     10 * time.Minute,
		DeepLinkBaseURL:  "juniorscv://",
		PublicBaseURL:    "http://localhost:8080",
		OAuthHTTPTimeout: 8 * time.Second,
		SMTPHost:         "localhost",
		SMTPPort:         "25",
		SMTPFrom:         "no-reply@juniorscv.app",
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.Environment != "" {
			cfg.Environment = f.Service.Environment
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.PublicBaseURL != "" {
			cfg.PublicBaseURL = f.Service.PublicBaseURL
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Client.DeepLinkBaseURL != "" {
			cfg.DeepLinkBaseURL = f.Client.DeepLinkBaseURL
		}
		if len(f.Client.AllowedRedirectURIs) > 0 {
			cfg.AllowedRedirectURIs = f.Client.AllowedRedirectURIs
		}
		if f.OAuth.Google.ClientID != "" {
			cfg.GoogleClientID = f.OAuth.Google.ClientID
		}
		if f.OAuth.Google.ClientSecret != "" {
			cfg.GoogleClientSecret = f.OAuth.Google.ClientSecret
		}
		if f.OAuth.Facebook.ClientID != "" {
			cfg.FacebookClientID = f.OAuth.Facebook.ClientID
		}
		if f.OAuth.Facebook.ClientSecret != "" {
			cfg.FacebookClientSecret = f.OAuth.Facebook.ClientSecret
		}
		if f.OAuth.LinkedIn.ClientID != "" {
			cfg.LinkedInClientID = f.OAuth.LinkedIn.ClientID
		}
		if f.OAuth.LinkedIn.ClientSecret != "" {
			cfg.LinkedInClientSecret = f.OAuth.LinkedIn.ClientSecret
		}
		if f.SMTP.Host != "" {
			cfg.SMTPHost = f.SMTP.Host
		}
		if f.SMTP.Port != "" {
			cfg.SMTPPort = f.SMTP.Port
		}
		if f.SMTP.Username != "" {
			cfg.SMTPUsername = f.SMTP.Username
		}
		if f.SMTP.Password != "" {
			cfg.SMTPPassword = f.SMTP.Password
		}
		if f.SMTP.From != "" {
			cfg.SMTPFrom = f.SMTP.From
		}
	}

	cfg.Environment = envOrDefault("APP_ENV", cfg.Environment)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.PublicBaseURL = envOrDefault("PUBLIC_BASE_URL", cfg.PublicBaseURL)

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.AccessTokenSecret = envOrDefault("JWT_SECRET", cfg.AccessTokenSecret)
	cfg.RefreshTokenSecret = envOrDefault("JWT_REFRESH_SECRET", cfg.RefreshTokenSecret)
	cfg.AccessTokenTTL = time.Duration(envInt("TOKEN_EXPIRY_MINUTES", int(cfg.AccessTokenTTL.Minutes()))) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(envInt("REFRESH_EXPIRY_DAYS", int(cfg.RefreshTokenTTL.Hours()/24))) * 24 * time.Hour

	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.ResetPINTTL = time.Duration(envInt("RESET_PIN_TTL_MINUTES", int(cfg.ResetPINTTL.Minutes()))) * time.Minute
	cfg.AuthStateTTL = time.Duration(envInt("AUTH_STATE_TTL_MINUTES", int(cfg.AuthStateTTL.Minutes()))) * time.Minute
	cfg.OAuthHTTPTimeout = time.Duration(envInt("OAUTH_HTTP_TIMEOUT_SECONDS", int(cfg.OAuthHTTPTimeout.Seconds()))) * time.Second

	cfg.DeepLinkBaseURL = envOrDefault("DEEP_LINK_BASE_URL", cfg.DeepLinkBaseURL)
	cfg.AllowedRedirectURIs = envCSV("ALLOWED_REDIRECT_URIS", cfg.AllowedRedirectURIs)

	cfg.GoogleClientID = envOrDefault("GOOGLE_CLIENT_ID", cfg.GoogleClientID)
	cfg.GoogleClientSecret = envOrDefault("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret)
	cfg.FacebookClientID = envOrDefault("FACEBOOK_APP_ID", cfg.FacebookClientID)
	cfg.FacebookClientSecret = envOrDefault("FACEBOOK_APP_SECRET", cfg.FacebookClientSecret)
	cfg.LinkedInClientID = envOrDefault("LINKEDIN_CLIENT_ID", cfg.LinkedInClientID)
	cfg.LinkedInClientSecret = envOrDefault("LINKEDIN_CLIENT_SECRET", cfg.LinkedInClientSecret)

	cfg.SMTPHost = envOrDefault("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = envOrDefault("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = envOrDefault("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = envOrDefault("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPFrom = envOrDefault("SMTP_FROM", cfg.SMTPFrom)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return Config{}, fmt.Errorf("missing JWT_SECRET or JWT_REFRESH_SECRET")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return Config{}, fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if len(cfg.AllowedRedirectURIs) == 0 {
		cfg.AllowedRedirectURIs = []string{cfg.DeepLinkBaseURL}
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
