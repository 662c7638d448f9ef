package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Insecure development defaults. Every one of these must be overridden in a
// real deployment; Load refuses to start in production while they are in use.
const (
	DefaultUsername    = "2117"
	DefaultPassword    = "2117"
	DefaultJWTSecret   = "your-secret-key-change-in-production"
	DefaultFrontendURL = "http://localhost:3000"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	FrontendURL    string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type AuthConfig struct {
	Username           string
	Password           string
	PasswordHash       string // bcrypt hash; takes precedence over Password
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	CleanupInterval    time.Duration
	CookieSecure       bool
	CookieSameSite     string
}

type RateLimitConfig struct {
	LoginMaxAttempts     int
	LoginWindow          time.Duration
	APIRequestsPerMinute int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			FrontendURL:    getEnv("FRONTEND_URL", DefaultFrontendURL),
			TrustedProxies: parseList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			Username:           getEnv("AUTH_USERNAME", DefaultUsername),
			Password:           getEnv("AUTH_PASSWORD", DefaultPassword),
			PasswordHash:       getEnv("AUTH_PASSWORD_HASH", ""),
			JWTSecret:          getEnv("JWT_SECRET", DefaultJWTSecret),
			AccessTokenExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 30*time.Minute),
			RefreshTokenExpiry: getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
			CleanupInterval:    getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
			CookieSecure:       getEnvAsBool("COOKIE_SECURE", true),
			CookieSameSite:     getEnv("COOKIE_SAMESITE", "strict"),
		},
		RateLimit: RateLimitConfig{
			LoginMaxAttempts:     getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
			LoginWindow:          getEnvAsDuration("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
			APIRequestsPerMinute: getEnvAsInt("API_REQUESTS_PER_MINUTE", 30),
		},
	}

	if env == "production" {
		if err := validateProduction(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// validateProduction rejects the insecure defaults and weak secrets that are
// tolerated in development.
func validateProduction(cfg *Config) error {
	if cfg.Auth.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if err := validateJWTSecret(cfg.Auth.JWTSecret); err != nil {
		return err
	}
	if cfg.Auth.Username == DefaultUsername && cfg.Auth.PasswordHash == "" && cfg.Auth.Password == DefaultPassword {
		return fmt.Errorf("AUTH_USERNAME/AUTH_PASSWORD must be overridden in production")
	}
	if cfg.Server.FrontendURL == DefaultFrontendURL {
		return fmt.Errorf("FRONTEND_URL must be set in production")
	}
	return nil
}

// validateJWTSecret enforces minimum security standards for the signing secret
func validateJWTSecret(secret string) error {
	const minLength = 32 // 256 bits

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in production (got %d)",
			minLength, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
