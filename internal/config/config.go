package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort        = "4000"
	defaultDBDriver    = "sqlite"
	defaultDBDSN       = "./becacnc.db"
	defaultDBTimeout   = 5 * time.Second
	defaultTokenTTL    = 12 * time.Hour
	defaultContactRate = time.Minute
	defaultLoginBurst  = 5
	defaultCORSOrigin  = "http://localhost:8080"
)

type Config struct {
	Port          string
	DBDriver      string
	DBDSN         string
	DBTimeout     time.Duration
	JWTSecret     string
	TokenTTL      time.Duration
	CSRFKey       []byte
	SessionKey    []byte
	CookieDomain  string
	CookieSecure  bool
	CORSOrigin    string
	StatsLocation *time.Location
	LogLevel      slog.Level
	ContactRate   time.Duration
	LoginBurst    int
}

// LoadConfig reads the environment, after loading an optional .env file.
// Invalid values fall back to their defaults with a warning.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := &Config{
		Port:         getEnv("PORT", defaultPort),
		DBDriver:     getEnv("DB_DRIVER", defaultDBDriver),
		DBDSN:        getEnv("DB_DSN", defaultDBDSN),
		DBTimeout:    getDuration("DB_TIMEOUT", defaultDBTimeout),
		TokenTTL:     getDuration("TOKEN_TTL", defaultTokenTTL),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
		CORSOrigin:   getEnv("CORS_ORIGIN", defaultCORSOrigin),
		ContactRate:  getDuration("CONTACT_RATE", defaultContactRate),
		LoginBurst:   getInt("LOGIN_ATTEMPTS", defaultLoginBurst),
		LogLevel:     parseLevel(getEnv("LOG_LEVEL", "debug")),
	}

	switch cfg.DBDriver {
	case "sqlite", "pgx":
	default:
		slog.Error("Invalid DB_DRIVER environment variable. Falling back to default.", "DB_DRIVER", cfg.DBDriver)
		cfg.DBDriver = defaultDBDriver
	}

	// JWT secret signs every API token
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET environment variable not set. Generating a random secret for development. Tokens will be invalid on restart. PLEASE SET JWT_SECRET IN PRODUCTION!")
		cfg.JWTSecret = base64.StdEncoding.EncodeToString(generateRandomBytes(32))
	}

	cfg.CSRFKey = getKey("CSRF_KEY")
	cfg.SessionKey = getKey("SESSION_KEY")

	tz := getEnv("STATS_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("Invalid STATS_TIMEZONE. Falling back to local time.", "STATS_TIMEZONE", tz, "error", err)
		loc = time.Local
	}
	cfg.StatsLocation = loc

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = defaultPort
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration. Falling back to default.", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		slog.Warn("Invalid number. Falling back to default.", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return n
}

// getKey decodes a base64 key of at least 32 bytes, or generates a random
// one for development.
func getKey(name string) []byte {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(decoded) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes). Generating a random key for development. PLEASE SET A SECURE " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	return decoded
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		slog.Warn("Invalid LOG_LEVEL. Falling back to debug.", "LOG_LEVEL", s)
		return slog.LevelDebug
	}
	return level
}

// generateRandomBytes uses crypto/rand. If that fails it returns a
// time-derived key, which is only good enough to keep a dev server running.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		fallback := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		padded := make([]byte, n)
		copy(padded, fallback)
		return padded
	}
	return b
}
