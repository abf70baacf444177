package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centralises runtime configuration.
type Config struct {
	HTTPPort        string
	DatabaseURL     string
	DBMaxConns      int32
	AuthSecret      string
	JWTIssuer       string
	SessionExpiry   time.Duration
	CookieName      string
	CookieSecure    bool
	ProtectedRoots  []string
	BypassPrefixes  []string
	SignInPath      string
	SignOutPath     string
	ErrorPath       string
	LandingPath     string
	AllowedOrigins  []string
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	LogLevel        string
}

// Load reads configuration from environment variables providing sane defaults.
// A .env file in the working directory is read first; real environment
// variables take precedence over it.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	httpPort := getEnv("HTTP_PORT", "")
	if httpPort == "" {
		httpPort = getEnv("PORT", "8080")
	}

	cfg := Config{
		HTTPPort:        httpPort,
		DatabaseURL:     resolveDatabaseURL(),
		DBMaxConns:      int32(getIntEnv("DB_MAX_CONNS", 0)),
		AuthSecret:      firstNonEmpty(os.Getenv("AUTH_SECRET"), os.Getenv("JWT_SECRET")),
		JWTIssuer:       getEnv("JWT_ISSUER", "dashboard"),
		SessionExpiry:   getDurationEnv("SESSION_EXPIRY", 12*time.Hour),
		CookieName:      getEnv("SESSION_COOKIE_NAME", "session_token"),
		CookieSecure:    getBoolEnv("SESSION_COOKIE_SECURE", true),
		ProtectedRoots:  splitCSV(getEnv("PROTECTED_ROOTS", "/dashboard,/profile")),
		BypassPrefixes:  splitCSV(getEnv("GATE_BYPASS_PREFIXES", "/api,/auth,/health")),
		SignInPath:      getEnv("SIGN_IN_PATH", "/login"),
		SignOutPath:     getEnv("SIGN_OUT_PATH", "/auth/signout"),
		ErrorPath:       getEnv("ERROR_PATH", "/auth/error"),
		LandingPath:     getEnv("LANDING_PATH", "/dashboard"),
		AllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeoutSec:  getIntEnv("HTTP_READ_TIMEOUT", 15),
		WriteTimeoutSec: getIntEnv("HTTP_WRITE_TIMEOUT", 15),
		IdleTimeoutSec:  getIntEnv("HTTP_IDLE_TIMEOUT", 60),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database configuration missing: provide DATABASE_URL, POSTGRES_URL or PG* env vars")
	}
	if cfg.AuthSecret == "" {
		return Config{}, fmt.Errorf("AUTH_SECRET (or JWT_SECRET) is required")
	}
	if cfg.SessionExpiry <= 0 {
		return Config{}, fmt.Errorf("SESSION_EXPIRY must be positive, got %s", cfg.SessionExpiry)
	}
	for name, p := range map[string]string{
		"SIGN_IN_PATH":  cfg.SignInPath,
		"SIGN_OUT_PATH": cfg.SignOutPath,
		"ERROR_PATH":    cfg.ErrorPath,
		"LANDING_PATH":  cfg.LandingPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return Config{}, fmt.Errorf("%s must be an absolute path, got %q", name, p)
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func resolveDatabaseURL() string {
	for _, key := range []string{"DATABASE_URL", "POSTGRES_URL", "PGURL"} {
		if url := os.Getenv(key); url != "" {
			if coerced := coerceDatabaseURL(url); coerced != "" {
				return coerced
			}
		}
	}

	for _, key := range []string{"DATABASE_URL_FILE", "POSTGRES_URL_FILE"} {
		if urlFromFile := readEnvFile(key); urlFromFile != "" {
			if coerced := coerceDatabaseURL(urlFromFile); coerced != "" {
				return coerced
			}
		}
	}

	host := firstNonEmpty(os.Getenv("PGHOST"), os.Getenv("POSTGRES_HOST"))
	user := firstNonEmpty(os.Getenv("PGUSER"), os.Getenv("POSTGRES_USER"))
	if host == "" || user == "" {
		return ""
	}
	password := firstNonEmpty(os.Getenv("PGPASSWORD"), os.Getenv("POSTGRES_PASSWORD"))
	database := firstNonEmpty(os.Getenv("PGDATABASE"), os.Getenv("POSTGRES_DB"), user)
	port := firstNonEmpty(os.Getenv("PGPORT"), os.Getenv("POSTGRES_PORT"), "5432")
	sslMode := firstNonEmpty(os.Getenv("PGSSLMODE"), "require")

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + database,
		User:   neturl.User(user),
	}
	if password != "" {
		dsn.User = neturl.UserPassword(user, password)
	}
	query := dsn.Query()
	query.Set("sslmode", sslMode)
	dsn.RawQuery = query.Encode()

	return dsn.String()
}

func normalisePostgresScheme(url string) string {
	if strings.HasPrefix(url, "postgresql://") {
		return "postgres://" + strings.TrimPrefix(url, "postgresql://")
	}
	return url
}

func coerceDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return normalisePostgresScheme(raw)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func readEnvFile(key string) string {
	path := os.Getenv(key)
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
