package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-only-insecure-secret"

type Config struct {
	Env         string
	Port        int
	ServiceName string

	StoreDriver string // postgres | memory
	DBURL       string
	DBMaxConns  int32

	JWTSecret   string
	JWTTTLHours int
	BcryptCost  int

	// AdminCode lets signup create an admin; empty disables that path.
	AdminCode string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	OTelEnabled  bool
	OTelEndpoint string
}

// Load reads configuration from the environment. In dev a local .env file
// is loaded first when present.
func Load() Config {
	env := getEnv("APP_ENV", "dev")

	if env == "dev" {
		_ = godotenv.Load()
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" && env == "dev" {
		jwtSecret = devJWTSecret
	}

	return Config{
		Env:         env,
		Port:        getEnvInt("PORT", 8080),
		ServiceName: getEnv("SERVICE_NAME", "userhub"),

		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		DBURL:       buildDBURL(),
		DBMaxConns:  int32(getEnvInt("DB_MAX_CONNS", 10)),

		JWTSecret:   jwtSecret,
		JWTTTLHours: getEnvInt("JWT_TTL_HOURS", 24),
		BcryptCost:  getEnvInt("BCRYPT_COST", 10),

		AdminCode: os.Getenv("ADMIN_CODE"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	if c.JWTTTLHours <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.JWTTTLHours))
	}

	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}

	return errors.Join(errs...)
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// UsingDevSecret reports whether the built-in dev signing key is in use.
func (c Config) UsingDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "userhub")
	pass := getEnv("DB_PASSWORD", "userhub")
	name := getEnv("DB_NAME", "userhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
