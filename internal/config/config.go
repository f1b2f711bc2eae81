package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "LifeLineConnect"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultConnectTimeout = 5 * time.Second
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultOTPPerMinute   = 5
	devSessionSecret      = "dev-only-session-secret"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName      string
	AppEnv       string
	Port         string
	LogLevel     string
	StoreBackend string
	DatabaseURL  string
	RedisURL     string

	// DatabaseMaxConns of zero keeps the pool size from DATABASE_URL or the driver default.
	DatabaseMaxConns int32
	// ConnectTimeout bounds the startup dial and ping of Postgres and Redis.
	ConnectTimeout time.Duration

	FirebaseCredentialsPath string
	FirebaseProjectID       string

	EmailJS EmailJSConfig

	SessionSecret string
	// SessionTTL of zero keeps sessions until logout.
	SessionTTL time.Duration
	// OTPTTL of zero keeps challenges verifiable until used.
	OTPTTL               time.Duration
	OTPRequestsPerMinute int
	RequestOwnerEnforced bool

	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// EmailJSConfig holds the transactional email API settings.
type EmailJSConfig struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
}

// Enabled reports whether enough settings are present to send email.
func (e EmailJSConfig) Enabled() bool {
	return e.ServiceID != "" && e.TemplateID != "" && e.PublicKey != ""
}

// Load reads configuration values from the environment, after merging a
// .env file when one exists, and populates a Config instance.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:                 getEnv("APP_NAME", defaultAppName),
		AppEnv:                  getEnv("APP_ENV", defaultAppEnv),
		Port:                    getEnv("PORT", defaultPort),
		LogLevel:                strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		RedisURL:                os.Getenv("REDIS_URL"),
		FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		EmailJS: EmailJSConfig{
			BaseURL:    os.Getenv("EMAILJS_BASE_URL"),
			ServiceID:  os.Getenv("EMAILJS_SERVICE_ID"),
			TemplateID: os.Getenv("EMAILJS_TEMPLATE_ID"),
			PublicKey:  os.Getenv("EMAILJS_PUBLIC_KEY"),
			PrivateKey: os.Getenv("EMAILJS_PRIVATE_KEY"),
		},
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		OTPRequestsPerMinute: defaultOTPPerMinute,
	}
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", cfg.defaultStoreBackend()))

	var err error
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.ConnectTimeout, err = durationEnv("CONNECT_TIMEOUT", defaultConnectTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL, err = durationEnv("OTP_TTL", 0); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("OTP_REQUESTS_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid OTP_REQUESTS_PER_MINUTE: %q", v)
		}
		cfg.OTPRequestsPerMinute = n
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid DATABASE_MAX_CONNS: %q", v)
		}
		cfg.DatabaseMaxConns = int32(n)
	}
	if v := os.Getenv("REQUEST_OWNER_ENFORCED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REQUEST_OWNER_ENFORCED: %w", err)
		}
		cfg.RequestOwnerEnforced = b
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = devSessionSecret
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case BackendFirestore:
		// Empty credentials fall back to application default credentials.
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when STORE_BACKEND=postgres")
		}
	case BackendMemory:
		if !c.IsDev() {
			return fmt.Errorf("STORE_BACKEND=memory is only allowed in development")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.IsDev() {
		return nil
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", c.AppEnv)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must be set when APP_ENV=%s", c.AppEnv)
	}
	return nil
}

// defaultStoreBackend keeps development runnable without any cloud setup.
func (c Config) defaultStoreBackend() string {
	if c.IsDev() {
		return BackendMemory
	}
	return BackendFirestore
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationEnv reads key as a Go duration, or KEY_SECONDS as whole seconds.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	secondsKey := key + "_SECONDS"
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}
