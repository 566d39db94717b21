package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr         string
	JWTSecret        string
	JWTTTL           time.Duration
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPass           string
	DBName           string
	RedisEnabled     bool
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	UploadMaxBytes   int64
	UploadTempDir    string
	LogLevel         string
	LogFormat        string
	LoginRate        float64
	LoginBurst       int
	CORSAllowOrigins []string
	AdminEmail       string
	AdminPassword    string
	Storage          StorageConfig
	Reaper           ReaperConfig
}

// ReaperConfig tunes the orphan reconciliation worker.
type ReaperConfig struct {
	Concurrency int
	Rate        float64
	Burst       int
	RetryMax    int
	RetryDelays []time.Duration
	PollTimeout time.Duration
}

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDurationList(key string, defaultValue []time.Duration) []time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := time.ParseDuration(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// DefaultUploadMaxBytes caps a single upload at 5 MiB.
const DefaultUploadMaxBytes int64 = 5 << 20

// Load reads a .env file when one exists and builds the configuration from the environment.
func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8000"),
		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		JWTTTL:           getEnvDuration("JWT_TTL", time.Hour),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "root"),
		DBPass:           getEnv("DB_PASS", "root"),
		DBName:           getEnv("DB_NAME", "asset_vault"),
		RedisEnabled:     getEnvBool("REDIS_ENABLED", true),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		UploadMaxBytes:   getEnvInt64("UPLOAD_MAX_BYTES", DefaultUploadMaxBytes),
		UploadTempDir:    getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		LoginRate:        getEnvFloat("LOGIN_RATE", 1),
		LoginBurst:       getEnvInt("LOGIN_BURST", 5),
		CORSAllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", nil),
		AdminEmail:       getEnv("ADMIN_EMAIL", ""),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		Storage:          loadStorageConfig(),
		Reaper: ReaperConfig{
			Concurrency: getEnvInt("REAPER_CONCURRENCY", 2),
			Rate:        getEnvFloat("REAPER_RATE", 10),
			Burst:       getEnvInt("REAPER_BURST", 5),
			RetryMax:    getEnvInt("REAPER_RETRY_MAX", 5),
			RetryDelays: getEnvDurationList(
				"REAPER_RETRY_DELAYS",
				[]time.Duration{10 * time.Second, 30 * time.Second, 2 * time.Minute, 10 * time.Minute, 30 * time.Minute},
			),
			PollTimeout: getEnvDuration("REAPER_POLL_TIMEOUT", 5*time.Second),
		},
	}
}
