package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every knob the process needs. It is built once in main and
// passed down explicitly; nothing in this repo reads the environment after
// startup.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL        string
	CacheTTLSeconds int

	RawDataPath   string
	StagingPath   string
	ProcessedPath string

	BatchSize        int
	BatchMaxSize     int
	HashAlgorithm    string
	StaleImportHours int

	GCSBucket string
	GCSPrefix string

	APIKeys           []string
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	CORSOrigins        []string
	RateLimitPerMinute int
}

func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		RedisURL:        os.Getenv("REDIS_URL"),
		CacheTTLSeconds: getenvInt("CACHE_TTL_SECONDS", 86400),

		RawDataPath:   getenv("RAW_DATA_PATH", "data/raw"),
		StagingPath:   getenv("STAGING_PATH", "data/staging"),
		ProcessedPath: getenv("PROCESSED_PATH", "data/processed"),

		BatchSize:        getenvInt("BATCH_SIZE", 50000),
		BatchMaxSize:     getenvInt("BATCH_MAX_SIZE", 1000),
		HashAlgorithm:    getenv("ETL_HASH_ALGORITHM", "sha256"),
		StaleImportHours: getenvInt("ETL_STALE_IMPORT_HOURS", 24),

		GCSBucket: os.Getenv("GCS_BUCKET"),
		GCSPrefix: os.Getenv("GCS_PREFIX"),

		APIKeys:           splitCSV(os.Getenv("API_KEYS")),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		CORSOrigins:        splitCSVDefault(os.Getenv("CORS_ORIGINS"), []string{"*"}),
		RateLimitPerMinute: getenvInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

// DSN builds the Postgres connection string for gorm.
func (c Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitCSVDefault(raw string, fallback []string) []string {
	if out := splitCSV(raw); out != nil {
		return out
	}
	return fallback
}
