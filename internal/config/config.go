package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissingEnv se devuelve cuando faltan secretos obligatorios.
var ErrMissingEnv = errors.New("environment variables missing")

const (
	AuditStoreSQL   = "sql"
	AuditStoreMongo = "mongo"
	AuditStoreFile  = "file"
)

type Config struct {
	// Obligatorios
	DatabaseURL    string // SUPABASE_URL: postgres://... o sqlite://...
	ServiceRoleKey string // SUPABASE_SERVICE_ROLE_KEY

	HTTPPort    string
	AutoMigrate bool

	RedisAddr string
	CacheTTL  time.Duration

	UseKafka     bool
	KafkaBrokers []string
	KafkaGroupID string

	AuditStore    string
	AuditFilePath string
	MongoURI      string
	MongoDB       string

	ClickHouseAddr string
	ClickHouseDB   string

	PaginationMaxLimit int
	OutboxPeriod       time.Duration
	OutboxLimit        int
}

// Load lee el entorno una sola vez. Si faltan secretos devuelve la config
// parcial junto con un error que envuelve ErrMissingEnv.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("SUPABASE_URL"),
		ServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),

		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		AutoMigrate: getBool("AUTO_MIGRATE", false),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		CacheTTL:  time.Duration(getInt("CACHE_TTL_SECONDS", 300)) * time.Second,

		UseKafka:     getBool("USE_KAFKA", false),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "igrejalab"),

		AuditStore:    strings.ToLower(getEnv("AUDIT_STORE", AuditStoreSQL)),
		AuditFilePath: getEnv("AUDIT_FILE_PATH", "./audit_log.json"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDB:       getEnv("MONGO_DB", "igrejalab"),

		ClickHouseAddr: os.Getenv("CLICKHOUSE_ADDR"),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "default"),

		PaginationMaxLimit: getInt("PAGINATION_MAX_LIMIT", 0),
		OutboxPeriod:       time.Duration(getInt("OUTBOX_PERIOD_MS", 1000)) * time.Millisecond,
		OutboxLimit:        getInt("OUTBOX_LIMIT", 10),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if cfg.ServiceRoleKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	switch cfg.AuditStore {
	case AuditStoreSQL, AuditStoreFile:
	case AuditStoreMongo:
		if cfg.MongoURI == "" {
			return cfg, fmt.Errorf("AUDIT_STORE=mongo requires MONGO_URI")
		}
	default:
		return cfg, fmt.Errorf("invalid AUDIT_STORE %q", cfg.AuditStore)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
