package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"sfsync-api"`
	Port                          int      `env:"PORT" env-default:"3000"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,PATCH,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Metadata API base URL
	MetadataBaseURL string `env:"METADATA_BASE_URL" env-default:"http://localhost:4000/api"`
	// Per-call timeout for metadata API requests; a timeout counts as a fetch failure
	MetadataFetchTimeout time.Duration `env:"METADATA_FETCH_TIMEOUT" env-default:"15s"`
	// Minimum duration of a load, so the processing indicator does not flash
	LoadMinDuration time.Duration `env:"LOAD_MIN_DURATION" env-default:"1500ms"`
	// Last-good field mapping cache
	MappingCacheMaxSize int           `env:"MAPPING_CACHE_MAX_SIZE" env-default:"1000"`
	MappingCacheTTL     time.Duration `env:"MAPPING_CACHE_TTL" env-default:"1h"`

	// Maximum number of mapped rows
	MaxMappings int `env:"MAX_MAPPINGS" env-default:"50"`
	// Sessions untouched for this long are discarded
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" env-default:"2h"`
	// How often idle sessions are swept
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" env-default:"5m"`

	// Drafts need a database
	DraftsEnabled bool `env:"DRAFTS_ENABLED" env-default:"false"`
	// Database driver
	DatabaseDriver string `env:"DB_DRIVER" env-default:"postgres"`
	// Database host
	DatabaseHost string `env:"DB_HOST" env-default:""`
	// Database port
	DatabasePort string `env:"DB_PORT" env-default:"5432"`
	// Database user
	DatabaseUserName string `env:"DB_USER_NAME" env-default:""`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" env-default:""`
	// Database name
	DatabaseName string `env:"DB_NAME" env-default:"sfsync"`
	// Database SSL mode
	DatabaseSSLMode string `env:"DB_SSL_MODE" env-default:"disable"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	// Migration Folder Path
	DatabaseMigrationFolderPath string `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	// Database Migration Version
	DatabaseMigrationVersion int `env:"DB_MIGRATION_VERSION" env-default:"0"`
	// Database Migration Force
	DatabaseMigrationForce int `env:"DB_MIGRATION_FORCE" env-default:"0"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Redis caches object metadata when enabled
	RedisEnabled  bool   `env:"REDIS_ENABLED" env-default:"false"`
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
	// Object metadata cache TTL
	MetadataCacheTTL time.Duration `env:"METADATA_CACHE_TTL" env-default:"10m"`

	// Kafka producer for mapping-completed events
	KafkaEnabled      bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaMappingTopic string   `env:"KAFKA_MAPPING_TOPIC" env-default:"mapping.step.completed"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Tracing; spans are dropped when no endpoint is set
	OTLPEndpoint string        `env:"OTLP_ENDPOINT" env-default:""`
	OTLPProtocol string        `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure bool          `env:"OTLP_INSECURE" env-default:"true"`
	OTLPTimeout  time.Duration `env:"OTLP_TIMEOUT" env-default:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
