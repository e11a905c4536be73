package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/Ramsey-B/fern/pkg/aliases"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

type Config struct {
	AppName                       string        `yaml:"app_name" env:"APP_NAME" env-default:"fern-api"`
	Port                          int           `yaml:"port" env:"PORT" env-default:"3004" validate:"min=1,max=65535"`
	LogLevel                      string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	PrettyLogs                    bool          `yaml:"pretty_logs" env:"PRETTY_LOGS" env-default:"false"`
	TracingEnabled                bool          `yaml:"tracing_enabled" env:"TRACING_ENABLED" env-default:"false"`
	TracingEndpoint               string        `yaml:"tracing_exporter_endpoint" env:"TRACING_EXPORTER_ENDPOINT" env-default:""`
	TracingProtocol               string        `yaml:"tracing_exporter_protocol" env:"TRACING_EXPORTER_PROTOCOL" env-default:"grpc" validate:"oneof=grpc http"`
	TracingInsecure               bool          `yaml:"tracing_exporter_insecure" env:"TRACING_EXPORTER_INSECURE" env-default:"true"`
	TracingTimeout                time.Duration `yaml:"tracing_exporter_timeout" env:"TRACING_EXPORTER_TIMEOUT" env-default:"10s"`
	HttpServerWriteTimeoutSeconds int           `yaml:"http_server_write_timeout_seconds" env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int           `yaml:"http_server_read_timeout_seconds" env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int           `yaml:"http_server_idle_timeout_seconds" env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	AllowOrigins                  []string      `yaml:"allow_origins" env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`

	// Golden-record store
	DatabaseDriver          string        `yaml:"db_driver" env:"DB_DRIVER" env-default:"postgres" validate:"oneof=postgres sqlite"`
	DatabaseHost            string        `yaml:"db_host" env:"DB_HOST" env-default:""`
	DatabasePort            string        `yaml:"db_port" env:"DB_PORT" env-default:"5432"`
	DatabaseUserName        string        `yaml:"db_user_name" env:"DB_USER_NAME" env-default:""`
	DatabasePassword        string        `yaml:"db_password" env:"DB_PASSWORD" env-default:""`
	DatabaseName            string        `yaml:"db_name" env:"DB_NAME" env-default:"fern"`
	DatabaseSSLMode         string        `yaml:"db_ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	DatabasePath            string        `yaml:"db_path" env:"DB_PATH" env-default:"golden_records.db"`
	DatabaseMaxOpenConns    int           `yaml:"db_max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns    int           `yaml:"db_max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`

	// Redis comparison cache
	RedisEnabled  bool          `yaml:"redis_enabled" env:"REDIS_ENABLED" env-default:"false"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	RedisTTL      time.Duration `yaml:"redis_ttl" env:"REDIS_TTL" env-default:"15m"`

	// Kafka producer (scored-pair events)
	KafkaEnabled      bool     `yaml:"kafka_enabled" env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers      []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic  string   `yaml:"kafka_output_topic" env:"KAFKA_OUTPUT_TOPIC" env-default:"product-match-events"`
	KafkaBatchSize    int      `yaml:"kafka_batch_size" env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `yaml:"kafka_batch_timeout_ms" env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `yaml:"kafka_required_acks" env:"KAFKA_REQUIRED_ACKS" env-default:"1"`

	// Manufacturer aliases
	AliasCSVPath        string `yaml:"mfr_aliases_csv_path" env:"MFR_ALIASES_CSV_PATH" env-default:""`
	AliasDataPath       string `yaml:"per_alias_data" env:"PER_ALIAS_DATA" env-default:""`
	AliasOverridesPath  string `yaml:"alias_overrides_path" env:"ALIAS_OVERRIDES_PATH" env-default:""`
	IncludeSubsidiaries bool   `yaml:"include_subsidiaries" env:"INCLUDE_SUBSIDIARIES" env-default:"true"`
	IncludeBrands       bool   `yaml:"include_brands" env:"INCLUDE_BRANDS" env-default:"true"`

	// Matching
	ManufacturerFuzzyThreshold float64 `yaml:"mfr_fuzzy_threshold" env:"MFR_FUZZY_THRESHOLD" env-default:"0.90" validate:"gte=0,lte=1"`
	MaxEditDistance            int     `yaml:"max_edit_distance" env:"MAX_EDIT_DISTANCE" env-default:"1" validate:"gte=0"`
	MaxCandidates              int     `yaml:"max_candidates" env:"MAX_CANDIDATES" env-default:"200" validate:"gte=1"`
	RareTokenMinDF             int     `yaml:"rare_token_min_df" env:"RARE_TOKEN_MIN_DF" env-default:"1" validate:"gte=1"`
	RareTokenMaxDFRatio        float64 `yaml:"rare_token_max_df_ratio" env:"RARE_TOKEN_MAX_DF_RATIO" env-default:"0.15" validate:"gt=0,lte=1"`
	FilterShortVariants        bool    `yaml:"filter_short_variants" env:"FILTER_SHORT_VARIANTS" env-default:"true"`
	MatchWorkerCount           int     `yaml:"match_worker_count" env:"MATCH_WORKER_COUNT" env-default:"4" validate:"gte=1"`
	PrefixCacheSize            int     `yaml:"prefix_cache_size" env:"PREFIX_CACHE_SIZE" env-default:"512" validate:"gte=1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from an optional .env file, then from the YAML
// file at path when one is given, and finally from the environment.
func Load(path string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Matching returns the engine configuration.
func (c Config) Matching() matching.Config {
	return matching.Config{
		ManufacturerFuzzyThreshold: c.ManufacturerFuzzyThreshold,
		MaxEditDistance:            c.MaxEditDistance,
		MaxCandidates:              c.MaxCandidates,
		RareTokenMinDF:             c.RareTokenMinDF,
		RareTokenMaxDFRatio:        c.RareTokenMaxDFRatio,
		IncludeSubsidiaries:        c.IncludeSubsidiaries,
		IncludeBrands:              c.IncludeBrands,
		FilterShortVariants:        c.FilterShortVariants,
		Workers:                    c.MatchWorkerCount,
		PrefixCacheSize:            c.PrefixCacheSize,
	}
}

// AliasPath returns the alias table location, or "" when none was found.
func (c Config) AliasPath() string {
	return aliases.ResolvePath(c.AliasCSVPath, c.AliasDataPath)
}

// TracingExporter returns the span exporter configuration.
func (c Config) TracingExporter() tracing.ExporterConfig {
	return tracing.ExporterConfig{
		Endpoint: c.TracingEndpoint,
		Protocol: c.TracingProtocol,
		Insecure: c.TracingInsecure,
		Timeout:  c.TracingTimeout,
	}
}

// DatabaseDSN returns the data source name for the configured driver.
func (c Config) DatabaseDSN() string {
	if c.DatabaseDriver == "sqlite" {
		return c.DatabasePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DatabaseUserName, c.DatabasePassword),
		Host:     c.DatabaseHost + ":" + c.DatabasePort,
		Path:     "/" + c.DatabaseName,
		RawQuery: url.Values{"sslmode": []string{c.DatabaseSSLMode}}.Encode(),
	}
	return u.String()
}
