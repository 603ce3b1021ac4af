package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"resumaker/internal/resume"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Print    PrintConfig    `mapstructure:"print"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	LogFormat      string   `mapstructure:"log_format"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowQuery       time.Duration `mapstructure:"slow_query"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr 返回 host:port。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// ClamdConfig 指向 clamd 的 TCP 地址，例如 tcp://clamav:3310。
type ClamdConfig struct {
	Address string `mapstructure:"address"`
}

// EditorConfig 控制编辑行为。
type EditorConfig struct {
	PageRemovalPolicy string        `mapstructure:"page_removal_policy"`
	AutoApplyDelay    time.Duration `mapstructure:"auto_apply_delay"`
	MaxResumes        int           `mapstructure:"max_resumes"`
}

// OrphanPolicy 返回已校验的删页策略。
func (e EditorConfig) OrphanPolicy() resume.OrphanPolicy {
	p, err := resume.ParseOrphanPolicy(e.PageRemovalPolicy)
	if err != nil {
		return resume.OrphanToFirstPage
	}
	return p
}

// PrintConfig 控制服务端打印。
type PrintConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WorkerConfig 控制打印 worker 进程。MetricsPort 为 0 时不暴露指标端口。
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration from environment variables (with optional defaults).
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitOrigins(cfg.API.AllowedOrigins)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.log_format", "json")
	v.SetDefault("api.allowed_origins", []string{})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumaker")
	v.SetDefault("database.user", "resumaker")
	v.SetDefault("database.password", "resumaker")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.slow_query", 200*time.Millisecond)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("clamd.address", "tcp://localhost:3310")
	v.SetDefault("editor.page_removal_policy", string(resume.OrphanToFirstPage))
	v.SetDefault("editor.auto_apply_delay", 500*time.Millisecond)
	v.SetDefault("editor.max_resumes", 50)
	v.SetDefault("print.enabled", true)
	v.SetDefault("print.timeout", 60*time.Second)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.metrics_port", 9091)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                   "API_PORT",
		"api.log_format":             "LOG_FORMAT",
		"api.allowed_origins":        "ALLOWED_ORIGINS",
		"database.host":              "DATABASE_HOST",
		"database.port":              "DATABASE_PORT",
		"database.name":              "POSTGRES_DB",
		"database.user":              "POSTGRES_USER",
		"database.password":          "POSTGRES_PASSWORD",
		"database.sslmode":           "DATABASE_SSLMODE",
		"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
		"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
		"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
		"database.slow_query":        "DATABASE_SLOW_QUERY",
		"redis.host":                 "REDIS_HOST",
		"redis.port":                 "REDIS_PORT",
		"minio.endpoint":             "MINIO_ENDPOINT",
		"minio.access_key_id":        "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":    "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":              "MINIO_USE_SSL",
		"minio.bucket":               "MINIO_BUCKET",
		"minio.public_endpoint":      "MINIO_PUBLIC_ENDPOINT",
		"minio.region":               "MINIO_REGION",
		"minio.bucket_lookup":        "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":   "MINIO_AUTO_CREATE_BUCKET",
		"clamd.address":              "CLAMD_ADDRESS",
		"editor.page_removal_policy": "PAGE_REMOVAL_POLICY",
		"editor.auto_apply_delay":    "PAGE_AUTO_APPLY_DELAY",
		"editor.max_resumes":         "MAX_RESUMES",
		"print.enabled":              "PRINT_ENABLED",
		"print.timeout":              "PRINT_TIMEOUT",
		"worker.concurrency":         "WORKER_CONCURRENCY",
		"worker.metrics_port":        "WORKER_METRICS_PORT",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitOrigins 兼容逗号分隔的环境变量写法。
func splitOrigins(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, origin := range strings.Split(item, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				out = append(out, origin)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.API.LogFormat != "json" && cfg.API.LogFormat != "text" {
		return fmt.Errorf("unsupported log format %q", cfg.API.LogFormat)
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Database.MaxOpenConns <= 0 || cfg.Database.MaxIdleConns < 0 {
		return errors.New("database pool sizes are invalid")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if _, err := resume.ParseOrphanPolicy(cfg.Editor.PageRemovalPolicy); err != nil {
		return err
	}
	if cfg.Editor.AutoApplyDelay <= 0 {
		return errors.New("page auto apply delay must be positive")
	}
	if cfg.Editor.MaxResumes <= 0 {
		return errors.New("max resumes must be positive")
	}
	if cfg.Print.Timeout <= 0 {
		return errors.New("print timeout must be positive")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	if cfg.Worker.MetricsPort < 0 {
		return errors.New("worker metrics port must not be negative")
	}
	return nil
}
