package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/pkg/logger"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Share     ShareConfig
	Session   SessionConfig
	Game      GameConfig
	Email     EmailConfig
	Log       LogConfig
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	Mode           string   // debug / release / test
	ReadTimeout    int      // секунды
	WriteTimeout   int      // секунды
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath - каталог SQL миграций golang-migrate
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Для 'single' используется первый адрес.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'. Используется, если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// StorageConfig содержит настройки хранилища медиавложений
type StorageConfig struct {
	Type           string // local / minio
	LocalPath      string `mapstructure:"local_path"`
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessID  string `mapstructure:"minio_access_id"`
	MinioSecret    string `mapstructure:"minio_secret"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// ShareConfig содержит настройки ссылок для публикации игр
type ShareConfig struct {
	BaseURL string `mapstructure:"base_url"`
	QRBase  string `mapstructure:"qr_base"`
}

// SessionConfig содержит настройки прохождений
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	// MessagesPerSecond - ограничение сообщений одного WebSocket соединения
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	MessageBurst      int     `mapstructure:"message_burst"`
}

// GameConfig содержит ограничения конструктора игр
type GameConfig struct {
	MaxQuestions int `mapstructure:"max_questions"`
}

// EmailConfig содержит настройки отправки писем через Resend
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
}

// RateLimitConfig содержит настройки ограничения HTTP запросов
type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.mode", "debug")
	vip.SetDefault("server.readtimeout", 10)
	vip.SetDefault("server.writetimeout", 10)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")

	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")

	vip.SetDefault("storage.type", "local")
	vip.SetDefault("storage.local_path", "uploads")
	vip.SetDefault("storage.minio_bucket", "eduplay-media")
	vip.SetDefault("storage.max_upload_bytes", 20<<20)

	vip.SetDefault("share.base_url", "https://eduplay.app")
	vip.SetDefault("share.qr_base", "https://api.qrserver.com/v1/create-qr-code/")

	vip.SetDefault("session.ttl", 2*time.Hour)
	vip.SetDefault("session.messages_per_second", 5)
	vip.SetDefault("session.message_burst", 10)

	vip.SetDefault("game.max_questions", 50)

	vip.SetDefault("email.from", "EduPlay <noreply@eduplay.app>")

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.file", "logs/app.log")
	vip.SetDefault("log.max_size_mb", 100)
	vip.SetDefault("log.max_backups", 5)
	vip.SetDefault("log.max_age_days", 30)

	vip.SetDefault("ratelimit.enabled", true)
	vip.SetDefault("ratelimit.max_requests", 120)
	vip.SetDefault("ratelimit.window", time.Minute)
}

func bindEnv(vip *viper.Viper) {
	// Server
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.mode", "GIN_MODE")
	vip.BindEnv("server.allowed_origins", "SERVER_ALLOWED_ORIGINS")

	// Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	// Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Storage
	vip.BindEnv("storage.type", "STORAGE_TYPE")
	vip.BindEnv("storage.local_path", "STORAGE_LOCAL_PATH")
	vip.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	vip.BindEnv("storage.minio_access_id", "MINIO_ACCESS_ID")
	vip.BindEnv("storage.minio_secret", "MINIO_SECRET")
	vip.BindEnv("storage.minio_bucket", "MINIO_BUCKET")
	vip.BindEnv("storage.minio_use_ssl", "MINIO_USE_SSL")
	vip.BindEnv("storage.max_upload_bytes", "STORAGE_MAX_UPLOAD_BYTES")

	// Share
	vip.BindEnv("share.base_url", "SHARE_BASE_URL")

	// Session / Game
	vip.BindEnv("session.ttl", "SESSION_TTL")
	vip.BindEnv("game.max_questions", "GAME_MAX_QUESTIONS")

	// Email
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	// Log
	vip.BindEnv("log.level", "LOG_LEVEL")
	vip.BindEnv("log.file", "LOG_FILE")

	// Rate limit
	vip.BindEnv("ratelimit.enabled", "RATELIMIT_ENABLED")
	vip.BindEnv("ratelimit.max_requests", "RATELIMIT_MAX_REQUESTS")
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Отдельный экземпляр Viper, без глобального состояния

	setDefaults(vip)
	bindEnv(vip)

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файл необязателен: значения могут прийти из окружения
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				logger.Log.Info("Файл конфигурации не найден, используются переменные окружения и значения по умолчанию",
					zap.String("path", configPath))
			} else {
				logger.Log.Warn("Не удалось прочитать файл конфигурации", zap.String("path", configPath), zap.Error(err))
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Списки из окружения приходят строкой через запятую
	cfg.Server.AllowedOrigins = splitList(strings.Join(cfg.Server.AllowedOrigins, ","))
	cfg.Redis.Addrs = splitList(strings.Join(cfg.Redis.Addrs, ","))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate проверяет обязательные параметры
func (c *Config) validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Server.Mode == "release" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	switch c.Storage.Type {
	case "local":
	case "minio":
		if c.Storage.MinioEndpoint == "" || c.Storage.MinioBucket == "" {
			return fmt.Errorf("minio storage requires endpoint and bucket (check MINIO_ENDPOINT, MINIO_BUCKET env vars)")
		}
	default:
		return fmt.Errorf("unknown storage type %q (expected local or minio)", c.Storage.Type)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Game.MaxQuestions <= 0 {
		return fmt.Errorf("game max_questions must be positive")
	}
	return nil
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
