package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Questions QuestionsConfig
	Study     StudyConfig
	Progress  ProgressConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Enabled: при false сервис работает только на встроенных вопросах, без журнала ответов
	Enabled bool
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig содержит настройки проверки токенов внешнего провайдера аутентификации
type JWTConfig struct {
	// Secret: общий HS256 секрет провайдера
	Secret string `mapstructure:"secret"`
	// Issuer и Audience проверяются, только если заданы
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
	// AdminRole: значение claim role, дающее доступ к административным маршрутам
	AdminRole string `mapstructure:"admin_role"`
	// Leeway: допуск расхождения часов
	Leeway time.Duration `mapstructure:"leeway"`
}

// QuestionsConfig содержит настройки источников вопросов
type QuestionsConfig struct {
	// RemoteEnabled: читать вопросы из таблицы questions
	RemoteEnabled bool `mapstructure:"remote_enabled"`
	// UseBundled: использовать встроенные документы как резервный источник
	UseBundled bool `mapstructure:"use_bundled"`
	// StaticFiles: дополнительные документы, подключаются после встроенных
	StaticFiles []string `mapstructure:"static_files"`
	// LoadTimeout: таймаут загрузки из удалённого источника
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

// StudyConfig содержит настройки учебных сессий
type StudyConfig struct {
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	MaxSessions     int           `mapstructure:"max_sessions"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// ProgressConfig содержит пороги аналитики прогресса
type ProgressConfig struct {
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	WeakThreshold      int           `mapstructure:"weak_threshold"`
	StrongThreshold    int           `mapstructure:"strong_threshold"`
	MinAttempts        int           `mapstructure:"min_attempts"`
	ReadinessMinAnswer int           `mapstructure:"readiness_min_answers"`
	RecentLimit        int           `mapstructure:"recent_limit"`
}

// RateLimitConfig содержит лимиты на отправку ответов
type RateLimitConfig struct {
	AnswerMaxRequests int           `mapstructure:"answer_max_requests"`
	AnswerWindow      time.Duration `mapstructure:"answer_window"`
}

// CORSConfig содержит разрешённые источники
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для migrate CLI
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 30)

	vip.SetDefault("database.enabled", true)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("jwt.admin_role", "admin")
	vip.SetDefault("jwt.leeway", "30s")

	vip.SetDefault("questions.remote_enabled", true)
	vip.SetDefault("questions.use_bundled", true)
	vip.SetDefault("questions.load_timeout", "10s")

	vip.SetDefault("study.session_ttl", "2h")
	vip.SetDefault("study.cleanup_interval", "5m")
	vip.SetDefault("study.max_sessions", 10000)
	vip.SetDefault("study.write_timeout", "10s")

	vip.SetDefault("progress.cache_ttl", "2m")
	vip.SetDefault("progress.weak_threshold", 70)
	vip.SetDefault("progress.strong_threshold", 85)
	vip.SetDefault("progress.min_attempts", 5)
	vip.SetDefault("progress.readiness_min_answers", 50)
	vip.SetDefault("progress.recent_limit", 10)

	vip.SetDefault("rate_limit.answer_max_requests", 60)
	vip.SetDefault("rate_limit.answer_window", "1m")

	vip.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	setDefaults(vip)

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.enabled", "DATABASE_ENABLED")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.issuer", "JWT_ISSUER")
	vip.BindEnv("jwt.audience", "JWT_AUDIENCE")

	vip.BindEnv("questions.remote_enabled", "QUESTIONS_REMOTE_ENABLED")
	vip.BindEnv("questions.static_files", "QUESTIONS_STATIC_FILES")

	vip.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Enabled: %t", cfg.Database.Enabled)
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s, Mode: %s", cfg.Redis.Addr, cfg.Redis.Mode)
		log.Printf("JWT Secret Set: %t", cfg.JWT.Secret != "")
		log.Printf("Questions Remote: %t, Bundled: %t, Files: %v", cfg.Questions.RemoteEnabled, cfg.Questions.UseBundled, cfg.Questions.StaticFiles)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if c.Database.Enabled && (c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "") {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if !c.Database.Enabled && c.Questions.RemoteEnabled {
		log.Println("Warning: questions.remote_enabled is ignored because the database is disabled")
		c.Questions.RemoteEnabled = false
	}
	if !c.Questions.UseBundled && len(c.Questions.StaticFiles) == 0 && !c.Questions.RemoteEnabled {
		return fmt.Errorf("no question source configured: enable the database, bundled documents or static_files")
	}
	if c.Progress.WeakThreshold >= c.Progress.StrongThreshold {
		return fmt.Errorf("progress.weak_threshold (%d) must be below progress.strong_threshold (%d)",
			c.Progress.WeakThreshold, c.Progress.StrongThreshold)
	}
	if len(c.Redis.Addrs) == 0 && c.Redis.Addr == "" {
		log.Println("Warning: Redis is not configured, dashboard cache and rate limiting are disabled")
	}
	return nil
}
