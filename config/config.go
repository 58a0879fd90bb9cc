package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config содержит все настройки сервиса
type Config struct {
	AppName  string
	Version  string
	LogLevel string
	ENV      string
	// DataStore postgres или memory (локальная разработка без базы)
	DataStore string

	Server struct {
		Host            string
		Port            int
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		RequestTimeout  time.Duration
		BodyLimit       int // максимальный размер запроса в МБ
	}

	Postgres struct {
		Host        string
		Port        int
		User        string
		Password    string
		DBName      string
		SSLMode     string
		Timeout     time.Duration
		PoolSize    int // размер пула соединений
		AutoMigrate bool
	}

	Cache struct {
		Driver string // redis, memory или none
		TTL    time.Duration
	}

	Redis struct {
		Host     string
		Port     int
		Password string
		DB       int
		Prefix   string
	}

	Kafka struct {
		Enabled  bool
		Brokers  []string
		ClientID string
		Topic    string
	}

	Metrics struct {
		Enabled  bool
		Endpoint string
	}

	Security struct {
		// AdminPassword начальный пароль, записывается в settings, только если строки еще нет
		AdminPassword    string
		JWTSecret        string
		SessionsEnabled  bool
		SessionTTL       time.Duration
		SessionIssuer    string
		CORSAllowOrigins []string
	}

	Storage struct {
		Driver        string // local или s3
		LocalDir      string
		PublicBaseURL string
		MaxUploadMB   int

		S3 struct {
			Endpoint        string
			Region          string
			AccessKeyID     string
			SecretAccessKey string
			Bucket          string
			UseSSL          bool
		}
	}

	Mail struct {
		ResendAPIKey     string
		From             string
		ContactEmail     string
		SendConfirmation bool
	}

	Site struct {
		BaseURL string
		Name    string
	}
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	configFile := "config"
	if configPath != "" {
		configFile = configPath
	}

	v := viper.New()
	v.SetConfigName(configFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		// Файла нет - работаем на значениях по умолчанию и переменных окружения
	}

	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка десериализации конфигурации: %w", err)
	}

	// Списки из переменных окружения приходят одной строкой через запятую
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	cfg.Security.CORSAllowOrigins = splitList(cfg.Security.CORSAllowOrigins)

	if cfg.ENV == "" {
		cfg.ENV = "development"
		if envVar := os.Getenv("APP_ENV"); envVar != "" {
			cfg.ENV = envVar
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsProduction включает JSON-логи и запрещает небезопасные значения по умолчанию
func (c *Config) IsProduction() bool {
	return c.ENV == "production"
}

// Validate отклоняет несовместимые настройки до старта сервиса
func (c *Config) Validate() error {
	switch c.DataStore {
	case "postgres", "memory":
	default:
		return fmt.Errorf("неизвестное хранилище данных: %q", c.DataStore)
	}

	switch c.Cache.Driver {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("неизвестный драйвер кэша: %q", c.Cache.Driver)
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.LocalDir == "" {
			return errors.New("storage.localDir не задан")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" || c.Storage.S3.Endpoint == "" {
			return errors.New("для storage.driver=s3 нужны storage.s3.endpoint и storage.s3.bucket")
		}
	default:
		return fmt.Errorf("неизвестный драйвер хранилища файлов: %q", c.Storage.Driver)
	}

	if c.Security.SessionsEnabled {
		if c.Security.JWTSecret == "" {
			return errors.New("ADMIN_JWT_SECRET не задан, а сессии администратора включены")
		}
		if c.Security.SessionTTL <= 0 {
			return errors.New("security.sessionTTL должен быть положительным")
		}
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.enabled без kafka.brokers")
	}

	if c.Mail.ResendAPIKey != "" && (c.Mail.From == "" || c.Mail.ContactEmail == "") {
		return errors.New("для отправки писем нужны mail.from и CONTACT_EMAIL")
	}

	if c.Storage.MaxUploadMB <= 0 || c.Server.BodyLimit <= 0 {
		return errors.New("лимиты размера запроса должны быть положительными")
	}

	return nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Основные настройки
	v.SetDefault("appName", "tornado-racing-moto")
	v.SetDefault("version", "1.0.0")
	v.SetDefault("logLevel", "info")
	v.SetDefault("env", "development")
	v.SetDefault("dataStore", "postgres")

	// Настройки сервера
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.shutdownTimeout", "5s")
	v.SetDefault("server.requestTimeout", "15s")
	v.SetDefault("server.bodyLimit", 1) // 1 МБ для JSON

	// Настройки Postgres
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "tornado")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timeout", "5s")
	v.SetDefault("postgres.poolSize", 10)
	v.SetDefault("postgres.autoMigrate", true)

	// Кэш каталога
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "tornado:")

	// События изменения каталога
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.clientID", "tornado-racing-moto")
	v.SetDefault("kafka.topic", "catalog-changes")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.endpoint", "/metrics")

	// Настройки безопасности
	v.SetDefault("security.adminPassword", "")
	v.SetDefault("security.jwtSecret", "")
	v.SetDefault("security.sessionsEnabled", false)
	v.SetDefault("security.sessionTTL", "12h")
	v.SetDefault("security.sessionIssuer", "tornado-racing-moto")
	v.SetDefault("security.corsAllowOrigins", []string{"*"})

	// Изображения запчастей
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.localDir", "./uploads")
	v.SetDefault("storage.publicBaseURL", "/uploads")
	v.SetDefault("storage.maxUploadMB", 10)
	v.SetDefault("storage.s3.region", "eu-central-1")
	v.SetDefault("storage.s3.bucket", "parts")
	v.SetDefault("storage.s3.useSSL", true)

	// Почта
	v.SetDefault("mail.from", "Tornado Racing Moto <noreply@tornadoracingmoto.de>")
	v.SetDefault("mail.contactEmail", "")
	v.SetDefault("mail.sendConfirmation", true)

	v.SetDefault("site.baseURL", "https://tornadoracingmoto.de")
	v.SetDefault("site.name", "tornadoracingmoto.de")
}

// bindEnvVariables привязывает переменные окружения к конфигурации
func bindEnvVariables(v *viper.Viper) {
	bindings := map[string]string{
		"appName":   "APP_NAME",
		"version":   "APP_VERSION",
		"logLevel":  "LOG_LEVEL",
		"env":       "APP_ENV",
		"dataStore": "DATA_STORE",

		"server.host":            "SERVER_HOST",
		"server.port":            "SERVER_PORT",
		"server.readTimeout":     "SERVER_READ_TIMEOUT",
		"server.writeTimeout":    "SERVER_WRITE_TIMEOUT",
		"server.shutdownTimeout": "SERVER_SHUTDOWN_TIMEOUT",
		"server.requestTimeout":  "SERVER_REQUEST_TIMEOUT",
		"server.bodyLimit":       "SERVER_BODY_LIMIT",

		"postgres.host":        "POSTGRES_HOST",
		"postgres.port":        "POSTGRES_PORT",
		"postgres.user":        "POSTGRES_USER",
		"postgres.password":    "POSTGRES_PASSWORD",
		"postgres.dbname":      "POSTGRES_DBNAME",
		"postgres.sslmode":     "POSTGRES_SSLMODE",
		"postgres.timeout":     "POSTGRES_TIMEOUT",
		"postgres.poolSize":    "POSTGRES_POOL_SIZE",
		"postgres.autoMigrate": "POSTGRES_AUTO_MIGRATE",

		"cache.driver": "CACHE_DRIVER",
		"cache.ttl":    "CACHE_TTL",

		"redis.host":     "REDIS_HOST",
		"redis.port":     "REDIS_PORT",
		"redis.password": "REDIS_PASSWORD",
		"redis.db":       "REDIS_DB",
		"redis.prefix":   "REDIS_PREFIX",

		"kafka.enabled":  "KAFKA_ENABLED",
		"kafka.brokers":  "KAFKA_BROKERS",
		"kafka.clientID": "KAFKA_CLIENT_ID",
		"kafka.topic":    "KAFKA_TOPIC",

		"metrics.enabled":  "METRICS_ENABLED",
		"metrics.endpoint": "METRICS_ENDPOINT",

		"security.adminPassword":    "ADMIN_PASSWORD",
		"security.jwtSecret":        "ADMIN_JWT_SECRET",
		"security.sessionsEnabled":  "ADMIN_SESSIONS_ENABLED",
		"security.sessionTTL":       "ADMIN_SESSION_TTL",
		"security.sessionIssuer":    "ADMIN_SESSION_ISSUER",
		"security.corsAllowOrigins": "CORS_ALLOW_ORIGINS",

		"storage.driver":             "STORAGE_DRIVER",
		"storage.localDir":           "STORAGE_LOCAL_DIR",
		"storage.publicBaseURL":      "STORAGE_PUBLIC_BASE_URL",
		"storage.maxUploadMB":        "STORAGE_MAX_UPLOAD_MB",
		"storage.s3.endpoint":        "S3_ENDPOINT",
		"storage.s3.region":          "S3_REGION",
		"storage.s3.accessKeyID":     "S3_ACCESS_KEY_ID",
		"storage.s3.secretAccessKey": "S3_SECRET_ACCESS_KEY",
		"storage.s3.bucket":          "S3_BUCKET",
		"storage.s3.useSSL":          "S3_USE_SSL",

		"mail.resendAPIKey":     "RESEND_API_KEY",
		"mail.from":             "MAIL_FROM",
		"mail.contactEmail":     "CONTACT_EMAIL",
		"mail.sendConfirmation": "MAIL_SEND_CONFIRMATION",

		"site.baseURL": "SITE_BASE_URL",
		"site.name":    "SITE_NAME",
	}

	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
}

// splitList разбирает "a, b,c" на элементы, пустые отбрасываются
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
