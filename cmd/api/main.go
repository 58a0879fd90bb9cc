package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/config"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/cache"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/logger"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/mailer"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/messaging"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/objectstore"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/storage"
	"github.com/DominikSitny/tornado-racing-moto/internal/api"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/services"
	"github.com/DominikSitny/tornado-racing-moto/internal/security"
	"github.com/DominikSitny/tornado-racing-moto/internal/utils"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/DominikSitny/tornado-racing-moto/pkg/tx"
)

const megabyte = 1 << 20

// @title        Tornado Racing Moto Catalog API
// @version      1.0
// @description  Каталог запчастей на трех языках с панелью администратора.
// @BasePath     /
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
		interfaces.LogField{Key: "data_store", Value: cfg.DataStore},
	)

	repo, txManager := initStorage(ctx, cfg, log)
	log.Info("Хранилище инициализировано")

	if cfg.Security.AdminPassword != "" {
		created, err := repo.EnsureSetting(ctx, storage.SettingAdminPassword, cfg.Security.AdminPassword)
		if err != nil {
			log.Fatal("Ошибка записи пароля администратора", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		if created {
			log.Info("Пароль администратора записан в settings")
		}
	}

	cacheClient := initCache(ctx, cfg, log)
	if cacheClient != nil {
		log.Info("Кэш инициализирован", interfaces.LogField{Key: "driver", Value: cfg.Cache.Driver})
	}

	var messagingClient *messaging.KafkaMessaging
	if cfg.Kafka.Enabled {
		messagingClient, err = messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.ClientID, log)
		if err != nil {
			log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("Система обмена сообщениями инициализирована")
	}

	objects, uploadsDir := initObjectStore(ctx, cfg, log)
	log.Info("Хранилище изображений инициализировано", interfaces.LogField{Key: "driver", Value: cfg.Storage.Driver})

	catalogService := services.NewCatalogService(repo, cacheClient, cfg.Cache.TTL, log)

	adminOpts := []services.AdminOption{services.WithCacheInvalidator(catalogService)}
	if cfg.Security.SessionsEnabled {
		sessions, err := security.NewSessionManager(cfg.Security.JWTSecret, cfg.Security.SessionTTL, cfg.Security.SessionIssuer)
		if err != nil {
			log.Fatal("Ошибка инициализации сессий", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		adminOpts = append(adminOpts, services.WithSessions(sessions))
	}
	if messagingClient != nil {
		adminOpts = append(adminOpts, services.WithChangePublisher(messaging.NewEventPublisher(messagingClient, cfg.Kafka.Topic)))
	}
	adminService := services.NewAdminService(repo, txManager, objects, log, adminOpts...)

	contactService := initContact(cfg, log)
	sitemapService := services.NewSitemapService(repo, cfg.Site.BaseURL, log)
	log.Info("Сервисы инициализированы")

	metricsEndpoint := ""
	if cfg.Metrics.Enabled {
		metricsEndpoint = cfg.Metrics.Endpoint
	}

	router := api.SetupRouter(api.RouterConfig{
		Catalog:          catalogService,
		Admin:            adminService,
		Contact:          contactService,
		Sitemap:          sitemapService,
		Store:            repo,
		Logger:           log,
		CORSAllowOrigins: cfg.Security.CORSAllowOrigins,
		RequestTimeout:   cfg.Server.RequestTimeout,
		BodyLimit:        int64(cfg.Server.BodyLimit) * megabyte,
		// запас на заголовки multipart
		MaxUpload:       int64(cfg.Storage.MaxUploadMB)*megabyte + megabyte,
		MetricsEndpoint: metricsEndpoint,
		UploadsDir:      uploadsDir,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("HTTP сервер остановлен")

		log.Info("Закрытие соединений с зависимостями...")

		if messagingClient != nil {
			if err := messagingClient.Close(); err != nil {
				log.Error("Ошибка при закрытии Kafka", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}

		if cacheClient != nil {
			if err := cacheClient.Close(); err != nil {
				log.Error("Ошибка при закрытии кэша", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}

		if err := repo.Close(); err != nil {
			log.Error("Ошибка при закрытии БД", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		close(done)
	}()

	// Ожидаем завершения работы
	<-done
	log.Info("Сервер корректно завершил работу")
}

// initStorage подключает PostgreSQL (с миграциями) или хранилище в памяти
func initStorage(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) (storage.Port, tx.TxManager) {
	if cfg.DataStore == "memory" {
		log.Warn("Каталог хранится в памяти процесса и будет потерян при перезапуске")
		return storage.NewMemoryStorage(), tx.NewNopTxManager()
	}

	if cfg.Postgres.AutoMigrate {
		migrationURL, err := utils.GenerateMigrationURL(
			cfg.Postgres.Host,
			cfg.Postgres.User,
			cfg.Postgres.Password,
			cfg.Postgres.DBName,
			cfg.Postgres.SSLMode,
			cfg.Postgres.Port,
		)
		if err != nil {
			log.Fatal("Ошибка формирования адреса миграций", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		if err := storage.Migrate(migrationURL, log); err != nil {
			log.Fatal("Ошибка применения миграций", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}

	postgresCon, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		cfg.Postgres.PoolSize,
		cfg.Postgres.Timeout,
	)
	if err != nil {
		log.Fatal("Ошибка инициализации строки подключения базы", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()

	db, err := storage.NewPostgresStorage(connectCtx, postgresCon)
	if err != nil {
		log.Fatal("Ошибка подключения к PostgreSQL", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	return db, tx.NewTxManager(db.Pool(), log)
}

// initCache возвращает nil, если кэш выключен. Недоступный Redis не мешает старту: каталог читается из базы.
func initCache(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) interfaces.CachePort {
	switch cfg.Cache.Driver {
	case "redis":
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		defer connectCancel()

		redisCache, err := cache.NewRedisCache(
			connectCtx,
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.Prefix,
			cfg.Cache.TTL,
		)
		if err != nil {
			log.Error("Redis недоступен, кэш каталога отключен", interfaces.LogField{Key: "error", Value: err.Error()})
			return nil
		}
		return redisCache
	case "memory":
		return cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	default:
		return nil
	}
}

// initObjectStore возвращает хранилище изображений и каталог для /uploads (только для local)
func initObjectStore(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) (objectstore.ObjectStore, string) {
	if cfg.Storage.Driver == "s3" {
		s3, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
			Endpoint:        cfg.Storage.S3.Endpoint,
			Region:          cfg.Storage.S3.Region,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			Bucket:          cfg.Storage.S3.Bucket,
			UseSSL:          cfg.Storage.S3.UseSSL,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			log.Fatal("Ошибка инициализации S3", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		return s3, ""
	}

	local, err := objectstore.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		log.Fatal("Ошибка инициализации каталога загрузок", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	return local, local.Dir()
}

// initContact собирает сервис контактной формы. Без RESEND_API_KEY форма отвечает ошибкой.
func initContact(cfg *config.Config, log interfaces.LoggerPort) *services.ContactService {
	renderer, err := mailer.NewRenderer(cfg.Site.Name)
	if err != nil {
		log.Fatal("Ошибка загрузки шаблонов писем", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	contactCfg := services.ContactConfig{
		From:             cfg.Mail.From,
		ContactEmail:     cfg.Mail.ContactEmail,
		SendConfirmation: cfg.Mail.SendConfirmation,
	}

	if cfg.Mail.ResendAPIKey == "" {
		log.Warn("RESEND_API_KEY не задан, контактная форма отключена")
		return services.NewContactService(nil, renderer, contactCfg, log)
	}

	sender, err := mailer.NewResendSender(cfg.Mail.ResendAPIKey)
	if err != nil {
		log.Fatal("Ошибка инициализации Resend", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	return services.NewContactService(sender, renderer, contactCfg, log)
}
