package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/config"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/logger"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/storage"
	"github.com/DominikSitny/tornado-racing-moto/internal/security"
	"github.com/DominikSitny/tornado-racing-moto/internal/utils"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
)

var errEmptyPassword = errors.New("admin password is empty")

// passwordOptions как записать пароль администратора
type passwordOptions struct {
	Password string
	// Rotate перезаписывает существующее значение
	Rotate bool
	// Hash сохраняет bcrypt-хэш вместо открытого текста
	Hash bool
}

func main() {
	var (
		configName = flag.String("config", "", "имя файла конфигурации без расширения")
		password   = flag.String("admin-password", "", "пароль администратора (по умолчанию ADMIN_PASSWORD)")
		rotate     = flag.Bool("rotate", false, "заменить уже сохраненный пароль")
		hash       = flag.Bool("hash", true, "хранить пароль как bcrypt-хэш")
		skipMig    = flag.Bool("skip-migrations", false, "не применять миграции")
	)
	flag.Parse()

	cfg, err := config.Load(*configName)
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}
	if cfg.DataStore != "postgres" {
		fmt.Println("Настройка нужна только для хранилища postgres")
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if !*skipMig {
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

	opts := passwordOptions{Password: *password, Rotate: *rotate, Hash: *hash}
	if opts.Password == "" {
		opts.Password = cfg.Security.AdminPassword
	}
	if opts.Password == "" {
		log.Info("Пароль администратора не передан, настройка завершена")
		return
	}

	postgresCon, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		1,
		cfg.Postgres.Timeout,
	)
	if err != nil {
		log.Fatal("Ошибка инициализации строки подключения базы", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	db, err := storage.NewPostgresStorage(ctx, postgresCon)
	if err != nil {
		log.Fatal("Ошибка подключения к PostgreSQL", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer db.Close()

	if err := applyAdminPassword(ctx, db, opts, log); err != nil {
		log.Fatal("Ошибка записи пароля администратора", interfaces.LogField{Key: "error", Value: err.Error()})
	}
}

// applyAdminPassword записывает пароль в settings. Без Rotate существующее значение не меняется.
func applyAdminPassword(ctx context.Context, repo storage.SettingsRepository, opts passwordOptions, log interfaces.LoggerPort) error {
	if opts.Password == "" {
		return errEmptyPassword
	}

	value := opts.Password
	if opts.Hash {
		hashed, err := security.HashPassword(opts.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		value = hashed
	}

	if opts.Rotate {
		if err := repo.SetSetting(ctx, storage.SettingAdminPassword, value); err != nil {
			return err
		}
		log.Info("Пароль администратора заменен", interfaces.LogField{Key: "hashed", Value: opts.Hash})
		return nil
	}

	created, err := repo.EnsureSetting(ctx, storage.SettingAdminPassword, value)
	if err != nil {
		return err
	}
	if created {
		log.Info("Пароль администратора записан", interfaces.LogField{Key: "hashed", Value: opts.Hash})
	} else {
		log.Info("Пароль администратора уже задан, используйте -rotate для замены")
	}
	return nil
}
