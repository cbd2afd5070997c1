package main

import (
	"database/sql"
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourusername/eduplay-api/internal/config"
	"github.com/yourusername/eduplay-api/pkg/logger"
)

// fix-db снимает с базы dirty-состояние после неудачной миграции,
// принудительно выставляя версию, с которой миграции можно запустить повторно.
func main() {
	version := flag.Int("version", -1, "версия миграции, которую нужно выставить (-1 - без миграций)")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "путь к файлу конфигурации")
	flag.Parse()

	logger.Init(logger.Options{Level: "info", Console: true})
	defer logger.Sync()

	if *configPath == "" {
		*configPath = "config/config.yaml"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		logger.Log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Log.Fatal("Failed to ping database", zap.Error(err))
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Log.Fatal("Failed to create migrate driver", zap.Error(err))
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		logger.Log.Fatal("Failed to create migrate instance", zap.Error(err))
	}

	current, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		logger.Log.Fatal("Failed to read migration version", zap.Error(err))
	}
	logger.Log.Info("Текущее состояние миграций", zap.Uint("version", current), zap.Bool("dirty", dirty))

	logger.Log.Info("Принудительная установка версии миграции", zap.Int("version", *version))
	if err := m.Force(*version); err != nil {
		logger.Log.Fatal("Failed to force version", zap.Error(err))
	}

	logger.Log.Info("Dirty-состояние снято, приложение можно запускать")
}
