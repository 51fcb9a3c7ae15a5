package main

import (
	"ebridge-portal/internal/config"
	"ebridge-portal/internal/infrastructure/persistence/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		logger.Fatal("DATABASE_DSN is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Fatalf("connect postgres: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("open sql handle: %v", err)
	}
	defer sqlDB.Close()

	if err := models.Migrate(db); err != nil {
		logger.Fatalf("migrate schema: %v", err)
	}
	logger.WithField("tables", len(models.All())).Info("schema migrated")
}
