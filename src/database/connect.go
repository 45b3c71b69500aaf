package database

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"scalpwatch/src/model"
)

// Connect opens the trade-history database and runs migrations. The DSN
// scheme picks the driver: postgres:// goes to Postgres, anything else is
// treated as a sqlite file path. Called once at startup; the handle is
// injected into repositories rather than held as a package global.
func Connect(config Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	}

	var (
		db  *gorm.DB
		err error
	)
	if strings.HasPrefix(config.DatabaseURL, "postgres://") || strings.HasPrefix(config.DatabaseURL, "postgresql://") {
		db, err = gorm.Open(postgres.Open(config.DatabaseURL), gormConfig)
	} else {
		db, err = gorm.Open(sqlite.Open(config.DatabaseURL), gormConfig)
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Failed to get DB from GORM")
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	if err := db.AutoMigrate(
		&model.TradeRecord{},
	); err != nil {
		logrus.WithError(err).Error("Failed to migrate database")
		return nil, err
	}

	logrus.Info("Database connection initialized")
	return db, nil
}
