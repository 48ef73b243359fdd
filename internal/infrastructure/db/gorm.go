package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wanzo-portfolio/internal/config"
)

// Open picks the dialector from config: embedded sqlite is the offline-first
// default, mysql serves shared deployments.
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return OpenGormWithDialector(sqlite.Open(cfg.SQLitePath))
	case "mysql":
		return OpenGormWithDialector(mysql.Open(cfg.MySQLDSN()))
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(dial, gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
