package db

import (
	"fmt"
	"strings"
	"time"

	"autoempeno-backend/internal/domain/asset"
	"autoempeno-backend/internal/domain/pledge"
	"autoempeno-backend/internal/domain/transaction"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// OpenGorm opens the configured driver and pings it.
func OpenGorm(driver, dsn string, lg logger.Interface) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case DriverMySQL:
		dial = mysql.Open(dsn)
	case DriverSQLite:
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB driver %q", driver)
	}
	return OpenGormWithDialector(dial, lg)
}

func OpenGormWithDialector(dial gorm.Dialector, lg logger.Interface) (*gorm.DB, error) {
	if lg == nil {
		lg = logger.Default.LogMode(logger.Warn)
	}
	cfg := &gorm.Config{
		Logger:               lg,
		TranslateError:       true,
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dial.Name() == DriverSQLite {
		// one writer; also keeps ":memory:" databases alive across calls
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(30)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&asset.Asset{}, &pledge.Pledge{}, &transaction.Transaction{})
}

// NewLogger routes gorm output through zap. level is silent, error, warn or info.
func NewLogger(log *zap.Logger, level string) (logger.Interface, error) {
	var lvl logger.LogLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "warn", "":
		lvl = logger.Warn
	case "info":
		lvl = logger.Info
	default:
		return nil, fmt.Errorf("unknown gorm log level %q", level)
	}
	return logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	}), nil
}
