// Package database bootstraps the two gorm connections: the payment store
// and the outbox (logs) store. They are independently owned and committed;
// there is no cross-database transaction between them.
package database

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"payflow/internal/shared/config"
	"payflow/internal/shared/logger"
)

var (
	paymentDB *gorm.DB
	outboxDB  *gorm.DB
	dbMu      sync.RWMutex
)

// Open connects to a single database with the shared pool settings.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	database, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", cfg.Database, err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Database, err)
	}

	return database, nil
}

// Init opens the payment store and the outbox store. When outboxCfg points
// at the same database as paymentCfg the single connection is shared.
func Init(paymentCfg, outboxCfg *config.DatabaseConfig) error {
	payment, err := Open(paymentCfg)
	if err != nil {
		return err
	}

	outbox := payment
	if outboxCfg.Database != paymentCfg.Database || outboxCfg.Host != paymentCfg.Host || outboxCfg.Port != paymentCfg.Port {
		outbox, err = Open(outboxCfg)
		if err != nil {
			return err
		}
	}

	dbMu.Lock()
	paymentDB = payment
	outboxDB = outbox
	dbMu.Unlock()

	logger.Get().Info("database connections established",
		"payment_db", paymentCfg.Database,
		"outbox_db", outboxCfg.Database)

	return nil
}

// Get returns the payment store connection.
func Get() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return paymentDB
}

// GetOutbox returns the outbox store connection.
func GetOutbox() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	return outboxDB
}

// Close closes both connections.
func Close() error {
	dbMu.RLock()
	payment, outbox := paymentDB, outboxDB
	dbMu.RUnlock()

	for _, conn := range []*gorm.DB{payment, outbox} {
		if conn == nil {
			continue
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		if outbox == payment {
			break
		}
	}

	return nil
}
