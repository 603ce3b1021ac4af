package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resumaker/internal/config"
)

// InitDatabase 连接 PostgreSQL 并完成迁移。
func InitDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return Open(postgres.Open(cfg.DSN()), cfg)
}

// Open 用任意 GORM 方言建立连接，按配置设置连接池后执行迁移。
// 池参数为零值时沿用默认值，测试里可直接传入 sqlite 方言。
func Open(dialector gorm.Dialector, cfg config.DatabaseConfig) (*gorm.DB, error) {
	slow := cfg.SlowQuery
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap db: %w", err)
	}
	sqlDB.SetMaxOpenConns(positiveOr(cfg.MaxOpenConns, 25))
	sqlDB.SetMaxIdleConns(positiveOr(cfg.MaxIdleConns, 5))
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
