package config

import (
	"fmt"
	"time"

	"tradenexus/internal/adapters/persistence/models"
	"tradenexus/internal/adapters/persistence/repositories"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance (nil unless STORAGE_DRIVER=mysql)
var DB *gorm.DB

// ConnectDatabase establishes connection to MySQL database
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := buildDSN(cfg.Database)

	// Configure GORM logger based on mode
	var gormLogger logger.Interface
	if cfg.IsDev() {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db

	zap.L().Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("port", cfg.Database.Port),
		zap.String("name", cfg.Database.DBName),
	)

	return db, nil
}

// OpenKVRepository opens the key-value area selected by STORAGE_DRIVER,
// wrapped with the per-profile quota.
func OpenKVRepository(cfg *Config) (repositories.KVRepository, error) {
	var repo repositories.KVRepository

	switch cfg.Storage.Driver {
	case "mysql":
		db, err := ConnectDatabase(cfg)
		if err != nil {
			return nil, err
		}
		if err := models.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
		repo = repositories.NewKVRepository(db)
	case "sqlite":
		r, err := repositories.NewSQLiteKVRepository(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		repo = r
	default:
		repo = repositories.NewMemoryKVRepository()
	}

	zap.L().Info("key-value storage ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.Int64("quota_bytes", cfg.Storage.QuotaBytes),
	)
	return repositories.NewQuotaRepository(repo, cfg.Storage.QuotaBytes), nil
}

// buildDSN returns the database connection string
func buildDSN(d DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
	)
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// HealthCheck checks if database is healthy; nil when MySQL is not in use
func HealthCheck() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
