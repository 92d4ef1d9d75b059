// Package repositories provides the data access layer.
// It owns database connections, migrations and all persistence logic.
package repositories

import (
	"log"
	"os"
	"time"

	"payvault/internal/config"
	"payvault/internal/models"
	"payvault/internal/repositories/cache"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB
var CacheService *cache.CacheService

// InitDB initializes the database and cache connections, runs migrations
// and configures the connection pool.
func InitDB() error {
	if err := initPostgres(); err != nil {
		return err
	}

	redisSettings := config.Redis()
	redisCfg := &cache.RedisConfig{
		Host:     redisSettings.Host,
		Port:     redisSettings.Port,
		Password: redisSettings.Password,
		DB:       redisSettings.DB,
	}
	redisClient := cache.NewRedisClient(redisCfg)
	CacheService = cache.NewCacheService(redisClient, 24*time.Hour)

	return DB.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.TopUpRequest{},
		&models.WithdrawRequest{},
		&models.LedgerEntry{},
		&models.Media{},
	)
}

func initPostgres() error {
	db, err := gorm.Open(postgres.Open(config.DatabaseDSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	DB = db

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	pool := config.DBPool()
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !config.IsProduction(),
		},
	)
	db.Logger = newLogger

	log.Println("PostgreSQL connected")
	return nil
}
