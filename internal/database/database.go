package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/scottshadow56/Precision-N-back/internal/config"
	logging "github.com/scottshadow56/Precision-N-back/internal/logging"
	"github.com/scottshadow56/Precision-N-back/internal/models"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.NewGormLogger(log, gormlogger.Warn),
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// AutoMigrate creates tables, columns, and foreign keys. It will NOT
	// create custom indexes, so those are handled separately.
	err := DB.AutoMigrate(
		&models.User{},
		&models.SessionRecord{},
		&models.UserThreshold{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	historyIndex := `CREATE INDEX IF NOT EXISTS idx_session_history ON session_records (user_id, created_at DESC);`
	if err := DB.Exec(historyIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on session records", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
