package repository

import (
	"errors"
	"fmt"

	"github.com/smurfolan/likkle-backend/internal/config"
	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Area{},
		&models.Group{},
		&models.AutoSubscriptionSetting{},
		&models.HistoryGroup{},
		&models.RefreshToken{},
		&models.PendingNotification{},
		&models.AppVersion{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// translateNotFound maps gorm's sentinel onto the domain error so callers
// above the repository layer never import gorm.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
