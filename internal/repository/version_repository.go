package repository

import (
	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/gorm"
)

type VersionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func (r *VersionRepository) GetActiveVersion(platform string) (*models.AppVersion, error) {
	var version models.AppVersion
	err := r.db.Where("platform = ? AND is_active = true", platform).
		Order("build_number DESC").
		First(&version).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &version, nil
}

func (r *VersionRepository) CreateVersion(version *models.AppVersion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.AppVersion{}).
			Where("platform = ? AND is_active = true", version.Platform).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		version.IsActive = true
		return tx.Create(version).Error
	})
}
