package repository

import (
	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/gorm"
)

type AreaRepository struct {
	db *gorm.DB
}

func NewAreaRepository(db *gorm.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

func (r *AreaRepository) Create(area *models.Area) error {
	return r.db.Create(area).Error
}

func (r *AreaRepository) FindByID(id uint) (*models.Area, error) {
	var area models.Area
	if err := r.db.Preload("Groups").First(&area, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &area, nil
}

func (r *AreaRepository) FindAll() ([]models.Area, error) {
	var areas []models.Area
	err := r.db.Find(&areas).Error
	return areas, err
}
