package repository

import (
	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(record *models.HistoryGroup) error {
	return r.db.Create(record).Error
}

func (r *HistoryRepository) ListByUser(userID uint) ([]models.HistoryGroup, error) {
	var records []models.HistoryGroup
	err := r.db.Where("user_id = ?", userID).
		Preload("Group").Preload("Group.Tags").Preload("Group.Areas").
		Order("subscribed_at DESC").
		Find(&records).Error
	return records, err
}

func (r *HistoryRepository) CountByUserAndGroup(userID, groupID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.HistoryGroup{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	return count, err
}
