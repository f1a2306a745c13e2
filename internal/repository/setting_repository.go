package repository

import (
	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/gorm"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) FindByUserID(userID uint) (*models.AutoSubscriptionSetting, error) {
	var setting models.AutoSubscriptionSetting
	err := r.db.Where("user_id = ?", userID).Preload("Tags").First(&setting).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &setting, nil
}

func (r *SettingRepository) Create(setting *models.AutoSubscriptionSetting) error {
	return r.db.Create(setting).Error
}

func (r *SettingRepository) Update(setting *models.AutoSubscriptionSetting, tags []models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(setting).Updates(map[string]interface{}{
			"subscribe_to_all_groups":          setting.SubscribeToAllGroups,
			"subscribe_to_all_groups_with_tag": setting.SubscribeToAllGroupsWithTag,
		}).Error; err != nil {
			return err
		}
		return tx.Model(setting).Association("Tags").Replace(tags)
	})
}
