package repository

import (
	"time"

	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/gorm"
)

type PendingNotificationRepository struct {
	db *gorm.DB
}

func NewPendingNotificationRepository(db *gorm.DB) *PendingNotificationRepository {
	return &PendingNotificationRepository{db: db}
}

func (r *PendingNotificationRepository) Enqueue(userID, groupID uint, payload string, priority int) error {
	notification := models.PendingNotification{
		UserID:   userID,
		GroupID:  groupID,
		Payload:  payload,
		Priority: priority,
	}
	return r.db.Create(&notification).Error
}

func (r *PendingNotificationRepository) GetPendingForUser(userID uint, limit int) ([]models.PendingNotification, error) {
	var notifications []models.PendingNotification
	err := r.db.Where("user_id = ?", userID).
		Order("priority DESC, created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *PendingNotificationRepository) GetRetryable(limit int) ([]models.PendingNotification, error) {
	var notifications []models.PendingNotification
	err := r.db.Where("next_retry IS NOT NULL AND next_retry <= ?", time.Now()).
		Order("priority DESC, next_retry ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *PendingNotificationRepository) MarkAttempted(id uint, attempts int, nextRetry *time.Time) error {
	now := time.Now()
	return r.db.Model(&models.PendingNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":     attempts,
			"last_attempt": now,
			"next_retry":   nextRetry,
		}).Error
}

func (r *PendingNotificationRepository) Delete(id uint) error {
	return r.db.Delete(&models.PendingNotification{}, id).Error
}

func (r *PendingNotificationRepository) DeleteBatch(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&models.PendingNotification{}, ids).Error
}

func (r *PendingNotificationRepository) CleanupOld(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return r.db.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.PendingNotification{}).Error
}
