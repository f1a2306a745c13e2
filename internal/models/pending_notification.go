package models

import (
	"time"

	"gorm.io/gorm"
)

// PendingNotification is a group event queued for delivery to a user who was
// offline when the event fired. Delivered (and deleted) on reconnect or by
// the retry worker.
type PendingNotification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID  uint `gorm:"not null;index:idx_pending_user_priority" json:"user_id"`
	GroupID uint `gorm:"not null" json:"group_id"`

	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastAttempt *time.Time `json:"last_attempt"`
	NextRetry   *time.Time `gorm:"index" json:"next_retry"`
	Priority    int        `gorm:"default:0;index:idx_pending_user_priority" json:"priority"`

	// Payload is the serialized GroupEvent, cached to avoid joins on delivery.
	Payload string `gorm:"type:text" json:"payload"`
}
