package models

import "time"

// Tag is immutable reference data used to classify groups and to drive
// tag-based auto-subscription.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
