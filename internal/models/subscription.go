package models

import (
	"time"

	"gorm.io/gorm"
)

// AutoSubscriptionSetting is the per-user policy controlling automatic group
// membership on location change. The two booleans are mutually exclusive;
// requests setting both are rejected at the boundary with ErrInvalidState.
// With neither set the user only joins groups explicitly.
type AutoSubscriptionSetting struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	SubscribeToAllGroups        bool `gorm:"default:false" json:"subscribe_to_all_groups"`
	SubscribeToAllGroupsWithTag bool `gorm:"default:false" json:"subscribe_to_all_groups_with_tag"`

	Tags []Tag `gorm:"many2many:setting_tags" json:"tags,omitempty"`
}

// HistoryGroup is an append-only record of a user joining a group. Rows are
// never updated or deleted; rejoining after a leave appends another row.
type HistoryGroup struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UserID       uint           `gorm:"not null;index:idx_history_user_group" json:"user_id"`
	GroupID      uint           `gorm:"not null;index:idx_history_user_group" json:"group_id"`
	SubscribedAt time.Time      `gorm:"not null" json:"subscribed_at"`

	Group Group `gorm:"foreignKey:GroupID" json:"-"`
}
