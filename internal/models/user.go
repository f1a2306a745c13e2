package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FullName     string `json:"full_name"`
	Avatar       string `json:"avatar"`
	AvatarKey    string `json:"-"`
	Role         string `gorm:"not null;default:user" json:"role"`

	// ExternalID links the account to the identity provider used at
	// registration, when any.
	ExternalID string `gorm:"index" json:"external_id,omitempty"`

	// Last known coordinate, nil until the first location update.
	LastLatitude  *float64   `json:"last_latitude,omitempty"`
	LastLongitude *float64   `json:"last_longitude,omitempty"`
	LocatedAt     *time.Time `json:"located_at,omitempty"`

	// IsDisabled marks an account whose memberships were cleared.
	// History is preserved for disabled accounts.
	IsDisabled bool `gorm:"default:false" json:"is_disabled"`

	Groups       []Group                  `gorm:"many2many:group_members" json:"-"`
	History      []HistoryGroup           `gorm:"foreignKey:UserID" json:"-"`
	Subscription *AutoSubscriptionSetting `gorm:"foreignKey:UserID" json:"-"`
}

// HasLocation reports whether the user has ever reported a coordinate.
func (u *User) HasLocation() bool {
	return u.LastLatitude != nil && u.LastLongitude != nil
}

type UserResponse struct {
	ID         uint     `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FullName   string   `json:"full_name"`
	Avatar     string   `json:"avatar"`
	Role       string   `json:"role"`
	IsDisabled bool     `json:"is_disabled"`
	Latitude   *float64 `json:"last_latitude,omitempty"`
	Longitude  *float64 `json:"last_longitude,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		Role:       u.Role,
		IsDisabled: u.IsDisabled,
		Latitude:   u.LastLatitude,
		Longitude:  u.LastLongitude,
	}
}
