package models

import (
	"time"

	"gorm.io/gorm"
)

// AreaRadius is the fixed set of supported geo-fence radii, in meters.
type AreaRadius float64

const (
	RadiusFiftyMeters       AreaRadius = 50
	RadiusHundredFiftyM     AreaRadius = 150
	RadiusThreeHundredM     AreaRadius = 300
	RadiusFiveHundredMeters AreaRadius = 500
)

// ValidRadius reports whether r is one of the supported radii.
func ValidRadius(r AreaRadius) bool {
	switch r {
	case RadiusFiftyMeters, RadiusHundredFiftyM, RadiusThreeHundredM, RadiusFiveHundredMeters:
		return true
	}
	return false
}

// Area is a circular geo-fenced region. Areas are never deleted; once the
// last attached group goes inactive the area is deactivated instead.
type Area struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Latitude  float64    `gorm:"not null" json:"latitude"`
	Longitude float64    `gorm:"not null" json:"longitude"`
	Radius    AreaRadius `gorm:"not null" json:"radius"`
	IsActive  bool       `gorm:"default:true;index" json:"is_active"`

	// ApproximateAddress is display-only, filled by the reverse-geocoding
	// collaborator when one is configured.
	ApproximateAddress string `gorm:"size:255" json:"approximate_address"`

	Groups []Group `gorm:"many2many:area_groups" json:"groups,omitempty"`
}

// AreaResponse is the client-facing shape without the group association.
type AreaResponse struct {
	ID                 uint       `json:"id"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	Radius             AreaRadius `json:"radius"`
	IsActive           bool       `json:"is_active"`
	ApproximateAddress string     `json:"approximate_address"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (a *Area) ToResponse() AreaResponse {
	return AreaResponse{
		ID:                 a.ID,
		Latitude:           a.Latitude,
		Longitude:          a.Longitude,
		Radius:             a.Radius,
		IsActive:           a.IsActive,
		ApproximateAddress: a.ApproximateAddress,
		CreatedAt:          a.CreatedAt,
	}
}
