package models

import "time"

type AppVersion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Platform          string `gorm:"type:varchar(20);not null;index:idx_platform_active" json:"platform"`
	Version           string `gorm:"type:varchar(20);not null" json:"version"`
	BuildNumber       int    `gorm:"not null;uniqueIndex:idx_platform_build" json:"build_number"`
	DownloadURL       string `gorm:"type:text;not null" json:"download_url"`
	ForceUpdate       bool   `gorm:"default:false" json:"force_update"`
	MinSupportedBuild int    `gorm:"default:0" json:"min_supported_build"`
	IsActive          bool   `gorm:"default:true;index:idx_platform_active" json:"is_active"`
}

func (AppVersion) TableName() string {
	return "app_versions"
}

type AppVersionResponse struct {
	Version           string `json:"version"`
	BuildNumber       int    `json:"build_number"`
	DownloadURL       string `json:"download_url"`
	ForceUpdate       bool   `json:"force_update"`
	MinSupportedBuild int    `json:"min_supported_build"`
}

func (v *AppVersion) ToResponse() AppVersionResponse {
	return AppVersionResponse{
		Version:           v.Version,
		BuildNumber:       v.BuildNumber,
		DownloadURL:       v.DownloadURL,
		ForceUpdate:       v.ForceUpdate,
		MinSupportedBuild: v.MinSupportedBuild,
	}
}
