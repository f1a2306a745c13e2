package service

import (
	"fmt"

	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/repository"
)

type VersionService struct {
	versionRepo repository.VersionRepositoryInterface
}

func NewVersionService(versionRepo repository.VersionRepositoryInterface) *VersionService {
	return &VersionService{
		versionRepo: versionRepo,
	}
}

// PublishVersion registers a new build as the active version for its
// platform; previously active versions for that platform are deactivated.
func (s *VersionService) PublishVersion(version *models.AppVersion) error {
	if version.Platform != "android" && version.Platform != "ios" && version.Platform != "web" {
		return fmt.Errorf("invalid platform: %s", version.Platform)
	}
	if version.Version == "" || version.BuildNumber <= 0 || version.DownloadURL == "" {
		return fmt.Errorf("version, build_number and download_url are required")
	}
	version.IsActive = true
	return s.versionRepo.CreateVersion(version)
}

// GetLatestVersion returns the active version for a platform
func (s *VersionService) GetLatestVersion(platform string) (*models.AppVersion, error) {
	// Validate platform
	if platform != "android" && platform != "ios" && platform != "web" {
		return nil, fmt.Errorf("invalid platform: %s", platform)
	}

	version, err := s.versionRepo.GetActiveVersion(platform)
	if err != nil {
		return nil, fmt.Errorf("failed to get active version: %w", err)
	}

	return version, nil
}

// CheckUpdateRequired determines if an update is needed based on build number
func (s *VersionService) CheckUpdateRequired(platform string, currentBuild int) (bool, *models.AppVersion, error) {
	latestVersion, err := s.GetLatestVersion(platform)
	if err != nil {
		return false, nil, err
	}

	needsUpdate := currentBuild < latestVersion.BuildNumber

	return needsUpdate, latestVersion, nil
}

// IsForceUpdateRequired checks if the current build MUST update
func (s *VersionService) IsForceUpdateRequired(platform string, currentBuild int) (bool, error) {
	latestVersion, err := s.GetLatestVersion(platform)
	if err != nil {
		return false, err
	}

	// Force update if:
	// 1. Current build is below minimum supported build
	// 2. OR force_update flag is set for latest version
	if currentBuild < latestVersion.MinSupportedBuild {
		return true, nil
	}

	if latestVersion.ForceUpdate && currentBuild < latestVersion.BuildNumber {
		return true, nil
	}

	return false, nil
}
