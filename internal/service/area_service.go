package service

import (
	"context"

	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/repository"
)

// Geocoder resolves a coordinate into a display address. Implementations may
// call out to an external provider; failures only cost the address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

type AreaService struct {
	areaRepo repository.AreaRepositoryInterface
	tagRepo  repository.TagRepositoryInterface
	geocoder Geocoder
}

func NewAreaService(
	areaRepo repository.AreaRepositoryInterface,
	tagRepo repository.TagRepositoryInterface,
	geocoder Geocoder,
) *AreaService {
	return &AreaService{
		areaRepo: areaRepo,
		tagRepo:  tagRepo,
		geocoder: geocoder,
	}
}

// CreateArea registers a standalone area without any group in it. Only
// operators get this path; regular users create areas together with a group.
func (s *AreaService) CreateArea(ctx context.Context, latitude, longitude float64, radius models.AreaRadius) (*models.Area, error) {
	area := &models.Area{
		Latitude:           latitude,
		Longitude:          longitude,
		Radius:             radius,
		IsActive:           true,
		ApproximateAddress: s.ResolveAddress(ctx, latitude, longitude),
	}
	if err := s.areaRepo.Create(area); err != nil {
		return nil, err
	}
	return area, nil
}

func (s *AreaService) GetArea(areaID uint) (*models.Area, error) {
	return s.areaRepo.FindByID(areaID)
}

func (s *AreaService) GetAllAreas() ([]models.Area, error) {
	return s.areaRepo.FindAll()
}

func (s *AreaService) GetAllTags() ([]models.Tag, error) {
	return s.tagRepo.FindAll()
}

// ResolveAddress fills the display address for a coordinate. Without a
// geocoder, or when the provider fails, the address stays empty.
func (s *AreaService) ResolveAddress(ctx context.Context, latitude, longitude float64) string {
	if s.geocoder == nil {
		return ""
	}
	address, err := s.geocoder.ReverseGeocode(ctx, latitude, longitude)
	if err != nil {
		return ""
	}
	return address
}
