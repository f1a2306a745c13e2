package service

import (
	"errors"
	"strings"

	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/repository"
)

type UserService struct {
	userRepo    repository.UserRepositoryInterface
	settingRepo repository.SettingRepositoryInterface
	tagRepo     repository.TagRepositoryInterface
}

func NewUserService(
	userRepo repository.UserRepositoryInterface,
	settingRepo repository.SettingRepositoryInterface,
	tagRepo repository.TagRepositoryInterface,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		settingRepo: settingRepo,
		tagRepo:     tagRepo,
	}
}

type UpdateProfileInput struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type UpdateSettingInput struct {
	SubscribeToAllGroups        bool   `json:"subscribe_to_all_groups"`
	SubscribeToAllGroupsWithTag bool   `json:"subscribe_to_all_groups_with_tag"`
	TagIDs                      []uint `json:"tag_ids"`
}

func (s *UserService) IsUsernameAvailable(username string) (bool, error) {
	// Normalize username
	username = strings.TrimSpace(username)
	if username == "" {
		return false, errors.New("username cannot be empty")
	}

	_, err := s.userRepo.FindByUsername(username)
	if err != nil {
		// Username not found = available
		return true, nil
	}
	return false, nil
}

func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if input.Username != "" {
		username := strings.TrimSpace(input.Username)

		// Only check availability if username is different
		if username != user.Username {
			available, err := s.IsUsernameAvailable(username)
			if err != nil {
				return nil, err
			}
			if !available {
				return nil, errors.New("username already taken")
			}
			user.Username = username
		}
	}

	if input.FullName != "" {
		user.FullName = strings.TrimSpace(input.FullName)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetAutoSubscriptionSetting returns the user's stored policy. A missing row
// is invalid state: registration always creates one.
func (s *UserService) GetAutoSubscriptionSetting(userID uint) (*models.AutoSubscriptionSetting, error) {
	setting, err := s.settingRepo.FindByUserID(userID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, models.ErrInvalidState
		}
		return nil, err
	}
	return setting, nil
}

// UpdateAutoSubscriptionSetting replaces the user's policy. Both flags raised
// at once is rejected, as is a tag list with unknown ids; nothing is
// persisted on rejection.
func (s *UserService) UpdateAutoSubscriptionSetting(userID uint, input UpdateSettingInput) (*models.AutoSubscriptionSetting, error) {
	if input.SubscribeToAllGroups && input.SubscribeToAllGroupsWithTag {
		return nil, models.ErrInvalidState
	}

	var tags []models.Tag
	if input.SubscribeToAllGroupsWithTag && len(input.TagIDs) > 0 {
		unique := make(map[uint]struct{}, len(input.TagIDs))
		for _, id := range input.TagIDs {
			unique[id] = struct{}{}
		}
		ids := make([]uint, 0, len(unique))
		for id := range unique {
			ids = append(ids, id)
		}
		resolved, err := s.tagRepo.FindByIDs(ids)
		if err != nil {
			return nil, err
		}
		if len(resolved) != len(ids) {
			return nil, &models.PartialTagResolutionError{Requested: len(ids), Resolved: len(resolved)}
		}
		tags = resolved
	}

	setting, err := s.settingRepo.FindByUserID(userID)
	if err != nil {
		if err != models.ErrNotFound {
			return nil, err
		}
		setting = &models.AutoSubscriptionSetting{UserID: userID}
		if err := s.settingRepo.Create(setting); err != nil {
			return nil, err
		}
	}

	setting.SubscribeToAllGroups = input.SubscribeToAllGroups
	setting.SubscribeToAllGroupsWithTag = input.SubscribeToAllGroupsWithTag
	if err := s.settingRepo.Update(setting, tags); err != nil {
		return nil, err
	}
	setting.Tags = tags
	return setting, nil
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}
	return s.userRepo.FindByUsername(username)
}

func (s *UserService) SearchUsers(query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return []models.User{}, nil
	}
	if limit == 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.SearchUsers(query, limit)
}
