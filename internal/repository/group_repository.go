package repository

import (
	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

func (r *GroupRepository) FindByID(id uint) (*models.Group, error) {
	var group models.Group
	err := r.db.Preload("Tags").Preload("Areas").Preload("Members").First(&group, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &group, nil
}

func (r *GroupRepository) FindAllWithAssociations() ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Preload("Tags").Preload("Areas").Preload("Members").Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) FindByNameInArea(name string, areaID uint) (*models.Group, error) {
	var group models.Group
	err := r.db.Joins("JOIN area_groups ON area_groups.group_id = groups.id").
		Where("area_groups.area_id = ? AND LOWER(groups.name) = LOWER(?)", areaID, name).
		Preload("Tags").Preload("Areas").Preload("Members").
		First(&group).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &group, nil
}

func (r *GroupRepository) GetUserGroups(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Preload("Tags").Preload("Areas").Preload("Members").
		Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) GetMembers(groupID uint) ([]models.User, error) {
	var members []models.User
	err := r.db.Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Find(&members).Error
	return members, err
}

func (r *GroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Table("group_members").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) AttachArea(groupID, areaID uint) error {
	return r.db.Model(&models.Group{ID: groupID}).
		Association("Areas").
		Append(&models.Area{ID: areaID})
}
