package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a topic community attached to one or more areas. A group is
// deactivated when its last member leaves and reactivated when it gains a
// member again; group rows are never deleted.
type Group struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string `gorm:"size:100;not null" json:"name"`
	IsActive  bool   `gorm:"default:true;index" json:"is_active"`
	IsPrivate bool   `gorm:"default:false" json:"is_private"`
	CreatorID uint   `gorm:"not null" json:"creator_id"`

	// Associations. Tags are immutable after creation.
	Tags    []Tag  `gorm:"many2many:group_tags" json:"tags,omitempty"`
	Areas   []Area `gorm:"many2many:area_groups" json:"areas,omitempty"`
	Members []User `gorm:"many2many:group_members" json:"members,omitempty"`
}

// GroupResponse is the client-facing shape with ids instead of associations.
type GroupResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	IsActive    bool      `json:"is_active"`
	IsPrivate   bool      `json:"is_private"`
	TagNames    []string  `json:"tags"`
	AreaIDs     []uint    `json:"area_ids"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func (g *Group) ToResponse() GroupResponse {
	tags := make([]string, 0, len(g.Tags))
	for _, t := range g.Tags {
		tags = append(tags, t.Name)
	}
	areaIDs := make([]uint, 0, len(g.Areas))
	for _, a := range g.Areas {
		areaIDs = append(areaIDs, a.ID)
	}
	return GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		IsActive:    g.IsActive,
		IsPrivate:   g.IsPrivate,
		TagNames:    tags,
		AreaIDs:     areaIDs,
		MemberCount: len(g.Members),
		CreatedAt:   g.CreatedAt,
	}
}

// HasTag reports whether the group carries the given tag id.
func (g *Group) HasTag(tagID uint) bool {
	for _, t := range g.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}
