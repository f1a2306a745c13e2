package repository

import (
	"time"

	"github.com/smurfolan/likkle-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Update(user *models.User) error
	// FindLocated returns every enabled user with a stored last coordinate,
	// used for the nearby-user scan when a group is created.
	FindLocated() ([]models.User, error)
	SearchUsers(query string, limit int) ([]models.User, error)
}

// AreaRepositoryInterface defines the contract for area repository operations
type AreaRepositoryInterface interface {
	Create(area *models.Area) error
	FindByID(id uint) (*models.Area, error)
	FindAll() ([]models.Area, error)
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	FindByID(id uint) (*models.Group, error)
	// FindAllWithAssociations loads every group with tags, areas and members,
	// the full read a reconciliation snapshot is built from.
	FindAllWithAssociations() ([]models.Group, error)
	// FindByNameInArea locates a group by exact name among the groups of one
	// area, used to detect recreation of a dormant group.
	FindByNameInArea(name string, areaID uint) (*models.Group, error)
	GetUserGroups(userID uint) ([]models.Group, error)
	GetMembers(groupID uint) ([]models.User, error)
	IsMember(groupID, userID uint) (bool, error)
	AttachArea(groupID, areaID uint) error
}

// TagRepositoryInterface defines the contract for tag repository operations
type TagRepositoryInterface interface {
	FindAll() ([]models.Tag, error)
	FindByIDs(ids []uint) ([]models.Tag, error)
}

// HistoryRepositoryInterface defines the contract for membership history operations.
// History is append-only: no update or delete methods exist on purpose.
type HistoryRepositoryInterface interface {
	Append(record *models.HistoryGroup) error
	ListByUser(userID uint) ([]models.HistoryGroup, error)
	CountByUserAndGroup(userID, groupID uint) (int64, error)
}

// SettingRepositoryInterface defines the contract for auto-subscription settings
type SettingRepositoryInterface interface {
	FindByUserID(userID uint) (*models.AutoSubscriptionSetting, error)
	Create(setting *models.AutoSubscriptionSetting) error
	// Update persists the flags and replaces the subscribed tag set.
	Update(setting *models.AutoSubscriptionSetting, tags []models.Tag) error
}

// ReconciliationRepositoryInterface applies one reconciliation plan as a
// single transaction. Membership-count serialization across concurrent calls
// is the database's job (row locks inside the transaction), which is the
// external guarantee the engine's snapshot-diff design requires.
type ReconciliationRepositoryInterface interface {
	Apply(plan *models.ReconciliationPlan) error
}

// RefreshTokenRepositoryInterface defines the contract for refresh token repository operations
type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	FindValidByHash(tokenHash string) (*models.RefreshToken, error)
	RevokeByHash(tokenHash string) error
	RevokeAllForUser(userID uint) error
}

// PendingNotificationRepositoryInterface defines the contract for the
// offline notification queue
type PendingNotificationRepositoryInterface interface {
	Enqueue(userID, groupID uint, payload string, priority int) error
	GetPendingForUser(userID uint, limit int) ([]models.PendingNotification, error)
	GetRetryable(limit int) ([]models.PendingNotification, error)
	MarkAttempted(id uint, attempts int, nextRetry *time.Time) error
	Delete(id uint) error
	DeleteBatch(ids []uint) error
	CleanupOld(olderThan time.Duration) error
}

// VersionRepositoryInterface defines the contract for app version lookups
type VersionRepositoryInterface interface {
	GetActiveVersion(platform string) (*models.AppVersion, error)
	CreateVersion(version *models.AppVersion) error
}
