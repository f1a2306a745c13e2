package repository

import (
	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/gorm"
)

type ReconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// Apply commits a reconciliation plan in one transaction. Order matters:
// leaves before deactivation so membership counts the cascade relied on hold,
// joins before reactivation so a revived group is never active and empty.
func (r *ReconciliationRepository) Apply(plan *models.ReconciliationPlan) error {
	if !plan.HasChanges() {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(plan.LeaveGroupIDs) > 0 {
			err := tx.Exec(
				"DELETE FROM group_members WHERE user_id = ? AND group_id IN ?",
				plan.UserID, plan.LeaveGroupIDs,
			).Error
			if err != nil {
				return err
			}
		}

		for _, groupID := range plan.JoinGroupIDs {
			err := tx.Exec(
				"INSERT INTO group_members (group_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
				groupID, plan.UserID,
			).Error
			if err != nil {
				return err
			}
		}

		for i := range plan.History {
			if err := tx.Create(&plan.History[i]).Error; err != nil {
				return err
			}
		}

		if len(plan.DeactivateGroupIDs) > 0 {
			err := tx.Model(&models.Group{}).
				Where("id IN ?", plan.DeactivateGroupIDs).
				Update("is_active", false).Error
			if err != nil {
				return err
			}
		}
		if len(plan.DeactivateAreaIDs) > 0 {
			err := tx.Model(&models.Area{}).
				Where("id IN ?", plan.DeactivateAreaIDs).
				Update("is_active", false).Error
			if err != nil {
				return err
			}
		}

		if len(plan.ReactivateGroupIDs) > 0 {
			err := tx.Model(&models.Group{}).
				Where("id IN ?", plan.ReactivateGroupIDs).
				Update("is_active", true).Error
			if err != nil {
				return err
			}
		}
		if len(plan.ReactivateAreaIDs) > 0 {
			err := tx.Model(&models.Area{}).
				Where("id IN ?", plan.ReactivateAreaIDs).
				Update("is_active", true).Error
			if err != nil {
				return err
			}
		}

		updates := map[string]interface{}{}
		if plan.Latitude != nil {
			updates["last_latitude"] = plan.Latitude
			updates["last_longitude"] = plan.Longitude
			updates["located_at"] = plan.LocatedAt
		}
		if plan.DisableUser {
			updates["is_disabled"] = true
		}
		if len(updates) > 0 {
			err := tx.Model(&models.User{}).
				Where("id = ?", plan.UserID).
				Updates(updates).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}
