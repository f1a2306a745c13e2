package models

import "time"

// ReconciliationPlan is the full set of mutations one reconciliation call
// produces. It is computed against an in-memory snapshot and applied as a
// single transaction; no step reads area/group state again mid-apply.
type ReconciliationPlan struct {
	UserID uint

	JoinGroupIDs  []uint
	LeaveGroupIDs []uint

	// One history row per join, never per leave.
	History []HistoryGroup

	// Cascade output: groups emptied by the leaves and areas whose groups
	// are now all inactive.
	DeactivateGroupIDs []uint
	DeactivateAreaIDs  []uint

	// Reverse cascade: dormant groups revived by an explicit join, plus the
	// areas that must follow them back to active.
	ReactivateGroupIDs []uint
	ReactivateAreaIDs  []uint

	// New last-known coordinate, when the call carried one.
	Latitude  *float64
	Longitude *float64
	LocatedAt *time.Time

	// DisableUser marks the account disabled after memberships are cleared.
	DisableUser bool
}

// HasChanges reports whether applying the plan would mutate anything.
func (p *ReconciliationPlan) HasChanges() bool {
	return len(p.JoinGroupIDs) > 0 || len(p.LeaveGroupIDs) > 0 ||
		len(p.DeactivateGroupIDs) > 0 || len(p.DeactivateAreaIDs) > 0 ||
		len(p.ReactivateGroupIDs) > 0 || len(p.ReactivateAreaIDs) > 0 ||
		p.Latitude != nil || p.DisableUser
}

// ReconciliationResult reports what a reconciliation actually changed.
type ReconciliationResult struct {
	Joined            []uint `json:"joined_group_ids"`
	Left              []uint `json:"left_group_ids"`
	DeactivatedGroups []uint `json:"deactivated_group_ids,omitempty"`
	DeactivatedAreas  []uint `json:"deactivated_area_ids,omitempty"`
	ReactivatedGroups []uint `json:"reactivated_group_ids,omitempty"`
}

// LocationUpdateResult couples the post-reconciliation group set with the
// boundary ETA so clients can display memberships and schedule the next
// update in one round trip.
type LocationUpdateResult struct {
	Groups            []GroupResponse      `json:"groups"`
	SecondsToBoundary float64              `json:"seconds_to_nearest_boundary"`
	Reconciliation    ReconciliationResult `json:"reconciliation"`
}
