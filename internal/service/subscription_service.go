package service

import (
	"time"

	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/repository"
	"github.com/smurfolan/likkle-backend/internal/spatial"
)

// Notifier pushes a group notification to connected clients. Implementations
// must not block; the hub queues for offline recipients.
type Notifier interface {
	Notify(notification *models.GroupNotification)
}

// SnapshotCache holds a cached copy of the full area/group read between
// reconciliations.
type SnapshotCache interface {
	Get() ([]models.Area, []models.Group, bool)
	Set(areas []models.Area, groups []models.Group)
	Invalidate()
}

// SubscriptionService reconciles a user's group memberships against the
// spatial state. Every operation reads one snapshot, computes the full plan
// against it and commits the plan in a single transaction.
type SubscriptionService struct {
	userRepo    repository.UserRepositoryInterface
	groupRepo   repository.GroupRepositoryInterface
	areaRepo    repository.AreaRepositoryInterface
	historyRepo repository.HistoryRepositoryInterface
	settingRepo repository.SettingRepositoryInterface
	reconRepo   repository.ReconciliationRepositoryInterface

	snapshotCache SnapshotCache
	notifier      Notifier

	walkingSpeedKmh float64

	// autoCleanup gates the deactivation cascade. With it off, emptied
	// groups and orphaned areas keep their active flag.
	autoCleanup bool
}

func NewSubscriptionService(
	userRepo repository.UserRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	areaRepo repository.AreaRepositoryInterface,
	historyRepo repository.HistoryRepositoryInterface,
	settingRepo repository.SettingRepositoryInterface,
	reconRepo repository.ReconciliationRepositoryInterface,
	snapshotCache SnapshotCache,
	notifier Notifier,
	walkingSpeedKmh float64,
	autoCleanup bool,
) *SubscriptionService {
	return &SubscriptionService{
		userRepo:        userRepo,
		groupRepo:       groupRepo,
		areaRepo:        areaRepo,
		historyRepo:     historyRepo,
		settingRepo:     settingRepo,
		reconRepo:       reconRepo,
		snapshotCache:   snapshotCache,
		notifier:        notifier,
		walkingSpeedKmh: walkingSpeedKmh,
		autoCleanup:     autoCleanup,
	}
}

// snapshotIndex reads the full area/group state, through the cache when one
// is configured, and builds the point-in-time index every decision of one
// call is made against.
func (s *SubscriptionService) snapshotIndex() (*spatial.Index, error) {
	if s.snapshotCache != nil {
		if areas, groups, ok := s.snapshotCache.Get(); ok {
			return spatial.NewIndex(areas, groups), nil
		}
	}
	areas, err := s.areaRepo.FindAll()
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.FindAllWithAssociations()
	if err != nil {
		return nil, err
	}
	if s.snapshotCache != nil {
		s.snapshotCache.Set(areas, groups)
	}
	return spatial.NewIndex(areas, groups), nil
}

func (s *SubscriptionService) invalidateSnapshot() {
	if s.snapshotCache != nil {
		s.snapshotCache.Invalidate()
	}
}

// RelateUserToGroups replaces the user's membership set with exactly the
// given group ids, within the user's current spatial reach. Requesting a
// group whose areas do not cover the coordinate is ignored, and a held
// membership out of reach is left untouched. Dormant groups may be rejoined
// here; doing so reactivates the group and the areas it spans. Unknown group
// ids fail the whole call before anything is committed.
func (s *SubscriptionService) RelateUserToGroups(userID uint, groupIDs []uint, latitude, longitude float64) (*models.ReconciliationResult, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled {
		return nil, models.ErrInvalidState
	}

	ix, err := s.snapshotIndex()
	if err != nil {
		return nil, err
	}
	point := spatial.Point{Latitude: latitude, Longitude: longitude}

	desired := make(map[uint]struct{}, len(groupIDs))
	for _, gid := range groupIDs {
		if _, ok := ix.Group(gid); !ok {
			return nil, models.ErrNotFound
		}
		if !ix.GroupReachableFrom(gid, point) {
			continue
		}
		desired[gid] = struct{}{}
	}

	current, err := s.currentMembership(userID)
	if err != nil {
		return nil, err
	}

	plan := &models.ReconciliationPlan{UserID: userID}
	now := time.Now()
	for gid := range desired {
		if _, member := current[gid]; !member {
			plan.JoinGroupIDs = append(plan.JoinGroupIDs, gid)
			plan.History = append(plan.History, models.HistoryGroup{
				UserID:       userID,
				GroupID:      gid,
				SubscribedAt: now,
			})
		}
	}
	for gid := range current {
		if _, keep := desired[gid]; keep {
			continue
		}
		if !ix.GroupReachableFrom(gid, point) {
			continue
		}
		plan.LeaveGroupIDs = append(plan.LeaveGroupIDs, gid)
	}

	plan.ReactivateGroupIDs, plan.ReactivateAreaIDs = cascadeReactivations(ix, plan.JoinGroupIDs)
	if s.autoCleanup {
		plan.DeactivateGroupIDs, plan.DeactivateAreaIDs = cascadeDeactivations(ix, plan.LeaveGroupIDs)
	}

	if err := s.reconRepo.Apply(plan); err != nil {
		return nil, err
	}
	if len(plan.DeactivateGroupIDs) > 0 || len(plan.ReactivateGroupIDs) > 0 ||
		len(plan.JoinGroupIDs) > 0 || len(plan.LeaveGroupIDs) > 0 {
		s.invalidateSnapshot()
	}

	s.notifyMembershipChanges(userID, ix, plan.JoinGroupIDs, plan.LeaveGroupIDs)

	return planResult(plan), nil
}

// UpdateUserLocation stores the user's new coordinate and reconciles their
// memberships against it: groups whose every area no longer covers the point
// are left, and the auto-subscription policy decides which newly reachable
// active groups are joined. The returned ETA tells the client when the next
// update could first change anything.
func (s *SubscriptionService) UpdateUserLocation(userID uint, latitude, longitude float64) (*models.LocationUpdateResult, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled {
		return nil, models.ErrInvalidState
	}

	ix, err := s.snapshotIndex()
	if err != nil {
		return nil, err
	}
	point := spatial.Point{Latitude: latitude, Longitude: longitude}

	current, err := s.currentMembership(userID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policyFor(userID)
	if err != nil {
		return nil, err
	}

	plan := &models.ReconciliationPlan{UserID: userID}
	now := time.Now()
	plan.Latitude = &latitude
	plan.Longitude = &longitude
	plan.LocatedAt = &now

	// A group spanning several areas is kept as long as any of them still
	// covers the point.
	for gid := range current {
		if !ix.GroupReachableFrom(gid, point) {
			plan.LeaveGroupIDs = append(plan.LeaveGroupIDs, gid)
		}
	}

	// Auto-subscription only ever considers active groups in active areas.
	for gid, subscribe := range policy.Evaluate(ix.GroupsContaining(point, true)) {
		if !subscribe {
			continue
		}
		if _, member := current[gid]; member {
			continue
		}
		plan.JoinGroupIDs = append(plan.JoinGroupIDs, gid)
		plan.History = append(plan.History, models.HistoryGroup{
			UserID:       userID,
			GroupID:      gid,
			SubscribedAt: now,
		})
	}

	if s.autoCleanup {
		plan.DeactivateGroupIDs, plan.DeactivateAreaIDs = cascadeDeactivations(ix, plan.LeaveGroupIDs)
	}

	if err := s.reconRepo.Apply(plan); err != nil {
		return nil, err
	}
	if len(plan.DeactivateGroupIDs) > 0 ||
		len(plan.JoinGroupIDs) > 0 || len(plan.LeaveGroupIDs) > 0 {
		s.invalidateSnapshot()
	}

	s.notifyMembershipChanges(userID, ix, plan.JoinGroupIDs, plan.LeaveGroupIDs)

	groups, err := s.groupRepo.GetUserGroups(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.GroupResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, groups[i].ToResponse())
	}

	return &models.LocationUpdateResult{
		Groups:            responses,
		SecondsToBoundary: ix.SecondsToNearestBoundary(point, s.walkingSpeedKmh),
		Reconciliation:    *planResult(plan),
	}, nil
}

// Disable clears the user's memberships, runs the deactivation cascade the
// leaves trigger and marks the account disabled. History rows survive.
func (s *SubscriptionService) Disable(userID uint) (*models.ReconciliationResult, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsDisabled {
		return nil, models.ErrInvalidState
	}

	ix, err := s.snapshotIndex()
	if err != nil {
		return nil, err
	}
	current, err := s.currentMembership(userID)
	if err != nil {
		return nil, err
	}

	plan := &models.ReconciliationPlan{UserID: userID, DisableUser: true}
	for gid := range current {
		plan.LeaveGroupIDs = append(plan.LeaveGroupIDs, gid)
	}
	if s.autoCleanup {
		plan.DeactivateGroupIDs, plan.DeactivateAreaIDs = cascadeDeactivations(ix, plan.LeaveGroupIDs)
	}

	if err := s.reconRepo.Apply(plan); err != nil {
		return nil, err
	}
	if len(plan.LeaveGroupIDs) > 0 {
		s.invalidateSnapshot()
	}

	s.notifyMembershipChanges(userID, ix, nil, plan.LeaveGroupIDs)

	return planResult(plan), nil
}

// GetHistory returns the user's append-only join history, newest first.
func (s *SubscriptionService) GetHistory(userID uint) ([]models.HistoryGroup, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByUser(userID)
}

// BoundaryETA computes the walking-time estimate to the nearest point at
// which the set of areas covering the coordinate changes.
func (s *SubscriptionService) BoundaryETA(latitude, longitude float64) (float64, error) {
	ix, err := s.snapshotIndex()
	if err != nil {
		return 0, err
	}
	point := spatial.Point{Latitude: latitude, Longitude: longitude}
	return ix.SecondsToNearestBoundary(point, s.walkingSpeedKmh), nil
}

func (s *SubscriptionService) currentMembership(userID uint) (map[uint]struct{}, error) {
	groups, err := s.groupRepo.GetUserGroups(userID)
	if err != nil {
		return nil, err
	}
	current := make(map[uint]struct{}, len(groups))
	for i := range groups {
		current[groups[i].ID] = struct{}{}
	}
	return current, nil
}

func (s *SubscriptionService) policyFor(userID uint) (Policy, error) {
	setting, err := s.settingRepo.FindByUserID(userID)
	if err != nil {
		if err == models.ErrNotFound {
			return PolicyFromSetting(nil)
		}
		return Policy{}, err
	}
	return PolicyFromSetting(setting)
}

// notifyMembershipChanges emits one members-changed event per joined or left
// group to its remaining members. No-op without a notifier.
func (s *SubscriptionService) notifyMembershipChanges(invokingUser uint, ix *spatial.Index, joined, left []uint) {
	if s.notifier == nil {
		return
	}
	emit := func(groupID uint, delta int) {
		group, err := s.groupRepo.FindByID(groupID)
		if err != nil {
			return
		}
		recipients := make([]uint, 0, len(group.Members))
		subscribed := make(map[uint]bool, len(group.Members))
		for _, m := range group.Members {
			if m.ID == invokingUser {
				continue
			}
			recipients = append(recipients, m.ID)
			subscribed[m.ID] = true
		}
		if len(recipients) == 0 {
			return
		}
		s.notifier.Notify(&models.GroupNotification{
			Event: models.GroupEvent{
				Type:        models.EventGroupMembersChanged,
				GroupID:     group.ID,
				GroupName:   group.Name,
				AreaIDs:     ix.AreasOfGroup(group.ID),
				MemberCount: len(group.Members),
				MemberDelta: delta,
			},
			InvokingUser: invokingUser,
			RecipientIDs: recipients,
			Subscribed:   subscribed,
		})
	}
	for _, gid := range joined {
		emit(gid, 1)
	}
	for _, gid := range left {
		emit(gid, -1)
	}
}

func planResult(plan *models.ReconciliationPlan) *models.ReconciliationResult {
	return &models.ReconciliationResult{
		Joined:            plan.JoinGroupIDs,
		Left:              plan.LeaveGroupIDs,
		DeactivatedGroups: plan.DeactivateGroupIDs,
		DeactivatedAreas:  plan.DeactivateAreaIDs,
		ReactivatedGroups: plan.ReactivateGroupIDs,
	}
}
