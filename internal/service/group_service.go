package service

import (
	"time"

	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/repository"
	"github.com/smurfolan/likkle-backend/internal/spatial"
)

// GroupService creates groups and attaches them to areas. Creation has three
// shapes: a group carried by a brand-new area, a group added to an existing
// area, and an existing group stretched over one more area. Creating a group
// whose name matches a dormant group of the same area revives that group
// instead of duplicating it.
type GroupService struct {
	groupRepo   repository.GroupRepositoryInterface
	areaRepo    repository.AreaRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	tagRepo     repository.TagRepositoryInterface
	settingRepo repository.SettingRepositoryInterface
	reconRepo   repository.ReconciliationRepositoryInterface

	snapshotCache SnapshotCache
	notifier      Notifier
}

func NewGroupService(
	groupRepo repository.GroupRepositoryInterface,
	areaRepo repository.AreaRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	tagRepo repository.TagRepositoryInterface,
	settingRepo repository.SettingRepositoryInterface,
	reconRepo repository.ReconciliationRepositoryInterface,
	snapshotCache SnapshotCache,
	notifier Notifier,
) *GroupService {
	return &GroupService{
		groupRepo:     groupRepo,
		areaRepo:      areaRepo,
		userRepo:      userRepo,
		tagRepo:       tagRepo,
		settingRepo:   settingRepo,
		reconRepo:     reconRepo,
		snapshotCache: snapshotCache,
		notifier:      notifier,
	}
}

// CreateGroupInNewArea creates an area around the given coordinate and a
// group inside it in one flow. The creator becomes the first member.
func (s *GroupService) CreateGroupInNewArea(
	creatorID uint,
	name string,
	tagIDs []uint,
	isPrivate bool,
	latitude, longitude float64,
	radius models.AreaRadius,
	approximateAddress string,
) (*models.Group, error) {
	if !models.ValidRadius(radius) {
		return nil, models.ErrInvalidState
	}
	tags, err := s.resolveTags(tagIDs)
	if err != nil {
		return nil, err
	}

	area := &models.Area{
		Latitude:           latitude,
		Longitude:          longitude,
		Radius:             radius,
		IsActive:           true,
		ApproximateAddress: approximateAddress,
	}
	if err := s.areaRepo.Create(area); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:      name,
		IsActive:  true,
		IsPrivate: isPrivate,
		CreatorID: creatorID,
		Tags:      tags,
		Areas:     []models.Area{*area},
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}
	if err := s.joinCreator(group.ID, creatorID, nil); err != nil {
		return nil, err
	}
	s.invalidateSnapshot()

	created, err := s.groupRepo.FindByID(group.ID)
	if err != nil {
		return nil, err
	}
	s.notifyNearbyUsers(models.EventGroupCreatedNewArea, created, creatorID)
	return created, nil
}

// CreateGroupInExistingArea adds a group to an area that already exists. If
// the area carries a dormant group with the same name, that group is revived
// and returned instead; its member set starts over with the creator.
func (s *GroupService) CreateGroupInExistingArea(
	creatorID uint,
	name string,
	tagIDs []uint,
	isPrivate bool,
	areaID uint,
) (*models.Group, error) {
	area, err := s.areaRepo.FindByID(areaID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.groupRepo.FindByNameInArea(name, area.ID); err == nil {
		if existing.IsActive {
			return nil, models.ErrInvalidState
		}
		return s.recreateGroup(existing, area, creatorID)
	} else if err != models.ErrNotFound {
		return nil, err
	}

	tags, err := s.resolveTags(tagIDs)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:      name,
		IsActive:  true,
		IsPrivate: isPrivate,
		CreatorID: creatorID,
		Tags:      tags,
		Areas:     []models.Area{*area},
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}

	reactivateAreas := []uint(nil)
	if !area.IsActive {
		reactivateAreas = []uint{area.ID}
	}
	if err := s.joinCreator(group.ID, creatorID, reactivateAreas); err != nil {
		return nil, err
	}
	s.invalidateSnapshot()

	created, err := s.groupRepo.FindByID(group.ID)
	if err != nil {
		return nil, err
	}
	s.notifyNearbyUsers(models.EventGroupAttachedToArea, created, creatorID)
	return created, nil
}

// recreateGroup revives a dormant group in place: same id, same tags, fresh
// member set starting with the new creator. The group's areas follow it back
// to active.
func (s *GroupService) recreateGroup(group *models.Group, area *models.Area, creatorID uint) (*models.Group, error) {
	plan := &models.ReconciliationPlan{
		UserID:             creatorID,
		JoinGroupIDs:       []uint{group.ID},
		ReactivateGroupIDs: []uint{group.ID},
		History: []models.HistoryGroup{{
			UserID:       creatorID,
			GroupID:      group.ID,
			SubscribedAt: time.Now(),
		}},
	}
	for _, a := range group.Areas {
		if !a.IsActive {
			plan.ReactivateAreaIDs = append(plan.ReactivateAreaIDs, a.ID)
		}
	}
	if err := s.reconRepo.Apply(plan); err != nil {
		return nil, err
	}
	s.invalidateSnapshot()

	revived, err := s.groupRepo.FindByID(group.ID)
	if err != nil {
		return nil, err
	}
	s.notifyNearbyUsers(models.EventGroupRecreated, revived, creatorID)
	return revived, nil
}

// AttachGroupToArea stretches an existing group over one more existing area.
// Membership does not change; users near the area learn the group became
// reachable.
func (s *GroupService) AttachGroupToArea(groupID, areaID uint) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, models.ErrInvalidState
	}
	area, err := s.areaRepo.FindByID(areaID)
	if err != nil {
		return nil, err
	}
	for _, a := range group.Areas {
		if a.ID == area.ID {
			return group, nil
		}
	}
	if err := s.groupRepo.AttachArea(group.ID, area.ID); err != nil {
		return nil, err
	}
	s.invalidateSnapshot()

	attached, err := s.groupRepo.FindByID(group.ID)
	if err != nil {
		return nil, err
	}
	s.notifyNearbyUsers(models.EventGroupAttachedToArea, attached, group.CreatorID)
	return attached, nil
}

func (s *GroupService) GetGroup(groupID uint) (*models.Group, error) {
	return s.groupRepo.FindByID(groupID)
}

func (s *GroupService) GetAllGroups() ([]models.Group, error) {
	return s.groupRepo.FindAllWithAssociations()
}

func (s *GroupService) GetUserGroups(userID uint) ([]models.Group, error) {
	return s.groupRepo.GetUserGroups(userID)
}

func (s *GroupService) GetGroupMembers(groupID uint) ([]models.User, error) {
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		return nil, err
	}
	return s.groupRepo.GetMembers(groupID)
}

func (s *GroupService) IsMember(groupID, userID uint) (bool, error) {
	return s.groupRepo.IsMember(groupID, userID)
}

// resolveTags loads the requested tag ids and rejects the whole list when
// any of them is unknown.
func (s *GroupService) resolveTags(tagIDs []uint) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	unique := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		unique[id] = struct{}{}
	}
	ids := make([]uint, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	tags, err := s.tagRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, &models.PartialTagResolutionError{Requested: len(ids), Resolved: len(tags)}
	}
	return tags, nil
}

func (s *GroupService) joinCreator(groupID, creatorID uint, reactivateAreaIDs []uint) error {
	return s.reconRepo.Apply(&models.ReconciliationPlan{
		UserID:            creatorID,
		JoinGroupIDs:      []uint{groupID},
		ReactivateAreaIDs: reactivateAreaIDs,
		History: []models.HistoryGroup{{
			UserID:       creatorID,
			GroupID:      groupID,
			SubscribedAt: time.Now(),
		}},
	})
}

func (s *GroupService) invalidateSnapshot() {
	if s.snapshotCache != nil {
		s.snapshotCache.Invalidate()
	}
}

// notifyNearbyUsers fans a group event out to every located user standing
// inside one of the group's areas, creator excluded. A recipient whose
// auto-subscription policy matches the group is joined on the spot and sees
// the event with is_subscribed set.
func (s *GroupService) notifyNearbyUsers(eventType string, group *models.Group, creatorID uint) {
	if s.notifier == nil {
		return
	}
	located, err := s.userRepo.FindLocated()
	if err != nil {
		return
	}

	var recipients []uint
	subscribed := make(map[uint]bool)
	now := time.Now()
	for i := range located {
		u := &located[i]
		if u.ID == creatorID || !u.HasLocation() {
			continue
		}
		point := spatial.Point{Latitude: *u.LastLatitude, Longitude: *u.LastLongitude}
		if !insideAny(group.Areas, point) {
			continue
		}
		recipients = append(recipients, u.ID)

		policy, err := s.policyFor(u.ID)
		if err != nil {
			subscribed[u.ID] = false
			continue
		}
		if group.IsActive && policy.Matches(group) {
			err := s.reconRepo.Apply(&models.ReconciliationPlan{
				UserID:       u.ID,
				JoinGroupIDs: []uint{group.ID},
				History: []models.HistoryGroup{{
					UserID:       u.ID,
					GroupID:      group.ID,
					SubscribedAt: now,
				}},
			})
			subscribed[u.ID] = err == nil
		} else {
			subscribed[u.ID] = false
		}
	}
	if len(recipients) == 0 {
		return
	}

	areaIDs := make([]uint, 0, len(group.Areas))
	for _, a := range group.Areas {
		areaIDs = append(areaIDs, a.ID)
	}
	tagNames := make([]string, 0, len(group.Tags))
	for _, t := range group.Tags {
		tagNames = append(tagNames, t.Name)
	}
	s.notifier.Notify(&models.GroupNotification{
		Event: models.GroupEvent{
			Type:        eventType,
			GroupID:     group.ID,
			GroupName:   group.Name,
			AreaIDs:     areaIDs,
			TagNames:    tagNames,
			MemberCount: len(group.Members),
		},
		InvokingUser: creatorID,
		RecipientIDs: recipients,
		Subscribed:   subscribed,
	})
}

func (s *GroupService) policyFor(userID uint) (Policy, error) {
	setting, err := s.settingRepo.FindByUserID(userID)
	if err != nil {
		if err == models.ErrNotFound {
			return PolicyFromSetting(nil)
		}
		return Policy{}, err
	}
	return PolicyFromSetting(setting)
}

func insideAny(areas []models.Area, p spatial.Point) bool {
	for i := range areas {
		a := &areas[i]
		if !a.IsActive {
			continue
		}
		center := spatial.Point{Latitude: a.Latitude, Longitude: a.Longitude}
		if spatial.DistanceMeters(p, center) <= float64(a.Radius) {
			return true
		}
	}
	return false
}
