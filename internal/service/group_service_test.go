package service

import (
	"errors"
	"testing"

	"github.com/smurfolan/likkle-backend/internal/models"
)

func newGroupFixture() (*fixture, *GroupService) {
	f := newFixture()
	tags := newMockTagRepo(
		models.Tag{ID: 1, Name: "Sport"},
		models.Tag{ID: 2, Name: "Music"},
	)
	svc := NewGroupService(f.groups, f.areas, f.users, tags, f.settings, f.recon, nil, f.notifier)
	return f, svc
}

func locate(u *models.User, lat, lng float64) {
	u.LastLatitude = &lat
	u.LastLongitude = &lng
}

func TestCreateGroupInNewArea(t *testing.T) {
	f, svc := newGroupFixture()
	creator := f.addUser(t, "mira")

	group, err := svc.CreateGroupInNewArea(
		creator.ID, "Runners", []uint{1}, false,
		anchorLat, anchorLng, models.RadiusHundredFiftyM, "pl. Slaveykov",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(group.Areas) != 1 {
		t.Fatalf("areas = %d, want 1", len(group.Areas))
	}
	area := f.areas.areas[group.Areas[0].ID]
	if area.Radius != models.RadiusHundredFiftyM || !area.IsActive {
		t.Errorf("area not created as expected: %+v", area)
	}
	if !f.isMember(t, creator.ID, group.ID) {
		t.Error("creator must be the first member")
	}
	if n, _ := f.history.CountByUserAndGroup(creator.ID, group.ID); n != 1 {
		t.Errorf("history rows = %d, want 1", n)
	}
	if len(group.Tags) != 1 || group.Tags[0].Name != "Sport" {
		t.Errorf("tags = %+v", group.Tags)
	}
}

func TestCreateGroupInvalidRadius(t *testing.T) {
	f, svc := newGroupFixture()
	creator := f.addUser(t, "mira")

	_, err := svc.CreateGroupInNewArea(
		creator.ID, "Runners", nil, false,
		anchorLat, anchorLng, models.AreaRadius(123), "",
	)
	if !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCreateGroupPartialTagResolution(t *testing.T) {
	f, svc := newGroupFixture()
	creator := f.addUser(t, "mira")

	_, err := svc.CreateGroupInNewArea(
		creator.ID, "Runners", []uint{1, 99}, false,
		anchorLat, anchorLng, models.RadiusFiftyMeters, "",
	)
	var partial *models.PartialTagResolutionError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialTagResolutionError, got %v", err)
	}
	if partial.Requested != 2 || partial.Resolved != 1 {
		t.Errorf("partial = %+v", partial)
	}
	if len(f.groups.groups) != 0 {
		t.Error("nothing may be created when tags do not fully resolve")
	}
}

func TestCreateGroupInExistingArea(t *testing.T) {
	f, svc := newGroupFixture()
	creator := f.addUser(t, "mira")
	area := f.addArea(t, anchorLat, anchorLng, models.RadiusHundredFiftyM)

	group, err := svc.CreateGroupInExistingArea(creator.ID, "Locals", nil, false, area.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(group.Areas) != 1 || group.Areas[0].ID != area.ID {
		t.Errorf("group areas = %+v, want existing area", group.Areas)
	}
	if !f.isMember(t, creator.ID, group.ID) {
		t.Error("creator must be a member")
	}
}

func TestCreateGroupRevivesDormantSameName(t *testing.T) {
	f, svc := newGroupFixture()
	creator := f.addUser(t, "mira")
	area := f.addArea(t, anchorLat, anchorLng, models.RadiusHundredFiftyM)
	dormant := f.addGroup(t, "Locals", []*models.Area{area})
	f.groups.groups[dormant.ID].IsActive = false
	f.areas.areas[area.ID].IsActive = false

	group, err := svc.CreateGroupInExistingArea(creator.ID, "locals", nil, false, area.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if group.ID != dormant.ID {
		t.Fatalf("expected the dormant group to be revived, got new id %d", group.ID)
	}
	if !f.groups.groups[dormant.ID].IsActive {
		t.Error("revived group must be active")
	}
	if !f.areas.areas[area.ID].IsActive {
		t.Error("area must follow the revived group back to active")
	}
	if !f.isMember(t, creator.ID, dormant.ID) {
		t.Error("reviving creator must be the first member")
	}
	if n, _ := f.history.CountByUserAndGroup(creator.ID, dormant.ID); n != 1 {
		t.Errorf("history rows = %d, want 1", n)
	}
}

func TestAttachGroupToAreaIsIdempotent(t *testing.T) {
	f, svc := newGroupFixture()
	area1 := f.addArea(t, anchorLat, anchorLng, models.RadiusHundredFiftyM)
	area2 := f.addArea(t, anchorLat, anchorLng+0.02, models.RadiusHundredFiftyM)
	group := f.addGroup(t, "Spanning", []*models.Area{area1})

	attached, err := svc.AttachGroupToArea(group.ID, area2.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attached.Areas) != 2 {
		t.Fatalf("areas = %d, want 2", len(attached.Areas))
	}

	again, err := svc.AttachGroupToArea(group.ID, area2.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again.Areas) != 2 {
		t.Errorf("second attach duplicated the relation: %d areas", len(again.Areas))
	}
}

func TestAttachDormantGroupRejected(t *testing.T) {
	f, svc := newGroupFixture()
	area := f.addArea(t, anchorLat, anchorLng, models.RadiusHundredFiftyM)
	other := f.addArea(t, anchorLat, anchorLng+0.02, models.RadiusHundredFiftyM)
	group := f.addGroup(t, "Dormant", []*models.Area{area})
	f.groups.groups[group.ID].IsActive = false

	if _, err := svc.AttachGroupToArea(group.ID, other.ID); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCreateGroupNotifiesNearbyUsers(t *testing.T) {
	f, svc := newGroupFixture()
	creator := f.addUser(t, "mira")

	eager := f.addUser(t, "eager")
	f.settings.settings[eager.ID].SubscribeToAllGroups = true
	locate(f.users.users[eager.ID], anchorLat, anchorLng)

	passive := f.addUser(t, "passive")
	locate(f.users.users[passive.ID], anchorLat, anchorLng)

	away := f.addUser(t, "away")
	locate(f.users.users[away.ID], farLat, farLng)

	group, err := svc.CreateGroupInNewArea(
		creator.ID, "Locals", nil, false,
		anchorLat, anchorLng, models.RadiusHundredFiftyM, "",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.sent))
	}
	n := f.notifier.sent[0]
	if n.Event.Type != models.EventGroupCreatedNewArea {
		t.Errorf("event type = %q", n.Event.Type)
	}
	if len(n.RecipientIDs) != 2 {
		t.Fatalf("recipients = %v, want the two users inside the area", n.RecipientIDs)
	}
	if !n.Subscribed[eager.ID] {
		t.Error("subscribe-all recipient must be auto-joined")
	}
	if n.Subscribed[passive.ID] {
		t.Error("default-policy recipient must not be auto-joined")
	}
	if !f.isMember(t, eager.ID, group.ID) {
		t.Error("auto-subscribed recipient must actually be a member")
	}
	if f.isMember(t, passive.ID, group.ID) {
		t.Error("passive recipient must not be a member")
	}
}
