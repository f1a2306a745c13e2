package service

import (
	"errors"
	"testing"

	"github.com/smurfolan/likkle-backend/internal/models"
)

func newUserFixture() (*fixture, *UserService) {
	f := newFixture()
	tags := newMockTagRepo(
		models.Tag{ID: 1, Name: "Sport"},
		models.Tag{ID: 2, Name: "Music"},
	)
	return f, NewUserService(f.users, f.settings, tags)
}

func TestIsUsernameAvailable(t *testing.T) {
	f, svc := newUserFixture()
	f.addUser(t, "mira")

	available, err := svc.IsUsernameAvailable("mira")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available {
		t.Error("taken username reported available")
	}

	available, err = svc.IsUsernameAvailable("fresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Error("free username reported taken")
	}

	if _, err := svc.IsUsernameAvailable("  "); err == nil {
		t.Error("blank username must be rejected")
	}
}

func TestUpdateProfileRejectsTakenUsername(t *testing.T) {
	f, svc := newUserFixture()
	f.addUser(t, "mira")
	other := f.addUser(t, "ivo")

	if _, err := svc.UpdateProfile(other.ID, UpdateProfileInput{Username: "mira"}); err == nil {
		t.Error("expected rejection of a taken username")
	}

	updated, err := svc.UpdateProfile(other.ID, UpdateProfileInput{FullName: "Ivo Ivanov"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.FullName != "Ivo Ivanov" {
		t.Errorf("full name = %q", updated.FullName)
	}
}

func TestUpdateSettingMutualExclusion(t *testing.T) {
	f, svc := newUserFixture()
	user := f.addUser(t, "mira")

	_, err := svc.UpdateAutoSubscriptionSetting(user.ID, UpdateSettingInput{
		SubscribeToAllGroups:        true,
		SubscribeToAllGroupsWithTag: true,
	})
	if !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	stored := f.settings.settings[user.ID]
	if stored.SubscribeToAllGroups || stored.SubscribeToAllGroupsWithTag {
		t.Error("rejected update must not change the stored setting")
	}
}

func TestUpdateSettingPartialTagResolution(t *testing.T) {
	f, svc := newUserFixture()
	user := f.addUser(t, "mira")

	_, err := svc.UpdateAutoSubscriptionSetting(user.ID, UpdateSettingInput{
		SubscribeToAllGroupsWithTag: true,
		TagIDs:                      []uint{1, 2, 77},
	})
	var partial *models.PartialTagResolutionError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialTagResolutionError, got %v", err)
	}
	if partial.Requested != 3 || partial.Resolved != 2 {
		t.Errorf("partial = %+v", partial)
	}
	if len(f.settings.settings[user.ID].Tags) != 0 {
		t.Error("rejected update must not persist any tags")
	}
}

func TestUpdateSettingByTag(t *testing.T) {
	f, svc := newUserFixture()
	user := f.addUser(t, "mira")

	setting, err := svc.UpdateAutoSubscriptionSetting(user.ID, UpdateSettingInput{
		SubscribeToAllGroupsWithTag: true,
		TagIDs:                      []uint{1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !setting.SubscribeToAllGroupsWithTag || setting.SubscribeToAllGroups {
		t.Errorf("flags = %+v", setting)
	}
	if len(setting.Tags) != 1 || setting.Tags[0].Name != "Sport" {
		t.Errorf("tags = %+v", setting.Tags)
	}
}

func TestGetSettingMissingIsInvalidState(t *testing.T) {
	_, svc := newUserFixture()
	if _, err := svc.GetAutoSubscriptionSetting(42); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
