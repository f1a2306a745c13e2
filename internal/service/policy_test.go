package service

import (
	"errors"
	"testing"

	"github.com/smurfolan/likkle-backend/internal/models"
)

func TestPolicyFromSettingVariants(t *testing.T) {
	tests := []struct {
		name     string
		setting  *models.AutoSubscriptionSetting
		wantKind PolicyKind
		wantErr  bool
	}{
		{
			name:    "missing setting",
			setting: nil,
			wantErr: true,
		},
		{
			name: "both flags raised",
			setting: &models.AutoSubscriptionSetting{
				SubscribeToAllGroups:        true,
				SubscribeToAllGroupsWithTag: true,
			},
			wantErr: true,
		},
		{
			name:     "default",
			setting:  &models.AutoSubscriptionSetting{},
			wantKind: NoAutoSubscribe,
		},
		{
			name:     "subscribe all",
			setting:  &models.AutoSubscriptionSetting{SubscribeToAllGroups: true},
			wantKind: SubscribeAll,
		},
		{
			name: "subscribe by tags",
			setting: &models.AutoSubscriptionSetting{
				SubscribeToAllGroupsWithTag: true,
				Tags:                        []models.Tag{{ID: 3, Name: "Sport"}},
			},
			wantKind: SubscribeByTags,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := PolicyFromSetting(tt.setting)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidState) {
					t.Fatalf("expected ErrInvalidState, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if policy.Kind != tt.wantKind {
				t.Errorf("kind = %d, want %d", policy.Kind, tt.wantKind)
			}
		})
	}
}

func TestPolicyEvaluateByTag(t *testing.T) {
	sport := models.Tag{ID: 1, Name: "Sport"}
	music := models.Tag{ID: 2, Name: "Music"}

	policy, err := PolicyFromSetting(&models.AutoSubscriptionSetting{
		SubscribeToAllGroupsWithTag: true,
		Tags:                        []models.Tag{sport},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	running := &models.Group{ID: 10, Name: "Morning runs", Tags: []models.Tag{sport}}
	jazz := &models.Group{ID: 11, Name: "Jazz nights", Tags: []models.Tag{music}}
	both := &models.Group{ID: 12, Name: "Dance runs", Tags: []models.Tag{sport, music}}
	untagged := &models.Group{ID: 13, Name: "Chat"}

	decisions := policy.Evaluate([]*models.Group{running, jazz, both, untagged})

	want := map[uint]bool{10: true, 11: false, 12: true, 13: false}
	for gid, expected := range want {
		if decisions[gid] != expected {
			t.Errorf("group %d: decision = %v, want %v", gid, decisions[gid], expected)
		}
	}
}

func TestPolicyEmptyTagSetMatchesNothing(t *testing.T) {
	policy, err := PolicyFromSetting(&models.AutoSubscriptionSetting{
		SubscribeToAllGroupsWithTag: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := &models.Group{ID: 1, Tags: []models.Tag{{ID: 5}}}
	if policy.Matches(g) {
		t.Error("empty tag set must not match any group")
	}
}

func TestPolicySubscribeAllMatchesUntagged(t *testing.T) {
	policy, err := PolicyFromSetting(&models.AutoSubscriptionSetting{SubscribeToAllGroups: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !policy.Matches(&models.Group{ID: 1}) {
		t.Error("subscribe-all must match a group without tags")
	}
}
