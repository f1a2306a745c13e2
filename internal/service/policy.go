package service

import (
	"github.com/smurfolan/likkle-backend/internal/models"
)

// PolicyKind enumerates the auto-subscription variants. Exactly one applies
// to a user at any time.
type PolicyKind int

const (
	// NoAutoSubscribe means location changes never add memberships.
	NoAutoSubscribe PolicyKind = iota
	// SubscribeAll joins every active group reachable from the new location.
	SubscribeAll
	// SubscribeByTags joins reachable active groups sharing at least one tag
	// with the policy's tag set.
	SubscribeByTags
)

// Policy is a user's resolved auto-subscription policy. TagIDs is populated
// only for SubscribeByTags.
type Policy struct {
	Kind   PolicyKind
	TagIDs map[uint]struct{}
}

// PolicyFromSetting resolves a stored setting into a policy. A missing
// setting or one with both flags raised is invalid state, never repaired
// here: the caller decides whether to surface or recreate.
func PolicyFromSetting(setting *models.AutoSubscriptionSetting) (Policy, error) {
	if setting == nil {
		return Policy{}, models.ErrInvalidState
	}
	if setting.SubscribeToAllGroups && setting.SubscribeToAllGroupsWithTag {
		return Policy{}, models.ErrInvalidState
	}
	if setting.SubscribeToAllGroups {
		return Policy{Kind: SubscribeAll}, nil
	}
	if setting.SubscribeToAllGroupsWithTag {
		tagIDs := make(map[uint]struct{}, len(setting.Tags))
		for _, t := range setting.Tags {
			tagIDs[t.ID] = struct{}{}
		}
		return Policy{Kind: SubscribeByTags, TagIDs: tagIDs}, nil
	}
	return Policy{Kind: NoAutoSubscribe}, nil
}

// Matches reports whether the policy subscribes the user to the group. A
// tag policy with an empty tag set matches nothing.
func (p Policy) Matches(group *models.Group) bool {
	switch p.Kind {
	case SubscribeAll:
		return true
	case SubscribeByTags:
		for _, t := range group.Tags {
			if _, ok := p.TagIDs[t.ID]; ok {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Evaluate maps each candidate group id to the subscribe decision.
func (p Policy) Evaluate(groups []*models.Group) map[uint]bool {
	decisions := make(map[uint]bool, len(groups))
	for _, g := range groups {
		decisions[g.ID] = p.Matches(g)
	}
	return decisions
}
