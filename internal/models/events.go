package models

// Event types pushed to clients over the notification channel.
const (
	EventGroupRecreated      = "group_recreated"
	EventGroupCreatedNewArea = "group_created_new_area"
	EventGroupAttachedToArea = "group_attached_existing_area"
	EventGroupMembersChanged = "group_members_changed"
)

// GroupEvent is the per-recipient payload for a group notification. The
// recipients are the group's current members minus the invoking user;
// IsSubscribed is recipient-specific.
type GroupEvent struct {
	Type         string   `json:"type"`
	GroupID      uint     `json:"group_id"`
	GroupName    string   `json:"group_name"`
	AreaIDs      []uint   `json:"area_ids,omitempty"`
	TagNames     []string `json:"tags,omitempty"`
	MemberCount  int      `json:"member_count"`
	MemberDelta  int      `json:"member_delta,omitempty"`
	IsSubscribed bool     `json:"is_subscribed"`
}

// GroupNotification couples one group event with its recipient set. The
// fan-out layer stamps the per-recipient IsSubscribed flag from Subscribed.
type GroupNotification struct {
	Event        GroupEvent
	InvokingUser uint
	RecipientIDs []uint
	Subscribed   map[uint]bool
}
