package service

import (
	"strings"
	"time"

	"github.com/smurfolan/likkle-backend/internal/models"
)

// In-memory repositories backing the service tests. The reconciliation mock
// mutates the same state the read mocks serve, so a test observes the effect
// of an applied plan the way a database-backed run would.

type mockUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (m *mockUserRepo) Create(user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockUserRepo) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockUserRepo) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockUserRepo) Update(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindLocated() ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.HasLocation() && !u.IsDisabled {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) SearchUsers(query string, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), query) {
			out = append(out, *u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type mockAreaRepo struct {
	areas  map[uint]*models.Area
	nextID uint
}

func newMockAreaRepo() *mockAreaRepo {
	return &mockAreaRepo{areas: make(map[uint]*models.Area), nextID: 1}
}

func (m *mockAreaRepo) Create(area *models.Area) error {
	area.ID = m.nextID
	m.nextID++
	m.areas[area.ID] = area
	return nil
}

func (m *mockAreaRepo) FindByID(id uint) (*models.Area, error) {
	if a, ok := m.areas[id]; ok {
		return a, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockAreaRepo) FindAll() ([]models.Area, error) {
	out := make([]models.Area, 0, len(m.areas))
	for _, a := range m.areas {
		out = append(out, *a)
	}
	return out, nil
}

type mockGroupRepo struct {
	groups  map[uint]*models.Group
	members map[uint]map[uint]bool // group id -> user id
	users   *mockUserRepo
	areas   *mockAreaRepo
	nextID  uint
}

func newMockGroupRepo(users *mockUserRepo, areas *mockAreaRepo) *mockGroupRepo {
	return &mockGroupRepo{
		groups:  make(map[uint]*models.Group),
		members: make(map[uint]map[uint]bool),
		users:   users,
		areas:   areas,
		nextID:  1,
	}
}

func (m *mockGroupRepo) Create(group *models.Group) error {
	group.ID = m.nextID
	m.nextID++
	m.groups[group.ID] = group
	m.members[group.ID] = make(map[uint]bool)
	return nil
}

// withMembers rebuilds the group's associations from current repository
// state, like the gorm preloads do. The embedded area copies in particular
// must reflect activity-flag changes made after the group was created.
func (m *mockGroupRepo) withMembers(g *models.Group) models.Group {
	out := *g
	out.Members = nil
	for uid := range m.members[g.ID] {
		if u, ok := m.users.users[uid]; ok {
			out.Members = append(out.Members, *u)
		}
	}
	out.Areas = nil
	for _, a := range g.Areas {
		if cur, ok := m.areas.areas[a.ID]; ok {
			out.Areas = append(out.Areas, *cur)
		} else {
			out.Areas = append(out.Areas, a)
		}
	}
	return out
}

func (m *mockGroupRepo) FindByID(id uint) (*models.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := m.withMembers(g)
	return &out, nil
}

func (m *mockGroupRepo) FindAllWithAssociations() ([]models.Group, error) {
	out := make([]models.Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, m.withMembers(g))
	}
	return out, nil
}

func (m *mockGroupRepo) FindByNameInArea(name string, areaID uint) (*models.Group, error) {
	for _, g := range m.groups {
		if !strings.EqualFold(g.Name, name) {
			continue
		}
		for _, a := range g.Areas {
			if a.ID == areaID {
				out := m.withMembers(g)
				return &out, nil
			}
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockGroupRepo) GetUserGroups(userID uint) ([]models.Group, error) {
	var out []models.Group
	for gid, users := range m.members {
		if users[userID] {
			out = append(out, m.withMembers(m.groups[gid]))
		}
	}
	return out, nil
}

func (m *mockGroupRepo) GetMembers(groupID uint) ([]models.User, error) {
	var out []models.User
	for uid := range m.members[groupID] {
		if u, ok := m.users.users[uid]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockGroupRepo) IsMember(groupID, userID uint) (bool, error) {
	return m.members[groupID][userID], nil
}

func (m *mockGroupRepo) AttachArea(groupID, areaID uint) error {
	g, ok := m.groups[groupID]
	if !ok {
		return models.ErrNotFound
	}
	g.Areas = append(g.Areas, models.Area{ID: areaID})
	return nil
}

type mockTagRepo struct {
	tags map[uint]models.Tag
}

func newMockTagRepo(tags ...models.Tag) *mockTagRepo {
	m := &mockTagRepo{tags: make(map[uint]models.Tag)}
	for _, t := range tags {
		m.tags[t.ID] = t
	}
	return m
}

func (m *mockTagRepo) FindAll() ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTagRepo) FindByIDs(ids []uint) ([]models.Tag, error) {
	var out []models.Tag
	for _, id := range ids {
		if t, ok := m.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type mockHistoryRepo struct {
	records []models.HistoryGroup
}

func (m *mockHistoryRepo) Append(record *models.HistoryGroup) error {
	record.ID = uint(len(m.records) + 1)
	m.records = append(m.records, *record)
	return nil
}

func (m *mockHistoryRepo) ListByUser(userID uint) ([]models.HistoryGroup, error) {
	var out []models.HistoryGroup
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockHistoryRepo) CountByUserAndGroup(userID, groupID uint) (int64, error) {
	var count int64
	for _, r := range m.records {
		if r.UserID == userID && r.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

type mockSettingRepo struct {
	settings map[uint]*models.AutoSubscriptionSetting
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{settings: make(map[uint]*models.AutoSubscriptionSetting)}
}

func (m *mockSettingRepo) FindByUserID(userID uint) (*models.AutoSubscriptionSetting, error) {
	if s, ok := m.settings[userID]; ok {
		return s, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockSettingRepo) Create(setting *models.AutoSubscriptionSetting) error {
	setting.ID = uint(len(m.settings) + 1)
	m.settings[setting.UserID] = setting
	return nil
}

func (m *mockSettingRepo) Update(setting *models.AutoSubscriptionSetting, tags []models.Tag) error {
	setting.Tags = tags
	m.settings[setting.UserID] = setting
	return nil
}

// mockReconRepo applies plans against the in-memory state, mirroring what
// the transactional repository does against postgres.
type mockReconRepo struct {
	users   *mockUserRepo
	groups  *mockGroupRepo
	areas   *mockAreaRepo
	history *mockHistoryRepo
	applied []*models.ReconciliationPlan
}

func (m *mockReconRepo) Apply(plan *models.ReconciliationPlan) error {
	m.applied = append(m.applied, plan)
	if !plan.HasChanges() {
		return nil
	}
	for _, gid := range plan.LeaveGroupIDs {
		delete(m.groups.members[gid], plan.UserID)
	}
	for _, gid := range plan.JoinGroupIDs {
		if m.groups.members[gid] == nil {
			m.groups.members[gid] = make(map[uint]bool)
		}
		m.groups.members[gid][plan.UserID] = true
	}
	for i := range plan.History {
		_ = m.history.Append(&plan.History[i])
	}
	for _, gid := range plan.DeactivateGroupIDs {
		m.groups.groups[gid].IsActive = false
	}
	for _, aid := range plan.DeactivateAreaIDs {
		m.areas.areas[aid].IsActive = false
	}
	for _, gid := range plan.ReactivateGroupIDs {
		m.groups.groups[gid].IsActive = true
	}
	for _, aid := range plan.ReactivateAreaIDs {
		m.areas.areas[aid].IsActive = true
	}
	if u, ok := m.users.users[plan.UserID]; ok {
		if plan.Latitude != nil {
			u.LastLatitude = plan.Latitude
			u.LastLongitude = plan.Longitude
			u.LocatedAt = plan.LocatedAt
		}
		if plan.DisableUser {
			u.IsDisabled = true
		}
	}
	return nil
}

type mockTokenRepo struct {
	tokens map[string]*models.RefreshToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenRepo) Create(token *models.RefreshToken) error {
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockTokenRepo) FindValidByHash(tokenHash string) (*models.RefreshToken, error) {
	t, ok := m.tokens[tokenHash]
	if !ok || t.IsRevoked() || t.IsExpired(time.Now()) {
		return nil, models.ErrNotFound
	}
	return t, nil
}

func (m *mockTokenRepo) RevokeByHash(tokenHash string) error {
	if t, ok := m.tokens[tokenHash]; ok {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (m *mockTokenRepo) RevokeAllForUser(userID uint) error {
	now := time.Now()
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

type mockNotifier struct {
	sent []*models.GroupNotification
}

func (m *mockNotifier) Notify(notification *models.GroupNotification) {
	m.sent = append(m.sent, notification)
}
