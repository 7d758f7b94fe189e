package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Bekarys01/unisport-system/models"
	"github.com/Bekarys01/unisport-system/realtime"
	"github.com/Bekarys01/unisport-system/repositories"
)

// fakeTxRunner invokes the function directly. The in-memory repositories
// below ignore the executor argument, so service logic runs against plain
// maps instead of a database.
type fakeTxRunner struct{}

func (fakeTxRunner) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

// rollbackTxRunner snapshots the ledger and roster fakes before the function
// runs and restores them when it fails, mirroring what the real runner's
// rollback does to the database.
type rollbackTxRunner struct {
	invites *fakeInviteRepo
	teams   *fakeTeamRepo
}

func (r rollbackTxRunner) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	inviteSnap := r.invites.snapshot()
	teamSnap, memberSnap := r.teams.snapshot()
	if err := fn(nil); err != nil {
		r.invites.restore(inviteSnap)
		r.teams.restore(teamSnap, memberSnap)
		return err
	}
	return nil
}

type fakeInviteEmailer struct {
	mu   sync.Mutex
	sent []string // invitee emails
}

func (e *fakeInviteEmailer) SendInviteEmail(userEmail, inviterName, eventName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, userEmail)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []realtime.Message
}

func (n *fakeNotifier) BroadcastToRoom(room string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if m, ok := message.(realtime.Message); ok {
		n.messages = append(n.messages, m)
	}
}

func (n *fakeNotifier) typesForRoom(room string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var types []string
	for _, m := range n.messages {
		if m.Room == room {
			types = append(types, m.Type)
		}
	}
	return types
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(user models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.nextID
	}
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	u := user
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	u := *user
	r.users[u.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copy := *u
	return &copy, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	u := *user
	r.users[u.ID] = &u
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(ctx context.Context, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = key
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[int]*models.Event
	nextID int

	// lockedReads counts GetByIDForUpdate calls; the fake cannot block, so
	// tests assert the locking read happened instead.
	lockedReads int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[int]*models.Event), nextID: 1}
}

func (r *fakeEventRepo) add(event models.Event) *models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == 0 {
		event.ID = r.nextID
	}
	if event.ID >= r.nextID {
		r.nextID = event.ID + 1
	}
	e := event
	r.events[e.ID] = &e
	return &e
}

func (r *fakeEventRepo) Create(ctx context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.events {
		if existing.Name == event.Name {
			return repositories.ErrEventNameConflict
		}
	}
	event.ID = r.nextID
	r.nextID++
	event.CreatedAt = time.Now()
	e := *event
	r.events[e.ID] = &e
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	copy := *e
	return &copy, nil
}

func (r *fakeEventRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Event, error) {
	r.mu.Lock()
	r.lockedReads++
	r.mu.Unlock()
	return r.GetByID(ctx, exec, id)
}

func (r *fakeEventRepo) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.events))
	for id := range r.events {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.Event, 0, len(ids))
	for _, id := range ids {
		copy := *r.events[id]
		out = append(out, &copy)
	}
	return out, nil
}

func (r *fakeEventRepo) UpdateBannerKey(ctx context.Context, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	e.BannerKey = key
	return nil
}

func (r *fakeEventRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events), nil
}

type fakeTeamRepo struct {
	mu      sync.Mutex
	teams   map[int]*models.Team
	members map[int][]int
	nextID  int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:   make(map[int]*models.Team),
		members: make(map[int][]int),
		nextID:  1,
	}
}

func (r *fakeTeamRepo) snapshot() (map[int]models.Team, map[int][]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	teams := make(map[int]models.Team, len(r.teams))
	for id, t := range r.teams {
		teams[id] = *t
	}
	members := make(map[int][]int, len(r.members))
	for id, m := range r.members {
		members[id] = append([]int(nil), m...)
	}
	return teams, members
}

func (r *fakeTeamRepo) restore(teams map[int]models.Team, members map[int][]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams = make(map[int]*models.Team, len(teams))
	for id, t := range teams {
		copy := t
		r.teams[id] = &copy
	}
	r.members = make(map[int][]int, len(members))
	for id, m := range members {
		r.members[id] = append([]int(nil), m...)
	}
}

func (r *fakeTeamRepo) withMembers(t *models.Team) *models.Team {
	copy := *t
	copy.Members = nil
	for _, id := range r.members[t.ID] {
		copy.Members = append(copy.Members, models.User{ID: id})
	}
	return &copy
}

func (r *fakeTeamRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.EventID == team.EventID && existing.Name == team.Name {
			existing.LeaderID = team.LeaderID
			team.ID = existing.ID
			team.CreatedAt = existing.CreatedAt
			return nil
		}
	}
	team.ID = r.nextID
	r.nextID++
	team.CreatedAt = time.Now()
	t := *team
	r.teams[t.ID] = &t
	return nil
}

func (r *fakeTeamRepo) ReplaceMembers(ctx context.Context, exec repositories.SQLExecutor, teamID int, memberIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[teamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.members[teamID] = append([]int(nil), memberIDs...)
	return nil
}

func (r *fakeTeamRepo) GetByEventAndName(ctx context.Context, exec repositories.SQLExecutor, eventID int, name string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.EventID == eventID && t.Name == name {
			return r.withMembers(t), nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID int) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.teams))
	for id, t := range r.teams {
		if t.EventID == eventID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.withMembers(r.teams[id]))
	}
	return out, nil
}

func (r *fakeTeamRepo) FindByMember(ctx context.Context, exec repositories.SQLExecutor, eventID, userID int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.teams {
		if t.EventID != eventID {
			continue
		}
		if t.LeaderID == userID {
			return r.withMembers(t), nil
		}
		for _, m := range r.members[id] {
			if m == userID {
				return r.withMembers(t), nil
			}
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) RemoveMember(ctx context.Context, exec repositories.SQLExecutor, teamID, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.members[teamID]
	for i, m := range current {
		if m == userID {
			r.members[teamID] = append(current[:i:i], current[i+1:]...)
			return nil
		}
	}
	return repositories.ErrTeamMemberNotFound
}

func (r *fakeTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[teamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, teamID)
	delete(r.members, teamID)
	return nil
}

func (r *fakeTeamRepo) DeleteByEventAndName(ctx context.Context, exec repositories.SQLExecutor, eventID int, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.teams {
		if t.EventID == eventID && t.Name == name {
			delete(r.teams, id)
			delete(r.members, id)
			return nil
		}
	}
	return repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.teams), nil
}

type fakeInviteRepo struct {
	mu      sync.Mutex
	invites map[int]*models.Invite
	nextID  int

	// pending is returned verbatim by ListPendingByInvitee; tests seed it
	// directly instead of reimplementing the projection join.
	pending []*models.PendingInvite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{invites: make(map[int]*models.Invite), nextID: 1}
}

func (r *fakeInviteRepo) snapshot() map[int]models.Invite {
	r.mu.Lock()
	defer r.mu.Unlock()
	invites := make(map[int]models.Invite, len(r.invites))
	for id, inv := range r.invites {
		invites[id] = *inv
	}
	return invites
}

func (r *fakeInviteRepo) restore(invites map[int]models.Invite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invites = make(map[int]*models.Invite, len(invites))
	for id, inv := range invites {
		copy := inv
		r.invites[id] = &copy
	}
}

func (r *fakeInviteRepo) Create(ctx context.Context, exec repositories.SQLExecutor, invite *models.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invites {
		if existing.EventID == invite.EventID &&
			existing.InviterID == invite.InviterID &&
			existing.InviteeID == invite.InviteeID {
			return repositories.ErrInviteConflict
		}
	}
	invite.ID = r.nextID
	r.nextID++
	invite.CreatedAt = time.Now()
	inv := *invite
	r.invites[inv.ID] = &inv
	return nil
}

func (r *fakeInviteRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok {
		return nil, repositories.ErrInviteNotFound
	}
	copy := *inv
	return &copy, nil
}

func (r *fakeInviteRepo) ListByInviter(ctx context.Context, exec repositories.SQLExecutor, eventID, inviterID int, acceptedOnly bool) ([]*models.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.invites))
	for id, inv := range r.invites {
		if inv.EventID != eventID || inv.InviterID != inviterID {
			continue
		}
		if acceptedOnly && !inv.Accepted {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.Invite, 0, len(ids))
	for _, id := range ids {
		copy := *r.invites[id]
		out = append(out, &copy)
	}
	return out, nil
}

func (r *fakeInviteRepo) CountByInviter(ctx context.Context, exec repositories.SQLExecutor, eventID, inviterID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, inv := range r.invites {
		if inv.EventID == eventID && inv.InviterID == inviterID {
			count++
		}
	}
	return count, nil
}

func (r *fakeInviteRepo) MarkAccepted(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[id]
	if !ok {
		return repositories.ErrInviteNotFound
	}
	if inv.Accepted {
		return repositories.ErrInviteAlreadyClosed
	}
	inv.Accepted = true
	return nil
}

func (r *fakeInviteRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[id]; !ok {
		return repositories.ErrInviteNotFound
	}
	delete(r.invites, id)
	return nil
}

func (r *fakeInviteRepo) HasAcceptedForInvitee(ctx context.Context, exec repositories.SQLExecutor, eventID, inviteeID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.EventID == eventID && inv.InviteeID == inviteeID && inv.Accepted {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInviteRepo) ListPendingByInvitee(ctx context.Context, inviteeID int) ([]*models.PendingInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.PendingInvite, 0, len(r.pending))
	for _, p := range r.pending {
		copy := *p
		out = append(out, &copy)
	}
	return out, nil
}

func (r *fakeInviteRepo) CountPending(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, inv := range r.invites {
		if !inv.Accepted {
			count++
		}
	}
	return count, nil
}
