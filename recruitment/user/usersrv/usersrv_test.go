package usersrv

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/iam/auth"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/notification"
	"github.com/meridian-hr/funnel/recruitment/user"
)

const strongPassword = "correct horse battery staple"

func TestUserService_CreateUser(t *testing.T) {
	t.Run("admin-created staff start active", func(t *testing.T) {
		svc, deps := newUserService(t)

		resp, err := svc.CreateUser(context.Background(), user.CreateUserRequest{
			Email:     "rec@example.com",
			Password:  strongPassword,
			Role:      auth.RoleRecruiter,
			FirstName: "Rita",
			LastName:  "Recruiter",
			Sexe:      user.SexeFemale,
		})
		require.NoError(t, err)

		assert.Equal(t, auth.StatusActive, resp.Status)
		assert.Equal(t, auth.RoleRecruiter, resp.Role)

		stored := deps.users.mustGet(t, resp.ID)
		assert.Equal(t, "hashed:"+strongPassword, stored.PasswordHash)
	})

	t.Run("the response never leaks the hash", func(t *testing.T) {
		svc, _ := newUserService(t)

		resp, err := svc.CreateUser(context.Background(), user.CreateUserRequest{
			Email:     "rec@example.com",
			Password:  strongPassword,
			Role:      auth.RoleObserver,
			FirstName: "Omar",
			LastName:  "Observer",
			Sexe:      user.SexeMale,
		})
		require.NoError(t, err)

		// UserResponse has no hash field; spot-check a couple of values.
		assert.Equal(t, kernel.Email("rec@example.com"), resp.Email)
		assert.Equal(t, kernel.FirstName("Omar"), resp.FirstName)
	})

	t.Run("weak passwords are refused", func(t *testing.T) {
		svc, deps := newUserService(t)

		_, err := svc.CreateUser(context.Background(), user.CreateUserRequest{
			Email:    "rec@example.com",
			Password: "short",
			Role:     auth.RoleRecruiter,
			Sexe:     user.SexeFemale,
		})
		assert.True(t, errx.IsCode(err, auth.CodeWeakPassword))
		assert.Empty(t, deps.users.byID)
	})

	t.Run("candidates need a candidate status", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.CreateUser(context.Background(), user.CreateUserRequest{
			Email:    "cand@example.com",
			Password: strongPassword,
			Role:     auth.RoleCandidate,
			Sexe:     user.SexeMale,
		})
		assert.True(t, errx.IsCode(err, user.CodeMissingCandidateInfo))
	})
}

func TestUserService_ActivateUser(t *testing.T) {
	t.Run("activates and resolves the open access request", func(t *testing.T) {
		svc, deps := newUserService(t)
		pending := deps.users.seedCandidate(auth.StatusPending)
		request := deps.requests.seedPending(pending.ID)
		admin := kernel.NewUserID("admin-1")

		resp, err := svc.ActivateUser(context.Background(), pending.ID, admin)
		require.NoError(t, err)

		assert.Equal(t, auth.StatusActive, resp.Status)

		resolved := deps.requests.mustGet(t, request.ID)
		assert.Equal(t, user.AccessRequestApproved, resolved.Status)
		require.NotNil(t, resolved.ApproverID)
		assert.Equal(t, admin, *resolved.ApproverID)

		notes := deps.notifications.forUser(pending.ID)
		require.Len(t, notes, 1)
		assert.Equal(t, notification.TypeAccountActivated, notes[0].Type)
	})

	t.Run("works without an access request", func(t *testing.T) {
		svc, deps := newUserService(t)
		blocked := deps.users.seedCandidate(auth.StatusBlocked)

		resp, err := svc.ActivateUser(context.Background(), blocked.ID, kernel.NewUserID("admin-1"))
		require.NoError(t, err)
		assert.Equal(t, auth.StatusActive, resp.Status)
	})

	t.Run("an active account conflicts", func(t *testing.T) {
		svc, deps := newUserService(t)
		active := deps.users.seedCandidate(auth.StatusActive)

		_, err := svc.ActivateUser(context.Background(), active.ID, kernel.NewUserID("admin-1"))
		assert.True(t, errx.IsCode(err, user.CodeUserAlreadyActive))
	})
}

func TestUserService_BlockUser(t *testing.T) {
	t.Run("blocks and kills the sessions", func(t *testing.T) {
		svc, deps := newUserService(t)
		active := deps.users.seedCandidate(auth.StatusActive)
		deps.tokens.seedLive(active.ID)

		resp, err := svc.BlockUser(context.Background(), active.ID)
		require.NoError(t, err)

		assert.Equal(t, auth.StatusBlocked, resp.Status)
		assert.Equal(t, []kernel.UserID{active.ID}, deps.tokens.revokedUsers)
	})

	t.Run("unknown users are not found", func(t *testing.T) {
		svc, _ := newUserService(t)

		_, err := svc.BlockUser(context.Background(), kernel.NewUserID("ghost"))
		assert.True(t, errx.IsCode(err, user.CodeUserNotFound))
	})
}

func TestUserService_UnblockUser(t *testing.T) {
	svc, deps := newUserService(t)
	blocked := deps.users.seedCandidate(auth.StatusBlocked)

	resp, err := svc.UnblockUser(context.Background(), blocked.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.StatusActive, resp.Status)

	t.Run("an active account conflicts", func(t *testing.T) {
		_, err := svc.UnblockUser(context.Background(), blocked.ID)
		assert.True(t, errx.IsCode(err, user.CodeUserNotBlocked))
	})
}

func TestUserService_AccessRequests(t *testing.T) {
	t.Run("approval activates the pending account", func(t *testing.T) {
		svc, deps := newUserService(t)
		pending := deps.users.seedCandidate(auth.StatusPending)
		request := deps.requests.seedPending(pending.ID)
		admin := kernel.NewUserID("admin-1")

		resp, err := svc.ApproveAccessRequest(context.Background(), request.ID, admin)
		require.NoError(t, err)

		assert.Equal(t, user.AccessRequestApproved, resp.Status)
		assert.Equal(t, auth.StatusActive, resp.User.Status)
		assert.Equal(t, auth.StatusActive, deps.users.mustGet(t, pending.ID).Status)

		notes := deps.notifications.forUser(pending.ID)
		require.Len(t, notes, 1)
		assert.Equal(t, notification.TypeAccountActivated, notes[0].Type)
	})

	t.Run("approving twice conflicts", func(t *testing.T) {
		svc, deps := newUserService(t)
		pending := deps.users.seedCandidate(auth.StatusPending)
		request := deps.requests.seedPending(pending.ID)
		admin := kernel.NewUserID("admin-1")

		_, err := svc.ApproveAccessRequest(context.Background(), request.ID, admin)
		require.NoError(t, err)

		_, err = svc.ApproveAccessRequest(context.Background(), request.ID, admin)
		assert.True(t, errx.IsCode(err, user.CodeAccessRequestResolved))
	})

	t.Run("rejection leaves the account pending", func(t *testing.T) {
		svc, deps := newUserService(t)
		pending := deps.users.seedCandidate(auth.StatusPending)
		request := deps.requests.seedPending(pending.ID)

		resp, err := svc.RejectAccessRequest(context.Background(), request.ID, kernel.NewUserID("admin-1"))
		require.NoError(t, err)

		assert.Equal(t, user.AccessRequestRejected, resp.Status)
		assert.Equal(t, auth.StatusPending, deps.users.mustGet(t, pending.ID).Status)
		assert.Empty(t, deps.notifications.forUser(pending.ID))
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	strPtr := func(s string) *string { return &s }

	t.Run("a missing profile starts from zero values", func(t *testing.T) {
		svc, deps := newUserService(t)
		candidate := deps.users.seedCandidate(auth.StatusActive)

		resp, err := svc.UpdateProfile(context.Background(), candidate.ID, user.UpdateProfileRequest{
			YearsExperience: intPtr(3),
			Education:       strPtr("MSc"),
		})
		require.NoError(t, err)

		assert.Equal(t, 3, resp.YearsExperience)
		assert.Equal(t, "MSc", resp.Education)
		assert.Equal(t, candidate.ID, resp.UserID)
	})

	t.Run("untouched fields survive a partial update", func(t *testing.T) {
		svc, deps := newUserService(t)
		candidate := deps.users.seedCandidate(auth.StatusActive)
		deps.profiles.seed(&user.CandidateProfile{
			UserID:          candidate.ID,
			Skills:          []string{"go"},
			YearsExperience: 5,
			Education:       "BSc",
		})

		resp, err := svc.UpdateProfile(context.Background(), candidate.ID, user.UpdateProfileRequest{
			YearsExperience: intPtr(6),
		})
		require.NoError(t, err)

		assert.Equal(t, 6, resp.YearsExperience)
		assert.Equal(t, []string{"go"}, resp.Skills)
		assert.Equal(t, "BSc", resp.Education)
	})

	t.Run("invalid updates never persist", func(t *testing.T) {
		svc, deps := newUserService(t)
		candidate := deps.users.seedCandidate(auth.StatusActive)

		_, err := svc.UpdateProfile(context.Background(), candidate.ID, user.UpdateProfileRequest{
			YearsExperience: intPtr(-1),
		})
		assert.True(t, errx.IsCode(err, user.CodeInvalidProfile))
		assert.Empty(t, deps.profiles.byUser)
	})
}

// ============================================================================
// Fakes
// ============================================================================

type serviceDeps struct {
	users         *fakeUserRepo
	profiles      *fakeProfileRepo
	requests      *fakeAccessRequestRepo
	tokens        *fakeRefreshTokenRepo
	notifications *fakeNotificationRepo
}

func newUserService(t *testing.T) (*UserService, *serviceDeps) {
	t.Helper()
	deps := &serviceDeps{
		users:         &fakeUserRepo{byID: make(map[kernel.UserID]*user.User)},
		profiles:      &fakeProfileRepo{byUser: make(map[kernel.UserID]*user.CandidateProfile)},
		requests:      &fakeAccessRequestRepo{byID: make(map[kernel.AccessRequestID]*user.AccessRequest)},
		tokens:        &fakeRefreshTokenRepo{},
		notifications: &fakeNotificationRepo{},
	}
	svc := NewUserService(deps.users, deps.profiles, deps.requests, deps.tokens, deps.notifications, &stubPasswordService{})
	return svc, deps
}

type stubPasswordService struct{}

func (stubPasswordService) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (stubPasswordService) Verify(hash, plain string) error {
	if hash != "hashed:"+plain {
		return auth.ErrInvalidCredentials()
	}
	return nil
}
func (stubPasswordService) DummyVerify(string) {}

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[kernel.UserID]*user.User
	seq  int
}

func (r *fakeUserRepo) seedCandidate(status auth.UserStatus) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	u := &user.User{
		ID:              kernel.NewUserID(fmt.Sprintf("cand-%d", r.seq)),
		Email:           kernel.NewEmail("jane@example.com"),
		PasswordHash:    "hashed:" + strongPassword,
		Role:            auth.RoleCandidate,
		Status:          status,
		FirstName:       kernel.FirstName("Jane"),
		LastName:        kernel.LastName("Doe"),
		Sexe:            user.SexeFemale,
		CandidateStatus: auth.CandidateInternal,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	r.byID[u.ID] = u
	return u
}

func (r *fakeUserRepo) mustGet(t *testing.T, id kernel.UserID) *user.User {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	require.True(t, ok, "user %s not stored", id)
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) CreateCandidate(_ context.Context, u *user.User, _ *user.CandidateProfile, _ *user.AccessRequest) error {
	return r.Create(context.Background(), u)
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[u.ID]; !ok {
		return user.ErrUserNotFound()
	}
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id kernel.UserID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound()
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email kernel.Email) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound()
}

func (r *fakeUserRepo) List(_ context.Context, req user.ListUsersRequest) (*kernel.Paginated[user.User], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]user.User, 0, len(r.byID))
	for _, u := range r.byID {
		items = append(items, *u)
	}
	return &kernel.Paginated[user.User]{
		Items: items,
		Page:  kernel.NewPage(req.Pagination, len(items)),
		Empty: len(items) == 0,
	}, nil
}

type fakeProfileRepo struct {
	mu     sync.Mutex
	byUser map[kernel.UserID]*user.CandidateProfile
}

func (r *fakeProfileRepo) seed(p *user.CandidateProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[p.UserID] = p
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *user.CandidateProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[p.UserID] = p
	return nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID kernel.UserID) (*user.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byUser[userID]
	if !ok {
		return nil, user.ErrProfileNotFound()
	}
	clone := *p
	return &clone, nil
}

type fakeAccessRequestRepo struct {
	mu   sync.Mutex
	byID map[kernel.AccessRequestID]*user.AccessRequest
}

func (r *fakeAccessRequestRepo) seedPending(userID kernel.UserID) *user.AccessRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	req := &user.AccessRequest{
		ID:        kernel.NewAccessRequestID("req-" + userID.String()),
		UserID:    userID,
		Status:    user.AccessRequestPending,
		CreatedAt: time.Now(),
	}
	r.byID[req.ID] = req
	return req
}

func (r *fakeAccessRequestRepo) mustGet(t *testing.T, id kernel.AccessRequestID) *user.AccessRequest {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	require.True(t, ok, "access request %s not stored", id)
	return req
}

func (r *fakeAccessRequestRepo) Update(_ context.Context, req *user.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[req.ID] = req
	return nil
}

func (r *fakeAccessRequestRepo) GetByID(_ context.Context, id kernel.AccessRequestID) (*user.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, user.ErrAccessRequestNotFound()
	}
	return req, nil
}

func (r *fakeAccessRequestRepo) GetPendingByUserID(_ context.Context, userID kernel.UserID) (*user.AccessRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.byID {
		if req.UserID == userID && req.Status == user.AccessRequestPending {
			return req, nil
		}
	}
	return nil, user.ErrAccessRequestNotFound()
}

func (r *fakeAccessRequestRepo) ListPending(_ context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[user.AccessRequestResponse], error) {
	return &kernel.Paginated[user.AccessRequestResponse]{
		Page:  kernel.NewPage(pagination, 0),
		Empty: true,
	}, nil
}

type fakeRefreshTokenRepo struct {
	mu           sync.Mutex
	live         map[kernel.UserID]int
	revokedUsers []kernel.UserID
}

func (r *fakeRefreshTokenRepo) seedLive(id kernel.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.live == nil {
		r.live = make(map[kernel.UserID]int)
	}
	r.live[id]++
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, tok *user.RefreshToken) error {
	r.seedLive(tok.UserID)
	return nil
}

func (r *fakeRefreshTokenRepo) GetByHash(context.Context, string) (*user.RefreshToken, error) {
	return nil, auth.ErrTokenInvalid()
}

func (r *fakeRefreshTokenRepo) Revoke(context.Context, string) error {
	return auth.ErrTokenInvalid()
}

func (r *fakeRefreshTokenRepo) RevokeAllForUser(_ context.Context, id kernel.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
	r.revokedUsers = append(r.revokedUsers, id)
	return nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	notes []*notification.Notification
}

func (r *fakeNotificationRepo) forUser(id kernel.UserID) []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.notes {
		if n.UserID == id {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

func (r *fakeNotificationRepo) GetByID(context.Context, kernel.NotificationID) (*notification.Notification, error) {
	return nil, notification.ErrNotificationNotFound()
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, req notification.ListNotificationsRequest) (*kernel.Paginated[notification.Notification], error) {
	return &kernel.Paginated[notification.Notification]{
		Page:  kernel.NewPage(req.Pagination, 0),
		Empty: true,
	}, nil
}

func (r *fakeNotificationRepo) MarkRead(context.Context, kernel.NotificationID) error { return nil }

func (r *fakeNotificationRepo) MarkAllRead(context.Context, kernel.UserID) error { return nil }

func (r *fakeNotificationRepo) Stats(context.Context, kernel.UserID) (*notification.StatsResponse, error) {
	return &notification.StatsResponse{ByType: map[notification.NotificationType]int{}}, nil
}
