package notificationsrv

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/funnel/pkg/errx"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/notification"
)

func TestNotificationService_ListNotifications(t *testing.T) {
	svc, repo := newNotificationService(t)
	owner := kernel.NewUserID("user-1")
	repo.seed(t, owner, false)
	repo.seed(t, owner, true)
	repo.seed(t, kernel.NewUserID("user-2"), false)

	t.Run("only the caller's rows are returned", func(t *testing.T) {
		page, err := svc.ListNotifications(context.Background(), notification.ListNotificationsRequest{
			UserID: owner,
		})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
	})

	t.Run("unread only narrows the listing", func(t *testing.T) {
		page, err := svc.ListNotifications(context.Background(), notification.ListNotificationsRequest{
			UserID:     owner,
			UnreadOnly: true,
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.False(t, page.Items[0].Read)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, repo := newNotificationService(t)
	owner := kernel.NewUserID("user-1")
	n := repo.seed(t, owner, false)

	t.Run("the owner flips the flag", func(t *testing.T) {
		got, err := svc.MarkRead(context.Background(), n.ID, owner)
		require.NoError(t, err)
		assert.True(t, got.Read)
		assert.True(t, repo.mustGet(t, n.ID).Read)
	})

	t.Run("marking twice is harmless", func(t *testing.T) {
		before := repo.markReadCalls
		got, err := svc.MarkRead(context.Background(), n.ID, owner)
		require.NoError(t, err)
		assert.True(t, got.Read)
		assert.Equal(t, before, repo.markReadCalls, "already-read rows skip the store")
	})

	t.Run("foreign rows look like they do not exist", func(t *testing.T) {
		_, err := svc.MarkRead(context.Background(), n.ID, kernel.NewUserID("intruder"))
		assert.True(t, errx.IsCode(err, notification.CodeNotificationNotFound))
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		_, err := svc.MarkRead(context.Background(), kernel.NewNotificationID("ghost"), owner)
		assert.True(t, errx.IsCode(err, notification.CodeNotificationNotFound))
	})
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, repo := newNotificationService(t)
	owner := kernel.NewUserID("user-1")
	repo.seed(t, owner, false)
	repo.seed(t, owner, false)
	other := repo.seed(t, kernel.NewUserID("user-2"), false)

	require.NoError(t, svc.MarkAllRead(context.Background(), owner))

	for _, n := range repo.forUser(owner) {
		assert.True(t, n.Read)
	}
	assert.False(t, repo.mustGet(t, other.ID).Read, "other users' rows stay unread")
}

func TestNotificationService_Stats(t *testing.T) {
	svc, repo := newNotificationService(t)
	owner := kernel.NewUserID("user-1")
	repo.seed(t, owner, false)
	repo.seed(t, owner, false)
	repo.seed(t, owner, true)

	stats, err := svc.Stats(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Unread)
	assert.Equal(t, 3, stats.ByType[notification.TypeApplicationStatus])
}

// ============================================================================
// Fakes
// ============================================================================

func newNotificationService(t *testing.T) (*NotificationService, *fakeNotificationRepo) {
	t.Helper()
	repo := &fakeNotificationRepo{byID: make(map[kernel.NotificationID]*notification.Notification)}
	return NewNotificationService(repo), repo
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	byID          map[kernel.NotificationID]*notification.Notification
	seq           int
	markReadCalls int
}

func (r *fakeNotificationRepo) seed(t *testing.T, userID kernel.UserID, read bool) *notification.Notification {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	n := &notification.Notification{
		ID:        kernel.NewNotificationID(fmt.Sprintf("note-%d", r.seq)),
		UserID:    userID,
		Type:      notification.TypeApplicationStatus,
		Title:     "Application status changed",
		Body:      "Your application moved on.",
		Read:      read,
		CreatedAt: time.Now(),
	}
	r.byID[n.ID] = n
	return n
}

func (r *fakeNotificationRepo) mustGet(t *testing.T, id kernel.NotificationID) *notification.Notification {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	require.True(t, ok, "notification %s not stored", id)
	return n
}

func (r *fakeNotificationRepo) forUser(userID kernel.UserID) []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.byID {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[n.ID] = n
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id kernel.NotificationID) (*notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return nil, notification.ErrNotificationNotFound().WithDetail("notification_id", id.String())
	}
	clone := *n
	return &clone, nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, req notification.ListNotificationsRequest) (*kernel.Paginated[notification.Notification], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]notification.Notification, 0)
	for _, n := range r.byID {
		if n.UserID != req.UserID {
			continue
		}
		if req.UnreadOnly && n.Read {
			continue
		}
		items = append(items, *n)
	}
	return &kernel.Paginated[notification.Notification]{
		Items: items,
		Page:  kernel.NewPage(req.Pagination, len(items)),
		Empty: len(items) == 0,
	}, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id kernel.NotificationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return notification.ErrNotificationNotFound()
	}
	r.markReadCalls++
	n.Read = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID kernel.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byID {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Stats(_ context.Context, userID kernel.UserID) (*notification.StatsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &notification.StatsResponse{ByType: make(map[notification.NotificationType]int)}
	for _, n := range r.byID {
		if n.UserID != userID {
			continue
		}
		stats.Total++
		if !n.Read {
			stats.Unread++
		}
		stats.ByType[n.Type]++
	}
	return stats, nil
}
