package notificationinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/meridian-hr/funnel/pkg/kernel"
	"github.com/meridian-hr/funnel/recruitment/notification"
)

// PostgresNotificationRepository implements notification.Repository using
// PostgreSQL. The table is append-only except for the read flag.
type PostgresNotificationRepository struct {
	db *sqlx.DB
}

// NewPostgresNotificationRepository creates a new PostgreSQL notification repository
func NewPostgresNotificationRepository(db *sqlx.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type notificationModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

// toEntity converts database model to domain entity
func (m *notificationModel) toEntity() *notification.Notification {
	return &notification.Notification{
		ID:        kernel.NotificationID(m.ID),
		UserID:    kernel.UserID(m.UserID),
		Type:      notification.NotificationType(m.Type),
		Title:     m.Title,
		Body:      m.Body,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

// fromEntity converts domain entity to database model
func fromEntity(n *notification.Notification) *notificationModel {
	return &notificationModel{
		ID:        string(n.ID),
		UserID:    string(n.UserID),
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

// Create appends one notification row
func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	model := fromEntity(n)

	query := `
		INSERT INTO notifications (
			id, user_id, type, title, body, read, created_at
		) VALUES (
			:id, :user_id, :type, :title, :body, :read, :created_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by ID
func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id kernel.NotificationID) (*notification.Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, read, created_at
		FROM notifications
		WHERE id = $1
	`

	var model notificationModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notification.ErrNotificationNotFound()
		}
		return nil, fmt.Errorf("failed to get notification by id: %w", err)
	}

	return model.toEntity(), nil
}

// ListByUser returns a user's notifications, newest first
func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, req notification.ListNotificationsRequest) (*kernel.Paginated[notification.Notification], error) {
	whereClause := "WHERE user_id = $1"
	args := []interface{}{string(req.UserID)}
	if req.UnreadOnly {
		whereClause += " AND read = FALSE"
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM notifications %s", whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, type, title, body, read, created_at
		FROM notifications
		%s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, whereClause)

	args = append(args, req.Pagination.PageSize, req.Pagination.Offset())

	var models []notificationModel
	if err := r.db.SelectContext(ctx, &models, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	entities := make([]notification.Notification, 0, len(models))
	for _, model := range models {
		entities = append(entities, *model.toEntity())
	}

	return &kernel.Paginated[notification.Notification]{
		Items: entities,
		Page:  kernel.NewPage(req.Pagination, total),
		Empty: len(entities) == 0,
	}, nil
}

// MarkRead flips the read flag of one notification
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id kernel.NotificationID) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return notification.ErrNotificationNotFound()
	}

	return nil
}

// MarkAllRead flips the read flag on every unread notification of a user
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID kernel.UserID) error {
	query := `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`

	_, err := r.db.ExecContext(ctx, query, string(userID))
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

// Stats returns total, unread and per-type counts for a user
func (r *PostgresNotificationRepository) Stats(ctx context.Context, userID kernel.UserID) (*notification.StatsResponse, error) {
	query := `
		SELECT type,
			COUNT(*) AS count,
			COUNT(*) FILTER (WHERE read = FALSE) AS unread
		FROM notifications
		WHERE user_id = $1
		GROUP BY type
	`

	rows := []struct {
		Type   string `db:"type"`
		Count  int    `db:"count"`
		Unread int    `db:"unread"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, string(userID)); err != nil {
		return nil, fmt.Errorf("failed to count notifications by type: %w", err)
	}

	stats := &notification.StatsResponse{
		ByType: make(map[notification.NotificationType]int, len(rows)),
	}
	for _, row := range rows {
		stats.Total += row.Count
		stats.Unread += row.Unread
		stats.ByType[notification.NotificationType(row.Type)] = row.Count
	}

	return stats, nil
}
