package storage

import (
	"context"
	"fmt"

	"github.com/plate-notify/internal/model"
)

type NotificationRepository struct {
	db *Database
}

func NewNotificationRepository(db *Database) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, ownerID int64, plate, occurrence string) (int64, error) {
	var id int64
	query := `
		INSERT INTO notifications (user_id, plate, occurrence, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, ownerID, plate, occurrence, model.NotificationStatusPending).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create notification: %w", err)
	}
	return id, nil
}

// ListByOwner returns the notifications the user submitted, oldest first.
func (r *NotificationRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, plate, occurrence, status, created_at
		FROM notifications WHERE user_id = $1 ORDER BY id ASC
	`
	return r.list(ctx, query, ownerID)
}

// ListNotOwnedBy returns every notification submitted by someone else.
// There is no recipient model: this stands in for an inbox.
func (r *NotificationRepository) ListNotOwnedBy(ctx context.Context, ownerID int64) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, plate, occurrence, status, created_at
		FROM notifications WHERE user_id <> $1 ORDER BY id ASC
	`
	return r.list(ctx, query, ownerID)
}

func (r *NotificationRepository) list(ctx context.Context, query string, ownerID int64) ([]model.Notification, error) {
	notifications := []model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
