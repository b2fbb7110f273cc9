package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/models"
	"github.com/voltbridge/voltbridge/internal/notifications"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
)

// Notification event types.
const (
	NotificationHostRequestDecided = "host_request_decided"
	NotificationBookingCreated     = "booking_created"
	NotificationBookingCancelled   = "booking_cancelled"
	NotificationBookingCompleted   = "booking_completed"
)

// NotificationService persists in-app notifications and pushes them to
// connected clients through the hub.
type NotificationService struct {
	db  *gorm.DB
	hub *notifications.Hub
}

// NewNotificationService constructs a NotificationService. The hub is
// optional; without it notifications are stored but not pushed live.
func NewNotificationService(db *gorm.DB, hub *notifications.Hub) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service requires a database handle")
	}
	return &NotificationService{db: db, hub: hub}, nil
}

// NotifyInput describes a notification to create for a user.
type NotifyInput struct {
	UserID   string
	Type     string
	Title    string
	Message  string
	Metadata map[string]any
}

// Notify stores the notification and publishes it to the user's open
// connections.
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	if input.UserID == "" || input.Type == "" {
		return nil, apperrors.NewValidation([]string{"user_id", "type"}, "user id and type are required")
	}

	notification := &models.Notification{
		UserID:  input.UserID,
		Type:    input.Type,
		Title:   input.Title,
		Message: input.Message,
	}

	var metadata json.RawMessage
	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, apperrors.Wrap(err, "encode notification metadata")
		}
		metadata = raw
		notification.Metadata = datatypes.JSON(raw)
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, apperrors.NewStorage(err)
	}

	if s.hub != nil {
		s.hub.Publish(input.UserID, notifications.Event{
			Type:     input.Type,
			Title:    input.Title,
			Message:  input.Message,
			Metadata: metadata,
		})
	}

	return notification, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, p Pagination) ([]models.Notification, int64, error) {
	ctx = ensureContext(ctx)
	p = normalizePagination(p)

	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	var items []models.Notification
	if err := query.Order("created_at DESC").Limit(p.PerPage).Offset(p.offset()).Find(&items).Error; err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	return items, total, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	ctx = ensureContext(ctx)

	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	if res.Error != nil {
		return apperrors.NewStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": &now}).Error
	if err != nil {
		return apperrors.NewStorage(err)
	}
	return nil
}
