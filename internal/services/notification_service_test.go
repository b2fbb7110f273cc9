package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltbridge/voltbridge/internal/database/testutil"
	"github.com/voltbridge/voltbridge/internal/models"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
)

func TestNotificationNotifyAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "user@example.com")

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	created, err := svc.Notify(context.Background(), NotifyInput{
		UserID:  user.ID,
		Type:    NotificationHostRequestDecided,
		Title:   "Request approved",
		Message: "You can now list chargers",
		Metadata: map[string]any{
			"request_id": "abc",
		},
	})
	require.NoError(t, err)
	require.False(t, created.IsRead)
	require.NotEmpty(t, created.Metadata)

	items, total, err := svc.List(context.Background(), user.ID, false, Pagination{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Request approved", items[0].Title)
}

func TestNotificationNotifyValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	_, err = svc.Notify(context.Background(), NotifyInput{Type: "x"})
	require.Error(t, err)

	_, err = svc.Notify(context.Background(), NotifyInput{UserID: "u"})
	require.Error(t, err)
}

func TestNotificationMarkRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "user@example.com")
	other := seedUser(t, db, "other@example.com")

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	created, err := svc.Notify(context.Background(), NotifyInput{
		UserID: user.ID,
		Type:   NotificationBookingCreated,
		Title:  "Booking confirmed",
	})
	require.NoError(t, err)

	// only the owner can mark it
	err = svc.MarkRead(context.Background(), other.ID, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.MarkRead(context.Background(), user.ID, created.ID))

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	require.True(t, stored.IsRead)
	require.NotNil(t, stored.ReadAt)

	unread, total, err := svc.List(context.Background(), user.ID, true, Pagination{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, unread)
}

func TestNotificationMarkAllRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "user@example.com")

	svc, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Notify(context.Background(), NotifyInput{
			UserID: user.ID,
			Type:   NotificationBookingCreated,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.MarkAllRead(context.Background(), user.ID))

	var unread int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unread).Error)
	require.Zero(t, unread)
}
