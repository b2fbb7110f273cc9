package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/models"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
	"github.com/voltbridge/voltbridge/pkg/metrics"
)

// BookingService reserves chargers for time windows and runs the
// booking lifecycle.
type BookingService struct {
	db       *gorm.DB
	notifier *NotificationService
	now      func() time.Time
}

// BookingOption customises a BookingService.
type BookingOption func(*BookingService)

// WithBookingNotifier wires in-app notifications for booking events.
func WithBookingNotifier(n *NotificationService) BookingOption {
	return func(s *BookingService) { s.notifier = n }
}

// WithBookingClock overrides the time source, used in tests.
func WithBookingClock(clock func() time.Time) BookingOption {
	return func(s *BookingService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewBookingService constructs a BookingService.
func NewBookingService(db *gorm.DB, opts ...BookingOption) (*BookingService, error) {
	if db == nil {
		return nil, errors.New("booking service requires a database handle")
	}

	svc := &BookingService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateBookingInput is the reservation payload.
type CreateBookingInput struct {
	ChargerID string
	StartTime time.Time
	EndTime   time.Time
}

// Create reserves the charger for the window. The amount is fixed at
// booking time from the charger's current price. Overlapping confirmed
// bookings are rejected; the check and insert share a transaction.
func (s *BookingService) Create(ctx context.Context, userID string, input CreateBookingInput) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	now := s.now().UTC()
	var fields []string
	var msgs []string
	if input.ChargerID == "" {
		fields = append(fields, "charger_id")
		msgs = append(msgs, "charger id is required")
	}
	if !input.EndTime.After(input.StartTime) {
		fields = append(fields, "end_time")
		msgs = append(msgs, "end time must be after start time")
	}
	if input.StartTime.Before(now) {
		fields = append(fields, "start_time")
		msgs = append(msgs, "start time must be in the future")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields, msgs...)
	}

	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var charger models.Charger
		err := tx.Where("id = ? AND is_active = ?", input.ChargerID, true).First(&charger).Error
		if err != nil {
			if isNotFound(err) {
				return apperrors.ErrNotFound
			}
			return apperrors.NewStorage(err)
		}
		if !charger.Available {
			return apperrors.ErrBookingConflict
		}

		var overlapping int64
		err = tx.Model(&models.Booking{}).
			Where("charger_id = ? AND status = ?", charger.ID, models.BookingStatusConfirmed).
			Where("start_time < ? AND end_time > ?", input.EndTime, input.StartTime).
			Count(&overlapping).Error
		if err != nil {
			return apperrors.NewStorage(err)
		}
		if overlapping > 0 {
			return apperrors.ErrBookingConflict
		}

		hours := input.EndTime.Sub(input.StartTime).Hours()
		booking = &models.Booking{
			UserID:    userID,
			ChargerID: charger.ID,
			StartTime: input.StartTime.UTC(),
			EndTime:   input.EndTime.UTC(),
			Amount:    hours * charger.PricePerKwh,
			Status:    models.BookingStatusConfirmed,
		}
		if err := tx.Create(booking).Error; err != nil {
			return apperrors.NewStorage(err)
		}
		return nil
	})
	if err != nil {
		appErr := apperrors.FromError(err)
		if appErr == apperrors.ErrBookingConflict {
			metrics.BookingOutcomes.WithLabelValues("conflict").Inc()
		}
		return nil, appErr
	}

	metrics.BookingOutcomes.WithLabelValues("created").Inc()
	s.notify(ctx, userID, NotificationBookingCreated, "Booking confirmed", booking)

	return booking, nil
}

// Cancel cancels one of the user's confirmed bookings before it starts.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	var booking models.Booking
	err := s.db.WithContext(ctx).First(&booking, "id = ?", bookingID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorage(err)
	}
	if booking.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	now := s.now().UTC()
	if !booking.StartTime.After(now) {
		return nil, apperrors.NewBadRequest("bookings can only be cancelled before they start")
	}

	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingStatusConfirmed).
		Updates(map[string]any{
			"status":       models.BookingStatusCancelled,
			"cancelled_at": &now,
		})
	if res.Error != nil {
		return nil, apperrors.NewStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewBadRequest("booking is no longer confirmed")
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now

	metrics.BookingOutcomes.WithLabelValues("cancelled").Inc()
	s.notify(ctx, userID, NotificationBookingCancelled, "Booking cancelled", &booking)

	return &booking, nil
}

// ListMine returns the user's bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, userID string, p Pagination) ([]models.Booking, int64, error) {
	ctx = ensureContext(ctx)
	p = normalizePagination(p)

	query := s.db.WithContext(ctx).Model(&models.Booking{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	var bookings []models.Booking
	err := query.Preload("Charger").
		Order("start_time DESC").
		Limit(p.PerPage).Offset(p.offset()).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	return bookings, total, nil
}

// ListForHost returns bookings against any of the host's chargers.
func (s *BookingService) ListForHost(ctx context.Context, hostID string, p Pagination) ([]models.Booking, int64, error) {
	ctx = ensureContext(ctx)
	p = normalizePagination(p)

	sub := s.db.Model(&models.Charger{}).Select("id").Where("host_id = ?", hostID)
	query := s.db.WithContext(ctx).Model(&models.Booking{}).Where("charger_id IN (?)", sub)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	var bookings []models.Booking
	err := query.Preload("Charger").
		Order("start_time DESC").
		Limit(p.PerPage).Offset(p.offset()).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	return bookings, total, nil
}

// CompleteExpired marks confirmed bookings whose window has passed as
// completed. The maintenance scheduler runs it periodically.
func (s *BookingService) CompleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ? AND end_time <= ?", models.BookingStatusConfirmed, cutoff.UTC()).
		Update("status", models.BookingStatusCompleted)
	if res.Error != nil {
		return 0, apperrors.NewStorage(res.Error)
	}

	if res.RowsAffected > 0 {
		metrics.BookingOutcomes.WithLabelValues("completed").Add(float64(res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func (s *BookingService) notify(ctx context.Context, userID, eventType, title string, booking *models.Booking) {
	if s.notifier == nil {
		return
	}
	_, _ = s.notifier.Notify(ctx, NotifyInput{
		UserID:  userID,
		Type:    eventType,
		Title:   title,
		Message: title,
		Metadata: map[string]any{
			"booking_id": booking.ID,
			"charger_id": booking.ChargerID,
			"status":     booking.Status,
		},
	})
}
