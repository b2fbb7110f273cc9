package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/models"
	"github.com/voltbridge/voltbridge/internal/services"
	"github.com/voltbridge/voltbridge/pkg/logger"
	appmail "github.com/voltbridge/voltbridge/pkg/mail"
	"github.com/voltbridge/voltbridge/pkg/metrics"
)

// Schedules holds the cron expressions for the periodic jobs.
type Schedules struct {
	BookingCompletion string
	PendingReminder   string
}

// DefaultSchedules completes bookings hourly and reminds about the
// pending queue every morning.
func DefaultSchedules() Schedules {
	return Schedules{
		BookingCompletion: "0 * * * *",
		PendingReminder:   "0 9 * * *",
	}
}

// Scheduler runs the background maintenance jobs: closing out expired
// bookings and reminding admins of a non-empty review queue.
type Scheduler struct {
	db       *gorm.DB
	bookings *services.BookingService

	mailer     appmail.Mailer
	adminEmail string
	minPending int

	cron      *cron.Cron
	schedules Schedules
	now       func() time.Time
	log       *zap.Logger
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithSchedules overrides the default cron expressions.
func WithSchedules(s Schedules) Option {
	return func(sch *Scheduler) { sch.schedules = s }
}

// WithReminderMailer wires the pending-queue reminder email.
func WithReminderMailer(m appmail.Mailer, adminEmail string) Option {
	return func(sch *Scheduler) {
		sch.mailer = m
		sch.adminEmail = adminEmail
	}
}

// WithReminderThreshold sets the minimum pending count that triggers a
// reminder.
func WithReminderThreshold(n int) Option {
	return func(sch *Scheduler) { sch.minPending = n }
}

// WithNow overrides the time source, used in tests.
func WithNow(now func() time.Time) Option {
	return func(sch *Scheduler) {
		if now != nil {
			sch.now = now
		}
	}
}

// NewScheduler constructs a Scheduler.
func NewScheduler(db *gorm.DB, bookings *services.BookingService, opts ...Option) (*Scheduler, error) {
	if db == nil {
		return nil, errors.New("maintenance scheduler requires a database handle")
	}
	if bookings == nil {
		return nil, errors.New("maintenance scheduler requires a booking service")
	}

	sch := &Scheduler{
		db:         db,
		bookings:   bookings,
		minPending: 1,
		schedules:  DefaultSchedules(),
		now:        time.Now,
		log:        logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(sch)
	}
	return sch, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.cron != nil {
		return errors.New("maintenance scheduler already started")
	}

	c := cron.New()

	if _, err := c.AddFunc(s.schedules.BookingCompletion, func() {
		if err := s.CompleteExpiredBookings(context.Background()); err != nil {
			s.log.Error("booking completion failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule booking completion: %w", err)
	}

	if _, err := c.AddFunc(s.schedules.PendingReminder, func() {
		if err := s.RemindPendingHostRequests(context.Background()); err != nil {
			s.log.Error("pending reminder failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule pending reminder: %w", err)
	}

	c.Start()
	s.cron = c
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

// RunAll executes every maintenance job once, aggregating failures.
func (s *Scheduler) RunAll(ctx context.Context) error {
	return multierr.Combine(
		s.CompleteExpiredBookings(ctx),
		s.RemindPendingHostRequests(ctx),
	)
}

// CompleteExpiredBookings closes out confirmed bookings whose window
// has passed.
func (s *Scheduler) CompleteExpiredBookings(ctx context.Context) error {
	n, err := s.bookings.CompleteExpired(ctx, s.now())
	if err != nil {
		return fmt.Errorf("complete expired bookings: %w", err)
	}
	if n > 0 {
		s.log.Info("completed expired bookings", zap.Int64("count", n))
	}
	return nil
}

// RemindPendingHostRequests refreshes the pending gauge and, when the
// queue is non-empty, emails the admin inbox.
func (s *Scheduler) RemindPendingHostRequests(ctx context.Context) error {
	var pending int64
	err := s.db.WithContext(ctx).Model(&models.HostRequest{}).
		Where("status = ?", models.HostRequestStatusPending).
		Count(&pending).Error
	if err != nil {
		return fmt.Errorf("count pending host requests: %w", err)
	}

	metrics.PendingHostRequests.Set(float64(pending))

	if pending < int64(s.minPending) {
		return nil
	}

	s.log.Info("host requests awaiting review", zap.Int64("count", pending))

	if s.mailer == nil || s.adminEmail == "" {
		return nil
	}

	err = s.mailer.Send(ctx, appmail.Message{
		To:      []string{s.adminEmail},
		Subject: fmt.Sprintf("%d host registration request(s) awaiting review", pending),
		Body:    fmt.Sprintf("There are %d pending host registration requests in the review queue.", pending),
	})
	if err != nil && !errors.Is(err, appmail.ErrSMTPDisabled) {
		return fmt.Errorf("send pending reminder: %w", err)
	}
	return nil
}
