package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/models"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
	"github.com/voltbridge/voltbridge/pkg/logger"
	appmail "github.com/voltbridge/voltbridge/pkg/mail"
	"github.com/voltbridge/voltbridge/pkg/metrics"
)

// HostRequestService owns the host registration workflow: intake,
// admin review, and the capability changes an approval triggers.
type HostRequestService struct {
	db       *gorm.DB
	notifier *NotificationService
	mailer   appmail.Mailer

	// allowResubmission lets a user whose request was denied submit
	// again; the denied record is reopened in place so the audit trail
	// and the one-row-per-user invariant both survive.
	allowResubmission bool

	now func() time.Time
	log *zap.Logger
}

// HostRequestOption customises a HostRequestService.
type HostRequestOption func(*HostRequestService)

// WithHostRequestNotifier wires in-app notifications for decisions.
func WithHostRequestNotifier(n *NotificationService) HostRequestOption {
	return func(s *HostRequestService) { s.notifier = n }
}

// WithHostRequestMailer wires decision emails. Delivery is
// fire-and-forget; failures never roll back a decision.
func WithHostRequestMailer(m appmail.Mailer) HostRequestOption {
	return func(s *HostRequestService) { s.mailer = m }
}

// WithResubmissionAllowed controls whether a denied user may submit again.
func WithResubmissionAllowed(allowed bool) HostRequestOption {
	return func(s *HostRequestService) { s.allowResubmission = allowed }
}

// WithHostRequestClock overrides the time source, used in tests.
func WithHostRequestClock(clock func() time.Time) HostRequestOption {
	return func(s *HostRequestService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewHostRequestService constructs a HostRequestService.
func NewHostRequestService(db *gorm.DB, opts ...HostRequestOption) (*HostRequestService, error) {
	if db == nil {
		return nil, errors.New("host request service requires a database handle")
	}

	svc := &HostRequestService{
		db:  db,
		now: time.Now,
		log: logger.WithModule("host_requests"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// SubmitHostRequestInput is the intake payload for a registration request.
type SubmitHostRequestInput struct {
	Email       string
	Name        string
	Phone       string
	CompanyName string

	Location models.HostRequestLocation

	NumberOfChargers    int
	ChargerTypes        []string
	BusinessDescription string
	Documents           models.HostRequestDocuments
}

func (in SubmitHostRequestInput) validate() error {
	var fields []string
	var msgs []string

	if strings.TrimSpace(in.Email) == "" {
		fields = append(fields, "email")
		msgs = append(msgs, "email is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, "email")
		msgs = append(msgs, "email is not a valid address")
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name")
		msgs = append(msgs, "name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		fields = append(fields, "phone")
		msgs = append(msgs, "phone is required")
	}
	if strings.TrimSpace(in.CompanyName) == "" {
		fields = append(fields, "company_name")
		msgs = append(msgs, "company name is required")
	}
	if in.NumberOfChargers < 1 {
		fields = append(fields, "number_of_chargers")
		msgs = append(msgs, "number of chargers must be at least 1")
	}
	if len(in.ChargerTypes) == 0 {
		fields = append(fields, "charger_types")
		msgs = append(msgs, "at least one charger type is required")
	} else {
		for _, ct := range in.ChargerTypes {
			if !models.IsValidChargerType(ct) {
				fields = append(fields, "charger_types")
				msgs = append(msgs, fmt.Sprintf("unknown charger type %q", ct))
				break
			}
		}
	}
	if len(in.BusinessDescription) > models.MaxBusinessDescriptionLength {
		fields = append(fields, "business_description")
		msgs = append(msgs, fmt.Sprintf("business description exceeds %d characters", models.MaxBusinessDescriptionLength))
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields, msgs...)
	}
	return nil
}

// Submit files a new host registration request for the user. At most
// one request per account may exist; when resubmission is allowed a
// previously denied request is reopened with the new payload.
func (s *HostRequestService) Submit(ctx context.Context, userID string, input SubmitHostRequestInput) (*models.HostRequest, error) {
	ctx = ensureContext(ctx)

	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var existing models.HostRequest
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	switch {
	case err == nil:
		if s.allowResubmission && existing.Status == models.HostRequestStatusDenied {
			return s.reopen(ctx, &existing, input)
		}
		return nil, apperrors.ErrDuplicateHostRequest
	case !isNotFound(err):
		return nil, apperrors.NewStorage(err)
	}

	request := &models.HostRequest{
		UserID:              userID,
		Email:               strings.ToLower(strings.TrimSpace(input.Email)),
		Name:                strings.TrimSpace(input.Name),
		Phone:               strings.TrimSpace(input.Phone),
		CompanyName:         strings.TrimSpace(input.CompanyName),
		Location:            input.Location,
		NumberOfChargers:    input.NumberOfChargers,
		ChargerTypes:        datatypes.NewJSONSlice(input.ChargerTypes),
		BusinessDescription: input.BusinessDescription,
		Documents:           datatypes.NewJSONType(input.Documents),
		Status:              models.HostRequestStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		// Two concurrent submissions race past the lookup; the unique
		// index on user_id decides the winner.
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateHostRequest
		}
		return nil, apperrors.NewStorage(err)
	}

	metrics.HostRequestDecisions.WithLabelValues("submitted").Inc()
	metrics.PendingHostRequests.Inc()

	return request, nil
}

// reopen resets a denied request back to pending with the new payload.
// The conditional WHERE keeps a concurrent decision from being clobbered.
func (s *HostRequestService) reopen(ctx context.Context, existing *models.HostRequest, input SubmitHostRequestInput) (*models.HostRequest, error) {
	res := s.db.WithContext(ctx).Model(&models.HostRequest{}).
		Where("id = ? AND status = ?", existing.ID, models.HostRequestStatusDenied).
		Updates(map[string]any{
			"email":                strings.ToLower(strings.TrimSpace(input.Email)),
			"name":                 strings.TrimSpace(input.Name),
			"phone":                strings.TrimSpace(input.Phone),
			"company_name":         strings.TrimSpace(input.CompanyName),
			"location_address":     input.Location.Address,
			"location_city":        input.Location.City,
			"location_state":       input.Location.State,
			"location_pincode":     input.Location.Pincode,
			"number_of_chargers":   input.NumberOfChargers,
			"charger_types":        datatypes.NewJSONSlice(input.ChargerTypes),
			"business_description": input.BusinessDescription,
			"documents":            datatypes.NewJSONType(input.Documents),
			"status":               models.HostRequestStatusPending,
			"admin_notes":          "",
			"denial_reason":        "",
			"reviewed_by":          "",
			"approved_at":          nil,
			"denied_at":            nil,
		})
	if res.Error != nil {
		return nil, apperrors.NewStorage(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrDuplicateHostRequest
	}

	metrics.HostRequestDecisions.WithLabelValues("resubmitted").Inc()
	metrics.PendingHostRequests.Inc()

	var request models.HostRequest
	if err := s.db.WithContext(ctx).First(&request, "id = ?", existing.ID).Error; err != nil {
		return nil, apperrors.NewStorage(err)
	}
	return &request, nil
}

// GetMine returns the caller's own registration request.
func (s *HostRequestService) GetMine(ctx context.Context, userID string) (*models.HostRequest, error) {
	ctx = ensureContext(ctx)

	var request models.HostRequest
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&request).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorage(err)
	}
	return &request, nil
}

// GetByID returns a registration request for admin review.
func (s *HostRequestService) GetByID(ctx context.Context, id string) (*models.HostRequest, error) {
	ctx = ensureContext(ctx)

	var request models.HostRequest
	err := s.db.WithContext(ctx).First(&request, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorage(err)
	}
	return &request, nil
}

// ListHostRequestsInput filters the admin review queue. An empty status
// means pending, the queue an admin is normally working; "all" lifts
// the filter.
type ListHostRequestsInput struct {
	Status string
	Pagination
}

// List returns registration requests for the admin queue, newest first.
func (s *HostRequestService) List(ctx context.Context, input ListHostRequestsInput) ([]models.HostRequest, int64, error) {
	ctx = ensureContext(ctx)
	input.Pagination = normalizePagination(input.Pagination)

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = models.HostRequestStatusPending
	}

	query := s.db.WithContext(ctx).Model(&models.HostRequest{})
	switch status {
	case "all":
	case models.HostRequestStatusPending, models.HostRequestStatusApproved, models.HostRequestStatusDenied:
		query = query.Where("status = ?", status)
	default:
		return nil, 0, apperrors.NewValidation([]string{"status"}, fmt.Sprintf("unknown status %q", input.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	var requests []models.HostRequest
	err := query.Order("created_at DESC").
		Limit(input.PerPage).Offset(input.offset()).
		Find(&requests).Error
	if err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	return requests, total, nil
}

// DecisionInput carries the reviewing admin's identity and commentary.
type DecisionInput struct {
	AdminID    string
	AdminNotes string
	// Reason is required for denials and ignored for approvals.
	Reason string
}

// Approve transitions a pending request to approved, grants the user
// the host capability, and activates any chargers the user pre-created.
// The status flip is a single conditional UPDATE, so of two concurrent
// decisions exactly one wins and the other sees REQUEST_NOT_PENDING.
func (s *HostRequestService) Approve(ctx context.Context, requestID string, input DecisionInput) (*models.HostRequest, error) {
	ctx = ensureContext(ctx)

	if input.AdminID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	now := s.now().UTC()
	var request models.HostRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.HostRequest{}).
			Where("id = ? AND status = ?", requestID, models.HostRequestStatusPending).
			Updates(map[string]any{
				"status":      models.HostRequestStatusApproved,
				"reviewed_by": input.AdminID,
				"admin_notes": input.AdminNotes,
				"approved_at": &now,
			})
		if res.Error != nil {
			return apperrors.NewStorage(res.Error)
		}
		if res.RowsAffected == 0 {
			return s.classifyMissedUpdate(tx, requestID)
		}

		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			return apperrors.NewStorage(err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", request.UserID).
			Update("is_host", true).Error; err != nil {
			return apperrors.NewStorage(err)
		}

		if err := tx.Model(&models.Charger{}).
			Where("host_id = ?", request.UserID).
			Update("is_active", true).Error; err != nil {
			return apperrors.NewStorage(err)
		}

		return nil
	})
	if err != nil {
		return nil, apperrors.FromError(err)
	}

	metrics.HostRequestDecisions.WithLabelValues("approved").Inc()
	metrics.PendingHostRequests.Dec()

	s.announceDecision(ctx, &request,
		"Host registration approved",
		"Your host registration request has been approved. You can now list chargers.")

	return &request, nil
}

// Deny transitions a pending request to denied. A non-empty reason is
// required so the requester always learns why.
func (s *HostRequestService) Deny(ctx context.Context, requestID string, input DecisionInput) (*models.HostRequest, error) {
	ctx = ensureContext(ctx)

	if input.AdminID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.NewValidation([]string{"reason"}, "a denial reason is required")
	}

	now := s.now().UTC()
	var request models.HostRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.HostRequest{}).
			Where("id = ? AND status = ?", requestID, models.HostRequestStatusPending).
			Updates(map[string]any{
				"status":        models.HostRequestStatusDenied,
				"reviewed_by":   input.AdminID,
				"admin_notes":   input.AdminNotes,
				"denial_reason": strings.TrimSpace(input.Reason),
				"denied_at":     &now,
			})
		if res.Error != nil {
			return apperrors.NewStorage(res.Error)
		}
		if res.RowsAffected == 0 {
			return s.classifyMissedUpdate(tx, requestID)
		}

		if err := tx.First(&request, "id = ?", requestID).Error; err != nil {
			return apperrors.NewStorage(err)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.FromError(err)
	}

	metrics.HostRequestDecisions.WithLabelValues("denied").Inc()
	metrics.PendingHostRequests.Dec()

	s.announceDecision(ctx, &request,
		"Host registration denied",
		fmt.Sprintf("Your host registration request was denied: %s", request.DenialReason))

	return &request, nil
}

// classifyMissedUpdate distinguishes a vanished row from one that was
// decided by someone else first.
func (s *HostRequestService) classifyMissedUpdate(tx *gorm.DB, requestID string) error {
	var current models.HostRequest
	err := tx.First(&current, "id = ?", requestID).Error
	if err != nil {
		if isNotFound(err) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewStorage(err)
	}
	return apperrors.ErrRequestNotPending
}

// announceDecision notifies the requester in-app and by email. Both
// channels are best-effort; the decision is already committed.
func (s *HostRequestService) announceDecision(ctx context.Context, request *models.HostRequest, title, message string) {
	if s.notifier != nil {
		_, err := s.notifier.Notify(ctx, NotifyInput{
			UserID:  request.UserID,
			Type:    NotificationHostRequestDecided,
			Title:   title,
			Message: message,
			Metadata: map[string]any{
				"request_id": request.ID,
				"status":     request.Status,
			},
		})
		if err != nil {
			s.log.Warn("decision notification failed",
				zap.String("request_id", request.ID),
				zap.Error(err),
			)
		}
	}

	if s.mailer != nil {
		go func(to, subject, body string) {
			sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			err := s.mailer.Send(sendCtx, appmail.Message{
				To:      []string{to},
				Subject: subject,
				Body:    body,
			})
			if err != nil && !errors.Is(err, appmail.ErrSMTPDisabled) {
				s.log.Warn("decision email failed",
					zap.String("recipient", to),
					zap.Error(err),
				)
			}
		}(request.Email, title, message)
	}
}
