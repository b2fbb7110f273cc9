package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/models"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
	"github.com/voltbridge/voltbridge/pkg/logger"
	appmail "github.com/voltbridge/voltbridge/pkg/mail"
)

// MaxContactMessageLength bounds the enquiry body.
const MaxContactMessageLength = 2000

// ContactService stores inbound support enquiries and forwards them to
// the support inbox.
type ContactService struct {
	db           *gorm.DB
	mailer       appmail.Mailer
	supportEmail string
	log          *zap.Logger
}

// NewContactService constructs a ContactService. The mailer and support
// address are optional; without them enquiries are stored only.
func NewContactService(db *gorm.DB, mailer appmail.Mailer, supportEmail string) (*ContactService, error) {
	if db == nil {
		return nil, errors.New("contact service requires a database handle")
	}
	return &ContactService{
		db:           db,
		mailer:       mailer,
		supportEmail: strings.TrimSpace(supportEmail),
		log:          logger.WithModule("contact"),
	}, nil
}

// ContactInput is the enquiry payload.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (in ContactInput) validate() error {
	var fields []string
	var msgs []string

	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name")
		msgs = append(msgs, "name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		fields = append(fields, "email")
		msgs = append(msgs, "email is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, "email")
		msgs = append(msgs, "email is not a valid address")
	}
	if strings.TrimSpace(in.Message) == "" {
		fields = append(fields, "message")
		msgs = append(msgs, "message is required")
	} else if len(in.Message) > MaxContactMessageLength {
		fields = append(fields, "message")
		msgs = append(msgs, "message exceeds 2000 characters")
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields, msgs...)
	}
	return nil
}

// Submit persists the enquiry, then forwards it by email. The record is
// written first so a mail outage loses nothing; forwarding happens in
// the background.
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*models.ContactMessage, error) {
	ctx = ensureContext(ctx)

	if err := input.validate(); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}

	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, apperrors.NewStorage(err)
	}

	if s.mailer != nil && s.supportEmail != "" {
		go s.forward(msg)
	}

	return msg, nil
}

func (s *ContactService) forward(msg *models.ContactMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	subject := msg.Subject
	if subject == "" {
		subject = "New contact enquiry"
	}

	err := s.mailer.Send(ctx, appmail.Message{
		To:      []string{s.supportEmail},
		Subject: fmt.Sprintf("[Contact] %s", subject),
		Body:    fmt.Sprintf("From: %s <%s>\r\n\r\n%s", msg.Name, msg.Email, msg.Message),
	})
	if err != nil {
		if !errors.Is(err, appmail.ErrSMTPDisabled) {
			s.log.Warn("forward enquiry failed", zap.String("id", msg.ID), zap.Error(err))
		}
		return
	}

	if err := s.db.Model(msg).Update("forwarded", true).Error; err != nil {
		s.log.Warn("mark enquiry forwarded failed", zap.String("id", msg.ID), zap.Error(err))
	}
}
