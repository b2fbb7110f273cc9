package services

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	iauth "github.com/voltbridge/voltbridge/internal/auth"
	"github.com/voltbridge/voltbridge/internal/models"
	"github.com/voltbridge/voltbridge/pkg/crypto"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
	"github.com/voltbridge/voltbridge/pkg/metrics"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ErrEmailExists signals a registration against an address already on file.
var ErrEmailExists = apperrors.New("EMAIL_EXISTS", "An account with this email already exists", http.StatusConflict)

// UserService handles account registration and authentication.
type UserService struct {
	db  *gorm.DB
	jwt *iauth.JWTService
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, jwt *iauth.JWTService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service requires a database handle")
	}
	if jwt == nil {
		return nil, errors.New("user service requires a jwt service")
	}
	return &UserService{db: db, jwt: jwt}, nil
}

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

func (in RegisterInput) validate() error {
	var fields []string
	var msgs []string

	if strings.TrimSpace(in.Email) == "" {
		fields = append(fields, "email")
		msgs = append(msgs, "email is required")
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, "email")
		msgs = append(msgs, "email is not a valid address")
	}
	if len(in.Password) < MinPasswordLength {
		fields = append(fields, "password")
		msgs = append(msgs, "password must be at least 8 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name")
		msgs = append(msgs, "name is required")
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields, msgs...)
	}
	return nil
}

// Register creates a new account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	if err := input.validate(); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}

	user := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hash,
		Name:     strings.TrimSpace(input.Name),
		Phone:    strings.TrimSpace(input.Phone),
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailExists
		}
		return nil, apperrors.NewStorage(err)
	}

	return user, nil
}

// AuthResult bundles a signed access token with the authenticated account.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies the credentials and issues an access token carrying
// the account's capability flags. A token issued before a host approval
// does not carry the host capability; the user logs in again to pick it up.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		if isNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewStorage(err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		IsHost:  user.IsHost,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "issue access token")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", &now).Error; err != nil {
		return nil, apperrors.NewStorage(err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &AuthResult{Token: token, User: &user}, nil
}

// GetByID returns the account with the given id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorage(err)
	}
	return &user, nil
}
