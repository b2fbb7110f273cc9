package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/models"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
)

// MaxReviewCommentLength bounds the optional review comment.
const MaxReviewCommentLength = 500

// ReviewService manages charger ratings.
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService constructs a ReviewService.
func NewReviewService(db *gorm.DB) (*ReviewService, error) {
	if db == nil {
		return nil, errors.New("review service requires a database handle")
	}
	return &ReviewService{db: db}, nil
}

// CreateReviewInput is the rating payload.
type CreateReviewInput struct {
	ChargerID string
	Rating    int
	Comment   string
}

// Create records the user's rating of a charger. One review per user
// per charger; the composite unique index backstops concurrent submits.
func (s *ReviewService) Create(ctx context.Context, userID string, input CreateReviewInput) (*models.Review, error) {
	ctx = ensureContext(ctx)

	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var fields []string
	var msgs []string
	if input.ChargerID == "" {
		fields = append(fields, "charger_id")
		msgs = append(msgs, "charger id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		fields = append(fields, "rating")
		msgs = append(msgs, "rating must be between 1 and 5")
	}
	if len(input.Comment) > MaxReviewCommentLength {
		fields = append(fields, "comment")
		msgs = append(msgs, "comment exceeds 500 characters")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields, msgs...)
	}

	var charger models.Charger
	err := s.db.WithContext(ctx).First(&charger, "id = ?", input.ChargerID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorage(err)
	}

	review := &models.Review{
		UserID:    userID,
		ChargerID: input.ChargerID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}

	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrDuplicateReview
		}
		return nil, apperrors.NewStorage(err)
	}

	return review, nil
}

// ChargerRating aggregates a charger's review scores.
type ChargerRating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ListForCharger returns a charger's reviews, newest first, with the
// aggregate rating.
func (s *ReviewService) ListForCharger(ctx context.Context, chargerID string, p Pagination) ([]models.Review, *ChargerRating, error) {
	ctx = ensureContext(ctx)
	p = normalizePagination(p)

	var rating ChargerRating
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("charger_id = ?", chargerID).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Scan(&rating).Error
	if err != nil {
		return nil, nil, apperrors.NewStorage(err)
	}

	var reviews []models.Review
	err = s.db.WithContext(ctx).
		Where("charger_id = ?", chargerID).
		Preload("User").
		Order("created_at DESC").
		Limit(p.PerPage).Offset(p.offset()).
		Find(&reviews).Error
	if err != nil {
		return nil, nil, apperrors.NewStorage(err)
	}

	return reviews, &rating, nil
}
