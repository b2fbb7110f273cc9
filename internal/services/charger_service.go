package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/models"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
)

// ChargerService manages a host's charging stations and the public
// directory built from them.
type ChargerService struct {
	db *gorm.DB
}

// NewChargerService constructs a ChargerService.
func NewChargerService(db *gorm.DB) (*ChargerService, error) {
	if db == nil {
		return nil, errors.New("charger service requires a database handle")
	}
	return &ChargerService{db: db}, nil
}

// ChargerInput is the create/update payload for a charging station.
type ChargerInput struct {
	Name        string
	ChargerType string

	Address string
	City    string
	State   string
	Pincode string

	Latitude  float64
	Longitude float64

	PricePerKwh float64
	Available   *bool
}

func (in ChargerInput) validate() error {
	var fields []string
	var msgs []string

	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, "name")
		msgs = append(msgs, "name is required")
	}
	if !models.IsValidChargerType(in.ChargerType) {
		fields = append(fields, "charger_type")
		msgs = append(msgs, fmt.Sprintf("unknown charger type %q", in.ChargerType))
	}
	if in.PricePerKwh <= 0 {
		fields = append(fields, "price_per_kwh")
		msgs = append(msgs, "price per kWh must be positive")
	}

	if len(fields) > 0 {
		return apperrors.NewValidation(fields, msgs...)
	}
	return nil
}

// Create registers a charging station for the host. Visibility in the
// public directory follows the account's host capability: a charger
// created before approval stays inactive until the approval flips it.
func (s *ChargerService) Create(ctx context.Context, hostID string, input ChargerInput) (*models.Charger, error) {
	ctx = ensureContext(ctx)

	if hostID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var host models.User
	if err := s.db.WithContext(ctx).First(&host, "id = ?", hostID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorage(err)
	}

	charger := &models.Charger{
		HostID:      hostID,
		Name:        strings.TrimSpace(input.Name),
		ChargerType: input.ChargerType,
		Address:     input.Address,
		City:        strings.TrimSpace(input.City),
		State:       input.State,
		Pincode:     input.Pincode,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		PricePerKwh: input.PricePerKwh,
		IsActive:    host.IsHost,
		Available:   true,
	}
	if input.Available != nil {
		charger.Available = *input.Available
	}

	if err := s.db.WithContext(ctx).Create(charger).Error; err != nil {
		return nil, apperrors.NewStorage(err)
	}
	return charger, nil
}

// Update edits a charger owned by the host.
func (s *ChargerService) Update(ctx context.Context, hostID, chargerID string, input ChargerInput) (*models.Charger, error) {
	ctx = ensureContext(ctx)

	if err := input.validate(); err != nil {
		return nil, err
	}

	charger, err := s.ownedCharger(ctx, hostID, chargerID)
	if err != nil {
		return nil, err
	}

	charger.Name = strings.TrimSpace(input.Name)
	charger.ChargerType = input.ChargerType
	charger.Address = input.Address
	charger.City = strings.TrimSpace(input.City)
	charger.State = input.State
	charger.Pincode = input.Pincode
	charger.Latitude = input.Latitude
	charger.Longitude = input.Longitude
	charger.PricePerKwh = input.PricePerKwh
	if input.Available != nil {
		charger.Available = *input.Available
	}

	if err := s.db.WithContext(ctx).Save(charger).Error; err != nil {
		return nil, apperrors.NewStorage(err)
	}
	return charger, nil
}

// Delete removes a charger owned by the host.
func (s *ChargerService) Delete(ctx context.Context, hostID, chargerID string) error {
	ctx = ensureContext(ctx)

	charger, err := s.ownedCharger(ctx, hostID, chargerID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(charger).Error; err != nil {
		return apperrors.NewStorage(err)
	}
	return nil
}

// ListMine returns every charger owned by the host, including inactive ones.
func (s *ChargerService) ListMine(ctx context.Context, hostID string) ([]models.Charger, error) {
	ctx = ensureContext(ctx)

	var chargers []models.Charger
	err := s.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&chargers).Error
	if err != nil {
		return nil, apperrors.NewStorage(err)
	}
	return chargers, nil
}

// SearchChargersInput filters the public directory.
type SearchChargersInput struct {
	City        string
	ChargerType string
	Pagination
}

// Search returns active chargers matching the filters. Only chargers of
// approved hosts are active, so unapproved inventory never surfaces here.
func (s *ChargerService) Search(ctx context.Context, input SearchChargersInput) ([]models.Charger, int64, error) {
	ctx = ensureContext(ctx)
	input.Pagination = normalizePagination(input.Pagination)

	query := s.db.WithContext(ctx).Model(&models.Charger{}).Where("is_active = ?", true)

	if city := strings.TrimSpace(input.City); city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}
	if ct := strings.TrimSpace(input.ChargerType); ct != "" {
		if !models.IsValidChargerType(ct) {
			return nil, 0, apperrors.NewValidation([]string{"charger_type"}, fmt.Sprintf("unknown charger type %q", ct))
		}
		query = query.Where("charger_type = ?", ct)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	var chargers []models.Charger
	err := query.Order("created_at DESC").
		Limit(input.PerPage).Offset(input.offset()).
		Find(&chargers).Error
	if err != nil {
		return nil, 0, apperrors.NewStorage(err)
	}

	return chargers, total, nil
}

// GetActive returns one active charger for the public detail view.
func (s *ChargerService) GetActive(ctx context.Context, chargerID string) (*models.Charger, error) {
	ctx = ensureContext(ctx)

	var charger models.Charger
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", chargerID, true).
		First(&charger).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorage(err)
	}
	return &charger, nil
}

func (s *ChargerService) ownedCharger(ctx context.Context, hostID, chargerID string) (*models.Charger, error) {
	var charger models.Charger
	err := s.db.WithContext(ctx).First(&charger, "id = ?", chargerID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewStorage(err)
	}
	if charger.HostID != hostID {
		return nil, apperrors.ErrForbidden
	}
	return &charger, nil
}
