package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltbridge/voltbridge/internal/database/testutil"
	"github.com/voltbridge/voltbridge/internal/models"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
)

func validChargerInput() ChargerInput {
	return ChargerInput{
		Name:        "Downtown Bay 1",
		ChargerType: models.ChargerTypeFast,
		Address:     "12 Battery Road",
		City:        "Austin",
		State:       "TX",
		Pincode:     "73301",
		PricePerKwh: 0.42,
	}
}

func TestChargerCreateVisibilityFollowsHostCapability(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	pendingHost := seedUser(t, db, "pending@example.com")
	approvedHost := seedUser(t, db, "approved@example.com", func(u *models.User) { u.IsHost = true })

	svc, err := NewChargerService(db)
	require.NoError(t, err)

	hidden, err := svc.Create(context.Background(), pendingHost.ID, validChargerInput())
	require.NoError(t, err)
	require.False(t, hidden.IsActive)

	visible, err := svc.Create(context.Background(), approvedHost.ID, validChargerInput())
	require.NoError(t, err)
	require.True(t, visible.IsActive)
	require.True(t, visible.Available)
}

func TestChargerCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	host := seedUser(t, db, "host@example.com", func(u *models.User) { u.IsHost = true })

	svc, err := NewChargerService(db)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*ChargerInput)
		field  string
	}{
		{"missing name", func(in *ChargerInput) { in.Name = "" }, "name"},
		{"unknown type", func(in *ChargerInput) { in.ChargerType = "Medium Charging" }, "charger_type"},
		{"zero price", func(in *ChargerInput) { in.PricePerKwh = 0 }, "price_per_kwh"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validChargerInput()
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), host.ID, input)
			require.Error(t, err)
			require.Contains(t, apperrors.FromError(err).Fields, tc.field)
		})
	}
}

func TestChargerUpdateOwnership(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	owner := seedUser(t, db, "owner@example.com", func(u *models.User) { u.IsHost = true })
	stranger := seedUser(t, db, "stranger@example.com", func(u *models.User) { u.IsHost = true })

	svc, err := NewChargerService(db)
	require.NoError(t, err)

	charger, err := svc.Create(context.Background(), owner.ID, validChargerInput())
	require.NoError(t, err)

	update := validChargerInput()
	update.Name = "Downtown Bay 1 (renamed)"
	update.PricePerKwh = 0.55

	_, err = svc.Update(context.Background(), stranger.ID, charger.ID, update)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := svc.Update(context.Background(), owner.ID, charger.ID, update)
	require.NoError(t, err)
	require.Equal(t, "Downtown Bay 1 (renamed)", updated.Name)
	require.Equal(t, 0.55, updated.PricePerKwh)
}

func TestChargerDelete(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	owner := seedUser(t, db, "owner@example.com", func(u *models.User) { u.IsHost = true })

	svc, err := NewChargerService(db)
	require.NoError(t, err)

	charger, err := svc.Create(context.Background(), owner.ID, validChargerInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), owner.ID, charger.ID))

	err = svc.Delete(context.Background(), owner.ID, charger.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChargerSearch(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	host := seedUser(t, db, "host@example.com", func(u *models.User) { u.IsHost = true })
	pending := seedUser(t, db, "pending@example.com")

	svc, err := NewChargerService(db)
	require.NoError(t, err)

	austin := validChargerInput()
	_, err = svc.Create(context.Background(), host.ID, austin)
	require.NoError(t, err)

	dallas := validChargerInput()
	dallas.City = "Dallas"
	dallas.ChargerType = models.ChargerTypeTesla
	_, err = svc.Create(context.Background(), host.ID, dallas)
	require.NoError(t, err)

	// unapproved inventory must not surface
	_, err = svc.Create(context.Background(), pending.ID, validChargerInput())
	require.NoError(t, err)

	all, total, err := svc.Search(context.Background(), SearchChargersInput{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, all, 2)

	byCity, total, err := svc.Search(context.Background(), SearchChargersInput{City: "austin"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Austin", byCity[0].City)

	byType, total, err := svc.Search(context.Background(), SearchChargersInput{ChargerType: models.ChargerTypeTesla})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, models.ChargerTypeTesla, byType[0].ChargerType)

	_, _, err = svc.Search(context.Background(), SearchChargersInput{ChargerType: "Medium"})
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.FromError(err).Code)
}

func TestChargerGetActive(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	pending := seedUser(t, db, "pending@example.com")

	svc, err := NewChargerService(db)
	require.NoError(t, err)

	charger, err := svc.Create(context.Background(), pending.ID, validChargerInput())
	require.NoError(t, err)

	_, err = svc.GetActive(context.Background(), charger.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, db.Model(&models.Charger{}).Where("id = ?", charger.ID).Update("is_active", true).Error)

	found, err := svc.GetActive(context.Background(), charger.ID)
	require.NoError(t, err)
	require.Equal(t, charger.ID, found.ID)
}
