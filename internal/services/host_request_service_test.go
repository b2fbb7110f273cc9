package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/database/testutil"
	"github.com/voltbridge/voltbridge/internal/models"
	apperrors "github.com/voltbridge/voltbridge/pkg/errors"
)

func seedUser(t *testing.T, db *gorm.DB, email string, mutate ...func(*models.User)) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Password: "hashed",
		Name:     "Test User",
		IsActive: true,
	}
	for _, m := range mutate {
		m(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func validSubmitInput() SubmitHostRequestInput {
	return SubmitHostRequestInput{
		Email:       "host@example.com",
		Name:        "Jordan Blake",
		Phone:       "+1-555-0100",
		CompanyName: "Blake Charging Co",
		Location: models.HostRequestLocation{
			Address: "12 Battery Road",
			City:    "Austin",
			State:   "TX",
			Pincode: "73301",
		},
		NumberOfChargers:    3,
		ChargerTypes:        []string{models.ChargerTypeFast, models.ChargerTypeTesla},
		BusinessDescription: "Charging lounge near the highway",
	}
}

func TestHostRequestSubmit(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")

	svc, err := NewHostRequestService(db)
	require.NoError(t, err)

	request, err := svc.Submit(context.Background(), user.ID, validSubmitInput())
	require.NoError(t, err)

	require.NotEmpty(t, request.ID)
	require.Equal(t, models.HostRequestStatusPending, request.Status)
	require.Equal(t, user.ID, request.UserID)
	require.Equal(t, "host@example.com", request.Email)
	require.Equal(t, "Blake Charging Co", request.CompanyName)
	require.Equal(t, "Austin", request.Location.City)
	require.ElementsMatch(t, []string{models.ChargerTypeFast, models.ChargerTypeTesla}, []string(request.ChargerTypes))
	require.True(t, request.IsPending())

	var stored models.HostRequest
	require.NoError(t, db.First(&stored, "user_id = ?", user.ID).Error)
	require.Equal(t, models.HostRequestStatusPending, stored.Status)
}

func TestHostRequestSubmitValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")

	svc, err := NewHostRequestService(db)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*SubmitHostRequestInput)
		field  string
	}{
		{"missing email", func(in *SubmitHostRequestInput) { in.Email = "" }, "email"},
		{"bad email", func(in *SubmitHostRequestInput) { in.Email = "not-an-address" }, "email"},
		{"missing name", func(in *SubmitHostRequestInput) { in.Name = " " }, "name"},
		{"missing phone", func(in *SubmitHostRequestInput) { in.Phone = "" }, "phone"},
		{"missing company", func(in *SubmitHostRequestInput) { in.CompanyName = "" }, "company_name"},
		{"zero chargers", func(in *SubmitHostRequestInput) { in.NumberOfChargers = 0 }, "number_of_chargers"},
		{"no charger types", func(in *SubmitHostRequestInput) { in.ChargerTypes = nil }, "charger_types"},
		{"unknown charger type", func(in *SubmitHostRequestInput) {
			in.ChargerTypes = []string{"Cold Fusion (1GW)"}
		}, "charger_types"},
		{"oversized description", func(in *SubmitHostRequestInput) {
			desc := make([]byte, models.MaxBusinessDescriptionLength+1)
			for i := range desc {
				desc[i] = 'x'
			}
			in.BusinessDescription = string(desc)
		}, "business_description"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validSubmitInput()
			tc.mutate(&input)

			_, err := svc.Submit(context.Background(), user.ID, input)
			require.Error(t, err)

			appErr := apperrors.FromError(err)
			require.Equal(t, "VALIDATION_FAILED", appErr.Code)
			require.Contains(t, appErr.Fields, tc.field)
		})
	}

	// nothing persisted
	var count int64
	require.NoError(t, db.Model(&models.HostRequest{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestHostRequestSubmitDuplicate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")

	svc, err := NewHostRequestService(db)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), user.ID, validSubmitInput())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), user.ID, validSubmitInput())
	require.ErrorIs(t, err, apperrors.ErrDuplicateHostRequest)

	var count int64
	require.NoError(t, db.Model(&models.HostRequest{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestHostRequestApprove(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")
	admin := seedUser(t, db, "admin@example.com", func(u *models.User) { u.IsAdmin = true })

	// charger created before approval stays invisible until then
	charger := &models.Charger{
		HostID:      user.ID,
		Name:        "Garage Bay 1",
		ChargerType: models.ChargerTypeFast,
		PricePerKwh: 0.42,
	}
	require.NoError(t, db.Create(charger).Error)

	decidedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	svc, err := NewHostRequestService(db, WithHostRequestClock(func() time.Time { return decidedAt }))
	require.NoError(t, err)

	request, err := svc.Submit(context.Background(), user.ID, validSubmitInput())
	require.NoError(t, err)

	decided, err := svc.Approve(context.Background(), request.ID, DecisionInput{
		AdminID:    admin.ID,
		AdminNotes: "documents verified",
	})
	require.NoError(t, err)

	require.Equal(t, models.HostRequestStatusApproved, decided.Status)
	require.Equal(t, admin.ID, decided.ReviewedBy)
	require.Equal(t, "documents verified", decided.AdminNotes)
	require.NotNil(t, decided.ApprovedAt)
	require.True(t, decided.ApprovedAt.Equal(decidedAt))

	var updatedUser models.User
	require.NoError(t, db.First(&updatedUser, "id = ?", user.ID).Error)
	require.True(t, updatedUser.IsHost)

	var updatedCharger models.Charger
	require.NoError(t, db.First(&updatedCharger, "id = ?", charger.ID).Error)
	require.True(t, updatedCharger.IsActive)
}

func TestHostRequestDeny(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")
	admin := seedUser(t, db, "admin@example.com", func(u *models.User) { u.IsAdmin = true })

	svc, err := NewHostRequestService(db)
	require.NoError(t, err)

	request, err := svc.Submit(context.Background(), user.ID, validSubmitInput())
	require.NoError(t, err)

	// a denial without a reason is rejected
	_, err = svc.Deny(context.Background(), request.ID, DecisionInput{AdminID: admin.ID})
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.FromError(err).Code)

	decided, err := svc.Deny(context.Background(), request.ID, DecisionInput{
		AdminID: admin.ID,
		Reason:  "incomplete documents",
	})
	require.NoError(t, err)

	require.Equal(t, models.HostRequestStatusDenied, decided.Status)
	require.Equal(t, "incomplete documents", decided.DenialReason)
	require.NotNil(t, decided.DeniedAt)

	var updatedUser models.User
	require.NoError(t, db.First(&updatedUser, "id = ?", user.ID).Error)
	require.False(t, updatedUser.IsHost)
}

func TestHostRequestDecisionIsFinal(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")
	admin := seedUser(t, db, "admin@example.com", func(u *models.User) { u.IsAdmin = true })

	svc, err := NewHostRequestService(db)
	require.NoError(t, err)

	request, err := svc.Submit(context.Background(), user.ID, validSubmitInput())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), request.ID, DecisionInput{AdminID: admin.ID})
	require.NoError(t, err)

	// a second decision of either kind bounces
	_, err = svc.Approve(context.Background(), request.ID, DecisionInput{AdminID: admin.ID})
	require.ErrorIs(t, err, apperrors.ErrRequestNotPending)

	_, err = svc.Deny(context.Background(), request.ID, DecisionInput{AdminID: admin.ID, Reason: "too late"})
	require.ErrorIs(t, err, apperrors.ErrRequestNotPending)

	var stored models.HostRequest
	require.NoError(t, db.First(&stored, "id = ?", request.ID).Error)
	require.Equal(t, models.HostRequestStatusApproved, stored.Status)
	require.Empty(t, stored.DenialReason)
}

func TestHostRequestDecisionUnknownID(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	admin := seedUser(t, db, "admin@example.com", func(u *models.User) { u.IsAdmin = true })

	svc, err := NewHostRequestService(db)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), "11111111-2222-3333-4444-555555555555", DecisionInput{AdminID: admin.ID})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHostRequestResubmissionAfterDenial(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")
	admin := seedUser(t, db, "admin@example.com", func(u *models.User) { u.IsAdmin = true })

	t.Run("blocked by default", func(t *testing.T) {
		svc, err := NewHostRequestService(db)
		require.NoError(t, err)

		request, err := svc.Submit(context.Background(), user.ID, validSubmitInput())
		require.NoError(t, err)

		_, err = svc.Deny(context.Background(), request.ID, DecisionInput{AdminID: admin.ID, Reason: "no documents"})
		require.NoError(t, err)

		_, err = svc.Submit(context.Background(), user.ID, validSubmitInput())
		require.ErrorIs(t, err, apperrors.ErrDuplicateHostRequest)
	})

	t.Run("reopens when allowed", func(t *testing.T) {
		svc, err := NewHostRequestService(db, WithResubmissionAllowed(true))
		require.NoError(t, err)

		input := validSubmitInput()
		input.CompanyName = "Blake Charging Co v2"
		reopened, err := svc.Submit(context.Background(), user.ID, input)
		require.NoError(t, err)

		require.Equal(t, models.HostRequestStatusPending, reopened.Status)
		require.Equal(t, "Blake Charging Co v2", reopened.CompanyName)
		require.Empty(t, reopened.DenialReason)
		require.Nil(t, reopened.DeniedAt)

		// still exactly one row for the user
		var count int64
		require.NoError(t, db.Model(&models.HostRequest{}).Where("user_id = ?", user.ID).Count(&count).Error)
		require.EqualValues(t, 1, count)
	})
}

func TestHostRequestGetMine(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")
	other := seedUser(t, db, "other@example.com")

	svc, err := NewHostRequestService(db)
	require.NoError(t, err)

	_, err = svc.GetMine(context.Background(), user.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	submitted, err := svc.Submit(context.Background(), user.ID, validSubmitInput())
	require.NoError(t, err)

	mine, err := svc.GetMine(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, submitted.ID, mine.ID)

	_, err = svc.GetMine(context.Background(), other.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHostRequestList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	admin := seedUser(t, db, "admin@example.com", func(u *models.User) { u.IsAdmin = true })

	svc, err := NewHostRequestService(db)
	require.NoError(t, err)

	var decided *models.HostRequest
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := seedUser(t, db, email)
		input := validSubmitInput()
		input.Email = email

		request, err := svc.Submit(context.Background(), user.ID, input)
		require.NoError(t, err)
		if i == 0 {
			decided = request
		}
	}

	_, err = svc.Approve(context.Background(), decided.ID, DecisionInput{AdminID: admin.ID})
	require.NoError(t, err)

	// default view is the pending queue
	pending, total, err := svc.List(context.Background(), ListHostRequestsInput{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	for _, r := range pending {
		require.Equal(t, models.HostRequestStatusPending, r.Status)
	}

	approved, total, err := svc.List(context.Background(), ListHostRequestsInput{Status: models.HostRequestStatusApproved})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, decided.ID, approved[0].ID)

	all, total, err := svc.List(context.Background(), ListHostRequestsInput{Status: "all"})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, all, 3)

	_, _, err = svc.List(context.Background(), ListHostRequestsInput{Status: "bogus"})
	require.Error(t, err)
	require.Equal(t, "VALIDATION_FAILED", apperrors.FromError(err).Code)

	paged, total, err := svc.List(context.Background(), ListHostRequestsInput{
		Status:     "all",
		Pagination: Pagination{Page: 2, PerPage: 2},
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, paged, 1)
}

func TestHostRequestApproveSendsNotification(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	user := seedUser(t, db, "host@example.com")
	admin := seedUser(t, db, "admin@example.com", func(u *models.User) { u.IsAdmin = true })

	notifier, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	svc, err := NewHostRequestService(db, WithHostRequestNotifier(notifier))
	require.NoError(t, err)

	request, err := svc.Submit(context.Background(), user.ID, validSubmitInput())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), request.ID, DecisionInput{AdminID: admin.ID})
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, NotificationHostRequestDecided, notifications[0].Type)
}
