package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/voltbridge/voltbridge/internal/models"
	"github.com/voltbridge/voltbridge/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.HostRequest{},
		&models.Charger{},
		&models.Booking{},
		&models.Review{},
		&models.Notification{},
		&models.ContactMessage{},
	)
}

// EnsureAdminAccount creates the administrator account on first start.
// Existing accounts with the same email are promoted but never have
// their password overwritten.
func EnsureAdminAccount(db *gorm.DB, email, name, password string) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if password == "" {
		return errors.New("admin account requires a password")
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.IsAdmin {
			return nil
		}
		return db.Model(&existing).Update("is_admin", true).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, hashErr := crypto.HashPassword(password)
		if hashErr != nil {
			return fmt.Errorf("hash admin password: %w", hashErr)
		}
		admin := models.User{
			Email:    email,
			Name:     name,
			Password: hashed,
			IsAdmin:  true,
		}
		return db.Create(&admin).Error
	default:
		return err
	}
}
