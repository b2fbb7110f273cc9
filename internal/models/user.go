package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes platform accounts. IsHost is flipped exactly once, by
// an approved host registration request; IsAdmin is assigned out of
// band (seed data or operator tooling).
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Name  string `gorm:"not null" json:"name"`
	Phone string `json:"phone"`

	IsAdmin  bool `gorm:"default:false" json:"is_admin"`
	IsHost   bool `gorm:"default:false" json:"is_host"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	HostRequest *HostRequest `gorm:"foreignKey:UserID" json:"-"`
	Chargers    []Charger    `gorm:"foreignKey:HostID" json:"-"`
	Bookings    []Booking    `gorm:"foreignKey:UserID" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
