package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is an in-app message shown to a single user, created by
// host-request decisions and booking lifecycle events.
type Notification struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Type     string         `gorm:"not null;index" json:"type"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
