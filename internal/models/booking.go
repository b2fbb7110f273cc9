package models

import "time"

// Booking lifecycle states. Confirmed bookings either complete when
// their window passes or are cancelled by the owner before it starts.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking reserves a charger for a time window.
type Booking struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	ChargerID string   `gorm:"type:uuid;not null;index" json:"charger_id"`
	Charger   *Charger `gorm:"constraint:OnDelete:CASCADE" json:"charger,omitempty"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	// Amount is the window length in hours times the charger's price per kWh,
	// fixed at booking time so later price edits do not reprice it.
	Amount float64 `gorm:"not null" json:"amount"`

	Status      string     `gorm:"not null;default:confirmed;index" json:"status"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}
