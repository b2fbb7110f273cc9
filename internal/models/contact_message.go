package models

// ContactMessage is an inbound support enquiry. Persisted before the
// forwarding email is attempted so a mail outage loses nothing.
type ContactMessage struct {
	BaseModel

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Subject string `json:"subject"`
	Message string `gorm:"not null;size:2000" json:"message"`

	Forwarded bool `gorm:"default:false" json:"forwarded"`
}
