package models

// Charger is a bookable charging station owned by an approved host.
// IsActive is the directory-visibility projection: it is false until
// the owning account's host registration request is approved.
type Charger struct {
	BaseModel

	HostID string `gorm:"type:uuid;not null;index" json:"host_id"`
	Host   *User  `gorm:"foreignKey:HostID;constraint:OnDelete:CASCADE" json:"host,omitempty"`

	Name        string `gorm:"not null" json:"name"`
	ChargerType string `gorm:"not null" json:"charger_type"`

	Address string `json:"address"`
	City    string `gorm:"index" json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	PricePerKwh float64 `gorm:"not null" json:"price_per_kwh"`

	IsActive  bool `gorm:"default:false;index" json:"is_active"`
	Available bool `gorm:"default:true" json:"available"`

	Bookings []Booking `gorm:"foreignKey:ChargerID" json:"-"`
	Reviews  []Review  `gorm:"foreignKey:ChargerID" json:"-"`
}
