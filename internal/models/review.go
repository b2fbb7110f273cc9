package models

// Review is a user's rating of a charger. One review per user per
// charger, enforced by the composite unique index.
type Review struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_charger" json:"user_id"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	ChargerID string   `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_charger;index" json:"charger_id"`
	Charger   *Charger `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"size:500" json:"comment,omitempty"`
}
