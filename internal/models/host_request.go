package models

import (
	"time"

	"gorm.io/datatypes"
)

// Host registration request lifecycle states. A request is created
// pending and moves exactly once, to approved or denied.
const (
	HostRequestStatusPending  = "pending"
	HostRequestStatusApproved = "approved"
	HostRequestStatusDenied   = "denied"
)

// MaxBusinessDescriptionLength bounds the free-text business description.
const MaxBusinessDescriptionLength = 1000

// HostRequestLocation is the optional structured address supplied at intake.
// No individual field is required.
type HostRequestLocation struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// HostRequestDocuments holds opaque verification document references
// (URLs or storage IDs); content validation happens elsewhere.
type HostRequestDocuments struct {
	CompanyRegistration string `json:"company_registration,omitempty"`
	TaxID               string `json:"tax_id,omitempty"`
	IdentityProof       string `json:"identity_proof,omitempty"`
}

// HostRequest is a prospective host's registration request. The unique
// index on UserID enforces at most one request per account; the record
// is retained after the decision as an audit trail.
type HostRequest struct {
	BaseModel

	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	Email       string `gorm:"not null" json:"email"`
	Name        string `gorm:"not null" json:"name"`
	Phone       string `gorm:"not null" json:"phone"`
	CompanyName string `gorm:"not null" json:"company_name"`

	Location HostRequestLocation `gorm:"embedded;embeddedPrefix:location_" json:"location"`

	NumberOfChargers    int                                      `gorm:"not null" json:"number_of_chargers"`
	ChargerTypes        datatypes.JSONSlice[string]              `json:"charger_types"`
	BusinessDescription string                                   `gorm:"size:1000" json:"business_description"`
	Documents           datatypes.JSONType[HostRequestDocuments] `json:"documents"`

	Status string `gorm:"not null;default:pending;index" json:"status"`

	// Decision fields, owned exclusively by the reviewing admin.
	AdminNotes   string     `json:"admin_notes,omitempty"`
	DenialReason string     `json:"denial_reason,omitempty"`
	ReviewedBy   string     `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	DeniedAt     *time.Time `json:"denied_at,omitempty"`
}

// IsPending reports whether the request still awaits a decision.
func (r *HostRequest) IsPending() bool {
	return r.Status == HostRequestStatusPending
}
