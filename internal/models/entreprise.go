package models

import "time"

// Entreprise is the single business-identity record used on quotes.
// One row per user, created lazily with defaults on first load.
type Entreprise struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	UserID           uint   `gorm:"not null;index" json:"user_id"` // propriétaire
	Nom              string `gorm:"not null" json:"nom"`
	Adresse          string `json:"adresse"`
	Telephone        string `json:"telephone"`
	Email            string `json:"email"`
	Siret            string `json:"siret"` // saisi librement, espaces compris
	SignatureDataURL string `gorm:"type:text" json:"signature_data_url"` // image embarquée en data URI
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}
