package models

import "time"

// User & auth related models
type Utilisateur struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null;index" json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// JetonConnexion is a one-time sign-in token backing the email link flow.
// Only a bcrypt fingerprint of the secret is stored; the raw secret travels
// inside the emailed link and is never persisted.
type JetonConnexion struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"not null;index"`
	EmpreinteJeton string `gorm:"not null"`
	ExpireLe       time.Time `gorm:"not null"`
	ConsommeLe     *time.Time
	CreatedAt      time.Time
}
