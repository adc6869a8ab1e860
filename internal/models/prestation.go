package models

import "time"

// Prestation is a reusable priced catalog entry selectable from dossiers.
type Prestation struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"not null;index" json:"user_id"` // propriétaire
	Nom       string  `json:"nom"`
	Prix      float64 `gorm:"not null;default:0" json:"prix"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
