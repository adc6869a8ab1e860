package models

import (
	"time"

	"gorm.io/datatypes"
)

// Ligne is an ad-hoc priced entry living inside a dossier's line groups.
// Its id is generated client-side and has no meaning outside its dossier.
type Ligne struct {
	ID  string  `json:"id"`
	Nom string  `json:"nom"`
	Qte float64 `json:"qte"`
	PU  float64 `json:"pu"`
}

// Dossier is a funeral-service engagement record for one deceased person.
// Selected prestations are referenced by id (as strings, like the export
// schema); line groups are embedded JSON with no independent lifecycle.
type Dossier struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"` // propriétaire
	Reference      string     `gorm:"size:32;not null;index" json:"reference"`
	DefuntNom      string     `json:"defunt_nom"`
	DefuntPrenom   string     `json:"defunt_prenom"`
	FamilleContact string     `json:"famille_contact"`
	CeremonieDate  *time.Time `json:"ceremonie_date"`
	CeremonieLieu  string     `json:"ceremonie_lieu"`

	Prestations datatypes.JSONSlice[string] `json:"prestations"`
	Marbrerie   datatypes.JSONSlice[Ligne]  `json:"marbrerie"`
	Autres      datatypes.JSONSlice[Ligne]  `json:"autres"`

	CreeLe    time.Time `json:"cree_le"`
	ModifieLe time.Time `gorm:"index" json:"modifie_le"`
	Archive   bool      `json:"archive"`
}
