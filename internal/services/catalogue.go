package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/models"
)

var ErrPrestationIntrouvable = errors.New("prestation_introuvable")

// DefaultPrestations seeds a fresh user's catalogue. Names and prices come
// from the standard funeral-services tariff sheet.
var DefaultPrestations = []models.Prestation{
	{Nom: "Mise en bière et fermeture du cercueil", Prix: 290},
	{Nom: "Cercueil chêne – gamme classique", Prix: 780},
	{Nom: "Capitonnage tissu écru", Prix: 180},
	{Nom: "Transport (forfait 50 km)", Prix: 220},
	{Nom: "Maître de cérémonie", Prix: 200},
	{Nom: "Démarches administratives", Prix: 95},
	{Nom: "Ouverture/fermeture de caveau", Prix: 350},
	{Nom: "Urne funéraire – standard", Prix: 120},
}

// CatalogueService manages the per-user prestation catalogue.
type CatalogueService struct{ DB *gorm.DB }

func NewCatalogueService(db *gorm.DB) *CatalogueService { return &CatalogueService{DB: db} }

// List returns the user's catalogue without side effects.
func (s *CatalogueService) List(userID uint) ([]models.Prestation, error) {
	var prestations []models.Prestation
	if err := s.DB.Where("user_id = ?", userID).Order("id asc").Find(&prestations).Error; err != nil {
		return nil, err
	}
	return prestations, nil
}

// ListOrSeed returns the user's catalogue, inserting the default entries
// first if the collection is empty. The server rows (with assigned ids) are
// what the caller gets back.
func (s *CatalogueService) ListOrSeed(userID uint) ([]models.Prestation, error) {
	prestations, err := s.List(userID)
	if err != nil {
		return nil, err
	}
	if len(prestations) > 0 {
		return prestations, nil
	}
	seed := make([]models.Prestation, len(DefaultPrestations))
	for i, p := range DefaultPrestations {
		p.UserID = userID
		seed[i] = p
	}
	if err := s.DB.Create(&seed).Error; err != nil {
		return nil, err
	}
	return seed, nil
}

// Create inserts a blank entry (empty name, zero price) for inline editing.
func (s *CatalogueService) Create(userID uint) (*models.Prestation, error) {
	p := models.Prestation{UserID: userID}
	if err := s.DB.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PrestationPatch edits name or price; each field persists independently.
type PrestationPatch struct {
	Nom  *string  `json:"nom"`
	Prix *float64 `json:"prix"`
}

func (s *CatalogueService) Update(userID, id uint, patch PrestationPatch) (*models.Prestation, error) {
	var p models.Prestation
	err := s.DB.Where("user_id = ? AND id = ?", userID, id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPrestationIntrouvable
	}
	if err != nil {
		return nil, err
	}
	if patch.Nom != nil {
		p.Nom = *patch.Nom
	}
	if patch.Prix != nil {
		p.Prix = *patch.Prix
	}
	if err := s.DB.Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete hard-deletes a catalogue entry. Dossiers referencing it keep their
// stale id; totals resolve it to 0.
func (s *CatalogueService) Delete(userID, id uint) error {
	res := s.DB.Where("user_id = ? AND id = ?", userID, id).Delete(&models.Prestation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPrestationIntrouvable
	}
	return nil
}

// Upsert inserts the entry unless one with the same name and price already
// exists for the user. Used by import, which matches by natural fields.
func (s *CatalogueService) Upsert(userID uint, nom string, prix float64) (*models.Prestation, error) {
	p := models.Prestation{UserID: userID, Nom: nom, Prix: prix}
	if err := s.DB.Where("user_id = ? AND nom = ? AND prix = ?", userID, nom, prix).FirstOrCreate(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
