package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/models"
)

// DefaultEntrepriseNom names the profile row created on first load.
const DefaultEntrepriseNom = "Pompes Funèbres Loubet-Victor"

// EntrepriseService manages the single company-profile row per user.
type EntrepriseService struct{ DB *gorm.DB }

func NewEntrepriseService(db *gorm.DB) *EntrepriseService { return &EntrepriseService{DB: db} }

// GetOrCreate returns the user's profile, creating it with the default name
// and the session email as contact address when absent.
func (s *EntrepriseService) GetOrCreate(userID uint, email string) (*models.Entreprise, error) {
	var e models.Entreprise
	err := s.DB.Where("user_id = ?", userID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e = models.Entreprise{UserID: userID, Nom: DefaultEntrepriseNom, Email: email}
		if cerr := s.DB.Create(&e).Error; cerr != nil {
			return nil, cerr
		}
		return &e, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EntreprisePatch merges changed fields into the current record; the profile
// is never deleted, only updated.
type EntreprisePatch struct {
	Nom              *string `json:"nom"`
	Adresse          *string `json:"adresse"`
	Telephone        *string `json:"telephone"`
	Email            *string `json:"email"`
	Siret            *string `json:"siret"`
	SignatureDataURL *string `json:"signature_data_url"`
}

func (s *EntrepriseService) Update(userID uint, patch EntreprisePatch) (*models.Entreprise, error) {
	var e models.Entreprise
	if err := s.DB.Where("user_id = ?", userID).First(&e).Error; err != nil {
		return nil, err
	}
	if patch.Nom != nil {
		e.Nom = *patch.Nom
	}
	if patch.Adresse != nil {
		e.Adresse = *patch.Adresse
	}
	if patch.Telephone != nil {
		e.Telephone = *patch.Telephone
	}
	if patch.Email != nil {
		e.Email = *patch.Email
	}
	if patch.Siret != nil {
		e.Siret = *patch.Siret
	}
	if patch.SignatureDataURL != nil {
		e.SignatureDataURL = *patch.SignatureDataURL
	}
	if err := s.DB.Save(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}
