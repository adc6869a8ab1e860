package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/models"
)

var (
	ErrDossierIntrouvable = errors.New("dossier_introuvable")
	ErrGroupeInconnu      = errors.New("groupe_inconnu")
	ErrLigneIntrouvable   = errors.New("ligne_introuvable")
)

// Line group names as stored in the dossier and the export schema.
const (
	GroupeMarbrerie = "marbrerie"
	GroupeAutres    = "autres"
)

// DossierService owns dossier lifecycle: creation with reference assignment,
// partial updates, archiving, prestation toggles and line-group edits.
type DossierService struct {
	DB     *gorm.DB
	Prefix string // reference prefix, e.g. "PFV"
}

func NewDossierService(db *gorm.DB, prefix string) *DossierService {
	return &DossierService{DB: db, Prefix: prefix}
}

// List returns every dossier of the user, archived included, most recently
// modified first. Archived rows are filtered out by FilterDossiers so the
// caller keeps one loaded set per session.
func (s *DossierService) List(userID uint) ([]models.Dossier, error) {
	var dossiers []models.Dossier
	if err := s.DB.Where("user_id = ?", userID).Order("modifie_le desc").Find(&dossiers).Error; err != nil {
		return nil, err
	}
	return dossiers, nil
}

// FilterDossiers applies the search box semantics: case-insensitive substring
// match over reference, "prenom nom", family contact and ceremony location.
// Archived dossiers never match; the empty query returns all non-archived
// rows in their incoming order.
func FilterDossiers(dossiers []models.Dossier, q string) []models.Dossier {
	needle := strings.ToLower(strings.TrimSpace(q))
	out := make([]models.Dossier, 0, len(dossiers))
	for _, d := range dossiers {
		if d.Archive {
			continue
		}
		if needle == "" {
			out = append(out, d)
			continue
		}
		haystacks := []string{
			d.Reference,
			d.DefuntNom + " " + d.DefuntPrenom,
			d.FamilleContact,
			d.CeremonieLieu,
		}
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// Create inserts a fresh dossier with a generated reference
// <prefix>-<year>-<seq> where seq is the user's dossier count plus one,
// zero-padded to 4 digits. The count-based sequence can collide under
// concurrent creation; accepted limitation inherited from the original
// numbering scheme.
func (s *DossierService) Create(userID uint) (*models.Dossier, error) {
	var count int64
	if err := s.DB.Model(&models.Dossier{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	d := models.Dossier{
		UserID:      userID,
		Reference:   fmt.Sprintf("%s-%d-%04d", s.Prefix, now.Year(), count+1),
		Prestations: datatypes.JSONSlice[string]{},
		Marbrerie:   datatypes.JSONSlice[models.Ligne]{},
		Autres:      datatypes.JSONSlice[models.Ligne]{},
		CreeLe:      now,
		ModifieLe:   now,
	}
	if err := s.DB.Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DossierService) Get(userID, id uint) (*models.Dossier, error) {
	var d models.Dossier
	err := s.DB.Where("user_id = ? AND id = ?", userID, id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDossierIntrouvable
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DossierPatch carries a partial field update; nil pointers leave the stored
// value untouched.
type DossierPatch struct {
	DefuntNom      *string         `json:"defunt_nom"`
	DefuntPrenom   *string         `json:"defunt_prenom"`
	FamilleContact *string         `json:"famille_contact"`
	CeremonieDate  *time.Time      `json:"ceremonie_date"`
	CeremonieLieu  *string         `json:"ceremonie_lieu"`
	Prestations    *[]string       `json:"prestations"`
	Marbrerie      *[]models.Ligne `json:"marbrerie"`
	Autres         *[]models.Ligne `json:"autres"`
	Archive        *bool           `json:"archive"`
}

// Update merges the patch into the stored dossier, bumps ModifieLe and
// persists the full record. On failure nothing observable changes: the merge
// happens on a copy loaded here, never on shared state.
func (s *DossierService) Update(userID, id uint, patch DossierPatch) (*models.Dossier, error) {
	d, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if patch.DefuntNom != nil {
		d.DefuntNom = *patch.DefuntNom
	}
	if patch.DefuntPrenom != nil {
		d.DefuntPrenom = *patch.DefuntPrenom
	}
	if patch.FamilleContact != nil {
		d.FamilleContact = *patch.FamilleContact
	}
	if patch.CeremonieDate != nil {
		d.CeremonieDate = patch.CeremonieDate
	}
	if patch.CeremonieLieu != nil {
		d.CeremonieLieu = *patch.CeremonieLieu
	}
	if patch.Prestations != nil {
		d.Prestations = dedupe(*patch.Prestations)
	}
	if patch.Marbrerie != nil {
		d.Marbrerie = datatypes.JSONSlice[models.Ligne](*patch.Marbrerie)
	}
	if patch.Autres != nil {
		d.Autres = datatypes.JSONSlice[models.Ligne](*patch.Autres)
	}
	if patch.Archive != nil {
		d.Archive = *patch.Archive
	}
	d.ModifieLe = time.Now()
	if err := s.DB.Save(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// Archive soft-deletes a dossier. Confirmation is the handler's concern; by
// the time this runs the user has already said yes.
func (s *DossierService) Archive(userID, id uint) (*models.Dossier, error) {
	oui := true
	return s.Update(userID, id, DossierPatch{Archive: &oui})
}

// TogglePrestation adds or removes a catalogue id from the selection set.
func (s *DossierService) TogglePrestation(userID, id uint, prestationID string) (*models.Dossier, error) {
	d, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	selection := make([]string, 0, len(d.Prestations)+1)
	found := false
	for _, pid := range d.Prestations {
		if pid == prestationID {
			found = true
			continue
		}
		selection = append(selection, pid)
	}
	if !found {
		selection = append(selection, prestationID)
	}
	return s.Update(userID, id, DossierPatch{Prestations: &selection})
}

// AddLigne prepends a blank line (qte 1, pu 0) to the given group.
func (s *DossierService) AddLigne(userID, id uint, groupe string) (*models.Dossier, error) {
	d, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	lignes, err := lignesDuGroupe(d, groupe)
	if err != nil {
		return nil, err
	}
	lignes = append([]models.Ligne{{ID: NewLigneID(), Qte: 1, PU: 0}}, lignes...)
	return s.updateGroupe(userID, id, groupe, lignes)
}

// LignePatch edits one line in place; nil pointers leave fields untouched.
type LignePatch struct {
	Nom *string  `json:"nom"`
	Qte *float64 `json:"qte"`
	PU  *float64 `json:"pu"`
}

func (s *DossierService) UpdateLigne(userID, id uint, groupe, ligneID string, patch LignePatch) (*models.Dossier, error) {
	d, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	lignes, err := lignesDuGroupe(d, groupe)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range lignes {
		if lignes[i].ID != ligneID {
			continue
		}
		found = true
		if patch.Nom != nil {
			lignes[i].Nom = *patch.Nom
		}
		if patch.Qte != nil {
			lignes[i].Qte = *patch.Qte
		}
		if patch.PU != nil {
			lignes[i].PU = *patch.PU
		}
	}
	if !found {
		return nil, ErrLigneIntrouvable
	}
	return s.updateGroupe(userID, id, groupe, lignes)
}

func (s *DossierService) RemoveLigne(userID, id uint, groupe, ligneID string) (*models.Dossier, error) {
	d, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	lignes, err := lignesDuGroupe(d, groupe)
	if err != nil {
		return nil, err
	}
	kept := make([]models.Ligne, 0, len(lignes))
	for _, l := range lignes {
		if l.ID != ligneID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(lignes) {
		return nil, ErrLigneIntrouvable
	}
	return s.updateGroupe(userID, id, groupe, kept)
}

func (s *DossierService) updateGroupe(userID, id uint, groupe string, lignes []models.Ligne) (*models.Dossier, error) {
	patch := DossierPatch{}
	switch groupe {
	case GroupeMarbrerie:
		patch.Marbrerie = &lignes
	case GroupeAutres:
		patch.Autres = &lignes
	default:
		return nil, ErrGroupeInconnu
	}
	return s.Update(userID, id, patch)
}

func lignesDuGroupe(d *models.Dossier, groupe string) ([]models.Ligne, error) {
	switch groupe {
	case GroupeMarbrerie:
		return d.Marbrerie, nil
	case GroupeAutres:
		return d.Autres, nil
	}
	return nil, ErrGroupeInconnu
}

// dedupe collapses duplicate selection ids, keeping first occurrence order.
func dedupe(ids []string) datatypes.JSONSlice[string] {
	seen := make(map[string]struct{}, len(ids))
	out := make(datatypes.JSONSlice[string], 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
