package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/auth"
	"github.com/loubet-victor/dossiers-app/internal/httpx"
	"github.com/loubet-victor/dossiers-app/internal/i18n"
	"github.com/loubet-victor/dossiers-app/internal/models"
	"github.com/loubet-victor/dossiers-app/internal/services"
)

// Import files are hand-sized JSON backups; cap reads defensively.
const maxImportBytes = 16 << 20

// ExportDocument is the backup schema: the same field names the entities use
// on the wire, no versioning.
type ExportDocument struct {
	Dossiers    []models.Dossier    `json:"dossiers"`
	Prestations []models.Prestation `json:"prestations"`
	Entreprise  *models.Entreprise  `json:"entreprise"`
}

type ExportHandler struct {
	DB          *gorm.DB
	Dossiers    *services.DossierService
	Catalogue   *services.CatalogueService
	Entreprises *services.EntrepriseService
}

func NewExportHandler(db *gorm.DB, dossiers *services.DossierService, catalogue *services.CatalogueService, entreprises *services.EntrepriseService) *ExportHandler {
	return &ExportHandler{DB: db, Dossiers: dossiers, Catalogue: catalogue, Entreprises: entreprises}
}

// Export: GET /export — downloads the full per-user state, archived dossiers
// included, as a date-named JSON file.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	dossiers, err := h.Dossiers.List(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	prestations, err := h.Catalogue.List(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	entreprise, err := h.Entreprises.GetOrCreate(uid, h.userEmail(uid))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	doc := ExportDocument{Dossiers: dossiers, Prestations: prestations, Entreprise: entreprise}

	filename := fmt.Sprintf("export-dossiers-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		// headers already sent; nothing sensible left to do
		_ = err
	}
}

// Import: POST /import — multipart JSON file (field "file") or raw JSON body.
// Prestations upsert by (nom, prix); dossiers insert as new rows under the
// current user. Not transactional: rows written before a mid-loop failure
// stay written, matching the original backup tool.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))

	var reader io.Reader = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err == nil {
		if file, _, ferr := r.FormFile("file"); ferr == nil {
			defer file.Close()
			reader = file
		}
	}

	var doc ExportDocument
	if err := json.NewDecoder(reader).Decode(&doc); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_file", i18n.T(lang, "invalid_file"))
		return
	}

	imported := map[string]int{"prestations": 0, "dossiers": 0}
	for _, p := range doc.Prestations {
		if _, err := h.Catalogue.Upsert(uid, p.Nom, p.Prix); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "import_failed", err.Error())
			return
		}
		imported["prestations"]++
	}
	for i := range doc.Dossiers {
		d := doc.Dossiers[i]
		d.ID = 0 // fresh row, server assigns the identifier
		d.UserID = uid
		if err := h.DB.Create(&d).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "import_failed", err.Error())
			return
		}
		imported["dossiers"]++
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "message": i18n.T(lang, "import_done"), "imported": imported})
}

func (h *ExportHandler) userEmail(uid uint) string {
	var user models.Utilisateur
	if err := h.DB.First(&user, uid).Error; err != nil {
		return ""
	}
	return user.Email
}
