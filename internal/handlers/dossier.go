package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/auth"
	"github.com/loubet-victor/dossiers-app/internal/httpx"
	"github.com/loubet-victor/dossiers-app/internal/models"
	"github.com/loubet-victor/dossiers-app/internal/money"
	"github.com/loubet-victor/dossiers-app/internal/quote"
	"github.com/loubet-victor/dossiers-app/internal/services"
)

type DossierHandler struct {
	DB          *gorm.DB
	Dossiers    *services.DossierService
	Catalogue   *services.CatalogueService
	Entreprises *services.EntrepriseService
}

func NewDossierHandler(db *gorm.DB, dossiers *services.DossierService, catalogue *services.CatalogueService, entreprises *services.EntrepriseService) *DossierHandler {
	return &DossierHandler{DB: db, Dossiers: dossiers, Catalogue: catalogue, Entreprises: entreprises}
}

// dossierVue decorates a stored dossier with its computed total for list and
// detail responses; the total itself is never persisted.
type dossierVue struct {
	models.Dossier
	Total        float64 `json:"total"`
	TotalFormate string  `json:"total_formate"`
}

func (h *DossierHandler) vue(d *models.Dossier, catalogue []models.Prestation) dossierVue {
	total := services.TotauxDossier(d, catalogue)
	return dossierVue{Dossier: *d, Total: total, TotalFormate: money.Format(total)}
}

// List: GET /dossiers?q=...
func (h *DossierHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	dossiers, err := h.Dossiers.List(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	filtered := services.FilterDossiers(dossiers, r.URL.Query().Get("q"))
	catalogue, err := h.Catalogue.List(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	items := make([]dossierVue, 0, len(filtered))
	for i := range filtered {
		items = append(items, h.vue(&filtered[i], catalogue))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// Create: POST /dossiers
func (h *DossierHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	d, err := h.Dossiers.Create(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "dossier_create_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

// Get: GET /dossiers/get?id=...
func (h *DossierHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	d, err := h.Dossiers.Get(uid, id)
	if err != nil {
		h.writeDossierError(w, err)
		return
	}
	catalogue, err := h.Catalogue.List(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, h.vue(d, catalogue))
}

// Update: POST /dossiers/update?id=... with a partial-field JSON patch.
func (h *DossierHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var patch services.DossierPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	d, err := h.Dossiers.Update(uid, id, patch)
	if err != nil {
		h.writeDossierError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Archive: POST /dossiers/archive?id=...&confirm=1
// Without confirm=1 the request is a silent no-op: archiving is destructive
// enough to require the caller to have asked the user first.
func (h *DossierHandler) Archive(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if r.URL.Query().Get("confirm") != "1" && r.FormValue("confirm") != "1" {
		httpx.JSON(w, http.StatusOK, map[string]any{"archived": false})
		return
	}
	if _, err := h.Dossiers.Archive(uid, id); err != nil {
		h.writeDossierError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"archived": true})
}

// TogglePrestation: POST /dossiers/prestations?id=...&prestation=<catalogue id>
func (h *DossierHandler) TogglePrestation(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	prestationID := r.URL.Query().Get("prestation")
	if prestationID == "" {
		prestationID = r.FormValue("prestation")
	}
	if prestationID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_prestation", nil)
		return
	}
	d, err := h.Dossiers.TogglePrestation(uid, id, prestationID)
	if err != nil {
		h.writeDossierError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Lignes: POST /dossiers/lignes?id=...&groupe=marbrerie|autres&action=add|update|remove[&ligne=...]
// update carries a JSON body {nom, qte, pu} with optional fields.
func (h *DossierHandler) Lignes(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	q := r.URL.Query()
	groupe := q.Get("groupe")
	action := q.Get("action")
	ligneID := q.Get("ligne")

	var d *models.Dossier
	var err error
	switch action {
	case "add":
		d, err = h.Dossiers.AddLigne(uid, id, groupe)
	case "update":
		var patch services.LignePatch
		if derr := json.NewDecoder(r.Body).Decode(&patch); derr != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		d, err = h.Dossiers.UpdateLigne(uid, id, groupe, ligneID, patch)
	case "remove":
		d, err = h.Dossiers.RemoveLigne(uid, id, groupe, ligneID)
	default:
		httpx.JSONError(w, http.StatusBadRequest, "invalid_action", nil)
		return
	}
	if err != nil {
		h.writeDossierError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Devis: GET /dossiers/devis?id=... serves the printable quote. The page
// triggers the browser's print dialog on load; printing itself stays a host
// concern.
func (h *DossierHandler) Devis(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	d, err := h.Dossiers.Get(uid, id)
	if err != nil {
		h.writeDossierError(w, err)
		return
	}
	catalogue, err := h.Catalogue.List(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	entreprise, err := h.Entreprises.GetOrCreate(uid, h.userEmail(uid))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := quote.Render(w, quote.Build(d, catalogue, entreprise)); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "devis_render_failed", nil)
	}
}

func (h *DossierHandler) userEmail(uid uint) string {
	var user models.Utilisateur
	if err := h.DB.First(&user, uid).Error; err != nil {
		return ""
	}
	return user.Email
}

func (h *DossierHandler) writeDossierError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrDossierIntrouvable):
		httpx.JSONError(w, http.StatusNotFound, "dossier_introuvable", nil)
	case errors.Is(err, services.ErrGroupeInconnu):
		httpx.JSONError(w, http.StatusBadRequest, "groupe_inconnu", nil)
	case errors.Is(err, services.ErrLigneIntrouvable):
		httpx.JSONError(w, http.StatusNotFound, "ligne_introuvable", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
	}
}

func idParam(r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		idStr = r.FormValue("id")
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
