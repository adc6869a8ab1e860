package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/auth"
	"github.com/loubet-victor/dossiers-app/internal/httpx"
	"github.com/loubet-victor/dossiers-app/internal/services"
)

type PrestationHandler struct {
	DB        *gorm.DB
	Catalogue *services.CatalogueService
}

func NewPrestationHandler(db *gorm.DB, catalogue *services.CatalogueService) *PrestationHandler {
	return &PrestationHandler{DB: db, Catalogue: catalogue}
}

// List: GET /prestations — seeds the default tariff sheet on first load.
func (h *PrestationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	prestations, err := h.Catalogue.ListOrSeed(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": prestations, "total": len(prestations)})
}

// Create: POST /prestations — blank entry for inline editing.
func (h *PrestationHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	p, err := h.Catalogue.Create(uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "prestation_create_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update: POST /prestations/update?id=... with {nom} and/or {prix}.
func (h *PrestationHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var patch services.PrestationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p, err := h.Catalogue.Update(uid, id, patch)
	if err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete: POST /prestations/delete?id=... — hard delete, no confirmation.
// Dossiers referencing the id keep it; totals resolve stale ids to 0.
func (h *PrestationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Catalogue.Delete(uid, id); err != nil {
		h.writeCatalogueError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *PrestationHandler) writeCatalogueError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrPrestationIntrouvable) {
		httpx.JSONError(w, http.StatusNotFound, "prestation_introuvable", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
}
