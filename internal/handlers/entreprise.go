package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/auth"
	"github.com/loubet-victor/dossiers-app/internal/httpx"
	"github.com/loubet-victor/dossiers-app/internal/models"
	"github.com/loubet-victor/dossiers-app/internal/services"
)

// Signature uploads are small images; anything above this is refused.
const maxSignatureBytes = 2 << 20

type EntrepriseHandler struct {
	DB          *gorm.DB
	Entreprises *services.EntrepriseService
}

func NewEntrepriseHandler(db *gorm.DB, entreprises *services.EntrepriseService) *EntrepriseHandler {
	return &EntrepriseHandler{DB: db, Entreprises: entreprises}
}

// Get: GET /entreprise — loads the profile, creating it with defaults and the
// session email on first access.
func (h *EntrepriseHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	e, err := h.Entreprises.GetOrCreate(uid, h.userEmail(uid))
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

// Update: POST /entreprise/update with changed fields.
func (h *EntrepriseHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var patch services.EntreprisePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	// Make sure the row exists before merging into it.
	if _, err := h.Entreprises.GetOrCreate(uid, h.userEmail(uid)); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	e, err := h.Entreprises.Update(uid, patch)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

// Signature: POST /entreprise/signature — multipart image stored as data URI.
func (h *EntrepriseHandler) Signature(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseMultipartForm(maxSignatureBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	file, _, err := r.FormFile("signature")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", nil)
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(io.LimitReader(file, maxSignatureBytes))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "read_failed", nil)
		return
	}
	ct := http.DetectContentType(raw)
	if !strings.HasPrefix(ct, "image/") {
		httpx.JSONError(w, http.StatusBadRequest, "not_an_image", nil)
		return
	}
	dataURL := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(raw)

	if _, err := h.Entreprises.GetOrCreate(uid, h.userEmail(uid)); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	e, err := h.Entreprises.Update(uid, services.EntreprisePatch{SignatureDataURL: &dataURL})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EntrepriseHandler) userEmail(uid uint) string {
	var user models.Utilisateur
	if err := h.DB.First(&user, uid).Error; err != nil {
		return ""
	}
	return user.Email
}
