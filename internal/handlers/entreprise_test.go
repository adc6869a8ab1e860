package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loubet-victor/dossiers-app/internal/auth"
	"github.com/loubet-victor/dossiers-app/internal/models"
	"github.com/loubet-victor/dossiers-app/internal/services"
)

// Smallest payload http.DetectContentType recognizes as image/png.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestEntrepriseGetAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	h := NewEntrepriseHandler(db, services.NewEntrepriseService(db))

	w := httptest.NewRecorder()
	h.Get(w, authedRequest(t, db, http.MethodGet, "/entreprise", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var e models.Entreprise
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Nom != services.DefaultEntrepriseNom || e.Email != "test@pf.example" {
		t.Fatalf("unexpected defaults: %+v", e)
	}

	w2 := httptest.NewRecorder()
	h.Update(w2, authedRequest(t, db, http.MethodPost, "/entreprise/update", `{"adresse":"12 rue des Oliviers, Nîmes","siret":"123 456 789 00012"}`))
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w2.Code, w2.Body.String())
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Adresse != "12 rue des Oliviers, Nîmes" || e.Nom != services.DefaultEntrepriseNom {
		t.Fatalf("patch misapplied: %+v", e)
	}
}

func TestEntrepriseSignatureUpload(t *testing.T) {
	db := setupTestDB(t)
	h := NewEntrepriseHandler(db, services.NewEntrepriseService(db))

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("signature", "signature.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(pngMagic); err != nil {
		t.Fatalf("write: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/entreprise/signature", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	user := models.Utilisateur{Email: "test@pf.example"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))

	w := httptest.NewRecorder()
	h.Signature(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var e models.Entreprise
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(e.SignatureDataURL, "data:image/png;base64,") {
		t.Fatalf("expected png data URI got %q", e.SignatureDataURL)
	}
}

func TestEntrepriseSignatureRejectsNonImage(t *testing.T) {
	db := setupTestDB(t)
	h := NewEntrepriseHandler(db, services.NewEntrepriseService(db))

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, _ := mw.CreateFormFile("signature", "notes.txt")
	part.Write([]byte("pas une image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/entreprise/signature", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	user := models.Utilisateur{Email: "test@pf.example"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))

	w := httptest.NewRecorder()
	h.Signature(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "not_an_image") {
		t.Fatalf("expected not_an_image error got %s", w.Body.String())
	}
}
