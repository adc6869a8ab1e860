package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/config"
	"github.com/loubet-victor/dossiers-app/internal/db"
)

type captureMailer struct{ link string }

func (m *captureMailer) SendLoginLink(_ context.Context, _, link string) error {
	m.link = link
	return nil
}

func newTestServer(t *testing.T) (http.Handler, *captureMailer) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := conn.AutoMigrate(db.Tables()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	mailer := &captureMailer{}
	cfg := config.Config{BaseURL: "http://localhost:8080", ReferencePrefix: "PFV"}
	return New(conn, cfg, zap.NewNop(), mailer), mailer
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestServer(t)
	for _, path := range []string{"/health", "/healthz"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h, _ := newTestServer(t)
	for _, path := range []string{"/dossiers", "/prestations", "/entreprise", "/export"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, w.Code)
		}
	}
}

// Full flow: request a link, follow it, use the session to create and list a
// dossier.
func TestSignInAndCreateDossier(t *testing.T) {
	h, mailer := newTestServer(t)

	form := url.Values{"email": {"famille@example.com"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", w.Code)
	}
	if mailer.link == "" {
		t.Fatalf("no link captured")
	}

	r2 := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(mailer.link, "http://localhost:8080"), nil)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusSeeOther {
		t.Fatalf("verify: expected redirect got %d body=%s", w2.Code, w2.Body.String())
	}
	cookies := w2.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no session cookie")
	}

	r3 := httptest.NewRequest(http.MethodPost, "/dossiers", nil)
	for _, c := range cookies {
		r3.AddCookie(c)
	}
	w3 := httptest.NewRecorder()
	h.ServeHTTP(w3, r3)
	if w3.Code != http.StatusCreated {
		t.Fatalf("create dossier: expected 201 got %d body=%s", w3.Code, w3.Body.String())
	}

	r4 := httptest.NewRequest(http.MethodGet, "/dossiers", nil)
	for _, c := range cookies {
		r4.AddCookie(c)
	}
	w4 := httptest.NewRecorder()
	h.ServeHTTP(w4, r4)
	if w4.Code != http.StatusOK {
		t.Fatalf("list dossiers: expected 200 got %d", w4.Code)
	}
	var payload struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w4.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 1 {
		t.Fatalf("expected 1 dossier got %d", payload.Total)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t)
	r := httptest.NewRequest(http.MethodDelete, "/dossiers/update", nil)
	r.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	// The auth gate runs first; without a session the method check is moot.
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}
