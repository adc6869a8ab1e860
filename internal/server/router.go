package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/auth"
	"github.com/loubet-victor/dossiers-app/internal/config"
	"github.com/loubet-victor/dossiers-app/internal/handlers"
	"github.com/loubet-victor/dossiers-app/internal/httpx"
	"github.com/loubet-victor/dossiers-app/internal/logging"
	"github.com/loubet-victor/dossiers-app/internal/mail"
	"github.com/loubet-victor/dossiers-app/internal/models"
	"github.com/loubet-victor/dossiers-app/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config, log *zap.Logger, mailer mail.Mailer) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth double-checks that the session's user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.Utilisateur{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints stay outside the session gate.
	authHandler := handlers.NewAuthHandler(db, mailer, cfg.BaseURL, log)
	authHandler.Register(mux)

	dossierSvc := services.NewDossierService(db, cfg.ReferencePrefix)
	catalogueSvc := services.NewCatalogueService(db)
	entrepriseSvc := services.NewEntrepriseService(db)

	// Dossier endpoints. List/Create via /dossiers; everything else takes
	// ?id=... on its own path, matching the rest of the API surface.
	dh := handlers.NewDossierHandler(db, dossierSvc, catalogueSvc, entrepriseSvc)
	mux.Handle("/dossiers", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			dh.List(w, r)
		case http.MethodPost:
			dh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/dossiers/get", protect(get(dh.Get)))
	mux.Handle("/dossiers/update", protect(post(dh.Update)))
	mux.Handle("/dossiers/archive", protect(post(dh.Archive)))
	mux.Handle("/dossiers/prestations", protect(post(dh.TogglePrestation)))
	mux.Handle("/dossiers/lignes", protect(post(dh.Lignes)))
	mux.Handle("/dossiers/devis", protect(get(dh.Devis)))

	// Catalogue endpoints
	ph := handlers.NewPrestationHandler(db, catalogueSvc)
	mux.Handle("/prestations", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/prestations/update", protect(post(ph.Update)))
	mux.Handle("/prestations/delete", protect(post(ph.Delete)))

	// Entreprise endpoints
	eh := handlers.NewEntrepriseHandler(db, entrepriseSvc)
	mux.Handle("/entreprise", protect(get(eh.Get)))
	mux.Handle("/entreprise/update", protect(post(eh.Update)))
	mux.Handle("/entreprise/signature", protect(post(eh.Signature)))

	// Backup endpoints
	xh := handlers.NewExportHandler(db, dossierSvc, catalogueSvc, entrepriseSvc)
	mux.Handle("/export", protect(get(xh.Export)))
	mux.Handle("/import", protect(post(xh.Import)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/dossiers", http.StatusSeeOther)
	})

	return withRecover(logging.Middleware(log, mux))
}

// protect wraps a handler with session extraction and the auth gate.
func protect(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

func get(h http.HandlerFunc) http.Handler {
	return methodOnly(http.MethodGet, h)
}

func post(h http.HandlerFunc) http.Handler {
	return methodOnly(http.MethodPost, h)
}

func methodOnly(method string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		h(w, r)
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
