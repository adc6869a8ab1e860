package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/loubet-victor/dossiers-app/internal/auth"
	"github.com/loubet-victor/dossiers-app/internal/httpx"
	"github.com/loubet-victor/dossiers-app/internal/i18n"
	"github.com/loubet-victor/dossiers-app/internal/mail"
	"github.com/loubet-victor/dossiers-app/internal/models"
)

//go:embed templates/*.html
var loginFS embed.FS

var loginTpl = template.Must(template.ParseFS(loginFS, "templates/login.html"))

// AuthHandler implements the passwordless gate: an email form, a one-time
// emailed link, and a session cookie once the link is consumed.
type AuthHandler struct {
	DB      *gorm.DB
	Mailer  mail.Mailer
	BaseURL string
	Log     *zap.Logger
}

func NewAuthHandler(db *gorm.DB, mailer mail.Mailer, baseURL string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Mailer: mailer, BaseURL: baseURL, Log: log}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/auth/verify", h.verify)
	mux.HandleFunc("/logout", h.logout)
}

type loginPage struct {
	Sent  bool
	Error string
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, page loginPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != 0 {
		w.WriteHeader(status)
	}
	if err := loginTpl.Execute(w, page); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	if r.Method == http.MethodGet {
		h.renderLogin(w, 0, loginPage{})
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if email == "" || !strings.Contains(email, "@") {
		if wantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_email", i18n.T(lang, "invalid_email"))
			return
		}
		h.renderLogin(w, http.StatusBadRequest, loginPage{Error: i18n.T(lang, "invalid_email")})
		return
	}

	if err := h.sendLink(r, email); err != nil {
		// Logged, not surfaced: the response stays identical whether or not
		// the address could be reached.
		h.Log.Error("envoi du lien de connexion", zap.String("email", email), zap.Error(err))
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "message": i18n.T(lang, "link_sent")})
		return
	}
	h.renderLogin(w, 0, loginPage{Sent: true})
}

func (h *AuthHandler) sendLink(r *http.Request, email string) error {
	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	jeton := models.JetonConnexion{Email: email, EmpreinteJeton: string(hash), ExpireLe: time.Now().Add(auth.LinkTTL)}
	if err := h.DB.Create(&jeton).Error; err != nil {
		return err
	}
	token, err := auth.IssueLinkToken(email, jeton.ID, secret)
	if err != nil {
		return err
	}
	link := h.BaseURL + "/auth/verify?token=" + url.QueryEscape(token)
	return h.Mailer.SendLoginLink(r.Context(), email, link)
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	claims, err := auth.ParseLinkToken(r.URL.Query().Get("token"))
	if err != nil {
		h.renderLogin(w, http.StatusBadRequest, loginPage{Error: i18n.T(lang, "invalid_link")})
		return
	}
	rowID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		h.renderLogin(w, http.StatusBadRequest, loginPage{Error: i18n.T(lang, "invalid_link")})
		return
	}
	var jeton models.JetonConnexion
	if err := h.DB.First(&jeton, uint(rowID)).Error; err != nil {
		h.renderLogin(w, http.StatusBadRequest, loginPage{Error: i18n.T(lang, "invalid_link")})
		return
	}
	if jeton.ConsommeLe != nil || time.Now().After(jeton.ExpireLe) || jeton.Email != claims.Email ||
		bcrypt.CompareHashAndPassword([]byte(jeton.EmpreinteJeton), []byte(claims.Jeton)) != nil {
		h.renderLogin(w, http.StatusBadRequest, loginPage{Error: i18n.T(lang, "invalid_link")})
		return
	}
	now := time.Now()
	jeton.ConsommeLe = &now
	if err := h.DB.Save(&jeton).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}

	var user models.Utilisateur
	if err := h.DB.Where("email = ?", claims.Email).First(&user).Error; err != nil {
		user = models.Utilisateur{Email: claims.Email}
		if cerr := h.DB.Create(&user).Error; cerr != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "db_error", cerr.Error())
			return
		}
	}
	if err := auth.CreateSession(w, user.ID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "session_error", nil)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	auth.ClearSession(w)
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
