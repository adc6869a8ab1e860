package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const (
	sessionCookieName = "session"
	userIDCtxKey      = ctxKey("userID")

	sessionTTL = 14 * 24 * time.Hour
	// LinkTTL bounds how long an emailed sign-in link stays valid.
	LinkTTL = 15 * time.Minute
)

// UserVerifier is an optional callback to validate that a session's user
// still exists. Set it during app bootstrap via SetUserVerifier. If nil, no
// extra verification is performed.
type UserVerifier func(ctx context.Context, uid uint) bool

var verifier UserVerifier

// SetUserVerifier configures the global verifier used by RequireAuth.
func SetUserVerifier(v UserVerifier) { verifier = v }

// Secret returns SESSION_SECRET or a default dev value.
func Secret() string {
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

type sessionClaims struct {
	UID uint `json:"uid"`
	jwt.RegisteredClaims
}

// LinkClaims travel inside the emailed sign-in link. Subject carries the
// stored token row id; Jeton is the one-time secret matched against its
// bcrypt fingerprint.
type LinkClaims struct {
	Email string `json:"email"`
	Jeton string `json:"jeton"`
	jwt.RegisteredClaims
}

// CreateSession sets a signed session cookie for the user.
func CreateSession(w http.ResponseWriter, userID uint) error {
	now := time.Now()
	claims := sessionClaims{
		UID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret()))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(sessionTTL),
	})
	return nil
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the user id.
func ParseSession(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	claims := &sessionClaims{}
	t, err := jwt.ParseWithClaims(c.Value, claims, keyFunc, jwt.WithLeeway(60*time.Second))
	if err != nil || !t.Valid || claims.UID == 0 {
		return 0, false
	}
	return claims.UID, true
}

// IssueLinkToken signs the one-time sign-in link payload.
func IssueLinkToken(email string, tokenRowID uint, secret string) (string, error) {
	now := time.Now()
	claims := LinkClaims{
		Email: email,
		Jeton: secret,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", tokenRowID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(LinkTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret()))
}

// ParseLinkToken validates an emailed link token and returns its claims.
func ParseLinkToken(token string) (*LinkClaims, error) {
	claims := &LinkClaims{}
	t, err := jwt.ParseWithClaims(token, claims, keyFunc, jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, err
	}
	if !t.Valid || claims.Email == "" || claims.Jeton == "" {
		return nil, errors.New("invalid link token")
	}
	return claims, nil
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected alg")
	}
	return []byte(Secret()), nil
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(userIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// Middleware attaches user id to request context if a session is present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := ParseSession(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects to /login for HTML requests, or returns 401 JSON.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok || uid == 0 {
			deny(w, r)
			return
		}
		if verifier != nil && !verifier(r.Context(), uid) {
			// Session refers to a deleted user: clear and treat as unauthorized.
			ClearSession(w)
			deny(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/html") {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprint(w, `{"error":"unauthorized"}`)
}
