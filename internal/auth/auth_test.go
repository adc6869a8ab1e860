package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	if err := CreateSession(w, 42); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "session" {
		t.Fatalf("expected one session cookie got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42 got %d ok=%v", uid, ok)
	}
}

func TestParseSessionRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ParseSession(req); ok {
		t.Fatalf("no cookie should mean no session")
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: "pas.un.jwt"})
	if _, ok := ParseSession(req); ok {
		t.Fatalf("garbage cookie accepted")
	}
}

func TestLinkTokenRoundTrip(t *testing.T) {
	token, err := IssueLinkToken("famille@example.com", 7, "secret-one-time")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseLinkToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "famille@example.com" || claims.Jeton != "secret-one-time" || claims.Subject != "7" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseLinkToken("nimporte-quoi"); err == nil {
		t.Fatalf("garbage token accepted")
	}
}

func TestRequireAuthDeniesAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(RequireAuth(next))

	// JSON clients get a 401.
	req := httptest.NewRequest(http.MethodGet, "/dossiers", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}

	// Browsers get redirected to the login form.
	req2 := httptest.NewRequest(http.MethodGet, "/dossiers", nil)
	req2.Header.Set("Accept", "text/html")
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)
	if w2.Code != http.StatusSeeOther || w2.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login got %d %q", w2.Code, w2.Header().Get("Location"))
	}
}

func TestRequireAuthPassesValidSession(t *testing.T) {
	SetUserVerifier(nil)
	var seen uint
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(RequireAuth(next))

	rec := httptest.NewRecorder()
	if err := CreateSession(rec, 7); err != nil {
		t.Fatalf("create session: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/dossiers", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK || seen != 7 {
		t.Fatalf("expected pass-through with uid 7, got code=%d uid=%d", w.Code, seen)
	}
}
