package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/security/auth"
	"github.com/arbeit/talentportal/internal/security/ratelimit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func principalEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := GetPrincipalFromContext(r.Context())
		if !ok {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(p.Email + "|" + p.Role.String() + "|" + p.ClientID))
	})
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body["detail"]
}

func TestJWTMiddleware(t *testing.T) {
	tm := auth.NewTokenManager("secret", "talentportal", time.Hour)
	h := JWTMiddleware(tm, testLogger())(principalEcho())

	user := &domain.User{Email: "client@acme.com", Name: "Client", Role: domain.RoleClientUser, ClientID: "client_001"}
	token, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if d := detailOf(t, rec); d != "Not authenticated" {
			t.Fatalf("unexpected detail %q", d)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized || detailOf(t, rec) != "Invalid token" {
			t.Fatalf("expected invalid token, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := rec.Body.String(); got != "client@acme.com|client_user|client_001" {
			t.Fatalf("unexpected principal %q", got)
		}
	})

	t.Run("public path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
			t.Fatalf("login must be public, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("websocket query token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/candidates/cand_1/reviews?token="+token, nil))
		if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "client@acme.com") {
			t.Fatalf("expected query token to authenticate, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("query token ignored outside ws", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?token="+token, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestCandidateTokensStayInPortal(t *testing.T) {
	tm := auth.NewTokenManager("secret", "talentportal", time.Hour)
	h := JWTMiddleware(tm, testLogger())(principalEcho())
	token, err := tm.GenerateToken(&domain.User{Email: "ana@example.com", Name: "Ana", Role: domain.RoleCandidate})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/candidate-portal/me", http.StatusOK},
		{http.MethodPost, "/api/candidate-portal/change-password", http.StatusOK},
		{http.MethodGet, "/api/jobs", http.StatusForbidden},
		{http.MethodGet, "/api/auth/me", http.StatusForbidden},
		{http.MethodGet, "/ws/candidates/cand_1/reviews", http.StatusForbidden},
		{http.MethodGet, "/api/candidate-portalx", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, rec.Code)
		}
		if tc.want == http.StatusForbidden && detailOf(t, rec) != "Candidate portal access only" {
			t.Fatalf("%s %s: unexpected detail %q", tc.method, tc.path, rec.Body.String())
		}
	}

	for _, path := range []string{"/api/candidate-portal/login", "/api/candidate-portal/register"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
			t.Fatalf("%s must be public, got %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute)
	defer limiter.Stop()
	tm := auth.NewTokenManager("secret", "", time.Hour)

	h := JWTMiddleware(tm, testLogger())(RateLimitMiddleware(limiter, testLogger())(principalEcho()))
	token, _ := tm.GenerateToken(&domain.User{Email: "a@acme.com", Role: domain.RoleClientUser, ClientID: "client_001"})
	peer, _ := tm.GenerateToken(&domain.User{Email: "b@acme.com", Role: domain.RoleClientUser, ClientID: "client_001"})

	send := func(tok string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(token); code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", code)
	}
	if code := send(peer); code != http.StatusTooManyRequests {
		t.Fatalf("tenant shares one bucket, got %d", code)
	}
}

func TestValidateContentType(t *testing.T) {
	h := ValidateContentType(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	cases := []struct {
		name, path, ct string
		body           string
		want           int
	}{
		{"json", "/api/jobs", "application/json", `{}`, http.StatusOK},
		{"form on json route", "/api/jobs", "text/plain", "x", http.StatusUnsupportedMediaType},
		{"multipart upload", "/api/candidates/upload", "multipart/form-data; boundary=x", "x", http.StatusOK},
		{"json on upload", "/api/candidates/upload", "application/json", `{}`, http.StatusUnsupportedMediaType},
		{"empty body", "/api/jobs/job_1/close", "", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body))
			if tc.ct != "" {
				req.Header.Set("Content-Type", tc.ct)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestResourceFromPath(t *testing.T) {
	res, id := resourceFromPath("/api/candidates/cand_123/reviews")
	if res != "candidates" || id != "cand_123" {
		t.Fatalf("unexpected %q %q", res, id)
	}
}
