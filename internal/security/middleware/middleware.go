package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/security"
	"github.com/arbeit/talentportal/internal/security/audit"
	"github.com/arbeit/talentportal/internal/security/auth"
	"github.com/arbeit/talentportal/internal/security/ratelimit"
)

type PrincipalContextKey struct{}

const portalPrefix = "/api/candidate-portal/"

// IsPublic reports whether a request may pass without a bearer token
func IsPublic(r *http.Request) bool {
	p := r.URL.Path
	switch {
	case r.Method == http.MethodOptions:
		return true
	case p == "/healthz" || p == "/readyz" || p == "/metrics":
		return true
	case r.Method == http.MethodPost && (p == "/api/auth/login" || p == "/api/auth/register"):
		return true
	case r.Method == http.MethodPost && (p == portalPrefix+"login" || p == portalPrefix+"register"):
		return true
	case r.Method == http.MethodGet && strings.HasPrefix(p, "/api/uploads/"):
		return true
	}
	return false
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// JWTMiddleware authenticates bearer tokens and stores the Principal on the
// context. Websocket upgrades may pass the token as ?token= since browsers
// cannot set headers on them. Candidate tokens only open the portal routes.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := auth.ExtractToken(r.Header.Get("Authorization"))
			if errors.Is(err, auth.ErrMissingToken) && strings.HasPrefix(r.URL.Path, "/ws/") {
				if q := r.URL.Query().Get("token"); q != "" {
					tokenString, err = q, nil
				}
			}
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				if errors.Is(err, auth.ErrMissingToken) {
					writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				} else {
					writeDetail(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
				w.Header().Set("WWW-Authenticate", "Bearer")
				if errors.Is(err, auth.ErrTokenExpired) {
					writeDetail(w, http.StatusUnauthorized, "Token has expired")
				} else {
					writeDetail(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}
			principal, err := claims.Principal()
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			if principal.Role == domain.RoleCandidate && !strings.HasPrefix(r.URL.Path, portalPrefix) {
				log.Warn("candidate token outside portal", slog.String("path", r.URL.Path))
				writeDetail(w, http.StatusForbidden, "Candidate portal access only")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware throttles authenticated callers. Client users share a
// bucket per tenant; staff are limited per account.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipalFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			key := "user:" + principal.Email
			if principal.ClientID != "" {
				key = "client:" + principal.ClientID
			}
			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded", slog.String("key", key), slog.String("path", r.URL.Path))
				writeDetail(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type auditRecorder struct {
	http.ResponseWriter
	status int
}

func (w *auditRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// AuditMiddleware records every mutating API call with its outcome
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodOptions || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			rec := &auditRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			principal, _ := GetPrincipalFromContext(r.Context())
			resource, resourceID := resourceFromPath(r.URL.Path)
			status := "ok"
			switch {
			case rec.status == http.StatusForbidden:
				auditLog.LogDenied(r.Context(), principal.ClientID, principal.Email, r.Method+" "+r.URL.Path)
				return
			case rec.status >= 400:
				status = "failed"
			}
			auditLog.LogAction(r.Context(), principal.ClientID, principal.Email, strings.ToLower(r.Method), resource, resourceID, status, r.URL.Path)
		})
	}
}

// resourceFromPath maps /api/<resource>/<id>/... onto (resource, id)
func resourceFromPath(path string) (string, string) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api"), "/"), "/")
	resource, id := "", ""
	if len(parts) > 0 {
		resource = parts[0]
	}
	if len(parts) > 1 {
		id = parts[1]
	}
	return resource, id
}

// GetPrincipalFromContext returns the authenticated caller
func GetPrincipalFromContext(ctx context.Context) (security.Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey{}).(security.Principal)
	return p, ok
}

// WithPrincipal stores a caller on ctx, used by tests and internal callers
func WithPrincipal(ctx context.Context, p security.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey{}, p)
}
