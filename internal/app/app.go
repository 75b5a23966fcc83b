// Package app assembles services, handlers and middleware into the HTTP
// server handler. cmd/server and the end-to-end tests share it.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/arbeit/talentportal/internal/ai"
	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/handler"
	"github.com/arbeit/talentportal/internal/observability/metrics"
	"github.com/arbeit/talentportal/internal/observability/requestid"
	"github.com/arbeit/talentportal/internal/security"
	"github.com/arbeit/talentportal/internal/security/audit"
	"github.com/arbeit/talentportal/internal/security/auth"
	"github.com/arbeit/talentportal/internal/security/middleware"
	"github.com/arbeit/talentportal/internal/security/ratelimit"
	"github.com/arbeit/talentportal/internal/service"
	"github.com/arbeit/talentportal/internal/uploads"
	"github.com/arbeit/talentportal/pkg/config"
)

// Repositories is the storage the services run on
type Repositories struct {
	Users             domain.UserRepository
	Clients           domain.ClientRepository
	Jobs              domain.JobRepository
	Candidates        domain.CandidateRepository
	Reviews           domain.ReviewRepository
	CandidateAccounts domain.CandidateAccountRepository
}

// Options configures New. Provider defaults to the heuristic provider and
// a nil Exports disables export caching.
type Options struct {
	Config     *config.Config
	Repos      Repositories
	Provider   ai.Provider
	Uploads    *uploads.Store
	Exports    service.ExportCache
	Checks     map[string]handler.Pinger
	ReviewFeed bool
	Logger     *slog.Logger
}

// App holds the wired services and the root handler
type App struct {
	Handler    http.Handler
	Auth       *service.AuthService
	Clients    *service.ClientService
	Jobs       *service.JobService
	Candidates *service.CandidateService
	Reviews    *service.ReviewService
	Portal     *service.PortalService
	Tokens     *auth.TokenManager

	limiter *ratelimit.Limiter
}

// New wires every layer of the portal
func New(opts Options) *App {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Provider == nil {
		opts.Provider = ai.NewHeuristicProvider()
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	limiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	guard := ratelimit.NewLoginGuard(cfg.LoginAttemptsPerMinute)
	auditLog := audit.NewLogger(log)
	policy := security.NewPolicy(log)

	authSvc := service.NewAuthService(opts.Repos.Users, opts.Repos.Clients, tokens, guard, log)
	clientSvc := service.NewClientService(opts.Repos.Clients, opts.Repos.Users, authSvc, policy, log)
	jobSvc := service.NewJobService(opts.Repos.Jobs, clientSvc, policy, log)
	candidateSvc := service.NewCandidateService(opts.Repos.Candidates, jobSvc, opts.Provider, opts.Uploads, opts.Exports, policy, log)
	reviewSvc := service.NewReviewService(opts.Repos.Reviews, candidateSvc, service.NewReviewBroker(), auditLog, log)
	portalSvc := service.NewPortalService(opts.Repos.CandidateAccounts, tokens, guard, policy, log)

	a := &App{
		Auth:       authSvc,
		Clients:    clientSvc,
		Jobs:       jobSvc,
		Candidates: candidateSvc,
		Reviews:    reviewSvc,
		Portal:     portalSvc,
		Tokens:     tokens,
		limiter:    limiter,
	}

	mux := http.NewServeMux()

	authHandler := handler.NewAuthHandler(authSvc, log)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	clientHandler := handler.NewClientHandler(clientSvc, log)
	mux.HandleFunc("GET /api/clients", clientHandler.List)
	mux.HandleFunc("POST /api/clients", clientHandler.Create)
	mux.HandleFunc("GET /api/clients/{id}", clientHandler.Get)
	mux.HandleFunc("PUT /api/clients/{id}", clientHandler.Update)
	mux.HandleFunc("PATCH /api/clients/{id}/disable", clientHandler.Disable)
	mux.HandleFunc("GET /api/clients/{id}/users", clientHandler.ListUsers)
	mux.HandleFunc("POST /api/clients/{id}/users", clientHandler.CreateUser)

	jobHandler := handler.NewJobHandler(jobSvc, log)
	mux.HandleFunc("GET /api/jobs", jobHandler.List)
	mux.HandleFunc("POST /api/jobs", jobHandler.Create)
	mux.HandleFunc("GET /api/jobs/{id}", jobHandler.Get)
	mux.HandleFunc("PUT /api/jobs/{id}", jobHandler.Update)
	mux.HandleFunc("PATCH /api/jobs/{id}/close", jobHandler.Close)

	candidateHandler := handler.NewCandidateHandler(candidateSvc, cfg.MaxUploadBytes, log)
	mux.HandleFunc("GET /api/jobs/{id}/candidates", candidateHandler.ListForJob)
	mux.HandleFunc("POST /api/candidates", candidateHandler.Create)
	mux.HandleFunc("POST /api/candidates/upload", candidateHandler.Upload)
	mux.HandleFunc("GET /api/candidates/{id}", candidateHandler.Get)
	mux.HandleFunc("PUT /api/candidates/{id}", candidateHandler.Update)
	mux.HandleFunc("GET /api/candidates/{id}/cv", candidateHandler.ViewCV)
	mux.HandleFunc("POST /api/candidates/{id}/regenerate-story", candidateHandler.RegenerateStory)
	mux.HandleFunc("POST /api/candidates/{id}/story/regenerate", candidateHandler.RegenerateStory)
	mux.HandleFunc("GET /api/candidates/{id}/story/export", candidateHandler.ExportStory)

	reviewHandler := handler.NewReviewHandler(reviewSvc, log)
	mux.HandleFunc("POST /api/candidates/{id}/review", reviewHandler.Create)
	mux.HandleFunc("GET /api/candidates/{id}/reviews", reviewHandler.List)

	portalHandler := handler.NewPortalHandler(portalSvc, log)
	mux.HandleFunc("POST /api/candidate-portal/register", portalHandler.Register)
	mux.HandleFunc("POST /api/candidate-portal/login", portalHandler.Login)
	mux.HandleFunc("GET /api/candidate-portal/me", portalHandler.Me)
	mux.HandleFunc("POST /api/candidate-portal/change-password", portalHandler.ChangePassword)
	mux.HandleFunc("GET /api/candidate-portal/accounts", portalHandler.ListAccounts)
	mux.HandleFunc("POST /api/candidate-portal/accounts", portalHandler.CreateAccount)
	mux.HandleFunc("PATCH /api/candidate-portal/accounts/{id}/disable", portalHandler.DisableAccount)

	if opts.Uploads != nil {
		mux.Handle("GET /api/uploads/{file}", handler.NewUploadsHandler(opts.Uploads, log))
	}
	if opts.ReviewFeed {
		mux.Handle("GET /ws/candidates/{id}/reviews", handler.NewReviewFeedHandler(reviewSvc, log, cfg.CORSAllowedOrigins))
	}

	health := handler.NewHealthHandler(opts.Checks, log)
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("GET /readyz", health.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	// request ID -> metrics -> CORS -> body limits -> JWT -> rate limit -> audit
	var h http.Handler = mux
	h = middleware.AuditMiddleware(auditLog)(h)
	h = middleware.RateLimitMiddleware(limiter, log)(h)
	h = middleware.JWTMiddleware(tokens, log)(h)
	h = middleware.ValidateContentType(log)(h)
	h = middleware.LimitBody(bodyLimit(cfg.MaxUploadBytes))(h)
	h = withCORS(cfg.CORSAllowedOrigins, h)
	h = metrics.HTTPMetricsMiddleware(h)
	h = requestid.Middleware(log)(h)
	a.Handler = otelhttp.NewHandler(h, "talentportal",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + metrics.RouteLabel(r.URL.Path)
		}),
	)
	return a
}

// Close releases background resources held by the app
func (a *App) Close() {
	a.limiter.Stop()
}

// bodyLimit leaves room for multipart framing around the largest upload
func bodyLimit(maxUpload int64) int64 {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return maxUpload + 1<<20
}

// withCORS answers preflights and honors the configured origins
func withCORS(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(allowed, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else if len(allowed) > 0 && allowed[0] != "*" {
			w.Header().Set("Access-Control-Allow-Origin", allowed[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+requestid.Header)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
