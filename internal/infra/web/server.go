package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/config"
	"sales-copilot-bff/internal/infra/logging"
	red "sales-copilot-bff/internal/infra/redis"
	"sales-copilot-bff/internal/infra/worker"
	"sales-copilot-bff/internal/usecase"
)

// Server is the dashboard-facing HTTP layer. It owns no state of its own;
// every route delegates to a use case.
type Server struct {
	inbox    usecase.InboxUseCase
	research usecase.ResearchUseCase
	prospect usecase.ProspectingUseCase
	drafts   usecase.DraftUseCase
	tips     usecase.TipUseCase
	entities usecase.EntityUseCase

	auth    *AuthManager
	limiter *red.RateLimiter
	pool    *worker.Pool

	rateLimit  int
	rateWindow time.Duration
	log        *zerolog.Logger
}

func NewServer(
	inbox usecase.InboxUseCase,
	research usecase.ResearchUseCase,
	prospect usecase.ProspectingUseCase,
	drafts usecase.DraftUseCase,
	tips usecase.TipUseCase,
	entities usecase.EntityUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	pool *worker.Pool,
	cfg config.ServerConfig,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		inbox:      inbox,
		research:   research,
		prospect:   prospect,
		drafts:     drafts,
		tips:       tips,
		entities:   entities,
		auth:       auth,
		limiter:    limiter,
		pool:       pool,
		rateLimit:  cfg.RateLimit,
		rateWindow: cfg.RateWindow,
		log:        &l,
	}
}

// Routes builds the chi router. Session and health endpoints are open;
// everything else requires a valid session cookie or bearer token.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log), Timeout(30*time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", s.handleLogin)
		r.Delete("/session", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/inbox", s.handleInboxList)
			r.With(s.rateLimited("inbox")).Post("/inbox/refresh", s.handleInboxRefresh)
			r.With(s.rateLimited("inbox")).Post("/inbox/{id}/accept", s.inboxAction("accept"))
			r.With(s.rateLimited("inbox")).Post("/inbox/{id}/decline", s.inboxAction("decline"))
			r.With(s.rateLimited("inbox")).Post("/inbox/{id}/retry", s.inboxAction("retry"))
			r.With(s.rateLimited("inbox")).Post("/inbox/{id}/complete", s.inboxAction("complete"))
			r.With(s.rateLimited("inbox")).Post("/inbox/{id}/snooze", s.handleSnooze)

			r.With(s.rateLimited("jobs")).Post("/research", s.handleResearchStart)
			r.Get("/research/{id}", s.handleResearchGet)
			r.Get("/research/{id}/insights", s.handleInsights)
			r.With(s.rateLimited("jobs")).Post("/prospecting", s.handleProspectingStart)
			r.Get("/prospecting/{id}", s.handleProspectingGet)

			r.With(s.rateLimited("drafts")).Post("/drafts", s.handleDraft)
			r.Get("/credits", s.handleCredits)
			r.Get("/tip", s.handleTip)

			r.With(s.rateLimited("entities")).Patch("/entities/{kind}/{id}", s.handleEntityPatch)
		})
	})

	return r
}

// requireSession rejects unauthenticated requests and stamps the user id
// onto the context so use cases and the journal see who acted.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := logging.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimited caps mutating requests per user per window. A Redis outage
// fails open; slowing the dashboard down is worse than a missed cap.
func (s *Server) rateLimited(group string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.limiter == nil || s.rateLimit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID := logging.UserIDFromContext(r.Context())
			ok, err := s.limiter.Allow(r.Context(), red.UserActionKey(userID, group), s.rateLimit, s.rateWindow)
			if err != nil {
				s.log.Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
