package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/briareus/pkg/usecase"
	"github.com/secmon-lab/briareus/pkg/utils/logging"
)

// TenantHeader names the tenant an authenticated caller selects for the
// request. Absent means the caller's home tenant.
const TenantHeader = "X-Briareus-Tenant"

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	authUC usecase.AuthUseCaseInterface
}

type Options func(*Server)

// WithAuth enables bearer token verification on the API routes.
func WithAuth(authUC usecase.AuthUseCaseInterface) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		r.Get("/tenants", s.listTenants)

		r.Route("/tickets", func(r chi.Router) {
			r.Post("/", s.createTicket)
			r.Get("/", s.listTickets)
			r.Get("/{ticketID}", s.getTicket)
			r.Post("/{ticketID}/claim", s.claimTicket)
			r.Post("/{ticketID}/assign", s.assignTicket)
			r.Post("/{ticketID}/status", s.transitionTicket)
			r.Post("/{ticketID}/priority", s.changeTicketPriority)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", s.createAlert)
			r.Get("/", s.listAlerts)
			r.Get("/{alertID}", s.getAlert)
			r.Post("/{alertID}/assign", s.assignAlert)
			r.Post("/{alertID}/escalate", s.escalateAlert)
			r.Get("/{alertID}/recommendations", s.alertRecommendations)
		})

		r.Route("/playbooks", func(r chi.Router) {
			r.Post("/", s.createPlaybook)
			r.Get("/", s.listPlaybooks)
			r.Get("/{playbookID}", s.getPlaybook)
			r.Put("/{playbookID}", s.updatePlaybook)
			r.Post("/{playbookID}/deprecate", s.deprecatePlaybook)
		})

		r.Route("/executions", func(r chi.Router) {
			r.Post("/", s.startExecution)
			r.Get("/", s.listExecutions)
			r.Get("/{executionID}", s.getExecution)
			r.Post("/{executionID}/steps/{stepID}/complete", s.completeStep)
			r.Post("/{executionID}/fail", s.failExecution)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) listTenants(w http.ResponseWriter, r *http.Request) {
	type tenantResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	type response struct {
		Tenants []tenantResponse `json:"tenants"`
	}

	tenants := s.uc.Tenants(r.Context())
	resp := response{
		Tenants: make([]tenantResponse, len(tenants)),
	}
	for i, tenant := range tenants {
		resp.Tenants[i] = tenantResponse{
			ID:   string(tenant.ID),
			Name: tenant.Name,
		}
	}

	writeJSON(r.Context(), w, http.StatusOK, resp)
}
