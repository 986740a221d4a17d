package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/grclab/riskflow/pkg/usecase"
	"github.com/grclab/riskflow/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

type Options func(*Server)

// New builds the REST router over the workflow use cases. Identity and
// permission checking sit upstream; handlers trust the actor ID carried in
// the X-Actor-ID header.
func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orgs/{orgID}", func(r chi.Router) {
			r.Post("/risks", s.handleSubmitIntake)
			r.Get("/risks", s.handleListRisks)
			r.Get("/audit", s.handleListAudit)
			r.Get("/users/{userID}/notifications", s.handleListNotifications)
		})

		r.Route("/risks/{riskID}", func(r chi.Router) {
			r.Get("/", s.handleGetRisk)
			r.Get("/state", s.handleGetState)
			r.Get("/history", s.handleListHistory)
			r.Get("/links", s.handleGetLinks)

			r.Post("/validate", s.handleValidate)
			r.Post("/assessor", s.handleAssignAssessor)
			r.Post("/assessment", s.handleSubmitAssessment)
			r.Post("/assessment/review", s.handleReviewAssessment)
			r.Post("/assessment/revision", s.handleSubmitRevision)

			r.Post("/treatment/decision", s.handleSubmitDecision)
			r.Post("/treatment/approver", s.handleSetApprover)
			r.Post("/treatment/executive-decision", s.handleExecutiveDecision)
			r.Route("/treatment/updates", func(r chi.Router) {
				r.Post("/", s.handleSubmitMitigationUpdate)
				r.Get("/", s.handleListMitigationUpdates)
			})
		})

		r.Post("/notifications/{notificationID}/read", s.handleMarkNotificationRead)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

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
