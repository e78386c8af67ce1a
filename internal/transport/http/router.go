package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"moderation/internal/domain"
	"moderation/internal/dto"
	"moderation/internal/httpx"
	"moderation/internal/observability/middleware"
	"moderation/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	APIPrefix      string   // e.g. "/api"; empty mounts routes at the root
	CORSOrigins    []string // empty allows any origin
	LoginRateLimit int      // per IP per minute on /auth; 0 disables
	TrustProxy     bool
	AppName        string
	AppVersion     string
}

type handlers struct {
	auth       service.AuthService
	moderation service.ModerationService
}

func NewRouter(auth service.AuthService, moderation service.ModerationService, opts Options) *chi.Mux {
	h := &handlers{auth: auth, moderation: moderation}
	r := chi.NewRouter()

	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.WithRequestAndTrace)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithMetrics)
	r.Use(cors.Handler(corsOptions(opts.CORSOrigins)))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, dto.VersionResponse{Name: opts.AppName, Version: opts.AppVersion})
	})

	api := func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			if opts.LoginRateLimit > 0 {
				ar.Use(httprate.LimitByIP(opts.LoginRateLimit, time.Minute))
			}
			ar.Post("/register", h.register)
			ar.Post("/login", h.login)
			ar.Post("/logout", h.logout)
		})

		// Drafts arrive from the generator without any session.
		api.Post("/emails/webhook", h.intakeDraft)

		api.Group(func(pr chi.Router) {
			pr.Use(h.requireSession)

			pr.Get("/users/me", h.me)

			pr.Get("/emails/pending", h.listPending)
			pr.Get("/emails/all", h.listAll)
			pr.Patch("/emails/{email_id}/status", h.setStatus)
			pr.Patch("/emails/{email_id}", h.updateContent)
			pr.Delete("/emails/{email_id}/delete", h.deleteDraft)

			pr.With(h.requireRole(domain.RoleAdmin)).Patch("/admin/{user_id}/role", h.promoteUser)
		})
	}
	if opts.APIPrefix == "" {
		r.Group(api)
	} else {
		r.Route(opts.APIPrefix, api)
	}

	return r
}

func corsOptions(origins []string) cors.Options {
	c := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		// any origin, echoed back
		c.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	} else {
		c.AllowedOrigins = origins
	}
	return c
}

// writeServiceError maps domain errors onto status codes and {"detail"} bodies.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "internal server error"

	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		status, detail = http.StatusBadRequest, "Username already registered"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, detail = http.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, domain.ErrUnauthorized):
		status, detail = http.StatusUnauthorized, "Could not validate credentials"
		w.Header().Set("WWW-Authenticate", "Bearer")
	case errors.Is(err, domain.ErrPendingApproval):
		status, detail = http.StatusForbidden, "Application pending review"
	case errors.Is(err, domain.ErrForbidden):
		status, detail = http.StatusForbidden, "Not enough permissions"
	case errors.Is(err, domain.ErrUserNotFound):
		status, detail = http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrDraftNotFound):
		status, detail = http.StatusNotFound, "Email not found"
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, httpx.ErrBadBody):
		status, detail = http.StatusUnprocessableEntity, err.Error()
	}

	attrs := append([]any{"error", err, "status", status, "path", r.URL.Path}, middleware.LogAttrs(r.Context())...)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
	} else {
		slog.Warn("request rejected", attrs...)
	}
	httpx.WriteDetail(w, status, detail)
}
