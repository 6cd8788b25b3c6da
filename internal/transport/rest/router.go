package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/mastersight/internal/auth"
	"github.com/frahmantamala/mastersight/internal/company"
	"github.com/frahmantamala/mastersight/internal/competence"
	"github.com/frahmantamala/mastersight/internal/department"
	"github.com/frahmantamala/mastersight/internal/feedback"
	"github.com/frahmantamala/mastersight/internal/metrics"
	"github.com/frahmantamala/mastersight/internal/role"
	"github.com/frahmantamala/mastersight/internal/team"
	"github.com/frahmantamala/mastersight/internal/transport/middleware"
	"github.com/frahmantamala/mastersight/internal/transport/swagger"
	"github.com/frahmantamala/mastersight/internal/user"
)

type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Company    *company.Handler
	Department *department.Handler
	Role       *role.Handler
	Team       *team.Handler
	Competence *competence.Handler
	Feedback   *feedback.Handler
	Health     *HealthHandler
}

type Options struct {
	Sessions    *auth.SessionResolver
	RateLimiter *middleware.RateLimiter
	Recorder    metrics.Recorder
	// MetricsHandler is mounted at MetricsPath when both are set.
	MetricsHandler http.Handler
	MetricsPath    string
	AllowedOrigins []string
	// ImagesDir serves uploaded images under /images when the local
	// storage driver is in use.
	ImagesDir string
	OpenAPI   []byte
	Logger    *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	if opts.Recorder == nil {
		opts.Recorder = metrics.Nop{}
	}
	limit := func(next http.Handler) http.Handler { return next }
	if opts.RateLimiter != nil {
		limit = opts.RateLimiter.Middleware
	}

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.Metrics(opts.Recorder))
	router.Use(middleware.LoggingMiddleware(opts.Logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeHealthJSON(w, http.StatusNotFound, map[string]string{"error": "not-found"})
	})

	if len(opts.OpenAPI) > 0 {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(opts.OpenAPI)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}
	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, opts.MetricsHandler)
	}
	if opts.ImagesDir != "" {
		router.Handle("/images/*", http.FileServer(http.Dir(opts.ImagesDir)))
	}

	if h.Health != nil {
		router.Get("/health", h.Health.Health)
		router.Get("/ping", h.Health.Ping)
	}

	router.Route("/auth", func(r chi.Router) {
		r.With(limit).Post("/credentials", h.Auth.Credentials)
		r.Post("/logout", h.Auth.Logout)
		r.With(limit).Post("/forgot-password", h.Auth.ForgotPassword)
		r.Get("/validate-token", h.Auth.ValidateToken)
		r.With(limit).Post("/reset-password", h.Auth.ResetPassword)
		r.Get("/google", h.Auth.GoogleLogin)
		r.Get("/google/callback", h.Auth.GoogleCallback)
	})

	router.Route("/users", func(r chi.Router) {
		r.With(limit).Post("/create", h.User.CreateUser)

		r.Group(func(pr chi.Router) {
			pr.Use(opts.Sessions.RequireSession)
			pr.Get("/", h.User.GetCurrentUser)
			pr.Post("/update", h.User.UpdateUser)
			pr.Post("/update-password", h.User.UpdatePassword)
			pr.Post("/upload-image", h.User.UploadImage)
			pr.Get("/companies", h.User.GetCompanies)
			pr.Post("/companies/last-access", h.User.TouchLastAccess)
			pr.Get("/invites", h.User.GetInvites)
			pr.Post("/invites/accept", h.User.AcceptInvite)
			pr.Post("/invites/decline", h.User.DeclineInvite)
		})
	})

	router.Route("/companies", func(r chi.Router) {
		r.Use(opts.Sessions.RequireSession)

		r.Get("/", h.Company.GetCompany)
		r.Post("/update", h.Company.UpdateCompany)
		r.Post("/upload-image", h.Company.UploadImage)

		r.Route("/departments", func(dr chi.Router) {
			dr.Get("/", h.Department.GetDepartments)
			dr.Post("/create", h.Department.CreateDepartment)
			dr.Post("/update", h.Department.UpdateDepartment)
			dr.Post("/delete", h.Department.DeleteDepartment)
		})

		r.Route("/roles", func(rr chi.Router) {
			rr.Get("/", h.Role.GetRoles)
			rr.Post("/create", h.Role.CreateRole)
			rr.Post("/update", h.Role.UpdateRole)
			rr.Post("/delete", h.Role.DeleteRole)
		})

		r.Route("/team", func(tr chi.Router) {
			tr.Get("/", h.Team.GetTeam)
			tr.Post("/add", h.Team.AddMember)
			tr.Post("/edit", h.Team.EditMember)
			tr.Post("/remove", h.Team.RemoveMember)
		})

		r.Route("/competences", func(cr chi.Router) {
			cr.Post("/add", h.Competence.AddCompetence)
			cr.Post("/update", h.Competence.UpdateCompetence)
			cr.Post("/delete", h.Competence.DeleteCompetence)
		})

		r.Route("/feedbacks", func(fr chi.Router) {
			fr.Get("/", h.Feedback.GetFeedbacks)
			fr.Post("/add", h.Feedback.AddFeedback)
			fr.Post("/delete", h.Feedback.DeleteFeedback)
		})
	})
}
