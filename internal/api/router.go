package api

import (
	"net/http"
	"time"

	"internboard/internal/api/handler"
	"internboard/internal/api/middleware"
	"internboard/internal/app/notify"
	"internboard/internal/app/service"
	"internboard/internal/common/security"
	"internboard/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	projectService *service.ProjectService,
	userRepo repository.UserRepository,
	bus notify.Bus,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Parses "Authorization: Bearer <token>" and stashes the verification
	// result in the request context; the Authenticator decides what to do
	// with it. Skipped entirely when no secret is configured so the
	// Authenticator can answer with a configuration error instead.
	if security.TokenAuth != nil {
		r.Use(jwtauth.Verifier(security.TokenAuth))
	}

	authenticate := middleware.Authenticator(userRepo)

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Room-scoped notification stream; joining is unauthenticated.
	eventsHandler := handler.NewEventsHandler(bus)
	r.Get("/events", eventsHandler.Stream)

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", func(auth chi.Router) {
			authHandler.RegisterPublicRoutes(auth)
			auth.Group(func(protected chi.Router) {
				protected.Use(authenticate)
				authHandler.RegisterProtectedRoutes(protected)
			})
		})

		projectHandler := handler.NewProjectHandler(projectService)
		v1.Route("/projects", func(projects chi.Router) {
			projects.Use(authenticate)
			projectHandler.RegisterRoutes(projects)
		})
	})

	return r
}
