package rest

import (
	"database/sql"
	"net/http"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/auth"
	"github.com/frahmantamala/hr-directory/internal/people"
	"github.com/frahmantamala/hr-directory/internal/transport/middleware"
	"github.com/frahmantamala/hr-directory/internal/transport/swagger"
	"github.com/frahmantamala/hr-directory/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-redis/redis/v8"
)

// Handlers groups everything the router mounts. Metrics and Redis are
// optional.
type Handlers struct {
	Auth    *auth.Handler
	Users   *user.Handler
	People  *people.Handler
	RBAC    *auth.RBACAuthorization
	Metrics *middleware.Metrics
	DB      *sql.DB
	Redis   *redis.Client
}

func RegisterAllRoutes(router *chi.Mux, cfg *internal.Config, h Handlers) {
	healthHandler := NewHealthHandler(h.DB, h.Redis, cfg.Database.QueryTimeout)
	rbac := h.RBAC

	// Apply global middleware
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware())
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware)
		router.Handle(cfg.Observability.Metrics.Path, h.Metrics.Handler())
	}

	// OpenAPI document and Swagger UI live outside the API prefix
	router.Get("/openapi.yml", swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/token", h.Auth.Login)
		r.Post("/token/refresh", h.Auth.RefreshToken)
		r.Post("/token/blacklist", h.Auth.Blacklist)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			pr.Get("/profile", h.Users.Profile)
			pr.Get("/me", h.Users.Profile)
			pr.Post("/change-password", h.Users.ChangePassword)

			pr.Group(func(ar chi.Router) {
				ar.Use(rbac.RequireAdmin())
				ar.Post("/register", h.Users.Register)
				ar.Get("/users", h.Users.ListUsers)
				ar.Put("/users/{id}/role", h.Users.AssignRole)
			})

			pr.Route("/people", func(rr chi.Router) {
				read := rbac.Middleware(auth.OperationRead)
				write := rbac.Middleware(auth.OperationWrite)
				del := rbac.Middleware(auth.OperationDelete)

				rr.With(read).Get("/", h.People.List)
				rr.With(write).Post("/", h.People.Create)

				rr.With(read).Get("/filter_employees", h.People.FilterEmployees)
				rr.With(read).Get("/human_resources", h.People.HumanResources)
				rr.With(read).Get("/by_department", h.People.ByDepartment)
				rr.With(del).Delete("/delete_by_identifier", h.People.DeleteByIdentifier)
				rr.With(write).Patch("/update_by_identifier", h.People.UpdateByIdentifier)

				rr.With(read).Get("/{id}", h.People.Get)
				rr.With(write).Put("/{id}", h.People.Replace)
				rr.With(write).Patch("/{id}", h.People.Patch)
				rr.With(del).Delete("/{id}", h.People.Delete)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		status, body := internal.NewNotFoundError("Not found", "NOT_FOUND").ToHTTPResponse()
		writeJSON(w, status, body)
	})
}
