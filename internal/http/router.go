package http

import (
	"context"
	"log/slog"

	"github.com/geocoder89/userhub/internal/auth"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Store is what the router needs from persistence: the user CRUD surface
// plus a readiness ping.
type Store interface {
	handlers.UserStore
	Ping(ctx context.Context) error
}

type Deps struct {
	Log     *slog.Logger
	Store   Store
	Tokens  *auth.Manager
	Hasher  handlers.PasswordHasher
	Metrics *observability.Prom
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer

	Env                string
	ServiceName        string
	AdminCode          string
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	Tracing            bool
}

// NewRouter leaves gin's process-wide mode alone; callers pick it.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.Tracing {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSAllowedOrigins))
	if d.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))
	}
	r.Use(middlewares.RequireJSON())

	// health
	health := handlers.NewHealthHandler(d.Store.Ping)
	r.GET("/", handlers.Welcome)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Wire up handlers
	authMw := middlewares.NewAuthMiddleware(d.Tokens)
	authHandler := handlers.NewAuthHandler(d.Store, d.Hasher, d.Tokens, d.AdminCode, d.Metrics)
	profileHandler := handlers.NewProfileHandler(d.Store, d.Hasher)
	adminHandler := handlers.NewAdminUsersHandler(d.Store)

	r.POST("/signup", authHandler.SignUp)
	r.POST("/login", authHandler.Login)

	me := r.Group("/", authMw.RequireAuth())
	me.GET("/profile", profileHandler.GetProfile)
	me.PUT("/profile", profileHandler.UpdateProfile)
	me.DELETE("/profile", profileHandler.DeleteProfile)
	me.GET("/auth/capabilities", profileHandler.Capabilities)

	admin := r.Group("/admin", authMw.RequireAuth(), authMw.RequireRole(d.Store, user.RoleAdmin))
	admin.GET("/users", adminHandler.List)
	admin.PUT("/users/:id", adminHandler.Update)
	admin.DELETE("/users/:id", adminHandler.Delete)

	return r
}
