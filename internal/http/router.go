package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/studyflow/accounthub/internal/auth"
	"github.com/studyflow/accounthub/internal/cache"
	"github.com/studyflow/accounthub/internal/config"
	"github.com/studyflow/accounthub/internal/domain/user"
	"github.com/studyflow/accounthub/internal/http/handlers"
	"github.com/studyflow/accounthub/internal/http/middlewares"
	"github.com/studyflow/accounthub/internal/observability"
	"github.com/studyflow/accounthub/internal/security"
	"github.com/studyflow/accounthub/internal/service"
)

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for credential payloads

// Deps carries everything the router wires together. Pool, Redis, Prom
// and Metrics may be nil; Store must not be (use service.UnavailableStore
// when the database is down).
type Deps struct {
	Log     *slog.Logger
	Store   service.UserStore
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Prom    *observability.Prom
	Metrics *prometheus.Registry
	Cfg     config.Config
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" && d.Cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("accounthub"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// services

	hasher := security.NewHasher(d.Cfg.BcryptCost)
	authSvc := service.NewAuthService(d.Store, hasher, d.Log)
	gate := service.NewAccessGate(d.Store)
	jwtManager := auth.NewManager(d.Cfg.JWTSecret, d.Cfg.AccessTTL())
	statsCache := cache.NewStatsCache(d.Redis, d.Cfg.StatsCacheTTL())

	// health

	ping := func() error {
		if d.Pool == nil {
			// degraded startup: no pool means the database never came up
			if _, down := d.Store.(service.UnavailableStore); down {
				return user.ErrStoreUnavailable
			}

			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	// handlers

	authHandler := handlers.NewAuthHandler(authSvc, jwtManager, d.Prom, statsCache)
	usersHandler := handlers.NewUsersHandler(d.Store)
	adminHandler := handlers.NewAdminHandler(d.Store, gate, statsCache)

	authMw := middlewares.NewAuthMiddleware(jwtManager)

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/user/:id", usersHandler.GetByID)
	}

	admin := api.Group("/admin")
	admin.Use(authMw.RequireAuth(), middlewares.RequireAdmin(gate))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/role", adminHandler.UpdateRole)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
	}

	return r
}
