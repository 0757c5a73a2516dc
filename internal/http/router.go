package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/thanhng-dev/classcal/internal/auth"
	"github.com/thanhng-dev/classcal/internal/cache"
	"github.com/thanhng-dev/classcal/internal/config"
	"github.com/thanhng-dev/classcal/internal/domain/event"
	"github.com/thanhng-dev/classcal/internal/http/handlers"
	"github.com/thanhng-dev/classcal/internal/http/middlewares"
	"github.com/thanhng-dev/classcal/internal/observability"
	"github.com/thanhng-dev/classcal/internal/repo/postgres"
)

func NewRouter(cfg config.Config, pool *pgxpool.Pool, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("classcal"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	}

	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up repositories
	eventsRepo := postgres.NewEventsRepo(pool, prom)
	usersRepo := postgres.NewUsersRepo(pool)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authMW := middlewares.NewAuthMiddleware(jwtManager)
	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)

	feedCache := cache.New[[]event.FeedItem](cfg.FeedCacheTTL)

	eventsHandler := handlers.NewEventsHandlerWithCache(eventsRepo, feedCache)
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, cfg)

	// the feed is open; mutations are login-gated
	r.GET("/events", eventsHandler.ListEvents)

	mutations := r.Group("/")
	mutations.Use(authMW.RequireAuth())
	mutations.Use(limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	mutations.POST("/events", eventsHandler.SaveEvent)
	mutations.DELETE("/events/:id", eventsHandler.DeleteEvent)

	authGroup := r.Group("/auth")
	authGroup.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/signup", authHandler.SignUp)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	return r
}
