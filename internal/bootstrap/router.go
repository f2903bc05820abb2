package bootstrap

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/config"
	httpapi "github.com/freelancehub/dashboard-backend/internal/api/http"
	"github.com/freelancehub/dashboard-backend/internal/api/http/middleware"
	"github.com/freelancehub/dashboard-backend/internal/auth"
	authmw "github.com/freelancehub/dashboard-backend/internal/auth/middleware"
	cvhttp "github.com/freelancehub/dashboard-backend/internal/cv/http"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/notify"
	fileshttp "github.com/freelancehub/dashboard-backend/internal/files/http"
	"github.com/freelancehub/dashboard-backend/internal/files/storage"
	pipelineshttp "github.com/freelancehub/dashboard-backend/internal/pipelines/http"
	shipmentshttp "github.com/freelancehub/dashboard-backend/internal/shipments/http"
	"github.com/freelancehub/dashboard-backend/internal/users"
	videoshttp "github.com/freelancehub/dashboard-backend/internal/videos/http"
)

// RouterDeps carries the opened infrastructure. DB, Redis, Verifier and
// Presigner may be nil.
type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	Logger      *zap.Logger
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Dashboards  *Dashboards
	Verifier    auth.TokenVerifier
	Presigner   storage.Presigner
	Now         func() time.Time
}

// ErrVerifierMissing is returned when firebase auth is configured without a
// token verifier.
var ErrVerifierMissing = errors.New("firebase auth mode requires a token verifier")

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	cfg := dep.Config
	if cfg.Auth.Mode == config.AuthModeFirebase && dep.Verifier == nil {
		return nil, ErrVerifierMissing
	}
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id", "X-User-Id", "X-User-Email", "X-User-Name"},
		ExposeHeaders:    []string{"X-Request-Id", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// nil pointers must not become non-nil interfaces
	var rdb redis.UniversalClient
	var subscriber httpapi.Subscriber
	if dep.Redis != nil {
		rdb = dep.Redis
		subscriber = notify.NewRedisPublisher(dep.Redis)
	}
	var ensurer authmw.UserEnsurer
	var profiles users.Profiles
	if dep.DB != nil {
		repo := users.NewRepo(dep.DB)
		ensurer, profiles = repo, repo
	}

	httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, dep.DB, rdb).RegisterRoutes(r)

	api := r.Group("/api/v1")
	if cfg.Auth.Mode == config.AuthModeFirebase {
		api.Use(authmw.FirebaseAuth(dep.Verifier, ensurer))
	} else {
		api.Use(authmw.DevUser(ensurer))
	}

	limiter := middleware.NewActorLimiter(cfg.Limits.MutationsPerSecond, cfg.Limits.MutationBurst)
	mutate := middleware.RateLimit(limiter)

	users.NewHandler(profiles).Register(api)
	httpapi.NewNotificationsHandler(subscriber, 0).RegisterRoutes(api)

	d := dep.Dashboards
	pipelineshttp.New(d.Pipelines, dep.Now).Register(api.Group("/pipelines"), mutate)
	fileshttp.New(d.Files, dep.Presigner, dep.Now).Register(api.Group("/files"), mutate)
	shipmentshttp.New(d.Shipments, dep.Now).Register(api.Group("/shipments"), mutate)
	videoshttp.New(d.Videos).Register(api.Group("/videos"), mutate)
	cvhttp.New(d.CV, dep.Now).Register(api.Group("/cv"), mutate)

	return r, nil
}
