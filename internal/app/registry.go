package app

import (
	"database/sql"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"go-attend/internal/billing"
	"go-attend/internal/geo"
	"go-attend/internal/messaging/kafka"
	"go-attend/internal/rbac"
	"go-attend/internal/rbac/infra"
	"go-attend/internal/rbac/rbac_http"
	"go-attend/internal/session"
	"go-attend/internal/site"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	siteRepo := site.NewRepository(gormDB)
	sessionRepo := session.NewRepository(gormDB)
	billingRepo := billing.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	siteService := site.NewService(siteRepo)
	gate := billing.NewGate(billingRepo, rdb, envDuration("GATE_CACHE_TTL", billing.DefaultCacheTTL))
	evaluator := geo.NewEvaluator(envFloat("MAX_ACCURACY_METERS", geo.DefaultMaxAccuracyMeters))
	sessionService := session.NewService(
		db,
		sessionRepo,
		siteRepo,
		gate,
		evaluator,
		outboxRepo,
		session.Config{
			GraceWindow: envDuration("GRACE_WINDOW", session.DefaultGraceWindow),
			StaleWindow: envDuration("STALE_WINDOW", session.DefaultStaleWindow),
		},
	)

	// --- Handlers ---
	siteHandler := site.NewHandler(siteService)
	sessionHandler := session.NewHandler(sessionService)
	rbacHandler := rbac.NewHandler(rbacService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		site.RegisterRoutes(api, siteHandler, rbacService)
		session.RegisterRoutes(api, sessionHandler, rbacService)
		rbac_http.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
