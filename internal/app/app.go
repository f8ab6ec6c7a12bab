// Package app owns every long-lived component of the server and wires them together.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"staff_sync_backend/internal/access"
	"staff_sync_backend/internal/cache"
	"staff_sync_backend/internal/config"
	"staff_sync_backend/internal/database"
	"staff_sync_backend/internal/repositories"
	"staff_sync_backend/internal/router"
	"staff_sync_backend/internal/services"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// App is the application controller.
type App struct {
	cfg    *config.Config
	db     *sql.DB
	rdb    *redis.Client
	deps   router.Dependencies
	engine *gin.Engine
}

// New connects to PostgreSQL and Redis and builds the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	utils.InitJWT(cfg.JWT.Secret, cfg.JWT.Issuer)

	db, err := database.InitDB(ctx, cfg.DB.DSN())
	if err != nil {
		return nil, err
	}
	rdb, err := cache.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &App{cfg: cfg, db: db, rdb: rdb}
	a.deps = Wire(cfg, db, rdb)
	a.engine = NewEngine(cfg, a.deps)
	return a, nil
}

// Wire builds repositories, stores and services over open connections.
func Wire(cfg *config.Config, db *sql.DB, rdb *redis.Client) router.Dependencies {
	userRepo := repositories.NewUserRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	sessions := cache.NewSessionStore(rdb)
	checkins := cache.NewCheckInStore(rdb)
	policy := access.DefaultPolicy()

	return router.Dependencies{
		AuthService:       services.NewAuthService(userRepo, db, sessions, checkins, policy, cfg.JWT.TTL),
		AttendanceService: services.NewAttendanceService(attendanceRepo, checkins, cfg.Attendance),
		CommentService:    services.NewCommentService(commentRepo),
		ReportService:     services.NewReportService(reportRepo, attendanceRepo, cfg.Attendance.Location),
		Policy:            policy,
	}
}

// NewEngine builds the gin engine with the shared middleware and all routes.
func NewEngine(cfg *config.Config, deps router.Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.RequestID())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", utils.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{utils.RequestIDHeader}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.Setup(engine, deps)
	return engine
}

// Init prepares persistent state: schema and the bootstrap admin.
func (a *App) Init(ctx context.Context) error {
	if a.cfg.DB.ApplySchema {
		if err := database.ApplySchema(ctx, a.db); err != nil {
			return err
		}
	}
	if a.cfg.Seed.Enabled() {
		admin, err := a.deps.AuthService.SeedAdmin(ctx, a.cfg.Seed.AdminName, a.cfg.Seed.AdminEmail, a.cfg.Seed.AdminPassword)
		if err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
		if admin != nil {
			utils.LogInfo("Seeded admin account", map[string]interface{}{"staff_id": admin.StaffID, "email": admin.Email})
		}
	}
	return nil
}

// Engine returns the HTTP handler.
func (a *App) Engine() *gin.Engine {
	return a.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": a.cfg.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.LogInfo("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Dispose releases the connections.
func (a *App) Dispose() {
	if err := a.rdb.Close(); err != nil {
		utils.LogError(err, "Failed to close redis")
	}
	if err := a.db.Close(); err != nil {
		utils.LogError(err, "Failed to close database")
	}
}
