// Package main runs the Luna HTTP server: auth, onboarding, events,
// invitations, announcements, and the public live feed.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/luna-live/backend/config"
	"github.com/luna-live/backend/internal/announcements"
	"github.com/luna-live/backend/internal/auth"
	"github.com/luna-live/backend/internal/events"
	"github.com/luna-live/backend/internal/gate"
	"github.com/luna-live/backend/internal/invitations"
	"github.com/luna-live/backend/internal/middleware"
	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/internal/profile"
	"github.com/luna-live/backend/internal/push"
	"github.com/luna-live/backend/internal/realtime"
	"github.com/luna-live/backend/internal/tenants"
	"github.com/luna-live/backend/pkg/database"
	"github.com/luna-live/backend/pkg/queue"
	"github.com/luna-live/backend/pkg/redis"
	"github.com/luna-live/backend/pkg/response"
	"github.com/luna-live/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			AttachmentsBucket:    cfg.AWS.AttachmentsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	revoker := auth.NewRedisRevoker(rdb.Client)
	tokens := auth.NewTokenService(cfg.Session.Secret, cfg.Session.ExpireHours, revoker)
	profiles := profile.NewResolver(pool)
	g := gate.New(tokens, profiles)

	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, tokens, cfg.Session, logger)

	// Tenants and onboarding
	tenantRepo := tenants.NewRepository(pool)
	domainResolver := tenants.NewDomainResolver(cfg.Onboarding.PublicDomains)
	tenantHandler := tenants.NewHandler(tenantRepo, domainResolver, tokens, cfg.Session, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo)

	// Invitations
	invitationRepo := invitations.NewRepository(pool)
	invitationHandler := invitations.NewHandler(invitationRepo, eventRepo, jobQueue, cfg.Server.BaseURL, logger)

	// Push subscriptions
	pushRepo := push.NewRepository(pool)
	pushHandler := push.NewHandler(pushRepo, eventRepo, logger)

	// Announcements
	announcementRepo := announcements.NewRepository(pool)
	announcementHandler := announcements.NewHandler(announcementRepo, eventRepo, hub, jobQueue, pushRepo, s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/signin", authHandler.SignIn)
		authGroup.POST("/signout", authHandler.SignOut)
		authGroup.GET("/status", g.StatusHandler(cfg.Session))
	}

	// Public event surface: join-code preview, announcement feed, push opt-in.
	router.GET("/events/code/:code", eventHandler.Preview)
	router.GET("/events/:id/announcements", announcementHandler.Feed)
	router.POST("/events/:id/subscriptions", pushHandler.Subscribe)
	router.DELETE("/events/:id/subscriptions", pushHandler.Unsubscribe)
	router.GET("/invitations/:token", invitationHandler.Preview)

	// WebSocket feed (public, read-only)
	feedExists := func(c *gin.Context, eventID uuid.UUID) bool {
		ev, err := eventRepo.GetByID(c.Request.Context(), eventID)
		return err == nil && ev != nil && ev.Status == models.EventPublished
	}
	router.GET("/ws", realtime.ServeWs(hub, logger, feedExists))

	// Page routes: the gate redirects between sign-in, onboarding, and the
	// workspace; handlers serve the shell the frontend hydrates.
	pages := router.Group("", g.Pages(cfg.Session))
	{
		pages.GET(gate.PathSignIn, pageHandler("signin"))
		pages.GET(gate.PathSignUp, pageHandler("signup"))
		pages.GET(gate.PathOnboarding, pageHandler("onboarding"))
		pages.GET(gate.PathWorkspace, pageHandler("workspace"))
		pages.GET(gate.PathWorkspace+"/events/:id", pageHandler("workspace"))
		pages.GET("/join/invite/:token", invitationHandler.Redeem)
	}

	// Tenant-scoped API (session cookie required)
	api := router.Group("/api", g.API(cfg.Session))
	{
		// Reachable before onboarding completes.
		api.POST("/onboarding", tenantHandler.Onboard)
		api.POST("/invitations/:token/accept", invitationHandler.Accept)

		onboarded := api.Group("", gate.RequireOnboarded())
		{
			onboarded.GET("/tenant", tenantHandler.Get)
			onboarded.GET("/tenant/members", tenantHandler.ListMembers)

			onboarded.GET("/events", eventHandler.List)
			onboarded.POST("/events", eventHandler.Create)
			onboarded.GET("/events/:id", eventHandler.Get)

			admin := onboarded.Group("/events/:id", gate.RequireEventAdmin(eventRepo))
			{
				admin.PATCH("", eventHandler.Update)
				admin.DELETE("", eventHandler.Delete)
				admin.GET("/admins", eventHandler.ListAdmins)

				admin.POST("/invitations", invitationHandler.Create)
				admin.GET("/invitations", invitationHandler.List)
				admin.DELETE("/invitations/:invitationID", invitationHandler.Revoke)

				admin.POST("/announcements", announcementHandler.Create)
				admin.GET("/announcements", announcementHandler.List)
				admin.PUT("/announcements/:announcementID", announcementHandler.Update)
				admin.DELETE("/announcements/:announcementID", announcementHandler.Delete)
				admin.POST("/announcements/:announcementID/attachment", announcementHandler.AttachmentUploadURL)
				admin.POST("/announcements/:announcementID/attachment/upload", announcementHandler.AttachmentUpload)
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func pageHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": name})
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
