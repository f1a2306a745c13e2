package main

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/smurfolan/likkle-backend/internal/cache"
	"github.com/smurfolan/likkle-backend/internal/config"
	"github.com/smurfolan/likkle-backend/internal/geocode"
	"github.com/smurfolan/likkle-backend/internal/handlers"
	"github.com/smurfolan/likkle-backend/internal/handlers/ws"
	"github.com/smurfolan/likkle-backend/internal/httpx"
	"github.com/smurfolan/likkle-backend/internal/middleware"
	"github.com/smurfolan/likkle-backend/internal/repository"
	"github.com/smurfolan/likkle-backend/internal/service"
	"github.com/smurfolan/likkle-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Likkle Backend",
		// Support avatar uploads up to 5MB + overhead.
		BodyLimit: 8 * 1024 * 1024, // 8MB
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-LK-CSRF",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	presenceCache := cache.NewPresenceCache(redisCache)
	snapshotCache := cache.NewSnapshotCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	areaRepo := repository.NewAreaRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	tagRepo := repository.NewTagRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	reconRepo := repository.NewReconciliationRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	pendingRepo := repository.NewPendingNotificationRepository(db)
	versionRepo := repository.NewVersionRepository(db)

	// The hub fans group events out to connected clients and queues for
	// offline ones; it backs the services' Notifier.
	hub := ws.NewHub(pendingRepo)

	// Optional reverse geocoding for new areas.
	var geocoder service.Geocoder
	if cfg.NominatimURL != "" {
		geocoder = geocode.NewNominatimClient(cfg.NominatimURL, cfg.NominatimUserAgent)
		log.Printf("Reverse geocoding enabled via %s", cfg.NominatimURL)
	} else {
		log.Println("NOMINATIM_URL not set; new areas get no approximate address")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, settingRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, settingRepo, tagRepo)
	subscriptionService := service.NewSubscriptionService(
		userRepo, groupRepo, areaRepo, historyRepo, settingRepo, reconRepo,
		snapshotCache, hub,
		cfg.PersonWalkingSpeedKmh, cfg.AutomaticallyCleanupGroupsAndAreas,
	)
	groupService := service.NewGroupService(
		groupRepo, areaRepo, userRepo, tagRepo, settingRepo, reconRepo,
		snapshotCache, hub,
	)
	areaService := service.NewAreaService(areaRepo, tagRepo, geocoder)
	versionService := service.NewVersionService(versionRepo)

	// Initialize S3/MinIO storage (best-effort; feature endpoints return 503 if missing)
	var s3Store *storage.S3Storage
	if s3Cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(s3Cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", s3Cfg.Bucket)
	}

	avatarService := service.NewAvatarService(userRepo, s3Store)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(subscriptionService, hub, presenceCache)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, subscriptionService)
	groupHandler := handlers.NewGroupHandler(groupService, areaService, subscriptionService, presenceCache)
	areaHandler := handlers.NewAreaHandler(areaService)
	locationHandler := handlers.NewLocationHandler(subscriptionService, presenceCache)
	avatarHandler := handlers.NewAvatarHandler(avatarService)
	mediaHandler := handlers.NewMediaHandler(s3Store)
	versionHandler := handlers.NewVersionHandler(versionService)
	adminHandler := handlers.NewAdminHandler(versionService, areaService, presenceCache, hub)

	// Janitor: drop queued notifications nobody reconnected for.
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := pendingRepo.CleanupOld(7 * 24 * time.Hour); err != nil {
				log.Printf("Pending notification cleanup failed: %v", err)
			}
		}
	}()

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Get("/csrf", authHandler.CSRF)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	api.Get("/users/check-username", userHandler.CheckUsername) // Public endpoint for username check

	// Version endpoint (public - no auth required for update checks)
	api.Get("/version", versionHandler.GetVersion)
	api.Get("/version/check", versionHandler.CheckUpdate)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(), middleware.CSRFRequired())
	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Get("/users/me/subscription-setting", userHandler.GetSetting)
	protected.Put("/users/me/subscription-setting", userHandler.UpdateSetting)
	protected.Get("/users/me/history", userHandler.GetHistory)
	protected.Post("/users/me/disable", userHandler.DisableAccount)
	protected.Post(
		"/users/me/avatar",
		limiter.New(limiter.Config{
			Max:        10,
			Expiration: 10 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUint(c, "userID"); err == nil {
					return "avatar:" + strconv.FormatUint(uint64(uid), 10)
				}
				return c.IP()
			},
		}),
		avatarHandler.UploadMyAvatar,
	)
	protected.Delete("/users/me/avatar", avatarHandler.DeleteMyAvatar)
	protected.Get("/media/avatars/*", mediaHandler.GetAvatar)
	protected.Get("/users/search", userHandler.SearchUsers)
	protected.Get("/users/:identifier", userHandler.GetUser)

	// Location routes
	protected.Post("/location", locationHandler.UpdateLocation)
	protected.Get("/location/boundary-eta", locationHandler.BoundaryETA)

	// Group routes
	protected.Post("/groups", groupHandler.CreateGroup)
	protected.Get("/groups", groupHandler.GetAllGroups)
	protected.Get("/groups/mine", groupHandler.GetMyGroups)
	protected.Put("/groups/mine", groupHandler.RelateGroups)
	protected.Get("/groups/:id", groupHandler.GetGroup)
	protected.Post("/groups/:id/areas", groupHandler.AttachArea)
	protected.Get("/groups/:id/members", groupHandler.GetGroupMembers)

	// Operator routes
	admin := protected.Group("/admin", middleware.RequireRole("admin"))
	admin.Post("/versions", adminHandler.PublishVersion)
	admin.Post("/areas", adminHandler.CreateArea)
	admin.Get("/presence", adminHandler.GetPresence)

	// Area routes
	protected.Get("/areas", areaHandler.GetAllAreas)
	protected.Get("/areas/:id", areaHandler.GetArea)
	protected.Get("/tags", areaHandler.GetAllTags)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			// Upgrade to WebSocket
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Likkle backend is running",
		})
	})

	log.Printf("Server starting on port %s...", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
