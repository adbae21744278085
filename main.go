package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"player-rewards-system/handlers"
	"player-rewards-system/middleware"
	"player-rewards-system/models"
	"player-rewards-system/services"
	"player-rewards-system/utils"
	"player-rewards-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB, enough for item image uploads
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-Account, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Caller identity is required for direct user actions, event management
	// and the admin surface. Signed operations carry their own authority.
	app.Use("/user", middleware.AccountContextMiddleware())
	app.Use("/manage", middleware.AccountContextMiddleware())
	app.Use("/admin", middleware.AccountContextMiddleware())

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitAssetStore(); err != nil {
		log.Fatal("failed to initialize asset store client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.RoleAssignment{},
		&models.SignerNonce{},
		&models.Profile{},
		&models.Achievement{},
		&models.Event{},
		&models.EventReward{},
		&models.CosmeticItem{},
		&models.ItemOwnership{},
		&models.EquipSlot{},
		&models.Listing{},
		&models.Wallet{},
		&models.MarketplaceConfig{},
		&models.Notification{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Construct leaves first; higher components receive immutable references.
	notifier := services.NewNotifier(db)
	accessService := services.NewAccessControlService(db, notifier)
	authorizer := services.NewAuthorizerService(db, accessService, services.DomainFromEnv())
	profileService := services.NewProfileService(db, authorizer, notifier)
	achievementService := services.NewAchievementService(db, authorizer, notifier)
	eventService := services.NewEventService(db, accessService, notifier)
	cosmeticService := services.NewCosmeticService(db, accessService, notifier)
	walletService := services.NewWalletService(db, accessService, notifier)
	marketplaceService := services.NewMarketplaceService(db, accessService, notifier)

	if err := accessService.Bootstrap(strings.ToLower(os.Getenv("BOOTSTRAP_ADMIN_ACCOUNT"))); err != nil {
		log.Fatal("failed to bootstrap admin role:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Push the notification outbox to the mirror/indexing service.
	mirrorClient := workers.NewMirrorPushClient(db)
	go workers.PushNotifications(ctx, mirrorClient, 10*time.Second)

	sweeper, err := eventService.StartWindowSweeper()
	if err != nil {
		log.Fatal("failed to start event window sweeper:", err)
	}

	handlers.SetupProfileRoutes(app, profileService, authorizer)
	handlers.SetupAchievementRoutes(app, achievementService)
	handlers.SetupEventRoutes(app, eventService)
	handlers.SetupCosmeticRoutes(app, cosmeticService)
	handlers.SetupMarketplaceRoutes(app, marketplaceService)
	handlers.SetupAdminRoutes(app, accessService, walletService)
	handlers.SetupNotificationRoutes(app, notifier)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Notification mirror push running (every 10s)")
	log.Println("✅ Event window sweeper running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := sweeper.Shutdown(); err != nil {
		log.Printf("Sweeper shutdown error: %v", err)
	}
}
