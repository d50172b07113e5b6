package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"debate-arena-system/handlers"
	"debate-arena-system/middleware"
	"debate-arena-system/models"
	"debate-arena-system/services"
	"debate-arena-system/workers"

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
		BodyLimit: 1 * 1024 * 1024, // 1MB — statements are text
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token, X-Sweep-Secret",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// TranslateError turns unique-constraint violations into
	// gorm.ErrDuplicatedKey — the submission path depends on it.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Debate{},
		&models.DebateParticipant{},
		&models.Statement{},
		&models.DebateWatcher{},
		&models.UserMirror{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	judgeServiceURL := os.Getenv("JUDGE_SERVICE_URL")
	if judgeServiceURL == "" {
		log.Fatal("JUDGE_SERVICE_URL environment variable not set")
	}
	notifyServiceURL := os.Getenv("NOTIFY_SERVICE_URL")
	if notifyServiceURL == "" {
		log.Fatal("NOTIFY_SERVICE_URL environment variable not set")
	}
	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		log.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("DEBATE_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("DEBATE_SERVICE_TOKEN environment variable not set")
	}

	notifier := services.NewNotifierClient(db, notifyServiceURL, serviceToken)
	verdicts := services.NewVerdictClient(judgeServiceURL, serviceToken)
	debateService := services.NewDebateService(db, notifier, verdicts)
	sweeper := services.NewSweeperService(db, debateService)

	profileSyncClient := workers.NewProfileSyncClient(db, profileServiceURL, serviceToken)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollProfiles(ctx, profileSyncClient, 1*time.Minute)

	sweeper.StartSweepScheduler()

	handlers.SetupDebateRoutes(app, debateService)
	handlers.SetupSweepRoutes(app, sweeper)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Sweep scheduler running (every 5m)")
	log.Println("✅ Profile polling running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
