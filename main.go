package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dream-league-engine/config"
	"dream-league-engine/handlers"
	"dream-league-engine/metrics"
	"dream-league-engine/middleware"
	"dream-league-engine/services"
	"dream-league-engine/storage"
	"dream-league-engine/utils"
	"dream-league-engine/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.NewRecorder()
	}

	var store utils.ObjectStore
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Store(ctx, utils.R2Options{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			AccessKeySecret: cfg.R2.AccessKeySecret,
			Bucket:          cfg.R2.Bucket,
			CDNBaseURL:      cfg.R2.CDNBaseURL,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		store = r2
	} else {
		log.Println("⚠️  R2 not configured, logo and metadata uploads are disabled")
	}

	athleteService := services.NewAthleteService(db, rec)
	teamService := services.NewTeamService(db, rec, cfg.RosterPlaceholderAverages)
	tournamentService := services.NewTournamentService(db, rec)
	creatorService := services.NewCreatorService(db, rec)

	app := fiber.New(fiber.Config{
		BodyLimit: 8 * 1024 * 1024,
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed, liveness excepted
	app.Use(middleware.GatewayAuthMiddleware(cfg.GatewayToken, "/healthz"))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	if rec != nil {
		app.Use(middleware.RequestMetrics(rec))
	}
	app.Use(middleware.UserContextMiddleware())

	handlers.SetupRoutes(app, handlers.Deps{
		Athletes:    athleteService,
		Teams:       teamService,
		Tournaments: tournamentService,
		Creators:    creatorService,
		Store:       store,
		Metrics:     rec,
	})

	synergyWorker := workers.NewSynergyWorker(teamService, cfg.SynergyRefreshInterval, rec)
	if err := synergyWorker.Start(ctx); err != nil {
		log.Fatal("failed to start synergy worker:", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Printf("✅ Synergy refresh running (every %s)", cfg.SynergyRefreshInterval)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
