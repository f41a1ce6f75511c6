package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/talentpulse/assessment-backend/internal/db"
	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/render"
	"github.com/talentpulse/assessment-backend/internal/repos"
	"github.com/talentpulse/assessment-backend/internal/services"
	"github.com/talentpulse/assessment-backend/internal/utils"
)

// The render worker is a separate process from the API so a wedged browser
// never takes report generation down with it. It polls for queued renders,
// drives headless Chrome against the report view route, and uploads the
// finished PDF.
func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Loading environment variables from render worker...")
	appBaseURL := utils.GetEnv("APP_BASE_URL", "http://localhost:8080", log)
	serviceRoleSecret := utils.GetEnv("SERVICE_ROLE_SECRET", "", log)
	viewTokenTTL := utils.GetEnvAsInt("VIEW_TOKEN_TTL_SECONDS", 300, log)
	pollSeconds := utils.GetEnvAsInt("RENDER_POLL_INTERVAL_SECONDS", 5, log)

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	reportRepo := repos.NewReportRepo(thePG, log)

	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	viewTokenService, err := services.NewViewTokenService(log, serviceRoleSecret, time.Duration(viewTokenTTL)*time.Second)
	if err != nil {
		log.Error("Could not init ViewTokenService", "error", err)
		os.Exit(1)
	}
	renderer := render.NewChromeRenderer(log)

	worker := render.NewWorker(
		thePG,
		log,
		reportRepo,
		renderer,
		bucketService,
		viewTokenService,
		appBaseURL,
		time.Duration(pollSeconds)*time.Second,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.Start(ctx)
	log.Info("Render worker started", "poll_interval_seconds", pollSeconds)

	<-ctx.Done()
	log.Info("Shutting down render worker...")
}
