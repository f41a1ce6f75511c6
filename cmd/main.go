package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/talentpulse/assessment-backend/internal/db"
	"github.com/talentpulse/assessment-backend/internal/handlers"
	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/middleware"
	"github.com/talentpulse/assessment-backend/internal/repos"
	"github.com/talentpulse/assessment-backend/internal/server"
	"github.com/talentpulse/assessment-backend/internal/services"
	"github.com/talentpulse/assessment-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
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

	// Env
	log.Info("Loading environment variables from main...")
	serviceRoleSecret := utils.GetEnv("SERVICE_ROLE_SECRET", "", log)
	viewTokenTTL := utils.GetEnvAsInt("VIEW_TOKEN_TTL_SECONDS", 300, log)
	improvementThreshold := utils.GetEnvAsFloat("IMPROVEMENT_THRESHOLD", 2.5, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	assignmentRepo := repos.NewAssignmentRepo(thePG, log)
	groupRepo := repos.NewGroupRepo(thePG, log)
	dimensionRepo := repos.NewDimensionRepo(thePG, log)
	dimensionScoreRepo := repos.NewDimensionScoreRepo(thePG, log)
	answerRepo := repos.NewAnswerRepo(thePG, log)
	benchmarkRepo := repos.NewBenchmarkRepo(thePG, log)
	feedbackRepo := repos.NewFeedbackRepo(thePG, log)
	reportRepo := repos.NewReportRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	viewTokenService, err := services.NewViewTokenService(log, serviceRoleSecret, time.Duration(viewTokenTTL)*time.Second)
	if err != nil {
		log.Error("Could not init ViewTokenService", "error", err)
		os.Exit(1)
	}
	reportService := services.NewReportService(
		thePG,
		log,
		assignmentRepo,
		groupRepo,
		dimensionRepo,
		dimensionScoreRepo,
		answerRepo,
		benchmarkRepo,
		feedbackRepo,
		reportRepo,
		improvementThreshold,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	reportHandler := handlers.NewReportHandler(log, reportService)

	// Middleware
	log.Info("Setting up middleware from main...")
	serviceTokenMiddleware := middleware.NewServiceTokenMiddleware(log, viewTokenService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ReportHandler:          reportHandler,
		ServiceTokenMiddleware: serviceTokenMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
