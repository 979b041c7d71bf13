package app

import (
	"context"
	"errors"
	"fmt"

	"collegium_backend/database"
	"collegium_backend/internal/auth"
	"collegium_backend/internal/config"
	"collegium_backend/internal/email"
	"collegium_backend/internal/handlers"
	"collegium_backend/internal/logger"
	"collegium_backend/internal/middleware"
	"collegium_backend/internal/models"
	"collegium_backend/internal/repositories"
	"collegium_backend/internal/routes"
	"collegium_backend/internal/services"
	"collegium_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func Run() {
	if err := godotenv.Load(); err != nil {
		// .env is optional in deployed environments
		logger.Info(".env not loaded", "reason", err.Error())
	}

	config.LoadConfig()
	cfg := config.GetConfig()
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	ginRouter, worker := SetupRouter(cfg, gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *workers.SubscriptionWorker) {
	planRepo := repositories.NewPlanRepository(gormDB)
	subscriptionRepo := repositories.NewSubscriptionRepository(gormDB)
	paymentRepo := repositories.NewPaymentRepository(gormDB)
	usageRepo := repositories.NewUsageRepository(gormDB)

	razorpayService := services.NewRazorpayService(cfg.Razorpay)
	planService := services.NewPlanService(planRepo)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, planRepo)
	entitlementService := services.NewEntitlementService(subscriptionService, usageRepo)
	paymentService := services.NewPaymentService(razorpayService, paymentRepo, subscriptionRepo, planRepo, subscriptionService)
	contentService := services.NewContentService(gormDB, entitlementService)

	appHandlers := &routes.AppHandlers{
		PlanHandler:         handlers.NewPlanHandler(planService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(subscriptionService, entitlementService),
		PaymentHandler:      handlers.NewPaymentHandler(paymentService),
		ContentHandler:      handlers.NewContentHandler(contentService),
	}

	parser := auth.NewTokenParser(cfg.JWT.Secret)

	ginRouter := initializeGinRouter()
	routes.RegisterRoutes(ginRouter, appHandlers, parser)

	sender := email.NewSender(cfg)
	worker := workers.NewSubscriptionWorker(subscriptionRepo, sender, subjectEmailLookup(gormDB))

	return ginRouter, worker
}

func initializeGinRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}

// subjectEmailLookup resolves subscriber addresses for reminder mail from
// the contacts table. A missing row skips the reminder.
func subjectEmailLookup(db *gorm.DB) workers.EmailLookup {
	return func(ctx context.Context, subjectID string, subjectType models.SubjectType) (string, error) {
		var contact models.SubjectContact
		err := db.WithContext(ctx).
			Where("subject_id = ? AND subject_type = ?", subjectID, subjectType).
			First(&contact).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", nil
			}
			return "", err
		}
		return contact.Email, nil
	}
}
