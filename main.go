package main

import (
	"context"
	"log"
	"net/http"

	api "notify-backend/cmd/api"
	authdomain "notify-backend/internal/auth/domain"
	authRepo "notify-backend/internal/auth/repository"
	authUsecase "notify-backend/internal/auth/usecase"
	"notify-backend/internal/notification"
	pushdomain "notify-backend/internal/push/domain"
	pushRepo "notify-backend/internal/push/repository"
	pushUsecase "notify-backend/internal/push/usecase"
	"notify-backend/pkg/config"
	"notify-backend/pkg/database"
	"notify-backend/pkg/webpush"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &pushdomain.PushSubscription{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	subscriptionRepo := pushRepo.NewSubscriptionRepository(db)

	// Parse the VAPID identity once at startup. Without it the server
	// still boots for health checks and registration, but dispatch
	// reports a configuration error.
	var identity *webpush.Identity
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" && cfg.VAPIDSubject != "" {
		identity, err = webpush.NewIdentity(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
		if err != nil {
			log.Fatal("Invalid VAPID configuration:", err)
		}
		log.Printf("[Push] VAPID identity loaded (subject: %s)", cfg.VAPIDSubject)
	} else {
		log.Printf("[WARN] VAPID keys not configured, push dispatch disabled")
	}

	pushClient := &http.Client{Timeout: cfg.PushTimeout}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)
	pushUsecaseInstance := pushUsecase.NewPushUsecase(subscriptionRepo, identity, pushClient, cfg.PushWorkers, cfg.PushTTL)

	// Initialize Pub/Sub notification trigger if configured
	if cfg.GoogleProjectID != "" {
		topicName := cfg.GooglePubSubTopic
		if topicName == "" {
			topicName = "notification-events"
		}
		notifService, err := notification.NewService(cfg.GoogleProjectID, topicName, pushUsecaseInstance, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize notification trigger: %v", err)
		} else {
			go notifService.Start(context.Background())
		}
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, pushUsecaseInstance, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
