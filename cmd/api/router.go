package api

import (
	authdelivery "notify-backend/internal/auth/delivery"
	authUsecase "notify-backend/internal/auth/usecase"
	pushDelivery "notify-backend/internal/push/delivery"
	pushUsecase "notify-backend/internal/push/usecase"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, pushUc pushUsecase.PushUsecase) {
	pushHandler := pushDelivery.NewPushHandler(pushUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Dispatch: staff users and the service identity only
		notifications := api.Group("/notifications")
		notifications.Use(authdelivery.Identify(authUc), authdelivery.RequireSender())
		{
			notifications.POST("/send", pushHandler.SendNotification)
		}

		// Subscription store write surface: any authenticated user
		subscriptions := api.Group("/push/subscriptions")
		subscriptions.Use(authdelivery.Identify(authUc), authdelivery.RequireAuthenticated())
		{
			subscriptions.POST("", pushHandler.RegisterSubscription)
			subscriptions.DELETE("", pushHandler.UnregisterSubscription)
		}
	}
}
