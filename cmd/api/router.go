package api

import (
	"net/http"

	accountDelivery "newsletterbox-backend/internal/account/delivery"
	authDelivery "newsletterbox-backend/internal/auth/delivery"
	newsletterDelivery "newsletterbox-backend/internal/newsletter/delivery"
	syncDelivery "newsletterbox-backend/internal/sync/delivery"
	"newsletterbox-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, accountHandler *accountDelivery.AccountHandler, syncHandler *syncDelivery.SyncHandler, newsletterHandler *newsletterDelivery.NewsletterHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Account routes (protected)
		accounts := api.Group("/accounts")
		accounts.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			accounts.GET("", accountHandler.ListAccounts)
			accounts.GET("/:id", accountHandler.GetAccount)
			accounts.POST("/connect/begin", accountHandler.BeginConnect)
			accounts.POST("/connect", accountHandler.Connect)
			accounts.POST("/connect/imap", accountHandler.ConnectIMAP)
			accounts.PUT("/:id/cadence", accountHandler.UpdateCadence)
			accounts.DELETE("/:id", accountHandler.Disconnect)
		}

		// Sync routes (protected) - pass trigger and audit log
		sync := api.Group("/sync")
		sync.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			sync.POST("/run", syncHandler.RunPass)
			sync.GET("/logs", syncHandler.ListLogs)
		}

		// Newsletter routes (protected) - browsing read model
		newsletters := api.Group("/newsletters")
		newsletters.Use(authDelivery.AuthMiddleware(cfg.JWTSecret))
		{
			newsletters.GET("", newsletterHandler.List)
		}
	}
}
