package api

import (
	accountDelivery "newsletterbox-backend/internal/account/delivery"
	accountUsecase "newsletterbox-backend/internal/account/usecase"
	newsletterDelivery "newsletterbox-backend/internal/newsletter/delivery"
	newsletterRepo "newsletterbox-backend/internal/newsletter/repository"
	syncDelivery "newsletterbox-backend/internal/sync/delivery"
	syncUsecase "newsletterbox-backend/internal/sync/usecase"
	"newsletterbox-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config            *config.Config
	accountHandler    *accountDelivery.AccountHandler
	syncHandler       *syncDelivery.SyncHandler
	newsletterHandler *newsletterDelivery.NewsletterHandler
}

func NewHandler(cfg *config.Config, accountUc accountUsecase.AccountUsecase, syncUc syncUsecase.SyncUsecase, newsletters newsletterRepo.NewsletterRepository) *Handler {
	return &Handler{
		config:            cfg,
		accountHandler:    accountDelivery.NewAccountHandler(accountUc),
		syncHandler:       syncDelivery.NewSyncHandler(syncUc),
		newsletterHandler: newsletterDelivery.NewNewsletterHandler(newsletters),
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	SetupRoutes(r, h.config, h.accountHandler, h.syncHandler, h.newsletterHandler)

	return r.Run(addr)
}
