package delivery

import (
	"net/http"
	"strconv"

	"newsletterbox-backend/internal/newsletter/repository"

	"github.com/gin-gonic/gin"
)

// NewsletterHandler is a pass-through over the store for the browsing UI.
type NewsletterHandler struct {
	newsletterRepo repository.NewsletterRepository
}

func NewNewsletterHandler(newsletterRepo repository.NewsletterRepository) *NewsletterHandler {
	return &NewsletterHandler{
		newsletterRepo: newsletterRepo,
	}
}

func (h *NewsletterHandler) List(c *gin.Context) {
	limit := 50
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	accountID := c.Query("account_id")
	if accountID != "" {
		entries, err := h.newsletterRepo.ListByAccount(accountID, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"newsletters": entries, "limit": limit, "offset": offset})
		return
	}

	entries, err := h.newsletterRepo.ListRecent(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"newsletters": entries, "limit": limit, "offset": offset})
}
