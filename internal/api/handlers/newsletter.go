package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/service"
)

// NewsletterRequest is the payload of POST /v1/newsletter
type NewsletterRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"firstName"`
}

// NewsletterResponse tells the caller the Mailchimp status of the address
type NewsletterResponse struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

// HandleNewsletterSignup handles POST /v1/newsletter
func HandleNewsletterSignup(newsletter *service.NewsletterService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NewsletterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		sub, err := newsletter.Subscribe(c.Request.Context(), req.Email, req.FirstName)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, NewsletterResponse{Email: sub.Email, Status: string(sub.Status)})
	}
}
