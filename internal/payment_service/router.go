package payment_service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corebank/transfer-pipeline/internal/middleware"
	"github.com/corebank/transfer-pipeline/internal/payment_service/handler"
)

// setupRouter configures API routes and middleware for the payment service
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	paymentHandler *handler.PaymentHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		payments := v1.Group("/payments")
		{
			payments.POST("/deposit", paymentHandler.Deposit)
			payments.POST("/dispense", paymentHandler.Dispense)
			payments.POST("/transfer", paymentHandler.Transfer)
			payments.GET("/:id", paymentHandler.GetByID)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
