package ledger_service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corebank/transfer-pipeline/internal/ledger_service/handler"
	"github.com/corebank/transfer-pipeline/internal/middleware"
)

// setupRouter configures API routes and middleware for the ledger service
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.POST("/transfer", accountHandler.Transfer)
			accounts.GET("/:accountNumber", accountHandler.Get)
			accounts.GET("/:accountNumber/balance", accountHandler.GetBalance)
			accounts.POST("/:accountNumber/credit", accountHandler.Credit)
			accounts.POST("/:accountNumber/debit", accountHandler.Debit)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
