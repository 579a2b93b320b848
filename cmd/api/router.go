package main

import (
	"github.com/gin-gonic/gin"

	"payrouter-backend/internal/shared/middleware"
	"payrouter-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	// Health check lives outside the versioned group for load balancers
	router.GET("/health", c.ProviderHandler.Health)

	v1 := router.Group("/api/v1")
	{
		setupPaymentRoutes(v1, c)
		setupWebhookRoutes(v1, c)
		setupProviderRoutes(v1, c)
	}

	return router
}

// ========================================
// PAYMENT ROUTES
// ========================================
func setupPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	payments := v1.Group("/payments")
	{
		payments.POST("", c.PaymentHandler.CreatePayment)
		payments.GET("/:id", c.PaymentHandler.GetPayment)
		payments.GET("/external-id/:externalId", c.PaymentHandler.GetPaymentByExternalID)
	}
}

// ========================================
// WEBHOOK ROUTES
// ========================================
func setupWebhookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/daimo", c.WebhookHandler.DaimoWebhook)
		webhooks.POST("/lumen", c.WebhookHandler.LumenWebhook)
	}
}

// ========================================
// PROVIDER / OPS ROUTES
// ========================================
func setupProviderRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.GET("/providers/status", c.ProviderHandler.ListProviderStatus)
	v1.GET("/routing/stats", c.ProviderHandler.RoutingStats)
}
