package settlement

import (
	"github.com/gin-gonic/gin"
)

// SetupSettlementRoutes configures the payment notification endpoints. The
// gateway posts server-to-server callbacks and also redirects the customer's
// browser through GET, so both methods land on the same handler.
func SetupSettlementRoutes(rg *gin.RouterGroup, controller *Controller) {
	payments := rg.Group("/payments")
	{
		payments.POST("/callback", controller.HandleNotification) // POST /api/v1/payments/callback
		payments.GET("/callback", controller.HandleNotification)  // GET  /api/v1/payments/callback
		payments.POST("/webhook", controller.HandleNotification)  // POST /api/v1/payments/webhook
		payments.GET("/webhook", controller.HandleNotification)   // GET  /api/v1/payments/webhook
	}
}
