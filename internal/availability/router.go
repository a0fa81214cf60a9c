package availability

import (
	"github.com/gin-gonic/gin"
)

// SetupAvailabilityRoutes configures availability query routes
func SetupAvailabilityRoutes(rg *gin.RouterGroup, controller *Controller) {
	availability := rg.Group("/availability")
	{
		availability.POST("/windows", controller.GetWindows)   // POST /api/v1/availability/windows
		availability.POST("/earliest", controller.GetEarliest) // POST /api/v1/availability/earliest
		availability.POST("/check", controller.CheckRange)     // POST /api/v1/availability/check
	}
}
