package fleet

import (
	"github.com/gin-gonic/gin"
)

// SetupFleetRoutes configures fleet browsing routes
func SetupFleetRoutes(rg *gin.RouterGroup, controller *Controller) {
	vehicles := rg.Group("/fleet/vehicles")
	{
		vehicles.GET("", controller.ListVehicles)     // GET /api/v1/fleet/vehicles
		vehicles.GET("/:id", controller.GetVehicle)   // GET /api/v1/fleet/vehicles/:id
	}
}
