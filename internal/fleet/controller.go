package fleet

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"velocar/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListVehicles handles GET /api/v1/fleet/vehicles
func (c *Controller) ListVehicles(ctx *gin.Context) {
	category := ctx.Query("category")

	vehicles, err := c.service.ListVehicles(ctx.Request.Context(), category)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list vehicles", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Vehicles retrieved successfully", gin.H{
		"vehicles": vehicles,
		"count":    len(vehicles),
	}, nil)
}

// GetVehicle handles GET /api/v1/fleet/vehicles/:id
func (c *Controller) GetVehicle(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid vehicle ID", nil, nil)
		return
	}

	vehicle, err := c.service.GetVehicle(ctx.Request.Context(), id)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Vehicle not found", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Vehicle retrieved successfully", vehicle, nil)
}
