// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"velocar/internal/availability"
	"velocar/internal/bookings"
	"velocar/internal/fleet"
	"velocar/internal/gateway"
	"velocar/internal/memberships"
	"velocar/internal/notifications"
	"velocar/internal/settlement"
	"velocar/internal/shared/config"
	"velocar/internal/shared/database"
	"velocar/internal/wallet"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.Producer

	fleetService fleet.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.Producer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Fleet routes first: availability depends on the fleet service
		r.setupFleetRoutes(api)
		r.setupAvailabilityRoutes(api)
		r.setupSettlementRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "velocar-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "velocar-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupFleetRoutes configures vehicle catalogue routes
func (r *Router) setupFleetRoutes(rg *gin.RouterGroup) {
	fleetRepo := fleet.NewRepository(r.db.GetPostgreSQL())
	fleetService := fleet.NewService(fleetRepo)
	fleetController := fleet.NewController(fleetService)

	// Kept for availability wiring
	r.fleetService = fleetService

	fleet.SetupFleetRoutes(rg, fleetController)
}

// setupAvailabilityRoutes configures availability query routes
func (r *Router) setupAvailabilityRoutes(rg *gin.RouterGroup) {
	fleetRepo := fleet.NewRepository(r.db.GetPostgreSQL())
	cache := availability.NewCache(r.db.GetRedisClient(), r.config.Redis.AvailabilityCacheTTL)
	availabilityService := availability.NewService(fleetRepo, cache)
	availabilityController := availability.NewController(availabilityService, r.fleetService)

	availability.SetupAvailabilityRoutes(rg, availabilityController)
}

// setupSettlementRoutes configures payment notification routes
func (r *Router) setupSettlementRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	walletRepo := wallet.NewRepository(r.db.GetPostgreSQL())
	membershipRepo := memberships.NewRepository(r.db.GetPostgreSQL())

	normalizer := gateway.NewNormalizer(r.config.Gateway.LegacyMACKey)
	settlementService := settlement.NewService(
		bookingRepo,
		walletRepo,
		membershipRepo,
		r.producer,
		r.config.Settlement.ClaimReclaimAfter,
	)
	settlementController := settlement.NewController(normalizer, settlementService)

	settlement.SetupSettlementRoutes(rg, settlementController)
}
