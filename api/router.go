package api

import (
	"net/http"

	"dealership_api/internal/sales"
	"dealership_api/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services groups the domain services the HTTP layer depends on.
type Services struct {
	Sales     *sales.Service
	Inventory *sales.InventoryService
	Stats     *stats.Service
}

// InitRoutes registers every endpoint on the given Gin engine, binding each
// HTTP method and path to the appropriate handler function.
func InitRoutes(e *gin.Engine, svc Services, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidations()

	salesHandler := NewSalesHandler(svc.Sales, logger)
	e.POST("/sales", salesHandler.handleCreateSale)
	e.GET("/sales", salesHandler.handleSearchSales)
	e.GET("/sales/:id", salesHandler.handleGetSale)

	inventory := newInventoryHandler(svc.Inventory, logger)
	e.POST("/vehicles", inventory.handleCreateVehicle)
	e.GET("/vehicles", inventory.handleListVehicles)
	e.GET("/vehicles/:plate", inventory.handleGetVehicle)
	e.PATCH("/vehicles/:plate", inventory.handlePatchVehicle)
	e.POST("/vehicles/:plate/expenses", inventory.handleCreateVehicleExpense)
	e.POST("/clients", inventory.handleCreateClient)
	e.GET("/clients/:national_id", inventory.handleGetClient)
	e.POST("/expenses", inventory.handleCreateOperatingExpense)

	newStatsHandler(svc.Stats, logger).register(e.Group("/stats"))

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	e.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "resource not found")
	})
}
