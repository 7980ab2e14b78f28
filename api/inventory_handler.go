package api

import (
	"net/http"

	"dealership_api/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// inventoryHandler exposes vehicles, clients and expenses.
type inventoryHandler struct {
	inventory *sales.InventoryService
	logger    *zap.Logger
}

func newInventoryHandler(inventory *sales.InventoryService, logger *zap.Logger) *inventoryHandler {
	return &inventoryHandler{inventory: inventory, logger: logger}
}

func (h *inventoryHandler) handleCreateVehicle(ctx *gin.Context) {
	var req sales.VehicleRequest
	if !bindJSON(ctx, &req) {
		return
	}

	v, err := h.inventory.RegisterVehicle(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to register vehicle")
		return
	}
	respondOK(ctx, http.StatusCreated, v)
}

func (h *inventoryHandler) handleListVehicles(ctx *gin.Context) {
	vehicles, err := h.inventory.ListVehicles(ctx.Request.Context(), ctx.Query("state"))
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to list vehicles")
		return
	}
	if vehicles == nil {
		vehicles = []*sales.Vehicle{}
	}
	respondOK(ctx, http.StatusOK, vehicles)
}

func (h *inventoryHandler) handleGetVehicle(ctx *gin.Context) {
	v, err := h.inventory.GetVehicle(ctx.Request.Context(), ctx.Param("plate"))
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to read vehicle")
		return
	}
	respondOK(ctx, http.StatusOK, v)
}

// handlePatchVehicle changes the state of a vehicle that has not been sold.
func (h *inventoryHandler) handlePatchVehicle(ctx *gin.Context) {
	var req struct {
		State string `json:"state" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}

	updated, err := h.inventory.ChangeVehicleState(ctx.Request.Context(), ctx.Param("plate"), req.State)
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to update vehicle")
		return
	}
	respondOK(ctx, http.StatusOK, updated)
}

func (h *inventoryHandler) handleCreateVehicleExpense(ctx *gin.Context) {
	var req sales.ExpenseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	e, err := h.inventory.RecordVehicleExpense(ctx.Request.Context(), ctx.Param("plate"), req)
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to record vehicle expense")
		return
	}
	respondOK(ctx, http.StatusCreated, e)
}

func (h *inventoryHandler) handleCreateClient(ctx *gin.Context) {
	var req sales.ClientRequest
	if !bindJSON(ctx, &req) {
		return
	}

	c, err := h.inventory.RegisterClient(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to register client")
		return
	}
	respondOK(ctx, http.StatusCreated, c)
}

func (h *inventoryHandler) handleGetClient(ctx *gin.Context) {
	c, err := h.inventory.GetClient(ctx.Request.Context(), ctx.Param("national_id"))
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to read client")
		return
	}
	respondOK(ctx, http.StatusOK, c)
}

func (h *inventoryHandler) handleCreateOperatingExpense(ctx *gin.Context) {
	var req sales.OperatingExpenseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	e, err := h.inventory.RecordOperatingExpense(ctx.Request.Context(), req)
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to record expense")
		return
	}
	respondOK(ctx, http.StatusCreated, e)
}
