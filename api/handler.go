package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"dealership_api/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req sales.SaleRequest
	if !bindJSON(ctx, &req) {
		h.logger.Warn("rejected sale request", zap.String("vehicle_plate", req.VehiclePlate))
		return
	}

	result, err := h.salesService.CreateSale(ctx.Request.Context(), req)
	if err != nil {
		h.logger.Warn("failed to create sale",
			zap.String("client_national_id", req.ClientNationalID),
			zap.String("vehicle_plate", req.VehiclePlate),
			zap.Error(err),
		)
		respondServiceError(ctx, h.logger, err, "failed to register the sale")
		return
	}

	respondMessage(ctx, http.StatusCreated, result, "sale registered")
}

// handleGetSale handles GET /sales/:id.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.GetSale(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, sales.ErrNotFound) {
			respondError(ctx, http.StatusNotFound, "sale not found")
			return
		}
		respondServiceError(ctx, h.logger, err, "failed to read sale")
		return
	}
	respondOK(ctx, http.StatusOK, sale)
}

// handleSearchSales handles GET /sales?year=&month=&client=.
func (h *salesHandler) handleSearchSales(ctx *gin.Context) {
	filter := sales.SearchFilter{ClientNationalID: ctx.Query("client")}
	invalid := map[string][]string{}

	if raw := ctx.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			invalid["year"] = []string{"must be a positive integer"}
		}
		filter.Year = year
	}
	if raw := ctx.Query("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			invalid["month"] = []string{"must be between 1 and 12"}
		}
		filter.Month = time.Month(month)
	}
	if len(invalid) > 0 {
		respondValidation(ctx, invalid)
		return
	}

	// Llama al servicio para buscar y obtener metadatos
	results, metadata, err := h.salesService.SearchSales(ctx.Request.Context(), filter)
	if err != nil {
		respondServiceError(ctx, h.logger, err, "failed to search sales")
		return
	}
	if results == nil {
		results = []*sales.Sale{}
	}

	respondOK(ctx, http.StatusOK, gin.H{"results": results, "metadata": metadata})
}
