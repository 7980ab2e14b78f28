package api

import (
	"context"
	"net/http"

	"dealership_api/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type statsHandler struct {
	stats  *stats.Service
	logger *zap.Logger
}

func newStatsHandler(svc *stats.Service, logger *zap.Logger) *statsHandler {
	return &statsHandler{stats: svc, logger: logger}
}

// statsEndpoint adapts a statistics query to a gin handler.
func statsEndpoint[T any](h *statsHandler, metric string, query func(context.Context) (T, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		data, err := query(ctx.Request.Context())
		if err != nil {
			h.logger.Error("failed to compute statistics", zap.String("metric", metric), zap.Error(err))
			respondError(ctx, http.StatusInternalServerError, "failed to compute statistics")
			return
		}
		respondOK(ctx, http.StatusOK, data)
	}
}

func (h *statsHandler) register(g *gin.RouterGroup) {
	g.GET("/vehicles", statsEndpoint(h, "vehicles", h.stats.VehiclesSnapshot))
	g.GET("/sales", statsEndpoint(h, "sales", h.stats.SalesSnapshot))
	g.GET("/operating-expenses", statsEndpoint(h, "operating_expenses", h.stats.OperatingExpensesSnapshot))
	g.GET("/vehicle-expenses", statsEndpoint(h, "vehicle_expenses", h.stats.VehicleExpensesSnapshot))
	g.GET("/profit/total", statsEndpoint(h, "profit.total", h.stats.TotalProfit))
	g.GET("/profit/month", statsEndpoint(h, "profit.month", h.stats.MonthlyProfitSnapshot))

	history := g.Group("/history")
	history.GET("/operating-expenses", statsEndpoint(h, "history.operating_expenses", h.stats.OperatingExpensesHistory))
	history.GET("/vehicle-expenses", statsEndpoint(h, "history.vehicle_expenses", h.stats.VehicleExpensesHistory))
	history.GET("/sales", statsEndpoint(h, "history.sales", h.stats.SalesHistory))
	history.GET("/combined", statsEndpoint(h, "history.combined", h.stats.CombinedHistory))
}
