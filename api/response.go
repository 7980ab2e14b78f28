package api

import (
	"errors"
	"net/http"

	"dealership_api/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// envelope is the body shape shared by every endpoint.
type envelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func respondOK(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(ctx *gin.Context, status int, data any, msg string) {
	ctx.JSON(status, envelope{Success: true, Data: data, Message: msg})
}

func respondError(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, envelope{Success: false, Message: msg})
}

func respondValidation(ctx *gin.Context, fields map[string][]string) {
	ctx.JSON(http.StatusUnprocessableEntity, envelope{
		Success: false,
		Message: "the given data was invalid",
		Errors:  fields,
	})
}

// respondServiceError maps a service error to its HTTP status. Unexpected
// errors are logged and answered with fallback.
func respondServiceError(ctx *gin.Context, logger *zap.Logger, err error, fallback string) {
	var verr *sales.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(ctx, verr.Fields)
	case errors.Is(err, sales.ErrInvalidState):
		respondValidation(ctx, map[string][]string{"state": {err.Error()}})
	case errors.Is(err, sales.ErrNotFound):
		respondError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, sales.ErrVehicleUnavailable), errors.Is(err, sales.ErrInvalidTransition):
		respondError(ctx, http.StatusConflict, err.Error())
	default:
		logger.Error(fallback, zap.String("path", ctx.FullPath()), zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, fallback)
	}
}
