package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/middleware"
)

// adminHandler handles staff-only movement settlement operations.
type adminHandler struct {
	movementService portssvc.MovementSvcFacade
}

// FailMovementRequest carries the operator's failure reason.
type FailMovementRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// registerAdminRoutes registers staff-only settlement routes.
func registerAdminRoutes(rg *gin.RouterGroup, movementService portssvc.MovementSvcFacade, staffOnly gin.HandlerFunc) {
	h := &adminHandler{movementService: movementService}

	admin := rg.Group("/admin", staffOnly)
	{
		admin.POST("/movements/:movementID/complete", h.completeWithdrawal)
		admin.POST("/movements/:movementID/fail", h.failMovement)
	}
}

// completeWithdrawal godoc
// @Summary Approve a reserved withdrawal
// @Description Marks a reserved withdrawal as paid out. The funds were debited at verification time (staff operation).
// @Tags admin
// @Produce json
// @Param movementID path string true "Movement ID"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} ErrorResponse "Not a withdrawal"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Movement already terminal"
// @Security BearerAuth
// @Router /admin/movements/{movementID}/complete [post]
func (h *adminHandler) completeWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	movement, err := h.movementService.CompleteWithdrawal(c.Request.Context(), actorUserID, c.Param("movementID"))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Movement not found"})
		case errors.Is(err, apperrors.ErrInvalidTransition):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to complete withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to complete withdrawal"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}

// failMovement godoc
// @Summary Fail a pending movement
// @Description Marks a pending movement as failed with a reason. A reserved withdrawal debit is not refunded (staff operation).
// @Tags admin
// @Accept json
// @Produce json
// @Param movementID path string true "Movement ID"
// @Param failure body FailMovementRequest true "Failure reason"
// @Success 200 {object} dto.MovementResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Movement already terminal"
// @Security BearerAuth
// @Router /admin/movements/{movementID}/fail [post]
func (h *adminHandler) failMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req FailMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	movement, err := h.movementService.FailMovement(c.Request.Context(), actorUserID, c.Param("movementID"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Movement not found"})
		case errors.Is(err, apperrors.ErrInvalidTransition):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to fail movement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fail movement"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}
