package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/middleware"
)

// callbackHandler receives asynchronous gateway results. The gateway, not a
// user, calls this endpoint, so it lives outside the authenticated group.
type callbackHandler struct {
	movementService portssvc.MovementSvcFacade
}

// registerCallbackRoutes registers the unauthenticated gateway result route.
func registerCallbackRoutes(rg *gin.Engine, movementService portssvc.MovementSvcFacade) {
	h := &callbackHandler{movementService: movementService}
	rg.POST("/api/v1/wallet/callback", h.gatewayCallback)
}

// gatewayCallback godoc
// @Summary Gateway payment result
// @Description Receives the asynchronous mobile-money payment result. Always acknowledges with 200 so the gateway stops retrying; processing errors are logged, and results for already settled movements are ignored.
// @Tags wallet
// @Accept json
// @Produce json
// @Param callback body dto.GatewayCallbackRequest true "Gateway callback payload"
// @Success 200 {object} map[string]interface{}
// @Router /wallet/callback [post]
func (h *callbackHandler) gatewayCallback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.GatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Malformed gateway callback", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	result, err := req.ToGatewayResult()
	if err != nil {
		logger.Warn("Gateway callback missing fields", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	if err := h.movementService.HandleGatewayResult(c.Request.Context(), result); err != nil {
		// The gateway retries on non-200; a processing failure is our
		// problem to chase from the logs, not the gateway's.
		logger.Error("Failed to process gateway result",
			slog.String("checkout_request_id", result.CheckoutRequestID),
			slog.String("error", err.Error()))
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}
