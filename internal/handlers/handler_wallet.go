package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/traderiser/wallet-backend/internal/apperrors"
	portssvc "github.com/traderiser/wallet-backend/internal/core/ports/services"
	"github.com/traderiser/wallet-backend/internal/dto"
	"github.com/traderiser/wallet-backend/internal/middleware"
)

// walletHandler handles HTTP requests related to wallets and money movements.
type walletHandler struct {
	walletService   portssvc.WalletSvcFacade
	movementService portssvc.MovementSvcFacade
	userService     portssvc.UserSvcFacade
}

func newWalletHandler(ws portssvc.WalletSvcFacade, ms portssvc.MovementSvcFacade, us portssvc.UserSvcFacade) *walletHandler {
	return &walletHandler{
		walletService:   ws,
		movementService: ms,
		userService:     us,
	}
}

// registerWalletRoutes registers routes related to wallets and movements.
// otpRateLimit is a limiter spec like "3-M"; it throttles OTP issuance per
// client IP so the notification channel cannot be flooded.
func registerWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade, movementService portssvc.MovementSvcFacade, userService portssvc.UserSvcFacade, otpRateLimit string) {
	h := newWalletHandler(walletService, movementService, userService)

	rate, _ := limiter.NewRateFromFormatted(otpRateLimit)
	otpLimiter := limiter.New(memory.NewStore(), rate)

	wallet := rg.Group("/wallet")
	{
		wallet.GET("/wallets", h.listWallets)
		wallet.GET("/wallets/:walletID/ledger", h.listLedgerEntries)
		wallet.GET("/mpesa-number", h.getMpesaNumber)
		wallet.PUT("/mpesa-number", h.putMpesaNumber)
		wallet.POST("/deposit", h.deposit)
		wallet.POST("/withdraw/otp", middleware.RateLimit(otpLimiter), h.requestWithdrawOTP)
		wallet.POST("/withdraw/verify", h.verifyWithdrawOTP)
		wallet.GET("/transactions", h.listMovements)
		wallet.GET("/transactions/:movementID", h.getMovement)
	}
}

// listWallets godoc
// @Summary List wallets
// @Description Retrieves every wallet of the authenticated user across all accounts.
// @Tags wallet
// @Produce json
// @Success 200 {array} dto.WalletResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/wallets [get]
func (h *walletHandler) listWallets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	wallets, err := h.walletService.ListUserWallets(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list wallets", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list wallets"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListWalletResponse(wallets))
}

// listLedgerEntries godoc
// @Summary List ledger entries
// @Description Retrieves the newest balance-write records of one wallet.
// @Tags wallet
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param limit query int false "Maximum entries to return" default(50)
// @Success 200 {array} domain.LedgerEntry
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/wallets/{walletID}/ledger [get]
func (h *walletHandler) listLedgerEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User not authenticated"})
		return
	}
	walletID := c.Param("walletID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	wallets, err := h.walletService.ListUserWallets(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to resolve user wallets", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list ledger entries"})
		return
	}
	owned := false
	for _, w := range wallets {
		if w.WalletID == walletID {
			owned = true
			break
		}
	}
	if !owned {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Wallet not found"})
		return
	}

	entries, err := h.walletService.ListLedgerEntries(c.Request.Context(), walletID, limit)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Wallet not found"})
			return
		}
		logger.Error("Failed to list ledger entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list ledger entries"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// getMpesaNumber godoc
// @Summary Get the registered payout number
// @Description Retrieves the authenticated user's registered mobile-money number.
// @Tags wallet
// @Produce json
// @Success 200 {object} dto.MpesaNumberResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/mpesa-number [get]
func (h *walletHandler) getMpesaNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	number, err := h.userService.GetMpesaNumber(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "No registered number"})
			return
		}
		logger.Error("Failed to get mpesa number", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve number"})
		return
	}

	c.JSON(http.StatusOK, dto.ToMpesaNumberResponse(number))
}

// putMpesaNumber godoc
// @Summary Register a payout number
// @Description Registers or replaces the authenticated user's mobile-money number. Replacing resets verification.
// @Tags wallet
// @Accept json
// @Produce json
// @Param number body dto.PutMpesaNumberRequest true "Phone number"
// @Success 200 {object} dto.MpesaNumberResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/mpesa-number [put]
func (h *walletHandler) putMpesaNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.PutMpesaNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	number, err := h.userService.PutMpesaNumber(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to put mpesa number", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save number"})
		return
	}

	logger.Info("Mpesa number registered")
	c.JSON(http.StatusOK, dto.ToMpesaNumberResponse(number))
}

// deposit godoc
// @Summary Initiate a deposit
// @Description Creates a pending deposit and pushes a mobile-money payment request to the customer's phone. The credited amount is frozen at initiation time.
// @Tags wallet
// @Accept json
// @Produce json
// @Param deposit body dto.DepositRequest true "Deposit details"
// @Success 202 {object} dto.MovementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse "Gateway rejected the payment request"
// @Failure 502 {object} ErrorResponse "Gateway unreachable"
// @Security BearerAuth
// @Router /wallet/deposit [post]
func (h *walletHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	movement, err := h.movementService.InitiateDeposit(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrRateNotFound):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrGatewayRejected):
			c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrGatewayUnreachable):
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Payment gateway unreachable, please retry"})
		default:
			logger.Error("Failed to initiate deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initiate deposit"})
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.ToMovementResponse(movement))
}

// requestWithdrawOTP godoc
// @Summary Request a withdrawal
// @Description Creates a pending withdrawal priced at the withdrawal rate and sends a one-time code to confirm it.
// @Tags wallet
// @Accept json
// @Produce json
// @Param withdrawal body dto.WithdrawOTPRequest true "Withdrawal details"
// @Success 202 {object} dto.MovementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /wallet/withdraw/otp [post]
func (h *walletHandler) requestWithdrawOTP(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.WithdrawOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	movement, err := h.movementService.RequestWithdrawalOTP(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrRateNotFound):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to request withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to request withdrawal"})
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.ToMovementResponse(movement))
}

// verifyWithdrawOTP godoc
// @Summary Confirm a withdrawal
// @Description Verifies the one-time code and reserves the funds. The wallet is debited immediately; payout follows operator approval.
// @Tags wallet
// @Accept json
// @Produce json
// @Param verification body dto.WithdrawVerifyRequest true "Code and movement"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} ErrorResponse "Code invalid, expired or bound to another movement"
// @Failure 409 {object} ErrorResponse "Code already used"
// @Failure 422 {object} ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /wallet/withdraw/verify [post]
func (h *walletHandler) verifyWithdrawOTP(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.WithdrawVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	movement, err := h.movementService.VerifyWithdrawalOTP(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrOTPUsed):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Code already used"})
		case errors.Is(err, apperrors.ErrOTPInvalid), errors.Is(err, apperrors.ErrOTPExpired), errors.Is(err, apperrors.ErrOTPMovementMismatch):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrInvalidTransition):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Movement belongs to another user"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Movement not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Failed to verify withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to verify withdrawal"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}

// listMovements godoc
// @Summary List movements
// @Description Retrieves the authenticated user's deposit and withdrawal history, newest first.
// @Tags wallet
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.MovementResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/transactions [get]
func (h *walletHandler) listMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	movements, err := h.movementService.ListMovements(c.Request.Context(), userID, limit, offset)
	if err != nil {
		logger.Error("Failed to list movements", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list movements"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListMovementResponse(movements))
}

// getMovement godoc
// @Summary Get a movement
// @Description Retrieves one movement of the authenticated user.
// @Tags wallet
// @Produce json
// @Param movementID path string true "Movement ID"
// @Success 200 {object} dto.MovementResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /wallet/transactions/{movementID} [get]
func (h *walletHandler) getMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	movement, err := h.movementService.GetMovement(c.Request.Context(), userID, c.Param("movementID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Movement not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Movement belongs to another user"})
			return
		}
		logger.Error("Failed to get movement", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve movement"})
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}
