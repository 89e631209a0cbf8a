package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/core/domain"
)

// DepositRequest initiates a mobile-money deposit into the user's wallet.
// Phone falls back to the user's registered payout number when omitted.
type DepositRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"omitempty,uppercase,len=3"`
	Phone        string          `json:"phone" binding:"omitempty,min=10,max=15"`
	AccountType  string          `json:"accountType" binding:"omitempty,oneof=standard pro islamic options crypto demo"`
	WalletType   string          `json:"walletType" binding:"omitempty,oneof=main trading"`
}

// WithdrawOTPRequest creates a withdrawal movement and issues its OTP.
type WithdrawOTPRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	AccountType string          `json:"accountType" binding:"omitempty,oneof=standard pro islamic options crypto demo"`
	WalletType  string          `json:"walletType" binding:"omitempty,oneof=main trading"`
	Phone       string          `json:"phone" binding:"omitempty,min=10,max=15"`
}

// WithdrawVerifyRequest confirms a withdrawal with its one-time code.
type WithdrawVerifyRequest struct {
	Code       string `json:"code" binding:"required,len=6,numeric"`
	MovementID string `json:"movementID" binding:"required,uuid"`
}

// MovementResponse defines the data returned for a money movement.
type MovementResponse struct {
	MovementID         string          `json:"movementID"`
	WalletID           string          `json:"walletID"`
	MovementType       string          `json:"movementType"`
	Amount             decimal.Decimal `json:"amount"`
	CurrencyCode       string          `json:"currencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode,omitempty"`
	ConvertedAmount    decimal.Decimal `json:"convertedAmount,omitempty"`
	ExchangeRateUsed   decimal.Decimal `json:"exchangeRateUsed,omitempty"`
	Status             string          `json:"status"`
	ReferenceID        string          `json:"referenceID"`
	Description        string          `json:"description,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
}

// ToMovementResponse converts a domain.Movement to MovementResponse DTO
func ToMovementResponse(m *domain.Movement) MovementResponse {
	return MovementResponse{
		MovementID:         m.MovementID,
		WalletID:           m.WalletID,
		MovementType:       string(m.MovementType),
		Amount:             m.Amount,
		CurrencyCode:       m.CurrencyCode,
		TargetCurrencyCode: m.TargetCurrencyCode,
		ConvertedAmount:    m.ConvertedAmount,
		ExchangeRateUsed:   m.ExchangeRateUsed,
		Status:             string(m.Status),
		ReferenceID:        m.ReferenceID,
		Description:        m.Description,
		Phone:              m.Phone,
		CreatedAt:          m.CreatedAt,
		CompletedAt:        m.CompletedAt,
	}
}

// ToListMovementResponse converts a slice of domain.Movement to DTOs
func ToListMovementResponse(movements []domain.Movement) []MovementResponse {
	res := make([]MovementResponse, len(movements))
	for i := range movements {
		res[i] = ToMovementResponse(&movements[i])
	}
	return res
}

// GatewayResult is the normalized asynchronous outcome of one push payment.
// ResultCode zero means success; on success Amount and Receipt carry the
// confirmed value and the gateway's receipt identifier.
type GatewayResult struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Amount            decimal.Decimal
	Receipt           string
}

// Succeeded reports whether the gateway confirmed the payment.
func (r GatewayResult) Succeeded() bool {
	return r.ResultCode == 0
}

// GatewayCallbackRequest mirrors the Daraja STK callback payload delivered to
// the unauthenticated result endpoint.
type GatewayCallbackRequest struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []CallbackItem `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// CallbackItem is one name/value pair of the callback metadata.
type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

// ToGatewayResult flattens the callback payload into a GatewayResult,
// extracting the confirmed amount and receipt from the metadata items.
func (r GatewayCallbackRequest) ToGatewayResult() (GatewayResult, error) {
	cb := r.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return GatewayResult{}, fmt.Errorf("callback missing CheckoutRequestID")
	}
	result := GatewayResult{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			var amount decimal.Decimal
			if err := json.Unmarshal(item.Value, &amount); err != nil {
				return GatewayResult{}, fmt.Errorf("callback amount malformed: %w", err)
			}
			result.Amount = amount
		case "MpesaReceiptNumber":
			var receipt string
			if err := json.Unmarshal(item.Value, &receipt); err != nil {
				return GatewayResult{}, fmt.Errorf("callback receipt malformed: %w", err)
			}
			result.Receipt = receipt
		}
	}
	return result, nil
}
