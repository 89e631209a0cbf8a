package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/core/domain"
)

// WalletResponse defines the data returned for a wallet.
type WalletResponse struct {
	WalletID     string          `json:"walletID"`
	AccountID    string          `json:"accountID"`
	WalletType   string          `json:"walletType"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// ToWalletResponse converts a domain.Wallet to WalletResponse DTO
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:     w.WalletID,
		AccountID:    w.AccountID,
		WalletType:   string(w.WalletType),
		CurrencyCode: w.CurrencyCode,
		Balance:      w.Balance,
	}
}

// ToListWalletResponse converts a slice of domain.Wallet to DTOs
func ToListWalletResponse(wallets []domain.Wallet) []WalletResponse {
	res := make([]WalletResponse, len(wallets))
	for i := range wallets {
		res[i] = ToWalletResponse(&wallets[i])
	}
	return res
}

// PutMpesaNumberRequest registers or replaces the user's payout phone number.
type PutMpesaNumberRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required,min=10,max=15"`
}

// MpesaNumberResponse defines the data returned for a registered number.
type MpesaNumberResponse struct {
	PhoneNumber string    `json:"phoneNumber"`
	IsVerified  bool      `json:"isVerified"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToMpesaNumberResponse converts a domain.MpesaNumber to its DTO
func ToMpesaNumberResponse(n *domain.MpesaNumber) MpesaNumberResponse {
	return MpesaNumberResponse{
		PhoneNumber: n.PhoneNumber,
		IsVerified:  n.IsVerified,
		UpdatedAt:   n.LastUpdatedAt,
	}
}
