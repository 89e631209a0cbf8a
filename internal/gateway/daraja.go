package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/traderiser/wallet-backend/internal/apperrors"
)

// DarajaConfig holds the provider credentials and endpoints.
type DarajaConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	TillNumber     string
	PassKey        string
	CallbackURL    string
	AuthURL        string
	STKPushURL     string
	// Timeout bounds each outbound HTTP call. Initiation is the only
	// externally blocking operation in the system.
	Timeout time.Duration
}

// DarajaClient implements PushPayment against a Daraja-style STK push API.
type DarajaClient struct {
	cfg    DarajaConfig
	http   *http.Client
	logger *slog.Logger
}

// NewDarajaClient creates a push-payment client with bounded timeouts.
func NewDarajaClient(cfg DarajaConfig, logger *slog.Logger) *DarajaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DarajaClient{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

var _ PushPayment = (*DarajaClient)(nil)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// accessToken obtains a client-credentials token from the provider.
func (c *DarajaClient) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.AuthURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build auth request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: auth request failed: %v", apperrors.ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: auth returned status %d: %s", apperrors.ErrGatewayUnreachable, resp.StatusCode, body)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: malformed auth response: %v", apperrors.ErrGatewayUnreachable, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: auth response missing access token", apperrors.ErrGatewayUnreachable)
	}
	return token.AccessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorMessage        string `json:"errorMessage"`
}

// Initiate pushes a payment prompt to the customer's phone. The provider
// truncates references at 12 characters, so the movement reference is passed
// trimmed. Amounts are sent as whole units per the provider contract.
func (c *DarajaClient) Initiate(ctx context.Context, phone string, amount decimal.Decimal, reference string) (*Initiation, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	timestamp := now.Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.PassKey + timestamp))

	accountRef := reference
	if len(accountRef) > 12 {
		accountRef = accountRef[:12]
	}

	payload := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerBuyGoodsOnline",
		Amount:            amount.Round(0).String(),
		PartyA:            phone,
		PartyB:            c.cfg.TillNumber,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   "Wallet Deposit",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stk push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.STKPushURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build stk push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: stk push failed: %v", apperrors.ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	var pushResp stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return nil, fmt.Errorf("%w: malformed stk push response: %v", apperrors.ErrGatewayUnreachable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("STK push provider error",
			slog.String("reference", reference),
			slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: provider returned status %d", apperrors.ErrGatewayUnreachable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK || pushResp.ResponseCode != "0" {
		reason := pushResp.ResponseDescription
		if reason == "" {
			reason = pushResp.ErrorMessage
		}
		if reason == "" {
			reason = fmt.Sprintf("status %d", resp.StatusCode)
		}
		c.logger.Warn("STK push rejected",
			slog.String("reference", reference),
			slog.String("response_code", pushResp.ResponseCode),
			slog.String("reason", reason))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrGatewayRejected, reason)
	}

	c.logger.Info("STK push accepted",
		slog.String("reference", reference),
		slog.String("checkout_request_id", pushResp.CheckoutRequestID))

	return &Initiation{
		CheckoutRequestID: pushResp.CheckoutRequestID,
		MerchantRequestID: pushResp.MerchantRequestID,
		CustomerMessage:   pushResp.CustomerMessage,
	}, nil
}
