package client

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront-checkout/internal/config"
)

// TxnMetadata is attached at payment initialization and echoed back by the
// gateway on verify, so the order/user binding is provider-attested rather
// than read from the client request.
type TxnMetadata struct {
	OrderID uint `json:"order_id"`
	UserID  uint `json:"user_id"`
}

type InitializeResult struct {
	AuthorizationURL string
	Reference        string
}

type VerifiedTransaction struct {
	Reference   string
	Status      string
	AmountMinor int64
	Currency    string
	Metadata    TxnMetadata
}

type PaymentGateway interface {
	Initialize(ctx context.Context, email string, amountMinor int64, currency, callbackURL, reference string, metadata TxnMetadata) (*InitializeResult, error)
	Verify(ctx context.Context, reference string) (*VerifiedTransaction, error)
	ValidateWebhookSignature(signature string, body []byte) error
}

type paystackClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	secretKey  string
}

func NewPaystackClient(cfg *config.Paystack) PaymentGateway {
	return &paystackClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: cfg.BaseApiURL,
		secretKey:  cfg.SecretKey,
	}
}

type paystackInitializeResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type paystackVerifyResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"message"`
	Data   struct {
		Reference string      `json:"reference"`
		Status    string      `json:"status"`
		Amount    int64       `json:"amount"`
		Currency  string      `json:"currency"`
		Metadata  TxnMetadata `json:"metadata"`
	} `json:"data"`
}

func (c *paystackClientImpl) Initialize(ctx context.Context, email string, amountMinor int64, currency, callbackURL, reference string, metadata TxnMetadata) (*InitializeResult, error) {
	payload := map[string]interface{}{
		"email":        email,
		"amount":       amountMinor,
		"currency":     currency,
		"callback_url": callbackURL,
		"reference":    reference,
		"metadata":     metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal initialize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res paystackInitializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode initialize response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !res.Status {
		return nil, fmt.Errorf("paystack initialize failed: %s", res.Msg)
	}

	return &InitializeResult{
		AuthorizationURL: res.Data.AuthorizationURL,
		Reference:        res.Data.Reference,
	}, nil
}

func (c *paystackClientImpl) Verify(ctx context.Context, reference string) (*VerifiedTransaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseApiURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res paystackVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !res.Status {
		return nil, fmt.Errorf("paystack verify failed: %s", res.Msg)
	}

	return &VerifiedTransaction{
		Reference:   res.Data.Reference,
		Status:      res.Data.Status,
		AmountMinor: res.Data.Amount,
		Currency:    res.Data.Currency,
		Metadata:    res.Data.Metadata,
	}, nil
}

// ValidateWebhookSignature checks the x-paystack-signature header: an
// HMAC-SHA512 of the raw request body keyed with the secret key.
func (c *paystackClientImpl) ValidateWebhookSignature(signature string, body []byte) error {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return fmt.Errorf("webhook signature mismatch")
	}
	return nil
}
