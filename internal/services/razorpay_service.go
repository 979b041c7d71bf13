package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"collegium_backend/internal/config"
)

// RazorpayService is the thin boundary to the payment gateway: order
// creation over HTTP and the pure signature-verification primitives.
// Credentials arrive via the injected config struct.
type RazorpayService struct {
	cfg    config.RazorpayConfig
	client *http.Client
}

func NewRazorpayService(cfg config.RazorpayConfig) *RazorpayService {
	return &RazorpayService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder registers an order with the gateway. Amount is in paise.
func (s *RazorpayService) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error) {
	body, err := json.Marshal(map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.cfg.KeyID, s.cfg.KeySecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay order request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("razorpay order request: unexpected status %d", resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("razorpay order response: %w", err)
	}
	return &order, nil
}

// KeyID is exposed so checkout responses can hand the public key to clients.
func (s *RazorpayService) KeyID() string {
	return s.cfg.KeyID
}

// VerifyPaymentSignature checks the checkout callback signature:
// HMAC-SHA256 hex over "orderID|paymentID" keyed with the API secret.
func (s *RazorpayService) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC([]byte(orderID+"|"+paymentID), signature, s.cfg.KeySecret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw request body using the webhook secret.
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(body, signature, s.cfg.WebhookSecret)
}

func verifyHMAC(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
