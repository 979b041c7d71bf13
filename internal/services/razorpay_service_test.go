package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"collegium_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHex(secret string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	svc := NewRazorpayService(config.RazorpayConfig{KeySecret: "test_secret"})

	valid := signHex("test_secret", "order_abc|pay_xyz")
	assert.True(t, svc.VerifyPaymentSignature("order_abc", "pay_xyz", valid))

	// One flipped character fails.
	tampered := []byte(valid)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	assert.False(t, svc.VerifyPaymentSignature("order_abc", "pay_xyz", string(tampered)))

	assert.False(t, svc.VerifyPaymentSignature("order_abc", "pay_other", valid))
	assert.False(t, svc.VerifyPaymentSignature("order_abc", "pay_xyz", ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc := NewRazorpayService(config.RazorpayConfig{
		KeySecret:     "test_secret",
		WebhookSecret: "webhook_secret",
	})

	body := []byte(`{"event":"payment.captured"}`)
	assert.True(t, svc.VerifyWebhookSignature(body, signHex("webhook_secret", string(body))))

	// The checkout secret must not validate webhooks.
	assert.False(t, svc.VerifyWebhookSignature(body, signHex("test_secret", string(body))))
	assert.False(t, svc.VerifyWebhookSignature([]byte(`{"event":"other"}`), signHex("webhook_secret", string(body))))
}

func TestCreateOrder(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "order_test123",
			"amount":   19900,
			"currency": "INR",
			"status":   "created",
		})
	}))
	defer server.Close()

	svc := NewRazorpayService(config.RazorpayConfig{
		KeyID:     "key_id",
		KeySecret: "key_secret",
		BaseURL:   server.URL,
	})

	order, err := svc.CreateOrder(context.Background(), 19900, "INR", "rcpt_1")
	require.NoError(t, err)
	assert.Equal(t, "order_test123", order.ID)
	assert.Equal(t, int64(19900), order.Amount)
	assert.Equal(t, float64(19900), gotBody["amount"])
	assert.Equal(t, float64(1), gotBody["payment_capture"])
}

func TestCreateOrder_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := NewRazorpayService(config.RazorpayConfig{BaseURL: server.URL})
	_, err := svc.CreateOrder(context.Background(), 100, "INR", "rcpt_1")
	assert.Error(t, err)
}
