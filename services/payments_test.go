package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(4999), req["amount"])

		json.NewEncoder(w).Encode(PaymentIntent{
			ID:          "pi_123",
			Amount:      4999,
			Currency:    "usd",
			Status:      "requires_payment",
			CheckoutURL: "https://pay/checkout/pi_123",
		})
	}))
	defer srv.Close()

	svc := NewPaymentService(srv.URL, "test-key", "whsec")
	intent, err := svc.CreateIntent(context.Background(), 4999, "usd", "Go Course", map[string]string{"userId": "7"})

	assert.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "https://pay/checkout/pi_123", intent.CheckoutURL)
}

func TestRetrieveIntentGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no such intent"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewPaymentService(srv.URL, "test-key", "whsec")
	intent, err := svc.RetrieveIntent(context.Background(), "pi_missing")

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Nil(t, intent)
	assert.Contains(t, err.Error(), "status=404")
}

func TestWebhookSignatureRoundTrip(t *testing.T) {
	svc := NewPaymentService("https://pay.example.com", "test-key", "whsec")
	payload := []byte(`{"code":"PAID","data":{"payment_intent_id":"pi_123"}}`)

	signature := svc.SignWebhookPayload(payload)
	assert.True(t, svc.VerifyWebhookSignature(payload, signature))

	// A different secret or a tampered payload must not verify.
	other := NewPaymentService("https://pay.example.com", "test-key", "other-secret")
	assert.False(t, other.VerifyWebhookSignature(payload, signature))
	assert.False(t, svc.VerifyWebhookSignature([]byte(`{"code":"PAID"}`), signature))
	assert.False(t, svc.VerifyWebhookSignature(payload, ""))
}
