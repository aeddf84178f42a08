package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaymentIntent mirrors the gateway's intent resource; Status is "succeeded"
// once the customer has paid.
type PaymentIntent struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url"`
}

type PaymentService struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	client        *http.Client
}

func NewPaymentService(baseURL, apiKey, webhookSecret string) *PaymentService {
	return &PaymentService{
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

type createIntentRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CreateIntent opens a payment intent at the gateway.
func (p *PaymentService) CreateIntent(ctx context.Context, amount int64, currency, description string, metadata map[string]string) (*PaymentIntent, error) {
	body, err := json.Marshal(createIntentRequest{
		Amount:      amount,
		Currency:    currency,
		Description: description,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/payment_intents", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return p.do(req)
}

// RetrieveIntent fetches an intent so its status can be verified before an
// order is accepted.
func (p *PaymentService) RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/payment_intents/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	return p.do(req)
}

func (p *PaymentService) do(req *http.Request) (*PaymentIntent, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment gateway error: %v: %w", err, ErrProvider)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payment gateway error: status=%d body=%s: %w", resp.StatusCode, raw, ErrProvider)
	}

	var intent PaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// VerifyWebhookSignature checks the gateway's HMAC-SHA256 signature over the
// raw webhook payload.
func (p *PaymentService) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignWebhookPayload produces the signature the gateway would send; used by
// tests and local tooling.
func (p *PaymentService) SignWebhookPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
