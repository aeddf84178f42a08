package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mail-key", r.Header.Get("Authorization"))

		var req sgRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "buyer@example.com", req.Personalizations[0].To[0].Email)
		assert.Equal(t, "no-reply@courseplatform.io", req.From.Email)
		assert.Equal(t, "Order Confirmation", req.Subject)
		assert.Equal(t, "text/html", req.Content[0].Type)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewMailer("mail-key", "no-reply@courseplatform.io")
	m.endpoint = srv.URL

	err := m.Send("buyer@example.com", "Order Confirmation", "<p>hello</p>")
	assert.NoError(t, err)
}

func TestSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad sender"}]}`, http.StatusForbidden)
	}))
	defer srv.Close()

	m := NewMailer("mail-key", "no-reply@courseplatform.io")
	m.endpoint = srv.URL

	err := m.Send("buyer@example.com", "subject", "<p>hi</p>")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrProvider)
	assert.Contains(t, err.Error(), "status=403")
}

func TestOrderConfirmationHTML(t *testing.T) {
	html := OrderConfirmationHTML("ord-1", []OrderLine{
		{Name: "Go from scratch", Price: 49.99},
	}, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, html, "ord-1")
	assert.Contains(t, html, "Go from scratch")
	assert.Contains(t, html, "$49.99")
	assert.Contains(t, html, "March 5, 2025")
}
