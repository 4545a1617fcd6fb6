package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boutique/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPayPal implements just enough of the PayPal API for the service tests.
func stubPayPal(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "stub-access-token"})
	})
	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer stub-access-token" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		resp := map[string]any{
			"id":     "ORDER-123",
			"status": "CREATED",
			"links": []map[string]string{
				{"rel": "self", "href": "https://example.com/self"},
				{"rel": "approve", "href": "https://example.com/approve"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("POST /v2/checkout/orders/{token}/capture", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":     r.PathValue("token"),
			"status": "COMPLETED",
		})
	})
	mux.HandleFunc("POST /v2/vault/payment-tokens", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "PMT-456"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func stubService(t *testing.T) service.PaymentService {
	t.Helper()
	server := stubPayPal(t)

	return newWithBaseURL(server.URL, "client-id", "client-secret", server.Client())
}

func TestPayPalService_CreateOrder_RedirectFlow(t *testing.T) {
	svc := stubService(t)

	result, err := svc.CreateOrder(context.Background(), service.OrderRequest{
		Amount:    49.99,
		Currency:  "USD",
		ReturnURL: "https://shop.example.com/success",
		CancelURL: "https://shop.example.com/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORDER-123", result.OrderID)
	assert.Equal(t, "https://example.com/approve", result.ApprovalURL)
}

func TestPayPalService_CreateOrder_VaultedCard(t *testing.T) {
	svc := stubService(t)

	result, err := svc.CreateOrder(context.Background(), service.OrderRequest{
		Amount:             10,
		Currency:           "USD",
		PaymentMethodToken: "PMT-456",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORDER-123", result.OrderID)
	assert.Empty(t, result.ApprovalURL)
}

func TestPayPalService_CaptureOrder(t *testing.T) {
	svc := stubService(t)

	raw, err := svc.CaptureOrder(context.Background(), "ORDER-123", "PAYER-1")
	require.NoError(t, err)
	assert.Contains(t, raw, "COMPLETED")
	assert.Contains(t, raw, "ORDER-123")
}

func TestPayPalService_CreatePaymentMethod(t *testing.T) {
	svc := stubService(t)

	token, err := svc.CreatePaymentMethod(context.Background(), service.CardDetails{
		Number: "4111111111111111",
		Expiry: "2030-12",
		CVV:    "123",
	})
	require.NoError(t, err)
	assert.Equal(t, "PMT-456", token)
}

func TestPayPalService_BadCredentials(t *testing.T) {
	server := stubPayPal(t)
	svc := newWithBaseURL(server.URL, "wrong", "wrong", server.Client())

	_, err := svc.CreateOrder(context.Background(), service.OrderRequest{
		Amount:   10,
		Currency: "USD",
	})
	assert.Error(t, err)
}
