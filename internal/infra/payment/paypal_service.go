// Package payment wraps the PayPal REST API behind the PaymentService domain
// service.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/fx"

	"boutique/config"
	domainerrors "boutique/internal/domain/errors"
	"boutique/internal/domain/service"
	"boutique/internal/errors"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	tokenEndpoint         = "/v1/oauth2/token"
	ordersEndpoint        = "/v2/checkout/orders"
	paymentTokensEndpoint = "/v2/vault/payment-tokens"

	requestTimeout = 30 * time.Second
)

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
}

// paypalService implements service.PaymentService against the PayPal REST API.
type paypalService struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewPayPalService is the constructor for paypalService.
func NewPayPalService(params Params) (service.PaymentService, error) {
	cfg := params.Config.PayPal
	if cfg == nil || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("paypal credentials must be provided")
	}

	baseURL := liveBaseURL
	if cfg.Mode == "sandbox" {
		baseURL = sandboxBaseURL
	}

	return &paypalService{
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// newWithBaseURL builds a service pointed at an arbitrary endpoint. Used by
// tests to target a local stub server.
func newWithBaseURL(baseURL, clientID, clientSecret string, httpClient *http.Client) service.PaymentService {
	return &paypalService{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

// CreateOrder opens a payment order. With a vaulted payment method token the
// order charges the stored card and the order id is returned; without one the
// buyer approval URL is returned for the redirect flow.
func (s *paypalService) CreateOrder(ctx context.Context, req service.OrderRequest) (*service.OrderResult, error) {
	accessToken, err := s.fetchAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"amount": map[string]any{
					"currency_code": req.Currency,
					"value":         fmt.Sprintf("%.2f", req.Amount),
				},
			},
		},
		"application_context": map[string]any{
			"return_url": req.ReturnURL,
			"cancel_url": req.CancelURL,
		},
	}
	if req.PaymentMethodToken != "" {
		payload["payment_source"] = map[string]any{
			"token": map[string]any{
				"id":   req.PaymentMethodToken,
				"type": "PAYMENT_METHOD_TOKEN",
			},
		}
	}

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	}
	if err := s.postJSON(ctx, accessToken, ordersEndpoint, payload, &result); err != nil {
		return nil, err
	}

	if req.PaymentMethodToken != "" {
		if result.ID == "" {
			return nil, domainerrors.ErrExternalService.WrapMessage("paypal order id missing")
		}

		return &service.OrderResult{OrderID: result.ID}, nil
	}

	for _, link := range result.Links {
		if link.Rel == "approve" {
			return &service.OrderResult{OrderID: result.ID, ApprovalURL: link.Href}, nil
		}
	}

	return nil, domainerrors.ErrExternalService.WrapMessage("paypal approval link missing")
}

// CaptureOrder completes an approved order. The raw provider response is
// returned for the caller to relay.
func (s *paypalService) CaptureOrder(ctx context.Context, token, payerID string) (string, error) {
	accessToken, err := s.fetchAccessToken(ctx)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/capture", ordersEndpoint, url.PathEscape(token))
	payload := map[string]any{"payer_id": payerID}

	body, err := s.post(ctx, accessToken, endpoint, payload)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// CreatePaymentMethod vaults a card and returns the payment method token id.
func (s *paypalService) CreatePaymentMethod(ctx context.Context, card service.CardDetails) (string, error) {
	accessToken, err := s.fetchAccessToken(ctx)
	if err != nil {
		return "", err
	}

	payload := map[string]any{
		"type": "CARD",
		"source": map[string]any{
			"card": map[string]any{
				"number":        card.Number,
				"expiry":        card.Expiry,
				"security_code": card.CVV,
			},
		},
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := s.postJSON(ctx, accessToken, paymentTokensEndpoint, payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", domainerrors.ErrExternalService.WrapMessage("paypal payment method token missing")
	}

	return result.ID, nil
}

// fetchAccessToken exchanges client credentials for a bearer token. Tokens
// are not cached; each operation is infrequent enough that the extra round
// trip is simpler than tracking expiry.
func (s *paypalService) fetchAccessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "build token request")
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", domainerrors.ErrExternalService.WrapMessage("paypal token request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domainerrors.ErrExternalService.WithDetails(
			fmt.Sprintf("paypal token request returned status %d", resp.StatusCode))
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", domainerrors.ErrExternalService.WrapMessage("paypal token response malformed")
	}
	if result.AccessToken == "" {
		return "", domainerrors.ErrExternalService.WrapMessage("paypal access token empty")
	}

	return result.AccessToken, nil
}

func (s *paypalService) postJSON(ctx context.Context, accessToken, endpoint string, payload any, out any) error {
	body, err := s.post(ctx, accessToken, endpoint, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domainerrors.ErrExternalService.WrapMessage("paypal response malformed")
	}

	return nil
}

func (s *paypalService) post(ctx context.Context, accessToken, endpoint string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode paypal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "build paypal request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.ErrExternalService.WrapMessage("paypal request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainerrors.ErrExternalService.WrapMessage("paypal response unreadable")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domainerrors.ErrExternalService.WithDetails(
			fmt.Sprintf("paypal %s returned status %d: %s", endpoint, resp.StatusCode, string(body)))
	}

	return body, nil
}
