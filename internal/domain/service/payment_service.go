package service

import "context"

// OrderRequest describes a payment order to open with the provider. When
// PaymentMethodToken is set the order is charged against a vaulted card;
// otherwise the buyer is sent through the provider's approval flow via
// ReturnURL / CancelURL.
type OrderRequest struct {
	Amount             float64
	Currency           string
	PaymentMethodToken string
	ReturnURL          string
	CancelURL          string
}

// OrderResult is the outcome of creating an order. Exactly one of
// ApprovalURL (redirect flow) or OrderID (vaulted-card flow) is meaningful.
type OrderResult struct {
	OrderID     string
	ApprovalURL string
}

// CardDetails carries raw card data to be vaulted with the provider. It is
// never persisted.
type CardDetails struct {
	Number string
	Expiry string // "YYYY-MM"
	CVV    string
}

// PaymentService wraps the external payment provider.
type PaymentService interface {
	// CreateOrder opens a payment order for the given amount and currency.
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)

	// CaptureOrder completes an approved order, charging the payer.
	CaptureOrder(ctx context.Context, token, payerID string) (string, error)

	// CreatePaymentMethod vaults a card with the provider and returns the
	// reusable payment method token.
	CreatePaymentMethod(ctx context.Context, card CardDetails) (string, error)
}
