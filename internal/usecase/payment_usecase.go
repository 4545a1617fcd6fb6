package usecase

import "context"

// CreateOrderInput opens a payment order. PaymentMethodToken selects the
// vaulted-card flow; without it the buyer is redirected for approval.
type CreateOrderInput struct {
	Amount             float64 `json:"amount" validate:"required,gt=0"`
	Currency           string  `json:"currency" validate:"required,len=3"`
	PaymentMethodToken string  `json:"paymentMethodToken"`
	ReturnURL          string  `json:"returnUrl" validate:"omitempty,url"`
	CancelURL          string  `json:"cancelUrl" validate:"omitempty,url"`
}

// CaptureOrderInput completes an approved order.
type CaptureOrderInput struct {
	Token   string `json:"token" validate:"required"`
	PayerID string `json:"payerId"`
}

// CreatePaymentMethodInput vaults a card for later charges.
type CreatePaymentMethodInput struct {
	CardNumber string `json:"cardNumber" validate:"required"`
	ExpiryDate string `json:"expiryDate" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// CreateOrderOutput returns either the approval URL (redirect flow) or the
// order id (vaulted-card flow).
type CreateOrderOutput struct {
	ApprovalURL string `json:"approvalUrl,omitempty"`
	OrderID     string `json:"orderId,omitempty"`
}

// PaymentUsecase defines the interface for payment provider operations.
type PaymentUsecase interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error)
	CaptureOrder(ctx context.Context, input CaptureOrderInput) (string, error)
	CreatePaymentMethod(ctx context.Context, input CreatePaymentMethodInput) (string, error)
}
