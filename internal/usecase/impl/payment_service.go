package impl

import (
	"context"
	"log/slog"

	deliverycontext "boutique/internal/delivery/context"
	"boutique/internal/domain/service"
	"boutique/internal/usecase"

	"go.uber.org/fx"
)

// paymentService implements the PaymentUsecase interface. It is a thin
// orchestration layer over the provider wrapper; no payment state is kept
// locally.
type paymentService struct {
	provider service.PaymentService
	logger   *slog.Logger
}

// PaymentServiceParams holds dependencies for paymentService, injected by Fx.
type PaymentServiceParams struct {
	fx.In

	Provider service.PaymentService
	Logger   *slog.Logger
}

// NewPaymentService is the constructor for paymentService.
func NewPaymentService(params PaymentServiceParams) usecase.PaymentUsecase {
	return &paymentService{
		provider: params.Provider,
		logger:   params.Logger,
	}
}

func (srv *paymentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder opens a payment order with the provider.
func (srv *paymentService) CreateOrder(ctx context.Context, input usecase.CreateOrderInput) (*usecase.CreateOrderOutput, error) {
	result, err := srv.provider.CreateOrder(ctx, service.OrderRequest{
		Amount:             input.Amount,
		Currency:           input.Currency,
		PaymentMethodToken: input.PaymentMethodToken,
		ReturnURL:          input.ReturnURL,
		CancelURL:          input.CancelURL,
	})
	if err != nil {
		srv.log(ctx).Error("Payment order creation failed", slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Payment order created", slog.String("orderID", result.OrderID))

	if input.PaymentMethodToken != "" {
		return &usecase.CreateOrderOutput{OrderID: result.OrderID}, nil
	}

	return &usecase.CreateOrderOutput{ApprovalURL: result.ApprovalURL}, nil
}

// CaptureOrder completes an approved order.
func (srv *paymentService) CaptureOrder(ctx context.Context, input usecase.CaptureOrderInput) (string, error) {
	result, err := srv.provider.CaptureOrder(ctx, input.Token, input.PayerID)
	if err != nil {
		srv.log(ctx).Error("Payment capture failed", slog.String("token", input.Token), slog.Any("error", err))

		return "", err
	}

	srv.log(ctx).Info("Payment captured", slog.String("token", input.Token))

	return result, nil
}

// CreatePaymentMethod vaults a card with the provider.
func (srv *paymentService) CreatePaymentMethod(ctx context.Context, input usecase.CreatePaymentMethodInput) (string, error) {
	token, err := srv.provider.CreatePaymentMethod(ctx, service.CardDetails{
		Number: input.CardNumber,
		Expiry: input.ExpiryDate,
		CVV:    input.CVV,
	})
	if err != nil {
		srv.log(ctx).Error("Card vaulting failed", slog.Any("error", err))

		return "", err
	}

	return token, nil
}
