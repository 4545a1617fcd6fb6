package handler

import (
	"log/slog"
	"net/http"

	"boutique/internal/delivery/http/response"
	"boutique/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PaymentHandler holds dependencies for checkout handlers.
type PaymentHandler struct {
	uc     usecase.PaymentUsecase
	logger *slog.Logger
}

// NewPaymentHandler is the constructor for PaymentHandler, injected by Fx.
func NewPaymentHandler(uc usecase.PaymentUsecase, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, logger: logger}
}

// CreateOrder opens a checkout order with the payment provider.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	var input usecase.CreateOrderInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	output, err := h.uc.CreateOrder(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Order created")
}

// CaptureOrder captures funds for an approved order.
func (h *PaymentHandler) CaptureOrder(c echo.Context) error {
	var input usecase.CaptureOrderInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid capture input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	result, err := h.uc.CaptureOrder(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"result": result}, "Order captured")
}

// CreatePaymentMethod vaults a card with the payment provider.
func (h *PaymentHandler) CreatePaymentMethod(c echo.Context) error {
	var input usecase.CreatePaymentMethodInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid card input")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	token, err := h.uc.CreatePaymentMethod(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"token": token}, "Payment method created")
}
