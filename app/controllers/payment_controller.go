package controllers

import (
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/ctx"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// CheckoutSession handles POST /api/payments/checkout-session.
func (h *PaymentController) CheckoutSession(c *ctx.Context) {
	var in services.CheckoutInput
	if !c.BindJSON(&in) {
		return
	}
	s, err := h.payments.CreateCheckoutSession(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(s)
}
