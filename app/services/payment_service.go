package services

import (
	"context"
	"fmt"
	gohttp "net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/pkg/http"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

// CheckoutItem is one line sent to the payment gateway.
type CheckoutItem struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"min=1"`
}

// CheckoutInput is the body of POST /api/payments/checkout-session. When
// Items is empty the order's own snapshot is charged.
type CheckoutInput struct {
	OrderID       string         `json:"orderId" validate:"required"`
	Items         []CheckoutItem `json:"items" validate:"nullable,dive"`
	CustomerEmail string         `json:"customerEmail" validate:"nullable,email"`
}

// CheckoutSession is the gateway session the client redirects to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// StripeConfig configures the checkout gateway. An empty SecretKey
// disables payments.
type StripeConfig struct {
	SecretKey string
	BaseURL   string
	AppURL    string
	Currency  string
}

type PaymentService struct {
	cfg    StripeConfig
	orders *repositories.OrderRepository
	client *gohttp.Client
}

// NewPaymentService returns a service that calls the gateway with client,
// or the shared pkg/http client when nil.
func NewPaymentService(cfg StripeConfig, orders *repositories.OrderRepository, client *gohttp.Client) *PaymentService {
	if client == nil {
		client = http.DefaultClient
	}
	return &PaymentService{cfg: cfg, orders: orders, client: client}
}

// Enabled reports whether a gateway key is configured.
func (s *PaymentService) Enabled() bool { return s.cfg.SecretKey != "" }

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession opens a hosted checkout for an order. Gateway
// failures come back as *UpstreamPaymentError.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error) {
	if !s.Enabled() {
		return nil, ErrPaymentsDisabled
	}
	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	items := in.Items
	if len(items) == 0 {
		items = snapshotItems(order)
	}
	for i, it := range items {
		if it.Price.IsNegative() {
			return nil, invalid("items."+strconv.Itoa(i)+".price", "The price field must be at least 0.")
		}
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", s.cfg.AppURL+"?payment_success=true&order_id="+url.QueryEscape(order.ID))
	form.Set("cancel_url", s.cfg.AppURL+"?payment_cancelled=true&order_id="+url.QueryEscape(order.ID))
	form.Set("metadata[orderId]", order.ID)
	if in.CustomerEmail != "" {
		form.Set("customer_email", in.CustomerEmail)
	}
	for i, it := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", s.cfg.Currency)
		form.Set(prefix+"[price_data][product_data][name]", it.Name)
		// centavos
		form.Set(prefix+"[price_data][unit_amount]", it.Price.Shift(2).Round(0).String())
		form.Set(prefix+"[quantity]", strconv.Itoa(it.Quantity))
	}

	res, err := http.Post(s.cfg.BaseURL+"/v1/checkout/sessions").
		Bearer(s.cfg.SecretKey).
		Form(form).
		Timeout(15*time.Second).
		Client(s.client).
		Send(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("payment gateway unreachable", "order_id", order.ID, "error", err)
		return nil, &UpstreamPaymentError{StatusCode: gohttp.StatusBadGateway, Message: err.Error()}
	}
	if err := res.Throw(); err != nil {
		var se stripeError
		msg := err.Error()
		if res.Decode(&se) == nil && se.Error.Message != "" {
			msg = se.Error.Message
		}
		logger.WithCtx(ctx).Warn("payment gateway rejected checkout", "order_id", order.ID, "status", res.StatusCode, "message", msg)
		return nil, &UpstreamPaymentError{StatusCode: res.StatusCode, Message: msg}
	}

	var session CheckoutSession
	if err := res.Decode(&session); err != nil {
		return nil, &UpstreamPaymentError{StatusCode: res.StatusCode, Message: err.Error()}
	}
	logger.WithCtx(ctx).Info("checkout session created", "order_id", order.ID, "session_id", session.ID)
	return &session, nil
}

func snapshotItems(o *models.Order) []CheckoutItem {
	out := make([]CheckoutItem, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, CheckoutItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	return out
}
