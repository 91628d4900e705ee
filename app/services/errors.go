package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/shashiranjanraj/ayoo/app/repositories"
)

var (
	ErrNotFound           = repositories.ErrNotFound
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrAlreadyClaimed     = errors.New("order already claimed by another rider")
	ErrNotClaimable       = errors.New("order is not available for pickup")
	ErrRiderRequired      = errors.New("riderId is required for this transition")
	ErrActorNotAllowed    = errors.New("role may not apply this transition")
	ErrNotAssignedRider   = errors.New("rider is not assigned to this order")
	ErrVoucherExpired     = errors.New("voucher has expired")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotRider           = errors.New("user is not a rider")
	ErrPaymentsDisabled   = errors.New("payments are not configured")
)

// ValidationError carries field-level failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// UpstreamPaymentError is a failure reported by the payment gateway. The
// message is passed to the client unchanged.
type UpstreamPaymentError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamPaymentError) Error() string { return e.Message }
