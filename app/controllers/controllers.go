// Package controllers adapts HTTP requests to the services. Handlers take
// a *ctx.Context, bind and validate the body, call one service method and
// map its error onto the response envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/ctx"
	"github.com/shashiranjanraj/ayoo/pkg/lock"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
)

// fail writes err as an envelope with the status its kind maps to.
func fail(c *ctx.Context, err error) {
	var verr *services.ValidationError
	var upstream *services.UpstreamPaymentError
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.As(err, &upstream):
		c.Error(http.StatusBadGateway, upstream.Message)
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrNotClaimable),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, repositories.ErrStaleVersion):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrRiderRequired):
		c.ValidationError(map[string]string{"riderId": err.Error()})
	case errors.Is(err, services.ErrActorNotAllowed), errors.Is(err, services.ErrNotAssignedRider):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrVoucherExpired), errors.Is(err, services.ErrNotRider):
		c.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(err.Error())
	case errors.Is(err, services.ErrPaymentsDisabled), errors.Is(err, lock.ErrTimeout):
		c.Error(http.StatusServiceUnavailable, err.Error())
	default:
		logger.WithCtx(c.Context()).Error("request failed", "path", c.Path(), "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
	}
}

// isSelfOrAdmin reports whether the caller is userID or an admin.
func isSelfOrAdmin(c *ctx.Context, userID string) bool {
	role, id := c.Identity()
	return role == rbac.Admin || (id != "" && id == userID)
}
