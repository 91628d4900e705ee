package services

import (
	"strings"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
)

// transitions maps a status to the statuses reachable from it and the role
// that drives each move. Rider assignment is not a status change; see
// OrderService.Claim.
var transitions = map[models.OrderStatus]map[models.OrderStatus]string{
	models.StatusPending: {
		models.StatusAccepted:  rbac.Merchant,
		models.StatusCancelled: rbac.Merchant,
	},
	models.StatusAccepted: {
		models.StatusPreparing: rbac.Merchant,
		models.StatusPickedUp:  rbac.Rider,
	},
	models.StatusPreparing: {
		models.StatusReadyForPickup: rbac.Merchant,
	},
	models.StatusReadyForPickup: {
		models.StatusPickedUp: rbac.Rider,
	},
	models.StatusPickedUp: {
		models.StatusDelivering: rbac.Rider,
	},
	models.StatusDelivering: {
		models.StatusDelivered: rbac.Rider,
	},
}

// TransitionActor returns the role that may move an order from one status
// to another, and false when the move is not in the table.
func TransitionActor(from, to models.OrderStatus) (string, bool) {
	actor, ok := transitions[from][to]
	return actor, ok
}

// NextStatuses lists the statuses reachable from s, in lifecycle order.
func NextStatuses(s models.OrderStatus) []models.OrderStatus {
	out := []models.OrderStatus{}
	for _, to := range models.Statuses {
		if _, ok := transitions[s][to]; ok {
			out = append(out, to)
		}
	}
	return out
}

// allowedFrom renders NextStatuses for error messages.
func allowedFrom(s models.OrderStatus) string {
	next := NextStatuses(s)
	if len(next) == 0 {
		return "none, " + string(s) + " is final"
	}
	parts := make([]string, len(next))
	for i, n := range next {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

// RiderPool returns the statuses an unassigned order may be claimed in.
func RiderPool(includePending bool) []models.OrderStatus {
	if includePending {
		return []models.OrderStatus{models.StatusPending, models.StatusReadyForPickup}
	}
	return []models.OrderStatus{models.StatusReadyForPickup}
}
