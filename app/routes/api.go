// Package routes declares every HTTP route, by name, on the router.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/ayoo/app/controllers"
	"github.com/shashiranjanraj/ayoo/pkg/ctx"
	"github.com/shashiranjanraj/ayoo/pkg/middleware"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
	"github.com/shashiranjanraj/ayoo/pkg/router"
)

// Handlers groups the controllers the routes dispatch to.
type Handlers struct {
	Auth        *controllers.AuthController
	Orders      *controllers.OrderController
	Restaurants *controllers.RestaurantController
	Users       *controllers.UserController
	Vouchers    *controllers.VoucherController
	Admin       *controllers.AdminController
	Payments    *controllers.PaymentController
	Realtime    *controllers.RealtimeController
	GraphQL     http.HandlerFunc
}

// RegisterAPI mounts the /api routes and the websocket endpoint.
// Authentication is optional unless a group says otherwise; the kernel
// runs OptionalAuth on every request.
func RegisterAPI(r *router.Router, h Handlers) {
	r.Get("/ws", "realtime.connect", h.Realtime.Connect)

	api := r.Group("/api")

	auth := api.Group("/auth", rbac.Guest)
	auth.Post("/register", "auth.register", ctx.Wrap(h.Auth.Register))
	auth.Post("/login", "auth.login", ctx.Wrap(h.Auth.Login))

	orders := api.Group("/orders")
	orders.Post("/", "orders.store", ctx.Wrap(h.Orders.Store))
	orders.Get("/available", "orders.available", ctx.Wrap(h.Orders.Available))
	orders.Get("/customer/{id}", "orders.customer", ctx.Wrap(h.Orders.ByCustomer))
	orders.Get("/restaurant/{id}", "orders.restaurant", ctx.Wrap(h.Orders.ByRestaurant))
	orders.Get("/rider/{id}", "orders.rider", ctx.Wrap(h.Orders.ByRider))
	orders.Get("/{id}", "orders.show", ctx.Wrap(h.Orders.Show))
	orders.Get("/{id}/history", "orders.history", ctx.Wrap(h.Orders.History))
	orders.Get("/{id}/qr", "orders.qr", ctx.Wrap(h.Orders.QR))
	orders.Get("/{id}/events", "orders.events", ctx.Wrap(h.Orders.Events))
	orders.Patch("/{id}/status", "orders.status", ctx.Wrap(h.Orders.UpdateStatus))
	orders.Patch("/{id}/location", "orders.location", ctx.Wrap(h.Orders.UpdateLocation))
	orders.Post("/{id}/claim", "orders.claim", ctx.Wrap(h.Orders.Claim))

	restaurants := api.Group("/restaurants")
	restaurants.Get("/", "restaurants.index", ctx.Wrap(h.Restaurants.Index))
	restaurants.Get("/{id}", "restaurants.show", ctx.Wrap(h.Restaurants.Show))

	kitchen := restaurants.Group("/{id}", middleware.AuthMiddleware, rbac.HasRole(rbac.Merchant))
	kitchen.Patch("/", "restaurants.update", ctx.Wrap(h.Restaurants.Update))
	kitchen.Post("/items", "restaurants.items.store", ctx.Wrap(h.Restaurants.StoreItem))
	kitchen.Patch("/items/{itemId}", "restaurants.items.update", ctx.Wrap(h.Restaurants.UpdateItem))
	kitchen.Delete("/items/{itemId}", "restaurants.items.destroy", ctx.Wrap(h.Restaurants.DestroyItem))
	kitchen.Post("/items/{itemId}/image", "restaurants.items.image", ctx.Wrap(h.Restaurants.UploadImage))

	users := api.Group("/users", middleware.AuthMiddleware)
	users.Get("/{id}", "users.show", ctx.Wrap(h.Users.Show))
	users.Patch("/{id}", "users.update", ctx.Wrap(h.Users.Update))

	vouchers := api.Group("/vouchers")
	vouchers.Get("/", "vouchers.index", ctx.Wrap(h.Vouchers.Index))
	vouchers.Get("/validate/{code}", "vouchers.validate", ctx.Wrap(h.Vouchers.Validate))
	vouchers.Post("/quote", "vouchers.quote", ctx.Wrap(h.Vouchers.Quote))

	manage := vouchers.Group("/", middleware.AuthMiddleware, rbac.HasRole(rbac.Admin))
	manage.Post("/", "vouchers.store", ctx.Wrap(h.Vouchers.Store))
	manage.Patch("/{id}", "vouchers.update", ctx.Wrap(h.Vouchers.Update))
	manage.Delete("/{id}", "vouchers.destroy", ctx.Wrap(h.Vouchers.Destroy))

	admin := api.Group("/admin", middleware.AuthMiddleware, rbac.HasRole(rbac.Admin))
	admin.Get("/stats", "admin.stats", ctx.Wrap(h.Admin.Stats))
	admin.Get("/riders", "admin.riders", ctx.Wrap(h.Admin.Riders))
	admin.Patch("/riders/{id}/status", "admin.riders.status", ctx.Wrap(h.Admin.SetRiderStatus))

	api.Post("/payments/checkout-session", "payments.checkout", ctx.Wrap(h.Payments.CheckoutSession))
	// older mobile builds post here
	api.Post("/payments/create-checkout-session", "payments.checkout.legacy", ctx.Wrap(h.Payments.CheckoutSession))
	api.Post("/graphql", "graphql", h.GraphQL)
}
