// Package schema is the read-only GraphQL view of orders and restaurants
// served at POST /api/graphql.
package schema

import (
	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/services"
	gql "github.com/shashiranjanraj/ayoo/pkg/graphql"
)

// money resolves a decimal field as a fixed two-place string.
func money(get func(src any) (decimal.Decimal, bool)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		d, ok := get(p.Source)
		if !ok {
			return nil, nil
		}
		return d.StringFixed(2), nil
	}
}

var orderItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderItem",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.String},
		"name": &graphql.Field{Type: graphql.String},
		"price": &graphql.Field{Type: graphql.String, Resolve: money(func(src any) (decimal.Decimal, bool) {
			it, ok := src.(models.OrderItem)
			return it.Price, ok
		})},
		"quantity": &graphql.Field{Type: graphql.Int},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"customerId":      &graphql.Field{Type: graphql.String},
		"restaurantId":    &graphql.Field{Type: graphql.String},
		"riderId":         &graphql.Field{Type: graphql.String},
		"items":           &graphql.Field{Type: graphql.NewList(orderItemType)},
		"status":          &graphql.Field{Type: graphql.String},
		"deliveryAddress": &graphql.Field{Type: graphql.String},
		"customerName":    &graphql.Field{Type: graphql.String},
		"restaurantName":  &graphql.Field{Type: graphql.String},
		"paymentMethod":   &graphql.Field{Type: graphql.String},
		"paymentStatus":   &graphql.Field{Type: graphql.String},
		"riderLat":        &graphql.Field{Type: graphql.Float},
		"riderLng":        &graphql.Field{Type: graphql.Float},
		"version":         &graphql.Field{Type: graphql.Int},
		"createdAt":       &graphql.Field{Type: graphql.DateTime},
		"updatedAt":       &graphql.Field{Type: graphql.DateTime},
		"total": &graphql.Field{Type: graphql.String, Resolve: money(func(src any) (decimal.Decimal, bool) {
			o, ok := src.(models.Order)
			return o.Total, ok
		})},
	},
})

var foodItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FoodItem",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.String},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"category":    &graphql.Field{Type: graphql.String},
		"image":       &graphql.Field{Type: graphql.String},
		"isAvailable": &graphql.Field{Type: graphql.Boolean},
		"price": &graphql.Field{Type: graphql.String, Resolve: money(func(src any) (decimal.Decimal, bool) {
			it, ok := src.(models.FoodItem)
			return it.Price, ok
		})},
	},
})

var restaurantType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Restaurant",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.String},
		"name":         &graphql.Field{Type: graphql.String},
		"cuisine":      &graphql.Field{Type: graphql.String},
		"rating":       &graphql.Field{Type: graphql.Float},
		"deliveryTime": &graphql.Field{Type: graphql.String},
		"isOpen":       &graphql.Field{Type: graphql.Boolean},
		"address":      &graphql.Field{Type: graphql.String},
		"items":        &graphql.Field{Type: graphql.NewList(foodItemType)},
	},
})

// New builds the schema over the order and catalog services.
func New(orders *services.OrderService, catalog *services.CatalogService) (graphql.Schema, error) {
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	listBy := func(fn func(p graphql.ResolveParams, id string) ([]models.Order, error)) *graphql.Field {
		return &graphql.Field{
			Type: graphql.NewList(orderType),
			Args: idArg,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return fn(p, p.Args["id"].(string))
			},
		}
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"order": &graphql.Field{
				Type: orderType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					o, err := orders.Find(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return *o, nil
				},
			},
			"ordersByCustomer": listBy(func(p graphql.ResolveParams, id string) ([]models.Order, error) {
				return orders.ListByCustomer(p.Context, id)
			}),
			"ordersByRestaurant": listBy(func(p graphql.ResolveParams, id string) ([]models.Order, error) {
				return orders.ListByRestaurant(p.Context, id)
			}),
			"ordersByRider": listBy(func(p graphql.ResolveParams, id string) ([]models.Order, error) {
				return orders.ListByRider(p.Context, id)
			}),
			"availableOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return orders.ListAvailable(p.Context)
				},
			},
			"restaurants": &graphql.Field{
				Type: graphql.NewList(restaurantType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return catalog.List(p.Context)
				},
			},
		},
	})
	return gql.NewSchema(query, nil)
}
