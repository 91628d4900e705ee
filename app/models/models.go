// Package models holds the gorm-mapped entities of the delivery platform.
//
// Ids are UUID strings assigned by the repositories. Money fields are
// shopspring decimals and serialise as JSON numbers.
package models

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// All lists every model, in dependency order, for migrations and tests.
func All() []any {
	return []any{
		&User{},
		&Restaurant{},
		&FoodItem{},
		&Order{},
		&OrderStatusHistory{},
		&Voucher{},
	}
}
