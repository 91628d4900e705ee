package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/ayoo/pkg/validate"
)

type line struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

type checkout struct {
	CustomerID string   `json:"customerId" validate:"required"`
	Items      []line   `json:"items" validate:"required,min=1,dive"`
	Email      string   `json:"email" validate:"nullable,email"`
	Method     string   `json:"paymentMethod" validate:"nullable,in=COD,ONLINE"`
	Lat        *float64 `json:"lat" validate:"nullable,between=-90,90"`
	Phone      *string  `json:"phone" validate:"nullable,mobile"`
}

func f64(v float64) *float64 { return &v }
func str(v string) *string    { return &v }

func TestValidCheckout(t *testing.T) {
	errs := validate.Struct(&checkout{
		CustomerID: "cust-1",
		Items:      []line{{ID: "adobo", Quantity: 2}},
		Method:     "COD",
		Lat:        f64(14.5995),
		Phone:      str("0917 123 4567"),
	})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredAndEmptyItems(t *testing.T) {
	errs := validate.Struct(checkout{})
	assert.Equal(t, "The customerId field is required.", errs["customerId"])
	assert.Equal(t, "The items field is required.", errs["items"])
	assert.NotContains(t, errs, "lat")
}

func TestDiveKeysByPath(t *testing.T) {
	errs := validate.Struct(checkout{
		CustomerID: "c",
		Items:      []line{{ID: "a", Quantity: 1}, {Quantity: 0}},
	})
	assert.Contains(t, errs, "items.1.id")
	assert.Contains(t, errs, "items.1.quantity")
	assert.NotContains(t, errs, "items.0.id")
}

func TestListParameters(t *testing.T) {
	base := checkout{CustomerID: "c", Items: []line{{ID: "a", Quantity: 1}}}

	in := base
	in.Method = "GCASH"
	assert.Equal(t, "The selected paymentMethod is invalid.", validate.Struct(in)["paymentMethod"])

	in = base
	in.Lat = f64(-91)
	assert.Equal(t, "The lat must be between -90 and 90.", validate.Struct(in)["lat"])

	// zero is a real coordinate
	in.Lat = f64(0)
	assert.Empty(t, validate.Struct(in))
}

func TestFormats(t *testing.T) {
	type form struct {
		Email string  `json:"email" validate:"required,email"`
		Site  string  `json:"site" validate:"nullable,url"`
		Code  string  `json:"code" validate:"nullable,alpha_num,max=8"`
		Date  string  `json:"date" validate:"nullable,date"`
		Phone *string `json:"phone" validate:"nullable,mobile"`
	}

	errs := validate.Struct(form{
		Email: "maria@ayoo",
		Site:  "ftp://ayoo.ph",
		Code:  "AYOO-26",
		Date:  "31/12/2026",
		Phone: str("12345"),
	})
	assert.Len(t, errs, 5)

	errs = validate.Struct(form{
		Email: "maria@ayoo.ph",
		Site:  "https://ayoo.ph/menu",
		Code:  "AYOO2026",
		Date:  "2026-12-31",
		Phone: str("+639171234567"),
	})
	assert.Empty(t, errs)
}

func TestRequiredPointer(t *testing.T) {
	type ping struct {
		Lat *float64 `json:"lat" validate:"required,between=-90,90"`
	}
	assert.Contains(t, validate.Struct(ping{}), "lat")
	assert.Empty(t, validate.Struct(ping{Lat: f64(0)}))
	assert.Contains(t, validate.Struct(ping{Lat: f64(120)}), "lat")
}

func TestStringLength(t *testing.T) {
	type signup struct {
		Password string `json:"password" validate:"required,min=6"`
		Name     string `json:"name" validate:"required,max=5"`
	}
	errs := validate.Struct(signup{Password: "abc", Name: "Mariaaa"})
	assert.Equal(t, "The password must be at least 6 characters.", errs["password"])
	assert.Equal(t, "The name must not exceed 5 characters.", errs["name"])

	// length counts runes
	assert.Empty(t, validate.Struct(signup{Password: "ñññññññ", Name: "Ñiño"}))
}

func TestNonStructInput(t *testing.T) {
	var nilPtr *checkout
	assert.Empty(t, validate.Struct(nilPtr))
	assert.Empty(t, validate.Struct(42))
}
