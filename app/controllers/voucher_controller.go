package controllers

import (
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/ctx"
)

type VoucherController struct {
	vouchers *services.VoucherService
}

func NewVoucherController(vouchers *services.VoucherService) *VoucherController {
	return &VoucherController{vouchers: vouchers}
}

func (h *VoucherController) Index(c *ctx.Context) {
	list, err := h.vouchers.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(list)
}

// Validate handles GET /api/vouchers/validate/{code}.
func (h *VoucherController) Validate(c *ctx.Context) {
	v, err := h.vouchers.Validate(c.Context(), c.Param("code"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(v)
}

func (h *VoucherController) Quote(c *ctx.Context) {
	var in services.QuoteInput
	if !c.BindJSON(&in) {
		return
	}
	q, err := h.vouchers.Quote(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(q)
}

func (h *VoucherController) Store(c *ctx.Context) {
	var in services.VoucherInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := h.vouchers.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(v)
}

func (h *VoucherController) Update(c *ctx.Context) {
	var in services.VoucherInput
	if !c.BindJSON(&in) {
		return
	}
	v, err := h.vouchers.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(v)
}

func (h *VoucherController) Destroy(c *ctx.Context) {
	if err := h.vouchers.Delete(c.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"id": c.Param("id")})
}
