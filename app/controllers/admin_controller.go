package controllers

import (
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/ctx"
)

type AdminController struct {
	stats *services.StatsService
	users *services.UserService
}

func NewAdminController(stats *services.StatsService, users *services.UserService) *AdminController {
	return &AdminController{stats: stats, users: users}
}

func (h *AdminController) Stats(c *ctx.Context) {
	st, err := h.stats.Get(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(st)
}

func (h *AdminController) Riders(c *ctx.Context) {
	riders, err := h.users.Riders(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(riders)
}

type riderStatusRequest struct {
	Status string `json:"status" validate:"required,in=PENDING,APPROVED,SUSPENDED"`
}

func (h *AdminController) SetRiderStatus(c *ctx.Context) {
	var body riderStatusRequest
	if !c.BindJSON(&body) {
		return
	}
	u, err := h.users.SetRiderStatus(c.Context(), c.Param("id"), body.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}
