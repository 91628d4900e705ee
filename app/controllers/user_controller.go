package controllers

import (
	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/ctx"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (h *UserController) Show(c *ctx.Context) {
	if !isSelfOrAdmin(c, c.Param("id")) {
		c.Forbidden()
		return
	}
	u, err := h.users.Find(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}

// Update handles PATCH /api/users/{id}; users edit their own profile.
func (h *UserController) Update(c *ctx.Context) {
	var p services.ProfilePatch
	if !c.BindJSON(&p) {
		return
	}
	if !isSelfOrAdmin(c, c.Param("id")) {
		c.Forbidden()
		return
	}
	u, err := h.users.UpdateProfile(c.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}
