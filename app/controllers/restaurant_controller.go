package controllers

import (
	"bufio"
	"net/http"

	"github.com/shashiranjanraj/ayoo/app/services"
	"github.com/shashiranjanraj/ayoo/pkg/ctx"
	"github.com/shashiranjanraj/ayoo/pkg/rbac"
)

const maxImageBytes = 5 << 20

type RestaurantController struct {
	catalog *services.CatalogService
}

func NewRestaurantController(catalog *services.CatalogService) *RestaurantController {
	return &RestaurantController{catalog: catalog}
}

func (h *RestaurantController) Index(c *ctx.Context) {
	list, err := h.catalog.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(list)
}

func (h *RestaurantController) Show(c *ctx.Context) {
	rest, err := h.catalog.Find(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(rest)
}

// owns writes the error response and returns false unless the caller
// manages restaurant id.
func (h *RestaurantController) owns(c *ctx.Context, id string) bool {
	rest, err := h.catalog.Find(c.Context(), id)
	if err != nil {
		fail(c, err)
		return false
	}
	role, uid := c.Identity()
	if role == rbac.Admin || (role == rbac.Merchant && rest.OwnerID == uid) {
		return true
	}
	c.Forbidden("You do not manage this restaurant")
	return false
}

func (h *RestaurantController) Update(c *ctx.Context) {
	var p services.RestaurantPatch
	if !c.BindJSON(&p) || !h.owns(c, c.Param("id")) {
		return
	}
	rest, err := h.catalog.Update(c.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(rest)
}

func (h *RestaurantController) StoreItem(c *ctx.Context) {
	var in services.ItemInput
	if !c.BindJSON(&in) || !h.owns(c, c.Param("id")) {
		return
	}
	item, err := h.catalog.AddItem(c.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(item)
}

func (h *RestaurantController) UpdateItem(c *ctx.Context) {
	var in services.ItemInput
	if !c.BindJSON(&in) || !h.owns(c, c.Param("id")) {
		return
	}
	item, err := h.catalog.UpdateItem(c.Context(), c.Param("id"), c.Param("itemId"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(item)
}

func (h *RestaurantController) DestroyItem(c *ctx.Context) {
	if !h.owns(c, c.Param("id")) {
		return
	}
	if err := h.catalog.DeleteItem(c.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"id": c.Param("itemId")})
}

// UploadImage handles the multipart "image" field. The content type is
// sniffed from the file, not taken from the client.
func (h *RestaurantController) UploadImage(c *ctx.Context) {
	if !h.owns(c, c.Param("id")) {
		return
	}
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxImageBytes+1024)
	file, _, err := c.R.FormFile("image")
	if err != nil {
		c.ValidationError(map[string]string{"image": "The image field is required."})
		return
	}
	defer file.Close()

	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	item, err := h.catalog.UploadItemImage(c.Context(), c.Param("id"), c.Param("itemId"), http.DetectContentType(head), br)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(item)
}
