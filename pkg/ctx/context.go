// Package ctx provides the request context that Ayoo handlers receive.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, the caller's
// identity, binding and the JSON envelope:
//
//	func (h *OrderController) Show(c *ctx.Context) {
//	    order, err := h.orders.Find(c.Context(), c.Param("id"))
//	    if err != nil {
//	        c.NotFound(err.Error())
//	        return
//	    }
//	    c.Success(order)
//	}
//
//	router.Get("/orders/{id}", "orders.show", ctx.Wrap(h.Show))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/ayoo/pkg/bind"
	"github.com/shashiranjanraj/ayoo/pkg/middleware"
	"github.com/shashiranjanraj/ayoo/pkg/response"
	"github.com/shashiranjanraj/ayoo/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := pool.Get().(*Context)
		c.W, c.R = w, r
		defer func() {
			c.W, c.R = nil, nil
			pool.Put(c)
		}()
		h(c)
	}
}

// Context wraps a request/response pair. It is pooled: do not keep it
// after the handler returns.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{New: func() any { return new(Context) }}

// Param returns a URL path parameter ("/orders/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// QueryInt parses an integer query parameter. A missing parameter yields
// def; a malformed one yields ok=false.
func (c *Context) QueryInt(key string, def int) (n int, ok bool) {
	raw := c.R.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

// Path returns the request URL path.
func (c *Context) Path() string { return c.R.URL.Path }

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Identity returns the authenticated caller's role and user id, both empty
// for anonymous requests.
func (c *Context) Identity() (role, userID string) {
	claims, ok := middleware.ClaimsFromCtx(c.R.Context())
	if !ok {
		return "", ""
	}
	return claims.Role, claims.UserID
}

// BindJSON decodes the JSON body into dest and runs validation.
// It writes 400 for a missing or malformed body and 422 for validation
// failures, then returns false. The handler should return immediately.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// JSON writes v as JSON with the given status code.
func (c *Context) JSON(code int, v any) { response.JSON(c.W, code, v) }

// Bytes writes a raw body, e.g. a PNG.
func (c *Context) Bytes(code int, contentType string, data []byte) {
	c.W.Header().Set("Content-Type", contentType)
	c.W.WriteHeader(code)
	c.W.Write(data) //nolint:errcheck
}

// Success sends a 200 envelope: {"status":200,"data":...}
func (c *Context) Success(data any) { response.Success(c.W, data) }

// Created sends a 201 envelope.
func (c *Context) Created(data any) { response.Created(c.W, data) }

// Error sends an envelope with only a message.
func (c *Context) Error(code int, message string) { response.Error(c.W, code, message) }

// ValidationError sends a 422 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) { response.Validation(c.W, errs) }

// Unauthorized sends a 401 with an optional message.
func (c *Context) Unauthorized(message ...string) { response.Unauthorized(c.W, first(message)) }

// Forbidden sends a 403 with an optional message.
func (c *Context) Forbidden(message ...string) { response.Forbidden(c.W, first(message)) }

// NotFound sends a 404 with an optional message.
func (c *Context) NotFound(message ...string) { response.NotFound(c.W, first(message)) }

func first(msgs []string) string {
	if len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
