package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/pkg/auth"
	appctx "github.com/shashiranjanraj/ayoo/pkg/ctx"
	"github.com/shashiranjanraj/ayoo/pkg/middleware"
)

func serve(h appctx.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestEnvelope(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Created(map[string]string{"id": "ord-1"})
	}, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"status":201,"data":{"id":"ord-1"}}`, rec.Body.String())

	rec = serve(func(c *appctx.Context) { c.Success([]string{}) },
		httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"status":200,"data":[]}`, rec.Body.String())

	rec = serve(func(c *appctx.Context) { c.NotFound() },
		httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":404,"message":"Not found"}`, rec.Body.String())
}

func TestBindJSON(t *testing.T) {
	type statusBody struct {
		Status string `json:"status" validate:"required,in=ACCEPTED,CANCELLED"`
	}
	cases := []struct {
		name string
		body string
		code int
	}{
		{"valid", `{"status":"ACCEPTED"}`, http.StatusOK},
		{"empty body", ``, http.StatusBadRequest},
		{"malformed", `{"status":`, http.StatusBadRequest},
		{"unknown status", `{"status":"LOST"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(tc.body))
			rec := serve(func(c *appctx.Context) {
				var in statusBody
				if c.BindJSON(&in) {
					c.Success(in.Status)
				}
			}, req)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestParamAndQueryInt(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders/{id}/qr", appctx.Wrap(func(c *appctx.Context) {
		size, ok := c.QueryInt("size", 256)
		if !ok {
			c.Error(http.StatusUnprocessableEntity, "bad size")
			return
		}
		c.Success(map[string]any{"id": c.Param("id"), "size": size})
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ord-9/qr", nil))
	assert.JSONEq(t, `{"status":200,"data":{"id":"ord-9","size":256}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ord-9/qr?size=512", nil))
	assert.Contains(t, rec.Body.String(), `"size":512`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ord-9/qr?size=big", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestIdentity(t *testing.T) {
	h := func(c *appctx.Context) {
		role, id := c.Identity()
		c.Success(role + "/" + id)
	}

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), `"data":"/"`)

	token, err := auth.GenerateToken("rider-7", "RIDER")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	middleware.OptionalAuth(appctx.Wrap(h)).ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"data":"RIDER/rider-7"`)
}

func TestBytes(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.SetHeader("Cache-Control", "no-store")
		c.Bytes(http.StatusOK, "image/png", []byte{0x89, 'P', 'N', 'G'})
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, 4, rec.Body.Len())
}
