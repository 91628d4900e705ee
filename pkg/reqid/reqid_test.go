package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/ayoo/pkg/reqid"
)

func serve(incoming string) (header, seen string) {
	h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(reqid.Header, incoming)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Header().Get(reqid.Header), seen
}

func TestMiddleware(t *testing.T) {
	header, seen := serve("")
	assert.Len(t, header, 36)
	assert.Equal(t, header, seen)

	header, seen = serve("gw-7f3a")
	assert.Equal(t, "gw-7f3a", header)
	assert.Equal(t, "gw-7f3a", seen)

	for _, bad := range []string{"has space", strings.Repeat("x", 129), "tab\there"} {
		header, _ = serve(bad)
		assert.NotEqual(t, bad, header)
		assert.Len(t, header, 36)
	}
}

func TestFromCtxEmpty(t *testing.T) {
	assert.Empty(t, reqid.FromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
