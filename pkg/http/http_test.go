package http_test

import (
	"context"
	gohttp "net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/pkg/http"
)

func TestFormPostWithBasicAuth(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sk_test", user)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"id":"cs_1","url":"https://pay/cs_1"}`))
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL).
		BasicAuth("sk_test", "").
		Form(url.Values{"mode": {"payment"}}).
		Send(context.Background())
	require.NoError(t, err)
	require.NoError(t, resp.Throw())

	var out struct{ ID, URL string }
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "cs_1", out.ID)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(gohttp.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL).Retry(3, time.Millisecond).Send(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.EqualValues(t, 3, calls.Load())
}

func TestThrowOnClientError(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, _ *gohttp.Request) {
		w.WriteHeader(gohttp.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad amount"}}`))
	}))
	defer srv.Close()

	resp, err := http.Post(srv.URL).JSON(map[string]int{"amount": -1}).Retry(3, time.Millisecond).Send(context.Background())
	require.NoError(t, err)

	var se *http.StatusError
	require.ErrorAs(t, resp.Throw(), &se)
	assert.Equal(t, gohttp.StatusBadRequest, se.StatusCode)
}

func TestTransportError(t *testing.T) {
	_, err := http.Get("http://127.0.0.1:1").Timeout(100 * time.Millisecond).Send(context.Background())
	assert.Error(t, err)
}
