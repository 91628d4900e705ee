package sse_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/pkg/sse"
)

func TestSend(t *testing.T) {
	w := httptest.NewRecorder()
	s, err := sse.New(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	require.NoError(t, s.Send("order_status_updated", map[string]string{"status": "ACCEPTED"}))

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "event: order_status_updated\ndata: {\"status\":\"ACCEPTED\"}\n\n", w.Body.String())
}

func TestForwardStopsWhenChannelCloses(t *testing.T) {
	w := httptest.NewRecorder()
	s, err := sse.New(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	frames := make(chan []byte, 2)
	frames <- []byte(`{"n":1}`)
	frames <- []byte(`{"n":2}`)
	close(frames)

	err = s.Forward(frames, time.Hour, func([]byte) string { return "tick" })
	require.NoError(t, err)
	assert.Equal(t, "event: tick\ndata: {\"n\":1}\n\nevent: tick\ndata: {\"n\":2}\n\n", w.Body.String())
}

type plainWriter struct{ http.ResponseWriter }

func TestUnsupportedWriter(t *testing.T) {
	_, err := sse.New(plainWriter{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, sse.ErrUnsupported)
}
