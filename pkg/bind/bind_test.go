package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/config"
	"github.com/shashiranjanraj/ayoo/pkg/bind"
)

type statusInput struct {
	Status  string `json:"status"  validate:"required"`
	RiderID string `json:"riderId"`
}

func TestJSON(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantErr   bool
		wantField string
	}{
		{name: "valid", body: `{"status":"ACCEPTED"}`},
		{name: "missing field", body: `{"riderId":"r1"}`, wantField: "status"},
		{name: "malformed", body: `{"status":`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(tc.body))
			var in statusInput
			errs, err := bind.JSON(req, &in)

			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.wantField != "" {
				assert.Contains(t, errs, tc.wantField)
				return
			}
			assert.Empty(t, errs)
			assert.Equal(t, "ACCEPTED", in.Status)
		})
	}
}

func TestJSON_EmptyBodySentinel(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	_, err := bind.JSON(req, &statusInput{})
	assert.ErrorIs(t, err, bind.ErrEmptyBody)
}

func TestJSON_RejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"ACCEPTED"} {"status":"CANCELLED"}`))
	_, err := bind.JSON(req, &statusInput{})
	assert.Error(t, err)
}

func TestJSON_TooLarge(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"`+strings.Repeat("x", 64)+`"}`))
	_, err := bind.JSON(req, &statusInput{})
	assert.ErrorIs(t, err, bind.ErrBodyTooLarge)
}
