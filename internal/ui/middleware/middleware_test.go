package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		environment string
		wantHSTS    bool
	}{
		{"dev", false},
		{"test", false},
		{"staging", true},
		{"prod", true},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			rr := httptest.NewRecorder()
			SecurityHeaders(tt.environment)(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
			assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
			assert.Equal(t, tt.wantHSTS, rr.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestRequestSizeLimit(t *testing.T) {
	var readErr error
	handler := RequestSizeLimit(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("content length over limit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/signup/upload", strings.NewReader(strings.Repeat("x", 11)))
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Contains(t, rr.Body.String(), "10 bytes")
	})

	t.Run("within limit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/signup/upload", strings.NewReader("0123456789"))
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NoError(t, readErr)
	})

	t.Run("unknown length is capped while reading", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/signup/upload", strings.NewReader(strings.Repeat("x", 20)))
		req.ContentLength = -1
		handler.ServeHTTP(rr, req)

		var maxErr *http.MaxBytesError
		require.ErrorAs(t, readErr, &maxErr)
	})
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "10 MB", formatBytes(10<<20))
	assert.Equal(t, "1500 bytes", formatBytes(1500))
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(1, 2)(okHandler)

	request := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:1002"), "burst used up, port is ignored")
	assert.Equal(t, http.StatusOK, request("10.0.0.2:1000"), "other clients have their own limit")
}

func TestRateLimit_Disabled(t *testing.T) {
	handler := RateLimit(0, 0)(okHandler)
	for i := 0; i < 100; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}
}
