package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/constella-app/constella-web/internal/ui/config"
	"github.com/constella-app/constella-web/internal/wizard"
)

func TestFormatUploadLimit(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{10 << 20, "10 MB"},
		{1536 * 1024, "1536 KB"},
		{2048, "2 KB"},
		{100, "100 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUploadLimit(tt.n))
		})
	}
}

func TestInputReducer(t *testing.T) {
	start := wizard.Initial()
	start.Credentials = wizard.Credentials{Name: "Ada", Email: "ada@example.com", Password: "secret1"}
	start.Profile.Department = "Product"

	t.Run("only submitted fields change", func(t *testing.T) {
		got := inputReducer(url.Values{"email": {"ada@lovelace.dev"}, "totalHours": {"40"}})(start)

		assert.Equal(t, "Ada", got.Credentials.Name)
		assert.Equal(t, "ada@lovelace.dev", got.Credentials.Email)
		assert.Equal(t, "secret1", got.Credentials.Password)
		assert.Equal(t, "40", got.Profile.TotalHours)
		assert.Equal(t, "Product", got.Profile.Department)
	})

	t.Run("empty form leaves the state alone", func(t *testing.T) {
		start := start
		start.Message = "kept"

		got := inputReducer(url.Values{"role": {"employee"}})(start)
		assert.Equal(t, start.Credentials, got.Credentials)
		assert.Equal(t, "kept", got.Message)
	})

	t.Run("blank password keeps the stored one", func(t *testing.T) {
		got := inputReducer(url.Values{"name": {"Ada L"}, "password": {""}})(start)
		assert.Equal(t, "secret1", got.Credentials.Password)
		assert.Equal(t, "Ada L", got.Credentials.Name)

		got = inputReducer(url.Values{"password": {"newsecret"}})(start)
		assert.Equal(t, "newsecret", got.Credentials.Password)
	})

	t.Run("submitted empty value clears the field", func(t *testing.T) {
		got := inputReducer(url.Values{"department": {""}})(start)
		assert.Empty(t, got.Profile.Department)
	})
}

func TestWizardSessionID(t *testing.T) {
	h := &HandlerService{Environment: "prod", WizardTTLSecs: 1800}

	t.Run("new visitor gets a cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		id := h.wizardSessionID(rr, httptest.NewRequest(http.MethodGet, "/signup", nil))

		_, err := uuid.Parse(id)
		require.NoError(t, err)

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, config.WizardSessionCookieName, cookies[0].Name)
		assert.Equal(t, id, cookies[0].Value)
		assert.Equal(t, 1800, cookies[0].MaxAge)
		assert.True(t, cookies[0].Secure)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("existing cookie is reused", func(t *testing.T) {
		existing := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/signup", nil)
		req.AddCookie(&http.Cookie{Name: config.WizardSessionCookieName, Value: existing})

		rr := httptest.NewRecorder()
		assert.Equal(t, existing, h.wizardSessionID(rr, req))
		assert.Empty(t, rr.Result().Cookies())
	})

	t.Run("malformed cookie is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/signup", nil)
		req.AddCookie(&http.Cookie{Name: config.WizardSessionCookieName, Value: "../../etc"})

		rr := httptest.NewRecorder()
		id := h.wizardSessionID(rr, req)
		assert.NotEqual(t, "../../etc", id)
		assert.Len(t, rr.Result().Cookies(), 1)
	})
}
