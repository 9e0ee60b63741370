package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/budgetly/budgetly-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockWSValidator is a test double for change-feed token validation
type mockWSValidator struct {
	userID int32
	err    error
	tokens []string
}

func (m *mockWSValidator) ValidateToken(ctx context.Context, token string) (int32, error) {
	m.tokens = append(m.tokens, token)
	return m.userID, m.err
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://budgetly.app"}

func TestHandleWS_Unauthorized(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		validator *mockWSValidator
		detail    string
	}{
		{"missing token", "/ws", &mockWSValidator{userID: 1}, "Missing token"},
		{"invalid token", "/ws?token=invalid-jwt", &mockWSValidator{err: websocket.ErrInvalidToken}, "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebSocketHandler(websocket.NewHub(), tt.validator, testAllowedOrigins)
			c, rec := newRequest(echo.New(), http.MethodGet, tt.target, "")

			require.NoError(t, h.HandleWS(c))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.detail)
		})
	}
}

func TestHandleWS_ValidTokenWithoutUpgrade(t *testing.T) {
	hub := websocket.NewHub()
	validator := &mockWSValidator{userID: 42}
	h := NewWebSocketHandler(hub, validator, testAllowedOrigins)

	// valid token but a plain GET, so the upgrader rejects it after auth
	c, rec := newRequest(echo.New(), http.MethodGet, "/ws?token=valid-jwt", "")

	require.NoError(t, h.HandleWS(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"valid-jwt"}, validator.tokens)
	assert.Equal(t, 0, hub.ClientCount(42))
}

func TestOriginPolicy(t *testing.T) {
	policy := newOriginPolicy(testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://budgetly.app", true},
		{"disallowed origin", "https://evil.com", false},
		{"no origin header", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, policy.allows(req))
		})
	}
}
