package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/budgetly/budgetly-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WSTokenValidator validates a change-feed token and returns the user ID
type WSTokenValidator interface {
	ValidateToken(ctx context.Context, token string) (userID int32, err error)
}

// originPolicy accepts browser origins from the CORS allow list. Requests
// without an Origin header come from non-browser clients and are accepted.
type originPolicy map[string]struct{}

func newOriginPolicy(origins []string) originPolicy {
	p := make(originPolicy, len(origins))
	for _, o := range origins {
		p[o] = struct{}{}
	}
	return p
}

func (p originPolicy) allows(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := p[origin]; ok {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// WebSocketHandler upgrades authenticated change-feed connections and
// attaches them to the hub
type WebSocketHandler struct {
	hub       *websocket.Hub
	validator WSTokenValidator
	origins   originPolicy
	upgrader  ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator WSTokenValidator, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:       hub,
		validator: validator,
		origins:   newOriginPolicy(allowedOrigins),
	}
	h.upgrader = ws.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.origins.allows,
	}
	return h
}

// HandleWS handles GET /ws?token=. Browsers cannot set headers on the
// upgrade request, so the access token travels in the query string.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return NewUnauthorizedError(c, "Missing token")
	}

	userID, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected")
		return NewUnauthorizedError(c, "Invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Warn().Err(err).Int32("user_id", userID).Msg("WebSocket upgrade failed")
		return nil
	}

	client := websocket.NewClient(conn, userID, h.hub)
	log.Info().Int32("user_id", userID).Str("client_id", client.ID()).Msg("WebSocket client connected")

	client.Run()
	return nil
}
