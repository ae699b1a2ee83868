package handlers

import (
	"log/slog"
	"strconv"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/job-application-tracker/internal/api/response"
	"github.com/welldanyogia/job-application-tracker/internal/websocket"
)

// WebSocketHandler upgrades connections onto the application event feed
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, upgrader gorillaws.Upgrader, log *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, upgrader: upgrader, logger: log}
}

// Connect handles GET /ws. The optional application_id query parameter
// subscribes the connection immediately; without it the client receives
// every event until it sends its own subscribe message.
func (h *WebSocketHandler) Connect(c echo.Context) error {
	subscription := websocket.AllApplications
	if raw := c.QueryParam("application_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c)
		}
		subscription = uint(id)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response
		if h.logger != nil {
			h.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		}
		return nil
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register(client)
	h.hub.Subscribe(client, subscription)

	client.Serve()
	return nil
}
