package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/homeservices_backend/services"
)

const authTimeout = 30 * time.Second

// Handler upgrades authenticated requests and registers them with the hub.
// The token comes from ?token= or, after connecting, an "AUTH:<token>" message.
type Handler struct {
	hub      *Hub
	verifier services.IdentityVerifier
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewHandler(hub *Hub, verifier services.IdentityVerifier, allowedOrigins []string, log *logrus.Logger) *Handler {
	return &Handler{
		hub:      hub,
		verifier: verifier,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleWebSocket handles GET /api/ws
func (h *Handler) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{conn: ws}
	if token := c.QueryParam("token"); token != "" {
		if !h.authenticate(c.Request().Context(), client, token) {
			ws.Close()
			return nil
		}
	} else {
		_ = client.write(Message{
			Type:         MessageTypeConnected,
			Message:      "WebSocket connection established. Please authenticate to receive notifications.",
			RequiresAuth: true,
		})
		_ = ws.SetReadDeadline(time.Now().Add(authTimeout))
	}

	go h.readLoop(ws, client)
	return nil
}

func (h *Handler) readLoop(ws *websocket.Conn, client *Client) {
	defer func() {
		if client.UserID != "" {
			h.hub.unregister <- client
		} else {
			ws.Close()
		}
	}()

	for {
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage || client.UserID != "" {
			continue
		}
		if token := strings.TrimPrefix(string(message), "AUTH:"); token != string(message) {
			if !h.authenticate(context.Background(), client, strings.TrimSpace(token)) {
				return
			}
			_ = ws.SetReadDeadline(time.Time{})
		}
	}
}

func (h *Handler) authenticate(ctx context.Context, client *Client, token string) bool {
	identity, err := h.verifier.Verify(ctx, token)
	if err != nil {
		_ = client.write(Message{Type: MessageTypeAuthResponse, Message: "Unauthenticated", RequiresAuth: true})
		return false
	}

	client.UserID = identity.UID
	h.hub.register <- client
	h.log.WithField("userId", identity.UID).Debug("websocket client registered")

	_ = client.write(Message{
		Type:    MessageTypeConnected,
		Message: "WebSocket connection established",
		UserID:  identity.UID,
	})
	return true
}
