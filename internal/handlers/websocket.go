package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"barhop-backend/internal/middleware"
	"barhop-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// ClientMessage represents a message sent by a WebSocket client
type ClientMessage struct {
	Type      string `json:"type"`
	Channel   string `json:"channel,omitempty"`
	PictureID string `json:"picture_id,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// WebSocketHandler handles the real-time feed channel
type WebSocketHandler struct {
	hub            *services.WSHub
	userService    *services.UserService
	pictureService *services.PictureService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	pictureService *services.PictureService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		userService:    userService,
		pictureService: pictureService,
	}
}

// HandleWebSocket handles GET /ws. After the upgrade the client sends
// a subscribe command naming its own feed channel; messages published
// to that channel are pushed until the connection drops.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	userID, err := middleware.ValidateWebSocketToken(token, h.userService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()
	defer h.hub.Unsubscribe(conn)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	ctx := r.Context()
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.hub.SendError(conn, "Invalid message format")
			continue
		}

		if err := h.handleMessage(ctx, userID, conn, msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			h.hub.SendError(conn, err.Error())
		}
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, userID string, conn *websocket.Conn, msg ClientMessage) error {
	switch msg.Type {
	case "subscribe":
		return h.handleSubscribe(userID, conn, msg)
	case "photo_uploaded":
		return h.handlePhotoUploaded(ctx, userID, msg)
	default:
		return h.hub.SendError(conn, "Unknown message type")
	}
}

// handleSubscribe registers the connection on the client's own feed
// channel. A client may only subscribe to its own channel.
func (h *WebSocketHandler) handleSubscribe(userID string, conn *websocket.Conn, msg ClientMessage) error {
	if msg.Channel != services.ChannelName(userID) {
		return h.hub.SendError(conn, "Cannot subscribe to another user's channel")
	}
	h.hub.Subscribe(userID, conn)
	return nil
}

// handlePhotoUploaded records the image URL once the client finishes
// the pre-signed upload.
func (h *WebSocketHandler) handlePhotoUploaded(ctx context.Context, userID string, msg ClientMessage) error {
	if msg.PictureID == "" || msg.ImageURL == "" {
		return fmt.Errorf("picture_id and image_url are required")
	}

	if err := h.pictureService.CompleteUpload(ctx, msg.PictureID, msg.ImageURL); err != nil {
		return err
	}

	log.Info().
		Str("user_id", userID).
		Str("picture_id", msg.PictureID).
		Msg("Picture upload completed")

	return nil
}
