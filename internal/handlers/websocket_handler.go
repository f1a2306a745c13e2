package handlers

import (
	"log"
	"os"

	"github.com/gofiber/websocket/v2"
	"github.com/smurfolan/likkle-backend/internal/cache"
	"github.com/smurfolan/likkle-backend/internal/handlers/ws"
	"github.com/smurfolan/likkle-backend/internal/service"
)

type WebSocketHandler struct {
	subscriptionService *service.SubscriptionService
	hub                 *ws.Hub
	presenceCache       *cache.PresenceCache
}

func NewWebSocketHandler(subscriptionService *service.SubscriptionService, hub *ws.Hub, presenceCache *cache.PresenceCache) *WebSocketHandler {
	return &WebSocketHandler{
		subscriptionService: subscriptionService,
		hub:                 hub,
		presenceCache:       presenceCache,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)
	wsDebug := os.Getenv("WS_DEBUG") == "true"

	// Check if client supports gzip compression (via query param or header)
	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"

	// Register client in hub
	h.hub.Register(userID, c, supportsGzip)

	// Mark presence
	go func() {
		if err := h.presenceCache.SetUserOnline(userID); err != nil {
			log.Printf("Failed to set user %d online in cache: %v", userID, err)
		}
	}()

	// Flush pending events after successful connection
	go func() {
		if err := h.hub.FlushPendingNotifications(userID); err != nil {
			log.Printf("Failed to flush pending events for user %d: %v", userID, err)
		}
	}()

	defer func() {
		h.hub.Unregister(userID)
		go func() {
			if err := h.presenceCache.SetUserOffline(userID); err != nil {
				log.Printf("Failed to set user %d offline in cache: %v", userID, err)
			}
		}()
	}()

	log.Printf("User %d connected via WebSocket", userID)

	// Create message context
	ctx := &ws.MessageContext{
		UserID:              userID,
		Conn:                c,
		Hub:                 h.hub,
		SubscriptionService: h.subscriptionService,
	}

	// Handle incoming messages
	for {
		messageType, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %d: %v", userID, err)
			break
		}

		if wsDebug {
			log.Printf("ws_recv user_id=%d frame_type=%d size=%d", userID, messageType, len(messageBytes))
		}

		// Decompress if binary message (gzip compressed)
		if messageType == websocket.BinaryMessage {
			decompressed, err := ws.DecompressMessage(messageBytes)
			if err != nil {
				log.Printf("Error decompressing message from user %d: %v", userID, err)
				ws.SendError(c, "decompression_failed", "Failed to decompress message", err.Error())
				continue
			}
			messageBytes = decompressed
		}

		// Deserialize message
		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %d: %v", userID, err)
			ws.SendError(c, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		// Keep the presence TTL ahead of the pong timeout while traffic flows.
		if err := h.presenceCache.RefreshUserOnline(userID); err != nil {
			log.Printf("Failed to refresh presence for user %d: %v", userID, err)
		}

		// Process message
		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %d: %v", msg.GetType(), userID, err)
			ws.SendError(c, "processing_failed", "Failed to process message", err.Error())
		}
	}

	log.Printf("User %d disconnected from WebSocket", userID)
}
