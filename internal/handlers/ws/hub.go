package ws

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/smurfolan/likkle-backend/internal/repository"
)

// ClientConnection wraps a WebSocket connection with metadata
type ClientConnection struct {
	Conn         *websocket.Conn
	UserID       uint
	LastPong     time.Time
	SupportsGzip bool
	PingTicker   *time.Ticker
	CloseChan    chan struct{}
}

// Hub manages all active WebSocket connections and fans group events out to
// them. Recipients without a live connection get their events queued for
// delivery on reconnect or by the retry worker.
type Hub struct {
	clients        map[uint]*ClientConnection
	clientsMux     sync.RWMutex
	pendingRepo    repository.PendingNotificationRepositoryInterface
	maxRetries     int
	baseRetryDelay time.Duration
	pingInterval   time.Duration
	pongTimeout    time.Duration
}

// NewHub creates a new Hub instance
func NewHub(pendingRepo repository.PendingNotificationRepositoryInterface) *Hub {
	hub := &Hub{
		clients:        make(map[uint]*ClientConnection),
		pendingRepo:    pendingRepo,
		maxRetries:     5,
		baseRetryDelay: 2 * time.Second,
		pingInterval:   30 * time.Second,
		pongTimeout:    90 * time.Second,
	}

	// Start background workers
	go hub.retryWorker()
	go hub.connectionHealthChecker()

	return hub
}

// Register adds a client connection with health monitoring
func (h *Hub) Register(userID uint, conn *websocket.Conn, supportsGzip bool) {
	clientConn := &ClientConnection{
		Conn:         conn,
		UserID:       userID,
		LastPong:     time.Now(),
		SupportsGzip: supportsGzip,
		PingTicker:   time.NewTicker(h.pingInterval),
		CloseChan:    make(chan struct{}),
	}

	// Setup pong handler
	conn.SetPongHandler(func(appData string) error {
		h.clientsMux.Lock()
		if client, exists := h.clients[userID]; exists {
			client.LastPong = time.Now()
		}
		h.clientsMux.Unlock()
		return nil
	})

	// Set read deadline for ping/pong
	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.clientsMux.Lock()
	h.clients[userID] = clientConn
	h.clientsMux.Unlock()

	// Start ping routine
	go h.pingRoutine(clientConn)

	log.Printf("User %d connected to hub (total: %d, gzip: %v)", userID, len(h.clients), supportsGzip)
}

// Unregister removes a client connection
func (h *Hub) Unregister(userID uint) {
	h.clientsMux.Lock()
	if client, exists := h.clients[userID]; exists {
		if client.PingTicker != nil {
			client.PingTicker.Stop()
		}
		close(client.CloseChan)
	}
	delete(h.clients, userID)
	count := len(h.clients)
	h.clientsMux.Unlock()
	log.Printf("User %d disconnected from hub (total: %d)", userID, count)
}

// Notify fans one group notification out to its recipients, stamping the
// per-recipient subscription flag. Offline recipients are queued.
func (h *Hub) Notify(notification *models.GroupNotification) {
	for _, userID := range notification.RecipientIDs {
		event := notification.Event
		event.IsSubscribed = notification.Subscribed[userID]
		if err := h.sendEvent(userID, &event); err != nil {
			log.Printf("Error delivering %s to user %d: %v", event.Type, userID, err)
		}
	}
}

// sendEvent delivers a single event to one user, queueing it when the user
// is offline or the write fails.
func (h *Hub) sendEvent(userID uint, event *models.GroupEvent) error {
	h.clientsMux.RLock()
	clientConn, exists := h.clients[userID]
	h.clientsMux.RUnlock()

	if !exists {
		return h.queueEvent(userID, event)
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Compress if supported and beneficial (> 512 bytes)
	finalData := jsonData
	frameType := websocket.TextMessage
	if clientConn.SupportsGzip && len(jsonData) > 512 {
		if compressed, err := h.compressData(jsonData); err == nil && len(compressed) < len(jsonData) {
			finalData = compressed
			frameType = websocket.BinaryMessage
		}
	}

	if err := clientConn.Conn.WriteMessage(frameType, finalData); err != nil {
		// Connection may be dead, unregister and queue the event
		h.Unregister(userID)
		return h.queueEvent(userID, event)
	}

	return nil
}

// queueEvent stores an event for offline or failed delivery. Events telling
// the recipient their own membership changed jump the queue.
func (h *Hub) queueEvent(userID uint, event *models.GroupEvent) error {
	if h.pendingRepo == nil {
		return nil // No repository configured, skip queueing
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	priority := 0
	if event.IsSubscribed {
		priority = 1
	}
	return h.pendingRepo.Enqueue(userID, event.GroupID, string(jsonData), priority)
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

// FlushPendingNotifications sends all queued events to a newly connected
// user, highest priority first.
func (h *Hub) FlushPendingNotifications(userID uint) error {
	if h.pendingRepo == nil {
		return nil
	}

	h.clientsMux.RLock()
	clientConn, exists := h.clients[userID]
	h.clientsMux.RUnlock()

	if !exists {
		return nil // User disconnected already
	}

	batchSize := 50
	pending, err := h.pendingRepo.GetPendingForUser(userID, batchSize)
	if err != nil {
		log.Printf("Error fetching pending notifications for user %d: %v", userID, err)
		return err
	}

	if len(pending) == 0 {
		return nil
	}

	log.Printf("Flushing %d pending notifications to user %d", len(pending), userID)

	batch := make([]interface{}, 0, len(pending))
	successIDs := make([]uint, 0, len(pending))

	for _, pn := range pending {
		var data interface{}
		if err := json.Unmarshal([]byte(pn.Payload), &data); err != nil {
			log.Printf("Error unmarshaling pending notification %d: %v", pn.ID, err)
			successIDs = append(successIDs, pn.ID) // drop the unreadable row
			continue
		}
		batch = append(batch, data)
		successIDs = append(successIDs, pn.ID)
	}

	batchMessage := map[string]interface{}{
		"type":   "batch",
		"events": batch,
		"count":  len(batch),
	}

	if err := clientConn.Conn.WriteJSON(batchMessage); err != nil {
		log.Printf("Error sending batch to user %d: %v", userID, err)
		// Connection failed, events stay in queue
		return err
	}

	// Successfully delivered, remove from queue
	if err := h.pendingRepo.DeleteBatch(successIDs); err != nil {
		log.Printf("Error deleting delivered notifications: %v", err)
	}

	// If there are more events, keep flushing (rate-limited by batch size)
	if len(pending) == batchSize {
		time.Sleep(100 * time.Millisecond)
		return h.FlushPendingNotifications(userID)
	}

	return nil
}

// retryWorker processes failed deliveries with exponential backoff
func (h *Hub) retryWorker() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if h.pendingRepo == nil {
			continue
		}

		retryable, err := h.pendingRepo.GetRetryable(100)
		if err != nil {
			log.Printf("Error fetching retryable notifications: %v", err)
			continue
		}

		for _, pn := range retryable {
			h.clientsMux.RLock()
			clientConn, isOnline := h.clients[pn.UserID]
			h.clientsMux.RUnlock()

			if !isOnline {
				// Still offline, calculate next retry with exponential backoff
				attempts := pn.Attempts + 1
				if attempts >= h.maxRetries {
					// Max retries reached, keep in queue but don't retry for a while
					nextRetry := time.Now().Add(1 * time.Hour)
					h.pendingRepo.MarkAttempted(pn.ID, attempts, &nextRetry)
					continue
				}

				// Exponential backoff: 2s, 4s, 8s, 16s, 32s
				delay := h.baseRetryDelay * time.Duration(1<<uint(attempts))
				nextRetry := time.Now().Add(delay)
				h.pendingRepo.MarkAttempted(pn.ID, attempts, &nextRetry)
				continue
			}

			if err := clientConn.Conn.WriteMessage(websocket.TextMessage, []byte(pn.Payload)); err != nil {
				log.Printf("Retry delivery failed for user %d: %v", pn.UserID, err)
				attempts := pn.Attempts + 1
				delay := h.baseRetryDelay * time.Duration(1<<uint(attempts))
				nextRetry := time.Now().Add(delay)
				h.pendingRepo.MarkAttempted(pn.ID, attempts, &nextRetry)
			} else {
				h.pendingRepo.Delete(pn.ID)
			}
		}
	}
}

// pingRoutine sends periodic ping messages to keep connection alive
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered from panic for user %d: %v", client.UserID, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			// Check if connection is still valid
			h.clientsMux.RLock()
			_, exists := h.clients[client.UserID]
			h.clientsMux.RUnlock()

			if !exists {
				return
			}

			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				log.Printf("Ping failed for user %d: %v", client.UserID, err)
				h.Unregister(client.UserID)
				return
			}
		}
	}
}

// connectionHealthChecker monitors connection health and removes dead connections
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.clientsMux.RLock()
		deadConnections := make([]uint, 0)
		now := time.Now()

		for userID, client := range h.clients {
			if now.Sub(client.LastPong) > h.pongTimeout {
				deadConnections = append(deadConnections, userID)
			}
		}
		h.clientsMux.RUnlock()

		for _, userID := range deadConnections {
			log.Printf("Removing dead connection for user %d (no pong received)", userID)
			h.Unregister(userID)
		}
	}
}

// compressData compresses data using gzip
func (h *Hub) compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)

	if _, err := gzipWriter.Write(data); err != nil {
		return nil, err
	}

	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decompressData decompresses gzip data
func decompressData(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}
