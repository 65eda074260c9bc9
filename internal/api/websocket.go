package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tillpoint/print-engine/internal/discovery"
	"github.com/tillpoint/print-engine/internal/profile"
	"github.com/tillpoint/print-engine/internal/spool"
	"github.com/tillpoint/print-engine/pkg/receipt"
)

// WebSocket message types
const (
	EventPrint     = "print"
	EventJobUpdate = "job_update"
	EventDevices   = "devices"
	EventResponse  = "response"
	EventError     = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	server *Server
	mu     sync.Mutex
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		fmt.Printf("WebSocket upgrade failed: %v\n", err)
		return
	}

	client := &WSClient{
		conn:   conn,
		send:   make(chan WSMessage, 256),
		server: s,
	}

	go client.readPump()
	go client.writePump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.mu.Lock()
		err := c.conn.WriteJSON(msg)
		c.mu.Unlock()

		if err != nil {
			return
		}
	}
}

func (c *WSClient) handleMessage(msg *WSMessage) {
	switch msg.Event {
	case EventPrint:
		c.handlePrintEvent(msg.Data)
	default:
		c.sendError(fmt.Sprintf("unknown event: %s", msg.Event))
	}
}

func (c *WSClient) handlePrintEvent(data map[string]interface{}) {
	profileID, _ := data["profile_id"].(string)

	var content *receipt.Content

	if receiptData, ok := data["receipt"]; ok {
		receiptBytes, _ := json.Marshal(receiptData)
		parsed, err := receipt.Parse(receiptBytes)
		if err != nil {
			c.sendError(fmt.Sprintf("invalid receipt: %v", err))
			return
		}
		content = parsed
	} else if receiptPath, ok := data["receipt_path"].(string); ok && receiptPath != "" {
		parsed, err := receipt.ParseFile(receiptPath)
		if err != nil {
			c.sendError(fmt.Sprintf("failed to load receipt: %v", err))
			return
		}
		content = parsed
	} else {
		c.sendError("receipt or receipt_path is required")
		return
	}

	if err := receipt.Validate(content); err != nil {
		c.sendError(fmt.Sprintf("receipt validation failed: %v", err))
		return
	}

	p, err := c.server.resolveProfile(profileID)
	if err != nil {
		c.sendError("no usable printer profile")
		return
	}

	jobID := c.server.queue.Enqueue(p.ID, content)

	c.sendResponse(map[string]interface{}{
		"success": true,
		"job_id":  jobID,
	})
}

func (c *WSClient) sendResponse(data map[string]interface{}) {
	c.send <- WSMessage{
		Event: EventResponse,
		Data:  data,
	}
}

func (c *WSClient) sendError(message string) {
	c.send <- WSMessage{
		Event: EventError,
		Data: map[string]interface{}{
			"error": message,
		},
	}
}

// Client tracking for broadcasts
var (
	clients   = make(map[*WSClient]bool)
	clientsMu sync.RWMutex
)

func addClient(client *WSClient) {
	clientsMu.Lock()
	clients[client] = true
	clientsMu.Unlock()
}

// removeClient also closes the send channel; the exclusive lock guarantees
// no broadcast is mid-send when it closes
func removeClient(client *WSClient) {
	clientsMu.Lock()
	delete(clients, client)
	close(client.send)
	clientsMu.Unlock()
}

func (c *WSClient) readPump() {
	defer func() {
		removeClient(c)
		c.conn.Close()
	}()

	addClient(c)

	for {
		var msg WSMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("WebSocket error: %v\n", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// BroadcastDevices pushes the result of a discovery pass to every connected
// client so open setup UIs refresh without polling
func (s *Server) BroadcastDevices(t profile.Transport, devices []discovery.Device) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	message := WSMessage{
		Event: EventDevices,
		Data: map[string]interface{}{
			"transport": t,
			"devices":   devices,
		},
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
		}
	}
}

// BroadcastJobUpdate pushes a job status change to every connected client.
// Wire it to the queue via Queue.OnUpdate.
func (s *Server) BroadcastJobUpdate(job spool.Job) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	message := WSMessage{
		Event: EventJobUpdate,
		Data: map[string]interface{}{
			"id":         job.ID,
			"profile_id": job.ProfileID,
			"status":     job.Status,
			"reason":     job.Reason,
			"attempts":   job.Attempts,
		},
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			// Client send buffer full, skip
		}
	}
}
