package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/drivescan/drivescan-backend/models"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans job-status updates out to every connected dashboard.
type Hub struct {
	Clients map[*websocket.Conn]*Client
	Mutex   sync.RWMutex
}

var H = Hub{
	Clients: make(map[*websocket.Conn]*Client),
}

// JobStatusUpdate is the wire shape of one queue state change.
type JobStatusUpdate struct {
	Type     string           `json:"type"`
	JobID    string           `json:"job_id"`
	FileName string           `json:"file_name"`
	Status   models.JobStatus `json:"status"`
	Synced   bool             `json:"synced"`
	Error    string           `json:"error,omitempty"`
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[conn] = client

	go h.readPump(conn)
	go h.writePump(conn)
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.Clients[conn]; ok {
		close(client.Send)
		delete(h.Clients, conn)
	}
}

// Broadcast delivers data to every client; slow clients drop messages
// instead of blocking the queue.
func (h *Hub) Broadcast(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// BroadcastJobUpdate is the queue's onUpdate hook.
func BroadcastJobUpdate(job models.QueueJob) {
	update := JobStatusUpdate{
		Type:     "job_update",
		JobID:    job.ID,
		FileName: job.FileName,
		Status:   job.Status,
		Synced:   job.Synced,
		Error:    job.Error,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("error JSON marshal:", err)
		return
	}
	H.Broadcast(data)
}

func (h *Hub) readPump(conn *websocket.Conn) {
	defer h.Unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn) {
	h.Mutex.RLock()
	client := h.Clients[conn]
	h.Mutex.RUnlock()
	if client == nil {
		return
	}
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
