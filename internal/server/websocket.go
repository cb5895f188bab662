package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

// reloadMessage is pushed to browsers after a successful rebuild.
type reloadMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *DevServer
}

func (s *DevServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin already validated above
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		server: s,
	}

	go c.writePump()
	go c.readPump()

	select {
	case s.register <- c:
	case <-s.shutdown:
		c.close()
	}
}

// checkOrigin rejects cross-origin socket connections. Browsers always send
// an Origin header on WebSocket upgrades.
func (s *DevServer) checkOrigin(r *http.Request) bool {
	return s.isAllowedOrigin(r.Header.Get("Origin"))
}

// runHub owns the client set: registration, disconnects, and broadcast
// fan-out all happen here.
func (s *DevServer) runHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case c := <-s.register:
			s.hubMutex.Lock()
			s.clients[c] = true
			s.hubMutex.Unlock()
		case c := <-s.unregister:
			s.hubMutex.Lock()
			if s.clients[c] {
				delete(s.clients, c)
				close(c.send)
			}
			s.hubMutex.Unlock()
		case message := <-s.broadcast:
			s.hubMutex.RLock()
			for c := range s.clients {
				select {
				case c.send <- message:
				default:
					// Slow client, drop the message
				}
			}
			s.hubMutex.RUnlock()
		}
	}
}

// broadcastReload notifies all connected browsers to refresh.
func (s *DevServer) broadcastReload() {
	payload, err := json.Marshal(reloadMessage{Type: "reload", Timestamp: time.Now().UnixMilli()})
	if err != nil {
		payload = []byte(`{"type":"reload"}`)
	}
	select {
	case s.broadcast <- payload:
	default:
	}
}

func (c *client) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "")

	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			return
		}
	}
}

// readPump drains incoming frames so pings are answered, and unregisters
// the client when the connection drops.
func (c *client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.shutdown:
		}
	}()

	ctx := context.Background()
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.conn.Close(websocket.StatusNormalClosure, "going away")
}
