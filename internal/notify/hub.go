package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 70 * time.Second
	wsPingPeriod = 30 * time.Second
	wsSendBuffer = 32
)

type wsClient struct {
	conn      *websocket.Conn
	send      chan []byte
	userID    uint
	closeOnce sync.Once
}

func (c *wsClient) trySend(payload []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *wsClient) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// Hub keeps the live websocket connections of signed-in users. A user may
// hold several connections, one per open tab.
type Hub struct {
	mu      sync.Mutex
	clients map[uint]map[*wsClient]struct{}
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients: make(map[uint]map[*wsClient]struct{}),
		log:     log,
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*wsClient]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.closeSend()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Online reports whether the user has at least one open connection.
func (h *Hub) Online(userID uint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID]) > 0
}

// Send delivers n to every connection of the user. An offline user is not
// an error; web push covers that case.
func (h *Hub) Send(_ context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients[n.UserID]))
	for c := range h.clients[n.UserID] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if !c.trySend(payload) {
			_ = c.conn.Close()
		}
	}
	return nil
}

// Serve registers conn for the user and blocks until it is closed.
func (h *Hub) Serve(userID uint, conn *websocket.Conn) {
	client := &wsClient{
		conn:   conn,
		send:   make(chan []byte, wsSendBuffer),
		userID: userID,
	}
	h.add(client)
	h.log.Debug("ws connected", "user_id", userID)

	go h.writePump(client)
	h.readPump(client)
}

func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.log.Debug("ws disconnect", "user_id", c.userID)
		_ = c.conn.Close()
		h.remove(c)
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	// Clients only send pings; anything read just keeps the deadline fresh.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.log.Debug("ws read error", "user_id", c.userID, "error", err)
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	}
}

func (h *Hub) writePump(c *wsClient) {
	defer func() {
		_ = c.conn.Close()
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
