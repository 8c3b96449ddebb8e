// Package notifier is the WebSocket notification gateway: a concurrent-safe
// registry of live connections keyed by user id, with eviction on disconnect
// and a redis pub/sub bridge so any instance can reach any connected user.
package notifier

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 16
)

type client struct {
	userId int
	conn   *websocket.Conn
	send   chan []byte
}

// Hub owns the connection registry. Constructed once in main; no package
// level singleton.
type Hub struct {
	mu      sync.RWMutex
	clients map[int][]*client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int][]*client),
	}
}

// Register attaches a connection for a user and starts its pumps.
func (h *Hub) Register(userId int, conn *websocket.Conn) {
	c := &client{
		userId: userId,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[userId] = append(h.clients[userId], c)
	h.mu.Unlock()

	go c.writePump()
	go h.readPump(c)
}

func (h *Hub) evict(c *client) {
	h.mu.Lock()
	conns := h.clients[c.userId]
	for i, existing := range conns {
		if existing == c {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(h.clients, c.userId)
	} else {
		h.clients[c.userId] = conns
	}
	h.mu.Unlock()

	close(c.send)
	_ = c.conn.Close()
}

// readPump discards inbound frames; the gateway is one-way. Its real job is
// detecting disconnect and evicting the registry entry.
func (h *Hub) readPump(c *client) {
	defer h.evict(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Deliver pushes a notification to every live connection of its user on this
// instance. A slow client's full buffer drops the frame rather than blocking.
func (h *Hub) Deliver(notification *models.Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := h.clients[notification.UserId]
	for _, c := range conns {
		select {
		case c.send <- payload:
		default:
		}
	}
	h.mu.RUnlock()
}

// ConnectedUsers reports how many users hold at least one live connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RunRedisBridge subscribes to the notifications channel and delivers frames
// published by other instances. Returns immediately when redis is not
// configured. Call in a goroutine from main.
func (h *Hub) RunRedisBridge() {
	pubsub := config.SubscribeRedis("notifications")
	if pubsub == nil {
		return
	}
	logger := config.GetLogger()
	for msg := range pubsub.Channel() {
		var notification models.Notification
		if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
			logger.WithFields(logrus.Fields{
				"module": "notifier",
			}).Warn("bad notification payload on redis channel: " + err.Error())
			continue
		}
		h.Deliver(&notification)
	}
}
