package api

import (
	"context"
	"net/http"
	"time"

	"ecocoach/internal/model"
	"ecocoach/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	subscriberBuffer = 8
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	refreshTimeout   = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type LeaderboardSource interface {
	Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error)
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes the leaderboard to websocket subscribers. Run owns the
// subscriber set; everything else talks to it over channels.
type Hub struct {
	source     LeaderboardSource
	size       int
	register   chan *subscriber
	unregister chan *subscriber
	notify     chan struct{}
	done       chan struct{}
	clients    map[*subscriber]struct{}
}

func NewHub(source LeaderboardSource, size int) *Hub {
	return &Hub{
		source:     source,
		size:       size,
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		clients:    make(map[*subscriber]struct{}),
	}
}

func NewStreamRoutes(handler *gin.RouterGroup, hub *Hub) {
	h := handler.Group("/ws")
	h.GET("/leaderboard", hub.ServeWS)
}

// Notify schedules a refresh. Notifications that arrive while one is pending
// are merged.
func (h *Hub) Notify() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *Hub) Run(ctx context.Context) {
	log := logger.Logger()
	defer func() {
		close(h.done)
		for sub := range h.clients {
			close(sub.send)
		}
		h.clients = nil
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			h.clients[sub] = struct{}{}
			data, err := h.snapshot(ctx)
			if err != nil {
				log.Error("failed to build leaderboard snapshot", zap.Error(err))
				continue
			}
			h.deliver(sub, data)

		case sub := <-h.unregister:
			if _, ok := h.clients[sub]; ok {
				delete(h.clients, sub)
				close(sub.send)
			}

		case <-h.notify:
			if len(h.clients) == 0 {
				continue
			}
			data, err := h.snapshot(ctx)
			if err != nil {
				log.Error("failed to build leaderboard snapshot", zap.Error(err))
				continue
			}
			for sub := range h.clients {
				h.deliver(sub, data)
			}
		}
	}
}

// deliver drops subscribers that are too slow to keep up.
func (h *Hub) deliver(sub *subscriber, data []byte) {
	select {
	case sub.send <- data:
	default:
		logger.Logger().Warn("dropping slow leaderboard subscriber")
		delete(h.clients, sub)
		close(sub.send)
	}
}

func (h *Hub) snapshot(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	entries, err := h.source.Top(ctx, h.size)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{
		Type: "leaderboard",
		Payload: map[string]any{
			"entries": toLeaderboardResponse(entries),
		},
	})
}

func (h *Hub) ServeWS(c *gin.Context) {
	log := logger.Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, subscriberBuffer),
	}

	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writeLoop(sub)
	go h.readLoop(sub)
}

// readLoop discards client messages and unregisters on disconnect.
func (h *Hub) readLoop(sub *subscriber) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(512)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Logger().Info("websocket unexpected close", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case data, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Logger().Info("failed to write leaderboard update", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
