package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/lampoon-ads/backend/internal/auth"
	"github.com/lampoon-ads/backend/internal/events"
	"github.com/lampoon-ads/backend/internal/middleware"
	"github.com/lampoon-ads/backend/internal/rbac"
	"go.uber.org/zap"
)

// FeedHub pushes contract events to connected staff consoles.
type FeedHub struct {
	secret      string
	users       middleware.UserLoader
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[*websocket.Conn]struct{}
}

func NewFeedHub(secret string, users middleware.UserLoader, subscriber events.Subscriber, log *zap.Logger) *FeedHub {
	return &FeedHub{
		secret:      secret,
		users:       users,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[*websocket.Conn]struct{}),
	}
}

func (h *FeedHub) Start(ctx context.Context) {
	go func() {
		err := h.subscriber.Subscribe(ctx, events.StreamContracts, h.broadcast)
		if err != nil && ctx.Err() == nil {
			h.log.Error("feed subscription ended", zap.Error(err))
		}
	}()
}

func (h *FeedHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// Connections reports how many consoles are attached.
func (h *FeedHub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *FeedHub) HandleWS(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		h.reject(conn, "missing token")
		return
	}

	claims, err := auth.ParseJWT(h.secret, tokenStr)
	if err != nil {
		h.reject(conn, "invalid token")
		return
	}
	user, err := h.users.Me(context.Background(), claims.UserID)
	if err != nil || !rbac.ActorFor(user).CanAdmin() {
		h.reject(conn, "staff only")
		return
	}

	h.mu.Lock()
	h.connections[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.connections, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *FeedHub) reject(conn *websocket.Conn, reason string) {
	_ = conn.WriteJSON(fiber.Map{"error": reason})
	conn.Close()
}
