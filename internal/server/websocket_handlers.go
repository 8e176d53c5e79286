package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/AHMED-techNOP/01BLOG/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	wsTicketTTL = 30 * time.Second
	// consumedTicketGrace keeps a redeemed ticket valid in-process long
	// enough for every middleware pass of a single upgrade handshake.
	consumedTicketGrace = 30 * time.Second
)

type consumedTicketEntry struct {
	userID    uint
	consumeAt time.Time
}

// IssueWSTicket handles POST /api/ws/ticket. The returned ticket is
// single-use, bound to the authenticated user, and expires in seconds;
// browser WebSocket clients cannot set an Authorization header, so this
// is the only way to authenticate an upgrade.
// @Summary Issue a WebSocket ticket
// @Tags realtime
// @Produce json
// @Success 200 {object} object{ticket=string,expires_in=int}
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /ws/ticket [post]
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewDependencyError("redis", fmt.Errorf("ticket store unavailable")))
	}

	userID := c.Locals("userID").(uint)
	ticket := uuid.New().String()
	key := wsTicketKey(ticket)

	if err := s.redis.Set(c.Context(), key,
		strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewDependencyError("redis", err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// redeemWSTicket resolves a ticket to a user ID. The ticket is taken out
// of Redis atomically (GETDEL) on first use and cached in-process so the
// repeated middleware passes of one websocket handshake still succeed.
func (s *Server) redeemWSTicket(ctx context.Context, ticket string) (uint, bool) {
	s.consumedTicketsMu.Lock()
	if entry, ok := s.consumedTickets[ticket]; ok {
		if time.Since(entry.consumeAt) < consumedTicketGrace {
			s.consumedTicketsMu.Unlock()
			return entry.userID, true
		}
		delete(s.consumedTickets, ticket)
	}
	s.consumedTicketsMu.Unlock()

	if s.redis == nil {
		return 0, false
	}

	userIDStr, err := s.redis.GetDel(ctx, wsTicketKey(ticket)).Result()
	if err != nil {
		return 0, false
	}
	userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
	if parseErr != nil {
		return 0, false
	}

	s.consumedTicketsMu.Lock()
	s.consumedTickets[ticket] = consumedTicketEntry{
		userID:    uint(userID),
		consumeAt: time.Now(),
	}
	// Opportunistically drop stale entries so the map stays small.
	for t, entry := range s.consumedTickets {
		if time.Since(entry.consumeAt) >= consumedTicketGrace {
			delete(s.consumedTickets, t)
		}
	}
	s.consumedTicketsMu.Unlock()

	return uint(userID), true
}

// consumeWSTicket removes a redeemed ticket from the in-process cache
// once the connection is established.
func (s *Server) consumeWSTicket(_ context.Context, ticket interface{}) {
	t, ok := ticket.(string)
	if !ok || t == "" {
		return
	}
	s.consumedTicketsMu.Lock()
	delete(s.consumedTickets, t)
	s.consumedTicketsMu.Unlock()
}

func wsTicketKey(ticket string) string {
	return fmt.Sprintf("ws_ticket:%s", ticket)
}

// WebsocketHandler returns a websocket handler that registers connections
// with the notification hub. Authentication is handled by route middleware
// and userID is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		uid, ok := userIDVal.(uint)
		if userIDVal == nil || !ok {
			if cerr := conn.Close(); cerr != nil {
				log.Printf("websocket close error: %v", cerr)
			}
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("websocket: failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		// The handshake is over; the single-use ticket is spent.
		s.consumeWSTicket(context.Background(), conn.Locals("wsTicket"))

		// Start pumps; ReadPump blocks until the connection drops.
		go client.WritePump()
		client.ReadPump()
	})
}
