package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AHMED-techNOP/01BLOG/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestAuthRequired_WSTicket(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	// Bare server: no userRepo means the session layer skips the
	// principal load, which keeps the ticket mechanics isolated.
	s := &Server{
		config:          &config.Config{JWTSecret: testJWTSecret},
		redis:           rdb,
		consumedTickets: make(map[string]consumedTicketEntry),
	}

	app := fiber.New()

	// A WS route and a regular route both using AuthRequired
	app.Get("/api/ws/test", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID":   c.Locals("userID"),
			"wsTicket": c.Locals("wsTicket"),
		})
	})

	app.Get("/api/other", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID":   c.Locals("userID"),
			"wsTicket": c.Locals("wsTicket"),
		})
	})

	ctx := context.Background()

	t.Run("WS path consumes ticket from Redis but caches in-process", func(t *testing.T) {
		ticket := "ws-test-ticket-1"
		key := fmt.Sprintf("ws_ticket:%s", ticket)

		err := rdb.Set(ctx, key, "123", time.Minute).Err()
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// Ticket is consumed from Redis atomically (GETDEL)
		exists, err := rdb.Exists(ctx, key).Result()
		assert.NoError(t, err)
		assert.Equal(t, int64(0), exists, "ticket should be consumed from Redis via GETDEL")

		// But it's cached in-process for the multi-pass handshake
		s.consumedTicketsMu.Lock()
		_, inCache := s.consumedTickets[ticket]
		s.consumedTicketsMu.Unlock()
		assert.True(t, inCache, "ticket should be cached in-process after GETDEL")

		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, float64(123), body["userID"])
		assert.Equal(t, ticket, body["wsTicket"])
		_ = resp.Body.Close()
	})

	t.Run("second pass uses in-process cache", func(t *testing.T) {
		ticket := "ws-test-ticket-2"
		key := fmt.Sprintf("ws_ticket:%s", ticket)

		err := rdb.Set(ctx, key, "789", time.Minute).Err()
		assert.NoError(t, err)

		// First pass consumes from Redis
		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		// Second pass: ticket is gone from Redis but the cache still serves it
		req2 := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp2, err := app.Test(req2)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp2.StatusCode, "second pass should succeed via in-process cache")

		var body map[string]interface{}
		_ = json.NewDecoder(resp2.Body).Decode(&body)
		assert.Equal(t, float64(789), body["userID"])
		_ = resp2.Body.Close()
	})

	t.Run("non-WS path also consumes the ticket", func(t *testing.T) {
		ticket := "other-test-ticket-1"
		key := fmt.Sprintf("ws_ticket:%s", ticket)

		err := rdb.Set(ctx, key, "456", time.Minute).Err()
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/other?ticket="+ticket, nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		exists, err := rdb.Exists(ctx, key).Result()
		assert.NoError(t, err)
		assert.Equal(t, int64(0), exists, "ticket should be consumed for non-WS path")
		_ = resp.Body.Close()
	})

	t.Run("invalid ticket on WS path returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket=invalid", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestServer_IssueWSTicket(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := &Server{
		config:          &config.Config{JWTSecret: testJWTSecret},
		redis:           rdb,
		consumedTickets: make(map[string]consumedTicketEntry),
	}

	app := fiber.New()
	app.Post("/api/ws/ticket", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(42))
		return s.IssueWSTicket(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ws/ticket", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Ticket)
	assert.Equal(t, int(wsTicketTTL.Seconds()), body.ExpiresIn)

	// The ticket resolves back to the issuing user
	val, err := rdb.Get(context.Background(), wsTicketKey(body.Ticket)).Result()
	assert.NoError(t, err)
	assert.Equal(t, "42", val)
}

func TestServer_ConsumeWSTicket(t *testing.T) {
	s := &Server{
		consumedTickets: make(map[string]consumedTicketEntry),
	}
	ctx := context.Background()

	t.Run("consume removes the cached ticket", func(t *testing.T) {
		ticket := "consume-me"
		s.consumedTicketsMu.Lock()
		s.consumedTickets[ticket] = consumedTicketEntry{userID: 123, consumeAt: time.Now()}
		s.consumedTicketsMu.Unlock()

		s.consumeWSTicket(ctx, ticket)

		s.consumedTicketsMu.Lock()
		_, exists := s.consumedTickets[ticket]
		s.consumedTicketsMu.Unlock()
		assert.False(t, exists, "ticket should be removed from in-process cache")
	})

	t.Run("consume nil ticket is a noop", func(_ *testing.T) {
		s.consumeWSTicket(ctx, nil)
	})

	t.Run("consume empty ticket is a noop", func(_ *testing.T) {
		s.consumeWSTicket(ctx, "")
	})
}
