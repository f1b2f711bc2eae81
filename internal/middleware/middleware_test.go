package middleware

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lifeline-connect/lifeline_connect/internal/session"
)

func TestSessionAuth(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), []byte("secret"), 0)
	token, _, err := manager.Begin(context.Background(), "x@example.com")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	app := fiber.New()
	app.Get("/me", SessionAuth(manager), func(c *fiber.Ctx) error {
		sess, ok := session.FromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(sess.UserEmail)
	})

	cases := map[string]struct {
		header string
		status int
	}{
		"valid":   {"Bearer " + token, fiber.StatusOK},
		"missing": {"", fiber.StatusUnauthorized},
		"garbage": {"Bearer nope", fiber.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestOTPRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/login", OTPRateLimit(cache, 2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	send := func(email string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if got := send("x@example.com"); got != fiber.StatusAccepted {
			t.Fatalf("attempt %d: expected 202 got %d", i+1, got)
		}
	}
	if got := send("X@example.com"); got != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", got)
	}
	if got := send("y@example.com"); got != fiber.StatusAccepted {
		t.Fatalf("other emails should not be limited, got %d", got)
	}

	if ttl := mr.TTL("rl:otp:x@example.com"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected the window to expire within a minute, ttl=%s", ttl)
	}
	mr.FastForward(61 * time.Second)
	if got := send("x@example.com"); got != fiber.StatusAccepted {
		t.Fatalf("expected a fresh window after a minute, got %d", got)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RequestIDFrom(c)) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(requestIDHeader); got != "req-1" {
		t.Fatalf("expected echoed id, got %q", got)
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}
