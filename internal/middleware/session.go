package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lifeline-connect/lifeline_connect/internal/session"
)

const sessionEmailLocal = "user_email"

// SessionAuth resolves the bearer token to a live session and attaches it to
// the request context. Requests without one are rejected with 401.
func SessionAuth(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := session.TokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		sess, err := sessions.Resolve(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, session.ErrNoSession.Error())
		}

		c.Locals(sessionEmailLocal, sess.UserEmail)
		c.SetUserContext(session.WithSession(c.UserContext(), sess))
		return c.Next()
	}
}
