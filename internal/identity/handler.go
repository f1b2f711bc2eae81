package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type initiationResponse struct {
	ChallengeID  string `json:"challenge_id"`
	Kind         Kind   `json:"kind"`
	State        State  `json:"state"`
	Email        string `json:"email"`
	Delivered    bool   `json:"delivered"`
	FallbackCode string `json:"fallback_code,omitempty"`
}

type verifyRequest struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

type completionResponse struct {
	Kind      Kind   `json:"kind"`
	State     State  `json:"state"`
	Token     string `json:"token"`
	UserEmail string `json:"user_email"`
}

func toInitiationResponse(in Initiation) initiationResponse {
	return initiationResponse{
		ChallengeID:  in.ChallengeID,
		Kind:         in.Kind,
		State:        in.State,
		Email:        in.Email,
		Delivered:    in.Delivered,
		FallbackCode: in.FallbackCode,
	}
}

// Register starts the registration flow.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegistrationPayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	in, err := h.service.StartRegistration(c.UserContext(), req)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusAccepted).JSON(toInitiationResponse(in))
}

// Login starts the login flow.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginPayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	in, err := h.service.StartLogin(c.UserContext(), req)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusAccepted).JSON(toInitiationResponse(in))
}

// Verify submits a code for a pending challenge.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ChallengeID == "" || req.Code == "" {
		return fiber.NewError(http.StatusBadRequest, "challenge_id and code are required")
	}
	done, err := h.service.Verify(c.UserContext(), req.ChallengeID, req.Code)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(completionResponse{
		Kind:      done.Kind,
		State:     done.State,
		Token:     done.Token,
		UserEmail: done.Session.UserEmail,
	})
}

// Logout ends the caller's session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token := session.TokenFromHeader(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return fiber.NewError(http.StatusUnauthorized, session.ErrNoSession.Error())
	}
	if err := h.service.Logout(c.UserContext(), token); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidPayload):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateUser):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrChallengeNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCode), errors.Is(err, session.ErrNoSession):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrPersistenceFailed):
		return fiber.NewError(http.StatusInternalServerError, ErrPersistenceFailed.Error())
	case errors.Is(err, store.ErrOperationFailed):
		return fiber.NewError(http.StatusBadGateway, store.ErrOperationFailed.Error())
	default:
		return err
	}
}
