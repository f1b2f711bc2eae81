package requests

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

// Handler exposes request lifecycle endpoints. Every route expects the
// session middleware to have run.
type Handler struct {
	service *Service
}

// NewHandler constructs a request handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type submitResponse struct {
	ID   string `json:"id"`
	Mode Mode   `json:"mode"`
}

// Create posts a new request owned by the caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	return h.submit(c, ModeCreate, "")
}

// Update replaces the editable fields of request :id.
func (h *Handler) Update(c *fiber.Ctx) error {
	return h.submit(c, ModeEdit, c.Params("id"))
}

func (h *Handler) submit(c *fiber.Ctx, mode Mode, id string) error {
	sess, _ := session.FromContext(c.UserContext())
	var payload store.RequestPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	savedID, err := h.service.Submit(c.UserContext(), sess, payload, mode, id)
	if err != nil {
		return httpError(err)
	}
	status := http.StatusOK
	if mode == ModeCreate {
		status = http.StatusCreated
	}
	return c.Status(status).JSON(submitResponse{ID: savedID, Mode: mode})
}

// Delete removes request :id when called with confirm=true.
func (h *Handler) Delete(c *fiber.Ctx) error {
	sess, _ := session.FromContext(c.UserContext())
	if err := h.service.Remove(c.UserContext(), sess, c.Params("id"), c.QueryBool("confirm")); err != nil {
		return httpError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get returns request :id.
func (h *Handler) Get(c *fiber.Ctx) error {
	req, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(req)
}

// ListActive returns the active request feed.
func (h *Handler) ListActive(c *fiber.Ctx) error {
	list, err := h.service.ListActive(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"requests": list})
}

// ListMine returns the caller's own requests.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	sess, _ := session.FromContext(c.UserContext())
	list, err := h.service.ListMine(c.UserContext(), sess)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"requests": list})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrConfirmationRequired):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "request not found")
	case errors.Is(err, ErrSaveFailed):
		return fiber.NewError(http.StatusInternalServerError, ErrSaveFailed.Error())
	case errors.Is(err, store.ErrOperationFailed):
		return fiber.NewError(http.StatusBadGateway, store.ErrOperationFailed.Error())
	default:
		return err
	}
}
