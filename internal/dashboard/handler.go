package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lifeline-connect/lifeline_connect/internal/requests"
	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

// RequestRemover deletes a blood request on behalf of a session user.
type RequestRemover interface {
	Remove(ctx context.Context, sess session.Session, id string, confirmed bool) error
}

// Handler exposes the dashboard endpoints.
type Handler struct {
	service *Service
	remover RequestRemover
}

// NewHandler constructs a dashboard handler.
func NewHandler(service *Service, remover RequestRemover) *Handler {
	return &Handler{service: service, remover: remover}
}

type donationRequest struct {
	WillingToDonate *bool `json:"willing_to_donate"`
}

// Show returns the caller's dashboard. q filters the active requests and
// donor_q filters the donor list.
func (h *Handler) Show(c *fiber.Ctx) error {
	sess, _ := session.FromContext(c.UserContext())
	view, err := h.service.Load(c.UserContext(), sess)
	if err != nil {
		return httpError(err)
	}
	view.ActiveRequests = FilterRequests(view.ActiveRequests, c.Query("q"))
	view.Donors = FilterDonors(view.Donors, c.Query("donor_q"))
	return c.JSON(view)
}

// SetDonation updates the caller's donation willingness.
func (h *Handler) SetDonation(c *fiber.Ctx) error {
	var req donationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.WillingToDonate == nil {
		return fiber.NewError(http.StatusBadRequest, "willing_to_donate is required")
	}
	sess, _ := session.FromContext(c.UserContext())
	view, err := h.service.Load(c.UserContext(), sess)
	if err != nil {
		return httpError(err)
	}
	if err := h.service.ToggleDonation(c.UserContext(), &view, *req.WillingToDonate); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{
		"willing_to_donate": view.WillingToDonate,
		"donors":            view.Donors,
	})
}

// DeleteRequest removes request :id from the store and answers with the
// dashboard as it stood before the removal, minus that request. The removal
// needs ?confirm=true.
func (h *Handler) DeleteRequest(c *fiber.Ctx) error {
	sess, _ := session.FromContext(c.UserContext())
	view, err := h.service.Load(c.UserContext(), sess)
	if err != nil {
		return httpError(err)
	}
	id := c.Params("id")
	if err := h.remover.Remove(c.UserContext(), sess, id, c.QueryBool("confirm")); err != nil {
		return removeError(err)
	}
	view.RemoveRequest(id)
	return c.JSON(view)
}

func removeError(err error) error {
	switch {
	case errors.Is(err, requests.ErrConfirmationRequired):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, requests.ErrForbidden):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "request not found")
	default:
		return httpError(err)
	}
}

func httpError(err error) error {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "profile not found")
	case errors.Is(err, store.ErrOperationFailed):
		return fiber.NewError(http.StatusBadGateway, store.ErrOperationFailed.Error())
	default:
		return err
	}
}
