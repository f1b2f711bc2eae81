// Package requests runs the blood request lifecycle: create, edit and delete
// on behalf of the signed-in user.
package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lifeline-connect/lifeline_connect/internal/notification"
	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

var (
	// ErrSaveFailed wraps any store failure while saving or deleting a request.
	ErrSaveFailed = errors.New("failed to save request")
	// ErrConfirmationRequired means a delete was attempted without confirmation.
	ErrConfirmationRequired = errors.New("delete must be confirmed")
	// ErrForbidden means the policy refused to let the caller modify the request.
	ErrForbidden = errors.New("request belongs to another user")
	// ErrInvalidPayload means the request form has missing or malformed fields.
	ErrInvalidPayload = errors.New("invalid request payload")
)

// Mode selects between posting a new request and editing an existing one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Service posts, edits and deletes blood requests.
type Service struct {
	store    store.Store
	policy   Policy
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService builds a request service. A nil policy means AllowAll.
func NewService(st store.Store, policy Policy, notifier notification.Notifier, logger *slog.Logger) *Service {
	if policy == nil {
		policy = AllowAll{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, policy: policy, notifier: notifier, logger: logger}
}

// Submit creates a request owned by the session user, or in edit mode replaces
// the editable fields of request id. It returns the request id.
func (s *Service) Submit(ctx context.Context, sess session.Session, payload store.RequestPayload, mode Mode, id string) (string, error) {
	if sess.UserEmail == "" {
		return "", session.ErrNoSession
	}
	if err := store.Validate(payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	switch mode {
	case ModeCreate:
		newID, err := s.store.CreateRequest(ctx, payload, sess.UserEmail)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
		s.notify(ctx, notification.KindRequestPosted, sess.UserEmail, newID, payload)
		return newID, nil
	case ModeEdit:
		if id == "" {
			return "", fmt.Errorf("%w: request id is required in edit mode", ErrInvalidPayload)
		}
		if err := s.policy.Authorize(ctx, s.store, sess, id); err != nil {
			return "", err
		}
		if err := s.store.UpdateRequest(ctx, id, payload); err != nil {
			return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
		s.notify(ctx, notification.KindRequestUpdated, sess.UserEmail, id, payload)
		return id, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidPayload, mode)
	}
}

// Remove deletes request id. Nothing is touched unless confirmed is true.
func (s *Service) Remove(ctx context.Context, sess session.Session, id string, confirmed bool) error {
	if sess.UserEmail == "" {
		return session.ErrNoSession
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := s.policy.Authorize(ctx, s.store, sess, id); err != nil {
		return err
	}
	if err := s.store.DeleteRequest(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	s.notify(ctx, notification.KindRequestDeleted, sess.UserEmail, id, store.RequestPayload{})
	return nil
}

// ListActive returns every active request.
func (s *Service) ListActive(ctx context.Context) ([]store.BloodRequest, error) {
	return s.store.ListActiveRequests(ctx)
}

// ListMine returns the requests owned by the session user.
func (s *Service) ListMine(ctx context.Context, sess session.Session) ([]store.BloodRequest, error) {
	if sess.UserEmail == "" {
		return nil, session.ErrNoSession
	}
	return s.store.ListRequestsByOwner(ctx, sess.UserEmail)
}

// Get returns a single request, used to prefill the edit form.
func (s *Service) Get(ctx context.Context, id string) (store.BloodRequest, error) {
	return s.store.GetRequest(ctx, id)
}

func (s *Service) notify(ctx context.Context, kind, owner, id string, p store.RequestPayload) {
	if s.notifier == nil {
		return
	}
	body := "request " + id
	if p.BloodGroup != "" {
		body = fmt.Sprintf("request %s: %d unit(s) of %s at %s, %s", id, p.Units, p.BloodGroup, p.HospitalName, p.City)
	}
	if err := s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: owner, Body: body}); err != nil {
		s.logger.Warn("request notification failed", "kind", kind, "request_id", id, "error", err)
	}
}
