package requests

import (
	"context"

	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

// Policy decides whether a session may edit or delete request id.
type Policy interface {
	Authorize(ctx context.Context, st store.Store, sess session.Session, id string) error
}

// AllowAll lets any signed-in user modify any request.
type AllowAll struct{}

// Authorize always succeeds.
func (AllowAll) Authorize(context.Context, store.Store, session.Session, string) error {
	return nil
}

// OwnerOnly restricts modification to the user who posted the request.
type OwnerOnly struct{}

// Authorize loads the request and compares its owner with the session user.
func (OwnerOnly) Authorize(ctx context.Context, st store.Store, sess session.Session, id string) error {
	req, err := st.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if req.UserEmail != sess.UserEmail {
		return ErrForbidden
	}
	return nil
}

// PolicyFor returns OwnerOnly when enforced is set and AllowAll otherwise.
func PolicyFor(enforced bool) Policy {
	if enforced {
		return OwnerOnly{}
	}
	return AllowAll{}
}
