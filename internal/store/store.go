package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the addressed user or request does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned by CreateUser when the email is taken.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrOperationFailed wraps any backend failure.
	ErrOperationFailed = errors.New("store operation failed")
)

// Store is the document store holding user profiles and blood requests.
//
// Users are keyed by email address, requests by a generated identifier.
// No operation retries.
type Store interface {
	GetUser(ctx context.Context, email string) (UserProfile, error)
	UserExists(ctx context.Context, email string) (bool, error)
	// CreateUser inserts the profile only if no profile exists for its email.
	CreateUser(ctx context.Context, profile UserProfile) error
	SetDonationWillingness(ctx context.Context, email string, willing bool) error
	ListWillingDonors(ctx context.Context) ([]UserProfile, error)

	GetRequest(ctx context.Context, id string) (BloodRequest, error)
	ListActiveRequests(ctx context.Context) ([]BloodRequest, error)
	ListRequestsByOwner(ctx context.Context, email string) ([]BloodRequest, error)
	// CreateRequest stores an active request owned by ownerEmail and returns its id.
	CreateRequest(ctx context.Context, payload RequestPayload, ownerEmail string) (string, error)
	// UpdateRequest replaces the editable fields of an existing request.
	UpdateRequest(ctx context.Context, id string, payload RequestPayload) error
	DeleteRequest(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}

func opFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrOperationFailed, err)
}
