package store

import (
	"context"
	"errors"
)

// Op names a Store operation for FailOn.
type Op string

const (
	OpGetUser                Op = "GetUser"
	OpUserExists             Op = "UserExists"
	OpCreateUser             Op = "CreateUser"
	OpSetDonationWillingness Op = "SetDonationWillingness"
	OpListWillingDonors      Op = "ListWillingDonors"
	OpGetRequest             Op = "GetRequest"
	OpListActiveRequests     Op = "ListActiveRequests"
	OpListRequestsByOwner    Op = "ListRequestsByOwner"
	OpCreateRequest          Op = "CreateRequest"
	OpUpdateRequest          Op = "UpdateRequest"
	OpDeleteRequest          Op = "DeleteRequest"
)

// errInjected is the backend error carried by injected failures.
var errInjected = errors.New("injected failure")

// FailOn wraps a store so the listed operations fail with ErrOperationFailed
// and every other call reaches the wrapped store. Intended for tests.
func FailOn(inner Store, ops ...Op) Store {
	failing := make(map[Op]bool, len(ops))
	for _, op := range ops {
		failing[op] = true
	}
	return &faultyStore{inner: inner, failing: failing}
}

type faultyStore struct {
	inner   Store
	failing map[Op]bool
}

func (f *faultyStore) fail(op Op) error {
	if f.failing[op] {
		return opFailed(string(op), errInjected)
	}
	return nil
}

func (f *faultyStore) GetUser(ctx context.Context, email string) (UserProfile, error) {
	if err := f.fail(OpGetUser); err != nil {
		return UserProfile{}, err
	}
	return f.inner.GetUser(ctx, email)
}

func (f *faultyStore) UserExists(ctx context.Context, email string) (bool, error) {
	if err := f.fail(OpUserExists); err != nil {
		return false, err
	}
	return f.inner.UserExists(ctx, email)
}

func (f *faultyStore) CreateUser(ctx context.Context, profile UserProfile) error {
	if err := f.fail(OpCreateUser); err != nil {
		return err
	}
	return f.inner.CreateUser(ctx, profile)
}

func (f *faultyStore) SetDonationWillingness(ctx context.Context, email string, willing bool) error {
	if err := f.fail(OpSetDonationWillingness); err != nil {
		return err
	}
	return f.inner.SetDonationWillingness(ctx, email, willing)
}

func (f *faultyStore) ListWillingDonors(ctx context.Context) ([]UserProfile, error) {
	if err := f.fail(OpListWillingDonors); err != nil {
		return nil, err
	}
	return f.inner.ListWillingDonors(ctx)
}

func (f *faultyStore) GetRequest(ctx context.Context, id string) (BloodRequest, error) {
	if err := f.fail(OpGetRequest); err != nil {
		return BloodRequest{}, err
	}
	return f.inner.GetRequest(ctx, id)
}

func (f *faultyStore) ListActiveRequests(ctx context.Context) ([]BloodRequest, error) {
	if err := f.fail(OpListActiveRequests); err != nil {
		return nil, err
	}
	return f.inner.ListActiveRequests(ctx)
}

func (f *faultyStore) ListRequestsByOwner(ctx context.Context, email string) ([]BloodRequest, error) {
	if err := f.fail(OpListRequestsByOwner); err != nil {
		return nil, err
	}
	return f.inner.ListRequestsByOwner(ctx, email)
}

func (f *faultyStore) CreateRequest(ctx context.Context, payload RequestPayload, ownerEmail string) (string, error) {
	if err := f.fail(OpCreateRequest); err != nil {
		return "", err
	}
	return f.inner.CreateRequest(ctx, payload, ownerEmail)
}

func (f *faultyStore) UpdateRequest(ctx context.Context, id string, payload RequestPayload) error {
	if err := f.fail(OpUpdateRequest); err != nil {
		return err
	}
	return f.inner.UpdateRequest(ctx, id, payload)
}

func (f *faultyStore) DeleteRequest(ctx context.Context, id string) error {
	if err := f.fail(OpDeleteRequest); err != nil {
		return err
	}
	return f.inner.DeleteRequest(ctx, id)
}

func (f *faultyStore) Ping(ctx context.Context) error {
	return f.inner.Ping(ctx)
}
