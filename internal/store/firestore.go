package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on the hosted Firestore collections
// "users" (document id = email) and "requests" (generated document id).
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestore builds a Firestore-backed store.
func NewFirestore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) GetUser(ctx context.Context, email string) (UserProfile, error) {
	ref, err := s.userDoc(email)
	if err != nil {
		return UserProfile{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return UserProfile{}, mapFirestoreErr("get user", err)
	}
	return userFromData(snap.Ref.ID, snap.Data()), nil
}

func (s *FirestoreStore) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetUser(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// CreateUser uses DocumentRef.Create, which fails atomically when the document exists.
func (s *FirestoreStore) CreateUser(ctx context.Context, profile UserProfile) error {
	ref, err := s.userDoc(profile.Email)
	if err != nil {
		return err
	}
	profile.UID = profile.Email
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	if _, err := ref.Create(ctx, profile); err != nil {
		return mapFirestoreErr("create user", err)
	}
	return nil
}

func (s *FirestoreStore) SetDonationWillingness(ctx context.Context, email string, willing bool) error {
	ref, err := s.userDoc(email)
	if err != nil {
		return err
	}
	_, err = ref.Update(ctx, []firestore.Update{{Path: "willingToDonate", Value: willing}})
	if err != nil {
		return mapFirestoreErr("set donation willingness", err)
	}
	return nil
}

func (s *FirestoreStore) ListWillingDonors(ctx context.Context) ([]UserProfile, error) {
	iter := s.client.Collection(usersCollection).Where("willingToDonate", "==", true).Documents(ctx)
	defer iter.Stop()
	donors := make([]UserProfile, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, opFailed("list willing donors", err)
		}
		donors = append(donors, userFromData(snap.Ref.ID, snap.Data()))
	}
	return donors, nil
}

func (s *FirestoreStore) GetRequest(ctx context.Context, id string) (BloodRequest, error) {
	ref, err := s.requestDoc(id)
	if err != nil {
		return BloodRequest{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return BloodRequest{}, mapFirestoreErr("get request", err)
	}
	return requestFromData(snap.Ref.ID, snap.Data()), nil
}

func (s *FirestoreStore) ListActiveRequests(ctx context.Context) ([]BloodRequest, error) {
	q := s.client.Collection(requestsCollection).Where("status", "==", StatusActive)
	return s.queryRequests(ctx, "list active requests", q)
}

func (s *FirestoreStore) ListRequestsByOwner(ctx context.Context, email string) ([]BloodRequest, error) {
	q := s.client.Collection(requestsCollection).Where("userEmail", "==", email)
	return s.queryRequests(ctx, "list requests by owner", q)
}

func (s *FirestoreStore) queryRequests(ctx context.Context, op string, q firestore.Query) ([]BloodRequest, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()
	reqs := make([]BloodRequest, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, opFailed(op, err)
		}
		reqs = append(reqs, requestFromData(snap.Ref.ID, snap.Data()))
	}
	return reqs, nil
}

func (s *FirestoreStore) CreateRequest(ctx context.Context, payload RequestPayload, ownerEmail string) (string, error) {
	ref := s.client.Collection(requestsCollection).NewDoc()
	req := newRequest(ref.ID, payload, ownerEmail, time.Now().UTC())
	if _, err := ref.Create(ctx, req); err != nil {
		return "", mapFirestoreErr("create request", err)
	}
	return ref.ID, nil
}

// UpdateRequest writes only the editable paths so userEmail, status and createdAt survive.
func (s *FirestoreStore) UpdateRequest(ctx context.Context, id string, payload RequestPayload) error {
	ref, err := s.requestDoc(id)
	if err != nil {
		return err
	}
	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "patientName", Value: payload.PatientName},
		{Path: "bloodGroup", Value: payload.BloodGroup},
		{Path: "units", Value: payload.Units},
		{Path: "hospitalName", Value: payload.HospitalName},
		{Path: "city", Value: payload.City},
		{Path: "purpose", Value: payload.Purpose},
		{Path: "contactPhone", Value: payload.ContactPhone},
		{Path: "legalVerified", Value: payload.LegalVerified},
	})
	if err != nil {
		return mapFirestoreErr("update request", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteRequest(ctx context.Context, id string) error {
	ref, err := s.requestDoc(id)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		return mapFirestoreErr("delete request", err)
	}
	return nil
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// Close releases the underlying Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) userDoc(email string) (*firestore.DocumentRef, error) {
	if !validDocID(email) {
		return nil, ErrNotFound
	}
	return s.client.Collection(usersCollection).Doc(email), nil
}

func (s *FirestoreStore) requestDoc(id string) (*firestore.DocumentRef, error) {
	if !validDocID(id) {
		return nil, ErrNotFound
	}
	return s.client.Collection(requestsCollection).Doc(id), nil
}

// validDocID rejects ids for which Collection.Doc would return nil or address a sub-path.
func validDocID(id string) bool {
	return id != "" && !strings.Contains(id, "/")
}

func mapFirestoreErr(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	default:
		return opFailed(op, err)
	}
}
