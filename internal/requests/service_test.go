package requests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeline-connect/lifeline_connect/internal/logging"
	"github.com/lifeline-connect/lifeline_connect/internal/notification"
	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

type recordingNotifier struct {
	messages []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, m notification.Message) error {
	n.messages = append(n.messages, m)
	return nil
}

func kochiPayload() store.RequestPayload {
	return store.RequestPayload{
		PatientName:   "R. Nair",
		BloodGroup:    "B-",
		Units:         2,
		HospitalName:  "General Hospital",
		City:          "Kochi",
		Purpose:       "surgery",
		ContactPhone:  "9000000000",
		LegalVerified: true,
	}
}

var (
	owner    = session.Session{ID: "s1", UserEmail: "x@example.com"}
	stranger = session.Session{ID: "s2", UserEmail: "y@example.com"}
)

func TestCreateStoresActiveRequestOwnedByCaller(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	notifier := &recordingNotifier{}
	svc := NewService(st, nil, notifier, logging.Discard())

	id, err := svc.Submit(ctx, owner, kochiPayload(), ModeCreate, "")
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	got := mine[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "x@example.com", got.UserEmail)
	assert.Equal(t, store.StatusActive, got.Status)
	assert.Equal(t, "Kochi", got.City)
	assert.Equal(t, 2, got.Units)
	assert.False(t, got.CreatedAt.IsZero())

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, notification.KindRequestPosted, notifier.messages[0].Kind)
	assert.Equal(t, "x@example.com", notifier.messages[0].Destination)
}

func TestEditReplacesFieldsAndKeepsOwner(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewService(st, AllowAll{}, nil, logging.Discard())

	id, err := svc.Submit(ctx, owner, kochiPayload(), ModeCreate, "")
	require.NoError(t, err)

	edited := kochiPayload()
	edited.Units = 4
	edited.Purpose = ""
	_, err = svc.Submit(ctx, stranger, edited, ModeEdit, id)
	require.NoError(t, err, "AllowAll lets any signed-in user edit")

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Units)
	assert.Empty(t, got.Purpose)
	assert.Equal(t, "x@example.com", got.UserEmail)
	assert.Equal(t, store.StatusActive, got.Status)

	_, err = svc.Submit(ctx, owner, edited, ModeEdit, "missing")
	require.ErrorIs(t, err, ErrSaveFailed)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwnerOnlyPolicy(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), PolicyFor(true), nil, logging.Discard())

	id, err := svc.Submit(ctx, owner, kochiPayload(), ModeCreate, "")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, stranger, kochiPayload(), ModeEdit, id)
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, svc.Remove(ctx, stranger, id, true), ErrForbidden)

	require.NoError(t, svc.Remove(ctx, owner, id, true))
	require.ErrorIs(t, svc.Remove(ctx, owner, id, true), store.ErrNotFound)
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	notifier := &recordingNotifier{}
	svc := NewService(st, nil, notifier, logging.Discard())

	id, err := svc.Submit(ctx, owner, kochiPayload(), ModeCreate, "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Remove(ctx, owner, id, false), ErrConfirmationRequired)
	_, err = st.GetRequest(ctx, id)
	require.NoError(t, err, "unconfirmed delete must not touch the store")

	require.NoError(t, svc.Remove(ctx, owner, id, true))
	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	mine, err := svc.ListMine(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, mine)

	assert.Equal(t, notification.KindRequestDeleted, notifier.messages[len(notifier.messages)-1].Kind)
}

func TestSubmitFailures(t *testing.T) {
	ctx := context.Background()

	svc := NewService(store.FailOn(store.NewMemory(), store.OpCreateRequest), nil, nil, logging.Discard())
	_, err := svc.Submit(ctx, owner, kochiPayload(), ModeCreate, "")
	require.ErrorIs(t, err, ErrSaveFailed)
	require.ErrorIs(t, err, store.ErrOperationFailed)

	_, err = svc.Submit(ctx, session.Session{}, kochiPayload(), ModeCreate, "")
	require.ErrorIs(t, err, session.ErrNoSession)

	bad := kochiPayload()
	bad.Units = 0
	_, err = svc.Submit(ctx, owner, bad, ModeCreate, "")
	require.ErrorIs(t, err, ErrInvalidPayload)

	_, err = svc.Submit(ctx, owner, kochiPayload(), ModeEdit, "")
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestSubmitRequiresLegalAcknowledgement(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc := NewService(st, nil, nil, logging.Discard())

	unacknowledged := kochiPayload()
	unacknowledged.LegalVerified = false
	_, err := svc.Submit(ctx, owner, unacknowledged, ModeCreate, "")
	require.ErrorIs(t, err, ErrInvalidPayload)

	mine, err := st.ListRequestsByOwner(ctx, owner.UserEmail)
	require.NoError(t, err)
	assert.Empty(t, mine)

	id, err := svc.Submit(ctx, owner, kochiPayload(), ModeCreate, "")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, owner, unacknowledged, ModeEdit, id)
	require.ErrorIs(t, err, ErrInvalidPayload)
}
