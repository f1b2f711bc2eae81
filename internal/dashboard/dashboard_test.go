package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeline-connect/lifeline_connect/internal/logging"
	"github.com/lifeline-connect/lifeline_connect/internal/requests"
	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

func seed(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	users := []store.UserProfile{
		{Email: "asha@example.com", Name: "Asha", BloodGroup: "O+", City: "Ernakulam"},
		{Email: "binu@example.com", Name: "Binu", BloodGroup: "AB-", City: "Thrissur", WillingToDonate: true},
	}
	for _, u := range users {
		require.NoError(t, st.CreateUser(ctx, u))
	}
	_, err := st.CreateRequest(ctx, store.RequestPayload{PatientName: "P1", BloodGroup: "O+", Units: 1, HospitalName: "H", City: "Ernakulam", ContactPhone: "1"}, "asha@example.com")
	require.NoError(t, err)
	_, err = st.CreateRequest(ctx, store.RequestPayload{PatientName: "P2", BloodGroup: "AB-", Units: 3, HospitalName: "H", City: "Thrissur", ContactPhone: "2"}, "binu@example.com")
	require.NoError(t, err)
}

var asha = session.Session{ID: "s", UserEmail: "asha@example.com"}

func TestLoad(t *testing.T) {
	st := store.NewMemory()
	seed(t, st)
	svc := NewService(st, logging.Discard())

	view, err := svc.Load(context.Background(), asha)
	require.NoError(t, err)
	assert.Equal(t, "Asha", view.Profile.Name)
	assert.False(t, view.WillingToDonate)
	assert.Len(t, view.ActiveRequests, 2)
	require.Len(t, view.MyRequests, 1)
	assert.Equal(t, "P1", view.MyRequests[0].PatientName)
	require.Len(t, view.Donors, 1)
	assert.Equal(t, "binu@example.com", view.Donors[0].Email)

	_, err = svc.Load(context.Background(), session.Session{})
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestToggleDonation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seed(t, st)
	svc := NewService(st, logging.Discard())

	view, err := svc.Load(ctx, asha)
	require.NoError(t, err)

	require.NoError(t, svc.ToggleDonation(ctx, &view, true))
	assert.True(t, view.WillingToDonate)
	assert.Len(t, view.Donors, 2)

	donors, err := st.ListWillingDonors(ctx)
	require.NoError(t, err)
	assert.Len(t, donors, 2)

	require.NoError(t, svc.ToggleDonation(ctx, &view, false))
	assert.False(t, view.WillingToDonate)
	require.Len(t, view.Donors, 1)
	assert.Equal(t, "binu@example.com", view.Donors[0].Email)
}

func TestToggleDonationRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	inner := store.NewMemory()
	seed(t, inner)
	svc := NewService(store.FailOn(inner, store.OpSetDonationWillingness), logging.Discard())

	view, err := svc.Load(ctx, asha)
	require.NoError(t, err)
	before := append([]store.UserProfile(nil), view.Donors...)

	err = svc.ToggleDonation(ctx, &view, true)
	require.ErrorIs(t, err, store.ErrOperationFailed)
	assert.False(t, view.WillingToDonate)
	assert.False(t, view.Profile.WillingToDonate)
	assert.Equal(t, before, view.Donors)

	profile, err := inner.GetUser(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.False(t, profile.WillingToDonate)
}

func TestRemoveRequest(t *testing.T) {
	st := store.NewMemory()
	seed(t, st)
	view, err := NewService(st, logging.Discard()).Load(context.Background(), asha)
	require.NoError(t, err)

	id := view.MyRequests[0].ID
	view.RemoveRequest(id)
	assert.Empty(t, view.MyRequests)
	require.Len(t, view.ActiveRequests, 1)
	assert.NotEqual(t, id, view.ActiveRequests[0].ID)
}

func TestDeleteRequestHandler(t *testing.T) {
	st := store.NewMemory()
	seed(t, st)
	mine, err := st.ListRequestsByOwner(context.Background(), asha.UserEmail)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	id := mine[0].ID

	h := NewHandler(NewService(st, logging.Discard()), requests.NewService(st, nil, nil, logging.Discard()))
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(session.WithSession(c.UserContext(), asha))
		return c.Next()
	})
	app.Delete("/dashboard/requests/:id", h.DeleteRequest)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/dashboard/requests/"+id, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/dashboard/requests/"+id+"?confirm=true", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Empty(t, view.MyRequests)
	require.Len(t, view.ActiveRequests, 1)
	assert.Equal(t, "P2", view.ActiveRequests[0].PatientName)

	_, err = st.GetRequest(context.Background(), id)
	require.ErrorIs(t, err, store.ErrNotFound)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/dashboard/requests/"+id+"?confirm=true", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFilters(t *testing.T) {
	requests := []store.BloodRequest{
		{ID: "1", City: "Ernakulam", BloodGroup: "O+"},
		{ID: "2", City: "Thrissur", BloodGroup: "AB-"},
	}
	assert.Equal(t, requests, FilterRequests(requests, ""))
	got := FilterRequests(requests, "ERNA")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	got = FilterRequests(requests, "ab-")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
	assert.Empty(t, FilterRequests(requests, "kollam"))

	donors := []store.UserProfile{
		{Email: "a", Name: "Asha", City: "Kollam", BloodGroup: "A+"},
		{Email: "b", Name: "Binu", City: "Thrissur", BloodGroup: "B+"},
	}
	got2 := FilterDonors(donors, "binu")
	require.Len(t, got2, 1)
	assert.Equal(t, "b", got2[0].Email)
	assert.Len(t, FilterDonors(donors, "+"), 2)
	for _, d := range FilterDonors(donors, "koll") {
		assert.Contains(t, donors, d)
	}
}
