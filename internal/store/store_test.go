package store

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() RequestPayload {
	return RequestPayload{
		PatientName:   "Anu",
		BloodGroup:    "O+",
		Units:         2,
		HospitalName:  "General Hospital",
		City:          "Ernakulam",
		Purpose:       "Surgery",
		ContactPhone:  "+91 9876543210",
		LegalVerified: true,
	}
}

func sampleUser(email string) UserProfile {
	return UserProfile{
		Email:      email,
		Name:       "Devi",
		Phone:      "+91 9000000000",
		Age:        29,
		Weight:     58,
		BloodGroup: "B+",
		City:       "Kollam",
		Agreement:  true,
	}
}

func containsRequest(reqs []BloodRequest, id string) bool {
	for _, r := range reqs {
		if r.ID == id {
			return true
		}
	}
	return false
}

func containsUser(users []UserProfile, email string) bool {
	for _, u := range users {
		if u.Email == email {
			return true
		}
	}
	return false
}

// runStoreSuite exercises the Store contract. Emails are unique per run so the
// suite tolerates shared databases.
func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()
	email := "donor-" + uuid.NewString() + "@example.com"
	other := "other-" + uuid.NewString() + "@example.com"

	t.Run("users", func(t *testing.T) {
		_, err := s.GetUser(ctx, email)
		require.ErrorIs(t, err, ErrNotFound)

		exists, err := s.UserExists(ctx, email)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, s.CreateUser(ctx, sampleUser(email)))
		require.ErrorIs(t, s.CreateUser(ctx, sampleUser(email)), ErrAlreadyExists)

		exists, err = s.UserExists(ctx, email)
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := s.GetUser(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, "Devi", got.Name)
		assert.Equal(t, "B+", got.BloodGroup)
		assert.Equal(t, 29, got.Age)
		assert.False(t, got.WillingToDonate)
		assert.False(t, got.CreatedAt.IsZero())

		require.ErrorIs(t, s.SetDonationWillingness(ctx, "nobody-"+uuid.NewString()+"@example.com", true), ErrNotFound)
		require.NoError(t, s.SetDonationWillingness(ctx, email, true))

		donors, err := s.ListWillingDonors(ctx)
		require.NoError(t, err)
		assert.True(t, containsUser(donors, email))

		require.NoError(t, s.SetDonationWillingness(ctx, email, false))
		donors, err = s.ListWillingDonors(ctx)
		require.NoError(t, err)
		assert.False(t, containsUser(donors, email))
	})

	t.Run("requests", func(t *testing.T) {
		mine, err := s.CreateRequest(ctx, samplePayload(), email)
		require.NoError(t, err)
		require.NotEmpty(t, mine)
		theirs, err := s.CreateRequest(ctx, samplePayload(), other)
		require.NoError(t, err)

		stored, err := s.GetRequest(ctx, mine)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, stored.Status)
		assert.Equal(t, email, stored.UserEmail)
		assert.Equal(t, samplePayload(), stored.Payload())

		active, err := s.ListActiveRequests(ctx)
		require.NoError(t, err)
		assert.True(t, containsRequest(active, mine))
		assert.True(t, containsRequest(active, theirs))

		owned, err := s.ListRequestsByOwner(ctx, email)
		require.NoError(t, err)
		assert.True(t, containsRequest(owned, mine))
		assert.False(t, containsRequest(owned, theirs))

		edited := samplePayload()
		edited.Units = 5
		edited.HospitalName = "Medical College"
		require.NoError(t, s.UpdateRequest(ctx, mine, edited))

		updated, err := s.GetRequest(ctx, mine)
		require.NoError(t, err)
		assert.Equal(t, edited, updated.Payload())
		assert.Equal(t, email, updated.UserEmail)
		assert.Equal(t, StatusActive, updated.Status)
		assert.True(t, stored.CreatedAt.Equal(updated.CreatedAt))

		missing := uuid.NewString()
		require.ErrorIs(t, s.UpdateRequest(ctx, missing, edited), ErrNotFound)
		require.ErrorIs(t, s.DeleteRequest(ctx, missing), ErrNotFound)

		require.NoError(t, s.DeleteRequest(ctx, mine))
		_, err = s.GetRequest(ctx, mine)
		require.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, s.DeleteRequest(ctx, theirs))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemory())
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	s := NewPostgres(pool)
	require.NoError(t, s.Migrate(ctx))
	runStoreSuite(t, s)
}

func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "lifeline-connect-test")
	require.NoError(t, err)

	s := NewFirestore(client)
	defer s.Close()
	runStoreSuite(t, s)
}

func TestFailOnInjectsOperationFailure(t *testing.T) {
	ctx := context.Background()
	s := FailOn(NewMemory(), OpSetDonationWillingness)

	require.NoError(t, s.CreateUser(ctx, sampleUser("a@example.com")))
	err := s.SetDonationWillingness(ctx, "a@example.com", true)
	require.ErrorIs(t, err, ErrOperationFailed)

	got, err := s.GetUser(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, got.WillingToDonate)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(samplePayload()))

	kochi := samplePayload()
	kochi.City = "Kochi"
	require.NoError(t, Validate(kochi))

	bad := samplePayload()
	bad.BloodGroup = "C+"
	bad.Units = 0
	bad.City = "Chennai"
	err := Validate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BloodGroup")
	assert.Contains(t, err.Error(), "Units")
	assert.Contains(t, err.Error(), "City")

	unacknowledged := samplePayload()
	unacknowledged.LegalVerified = false
	err = Validate(unacknowledged)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LegalVerified")
}
