package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

const requestColumns = `id, patient_name, blood_group, units, hospital_name, city, purpose,
        contact_phone, legal_verified, status, created_at, user_email`

const userColumns = `email, name, phone, age, weight, blood_group, city, agreement,
        willing_to_donate, created_at`

// PostgresStore implements Store on PostgreSQL tables shaped like the document collections.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres builds a Postgres-backed store.
func NewPostgres(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the users and requests tables when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return opFailed("migrate", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, email string) (UserProfile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserProfile{}, ErrNotFound
		}
		return UserProfile{}, opFailed("get user", err)
	}
	return user, nil
}

func (s *PostgresStore) UserExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, opFailed("user exists", err)
	}
	return exists, nil
}

// CreateUser relies on the primary key so the existence check and the insert are one statement.
func (s *PostgresStore) CreateUser(ctx context.Context, profile UserProfile) error {
	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	cmd, err := s.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (email) DO NOTHING`,
		profile.Email, profile.Name, profile.Phone, profile.Age, profile.Weight, profile.BloodGroup,
		profile.City, profile.Agreement, profile.WillingToDonate, createdAt)
	if err != nil {
		return opFailed("create user", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) SetDonationWillingness(ctx context.Context, email string, willing bool) error {
	cmd, err := s.db.Exec(ctx, `UPDATE users SET willing_to_donate = $1 WHERE email = $2`, willing, email)
	if err != nil {
		return opFailed("set donation willingness", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListWillingDonors(ctx context.Context) ([]UserProfile, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE willing_to_donate ORDER BY email`)
	if err != nil {
		return nil, opFailed("list willing donors", err)
	}
	donors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (UserProfile, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, opFailed("list willing donors", err)
	}
	return donors, nil
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (BloodRequest, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return BloodRequest{}, ErrNotFound
	}
	req, err := scanRequest(s.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, reqID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BloodRequest{}, ErrNotFound
		}
		return BloodRequest{}, opFailed("get request", err)
	}
	return req, nil
}

func (s *PostgresStore) ListActiveRequests(ctx context.Context) ([]BloodRequest, error) {
	return s.listRequests(ctx, "list active requests",
		`SELECT `+requestColumns+` FROM requests WHERE status = $1 ORDER BY created_at`, StatusActive)
}

func (s *PostgresStore) ListRequestsByOwner(ctx context.Context, email string) ([]BloodRequest, error) {
	return s.listRequests(ctx, "list requests by owner",
		`SELECT `+requestColumns+` FROM requests WHERE user_email = $1 ORDER BY created_at`, email)
}

func (s *PostgresStore) listRequests(ctx context.Context, op, query string, arg any) ([]BloodRequest, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, opFailed(op, err)
	}
	reqs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (BloodRequest, error) {
		return scanRequest(row)
	})
	if err != nil {
		return nil, opFailed(op, err)
	}
	return reqs, nil
}

func (s *PostgresStore) CreateRequest(ctx context.Context, payload RequestPayload, ownerEmail string) (string, error) {
	id := uuid.New()
	req := newRequest(id.String(), payload, ownerEmail, time.Now().UTC())
	_, err := s.db.Exec(ctx, `INSERT INTO requests (`+requestColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, req.PatientName, req.BloodGroup, req.Units, req.HospitalName, req.City, req.Purpose,
		req.ContactPhone, req.LegalVerified, req.Status, req.CreatedAt, req.UserEmail)
	if err != nil {
		return "", opFailed("create request", err)
	}
	return req.ID, nil
}

func (s *PostgresStore) UpdateRequest(ctx context.Context, id string, payload RequestPayload) error {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE requests
        SET patient_name = $2, blood_group = $3, units = $4, hospital_name = $5, city = $6,
            purpose = $7, contact_phone = $8, legal_verified = $9
        WHERE id = $1`,
		reqID, payload.PatientName, payload.BloodGroup, payload.Units, payload.HospitalName,
		payload.City, payload.Purpose, payload.ContactPhone, payload.LegalVerified)
	if err != nil {
		return opFailed("update request", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteRequest(ctx context.Context, id string) error {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := s.db.Exec(ctx, `DELETE FROM requests WHERE id = $1`, reqID)
	if err != nil {
		return opFailed("delete request", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanUser(row pgx.Row) (UserProfile, error) {
	var user UserProfile
	if err := row.Scan(&user.Email, &user.Name, &user.Phone, &user.Age, &user.Weight, &user.BloodGroup,
		&user.City, &user.Agreement, &user.WillingToDonate, &user.CreatedAt); err != nil {
		return UserProfile{}, err
	}
	user.UID = user.Email
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

func scanRequest(row pgx.Row) (BloodRequest, error) {
	var (
		id  uuid.UUID
		req BloodRequest
	)
	if err := row.Scan(&id, &req.PatientName, &req.BloodGroup, &req.Units, &req.HospitalName, &req.City,
		&req.Purpose, &req.ContactPhone, &req.LegalVerified, &req.Status, &req.CreatedAt, &req.UserEmail); err != nil {
		return BloodRequest{}, err
	}
	req.ID = id.String()
	req.CreatedAt = req.CreatedAt.UTC()
	return req, nil
}
