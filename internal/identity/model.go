package identity

import (
	"errors"
	"time"

	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

var (
	// ErrDuplicateUser means registration was attempted for an existing email.
	ErrDuplicateUser = errors.New("user with this email already exists, please login")
	// ErrUserNotFound means login was attempted for an unknown email.
	ErrUserNotFound = errors.New("no account found with this email, please register")
	// ErrInvalidCode means the submitted code does not match the challenge.
	ErrInvalidCode = errors.New("invalid otp, please try again")
	// ErrPersistenceFailed means the code matched but the profile or session could not be saved.
	ErrPersistenceFailed = errors.New("authentication failed")
	// ErrChallengeNotFound means the challenge id is unknown, finished or expired.
	ErrChallengeNotFound = errors.New("verification challenge not found")
	// ErrInvalidPayload means a form is missing or has malformed fields.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Kind tells registration and login challenges apart.
type Kind string

const (
	KindRegister Kind = "register"
	KindLogin    Kind = "login"
)

// State is a position in the registration or login state machine.
type State string

const (
	StateCollecting   State = "collecting"
	StateAwaitingCode State = "awaiting_code"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// RegistrationPayload is the registration form.
type RegistrationPayload struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Age        int    `json:"age" validate:"gte=18"`
	Weight     int    `json:"weight" validate:"gte=45"`
	BloodGroup string `json:"blood_group" validate:"required,bloodgroup"`
	City       string `json:"city" validate:"required,city"`
	Agreement  bool   `json:"agreement" validate:"eq=true"`
}

func (p RegistrationPayload) profile(createdAt time.Time) store.UserProfile {
	return store.UserProfile{
		Email:      p.Email,
		UID:        p.Email,
		Name:       p.Name,
		Phone:      p.Phone,
		Age:        p.Age,
		Weight:     p.Weight,
		BloodGroup: p.BloodGroup,
		City:       p.City,
		Agreement:  p.Agreement,
		CreatedAt:  createdAt,
	}
}

// LoginPayload is the login form.
type LoginPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// Challenge is a pending OTP challenge. The code itself is never kept, only
// its bcrypt hash.
type Challenge struct {
	ID          string               `json:"id"`
	Kind        Kind                 `json:"kind"`
	Email       string               `json:"email"`
	DisplayName string               `json:"display_name"`
	CodeHash    []byte               `json:"code_hash"`
	Pending     *RegistrationPayload `json:"pending,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Initiation is the outcome of a successful first step.
type Initiation struct {
	ChallengeID string
	Kind        Kind
	State       State
	Email       string
	Delivered   bool
	// FallbackCode is set only when email delivery failed.
	FallbackCode string
}

// Completion is the outcome of a code submission that matched.
type Completion struct {
	Kind    Kind
	State   State
	Token   string
	Session session.Session
}
