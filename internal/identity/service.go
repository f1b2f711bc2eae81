package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lifeline-connect/lifeline_connect/internal/notification"
	"github.com/lifeline-connect/lifeline_connect/internal/otp"
	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

// Service runs the registration and login flows.
type Service struct {
	users      store.Store
	challenges ChallengeRepository
	mailer     notification.OTPMailer
	sessions   *session.Manager
	generate   otp.Generator
	ttl        time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithGenerator replaces the OTP generator.
func WithGenerator(g otp.Generator) Option {
	return func(s *Service) { s.generate = g }
}

// WithChallengeTTL bounds how long a challenge stays verifiable. Zero means forever.
func WithChallengeTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new identity service.
func NewService(users store.Store, challenges ChallengeRepository, mailer notification.OTPMailer, sessions *session.Manager, opts ...Option) *Service {
	s := &Service{
		users:      users,
		challenges: challenges,
		mailer:     mailer,
		sessions:   sessions,
		generate:   otp.Generate,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRegistration validates the form, checks the email is free and issues a code.
func (s *Service) StartRegistration(ctx context.Context, p RegistrationPayload) (Initiation, error) {
	p.Email = normalizeEmail(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	if err := store.Validate(p); err != nil {
		return Initiation{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	exists, err := s.users.UserExists(ctx, p.Email)
	if err != nil {
		return Initiation{}, err
	}
	if exists {
		return Initiation{}, ErrDuplicateUser
	}

	pending := p
	return s.issue(ctx, Challenge{
		Kind:        KindRegister,
		Email:       p.Email,
		DisplayName: p.Name,
		Pending:     &pending,
	})
}

// StartLogin issues a code for an existing account.
func (s *Service) StartLogin(ctx context.Context, p LoginPayload) (Initiation, error) {
	p.Email = normalizeEmail(p.Email)
	if err := store.Validate(p); err != nil {
		return Initiation{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	profile, err := s.users.GetUser(ctx, p.Email)
	if errors.Is(err, store.ErrNotFound) {
		return Initiation{}, ErrUserNotFound
	}
	if err != nil {
		return Initiation{}, err
	}

	return s.issue(ctx, Challenge{
		Kind:        KindLogin,
		Email:       p.Email,
		DisplayName: profile.Name,
	})
}

func (s *Service) issue(ctx context.Context, c Challenge) (Initiation, error) {
	code, err := s.generate()
	if err != nil {
		return Initiation{}, fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return Initiation{}, err
	}

	c.ID = uuid.NewString()
	c.CodeHash = hash
	c.CreatedAt = s.now().UTC()
	if err := s.challenges.Save(ctx, c, s.ttl); err != nil {
		return Initiation{}, err
	}

	out := Initiation{
		ChallengeID: c.ID,
		Kind:        c.Kind,
		State:       StateAwaitingCode,
		Email:       c.Email,
		Delivered:   s.mailer.SendOTPEmail(ctx, c.Email, c.DisplayName, code),
	}
	if !out.Delivered {
		s.logger.Warn("otp email not delivered, disclosing fallback code",
			"challenge_id", c.ID,
			"kind", string(c.Kind),
		)
		out.FallbackCode = code
	}
	return out, nil
}

// Verify checks code against the challenge and, on a match, completes the flow.
// A mismatch leaves the challenge in place so the same code can be retried.
func (s *Service) Verify(ctx context.Context, challengeID, code string) (Completion, error) {
	c, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		return Completion{}, err
	}
	if err := bcrypt.CompareHashAndPassword(c.CodeHash, []byte(code)); err != nil {
		return Completion{Kind: c.Kind, State: StateAwaitingCode}, ErrInvalidCode
	}

	if c.Kind == KindRegister {
		if c.Pending == nil {
			return s.fail(ctx, c, errors.New("registration challenge has no pending profile"))
		}
		if err := s.users.CreateUser(ctx, c.Pending.profile(s.now().UTC())); err != nil {
			return s.fail(ctx, c, err)
		}
	}

	token, sess, err := s.sessions.Begin(ctx, c.Email)
	if err != nil {
		return s.fail(ctx, c, err)
	}
	if err := s.challenges.Delete(ctx, c.ID); err != nil {
		s.logger.Warn("failed to delete completed challenge", "challenge_id", c.ID, "error", err)
	}

	s.logger.Info("identity verified", "kind", string(c.Kind), "session_id", sess.ID)
	return Completion{Kind: c.Kind, State: StateCompleted, Token: token, Session: sess}, nil
}

func (s *Service) fail(ctx context.Context, c Challenge, cause error) (Completion, error) {
	if err := s.challenges.Delete(ctx, c.ID); err != nil {
		s.logger.Warn("failed to delete failed challenge", "challenge_id", c.ID, "error", err)
	}
	s.logger.Error("identity verification could not be completed",
		"kind", string(c.Kind),
		"challenge_id", c.ID,
		"error", cause,
	)
	return Completion{Kind: c.Kind, State: StateFailed}, fmt.Errorf("%w: %w", ErrPersistenceFailed, cause)
}

// Logout ends the session named by token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.End(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
