// Package dashboard composes the signed-in user's dashboard: own profile,
// request feeds and the willing-donor list.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lifeline-connect/lifeline_connect/internal/session"
	"github.com/lifeline-connect/lifeline_connect/internal/store"
)

// View is a loaded dashboard.
type View struct {
	Profile         store.UserProfile    `json:"profile"`
	WillingToDonate bool                 `json:"willing_to_donate"`
	ActiveRequests  []store.BloodRequest `json:"active_requests"`
	MyRequests      []store.BloodRequest `json:"my_requests"`
	Donors          []store.UserProfile  `json:"donors"`
}

// RemoveRequest drops request id from both request lists.
func (v *View) RemoveRequest(id string) {
	match := func(r store.BloodRequest) bool { return r.ID == id }
	v.ActiveRequests = slices.DeleteFunc(v.ActiveRequests, match)
	v.MyRequests = slices.DeleteFunc(v.MyRequests, match)
}

func (v *View) setDonor(willing bool) {
	v.WillingToDonate = willing
	v.Profile.WillingToDonate = willing
	v.Donors = slices.DeleteFunc(v.Donors, func(p store.UserProfile) bool { return p.Email == v.Profile.Email })
	if willing {
		v.Donors = append(v.Donors, v.Profile)
	}
}

// Service loads dashboards and applies donation toggles.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService builds a dashboard service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// Load reads the dashboard for the session user.
func (s *Service) Load(ctx context.Context, sess session.Session) (View, error) {
	if sess.UserEmail == "" {
		return View{}, session.ErrNoSession
	}
	profile, err := s.store.GetUser(ctx, sess.UserEmail)
	if err != nil {
		return View{}, fmt.Errorf("load profile: %w", err)
	}
	active, err := s.store.ListActiveRequests(ctx)
	if err != nil {
		return View{}, fmt.Errorf("load active requests: %w", err)
	}
	mine, err := s.store.ListRequestsByOwner(ctx, sess.UserEmail)
	if err != nil {
		return View{}, fmt.Errorf("load own requests: %w", err)
	}
	donors, err := s.store.ListWillingDonors(ctx)
	if err != nil {
		return View{}, fmt.Errorf("load donors: %w", err)
	}
	return View{
		Profile:         profile,
		WillingToDonate: profile.WillingToDonate,
		ActiveRequests:  active,
		MyRequests:      mine,
		Donors:          donors,
	}, nil
}

// ToggleDonation sets the user's donation willingness. The view is updated
// before the store write and restored if the write fails.
func (s *Service) ToggleDonation(ctx context.Context, v *View, willing bool) error {
	prevWilling := v.WillingToDonate
	prevDonors := slices.Clone(v.Donors)

	v.setDonor(willing)
	if err := s.store.SetDonationWillingness(ctx, v.Profile.Email, willing); err != nil {
		v.WillingToDonate = prevWilling
		v.Profile.WillingToDonate = prevWilling
		v.Donors = prevDonors
		s.logger.Warn("donation toggle rolled back", "willing", willing, "error", err)
		return fmt.Errorf("update donation status: %w", err)
	}
	return nil
}

// FilterRequests keeps requests whose city or blood group contains q, ignoring case.
func FilterRequests(list []store.BloodRequest, q string) []store.BloodRequest {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return list
	}
	out := make([]store.BloodRequest, 0, len(list))
	for _, r := range list {
		if containsFold(q, r.City, r.BloodGroup) {
			out = append(out, r)
		}
	}
	return out
}

// FilterDonors keeps donors whose city, blood group or name contains q, ignoring case.
func FilterDonors(list []store.UserProfile, q string) []store.UserProfile {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return list
	}
	out := make([]store.UserProfile, 0, len(list))
	for _, d := range list {
		if containsFold(q, d.City, d.BloodGroup, d.Name) {
			out = append(out, d)
		}
	}
	return out
}

func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
