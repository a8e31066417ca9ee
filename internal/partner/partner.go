// Package partner manages share codes and the link between two users.
package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"weddingplan/internal/models"
	"weddingplan/internal/repository"
	"weddingplan/internal/store"
	"weddingplan/pkg/logger"
)

var (
	ErrInvalidCode  = errors.New("share code is empty")
	ErrCodeNotFound = errors.New("share code not found")
	ErrSelfLink     = errors.New("cannot link with your own share code")
	ErrLinkFailed   = errors.New("partner link failed")
)

// Profiles is the remote profile store used to publish and resolve codes.
type Profiles interface {
	SetShareCode(ctx context.Context, userID, code string) error
	FindUserByShareCode(ctx context.Context, code string) (string, error)
	SetPartner(ctx context.Context, userID, partnerUserID string) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

type Service struct {
	profiles Profiles
	newCode  func() string
	now      func() time.Time
}

// New returns a Service. With nil profiles every operation is local only.
func New(profiles Profiles) *Service {
	return &Service{profiles: profiles, newCode: NewCode, now: time.Now}
}

// WithClock overrides the timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithCodes overrides the code generator.
func (s *Service) WithCodes(newCode func() string) *Service {
	s.newCode = newCode
	return s
}

// NewCode returns 8 uppercase hex characters. Codes are lookup keys, not
// secrets.
func NewCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Normalize trims and upper-cases a typed code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) remote(userID string) bool { return s.profiles != nil && userID != "" }

// GenerateCode replaces the device's share code and publishes it for the
// signed-in user when possible.
func (s *Service) GenerateCode(ctx context.Context, local *store.Store, userID string) (string, error) {
	code := s.newCode()
	if err := local.SaveShareCode(ctx, code); err != nil {
		return "", err
	}
	if s.remote(userID) {
		if err := s.profiles.SetShareCode(ctx, userID, code); err != nil {
			logger.Warn(ctx, "Share code not published", "error", err)
		}
	}
	return code, nil
}

// ShareCode returns the existing code or generates one.
func (s *Service) ShareCode(ctx context.Context, local *store.Store, userID string) (string, error) {
	code, err := local.ShareCode(ctx)
	if err != nil {
		return "", err
	}
	if code != "" {
		return code, nil
	}
	return s.GenerateCode(ctx, local, userID)
}

// Link associates the caller with the owner of code. Signed in with a
// remote, both profiles are updated; the reverse write is best effort.
// Otherwise the code is recorded locally, unverified.
//
// Linking does not merge or reconcile either partner's tasks; each record
// stays last-writer-wins.
func (s *Service) Link(ctx context.Context, local *store.Store, userID, code string) (*models.LinkedPartner, error) {
	code = Normalize(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	if !s.remote(userID) {
		own, err := local.ShareCode(ctx)
		if err != nil {
			return nil, err
		}
		if own == code {
			return nil, ErrSelfLink
		}
		return s.save(ctx, local, models.LinkedPartner{PartnerRef: code, LinkedAt: s.now().UTC()})
	}

	partnerID, err := s.profiles.FindUserByShareCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkFailed, err)
	}
	if partnerID == userID {
		return nil, ErrSelfLink
	}
	if err := s.profiles.SetPartner(ctx, userID, partnerID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLinkFailed, err)
	}
	if err := s.profiles.SetPartner(ctx, partnerID, userID); err != nil {
		logger.Warn(ctx, "Reverse partner link not written", "error", err)
	}
	return s.save(ctx, local, models.LinkedPartner{PartnerRef: partnerID, LinkedAt: s.now().UTC(), Verified: true})
}

func (s *Service) save(ctx context.Context, local *store.Store, lp models.LinkedPartner) (*models.LinkedPartner, error) {
	if err := local.SaveLinkedPartner(ctx, lp); err != nil {
		return nil, err
	}
	return &lp, nil
}

// Unlink forgets the partner on this device only. Remote profiles keep
// their association.
func (s *Service) Unlink(ctx context.Context, local *store.Store) error {
	return local.ClearLinkedPartner(ctx)
}

// Status reports this device's view of the link.
func (s *Service) Status(ctx context.Context, local *store.Store, userID string) (models.PartnerLinkStatus, error) {
	var st models.PartnerLinkStatus
	code, err := local.ShareCode(ctx)
	if err != nil {
		return st, err
	}
	st.ShareCode = code
	if code == "" && s.remote(userID) {
		if p, err := s.profiles.GetProfile(ctx, userID); err == nil && p.ShareCode != "" {
			st.ShareCode = p.ShareCode
			if err := local.SaveShareCode(ctx, p.ShareCode); err != nil {
				return st, err
			}
		}
	}

	lp, err := local.LinkedPartner(ctx)
	if err != nil {
		return st, err
	}
	if lp != nil {
		st.Linked = true
		st.Verified = lp.Verified
		if lp.Verified {
			st.PartnerUserID = lp.PartnerRef
		}
	}
	return st, nil
}
