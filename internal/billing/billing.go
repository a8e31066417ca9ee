// Package billing sells the one-time premium upgrade through Stripe
// Checkout and applies the completed-payment webhook.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"weddingplan/pkg/logger"
)

var (
	ErrNotConfigured    = errors.New("payments are not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUserRequired     = errors.New("sign-in required")
)

const (
	eventCheckoutCompleted = "checkout.session.completed"
	metadataUserID         = "userId"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
}

// Premium is where the upgrade is recorded.
type Premium interface {
	MarkPremium(ctx context.Context, userID, customerID, paymentID string, at time.Time) error
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// SessionCreator creates Checkout sessions; *session.Client satisfies it.
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Service struct {
	cfg      Config
	premium  Premium
	sessions SessionCreator
	now      func() time.Time
}

// New returns a Service. Missing keys or a nil premium store disable the
// matching operations rather than failing.
func New(cfg Config, premium Premium) *Service {
	s := &Service{cfg: cfg, premium: premium, now: time.Now}
	if cfg.SecretKey != "" {
		api := &client.API{}
		api.Init(cfg.SecretKey, nil)
		s.sessions = api.CheckoutSessions
	}
	return s
}

// WithSessions overrides the Checkout client.
func (s *Service) WithSessions(c SessionCreator) *Service {
	s.sessions = c
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CheckoutConfigured() bool {
	return s.sessions != nil && s.cfg.PriceID != ""
}

func (s *Service) WebhookConfigured() bool {
	return s.cfg.WebhookSecret != "" && s.premium != nil
}

type WebhookResult struct {
	Received   bool   `json:"received"`
	Configured bool   `json:"configured"`
	EventType  string `json:"event_type,omitempty"`
}

// HandleWebhook verifies and applies one Stripe event. Replays are safe:
// marking a user premium twice has the same outcome.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	if !s.WebhookConfigured() {
		return WebhookResult{Received: true}, nil
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		logger.Warn(ctx, "Stripe webhook rejected", "error", err)
		return WebhookResult{}, ErrInvalidSignature
	}
	res := WebhookResult{Received: true, Configured: true, EventType: string(event.Type)}
	if string(event.Type) != eventCheckoutCompleted || event.Data == nil {
		return res, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return res, fmt.Errorf("decode checkout session: %w", err)
	}
	userID := cs.Metadata[metadataUserID]
	if userID == "" {
		logger.Warn(ctx, "Checkout completed without user id", "session", cs.ID)
		return res, nil
	}
	var customerID, paymentID string
	if cs.Customer != nil {
		customerID = cs.Customer.ID
	}
	if cs.PaymentIntent != nil {
		paymentID = cs.PaymentIntent.ID
	}
	if err := s.premium.MarkPremium(ctx, userID, customerID, paymentID, s.now().UTC()); err != nil {
		return res, fmt.Errorf("mark premium: %w", err)
	}
	logger.Info(ctx, "Premium activated", "user_id", userID, "session", cs.ID)
	return res, nil
}

// CreateCheckout opens a one-time payment session and returns its URL.
func (s *Service) CreateCheckout(ctx context.Context, userID, origin string) (string, error) {
	if !s.CheckoutConfigured() {
		return "", ErrNotConfigured
	}
	if userID == "" {
		return "", ErrUserRequired
	}
	origin = strings.TrimRight(origin, "/")
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(origin + "/settings?upgraded=true"),
		CancelURL:         stripe.String(origin + "/settings"),
		ClientReferenceID: stripe.String(userID),
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, userID)

	cs, err := s.sessions.New(params)
	if err != nil {
		logger.Error(ctx, "Stripe checkout session failed", "error", err)
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return cs.URL, nil
}

// PremiumStatus is false for anonymous users and when nothing is configured.
func (s *Service) PremiumStatus(ctx context.Context, userID string) (bool, error) {
	if s.premium == nil || userID == "" {
		return false, nil
	}
	return s.premium.IsPremium(ctx, userID)
}
