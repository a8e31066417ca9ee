package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"
)

const testSecret = "whsec_test"

type premiumCall struct {
	userID, customerID, paymentID string
}

type fakePremium struct {
	calls   []premiumCall
	premium map[string]bool
	err     error
}

func (f *fakePremium) MarkPremium(_ context.Context, userID, customerID, paymentID string, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, premiumCall{userID, customerID, paymentID})
	if f.premium == nil {
		f.premium = map[string]bool{}
	}
	f.premium[userID] = true
	return nil
}

func (f *fakePremium) IsPremium(_ context.Context, userID string) (bool, error) {
	return f.premium[userID], nil
}

func sign(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func event(eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"api_version":"2020-08-27","data":{"object":%s}}`, eventType, object))
}

const completedSession = `{"id":"cs_1","object":"checkout.session","metadata":{"userId":"user-1"},"customer":"cus_1","payment_intent":"pi_1"}`

func TestWebhookMarksPremiumIdempotently(t *testing.T) {
	ctx := context.Background()
	premium := &fakePremium{}
	svc := New(Config{WebhookSecret: testSecret}, premium)
	payload := event("checkout.session.completed", completedSession)

	for i := 0; i < 2; i++ {
		res, err := svc.HandleWebhook(ctx, payload, sign(payload, testSecret))
		if err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
		if !res.Received || !res.Configured {
			t.Errorf("result = %+v", res)
		}
	}
	if len(premium.calls) != 2 || premium.calls[0] != (premiumCall{"user-1", "cus_1", "pi_1"}) {
		t.Errorf("calls = %+v", premium.calls)
	}
	if ok, _ := svc.PremiumStatus(ctx, "user-1"); !ok {
		t.Error("user should be premium")
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	premium := &fakePremium{}
	svc := New(Config{WebhookSecret: testSecret}, premium)
	payload := event("checkout.session.completed", completedSession)

	for name, header := range map[string]string{
		"wrong secret": sign(payload, "whsec_other"),
		"missing":      "",
		"garbage":      "t=1,v1=zz",
	} {
		if _, err := svc.HandleWebhook(context.Background(), payload, header); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
	if len(premium.calls) != 0 {
		t.Error("unverified event was applied")
	}
}

func TestWebhookIgnoresOtherEventsAndMissingUser(t *testing.T) {
	premium := &fakePremium{}
	svc := New(Config{WebhookSecret: testSecret}, premium)
	for _, payload := range [][]byte{
		event("payment_intent.created", `{"id":"pi_1","object":"payment_intent"}`),
		event("checkout.session.completed", `{"id":"cs_2","object":"checkout.session","metadata":{}}`),
	} {
		res, err := svc.HandleWebhook(context.Background(), payload, sign(payload, testSecret))
		if err != nil || !res.Received {
			t.Errorf("res = %+v, %v", res, err)
		}
	}
	if len(premium.calls) != 0 {
		t.Errorf("calls = %+v", premium.calls)
	}
}

func TestWebhookSurfacesStoreFailure(t *testing.T) {
	svc := New(Config{WebhookSecret: testSecret}, &fakePremium{err: errors.New("db down")})
	payload := event("checkout.session.completed", completedSession)
	if _, err := svc.HandleWebhook(context.Background(), payload, sign(payload, testSecret)); err == nil {
		t.Error("expected error so the provider retries")
	}
}

func TestUnconfigured(t *testing.T) {
	ctx := context.Background()
	svc := New(Config{}, nil)
	res, err := svc.HandleWebhook(ctx, []byte(`{}`), "")
	if err != nil || !res.Received || res.Configured {
		t.Errorf("webhook = %+v, %v", res, err)
	}
	if _, err := svc.CreateCheckout(ctx, "user-1", "https://app.example"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("checkout err = %v", err)
	}
	if ok, err := svc.PremiumStatus(ctx, "user-1"); ok || err != nil {
		t.Errorf("premium = %v, %v", ok, err)
	}
}

type fakeSessions struct {
	params *stripe.CheckoutSessionParams
}

func (f *fakeSessions) New(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = p
	return &stripe.CheckoutSession{ID: "cs_new", URL: "https://checkout.stripe.test/cs_new"}, nil
}

func TestCreateCheckout(t *testing.T) {
	sessions := &fakeSessions{}
	svc := New(Config{PriceID: "price_1"}, nil).WithSessions(sessions)

	if _, err := svc.CreateCheckout(context.Background(), "", "https://app.example"); !errors.Is(err, ErrUserRequired) {
		t.Errorf("anonymous err = %v", err)
	}
	url, err := svc.CreateCheckout(context.Background(), "user-1", "https://app.example/")
	if err != nil || url != "https://checkout.stripe.test/cs_new" {
		t.Fatalf("url = %q, %v", url, err)
	}
	p := sessions.params
	if *p.Mode != "payment" || *p.LineItems[0].Price != "price_1" || *p.LineItems[0].Quantity != 1 {
		t.Errorf("params = %+v", p)
	}
	if *p.SuccessURL != "https://app.example/settings?upgraded=true" || p.Metadata["userId"] != "user-1" {
		t.Errorf("urls/metadata = %s %v", *p.SuccessURL, p.Metadata)
	}
}
