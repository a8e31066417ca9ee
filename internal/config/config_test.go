package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "LOCAL_STORE", "DATABASE_URL", "KAFKA_BROKERS", "PREMIUM_GATE", "UPCOMING_DAYS", "FEEDBACK_TIMEOUT_SEC"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.HTTPPort != "8080" || c.LocalStore != StoreSQLite || c.SQLitePath != "data/weddingplan.db" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.RemoteConfigured() || len(c.KafkaBrokers) != 0 {
		t.Errorf("remote and kafka should be off by default: %+v", c)
	}
	if !c.PremiumGate || c.UpcomingDays != 30 || c.FeedbackTimeout != 10*time.Second {
		t.Errorf("unexpected defaults: %+v", c)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LOCAL_STORE", "Redis")
	t.Setenv("DATABASE_URL", "postgres://localhost/wp")
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("PREMIUM_GATE", "false")
	t.Setenv("UPCOMING_DAYS", "-4")
	t.Setenv("FEEDBACK_URL", "https://fb.example.com/")

	c := Load()
	if c.LocalStore != StoreRedis || !c.RemoteConfigured() || c.PremiumGate {
		t.Errorf("overrides not applied: %+v", c)
	}
	if len(c.KafkaBrokers) != 2 || c.KafkaBrokers[1] != "b:9092" {
		t.Errorf("brokers = %q", c.KafkaBrokers)
	}
	if c.UpcomingDays != 30 {
		t.Errorf("non-positive int should fall back to default, got %d", c.UpcomingDays)
	}
	if c.FeedbackURL != "https://fb.example.com" {
		t.Errorf("FeedbackURL = %q", c.FeedbackURL)
	}
}
