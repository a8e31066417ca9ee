package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS weddingplan_tasks (
		id                  TEXT PRIMARY KEY,
		user_id             TEXT NOT NULL,
		task_id             TEXT NOT NULL,
		category_id         TEXT NOT NULL,
		phase_id            TEXT NOT NULL,
		name                TEXT NOT NULL DEFAULT '',
		description         TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL DEFAULT 'pending',
		recommended_timing  TEXT NOT NULL DEFAULT '',
		months_before       INTEGER NOT NULL DEFAULT 0,
		calculated_deadline DATE,
		subtasks            JSONB NOT NULL DEFAULT '[]',
		notes               JSONB NOT NULL DEFAULT '[]',
		budget_estimate_min BIGINT NOT NULL DEFAULT 0,
		budget_estimate_max BIGINT NOT NULL DEFAULT 0,
		actual_cost         BIGINT,
		memo                TEXT NOT NULL DEFAULT '',
		completed_at        TIMESTAMPTZ,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS weddingplan_tasks_user_idx ON weddingplan_tasks (user_id)`,
	`CREATE TABLE IF NOT EXISTS weddingplan_prenup_items (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		template_id TEXT NOT NULL DEFAULT '',
		section_id  TEXT NOT NULL,
		label       TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		completed   BOOLEAN NOT NULL DEFAULT false,
		notes       TEXT NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`ALTER TABLE weddingplan_prenup_items ADD COLUMN IF NOT EXISTS template_id TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS weddingplan_prenup_items_user_idx ON weddingplan_prenup_items (user_id)`,
	`CREATE TABLE IF NOT EXISTS weddingplan_profiles (
		user_id              TEXT PRIMARY KEY,
		marriage_date        DATE,
		ceremony_date        DATE,
		has_ceremony         BOOLEAN NOT NULL DEFAULT true,
		partner1_name        TEXT NOT NULL DEFAULT '',
		partner2_name        TEXT NOT NULL DEFAULT '',
		language             TEXT NOT NULL DEFAULT 'ja',
		total_budget         BIGINT NOT NULL DEFAULT 3500000,
		settings_saved_at    TIMESTAMPTZ,
		share_code           TEXT UNIQUE,
		partner_user_id      TEXT,
		is_premium           BOOLEAN NOT NULL DEFAULT false,
		stripe_customer_id   TEXT,
		stripe_payment_id    TEXT,
		premium_activated_at TIMESTAMPTZ,
		updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the mirror tables when they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
