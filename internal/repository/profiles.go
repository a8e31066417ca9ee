package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"weddingplan/internal/dates"
	"weddingplan/internal/models"
	"weddingplan/pkg/logger"
)

const getSettingsSQL = `SELECT marriage_date::text, ceremony_date::text, has_ceremony,
	partner1_name, partner2_name, language, total_budget
	FROM weddingplan_profiles WHERE user_id = $1 AND settings_saved_at IS NOT NULL`

// GetSettings returns ErrNotFound until settings have been saved for the
// user, even if a profile row exists for sharing or billing.
func (r *Repository) GetSettings(ctx context.Context, userID string) (models.Settings, error) {
	var (
		s        models.Settings
		marriage dates.NullDate
		ceremony dates.NullDate
	)
	err := r.db.QueryRowContext(ctx, getSettingsSQL, userID).Scan(&marriage, &ceremony, &s.HasCeremony,
		&s.Partner1Name, &s.Partner2Name, &s.Language, &s.TotalBudget)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Settings{}, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository GetSettings failed", "error", err)
		return models.Settings{}, err
	}
	s.MarriageDate = marriage.Ptr()
	s.CeremonyDate = ceremony.Ptr()
	return s, nil
}

const saveSettingsSQL = `INSERT INTO weddingplan_profiles (user_id, marriage_date, ceremony_date, has_ceremony,
	partner1_name, partner2_name, language, total_budget, settings_saved_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	ON CONFLICT (user_id) DO UPDATE SET
		marriage_date = EXCLUDED.marriage_date, ceremony_date = EXCLUDED.ceremony_date,
		has_ceremony = EXCLUDED.has_ceremony, partner1_name = EXCLUDED.partner1_name,
		partner2_name = EXCLUDED.partner2_name, language = EXCLUDED.language,
		total_budget = EXCLUDED.total_budget, settings_saved_at = now(), updated_at = now()`

func (r *Repository) SaveSettings(ctx context.Context, userID string, s models.Settings) error {
	_, err := r.db.ExecContext(ctx, saveSettingsSQL, userID,
		dates.Nullable(s.MarriageDate), dates.Nullable(s.CeremonyDate), s.HasCeremony,
		s.Partner1Name, s.Partner2Name, string(s.Language), s.TotalBudget)
	if err != nil {
		logger.Error(ctx, "Repository SaveSettings failed", "error", err)
		return err
	}
	return nil
}

const getProfileSQL = `SELECT user_id, share_code, partner_user_id, is_premium,
	stripe_customer_id, stripe_payment_id, premium_activated_at
	FROM weddingplan_profiles WHERE user_id = $1`

func (r *Repository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var (
		p         models.Profile
		shareCode sql.NullString
		partner   sql.NullString
		customer  sql.NullString
		payment   sql.NullString
		activated sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, getProfileSQL, userID).Scan(&p.UserID, &shareCode, &partner,
		&p.IsPremium, &customer, &payment, &activated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository GetProfile failed", "error", err)
		return nil, err
	}
	p.ShareCode = shareCode.String
	p.PartnerUserID = partner.String
	p.StripeCustomerID = customer.String
	p.StripePaymentID = payment.String
	if activated.Valid {
		ts := activated.Time
		p.PremiumActivatedAt = &ts
	}
	return &p, nil
}

// SetShareCode publishes code for the user, creating the profile row if
// needed. A code already held by another user fails on the unique index.
func (r *Repository) SetShareCode(ctx context.Context, userID, code string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO weddingplan_profiles (user_id, share_code, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET share_code = EXCLUDED.share_code, updated_at = now()`,
		userID, nullString(code))
	if err != nil {
		logger.Error(ctx, "Repository SetShareCode failed", "error", err)
		return err
	}
	return nil
}

// FindUserByShareCode resolves a share code to its owner.
func (r *Repository) FindUserByShareCode(ctx context.Context, code string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM weddingplan_profiles WHERE share_code = $1`, code).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		logger.Error(ctx, "Repository FindUserByShareCode failed", "error", err)
		return "", err
	}
	return userID, nil
}

// SetPartner records partnerUserID on userID's profile.
func (r *Repository) SetPartner(ctx context.Context, userID, partnerUserID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO weddingplan_profiles (user_id, partner_user_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET partner_user_id = EXCLUDED.partner_user_id, updated_at = now()`,
		userID, nullString(partnerUserID))
	if err != nil {
		logger.Error(ctx, "Repository SetPartner failed", "error", err)
		return err
	}
	return nil
}

// MarkPremium flags the user as premium. Repeating it with the same payment
// keeps the first activation time.
func (r *Repository) MarkPremium(ctx context.Context, userID, customerID, paymentID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO weddingplan_profiles
		(user_id, is_premium, stripe_customer_id, stripe_payment_id, premium_activated_at, updated_at)
		VALUES ($1, true, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET is_premium = true,
			stripe_customer_id = COALESCE(EXCLUDED.stripe_customer_id, weddingplan_profiles.stripe_customer_id),
			stripe_payment_id = COALESCE(EXCLUDED.stripe_payment_id, weddingplan_profiles.stripe_payment_id),
			premium_activated_at = COALESCE(weddingplan_profiles.premium_activated_at, EXCLUDED.premium_activated_at),
			updated_at = now()`,
		userID, nullString(customerID), nullString(paymentID), at)
	if err != nil {
		logger.Error(ctx, "Repository MarkPremium failed", "error", err)
		return err
	}
	return nil
}

// IsPremium is false for users without a profile row.
func (r *Repository) IsPremium(ctx context.Context, userID string) (bool, error) {
	var premium bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_premium FROM weddingplan_profiles WHERE user_id = $1`, userID).Scan(&premium)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return premium, err
}
