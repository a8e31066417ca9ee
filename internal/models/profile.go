package models

import "time"

// Profile is the remote per-user record carrying sharing and billing state.
type Profile struct {
	UserID             string     `json:"user_id"`
	ShareCode          string     `json:"share_code,omitempty"`
	PartnerUserID      string     `json:"partner_user_id,omitempty"`
	IsPremium          bool       `json:"is_premium"`
	StripeCustomerID   string     `json:"stripe_customer_id,omitempty"`
	StripePaymentID    string     `json:"stripe_payment_id,omitempty"`
	PremiumActivatedAt *time.Time `json:"premium_activated_at,omitempty"`
}

// LinkedPartner is the device-local record of a partner association.
// Verified is false when the link was recorded offline, in which case
// PartnerRef is the code as typed rather than a user id.
type LinkedPartner struct {
	PartnerRef string    `json:"partner_ref"`
	LinkedAt   time.Time `json:"linked_at"`
	Verified   bool      `json:"verified"`
}

type PartnerLinkStatus struct {
	ShareCode     string `json:"share_code"`
	Linked        bool   `json:"linked"`
	PartnerUserID string `json:"partner_user_id,omitempty"`
	Verified      bool   `json:"verified"`
}
