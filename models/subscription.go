package models

// Plan tiers mirrored from the license server.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// SubscriptionStatus as reported by the license server (or computed by the
// local trial fallback when the server is unreachable).
type SubscriptionStatus string

const (
	SubActive    SubscriptionStatus = "active"
	SubSuspended SubscriptionStatus = "suspended"
	SubExpired   SubscriptionStatus = "expired"
)

// UserSubscription is an entitlement snapshot. It is recomputed on demand
// and never persisted; only the local fallback inputs (install timestamp,
// premium flag) survive restarts.
type UserSubscription struct {
	UserID    string             `json:"userId"`
	Active    bool               `json:"active"`
	TrialEnds int64              `json:"trialEnds"` // epoch millis, 0 when server-issued
	Plan      Plan               `json:"plan"`
	Status    SubscriptionStatus `json:"status"`
}
