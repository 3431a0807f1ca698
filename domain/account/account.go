// Package account provides the account and usage log value types.
// All functions are pure - no side effects.
package account

import "time"

// Role is an account's access role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Tier is an account's subscription tier.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Status is an account's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ValidRole reports whether r is a declared role.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// ValidTier reports whether t is a declared subscription tier.
func ValidTier(t Tier) bool {
	return t == TierFree || t == TierPro || t == TierEnterprise
}

// ValidStatus reports whether s is a declared account status.
func ValidStatus(s Status) bool {
	return s == StatusActive || s == StatusInactive || s == StatusSuspended
}

// UsageLog is a single usage entry embedded in an account (immutable value
// type). Logs are owned exclusively by their parent account: they are created
// only by appending, never mutated, and destroyed only by explicit removal or
// with the parent.
type UsageLog struct {
	ID        string
	APICalls  int64
	StorageMB int64
	Timestamp time.Time
}

// Account represents a SaaS customer account with its embedded usage history.
// UsageLogs is always non-nil, possibly empty; order is append order.
type Account struct {
	ID               ID
	Email            string
	Role             Role
	SubscriptionTier Tier
	AccountStatus    Status
	UsageLogs        []UsageLog
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New constructs an account with creation defaults applied: status is forced
// to active and the log sequence starts empty, regardless of caller input.
func New(id ID, email string, role Role, tier Tier, now time.Time) Account {
	if role == "" {
		role = RoleUser
	}
	if tier == "" {
		tier = TierFree
	}
	return Account{
		ID:               id,
		Email:            email,
		Role:             role,
		SubscriptionTier: tier,
		AccountStatus:    StatusActive,
		UsageLogs:        []UsageLog{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Update is an explicit field-set for a single-document update. Nil fields are
// left untouched. It mirrors a $set-shaped write: either every present field
// applies or none do.
type Update struct {
	Email            *string
	SubscriptionTier *Tier
	AccountStatus    *Status
}

// IsEmpty reports whether the update carries no recognized field.
func (u Update) IsEmpty() bool {
	return u.Email == nil && u.SubscriptionTier == nil && u.AccountStatus == nil
}

// Apply returns a copy of a with the update's present fields set.
func (u Update) Apply(a Account, now time.Time) Account {
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.SubscriptionTier != nil {
		a.SubscriptionTier = *u.SubscriptionTier
	}
	if u.AccountStatus != nil {
		a.AccountStatus = *u.AccountStatus
	}
	a.UpdatedAt = now
	return a
}
