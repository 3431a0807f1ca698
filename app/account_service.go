// Package app provides the application services: payload validation,
// defaulting, identifier resolution, and the error taxonomy. Services hold no
// state of their own - every operation is a single pass through the store.
package app

import (
	"context"
	"time"

	"github.com/artpar/saasmon/domain/account"
	"github.com/artpar/saasmon/ports"
	"github.com/rs/zerolog"
)

// AccountService owns account lifecycle and usage log append/remove.
type AccountService struct {
	store  ports.AccountStore
	ids    ports.IDGenerator
	clock  ports.Clock
	logger zerolog.Logger
}

// NewAccountService creates an account service.
func NewAccountService(store ports.AccountStore, ids ports.IDGenerator, clock ports.Clock, logger zerolog.Logger) *AccountService {
	return &AccountService{store: store, ids: ids, clock: clock, logger: logger}
}

// CreateAccountParams carries the recognized creation fields. Role and tier
// are optional; account status and usage logs are never settable at creation.
type CreateAccountParams struct {
	Email            string
	Role             string
	SubscriptionTier string
}

// Create mints a new account with status active and an empty log sequence.
func (s *AccountService) Create(ctx context.Context, p CreateAccountParams) (account.Account, error) {
	if p.Email == "" {
		return account.Account{}, validationErr("email", "email is required")
	}

	role := account.Role(p.Role)
	if p.Role != "" && !account.ValidRole(role) {
		return account.Account{}, validationErr("role", "must be one of: user, admin")
	}
	tier := account.Tier(p.SubscriptionTier)
	if p.SubscriptionTier != "" && !account.ValidTier(tier) {
		return account.Account{}, validationErr("subscription_tier", "must be one of: free, pro, enterprise")
	}

	id := account.ParseID(s.ids.New())
	a := account.New(id, p.Email, role, tier, s.clock.Now().UTC())

	if err := s.store.Create(ctx, a); err != nil {
		return account.Account{}, storageErr("create account", err)
	}

	s.logger.Info().Str("account_id", a.ID.Key()).Str("email", a.Email).Msg("account created")
	return a, nil
}

// Get resolves the id string and retrieves the account. A string matching
// neither encoding is looked up verbatim and reported as not-found on a miss,
// never as a format error.
func (s *AccountService) Get(ctx context.Context, id string) (account.Account, error) {
	a, err := s.store.Get(ctx, account.ParseID(id))
	if err != nil {
		return account.Account{}, storageErr("get account", err)
	}
	return a, nil
}

// List returns the page of accounts at offset (pageNumber-1)*pageSize in
// stable creation order.
func (s *AccountService) List(ctx context.Context, pageNumber, pageSize int) ([]account.Account, error) {
	if pageNumber < 1 {
		return nil, validationErr("pn", "page number must be >= 1")
	}
	if pageSize < 1 {
		return nil, validationErr("ps", "page size must be >= 1")
	}

	accounts, err := s.store.List(ctx, pageSize, (pageNumber-1)*pageSize)
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	return accounts, nil
}

// Count returns the total account count.
func (s *AccountService) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, storageErr("count accounts", err)
	}
	return n, nil
}

// UpdateAccountParams carries the recognized update fields; nil means leave
// untouched. Unrecognized payload fields are the dispatcher's problem - it
// simply never sets them here.
type UpdateAccountParams struct {
	Email            *string
	SubscriptionTier *string
	AccountStatus    *string
}

// Update applies the present fields in a single document-level write and
// returns the updated account. An update with no recognized field is a
// ValidationError and never reaches the store.
func (s *AccountService) Update(ctx context.Context, id string, p UpdateAccountParams) (account.Account, error) {
	u := account.Update{}
	if p.Email != nil {
		if *p.Email == "" {
			return account.Account{}, validationErr("email", "email must not be empty")
		}
		u.Email = p.Email
	}
	if p.SubscriptionTier != nil {
		tier := account.Tier(*p.SubscriptionTier)
		if !account.ValidTier(tier) {
			return account.Account{}, validationErr("subscription_tier", "must be one of: free, pro, enterprise")
		}
		u.SubscriptionTier = &tier
	}
	if p.AccountStatus != nil {
		status := account.Status(*p.AccountStatus)
		if !account.ValidStatus(status) {
			return account.Account{}, validationErr("account_status", "must be one of: active, inactive, suspended")
		}
		u.AccountStatus = &status
	}

	if u.IsEmpty() {
		return account.Account{}, validationErr("body", "no valid fields provided")
	}

	aid := account.ParseID(id)
	if err := s.store.Update(ctx, aid, u, s.clock.Now().UTC()); err != nil {
		return account.Account{}, storageErr("update account", err)
	}

	a, err := s.store.Get(ctx, aid)
	if err != nil {
		return account.Account{}, storageErr("get account", err)
	}

	s.logger.Info().Str("account_id", aid.Key()).Msg("account updated")
	return a, nil
}

// Delete removes the account and its embedded logs atomically.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	aid := account.ParseID(id)
	if err := s.store.Delete(ctx, aid); err != nil {
		return storageErr("delete account", err)
	}
	s.logger.Info().Str("account_id", aid.Key()).Msg("account deleted")
	return nil
}

// AppendUsageParams carries a usage log payload. Both numeric fields are
// required; the timestamp defaults to append time.
type AppendUsageParams struct {
	APICalls  *int64
	StorageMB *int64
	Timestamp *time.Time
}

// AppendUsageLog mints a new log, pushes it onto the account's sequence, and
// returns it with its generated id and resolved timestamp.
func (s *AccountService) AppendUsageLog(ctx context.Context, id string, p AppendUsageParams) (account.UsageLog, error) {
	if p.APICalls == nil {
		return account.UsageLog{}, validationErr("api_calls", "api_calls is required")
	}
	if p.StorageMB == nil {
		return account.UsageLog{}, validationErr("storage_mb", "storage_mb is required")
	}
	if *p.APICalls < 0 {
		return account.UsageLog{}, validationErr("api_calls", "must be non-negative")
	}
	if *p.StorageMB < 0 {
		return account.UsageLog{}, validationErr("storage_mb", "must be non-negative")
	}

	now := s.clock.Now().UTC()
	ts := now
	if p.Timestamp != nil {
		ts = p.Timestamp.UTC()
	}

	l := account.UsageLog{
		ID:        s.ids.New(),
		APICalls:  *p.APICalls,
		StorageMB: *p.StorageMB,
		Timestamp: ts,
	}

	aid := account.ParseID(id)
	if err := s.store.AppendUsageLog(ctx, aid, l, now); err != nil {
		return account.UsageLog{}, storageErr("append usage log", err)
	}

	s.logger.Info().
		Str("account_id", aid.Key()).
		Str("log_id", l.ID).
		Int64("api_calls", l.APICalls).
		Msg("usage log appended")
	return l, nil
}

// ListUsageLogs returns the account's full log sequence in append order.
func (s *AccountService) ListUsageLogs(ctx context.Context, id string) ([]account.UsageLog, error) {
	a, err := s.store.Get(ctx, account.ParseID(id))
	if err != nil {
		return nil, storageErr("get account", err)
	}
	return a.UsageLogs, nil
}

// RemoveUsageLog pulls the log with logID from the account's sequence. A log
// id matching nothing on an existing account is a no-op success, so the
// operation is idempotent while the account lives.
func (s *AccountService) RemoveUsageLog(ctx context.Context, accountID, logID string) error {
	aid := account.ParseID(accountID)
	if err := s.store.RemoveUsageLog(ctx, aid, logID, s.clock.Now().UTC()); err != nil {
		return storageErr("remove usage log", err)
	}
	s.logger.Info().Str("account_id", aid.Key()).Str("log_id", logID).Msg("usage log removed")
	return nil
}
