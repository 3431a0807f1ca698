// Package memory provides in-memory implementations of storage ports,
// used in tests and for ephemeral deployments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/artpar/saasmon/domain/account"
	"github.com/artpar/saasmon/domain/analytics"
	"github.com/artpar/saasmon/ports"
)

// ErrNotFound is returned when an entity is not found.
var ErrNotFound = ports.ErrNotFound

type accountRecord struct {
	acct account.Account
	seq  uint64 // creation sequence, the stable sort key for pagination
}

// AccountStore is an in-memory implementation of ports.AccountStore. Every
// operation takes the lock once, so each read or write observes a whole
// document, never a half-applied one.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*accountRecord // by serialized ID
	nextSeq  uint64
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*accountRecord),
	}
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	s.accounts[a.ID.Key()] = &accountRecord{acct: cloneAccount(a), seq: s.nextSeq}
	return nil
}

// Get retrieves an account with its full usage log sequence.
func (s *AccountStore) Get(ctx context.Context, id account.ID) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[id.Key()]
	if !ok {
		return account.Account{}, ErrNotFound
	}
	return cloneAccount(rec.acct), nil
}

// List returns accounts ordered by creation sequence.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.ordered()

	if offset >= len(recs) {
		return nil, nil
	}
	recs = recs[offset:]
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}

	out := make([]account.Account, len(recs))
	for i, r := range recs {
		out[i] = cloneAccount(r.acct)
	}
	return out, nil
}

// Count returns total account count.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}

// Update applies the update's present fields to a single account.
func (s *AccountStore) Update(ctx context.Context, id account.ID, u account.Update, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[id.Key()]
	if !ok {
		return ErrNotFound
	}
	rec.acct = u.Apply(rec.acct, now)
	return nil
}

// Delete removes an account and its embedded logs.
func (s *AccountStore) Delete(ctx context.Context, id account.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id.Key()]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, id.Key())
	return nil
}

// AppendUsageLog pushes a log onto the account's sequence.
func (s *AccountStore) AppendUsageLog(ctx context.Context, id account.ID, l account.UsageLog, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[id.Key()]
	if !ok {
		return ErrNotFound
	}
	rec.acct.UsageLogs = append(rec.acct.UsageLogs, l)
	rec.acct.UpdatedAt = now
	return nil
}

// RemoveUsageLog pulls all logs matching logID. Zero matches on an existing
// account is a no-op success.
func (s *AccountStore) RemoveUsageLog(ctx context.Context, id account.ID, logID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.accounts[id.Key()]
	if !ok {
		return ErrNotFound
	}

	kept := rec.acct.UsageLogs[:0]
	for _, l := range rec.acct.UsageLogs {
		if l.ID != logID {
			kept = append(kept, l)
		}
	}
	rec.acct.UsageLogs = kept
	rec.acct.UpdatedAt = now
	return nil
}

// AverageAPICalls computes per-account averages over a snapshot.
func (s *AccountStore) AverageAPICalls(ctx context.Context) ([]analytics.AccountAverage, error) {
	return analytics.AverageAPICalls(s.snapshot()), nil
}

// HighUsageLogs scans a snapshot for logs strictly above threshold.
func (s *AccountStore) HighUsageLogs(ctx context.Context, threshold int64) ([]analytics.HighUsageEntry, error) {
	return analytics.HighUsage(s.snapshot(), threshold), nil
}

// snapshot returns all accounts in creation order, deep copied, so analytics
// never observe a partially applied concurrent write.
func (s *AccountStore) snapshot() []account.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.ordered()
	out := make([]account.Account, len(recs))
	for i, r := range recs {
		out[i] = cloneAccount(r.acct)
	}
	return out
}

// ordered returns records sorted by creation sequence. Caller holds the lock.
func (s *AccountStore) ordered() []*accountRecord {
	recs := make([]*accountRecord, 0, len(s.accounts))
	for _, r := range s.accounts {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
	return recs
}

// Clear removes all accounts (for testing).
func (s *AccountStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*accountRecord)
	s.nextSeq = 0
}

func cloneAccount(a account.Account) account.Account {
	logs := make([]account.UsageLog, len(a.UsageLogs))
	copy(logs, a.UsageLogs)
	a.UsageLogs = logs
	return a
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
