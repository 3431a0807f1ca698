// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/saasmon/domain/account"
	"github.com/artpar/saasmon/domain/analytics"
)

// ErrNotFound is returned by stores when no document matches. Adapters share
// this sentinel so callers can test identity with errors.Is regardless of
// which backend is wired.
var ErrNotFound = errors.New("not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// AccountStore persists account documents with their embedded usage logs.
// Every mutation is a single document-level write: the store's own atomicity is
// the only concurrency control, and a failed write leaves the document
// unchanged. Implementations index on the serialized form of the account ID so
// both identifier encodings resolve.
type AccountStore interface {
	// Create stores a new account.
	Create(ctx context.Context, a account.Account) error

	// Get retrieves an account with its full usage log sequence.
	Get(ctx context.Context, id account.ID) (account.Account, error)

	// List returns accounts ordered by creation sequence, so pages stay
	// well-defined under concurrent writes.
	List(ctx context.Context, limit, offset int) ([]account.Account, error)

	// Count returns the total account count.
	Count(ctx context.Context) (int, error)

	// Update applies the update's present fields to a single account document.
	Update(ctx context.Context, id account.ID, u account.Update, now time.Time) error

	// Delete removes an account and its embedded logs atomically.
	Delete(ctx context.Context, id account.ID) error

	// AppendUsageLog pushes a minted log onto the account's sequence.
	AppendUsageLog(ctx context.Context, id account.ID, l account.UsageLog, now time.Time) error

	// RemoveUsageLog pulls all logs whose id equals logID from the account's
	// sequence. Removing a log id that matches nothing on an existing account
	// is a no-op success.
	RemoveUsageLog(ctx context.Context, id account.ID, logID string, now time.Time) error

	// AverageAPICalls computes the per-account mean of api_calls, sorted
	// descending with creation order breaking ties. Accounts without logs are
	// excluded.
	AverageAPICalls(ctx context.Context) ([]analytics.AccountAverage, error)

	// HighUsageLogs returns every log strictly above threshold, denormalized
	// with its account, in (creation order, log order) sequence.
	HighUsageLogs(ctx context.Context, threshold int64) ([]analytics.HighUsageEntry, error)
}
