// Package analytics provides read-only computations over account usage
// history. All functions are pure - no side effects.
package analytics

import (
	"sort"
	"time"

	"github.com/artpar/saasmon/domain/account"
)

// HighUsageThreshold is the per-log api_calls value above which a log entry is
// flagged as anomalous. The comparison is strictly greater-than: a log at
// exactly the threshold is not flagged.
const HighUsageThreshold int64 = 50000

// AccountAverage is the per-account mean of api_calls across its usage logs.
type AccountAverage struct {
	AccountID        string
	Email            string
	SubscriptionTier account.Tier
	AverageAPICalls  float64
}

// HighUsageEntry is one anomalous usage log, denormalized with its owning
// account's identity fields.
type HighUsageEntry struct {
	AccountID        string
	Email            string
	SubscriptionTier account.Tier
	APICalls         int64
	Timestamp        time.Time
}

// AverageAPICalls folds every account's usage history into its arithmetic mean
// of api_calls. Accounts with no logs are excluded - a mean over an empty set
// is undefined, not zero. Results are sorted by average descending; ties keep
// the input account order (stable sort).
func AverageAPICalls(accounts []account.Account) []AccountAverage {
	results := make([]AccountAverage, 0, len(accounts))
	for _, a := range accounts {
		if len(a.UsageLogs) == 0 {
			continue
		}
		var total int64
		for _, l := range a.UsageLogs {
			total += l.APICalls
		}
		results = append(results, AccountAverage{
			AccountID:        a.ID.Key(),
			Email:            a.Email,
			SubscriptionTier: a.SubscriptionTier,
			AverageAPICalls:  float64(total) / float64(len(a.UsageLogs)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AverageAPICalls > results[j].AverageAPICalls
	})
	return results
}

// HighUsage scans every usage log in every account and emits one entry per log
// whose api_calls strictly exceeds threshold. No aggregation: a flat
// filter-and-project over the (account, log) pairs, preserving account order
// and log order within each account.
func HighUsage(accounts []account.Account, threshold int64) []HighUsageEntry {
	var results []HighUsageEntry
	for _, a := range accounts {
		for _, l := range a.UsageLogs {
			if l.APICalls > threshold {
				results = append(results, HighUsageEntry{
					AccountID:        a.ID.Key(),
					Email:            a.Email,
					SubscriptionTier: a.SubscriptionTier,
					APICalls:         l.APICalls,
					Timestamp:        l.Timestamp,
				})
			}
		}
	}
	return results
}
