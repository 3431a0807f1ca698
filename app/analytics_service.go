package app

import (
	"context"

	"github.com/artpar/saasmon/domain/analytics"
	"github.com/artpar/saasmon/ports"
	"github.com/rs/zerolog"
)

// AnalyticsService answers the two read-only analytical queries. It never
// mutates store state; each query runs as a single consistent scan.
type AnalyticsService struct {
	store  ports.AccountStore
	logger zerolog.Logger
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(store ports.AccountStore, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, logger: logger}
}

// AverageAPICalls computes the per-account mean of api_calls across its logs,
// sorted descending. Accounts with no usage history are excluded.
func (s *AnalyticsService) AverageAPICalls(ctx context.Context) ([]analytics.AccountAverage, error) {
	results, err := s.store.AverageAPICalls(ctx)
	if err != nil {
		return nil, storageErr("average api calls", err)
	}
	s.logger.Debug().Int("accounts", len(results)).Msg("average usage computed")
	return results, nil
}

// HighUsage flags every log entry strictly above the fixed threshold.
func (s *AnalyticsService) HighUsage(ctx context.Context) ([]analytics.HighUsageEntry, error) {
	results, err := s.store.HighUsageLogs(ctx, analytics.HighUsageThreshold)
	if err != nil {
		return nil, storageErr("high usage scan", err)
	}
	s.logger.Debug().Int("anomalies", len(results)).Msg("high usage scan computed")
	return results, nil
}
