package api

import (
	"net/http"
	"time"

	"github.com/artpar/saasmon/domain/analytics"
)

// AverageUsageResponse is one per-account average record.
type AverageUsageResponse struct {
	AccountID        string  `json:"account_id"`
	Email            string  `json:"email"`
	SubscriptionTier string  `json:"subscription_tier"`
	AverageAPICalls  float64 `json:"average_api_calls"`
}

// AnomalyResponse is one flagged high-usage log entry.
type AnomalyResponse struct {
	AccountID        string `json:"account_id"`
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscription_tier"`
	APICalls         int64  `json:"api_calls"`
	Timestamp        string `json:"timestamp"`
}

// AverageUsage returns the per-account mean of api_calls, highest first.
// Accounts with no usage history are excluded.
func (h *Handler) AverageUsage(w http.ResponseWriter, r *http.Request) {
	results, err := h.analytics.AverageAPICalls(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := make([]AverageUsageResponse, len(results))
	for i, res := range results {
		response[i] = AverageUsageResponse{
			AccountID:        res.AccountID,
			Email:            res.Email,
			SubscriptionTier: string(res.SubscriptionTier),
			AverageAPICalls:  res.AverageAPICalls,
		}
	}

	if h.metrics != nil {
		h.metrics.AnalyticsQueries.WithLabelValues("average_usage").Inc()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": response,
		"total":   len(response),
	})
}

// Anomalies returns every usage log strictly above the fixed threshold.
func (h *Handler) Anomalies(w http.ResponseWriter, r *http.Request) {
	results, err := h.analytics.HighUsage(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := make([]AnomalyResponse, len(results))
	for i, res := range results {
		response[i] = AnomalyResponse{
			AccountID:        res.AccountID,
			Email:            res.Email,
			SubscriptionTier: string(res.SubscriptionTier),
			APICalls:         res.APICalls,
			Timestamp:        res.Timestamp.Format(time.RFC3339),
		}
	}

	if h.metrics != nil {
		h.metrics.AnalyticsQueries.WithLabelValues("anomalies").Inc()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":   response,
		"total":     len(response),
		"threshold": analytics.HighUsageThreshold,
	})
}
