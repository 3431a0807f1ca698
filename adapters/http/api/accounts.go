package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/saasmon/app"
	"github.com/artpar/saasmon/domain/account"
	"github.com/go-chi/chi/v5"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string             `json:"id"`
	Email            string             `json:"email"`
	Role             string             `json:"role"`
	SubscriptionTier string             `json:"subscription_tier"`
	AccountStatus    string             `json:"account_status"`
	UsageLogs        []UsageLogResponse `json:"usage_logs"`
	CreatedAt        string             `json:"created_at"`
	UpdatedAt        string             `json:"updated_at"`
}

// UsageLogResponse represents a usage log in API responses.
type UsageLogResponse struct {
	ID        string `json:"id"`
	APICalls  int64  `json:"api_calls"`
	StorageMB int64  `json:"storage_mb"`
	Timestamp string `json:"timestamp"`
}

// CreateAccountRequest represents a request to create an account.
// account_status and usage_logs are not settable at creation; unknown payload
// fields are ignored.
type CreateAccountRequest struct {
	Email            string `json:"email"`
	Role             string `json:"role,omitempty"`
	SubscriptionTier string `json:"subscription_tier,omitempty"`
}

// UpdateAccountRequest represents a request to update an account. Only the
// recognized fields apply; absent fields are left untouched.
type UpdateAccountRequest struct {
	Email            *string `json:"email,omitempty"`
	SubscriptionTier *string `json:"subscription_tier,omitempty"`
	AccountStatus    *string `json:"account_status,omitempty"`
}

// AppendUsageLogRequest represents a usage log payload. Both numeric fields
// are required; timestamp defaults to append time.
type AppendUsageLogRequest struct {
	APICalls  *int64     `json:"api_calls"`
	StorageMB *int64     `json:"storage_mb"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// CreateAccount creates a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	a, err := h.accounts.Create(r.Context(), app.CreateAccountParams{
		Email:            req.Email,
		Role:             req.Role,
		SubscriptionTier: req.SubscriptionTier,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.AccountsCreated.Inc()
	}
	writeJSON(w, http.StatusCreated, accountToResponse(a))
}

// ListAccounts returns a page of accounts in stable creation order.
// Query parameters: pn (page number, default 1), ps (page size, default 5).
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	pn, err := parsePageQuery(r, "pn", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "pn must be an integer >= 1")
		return
	}
	ps, err := parsePageQuery(r, "ps", 5)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "ps must be an integer >= 1")
		return
	}

	accounts, err := h.accounts.List(r.Context(), pn, ps)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	total, err := h.accounts.Count(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		response[i] = accountToResponse(a)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accounts":  response,
		"total":     total,
		"page":      pn,
		"page_size": ps,
	})
}

// GetAccount returns a single account by either identifier encoding.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountToResponse(a))
}

// UpdateAccount applies the recognized fields present in the payload.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	a, err := h.accounts.Update(r.Context(), chi.URLParam(r, "id"), app.UpdateAccountParams{
		Email:            req.Email,
		SubscriptionTier: req.SubscriptionTier,
		AccountStatus:    req.AccountStatus,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountToResponse(a))
}

// DeleteAccount removes an account and its embedded logs.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.AccountsDeleted.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AppendUsageLog mints a new usage log and appends it to the account.
func (h *Handler) AppendUsageLog(w http.ResponseWriter, r *http.Request) {
	var req AppendUsageLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	l, err := h.accounts.AppendUsageLog(r.Context(), chi.URLParam(r, "id"), app.AppendUsageParams{
		APICalls:  req.APICalls,
		StorageMB: req.StorageMB,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.UsageLogsAppended.Inc()
	}
	writeJSON(w, http.StatusCreated, usageLogToResponse(l))
}

// ListUsageLogs returns the account's full log sequence in append order.
func (h *Handler) ListUsageLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.accounts.ListUsageLogs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response := make([]UsageLogResponse, len(logs))
	for i, l := range logs {
		response[i] = usageLogToResponse(l)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"usage_logs": response,
		"total":      len(response),
	})
}

// RemoveUsageLog removes the matching log; no match on an existing account is
// still a success.
func (h *Handler) RemoveUsageLog(w http.ResponseWriter, r *http.Request) {
	err := h.accounts.RemoveUsageLog(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "logID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.UsageLogsRemoved.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func accountToResponse(a account.Account) AccountResponse {
	logs := make([]UsageLogResponse, len(a.UsageLogs))
	for i, l := range a.UsageLogs {
		logs[i] = usageLogToResponse(l)
	}
	return AccountResponse{
		ID:               a.ID.Key(),
		Email:            a.Email,
		Role:             string(a.Role),
		SubscriptionTier: string(a.SubscriptionTier),
		AccountStatus:    string(a.AccountStatus),
		UsageLogs:        logs,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        a.UpdatedAt.Format(time.RFC3339),
	}
}

func usageLogToResponse(l account.UsageLog) UsageLogResponse {
	return UsageLogResponse{
		ID:        l.ID,
		APICalls:  l.APICalls,
		StorageMB: l.StorageMB,
		Timestamp: l.Timestamp.Format(time.RFC3339),
	}
}

// parsePageQuery reads a pagination parameter; absent means default, anything
// that is not an integer >= 1 is an error.
func parsePageQuery(r *http.Request, name string, defaultVal int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, strconv.ErrRange
	}
	return v, nil
}
