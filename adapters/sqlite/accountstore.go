package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/saasmon/domain/account"
	"github.com/artpar/saasmon/domain/analytics"
	"github.com/artpar/saasmon/ports"
)

// ErrNotFound is returned when an entity is not found.
var ErrNotFound = ports.ErrNotFound

// AccountStore implements ports.AccountStore using SQLite. Log pushes and
// pulls are single UPDATE statements over the JSON array column, so each
// mutation is atomic at document granularity with no cross-row coordination.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new SQLite account store.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// logDocument is the wire form of a usage log inside the usage_logs column.
type logDocument struct {
	ID        string `json:"id"`
	APICalls  int64  `json:"api_calls"`
	StorageMB int64  `json:"storage_mb"`
	Timestamp string `json:"timestamp"`
}

func encodeLog(l account.UsageLog) ([]byte, error) {
	return json.Marshal(logDocument{
		ID:        l.ID,
		APICalls:  l.APICalls,
		StorageMB: l.StorageMB,
		Timestamp: l.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

func decodeLogs(raw string) ([]account.UsageLog, error) {
	var docs []logDocument
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, fmt.Errorf("decode usage_logs: %w", err)
	}
	logs := make([]account.UsageLog, len(docs))
	for i, d := range docs {
		ts, err := time.Parse(time.RFC3339Nano, d.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("decode usage_logs timestamp: %w", err)
		}
		logs[i] = account.UsageLog{
			ID:        d.ID,
			APICalls:  d.APICalls,
			StorageMB: d.StorageMB,
			Timestamp: ts,
		}
	}
	return logs, nil
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, a account.Account) error {
	logs := []byte("[]")
	if len(a.UsageLogs) > 0 {
		encoded := make([]json.RawMessage, len(a.UsageLogs))
		for i, l := range a.UsageLogs {
			doc, err := encodeLog(l)
			if err != nil {
				return err
			}
			encoded[i] = doc
		}
		var err error
		logs, err = json.Marshal(encoded)
		if err != nil {
			return err
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, role, subscription_tier, account_status, usage_logs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID.Key(), a.Email, string(a.Role), string(a.SubscriptionTier), string(a.AccountStatus),
		string(logs), a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	return err
}

// Get retrieves an account with its full usage log sequence.
func (s *AccountStore) Get(ctx context.Context, id account.ID) (account.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, role, subscription_tier, account_status, usage_logs, created_at, updated_at
		FROM accounts
		WHERE id = ?
	`, id.Key())
	return scanAccount(row)
}

// List returns accounts ordered by creation sequence.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]account.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, role, subscription_tier, account_status, usage_logs, created_at, updated_at
		FROM accounts
		ORDER BY seq ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		a, err := scanAccountRows(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Count returns total account count.
func (s *AccountStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	return count, err
}

// Update applies the update's present fields in one field-set statement.
func (s *AccountStore) Update(ctx context.Context, id account.ID, u account.Update, now time.Time) error {
	set := "updated_at = ?"
	args := []interface{}{now.UTC()}
	if u.Email != nil {
		set += ", email = ?"
		args = append(args, *u.Email)
	}
	if u.SubscriptionTier != nil {
		set += ", subscription_tier = ?"
		args = append(args, string(*u.SubscriptionTier))
	}
	if u.AccountStatus != nil {
		set += ", account_status = ?"
		args = append(args, string(*u.AccountStatus))
	}
	args = append(args, id.Key())

	result, err := s.db.ExecContext(ctx, `UPDATE accounts SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	return requireMatch(result)
}

// Delete removes an account row; embedded logs go with it.
func (s *AccountStore) Delete(ctx context.Context, id account.ID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id.Key())
	if err != nil {
		return err
	}
	return requireMatch(result)
}

// AppendUsageLog pushes a log onto the JSON array in a single statement.
func (s *AccountStore) AppendUsageLog(ctx context.Context, id account.ID, l account.UsageLog, now time.Time) error {
	doc, err := encodeLog(l)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET usage_logs = json_insert(usage_logs, '$[#]', json(?)),
		    updated_at = ?
		WHERE id = ?
	`, string(doc), now.UTC(), id.Key())
	if err != nil {
		return err
	}
	return requireMatch(result)
}

// RemoveUsageLog rebuilds the array without the matching logs, in a single
// statement. An existing account with no matching log still matches the row,
// so the operation reports success.
func (s *AccountStore) RemoveUsageLog(ctx context.Context, id account.ID, logID string, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET usage_logs = (
			SELECT COALESCE(json_group_array(json(value)), '[]')
			FROM json_each(accounts.usage_logs)
			WHERE json_extract(value, '$.id') <> ?
		),
		    updated_at = ?
		WHERE id = ?
	`, logID, now.UTC(), id.Key())
	if err != nil {
		return err
	}
	return requireMatch(result)
}

// AverageAPICalls runs the group-by-average aggregation over the unwound
// usage_logs arrays. Accounts without logs drop out of the join.
func (s *AccountStore) AverageAPICalls(ctx context.Context) ([]analytics.AccountAverage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.email, a.subscription_tier,
		       AVG(json_extract(l.value, '$.api_calls')) AS avg_api_calls
		FROM accounts a, json_each(a.usage_logs) l
		GROUP BY a.seq
		ORDER BY avg_api_calls DESC, a.seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []analytics.AccountAverage
	for rows.Next() {
		var r analytics.AccountAverage
		var tier string
		if err := rows.Scan(&r.AccountID, &r.Email, &tier, &r.AverageAPICalls); err != nil {
			return nil, err
		}
		r.SubscriptionTier = account.Tier(tier)
		results = append(results, r)
	}
	return results, rows.Err()
}

// HighUsageLogs unwinds every account's log array and projects the entries
// strictly above threshold, in (creation order, log order).
func (s *AccountStore) HighUsageLogs(ctx context.Context, threshold int64) ([]analytics.HighUsageEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.email, a.subscription_tier,
		       json_extract(l.value, '$.api_calls'),
		       json_extract(l.value, '$.timestamp')
		FROM accounts a, json_each(a.usage_logs) l
		WHERE json_extract(l.value, '$.api_calls') > ?
		ORDER BY a.seq ASC, l.key ASC
	`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []analytics.HighUsageEntry
	for rows.Next() {
		var r analytics.HighUsageEntry
		var tier, ts string
		if err := rows.Scan(&r.AccountID, &r.Email, &tier, &r.APICalls, &ts); err != nil {
			return nil, err
		}
		r.SubscriptionTier = account.Tier(tier)
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("decode anomaly timestamp: %w", err)
		}
		r.Timestamp = parsed
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanAccount(row *sql.Row) (account.Account, error) {
	var a account.Account
	var id, role, tier, status, rawLogs string

	err := row.Scan(&id, &a.Email, &role, &tier, &status, &rawLogs, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, ErrNotFound
	}
	if err != nil {
		return account.Account{}, err
	}

	return buildAccount(&a, id, role, tier, status, rawLogs)
}

func scanAccountRows(rows *sql.Rows) (account.Account, error) {
	var a account.Account
	var id, role, tier, status, rawLogs string

	if err := rows.Scan(&id, &a.Email, &role, &tier, &status, &rawLogs, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return account.Account{}, err
	}

	return buildAccount(&a, id, role, tier, status, rawLogs)
}

func buildAccount(a *account.Account, id, role, tier, status, rawLogs string) (account.Account, error) {
	a.ID = account.ParseID(id)
	a.Role = account.Role(role)
	a.SubscriptionTier = account.Tier(tier)
	a.AccountStatus = account.Status(status)

	logs, err := decodeLogs(rawLogs)
	if err != nil {
		return account.Account{}, err
	}
	a.UsageLogs = logs
	return *a, nil
}

func requireMatch(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
