package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/artpar/saasmon/adapters/clock"
	"github.com/artpar/saasmon/adapters/idgen"
	"github.com/artpar/saasmon/adapters/memory"
	"github.com/artpar/saasmon/domain/account"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*AccountService, *memory.AccountStore, *clock.Fake) {
	t.Helper()
	store := memory.NewAccountStore()
	clk := clock.NewFake(testNow)
	svc := NewAccountService(store, idgen.NewSequential("id-"), clk, zerolog.Nop())
	return svc, store, clk
}

func mustCreate(t *testing.T, svc *AccountService, email string) account.Account {
	t.Helper()
	a, err := svc.Create(context.Background(), CreateAccountParams{Email: email})
	if err != nil {
		t.Fatalf("Create(%q): %v", email, err)
	}
	return a
}

func i64(v int64) *int64   { return &v }
func str(v string) *string { return &v }

func TestCreateDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	a, err := svc.Create(context.Background(), CreateAccountParams{Email: "dev@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if a.Role != account.RoleUser {
		t.Errorf("Role = %q, want user", a.Role)
	}
	if a.SubscriptionTier != account.TierFree {
		t.Errorf("SubscriptionTier = %q, want free", a.SubscriptionTier)
	}
	if a.AccountStatus != account.StatusActive {
		t.Errorf("AccountStatus = %q, want active", a.AccountStatus)
	}
	if len(a.UsageLogs) != 0 {
		t.Errorf("len(UsageLogs) = %d, want 0", len(a.UsageLogs))
	}
	if !a.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", a.CreatedAt, testNow)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		p    CreateAccountParams
	}{
		{"missing email", CreateAccountParams{}},
		{"bad role", CreateAccountParams{Email: "x@example.com", Role: "root"}},
		{"bad tier", CreateAccountParams{Email: "x@example.com", SubscriptionTier: "platinum"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.p)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	// A malformed id resolves to a literal lookup and misses; never a 400-class
	// error.
	_, err := svc.Get(context.Background(), "not-a-real-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetCaseInsensitiveGeneratedID(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	a := account.New(account.ParseID("507f1f77bcf86cd799439011"), "hex@example.com", "", "", testNow)
	if err := store.Create(ctx, a); err != nil {
		t.Fatalf("store.Create: %v", err)
	}

	got, err := svc.Get(ctx, "507F1F77BCF86CD799439011")
	if err != nil {
		t.Fatalf("Get with uppercase hex: %v", err)
	}
	if got.Email != "hex@example.com" {
		t.Errorf("Email = %q, want hex@example.com", got.Email)
	}
}

func TestListPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created := make([]account.Account, 0, 12)
	for i := 0; i < 12; i++ {
		created = append(created, mustCreate(t, svc, "user"+string(rune('a'+i))+"@example.com"))
	}

	page2, err := svc.List(ctx, 2, 5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page2) != 5 {
		t.Fatalf("len(page2) = %d, want 5", len(page2))
	}
	for i, a := range page2 {
		want := created[5+i].ID
		if a.ID != want {
			t.Errorf("page2[%d].ID = %v, want %v", i, a.ID, want)
		}
	}

	page3, err := svc.List(ctx, 3, 5)
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if len(page3) != 2 {
		t.Errorf("len(page3) = %d, want 2 (partial last page)", len(page3))
	}

	page4, err := svc.List(ctx, 4, 5)
	if err != nil {
		t.Fatalf("List page 4: %v", err)
	}
	if len(page4) != 0 {
		t.Errorf("len(page4) = %d, want 0 (past the end)", len(page4))
	}
}

func TestListValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, tt := range []struct{ pn, ps int }{{0, 5}, {-1, 5}, {1, 0}, {1, -3}} {
		_, err := svc.List(ctx, tt.pn, tt.ps)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("List(%d, %d) err = %v, want ValidationError", tt.pn, tt.ps, err)
		}
	}
}

func TestUpdate(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, "old@example.com")
	clk.Advance(time.Hour)

	got, err := svc.Update(ctx, a.ID.Key(), UpdateAccountParams{
		Email:            str("new@example.com"),
		SubscriptionTier: str("pro"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Email != "new@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
	if got.SubscriptionTier != account.TierPro {
		t.Errorf("SubscriptionTier = %q, want pro", got.SubscriptionTier)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt = %v should be after CreatedAt = %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "dev@example.com")

	tests := []struct {
		name string
		p    UpdateAccountParams
	}{
		{"no fields", UpdateAccountParams{}},
		{"empty email", UpdateAccountParams{Email: str("")}},
		{"bad tier", UpdateAccountParams{SubscriptionTier: str("platinum")}},
		{"bad status", UpdateAccountParams{AccountStatus: str("banned")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, a.ID.Key(), tt.p)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}

	// Validation runs before the store is touched; the account is unchanged.
	got, err := svc.Get(ctx, a.ID.Key())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "dev@example.com" || got.SubscriptionTier != account.TierFree {
		t.Errorf("account mutated by rejected updates: %+v", got)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", UpdateAccountParams{Email: str("x@example.com")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "gone@example.com")

	if err := svc.Delete(ctx, a.ID.Key()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID.Key()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	// Second delete misses.
	if err := svc.Delete(ctx, a.ID.Key()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: err = %v, want ErrNotFound", err)
	}
}

func TestAppendThenListUsageLogs(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "dev@example.com")

	l1, err := svc.AppendUsageLog(ctx, a.ID.Key(), AppendUsageParams{APICalls: i64(100), StorageMB: i64(200)})
	if err != nil {
		t.Fatalf("AppendUsageLog: %v", err)
	}
	if l1.ID == "" {
		t.Error("log ID should be minted")
	}
	if !l1.Timestamp.Equal(testNow) {
		t.Errorf("defaulted Timestamp = %v, want clock now %v", l1.Timestamp, testNow)
	}

	clk.Advance(time.Minute)
	explicit := testNow.Add(-24 * time.Hour)
	l2, err := svc.AppendUsageLog(ctx, a.ID.Key(), AppendUsageParams{
		APICalls: i64(300), StorageMB: i64(400), Timestamp: &explicit,
	})
	if err != nil {
		t.Fatalf("AppendUsageLog: %v", err)
	}
	if !l2.Timestamp.Equal(explicit) {
		t.Errorf("explicit Timestamp = %v, want %v", l2.Timestamp, explicit)
	}

	logs, err := svc.ListUsageLogs(ctx, a.ID.Key())
	if err != nil {
		t.Fatalf("ListUsageLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(logs))
	}
	if logs[0].ID != l1.ID || logs[1].ID != l2.ID {
		t.Errorf("append order not preserved: %q, %q", logs[0].ID, logs[1].ID)
	}
}

func TestAppendUsageLogValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "dev@example.com")

	tests := []struct {
		name string
		p    AppendUsageParams
	}{
		{"missing api_calls", AppendUsageParams{StorageMB: i64(1)}},
		{"missing storage_mb", AppendUsageParams{APICalls: i64(1)}},
		{"negative api_calls", AppendUsageParams{APICalls: i64(-1), StorageMB: i64(1)}},
		{"negative storage_mb", AppendUsageParams{APICalls: i64(1), StorageMB: i64(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AppendUsageLog(ctx, a.ID.Key(), tt.p)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestAppendUsageLogZeroValues(t *testing.T) {
	svc, _, _ := newTestService(t)
	a := mustCreate(t, svc, "dev@example.com")

	// Zero is valid usage; only absence and negatives are rejected.
	if _, err := svc.AppendUsageLog(context.Background(), a.ID.Key(), AppendUsageParams{
		APICalls: i64(0), StorageMB: i64(0),
	}); err != nil {
		t.Errorf("AppendUsageLog with zeros: %v", err)
	}
}

func TestAppendUsageLogNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AppendUsageLog(context.Background(), "missing", AppendUsageParams{
		APICalls: i64(1), StorageMB: i64(1),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveUsageLogIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "dev@example.com")

	l, err := svc.AppendUsageLog(ctx, a.ID.Key(), AppendUsageParams{APICalls: i64(10), StorageMB: i64(20)})
	if err != nil {
		t.Fatalf("AppendUsageLog: %v", err)
	}

	if err := svc.RemoveUsageLog(ctx, a.ID.Key(), l.ID); err != nil {
		t.Fatalf("RemoveUsageLog: %v", err)
	}
	// Removing the same log again succeeds while the account exists.
	if err := svc.RemoveUsageLog(ctx, a.ID.Key(), l.ID); err != nil {
		t.Errorf("second RemoveUsageLog: %v, want nil", err)
	}

	logs, err := svc.ListUsageLogs(ctx, a.ID.Key())
	if err != nil {
		t.Fatalf("ListUsageLogs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("len(logs) = %d, want 0", len(logs))
	}

	// Missing account is still a miss.
	if err := svc.RemoveUsageLog(ctx, "missing", l.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	n, err := svc.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Count = %d, %v; want 0, nil", n, err)
	}

	mustCreate(t, svc, "a@example.com")
	mustCreate(t, svc, "b@example.com")

	n, err = svc.Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("Count = %d, %v; want 2, nil", n, err)
	}
}
