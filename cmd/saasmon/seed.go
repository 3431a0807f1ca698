package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/artpar/saasmon/adapters/clock"
	"github.com/artpar/saasmon/adapters/idgen"
	"github.com/artpar/saasmon/app"
	"github.com/artpar/saasmon/bootstrap"
	"github.com/artpar/saasmon/config"
	"github.com/artpar/saasmon/domain/account"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	seedAccounts int
	seedMinLogs  int
	seedMaxLogs  int
	seedRandSeed int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with synthetic accounts and usage history",
	Long: `Generate synthetic SaaS accounts with realistic usage logs.

Each account gets a weighted subscription tier and lifecycle status, a
handful of usage logs with tier-appropriate API call and storage ranges
spread over the last 30 days, and gradually growing usage. One enterprise
account receives an extreme usage spike so anomaly detection has something
to find.

Examples:
  saasmon seed
  saasmon seed --accounts 50 --rand-seed 42`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedAccounts, "accounts", 15, "number of accounts to generate")
	seedCmd.Flags().IntVar(&seedMinLogs, "min-logs", 3, "minimum usage logs per account")
	seedCmd.Flags().IntVar(&seedMaxLogs, "max-logs", 6, "maximum usage logs per account")
	seedCmd.Flags().Int64Var(&seedRandSeed, "rand-seed", 0, "random seed (0 = time-based)")
}

// tierRange models realistic per-tier usage bounds.
type tierRange struct {
	apiMin, apiMax         int64
	storageMin, storageMax int64
}

var tierRanges = map[account.Tier]tierRange{
	account.TierFree:       {apiMin: 50, apiMax: 500, storageMin: 100, storageMax: 1000},
	account.TierPro:        {apiMin: 500, apiMax: 5000, storageMin: 1000, storageMax: 5000},
	account.TierEnterprise: {apiMin: 5000, apiMax: 20000, storageMin: 5000, storageMax: 50000},
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedMinLogs < 0 || seedMaxLogs < seedMinLogs {
		return fmt.Errorf("invalid log range: min=%d max=%d", seedMinLogs, seedMaxLogs)
	}

	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	store, db, err := bootstrap.OpenStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("error opening store: %w", err)
	}
	if db != nil {
		defer db.Close()
	}

	rng := rand.New(rand.NewSource(seedRandSeed))
	if seedRandSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	svc := app.NewAccountService(store, idgen.NewObjectID(), clock.Real{}, zerolog.Nop())
	ctx := context.Background()

	var enterprise []string
	for i := 1; i <= seedAccounts; i++ {
		tier := pickTier(rng)
		role := account.RoleUser
		if rng.Float64() < 0.1 {
			role = account.RoleAdmin
		}

		a, err := svc.Create(ctx, app.CreateAccountParams{
			Email:            fmt.Sprintf("user%d@example.com", i),
			Role:             string(role),
			SubscriptionTier: string(tier),
		})
		if err != nil {
			return fmt.Errorf("create account %d: %w", i, err)
		}

		if status := pickStatus(rng); status != account.StatusActive {
			s := string(status)
			if _, err := svc.Update(ctx, a.ID.Key(), app.UpdateAccountParams{AccountStatus: &s}); err != nil {
				return fmt.Errorf("set status for account %d: %w", i, err)
			}
		}

		// Gradual usage growth across the account's history.
		growth := 1.0
		for n := seedMinLogs + rng.Intn(seedMaxLogs-seedMinLogs+1); n > 0; n-- {
			growth *= 1.05
			calls, storage := randomUsage(rng, tier, growth)
			ts := time.Now().UTC().AddDate(0, 0, -rng.Intn(31))
			if _, err := svc.AppendUsageLog(ctx, a.ID.Key(), app.AppendUsageParams{
				APICalls:  &calls,
				StorageMB: &storage,
				Timestamp: &ts,
			}); err != nil {
				return fmt.Errorf("append usage for account %d: %w", i, err)
			}
		}

		if tier == account.TierEnterprise {
			enterprise = append(enterprise, a.ID.Key())
		}
	}

	// One controlled anomaly so the high-usage scan has a hit.
	if len(enterprise) > 0 {
		target := enterprise[rng.Intn(len(enterprise))]
		calls, storage := int64(120000), int64(200000)
		ts := time.Now().UTC()
		if _, err := svc.AppendUsageLog(ctx, target, app.AppendUsageParams{
			APICalls:  &calls,
			StorageMB: &storage,
			Timestamp: &ts,
		}); err != nil {
			return fmt.Errorf("inject anomaly: %w", err)
		}
	}

	fmt.Printf("Seeded %d accounts (%d enterprise)\n", seedAccounts, len(enterprise))
	return nil
}

func pickTier(rng *rand.Rand) account.Tier {
	switch r := rng.Float64(); {
	case r < 0.5:
		return account.TierFree
	case r < 0.85:
		return account.TierPro
	default:
		return account.TierEnterprise
	}
}

func pickStatus(rng *rand.Rand) account.Status {
	switch r := rng.Float64(); {
	case r < 0.8:
		return account.StatusActive
	case r < 0.9:
		return account.StatusInactive
	default:
		return account.StatusSuspended
	}
}

func randomUsage(rng *rand.Rand, tier account.Tier, growth float64) (calls, storage int64) {
	tr := tierRanges[tier]
	calls = int64(float64(tr.apiMin+rng.Int63n(tr.apiMax-tr.apiMin+1)) * growth)
	storage = int64(float64(tr.storageMin+rng.Int63n(tr.storageMax-tr.storageMin+1)) * growth)
	return calls, storage
}
