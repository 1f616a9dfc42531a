package services

import (
	"log/slog"
	"time"

	"bankledger/internal/config"
	"bankledger/internal/database"
	"bankledger/internal/events"
	"bankledger/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// noopMetrics satisfies MetricsRecorderInterface without touching the
// global Prometheus registry, which tolerates only one registration per
// metric name.
type noopMetrics struct{}

func (noopMetrics) IncrementCounter(name string, tags map[string]string)        {}
func (noopMetrics) RecordProcessingTime(name string, duration time.Duration)    {}
func (noopMetrics) RecordGauge(name string, value float64, tags map[string]string) {}

func testLedgerConfig() *config.LedgerConfig {
	return &config.LedgerConfig{
		SavingsInterestRate:  decimal.NewFromFloat(4.0),
		CheckingInterestRate: decimal.NewFromFloat(1.0),
		FixedInterestRate:    decimal.NewFromFloat(6.5),
		BusinessInterestRate: decimal.NewFromFloat(2.5),
		BusinessDailyLimit:   decimal.NewFromInt(50000),
		DefaultDailyLimit:    decimal.NewFromInt(20000),
		ReversalWindow:       24 * time.Hour,
		SchedulerInterval:    time.Hour,
	}
}

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		BCryptCost:         bcrypt.MinCost,
		RateLimitPerSecond: 5,
		MaxFailedAttempts:  3,
		PinLength:          4,
	}
}

// testEnv wires sqlite-backed repositories and a ledger engine with a
// substitutable clock.
type testEnv struct {
	db          *database.DB
	accountRepo repositories.AccountRepositoryInterface
	entryRepo   repositories.LedgerEntryRepositoryInterface
	schedRepo   repositories.ScheduledTransactionRepositoryInterface
	auditRepo   repositories.AuditLogRepositoryInterface
	ledger      *LedgerService
	clock       time.Time
}

func newTestEnv(db *database.DB) *testEnv {
	env := &testEnv{
		db:          db,
		accountRepo: repositories.NewAccountRepository(db.DB),
		entryRepo:   repositories.NewLedgerEntryRepository(db.DB),
		schedRepo:   repositories.NewScheduledTransactionRepository(db.DB),
		auditRepo:   repositories.NewAuditLogRepository(db.DB),
		clock:       time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}

	auditLogger := NewAuditLogger(slog.Default())
	env.ledger = NewLedgerService(
		db.DB,
		env.accountRepo,
		env.entryRepo,
		env.schedRepo,
		env.auditRepo,
		testLedgerConfig(),
		auditLogger,
		noopMetrics{},
		events.NewNoopPublisher(),
	).(*LedgerService)
	env.ledger.now = func() time.Time { return env.clock }

	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.clock = env.clock.Add(d)
}
