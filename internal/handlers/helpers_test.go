package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"bankledger/internal/config"
	"bankledger/internal/database"
	"bankledger/internal/events"
	"bankledger/internal/repositories"
	"bankledger/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type noopMetrics struct{}

func (noopMetrics) IncrementCounter(name string, tags map[string]string)           {}
func (noopMetrics) RecordProcessingTime(name string, duration time.Duration)       {}
func (noopMetrics) RecordGauge(name string, value float64, tags map[string]string) {}

// handlerEnv wires handlers against sqlite-backed services, no mocks.
type handlerEnv struct {
	db          *database.DB
	echo        *echo.Echo
	accountRepo repositories.AccountRepositoryInterface
	auditRepo   repositories.AuditLogRepositoryInterface
	ledger      services.LedgerServiceInterface
	pin         services.PinServiceInterface
	scheduler   services.SchedulerServiceInterface
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := database.SetupTestDB(t)

	accountRepo := repositories.NewAccountRepository(db.DB)
	entryRepo := repositories.NewLedgerEntryRepository(db.DB)
	schedRepo := repositories.NewScheduledTransactionRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)

	ledgerCfg := &config.LedgerConfig{
		SavingsInterestRate:  decimal.NewFromFloat(4.0),
		CheckingInterestRate: decimal.NewFromFloat(1.0),
		FixedInterestRate:    decimal.NewFromFloat(6.5),
		BusinessInterestRate: decimal.NewFromFloat(2.5),
		BusinessDailyLimit:   decimal.NewFromInt(50000),
		DefaultDailyLimit:    decimal.NewFromInt(20000),
		ReversalWindow:       24 * time.Hour,
		SchedulerInterval:    time.Hour,
	}
	securityCfg := &config.SecurityConfig{
		BCryptCost:         bcrypt.MinCost,
		RateLimitPerSecond: 5,
		MaxFailedAttempts:  3,
		PinLength:          4,
	}

	auditLogger := services.NewAuditLogger(slog.Default())
	ledger := services.NewLedgerService(
		db.DB, accountRepo, entryRepo, schedRepo, auditRepo,
		ledgerCfg, auditLogger, noopMetrics{}, events.NewNoopPublisher(),
	)
	pin := services.NewPinService(accountRepo, auditRepo, auditLogger, securityCfg)
	scheduler := services.NewSchedulerService(
		schedRepo, auditRepo, ledger, auditLogger, noopMetrics{}, time.Hour,
	)

	e := echo.New()
	e.Validator = NewValidator()

	return &handlerEnv{
		db:          db,
		echo:        e,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		ledger:      ledger,
		pin:         pin,
		scheduler:   scheduler,
	}
}

// newContext builds an echo context with a JSON body and recorder.
func (env *handlerEnv) newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}

// accountContext is newContext plus the accountNo path parameter.
func (env *handlerEnv) accountContext(method, target string, accountNo int64, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := env.newContext(method, target, body)
	c.SetParamNames("accountNo")
	c.SetParamValues(strconv.FormatInt(accountNo, 10))
	return c, rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// errorCode pulls the taxonomy code out of an error response body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeJSON(t, rec, &resp)
	return resp.Error.Code
}
