package services

import (
	"context"
	"log/slog"
	"time"
)

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogOperationStarted(ctx context.Context, operation string, accountNo int64) {
	al.logger.InfoContext(ctx, "ledger operation started",
		slog.String("event_type", "operation_started"),
		slog.String("operation", operation),
		slog.Int64("account_no", accountNo),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogOperationCompleted(ctx context.Context, operation string, accountNo int64, entryID int64, durationMs int64) {
	al.logger.InfoContext(ctx, "ledger operation completed",
		slog.String("event_type", "operation_completed"),
		slog.String("operation", operation),
		slog.Int64("account_no", accountNo),
		slog.Int64("entry_id", entryID),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogOperationFailed(ctx context.Context, operation string, accountNo int64, errorMsg string) {
	al.logger.WarnContext(ctx, "ledger operation failed",
		slog.String("event_type", "operation_failed"),
		slog.String("operation", operation),
		slog.Int64("account_no", accountNo),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogBalanceChange(ctx context.Context, accountNo int64, oldBalance, newBalance string, entryID int64) {
	al.logger.InfoContext(ctx, "balance change",
		slog.String("event_type", "balance_change"),
		slog.Int64("account_no", accountNo),
		slog.String("old_balance", oldBalance),
		slog.String("new_balance", newBalance),
		slog.Int64("entry_id", entryID),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogReversal(ctx context.Context, accountNo, originalEntryID, reversalEntryID int64) {
	al.logger.InfoContext(ctx, "entry reversed",
		slog.String("event_type", "entry_reversed"),
		slog.Int64("account_no", accountNo),
		slog.Int64("original_entry_id", originalEntryID),
		slog.Int64("reversal_entry_id", reversalEntryID),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogScheduleExecuted(ctx context.Context, scheduleID, accountNo int64, kind string) {
	al.logger.InfoContext(ctx, "scheduled transaction executed",
		slog.String("event_type", "schedule_executed"),
		slog.Int64("schedule_id", scheduleID),
		slog.Int64("account_no", accountNo),
		slog.String("kind", kind),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogScheduleFailed(ctx context.Context, scheduleID, accountNo int64, kind string, errorMsg string, willRetry bool) {
	al.logger.WarnContext(ctx, "scheduled transaction failed",
		slog.String("event_type", "schedule_failed"),
		slog.Int64("schedule_id", scheduleID),
		slog.Int64("account_no", accountNo),
		slog.String("kind", kind),
		slog.String("error", errorMsg),
		slog.Bool("will_retry", willRetry),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogAccountLocked(ctx context.Context, accountNo int64, failedAttempts int) {
	al.logger.WarnContext(ctx, "account locked",
		slog.String("event_type", "account_locked"),
		slog.Int64("account_no", accountNo),
		slog.Int("failed_attempts", failedAttempts),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value("correlation_id").(string); ok {
		return correlationID
	}

	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}

	return ""
}
