package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduledTransaction_Validate(t *testing.T) {
	future := time.Now().AddDate(0, 0, 7)

	tests := []struct {
		name    string
		sched   ScheduledTransaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid scheduled deposit",
			sched: ScheduledTransaction{
				FromAccount:   1001,
				Amount:        decimal.NewFromFloat(250.00),
				ScheduledDate: future,
				Kind:          ScheduleKindDeposit,
			},
			wantErr: false,
		},
		{
			name: "valid scheduled transfer",
			sched: ScheduledTransaction{
				FromAccount:   1001,
				ToAccount:     1002,
				Amount:        decimal.NewFromFloat(100.00),
				ScheduledDate: future,
				Kind:          ScheduleKindTransfer,
			},
			wantErr: false,
		},
		{
			name: "missing source account",
			sched: ScheduledTransaction{
				Amount:        decimal.NewFromFloat(100.00),
				ScheduledDate: future,
				Kind:          ScheduleKindWithdraw,
			},
			wantErr: true,
			errMsg:  "source account is required",
		},
		{
			name: "invalid kind",
			sched: ScheduledTransaction{
				FromAccount:   1001,
				Amount:        decimal.NewFromFloat(100.00),
				ScheduledDate: future,
				Kind:          "PAYMENT",
			},
			wantErr: true,
			errMsg:  "invalid scheduled transaction kind",
		},
		{
			name: "non-positive amount",
			sched: ScheduledTransaction{
				FromAccount:   1001,
				Amount:        decimal.Zero,
				ScheduledDate: future,
				Kind:          ScheduleKindDeposit,
			},
			wantErr: true,
			errMsg:  "amount must be positive",
		},
		{
			name: "transfer without destination",
			sched: ScheduledTransaction{
				FromAccount:   1001,
				Amount:        decimal.NewFromFloat(100.00),
				ScheduledDate: future,
				Kind:          ScheduleKindTransfer,
			},
			wantErr: true,
			errMsg:  "requires a destination account",
		},
		{
			name: "transfer to same account",
			sched: ScheduledTransaction{
				FromAccount:   1001,
				ToAccount:     1001,
				Amount:        decimal.NewFromFloat(100.00),
				ScheduledDate: future,
				Kind:          ScheduleKindTransfer,
			},
			wantErr: true,
			errMsg:  "same account",
		},
		{
			name: "destination set on a withdraw",
			sched: ScheduledTransaction{
				FromAccount:   1001,
				ToAccount:     1002,
				Amount:        decimal.NewFromFloat(100.00),
				ScheduledDate: future,
				Kind:          ScheduleKindWithdraw,
			},
			wantErr: true,
			errMsg:  "only valid for transfers",
		},
		{
			name: "missing scheduled date",
			sched: ScheduledTransaction{
				FromAccount: 1001,
				Amount:      decimal.NewFromFloat(100.00),
				Kind:        ScheduleKindDeposit,
			},
			wantErr: true,
			errMsg:  "scheduled date is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sched.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestScheduledTransaction_IsDue(t *testing.T) {
	today := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		sched ScheduledTransaction
		due   bool
	}{
		{
			name:  "due today",
			sched: ScheduledTransaction{ScheduledDate: today},
			due:   true,
		},
		{
			name:  "past date still pending",
			sched: ScheduledTransaction{ScheduledDate: today.AddDate(0, 0, -3)},
			due:   true,
		},
		{
			name:  "future date",
			sched: ScheduledTransaction{ScheduledDate: today.AddDate(0, 0, 1)},
			due:   false,
		},
		{
			name:  "already executed",
			sched: ScheduledTransaction{ScheduledDate: today, Executed: true},
			due:   false,
		},
		{
			name:  "later time same calendar day",
			sched: ScheduledTransaction{ScheduledDate: today.Add(8 * time.Hour)},
			due:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.due, tt.sched.IsDue(today))
		})
	}
}

func TestScheduledTransaction_MarkExecuted(t *testing.T) {
	sched := ScheduledTransaction{
		FromAccount:   1001,
		Amount:        decimal.NewFromFloat(100.00),
		ScheduledDate: time.Now(),
		Kind:          ScheduleKindDeposit,
	}

	now := time.Now()
	require.NoError(t, sched.MarkExecuted(now))
	assert.True(t, sched.Executed)
	require.NotNil(t, sched.ExecutedAt)
	assert.Equal(t, now, *sched.ExecutedAt)

	// Second transition is rejected.
	assert.ErrorIs(t, sched.MarkExecuted(time.Now()), ErrScheduleExecuted)
}
