package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"bankledger/internal/config"
	"bankledger/internal/models"
	"bankledger/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPinNotNumeric = errors.New("pin must contain only digits")
	ErrPinNotSet     = errors.New("account has no pin set")
	ErrPinMismatch   = errors.New("pin does not match")

	digitsRegex = regexp.MustCompile(`^[0-9]+$`)
)

// PinService manages account PINs. Hashes use bcrypt, never the raw PIN.
// Repeated failed verifications lock the account; only an administrative
// unlock clears the lock.
type PinService struct {
	cost              int
	pinLength         int
	maxFailedAttempts int
	accountRepo       repositories.AccountRepositoryInterface
	auditRepo         repositories.AuditLogRepositoryInterface
	auditLogger       AuditLoggerInterface
	logger            *slog.Logger
}

func NewPinService(
	accountRepo repositories.AccountRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	auditLogger AuditLoggerInterface,
	securityCfg *config.SecurityConfig,
) PinServiceInterface {
	return &PinService{
		cost:              securityCfg.BCryptCost,
		pinLength:         securityCfg.PinLength,
		maxFailedAttempts: securityCfg.MaxFailedAttempts,
		accountRepo:       accountRepo,
		auditRepo:         auditRepo,
		auditLogger:       auditLogger,
		logger:            slog.Default(),
	}
}

// ValidatePinFormat checks length and digit-only content.
func (ps *PinService) ValidatePinFormat(pin string) error {
	if len(pin) != ps.pinLength {
		return fmt.Errorf("pin must be exactly %d digits", ps.pinLength)
	}
	if !digitsRegex.MatchString(pin) {
		return ErrPinNotNumeric
	}
	return nil
}

// SetPin hashes and stores a new PIN, clearing any failed attempts.
func (ps *PinService) SetPin(accountNo int64, pin string) error {
	if err := ps.ValidatePinFormat(pin); err != nil {
		return err
	}

	account, err := ps.accountRepo.GetByAccountNo(accountNo)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), ps.cost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}

	account.PinHash = string(hash)
	account.FailedPinAttempts = 0
	if err := ps.accountRepo.Update(account); err != nil {
		return err
	}

	ps.audit(models.AuditActionPinChanged, accountNo, 0)
	ps.logger.Info("pin changed", slog.Int64("account_no", accountNo))

	return nil
}

// VerifyPin compares the PIN against the stored hash. Each failure bumps
// the counter; reaching the configured maximum locks the account. A
// successful verification resets the counter.
func (ps *PinService) VerifyPin(accountNo int64, pin string) error {
	account, err := ps.accountRepo.GetByAccountNo(accountNo)
	if err != nil {
		return err
	}

	if account.Locked {
		return models.ErrAccountLocked
	}
	if account.PinHash == "" {
		return ErrPinNotSet
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PinHash), []byte(pin)) != nil {
		account.FailedPinAttempts++
		if account.FailedPinAttempts >= ps.maxFailedAttempts {
			account.Locked = true
			ps.auditLogger.LogAccountLocked(context.Background(), accountNo, account.FailedPinAttempts)
			ps.logger.Warn("account locked after repeated pin failures",
				slog.Int64("account_no", accountNo),
				slog.Int("failed_attempts", account.FailedPinAttempts),
			)
		}
		if err := ps.accountRepo.Update(account); err != nil {
			ps.logger.Error("failed to persist pin failure",
				slog.Int64("account_no", accountNo),
				slog.String("error", err.Error()),
			)
		}

		ps.audit(models.AuditActionPinFailed, accountNo, account.FailedPinAttempts)

		if account.Locked {
			return models.ErrAccountLocked
		}
		return ErrPinMismatch
	}

	if account.FailedPinAttempts != 0 {
		account.FailedPinAttempts = 0
		if err := ps.accountRepo.Update(account); err != nil {
			ps.logger.Error("failed to reset pin failure counter",
				slog.Int64("account_no", accountNo),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

func (ps *PinService) audit(action string, accountNo int64, failedAttempts int) {
	log := &models.AuditLog{
		AccountNo: &accountNo,
		Action:    action,
		Resource:  "pin",
	}
	if failedAttempts > 0 {
		log.SetMetadata("failed_attempts", failedAttempts)
	}

	if err := ps.auditRepo.Create(log); err != nil {
		ps.logger.Error("failed to create audit log",
			slog.String("action", action),
			slog.Int64("account_no", accountNo),
			slog.String("error", err.Error()),
		)
	}
}
