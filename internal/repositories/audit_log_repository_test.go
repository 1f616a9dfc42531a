package repositories

import (
	"testing"
	"time"

	"bankledger/internal/database"
	"bankledger/internal/models"

	"github.com/stretchr/testify/suite"
)

// AuditLogRepositorySuite defines the test suite for AuditLogRepository
type AuditLogRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo AuditLogRepositoryInterface
}

// SetupTest runs before each test in the suite
func (s *AuditLogRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewAuditLogRepository(s.db.DB)
}

// TearDownTest runs after each test in the suite
func (s *AuditLogRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

// TestAuditLogRepositorySuite runs the test suite
func TestAuditLogRepositorySuite(t *testing.T) {
	suite.Run(t, new(AuditLogRepositorySuite))
}

func (s *AuditLogRepositorySuite) record(accountNo int64, action string) *models.AuditLog {
	log := &models.AuditLog{
		AccountNo: &accountNo,
		Action:    action,
		Resource:  "account",
	}
	log.SetMetadata("amount", "100.00")
	s.NoError(s.repo.Create(log))
	return log
}

func (s *AuditLogRepositorySuite) TestCreate() {
	log := s.record(1001, models.AuditActionDeposit)

	found, err := s.repo.GetByID(log.ID)
	s.NoError(err)
	s.Equal(models.AuditActionDeposit, found.Action)
	s.NotNil(found.AccountNo)
	s.Equal(int64(1001), *found.AccountNo)
	s.Equal("100.00", found.Metadata["amount"])
}

func (s *AuditLogRepositorySuite) TestCreate_NilLog() {
	s.Error(s.repo.Create(nil))
}

func (s *AuditLogRepositorySuite) TestGetByAccountNo() {
	s.record(1001, models.AuditActionDeposit)
	s.record(1001, models.AuditActionWithdraw)
	s.record(1002, models.AuditActionDeposit)

	logs, total, err := s.repo.GetByAccountNo(1001, 0, 10)
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(logs, 2)
	for _, log := range logs {
		s.Equal(int64(1001), *log.AccountNo)
	}
}

func (s *AuditLogRepositorySuite) TestGetByAction() {
	s.record(1001, models.AuditActionDeposit)
	s.record(1002, models.AuditActionDeposit)
	s.record(1001, models.AuditActionReversal)

	logs, total, err := s.repo.GetByAction(models.AuditActionDeposit, 0, 10)
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(logs, 2)
}

func (s *AuditLogRepositorySuite) TestGetByTimeRange() {
	s.record(1001, models.AuditActionDeposit)

	logs, total, err := s.repo.GetByTimeRange(
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 0, 10)
	s.NoError(err)
	s.Equal(int64(1), total)
	s.Len(logs, 1)

	logs, total, err = s.repo.GetByTimeRange(
		time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour), 0, 10)
	s.NoError(err)
	s.Equal(int64(0), total)
	s.Empty(logs)
}

func (s *AuditLogRepositorySuite) TestDeleteOlderThan() {
	old := s.record(1001, models.AuditActionDeposit)
	s.NoError(s.db.Model(&models.AuditLog{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	s.record(1001, models.AuditActionWithdraw)

	deleted, err := s.repo.DeleteOlderThan(24 * time.Hour)
	s.NoError(err)
	s.Equal(int64(1), deleted)

	_, total, err := s.repo.GetByAccountNo(1001, 0, 10)
	s.NoError(err)
	s.Equal(int64(1), total)
}
