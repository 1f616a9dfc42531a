package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AuditActionAccountCreated  = "account.created"
	AuditActionAccountClosed   = "account.closed"
	AuditActionDeposit         = "ledger.deposit"
	AuditActionWithdraw        = "ledger.withdraw"
	AuditActionTransfer        = "ledger.transfer"
	AuditActionInterest        = "ledger.interest"
	AuditActionReversal        = "ledger.reversal"
	AuditActionBalanceAdjusted = "admin.balance_adjusted"
	AuditActionStatusChanged   = "admin.status_changed"
	AuditActionLockChanged     = "admin.lock_changed"
	AuditActionLimitChanged    = "admin.daily_limit_changed"
	AuditActionPinChanged      = "pin.changed"
	AuditActionPinFailed       = "pin.failed"
	AuditActionScheduleAdded   = "schedule.added"
	AuditActionScheduleRun     = "schedule.executed"
	AuditActionScheduleFailed  = "schedule.failed"
	AuditActionScheduleCancel  = "schedule.cancelled"
)

type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AccountNo *int64    `gorm:"index" json:"account_no,omitempty"`
	Action    string    `gorm:"type:varchar(100);not null;index" json:"action"`
	Resource  string    `gorm:"type:varchar(100);not null" json:"resource"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	Metadata  JSONBMap  `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (al *AuditLog) SetMetadata(key string, value interface{}) {
	if al.Metadata == nil {
		al.Metadata = make(JSONBMap)
	}
	al.Metadata[key] = value
}

func (al *AuditLog) String() string {
	accountStr := "system"
	if al.AccountNo != nil {
		accountStr = fmt.Sprintf("%d", *al.AccountNo)
	}

	return fmt.Sprintf("AuditLog[Account: %s, Action: %s, Resource: %s, Time: %s]",
		accountStr, al.Action, al.Resource, al.CreatedAt.Format(time.RFC3339))
}

func (al *AuditLog) TableName() string {
	return "audit_logs"
}

func (al *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if al.ID == uuid.Nil {
		al.ID = uuid.New()
	}

	if al.CreatedAt.IsZero() {
		al.CreatedAt = time.Now()
	}
	return nil
}

// JSONBMap represents a JSONB map field for PostgreSQL
type JSONBMap map[string]interface{}

// Value implements driver.Valuer interface
func (m JSONBMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	// Return string for SQLite compatibility
	return string(bytes), nil
}

func (m *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONBMap", value)
	}

	if len(bytes) == 0 {
		*m = nil
		return nil
	}

	return json.Unmarshal(bytes, m)
}

func (m JSONBMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]interface{}(m))
}

func (m *JSONBMap) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var tmp map[string]interface{}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*m = JSONBMap(tmp)
	return nil
}
