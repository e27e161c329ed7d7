package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionGenerateInvoice = "GENERATE_INVOICE"
	ActionApplyPayment    = "APPLY_PAYMENT"
	ActionDepositAdvance  = "DEPOSIT_ADVANCE"
	ActionSetAdvance      = "SET_ADVANCE"
	ActionRecordSale      = "RECORD_SALE"
	ActionCorrectSale     = "CORRECT_SALE"
	ActionDeleteSale      = "DELETE_SALE"
	ActionRegisterVendor  = "REGISTER_VENDOR"
)

// AuditLog tracks Who, What, and When for every ledger mutation.
// Rows are written in the same transaction as the change they describe.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID   uint      `gorm:"not null;index" json:"vendor_id"`
	ActorID    uint      `gorm:"index" json:"actor_id"` // 0 for operator commands
	ActorRole  string    `gorm:"type:varchar(20)" json:"actor_role"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"` // serialized JSON payload
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
