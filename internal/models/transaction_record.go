package models

import (
	"time"
)

// Transaction statuses. Pending transitions exactly once, to confirmed or
// failed; both are terminal.
const (
	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
)

// Transaction kinds.
const (
	TxKindAllocationChange = "allocation_change"
)

// TransactionRecord is one submission attempt in the ledger.
//
// Ref is a stable internal key that never changes. TxID starts as a locally
// generated placeholder and is superseded by the chain hash once the write is
// accepted; all internal updates address records by Ref so a late confirmation
// can never miss the record after the id swap.
type TransactionRecord struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	Ref       string    `json:"ref" gorm:"type:varchar(36);uniqueIndex;not null"`
	TxID      string    `json:"id" gorm:"type:varchar(80);index;not null"`
	Hash      string    `json:"hash,omitempty" gorm:"type:varchar(80)"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
	Kind      string    `json:"type" gorm:"type:varchar(40);not null"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null"`
	Details   string    `json:"details" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (TransactionRecord) TableName() string {
	return "transaction_records"
}

// TxDetails is the snapshot stored in TransactionRecord.Details.
type TxDetails struct {
	OldAllocations []AllocationCategory `json:"old_allocations"`
	NewAllocations []AllocationCategory `json:"new_allocations"`
	Error          string               `json:"error,omitempty"`
}
