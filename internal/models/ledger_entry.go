package models

import "time"

// Ledger directions
const (
	LedgerDirectionCredit = "CREDIT"
	LedgerDirectionDebit  = "DEBIT"
)

// Request kinds referenced by ledger entries
const (
	RequestKindTopUp    = "TOPUP"
	RequestKindWithdraw = "WITHDRAWAL"
)

// LedgerEntry is the append-only audit record written alongside every
// successful balance adjustment, in the same database transaction.
// The (RequestKind, RequestID) pair is unique: a request can move the
// balance at most once.
type LedgerEntry struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	WalletID     uint   `gorm:"index;not null" json:"wallet_id"`
	RequestKind  string `gorm:"not null;uniqueIndex:idx_ledger_request" json:"request_kind"`
	RequestID    uint   `gorm:"not null;uniqueIndex:idx_ledger_request" json:"request_id"`
	Direction    string `gorm:"not null" json:"direction"`
	Amount       int64  `gorm:"not null" json:"amount"`
	BalanceAfter int64  `gorm:"not null" json:"balance_after"`
	Reference    string `gorm:"not null" json:"reference"`
	Metadata     JSON   `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time
}
