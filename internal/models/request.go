package models

import "time"

// RequestStatus is the lifecycle state of a top-up or withdrawal request.
// The numeric values are part of the wire and storage format.
type RequestStatus int16

const (
	StatusPending  RequestStatus = 0
	StatusApproved RequestStatus = 1
	StatusRejected RequestStatus = 2
)

func (s RequestStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the known states.
func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Terminal reports whether the request can no longer change state.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// TopUpRequest is a user's claim to have paid externally, awaiting an
// operator decision. TransferAmount is the amount actually credited; an
// operator may set it differently from RequestedAmount at approval time.
// Rows are never deleted, they are the audit trail.
type TopUpRequest struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	WalletID        uint          `gorm:"index;not null" json:"wallet_id"`
	RequestedAmount int64         `gorm:"not null" json:"requested_amount"`
	TransferAmount  int64         `gorm:"not null;default:0" json:"transfer_amount"`
	Status          RequestStatus `gorm:"not null;default:0;index" json:"status"`
	ProofMediaRef   *string       `json:"proof_media_ref,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"-"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty"`
	DecidedBy       *uint         `json:"decided_by,omitempty"`
}

// WithdrawRequest is a user's request to pay out funds. While PENDING its
// RequestedAmount counts as reserved against the wallet's available
// balance; the balance itself only moves on approval.
type WithdrawRequest struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	WalletID        uint          `gorm:"index;not null" json:"wallet_id"`
	RequestedAmount int64         `gorm:"not null" json:"requested_amount"`
	Status          RequestStatus `gorm:"not null;default:0;index" json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"-"`
	DecidedAt       *time.Time    `json:"decided_at,omitempty"`
	DecidedBy       *uint         `json:"decided_by,omitempty"`
}
