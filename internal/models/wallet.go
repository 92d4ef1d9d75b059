package models

import (
	"time"
)

// Wallet holds a user's spendable balance in the smallest currency unit.
// Balance is only ever mutated through the repository's AdjustBalance,
// which checks Version so stale writers fail instead of overwriting.
type Wallet struct {
	ID        uint  `gorm:"primarykey" json:"id"`
	UserID    uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int64 `gorm:"not null;default:0" json:"balance"`
	Version   int64 `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
