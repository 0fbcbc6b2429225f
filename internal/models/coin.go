package models

import (
	"time"
)

type TransactionType string

const (
	TransactionAdd      TransactionType = "add"
	TransactionSubtract TransactionType = "subtract"
	TransactionRedeem   TransactionType = "redeem"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionAdd, TransactionSubtract, TransactionRedeem:
		return true
	}
	return false
}

// Balance holds a user's current coin count. Coins never go below zero;
// every mutation is paired with an appended Transaction row.
type Balance struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;not null;size:255"`
	Coins     int       `json:"coins" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Balance) TableName() string {
	return "balances"
}

// Transaction is an append-only ledger entry. Rows are never updated;
// the only delete path is the bulk cascade when a user is removed.
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      string          `json:"user_id" gorm:"index;not null;size:255"`
	Amount      int             `json:"amount" gorm:"not null"`
	Description string          `json:"description" gorm:"size:500"`
	Type        TransactionType `json:"transaction_type" gorm:"column:transaction_type;not null;size:20"`
	CreatedBy   *string         `json:"created_by" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
