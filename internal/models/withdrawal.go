package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalRequest is created by the user, mutated exactly once by an admin
// action, then terminal. Retries require a new row.
type WithdrawalRequest struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Reference       string          `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"amount"`
	UPI             string          `gorm:"size:64;not null" json:"upi"`
	Status          string          `gorm:"size:20;not null;index" json:"status"` // REQUESTED, COMPLETED, REJECTED
	RequestedAt     time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt     *time.Time      `json:"processed_at"`
	RejectionReason *string         `gorm:"size:255" json:"rejection_reason"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WithdrawalRequest) TableName() string { return "withdrawal_requests" }
