package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralLedger is the cumulative snapshot per (referrer, referred) pair,
// upserted in the same transaction as each accrual. It is a cache for fast
// reads; ReferralEarningsLog is the source of truth, and the reconcile job
// audits one against the other.
type ReferralLedger struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ReferrerID     uint `gorm:"not null;uniqueIndex:idx_referrer_referred" json:"referrer_id"`
	ReferredUserID uint `gorm:"not null;uniqueIndex:idx_referrer_referred" json:"referred_user_id"`
	// EarningsAmount is the referrer's cumulative share for this pair.
	EarningsAmount decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"earnings_amount"`
	// TotalReferredEarnings is the referred user's cumulative base earnings.
	TotalReferredEarnings decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"total_referred_earnings"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`

	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
}

func (ReferralLedger) TableName() string { return "referral_ledgers" }

// ReferralEarningsLog is append-only: one immutable row per referral-earning
// event. EarnedAt drives the monthly slicing; SourceViewKey carries the
// view's idempotency key so a replay cannot double-credit the referrer.
type ReferralEarningsLog struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ReferrerID     uint            `gorm:"not null;index" json:"referrer_id"`
	ReferredUserID uint            `gorm:"not null;index" json:"referred_user_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"amount"`
	SourceLinkID   uint            `gorm:"not null" json:"source_link_id"`
	SourceViewKey  string          `gorm:"uniqueIndex;size:64;not null" json:"source_view_key"`
	EarnedAt       time.Time       `gorm:"not null;index" json:"earned_at"`
}

func (ReferralEarningsLog) TableName() string { return "referral_earnings_logs" }
