package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LinkView is append-only: one row per counted view, immutable once written.
// ViewKey is the caller-supplied idempotency key; the unique index makes a
// replayed view a committed no-op.
type LinkView struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	LinkID  uint   `gorm:"not null;index" json:"link_id"`
	ViewKey string `gorm:"uniqueIndex;size:64;not null" json:"view_key"`
	// EarnedAmount is locked to the CPM in force at view time.
	EarnedAmount decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"earned_amount"`
	ViewedAt     time.Time       `gorm:"not null;index" json:"viewed_at"`

	Link Link `gorm:"foreignKey:LinkID" json:"-"`
}

func (LinkView) TableName() string { return "link_views" }
