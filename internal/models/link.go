package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Link struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID uint   `gorm:"not null;index" json:"owner_id"`
	Code    string `gorm:"uniqueIndex;size:20;not null" json:"code"`
	// CPM is the amount credited per 1000 recorded views. Changing it only
	// affects future views; past LinkView rows keep the amount they earned.
	CPM decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"cpm"`
	// Earnings is the cumulative counter, incremented atomically per view.
	Earnings  decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"earnings"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Link) TableName() string { return "links" }
