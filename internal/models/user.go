package models

import (
	"time"

	"linkmint/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Email  string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role   string `gorm:"size:20;not null;index" json:"role"` // USER | ADMIN
	// ReferredBy is the ground truth for the one-level referral cascade.
	// Referral listings are derived from the ledger, never from a cached
	// array on the user row.
	ReferredBy *uint          `gorm:"index" json:"referred_by"`
	UPIID      *string        `gorm:"size:64" json:"upi_id"`
	Verified   bool           `gorm:"default:false" json:"verified"`
	Status     string         `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Referrer *User `gorm:"foreignKey:ReferredBy" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool     { return u.Role == domain.RoleAdmin }
func (u *User) IsSuspended() bool { return u.Status == domain.UserStatusSuspended }
