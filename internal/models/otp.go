package models

import "time"

// EmailOTP stores only the bcrypt hash of an issued code. Rows are never
// updated except to stamp ConsumedAt; expired rows simply stop verifying.
type EmailOTP struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Purpose    string     `gorm:"size:20;not null;index" json:"purpose"`
	CodeHash   string     `gorm:"size:60;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (EmailOTP) TableName() string { return "email_otps" }
