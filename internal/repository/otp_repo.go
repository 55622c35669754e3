package repository

import (
	"time"

	"linkmint/internal/models"

	"gorm.io/gorm"
)

type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Tx(tx *gorm.DB) *OTPRepository {
	return &OTPRepository{db: tx}
}

func (r *OTPRepository) Create(o *models.EmailOTP) error {
	return r.db.Create(o).Error
}

// Latest returns the most recently issued OTP for the user and purpose,
// consumed or not; the service decides which failure to surface.
func (r *OTPRepository) Latest(userID uint, purpose string) (*models.EmailOTP, error) {
	var o models.EmailOTP
	err := r.db.Where("user_id = ? AND purpose = ?", userID, purpose).
		Order("id DESC").
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Consume stamps the OTP as used. Returns false when another call got there
// first, which closes the single-use race.
func (r *OTPRepository) Consume(id uint, at time.Time) (bool, error) {
	res := r.db.Model(&models.EmailOTP{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", at)
	return res.RowsAffected > 0, res.Error
}
