package repository

import (
	"linkmint/internal/domain"
	"linkmint/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Tx(tx *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: tx}
}

func (r *WithdrawalRepository) Create(w *models.WithdrawalRequest) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := r.db.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByIDLocked takes a row lock; must run inside a transaction so an
// approve and a reject racing on the same request serialize.
func (r *WithdrawalRepository) GetByIDLocked(id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := forUpdate(r.db).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) Update(w *models.WithdrawalRequest) error {
	return r.db.Save(w).Error
}

// HasRequested reports whether the user has an outstanding REQUESTED row.
func (r *WithdrawalRepository) HasRequested(userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.WithdrawalRequest{}).
		Where("user_id = ? AND status = ?", userID, domain.WithdrawalStatusRequested).
		Count(&count).Error
	return count > 0, err
}

// SumClaimed totals the user's requested + completed amounts; rejected rows
// never count, which is what restores their amount to the balance.
func (r *WithdrawalRepository) SumClaimed(userID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.Model(&models.WithdrawalRequest{}).
		Where("user_id = ? AND status IN ?", userID, []string{domain.WithdrawalStatusRequested, domain.WithdrawalStatusCompleted}).
		Pluck("amount", &amounts).Error
	return sumDecimals(amounts), err
}

func (r *WithdrawalRepository) ListByUser(userID uint) ([]models.WithdrawalRequest, error) {
	var list []models.WithdrawalRequest
	err := r.db.Where("user_id = ?", userID).Order("requested_at DESC").Find(&list).Error
	return list, err
}

// ListAll returns every request, optionally filtered by status.
func (r *WithdrawalRepository) ListAll(status string) ([]models.WithdrawalRequest, error) {
	q := r.db.Model(&models.WithdrawalRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.WithdrawalRequest
	err := q.Order("requested_at DESC").Find(&list).Error
	return list, err
}
