package repository

import (
	"linkmint/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Tx(tx *gorm.DB) *LinkRepository {
	return &LinkRepository{db: tx}
}

func (r *LinkRepository) GetByID(id uint) (*models.Link, error) {
	var l models.Link
	if err := r.db.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LinkRepository) GetByCode(code string) (*models.Link, error) {
	var l models.Link
	if err := r.db.Where("code = ?", code).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LinkRepository) Create(l *models.Link) error {
	return r.db.Create(l).Error
}

// IncrementEarnings adds amount to the link's cumulative counter as a
// row-level atomic update, never read-modify-write.
func (r *LinkRepository) IncrementEarnings(linkID uint, amount decimal.Decimal) error {
	return r.db.Model(&models.Link{}).
		Where("id = ?", linkID).
		UpdateColumn("earnings", gorm.Expr("earnings + ?", amount)).Error
}

func (r *LinkRepository) ListByOwner(ownerID uint) ([]models.Link, error) {
	var list []models.Link
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// SumEarningsByOwner totals the cumulative counters of the owner's links.
// The sum runs in Go over decimals so it never round-trips through engine
// float coercion.
func (r *LinkRepository) SumEarningsByOwner(ownerID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.Model(&models.Link{}).
		Where("owner_id = ?", ownerID).
		Pluck("earnings", &amounts).Error
	return sumDecimals(amounts), err
}
