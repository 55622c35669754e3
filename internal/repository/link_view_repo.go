package repository

import (
	"time"

	"linkmint/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LinkViewRepository struct {
	db *gorm.DB
}

func NewLinkViewRepository(db *gorm.DB) *LinkViewRepository {
	return &LinkViewRepository{db: db}
}

func (r *LinkViewRepository) Tx(tx *gorm.DB) *LinkViewRepository {
	return &LinkViewRepository{db: tx}
}

func (r *LinkViewRepository) Create(v *models.LinkView) error {
	return r.db.Create(v).Error
}

func (r *LinkViewRepository) GetByKey(viewKey string) (*models.LinkView, error) {
	var v models.LinkView
	if err := r.db.Where("view_key = ?", viewKey).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// SumEarnedBetween totals per-view earnings (at their historical CPM) for
// views on the owner's links with viewed_at in [from, to).
func (r *LinkViewRepository) SumEarnedBetween(ownerID uint, from, to time.Time) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.Model(&models.LinkView{}).
		Joins("JOIN links ON links.id = link_views.link_id").
		Where("links.owner_id = ? AND link_views.viewed_at >= ? AND link_views.viewed_at < ?", ownerID, from, to).
		Pluck("link_views.earned_amount", &amounts).Error
	return sumDecimals(amounts), err
}
