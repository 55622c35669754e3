package repository

import (
	"time"

	"linkmint/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func (r *ReferralRepository) Tx(tx *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: tx}
}

func (r *ReferralRepository) CreateLog(l *models.ReferralEarningsLog) error {
	return r.db.Create(l).Error
}

// UpsertAccrual folds one referral-earning event into the (referrer,
// referred) ledger row. The increments run inside the database so concurrent
// accruals never clobber each other.
func (r *ReferralRepository) UpsertAccrual(referrerID, referredUserID uint, amount, baseEarnings decimal.Decimal) error {
	ledger := models.ReferralLedger{
		ReferrerID:            referrerID,
		ReferredUserID:        referredUserID,
		EarningsAmount:        amount,
		TotalReferredEarnings: baseEarnings,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "referrer_id"}, {Name: "referred_user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"earnings_amount":         gorm.Expr("earnings_amount + ?", amount),
			"total_referred_earnings": gorm.Expr("total_referred_earnings + ?", baseEarnings),
			"updated_at":              time.Now().UTC(),
		}),
	}).Create(&ledger).Error
}

func (r *ReferralRepository) GetLedger(referrerID, referredUserID uint) (*models.ReferralLedger, error) {
	var l models.ReferralLedger
	err := r.db.Where("referrer_id = ? AND referred_user_id = ?", referrerID, referredUserID).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ReferralRepository) ListByReferrer(referrerID uint) ([]models.ReferralLedger, error) {
	var list []models.ReferralLedger
	err := r.db.Where("referrer_id = ?", referrerID).
		Preload("ReferredUser").
		Order("earnings_amount DESC").
		Find(&list).Error
	return list, err
}

func (r *ReferralRepository) SumLedgerByReferrer(referrerID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.Model(&models.ReferralLedger{}).
		Where("referrer_id = ?", referrerID).
		Pluck("earnings_amount", &amounts).Error
	return sumDecimals(amounts), err
}

// SumLogBetween totals the referrer's log rows with earned_at in [from, to).
func (r *ReferralRepository) SumLogBetween(referrerID uint, from, to time.Time) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.Model(&models.ReferralEarningsLog{}).
		Where("referrer_id = ? AND earned_at >= ? AND earned_at < ?", referrerID, from, to).
		Pluck("amount", &amounts).Error
	return sumDecimals(amounts), err
}

// AllLedgers is used by the reconcile auditor.
func (r *ReferralRepository) AllLedgers() ([]models.ReferralLedger, error) {
	var list []models.ReferralLedger
	err := r.db.Find(&list).Error
	return list, err
}

// SumLogForPair recomputes the authoritative total for one pair from the
// append-only log.
func (r *ReferralRepository) SumLogForPair(referrerID, referredUserID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := r.db.Model(&models.ReferralEarningsLog{}).
		Where("referrer_id = ? AND referred_user_id = ?", referrerID, referredUserID).
		Pluck("amount", &amounts).Error
	return sumDecimals(amounts), err
}
