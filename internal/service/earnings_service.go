package service

import (
	"context"
	"errors"
	"time"

	"linkmint/config"
	"linkmint/internal/domain"
	"linkmint/internal/models"
	"linkmint/internal/repository"
	"linkmint/internal/timeutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var viewsPerCPM = decimal.NewFromInt(1000)

// EarningsService is the single path for accruing and reading earnings.
// Every caller — view tracking, dashboards, the withdrawal state machine —
// goes through it.
type EarningsService struct {
	db          *gorm.DB
	cfg         *config.EarningsConfig
	links       *repository.LinkRepository
	views       *repository.LinkViewRepository
	referrals   *repository.ReferralRepository
	users       *repository.UserRepository
	withdrawals *repository.WithdrawalRepository
	settings    *repository.SettingRepository
	now         func() time.Time
}

func NewEarningsService(
	db *gorm.DB,
	cfg *config.EarningsConfig,
	links *repository.LinkRepository,
	views *repository.LinkViewRepository,
	referrals *repository.ReferralRepository,
	users *repository.UserRepository,
	withdrawals *repository.WithdrawalRepository,
	settings *repository.SettingRepository,
) *EarningsService {
	return &EarningsService{
		db:          db,
		cfg:         cfg,
		links:       links,
		views:       views,
		referrals:   referrals,
		users:       users,
		withdrawals: withdrawals,
		settings:    settings,
		now:         time.Now,
	}
}

// Summary is the aggregate view of a user's earnings.
type Summary struct {
	Total            decimal.Decimal `json:"total"`
	CurrentMonth     decimal.Decimal `json:"current_month"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

// errDuplicateView signals a same-key race inside the transaction; the
// caller re-reads the committed row.
var errDuplicateView = errors.New("duplicate view key")

// RecordView counts one page view: inserts the LinkView row, atomically
// increments the link's earnings counter and credits the owner's referrer,
// all in one transaction. A replayed view key is a committed no-op returning
// the originally credited amount.
func (s *EarningsService) RecordView(ctx context.Context, linkID uint, viewKey string) (decimal.Decimal, error) {
	credited := decimal.Zero
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link, err := s.links.Tx(tx).GetByID(linkID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return domain.Transient(err)
		}
		if prev, err := s.views.Tx(tx).GetByKey(viewKey); err == nil {
			credited = prev.EarnedAmount
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Transient(err)
		}
		perView := link.CPM.Div(viewsPerCPM)
		now := s.now().UTC()
		view := &models.LinkView{
			LinkID:       link.ID,
			ViewKey:      viewKey,
			EarnedAmount: perView,
			ViewedAt:     now,
		}
		if err := s.views.Tx(tx).Create(view); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errDuplicateView
			}
			return domain.Transient(err)
		}
		if err := s.links.Tx(tx).IncrementEarnings(link.ID, perView); err != nil {
			return domain.Transient(err)
		}
		if err := s.creditReferral(tx, link.OwnerID, perView, link.ID, viewKey, now); err != nil {
			return err
		}
		credited = perView
		return nil
	})
	if errors.Is(err, errDuplicateView) {
		// Lost the insert race: the other call committed this view.
		prev, rerr := s.views.GetByKey(viewKey)
		if rerr != nil {
			return decimal.Zero, domain.Transient(rerr)
		}
		return prev.EarnedAmount, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return credited, nil
}

// RecordViewRetry wraps RecordView with a bounded, backed-off retry on
// transient store errors only; the idempotency key makes the retry safe.
func (s *EarningsService) RecordViewRetry(ctx context.Context, linkID uint, viewKey string) (decimal.Decimal, error) {
	attempts := s.cfg.ViewRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	var (
		credited decimal.Decimal
		err      error
	)
	for i := 0; i < attempts; i++ {
		credited, err = s.RecordView(ctx, linkID, viewKey)
		if err == nil || !errors.Is(err, domain.ErrTransientStore) {
			return credited, err
		}
		select {
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		case <-time.After(s.cfg.ViewRetryBackoff * time.Duration(i+1)):
		}
	}
	return credited, err
}

// creditReferral pays the owner's direct referrer, exactly one level. Runs
// inside the view transaction so a replayed view cannot double-credit.
func (s *EarningsService) creditReferral(tx *gorm.DB, ownerID uint, baseEarnings decimal.Decimal, sourceLinkID uint, viewKey string, at time.Time) error {
	owner, err := s.users.Tx(tx).GetByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return domain.Transient(err)
	}
	if owner.ReferredBy == nil {
		return nil
	}
	amount := baseEarnings.Mul(s.referralShare())
	logRow := &models.ReferralEarningsLog{
		ReferrerID:     *owner.ReferredBy,
		ReferredUserID: owner.ID,
		Amount:         amount,
		SourceLinkID:   sourceLinkID,
		SourceViewKey:  viewKey,
		EarnedAt:       at,
	}
	if err := s.referrals.Tx(tx).CreateLog(logRow); err != nil {
		return domain.Transient(err)
	}
	if err := s.referrals.Tx(tx).UpsertAccrual(*owner.ReferredBy, owner.ID, amount, baseEarnings); err != nil {
		return domain.Transient(err)
	}
	return nil
}

// GetSummary computes lifetime total, current IST-month total and available
// balance for the user.
func (s *EarningsService) GetSummary(userID uint) (*Summary, error) {
	var out *Summary
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sum, err := s.summaryTx(tx, userID)
		if err != nil {
			return err
		}
		out = sum
		return nil
	})
	return out, err
}

func (s *EarningsService) summaryTx(tx *gorm.DB, userID uint) (*Summary, error) {
	if _, err := s.users.Tx(tx).GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Transient(err)
	}
	linkTotal, err := s.links.Tx(tx).SumEarningsByOwner(userID)
	if err != nil {
		return nil, domain.Transient(err)
	}
	refTotal, err := s.referrals.Tx(tx).SumLedgerByReferrer(userID)
	if err != nil {
		return nil, domain.Transient(err)
	}
	total := linkTotal.Add(refTotal)

	from, to := timeutil.MonthWindowUTC(s.now())
	monthViews, err := s.views.Tx(tx).SumEarnedBetween(userID, from, to)
	if err != nil {
		return nil, domain.Transient(err)
	}
	monthRefs, err := s.referrals.Tx(tx).SumLogBetween(userID, from, to)
	if err != nil {
		return nil, domain.Transient(err)
	}

	claimed, err := s.withdrawals.Tx(tx).SumClaimed(userID)
	if err != nil {
		return nil, domain.Transient(err)
	}
	return &Summary{
		Total:            total,
		CurrentMonth:     monthViews.Add(monthRefs),
		AvailableBalance: total.Sub(claimed),
	}, nil
}

// AvailableBalanceTx exposes the balance computation to the withdrawal state
// machine inside its own transaction.
func (s *EarningsService) AvailableBalanceTx(tx *gorm.DB, userID uint) (decimal.Decimal, error) {
	sum, err := s.summaryTx(tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return sum.AvailableBalance, nil
}

// ListReferrals returns the referrer's ledger rows with referred users
// preloaded.
func (s *EarningsService) ListReferrals(referrerID uint) ([]models.ReferralLedger, error) {
	list, err := s.referrals.ListByReferrer(referrerID)
	if err != nil {
		return nil, domain.Transient(err)
	}
	return list, nil
}

func (s *EarningsService) referralShare() decimal.Decimal {
	if s.settings != nil {
		if v, err := s.settings.Get(domain.SettingReferralShare); err == nil && v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				return d
			}
		}
	}
	return s.cfg.ReferralShare
}
