package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"linkmint/config"
	"linkmint/internal/domain"
	"linkmint/internal/models"
	"linkmint/internal/repository"
	"linkmint/internal/timeutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService is the request state machine:
// REQUESTED -> COMPLETED or REQUESTED -> REJECTED, both terminal.
type WithdrawalService struct {
	db          *gorm.DB
	cfg         *config.EarningsConfig
	users       *repository.UserRepository
	withdrawals *repository.WithdrawalRepository
	settings    *repository.SettingRepository
	earnings    *EarningsService
	otps        *OTPService
	now         func() time.Time
}

func NewWithdrawalService(
	db *gorm.DB,
	cfg *config.EarningsConfig,
	users *repository.UserRepository,
	withdrawals *repository.WithdrawalRepository,
	settings *repository.SettingRepository,
	earnings *EarningsService,
	otps *OTPService,
) *WithdrawalService {
	return &WithdrawalService{
		db:          db,
		cfg:         cfg,
		users:       users,
		withdrawals: withdrawals,
		settings:    settings,
		earnings:    earnings,
		otps:        otps,
		now:         time.Now,
	}
}

// Create checks every precondition atomically and inserts a REQUESTED row.
// The row lock on the user serializes concurrent creates, so "at most one
// outstanding request per user" holds under any interleaving.
func (s *WithdrawalService) Create(userID uint, amount decimal.Decimal, upi, otpCode string) (*models.WithdrawalRequest, error) {
	if !timeutil.InMonthTail(s.now(), s.cfg.WithdrawalWindowDays) {
		return nil, domain.ErrWindowClosed
	}
	var req *models.WithdrawalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		u, err := s.users.Tx(tx).GetByIDLocked(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return domain.Transient(err)
		}
		if u.IsSuspended() {
			return domain.ErrUnauthorized
		}
		if u.UPIID == nil || *u.UPIID != upi {
			return domain.ErrUPIMismatch
		}
		open, err := s.withdrawals.Tx(tx).HasRequested(userID)
		if err != nil {
			return domain.Transient(err)
		}
		if open {
			return domain.ErrConflict
		}
		if amount.LessThan(s.minWithdrawal()) {
			return domain.ErrInvalidAmount
		}
		available, err := s.earnings.AvailableBalanceTx(tx, userID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(available) {
			return domain.ErrInsufficientBalance
		}
		if err := s.otps.VerifyTx(tx, userID, domain.OTPPurposeWithdrawal, otpCode); err != nil {
			return err
		}
		req = &models.WithdrawalRequest{
			Reference:   "wd-" + uuid.New().String(),
			UserID:      userID,
			Amount:      amount,
			UPI:         upi,
			Status:      domain.WithdrawalStatusRequested,
			RequestedAt: s.now().UTC(),
		}
		if err := s.withdrawals.Tx(tx).Create(req); err != nil {
			return domain.Transient(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Approve marks a REQUESTED row COMPLETED. Pure status transition: payout
// execution is external, and the balance formula already counts completed
// rows, so no separate debit is written.
func (s *WithdrawalService) Approve(requestID uint) (*models.WithdrawalRequest, error) {
	return s.transition(requestID, domain.WithdrawalStatusCompleted, nil)
}

// Reject marks a REQUESTED row REJECTED with a mandatory reason. The amount
// flows back into the available balance automatically.
func (s *WithdrawalService) Reject(requestID uint, reason string) (*models.WithdrawalRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}
	return s.transition(requestID, domain.WithdrawalStatusRejected, &reason)
}

func (s *WithdrawalService) transition(requestID uint, target string, reason *string) (*models.WithdrawalRequest, error) {
	var out *models.WithdrawalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		w, err := s.withdrawals.Tx(tx).GetByIDLocked(requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return domain.Transient(err)
		}
		if w.Status != domain.WithdrawalStatusRequested {
			return domain.ErrInvalidStateTransition
		}
		now := s.now().UTC()
		w.Status = target
		w.ProcessedAt = &now
		w.RejectionReason = reason
		if err := s.withdrawals.Tx(tx).Update(w); err != nil {
			return domain.Transient(err)
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BulkResult reports per-item outcomes of a bulk action.
type BulkResult struct {
	Succeeded []uint        `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

type BulkFailure struct {
	ID    uint   `json:"id"`
	Error string `json:"error"`
}

// BulkApply runs approve or reject per id independently; one terminal row
// never blocks or rolls back the rest. Reject shares one caller-supplied
// reason for the whole batch.
func (s *WithdrawalService) BulkApply(action string, requestIDs []uint, reason string) (*BulkResult, error) {
	switch action {
	case domain.BulkActionApprove:
	case domain.BulkActionReject:
		if strings.TrimSpace(reason) == "" {
			return nil, domain.ErrReasonRequired
		}
	default:
		return nil, fmt.Errorf("unknown bulk action %q", action)
	}
	res := &BulkResult{}
	for _, id := range requestIDs {
		var err error
		if action == domain.BulkActionApprove {
			_, err = s.Approve(id)
		} else {
			_, err = s.Reject(id, reason)
		}
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res, nil
}

func (s *WithdrawalService) List(userID uint) ([]models.WithdrawalRequest, error) {
	list, err := s.withdrawals.ListByUser(userID)
	if err != nil {
		return nil, domain.Transient(err)
	}
	return list, nil
}

func (s *WithdrawalService) ListAll(status string) ([]models.WithdrawalRequest, error) {
	list, err := s.withdrawals.ListAll(status)
	if err != nil {
		return nil, domain.Transient(err)
	}
	return list, nil
}

// ExportCSV streams every withdrawal request as RFC 4180 CSV (embedded
// quotes doubled by the writer).
func (s *WithdrawalService) ExportCSV(w io.Writer) error {
	list, err := s.withdrawals.ListAll("")
	if err != nil {
		return domain.Transient(err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "reference", "user_id", "amount", "upi", "status", "requested_at", "processed_at", "rejection_reason"}); err != nil {
		return err
	}
	for _, r := range list {
		processed := ""
		if r.ProcessedAt != nil {
			processed = r.ProcessedAt.UTC().Format(time.RFC3339)
		}
		reason := ""
		if r.RejectionReason != nil {
			reason = *r.RejectionReason
		}
		rec := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Reference,
			strconv.FormatUint(uint64(r.UserID), 10),
			r.Amount.String(),
			r.UPI,
			r.Status,
			r.RequestedAt.UTC().Format(time.RFC3339),
			processed,
			reason,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *WithdrawalService) minWithdrawal() decimal.Decimal {
	if s.settings != nil {
		if v, err := s.settings.Get(domain.SettingMinWithdrawal); err == nil && v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				return d
			}
		}
	}
	return s.cfg.MinWithdrawal
}
