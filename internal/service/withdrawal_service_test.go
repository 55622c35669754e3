package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"linkmint/internal/domain"
	"linkmint/internal/models"
	"linkmint/internal/timeutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// inWindow is inside the 3-day month tail; midMonth is not.
var (
	inWindow = time.Date(2025, 8, 30, 12, 0, 0, 0, timeutil.IST)
	midMonth = time.Date(2025, 8, 15, 12, 0, 0, 0, timeutil.IST)
)

// seedPayee creates a verified user with a link carrying 1000 of earnings.
func seedPayee(t *testing.T, f *fixture, email, upi string) *models.User {
	t.Helper()
	u := f.createUser(t, email, nil, upi)
	link := f.createLink(t, u.ID, "lk-"+email[:4], "100")
	require.NoError(t, f.db.Model(link).UpdateColumn("earnings", decimal.RequireFromString("1000")).Error)
	return u
}

// freshOTP issues a withdrawal OTP and returns the delivered code.
func freshOTP(t *testing.T, f *fixture, userID uint) string {
	t.Helper()
	require.NoError(t, f.otps.Issue(userID, domain.OTPPurposeWithdrawal))
	require.NotEmpty(t, f.mail.code)
	return f.mail.code
}

func TestWithdrawalService_Create(t *testing.T) {
	t.Parallel()

	t.Run("inserts a requested row when every precondition holds", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "ok@example.com", "ok@upi")

		w, err := f.withdraw.Create(u.ID, d("500"), "ok@upi", freshOTP(t, f, u.ID))
		require.NoError(t, err)
		require.Equal(t, domain.WithdrawalStatusRequested, w.Status)
		require.True(t, strings.HasPrefix(w.Reference, "wd-"))
		require.Nil(t, w.ProcessedAt)
		requireDecimal(t, "500", w.Amount)

		sum, err := f.earnings.GetSummary(u.ID)
		require.NoError(t, err)
		requireDecimal(t, "500", sum.AvailableBalance)
	})

	t.Run("second open request fails Conflict", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "cf@example.com", "cf@upi")
		_, err := f.withdraw.Create(u.ID, d("400"), "cf@upi", freshOTP(t, f, u.ID))
		require.NoError(t, err)

		_, err = f.withdraw.Create(u.ID, d("400"), "cf@upi", freshOTP(t, f, u.ID))
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("amount below platform minimum fails InvalidAmount", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "mn@example.com", "mn@upi")
		_, err := f.withdraw.Create(u.ID, d("399"), "mn@upi", freshOTP(t, f, u.ID))
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("minimum can be tuned through settings", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		require.NoError(t, f.settings.Set(domain.SettingMinWithdrawal, "600"))
		u := seedPayee(t, f, "st@example.com", "st@upi")
		_, err := f.withdraw.Create(u.ID, d("500"), "st@upi", freshOTP(t, f, u.ID))
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("amount above available balance fails InsufficientBalance", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "ib@example.com", "ib@upi")
		_, err := f.withdraw.Create(u.ID, d("1500"), "ib@upi", freshOTP(t, f, u.ID))
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	})

	t.Run("outside the month tail fails WindowClosed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(midMonth)
		u := seedPayee(t, f, "wc@example.com", "wc@upi")
		_, err := f.withdraw.Create(u.ID, d("500"), "wc@upi", "000000")
		require.ErrorIs(t, err, domain.ErrWindowClosed)
	})

	t.Run("mismatched upi fails before touching the OTP", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "up@example.com", "up@upi")
		_, err := f.withdraw.Create(u.ID, d("500"), "other@upi", freshOTP(t, f, u.ID))
		require.ErrorIs(t, err, domain.ErrUPIMismatch)
	})

	t.Run("suspended user cannot withdraw", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "sp@example.com", "sp@upi")
		require.NoError(t, f.db.Model(u).Update("status", domain.UserStatusSuspended).Error)
		_, err := f.withdraw.Create(u.ID, d("500"), "sp@upi", "000000")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown user fails NotFound", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		_, err := f.withdraw.Create(777, d("500"), "x@upi", "000000")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestWithdrawalService_OTP(t *testing.T) {
	t.Parallel()

	t.Run("wrong code fails OTPInvalid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "oi@example.com", "oi@upi")
		freshOTP(t, f, u.ID)
		_, err := f.withdraw.Create(u.ID, d("500"), "oi@upi", "999999")
		require.ErrorIs(t, err, domain.ErrOTPInvalid)
	})

	t.Run("expired code fails OTPExpired", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "oe@example.com", "oe@upi")
		code := freshOTP(t, f, u.ID)
		f.setNow(inWindow.Add(11 * time.Minute))
		_, err := f.withdraw.Create(u.ID, d("500"), "oe@upi", code)
		require.ErrorIs(t, err, domain.ErrOTPExpired)
	})

	t.Run("consumed code fails OTPConsumed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "oc@example.com", "oc@upi")
		code := freshOTP(t, f, u.ID)
		w, err := f.withdraw.Create(u.ID, d("500"), "oc@upi", code)
		require.NoError(t, err)
		// clear the open request, then replay the same code
		_, err = f.withdraw.Reject(w.ID, "testing replay")
		require.NoError(t, err)
		_, err = f.withdraw.Create(u.ID, d("500"), "oc@upi", code)
		require.ErrorIs(t, err, domain.ErrOTPConsumed)
	})

	t.Run("unverified user cannot be issued a code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := f.createUser(t, "uv@example.com", nil, "uv@upi")
		require.NoError(t, f.db.Model(u).Update("verified", false).Error)
		err := f.otps.Issue(u.ID, domain.OTPPurposeWithdrawal)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestWithdrawalService_Transitions(t *testing.T) {
	t.Parallel()

	createRequested := func(t *testing.T, f *fixture, email, upi string) (*models.User, *models.WithdrawalRequest) {
		t.Helper()
		f.setNow(inWindow)
		u := seedPayee(t, f, email, upi)
		w, err := f.withdraw.Create(u.ID, d("500"), upi, freshOTP(t, f, u.ID))
		require.NoError(t, err)
		return u, w
	}

	t.Run("approve completes and stamps processed_at", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u, w := createRequested(t, f, "ap@example.com", "ap@upi")

		got, err := f.withdraw.Approve(w.ID)
		require.NoError(t, err)
		require.Equal(t, domain.WithdrawalStatusCompleted, got.Status)
		require.NotNil(t, got.ProcessedAt)

		// completed amounts stay claimed
		sum, err := f.earnings.GetSummary(u.ID)
		require.NoError(t, err)
		requireDecimal(t, "500", sum.AvailableBalance)
	})

	t.Run("reject requires a reason and restores the balance", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u, w := createRequested(t, f, "rj@example.com", "rj@upi")

		_, err := f.withdraw.Reject(w.ID, "")
		require.ErrorIs(t, err, domain.ErrReasonRequired)
		_, err = f.withdraw.Reject(w.ID, "   ")
		require.ErrorIs(t, err, domain.ErrReasonRequired)

		got, err := f.withdraw.Reject(w.ID, "suspicious activity")
		require.NoError(t, err)
		require.Equal(t, domain.WithdrawalStatusRejected, got.Status)
		require.NotNil(t, got.ProcessedAt)
		require.NotNil(t, got.RejectionReason)
		require.Equal(t, "suspicious activity", *got.RejectionReason)

		sum, err := f.earnings.GetSummary(u.ID)
		require.NoError(t, err)
		requireDecimal(t, "1000", sum.AvailableBalance)
	})

	t.Run("terminal rows refuse further transitions", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, w := createRequested(t, f, "tm@example.com", "tm@upi")

		_, err := f.withdraw.Approve(w.ID)
		require.NoError(t, err)
		_, err = f.withdraw.Approve(w.ID)
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		_, err = f.withdraw.Reject(w.ID, "too late")
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

		// a rejected request never becomes completed either
		f2 := newFixture(t)
		_, w2 := createRequested(t, f2, "tm2@example.com", "tm2@upi")
		_, err = f2.withdraw.Reject(w2.ID, "bad upi")
		require.NoError(t, err)
		_, err = f2.withdraw.Approve(w2.ID)
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("unknown request fails NotFound", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.withdraw.Approve(888)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestWithdrawalService_BulkApply(t *testing.T) {
	t.Parallel()

	seedRequest := func(t *testing.T, f *fixture, ref string, userID uint, status string) *models.WithdrawalRequest {
		t.Helper()
		w := &models.WithdrawalRequest{
			Reference: ref, UserID: userID, Amount: d("450"), UPI: "bulk@upi",
			Status: status, RequestedAt: inWindow.UTC(),
		}
		require.NoError(t, f.withdrawals.Create(w))
		return w
	}

	t.Run("partial success never blocks the rest of the batch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "bk@example.com", "bk@upi")
		open := seedRequest(t, f, "wd-bulk-1", u.ID, domain.WithdrawalStatusRequested)
		done := seedRequest(t, f, "wd-bulk-2", u.ID, domain.WithdrawalStatusCompleted)

		res, err := f.withdraw.BulkApply(domain.BulkActionApprove, []uint{open.ID, done.ID, 9999}, "")
		require.NoError(t, err)
		require.Equal(t, []uint{open.ID}, res.Succeeded)
		require.Len(t, res.Failed, 2)

		got, err := f.withdrawals.GetByID(open.ID)
		require.NoError(t, err)
		require.Equal(t, domain.WithdrawalStatusCompleted, got.Status)
	})

	t.Run("bulk reject shares one mandatory reason", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.setNow(inWindow)
		u := seedPayee(t, f, "br@example.com", "br@upi")
		a := seedRequest(t, f, "wd-br-1", u.ID, domain.WithdrawalStatusRequested)

		_, err := f.withdraw.BulkApply(domain.BulkActionReject, []uint{a.ID}, "")
		require.ErrorIs(t, err, domain.ErrReasonRequired)

		res, err := f.withdraw.BulkApply(domain.BulkActionReject, []uint{a.ID}, "payout batch cancelled")
		require.NoError(t, err)
		require.Equal(t, []uint{a.ID}, res.Succeeded)

		got, err := f.withdrawals.GetByID(a.ID)
		require.NoError(t, err)
		require.Equal(t, "payout batch cancelled", *got.RejectionReason)
	})
}

func TestWithdrawalService_ExportCSV(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.setNow(inWindow)
	u := seedPayee(t, f, "cs@example.com", "cs@upi")
	w, err := f.withdraw.Create(u.ID, d("500"), "cs@upi", freshOTP(t, f, u.ID))
	require.NoError(t, err)
	_, err = f.withdraw.Reject(w.ID, `suspicious "bot" traffic`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.withdraw.ExportCSV(&buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "id,reference,user_id,amount,upi,status,requested_at,processed_at,rejection_reason\n"))
	require.Contains(t, out, w.Reference)
	require.Contains(t, out, domain.WithdrawalStatusRejected)
	// RFC 4180: embedded quotes doubled
	require.Contains(t, out, `"suspicious ""bot"" traffic"`)
}
