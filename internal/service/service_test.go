package service

import (
	"testing"
	"time"

	"linkmint/config"
	"linkmint/internal/database"
	"linkmint/internal/domain"
	"linkmint/internal/models"
	"linkmint/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// captureMailer records the last OTP instead of sending it.
type captureMailer struct {
	email string
	code  string
}

func (m *captureMailer) SendOTP(email, code string) error {
	m.email = email
	m.code = code
	return nil
}

type fixture struct {
	db          *gorm.DB
	cfg         config.EarningsConfig
	users       *repository.UserRepository
	links       *repository.LinkRepository
	views       *repository.LinkViewRepository
	referrals   *repository.ReferralRepository
	withdrawals *repository.WithdrawalRepository
	settings    *repository.SettingRepository
	mail        *captureMailer
	earnings    *EarningsService
	otps        *OTPService
	withdraw    *WithdrawalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database shared and serializes writers
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	f := &fixture{
		db: db,
		cfg: config.EarningsConfig{
			ReferralShare:        decimal.RequireFromString("0.05"),
			MinWithdrawal:        decimal.RequireFromString("400"),
			WithdrawalWindowDays: 3,
			OTPTTL:               10 * time.Minute,
			ViewRetryAttempts:    3,
			ViewRetryBackoff:     time.Millisecond,
		},
		mail: &captureMailer{},
	}
	f.users = repository.NewUserRepository(db)
	f.links = repository.NewLinkRepository(db)
	f.views = repository.NewLinkViewRepository(db)
	f.referrals = repository.NewReferralRepository(db)
	f.withdrawals = repository.NewWithdrawalRepository(db)
	f.settings = repository.NewSettingRepository(db)
	f.earnings = NewEarningsService(db, &f.cfg, f.links, f.views, f.referrals, f.users, f.withdrawals, f.settings)
	f.otps = NewOTPService(repository.NewOTPRepository(db), f.users, f.mail, f.cfg.OTPTTL)
	f.withdraw = NewWithdrawalService(db, &f.cfg, f.users, f.withdrawals, f.settings, f.earnings, f.otps)
	return f
}

// setNow pins the clock of every service in the fixture.
func (f *fixture) setNow(ts time.Time) {
	now := func() time.Time { return ts }
	f.earnings.now = now
	f.otps.now = now
	f.withdraw.now = now
}

func (f *fixture) createUser(t *testing.T, email string, referredBy *uint, upi string) *models.User {
	t.Helper()
	u := &models.User{
		Email:      email,
		Role:       domain.RoleUser,
		ReferredBy: referredBy,
		Verified:   true,
		Status:     domain.UserStatusActive,
	}
	if upi != "" {
		u.UPIID = &upi
	}
	require.NoError(t, f.users.Create(u))
	return u
}

func (f *fixture) createLink(t *testing.T, ownerID uint, code, cpm string) *models.Link {
	t.Helper()
	l := &models.Link{
		OwnerID: ownerID,
		Code:    code,
		CPM:     decimal.RequireFromString(cpm),
	}
	require.NoError(t, f.links.Create(l))
	return l
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(d(want)), "want %s, got %s", want, got)
}
