package service

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"linkmint/internal/domain"
	"linkmint/internal/models"
	"linkmint/internal/repository"
	"linkmint/pkg/mailer"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OTPService owns code generation, hashed storage, expiry and single-use
// verification. Delivery goes through the mailer port.
type OTPService struct {
	otps   *repository.OTPRepository
	users  *repository.UserRepository
	mail   mailer.Mailer
	ttl    time.Duration
	now    func() time.Time
}

func NewOTPService(otps *repository.OTPRepository, users *repository.UserRepository, mail mailer.Mailer, ttl time.Duration) *OTPService {
	return &OTPService{
		otps:  otps,
		users: users,
		mail:  mail,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Issue generates a fresh 6-digit code, stores only its bcrypt hash and
// hands the clear code to the mailer.
func (s *OTPService) Issue(userID uint, purpose string) error {
	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return domain.Transient(err)
	}
	if !u.Verified {
		return domain.ErrUnauthorized
	}
	code, err := generateCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	otp := &models.EmailOTP{
		UserID:    userID,
		Purpose:   purpose,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.otps.Create(otp); err != nil {
		return domain.Transient(err)
	}
	return s.mail.SendOTP(u.Email, code)
}

// VerifyTx checks and consumes the user's latest OTP inside the caller's
// transaction, so consumption commits or rolls back with the withdrawal.
func (s *OTPService) VerifyTx(tx *gorm.DB, userID uint, purpose, code string) error {
	otp, err := s.otps.Tx(tx).Latest(userID, purpose)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrOTPInvalid
		}
		return domain.Transient(err)
	}
	if otp.ConsumedAt != nil {
		return domain.ErrOTPConsumed
	}
	if s.now().After(otp.ExpiresAt) {
		return domain.ErrOTPExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		return domain.ErrOTPInvalid
	}
	ok, err := s.otps.Tx(tx).Consume(otp.ID, s.now())
	if err != nil {
		return domain.Transient(err)
	}
	if !ok {
		return domain.ErrOTPConsumed
	}
	return nil
}

// generateCode returns a zero-padded 6-digit code from crypto/rand.
func generateCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b[:]) % 1000000
	return fmt.Sprintf("%06d", n), nil
}
