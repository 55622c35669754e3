package mailer

import "log"

// Mailer delivers OTP codes. Transport (SMTP, SES, ...) lives outside this
// service; implementations receive the clear code exactly once.
type Mailer interface {
	SendOTP(email, code string) error
}

// LogMailer is the development implementation: it only logs.
type LogMailer struct{}

func (LogMailer) SendOTP(email, code string) error {
	log.Printf("[mailer] otp for %s: %s", email, code)
	return nil
}
