package otp

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
)

// CodeSender delivers a code to one destination.
type CodeSender interface {
	SendCode(destination, code string) error
}

// VerificationMarker flips the verified flags on the user record once a
// code checks out. Satisfied by the users repository.
type VerificationMarker interface {
	SetMobileVerified(mobile string) error
	SetEmailVerified(email string) error
}

// Service issues and verifies one-time codes for mobile numbers and email
// addresses.
type Service struct {
	store *Store
	sms   CodeSender
	email CodeSender
	users VerificationMarker
	log   zerolog.Logger
}

// NewService creates a new OTP service
func NewService(store *Store, sms, email CodeSender, users VerificationMarker, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		sms:   sms,
		email: email,
		users: users,
		log:   log.With().Str("service", "otp").Logger(),
	}
}

// SendMobileCode issues a code and delivers it by SMS. The code is stored
// only after delivery succeeds, so a failed send leaves nothing pending.
func (s *Service) SendMobileCode(mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return domain.Validationf("mobile number must not be empty")
	}

	code, err := GenerateCode()
	if err != nil {
		return domain.Executionf("code generation", err)
	}

	if err := s.sms.SendCode(mobile, code); err != nil {
		return domain.Executionf("SMS delivery", err)
	}

	s.store.Put(mobileKey(mobile), code)
	s.log.Info().Str("mobile", mobile).Msg("Mobile verification code sent")
	return nil
}

// VerifyMobileCode checks a code and, on success, marks the mobile number
// verified on the user record.
func (s *Service) VerifyMobileCode(mobile, code string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" || code == "" {
		return domain.Validationf("mobile number and code must not be empty")
	}

	if !s.store.Consume(mobileKey(mobile), code) {
		return domain.BusinessRulef("invalid or expired code")
	}

	if err := s.users.SetMobileVerified(mobile); err != nil {
		return domain.Executionf("verification update", err)
	}

	s.log.Info().Str("mobile", mobile).Msg("Mobile number verified")
	return nil
}

// SendEmailCode issues a code and delivers it by email.
func (s *Service) SendEmailCode(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.Validationf("email must not be empty")
	}

	code, err := GenerateCode()
	if err != nil {
		return domain.Executionf("code generation", err)
	}

	if err := s.email.SendCode(email, code); err != nil {
		return domain.Executionf("email delivery", err)
	}

	s.store.Put(emailKey(email), code)
	s.log.Info().Str("email", email).Msg("Email verification code sent")
	return nil
}

// VerifyEmailCode checks a code and, on success, marks the email address
// verified on the user record.
func (s *Service) VerifyEmailCode(email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || code == "" {
		return domain.Validationf("email and code must not be empty")
	}

	if !s.store.Consume(emailKey(email), code) {
		return domain.BusinessRulef("invalid or expired code")
	}

	if err := s.users.SetEmailVerified(email); err != nil {
		return domain.Executionf("verification update", err)
	}

	s.log.Info().Str("email", email).Msg("Email address verified")
	return nil
}

// Separate key namespaces so a mobile code can never verify an email.
func mobileKey(mobile string) string { return "sms:" + mobile }
func emailKey(email string) string   { return "email:" + email }
