package users

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/domain"
)

// GoogleTokenVerifier validates Google ID tokens.
// Defined here so the service can be tested without network access.
type GoogleTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*auth.GoogleIdentity, error)
}

// Service implements registration, login and profile management.
type Service struct {
	repo   *Repository
	google GoogleTokenVerifier
	log    zerolog.Logger
}

// NewService creates a new user service
func NewService(repo *Repository, google GoogleTokenVerifier, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		google: google,
		log:    log.With().Str("service", "users").Logger(),
	}
}

// Register creates a local account. Duplicate email, PAN or mobile number
// are each rejected with a distinct business-rule error.
func (s *Service) Register(reg Registration) (*User, error) {
	if reg.Email == "" {
		return nil, domain.Validationf("email cannot be empty")
	}
	if reg.Password == "" {
		return nil, domain.Validationf("password cannot be empty")
	}

	if exists, err := s.repo.ExistsByEmail(reg.Email); err != nil {
		return nil, domain.Executionf("registration", err)
	} else if exists {
		return nil, domain.BusinessRulef("email already exists")
	}
	if reg.PANNumber != "" {
		if exists, err := s.repo.ExistsByPAN(reg.PANNumber); err != nil {
			return nil, domain.Executionf("registration", err)
		} else if exists {
			return nil, domain.BusinessRulef("PAN number already registered")
		}
	}
	if reg.MobileNumber != "" {
		if exists, err := s.repo.ExistsByMobile(reg.MobileNumber); err != nil {
			return nil, domain.Executionf("registration", err)
		} else if exists {
			return nil, domain.BusinessRulef("mobile number already registered")
		}
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, domain.Executionf("registration", err)
	}

	user, err := s.repo.Create(User{
		Email:            reg.Email,
		PasswordHash:     hash,
		Name:             reg.Name,
		Provider:         "local",
		PANNumber:        reg.PANNumber,
		MobileNumber:     reg.MobileNumber,
		Gender:           reg.Gender,
		DOB:              reg.DOB,
		ProfileCompleted: true,
	})
	if err != nil {
		return nil, domain.Executionf("registration", err)
	}

	return user, nil
}

// Login authenticates a local account by email and password.
func (s *Service) Login(email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, domain.Validationf("email and password are required")
	}

	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, domain.Executionf("login", err)
	}
	if user == nil {
		return nil, domain.NotFoundf("user not found")
	}

	// Google-provisioned accounts have no password
	if user.Provider == "google" && user.PasswordHash == "" {
		return nil, domain.BusinessRulef("please login with Google")
	}
	if user.PasswordHash == "" {
		return nil, domain.BusinessRulef("no password set for this account")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.BusinessRulef("invalid password")
	}

	return user, nil
}

// LoginWithGoogle verifies a Google ID token and finds or creates the
// matching account. New accounts start with an incomplete profile.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*User, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByEmail(identity.Email)
	if err != nil {
		return nil, domain.Executionf("google login", err)
	}
	if user != nil {
		return user, nil
	}

	s.log.Info().Str("email", identity.Email).Msg("Provisioning account from Google sign-in")

	user, err = s.repo.Create(User{
		Email:            identity.Email,
		Name:             identity.Name,
		Provider:         "google",
		EmailVerified:    identity.EmailVerified,
		Verified:         identity.EmailVerified,
		ProfileCompleted: false,
	})
	if err != nil {
		return nil, domain.Executionf("google login", err)
	}

	return user, nil
}

// CompleteProfile fills in PAN/mobile/gender/dob for an account.
func (s *Service) CompleteProfile(userID int64, update ProfileUpdate) (*User, error) {
	if userID <= 0 {
		return nil, domain.Validationf("invalid user ID")
	}

	if update.PANNumber != "" {
		if exists, err := s.repo.ExistsByPAN(update.PANNumber); err != nil {
			return nil, domain.Executionf("profile update", err)
		} else if exists {
			return nil, domain.BusinessRulef("PAN number already registered")
		}
	}
	if update.MobileNumber != "" {
		if exists, err := s.repo.ExistsByMobile(update.MobileNumber); err != nil {
			return nil, domain.Executionf("profile update", err)
		} else if exists {
			return nil, domain.BusinessRulef("mobile number already registered")
		}
	}

	if err := s.repo.UpdateProfile(userID, update); err != nil {
		if user, _ := s.repo.GetByID(userID); user == nil {
			return nil, domain.NotFoundf("user %d not found", userID)
		}
		return nil, domain.Executionf("profile update", err)
	}

	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, domain.Executionf("profile update", err)
	}
	return user, nil
}

// Get returns a user by id.
func (s *Service) Get(userID int64) (*User, error) {
	if userID <= 0 {
		return nil, domain.Validationf("invalid user ID")
	}
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, domain.Executionf("user lookup", err)
	}
	if user == nil {
		return nil, domain.NotFoundf("user %d not found", userID)
	}
	return user, nil
}
