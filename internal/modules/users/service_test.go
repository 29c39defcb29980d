package users

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/database"
	"github.com/stockpro/stockpro/internal/domain"
)

// stubGoogle returns a fixed identity, or an error when identity is nil.
type stubGoogle struct {
	identity *auth.GoogleIdentity
}

func (s *stubGoogle) Verify(ctx context.Context, idToken string) (*auth.GoogleIdentity, error) {
	if s.identity == nil {
		return nil, domain.Validationf("invalid Google token")
	}
	return s.identity, nil
}

func newUsersFixture(t *testing.T, google *stubGoogle) *Service {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// each pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.AppSchema)
	require.NoError(t, err)

	return NewService(NewRepository(db, log), google, log)
}

func TestRegisterAndLogin(t *testing.T) {
	service := newUsersFixture(t, &stubGoogle{})

	user, err := service.Register(Registration{
		Email:        "jay@example.com",
		Password:     "hunter2secret",
		Name:         "Jay",
		PANNumber:    "ABCDE1234F",
		MobileNumber: "9876543210",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "local", user.Provider)
	assert.True(t, user.ProfileCompleted)
	assert.Empty(t, user.Balance)

	logged, err := service.Login("jay@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = service.Login("jay@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))
}

func TestRegister_DuplicateChecks(t *testing.T) {
	service := newUsersFixture(t, &stubGoogle{})

	_, err := service.Register(Registration{
		Email:        "first@example.com",
		Password:     "password1",
		PANNumber:    "ABCDE1234F",
		MobileNumber: "9876543210",
	})
	require.NoError(t, err)

	testCases := []struct {
		name string
		reg  Registration
		msg  string
	}{
		{"duplicate email", Registration{Email: "first@example.com", Password: "x"}, "email already exists"},
		{"duplicate PAN", Registration{Email: "other@example.com", Password: "x", PANNumber: "ABCDE1234F"}, "PAN number already registered"},
		{"duplicate mobile", Registration{Email: "other@example.com", Password: "x", MobileNumber: "9876543210"}, "mobile number already registered"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Register(tc.reg)
			require.Error(t, err)
			assert.True(t, domain.IsBusinessRule(err))
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	service := newUsersFixture(t, &stubGoogle{})

	_, err := service.Login("ghost@example.com", "whatever")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestLoginWithGoogle_ProvisionsAccountOnce(t *testing.T) {
	google := &stubGoogle{identity: &auth.GoogleIdentity{
		Email:         "g@example.com",
		Name:          "G User",
		EmailVerified: true,
	}}
	service := newUsersFixture(t, google)

	user, err := service.LoginWithGoogle(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "google", user.Provider)
	assert.False(t, user.ProfileCompleted)
	assert.True(t, user.EmailVerified)

	again, err := service.LoginWithGoogle(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	// password login against a Google account must redirect to Google
	_, err = service.Login("g@example.com", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Google")
}

func TestLoginWithGoogle_BadToken(t *testing.T) {
	service := newUsersFixture(t, &stubGoogle{})

	_, err := service.LoginWithGoogle(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestCompleteProfile(t *testing.T) {
	google := &stubGoogle{identity: &auth.GoogleIdentity{Email: "g@example.com", Name: "G"}}
	service := newUsersFixture(t, google)

	user, err := service.LoginWithGoogle(context.Background(), "token")
	require.NoError(t, err)

	updated, err := service.CompleteProfile(user.ID, ProfileUpdate{
		PANNumber:    "FGHIJ5678K",
		MobileNumber: "9123456780",
		Gender:       "other",
		DOB:          "1990-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "FGHIJ5678K", updated.PANNumber)
	assert.True(t, updated.ProfileCompleted)

	_, err = service.CompleteProfile(9999, ProfileUpdate{PANNumber: "ZZZZZ9999Z"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}
