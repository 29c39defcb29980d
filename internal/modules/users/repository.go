package users

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// usersColumns is the list of columns for the users table.
// Column order must match scanUser() expectations.
const usersColumns = `id, email, password_hash, name, provider, pan_number, mobile_number,
	gender, dob, balance, verified, profile_completed, mobile_verified, email_verified, created_at`

// Repository handles user database operations
type Repository struct {
	appDB *sql.DB
	log   zerolog.Logger
}

// NewRepository creates a new user repository
func NewRepository(appDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		appDB: appDB,
		log:   log.With().Str("repo", "users").Logger(),
	}
}

// Create inserts a new user and returns it with the assigned id.
func (r *Repository) Create(user User) (*User, error) {
	query := `
		INSERT INTO users
		(email, password_hash, name, provider, pan_number, mobile_number,
		 gender, dob, balance, verified, profile_completed, mobile_verified, email_verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().Unix()
	res, err := r.appDB.Exec(query,
		strings.ToLower(strings.TrimSpace(user.Email)),
		nullString(user.PasswordHash),
		user.Name,
		user.Provider,
		nullString(user.PANNumber),
		nullString(user.MobileNumber),
		nullString(user.Gender),
		nullString(user.DOB),
		user.Balance,
		boolToInt(user.Verified),
		boolToInt(user.ProfileCompleted),
		boolToInt(user.MobileVerified),
		boolToInt(user.EmailVerified),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = time.Unix(now, 0).UTC()

	r.log.Info().Int64("user_id", id).Str("provider", user.Provider).Msg("User created")

	return &user, nil
}

// GetByID retrieves a user by id, returning nil when not found.
func (r *Repository) GetByID(id int64) (*User, error) {
	row := r.appDB.QueryRow("SELECT "+usersColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, returning nil when not found.
func (r *Repository) GetByEmail(email string) (*User, error) {
	row := r.appDB.QueryRow("SELECT "+usersColumns+" FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email)))
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// ExistsByEmail checks whether an account with the email exists.
func (r *Repository) ExistsByEmail(email string) (bool, error) {
	return r.exists("email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// ExistsByPAN checks whether an account with the PAN number exists.
func (r *Repository) ExistsByPAN(pan string) (bool, error) {
	return r.exists("pan_number = ?", pan)
}

// ExistsByMobile checks whether an account with the mobile number exists.
func (r *Repository) ExistsByMobile(mobile string) (bool, error) {
	return r.exists("mobile_number = ?", mobile)
}

func (r *Repository) exists(where string, arg interface{}) (bool, error) {
	var one int
	err := r.appDB.QueryRow("SELECT 1 FROM users WHERE "+where+" LIMIT 1", arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return true, nil
}

// UpdateProfile fills in the profile fields and marks the profile completed.
func (r *Repository) UpdateProfile(id int64, update ProfileUpdate) error {
	query := `
		UPDATE users
		SET pan_number = ?, mobile_number = ?, gender = ?, dob = ?, profile_completed = 1
		WHERE id = ?
	`
	res, err := r.appDB.Exec(query,
		nullString(update.PANNumber),
		nullString(update.MobileNumber),
		nullString(update.Gender),
		nullString(update.DOB),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetMobileVerified marks the user's mobile number as verified.
func (r *Repository) SetMobileVerified(mobile string) error {
	_, err := r.appDB.Exec("UPDATE users SET mobile_verified = 1 WHERE mobile_number = ?", mobile)
	if err != nil {
		return fmt.Errorf("failed to set mobile verified: %w", err)
	}
	return nil
}

// SetEmailVerified marks the user's email as verified.
func (r *Repository) SetEmailVerified(email string) error {
	_, err := r.appDB.Exec("UPDATE users SET email_verified = 1, verified = 1 WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to set email verified: %w", err)
	}
	return nil
}

// scanUser scans a user row. Works for both *sql.Row and *sql.Rows.
func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	var user User
	var passwordHash, pan, mobile, gender, dob sql.NullString
	var verified, profileCompleted, mobileVerified, emailVerified int
	var createdAt int64

	err := row.Scan(
		&user.ID,
		&user.Email,
		&passwordHash,
		&user.Name,
		&user.Provider,
		&pan,
		&mobile,
		&gender,
		&dob,
		&user.Balance,
		&verified,
		&profileCompleted,
		&mobileVerified,
		&emailVerified,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash.String
	user.PANNumber = pan.String
	user.MobileNumber = mobile.String
	user.Gender = gender.String
	user.DOB = dob.String
	user.Verified = verified != 0
	user.ProfileCompleted = profileCompleted != 0
	user.MobileVerified = mobileVerified != 0
	user.EmailVerified = emailVerified != 0
	user.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &user, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
