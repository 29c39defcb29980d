// Package users implements registration, authentication and account state.
package users

import "time"

// User represents a registered account.
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Name             string    `json:"name"`
	Provider         string    `json:"provider"` // "local" or "google"
	PANNumber        string    `json:"pan_number,omitempty"`
	MobileNumber     string    `json:"mobile_number,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	DOB              string    `json:"dob,omitempty"` // yyyy-MM-dd
	Balance          float64   `json:"balance"`
	Verified         bool      `json:"verified"`
	ProfileCompleted bool      `json:"profile_completed"`
	MobileVerified   bool      `json:"mobile_verified"`
	EmailVerified    bool      `json:"email_verified"`
	CreatedAt        time.Time `json:"created_at"`
}

// Registration is the input for creating a local account.
type Registration struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	PANNumber    string `json:"pan_number"`
	MobileNumber string `json:"mobile_number"`
	Gender       string `json:"gender"`
	DOB          string `json:"dob"`
}

// ProfileUpdate carries the fields a Google-provisioned user fills in after
// first sign-in.
type ProfileUpdate struct {
	PANNumber    string `json:"pan_number"`
	MobileNumber string `json:"mobile_number"`
	Gender       string `json:"gender"`
	DOB          string `json:"dob"`
}
