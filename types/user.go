package types

import "time"

// Roles a user account can hold. The role decides which claim
// transitions and views are permitted.
const (
	RoleLecturer    = "Lecturer"
	RoleCoordinator = "Coordinator"
	RoleManager     = "Manager"
	RoleHR          = "HR"
)

// User represents an account in the system.
// It contains identity, role, and credential metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Email is the user's email address and login identifier.
	Email string `json:"email" db:"email"`

	// PhoneNumber is the user's contact number.
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	// Role indicates the user's position within the approval
	// workflow ("Lecturer", "Coordinator", "Manager", "HR").
	Role string `json:"role" db:"role"`

	// HourlyRate is the contracted rate in rand per hour. It is only
	// meaningful for lecturers and is snapshotted onto claims at
	// submission time.
	HourlyRate float64 `json:"hourly_rate" db:"hourly_rate"`

	// PasswordHash stores the base64 PBKDF2 digest of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// PasswordSalt stores the base64 per-user salt the digest was
	// computed with.
	PasswordSalt string `json:"-" db:"password_salt"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the user's display name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
