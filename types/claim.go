package types

import "time"

// Claim statuses, mirroring the seeded claim_statuses reference rows.
// Statuses are fixed reference data and are never created at runtime.
const (
	StatusSubmitted           = 1
	StatusCoordinatorApproved = 2
	StatusManagerApproved     = 3
	StatusCoordinatorRejected = 4
	StatusManagerRejected     = 5
	StatusPaid                = 6
)

// Validation bounds for claim submission.
const (
	MinHoursWorked = 0.5
	MaxHoursWorked = 180
	MinHourlyRate  = 50
	MaxHourlyRate  = 1000
	MaxNotesLength = 500
)

// ClaimStatus is a reference row naming one of the six workflow states.
type ClaimStatus struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Claim is a lecturer's monthly hours-worked submission moving through
// the coordinator/manager approval pipeline.
type Claim struct {
	// ID is the unique identifier of the claim.
	ID int `json:"id" db:"id"`

	// UserID references the lecturer that owns the claim.
	UserID int `json:"user_id" db:"user_id"`

	// HoursWorked is the number of hours claimed for the month.
	HoursWorked float64 `json:"hours_worked" db:"hours_worked"`

	// HourlyRate is the rate snapshotted from the owner at submission
	// time. It is never re-read from the user afterwards, so later HR
	// rate changes do not affect existing claims.
	HourlyRate float64 `json:"hourly_rate" db:"hourly_rate"`

	// TotalAmount is always HoursWorked * HourlyRate. It is recomputed
	// on every write.
	TotalAmount float64 `json:"total_amount" db:"total_amount"`

	// StatusID is the claim's current workflow state.
	StatusID int `json:"status_id" db:"status_id"`

	// StatusName is the display name of the current status, populated
	// on reads by joining the reference table.
	StatusName string `json:"status_name,omitempty" db:"-"`

	// SubmissionDate is when the claim was created.
	SubmissionDate time.Time `json:"submission_date" db:"submission_date"`

	// Notes is free-text supplied by the lecturer, at most 500 characters.
	Notes string `json:"notes" db:"notes"`

	// User is the claim owner, populated on reads.
	User *User `json:"user,omitempty" db:"-"`

	// Documents are the supporting documents uploaded with the claim,
	// populated on reads. Their lifetime is tied to the claim.
	Documents []Document `json:"documents,omitempty" db:"-"`
}
