package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Any of the three values is accepted from
// any current value; the enumeration membership is the only constraint.
const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusWithdrawn EnrollmentStatus = "withdrawn"
)

// Valid reports whether the status is one of the recognized values.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusWithdrawn:
		return true
	}
	return false
}

// Enrollment links one client to one program. The (client_id, program_id)
// pair is unique; the store cascades deletion from either parent.
type Enrollment struct {
	ID         int64            `db:"id" json:"id"`
	ClientID   int64            `db:"client_id" json:"client_id"`
	ProgramID  int64            `db:"program_id" json:"program_id"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	Status     EnrollmentStatus `db:"status" json:"status"`
}

// EnrollmentDetail enriches Enrollment with both parent names for listings.
type EnrollmentDetail struct {
	Enrollment
	ClientName  string `db:"client_name" json:"client_name"`
	ProgramName string `db:"program_name" json:"program_name"`
}

// ClientEnrollment is the client-side view: an enrollment enriched with
// program name and description.
type ClientEnrollment struct {
	Enrollment
	ProgramName        string  `db:"program_name" json:"program_name"`
	ProgramDescription *string `db:"program_description" json:"program_description,omitempty"`
}

// ProgramEnrollment is the program-side view: an enrollment enriched with
// client demographics.
type ProgramEnrollment struct {
	Enrollment
	ClientName   string  `db:"client_name" json:"client_name"`
	ClientAge    *int    `db:"client_age" json:"client_age,omitempty"`
	ClientGender *Gender `db:"client_gender" json:"client_gender,omitempty"`
}
