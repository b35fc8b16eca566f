package models

import "time"

// Gender is the fixed enumeration accepted for a client's gender field.
type Gender string

const (
	GenderMale        Gender = "Male"
	GenderFemale      Gender = "Female"
	GenderOther       Gender = "Other"
	GenderUndisclosed Gender = "Prefer not to say"
)

// Client represents a person tracked by the system. Clients may share a
// name; only the id is unique.
type Client struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       *int      `db:"age" json:"age,omitempty"`
	Gender    *Gender   `db:"gender" json:"gender,omitempty"`
	Contact   *string   `db:"contact" json:"contact,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClientProfile combines a client with its enrollments for display.
// Enrollments is an empty slice, never null, when the client holds none.
type ClientProfile struct {
	Client
	Enrollments []ClientEnrollment `json:"enrollments"`
}
