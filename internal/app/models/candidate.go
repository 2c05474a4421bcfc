package models

import (
	"strconv"
	"time"
)

// Candidate is an admission file. Accepted candidates become students through the
// student import.
type Candidate struct {
	ID                   int64      `json:"id"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	Gender               Gender     `json:"gender"`
	BirthDate            *time.Time `json:"birth_date,omitempty"`
	Street               string     `json:"street"`
	PCode                string     `json:"pcode"`
	City                 string     `json:"city"`
	Email                string     `json:"email"`
	Mobile               string     `json:"mobile"`
	Section              string     `json:"section"`
	Option               string     `json:"option"`
	CorporationID        *int64     `json:"corporation_id,omitempty"`
	InstructorID         *int64     `json:"instructor_id,omitempty"`
	ExemptionECG         bool       `json:"exemption_ecg"`
	Handicap             bool       `json:"handicap"`
	DateConfirmationMail *time.Time `json:"date_confirmation_mail,omitempty"`
}

// Label is "Last First".
func (c *Candidate) Label() string {
	return joinName(c.LastName, c.FirstName)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
