package models

import "time"

// Teacher is a member of the teaching staff. Rate is the contractual activity in percent.
// PreviousReport and NextReport carry periods from one school year to the next.
type Teacher struct {
	ID             int64      `json:"id"`
	Civility       string     `json:"civility"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Abbrev         string     `json:"abbrev"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Email          string     `json:"email"`
	Contract       string     `json:"contract"`
	Rate           float64    `json:"rate"`
	PreviousReport int        `json:"previous_report"`
	NextReport     int        `json:"next_report"`
	Archived       bool       `json:"archived"`
}

// Label is "Last First", the key HyperPlanning files use to designate teachers.
func (t *Teacher) Label() string {
	return joinName(t.LastName, t.FirstName)
}

// FullTime reports a 100% contract.
func (t *Teacher) FullTime() bool {
	return t.Rate == 100
}

// Referent is a teacher annotated with the number of trainings supervised in the current
// school year.
type Referent struct {
	Teacher
	NumRefs int `json:"num_refs"`
}
