package models

import "time"

// Student is a person enrolled in a klass. ExtID is the identifier in the cantonal
// registry (CLOEE) and drives imports.
type Student struct {
	ID            int64      `json:"id"`
	ExtID         *int64     `json:"ext_id,omitempty"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Gender        Gender     `json:"gender"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Street        string     `json:"street"`
	PCode         string     `json:"pcode"`
	City          string     `json:"city"`
	District      string     `json:"district"`
	Tel           string     `json:"tel"`
	Mobile        string     `json:"mobile"`
	Email         string     `json:"email"`
	AVS           string     `json:"avs"`
	DispenseECG   bool       `json:"dispense_ecg"`
	DispenseEPS   bool       `json:"dispense_eps"`
	SoutienDYS    bool       `json:"soutien_dys"`
	KlassID       *int64     `json:"klass_id,omitempty"`
	CorporationID *int64     `json:"corporation_id,omitempty"`
	InstructorID  *int64     `json:"instructor_id,omitempty"`
	Archived      bool       `json:"archived"`
	ArchivedText  string     `json:"archived_text,omitempty"`
}

// Label is "Last First".
func (s *Student) Label() string {
	return joinName(s.LastName, s.FirstName)
}

// NeedsSnapshot reports whether saving s must first capture its trainings into
// ArchivedText.
func (s *Student) NeedsSnapshot() bool {
	return s.Archived && s.ArchivedText == ""
}

// ApplyArchival enforces archived <=> archived_text != "" before a save. snapshot is the
// encoded training list, only consulted when the student is being archived.
func (s *Student) ApplyArchival(snapshot string) {
	if s.NeedsSnapshot() {
		s.ArchivedText = snapshot
	}
	if !s.Archived && s.ArchivedText != "" {
		s.ArchivedText = ""
	}
}

// EligibleStudent is a student listed for a period on the placement screen. TrainingID is
// set when the student already has a training in that period.
type EligibleStudent struct {
	ID         int64
	FirstName  string
	LastName   string
	KlassName  string
	TrainingID *int64
}

// Label is "Last First".
func (s *EligibleStudent) Label() string {
	return joinName(s.LastName, s.FirstName)
}
