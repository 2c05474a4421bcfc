package models

import "time"

// StageRow is one line of the placements export. The contact columns hold the
// availability contact, or the corporation's main contact for the student's section.
type StageRow struct {
	StudentFirstName  string
	StudentLastName   string
	KlassName         string
	SectionName       string
	Start             time.Time
	End               time.Time
	CorporationName   string
	DomainName        string
	ReferentFirstName string
	ReferentLastName  string
	ContactTitle      string
	ContactFirstName  string
	ContactLastName   string
	ContactEmail      string
}

// StudentRow is a student with the labels the student exports need.
type StudentRow struct {
	Student
	KlassName       string
	CorporationName string
	CorporationCity string
	InstructorTitle string
	InstructorFirst string
	InstructorLast  string
	InstructorEmail string
}

// UpdateFormRow is a student with the data printed on the personal data update form.
type UpdateFormRow struct {
	KlassName string
	Gender    Gender
	FirstName string
	LastName  string
	Street    string
	PCode     string
	City      string
	Mobile    string

	HasCorporation    bool
	CorporationName   string
	CorporationStreet string
	CorporationPCode  string
	CorporationCity   string

	HasInstructor   bool
	InstructorFirst string
	InstructorLast  string
	InstructorTel   string
	InstructorEmail string
}

// Label is "Last First".
func (r *UpdateFormRow) Label() string {
	return joinName(r.LastName, r.FirstName)
}
