package models

import "strings"

// MandatePrefix marks a course subject as a mandate.
const MandatePrefix = "#"

// CourseKind separates teaching hours from mandates.
type CourseKind int

const (
	CourseTeaching CourseKind = iota
	CourseMandate
)

func (k CourseKind) String() string {
	if k == CourseMandate {
		return "mandate"
	}
	return "teaching"
}

// Course is a teaching assignment imported from HyperPlanning. Period is a count of
// lesson periods for the whole school year.
type Course struct {
	ID         int64      `json:"id"`
	TeacherID  *int64     `json:"teacher_id,omitempty"`
	Public     string     `json:"public"`
	Subject    string     `json:"subject"`
	Period     int        `json:"period"`
	Imputation Imputation `json:"imputation"`
}

// Kind classifies the course from its subject marker.
func (c *Course) Kind() CourseKind {
	if strings.HasPrefix(c.Subject, MandatePrefix) {
		return CourseMandate
	}
	return CourseTeaching
}

// Label mirrors the admin listing "teacher - public - subject - period".
func (c *Course) Label(teacher string) string {
	return teacher + " - " + c.Public + " - " + c.Subject + " - " + itoa(c.Period)
}
