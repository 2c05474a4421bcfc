package models

import (
	"strings"
	"time"
)

// ExamPerson is a participant of a diploma defence: the student or one of the experts.
type ExamPerson struct {
	Civility  string
	FirstName string
	LastName  string
	Email     string
}

// CivilityFullName is "Madame Anne Dupond".
func (p *ExamPerson) CivilityFullName() string {
	return strings.TrimSpace(p.Civility + " " + strings.TrimSpace(p.FirstName+" "+p.LastName))
}

// Examination is the diploma defence of a student. Expert is a corporation contact,
// InternalExpert a teacher of the school.
type Examination struct {
	StudentID           int64
	Student             ExamPerson
	Date                *time.Time
	Room                string
	Expert              *ExamPerson
	InternalExpert      *ExamPerson
	ConvocationMailedAt *time.Time
}

// Missing lists the examination data still to be entered.
func (e *Examination) Missing() []string {
	var missing []string
	if e.Expert == nil {
		missing = append(missing, "L’expert externe n’a pas été défini !")
	}
	if e.InternalExpert == nil {
		missing = append(missing, "L’expert interne n’a pas été défini !")
	}
	if e.Date == nil {
		missing = append(missing, "La date d’examen est manquante")
	}
	if strings.TrimSpace(e.Room) == "" {
		missing = append(missing, "La salle d’examen n’est pas définie")
	}
	return missing
}

// ConvocationErrors lists what prevents mailing the convocation. It is empty when the
// examination data is complete, both experts have an e-mail and nothing was sent yet.
func (e *Examination) ConvocationErrors() []string {
	errs := e.Missing()
	if e.Expert != nil && e.Expert.Email == "" {
		errs = append(errs, "L’expert externe n’a pas de courriel valide !")
	}
	if e.InternalExpert != nil && e.InternalExpert.Email == "" {
		errs = append(errs, "L’expert interne n'a pas de courriel valide !")
	}
	if e.ConvocationMailedAt != nil {
		errs = append(errs, "Une convocation a déjà été envoyée !")
	}
	return errs
}

// Participants returns the student and both experts. Only valid once Missing is empty.
func (e *Examination) Participants() []ExamPerson {
	return []ExamPerson{e.Student, *e.Expert, *e.InternalExpert}
}

// GlobalCivilities is the collective salutation of the participants, ladies first.
func (e *Examination) GlobalCivilities() string {
	ladies := 0
	for _, p := range e.Participants() {
		if p.Civility == "Madame" {
			ladies++
		}
	}
	switch ladies {
	case 0:
		return "Messieurs"
	case 1:
		return "Madame, Messieurs"
	case 2:
		return "Mesdames, Monsieur"
	default:
		return "Mesdames"
	}
}
