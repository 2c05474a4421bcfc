package dto

import "github.com/cpne/stages/internal/app/models"

// The attribution screen reads these bodies as bare JSON, without the APIResponse envelope.

// PeriodResponse is one entry of /section/{id}/periods/
type PeriodResponse struct {
	ID    int64  `json:"id"`
	Dates string `json:"dates"`
	Title string `json:"title"`
}

// NewPeriodResponses maps periods, keeping their order
func NewPeriodResponses(periods []*models.Period) []PeriodResponse {
	out := make([]PeriodResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, PeriodResponse{ID: p.ID, Dates: p.Dates(), Title: p.Title})
	}
	return out
}

// NewClassPairs renders klasses as [id, name] pairs
func NewClassPairs(klasses []*models.Klass) [][2]interface{} {
	out := make([][2]interface{}, 0, len(klasses))
	for _, k := range klasses {
		out = append(out, [2]interface{}{k.ID, k.Name})
	}
	return out
}

// EligibleStudentResponse is one entry of /period/{id}/students/
type EligibleStudentResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Klass      string `json:"klass"`
	TrainingID *int64 `json:"training_id"`
}

// NewEligibleStudentResponses maps eligible students
func NewEligibleStudentResponses(students []*models.EligibleStudent) []EligibleStudentResponse {
	out := make([]EligibleStudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, EligibleStudentResponse{
			ID: s.ID, Name: s.Label(), Klass: s.KlassName, TrainingID: s.TrainingID,
		})
	}
	return out
}

// AvailabilityResponse is one entry of /period/{id}/corporations/
type AvailabilityResponse struct {
	ID       int64  `json:"id"`
	CorpID   int64  `json:"id_corp"`
	CorpName string `json:"corp_name"`
	Domain   string `json:"domain"`
	Free     bool   `json:"free"`
	Priority bool   `json:"priority"`
}

// NewAvailabilityResponses maps availability views
func NewAvailabilityResponses(views []*models.AvailabilityView) []AvailabilityResponse {
	out := make([]AvailabilityResponse, 0, len(views))
	for _, v := range views {
		out = append(out, AvailabilityResponse{
			ID: v.ID, CorpID: v.CorporationID, CorpName: v.CorporationName,
			Domain: v.DomainName, Free: v.Free, Priority: v.Priority,
		})
	}
	return out
}

// TrainingResponse is one entry of /period/{id}/trainings/
type TrainingResponse struct {
	ID          int64  `json:"id"`
	Student     string `json:"student"`
	Klass       string `json:"klass"`
	Corporation string `json:"corporation"`
	Domain      string `json:"domain"`
	Referent    string `json:"referent"`
}

// NewTrainingResponses maps training views
func NewTrainingResponses(views []*models.TrainingView) []TrainingResponse {
	out := make([]TrainingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, TrainingResponse{
			ID: v.ID, Student: v.StudentLabel(), Klass: v.KlassName,
			Corporation: v.CorporationName, Domain: v.DomainName, Referent: v.ReferentName,
		})
	}
	return out
}

// ContactResponse is one entry of /corporation/{id}/contacts/
type ContactResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	IsMain    bool   `json:"is_main"`
}

// NewContactResponses maps corporation contacts
func NewContactResponses(contacts []*models.CorpContact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, ContactResponse{
			ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Role: c.Role, IsMain: c.IsMain,
		})
	}
	return out
}

// SectionResponse is a section of the attribution screen selector
type SectionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReferentResponse is a teacher with the trainings supervised this school year
type ReferentResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	NumRefs int    `json:"num_refs"`
}

// AttributionResponse feeds the selectors of the attribution screen
type AttributionResponse struct {
	Sections  []SectionResponse  `json:"sections"`
	Referents []ReferentResponse `json:"referents"`
}

// NewAttributionResponse maps the sections and referents lists
func NewAttributionResponse(sections []*models.Section, referents []*models.Referent) AttributionResponse {
	out := AttributionResponse{
		Sections:  make([]SectionResponse, 0, len(sections)),
		Referents: make([]ReferentResponse, 0, len(referents)),
	}
	for _, s := range sections {
		out.Sections = append(out.Sections, SectionResponse{ID: s.ID, Name: s.Name})
	}
	for _, r := range referents {
		out.Referents = append(out.Referents, ReferentResponse{ID: r.ID, Name: r.Label(), NumRefs: r.NumRefs})
	}
	return out
}

// CreateTrainingForm is the form posted to /training/new/
type CreateTrainingForm struct {
	StudentID      int64  `form:"student" binding:"required,gt=0"`
	AvailabilityID int64  `form:"avail" binding:"required,gt=0"`
	ReferentID     string `form:"referent"`
	ContactID      string `form:"contact"`
}

// DeleteTrainingForm is the form posted to /training/del/
type DeleteTrainingForm struct {
	ID int64 `form:"pk" binding:"required,gt=0"`
}

// DeleteTrainingResponse returns the referent of the deleted training so the screen can
// update its counter
type DeleteTrainingResponse struct {
	RefID *int64 `json:"ref_id"`
}
