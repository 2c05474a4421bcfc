package models

import (
	"time"

	"github.com/cpne/stages/internal/pkg/schoolyear"
)

const dateLayout = "2006-01-02"

// Period is a scheduled internship window for a section and level.
type Period struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	SectionID int64     `json:"section_id"`
	LevelID   int64     `json:"level_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	Section *Section `json:"section,omitempty"`
	Level   *Level   `json:"level,omitempty"`
}

// Dates renders "2024-09-02 - 2024-10-25".
func (p *Period) Dates() string {
	return p.StartDate.Format(dateLayout) + " - " + p.EndDate.Format(dateLayout)
}

// Label renders "<dates> (<title>)".
func (p *Period) Label() string {
	return p.Dates() + " (" + p.Title + ")"
}

// Weeks is the floored number of whole weeks between start and end.
func (p *Period) Weeks() int {
	days := int(p.EndDate.Sub(p.StartDate).Hours() / 24)
	return days / 7
}

// SchoolYear is the school year the period starts in.
func (p *Period) SchoolYear() schoolyear.Year {
	return schoolyear.Of(p.StartDate)
}

// RelativeLevelShift is the level delta to apply to p's level to obtain the level the
// concerned students are in today. A period planned next school year targets students
// one level below.
func (p *Period) RelativeLevelShift(today time.Time) int {
	return -schoolyear.Shift(p.StartDate, today)
}

// ValidDates reports start <= end.
func (p *Period) ValidDates() bool {
	return !p.StartDate.After(p.EndDate)
}
