package models

// Availability is an internship slot offered by a corporation during a period.
type Availability struct {
	ID            int64  `json:"id"`
	CorporationID int64  `json:"corporation_id"`
	PeriodID      int64  `json:"period_id"`
	DomainID      int64  `json:"domain_id"`
	ContactID     *int64 `json:"contact_id,omitempty"`
	Priority      bool   `json:"priority"`
	Comment       string `json:"comment"`
}

// AvailabilityView is an availability joined with the names the placement screen shows.
// Free is true when no training references the availability.
type AvailabilityView struct {
	ID              int64
	CorporationID   int64
	CorporationName string
	DomainName      string
	Free            bool
	Priority        bool
}
