package dto

// CreateKlassRequest represents klass creation data
type CreateKlassRequest struct {
	Name      string `json:"name" binding:"required,max=10"`
	SectionID int64  `json:"section_id" binding:"required,gt=0"`
	LevelID   int64  `json:"level_id" binding:"required,gt=0"`
	TeacherID *int64 `json:"teacher_id"`
}

// CreateCorporationRequest represents corporation creation data
type CreateCorporationRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	ShortName string `json:"short_name"`
	District  string `json:"district"`
	ParentID  *int64 `json:"parent_id"`
	Sector    string `json:"sector"`
	Typ       string `json:"typ"`
	Street    string `json:"street"`
	PCode     string `json:"pcode" binding:"required,max=4"`
	City      string `json:"city" binding:"required,max=40"`
	Tel       string `json:"tel"`
	Email     string `json:"email" binding:"omitempty,email"`
	Web       string `json:"web"`
}

// ArchiveStudentRequest toggles the archived flag of a student
type ArchiveStudentRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

// CreatePeriodRequest represents period creation data; dates are YYYY-MM-DD
type CreatePeriodRequest struct {
	Title     string `json:"title" binding:"required,max=150"`
	SectionID int64  `json:"section_id" binding:"required,gt=0"`
	LevelID   int64  `json:"level_id" binding:"required,gt=0"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// CreateAvailabilitiesRequest creates Count identical availabilities
type CreateAvailabilitiesRequest struct {
	CorporationID int64  `json:"corporation_id" binding:"required,gt=0"`
	PeriodID      int64  `json:"period_id" binding:"required,gt=0"`
	DomainID      int64  `json:"domain_id" binding:"required,gt=0"`
	ContactID     *int64 `json:"contact_id"`
	Priority      bool   `json:"priority"`
	Comment       string `json:"comment"`
	Count         int    `json:"count" binding:"required,gte=1"`
}

// CreatedIDsResponse lists the ids of created rows
type CreatedIDsResponse struct {
	IDs []int64 `json:"ids"`
}

// ConfirmationRequest is the mail sent to a candidate
type ConfirmationRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// ConfirmationResponse reports when the confirmation mail went out
type ConfirmationResponse struct {
	SentAt string `json:"sent_at"`
}
