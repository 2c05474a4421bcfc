package models

// Corporation is a partner institution: an employer or an internship provider.
type Corporation struct {
	ID        int64  `json:"id"`
	ExtID     *int64 `json:"ext_id,omitempty"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	District  string `json:"district"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	Sector    string `json:"sector"`
	Typ       string `json:"typ"`
	Street    string `json:"street"`
	PCode     string `json:"pcode"`
	City      string `json:"city"`
	Tel       string `json:"tel"`
	Email     string `json:"email"`
	Web       string `json:"web"`
	Archived  bool   `json:"archived"`
}

// Label renders "name (sector), pcode city", without the sector part when it is empty.
func (c *Corporation) Label() string {
	name := c.Name
	if c.Sector != "" {
		name += " (" + c.Sector + ")"
	}
	return name + ", " + c.PCode + " " + c.City
}

// CorpContact is a person at a corporation: internship contact or apprentice instructor.
type CorpContact struct {
	ID            int64   `json:"id"`
	CorporationID int64   `json:"corporation_id"`
	ExtID         *int64  `json:"ext_id,omitempty"`
	IsMain        bool    `json:"is_main"`
	AlwaysCC      bool    `json:"always_cc"`
	Title         string  `json:"title"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Role          string  `json:"role"`
	Tel           string  `json:"tel"`
	Email         string  `json:"email"`
	Archived      bool    `json:"archived"`
	SectionIDs    []int64 `json:"section_ids,omitempty"`
}

// Label is "Last First".
func (c *CorpContact) Label() string {
	return joinName(c.LastName, c.FirstName)
}

// Domain tags an availability (e.g. "Petite enfance").
type Domain struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
