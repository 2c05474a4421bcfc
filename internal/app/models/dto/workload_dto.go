package dto

import "github.com/cpne/stages/internal/app/models"

// ImputationEntry is one accounting column of a teacher workload
type ImputationEntry struct {
	Key     string `json:"key"`
	Periods int    `json:"periods"`
}

// ActivityTotals mirrors the yearly activity of a teacher, in periods
type ActivityTotals struct {
	Mandates       []*models.Course `json:"mandates"`
	PreviousReport int              `json:"previous_report"`
	TotMandates    int              `json:"tot_mandates"`
	TotTeaching    int              `json:"tot_teaching"`
	TotFormation   int              `json:"tot_formation"`
	TotWork        int              `json:"tot_work"`
	TotPaid        int              `json:"tot_paid"`
	Report         int              `json:"report"`
}

// TeacherActivityResponse is the body of /teacher/{id}/activity/
type TeacherActivityResponse struct {
	TeacherID        int64             `json:"teacher_id"`
	Teacher          string            `json:"teacher"`
	Rate             float64           `json:"rate"`
	TotHyperPlanning int               `json:"tot_hyperplanning"`
	PercentPaid      float64           `json:"percent_paid"`
	Activity         ActivityTotals    `json:"activity"`
	Imputations      []ImputationEntry `json:"imputations"`
	TotImputations   int               `json:"tot_imputations"`
}
