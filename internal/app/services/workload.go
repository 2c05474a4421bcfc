package services

import (
	"math"
	"strings"

	"github.com/cpne/stages/internal/app/models"
)

// WorkloadLimits are the yearly periods of a full-time teaching position.
type WorkloadLimits struct {
	MaxEnsPeriods   int
	MaxEnsFormation int
}

// FullTime is the total paid to a 100% contract.
func (l WorkloadLimits) FullTime() int {
	return l.MaxEnsPeriods + l.MaxEnsFormation
}

// Percent expresses periods as a percentage of a full-time position.
func (l WorkloadLimits) Percent(periods int) float64 {
	if l.FullTime() == 0 {
		return 0
	}
	return float64(periods) / (float64(l.FullTime()) / 100)
}

// Activity is the yearly workload summary of a teacher, in periods.
type Activity struct {
	Mandates       []*models.Course `json:"mandates"`
	PreviousReport int              `json:"previous_report"`
	TotMandates    int              `json:"tot_mandates"`
	TotTeaching    int              `json:"tot_teaching"`
	TotFormation   int              `json:"tot_formation"`
	TotWork        int              `json:"tot_work"`
	TotPaid        int              `json:"tot_paid"`
	Report         int              `json:"report"`
}

// TotHyperPlanning is the sum of the periods imported from HyperPlanning.
func (a *Activity) TotHyperPlanning() int {
	return a.TotMandates + a.TotTeaching
}

// ImputationKeys are the accounting columns, in the order reports list them.
var ImputationKeys = []string{"ASA", "ASSC", "ASE", "MP", "EDEpe", "EDEps", "EDS", "CAS-FPP", "Direction"}

// Imputations maps each of ImputationKeys to a number of periods.
type Imputations map[string]int

// Total sums every column.
func (im Imputations) Total() int {
	total := 0
	for _, v := range im {
		total += v
	}
	return total
}

// Ordered returns the values in ImputationKeys order.
func (im Imputations) Ordered() []int {
	values := make([]int, len(ImputationKeys))
	for i, k := range ImputationKeys {
		values[i] = im[k]
	}
	return values
}

// roundHalfAway rounds x to the nearest integer, halves away from zero.
func roundHalfAway(x float64) int {
	return int(math.Round(x))
}

// CalcActivity aggregates the courses of a teacher. Mandates (subjects starting with
// '#') are counted apart from teaching. Continuing education is granted pro rata of the
// productive periods, and a full-time teacher is paid at most the full-time total: the
// excess is carried to the next school year in Report.
func CalcActivity(teacher *models.Teacher, courses []*models.Course, limits WorkloadLimits) *Activity {
	a := &Activity{Mandates: []*models.Course{}, PreviousReport: teacher.PreviousReport}
	for _, c := range courses {
		switch c.Kind() {
		case models.CourseMandate:
			a.Mandates = append(a.Mandates, c)
			a.TotMandates += c.Period
		case models.CourseTeaching:
			a.TotTeaching += c.Period
		}
	}

	if limits.MaxEnsPeriods > 0 {
		a.TotFormation = roundHalfAway(float64(a.TotHyperPlanning()) * float64(limits.MaxEnsFormation) / float64(limits.MaxEnsPeriods))
	}
	a.TotWork = a.PreviousReport + a.TotMandates + a.TotTeaching + a.TotFormation
	a.TotPaid = a.TotWork
	if teacher.FullTime() && a.TotWork > limits.FullTime() {
		a.TotPaid = limits.FullTime()
	}
	a.Report = a.TotWork - a.TotPaid
	return a
}

// matchesKey is the substring test of imputation columns. Course imputations spell
// CAS_FPP with an underscore, the column with a dash.
func matchesKey(imputation models.Imputation, key string) bool {
	if imputation == models.ImputationNone {
		return false
	}
	return strings.Contains(strings.ReplaceAll(string(imputation), "_", "-"), key)
}

// CalcImputations distributes the periods of courses over the accounting columns.
// Composite imputations count for every column they contain (ASEFE counts for ASE).
// Continuing education is then spread pro rata, and plain EDE periods are split between
// EDEpe and EDEps in proportion to what those columns already hold, evenly when both are
// empty.
func CalcImputations(courses []*models.Course, activity *Activity) Imputations {
	im := make(Imputations, len(ImputationKeys))
	for _, k := range ImputationKeys {
		im[k] = 0
		for _, c := range courses {
			if matchesKey(c.Imputation, k) {
				im[k] += c.Period
			}
		}
	}

	if total := im.Total(); total > 0 {
		base := make(map[string]int, len(im))
		for k, v := range im {
			base[k] = v
		}
		for _, k := range ImputationKeys {
			im[k] += roundHalfAway(float64(base[k]) * float64(activity.TotFormation) / float64(total))
		}
	}

	ede := 0
	for _, c := range courses {
		if c.Imputation == models.ImputationEDE {
			ede += c.Period
		}
	}
	if ede > 0 {
		pe, ps := im["EDEpe"], im["EDEps"]
		var pePlus int
		if pe+ps == 0 {
			pePlus = ede / 2
		} else {
			pePlus = roundHalfAway(float64(ede) * float64(pe) / float64(pe+ps))
		}
		im["EDEpe"] += pePlus
		im["EDEps"] += ede - pePlus
	}
	return im
}
