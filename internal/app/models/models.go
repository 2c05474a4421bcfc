package models

// Gender of a student or candidate. Empty when unknown.
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderUnknown Gender = ""
)

// Civility returns the French salutation for the gender.
func (g Gender) Civility() string {
	switch g {
	case GenderMale:
		return "Monsieur"
	case GenderFemale:
		return "Madame"
	default:
		return ""
	}
}

// Imputation is the accounting cost-center a course is charged to.
type Imputation string

const (
	ImputationNone      Imputation = ""
	ImputationASAFE     Imputation = "ASAFE"
	ImputationASEFE     Imputation = "ASEFE"
	ImputationASSCFE    Imputation = "ASSCFE"
	ImputationMPTS      Imputation = "MPTS"
	ImputationMPS       Imputation = "MPS"
	ImputationEDEpe     Imputation = "EDEpe"
	ImputationEDEps     Imputation = "EDEps"
	ImputationEDS       Imputation = "EDS"
	ImputationCASFPP    Imputation = "CAS_FPP"
	ImputationEDE       Imputation = "EDE"
	ImputationASE       Imputation = "ASE"
	ImputationASSC      Imputation = "ASSC"
	ImputationDirection Imputation = "Direction"
)

// Imputations lists every accepted imputation value, empty excluded.
var Imputations = []Imputation{
	ImputationASAFE, ImputationASEFE, ImputationASSCFE, ImputationMPTS, ImputationMPS,
	ImputationEDEpe, ImputationEDEps, ImputationEDS, ImputationCASFPP, ImputationEDE,
	ImputationASE, ImputationASSC, ImputationDirection,
}

// Valid reports whether i is empty or one of the known imputations.
func (i Imputation) Valid() bool {
	if i == ImputationNone {
		return true
	}
	for _, known := range Imputations {
		if i == known {
			return true
		}
	}
	return false
}

// joinName renders people the way every admin list does: last name first.
func joinName(last, first string) string {
	if first == "" {
		return last
	}
	return last + " " + first
}
