package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/helpers"
	"github.com/cpne/stages/internal/pkg/metrics"
	"github.com/cpne/stages/internal/pkg/tabular"
)

// ImportKind selects the file family of an import
type ImportKind string

const (
	ImportStudents   ImportKind = "students"
	ImportHP         ImportKind = "hp"
	ImportHPContacts ImportKind = "hp-contacts"
)

// ImportResult summarizes an import. Errors are the row-level issues that did not stop
// the import.
type ImportResult struct {
	Created  int      `json:"created"`
	Modified int      `json:"modified"`
	Archived int      `json:"archived"`
	Errors   []string `json:"errors"`
}

func (r *ImportResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ImportMappings map external column names to internal attribute names
type ImportMappings struct {
	Student     map[string]string
	Corporation map[string]string
	Instructor  map[string]string
}

// HyperPlanning teaching plan columns
const (
	hpTeacher = "NOMPERSO_ENS"
	hpSubject = "LIBELLE_MAT"
	hpPublic  = "NOMPERSO_DIP"
	hpTotal   = "TOTAL"
)

// HyperPlanning instructors columns
const (
	hpcStudent   = "UID_ETU"
	hpcSiret     = "NoSIRET"
	hpcLastName  = "NOMMDS"
	hpcFirstName = "PRENOMMDS"
	hpcCivility  = "CIVMDS"
	hpcEmail     = "EMAILMDS"
)

// accountCategories maps a marker found in a course public to its imputation. The first
// marker contained in the public wins, so longer markers come first.
var accountCategories = []struct {
	marker     string
	imputation models.Imputation
}{
	{"ASAFE", models.ImputationASAFE},
	{"ASEFE", models.ImputationASEFE},
	{"ASSCFE", models.ImputationASSCFE},
	{"#Mandat_ASA", models.ImputationASAFE},
	{"MPTS", models.ImputationMPTS},
	{"MPS", models.ImputationMPS},
	{"CMS ASE", models.ImputationMPTS},
	{"CMS ASSC", models.ImputationMPS},
	{"EDEpe", models.ImputationEDEpe},
	{"EDEps", models.ImputationEDEps},
	{"EDS", models.ImputationEDS},
	{"CAS_FPP", models.ImputationCASFPP},
	{"EDE", models.ImputationEDE},
	{"#Mandat_ASE", models.ImputationASE},
	{"#Mandat_ASSC", models.ImputationASSC},
}

// ImputationForPublic derives a course imputation from its public, empty when no marker
// matches.
func ImputationForPublic(public string) models.Imputation {
	for _, c := range accountCategories {
		if strings.Contains(public, c.marker) {
			return c.imputation
		}
	}
	return models.ImputationNone
}

// ImportService reconciles tabular dumps with the database
type ImportService struct {
	uow      UnitOfWork
	mappings ImportMappings
	loc      *time.Location
	logger   zerolog.Logger
}

// NewImportService creates a new import service instance
func NewImportService(uow UnitOfWork, mappings ImportMappings, loc *time.Location, logger zerolog.Logger) *ImportService {
	return &ImportService{
		uow:      uow,
		mappings: mappings,
		loc:      loc,
		logger:   logger,
	}
}

// Import parses the uploaded file and runs the import of the given kind in a single
// transaction. Any fatal error rolls everything back and is reported as one message.
func (s *ImportService) Import(ctx context.Context, kind ImportKind, filename string, r io.Reader) (*ImportResult, error) {
	start := time.Now()
	result, err := s.run(ctx, kind, filename, r)
	if err != nil {
		metrics.RecordImport(string(kind), time.Since(start), 0, 0, 0, 0, false)
		s.logger.Warn().Err(err).Str("kind", string(kind)).Str("file", filename).Msg("Import failed")
		return nil, apperrors.NewImportError(fmt.Sprintf("L'importation a échoué. Erreur: %s", apperrors.UserMessage(err)))
	}
	metrics.RecordImport(string(kind), time.Since(start), result.Created, result.Modified, result.Archived, len(result.Errors), true)
	s.logger.Info().
		Str("kind", string(kind)).
		Int("created", result.Created).
		Int("modified", result.Modified).
		Int("archived", result.Archived).
		Int("errors", len(result.Errors)).
		Msg("Import done")
	return result, nil
}

func (s *ImportService) run(ctx context.Context, kind ImportKind, filename string, r io.Reader) (*ImportResult, error) {
	table, err := tabular.Read(filename, r)
	if err != nil {
		return nil, err
	}

	var fn func(ctx context.Context, tx ImportTx, table *tabular.Table) (*ImportResult, error)
	switch kind {
	case ImportStudents:
		if err := table.Require(s.studentColumns()...); err != nil {
			return nil, err
		}
		fn = s.importStudents
	case ImportHP:
		if err := table.Require(hpTeacher, hpSubject, hpPublic, hpTotal); err != nil {
			return nil, err
		}
		fn = importHP
	case ImportHPContacts:
		if err := table.Require(hpcStudent, hpcSiret, hpcLastName, hpcFirstName, hpcCivility, hpcEmail); err != nil {
			return nil, err
		}
		fn = importHPContacts
	default:
		return nil, fmt.Errorf("type d'importation inconnu: %s", kind)
	}

	var result *ImportResult
	err = s.uow.RunInTx(ctx, func(tx ImportTx) error {
		var err error
		result, err = fn(ctx, tx, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	return result, nil
}

// studentColumns lists every external column of the three student mappings.
func (s *ImportService) studentColumns() []string {
	seen := map[string]bool{}
	var cols []string
	for _, m := range []map[string]string{s.mappings.Student, s.mappings.Corporation, s.mappings.Instructor} {
		for ext := range m {
			if !seen[ext] {
				seen[ext] = true
				cols = append(cols, ext)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// mapRow reads a row through a mapping, keyed by internal attribute name.
func mapRow(row tabular.Row, mapping map[string]string) map[string]string {
	values := make(map[string]string, len(mapping))
	for ext, internal := range mapping {
		values[internal] = row.Get(ext)
	}
	return values
}

// importedStudent is a student as described by one row, with the attribute names the
// mapping provides.
type importedStudent struct {
	models.Student
	fields map[string]bool
}

func (s *ImportService) importStudents(ctx context.Context, tx ImportTx, table *tabular.Table) (*ImportResult, error) {
	result := &ImportResult{}
	active, err := tx.ListStudentExtIDs(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[int64]bool{}

	for _, row := range table.Rows {
		values := mapRow(row, s.mappings.Student)
		extID, err := helpers.ParseOptionalID(values["ext_id"])
		if err != nil || extID == nil {
			result.addError("Ligne %d: numéro d'étudiant manquant ou invalide. Ligne ignorée", row.Line)
			continue
		}
		// Students following several courses appear on several lines
		if seen[*extID] {
			continue
		}
		seen[*extID] = true

		imported, err := s.prepareStudent(ctx, tx, row, values, result)
		if err != nil {
			return nil, err
		}
		if imported == nil {
			continue
		}
		imported.ExtID = extID

		existing, err := tx.FindStudentByExtID(ctx, *extID)
		switch {
		case err == nil:
			if applyImported(existing, imported) {
				if err := saveStudent(ctx, existing, tx.ListTrainingSnapshots, tx.UpdateStudent); err != nil {
					return nil, err
				}
				result.Modified++
			}
		case apperrors.Is(err, apperrors.ErrResourceNotFound):
			student := imported.Student
			if err := enrichFromCandidate(ctx, tx, &student); err != nil {
				return nil, err
			}
			if err := tx.CreateStudent(ctx, &student); err != nil {
				return nil, err
			}
			result.Created++
		default:
			return nil, err
		}
	}

	// Students absent from the file have left the school
	staleIDs := make([]int64, 0)
	for extID, id := range active {
		if !seen[extID] {
			staleIDs = append(staleIDs, id)
		}
	}
	sort.Slice(staleIDs, func(i, j int) bool { return staleIDs[i] < staleIDs[j] })
	for _, id := range staleIDs {
		student, err := tx.GetStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		student.Archived = true
		if err := saveStudent(ctx, student, tx.ListTrainingSnapshots, tx.UpdateStudent); err != nil {
			return nil, err
		}
		result.Archived++
	}
	return result, nil
}

// prepareStudent normalizes a row and resolves its klass, corporation and instructor.
// A nil student means the row was skipped with a non-fatal error.
func (s *ImportService) prepareStudent(ctx context.Context, tx ImportTx, row tabular.Row, values map[string]string, result *ImportResult) (*importedStudent, error) {
	st := &importedStudent{fields: map[string]bool{}}
	for _, internal := range s.mappings.Student {
		st.fields[internal] = true
	}
	st.FirstName = values["first_name"]
	st.LastName = values["last_name"]
	st.Street = values["street"]
	st.Tel = values["tel"]
	st.Mobile = values["mobile"]
	st.AVS = values["avs"]
	st.District = values["district"]
	st.Gender = parseGender(values["gender"])
	st.PCode, st.City = helpers.SplitPCodeCity(values["city"])
	if pcode := values["pcode"]; pcode != "" {
		st.PCode = pcode
	}

	birth, err := helpers.ParseSwissDate(values["birth_date"], s.loc)
	if err != nil {
		result.addError("Ligne %d: %s. Ligne ignorée", row.Line, err)
		return nil, nil
	}
	st.BirthDate = birth

	if email := values["email"]; email != "" {
		if validate.Var(email, "email") != nil {
			result.addError("Adresse courriel «%s» invalide pour %s", email, st.Label())
		} else {
			st.Email = email
		}
	}

	if name := values["klass"]; name != "" {
		klass, err := tx.FindKlassByName(ctx, name)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrResourceNotFound) {
				return nil, fmt.Errorf("La classe '%s' n'existe pas encore", name)
			}
			return nil, err
		}
		st.KlassID = &klass.ID
	}

	corp, err := s.importCorporation(ctx, tx, row, values)
	if err != nil {
		return nil, err
	}
	if corp != nil {
		st.CorporationID = &corp.ID
	}

	instructor, err := s.importInstructor(ctx, tx, row, values, corp, result)
	if err != nil {
		return nil, err
	}
	if instructor != nil {
		st.InstructorID = &instructor.ID
	}
	return st, nil
}

// importCorporation finds or creates the employer of a row. Rows without employer
// number have no corporation.
func (s *ImportService) importCorporation(ctx context.Context, tx ImportTx, row tabular.Row, student map[string]string) (*models.Corporation, error) {
	values := mapRow(row, s.mappings.Corporation)
	raw := values["ext_id"]
	if raw == "" {
		raw = student["corporation"]
	}
	extID, err := helpers.ParseOptionalID(raw)
	if err != nil {
		return nil, err
	}
	if extID == nil {
		return nil, nil
	}
	corp := &models.Corporation{
		ExtID:    extID,
		Name:     values["name"],
		Street:   values["street"],
		Tel:      values["tel"],
		District: values["district"],
	}
	corp.PCode, corp.City = helpers.SplitPCodeCity(values["city"])
	if _, err := tx.GetOrCreateCorporation(ctx, corp); err != nil {
		return nil, err
	}
	return corp, nil
}

// importInstructor finds or creates the apprentice instructor of a row, attached to
// the row's corporation.
func (s *ImportService) importInstructor(ctx context.Context, tx ImportTx, row tabular.Row, student map[string]string, corp *models.Corporation, result *ImportResult) (*models.CorpContact, error) {
	values := mapRow(row, s.mappings.Instructor)
	raw := values["ext_id"]
	if raw == "" {
		raw = student["instructor"]
	}
	extID, err := helpers.ParseOptionalID(raw)
	if err != nil {
		return nil, err
	}
	if extID == nil {
		return nil, nil
	}
	if corp == nil {
		result.addError("Ligne %d: formateur %s sans employeur. Formateur ignoré", row.Line, raw)
		return nil, nil
	}
	contact := &models.CorpContact{
		CorporationID: corp.ID,
		ExtID:         extID,
		FirstName:     values["first_name"],
		LastName:      values["last_name"],
		Tel:           values["tel"],
	}
	if email := values["email"]; email != "" && validate.Var(email, "email") == nil {
		contact.Email = email
	}
	if _, err := tx.GetOrCreateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// enrichFromCandidate completes a new student from the admission file with the same
// names. Employer and instructor from the file take precedence.
func enrichFromCandidate(ctx context.Context, tx ImportTx, student *models.Student) error {
	candidate, err := tx.FindCandidateByName(ctx, student.FirstName, student.LastName)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return nil
		}
		return err
	}
	if student.CorporationID == nil {
		student.CorporationID = candidate.CorporationID
	}
	if student.InstructorID == nil {
		student.InstructorID = candidate.InstructorID
	}
	student.DispenseECG = candidate.ExemptionECG
	student.SoutienDYS = candidate.Handicap
	return nil
}

func parseGender(value string) models.Gender {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "M", "H", "1":
		return models.GenderMale
	case "F", "2":
		return models.GenderFemale
	default:
		return models.GenderUnknown
	}
}

func setString(dst *string, v string) bool {
	if *dst == v {
		return false
	}
	*dst = v
	return true
}

func setID(dst **int64, v *int64) bool {
	if sameID(*dst, v) {
		return false
	}
	*dst = v
	return true
}

// applyImported copies the attributes the import provides onto dst and reports whether
// anything changed. A student present in the file is active again.
func applyImported(dst *models.Student, src *importedStudent) bool {
	changed := false
	for field := range src.fields {
		switch field {
		case "first_name":
			changed = setString(&dst.FirstName, src.FirstName) || changed
		case "last_name":
			changed = setString(&dst.LastName, src.LastName) || changed
		case "street":
			changed = setString(&dst.Street, src.Street) || changed
		case "city":
			changed = setString(&dst.City, src.City) || changed
			changed = setString(&dst.PCode, src.PCode) || changed
		case "pcode":
			changed = setString(&dst.PCode, src.PCode) || changed
		case "district":
			changed = setString(&dst.District, src.District) || changed
		case "tel":
			changed = setString(&dst.Tel, src.Tel) || changed
		case "mobile":
			changed = setString(&dst.Mobile, src.Mobile) || changed
		case "email":
			changed = setString(&dst.Email, src.Email) || changed
		case "avs":
			changed = setString(&dst.AVS, src.AVS) || changed
		case "gender":
			if dst.Gender != src.Gender {
				dst.Gender = src.Gender
				changed = true
			}
		case "birth_date":
			if !helpers.SameDate(dst.BirthDate, src.BirthDate) {
				dst.BirthDate = src.BirthDate
				changed = true
			}
		case "klass":
			changed = setID(&dst.KlassID, src.KlassID) || changed
		// An empty employer column keeps the links set by the instructors import
		case "corporation":
			if src.CorporationID != nil {
				changed = setID(&dst.CorporationID, src.CorporationID) || changed
			}
		case "instructor":
			if src.InstructorID != nil {
				changed = setID(&dst.InstructorID, src.InstructorID) || changed
			}
		}
	}
	if dst.Archived {
		dst.Archived = false
		changed = true
	}
	return changed
}

// importHP replaces every course with the HyperPlanning teaching plan. Lines repeating a
// (teacher, subject, public) triple add their periods to the course.
func importHP(ctx context.Context, tx ImportTx, table *tabular.Table) (*ImportResult, error) {
	result := &ImportResult{}
	teachers, err := tx.ListTeachers(ctx)
	if err != nil {
		return nil, err
	}
	byLabel := make(map[string]*models.Teacher, len(teachers))
	for _, t := range teachers {
		byLabel[t.Label()] = t
	}
	if err := tx.DeleteAllCourses(ctx); err != nil {
		return nil, err
	}

	for _, row := range table.Rows {
		subject, public, total := row.Get(hpSubject), row.Get(hpPublic), row.Get(hpTotal)
		if subject == "" || public == "" || total == "" {
			continue
		}
		teacher, ok := byLabel[row.Get(hpTeacher)]
		if !ok {
			result.addError("Impossible de trouver «%s» dans la liste des enseignant-e-s", row.Get(hpTeacher))
			continue
		}
		period, err := helpers.ParsePeriodTotal(total)
		if err != nil {
			result.addError("Ligne %d: %s. Ligne ignorée", row.Line, err)
			continue
		}

		course, err := tx.FindCourse(ctx, &teacher.ID, subject, public)
		switch {
		case err == nil:
			course.Period += period
			if err := tx.UpdateCourse(ctx, course); err != nil {
				return nil, err
			}
			result.Modified++
		case apperrors.Is(err, apperrors.ErrResourceNotFound):
			course = &models.Course{
				TeacherID:  &teacher.ID,
				Subject:    subject,
				Public:     public,
				Period:     period,
				Imputation: ImputationForPublic(public),
			}
			if err := tx.CreateCourse(ctx, course); err != nil {
				return nil, err
			}
			result.Created++
		default:
			return nil, err
		}

		if course.Imputation == models.ImputationNone {
			result.addError("Le cours %s n'a pas pu être imputé correctement!", course.Label(teacher.Label()))
		}
	}
	return result, nil
}

// importHPContacts sets the employer and instructor of students from the HyperPlanning
// instructors file, creating missing contacts.
func importHPContacts(ctx context.Context, tx ImportTx, table *tabular.Table) (*ImportResult, error) {
	result := &ImportResult{}
	for _, row := range table.Rows {
		extID, err := helpers.ParseOptionalID(row.Get(hpcStudent))
		if err != nil || extID == nil {
			result.addError("Impossible de trouver l'étudiant avec le numéro %s", row.Get(hpcStudent))
			continue
		}
		student, err := tx.FindStudentByExtID(ctx, *extID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrResourceNotFound) {
				result.addError("Impossible de trouver l'étudiant avec le numéro %d", *extID)
				continue
			}
			return nil, err
		}

		siret, err := helpers.ParseOptionalID(row.Get(hpcSiret))
		if err != nil || siret == nil {
			result.addError("NoSIRET est vide à ligne %d. Ligne ignorée", row.Line)
			continue
		}
		corp, err := tx.FindCorporationByExtID(ctx, *siret)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrResourceNotFound) {
				result.addError("Impossible de trouver l'institution avec le numéro %d", *siret)
				continue
			}
			return nil, err
		}

		changed := false
		// This file has priority over the employer set by the student import
		if !sameID(student.CorporationID, &corp.ID) {
			student.CorporationID = &corp.ID
			changed = true
		}

		contact, created, err := upsertInstructor(ctx, tx, corp, row)
		if err != nil {
			return nil, err
		}
		if created {
			result.Created++
		}
		if !sameID(student.InstructorID, &contact.ID) {
			student.InstructorID = &contact.ID
			changed = true
			result.Modified++
		}
		if changed {
			if err := saveStudent(ctx, student, tx.ListTrainingSnapshots, tx.UpdateStudent); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func upsertInstructor(ctx context.Context, tx ImportTx, corp *models.Corporation, row tabular.Row) (*models.CorpContact, bool, error) {
	first, last := row.Get(hpcFirstName), row.Get(hpcLastName)
	civility, mail := row.Get(hpcCivility), row.Get(hpcEmail)

	contact, err := tx.FindContactByName(ctx, corp.ID, first, last)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, false, err
		}
		contact = &models.CorpContact{
			CorporationID: corp.ID,
			FirstName:     first,
			LastName:      last,
			Title:         civility,
			Email:         mail,
		}
		if err := tx.CreateContact(ctx, contact); err != nil {
			return nil, false, err
		}
		return contact, true, nil
	}

	changed := false
	if civility != "" && contact.Title != civility {
		contact.Title = civility
		changed = true
	}
	if mail != "" && contact.Email != mail {
		contact.Email = mail
		changed = true
	}
	if changed {
		if err := tx.UpdateContact(ctx, contact); err != nil {
			return nil, false, err
		}
	}
	return contact, false, nil
}
