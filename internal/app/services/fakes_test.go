package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

var testLogger = zerolog.Nop()

// fakeDB is an in-memory database shared by the fake stores. Rows are copied in and out
// so services cannot mutate stored state without saving it.
type fakeDB struct {
	nextID int64

	sections     map[int64]*models.Section
	levels       map[int64]*models.Level
	klasses      map[int64]*models.Klass
	teachers     map[int64]*models.Teacher
	students     map[int64]*models.Student
	corporations map[int64]*models.Corporation
	contacts     map[int64]*models.CorpContact
	domains      map[int64]*models.Domain
	periods      map[int64]*models.Period
	avails       map[int64]*models.Availability
	trainings    map[int64]*models.Training
	courses      map[int64]*models.Course
	candidates   map[int64]*models.Candidate
	examinations map[int64]*models.Examination

	// failOn makes the named operation fail, e.g. "CreateStudent".
	failOn string
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		sections:     map[int64]*models.Section{},
		levels:       map[int64]*models.Level{},
		klasses:      map[int64]*models.Klass{},
		teachers:     map[int64]*models.Teacher{},
		students:     map[int64]*models.Student{},
		corporations: map[int64]*models.Corporation{},
		contacts:     map[int64]*models.CorpContact{},
		domains:      map[int64]*models.Domain{},
		periods:      map[int64]*models.Period{},
		avails:       map[int64]*models.Availability{},
		trainings:    map[int64]*models.Training{},
		courses:      map[int64]*models.Course{},
		candidates:   map[int64]*models.Candidate{},
		examinations: map[int64]*models.Examination{},
	}
}

var errInjected = errors.New("injected failure")

func (db *fakeDB) fail(op string) error {
	if db.failOn == op {
		return errInjected
	}
	return nil
}

func (db *fakeDB) id() int64 {
	db.nextID++
	return db.nextID
}

func copyMap[T any](m map[int64]*T) map[int64]*T {
	out := make(map[int64]*T, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func (db *fakeDB) clone() *fakeDB {
	return &fakeDB{
		nextID:       db.nextID,
		sections:     copyMap(db.sections),
		levels:       copyMap(db.levels),
		klasses:      copyMap(db.klasses),
		teachers:     copyMap(db.teachers),
		students:     copyMap(db.students),
		corporations: copyMap(db.corporations),
		contacts:     copyMap(db.contacts),
		domains:      copyMap(db.domains),
		periods:      copyMap(db.periods),
		avails:       copyMap(db.avails),
		trainings:    copyMap(db.trainings),
		courses:      copyMap(db.courses),
		candidates:   copyMap(db.candidates),
		examinations: copyMap(db.examinations),
		failOn:       db.failOn,
	}
}

func notFoundErr(entity string, id any) error {
	return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %v not found", entity, id))
}

func get[T any](m map[int64]*T, entity string, id int64) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, notFoundErr(entity, id)
	}
	c := *v
	return &c, nil
}

func sortedIDs[T any](m map[int64]*T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Seeding helpers

func (db *fakeDB) addSection(name string) *models.Section {
	s := &models.Section{ID: db.id(), Name: name}
	db.sections[s.ID] = s
	return s
}

func (db *fakeDB) addLevel(name string) *models.Level {
	l := &models.Level{ID: db.id(), Name: name}
	db.levels[l.ID] = l
	return l
}

func (db *fakeDB) addKlass(name string, section *models.Section, level *models.Level) *models.Klass {
	k := &models.Klass{ID: db.id(), Name: name, SectionID: section.ID, LevelID: level.ID}
	db.klasses[k.ID] = k
	return k
}

func (db *fakeDB) addTeacher(first, last string, rate float64) *models.Teacher {
	t := &models.Teacher{ID: db.id(), FirstName: first, LastName: last, Rate: rate}
	db.teachers[t.ID] = t
	return t
}

func (db *fakeDB) addStudent(first, last string, klass *models.Klass) *models.Student {
	s := &models.Student{ID: db.id(), FirstName: first, LastName: last}
	if klass != nil {
		s.KlassID = &klass.ID
	}
	db.students[s.ID] = s
	return s
}

func (db *fakeDB) addCorporation(name, city string) *models.Corporation {
	c := &models.Corporation{ID: db.id(), Name: name, City: city, PCode: "2000"}
	db.corporations[c.ID] = c
	return c
}

func (db *fakeDB) addContact(corp *models.Corporation, first, last string) *models.CorpContact {
	c := &models.CorpContact{ID: db.id(), CorporationID: corp.ID, FirstName: first, LastName: last}
	db.contacts[c.ID] = c
	return c
}

func (db *fakeDB) addDomain(name string) *models.Domain {
	d := &models.Domain{ID: db.id(), Name: name}
	db.domains[d.ID] = d
	return d
}

func (db *fakeDB) addPeriod(section *models.Section, level *models.Level, start, end time.Time) *models.Period {
	p := &models.Period{ID: db.id(), Title: "Stage", SectionID: section.ID, LevelID: level.ID, StartDate: start, EndDate: end}
	db.periods[p.ID] = p
	return p
}

func (db *fakeDB) addAvailability(corp *models.Corporation, period *models.Period, domain *models.Domain, contact *models.CorpContact) *models.Availability {
	a := &models.Availability{ID: db.id(), CorporationID: corp.ID, PeriodID: period.ID, DomainID: domain.ID}
	if contact != nil {
		a.ContactID = &contact.ID
	}
	db.avails[a.ID] = a
	return a
}

func (db *fakeDB) addCourse(teacher *models.Teacher, subject, public string, period int, imputation models.Imputation) *models.Course {
	c := &models.Course{ID: db.id(), Subject: subject, Public: public, Period: period, Imputation: imputation}
	if teacher != nil {
		c.TeacherID = &teacher.ID
	}
	db.courses[c.ID] = c
	return c
}

func (db *fakeDB) trainingOf(availabilityID int64) *models.Training {
	for _, t := range db.trainings {
		if t.AvailabilityID == availabilityID {
			return t
		}
	}
	return nil
}

func (db *fakeDB) snapshots(studentID int64) []models.TrainingSnapshot {
	var list []models.TrainingSnapshot
	for _, id := range sortedIDs(db.trainings) {
		t := db.trainings[id]
		if t.StudentID != studentID {
			continue
		}
		a := db.avails[t.AvailabilityID]
		snap := models.TrainingSnapshot{
			Period:       db.periods[a.PeriodID].Label(),
			Corporation:  db.corporations[a.CorporationID].Label(),
			Comment:      t.Comment,
			CommentAvail: a.Comment,
			Domain:       db.domains[a.DomainID].Name,
		}
		if t.ReferentID != nil {
			snap.Referent = db.teachers[*t.ReferentID].Label()
		}
		if a.ContactID != nil {
			snap.Contact = db.contacts[*a.ContactID].Label()
		}
		list = append(list, snap)
	}
	return list
}

// Stores

type fakeSections struct{ db *fakeDB }

func (f fakeSections) GetByID(_ context.Context, id int64) (*models.Section, error) {
	return get(f.db.sections, "section", id)
}

func (f fakeSections) ListByNamePrefix(_ context.Context, prefix string) ([]*models.Section, error) {
	list := []*models.Section{}
	for _, id := range sortedIDs(f.db.sections) {
		if s := f.db.sections[id]; strings.HasPrefix(s.Name, prefix) {
			c := *s
			list = append(list, &c)
		}
	}
	return list, nil
}

type fakeLevels struct{ db *fakeDB }

func (f fakeLevels) GetByID(_ context.Context, id int64) (*models.Level, error) {
	return get(f.db.levels, "level", id)
}

func (f fakeLevels) GetByName(_ context.Context, name string) (*models.Level, error) {
	for _, l := range f.db.levels {
		if l.Name == name {
			c := *l
			return &c, nil
		}
	}
	return nil, notFoundErr("level", name)
}

type fakeKlasses struct{ db *fakeDB }

func (f fakeKlasses) Create(_ context.Context, klass *models.Klass) error {
	for _, k := range f.db.klasses {
		if k.Name == klass.Name {
			return apperrors.NewCustomError(apperrors.ErrConflict, "duplicate klass").
				WithDetails(map[string]interface{}{"cause": apperrors.ErrKlassAlreadyExists.Error()})
		}
	}
	klass.ID = f.db.id()
	c := *klass
	f.db.klasses[klass.ID] = &c
	return nil
}

func (f fakeKlasses) GetByID(_ context.Context, id int64) (*models.Klass, error) {
	return get(f.db.klasses, "klass", id)
}

func (f fakeKlasses) ListBySection(_ context.Context, sectionID int64) ([]*models.Klass, error) {
	list := []*models.Klass{}
	for _, id := range sortedIDs(f.db.klasses) {
		if k := f.db.klasses[id]; k.SectionID == sectionID {
			c := *k
			list = append(list, &c)
		}
	}
	return list, nil
}

func (f fakeKlasses) Delete(_ context.Context, id int64) error {
	if _, ok := f.db.klasses[id]; !ok {
		return notFoundErr("klass", id)
	}
	for _, s := range f.db.students {
		if s.KlassID != nil && *s.KlassID == id {
			return apperrors.NewCustomError(apperrors.ErrConflict, "klass has students").
				WithDetails(map[string]interface{}{"cause": apperrors.ErrKlassHasStudents.Error()})
		}
	}
	delete(f.db.klasses, id)
	return nil
}

type fakeTeachers struct{ db *fakeDB }

func (f fakeTeachers) GetByID(_ context.Context, id int64) (*models.Teacher, error) {
	return get(f.db.teachers, "teacher", id)
}

func (f fakeTeachers) List(_ context.Context, ids []int64) ([]*models.Teacher, error) {
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	list := []*models.Teacher{}
	for _, id := range sortedIDs(f.db.teachers) {
		t := f.db.teachers[id]
		if (len(ids) == 0 && !t.Archived) || want[id] {
			c := *t
			list = append(list, &c)
		}
	}
	return list, nil
}

func (f fakeTeachers) ListReferents(_ context.Context, since time.Time) ([]*models.Referent, error) {
	list := []*models.Referent{}
	for _, id := range sortedIDs(f.db.teachers) {
		t := f.db.teachers[id]
		if t.Archived {
			continue
		}
		ref := &models.Referent{Teacher: *t}
		for _, tr := range f.db.trainings {
			if tr.ReferentID == nil || *tr.ReferentID != id {
				continue
			}
			if !f.db.periods[f.db.avails[tr.AvailabilityID].PeriodID].EndDate.Before(since) {
				ref.NumRefs++
			}
		}
		list = append(list, ref)
	}
	return list, nil
}

func (f fakeTeachers) UpdateNextReport(_ context.Context, id int64, report int) error {
	t, ok := f.db.teachers[id]
	if !ok {
		return notFoundErr("teacher", id)
	}
	t.NextReport = report
	return nil
}

func (f fakeTeachers) Delete(_ context.Context, id int64) error {
	if _, ok := f.db.teachers[id]; !ok {
		return notFoundErr("teacher", id)
	}
	delete(f.db.teachers, id)
	return nil
}

type fakeStudents struct{ db *fakeDB }

func (f fakeStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	return get(f.db.students, "student", id)
}

func (f fakeStudents) Update(_ context.Context, s *models.Student) error {
	if err := f.db.fail("UpdateStudent"); err != nil {
		return err
	}
	if _, ok := f.db.students[s.ID]; !ok {
		return notFoundErr("student", s.ID)
	}
	c := *s
	f.db.students[s.ID] = &c
	return nil
}

func (f fakeStudents) ListEligibleForPeriod(_ context.Context, sectionID, levelID, periodID int64) ([]*models.EligibleStudent, error) {
	list := []*models.EligibleStudent{}
	for _, id := range sortedIDs(f.db.students) {
		s := f.db.students[id]
		if s.Archived || s.KlassID == nil {
			continue
		}
		k := f.db.klasses[*s.KlassID]
		if k.SectionID != sectionID || k.LevelID != levelID {
			continue
		}
		e := &models.EligibleStudent{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, KlassName: k.Name}
		for _, tr := range f.db.trainings {
			if tr.StudentID == s.ID && f.db.avails[tr.AvailabilityID].PeriodID == periodID {
				trID := tr.ID
				e.TrainingID = &trID
			}
		}
		list = append(list, e)
	}
	return list, nil
}

func (f fakeStudents) ListTrainingSnapshots(_ context.Context, studentID int64) ([]models.TrainingSnapshot, error) {
	return f.db.snapshots(studentID), nil
}

type fakeCorporations struct{ db *fakeDB }

func (f fakeCorporations) Create(_ context.Context, c *models.Corporation) error {
	for _, existing := range f.db.corporations {
		if existing.Name == c.Name && existing.City == c.City {
			return apperrors.NewCustomError(apperrors.ErrConflict, "duplicate corporation").
				WithDetails(map[string]interface{}{"cause": apperrors.ErrCorporationAlreadyExists.Error()})
		}
	}
	c.ID = f.db.id()
	cp := *c
	f.db.corporations[c.ID] = &cp
	return nil
}

func (f fakeCorporations) GetByID(_ context.Context, id int64) (*models.Corporation, error) {
	return get(f.db.corporations, "corporation", id)
}

func (f fakeCorporations) Delete(_ context.Context, id int64) error {
	if _, ok := f.db.corporations[id]; !ok {
		return notFoundErr("corporation", id)
	}
	delete(f.db.corporations, id)
	for _, s := range f.db.students {
		if s.CorporationID != nil && *s.CorporationID == id {
			s.CorporationID = nil
		}
	}
	return nil
}

type fakeContacts struct{ db *fakeDB }

func (f fakeContacts) GetByID(_ context.Context, id int64) (*models.CorpContact, error) {
	return get(f.db.contacts, "contact", id)
}

func (f fakeContacts) ListActiveByCorporation(_ context.Context, corporationID int64) ([]*models.CorpContact, error) {
	list := []*models.CorpContact{}
	for _, id := range sortedIDs(f.db.contacts) {
		if c := f.db.contacts[id]; c.CorporationID == corporationID && !c.Archived {
			cp := *c
			list = append(list, &cp)
		}
	}
	return list, nil
}

type fakeDomains struct{ db *fakeDB }

func (f fakeDomains) GetByID(_ context.Context, id int64) (*models.Domain, error) {
	return get(f.db.domains, "domain", id)
}

type fakePeriods struct{ db *fakeDB }

func (f fakePeriods) Create(_ context.Context, p *models.Period) error {
	p.ID = f.db.id()
	c := *p
	f.db.periods[p.ID] = &c
	return nil
}

func (f fakePeriods) GetByID(_ context.Context, id int64) (*models.Period, error) {
	p, err := get(f.db.periods, "period", id)
	if err != nil {
		return nil, err
	}
	p.Section, _ = get(f.db.sections, "section", p.SectionID)
	p.Level, _ = get(f.db.levels, "level", p.LevelID)
	return p, nil
}

func (f fakePeriods) ListBySectionSince(_ context.Context, sectionID int64, since time.Time) ([]*models.Period, error) {
	list := []*models.Period{}
	for _, id := range sortedIDs(f.db.periods) {
		p := f.db.periods[id]
		if p.SectionID == sectionID && !p.StartDate.Before(since) {
			c := *p
			list = append(list, &c)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].StartDate.After(list[j].StartDate) })
	return list, nil
}

type fakeAvailabilities struct{ db *fakeDB }

func (f fakeAvailabilities) Create(_ context.Context, a *models.Availability) error {
	a.ID = f.db.id()
	c := *a
	f.db.avails[a.ID] = &c
	return nil
}

func (f fakeAvailabilities) GetByID(_ context.Context, id int64) (*models.Availability, error) {
	return get(f.db.avails, "availability", id)
}

func (f fakeAvailabilities) ListViewsByPeriod(_ context.Context, periodID int64) ([]*models.AvailabilityView, error) {
	list := []*models.AvailabilityView{}
	for _, id := range sortedIDs(f.db.avails) {
		a := f.db.avails[id]
		if a.PeriodID != periodID {
			continue
		}
		list = append(list, &models.AvailabilityView{
			ID:              a.ID,
			CorporationID:   a.CorporationID,
			CorporationName: f.db.corporations[a.CorporationID].Name,
			DomainName:      f.db.domains[a.DomainID].Name,
			Free:            f.db.trainingOf(a.ID) == nil,
			Priority:        a.Priority,
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority
		}
		return list[i].CorporationName < list[j].CorporationName
	})
	return list, nil
}

type fakeTrainings struct{ db *fakeDB }

func (f fakeTrainings) Bind(_ context.Context, b *models.TrainingBinding) error {
	avail, ok := f.db.avails[b.AvailabilityID]
	if !ok {
		return notFoundErr("availability", b.AvailabilityID)
	}
	if f.db.trainingOf(avail.ID) != nil {
		return apperrors.NewCustomError(apperrors.ErrConflict, "Cette disponibilité est déjà attribuée").
			WithDetails(map[string]interface{}{"cause": apperrors.ErrAvailabilityBound.Error()})
	}
	if err := f.db.fail("Bind"); err != nil {
		return err
	}
	b.ID = f.db.id()
	t := b.Training
	f.db.trainings[t.ID] = &t
	if b.SetContact {
		avail.ContactID = b.ContactID
	}
	return nil
}

func (f fakeTrainings) Delete(_ context.Context, id int64) (*int64, error) {
	t, ok := f.db.trainings[id]
	if !ok {
		return nil, notFoundErr("training", id)
	}
	delete(f.db.trainings, id)
	return t.ReferentID, nil
}

func (f fakeTrainings) ListViewsByPeriod(_ context.Context, periodID int64) ([]*models.TrainingView, error) {
	list := []*models.TrainingView{}
	for _, id := range sortedIDs(f.db.trainings) {
		t := f.db.trainings[id]
		a := f.db.avails[t.AvailabilityID]
		if a.PeriodID != periodID {
			continue
		}
		s := f.db.students[t.StudentID]
		list = append(list, &models.TrainingView{
			ID: t.ID, StudentID: s.ID, StudentFirstName: s.FirstName, StudentLastName: s.LastName,
			CorporationName: f.db.corporations[a.CorporationID].Name,
			DomainName:      f.db.domains[a.DomainID].Name,
			ReferentID:      t.ReferentID,
			Comment:         t.Comment,
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].StudentLabel() < list[j].StudentLabel() })
	return list, nil
}

type fakeCourses struct{ db *fakeDB }

func (f fakeCourses) ListByTeacher(_ context.Context, teacherID int64) ([]*models.Course, error) {
	list := []*models.Course{}
	for _, id := range sortedIDs(f.db.courses) {
		if c := f.db.courses[id]; c.TeacherID != nil && *c.TeacherID == teacherID {
			cp := *c
			list = append(list, &cp)
		}
	}
	return list, nil
}

type fakeCandidates struct{ db *fakeDB }

func (f fakeCandidates) GetByID(_ context.Context, id int64) (*models.Candidate, error) {
	return get(f.db.candidates, "candidate", id)
}

func (f fakeCandidates) SetConfirmationMail(_ context.Context, id int64, at time.Time) error {
	c, ok := f.db.candidates[id]
	if !ok {
		return notFoundErr("candidate", id)
	}
	c.DateConfirmationMail = &at
	return nil
}

type fakeExaminations struct{ db *fakeDB }

func (f fakeExaminations) GetByStudent(_ context.Context, studentID int64) (*models.Examination, error) {
	return get(f.db.examinations, "student", studentID)
}

func (f fakeExaminations) SetConvocationMailed(_ context.Context, studentID int64, at time.Time) error {
	e, ok := f.db.examinations[studentID]
	if !ok {
		return notFoundErr("student", studentID)
	}
	e.ConvocationMailedAt = &at
	return nil
}

type fakeExports struct {
	stages      []*models.StageRow
	students    []*models.StudentRow
	updateForms []*models.UpdateFormRow
	// markers records the klass filter of the last ListStudentRows call.
	markers []string
	// excluded records the section filter of the last ListUpdateFormRows call.
	excluded []string
}

func (f *fakeExports) ListUpdateFormRows(_ context.Context, minLevel string, excludedSections []string) ([]*models.UpdateFormRow, error) {
	f.excluded = excludedSections
	var rows []*models.UpdateFormRow
	for _, row := range f.updateForms {
		if row.KlassName[:1] >= minLevel {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeExports) ListStageRows(_ context.Context, periodID *int64) ([]*models.StageRow, error) {
	return f.stages, nil
}

func (f *fakeExports) ListStudentRows(_ context.Context, klassMarkers []string) ([]*models.StudentRow, error) {
	f.markers = klassMarkers
	return f.students, nil
}

// fakeUnitOfWork runs imports against a copy of the database, kept only on success.
type fakeUnitOfWork struct{ db *fakeDB }

func (u *fakeUnitOfWork) RunInTx(_ context.Context, fn func(tx ImportTx) error) error {
	work := u.db.clone()
	if err := fn(&fakeImportTx{db: work}); err != nil {
		return err
	}
	*u.db = *work
	return nil
}

type fakeImportTx struct{ db *fakeDB }

func (t *fakeImportTx) FindKlassByName(_ context.Context, name string) (*models.Klass, error) {
	for _, k := range t.db.klasses {
		if k.Name == name {
			c := *k
			return &c, nil
		}
	}
	return nil, notFoundErr("klass", name)
}

func (t *fakeImportTx) FindStudentByExtID(_ context.Context, extID int64) (*models.Student, error) {
	for _, s := range t.db.students {
		if s.ExtID != nil && *s.ExtID == extID {
			c := *s
			return &c, nil
		}
	}
	return nil, notFoundErr("student", extID)
}

func (t *fakeImportTx) GetStudent(_ context.Context, id int64) (*models.Student, error) {
	return get(t.db.students, "student", id)
}

func (t *fakeImportTx) CreateStudent(_ context.Context, s *models.Student) error {
	if err := t.db.fail("CreateStudent"); err != nil {
		return err
	}
	s.ID = t.db.id()
	c := *s
	t.db.students[s.ID] = &c
	return nil
}

func (t *fakeImportTx) UpdateStudent(ctx context.Context, s *models.Student) error {
	return fakeStudents{db: t.db}.Update(ctx, s)
}

func (t *fakeImportTx) ListStudentExtIDs(_ context.Context) (map[int64]int64, error) {
	ids := map[int64]int64{}
	for _, s := range t.db.students {
		if s.ExtID != nil && !s.Archived {
			ids[*s.ExtID] = s.ID
		}
	}
	return ids, nil
}

func (t *fakeImportTx) ListTrainingSnapshots(_ context.Context, studentID int64) ([]models.TrainingSnapshot, error) {
	return t.db.snapshots(studentID), nil
}

func (t *fakeImportTx) FindCandidateByName(_ context.Context, first, last string) (*models.Candidate, error) {
	for _, id := range sortedIDs(t.db.candidates) {
		if c := t.db.candidates[id]; c.FirstName == first && c.LastName == last {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFoundErr("candidate", first+" "+last)
}

func (t *fakeImportTx) GetOrCreateCorporation(ctx context.Context, corp *models.Corporation) (bool, error) {
	if existing, err := t.FindCorporationByExtID(ctx, *corp.ExtID); err == nil {
		*corp = *existing
		return false, nil
	}
	corp.ID = t.db.id()
	c := *corp
	t.db.corporations[corp.ID] = &c
	return true, nil
}

func (t *fakeImportTx) FindCorporationByExtID(_ context.Context, extID int64) (*models.Corporation, error) {
	for _, c := range t.db.corporations {
		if c.ExtID != nil && *c.ExtID == extID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFoundErr("corporation", extID)
}

func (t *fakeImportTx) GetOrCreateContact(_ context.Context, contact *models.CorpContact) (bool, error) {
	for _, c := range t.db.contacts {
		if c.ExtID != nil && *c.ExtID == *contact.ExtID {
			*contact = *c
			return false, nil
		}
	}
	contact.ID = t.db.id()
	c := *contact
	t.db.contacts[contact.ID] = &c
	return true, nil
}

func (t *fakeImportTx) FindContactByName(_ context.Context, corporationID int64, first, last string) (*models.CorpContact, error) {
	for _, id := range sortedIDs(t.db.contacts) {
		c := t.db.contacts[id]
		if c.CorporationID == corporationID &&
			strings.EqualFold(c.FirstName, first) && strings.EqualFold(c.LastName, last) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFoundErr("contact", first+" "+last)
}

func (t *fakeImportTx) CreateContact(_ context.Context, contact *models.CorpContact) error {
	contact.ID = t.db.id()
	c := *contact
	t.db.contacts[contact.ID] = &c
	return nil
}

func (t *fakeImportTx) UpdateContact(_ context.Context, contact *models.CorpContact) error {
	c := *contact
	t.db.contacts[contact.ID] = &c
	return nil
}

func (t *fakeImportTx) ListTeachers(_ context.Context) ([]*models.Teacher, error) {
	list := []*models.Teacher{}
	for _, id := range sortedIDs(t.db.teachers) {
		c := *t.db.teachers[id]
		list = append(list, &c)
	}
	return list, nil
}

func (t *fakeImportTx) DeleteAllCourses(_ context.Context) error {
	t.db.courses = map[int64]*models.Course{}
	return nil
}

func (t *fakeImportTx) FindCourse(_ context.Context, teacherID *int64, subject, public string) (*models.Course, error) {
	for _, c := range t.db.courses {
		if sameID(c.TeacherID, teacherID) && c.Subject == subject && c.Public == public {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFoundErr("course", subject)
}

func (t *fakeImportTx) CreateCourse(_ context.Context, c *models.Course) error {
	c.ID = t.db.id()
	cp := *c
	t.db.courses[c.ID] = &cp
	return nil
}

func (t *fakeImportTx) UpdateCourse(_ context.Context, c *models.Course) error {
	cp := *c
	t.db.courses[c.ID] = &cp
	return nil
}

// fakeMailer records sent messages and fails with err when set.
type fakeMailer struct {
	err  error
	sent []string
}

func (m *fakeMailer) Send(toEmail, toName, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, toEmail+"|"+subject)
	return nil
}
