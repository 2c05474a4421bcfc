package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/schoolyear"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// placementFixture is a school in November 2024 with one MP section, a second year
// period in spring 2025 and a corporation offering two slots.
type placementFixture struct {
	db       *fakeDB
	service  *PlacementService
	section  *models.Section
	level1   *models.Level
	level2   *models.Level
	klass1   *models.Klass
	klass2   *models.Klass
	period   *models.Period
	corp     *models.Corporation
	contact  *models.CorpContact
	domain   *models.Domain
	avail    *models.Availability
	free     *models.Availability
	referent *models.Teacher
	alice    *models.Student
	bob      *models.Student
	carol    *models.Student
}

func newPlacementFixture(t *testing.T) *placementFixture {
	t.Helper()
	db := newFakeDB()
	f := &placementFixture{db: db}
	f.section = db.addSection("MP_ASE")
	db.addSection("ASE")
	f.level1 = db.addLevel("1")
	f.level2 = db.addLevel("2")
	db.addLevel("3")
	f.klass1 = db.addKlass("1MPASE1", f.section, f.level1)
	f.klass2 = db.addKlass("2MPASE1", f.section, f.level2)
	f.period = db.addPeriod(f.section, f.level2, day(2025, 3, 3), day(2025, 4, 25))
	f.corp = db.addCorporation("Crèche Les Lutins", "Neuchâtel")
	f.contact = db.addContact(f.corp, "Anne", "Dupond")
	f.domain = db.addDomain("Petite enfance")
	f.avail = db.addAvailability(f.corp, f.period, f.domain, f.contact)
	f.free = db.addAvailability(f.corp, f.period, f.domain, nil)
	f.referent = db.addTeacher("Paul", "Martin", 100)
	f.alice = db.addStudent("Alice", "Arnaud", f.klass2)
	f.bob = db.addStudent("Bob", "Berset", f.klass2)
	f.carol = db.addStudent("Carol", "Cuche", f.klass1)

	f.service = NewPlacementService(PlacementStores{
		Sections:       fakeSections{db},
		Levels:         fakeLevels{db},
		Klasses:        fakeKlasses{db},
		Teachers:       fakeTeachers{db},
		Students:       fakeStudents{db},
		Contacts:       fakeContacts{db},
		Periods:        fakePeriods{db},
		Availabilities: fakeAvailabilities{db},
		Trainings:      fakeTrainings{db},
	}, schoolyear.FixedClock(time.Date(2024, 11, 15, 10, 0, 0, 0, time.UTC)), testLogger)
	return f
}

func TestCreateTraining_BindsFreeAvailability(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()

	training, err := f.service.CreateTraining(ctx, CreateTrainingInput{
		StudentID:      f.alice.ID,
		AvailabilityID: f.avail.ID,
		ReferentID:     &f.referent.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, training.ID)
	assert.Equal(t, f.alice.ID, training.StudentID)
	require.Len(t, f.db.trainings, 1)

	avails, err := f.service.ListAvailabilities(ctx, f.period.ID)
	require.NoError(t, err)
	require.Len(t, avails, 2)
	free := map[int64]bool{}
	for _, a := range avails {
		free[a.ID] = a.Free
	}
	assert.False(t, free[f.avail.ID])
	assert.True(t, free[f.free.ID])
}

func TestCreateTraining_AvailabilityAlreadyBound(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateTraining(ctx, CreateTrainingInput{StudentID: f.alice.ID, AvailabilityID: f.avail.ID})
	require.NoError(t, err)

	_, err = f.service.CreateTraining(ctx, CreateTrainingInput{StudentID: f.bob.ID, AvailabilityID: f.avail.ID})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Len(t, f.db.trainings, 1)
	assert.Equal(t, f.alice.ID, f.db.trainingOf(f.avail.ID).StudentID)
}

func TestCreateTraining_ArchivedStudent(t *testing.T) {
	f := newPlacementFixture(t)
	f.db.students[f.alice.ID].Archived = true
	f.db.students[f.alice.ID].ArchivedText = "[]"

	_, err := f.service.CreateTraining(context.Background(), CreateTrainingInput{
		StudentID: f.alice.ID, AvailabilityID: f.avail.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	assert.Empty(t, f.db.trainings)
}

func TestCreateTraining_StudentNotEligible(t *testing.T) {
	f := newPlacementFixture(t)

	_, err := f.service.CreateTraining(context.Background(), CreateTrainingInput{
		StudentID: f.carol.ID, AvailabilityID: f.avail.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	assert.Empty(t, f.db.trainings)
}

func TestCreateTraining_ReplacesAvailabilityContact(t *testing.T) {
	f := newPlacementFixture(t)
	other := f.db.addContact(f.corp, "Luc", "Perret")

	_, err := f.service.CreateTraining(context.Background(), CreateTrainingInput{
		StudentID: f.alice.ID, AvailabilityID: f.avail.ID, ContactID: &other.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, f.db.avails[f.avail.ID].ContactID)
	assert.Equal(t, other.ID, *f.db.avails[f.avail.ID].ContactID)
}

func TestCreateTraining_ContactOfAnotherCorporation(t *testing.T) {
	f := newPlacementFixture(t)
	elsewhere := f.db.addCorporation("Home La Source", "Bôle")
	stranger := f.db.addContact(elsewhere, "Eva", "Roth")

	_, err := f.service.CreateTraining(context.Background(), CreateTrainingInput{
		StudentID: f.alice.ID, AvailabilityID: f.avail.ID, ContactID: &stranger.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	assert.Empty(t, f.db.trainings)
	assert.Equal(t, f.contact.ID, *f.db.avails[f.avail.ID].ContactID)
}

func TestCreateTraining_BindFailureLeavesNothing(t *testing.T) {
	f := newPlacementFixture(t)
	other := f.db.addContact(f.corp, "Luc", "Perret")
	f.db.failOn = "Bind"

	_, err := f.service.CreateTraining(context.Background(), CreateTrainingInput{
		StudentID: f.alice.ID, AvailabilityID: f.avail.ID, ContactID: &other.ID,
	})
	require.ErrorIs(t, err, errInjected)
	assert.Empty(t, f.db.trainings)
	assert.Equal(t, f.contact.ID, *f.db.avails[f.avail.ID].ContactID)
}

func TestCreateTraining_UnknownReferent(t *testing.T) {
	f := newPlacementFixture(t)
	missing := int64(9999)

	_, err := f.service.CreateTraining(context.Background(), CreateTrainingInput{
		StudentID: f.alice.ID, AvailabilityID: f.avail.ID, ReferentID: &missing,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
	assert.Empty(t, f.db.trainings)
}

func TestListEligibleStudents(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateTraining(ctx, CreateTrainingInput{StudentID: f.alice.ID, AvailabilityID: f.avail.ID})
	require.NoError(t, err)

	students, err := f.service.ListEligibleStudents(ctx, f.period.ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Arnaud Alice", students[0].Label())
	assert.NotNil(t, students[0].TrainingID)
	assert.Equal(t, "Berset Bob", students[1].Label())
	assert.Nil(t, students[1].TrainingID)
}

func TestListEligibleStudents_PeriodOfNextSchoolYear(t *testing.T) {
	f := newPlacementFixture(t)
	// A level 2 period next school year concerns today's first year students
	next := f.db.addPeriod(f.section, f.level2, day(2025, 9, 1), day(2025, 10, 24))

	students, err := f.service.ListEligibleStudents(context.Background(), next.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, f.carol.ID, students[0].ID)
}

func TestListEligibleStudents_NoRelativeLevel(t *testing.T) {
	f := newPlacementFixture(t)
	next := f.db.addPeriod(f.section, f.level1, day(2025, 9, 1), day(2025, 10, 24))

	students, err := f.service.ListEligibleStudents(context.Background(), next.ID)
	require.NoError(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestListEligibleStudents_UnknownPeriod(t *testing.T) {
	f := newPlacementFixture(t)

	_, err := f.service.ListEligibleStudents(context.Background(), 9999)
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
}

func TestListPeriods(t *testing.T) {
	f := newPlacementFixture(t)
	f.db.addPeriod(f.section, f.level2, day(2021, 3, 1), day(2021, 4, 1))
	recent := f.db.addPeriod(f.section, f.level1, day(2023, 3, 1), day(2023, 4, 1))

	periods, err := f.service.ListPeriods(context.Background(), f.section.ID)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, f.period.ID, periods[0].ID)
	assert.Equal(t, recent.ID, periods[1].ID)

	_, err = f.service.ListPeriods(context.Background(), 9999)
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
}

func TestListSections_OnlyMP(t *testing.T) {
	f := newPlacementFixture(t)

	sections, err := f.service.ListSections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "MP_ASE", sections[0].Name)
}

func TestListReferents_CountsCurrentYear(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()
	old := f.db.addPeriod(f.section, f.level2, day(2023, 3, 1), day(2023, 4, 1))
	oldAvail := f.db.addAvailability(f.corp, old, f.domain, nil)
	f.db.trainings[500] = &models.Training{ID: 500, StudentID: f.bob.ID, AvailabilityID: oldAvail.ID, ReferentID: &f.referent.ID}

	_, err := f.service.CreateTraining(ctx, CreateTrainingInput{
		StudentID: f.alice.ID, AvailabilityID: f.avail.ID, ReferentID: &f.referent.ID,
	})
	require.NoError(t, err)

	referents, err := f.service.ListReferents(ctx)
	require.NoError(t, err)
	require.Len(t, referents, 1)
	assert.Equal(t, 1, referents[0].NumRefs)
}

func TestDeleteTraining(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()

	training, err := f.service.CreateTraining(ctx, CreateTrainingInput{
		StudentID: f.alice.ID, AvailabilityID: f.avail.ID, ReferentID: &f.referent.ID,
	})
	require.NoError(t, err)

	referentID, err := f.service.DeleteTraining(ctx, training.ID)
	require.NoError(t, err)
	require.NotNil(t, referentID)
	assert.Equal(t, f.referent.ID, *referentID)
	assert.Nil(t, f.db.trainingOf(f.avail.ID))

	// The availability can be bound again
	_, err = f.service.CreateTraining(ctx, CreateTrainingInput{StudentID: f.bob.ID, AvailabilityID: f.avail.ID})
	require.NoError(t, err)

	_, err = f.service.DeleteTraining(ctx, 9999)
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
}

func TestListTrainings_OrderedByStudent(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateTraining(ctx, CreateTrainingInput{StudentID: f.bob.ID, AvailabilityID: f.avail.ID})
	require.NoError(t, err)
	_, err = f.service.CreateTraining(ctx, CreateTrainingInput{StudentID: f.alice.ID, AvailabilityID: f.free.ID})
	require.NoError(t, err)

	trainings, err := f.service.ListTrainings(ctx, f.period.ID)
	require.NoError(t, err)
	require.Len(t, trainings, 2)
	assert.Equal(t, f.alice.ID, trainings[0].StudentID)
	assert.Equal(t, f.bob.ID, trainings[1].StudentID)
}
