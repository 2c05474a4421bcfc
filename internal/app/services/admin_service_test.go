package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

func newAdminService(db *fakeDB) *AdminService {
	return NewAdminService(AdminStores{
		Sections:       fakeSections{db},
		Levels:         fakeLevels{db},
		Klasses:        fakeKlasses{db},
		Teachers:       fakeTeachers{db},
		Students:       fakeStudents{db},
		Corporations:   fakeCorporations{db},
		Contacts:       fakeContacts{db},
		Domains:        fakeDomains{db},
		Periods:        fakePeriods{db},
		Availabilities: fakeAvailabilities{db},
	}, testLogger)
}

func TestSetStudentArchived_SnapshotsTrainings(t *testing.T) {
	f := newPlacementFixture(t)
	ctx := context.Background()
	_, err := f.service.CreateTraining(ctx, CreateTrainingInput{
		StudentID: f.alice.ID, AvailabilityID: f.avail.ID, ReferentID: &f.referent.ID,
	})
	require.NoError(t, err)
	admin := newAdminService(f.db)

	student, err := admin.SetStudentArchived(ctx, f.alice.ID, true)
	require.NoError(t, err)
	assert.True(t, student.Archived)

	stored := f.db.students[f.alice.ID]
	require.NotEmpty(t, stored.ArchivedText)
	snapshots, err := models.DecodeArchive(stored.ArchivedText)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "Martin Paul", snapshots[0].Referent)
	assert.Equal(t, "Dupond Anne", snapshots[0].Contact)
	assert.Equal(t, f.period.Label(), snapshots[0].Period)

	// Archiving again keeps the first snapshot
	f.db.trainings = map[int64]*models.Training{}
	_, err = admin.SetStudentArchived(ctx, f.alice.ID, true)
	require.NoError(t, err)
	assert.Equal(t, stored.ArchivedText, f.db.students[f.alice.ID].ArchivedText)

	student, err = admin.SetStudentArchived(ctx, f.alice.ID, false)
	require.NoError(t, err)
	assert.False(t, student.Archived)
	assert.Empty(t, f.db.students[f.alice.ID].ArchivedText)
}

func TestSetStudentArchived_WithoutTrainings(t *testing.T) {
	f := newPlacementFixture(t)
	admin := newAdminService(f.db)

	_, err := admin.SetStudentArchived(context.Background(), f.bob.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "[]", f.db.students[f.bob.ID].ArchivedText)
}

func TestCreateKlass(t *testing.T) {
	f := newPlacementFixture(t)
	admin := newAdminService(f.db)
	ctx := context.Background()

	klass := &models.Klass{Name: " 3MPASE1 ", SectionID: f.section.ID, LevelID: f.level2.ID}
	require.NoError(t, admin.CreateKlass(ctx, klass))
	assert.NotZero(t, klass.ID)
	assert.Equal(t, "3MPASE1", f.db.klasses[klass.ID].Name)

	err := admin.CreateKlass(ctx, &models.Klass{Name: "3MPASE1", SectionID: f.section.ID, LevelID: f.level2.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	err = admin.CreateKlass(ctx, &models.Klass{Name: "X", SectionID: 9999, LevelID: f.level2.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))

	err = admin.CreateKlass(ctx, &models.Klass{Name: "  ", SectionID: f.section.ID, LevelID: f.level2.ID})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
}

func TestDeleteKlass_RefusedWhileStudentsRemain(t *testing.T) {
	f := newPlacementFixture(t)
	admin := newAdminService(f.db)
	empty := f.db.addKlass("3MPASE9", f.section, f.level2)

	err := admin.DeleteKlass(context.Background(), f.klass2.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, f.db.klasses, f.klass2.ID)

	require.NoError(t, admin.DeleteKlass(context.Background(), empty.ID))
	assert.NotContains(t, f.db.klasses, empty.ID)
}

func TestCreateCorporation(t *testing.T) {
	f := newPlacementFixture(t)
	admin := newAdminService(f.db)
	ctx := context.Background()

	corp, err := admin.CreateCorporation(ctx, CreateCorporationInput{
		Name: "Foyer Les Billodes", PCode: "2400", City: "Le Locle", Email: "info@billodes.ch",
	})
	require.NoError(t, err)
	assert.Equal(t, "Foyer Les Billodes, 2400 Le Locle", corp.Label())

	_, err = admin.CreateCorporation(ctx, CreateCorporationInput{Name: "Foyer Les Billodes", PCode: "2400", City: "Le Locle"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = admin.CreateCorporation(ctx, CreateCorporationInput{Name: "Sans localité", PCode: "2400"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	_, err = admin.CreateCorporation(ctx, CreateCorporationInput{Name: "Mauvais courriel", PCode: "2400", City: "Bôle", Email: "nope"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
}

func TestDeleteCorporation_DetachesStudents(t *testing.T) {
	f := newPlacementFixture(t)
	admin := newAdminService(f.db)
	f.db.students[f.alice.ID].CorporationID = &f.corp.ID

	require.NoError(t, admin.DeleteCorporation(context.Background(), f.corp.ID))
	assert.Nil(t, f.db.students[f.alice.ID].CorporationID)
}

func TestCreatePeriod_RejectsInvertedDates(t *testing.T) {
	f := newPlacementFixture(t)
	admin := newAdminService(f.db)
	ctx := context.Background()

	_, err := admin.CreatePeriod(ctx, CreatePeriodInput{
		Title: "Stage d'automne", SectionID: f.section.ID, LevelID: f.level2.ID,
		StartDate: day(2025, 10, 24), EndDate: day(2025, 9, 1),
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	period, err := admin.CreatePeriod(ctx, CreatePeriodInput{
		Title: "Stage d'automne", SectionID: f.section.ID, LevelID: f.level2.ID,
		StartDate: day(2025, 9, 1), EndDate: day(2025, 10, 24),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, period.Weeks())
	assert.Contains(t, f.db.periods, period.ID)
}

func TestCreateAvailabilities(t *testing.T) {
	f := newPlacementFixture(t)
	admin := newAdminService(f.db)
	ctx := context.Background()
	before := len(f.db.avails)

	created, err := admin.CreateAvailabilities(ctx, CreateAvailabilitiesInput{
		CorporationID: f.corp.ID, PeriodID: f.period.ID, DomainID: f.domain.ID,
		ContactID: &f.contact.ID, Priority: true, Count: 3,
	})
	require.NoError(t, err)
	assert.Len(t, created, 3)
	assert.Len(t, f.db.avails, before+3)

	elsewhere := f.db.addCorporation("Home La Source", "Bôle")
	_, err = admin.CreateAvailabilities(ctx, CreateAvailabilitiesInput{
		CorporationID: elsewhere.ID, PeriodID: f.period.ID, DomainID: f.domain.ID,
		ContactID: &f.contact.ID, Count: 1,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	_, err = admin.CreateAvailabilities(ctx, CreateAvailabilitiesInput{
		CorporationID: f.corp.ID, PeriodID: f.period.ID, DomainID: f.domain.ID, Count: 0,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	assert.Len(t, f.db.avails, before+3)
}

func TestDeleteTeacher(t *testing.T) {
	f := newPlacementFixture(t)
	admin := newAdminService(f.db)

	require.NoError(t, admin.DeleteTeacher(context.Background(), f.referent.ID))
	assert.NotContains(t, f.db.teachers, f.referent.ID)
	assert.True(t, apperrors.Is(admin.DeleteTeacher(context.Background(), f.referent.ID), apperrors.ErrResourceNotFound))
}
