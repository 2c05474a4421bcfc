package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/metrics"
	"github.com/cpne/stages/internal/pkg/schoolyear"
)

const (
	// placementSectionPrefix scopes the attribution screen to the MP sections.
	placementSectionPrefix = "MP"
	// periodHistoryDays is how far back periods are offered on the attribution screen.
	periodHistoryDays = 730
)

// PlacementService matches students to the availabilities of a training period
type PlacementService struct {
	sections       SectionStore
	levels         LevelStore
	klasses        KlassStore
	teachers       TeacherStore
	students       StudentStore
	contacts       ContactStore
	periods        PeriodStore
	availabilities AvailabilityStore
	trainings      TrainingStore
	clock          schoolyear.Clock
	logger         zerolog.Logger
}

// PlacementStores groups the stores the placement engine reads and writes
type PlacementStores struct {
	Sections       SectionStore
	Levels         LevelStore
	Klasses        KlassStore
	Teachers       TeacherStore
	Students       StudentStore
	Contacts       ContactStore
	Periods        PeriodStore
	Availabilities AvailabilityStore
	Trainings      TrainingStore
}

// NewPlacementService creates a new placement service instance
func NewPlacementService(stores PlacementStores, clock schoolyear.Clock, logger zerolog.Logger) *PlacementService {
	return &PlacementService{
		sections:       stores.Sections,
		levels:         stores.Levels,
		klasses:        stores.Klasses,
		teachers:       stores.Teachers,
		students:       stores.Students,
		contacts:       stores.Contacts,
		periods:        stores.Periods,
		availabilities: stores.Availabilities,
		trainings:      stores.Trainings,
		clock:          clock,
		logger:         logger,
	}
}

// ListSections returns the sections the attribution screen works on
func (s *PlacementService) ListSections(ctx context.Context) ([]*models.Section, error) {
	return s.sections.ListByNamePrefix(ctx, placementSectionPrefix)
}

// ListReferents returns non-archived teachers with the number of trainings they supervise
// in the current school year
func (s *PlacementService) ListReferents(ctx context.Context) ([]*models.Referent, error) {
	return s.teachers.ListReferents(ctx, schoolyear.StartDate(s.clock.Today()))
}

// ListPeriods returns the periods of a section started within the last two years,
// newest first
func (s *PlacementService) ListPeriods(ctx context.Context, sectionID int64) ([]*models.Period, error) {
	if _, err := s.sections.GetByID(ctx, sectionID); err != nil {
		return nil, err
	}
	since := s.clock.Today().AddDate(0, 0, -periodHistoryDays)
	return s.periods.ListBySectionSince(ctx, sectionID, since)
}

// ListClasses returns the classes of a section
func (s *PlacementService) ListClasses(ctx context.Context, sectionID int64) ([]*models.Klass, error) {
	if _, err := s.sections.GetByID(ctx, sectionID); err != nil {
		return nil, err
	}
	return s.klasses.ListBySection(ctx, sectionID)
}

// relativeLevel resolves the level students concerned by p are in today. ok is false
// when no such level exists, e.g. a level "1" period planned two years ahead.
func (s *PlacementService) relativeLevel(ctx context.Context, p *models.Period) (*models.Level, bool, error) {
	if p.Level == nil {
		return nil, false, nil
	}
	name, ok := p.Level.DeltaName(p.RelativeLevelShift(s.clock.Today()))
	if !ok {
		return nil, false, nil
	}
	level, err := s.levels.GetByName(ctx, name)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return level, true, nil
}

// ListEligibleStudents returns the non-archived students whose klass matches the period
// section and relative level, with their training in the period if any
func (s *PlacementService) ListEligibleStudents(ctx context.Context, periodID int64) ([]*models.EligibleStudent, error) {
	period, err := s.periods.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	level, ok, err := s.relativeLevel(ctx, period)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*models.EligibleStudent{}, nil
	}
	return s.students.ListEligibleForPeriod(ctx, period.SectionID, level.ID, period.ID)
}

// ListAvailabilities returns the availabilities of a period, priority ones first, then by
// corporation name
func (s *PlacementService) ListAvailabilities(ctx context.Context, periodID int64) ([]*models.AvailabilityView, error) {
	if _, err := s.periods.GetByID(ctx, periodID); err != nil {
		return nil, err
	}
	return s.availabilities.ListViewsByPeriod(ctx, periodID)
}

// ListTrainings returns the trainings of a period ordered by student name
func (s *PlacementService) ListTrainings(ctx context.Context, periodID int64) ([]*models.TrainingView, error) {
	if _, err := s.periods.GetByID(ctx, periodID); err != nil {
		return nil, err
	}
	return s.trainings.ListViewsByPeriod(ctx, periodID)
}

// ListContacts returns the non-archived contacts of a corporation
func (s *PlacementService) ListContacts(ctx context.Context, corporationID int64) ([]*models.CorpContact, error) {
	return s.contacts.ListActiveByCorporation(ctx, corporationID)
}

// CreateTrainingInput are the fields posted by the attribution screen
type CreateTrainingInput struct {
	StudentID      int64
	AvailabilityID int64
	ReferentID     *int64
	ContactID      *int64
}

// CreateTraining binds a student to a free availability. The availability contact is
// replaced when a different contact is given. Nothing is written when any check fails.
func (s *PlacementService) CreateTraining(ctx context.Context, in CreateTrainingInput) (*models.Training, error) {
	training, err := s.createTraining(ctx, in)
	metrics.RecordTraining("create", err)
	if err != nil {
		s.logger.Info().Err(err).
			Int64("student_id", in.StudentID).
			Int64("availability_id", in.AvailabilityID).
			Msg("Training creation refused")
		return nil, err
	}
	s.logger.Info().
		Int64("training_id", training.ID).
		Int64("student_id", in.StudentID).
		Int64("availability_id", in.AvailabilityID).
		Msg("Training created")
	return training, nil
}

func (s *PlacementService) createTraining(ctx context.Context, in CreateTrainingInput) (*models.Training, error) {
	student, err := s.students.GetByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if student.Archived {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			fmt.Sprintf("L'étudiant-e %s est archivé-e", student.Label())).
			WithDetails(map[string]interface{}{"cause": apperrors.ErrStudentArchived.Error()})
	}

	avail, err := s.availabilities.GetByID(ctx, in.AvailabilityID)
	if err != nil {
		return nil, err
	}
	period, err := s.periods.GetByID(ctx, avail.PeriodID)
	if err != nil {
		return nil, err
	}
	if in.ReferentID != nil {
		if _, err := s.teachers.GetByID(ctx, *in.ReferentID); err != nil {
			return nil, err
		}
	}
	if in.ContactID != nil {
		contact, err := s.contacts.GetByID(ctx, *in.ContactID)
		if err != nil {
			return nil, err
		}
		if contact.CorporationID != avail.CorporationID {
			return nil, apperrors.NewValidationError("Le contact n'appartient pas à l'institution de la disponibilité")
		}
	}

	if err := s.checkEligible(ctx, student, period); err != nil {
		return nil, err
	}

	binding := &models.TrainingBinding{
		Training: models.Training{
			StudentID:      student.ID,
			AvailabilityID: avail.ID,
			ReferentID:     in.ReferentID,
		},
	}
	if in.ContactID != nil && !sameID(in.ContactID, avail.ContactID) {
		binding.ContactID = in.ContactID
		binding.SetContact = true
	}
	if err := s.trainings.Bind(ctx, binding); err != nil {
		return nil, err
	}
	return &binding.Training, nil
}

// checkEligible requires the student klass to match the period section and the level
// the period targets this school year.
func (s *PlacementService) checkEligible(ctx context.Context, student *models.Student, period *models.Period) error {
	notEligible := apperrors.NewCustomError(apperrors.ErrValidationFailed,
		fmt.Sprintf("L'étudiant-e %s ne correspond pas à la filière et au niveau de la période", student.Label())).
		WithDetails(map[string]interface{}{"cause": apperrors.ErrNotEligible.Error()})

	if student.KlassID == nil {
		return notEligible
	}
	klass, err := s.klasses.GetByID(ctx, *student.KlassID)
	if err != nil {
		return err
	}
	level, ok, err := s.relativeLevel(ctx, period)
	if err != nil {
		return err
	}
	if !ok || klass.SectionID != period.SectionID || klass.LevelID != level.ID {
		return notEligible
	}
	return nil
}

// DeleteTraining removes a training and returns its referent id, nil when it had none.
// The availability becomes free again.
func (s *PlacementService) DeleteTraining(ctx context.Context, id int64) (*int64, error) {
	referentID, err := s.trainings.Delete(ctx, id)
	metrics.RecordTraining("delete", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("training_id", id).Msg("Training deleted")
	return referentID, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
