package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

// maxAvailabilities bounds how many identical slots one admin action creates
const maxAvailabilities = 50

var validate = validator.New()

// AdminService carries out the admin actions that must keep the model invariants
type AdminService struct {
	sections       SectionStore
	levels         LevelStore
	klasses        KlassStore
	teachers       TeacherStore
	students       StudentStore
	corporations   CorporationStore
	contacts       ContactStore
	domains        DomainStore
	periods        PeriodStore
	availabilities AvailabilityStore
	logger         zerolog.Logger
}

// AdminStores groups the stores used by admin actions
type AdminStores struct {
	Sections       SectionStore
	Levels         LevelStore
	Klasses        KlassStore
	Teachers       TeacherStore
	Students       StudentStore
	Corporations   CorporationStore
	Contacts       ContactStore
	Domains        DomainStore
	Periods        PeriodStore
	Availabilities AvailabilityStore
}

// NewAdminService creates a new admin service instance
func NewAdminService(stores AdminStores, logger zerolog.Logger) *AdminService {
	return &AdminService{
		sections:       stores.Sections,
		levels:         stores.Levels,
		klasses:        stores.Klasses,
		teachers:       stores.Teachers,
		students:       stores.Students,
		corporations:   stores.Corporations,
		contacts:       stores.Contacts,
		domains:        stores.Domains,
		periods:        stores.Periods,
		availabilities: stores.Availabilities,
		logger:         logger,
	}
}

func validationError(err error) error {
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, "Données invalides").
		WithDetails(map[string]interface{}{"cause": err.Error()})
}

// CreateKlass creates a class. Names are unique.
func (s *AdminService) CreateKlass(ctx context.Context, klass *models.Klass) error {
	klass.Name = strings.TrimSpace(klass.Name)
	if klass.Name == "" {
		return apperrors.NewValidationError("Le nom de la classe est obligatoire")
	}
	if _, err := s.sections.GetByID(ctx, klass.SectionID); err != nil {
		return err
	}
	if _, err := s.levels.GetByID(ctx, klass.LevelID); err != nil {
		return err
	}
	if klass.TeacherID != nil {
		if _, err := s.teachers.GetByID(ctx, *klass.TeacherID); err != nil {
			return err
		}
	}
	if err := s.klasses.Create(ctx, klass); err != nil {
		return err
	}
	s.logger.Info().Int64("klass_id", klass.ID).Str("name", klass.Name).Msg("Klass created")
	return nil
}

// DeleteKlass removes a class. It fails with a conflict while students belong to it.
func (s *AdminService) DeleteKlass(ctx context.Context, id int64) error {
	if err := s.klasses.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("klass_id", id).Msg("Klass deleted")
	return nil
}

// DeleteTeacher removes a teacher. Classes, trainings and courses lose their teacher.
func (s *AdminService) DeleteTeacher(ctx context.Context, id int64) error {
	if err := s.teachers.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("teacher_id", id).Msg("Teacher deleted")
	return nil
}

// CreateCorporationInput holds the fields of a new corporation
type CreateCorporationInput struct {
	Name      string `validate:"required,max=100"`
	ShortName string `validate:"max=40"`
	District  string `validate:"max=20"`
	ParentID  *int64
	Sector    string `validate:"max=200"`
	Typ       string `validate:"max=40"`
	Street    string `validate:"max=100"`
	PCode     string `validate:"required,max=4"`
	City      string `validate:"required,max=40"`
	Tel       string `validate:"max=20"`
	Email     string `validate:"omitempty,email"`
	Web       string `validate:"omitempty,url"`
}

// CreateCorporation creates a corporation. (name, city) is unique.
func (s *AdminService) CreateCorporation(ctx context.Context, in CreateCorporationInput) (*models.Corporation, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.ParentID != nil {
		if _, err := s.corporations.GetByID(ctx, *in.ParentID); err != nil {
			return nil, err
		}
	}
	corp := &models.Corporation{
		Name: strings.TrimSpace(in.Name), ShortName: in.ShortName, District: in.District,
		ParentID: in.ParentID, Sector: in.Sector, Typ: in.Typ, Street: in.Street,
		PCode: in.PCode, City: strings.TrimSpace(in.City), Tel: in.Tel, Email: in.Email, Web: in.Web,
	}
	if err := s.corporations.Create(ctx, corp); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("corporation_id", corp.ID).Str("name", corp.Name).Msg("Corporation created")
	return corp, nil
}

// DeleteCorporation removes a corporation. Its students lose their employer.
func (s *AdminService) DeleteCorporation(ctx context.Context, id int64) error {
	if err := s.corporations.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("corporation_id", id).Msg("Corporation deleted")
	return nil
}

// SetStudentArchived archives or reactivates a student. Archiving snapshots the
// student's trainings into archived_text, reactivating clears it.
func (s *AdminService) SetStudentArchived(ctx context.Context, id int64, archived bool) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Archived = archived
	if err := saveStudent(ctx, student, s.students.ListTrainingSnapshots, s.students.Update); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("student_id", id).Bool("archived", archived).Msg("Student archival changed")
	return student, nil
}

// saveStudent is the single save path of students: it enforces
// archived <=> archived_text != "" before writing.
func saveStudent(
	ctx context.Context,
	student *models.Student,
	snapshots func(ctx context.Context, studentID int64) ([]models.TrainingSnapshot, error),
	save func(ctx context.Context, s *models.Student) error,
) error {
	var archive string
	if student.NeedsSnapshot() {
		list, err := snapshots(ctx, student.ID)
		if err != nil {
			return err
		}
		if archive, err = models.EncodeArchive(list); err != nil {
			return err
		}
	}
	student.ApplyArchival(archive)
	return save(ctx, student)
}

// CreatePeriodInput holds the fields of a new period
type CreatePeriodInput struct {
	Title     string    `validate:"required,max=150"`
	SectionID int64     `validate:"required,gt=0"`
	LevelID   int64     `validate:"required,gt=0"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required"`
}

// CreatePeriod creates a training period. The start date must not be after the end date.
func (s *AdminService) CreatePeriod(ctx context.Context, in CreatePeriodInput) (*models.Period, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	period := &models.Period{
		Title: strings.TrimSpace(in.Title), SectionID: in.SectionID, LevelID: in.LevelID,
		StartDate: in.StartDate, EndDate: in.EndDate,
	}
	if !period.ValidDates() {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			"La date de début doit précéder la date de fin").
			WithDetails(map[string]interface{}{"cause": apperrors.ErrInvalidPeriodDates.Error()})
	}
	if _, err := s.sections.GetByID(ctx, in.SectionID); err != nil {
		return nil, err
	}
	if _, err := s.levels.GetByID(ctx, in.LevelID); err != nil {
		return nil, err
	}
	if err := s.periods.Create(ctx, period); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("period_id", period.ID).Str("title", period.Title).Msg("Period created")
	return period, nil
}

// CreateAvailabilitiesInput describes Count identical availabilities
type CreateAvailabilitiesInput struct {
	CorporationID int64 `validate:"required,gt=0"`
	PeriodID      int64 `validate:"required,gt=0"`
	DomainID      int64 `validate:"required,gt=0"`
	ContactID     *int64
	Priority      bool
	Comment       string
	Count         int `validate:"gte=1"`
}

// CreateAvailabilities creates Count identical availabilities of a corporation for a
// period.
func (s *AdminService) CreateAvailabilities(ctx context.Context, in CreateAvailabilitiesInput) ([]*models.Availability, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Count > maxAvailabilities {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Au maximum %d disponibilités à la fois", maxAvailabilities))
	}
	if _, err := s.corporations.GetByID(ctx, in.CorporationID); err != nil {
		return nil, err
	}
	if _, err := s.periods.GetByID(ctx, in.PeriodID); err != nil {
		return nil, err
	}
	if _, err := s.domains.GetByID(ctx, in.DomainID); err != nil {
		return nil, err
	}
	if in.ContactID != nil {
		contact, err := s.contacts.GetByID(ctx, *in.ContactID)
		if err != nil {
			return nil, err
		}
		if contact.CorporationID != in.CorporationID {
			return nil, apperrors.NewValidationError("Le contact n'appartient pas à cette institution")
		}
	}

	created := make([]*models.Availability, 0, in.Count)
	for i := 0; i < in.Count; i++ {
		avail := &models.Availability{
			CorporationID: in.CorporationID, PeriodID: in.PeriodID, DomainID: in.DomainID,
			ContactID: in.ContactID, Priority: in.Priority, Comment: in.Comment,
		}
		if err := s.availabilities.Create(ctx, avail); err != nil {
			return nil, err
		}
		created = append(created, avail)
	}
	s.logger.Info().
		Int64("corporation_id", in.CorporationID).
		Int64("period_id", in.PeriodID).
		Int("count", in.Count).
		Msg("Availabilities created")
	return created, nil
}
