package services

import (
	"context"
	"time"

	"github.com/cpne/stages/internal/app/models"
)

// The stores below are the persistence needs of the services. The pgx repositories
// implement them; tests use in-memory fakes.

// SectionStore reads sections
type SectionStore interface {
	GetByID(ctx context.Context, id int64) (*models.Section, error)
	ListByNamePrefix(ctx context.Context, prefix string) ([]*models.Section, error)
}

// LevelStore reads levels
type LevelStore interface {
	GetByID(ctx context.Context, id int64) (*models.Level, error)
	GetByName(ctx context.Context, name string) (*models.Level, error)
}

// KlassStore persists classes
type KlassStore interface {
	Create(ctx context.Context, klass *models.Klass) error
	GetByID(ctx context.Context, id int64) (*models.Klass, error)
	ListBySection(ctx context.Context, sectionID int64) ([]*models.Klass, error)
	Delete(ctx context.Context, id int64) error
}

// TeacherStore persists teachers
type TeacherStore interface {
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	List(ctx context.Context, ids []int64) ([]*models.Teacher, error)
	ListReferents(ctx context.Context, since time.Time) ([]*models.Referent, error)
	UpdateNextReport(ctx context.Context, id int64, report int) error
	Delete(ctx context.Context, id int64) error
}

// StudentStore persists students
type StudentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	Update(ctx context.Context, s *models.Student) error
	ListEligibleForPeriod(ctx context.Context, sectionID, levelID, periodID int64) ([]*models.EligibleStudent, error)
	ListTrainingSnapshots(ctx context.Context, studentID int64) ([]models.TrainingSnapshot, error)
}

// CorporationStore persists corporations
type CorporationStore interface {
	Create(ctx context.Context, c *models.Corporation) error
	GetByID(ctx context.Context, id int64) (*models.Corporation, error)
	Delete(ctx context.Context, id int64) error
}

// ContactStore reads corporation contacts
type ContactStore interface {
	GetByID(ctx context.Context, id int64) (*models.CorpContact, error)
	ListActiveByCorporation(ctx context.Context, corporationID int64) ([]*models.CorpContact, error)
}

// DomainStore reads internship domains
type DomainStore interface {
	GetByID(ctx context.Context, id int64) (*models.Domain, error)
}

// PeriodStore persists periods
type PeriodStore interface {
	Create(ctx context.Context, p *models.Period) error
	GetByID(ctx context.Context, id int64) (*models.Period, error)
	ListBySectionSince(ctx context.Context, sectionID int64, since time.Time) ([]*models.Period, error)
}

// AvailabilityStore persists availabilities
type AvailabilityStore interface {
	Create(ctx context.Context, a *models.Availability) error
	GetByID(ctx context.Context, id int64) (*models.Availability, error)
	ListViewsByPeriod(ctx context.Context, periodID int64) ([]*models.AvailabilityView, error)
}

// TrainingStore persists trainings. Bind must be atomic: it fails with a conflict when
// the availability already carries a training and leaves nothing behind on error.
type TrainingStore interface {
	Bind(ctx context.Context, b *models.TrainingBinding) error
	Delete(ctx context.Context, id int64) (*int64, error)
	ListViewsByPeriod(ctx context.Context, periodID int64) ([]*models.TrainingView, error)
}

// CourseStore reads courses
type CourseStore interface {
	ListByTeacher(ctx context.Context, teacherID int64) ([]*models.Course, error)
}

// CandidateStore persists admission files
type CandidateStore interface {
	GetByID(ctx context.Context, id int64) (*models.Candidate, error)
	SetConfirmationMail(ctx context.Context, id int64, at time.Time) error
}

// ExaminationStore reads diploma defences and records their convocation
type ExaminationStore interface {
	GetByStudent(ctx context.Context, studentID int64) (*models.Examination, error)
	SetConvocationMailed(ctx context.Context, studentID int64, at time.Time) error
}

// ExportStore reads the flattened rows of the XLSX exports
type ExportStore interface {
	ListStageRows(ctx context.Context, periodID *int64) ([]*models.StageRow, error)
	ListStudentRows(ctx context.Context, klassMarkers []string) ([]*models.StudentRow, error)
}

// ImportTx is what an import reads and writes, all within one transaction. Lookups
// report a missing row with an apperrors.ErrResourceNotFound error.
type ImportTx interface {
	FindKlassByName(ctx context.Context, name string) (*models.Klass, error)
	FindStudentByExtID(ctx context.Context, extID int64) (*models.Student, error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	CreateStudent(ctx context.Context, s *models.Student) error
	UpdateStudent(ctx context.Context, s *models.Student) error
	ListStudentExtIDs(ctx context.Context) (map[int64]int64, error)
	ListTrainingSnapshots(ctx context.Context, studentID int64) ([]models.TrainingSnapshot, error)
	FindCandidateByName(ctx context.Context, first, last string) (*models.Candidate, error)

	GetOrCreateCorporation(ctx context.Context, corp *models.Corporation) (bool, error)
	FindCorporationByExtID(ctx context.Context, extID int64) (*models.Corporation, error)
	GetOrCreateContact(ctx context.Context, contact *models.CorpContact) (bool, error)
	FindContactByName(ctx context.Context, corporationID int64, first, last string) (*models.CorpContact, error)
	CreateContact(ctx context.Context, contact *models.CorpContact) error
	UpdateContact(ctx context.Context, contact *models.CorpContact) error

	ListTeachers(ctx context.Context) ([]*models.Teacher, error)
	DeleteAllCourses(ctx context.Context) error
	FindCourse(ctx context.Context, teacherID *int64, subject, public string) (*models.Course, error)
	CreateCourse(ctx context.Context, c *models.Course) error
	UpdateCourse(ctx context.Context, c *models.Course) error
}

// UnitOfWork runs fn in a transaction, committed when fn returns nil.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(tx ImportTx) error) error
}
