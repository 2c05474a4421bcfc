package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cpne/stages/internal/db"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

// Repositories holds all the repository instances
type Repositories struct {
	SectionRepository      *SectionRepository
	LevelRepository        *LevelRepository
	DomainRepository       *DomainRepository
	KlassRepository        *KlassRepository
	TeacherRepository      *TeacherRepository
	StudentRepository      *StudentRepository
	CorporationRepository  *CorporationRepository
	ContactRepository      *ContactRepository
	PeriodRepository       *PeriodRepository
	AvailabilityRepository *AvailabilityRepository
	TrainingRepository     *TrainingRepository
	CourseRepository       *CourseRepository
	CandidateRepository    *CandidateRepository
	ExaminationRepository  *ExaminationRepository
	ExportRepository       *ExportRepository
	ImportRepository       *ImportRepository
}

// NewRepositories initializes all repositories on the pool
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		SectionRepository:      NewSectionRepository(pool),
		LevelRepository:        NewLevelRepository(pool),
		DomainRepository:       NewDomainRepository(pool),
		KlassRepository:        NewKlassRepository(pool),
		TeacherRepository:      NewTeacherRepository(pool),
		StudentRepository:      NewStudentRepository(pool),
		CorporationRepository:  NewCorporationRepository(pool),
		ContactRepository:      NewContactRepository(pool),
		PeriodRepository:       NewPeriodRepository(pool),
		AvailabilityRepository: NewAvailabilityRepository(pool),
		TrainingRepository:     NewTrainingRepository(pool),
		CourseRepository:       NewCourseRepository(pool),
		CandidateRepository:    NewCandidateRepository(pool),
		ExaminationRepository:  NewExaminationRepository(pool),
		ExportRepository:       NewExportRepository(pool),
		ImportRepository:       NewImportRepository(pool),
	}
}

// statementBuilder is the squirrel builder used by every repository.
func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// notFound turns pgx.ErrNoRows into an apperrors not-found error naming the entity.
func notFound(err error, entity string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %v not found", entity, id))
	}
	return fmt.Errorf("error retrieving %s: %w", entity, err)
}

// deleteByID removes one row of table and reports a missing row as not found.
func deleteByID(ctx context.Context, q db.Querier, table, entity string, id int64) error {
	tag, err := q.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting %s: %w", entity, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %d not found", entity, id))
	}
	return nil
}

// rowScanner is implemented by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// errNoRows lets update paths report a missing row through notFound.
var errNoRows = pgx.ErrNoRows
