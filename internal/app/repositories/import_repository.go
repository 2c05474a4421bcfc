package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

// ImportRepository opens the transaction an import runs in
type ImportRepository struct {
	pool db.TxBeginner
}

// NewImportRepository creates a new import repository
func NewImportRepository(pool db.TxBeginner) *ImportRepository {
	return &ImportRepository{pool: pool}
}

// RunInTx calls fn with an ImportTx bound to a fresh transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (r *ImportRepository) RunInTx(ctx context.Context, fn func(*ImportTx) error) error {
	return db.WithTransaction(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(&ImportTx{q: tx})
	})
}

// ImportTx exposes the reads and writes an import needs, all inside one transaction.
type ImportTx struct {
	q db.Querier
}

// FindKlassByName retrieves a klass by its unique name
func (t *ImportTx) FindKlassByName(ctx context.Context, name string) (*models.Klass, error) {
	return NewKlassRepository(t.q).GetByName(ctx, name)
}

// FindStudentByExtID retrieves a student by registry id
func (t *ImportTx) FindStudentByExtID(ctx context.Context, extID int64) (*models.Student, error) {
	return NewStudentRepository(t.q).GetByExtID(ctx, extID)
}

// GetStudent retrieves a student by id
func (t *ImportTx) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return NewStudentRepository(t.q).GetByID(ctx, id)
}

// CreateStudent inserts a student
func (t *ImportTx) CreateStudent(ctx context.Context, s *models.Student) error {
	return NewStudentRepository(t.q).Create(ctx, s)
}

// UpdateStudent saves a student
func (t *ImportTx) UpdateStudent(ctx context.Context, s *models.Student) error {
	return NewStudentRepository(t.q).Update(ctx, s)
}

// ListStudentExtIDs maps the registry id of every non-archived student to its id
func (t *ImportTx) ListStudentExtIDs(ctx context.Context) (map[int64]int64, error) {
	return listActiveExtIDs(ctx, t.q)
}

// ListTrainingSnapshots summarizes a student's trainings for archival
func (t *ImportTx) ListTrainingSnapshots(ctx context.Context, studentID int64) ([]models.TrainingSnapshot, error) {
	return listTrainingSnapshots(ctx, t.q, studentID)
}

// FindCandidateByName returns the latest admission file with these exact names
func (t *ImportTx) FindCandidateByName(ctx context.Context, first, last string) (*models.Candidate, error) {
	return findCandidateByName(ctx, t.q, first, last)
}

// GetOrCreateCorporation looks corp up by ext id and creates it when missing. On return
// corp holds the stored row. created reports whether an insert happened.
func (t *ImportTx) GetOrCreateCorporation(ctx context.Context, corp *models.Corporation) (created bool, err error) {
	if corp.ExtID == nil {
		return false, apperrors.NewValidationError("corporation without ext id")
	}
	existing, err := getCorporationByExtID(ctx, t.q, *corp.ExtID)
	if err == nil {
		*corp = *existing
		return false, nil
	}
	if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
		return false, err
	}
	if err := createCorporation(ctx, t.q, corp); err != nil {
		return false, err
	}
	return true, nil
}

// FindCorporationByExtID retrieves a corporation by registry id
func (t *ImportTx) FindCorporationByExtID(ctx context.Context, extID int64) (*models.Corporation, error) {
	return getCorporationByExtID(ctx, t.q, extID)
}

// GetOrCreateContact looks contact up by ext id and creates it when missing.
func (t *ImportTx) GetOrCreateContact(ctx context.Context, contact *models.CorpContact) (created bool, err error) {
	if contact.ExtID == nil {
		return false, apperrors.NewValidationError("contact without ext id")
	}
	existing, err := getContactByExtID(ctx, t.q, *contact.ExtID)
	if err == nil {
		*contact = *existing
		return false, nil
	}
	if !apperrors.Is(err, apperrors.ErrResourceNotFound) {
		return false, err
	}
	if err := createContact(ctx, t.q, contact); err != nil {
		return false, err
	}
	return true, nil
}

// FindContactByName matches a contact of a corporation by names, ignoring case
func (t *ImportTx) FindContactByName(ctx context.Context, corporationID int64, first, last string) (*models.CorpContact, error) {
	return findContactByName(ctx, t.q, corporationID, first, last)
}

// CreateContact inserts a contact
func (t *ImportTx) CreateContact(ctx context.Context, contact *models.CorpContact) error {
	return createContact(ctx, t.q, contact)
}

// UpdateContact saves a contact
func (t *ImportTx) UpdateContact(ctx context.Context, contact *models.CorpContact) error {
	return updateContact(ctx, t.q, contact)
}

// ListTeachers returns every teacher, archived ones included
func (t *ImportTx) ListTeachers(ctx context.Context) ([]*models.Teacher, error) {
	rows, err := t.q.Query(ctx, `SELECT `+teacherColumns+` FROM teachers t ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("error listing teachers: %w", err)
	}
	defer rows.Close()

	var teachers []*models.Teacher
	for rows.Next() {
		var teacher models.Teacher
		if err := scanTeacher(rows, &teacher); err != nil {
			return nil, err
		}
		teachers = append(teachers, &teacher)
	}
	return teachers, rows.Err()
}

// DeleteAllCourses empties the courses table before a teaching plan import
func (t *ImportTx) DeleteAllCourses(ctx context.Context) error {
	if _, err := t.q.Exec(ctx, `DELETE FROM courses`); err != nil {
		return fmt.Errorf("error deleting courses: %w", err)
	}
	return nil
}

// FindCourse retrieves the course of a teacher for a subject and public
func (t *ImportTx) FindCourse(ctx context.Context, teacherID *int64, subject, public string) (*models.Course, error) {
	return findCourse(ctx, t.q, teacherID, subject, public)
}

// CreateCourse inserts a course
func (t *ImportTx) CreateCourse(ctx context.Context, c *models.Course) error {
	return createCourse(ctx, t.q, c)
}

// UpdateCourse saves a course
func (t *ImportTx) UpdateCourse(ctx context.Context, c *models.Course) error {
	return updateCourse(ctx, t.q, c)
}
