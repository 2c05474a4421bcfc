package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
)

const teacherColumns = `t.id, t.civility, t.first_name, t.last_name, t.abbrev, t.birth_date, t.email,
	t.contract, t.rate, t.previous_report, t.next_report, t.archived`

// TeacherRepository handles database operations for teachers
type TeacherRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(q db.Querier) *TeacherRepository {
	return &TeacherRepository{db: q, sb: statementBuilder()}
}

func scanTeacher(row rowScanner, t *models.Teacher) error {
	return row.Scan(
		&t.ID, &t.Civility, &t.FirstName, &t.LastName, &t.Abbrev, &t.BirthDate, &t.Email,
		&t.Contract, &t.Rate, &t.PreviousReport, &t.NextReport, &t.Archived,
	)
}

// Create inserts a teacher
func (r *TeacherRepository) Create(ctx context.Context, t *models.Teacher) error {
	query := `
		INSERT INTO teachers (civility, first_name, last_name, abbrev, birth_date, email, contract,
			rate, previous_report, next_report, archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		t.Civility, t.FirstName, t.LastName, t.Abbrev, t.BirthDate, t.Email, t.Contract,
		t.Rate, t.PreviousReport, t.NextReport, t.Archived,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("error creating teacher: %w", err)
	}
	return nil
}

// GetByID retrieves a teacher by ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	var teacher models.Teacher
	err := scanTeacher(r.db.QueryRow(ctx, `SELECT `+teacherColumns+` FROM teachers t WHERE t.id = $1`, id), &teacher)
	if err != nil {
		return nil, notFound(err, "teacher", id)
	}
	return &teacher, nil
}

// List returns teachers by last and first name. When ids is not empty only those teachers
// are returned, archived or not; otherwise the non-archived ones.
func (r *TeacherRepository) List(ctx context.Context, ids []int64) ([]*models.Teacher, error) {
	qb := r.sb.Select(teacherColumns).From("teachers t").OrderBy("t.last_name", "t.first_name")
	if len(ids) > 0 {
		qb = qb.Where(squirrel.Eq{"t.id": ids})
	} else {
		qb = qb.Where(squirrel.Eq{"t.archived": false})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building teachers query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
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

// ListReferents returns the non-archived teachers, each with the number of trainings
// they supervise in periods ending on or after since.
func (r *TeacherRepository) ListReferents(ctx context.Context, since time.Time) ([]*models.Referent, error) {
	query := `
		SELECT ` + teacherColumns + `,
			(SELECT COUNT(*)
			 FROM trainings tr
			 JOIN availabilities a ON a.id = tr.availability_id
			 JOIN periods p ON p.id = a.period_id
			 WHERE tr.referent_id = t.id AND p.end_date >= $1) AS num_refs
		FROM teachers t
		WHERE NOT t.archived
		ORDER BY t.last_name, t.first_name
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("error listing referents: %w", err)
	}
	defer rows.Close()

	var referents []*models.Referent
	for rows.Next() {
		var ref models.Referent
		t := &ref.Teacher
		if err := rows.Scan(
			&t.ID, &t.Civility, &t.FirstName, &t.LastName, &t.Abbrev, &t.BirthDate, &t.Email,
			&t.Contract, &t.Rate, &t.PreviousReport, &t.NextReport, &t.Archived, &ref.NumRefs,
		); err != nil {
			return nil, err
		}
		referents = append(referents, &ref)
	}
	return referents, rows.Err()
}

// UpdateNextReport persists the carry-over computed by the workload accounting
func (r *TeacherRepository) UpdateNextReport(ctx context.Context, id int64, report int) error {
	tag, err := r.db.Exec(ctx, `UPDATE teachers SET next_report = $2 WHERE id = $1`, id, report)
	if err != nil {
		return fmt.Errorf("error updating teacher report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(errNoRows, "teacher", id)
	}
	return nil
}

// Delete removes a teacher. Klasses, trainings and courses keep their rows with a null
// teacher reference.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "teachers", "teacher", id)
}
