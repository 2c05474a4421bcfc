package repositories

import (
	"context"
	"fmt"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
)

const courseColumns = "id, teacher_id, public, subject, period, imputation"

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db db.Querier
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(q db.Querier) *CourseRepository {
	return &CourseRepository{db: q}
}

func scanCourse(row rowScanner, c *models.Course) error {
	return row.Scan(&c.ID, &c.TeacherID, &c.Public, &c.Subject, &c.Period, &c.Imputation)
}

// Create inserts a course
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	return createCourse(ctx, r.db, c)
}

func createCourse(ctx context.Context, q db.Querier, c *models.Course) error {
	err := q.QueryRow(ctx, `
		INSERT INTO courses (teacher_id, public, subject, period, imputation)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.TeacherID, c.Public, c.Subject, c.Period, c.Imputation).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

func updateCourse(ctx context.Context, q db.Querier, c *models.Course) error {
	tag, err := q.Exec(ctx, `
		UPDATE courses SET teacher_id = $2, public = $3, subject = $4, period = $5, imputation = $6
		WHERE id = $1
	`, c.ID, c.TeacherID, c.Public, c.Subject, c.Period, c.Imputation)
	if err != nil {
		return fmt.Errorf("error updating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(errNoRows, "course", c.ID)
	}
	return nil
}

// ListByTeacher returns the courses of a teacher, mandates and teaching mixed
func (r *CourseRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*models.Course, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE teacher_id = $1 ORDER BY subject, public, id`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		var course models.Course
		if err := scanCourse(rows, &course); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}
	return courses, rows.Err()
}

func findCourse(ctx context.Context, q db.Querier, teacherID *int64, subject, public string) (*models.Course, error) {
	var course models.Course
	err := scanCourse(q.QueryRow(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE teacher_id IS NOT DISTINCT FROM $1 AND subject = $2 AND public = $3
		ORDER BY id
		LIMIT 1
	`, teacherID, subject, public), &course)
	if err != nil {
		return nil, notFound(err, "course", subject)
	}
	return &course, nil
}
