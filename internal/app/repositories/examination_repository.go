package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
	"github.com/cpne/stages/internal/pkg/apperrors"
)

// ExaminationRepository reads and records the diploma defence data kept on students
type ExaminationRepository struct {
	db db.Querier
}

// NewExaminationRepository creates a new examination repository
func NewExaminationRepository(q db.Querier) *ExaminationRepository {
	return &ExaminationRepository{db: q}
}

// GetByStudent returns the examination of a student with both experts, when set.
func (r *ExaminationRepository) GetByStudent(ctx context.Context, studentID int64) (*models.Examination, error) {
	query := `
		SELECT s.id, s.gender, s.first_name, s.last_name, s.email,
			s.exam_date, s.exam_room, s.convocation_mailed_at,
			e.id, COALESCE(e.title, ''), COALESCE(e.first_name, ''), COALESCE(e.last_name, ''), COALESCE(e.email, ''),
			ie.id, COALESCE(ie.civility, ''), COALESCE(ie.first_name, ''), COALESCE(ie.last_name, ''), COALESCE(ie.email, '')
		FROM students s
		LEFT JOIN corp_contacts e ON e.id = s.expert_id
		LEFT JOIN teachers ie ON ie.id = s.internal_expert_id
		WHERE s.id = $1
	`
	var (
		exam                   models.Examination
		gender                 models.Gender
		expertID, internalID   *int64
		expert, internalExpert models.ExamPerson
	)
	err := r.db.QueryRow(ctx, query, studentID).Scan(
		&exam.StudentID, &gender, &exam.Student.FirstName, &exam.Student.LastName, &exam.Student.Email,
		&exam.Date, &exam.Room, &exam.ConvocationMailedAt,
		&expertID, &expert.Civility, &expert.FirstName, &expert.LastName, &expert.Email,
		&internalID, &internalExpert.Civility, &internalExpert.FirstName, &internalExpert.LastName, &internalExpert.Email,
	)
	if err != nil {
		return nil, notFound(err, "student", studentID)
	}
	exam.Student.Civility = gender.Civility()
	if expertID != nil {
		exam.Expert = &expert
	}
	if internalID != nil {
		exam.InternalExpert = &internalExpert
	}
	return &exam, nil
}

// SetConvocationMailed records when the convocation went out. It refuses to overwrite
// an earlier sending.
func (r *ExaminationRepository) SetConvocationMailed(ctx context.Context, studentID int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE students SET convocation_mailed_at = $2
		WHERE id = $1 AND convocation_mailed_at IS NULL
	`, studentID, at)
	if err != nil {
		return fmt.Errorf("error updating examination: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewCustomError(apperrors.ErrConflict, "Une convocation a déjà été envoyée !")
	}
	return nil
}
