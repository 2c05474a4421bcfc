package repositories

import (
	"context"
	"fmt"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/db"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/dberrors"
)

const (
	klassNameConstraint    = "klasses_name_key"
	studentKlassConstraint = "students_klass_id_fkey"
)

// KlassRepository handles database operations for classes
type KlassRepository struct {
	db db.Querier
}

// NewKlassRepository creates a new klass repository
func NewKlassRepository(q db.Querier) *KlassRepository {
	return &KlassRepository{db: q}
}

// Create inserts a klass. A duplicate name yields ErrKlassAlreadyExists.
func (r *KlassRepository) Create(ctx context.Context, klass *models.Klass) error {
	query := `
		INSERT INTO klasses (name, section_id, level_id, teacher_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, klass.Name, klass.SectionID, klass.LevelID, klass.TeacherID).Scan(&klass.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, klassNameConstraint) {
			return apperrors.NewCustomError(apperrors.ErrConflict,
				fmt.Sprintf("La classe «%s» existe déjà", klass.Name)).
				WithDetails(map[string]interface{}{"cause": apperrors.ErrKlassAlreadyExists.Error()}).
				WithCode(string(dto.ErrorCodeResourceAlreadyExists))
		}
		return fmt.Errorf("error creating klass: %w", err)
	}
	return nil
}

// GetByID retrieves a klass with its section and level
func (r *KlassRepository) GetByID(ctx context.Context, id int64) (*models.Klass, error) {
	query := `
		SELECT k.id, k.name, k.section_id, k.level_id, k.teacher_id, s.name, l.name
		FROM klasses k
		JOIN sections s ON s.id = k.section_id
		JOIN levels l ON l.id = k.level_id
		WHERE k.id = $1
	`
	klass := models.Klass{Section: &models.Section{}, Level: &models.Level{}}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&klass.ID, &klass.Name, &klass.SectionID, &klass.LevelID, &klass.TeacherID,
		&klass.Section.Name, &klass.Level.Name,
	)
	if err != nil {
		return nil, notFound(err, "klass", id)
	}
	klass.Section.ID = klass.SectionID
	klass.Level.ID = klass.LevelID
	return &klass, nil
}

// GetByName retrieves a klass by its unique name
func (r *KlassRepository) GetByName(ctx context.Context, name string) (*models.Klass, error) {
	var klass models.Klass
	err := r.db.QueryRow(ctx,
		`SELECT id, name, section_id, level_id, teacher_id FROM klasses WHERE name = $1`, name,
	).Scan(&klass.ID, &klass.Name, &klass.SectionID, &klass.LevelID, &klass.TeacherID)
	if err != nil {
		return nil, notFound(err, "klass", name)
	}
	return &klass, nil
}

// ListBySection returns the classes of a section, by name
func (r *KlassRepository) ListBySection(ctx context.Context, sectionID int64) ([]*models.Klass, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, section_id, level_id, teacher_id FROM klasses WHERE section_id = $1 ORDER BY name`,
		sectionID)
	if err != nil {
		return nil, fmt.Errorf("error listing klasses: %w", err)
	}
	defer rows.Close()

	var klasses []*models.Klass
	for rows.Next() {
		var klass models.Klass
		if err := rows.Scan(&klass.ID, &klass.Name, &klass.SectionID, &klass.LevelID, &klass.TeacherID); err != nil {
			return nil, err
		}
		klasses = append(klasses, &klass)
	}
	return klasses, rows.Err()
}

// ListActive returns the classes with at least one non-archived student
func (r *KlassRepository) ListActive(ctx context.Context) ([]*models.Klass, error) {
	rows, err := r.db.Query(ctx, `
		SELECT k.id, k.name, k.section_id, k.level_id, k.teacher_id
		FROM klasses k
		WHERE EXISTS (SELECT 1 FROM students s WHERE s.klass_id = k.id AND NOT s.archived)
		ORDER BY k.name
	`)
	if err != nil {
		return nil, fmt.Errorf("error listing active klasses: %w", err)
	}
	defer rows.Close()

	var klasses []*models.Klass
	for rows.Next() {
		var klass models.Klass
		if err := rows.Scan(&klass.ID, &klass.Name, &klass.SectionID, &klass.LevelID, &klass.TeacherID); err != nil {
			return nil, err
		}
		klasses = append(klasses, &klass)
	}
	return klasses, rows.Err()
}

// Delete removes a klass. The schema refuses while students reference it.
func (r *KlassRepository) Delete(ctx context.Context, id int64) error {
	err := deleteByID(ctx, r.db, "klasses", "klass", id)
	if dberrors.IsForeignKeyConstraintError(err, studentKlassConstraint) {
		return apperrors.NewCustomError(apperrors.ErrConflict,
			"La classe contient encore des étudiants et ne peut pas être supprimée").
			WithDetails(map[string]interface{}{"cause": apperrors.ErrKlassHasStudents.Error()})
	}
	return err
}
