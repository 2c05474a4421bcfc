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

const studentColumns = `s.id, s.ext_id, s.first_name, s.last_name, s.gender, s.birth_date, s.street,
	s.pcode, s.city, s.district, s.tel, s.mobile, s.email, s.avs, s.dispense_ecg, s.dispense_eps,
	s.soutien_dys, s.klass_id, s.corporation_id, s.instructor_id, s.archived, s.archived_text`

const studentExtIDConstraint = "students_ext_id_key"

// StudentRepository handles database operations for students
type StudentRepository struct {
	db db.Querier
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(q db.Querier) *StudentRepository {
	return &StudentRepository{db: q}
}

func scanStudent(row rowScanner, s *models.Student) error {
	return row.Scan(
		&s.ID, &s.ExtID, &s.FirstName, &s.LastName, &s.Gender, &s.BirthDate, &s.Street,
		&s.PCode, &s.City, &s.District, &s.Tel, &s.Mobile, &s.Email, &s.AVS, &s.DispenseECG, &s.DispenseEPS,
		&s.SoutienDYS, &s.KlassID, &s.CorporationID, &s.InstructorID, &s.Archived, &s.ArchivedText,
	)
}

// Create inserts a student. Callers apply the archival rule beforehand.
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	query := `
		INSERT INTO students (ext_id, first_name, last_name, gender, birth_date, street, pcode, city,
			district, tel, mobile, email, avs, dispense_ecg, dispense_eps, soutien_dys, klass_id,
			corporation_id, instructor_id, archived, archived_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		s.ExtID, s.FirstName, s.LastName, s.Gender, s.BirthDate, s.Street, s.PCode, s.City,
		s.District, s.Tel, s.Mobile, s.Email, s.AVS, s.DispenseECG, s.DispenseEPS, s.SoutienDYS, s.KlassID,
		s.CorporationID, s.InstructorID, s.Archived, s.ArchivedText,
	).Scan(&s.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, studentExtIDConstraint) {
			return apperrors.NewCustomError(apperrors.ErrConflict,
				fmt.Sprintf("Un étudiant avec le numéro %d existe déjà", derefInt64(s.ExtID))).
				WithCode(string(dto.ErrorCodeResourceAlreadyExists))
		}
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// Update saves every column of a student
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	query := `
		UPDATE students SET ext_id = $2, first_name = $3, last_name = $4, gender = $5, birth_date = $6,
			street = $7, pcode = $8, city = $9, district = $10, tel = $11, mobile = $12, email = $13,
			avs = $14, dispense_ecg = $15, dispense_eps = $16, soutien_dys = $17, klass_id = $18,
			corporation_id = $19, instructor_id = $20, archived = $21, archived_text = $22
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		s.ID, s.ExtID, s.FirstName, s.LastName, s.Gender, s.BirthDate,
		s.Street, s.PCode, s.City, s.District, s.Tel, s.Mobile, s.Email,
		s.AVS, s.DispenseECG, s.DispenseEPS, s.SoutienDYS, s.KlassID,
		s.CorporationID, s.InstructorID, s.Archived, s.ArchivedText,
	)
	if err != nil {
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(errNoRows, "student", s.ID)
	}
	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	err := scanStudent(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students s WHERE s.id = $1`, id), &student)
	if err != nil {
		return nil, notFound(err, "student", id)
	}
	return &student, nil
}

// GetByExtID retrieves a student by its registry identifier
func (r *StudentRepository) GetByExtID(ctx context.Context, extID int64) (*models.Student, error) {
	var student models.Student
	err := scanStudent(r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students s WHERE s.ext_id = $1`, extID), &student)
	if err != nil {
		return nil, notFound(err, "student", extID)
	}
	return &student, nil
}

// ListEligibleForPeriod returns the non-archived students whose klass is in the given
// section and level, with the id of their training in periodID if any.
func (r *StudentRepository) ListEligibleForPeriod(ctx context.Context, sectionID, levelID, periodID int64) ([]*models.EligibleStudent, error) {
	query := `
		SELECT s.id, s.first_name, s.last_name, k.name,
			(SELECT tr.id
			 FROM trainings tr
			 JOIN availabilities a ON a.id = tr.availability_id
			 WHERE tr.student_id = s.id AND a.period_id = $3
			 ORDER BY tr.id
			 LIMIT 1)
		FROM students s
		JOIN klasses k ON k.id = s.klass_id
		WHERE NOT s.archived AND k.section_id = $1 AND k.level_id = $2
		ORDER BY s.last_name, s.first_name, s.id
	`
	rows, err := r.db.Query(ctx, query, sectionID, levelID, periodID)
	if err != nil {
		return nil, fmt.Errorf("error listing eligible students: %w", err)
	}
	defer rows.Close()

	var students []*models.EligibleStudent
	for rows.Next() {
		var s models.EligibleStudent
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.KlassName, &s.TrainingID); err != nil {
			return nil, err
		}
		students = append(students, &s)
	}
	return students, rows.Err()
}

// ListTrainingSnapshots summarizes the trainings of a student, most recent period first.
func (r *StudentRepository) ListTrainingSnapshots(ctx context.Context, studentID int64) ([]models.TrainingSnapshot, error) {
	return listTrainingSnapshots(ctx, r.db, studentID)
}

// ListActiveExtIDs returns the registry ids of the non-archived students mapped to their id.
func (r *StudentRepository) ListActiveExtIDs(ctx context.Context) (map[int64]int64, error) {
	return listActiveExtIDs(ctx, r.db)
}

func listTrainingSnapshots(ctx context.Context, q db.Querier, studentID int64) ([]models.TrainingSnapshot, error) {
	query := `
		SELECT p.title, p.start_date, p.end_date,
			c.name, c.sector, c.pcode, c.city,
			COALESCE(te.last_name, ''), COALESCE(te.first_name, ''),
			tr.comment,
			COALESCE(cc.last_name, ''), COALESCE(cc.first_name, ''),
			a.comment, d.name
		FROM trainings tr
		JOIN availabilities a ON a.id = tr.availability_id
		JOIN periods p ON p.id = a.period_id
		JOIN corporations c ON c.id = a.corporation_id
		JOIN domains d ON d.id = a.domain_id
		LEFT JOIN teachers te ON te.id = tr.referent_id
		LEFT JOIN corp_contacts cc ON cc.id = a.contact_id
		WHERE tr.student_id = $1
		ORDER BY p.start_date DESC, tr.id
	`
	rows, err := q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing student trainings: %w", err)
	}
	defer rows.Close()

	var snapshots []models.TrainingSnapshot
	for rows.Next() {
		var (
			period   models.Period
			corp     models.Corporation
			referent models.Teacher
			contact  models.CorpContact
			snap     models.TrainingSnapshot
		)
		if err := rows.Scan(
			&period.Title, &period.StartDate, &period.EndDate,
			&corp.Name, &corp.Sector, &corp.PCode, &corp.City,
			&referent.LastName, &referent.FirstName,
			&snap.Comment,
			&contact.LastName, &contact.FirstName,
			&snap.CommentAvail, &snap.Domain,
		); err != nil {
			return nil, err
		}
		snap.Period = period.Label()
		snap.Corporation = corp.Label()
		snap.Referent = referent.Label()
		snap.Contact = contact.Label()
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func listActiveExtIDs(ctx context.Context, q db.Querier) (map[int64]int64, error) {
	rows, err := q.Query(ctx, `SELECT id, ext_id FROM students WHERE ext_id IS NOT NULL AND NOT archived`)
	if err != nil {
		return nil, fmt.Errorf("error listing student ext ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]int64)
	for rows.Next() {
		var id, extID int64
		if err := rows.Scan(&id, &extID); err != nil {
			return nil, err
		}
		ids[extID] = id
	}
	return ids, rows.Err()
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
