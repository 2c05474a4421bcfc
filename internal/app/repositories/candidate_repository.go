package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
)

const candidateColumns = `id, first_name, last_name, gender, birth_date, street, pcode, city, email, mobile,
	section, option, corporation_id, instructor_id, exemption_ecg, handicap, date_confirmation_mail`

// CandidateRepository handles database operations for admission candidates
type CandidateRepository struct {
	db db.Querier
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(q db.Querier) *CandidateRepository {
	return &CandidateRepository{db: q}
}

func scanCandidate(row rowScanner, c *models.Candidate) error {
	return row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Gender, &c.BirthDate, &c.Street, &c.PCode, &c.City,
		&c.Email, &c.Mobile, &c.Section, &c.Option, &c.CorporationID, &c.InstructorID,
		&c.ExemptionECG, &c.Handicap, &c.DateConfirmationMail,
	)
}

// Create inserts a candidate
func (r *CandidateRepository) Create(ctx context.Context, c *models.Candidate) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO candidates (first_name, last_name, gender, birth_date, street, pcode, city, email,
			mobile, section, option, corporation_id, instructor_id, exemption_ecg, handicap)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`, c.FirstName, c.LastName, c.Gender, c.BirthDate, c.Street, c.PCode, c.City, c.Email,
		c.Mobile, c.Section, c.Option, c.CorporationID, c.InstructorID, c.ExemptionECG, c.Handicap,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("error creating candidate: %w", err)
	}
	return nil
}

// GetByID retrieves a candidate by ID
func (r *CandidateRepository) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	var candidate models.Candidate
	err := scanCandidate(r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id), &candidate)
	if err != nil {
		return nil, notFound(err, "candidate", id)
	}
	return &candidate, nil
}

// SetConfirmationMail records when the confirmation mail went out
func (r *CandidateRepository) SetConfirmationMail(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE candidates SET date_confirmation_mail = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("error updating candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(errNoRows, "candidate", id)
	}
	return nil
}

func findCandidateByName(ctx context.Context, q db.Querier, first, last string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := scanCandidate(q.QueryRow(ctx, `
		SELECT `+candidateColumns+`
		FROM candidates
		WHERE first_name = $1 AND last_name = $2
		ORDER BY id DESC
		LIMIT 1
	`, first, last), &candidate)
	if err != nil {
		return nil, notFound(err, "candidate", last+" "+first)
	}
	return &candidate, nil
}
