package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/dberrors"
)

const trainingAvailabilityConstraint = "trainings_availability_id_key"

// TrainingRepository handles database operations for trainings
type TrainingRepository struct {
	db   db.Querier
	pool db.TxBeginner
}

// NewTrainingRepository creates a new training repository
func NewTrainingRepository(pool db.Pool) *TrainingRepository {
	return &TrainingRepository{db: pool, pool: pool}
}

func availabilityBoundError(availabilityID int64) error {
	return apperrors.NewCustomError(apperrors.ErrConflict,
		"Cette disponibilité est déjà attribuée").
		WithDetails(map[string]interface{}{
			"availability_id": availabilityID,
			"cause":           apperrors.ErrAvailabilityBound.Error(),
		})
}

// Bind materializes a training in one transaction. The availability row is locked first so
// a concurrent binding waits and then sees the training; the unique key on
// trainings.availability_id catches anything that slips through.
func (r *TrainingRepository) Bind(ctx context.Context, b *models.TrainingBinding) error {
	return db.WithTransaction(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		avail, err := getAvailability(ctx, tx, b.AvailabilityID, true)
		if err != nil {
			return err
		}

		var bound bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM trainings WHERE availability_id = $1)`, avail.ID,
		).Scan(&bound); err != nil {
			return fmt.Errorf("error checking availability: %w", err)
		}
		if bound {
			return availabilityBoundError(avail.ID)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO trainings (student_id, availability_id, referent_id, comment)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, b.StudentID, b.AvailabilityID, b.ReferentID, b.Comment).Scan(&b.ID)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, trainingAvailabilityConstraint) {
				return availabilityBoundError(avail.ID)
			}
			return fmt.Errorf("error creating training: %w", err)
		}

		if b.SetContact {
			if _, err := tx.Exec(ctx, `UPDATE availabilities SET contact_id = $2 WHERE id = $1`,
				avail.ID, b.ContactID); err != nil {
				return fmt.Errorf("error updating availability contact: %w", err)
			}
		}
		return nil
	})
}

// Delete removes a training and returns the referent it had, if any.
func (r *TrainingRepository) Delete(ctx context.Context, id int64) (*int64, error) {
	var referentID *int64
	err := r.db.QueryRow(ctx, `DELETE FROM trainings WHERE id = $1 RETURNING referent_id`, id).Scan(&referentID)
	if err != nil {
		return nil, notFound(err, "training", id)
	}
	return referentID, nil
}

// ListViewsByPeriod returns the trainings of a period ordered by student name
func (r *TrainingRepository) ListViewsByPeriod(ctx context.Context, periodID int64) ([]*models.TrainingView, error) {
	query := `
		SELECT tr.id, s.id, s.first_name, s.last_name, COALESCE(k.name, ''),
			c.name, d.name, tr.referent_id,
			COALESCE(te.last_name || ' ' || te.first_name, ''),
			tr.comment
		FROM trainings tr
		JOIN availabilities a ON a.id = tr.availability_id
		JOIN students s ON s.id = tr.student_id
		LEFT JOIN klasses k ON k.id = s.klass_id
		JOIN corporations c ON c.id = a.corporation_id
		JOIN domains d ON d.id = a.domain_id
		LEFT JOIN teachers te ON te.id = tr.referent_id
		WHERE a.period_id = $1
		ORDER BY s.last_name, s.first_name, tr.id
	`
	rows, err := r.db.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("error listing trainings: %w", err)
	}
	defer rows.Close()

	var views []*models.TrainingView
	for rows.Next() {
		var v models.TrainingView
		if err := rows.Scan(
			&v.ID, &v.StudentID, &v.StudentFirstName, &v.StudentLastName, &v.KlassName,
			&v.CorporationName, &v.DomainName, &v.ReferentID, &v.ReferentName, &v.Comment,
		); err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}
