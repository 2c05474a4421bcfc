package repositories

import (
	"context"
	"fmt"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
)

// AvailabilityRepository handles database operations for availabilities
type AvailabilityRepository struct {
	db db.Querier
}

// NewAvailabilityRepository creates a new availability repository
func NewAvailabilityRepository(q db.Querier) *AvailabilityRepository {
	return &AvailabilityRepository{db: q}
}

// Create inserts an availability
func (r *AvailabilityRepository) Create(ctx context.Context, a *models.Availability) error {
	query := `
		INSERT INTO availabilities (corporation_id, period_id, domain_id, contact_id, priority, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		a.CorporationID, a.PeriodID, a.DomainID, a.ContactID, a.Priority, a.Comment,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("error creating availability: %w", err)
	}
	return nil
}

// GetByID retrieves an availability by ID
func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*models.Availability, error) {
	return getAvailability(ctx, r.db, id, false)
}

func getAvailability(ctx context.Context, q db.Querier, id int64, forUpdate bool) (*models.Availability, error) {
	query := `
		SELECT id, corporation_id, period_id, domain_id, contact_id, priority, comment
		FROM availabilities
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var a models.Availability
	err := q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.CorporationID, &a.PeriodID, &a.DomainID, &a.ContactID, &a.Priority, &a.Comment,
	)
	if err != nil {
		return nil, notFound(err, "availability", id)
	}
	return &a, nil
}

// ListViewsByPeriod returns the availabilities of a period, priority ones first, then by
// corporation name.
func (r *AvailabilityRepository) ListViewsByPeriod(ctx context.Context, periodID int64) ([]*models.AvailabilityView, error) {
	query := `
		SELECT a.id, c.id, c.name, d.name,
			NOT EXISTS (SELECT 1 FROM trainings tr WHERE tr.availability_id = a.id),
			a.priority
		FROM availabilities a
		JOIN corporations c ON c.id = a.corporation_id
		JOIN domains d ON d.id = a.domain_id
		WHERE a.period_id = $1
		ORDER BY a.priority DESC, c.name ASC, a.id ASC
	`
	rows, err := r.db.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("error listing availabilities: %w", err)
	}
	defer rows.Close()

	var views []*models.AvailabilityView
	for rows.Next() {
		var v models.AvailabilityView
		if err := rows.Scan(&v.ID, &v.CorporationID, &v.CorporationName, &v.DomainName, &v.Free, &v.Priority); err != nil {
			return nil, err
		}
		views = append(views, &v)
	}
	return views, rows.Err()
}
