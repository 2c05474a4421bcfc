package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
)

const periodColumns = "p.id, p.title, p.section_id, p.level_id, p.start_date, p.end_date, s.name, l.name"

// PeriodRepository handles database operations for internship periods
type PeriodRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(q db.Querier) *PeriodRepository {
	return &PeriodRepository{db: q, sb: statementBuilder()}
}

func (r *PeriodRepository) selectPeriods() squirrel.SelectBuilder {
	return r.sb.Select(periodColumns).
		From("periods p").
		Join("sections s ON s.id = p.section_id").
		Join("levels l ON l.id = p.level_id")
}

func scanPeriod(row rowScanner) (*models.Period, error) {
	p := models.Period{Section: &models.Section{}, Level: &models.Level{}}
	if err := row.Scan(&p.ID, &p.Title, &p.SectionID, &p.LevelID, &p.StartDate, &p.EndDate,
		&p.Section.Name, &p.Level.Name); err != nil {
		return nil, err
	}
	p.Section.ID = p.SectionID
	p.Level.ID = p.LevelID
	return &p, nil
}

// Create inserts a period
func (r *PeriodRepository) Create(ctx context.Context, p *models.Period) error {
	query := `
		INSERT INTO periods (title, section_id, level_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := r.db.QueryRow(ctx, query, p.Title, p.SectionID, p.LevelID, p.StartDate, p.EndDate).Scan(&p.ID); err != nil {
		return fmt.Errorf("error creating period: %w", err)
	}
	return nil
}

// GetByID retrieves a period with its section and level
func (r *PeriodRepository) GetByID(ctx context.Context, id int64) (*models.Period, error) {
	query, args, err := r.selectPeriods().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building period query: %w", err)
	}
	p, err := scanPeriod(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "period", id)
	}
	return p, nil
}

// ListBySectionSince returns the periods of a section starting after since, newest first
func (r *PeriodRepository) ListBySectionSince(ctx context.Context, sectionID int64, since time.Time) ([]*models.Period, error) {
	query, args, err := r.selectPeriods().
		Where(squirrel.Eq{"p.section_id": sectionID}).
		Where(squirrel.Gt{"p.start_date": since}).
		OrderBy("p.start_date DESC", "p.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building periods query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing periods: %w", err)
	}
	defer rows.Close()

	var periods []*models.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
