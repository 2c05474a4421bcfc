package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
)

// SectionRepository handles database operations for sections
type SectionRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(q db.Querier) *SectionRepository {
	return &SectionRepository{db: q, sb: statementBuilder()}
}

// Create inserts a section
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	err := r.db.QueryRow(ctx, `INSERT INTO sections (name) VALUES ($1) RETURNING id`, section.Name).Scan(&section.ID)
	if err != nil {
		return fmt.Errorf("error creating section: %w", err)
	}
	return nil
}

// GetByID retrieves a section by ID
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	var section models.Section
	err := r.db.QueryRow(ctx, `SELECT id, name FROM sections WHERE id = $1`, id).Scan(&section.ID, &section.Name)
	if err != nil {
		return nil, notFound(err, "section", id)
	}
	return &section, nil
}

// GetByName retrieves a section by its name
func (r *SectionRepository) GetByName(ctx context.Context, name string) (*models.Section, error) {
	var section models.Section
	err := r.db.QueryRow(ctx, `SELECT id, name FROM sections WHERE name = $1`, name).Scan(&section.ID, &section.Name)
	if err != nil {
		return nil, notFound(err, "section", name)
	}
	return &section, nil
}

// ListByNamePrefix returns the sections whose name starts with prefix, by name.
func (r *SectionRepository) ListByNamePrefix(ctx context.Context, prefix string) ([]*models.Section, error) {
	query, args, err := r.sb.Select("id", "name").
		From("sections").
		Where(squirrel.Like{"name": prefix + "%"}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building sections query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing sections: %w", err)
	}
	defer rows.Close()

	var sections []*models.Section
	for rows.Next() {
		var section models.Section
		if err := rows.Scan(&section.ID, &section.Name); err != nil {
			return nil, err
		}
		sections = append(sections, &section)
	}
	return sections, rows.Err()
}

// LevelRepository handles database operations for levels
type LevelRepository struct {
	db db.Querier
}

// NewLevelRepository creates a new level repository
func NewLevelRepository(q db.Querier) *LevelRepository {
	return &LevelRepository{db: q}
}

// Create inserts a level
func (r *LevelRepository) Create(ctx context.Context, level *models.Level) error {
	err := r.db.QueryRow(ctx, `INSERT INTO levels (name) VALUES ($1) RETURNING id`, level.Name).Scan(&level.ID)
	if err != nil {
		return fmt.Errorf("error creating level: %w", err)
	}
	return nil
}

// GetByID retrieves a level by ID
func (r *LevelRepository) GetByID(ctx context.Context, id int64) (*models.Level, error) {
	var level models.Level
	err := r.db.QueryRow(ctx, `SELECT id, name FROM levels WHERE id = $1`, id).Scan(&level.ID, &level.Name)
	if err != nil {
		return nil, notFound(err, "level", id)
	}
	return &level, nil
}

// GetByName retrieves a level by name ("1", "2"...)
func (r *LevelRepository) GetByName(ctx context.Context, name string) (*models.Level, error) {
	var level models.Level
	err := r.db.QueryRow(ctx, `SELECT id, name FROM levels WHERE name = $1`, name).Scan(&level.ID, &level.Name)
	if err != nil {
		return nil, notFound(err, "level", name)
	}
	return &level, nil
}

// DomainRepository handles database operations for internship domains
type DomainRepository struct {
	db db.Querier
}

// NewDomainRepository creates a new domain repository
func NewDomainRepository(q db.Querier) *DomainRepository {
	return &DomainRepository{db: q}
}

// Create inserts a domain
func (r *DomainRepository) Create(ctx context.Context, domain *models.Domain) error {
	err := r.db.QueryRow(ctx, `INSERT INTO domains (name) VALUES ($1) RETURNING id`, domain.Name).Scan(&domain.ID)
	if err != nil {
		return fmt.Errorf("error creating domain: %w", err)
	}
	return nil
}

// GetByID retrieves a domain by ID
func (r *DomainRepository) GetByID(ctx context.Context, id int64) (*models.Domain, error) {
	var domain models.Domain
	err := r.db.QueryRow(ctx, `SELECT id, name FROM domains WHERE id = $1`, id).Scan(&domain.ID, &domain.Name)
	if err != nil {
		return nil, notFound(err, "domain", id)
	}
	return &domain, nil
}

// GetByName retrieves a domain by name
func (r *DomainRepository) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	var domain models.Domain
	err := r.db.QueryRow(ctx, `SELECT id, name FROM domains WHERE name = $1 ORDER BY id LIMIT 1`, name).Scan(&domain.ID, &domain.Name)
	if err != nil {
		return nil, notFound(err, "domain", name)
	}
	return &domain, nil
}
