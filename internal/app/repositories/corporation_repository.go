package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/app/models/dto"
	"github.com/cpne/stages/internal/db"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/dberrors"
)

const (
	corporationColumns = `c.id, c.ext_id, c.name, c.short_name, c.district, c.parent_id, c.sector, c.typ,
	c.street, c.pcode, c.city, c.tel, c.email, c.web, c.archived`
	contactColumns = `cc.id, cc.corporation_id, cc.ext_id, cc.is_main, cc.always_cc, cc.title, cc.first_name,
	cc.last_name, cc.role, cc.tel, cc.email, cc.archived`

	corporationNameCityConstraint = "corporations_name_city_key"
)

// CorporationRepository handles database operations for partner institutions
type CorporationRepository struct {
	db db.Querier
}

// NewCorporationRepository creates a new corporation repository
func NewCorporationRepository(q db.Querier) *CorporationRepository {
	return &CorporationRepository{db: q}
}

func scanCorporation(row rowScanner, c *models.Corporation) error {
	return row.Scan(
		&c.ID, &c.ExtID, &c.Name, &c.ShortName, &c.District, &c.ParentID, &c.Sector, &c.Typ,
		&c.Street, &c.PCode, &c.City, &c.Tel, &c.Email, &c.Web, &c.Archived,
	)
}

// Create inserts a corporation. A duplicate (name, city) yields a conflict.
func (r *CorporationRepository) Create(ctx context.Context, c *models.Corporation) error {
	return createCorporation(ctx, r.db, c)
}

func createCorporation(ctx context.Context, q db.Querier, c *models.Corporation) error {
	query := `
		INSERT INTO corporations (ext_id, name, short_name, district, parent_id, sector, typ, street,
			pcode, city, tel, email, web, archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := q.QueryRow(ctx, query,
		c.ExtID, c.Name, c.ShortName, c.District, c.ParentID, c.Sector, c.Typ, c.Street,
		c.PCode, c.City, c.Tel, c.Email, c.Web, c.Archived,
	).Scan(&c.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, corporationNameCityConstraint) {
			return apperrors.NewCustomError(apperrors.ErrConflict,
				fmt.Sprintf("L'institution «%s» existe déjà à %s", c.Name, c.City)).
				WithDetails(map[string]interface{}{"cause": apperrors.ErrCorporationAlreadyExists.Error()}).
				WithCode(string(dto.ErrorCodeResourceAlreadyExists))
		}
		return fmt.Errorf("error creating corporation: %w", err)
	}
	return nil
}

// GetByID retrieves a corporation by ID
func (r *CorporationRepository) GetByID(ctx context.Context, id int64) (*models.Corporation, error) {
	var corp models.Corporation
	err := scanCorporation(r.db.QueryRow(ctx, `SELECT `+corporationColumns+` FROM corporations c WHERE c.id = $1`, id), &corp)
	if err != nil {
		return nil, notFound(err, "corporation", id)
	}
	return &corp, nil
}

// GetByExtID retrieves a corporation by its registry identifier
func (r *CorporationRepository) GetByExtID(ctx context.Context, extID int64) (*models.Corporation, error) {
	return getCorporationByExtID(ctx, r.db, extID)
}

func getCorporationByExtID(ctx context.Context, q db.Querier, extID int64) (*models.Corporation, error) {
	var corp models.Corporation
	err := scanCorporation(q.QueryRow(ctx, `SELECT `+corporationColumns+` FROM corporations c WHERE c.ext_id = $1`, extID), &corp)
	if err != nil {
		return nil, notFound(err, "corporation", extID)
	}
	return &corp, nil
}

// Delete removes a corporation with its contacts and availabilities. Students keep their
// row with a null corporation.
func (r *CorporationRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "corporations", "corporation", id)
}

// ContactRepository handles database operations for corporation contacts
type ContactRepository struct {
	db db.Querier
}

// NewContactRepository creates a new contact repository
func NewContactRepository(q db.Querier) *ContactRepository {
	return &ContactRepository{db: q}
}

func scanContact(row rowScanner, c *models.CorpContact) error {
	return row.Scan(
		&c.ID, &c.CorporationID, &c.ExtID, &c.IsMain, &c.AlwaysCC, &c.Title, &c.FirstName,
		&c.LastName, &c.Role, &c.Tel, &c.Email, &c.Archived,
	)
}

// Create inserts a contact and its section links
func (r *ContactRepository) Create(ctx context.Context, c *models.CorpContact) error {
	return createContact(ctx, r.db, c)
}

func createContact(ctx context.Context, q db.Querier, c *models.CorpContact) error {
	query := `
		INSERT INTO corp_contacts (corporation_id, ext_id, is_main, always_cc, title, first_name,
			last_name, role, tel, email, archived)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := q.QueryRow(ctx, query,
		c.CorporationID, c.ExtID, c.IsMain, c.AlwaysCC, c.Title, c.FirstName,
		c.LastName, c.Role, c.Tel, c.Email, c.Archived,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("error creating contact: %w", err)
	}
	for _, sectionID := range c.SectionIDs {
		if _, err := q.Exec(ctx,
			`INSERT INTO corp_contact_sections (contact_id, section_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			c.ID, sectionID); err != nil {
			return fmt.Errorf("error linking contact section: %w", err)
		}
	}
	return nil
}

func updateContact(ctx context.Context, q db.Querier, c *models.CorpContact) error {
	query := `
		UPDATE corp_contacts SET corporation_id = $2, ext_id = $3, is_main = $4, always_cc = $5,
			title = $6, first_name = $7, last_name = $8, role = $9, tel = $10, email = $11, archived = $12
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		c.ID, c.CorporationID, c.ExtID, c.IsMain, c.AlwaysCC,
		c.Title, c.FirstName, c.LastName, c.Role, c.Tel, c.Email, c.Archived,
	)
	if err != nil {
		return fmt.Errorf("error updating contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(errNoRows, "contact", c.ID)
	}
	return nil
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id int64) (*models.CorpContact, error) {
	var contact models.CorpContact
	err := scanContact(r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM corp_contacts cc WHERE cc.id = $1`, id), &contact)
	if err != nil {
		return nil, notFound(err, "contact", id)
	}
	return &contact, nil
}

// ListActiveByCorporation returns the non-archived contacts of a corporation
func (r *ContactRepository) ListActiveByCorporation(ctx context.Context, corporationID int64) ([]*models.CorpContact, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+contactColumns+`
		FROM corp_contacts cc
		WHERE cc.corporation_id = $1 AND NOT cc.archived
		ORDER BY cc.last_name, cc.first_name
	`, corporationID)
	if err != nil {
		return nil, fmt.Errorf("error listing contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.CorpContact
	for rows.Next() {
		var contact models.CorpContact
		if err := scanContact(rows, &contact); err != nil {
			return nil, err
		}
		contacts = append(contacts, &contact)
	}
	return contacts, rows.Err()
}

func getContactByExtID(ctx context.Context, q db.Querier, extID int64) (*models.CorpContact, error) {
	var contact models.CorpContact
	err := scanContact(q.QueryRow(ctx, `SELECT `+contactColumns+` FROM corp_contacts cc WHERE cc.ext_id = $1`, extID), &contact)
	if err != nil {
		return nil, notFound(err, "contact", extID)
	}
	return &contact, nil
}

// findContactByName matches names case-insensitively within one corporation.
func findContactByName(ctx context.Context, q db.Querier, corporationID int64, first, last string) (*models.CorpContact, error) {
	var contact models.CorpContact
	err := scanContact(q.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM corp_contacts cc
		WHERE cc.corporation_id = $1 AND LOWER(cc.first_name) = $2 AND LOWER(cc.last_name) = $3
		ORDER BY cc.id
		LIMIT 1
	`, corporationID, strings.ToLower(first), strings.ToLower(last)), &contact)
	if err != nil {
		return nil, notFound(err, "contact", last+" "+first)
	}
	return &contact, nil
}
