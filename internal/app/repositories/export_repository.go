package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/db"
)

// ExportRepository runs the flat queries behind the XLSX exports
type ExportRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewExportRepository creates a new export repository
func NewExportRepository(q db.Querier) *ExportRepository {
	return &ExportRepository{db: q, sb: statementBuilder()}
}

// ListStageRows returns every training, or those of one period, latest periods first.
func (r *ExportRepository) ListStageRows(ctx context.Context, periodID *int64) ([]*models.StageRow, error) {
	qb := r.sb.Select(
		"s.first_name", "s.last_name", "COALESCE(k.name, '')", "COALESCE(sec.name, '')",
		"p.start_date", "p.end_date", "c.name", "d.name",
		"COALESCE(te.first_name, '')", "COALESCE(te.last_name, '')",
		"COALESCE(ac.title, mc.title, '')", "COALESCE(ac.first_name, mc.first_name, '')",
		"COALESCE(ac.last_name, mc.last_name, '')", "COALESCE(ac.email, mc.email, '')",
	).
		From("trainings tr").
		Join("availabilities a ON a.id = tr.availability_id").
		Join("periods p ON p.id = a.period_id").
		Join("students s ON s.id = tr.student_id").
		LeftJoin("klasses k ON k.id = s.klass_id").
		LeftJoin("sections sec ON sec.id = k.section_id").
		Join("corporations c ON c.id = a.corporation_id").
		Join("domains d ON d.id = a.domain_id").
		LeftJoin("teachers te ON te.id = tr.referent_id").
		LeftJoin("corp_contacts ac ON ac.id = a.contact_id").
		// Main contact of the corporation for the student's section
		LeftJoin(`LATERAL (
			SELECT m.title, m.first_name, m.last_name, m.email
			FROM corp_contacts m
			JOIN corp_contact_sections ms ON ms.contact_id = m.id
			WHERE m.corporation_id = a.corporation_id AND m.is_main AND NOT m.archived
				AND ms.section_id = k.section_id
			ORDER BY m.id
			LIMIT 1
		) mc ON a.contact_id IS NULL`).
		OrderBy("p.start_date DESC", "s.last_name", "s.first_name", "tr.id")
	if periodID != nil {
		qb = qb.Where(squirrel.Eq{"a.period_id": *periodID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building stages export query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing stages: %w", err)
	}
	defer rows.Close()

	var result []*models.StageRow
	for rows.Next() {
		var row models.StageRow
		if err := rows.Scan(
			&row.StudentFirstName, &row.StudentLastName, &row.KlassName, &row.SectionName,
			&row.Start, &row.End, &row.CorporationName, &row.DomainName,
			&row.ReferentFirstName, &row.ReferentLastName,
			&row.ContactTitle, &row.ContactFirstName, &row.ContactLastName, &row.ContactEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, &row)
	}
	return result, rows.Err()
}

// ListStudentRows returns the non-archived students ordered by klass and name. When
// klassMarkers is not empty only students whose klass name contains one of them are kept.
func (r *ExportRepository) ListStudentRows(ctx context.Context, klassMarkers []string) ([]*models.StudentRow, error) {
	qb := r.sb.Select(
		studentColumns, "COALESCE(k.name, '')",
		"COALESCE(c.name, '')", "COALESCE(c.city, '')",
		"COALESCE(i.title, '')", "COALESCE(i.first_name, '')", "COALESCE(i.last_name, '')", "COALESCE(i.email, '')",
	).
		From("students s").
		LeftJoin("klasses k ON k.id = s.klass_id").
		LeftJoin("corporations c ON c.id = s.corporation_id").
		LeftJoin("corp_contacts i ON i.id = s.instructor_id").
		Where(squirrel.Eq{"s.archived": false}).
		OrderBy("k.name", "s.last_name", "s.first_name")
	if len(klassMarkers) > 0 {
		or := squirrel.Or{}
		for _, marker := range klassMarkers {
			or = append(or, squirrel.Like{"k.name": "%" + marker + "%"})
		}
		qb = qb.Where(or)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building students export query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	var result []*models.StudentRow
	for rows.Next() {
		var row models.StudentRow
		s := &row.Student
		if err := rows.Scan(
			&s.ID, &s.ExtID, &s.FirstName, &s.LastName, &s.Gender, &s.BirthDate, &s.Street,
			&s.PCode, &s.City, &s.District, &s.Tel, &s.Mobile, &s.Email, &s.AVS, &s.DispenseECG, &s.DispenseEPS,
			&s.SoutienDYS, &s.KlassID, &s.CorporationID, &s.InstructorID, &s.Archived, &s.ArchivedText,
			&row.KlassName, &row.CorporationName, &row.CorporationCity,
			&row.InstructorTitle, &row.InstructorFirst, &row.InstructorLast, &row.InstructorEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, &row)
	}
	return result, rows.Err()
}

// ListUpdateFormRows returns the non-archived students of the klasses whose level is
// at least minLevel, ordered by klass and name. Klasses of the excluded sections are left out.
func (r *ExportRepository) ListUpdateFormRows(ctx context.Context, minLevel string, excludedSections []string) ([]*models.UpdateFormRow, error) {
	qb := r.sb.Select(
		"k.name", "s.gender", "s.first_name", "s.last_name", "s.street", "s.pcode", "s.city", "s.mobile",
		"c.id IS NOT NULL", "COALESCE(c.name, '')", "COALESCE(c.street, '')", "COALESCE(c.pcode, '')", "COALESCE(c.city, '')",
		"i.id IS NOT NULL", "COALESCE(i.first_name, '')", "COALESCE(i.last_name, '')", "COALESCE(i.tel, '')", "COALESCE(i.email, '')",
	).
		From("students s").
		Join("klasses k ON k.id = s.klass_id").
		Join("sections sec ON sec.id = k.section_id").
		Join("levels l ON l.id = k.level_id").
		LeftJoin("corporations c ON c.id = s.corporation_id").
		LeftJoin("corp_contacts i ON i.id = s.instructor_id").
		Where(squirrel.Eq{"s.archived": false}).
		Where(squirrel.GtOrEq{"l.name": minLevel}).
		OrderBy("k.name", "s.last_name", "s.first_name")
	if len(excludedSections) > 0 {
		qb = qb.Where(squirrel.NotEq{"sec.name": excludedSections})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building update forms query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing update form students: %w", err)
	}
	defer rows.Close()

	var result []*models.UpdateFormRow
	for rows.Next() {
		var row models.UpdateFormRow
		if err := rows.Scan(
			&row.KlassName, &row.Gender, &row.FirstName, &row.LastName, &row.Street, &row.PCode, &row.City, &row.Mobile,
			&row.HasCorporation, &row.CorporationName, &row.CorporationStreet, &row.CorporationPCode, &row.CorporationCity,
			&row.HasInstructor, &row.InstructorFirst, &row.InstructorLast, &row.InstructorTel, &row.InstructorEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, &row)
	}
	return result, rows.Err()
}
