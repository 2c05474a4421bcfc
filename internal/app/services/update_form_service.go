package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/filestorage"
	"github.com/cpne/stages/internal/pkg/helpers"
	"github.com/cpne/stages/internal/pkg/metrics"
	"github.com/cpne/stages/internal/pkg/pdfdoc"
)

// UpdateFormArchiveName is the name of the zip holding the update forms
const UpdateFormArchiveName = "modification.zip"

// First-year classes and the maturity sections fill their data at enrolment.
const updateFormMinLevel = "2"

var updateFormExcludedSections = []string{"MP_ASSC", "MP_ASE"}

// UpdateFormStore reads the students the update forms are printed for
type UpdateFormStore interface {
	ListUpdateFormRows(ctx context.Context, minLevel string, excludedSections []string) ([]*models.UpdateFormRow, error)
}

// UpdateFormService prints the personal data update forms, one PDF per klass
type UpdateFormService struct {
	students UpdateFormStore
	storage  filestorage.FileStorage
	logger   zerolog.Logger
}

// NewUpdateFormService creates a new update form service instance
func NewUpdateFormService(students UpdateFormStore, storage filestorage.FileStorage, logger zerolog.Logger) *UpdateFormService {
	return &UpdateFormService{
		students: students,
		storage:  storage,
		logger:   logger,
	}
}

// Archive renders the forms to be returned by returnDate and zips them, one PDF per klass
// with a page per student.
func (s *UpdateFormService) Archive(ctx context.Context, returnDate time.Time) (*File, error) {
	rows, err := s.students.ListUpdateFormRows(ctx, updateFormMinLevel, updateFormExcludedSections)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewResourceNotFoundError("Aucun étudiant ne doit mettre à jour ses données")
	}

	wd, err := s.storage.NewWorkDir()
	if err != nil {
		return nil, err
	}
	defer wd.Cleanup()

	var paths []string
	for _, klass := range groupByKlass(rows) {
		path := wd.Path(klass[0].KlassName + ".pdf")
		if err := UpdateForm(klass, returnDate).WriteFile(path); err != nil {
			return nil, fmt.Errorf("update forms of klass %s: %w", klass[0].KlassName, err)
		}
		paths = append(paths, path)
	}

	data, err := zipFiles(paths)
	if err != nil {
		return nil, err
	}
	metrics.RecordDocument("update_form", len(paths))
	s.logger.Info().Int("klasses", len(paths)).Int("students", len(rows)).Msg("Update forms generated")
	return &File{Filename: UpdateFormArchiveName, ContentType: "application/zip", Data: data}, nil
}

// groupByKlass splits rows already ordered by klass name.
func groupByKlass(rows []*models.UpdateFormRow) [][]*models.UpdateFormRow {
	var groups [][]*models.UpdateFormRow
	for _, row := range rows {
		last := len(groups) - 1
		if last < 0 || groups[last][0].KlassName != row.KlassName {
			groups = append(groups, nil)
			last++
		}
		groups[last] = append(groups[last], row)
	}
	return groups
}

func corporationRequired(klassName string) bool {
	return containsAny(klassName, "FE", "EDS", "EDEpe")
}

func instructorRequired(klassName string) bool {
	return containsAny(klassName, "FE", "EDS")
}

func containsAny(s string, parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// UpdateForm lays out the forms of one klass, a page per student.
func UpdateForm(students []*models.UpdateFormRow, returnDate time.Time) *pdfdoc.Document {
	text := "Afin de mettre à jour nos bases de données, nous vous serions reconnaissant " +
		"de contrôler les données ci-dessous qui vous concernent selon votre filière " +
		"et de retourner le présent document corrigé et complété à votre maître de classe jusqu'au " +
		helpers.FormatWeekday(returnDate) + " prochain."
	field := func(label, value string) pdfdoc.Block {
		return pdfdoc.Block{Kind: pdfdoc.Field, Text: label, Values: []string{value}}
	}
	blank := pdfdoc.Block{Kind: pdfdoc.Field}

	doc := pdfdoc.New("Mise à jour des données " + students[0].KlassName)
	for i, st := range students {
		if i > 0 {
			doc.Add(pdfdoc.Block{Kind: pdfdoc.PageBreak})
		}
		civility := st.Gender.Civility()
		doc.Add(
			pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 15},
			pdfdoc.Block{Kind: pdfdoc.Address, Text: civility},
			pdfdoc.Block{Kind: pdfdoc.Address, Text: strings.TrimSpace(st.FirstName + " " + st.LastName)},
			pdfdoc.Block{Kind: pdfdoc.Address, Text: st.KlassName},
			pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 15},
			pdfdoc.Block{Kind: pdfdoc.Paragraph, Text: strings.TrimSpace(civility + ",")},
			pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 3},
			pdfdoc.Block{Kind: pdfdoc.Paragraph, Text: text},
			pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 3},
			pdfdoc.Block{Kind: pdfdoc.Paragraph, Text: "Nous vous remercions de votre précieuse collaboration."},
			pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 3},
			pdfdoc.Block{Kind: pdfdoc.Paragraph, Text: "Le secrétariat"},
			pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 12},
			pdfdoc.Block{Kind: pdfdoc.Note, Text: "Données enregistrées / Données corrigées et/ou complétées"},
			field("NOM", st.LastName),
			field("PRENOM", st.FirstName),
			field("ADRESSE", st.Street),
			field("LOCALITE", strings.TrimSpace(st.PCode+" "+st.City)),
			field("MOBILE", st.Mobile),
			field("CLASSE", st.KlassName),
			blank,
		)

		if corporationRequired(st.KlassName) {
			doc.Add(pdfdoc.Block{Kind: pdfdoc.Note, Text: "Données de l'Employeur"})
			if st.HasCorporation {
				doc.Add(
					field("NOM", st.CorporationName),
					field("ADRESSE", st.CorporationStreet),
					field("LOCALITE", strings.TrimSpace(st.CorporationPCode+" "+st.CorporationCity)),
				)
			} else {
				doc.Add(field("NOM", ""), field("ADRESSE", ""), field("LOCALITE", ""))
			}
			doc.Add(blank)
		}

		if instructorRequired(st.KlassName) {
			doc.Add(pdfdoc.Block{Kind: pdfdoc.Note, Text: "Données du FEE/FPP (personne de contact pour les informations)"})
			if st.HasInstructor {
				doc.Add(
					field("NOM", st.InstructorLast),
					field("PRENOM", st.InstructorFirst),
					field("TELEPHONE", st.InstructorTel),
					field("E-MAIL", st.InstructorEmail),
				)
			} else {
				doc.Add(field("NOM", ""), field("PRENOM", ""), field("TELEPHONE", ""), field("E-MAIL", ""))
			}
		}
	}
	return doc
}
