package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/pkg/metrics"
	"github.com/cpne/stages/internal/pkg/schoolyear"
	"github.com/cpne/stages/internal/pkg/tabular"
)

// XLSXContentType is the MIME type of generated workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ortraMarkers select the classes of the ORTRA apprenticeships
var ortraMarkers = []string{"ASAFE", "ASEFE", "ASSCFE"}

// File is a generated document ready to be streamed
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

var stageHeaders = []string{
	"Prénom", "Nom", "Classe", "Filière", "Début", "Fin", "Institution", "Domaine",
	"Prénom référent", "Nom référent",
	"Civilité contact", "Prénom contact", "Nom contact", "Courriel contact",
}

var generalHeaders = []string{
	"Classe", "Nom", "Prénom", "Genre", "Date de naissance", "Rue", "NPA", "Localité", "Canton",
	"Téléphone", "Portable", "Courriel", "No AVS", "Dispense ECG", "Dispense EPS", "Soutien DYS",
	"Employeur", "Employeur_localite", "Civilité FEE/FPP", "Prénom FEE/FPP", "Nom FEE/FPP", "Courriel FEE/FPP",
}

var ortraHeaders = []string{
	"Classe", "Nom", "Prénom", "Rue", "NPA", "Localité", "Courriel", "Date de naissance",
	"Employeur", "Employeur_localite", "Civilité FEE/FPP", "Prénom FEE/FPP", "Nom FEE/FPP", "Courriel FEE/FPP",
}

var imputationActivityHeaders = []string{
	"Nom", "Prénom", "Report précédent", "Mandats", "Enseignement", "Formation",
	"Total travaillé", "Total payé", "Report suivant",
}

// ExportService builds the XLSX exports
type ExportService struct {
	exports  ExportStore
	workload *WorkloadService
	clock    schoolyear.Clock
	logger   zerolog.Logger
}

// NewExportService creates a new export service instance
func NewExportService(exports ExportStore, workload *WorkloadService, clock schoolyear.Clock, logger zerolog.Logger) *ExportService {
	return &ExportService{
		exports:  exports,
		workload: workload,
		clock:    clock,
		logger:   logger,
	}
}

func (s *ExportService) finish(sheet *tabular.Sheet, base string, rows int) (*File, error) {
	data, err := sheet.Bytes()
	if err != nil {
		return nil, err
	}
	metrics.RecordDocument("xlsx", 1)
	s.logger.Info().Str("export", base).Int("rows", rows).Msg("Export generated")
	return &File{
		Filename:    tabular.Filename(base, s.clock.Today()),
		ContentType: XLSXContentType,
		Data:        data,
	}, nil
}

// Stages exports placements, all of them or those of one period. The contact columns
// fall back to the corporation's main contact for the student's section.
func (s *ExportService) Stages(ctx context.Context, periodID *int64) (*File, error) {
	rows, err := s.exports.ListStageRows(ctx, periodID)
	if err != nil {
		return nil, err
	}
	sheet, err := tabular.NewSheet("Stages")
	if err != nil {
		return nil, err
	}
	if err := sheet.WriteHeader(stageHeaders, 15, 15, 10, 10, 12, 12, 30, 20, 15, 15, 10, 15, 15, 25); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := sheet.WriteLine(
			r.StudentFirstName, r.StudentLastName, r.KlassName, r.SectionName, r.Start, r.End,
			r.CorporationName, r.DomainName, r.ReferentFirstName, r.ReferentLastName,
			r.ContactTitle, r.ContactFirstName, r.ContactLastName, r.ContactEmail,
		); err != nil {
			return nil, err
		}
	}
	return s.finish(sheet, "stages_export", len(rows))
}

// General exports every non-archived student
func (s *ExportService) General(ctx context.Context) (*File, error) {
	rows, err := s.exports.ListStudentRows(ctx, nil)
	if err != nil {
		return nil, err
	}
	sheet, err := tabular.NewSheet("Étudiants")
	if err != nil {
		return nil, err
	}
	if err := sheet.WriteHeader(generalHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := sheet.WriteLine(
			r.KlassName, r.LastName, r.FirstName, string(r.Gender), r.BirthDate, r.Street, r.PCode,
			r.City, r.District, r.Tel, r.Mobile, r.Email, r.AVS, r.DispenseECG, r.DispenseEPS,
			r.SoutienDYS, r.CorporationName, r.CorporationCity,
			r.InstructorTitle, r.InstructorFirst, r.InstructorLast, r.InstructorEmail,
		); err != nil {
			return nil, err
		}
	}
	return s.finish(sheet, "general_export", len(rows))
}

// Ortra exports the students of the ASAFE, ASEFE and ASSCFE classes
func (s *ExportService) Ortra(ctx context.Context) (*File, error) {
	rows, err := s.exports.ListStudentRows(ctx, ortraMarkers)
	if err != nil {
		return nil, err
	}
	sheet, err := tabular.NewSheet("Étudiants")
	if err != nil {
		return nil, err
	}
	if err := sheet.WriteHeader(ortraHeaders); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := sheet.WriteLine(
			r.KlassName, r.LastName, r.FirstName, r.Street, r.PCode, r.City, r.Email, r.BirthDate,
			r.CorporationName, r.CorporationCity,
			r.InstructorTitle, r.InstructorFirst, r.InstructorLast, r.InstructorEmail,
		); err != nil {
			return nil, err
		}
	}
	return s.finish(sheet, "ortra_export", len(rows))
}

// Imputations exports the activity and accounting columns of every non-archived
// teacher. Computing it refreshes each teacher's next_report.
func (s *ExportService) Imputations(ctx context.Context) (*File, error) {
	workloads, err := s.workload.ListWorkloads(ctx, nil)
	if err != nil {
		return nil, err
	}
	sheet, err := tabular.NewSheet("Imputations")
	if err != nil {
		return nil, err
	}
	headers := append(append([]string{}, imputationActivityHeaders...), ImputationKeys...)
	if err := sheet.WriteHeader(headers, 20, 15); err != nil {
		return nil, err
	}
	for _, w := range workloads {
		if err := sheet.WriteLine(imputationLine(w)...); err != nil {
			return nil, fmt.Errorf("writing teacher %d: %w", w.Teacher.ID, err)
		}
	}
	return s.finish(sheet, "Imputations_export", len(workloads))
}

func imputationLine(w *TeacherWorkload) []any {
	a := w.Activity
	line := []any{
		w.Teacher.LastName, w.Teacher.FirstName, a.PreviousReport, a.TotMandates, a.TotTeaching,
		a.TotFormation, a.TotWork, a.TotPaid, a.Report,
	}
	for _, v := range w.Imputations.Ordered() {
		line = append(line, v)
	}
	return line
}
