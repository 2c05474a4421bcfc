package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/filestorage"
	"github.com/cpne/stages/internal/pkg/helpers"
	"github.com/cpne/stages/internal/pkg/metrics"
	"github.com/cpne/stages/internal/pkg/pdfdoc"
	"github.com/cpne/stages/internal/pkg/schoolyear"
)

// ChargeSheetArchiveName is the name of the zip holding the charge sheets
const ChargeSheetArchiveName = "archive_FeuillesDeCharges.zip"

// DocumentOptions are the configurable texts of generated letters
type DocumentOptions struct {
	ChargeSheetTitle string
	SignaturePlace   string
}

// ChargeSheetService prints the yearly charge sheets of teachers
type ChargeSheetService struct {
	workload *WorkloadService
	storage  filestorage.FileStorage
	options  DocumentOptions
	clock    schoolyear.Clock
	logger   zerolog.Logger
}

// NewChargeSheetService creates a new charge sheet service instance
func NewChargeSheetService(workload *WorkloadService, storage filestorage.FileStorage, options DocumentOptions, clock schoolyear.Clock, logger zerolog.Logger) *ChargeSheetService {
	return &ChargeSheetService{
		workload: workload,
		storage:  storage,
		options:  options,
		clock:    clock,
		logger:   logger,
	}
}

// Archive renders one PDF per teacher and zips them. The PDFs are written to a work
// directory removed before returning.
func (s *ChargeSheetService) Archive(ctx context.Context, teacherIDs []int64) (*File, error) {
	workloads, err := s.workload.ListWorkloads(ctx, teacherIDs)
	if err != nil {
		return nil, err
	}
	if len(workloads) == 0 {
		return nil, apperrors.NewResourceNotFoundError("Aucun enseignant sélectionné")
	}

	wd, err := s.storage.NewWorkDir()
	if err != nil {
		return nil, err
	}
	defer wd.Cleanup()

	today := s.clock.Today()
	var paths []string
	for _, w := range workloads {
		path := wd.Path(fmt.Sprintf("%s_%d.pdf", w.Teacher.Label(), w.Teacher.ID))
		doc := ChargeSheet(w, s.workload.Limits(), s.options, today)
		if err := doc.WriteFile(path); err != nil {
			return nil, fmt.Errorf("charge sheet of teacher %d: %w", w.Teacher.ID, err)
		}
		paths = append(paths, path)
	}

	data, err := zipFiles(paths)
	if err != nil {
		return nil, err
	}
	metrics.RecordDocument("charge_sheet", len(paths))
	s.logger.Info().Int("teachers", len(paths)).Msg("Charge sheets generated")
	return &File{Filename: ChargeSheetArchiveName, ContentType: "application/zip", Data: data}, nil
}

// ChargeSheet lays out the charge sheet of one teacher.
func ChargeSheet(w *TeacherWorkload, limits WorkloadLimits, options DocumentOptions, today time.Time) *pdfdoc.Document {
	t, a := w.Teacher, w.Activity
	periods := func(n int) string { return fmt.Sprintf("%3d pér.", n) }
	percent := func(n int) string { return fmt.Sprintf("%4.1f %%", limits.Percent(n)) }

	doc := pdfdoc.New("Feuille de charge " + t.Label())
	doc.Add(
		pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 20},
		pdfdoc.Block{Kind: pdfdoc.Address, Text: t.Civility},
		pdfdoc.Block{Kind: pdfdoc.Address, Text: strings.TrimSpace(t.FirstName + " " + t.LastName)},
		pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 18},
		pdfdoc.Block{Kind: pdfdoc.Title, Text: options.ChargeSheetTitle + " " + schoolyear.Of(today).String()},
		pdfdoc.Block{Kind: pdfdoc.Note, Text: fmt.Sprintf("Total HyperPlanning: %d pér.", a.TotHyperPlanning())},
		pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 4},
		pdfdoc.Block{Kind: pdfdoc.Row, Text: "Report de l'année précédente", Values: []string{periods(a.PreviousReport)}},
		pdfdoc.Block{Kind: pdfdoc.Row, Text: "Mandats", Values: []string{periods(a.TotMandates)}},
	)
	for _, m := range a.Mandates {
		doc.Add(pdfdoc.Block{Kind: pdfdoc.Row, Text: fmt.Sprintf("    * %s (%d pér.)", m.Subject, m.Period)})
	}
	doc.Add(
		pdfdoc.Block{Kind: pdfdoc.Row, Text: "Enseignement (coef.2)", Values: []string{periods(a.TotTeaching)}},
		pdfdoc.Block{Kind: pdfdoc.Row, Text: "Formation continue et autres tâches", Values: []string{periods(a.TotFormation)}},
		pdfdoc.Block{Kind: pdfdoc.Row, Text: "Total des heures travaillées", LineAbove: true,
			Values: []string{periods(a.TotWork), percent(a.TotWork)}},
		pdfdoc.Block{Kind: pdfdoc.Row, Text: "Total des heures payées", LineAbove: true, Bold: true,
			Values: []string{periods(a.TotPaid), percent(a.TotPaid)}},
		pdfdoc.Block{Kind: pdfdoc.Row, Text: "Report à l'année prochaine", LineAbove: true,
			Values: []string{periods(a.Report)}},
		pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 15},
		pdfdoc.Block{Kind: pdfdoc.Paragraph,
			Text: fmt.Sprintf("%s, le %s", options.SignaturePlace, helpers.FormatLongDate(today))},
		pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 5},
		pdfdoc.Block{Kind: pdfdoc.Paragraph, Text: "la direction"},
	)

	if a.TotPaid == limits.FullTime() && a.TotPaid != a.TotWork {
		doc.Add(
			pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 10},
			pdfdoc.Block{Kind: pdfdoc.Paragraph,
				Text: "Je soussigné-e déclare accepter les conditions ci-dessus pour la régularisation de mon salaire."},
			pdfdoc.Block{Kind: pdfdoc.Spacer, Height: 10},
			pdfdoc.Block{Kind: pdfdoc.Paragraph, Text: "Lieu, date et signature: " + strings.Repeat(".", 93)},
		)
	}
	return doc
}

func zipFiles(paths []string) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		fw, err := zw.Create(filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", path, err)
		}
		if _, err := fw.Write(data); err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
