package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/email"
	"github.com/cpne/stages/internal/pkg/helpers"
	"github.com/cpne/stages/internal/pkg/metrics"
	"github.com/cpne/stages/internal/pkg/schoolyear"
)

// ConvocationSubject is the default subject of the diploma defence convocation
const ConvocationSubject = "Convocation à la soutenance de travail de diplôme"

// Message is a mail prepared for review before sending
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// CandidateService mails admission confirmations to candidates and diploma defence
// convocations to students and their experts
type CandidateService struct {
	candidates   CandidateStore
	examinations ExaminationStore
	mailer       email.Mailer
	clock        schoolyear.Clock
	logger       zerolog.Logger
}

// NewCandidateService creates a new candidate service instance
func NewCandidateService(candidates CandidateStore, examinations ExaminationStore, mailer email.Mailer, clock schoolyear.Clock, logger zerolog.Logger) *CandidateService {
	return &CandidateService{
		candidates:   candidates,
		examinations: examinations,
		mailer:       mailer,
		clock:        clock,
		logger:       logger,
	}
}

func requireMessage(subject, body string) error {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return apperrors.NewValidationError("Le sujet et le texte du message sont obligatoires")
	}
	return nil
}

// SendConfirmation mails the confirmation of a registration. The sending date is
// recorded only once the mail is accepted by the server.
func (s *CandidateService) SendConfirmation(ctx context.Context, candidateID int64, subject, body string) (time.Time, error) {
	if err := requireMessage(subject, body); err != nil {
		return time.Time{}, err
	}

	candidate, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return time.Time{}, err
	}

	if err := s.mailer.Send(candidate.Email, candidate.Label(), subject, body); err != nil {
		s.logger.Error().Err(err).Int64("candidate_id", candidateID).Msg("Confirmation mail failed")
		return time.Time{}, apperrors.NewTransportError(
			fmt.Sprintf("Échec d’envoi pour %s (%s)", candidate.Label(), err), err)
	}

	sentAt := s.clock()
	if err := s.candidates.SetConfirmationMail(ctx, candidateID, sentAt); err != nil {
		return time.Time{}, err
	}
	metrics.RecordDocument("mail", 1)
	s.logger.Info().Int64("candidate_id", candidateID).Msg("Confirmation mail sent")
	return sentAt, nil
}

// convocableExamination loads the examination of a student and fails with a validation
// error listing every problem when the convocation cannot be sent.
func (s *CandidateService) convocableExamination(ctx context.Context, studentID int64) (*models.Examination, error) {
	exam, err := s.examinations.GetByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if errs := exam.ConvocationErrors(); len(errs) > 0 {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, strings.Join(errs, "\n")).
			WithDetails(map[string]interface{}{"student_id": studentID, "errors": errs})
	}
	return exam, nil
}

// ConvocationDraft prepares the convocation of a student to the diploma defence.
func (s *CandidateService) ConvocationDraft(ctx context.Context, studentID int64) (*Message, error) {
	exam, err := s.convocableExamination(ctx, studentID)
	if err != nil {
		return nil, err
	}

	participants := exam.Participants()
	to := make([]string, 0, len(participants))
	names := make([]string, 0, len(participants))
	for _, p := range participants {
		to = append(to, p.Email)
		names = append(names, p.CivilityFullName())
	}
	// "Madame" sorts before "Monsieur": ladies first.
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name + "\n")
	}
	fmt.Fprintf(&b, "\n%s,\n\n", exam.GlobalCivilities())
	fmt.Fprintf(&b, "Nous vous informons que la soutenance du travail de diplôme de %s aura lieu le %s en salle %s.\n\n",
		exam.Student.CivilityFullName(), helpers.FormatLongDateTime(exam.Date.In(s.clock().Location())), exam.Room)
	b.WriteString("Nous vous remercions de votre présence et vous adressons nos meilleures salutations.\n")

	return &Message{To: to, Subject: ConvocationSubject, Body: b.String()}, nil
}

// SendConvocation mails the convocation to the student and both experts, then records
// the sending. A convocation is only sent once.
func (s *CandidateService) SendConvocation(ctx context.Context, studentID int64, subject, body string) (time.Time, error) {
	if err := requireMessage(subject, body); err != nil {
		return time.Time{}, err
	}
	exam, err := s.convocableExamination(ctx, studentID)
	if err != nil {
		return time.Time{}, err
	}

	for _, p := range exam.Participants() {
		if err := s.mailer.Send(p.Email, p.CivilityFullName(), subject, body); err != nil {
			s.logger.Error().Err(err).Int64("student_id", studentID).Str("to", p.Email).Msg("Convocation mail failed")
			return time.Time{}, apperrors.NewTransportError(
				fmt.Sprintf("Échec d’envoi pour l’étudiant %s (%s)", exam.Student.CivilityFullName(), err), err)
		}
	}

	sentAt := s.clock()
	if err := s.examinations.SetConvocationMailed(ctx, studentID, sentAt); err != nil {
		return time.Time{}, err
	}
	metrics.RecordDocument("mail", len(exam.Participants()))
	s.logger.Info().Int64("student_id", studentID).Msg("Convocation mail sent")
	return sentAt, nil
}
