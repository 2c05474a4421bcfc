package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cpne/stages/internal/app/models"
)

// TeacherWorkload is the computed activity of one teacher.
type TeacherWorkload struct {
	Teacher     *models.Teacher
	Activity    *Activity
	Imputations Imputations
}

// WorkloadService computes teacher workloads and records the carry-over
type WorkloadService struct {
	teachers TeacherStore
	courses  CourseStore
	limits   WorkloadLimits
	logger   zerolog.Logger
}

// NewWorkloadService creates a new workload service instance
func NewWorkloadService(teachers TeacherStore, courses CourseStore, limits WorkloadLimits, logger zerolog.Logger) *WorkloadService {
	return &WorkloadService{
		teachers: teachers,
		courses:  courses,
		limits:   limits,
		logger:   logger,
	}
}

// Limits returns the configured full-time figures
func (s *WorkloadService) Limits() WorkloadLimits {
	return s.limits
}

// TeacherActivity computes the activity of one teacher. The resulting report is stored
// as the teacher's next_report.
func (s *WorkloadService) TeacherActivity(ctx context.Context, teacherID int64) (*TeacherWorkload, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.compute(ctx, teacher)
}

// ListWorkloads computes the activity of the given teachers, or of every non-archived
// teacher when ids is empty.
func (s *WorkloadService) ListWorkloads(ctx context.Context, ids []int64) ([]*TeacherWorkload, error) {
	teachers, err := s.teachers.List(ctx, ids)
	if err != nil {
		return nil, err
	}
	workloads := make([]*TeacherWorkload, 0, len(teachers))
	for _, t := range teachers {
		w, err := s.compute(ctx, t)
		if err != nil {
			return nil, err
		}
		workloads = append(workloads, w)
	}
	return workloads, nil
}

func (s *WorkloadService) compute(ctx context.Context, teacher *models.Teacher) (*TeacherWorkload, error) {
	courses, err := s.courses.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing courses of teacher %d: %w", teacher.ID, err)
	}
	activity := CalcActivity(teacher, courses, s.limits)
	imputations := CalcImputations(courses, activity)

	if teacher.NextReport != activity.Report {
		if err := s.teachers.UpdateNextReport(ctx, teacher.ID, activity.Report); err != nil {
			return nil, err
		}
		s.logger.Debug().
			Int64("teacher_id", teacher.ID).
			Int("next_report", activity.Report).
			Msg("Teacher report updated")
		teacher.NextReport = activity.Report
	}
	return &TeacherWorkload{Teacher: teacher, Activity: activity, Imputations: imputations}, nil
}
