package grade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/event"
	"github.com/appdotbuilder/school-management-app/internal/projection"
)

var (
	ErrStudentNotFound = apperr.New(apperr.ErrNotFound, "student not found")
	ErrSubjectNotFound = apperr.New(apperr.ErrNotFound, "subject not found")
)

// ExistenceChecker reports whether a row with the given id exists.
type ExistenceChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service interface {
	RecordGrade(ctx context.Context, input RecordGradeInput) (*Grade, error)
	GetGradesWithDetails(ctx context.Context, studentID *int) ([]WithDetails, error)
}

type service struct {
	repo     Repository
	students ExistenceChecker
	subjects ExistenceChecker
	events   *event.Emitter
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, students, subjects ExistenceChecker, events *event.Emitter, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		students: students,
		subjects: subjects,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) RecordGrade(ctx context.Context, input RecordGradeInput) (*Grade, error) {
	if !input.GradeType.Valid() {
		return nil, apperr.Validation("unknown grade type %q", input.GradeType)
	}
	// checked after rounding to the stored scale
	score := projection.FromFloat(input.Grade)
	if score.IsNegative() {
		return nil, apperr.Validation("grade must not be negative, got %v", input.Grade)
	}
	maxScore := projection.FromFloat(input.MaxScore)
	if !maxScore.IsPositive() {
		return nil, apperr.Validation("max_score must be at least 0.01, got %v", input.MaxScore)
	}

	exists, err := s.students.Exists(ctx, input.StudentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", ErrStudentNotFound, input.StudentID)
	}

	exists, err = s.subjects.Exists(ctx, input.SubjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", ErrSubjectNotFound, input.SubjectID)
	}

	recorded := input.RecordedDate
	if recorded.IsZero() {
		recorded = projection.DateOf(s.now().UTC())
	}

	created, err := s.repo.Create(ctx, &Grade{
		StudentID:    input.StudentID,
		SubjectID:    input.SubjectID,
		Grade:        score,
		GradeType:    input.GradeType,
		MaxScore:     maxScore,
		Comments:     input.Comments,
		RecordedDate: recorded,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "grade recorded",
		"grade_id", created.ID,
		"student_id", created.StudentID,
		"subject_id", created.SubjectID,
		"grade_type", created.GradeType,
	)
	s.events.Emit(ctx, event.GradeRecorded, created)
	return created, nil
}

func (s *service) GetGradesWithDetails(ctx context.Context, studentID *int) ([]WithDetails, error) {
	if studentID != nil && *studentID <= 0 {
		return nil, apperr.Validation("student_id must be positive, got %d", *studentID)
	}
	return s.repo.FindWithDetails(ctx, studentID)
}
