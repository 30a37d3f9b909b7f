package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/appdotbuilder/school-management-app/internal/apperr"
	"github.com/appdotbuilder/school-management-app/internal/event"
)

var (
	ErrStudentNotFound     = apperr.New(apperr.ErrNotFound, "student not found")
	ErrDuplicateAttendance = apperr.New(apperr.ErrDuplicateAttendance, "attendance already recorded")
)

// StudentChecker reports whether a student exists.
type StudentChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service interface {
	RecordAttendance(ctx context.Context, input RecordAttendanceInput) (*Attendance, error)
	GetAttendanceInRange(ctx context.Context, filter RangeFilter) ([]WithStudent, error)
}

type service struct {
	repo     Repository
	students StudentChecker
	events   *event.Emitter
	logger   *slog.Logger
}

func NewService(repo Repository, students StudentChecker, events *event.Emitter, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		students: students,
		events:   events,
		logger:   logger,
	}
}

func (s *service) RecordAttendance(ctx context.Context, input RecordAttendanceInput) (*Attendance, error) {
	if !input.Status.Valid() {
		return nil, apperr.Validation("unknown attendance status %q", input.Status)
	}
	if input.Date.IsZero() {
		return nil, apperr.Validation("attendance date is required")
	}

	exists, err := s.students.Exists(ctx, input.StudentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", ErrStudentNotFound, input.StudentID)
	}

	// advisory; the (student_id, date) unique index is authoritative
	recorded, err := s.repo.ExistsForDate(ctx, input.StudentID, input.Date)
	if err != nil {
		return nil, err
	}
	if recorded {
		return nil, fmt.Errorf("%w: student %d on %s", ErrDuplicateAttendance, input.StudentID, input.Date)
	}

	created, err := s.repo.Create(ctx, &Attendance{
		StudentID: input.StudentID,
		Date:      input.Date,
		Status:    input.Status,
		Reason:    input.Reason,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "attendance recorded",
		"student_id", created.StudentID,
		"date", created.Date.String(),
		"status", created.Status,
	)
	s.events.Emit(ctx, event.AttendanceRecorded, created)
	return created, nil
}

func (s *service) GetAttendanceInRange(ctx context.Context, filter RangeFilter) ([]WithStudent, error) {
	if filter.StartDate.IsZero() || filter.EndDate.IsZero() {
		return nil, apperr.Validation("start_date and end_date are required")
	}
	if filter.StartDate.After(filter.EndDate.Time) {
		return nil, apperr.Validation("start_date %s is after end_date %s", filter.StartDate, filter.EndDate)
	}
	return s.repo.FindInRange(ctx, filter)
}
